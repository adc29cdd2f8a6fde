package certs

import (
	"context"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/zenkey/internal/core"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestDirStore(t *testing.T) {
	root := t.TempDir()
	der1 := newCertificate(t, "one")
	der2 := newCertificate(t, "two")
	der3 := newCertificate(t, "three")

	writeFile(t, filepath.Join(root, "com.example.app", "a.der"), der1)
	pemData := append(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der2}),
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der3})...,
	)
	writeFile(t, filepath.Join(root, "com.example.app", "b.pem"), pemData)
	writeFile(t, filepath.Join(root, "com.example.app", "notes.txt"), []byte("ignored"))

	store := NewDirStore(root)
	got, err := store.SigningCertificates(context.Background(), "com.example.app")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{der1, der2, der3}, got)
}

func TestDirStoreErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "empty.app", "readme.md"), []byte("x"))
	store := NewDirStore(root)

	_, err := store.SigningCertificates(context.Background(), "missing.app")
	assert.ErrorIs(t, err, ErrPackageNotFound)

	_, err = store.SigningCertificates(context.Background(), "empty.app")
	assert.Error(t, err)

	_, err = store.SigningCertificates(context.Background(), "../etc")
	assert.Error(t, err)
}

func TestDecodeCertificates(t *testing.T) {
	der := newCertificate(t, "x")
	assert.Equal(t, [][]byte{der}, DecodeCertificates(der))

	key := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1}})
	assert.Empty(t, DecodeCertificates(key))
}

func TestAppIdentity(t *testing.T) {
	der1 := newCertificate(t, "one")
	der2 := newCertificate(t, "two")
	store := StaticStore{"com.example.app": {der1, der2}}

	id, err := AppIdentity(context.Background(), store, "com.example.app")
	require.NoError(t, err)

	fp1, _ := FingerprintOf(der1)
	fp2, _ := FingerprintOf(der2)
	assert.Equal(t, core.AppIdentity{PackageName: "com.example.app", Fingerprints: []string{fp1, fp2}}, id)

	_, err = AppIdentity(context.Background(), store, "other")
	assert.ErrorIs(t, err, ErrPackageNotFound)

	bad := StaticStore{"bad": {der1, []byte("nope")}}
	_, err = AppIdentity(context.Background(), bad, "bad")
	assert.ErrorIs(t, err, core.ErrCertificate)
}
