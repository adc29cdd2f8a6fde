package certs

import (
	"context"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/darmiel/zenkey/internal/core"
)

var ErrPackageNotFound = errors.New("package not found")

var certExtensions = []string{".der", ".cer", ".crt", ".pem"}

// DirStore reads signing certificates from <root>/<package>/. Files ending in
// .der, .cer, .crt or .pem are read in name order, PEM files may contain
// several CERTIFICATE blocks.
type DirStore struct {
	root string
}

var _ core.CertificateStore = (*DirStore)(nil)

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) SigningCertificates(_ context.Context, packageName string) ([][]byte, error) {
	if packageName == "" || strings.ContainsAny(packageName, `/\`) || packageName == "." || packageName == ".." {
		return nil, fmt.Errorf("invalid package name '%s'", packageName)
	}
	dir := filepath.Join(s.root, packageName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, packageName)
		}
		return nil, fmt.Errorf("reading certificate directory '%s': %w", dir, err)
	}

	var certs [][]byte
	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(certExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading certificate '%s': %w", path, err)
		}
		certs = append(certs, DecodeCertificates(data)...)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no signing certificates for package '%s' in '%s'", packageName, dir)
	}
	return certs, nil
}

// DecodeCertificates returns the DER bytes of all CERTIFICATE blocks in data.
// Data without any PEM block is returned as is and assumed to be DER.
func DecodeCertificates(data []byte) [][]byte {
	var (
		out  [][]byte
		rest = data
	)
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			out = append(out, block.Bytes)
		}
	}
	if len(out) == 0 && !strings.Contains(string(data), "-----BEGIN") {
		return [][]byte{data}
	}
	return out
}

// StaticStore serves certificates held in memory.
type StaticStore map[string][][]byte

var _ core.CertificateStore = StaticStore(nil)

func (s StaticStore) SigningCertificates(_ context.Context, packageName string) ([][]byte, error) {
	certs, ok := s[packageName]
	if !ok || len(certs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, packageName)
	}
	return certs, nil
}

// AppIdentity computes the fingerprints of all signing certificates of
// packageName. Any invalid certificate fails the whole identity.
func AppIdentity(ctx context.Context, store core.CertificateStore, packageName string) (core.AppIdentity, error) {
	raw, err := store.SigningCertificates(ctx, packageName)
	if err != nil {
		return core.AppIdentity{}, err
	}
	identity := core.AppIdentity{PackageName: packageName}
	for _, cert := range raw {
		fp, err := FingerprintOf(cert)
		if err != nil {
			return core.AppIdentity{}, err
		}
		identity.Fingerprints = append(identity.Fingerprints, fp)
	}
	return identity, nil
}
