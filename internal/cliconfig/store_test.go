package cliconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "nope", "config.json"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Credentials)
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "zenkey", "config.json"))

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.SetCredential("https://discover.myzenkey.com/.well-known", &Credential{
		ClientID:     "ccid-1",
		ClientSecret: "secret",
	}))
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)

	cred, err := loaded.GetCredential("https://discover.myzenkey.com")
	require.NoError(t, err)
	assert.Equal(t, "ccid-1", cred.ClientID)
	assert.Equal(t, "secret", cred.ClientSecret)

	_, err = loaded.GetCredential("https://other.example")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	removed, err := loaded.RemoveCredential("https://discover.myzenkey.com")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = loaded.RemoveCredential("https://discover.myzenkey.com")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGetCredentialRejectsRelative(t *testing.T) {
	cfg := &CLIConfig{}
	_, err := cfg.GetCredential("discover.myzenkey.com")
	assert.Error(t, err)
}
