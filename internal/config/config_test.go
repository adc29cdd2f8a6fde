package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/zenkey/internal/transport"
)

const fullConfig = `
client_id: ccid-123
discovery_endpoint: https://discoveryissuer.example
redirect_uri: https://app.example/callback
scopes: [openid, name, email]
timeouts:
  connect: 5s
  read: 15s
app:
  package_name: com.example.app
  certificates_dir: ./certs
verifier:
  type: asset_links
policies:
  - name: https-only
    expr: 'issuer startsWith "https://"'
headers:
  User-Agent: zenkey-test
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "ccid-123", cfg.ClientID)
	assert.Equal(t, "https://discoveryissuer.example", cfg.DiscoveryEndpoint)
	assert.Equal(t, []string{"openid", "name", "email"}, cfg.Scopes)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Connect)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Read)
	assert.Equal(t, "com.example.app", cfg.App.PackageName)
	assert.Equal(t, VerifierAssetLinks, cfg.Verifier.Type)
	require.Len(t, cfg.Policies, 1)
	assert.Equal(t, "https-only", cfg.Policies[0].Name)
	assert.Equal(t, "zenkey-test", cfg.Headers["User-Agent"])
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("client_id: c\ndiscovery_endpoint: https://d.example\n"))
	require.NoError(t, err)

	assert.Equal(t, transport.DefaultConnectTimeout, cfg.Timeouts.Connect)
	assert.Equal(t, transport.DefaultReadTimeout, cfg.Timeouts.Read)
	assert.Equal(t, VerifierAssetLinks, cfg.Verifier.Type)
	assert.Equal(t, []string{"openid"}, cfg.Scopes)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing client id", doc: "discovery_endpoint: https://d.example\n"},
		{name: "missing endpoint", doc: "client_id: c\n"},
		{name: "endpoint not a url", doc: "client_id: c\ndiscovery_endpoint: nope\n"},
		{name: "unknown verifier", doc: "client_id: c\ndiscovery_endpoint: https://d.example\nverifier:\n  type: magic\n"},
		{name: "static without packages", doc: "client_id: c\ndiscovery_endpoint: https://d.example\nverifier:\n  type: static\n"},
		{name: "static package without fingerprints", doc: "client_id: c\ndiscovery_endpoint: https://d.example\nverifier:\n  type: static\n  packages:\n    com.example: []\n"},
		{name: "bad policy", doc: "client_id: c\ndiscovery_endpoint: https://d.example\npolicies:\n  - name: x\n    expr: 'issuer +'\n"},
		{name: "not yaml", doc: "client_id: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zenkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ccid-123", cfg.ClientID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

const sandboxConfig = `
discover_ui: https://ui.sandbox.example
client_ids: [ccid-123]
carriers:
  - name: carrier-a
    mcc_mnc: ["310260", "310250"]
    issuer: https://a.sandbox.example
    authorization_endpoint: https://a.sandbox.example/authorize
  - name: carrier-b
    mcc_mnc: ["311480"]
    issuer: https://b.sandbox.example
    authorization_endpoint: https://b.sandbox.example/authorize
asset_links:
  - package_name: com.example.app
    sha256_cert_fingerprints: ["AA:BB"]
`

func TestLoadSandbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sandboxConfig), 0o600))

	cfg, err := LoadSandbox(path)
	require.NoError(t, err)

	c, ok := cfg.CarrierFor("310250")
	require.True(t, ok)
	assert.Equal(t, "carrier-a", c.Name)

	_, ok = cfg.CarrierFor("000000")
	assert.False(t, ok)

	assert.True(t, cfg.AcceptsClient("ccid-123"))
	assert.False(t, cfg.AcceptsClient("other"))
}

func TestSandboxValidate(t *testing.T) {
	dup := &SandboxConfig{Carriers: []CarrierConfig{
		{Name: "a", MCCMNC: []string{"1"}, Issuer: "https://a.example", AuthorizationEndpoint: "https://a.example/auth"},
		{Name: "b", MCCMNC: []string{"1"}, Issuer: "https://b.example", AuthorizationEndpoint: "https://b.example/auth"},
	}}
	assert.Error(t, dup.Validate())

	missing := &SandboxConfig{Carriers: []CarrierConfig{{Name: "a", Issuer: "https://a.example"}}}
	assert.Error(t, missing.Validate())

	open := &SandboxConfig{}
	require.NoError(t, open.Validate())
	assert.True(t, open.AcceptsClient("anyone"))
	assert.False(t, open.AcceptsClient(""))
}
