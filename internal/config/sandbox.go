package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// SandboxConfig configures the sandbox carrier server ("zenkey serve"),
// which answers discovery and asset links requests like a carrier would.
type SandboxConfig struct {
	// DiscoverUI is returned as redirect_uri when no carrier matches.
	DiscoverUI string `yaml:"discover_ui" validate:"omitempty,url"`

	// ClientIDs restricts the accepted client_id values. Empty accepts any.
	ClientIDs []string `yaml:"client_ids"`

	Carriers   []CarrierConfig   `yaml:"carriers" validate:"dive"`
	AssetLinks []AssetLinkConfig `yaml:"asset_links" validate:"dive"`
}

// CarrierConfig is one carrier served by the sandbox.
type CarrierConfig struct {
	Name   string   `yaml:"name" validate:"required"`
	MCCMNC []string `yaml:"mcc_mnc" validate:"required,min=1,dive,required"`

	Issuer                string `yaml:"issuer" validate:"required,url"`
	AuthorizationEndpoint string `yaml:"authorization_endpoint" validate:"required,url"`
	TokenEndpoint         string `yaml:"token_endpoint" validate:"omitempty,url"`
	UserinfoEndpoint      string `yaml:"userinfo_endpoint" validate:"omitempty,url"`
	JWKSURI               string `yaml:"jwks_uri" validate:"omitempty,url"`
}

// AssetLinkConfig is one asset links statement served by the sandbox.
type AssetLinkConfig struct {
	PackageName  string   `yaml:"package_name" validate:"required"`
	Fingerprints []string `yaml:"sha256_cert_fingerprints" validate:"required"`
}

func LoadSandbox(path string) (*SandboxConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sandbox config: %w", err)
	}
	var cfg SandboxConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sandbox config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating sandbox config: %w", err)
	}
	return &cfg, nil
}

func (c *SandboxConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	seen := make(map[string]string)
	for _, carrier := range c.Carriers {
		for _, code := range carrier.MCCMNC {
			if other, ok := seen[code]; ok {
				return fmt.Errorf("mcc_mnc '%s' used by carriers '%s' and '%s'", code, other, carrier.Name)
			}
			seen[code] = carrier.Name
		}
	}
	return nil
}

// CarrierFor returns the carrier serving mccMnc.
func (c *SandboxConfig) CarrierFor(mccMnc string) (*CarrierConfig, bool) {
	for i := range c.Carriers {
		for _, code := range c.Carriers[i].MCCMNC {
			if code == mccMnc {
				return &c.Carriers[i], true
			}
		}
	}
	return nil, false
}

// AcceptsClient reports whether clientID may use the sandbox.
func (c *SandboxConfig) AcceptsClient(clientID string) bool {
	if len(c.ClientIDs) == 0 {
		return clientID != ""
	}
	for _, id := range c.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}
