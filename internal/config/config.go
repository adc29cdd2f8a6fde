package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/darmiel/zenkey/internal/policy"
	"github.com/darmiel/zenkey/internal/transport"
)

const (
	VerifierAssetLinks = "asset_links"
	VerifierStatic     = "static"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the application side configuration: who we are, where discovery
// runs and how carrier endpoints are verified.
type Config struct {
	// ClientID is sent with every discovery call and used for the
	// authorization request.
	ClientID string `yaml:"client_id" validate:"required"`

	// ClientSecret is only needed for the code exchange. It can also be
	// provided via saved credentials or ZENKEY_CLIENT_SECRET.
	ClientSecret string `yaml:"client_secret"`

	// DiscoveryEndpoint is the base URL of the discovery service, e.g.
	// "https://discoveryissuer.xcijv.com".
	DiscoveryEndpoint string `yaml:"discovery_endpoint" validate:"required,url"`

	// RedirectURI is where the carrier sends the authorization code.
	RedirectURI string `yaml:"redirect_uri" validate:"omitempty,url"`

	// Scopes requested in the authorization request. Defaults to "openid".
	Scopes []string `yaml:"scopes"`

	Timeouts TimeoutConfig     `yaml:"timeouts"`
	App      AppConfig         `yaml:"app"`
	Verifier VerifierConfig    `yaml:"verifier"`
	Policies []policy.Rule     `yaml:"policies"`
	Headers  map[string]string `yaml:"headers"`
}

// TimeoutConfig holds the default timeouts of all outbound calls.
type TimeoutConfig struct {
	Connect time.Duration `yaml:"connect" validate:"gte=0"`
	Read    time.Duration `yaml:"read" validate:"gte=0"`
}

// AppConfig describes the local application that is verified against the
// carrier's asset links.
type AppConfig struct {
	PackageName string `yaml:"package_name"`

	// CertificatesDir contains one directory per package with its signing
	// certificates (DER or PEM).
	CertificatesDir string `yaml:"certificates_dir"`
}

// VerifierConfig selects how a resolved authorization endpoint is verified.
type VerifierConfig struct {
	// Type is "asset_links" (default) or "static".
	Type string `yaml:"type" validate:"omitempty,oneof=asset_links static"`

	// Packages is the allowlist used by the static verifier:
	// package name -> SHA-256 certificate fingerprints.
	Packages map[string][]string `yaml:"packages"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses, defaults and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Timeouts.Connect == 0 {
		c.Timeouts.Connect = transport.DefaultConnectTimeout
	}
	if c.Timeouts.Read == 0 {
		c.Timeouts.Read = transport.DefaultReadTimeout
	}
	if c.Verifier.Type == "" {
		c.Verifier.Type = VerifierAssetLinks
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid"}
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Verifier.Type == VerifierStatic && len(c.Verifier.Packages) == 0 {
		return fmt.Errorf("verifier type 'static' requires verifier.packages")
	}
	for pkg, fps := range c.Verifier.Packages {
		if pkg == "" {
			return fmt.Errorf("verifier.packages contains an empty package name")
		}
		if len(fps) == 0 {
			return fmt.Errorf("verifier.packages '%s' has no fingerprints", pkg)
		}
	}

	compiled, err := policy.Compile(c.Policies)
	if err != nil {
		return fmt.Errorf("validating policies: %w", err)
	}
	c.Policies = compiled

	return nil
}
