package cliconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

var ErrCredentialNotFound = fmt.Errorf("credential not found")

// Credential is the OAuth client registered with a carrier's discovery service.
type Credential struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

// CLIConfig maps discovery hosts to saved credentials.
type CLIConfig struct {
	Credentials map[string]*Credential `json:"credentials"`
}

// PathEnv overrides the location of the CLI config file.
const PathEnv = "ZENKEY_CLI_CONFIG"

func GetConfigPath() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	return filepath.Join(home, ".zenkey", "config.json"), nil
}

// Load reads the CLI config. A missing file yields an empty config.
func Load() (*CLIConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &CLIConfig{Credentials: map[string]*Credential{}}, nil
		}
		return nil, fmt.Errorf("opening config file '%s': %w", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var cfg CLIConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config file '%s': %w", path, err)
	}
	if cfg.Credentials == nil {
		cfg.Credentials = map[string]*Credential{}
	}
	return &cfg, nil
}

func Save(cfg *CLIConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory '%s': %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file '%s' for writing: %w", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config to file '%s': %w", path, err)
	}
	return nil
}

func hostOf(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing discovery endpoint '%s': %w", endpoint, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("discovery endpoint '%s' has no host", endpoint)
	}
	return u.Host, nil
}

func (c *CLIConfig) GetCredential(endpoint string) (*Credential, error) {
	host, err := hostOf(endpoint)
	if err != nil {
		return nil, err
	}
	cred, ok := c.Credentials[host]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	return cred, nil
}

func (c *CLIConfig) SetCredential(endpoint string, cred *Credential) error {
	host, err := hostOf(endpoint)
	if err != nil {
		return err
	}
	if c.Credentials == nil {
		c.Credentials = map[string]*Credential{}
	}
	c.Credentials[host] = cred
	return nil
}

// RemoveCredential reports whether a credential was stored for the endpoint.
func (c *CLIConfig) RemoveCredential(endpoint string) (bool, error) {
	host, err := hostOf(endpoint)
	if err != nil {
		return false, err
	}
	if _, ok := c.Credentials[host]; !ok {
		return false, nil
	}
	delete(c.Credentials, host)
	return true, nil
}
