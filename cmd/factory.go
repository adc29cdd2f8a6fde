package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/darmiel/zenkey/internal/buildinfo"
	"github.com/darmiel/zenkey/internal/certs"
	"github.com/darmiel/zenkey/internal/cliconfig"
	"github.com/darmiel/zenkey/internal/config"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/policy"
	"github.com/darmiel/zenkey/internal/service"
	"github.com/darmiel/zenkey/internal/transport"
	"github.com/darmiel/zenkey/internal/verifiers"
	"github.com/darmiel/zenkey/pkg/client"
)

type Factory struct {
	// MCCMNC is the carrier hint of commands that resolve a single carrier.
	MCCMNC string
	Prompt bool
}

var f = &Factory{}

// LoadConfig reads the application config from --config if given, otherwise
// it is assembled from flags, environment and saved credentials. Flags and
// environment always win over the file.
func (f *Factory) LoadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := viper.GetString(DiscoveryEndpointKey); v != "" {
		cfg.DiscoveryEndpoint = v
	}
	if v := viper.GetString(ClientIDKey); v != "" {
		cfg.ClientID = v
	}
	if v := viper.GetString(ClientSecretKey); v != "" {
		cfg.ClientSecret = v
	}

	// prio 3: saved credential for the discovery host
	if cfg.DiscoveryEndpoint != "" && (cfg.ClientID == "" || cfg.ClientSecret == "") {
		if saved, err := cliconfig.Load(); err == nil {
			if cred, err := saved.GetCredential(cfg.DiscoveryEndpoint); err == nil {
				if cfg.ClientID == "" {
					cfg.ClientID = cred.ClientID
				}
				if cfg.ClientSecret == "" && cred.ClientID == cfg.ClientID {
					cfg.ClientSecret = cred.ClientSecret
				}
				if cfg.RedirectURI == "" {
					cfg.RedirectURI = cred.RedirectURI
				}
			} else if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
				log.Debug().Err(err).Msg("ignoring saved credentials")
			}
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (use --config, --discovery-endpoint and --client-id): %w", err)
	}
	return cfg, nil
}

// Headers returns the static headers of every outbound call: the configured
// headers and the user agent.
func (f *Factory) Headers(cfg *config.Config) http.Header {
	h := make(http.Header, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		h.Set(k, v)
	}
	if h.Get("User-Agent") == "" {
		h.Set("User-Agent", buildinfo.UserAgent())
	}
	return h
}

// Transport builds the outbound transport for cfg: static headers and debug
// logging.
func (f *Factory) Transport(cfg *config.Config) transport.Transport {
	headers := f.Headers(cfg)
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	interceptors := []transport.Interceptor{transport.WithLogging(log.Logger)}
	for _, k := range keys {
		interceptors = append(interceptors, transport.WithHeader(k, headers.Get(k)))
	}
	return transport.Chain(transport.NewHTTPTransport(), interceptors...)
}

// HTTPClient is the http.Client counterpart of Transport, used for the token
// exchange and key set fetches.
func (f *Factory) HTTPClient(cfg *config.Config) *http.Client {
	base := transport.NewHTTPTransport().Client()
	return &http.Client{
		Transport: &transport.RoundTripper{
			Next:   base.Transport,
			Header: f.Headers(cfg),
			Logger: &log.Logger,
		},
		Timeout: cfg.Timeouts.Connect + cfg.Timeouts.Read,
	}
}

func (f *Factory) GetClient(cfg *config.Config) (*client.Client, error) {
	tr := f.Transport(cfg)
	verifier, err := verifiers.Build(cfg.Verifier, cfg.Timeouts, tr)
	if err != nil {
		return nil, err
	}
	return client.New(cfg.DiscoveryEndpoint, cfg.ClientID,
		client.WithTransport(tr),
		client.WithTimeouts(cfg.Timeouts.Connect, cfg.Timeouts.Read),
		client.WithVerifier(verifier),
	), nil
}

// GetFlow wires the verification flow. The certificate store is only used if
// the request carries no explicit identity.
func (f *Factory) GetFlow(cfg *config.Config) (*service.VerificationService, error) {
	cli, err := f.GetClient(cfg)
	if err != nil {
		return nil, err
	}
	policies, err := policy.NewSet(cfg.Policies)
	if err != nil {
		return nil, fmt.Errorf("compiling policies: %w", err)
	}
	var store core.CertificateStore
	if cfg.App.CertificatesDir != "" {
		store = certs.NewDirStore(cfg.App.CertificatesDir)
	}
	return cli.Flow(store, policies), nil
}

func (f *Factory) mccMncHint() *string {
	if f.MCCMNC == "" {
		return nil
	}
	return &f.MCCMNC
}

func (f *Factory) bindCarrierFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&f.MCCMNC, "mcc-mnc", "m", "", "MCC/MNC of the user's carrier (e.g. 310260)")
	flags.BoolVar(&f.Prompt, "prompt", false, "Ask the discovery service to show the carrier selection UI")
}
