package core

import "strings"

// OpenIDConfiguration is the resolved OpenID configuration of a carrier.
type OpenIDConfiguration struct {
	// Issuer is the OpenID issuer of the carrier. Always set.
	Issuer string `yaml:"issuer" json:"issuer"`

	// AuthorizationEndpoint is where the user is sent to authorize. Always set.
	AuthorizationEndpoint string `yaml:"authorization_endpoint" json:"authorization_endpoint"`

	// MCCMNC echoes the carrier the configuration was resolved for.
	// Empty if the discovery service did not echo it.
	MCCMNC string `yaml:"mcc_mnc" json:"mcc_mnc"`

	// The remaining endpoints are optional and only present if the
	// carrier publishes them in its discovery document.
	TokenEndpoint    string `yaml:"token_endpoint,omitempty" json:"token_endpoint,omitempty"`
	UserinfoEndpoint string `yaml:"userinfo_endpoint,omitempty" json:"userinfo_endpoint,omitempty"`
	JWKSURI          string `yaml:"jwks_uri,omitempty" json:"jwks_uri,omitempty"`
}

// ProviderNotFound signals that the discovery service could not find a carrier
// for the request. It is not an error: the host application is expected to
// send the user to DiscoverUIEndpoint (if any) to select a carrier.
type ProviderNotFound struct {
	// Error is the raw error code returned by the discovery service.
	Error string `json:"error,omitempty"`

	// DiscoverUIEndpoint is nil when the response carried no usable redirect.
	DiscoverUIEndpoint *string `json:"discover_ui_endpoint,omitempty"`
}

// DiscoveryKind tags the variant held by a DiscoveryResult.
type DiscoveryKind int

const (
	DiscoveryConfiguration DiscoveryKind = iota + 1
	DiscoveryProviderNotFound
)

func (k DiscoveryKind) String() string {
	switch k {
	case DiscoveryConfiguration:
		return "configuration"
	case DiscoveryProviderNotFound:
		return "provider_not_found"
	default:
		return "unknown"
	}
}

// DiscoveryResult is the outcome of a single discovery call.
// Exactly one of Configuration and NotFound is set, selected by Kind.
type DiscoveryResult struct {
	Kind          DiscoveryKind
	Configuration *OpenIDConfiguration
	NotFound      *ProviderNotFound
}

// ConfigurationResult wraps a resolved configuration.
func ConfigurationResult(cfg OpenIDConfiguration) *DiscoveryResult {
	return &DiscoveryResult{Kind: DiscoveryConfiguration, Configuration: &cfg}
}

// NotFoundResult wraps a provider-not-found signal.
func NotFoundResult(code string, redirect *string) *DiscoveryResult {
	return &DiscoveryResult{
		Kind: DiscoveryProviderNotFound,
		NotFound: &ProviderNotFound{
			Error:              code,
			DiscoverUIEndpoint: redirect,
		},
	}
}

// IsNotFound reports whether the result is the provider-not-found variant.
func (r *DiscoveryResult) IsNotFound() bool {
	return r != nil && r.Kind == DiscoveryProviderNotFound
}

// PackageFingerprints maps an application package name to the SHA-256
// certificate fingerprints a web origin declares for it, in declared order.
type PackageFingerprints map[string][]string

// Declares reports whether pkg is declared with the given fingerprint.
// Fingerprints are compared case-insensitively.
func (p PackageFingerprints) Declares(pkg, fingerprint string) bool {
	for _, fp := range p[pkg] {
		if strings.EqualFold(fp, fingerprint) {
			return true
		}
	}
	return false
}

// AppIdentity identifies the local application by its package name and the
// fingerprints of its signing certificates.
type AppIdentity struct {
	PackageName  string   `json:"package_name"`
	Fingerprints []string `json:"fingerprints"`
}

// Verification is the result of checking an AppIdentity against an
// authorization endpoint.
type Verification struct {
	// Verified is true if the endpoint declares the application.
	Verified bool `json:"verified"`

	// Verifier is the version of the verifier that produced this result.
	Verifier string `json:"verifier"`

	// Endpoint is the authorization endpoint that was checked.
	Endpoint string `json:"endpoint"`

	// MatchedFingerprint is set when Verified is true.
	MatchedFingerprint string `json:"matched_fingerprint,omitempty"`

	// Reason explains an unverified result.
	Reason string `json:"reason,omitempty"`
}
