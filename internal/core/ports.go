package core

import "context"

// Resolver resolves the OpenID configuration of a carrier.
type Resolver interface {
	// ResolveConfiguration runs a discovery call. mccMnc is optional, prompt
	// asks the discovery service to prompt the user for the carrier.
	ResolveConfiguration(ctx context.Context, mccMnc *string, prompt bool) (*DiscoveryResult, error)
}

// PackageVerifier decides whether an authorization endpoint trusts the
// local application.
// Implementations: asset links verifier, static allowlist verifier.
type PackageVerifier interface {
	// Version identifies the verification mechanism (e.g. "asset_links/v1").
	Version() string

	// Verify checks app against the authorization endpoint. An unverified
	// application is reported via Verification.Verified, not as an error.
	Verify(ctx context.Context, authorizationEndpoint string, app AppIdentity) (*Verification, error)
}

// CertificateStore supplies the raw signing certificates (DER) of installed
// application packages.
type CertificateStore interface {
	SigningCertificates(ctx context.Context, packageName string) ([][]byte, error)
}
