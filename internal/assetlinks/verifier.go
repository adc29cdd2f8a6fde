// Package assetlinks fetches Digital Asset Links statements of a carrier's
// authorization endpoint and checks the local application against them.
package assetlinks

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/darmiel/zenkey/internal/convert"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/transport"
)

const (
	WellKnownPath = "/.well-known/assetlinks.json"
	Version       = "asset_links/v1"
)

// Verifier is stateless: every call fetches the statements again.
type Verifier struct {
	transport transport.Transport

	connectTimeout time.Duration
	readTimeout    time.Duration
}

var _ core.PackageVerifier = (*Verifier)(nil)

type Option func(*Verifier)

// WithTimeouts overrides the transport default timeouts.
func WithTimeouts(connect, read time.Duration) Option {
	return func(v *Verifier) {
		v.connectTimeout = connect
		v.readTimeout = read
	}
}

func New(tr transport.Transport, opts ...Option) *Verifier {
	v := &Verifier{transport: tr}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Verifier) Version() string {
	return Version
}

// URLFor returns the asset links URL of the origin of authorizationURI.
// Path, query and fragment of the input are discarded.
func URLFor(authorizationURI string) (string, error) {
	u, err := url.Parse(authorizationURI)
	if err != nil {
		return "", &core.MalformedEndpointError{Endpoint: authorizationURI, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &core.MalformedEndpointError{
			Endpoint: authorizationURI,
			Err:      fmt.Errorf("missing scheme or authority"),
		}
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: WellKnownPath}).String(), nil
}

// FetchPackages returns the package fingerprints declared by the origin of
// authorizationURI.
func (v *Verifier) FetchPackages(ctx context.Context, authorizationURI string) (core.PackageFingerprints, error) {
	target, err := URLFor(authorizationURI)
	if err != nil {
		return nil, err
	}
	req, err := transport.Get(target, transport.WithTimeouts(v.connectTimeout, v.readTimeout))
	if err != nil {
		return nil, err
	}

	resp, err := v.transport.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &core.MalformedResponseError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("fetching %s", target),
		}
	}

	packages, err := convert.AssetLinks(resp.Body)
	if err != nil {
		return nil, err
	}
	return packages, nil
}

// Verify reports whether the origin of authorizationEndpoint declares app.
func (v *Verifier) Verify(
	ctx context.Context,
	authorizationEndpoint string,
	app core.AppIdentity,
) (*core.Verification, error) {
	packages, err := v.FetchPackages(ctx, authorizationEndpoint)
	if err != nil {
		return nil, err
	}
	return Match(packages, Version, authorizationEndpoint, app), nil
}

// Match checks app against declared packages. It is shared by all verifiers
// working on package fingerprint declarations.
func Match(packages core.PackageFingerprints, version, endpoint string, app core.AppIdentity) *core.Verification {
	res := &core.Verification{
		Verifier: version,
		Endpoint: endpoint,
	}
	if _, ok := packages[app.PackageName]; !ok {
		res.Reason = fmt.Sprintf("package '%s' not declared", app.PackageName)
		return res
	}
	for _, fp := range app.Fingerprints {
		if packages.Declares(app.PackageName, fp) {
			res.Verified = true
			res.MatchedFingerprint = fp
			return res
		}
	}
	res.Reason = fmt.Sprintf("no signing certificate of '%s' matches the declared fingerprints", app.PackageName)
	return res
}
