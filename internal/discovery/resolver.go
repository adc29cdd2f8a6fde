// Package discovery resolves a carrier's OpenID configuration from an MCC/MNC.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/darmiel/zenkey/internal/convert"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/transport"
)

const (
	WellKnownPath = "/.well-known/openid_configuration"

	ParamClientID = "client_id"
	ParamPrompt   = "prompt"
	ParamMCCMNC   = "mcc_mnc"
)

// Resolver issues discovery calls against a single discovery endpoint.
// It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	transport transport.Transport
	endpoint  string
	clientID  string

	connectTimeout time.Duration
	readTimeout    time.Duration
	concurrency    int
}

var _ core.Resolver = (*Resolver)(nil)

type Option func(*Resolver)

// WithTimeouts overrides the transport default timeouts for discovery calls.
func WithTimeouts(connect, read time.Duration) Option {
	return func(r *Resolver) {
		r.connectTimeout = connect
		r.readTimeout = read
	}
}

// WithConcurrency bounds the number of parallel calls made by ResolveAll.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = n
	}
}

func New(tr transport.Transport, endpoint, clientID string, opts ...Option) *Resolver {
	r := &Resolver{
		transport:   tr,
		endpoint:    endpoint,
		clientID:    clientID,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Endpoint returns the configured discovery base URL.
func (r *Resolver) Endpoint() string {
	return r.endpoint
}

// BuildRequest builds the discovery request without sending it.
// prompt=true is only added if prompt is set, mcc_mnc only if mccMnc is not nil.
func (r *Resolver) BuildRequest(mccMnc *string, prompt bool) (*transport.Request, error) {
	base, err := transport.ParseAbsolute(r.endpoint)
	if err != nil {
		return nil, err
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + WellKnownPath
	base.RawQuery = ""
	base.Fragment = ""

	opts := []transport.RequestOption{
		transport.WithQuery(ParamClientID, r.clientID),
		transport.WithTimeouts(r.connectTimeout, r.readTimeout),
	}
	if prompt {
		opts = append(opts, transport.WithQuery(ParamPrompt, "true"))
	}
	if mccMnc != nil {
		opts = append(opts, transport.WithQuery(ParamMCCMNC, *mccMnc))
	}
	return transport.Get(base.String(), opts...)
}

// ResolveConfiguration runs one discovery call.
//
// The result is either the configuration variant or the provider-not-found
// variant. Errors are core.MalformedEndpointError (nothing was sent),
// core.TransportError or core.MalformedResponseError.
func (r *Resolver) ResolveConfiguration(
	ctx context.Context,
	mccMnc *string,
	prompt bool,
) (*core.DiscoveryResult, error) {
	req, err := r.BuildRequest(mccMnc, prompt)
	if err != nil {
		return nil, err
	}

	resp, err := r.transport.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := convert.DiscoveryResponse(resp.Body)
	if err != nil {
		return nil, withStatus(err, resp.StatusCode)
	}
	// carriers answer "not found" with 4xx, a configuration must come with 2xx
	if !result.IsNotFound() && !resp.OK() {
		return nil, &core.MalformedResponseError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("configuration returned with unexpected status"),
		}
	}
	return result, nil
}

func withStatus(err error, status int) error {
	var mre *core.MalformedResponseError
	if errors.As(err, &mre) {
		return &core.MalformedResponseError{StatusCode: status, Err: mre.Err}
	}
	return err
}
