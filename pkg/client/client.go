// Package client is the entry point for applications that want to discover
// their user's carrier and verify their own package against it.
//
//	c := client.New("https://discover.myzenkey.com", clientID)
//	result, err := c.ResolveConfiguration(ctx, &mccMnc, false)
package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/darmiel/zenkey/internal/assetlinks"
	"github.com/darmiel/zenkey/internal/buildinfo"
	"github.com/darmiel/zenkey/internal/certs"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/discovery"
	"github.com/darmiel/zenkey/internal/policy"
	"github.com/darmiel/zenkey/internal/service"
	"github.com/darmiel/zenkey/internal/transport"
)

type Client struct {
	endpoint string
	clientID string

	base         transport.Transport
	interceptors []transport.Interceptor
	logger       *zerolog.Logger
	metrics      *transport.Metrics

	connectTimeout time.Duration
	readTimeout    time.Duration
	concurrency    int

	transport transport.Transport
	resolver  *discovery.Resolver
	verifier  core.PackageVerifier
}

type Option func(*Client)

// WithTransport replaces the default net/http transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) {
		c.base = t
	}
}

// WithInterceptors wraps the transport, first interceptor outermost.
func WithInterceptors(interceptors ...transport.Interceptor) Option {
	return func(c *Client) {
		c.interceptors = append(c.interceptors, interceptors...)
	}
}

func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = connect
		c.readTimeout = read
	}
}

// WithVerifier replaces the asset links verifier used by Verify.
func WithVerifier(v core.PackageVerifier) Option {
	return func(c *Client) {
		c.verifier = v
	}
}

// WithLogger logs every outgoing request at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = &l
	}
}

// WithMetrics records every outgoing request, see transport.NewMetrics.
func WithMetrics(m *transport.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithConcurrency bounds the parallel lookups of ResolveAll.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

func New(endpoint, clientID string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		clientID: clientID,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = transport.NewHTTPTransport()
	}

	interceptors := []transport.Interceptor{transport.WithHeader("User-Agent", buildinfo.UserAgent())}
	if c.logger != nil {
		interceptors = append(interceptors, transport.WithLogging(*c.logger))
	}
	if c.metrics != nil {
		interceptors = append(interceptors, transport.WithMetrics(c.metrics))
	}
	interceptors = append(interceptors, c.interceptors...)
	c.transport = transport.Chain(c.base, interceptors...)

	resolverOpts := []discovery.Option{discovery.WithTimeouts(c.connectTimeout, c.readTimeout)}
	if c.concurrency > 0 {
		resolverOpts = append(resolverOpts, discovery.WithConcurrency(c.concurrency))
	}
	c.resolver = discovery.New(c.transport, endpoint, clientID, resolverOpts...)

	if c.verifier == nil {
		c.verifier = assetlinks.New(c.transport, assetlinks.WithTimeouts(c.connectTimeout, c.readTimeout))
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) ClientID() string {
	return c.clientID
}

// Transport returns the intercepted transport shared by all operations.
func (c *Client) Transport() transport.Transport {
	return c.transport
}

// Resolver exposes the discovery resolver, e.g. to build a request without
// sending it.
func (c *Client) Resolver() *discovery.Resolver {
	return c.resolver
}

func (c *Client) ResolveConfiguration(ctx context.Context, mccMnc *string, prompt bool) (*core.DiscoveryResult, error) {
	return c.resolver.ResolveConfiguration(ctx, mccMnc, prompt)
}

func (c *Client) ResolveAll(ctx context.Context, candidates []string, prompt bool) []discovery.Resolution {
	return c.resolver.ResolveAll(ctx, candidates, prompt)
}

// FetchPackages always uses asset links, regardless of WithVerifier.
func (c *Client) FetchPackages(ctx context.Context, authorizationURI string) (core.PackageFingerprints, error) {
	v := assetlinks.New(c.transport, assetlinks.WithTimeouts(c.connectTimeout, c.readTimeout))
	return v.FetchPackages(ctx, authorizationURI)
}

func (c *Client) Verify(ctx context.Context, authorizationURI string, app core.AppIdentity) (*core.Verification, error) {
	return c.verifier.Verify(ctx, authorizationURI, app)
}

// Fingerprint formats the SHA-256 fingerprint of a DER signing certificate.
func (c *Client) Fingerprint(signature []byte) (string, error) {
	return certs.FingerprintOf(signature)
}

// Flow builds the full discovery and verification flow on top of this
// client. policies may be nil.
func (c *Client) Flow(store core.CertificateStore, policies *policy.Set) *service.VerificationService {
	return service.NewVerificationService(c.resolver, c.verifier, store, policies)
}
