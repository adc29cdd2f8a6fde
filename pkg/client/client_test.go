package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/zenkey/internal/api"
	"github.com/darmiel/zenkey/internal/config"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/service"
	"github.com/darmiel/zenkey/internal/transport"
	"github.com/darmiel/zenkey/internal/verifiers"
)

func newSandbox(t *testing.T, links ...config.AssetLinkConfig) *httptest.Server {
	t.Helper()
	sandbox := &config.SandboxConfig{AssetLinks: links}
	srv, err := api.NewServer(sandbox, prometheus.NewRegistry())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	sandbox.Carriers = []config.CarrierConfig{{
		Name:                  "sandbox",
		MCCMNC:                []string{"310260"},
		Issuer:                ts.URL,
		AuthorizationEndpoint: ts.URL + "/authorize",
	}}
	return ts
}

// recorder remembers the headers of every request passing through.
type recorder struct {
	mu      sync.Mutex
	headers []string
}

func (r *recorder) intercept(next transport.Transport) transport.Transport {
	return transport.Func(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		r.mu.Lock()
		r.headers = append(r.headers, req.Header.Get("User-Agent"))
		r.mu.Unlock()
		return next.Execute(ctx, req)
	})
}

func TestResolveConfiguration(t *testing.T) {
	ts := newSandbox(t)
	rec := &recorder{}
	c := New(ts.URL, "ccid-1", WithInterceptors(rec.intercept), WithTimeouts(time.Second, time.Second))

	mccMnc := "310260"
	result, err := c.ResolveConfiguration(context.Background(), &mccMnc, false)
	require.NoError(t, err)
	require.Equal(t, core.DiscoveryConfiguration, result.Kind)
	assert.Equal(t, ts.URL, result.Configuration.Issuer)

	result, err = c.ResolveConfiguration(context.Background(), nil, false)
	require.NoError(t, err)
	assert.True(t, result.IsNotFound())

	require.Len(t, rec.headers, 2)
	assert.True(t, strings.HasPrefix(rec.headers[0], "zenkey/"))
}

func TestWithMetrics(t *testing.T) {
	ts := newSandbox(t)
	reg := prometheus.NewRegistry()
	m, err := transport.NewMetrics(reg)
	require.NoError(t, err)

	c := New(ts.URL, "ccid-1", WithMetrics(m), WithLogger(zerolog.Nop()))
	_, err = c.ResolveConfiguration(context.Background(), ptr("310260"), false)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "zenkey_transport_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolveAll(t *testing.T) {
	ts := newSandbox(t)
	c := New(ts.URL, "ccid-1", WithConcurrency(1))

	results := c.ResolveAll(context.Background(), []string{"999999", "310260"}, false)
	require.Len(t, results, 2)
	assert.True(t, results[0].Result.IsNotFound())
	assert.Equal(t, "310260", results[1].MCCMNC)
	assert.False(t, results[1].Result.IsNotFound())
}

func TestFetchPackagesAndVerify(t *testing.T) {
	ts := newSandbox(t, config.AssetLinkConfig{PackageName: "com.example.app", Fingerprints: []string{"AA:BB"}})
	c := New(ts.URL, "ccid-1")

	packages, err := c.FetchPackages(context.Background(), ts.URL+"/authorize")
	require.NoError(t, err)
	assert.Equal(t, core.PackageFingerprints{"com.example.app": {"AA:BB"}}, packages)

	v, err := c.Verify(context.Background(), ts.URL+"/authorize", core.AppIdentity{
		PackageName:  "com.example.app",
		Fingerprints: []string{"aa:bb"},
	})
	require.NoError(t, err)
	assert.True(t, v.Verified)
}

func TestWithVerifier(t *testing.T) {
	ts := newSandbox(t)
	static, err := verifiers.NewStatic(core.PackageFingerprints{"com.example.app": {"CC:DD"}})
	require.NoError(t, err)
	c := New(ts.URL, "ccid-1", WithVerifier(static))

	v, err := c.Verify(context.Background(), ts.URL+"/authorize", core.AppIdentity{
		PackageName:  "com.example.app",
		Fingerprints: []string{"CC:DD"},
	})
	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, verifiers.StaticVersion, v.Verifier)

	out, err := c.Flow(nil, nil).Run(context.Background(), service.VerifyRequest{
		MCCMNC: ptr("310260"),
		App:    &core.AppIdentity{PackageName: "com.example.app", Fingerprints: []string{"CC:DD"}},
	})
	require.NoError(t, err)
	assert.Equal(t, service.StateVerified, out.State)
}

func TestFingerprint(t *testing.T) {
	c := New("https://discover.example", "ccid-1")
	_, err := c.Fingerprint([]byte("not a certificate"))
	assert.ErrorIs(t, err, core.ErrCertificate)
}

func TestSandboxInfo(t *testing.T) {
	ts := newSandbox(t)
	c := New(ts.URL, "ccid-1")

	info, correlation, err := c.SandboxInfo(context.Background(), ts.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "ZenKey", info.Service)
	assert.NotEmpty(t, correlation)
}

func TestAPIError(t *testing.T) {
	ts := newSandbox(t)
	c := New(ts.URL, "ccid-1")

	_, err := c.get(context.Background(), ts.URL+api.AssetLinksRoute, nil)
	var apiErr APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "no asset links configured", apiErr.Message)
	assert.NotEmpty(t, apiErr.CorrelationID)
}

func ptr(s string) *string {
	return &s
}
