package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/zenkey/internal/certs"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/policy"
)

type resolverFunc func(ctx context.Context, mccMnc *string, prompt bool) (*core.DiscoveryResult, error)

func (f resolverFunc) ResolveConfiguration(ctx context.Context, mccMnc *string, prompt bool) (*core.DiscoveryResult, error) {
	return f(ctx, mccMnc, prompt)
}

type fakeVerifier struct {
	calls  int
	result *core.Verification
	err    error
}

func (f *fakeVerifier) Version() string { return "fake/v1" }

func (f *fakeVerifier) Verify(_ context.Context, endpoint string, _ core.AppIdentity) (*core.Verification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Endpoint = endpoint
	return &res, nil
}

var (
	resolved = core.OpenIDConfiguration{
		Issuer:                "https://iss.carrier.example",
		AuthorizationEndpoint: "https://iss.carrier.example/authorize",
		MCCMNC:                "310260",
	}
	app = &core.AppIdentity{PackageName: "com.example.app", Fingerprints: []string{"AA:BB"}}
)

func resolveTo(res *core.DiscoveryResult, err error) core.Resolver {
	return resolverFunc(func(context.Context, *string, bool) (*core.DiscoveryResult, error) {
		return res, err
	})
}

func record(states *[]State) Observer {
	return func(t Transition) {
		*states = append(*states, t.To)
	}
}

func TestRunStates(t *testing.T) {
	redirect := "https://ui.example"
	tests := []struct {
		name       string
		resolver   core.Resolver
		verifier   *fakeVerifier
		policies   []policy.Rule
		wantStates []State
		wantErr    error
		verifyCall int
	}{
		{
			name:       "verified",
			resolver:   resolveTo(core.ConfigurationResult(resolved), nil),
			verifier:   &fakeVerifier{result: &core.Verification{Verified: true}},
			wantStates: []State{StateDiscoveryInFlight, StateConfigurationResolved, StateAssetLinksInFlight, StateVerified},
			verifyCall: 1,
		},
		{
			name:       "unverified",
			resolver:   resolveTo(core.ConfigurationResult(resolved), nil),
			verifier:   &fakeVerifier{result: &core.Verification{Reason: "nope"}},
			wantStates: []State{StateDiscoveryInFlight, StateConfigurationResolved, StateAssetLinksInFlight, StateUnverified},
			verifyCall: 1,
		},
		{
			name:       "asset links failed",
			resolver:   resolveTo(core.ConfigurationResult(resolved), nil),
			verifier:   &fakeVerifier{err: &core.MalformedResponseError{Err: errors.New("bad")}},
			wantStates: []State{StateDiscoveryInFlight, StateConfigurationResolved, StateAssetLinksInFlight, StateAssetLinksFailed},
			wantErr:    core.ErrMalformedResponse,
			verifyCall: 1,
		},
		{
			name:       "provider not found",
			resolver:   resolveTo(core.NotFoundResult("x", &redirect), nil),
			verifier:   &fakeVerifier{},
			wantStates: []State{StateDiscoveryInFlight, StateProviderNotFound},
		},
		{
			name:       "discovery failed",
			resolver:   resolveTo(nil, &core.TransportError{Op: "GET", Err: errors.New("timeout")}),
			verifier:   &fakeVerifier{},
			wantStates: []State{StateDiscoveryInFlight, StateDiscoveryFailed},
			wantErr:    core.ErrTransport,
		},
		{
			name:       "policy rejects",
			resolver:   resolveTo(core.ConfigurationResult(resolved), nil),
			verifier:   &fakeVerifier{result: &core.Verification{Verified: true}},
			policies:   []policy.Rule{{Name: "other carrier only", Expr: `mcc_mnc == "311480"`}},
			wantStates: []State{StateDiscoveryInFlight, StateConfigurationResolved, StateUnverified},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := policy.NewSet(tt.policies)
			require.NoError(t, err)

			var states []State
			svc := NewVerificationService(tt.resolver, tt.verifier, nil, set).WithObserver(record(&states))

			out, err := svc.Run(context.Background(), VerifyRequest{App: app})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStates, states)
			assert.Equal(t, tt.wantStates[len(tt.wantStates)-1], out.State)
			assert.True(t, out.State.Terminal())
			assert.NotEmpty(t, out.ID)
			assert.Equal(t, tt.verifyCall, tt.verifier.calls)

			if tt.wantErr != nil {
				assert.ErrorIs(t, out.Err, tt.wantErr)
			} else {
				assert.NoError(t, out.Err)
			}
		})
	}
}

func TestRunProviderNotFoundCarriesRedirect(t *testing.T) {
	redirect := "https://ui.example"
	svc := NewVerificationService(resolveTo(core.NotFoundResult("x", &redirect), nil), &fakeVerifier{}, nil, nil)

	out, err := svc.Run(context.Background(), VerifyRequest{App: app})
	require.NoError(t, err)
	assert.Equal(t, StateProviderNotFound, out.State)
	assert.NoError(t, out.Err)
	require.NotNil(t, out.NotFound)
	assert.Equal(t, &redirect, out.NotFound.DiscoverUIEndpoint)
	assert.Nil(t, out.Configuration)
}

func TestRunPassesDiscoveryParameters(t *testing.T) {
	var gotMCCMNC *string
	var gotPrompt bool
	resolver := resolverFunc(func(_ context.Context, mccMnc *string, prompt bool) (*core.DiscoveryResult, error) {
		gotMCCMNC, gotPrompt = mccMnc, prompt
		return core.NotFoundResult("x", nil), nil
	})
	mccMnc := "310260"
	_, err := NewVerificationService(resolver, &fakeVerifier{}, nil, nil).
		Run(context.Background(), VerifyRequest{App: app, MCCMNC: &mccMnc, Prompt: true})
	require.NoError(t, err)
	assert.Equal(t, &mccMnc, gotMCCMNC)
	assert.True(t, gotPrompt)
}

func TestRunIdentityFromStore(t *testing.T) {
	verifier := &fakeVerifier{result: &core.Verification{Verified: true}}
	svc := NewVerificationService(resolveTo(core.ConfigurationResult(resolved), nil), verifier, certs.StaticStore{
		"com.example.app": {[]byte("not a certificate")},
	}, nil)

	_, err := svc.Run(context.Background(), VerifyRequest{PackageName: "com.example.app"})
	assert.ErrorIs(t, err, core.ErrCertificate)

	_, err = svc.Run(context.Background(), VerifyRequest{PackageName: "missing"})
	assert.ErrorIs(t, err, certs.ErrPackageNotFound)
	assert.Equal(t, 0, verifier.calls)
}

func TestRunInvalidRequest(t *testing.T) {
	svc := NewVerificationService(resolveTo(nil, nil), &fakeVerifier{}, nil, nil)

	_, err := svc.Run(context.Background(), VerifyRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Run(context.Background(), VerifyRequest{PackageName: "com.example.app"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Run(context.Background(), VerifyRequest{App: &core.AppIdentity{PackageName: "x"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StateIdle, StateDiscoveryInFlight))
	assert.True(t, CanTransition(StateConfigurationResolved, StateUnverified))
	assert.False(t, CanTransition(StateIdle, StateVerified))
	assert.False(t, CanTransition(StateProviderNotFound, StateAssetLinksInFlight))
	for s := range stateNames {
		if s.Terminal() {
			assert.Empty(t, transitions[s], s.String())
		}
	}
}
