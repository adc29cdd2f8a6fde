package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/zenkey/internal/certs"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/policy"
)

var ErrInvalidRequest = errors.New("invalid request")

// VerificationService drives discovery and verification of one carrier
// endpoint. It keeps no state between runs.
type VerificationService struct {
	resolver core.Resolver
	verifier core.PackageVerifier
	store    core.CertificateStore
	policies *policy.Set
	observer Observer
}

func NewVerificationService(
	resolver core.Resolver,
	verifier core.PackageVerifier,
	store core.CertificateStore,
	policies *policy.Set,
) *VerificationService {
	return &VerificationService{
		resolver: resolver,
		verifier: verifier,
		store:    store,
		policies: policies,
	}
}

// WithObserver returns a copy of the service reporting transitions to obs.
func (s *VerificationService) WithObserver(obs Observer) *VerificationService {
	cp := *s
	cp.observer = obs
	return &cp
}

// Run executes the flow until a terminal state. Failures of discovery or
// verification are reported on the Outcome; Run only fails if the request
// is invalid or the local application identity cannot be determined.
func (s *VerificationService) Run(ctx context.Context, req VerifyRequest) (*Outcome, error) {
	app, err := s.identity(ctx, req)
	if err != nil {
		return nil, err
	}

	f := &flow{
		outcome:  &Outcome{ID: xid.New().String(), State: StateIdle, App: app},
		observer: s.observer,
	}
	logger := log.Ctx(ctx).With().Str("flow_id", f.outcome.ID).Logger()

	f.move(StateDiscoveryInFlight)
	result, err := s.resolver.ResolveConfiguration(ctx, req.MCCMNC, req.Prompt)
	switch {
	case err != nil:
		f.outcome.Err = fmt.Errorf("discovery: %w", err)
		f.move(StateDiscoveryFailed)
		return f.outcome, nil
	case result.IsNotFound():
		f.outcome.NotFound = result.NotFound
		f.move(StateProviderNotFound)
		return f.outcome, nil
	}

	f.outcome.Configuration = result.Configuration
	f.move(StateConfigurationResolved)
	logger.Debug().
		Str("issuer", result.Configuration.Issuer).
		Str("mcc_mnc", result.Configuration.MCCMNC).
		Msg("configuration resolved")

	if err := s.policies.Evaluate(result.Configuration); err != nil {
		f.outcome.Verification = &core.Verification{
			Verifier: "policy",
			Endpoint: result.Configuration.AuthorizationEndpoint,
			Reason:   err.Error(),
		}
		f.move(StateUnverified)
		return f.outcome, nil
	}

	f.move(StateAssetLinksInFlight)
	verification, err := s.verifier.Verify(ctx, result.Configuration.AuthorizationEndpoint, app)
	if err != nil {
		f.outcome.Err = fmt.Errorf("verification (%s): %w", s.verifier.Version(), err)
		f.move(StateAssetLinksFailed)
		return f.outcome, nil
	}
	f.outcome.Verification = verification
	if verification.Verified {
		f.move(StateVerified)
	} else {
		f.move(StateUnverified)
	}
	return f.outcome, nil
}

func (s *VerificationService) identity(ctx context.Context, req VerifyRequest) (core.AppIdentity, error) {
	if req.App != nil {
		if req.App.PackageName == "" || len(req.App.Fingerprints) == 0 {
			return core.AppIdentity{}, fmt.Errorf("%w: app identity needs a package name and fingerprints", ErrInvalidRequest)
		}
		return *req.App, nil
	}
	if req.PackageName == "" {
		return core.AppIdentity{}, fmt.Errorf("%w: package name is required", ErrInvalidRequest)
	}
	if s.store == nil {
		return core.AppIdentity{}, fmt.Errorf("%w: no certificate store configured", ErrInvalidRequest)
	}
	app, err := certs.AppIdentity(ctx, s.store, req.PackageName)
	if err != nil {
		return core.AppIdentity{}, fmt.Errorf("determining identity of '%s': %w", req.PackageName, err)
	}
	return app, nil
}

type flow struct {
	outcome  *Outcome
	observer Observer
}

func (f *flow) move(to State) {
	from := f.outcome.State
	if !CanTransition(from, to) {
		// unreachable unless Run is changed without updating the transition table
		panic(fmt.Sprintf("invalid transition %s -> %s", from, to))
	}
	f.outcome.State = to
	if f.observer != nil {
		f.observer(Transition{FlowID: f.outcome.ID, From: from, To: to})
	}
}
