// Package verifiers selects the PackageVerifier implementation at
// configuration time.
package verifiers

import (
	"fmt"

	"github.com/darmiel/zenkey/internal/assetlinks"
	"github.com/darmiel/zenkey/internal/config"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/transport"
)

// Build returns the verifier configured by cfg. Outbound calls use tr with
// the given default timeouts.
func Build(cfg config.VerifierConfig, timeouts config.TimeoutConfig, tr transport.Transport) (core.PackageVerifier, error) {
	switch cfg.Type {
	case "", config.VerifierAssetLinks:
		return assetlinks.New(tr, assetlinks.WithTimeouts(timeouts.Connect, timeouts.Read)), nil
	case config.VerifierStatic:
		v, err := NewStatic(cfg.Packages)
		if err != nil {
			return nil, fmt.Errorf("building static verifier: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown verifier type %q", cfg.Type)
	}
}
