package verifiers

import (
	"context"
	"fmt"

	"github.com/darmiel/zenkey/internal/assetlinks"
	"github.com/darmiel/zenkey/internal/core"
)

const StaticVersion = "static/v1"

// StaticVerifier trusts a fixed allowlist of package fingerprints for every
// authorization endpoint. It is meant for carriers that do not publish asset
// links and for offline testing.
type StaticVerifier struct {
	packages core.PackageFingerprints
}

var _ core.PackageVerifier = (*StaticVerifier)(nil)

func NewStatic(packages map[string][]string) (*StaticVerifier, error) {
	if len(packages) == 0 {
		return nil, fmt.Errorf("no packages configured")
	}
	copied := make(core.PackageFingerprints, len(packages))
	for pkg, fps := range packages {
		copied[pkg] = append([]string(nil), fps...)
	}
	return &StaticVerifier{packages: copied}, nil
}

func (s *StaticVerifier) Version() string {
	return StaticVersion
}

func (s *StaticVerifier) Verify(_ context.Context, endpoint string, app core.AppIdentity) (*core.Verification, error) {
	return assetlinks.Match(s.packages, StaticVersion, endpoint, app), nil
}
