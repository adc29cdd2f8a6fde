package discovery

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/darmiel/zenkey/internal/core"
)

// Resolution is the outcome of resolving one MCC/MNC candidate.
type Resolution struct {
	MCCMNC string
	Result *core.DiscoveryResult
	Err    error
}

// ResolveAll resolves all candidates concurrently. Candidates are independent:
// a failing candidate does not cancel the others. Results keep input order.
func (r *Resolver) ResolveAll(ctx context.Context, candidates []string, prompt bool) []Resolution {
	out := make([]Resolution, len(candidates))

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, candidate := range candidates {
		g.Go(func() error {
			mccMnc := candidate
			res, err := r.ResolveConfiguration(ctx, &mccMnc, prompt)
			out[i] = Resolution{MCCMNC: candidate, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
