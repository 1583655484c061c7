// Package respool bounds how many resolutions run concurrently against the
// read-mostly registry and stats snapshots. The CLI's resolve-batch command
// uses it; the HTTP surface resolves each request directly, outside any
// Pool.
package respool

import (
	"context"

	"golang.org/x/sync/errgroup"

	"identityresolver/internal/model"
	"identityresolver/internal/registry"
	"identityresolver/internal/resolver"
)

// Pool runs resolutions with a fixed upper bound on concurrency.
type Pool struct {
	limit int
}

// New returns a Pool that runs at most limit resolutions at a time. A
// non-positive limit means unbounded.
func New(limit int) *Pool {
	return &Pool{limit: limit}
}

// Request is one phone number's resolution input.
type Request struct {
	PhoneNumber  string
	Entries      []model.CrowdEntry
	TotalNumbers int
}

// Result pairs a Request's phone number with its resolved profile.
type Result struct {
	PhoneNumber string
	Profile     model.IdentityProfile
}

// ResolveAll runs Resolve for every request, bounded by the pool's limit.
// globalStats and reg are read-only snapshots shared across every goroutine.
// Returns an error only if ctx is cancelled before all requests complete;
// resolver.Resolve itself never errors.
func (p *Pool) ResolveAll(ctx context.Context, requests []Request, globalStats map[string]model.TokenStats, reg *registry.Registry, clock resolver.Clock) ([]Result, error) {
	results := make([]Result, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}

	for i, req := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{
				PhoneNumber: req.PhoneNumber,
				Profile:     resolver.Resolve(req.Entries, req.TotalNumbers, globalStats, reg, clock),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
