package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"credentials-backend/internal/shared/metrics"
)

const (
	defaultLookupTimeout = 5 * time.Second
	defaultMaxInFlight   = 8
)

// Aggregator resolves a profile's credential references against the record
// store. Lookups for a given id list run concurrently and all-settle: a
// missing record or a store fault drops that id from the result and never
// aborts the remaining lookups.
type Aggregator struct {
	Repo        Repo
	Timeout     time.Duration
	MaxInFlight int
}

// ResolveResult is the outcome of an aggregate resolution. Missing counts ids
// with no record; Failed counts ids whose lookup hit a store fault. Callers
// that notify the user should emit at most one cumulative notification from
// Failed, never one per id.
type ResolveResult struct {
	Credentials []Credential
	Missing     int
	Failed      int
}

// Resolve issues one lookup per id and returns the successfully resolved
// records in completion order; callers needing a stable order sort themselves.
// An empty id list is a valid input yielding an empty result. The only
// aggregate-level failures are a malformed id list (ErrInvalidInput) and
// cancellation of ctx, which abandons in-flight lookups without reporting
// their results.
func (a *Aggregator) Resolve(ctx context.Context, ids []string) (ResolveResult, error) {
	if a == nil || a.Repo == nil {
		return ResolveResult{}, errors.New("credential aggregator not configured")
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ResolveResult{}, fmt.Errorf("%w: blank credential id in list", ErrInvalidInput)
		}
	}
	if len(ids) == 0 {
		return ResolveResult{Credentials: []Credential{}}, nil
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	maxInFlight := a.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}

	start := time.Now()

	type outcome struct {
		cred Credential
		err  error
	}
	outcomes := make([]outcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			cred, err := a.Repo.GetByID(lookupCtx, id)
			// Lookup failures are absorbed here, not returned: returning an
			// error would cancel the sibling lookups.
			outcomes[i] = outcome{cred: cred, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return ResolveResult{}, err
	}

	result := ResolveResult{Credentials: make([]Credential, 0, len(ids))}
	for _, out := range outcomes {
		switch {
		case out.err == nil:
			result.Credentials = append(result.Credentials, out.cred)
		case errors.Is(out.err, ErrNotFound):
			result.Missing++
		default:
			result.Failed++
		}
	}

	metrics.IncLookups(len(ids))
	metrics.IncLookupMisses(result.Missing)
	metrics.IncLookupFailures(result.Failed)
	metrics.ObserveResolveDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)

	return result, nil
}
