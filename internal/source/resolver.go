// Package source decides where live data comes from: the proxy first, then
// the Airtable API directly. It never falls back to static data itself; that
// is the session's job.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"enrollment-insights/internal/airtable"
	"enrollment-insights/internal/config"
	"enrollment-insights/internal/domain"
	"enrollment-insights/internal/httpx"
	"enrollment-insights/internal/obs"
	"enrollment-insights/internal/proxy"
	"enrollment-insights/internal/transform"

	"go.uber.org/zap"
)

// ErrNoTiers is joined into the exhaustion error when every tier was skipped.
var ErrNoTiers = errors.New("source: no tier enabled")

type Resolver struct {
	Tiers []Tier
	Hook  obs.Hook
	Now   func() time.Time
}

func New(hook obs.Hook, tiers ...Tier) *Resolver {
	if hook == nil {
		hook = obs.Nop
	}
	return &Resolver{Tiers: tiers, Hook: hook, Now: time.Now}
}

// NewFromConfig wires the proxy and direct tiers from cfg. Retries are
// configured here, once, for both tiers.
func NewFromConfig(cfg config.Config, hook obs.Hook, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	pc := proxy.NewClient(cfg.ProxyBaseURL)
	pc.Retry = httpx.RetryAttempts(cfg.HTTPRetryAttempts)
	pc.Retry.Logger = logger

	ac := airtable.FromConfig(cfg, logger)

	return New(hook,
		ProxyTier{Client: pc, On: cfg.ProxyEnabled},
		DirectTier{Client: ac},
	)
}

// Resolve tries each enabled tier in order and transforms the first complete
// set of tables. When none succeeds the error matches
// airtable.ErrSourceUnavailable and carries every tier's error.
func (r *Resolver) Resolve(ctx context.Context) (*domain.Snapshot, error) {
	hook := r.Hook
	if hook == nil {
		hook = obs.Nop
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	id := obs.NewAttemptID()
	hook.Emit(obs.Event{Kind: obs.AttemptStarted, AttemptID: id, At: now()})

	var errs []error
	for _, t := range r.Tiers {
		if !t.Enabled() {
			hook.Emit(obs.Event{Kind: obs.TierSkipped, AttemptID: id, Tier: t.Name(), At: now()})
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := now()
		raw, err := t.Fetch(ctx)
		elapsed := now().Sub(start)
		if err != nil {
			err = fmt.Errorf("%s: %w", t.Name(), err)
			errs = append(errs, err)
			hook.Emit(obs.Event{Kind: obs.TierFailed, AttemptID: id, Tier: t.Name(), Duration: elapsed, Err: err, At: now()})
			continue
		}

		snap := transform.Transform(raw, t.Name())
		hook.Emit(obs.Event{
			Kind:      obs.TierSucceeded,
			AttemptID: id,
			Tier:      t.Name(),
			Records:   len(snap.Enrollments),
			Duration:  elapsed,
			At:        now(),
		})
		return snap, nil
	}

	if len(errs) == 0 {
		errs = append(errs, ErrNoTiers)
	}
	err := errors.Join(append([]error{airtable.ErrSourceUnavailable}, errs...)...)
	hook.Emit(obs.Event{Kind: obs.FellBack, AttemptID: id, Err: err, At: now()})
	return nil, err
}
