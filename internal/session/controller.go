// Package session owns the active snapshot shown to users: static data until
// a live refresh succeeds, then the latest live snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"enrollment-insights/internal/aggregate"
	"enrollment-insights/internal/delta"
	"enrollment-insights/internal/domain"
	"enrollment-insights/internal/obs"
	"enrollment-insights/internal/snapshot"

	"go.uber.org/zap"
)

type State string

const (
	Idle      State = "idle"
	Loading   State = "loading"
	ReadyLive State = "ready_live"
	Error     State = "error"
)

var (
	ErrRefreshInFlight = errors.New("session: refresh already in progress")
	ErrLiveModeOff     = errors.New("session: live mode is disabled")
	ErrResolverPanic   = errors.New("session: resolver panicked")
)

// Resolver produces a fresh live snapshot. *source.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context) (*domain.Snapshot, error)
}

type Options struct {
	LiveMode bool
	// Timeout bounds a single refresh; zero means no bound beyond ctx.
	Timeout time.Duration
	Hook    obs.Hook
	Logger  *zap.Logger
	Now     func() time.Time
}

// Status is a point-in-time copy of the controller's state.
type Status struct {
	State         State     `json:"state"`
	Loading       bool      `json:"loading"`
	Error         string    `json:"error,omitempty"`
	LastRefreshed time.Time `json:"lastRefreshed"`
	IsLiveMode    bool      `json:"isLiveMode"`
	Source        string    `json:"source"`
}

type Controller struct {
	resolver Resolver
	opts     Options

	mu            sync.Mutex
	static        *domain.Snapshot
	active        *domain.Snapshot
	state         State
	lastErr       string
	lastRefreshed time.Time

	memoFor *domain.Snapshot
	memo    aggregate.Views
}

// New returns an Idle controller serving static. A nil static snapshot is
// replaced by an empty one.
func New(static *domain.Snapshot, resolver Resolver, opts Options) *Controller {
	if static == nil {
		static = snapshot.Empty()
	}
	if opts.Hook == nil {
		opts.Hook = obs.Nop
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		resolver: resolver,
		opts:     opts,
		static:   static,
		active:   static,
		state:    Idle,
	}
}

// Start performs the initial refresh when live mode is on. With live mode
// off it does nothing and the static snapshot stays active.
func (c *Controller) Start(ctx context.Context) error {
	if !c.opts.LiveMode {
		return nil
	}
	return c.Refresh(ctx)
}

// Refresh resolves a new live snapshot. Overlapping calls are rejected with
// ErrRefreshInFlight. On failure the active snapshot is left as it was.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.opts.LiveMode || c.resolver == nil {
		return ErrLiveModeOff
	}

	c.mu.Lock()
	if c.state == Loading {
		c.mu.Unlock()
		c.opts.Hook.Emit(obs.Event{Kind: obs.RefreshRejected, State: string(Loading), Err: ErrRefreshInFlight, At: c.opts.Now()})
		return ErrRefreshInFlight
	}
	c.state = Loading
	c.lastErr = ""
	c.mu.Unlock()
	c.emitState(Loading, nil)

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	snap, err := c.resolve(ctx)
	if err == nil && snap == nil {
		err = errors.New("session: resolver returned no snapshot")
	}

	c.mu.Lock()
	prev := c.active
	if err != nil {
		c.state = Error
		c.lastErr = err.Error()
	} else {
		c.state = ReadyLive
		c.lastErr = ""
		c.active = snap
		c.lastRefreshed = c.opts.Now()
	}
	next := c.state
	c.mu.Unlock()

	c.emitState(next, err)
	if err != nil {
		c.opts.Logger.Warn("live refresh failed, keeping current data", zap.Error(err))
		return err
	}
	fields := []zap.Field{
		zap.String("source", snap.Source),
		zap.Int("enrollments", len(snap.Enrollments)),
	}
	if changes := delta.Diff(prev, snap); !changes.Empty() {
		fields = append(fields,
			zap.Int("added", len(changes.Added)),
			zap.Int("updated", len(changes.Updated)),
			zap.Int("removed", len(changes.Removed)),
		)
	}
	c.opts.Logger.Info("live refresh done", fields...)
	return nil
}

// resolve turns a resolver panic into an error so the controller never
// stays in Loading.
func (c *Controller) resolve(ctx context.Context) (snap *domain.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fmt.Errorf("%w: %v", ErrResolverPanic, r)
		}
	}()
	return c.resolver.Resolve(ctx)
}

func (c *Controller) emitState(s State, err error) {
	c.opts.Hook.Emit(obs.Event{Kind: obs.StateChanged, State: string(s), Err: err, At: c.opts.Now()})
}

// Snapshot returns the active snapshot.
func (c *Controller) Snapshot() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Views aggregates the active snapshot. The result is cached until the
// active snapshot changes.
func (c *Controller) Views() aggregate.Views {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.memoFor != nil && c.memoFor == c.active {
		return c.memo
	}
	v, err := aggregate.ComputeErr(c.active)
	if err != nil {
		c.opts.Logger.Error("aggregation failed, serving empty views", zap.Error(err))
	}
	c.memoFor, c.memo = c.active, v
	return v
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:         c.state,
		Loading:       c.state == Loading,
		Error:         c.lastErr,
		LastRefreshed: c.lastRefreshed,
		IsLiveMode:    c.active != c.static && c.active.Source != domain.SourceStatic,
		Source:        c.active.Source,
	}
}
