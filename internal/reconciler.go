package internal

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

// Reconciler polls the live login state of the active profile, combines it
// with the expiry oracle and adapts its own polling cadence.
//
// Tick, RequestLogin and WaitForLogin mutate state and must be called from
// one goroutine. While Run is active that goroutine is Run's; other
// goroutines use Refresh.
type Reconciler struct {
	registry   *ProfileRegistry
	oracle     ExpiryOracle
	checker    IdentityChecker
	dispatcher LoginDispatcher
	presenter  Presenter
	logger     arbor.ILogger

	intervals  Intervals
	thresholds Thresholds
	now        func() time.Time

	active   string
	mode     Cadence
	sched    *Scheduler
	requests chan string
}

type ReconcilerConfig struct {
	Registry   *ProfileRegistry
	Oracle     ExpiryOracle
	Checker    IdentityChecker
	Dispatcher LoginDispatcher
	Presenter  Presenter
	Logger     arbor.ILogger
	Intervals  Intervals
	Thresholds Thresholds
	Now        func() time.Time
	// Profile overrides the persisted active profile without saving it.
	Profile string
}

// NewReconciler starts in Normal cadence on c.Profile, or on the persisted
// active profile when that is empty.
func NewReconciler(c ReconcilerConfig) *Reconciler {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	active := c.Profile
	if active == "" {
		active = c.Registry.LoadActive()
	}
	return &Reconciler{
		registry:   c.Registry,
		oracle:     c.Oracle,
		checker:    c.Checker,
		dispatcher: c.Dispatcher,
		presenter:  c.Presenter,
		logger:     c.Logger,
		intervals:  c.Intervals,
		thresholds: c.Thresholds,
		now:        now,
		active:     active,
		mode:       CadenceNormal,
		sched:      NewScheduler(),
		requests:   make(chan string, 16),
	}
}

func (r *Reconciler) ActiveProfile() string {
	return r.active
}

func (r *Reconciler) Mode() Cadence {
	return r.mode
}

// Interval is the polling period for the current cadence.
func (r *Reconciler) Interval() time.Duration {
	return r.intervals.For(r.mode)
}

func (r *Reconciler) setMode(next Cadence) {
	if r.mode == next {
		return
	}
	r.logger.Debug().
		Str("profile", r.active).
		Str("from", r.mode.String()).
		Str("to", next.String()).
		Msg("Cadence changed")
	r.mode = next
}

// Tick runs one reconciliation pass and publishes its snapshot.
func (r *Reconciler) Tick(ctx context.Context) Snapshot {
	profile := r.active

	live := true
	if err := r.checker.CheckIdentity(ctx, profile); err != nil {
		live = false
		r.logger.Debug().Err(err).Str("profile", profile).Msg("Live login check failed")
	}

	if r.mode == CadenceFast && live {
		r.oracle.RecordLogin(profile)
		r.setMode(CadenceNormal)
		r.presenter.Notify("AWS SSO", "Login confirmed", "Session refreshed successfully.")
	}

	now := r.now()
	snap := Snapshot{
		Profile:   profile,
		LoggedIn:  live,
		Level:     LevelExpired,
		CheckedAt: now,
	}

	expiry, ok := r.oracle.Expiry(profile)
	if !ok || !live {
		if r.mode != CadenceFast {
			r.setMode(CadenceNormal)
		}
		snap.Mode = r.mode
		r.presenter.Publish(snap)
		return snap
	}

	minutes := int(math.Floor(expiry.Sub(now).Minutes()))
	snap.Expiry = expiry
	snap.MinutesRemaining = minutes
	snap.Level = LevelFor(minutes, r.thresholds)

	if r.mode != CadenceFast {
		if AggressiveEligible(minutes, r.thresholds) {
			r.setMode(CadenceAggressive)
		} else {
			r.setMode(CadenceNormal)
		}
	}

	snap.Mode = r.mode
	r.presenter.Publish(snap)
	return snap
}

// RequestLogin makes profile active, switches to Fast cadence and starts a
// login without waiting for it. Completion is only observed by a later Tick.
// Calling it again while a login is pending re-dispatches.
func (r *Reconciler) RequestLogin(ctx context.Context, profile string) error {
	if profile == "" {
		profile = r.active
	}
	r.active = profile
	r.registry.SaveActive(profile)

	attempt := uuid.NewString()
	if err := r.dispatcher.Dispatch(profile); err != nil {
		if errors.Is(err, ErrCLIUnavailable) {
			r.presenter.Alert("AWS SSO Status", "AWS CLI not found. Cannot refresh login.")
			return err
		}
		r.logger.Warn().Err(err).Str("profile", profile).Str("attempt", attempt).Msg("Login dispatch failed")
	} else {
		r.logger.Info().Str("profile", profile).Str("attempt", attempt).Msg("Login dispatched")
	}

	r.setMode(CadenceFast)
	r.sched.Reschedule(r.intervals.Fast)
	r.presenter.Notify("AWS SSO", "Logging in…", "Waiting for new credentials...")
	return nil
}

// Refresh queues a login request for profile ("" for the active one). Safe
// to call from any goroutine while Run is active.
func (r *Reconciler) Refresh(profile string) {
	select {
	case r.requests <- profile:
	default:
		r.logger.Warn().Str("profile", profile).Msg("Login request dropped, queue full")
	}
}

// Run ticks immediately and then on the adaptive schedule until ctx is done.
// The next tick is armed only after the previous one returns.
func (r *Reconciler) Run(ctx context.Context) error {
	defer r.sched.Stop()

	r.logger.Info().Str("profile", r.active).Msg("Status loop started")
	r.Tick(ctx)
	r.sched.Reschedule(r.Interval())

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Status loop stopped")
			return ctx.Err()
		case <-r.sched.C():
			r.Tick(ctx)
			r.sched.Reschedule(r.Interval())
		case profile := <-r.requests:
			// On error Fast was not entered and the pending tick stands.
			_ = r.RequestLogin(ctx, profile)
		}
	}
}

// WaitForLogin ticks on the current schedule until the cadence leaves Fast,
// returning the snapshot of the confirming tick.
func (r *Reconciler) WaitForLogin(ctx context.Context) (Snapshot, error) {
	defer r.sched.Stop()
	if r.mode != CadenceFast {
		return r.Tick(ctx), nil
	}
	if r.sched.C() == nil {
		r.sched.Reschedule(r.Interval())
	}
	for {
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-r.sched.C():
			snap := r.Tick(ctx)
			if r.mode != CadenceFast {
				return snap, nil
			}
			r.sched.Reschedule(r.Interval())
		}
	}
}
