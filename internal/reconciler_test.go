package internal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	live  atomic.Bool
	calls atomic.Int32
}

func (c *fakeChecker) CheckIdentity(ctx context.Context, profile string) error {
	c.calls.Add(1)
	if c.live.Load() {
		return nil
	}
	return errors.New("token expired")
}

type fakeDispatcher struct {
	err        error
	dispatched chan string
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{dispatched: make(chan string, 16)}
}

func (d *fakeDispatcher) Dispatch(profile string) error {
	if d.err != nil {
		return d.err
	}
	d.dispatched <- profile
	return nil
}

type notice struct {
	title, subtitle, message string
}

type fakePresenter struct {
	snaps   []Snapshot
	notices []notice
	alerts  []string
}

func (p *fakePresenter) Publish(s Snapshot) { p.snaps = append(p.snaps, s) }

func (p *fakePresenter) Notify(title, subtitle, message string) {
	p.notices = append(p.notices, notice{title, subtitle, message})
}

func (p *fakePresenter) Alert(title, message string) {
	p.alerts = append(p.alerts, title+": "+message)
}

// countingOracle counts confirmed logins.
type countingOracle struct {
	*TimestampOracle
	recorded int
}

func (o *countingOracle) RecordLogin(profile string) {
	o.recorded++
	o.TimestampOracle.RecordLogin(profile)
}

type harness struct {
	dir        string
	now        time.Time
	checker    *fakeChecker
	dispatcher *fakeDispatcher
	presenter  *fakePresenter
	oracle     *countingOracle
	registry   *ProfileRegistry
}

var testIntervals = Intervals{Normal: time.Minute, Aggressive: 15 * time.Second, Fast: time.Second}

func newHarness(t *testing.T) *harness {
	h := &harness{
		dir:        t.TempDir(),
		now:        time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		checker:    &fakeChecker{},
		dispatcher: newFakeDispatcher(),
		presenter:  &fakePresenter{},
	}
	store := NewStore(h.dir)
	h.registry = NewProfileRegistry("", store, testLogger())
	h.oracle = &countingOracle{
		TimestampOracle: NewTimestampOracle(store, 8*time.Hour, h.clock, testLogger()),
	}
	return h
}

func (h *harness) clock() time.Time { return h.now }

func (h *harness) reconciler(profile string) *Reconciler {
	return NewReconciler(ReconcilerConfig{
		Registry:   h.registry,
		Oracle:     h.oracle,
		Checker:    h.checker,
		Dispatcher: h.dispatcher,
		Presenter:  h.presenter,
		Logger:     testLogger(),
		Intervals:  testIntervals,
		Thresholds: Thresholds{WarningMinutes: 10, AggressiveMinutes: 5},
		Now:        h.clock,
		Profile:    profile,
	})
}

func TestTickWithoutRecordedLogin(t *testing.T) {
	h := newHarness(t)
	h.checker.live.Store(true)
	rec := h.reconciler("")

	snap := rec.Tick(context.Background())

	assert.Equal(t, DefaultProfile, snap.Profile)
	assert.True(t, snap.LoggedIn)
	assert.Equal(t, LevelExpired, snap.Level)
	assert.False(t, snap.HasExpiry())
	assert.Equal(t, CadenceNormal, rec.Mode())
	assert.Zero(t, h.oracle.recorded, "normal ticks never record a login")
	require.Len(t, h.presenter.snaps, 1)
}

func TestTickNotLoggedInIgnoresRecordedExpiry(t *testing.T) {
	h := newHarness(t)
	h.oracle.RecordLogin("default")
	h.oracle.recorded = 0
	rec := h.reconciler("")

	snap := rec.Tick(context.Background())

	assert.False(t, snap.LoggedIn)
	assert.Equal(t, LevelExpired, snap.Level)
	assert.False(t, snap.HasExpiry())
	assert.Equal(t, CadenceNormal, rec.Mode())
}

func TestRequestLoginStaysFastUntilLive(t *testing.T) {
	h := newHarness(t)
	rec := h.reconciler("")
	ctx := context.Background()

	require.NoError(t, rec.RequestLogin(ctx, "prod"))
	assert.Equal(t, "prod", <-h.dispatcher.dispatched)
	assert.Equal(t, CadenceFast, rec.Mode())
	assert.Equal(t, time.Second, rec.Interval())
	assert.Equal(t, "prod", rec.ActiveProfile())
	require.Len(t, h.presenter.notices, 1)
	assert.Equal(t, "Logging in…", h.presenter.notices[0].subtitle)

	for i := 0; i < 3; i++ {
		h.now = h.now.Add(time.Second)
		snap := rec.Tick(ctx)
		assert.Equal(t, LevelExpired, snap.Level)
		assert.Equal(t, CadenceFast, snap.Mode)
	}
	assert.Zero(t, h.oracle.recorded)

	h.now = h.now.Add(time.Second)
	loginAt := h.now
	h.checker.live.Store(true)
	snap := rec.Tick(ctx)

	assert.Equal(t, 1, h.oracle.recorded)
	assert.Equal(t, CadenceNormal, rec.Mode())
	assert.Equal(t, LevelOK, snap.Level)
	assert.Equal(t, 480, snap.MinutesRemaining)
	assert.True(t, snap.Expiry.Equal(loginAt.Add(8*time.Hour)))
	require.Len(t, h.presenter.notices, 2)
	assert.Equal(t, notice{"AWS SSO", "Login confirmed", "Session refreshed successfully."}, h.presenter.notices[1])

	// Later ticks read the recorded login without recording again.
	h.now = h.now.Add(time.Minute)
	snap = rec.Tick(ctx)
	assert.Equal(t, 1, h.oracle.recorded)
	assert.True(t, snap.Expiry.Equal(loginAt.Add(8*time.Hour)))
	assert.Equal(t, 479, snap.MinutesRemaining)
}

func TestAggressiveWindow(t *testing.T) {
	h := newHarness(t)
	h.checker.live.Store(true)
	loginAt := h.now
	h.oracle.RecordLogin("default")
	expiry := loginAt.Add(8 * time.Hour)
	rec := h.reconciler("")
	ctx := context.Background()

	steps := []struct {
		before  time.Duration
		minutes int
		level   Level
		mode    Cadence
	}{
		{before: 11 * time.Minute, minutes: 11, level: LevelOK, mode: CadenceNormal},
		{before: 9*time.Minute + 30*time.Second, minutes: 9, level: LevelWarning, mode: CadenceNormal},
		{before: 6 * time.Minute, minutes: 6, level: LevelWarning, mode: CadenceNormal},
		{before: 5*time.Minute + 59*time.Second, minutes: 5, level: LevelWarning, mode: CadenceAggressive},
		{before: 30 * time.Second, minutes: 0, level: LevelExpired, mode: CadenceNormal},
		{before: -time.Minute, minutes: -1, level: LevelExpired, mode: CadenceNormal},
	}
	for _, s := range steps {
		h.now = expiry.Add(-s.before)
		snap := rec.Tick(ctx)
		assert.Equal(t, s.minutes, snap.MinutesRemaining, "before=%s", s.before)
		assert.Equal(t, s.level, snap.Level, "before=%s", s.before)
		assert.Equal(t, s.mode, rec.Mode(), "before=%s", s.before)
	}

	h.now = expiry.Add(-3 * time.Minute)
	rec.Tick(ctx)
	assert.Equal(t, CadenceAggressive, rec.Mode())
	assert.Equal(t, 15*time.Second, rec.Interval())

	// A fresh login moves the expiry out of the window.
	h.now = expiry.Add(-2 * time.Minute)
	h.oracle.RecordLogin("default")
	rec.Tick(ctx)
	assert.Equal(t, CadenceNormal, rec.Mode())
}

func TestFastIsNotOverriddenByAggressive(t *testing.T) {
	h := newHarness(t)
	h.oracle.RecordLogin("default")
	h.oracle.recorded = 0
	h.now = h.now.Add(8*time.Hour - 3*time.Minute)
	rec := h.reconciler("")
	ctx := context.Background()

	require.NoError(t, rec.RequestLogin(ctx, ""))
	snap := rec.Tick(ctx)
	assert.Equal(t, CadenceFast, snap.Mode)

	// Still logged in on the old session: the login is taken as confirmed.
	h.checker.live.Store(true)
	snap = rec.Tick(ctx)
	assert.Equal(t, 1, h.oracle.recorded)
	assert.Equal(t, CadenceNormal, snap.Mode)
	assert.Equal(t, 480, snap.MinutesRemaining)
}

func TestRequestLoginWithoutCLI(t *testing.T) {
	h := newHarness(t)
	h.dispatcher.err = ErrCLIUnavailable
	rec := h.reconciler("")

	err := rec.RequestLogin(context.Background(), "prod")

	assert.ErrorIs(t, err, ErrCLIUnavailable)
	assert.Equal(t, CadenceNormal, rec.Mode())
	assert.Equal(t, []string{"AWS SSO Status: AWS CLI not found. Cannot refresh login."}, h.presenter.alerts)
	assert.Empty(t, h.presenter.notices)
}

func TestRequestLoginDispatchFailureStillWaits(t *testing.T) {
	h := newHarness(t)
	h.dispatcher.err = errors.New("exec format error")
	rec := h.reconciler("")

	require.NoError(t, rec.RequestLogin(context.Background(), "prod"))
	assert.Equal(t, CadenceFast, rec.Mode())
	assert.Empty(t, h.presenter.alerts)
}

func TestActiveProfileSurvivesRestart(t *testing.T) {
	h := newHarness(t)
	rec := h.reconciler("")
	require.NoError(t, rec.RequestLogin(context.Background(), "staging"))

	restarted := NewProfileRegistry("", NewStore(h.dir), testLogger())
	assert.Equal(t, "staging", restarted.LoadActive())
	assert.Equal(t, "staging", h.reconciler("").ActiveProfile())
}

func TestProfileOverrideIsNotPersisted(t *testing.T) {
	h := newHarness(t)
	h.registry.SaveActive("prod")

	rec := h.reconciler("dev")
	assert.Equal(t, "dev", rec.ActiveProfile())
	rec.Tick(context.Background())
	assert.Equal(t, "prod", h.registry.LoadActive())
}

func TestWaitForLogin(t *testing.T) {
	h := newHarness(t)
	rec := NewReconciler(ReconcilerConfig{
		Registry:   h.registry,
		Oracle:     h.oracle,
		Checker:    &flippingChecker{after: 3},
		Dispatcher: h.dispatcher,
		Presenter:  h.presenter,
		Logger:     testLogger(),
		Intervals:  Intervals{Normal: time.Minute, Aggressive: time.Second, Fast: 5 * time.Millisecond},
		Thresholds: Thresholds{WarningMinutes: 10, AggressiveMinutes: 5},
		Now:        h.clock,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, rec.RequestLogin(ctx, "prod"))
	snap, err := rec.WaitForLogin(ctx)

	require.NoError(t, err)
	assert.True(t, snap.LoggedIn)
	assert.Equal(t, CadenceNormal, snap.Mode)
	assert.Equal(t, 1, h.oracle.recorded)
}

func TestWaitForLoginCancelled(t *testing.T) {
	h := newHarness(t)
	rec := h.reconciler("")
	require.NoError(t, rec.RequestLogin(context.Background(), "prod"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rec.WaitForLogin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// flippingChecker reports logged in from its n-th call on.
type flippingChecker struct {
	after int
	calls int
}

func (c *flippingChecker) CheckIdentity(context.Context, string) error {
	c.calls++
	if c.calls >= c.after {
		return nil
	}
	return errors.New("not yet")
}

func TestRunServesRefreshRequests(t *testing.T) {
	h := newHarness(t)
	rec := h.reconciler("")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	rec.Refresh("prod")
	select {
	case p := <-h.dispatcher.dispatched:
		assert.Equal(t, "prod", p)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh was not dispatched")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	assert.GreaterOrEqual(t, int(h.checker.calls.Load()), 1, "Run ticks immediately")
	assert.Equal(t, "prod", h.registry.LoadActive())
}
