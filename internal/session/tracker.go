// Package session turns a sparse stream of quota snapshots into burn-rate,
// trend, depletion, and reset-forecast figures for the subscription family.
package session

import (
	"math"
	"time"

	"github.com/burnwatch/burnwatch/internal/core"
)

const (
	// historyCap bounds the rolling sample window. FIFO eviction keeps the
	// window recent and smooths one-off spikes.
	historyCap = 10

	// DefaultCycleHours is the provider's billing/reset cadence.
	DefaultCycleHours = 5.0
	// DefaultSessionWeight is the session share of the blended burn rate.
	DefaultSessionWeight = 0.3
)

// Point is one history sample: when it was taken and the subscription
// used/limit fraction at that moment.
type Point struct {
	At           time.Time
	UsedFraction float64
}

// Usage reports how many percentage points of each family were consumed
// since the session baseline, rounded to the nearest whole number.
type Usage struct {
	Subscription int
	Search       int
	ToolCalls    int
}

type state struct {
	startedAt time.Time
	baseline  baseline
	history   []Point
}

type baseline struct {
	subscription float64
	search       float64
	toolCalls    float64
}

// Tracker owns the single rolling session state. It is not safe for
// concurrent use; the host serializes calls (one tracker per session).
type Tracker struct {
	cycleHours    float64
	sessionWeight float64
	now           func() time.Time

	state *state
}

type Option func(*Tracker)

// WithCycleHours overrides the billing-cycle length used for the global
// burn rate. Non-positive values are ignored.
func WithCycleHours(h float64) Option {
	return func(t *Tracker) {
		if h > 0 {
			t.cycleHours = h
		}
	}
}

// WithSessionWeight overrides the session share of the blended rate.
// Values outside (0, 1) are ignored.
func WithSessionWeight(w float64) Option {
	return func(t *Tracker) {
		if w > 0 && w < 1 {
			t.sessionWeight = w
		}
	}
}

// WithClock injects the time source. Tests use this; callers normally
// leave the wall clock in place.
func WithClock(fn func() time.Time) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.now = fn
		}
	}
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		cycleHours:    DefaultCycleHours,
		sessionWeight: DefaultSessionWeight,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tracking reports whether a session is currently seeded.
func (t *Tracker) Tracking() bool {
	return t.state != nil
}

// StartedAt returns the session start time, if a session exists.
func (t *Tracker) StartedAt() (time.Time, bool) {
	if t.state == nil {
		return time.Time{}, false
	}
	return t.state.startedAt, true
}

// Seed starts a session from the given snapshot, replacing any prior
// session state entirely. With tracking disabled it clears the state, so
// session-relative figures read as zero until the next seed.
func (t *Tracker) Seed(snap core.Snapshot, trackingEnabled bool) {
	if !trackingEnabled {
		t.state = nil
		return
	}
	now := t.now()
	t.state = &state{
		startedAt: now,
		baseline: baseline{
			subscription: snap.Subscription.UsedFraction(),
			search:       snap.Search.UsedFraction(),
			toolCalls:    snap.ToolCalls.UsedFraction(),
		},
		history: []Point{{At: now, UsedFraction: snap.Subscription.UsedFraction()}},
	}
}

// Record appends the snapshot's subscription fraction to the history,
// evicting the single oldest sample once the capacity bound is exceeded.
// No-op while tracking is disabled.
func (t *Tracker) Record(snap core.Snapshot) {
	if t.state == nil {
		return
	}
	t.state.history = append(t.state.history, Point{
		At:           t.now(),
		UsedFraction: snap.Subscription.UsedFraction(),
	})
	if len(t.state.history) > historyCap {
		t.state.history = t.state.history[1:]
	}
}

// Usage reports per-family consumption since the session baseline.
// All zeros while tracking is disabled.
func (t *Tracker) Usage(snap core.Snapshot) Usage {
	if t.state == nil {
		return Usage{}
	}
	return Usage{
		Subscription: roundDelta(snap.Subscription.UsedFraction(), t.state.baseline.subscription),
		Search:       roundDelta(snap.Search.UsedFraction(), t.state.baseline.search),
		ToolCalls:    roundDelta(snap.ToolCalls.UsedFraction(), t.state.baseline.toolCalls),
	}
}

func roundDelta(current, initial float64) int {
	return int(math.Round((current - initial) * 100))
}
