package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Engine owns the poll loop: it asks the provider for a fresh snapshot on
// a fixed interval, validates it, and hands it to the update callback.
// All analytical state lives elsewhere; the engine only remembers the
// latest snapshot.
type Engine struct {
	mu       sync.RWMutex
	provider SnapshotProvider
	acct     AccountConfig
	last     Snapshot
	hasLast  bool
	interval time.Duration
	timeout  time.Duration

	onUpdate func(Snapshot)
}

func NewEngine(provider SnapshotProvider, acct AccountConfig, interval time.Duration) *Engine {
	return &Engine{
		provider: provider,
		acct:     acct,
		interval: interval,
		timeout:  5 * time.Second,
	}
}

func (e *Engine) OnUpdate(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUpdate = fn
}

func (e *Engine) SetInterval(interval time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if interval > 0 {
		e.interval = interval
	}
}

// Last returns the most recent snapshot, if any fetch has completed.
func (e *Engine) Last() (Snapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last, e.hasLast
}

// Refresh fetches one snapshot and notifies the update callback. Fetch
// failures and invalid payloads degrade to an ERROR snapshot rather than
// propagating; the previous good snapshot stays available via Last only
// until the next successful fetch overwrites it.
func (e *Engine) Refresh(ctx context.Context) Snapshot {
	e.mu.RLock()
	provider := e.provider
	acct := e.acct
	timeout := e.timeout
	e.mu.RUnlock()

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snap, err := provider.Fetch(fetchCtx, acct)
	if err != nil {
		snap = Snapshot{
			Timestamp: time.Now(),
			Status:    StatusError,
			Message:   err.Error(),
		}
	} else if verr := snap.Validate(); verr != nil {
		snap = Snapshot{
			Timestamp: snap.Timestamp,
			Status:    StatusError,
			Message:   fmt.Sprintf("invalid snapshot: %v", verr),
		}
	}

	e.mu.Lock()
	e.last = snap
	e.hasLast = true
	fn := e.onUpdate
	e.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return snap
}

// Run refreshes immediately, then on every interval tick until the
// context is cancelled. Interval changes via SetInterval apply from the
// next tick.
func (e *Engine) Run(ctx context.Context) {
	e.Refresh(ctx)

	for {
		e.mu.RLock()
		interval := e.interval
		e.mu.RUnlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("engine: context cancelled, stopping refresh loop")
			return
		case <-timer.C:
			e.Refresh(ctx)
		}
	}
}
