// Package demo synthesizes plausible quota snapshots so the dashboard can
// be exercised without credentials.
package demo

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/burnwatch/burnwatch/internal/core"
	"github.com/burnwatch/burnwatch/internal/providers/providerbase"
)

type Provider struct {
	providerbase.Base

	rng     *rand.Rand
	started time.Time
	cycle   time.Duration
}

func New() *Provider {
	now := time.Now()
	return &Provider{
		Base: providerbase.New("demo", core.ProviderInfo{
			Name:         "Demo plan",
			Capabilities: []string{"synthetic"},
		}),
		rng:     rand.New(rand.NewSource(now.UnixNano())),
		started: now,
		cycle:   5 * time.Hour,
	}
}

func (p *Provider) Fetch(_ context.Context, _ core.AccountConfig) (core.Snapshot, error) {
	now := time.Now()
	elapsed := now.Sub(p.started)

	// Subscription usage ramps through the cycle with a little jitter so
	// the forecaster has something to chew on.
	cycleFrac := math.Mod(elapsed.Hours(), p.cycle.Hours()) / p.cycle.Hours()
	subUsed := 200 + 600*cycleFrac + p.rng.Float64()*15

	resetAt := now.Truncate(p.cycle).Add(p.cycle)
	hourReset := now.Truncate(time.Hour).Add(time.Hour)

	return core.Snapshot{
		Timestamp: now,
		Status:    core.StatusOK,
		Message:   "synthetic data",
		Subscription: core.QuotaFamily{
			Limit:    1000,
			Used:     math.Min(subUsed, 1020),
			ResetsAt: resetAt,
		},
		Search: core.QuotaFamily{
			Limit:    50,
			Used:     float64(p.rng.Intn(30)),
			ResetsAt: hourReset,
		},
		ToolCalls: core.QuotaFamily{
			Limit:    400,
			Used:     40 + 200*cycleFrac + p.rng.Float64()*10,
			ResetsAt: resetAt,
		},
	}, nil
}
