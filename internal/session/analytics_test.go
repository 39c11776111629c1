package session

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// Four-hour-old cycle, 50% used, reset in one hour, no session data:
// the cycle average carries the whole estimate.
func TestAnalyticsCycleAverageOnly(t *testing.T) {
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	snap := snapAt(500, 1000, now.Add(time.Hour))

	tr := New()
	a := tr.AnalyticsAt(snap, now)

	if !almostEqual(a.BurnRatePerHour, 12.5) {
		t.Errorf("BurnRatePerHour = %v, want 12.5", a.BurnRatePerHour)
	}
	if a.ProjectedAtReset == nil || *a.ProjectedAtReset != 63 {
		t.Errorf("ProjectedAtReset = %v, want 63", a.ProjectedAtReset)
	}
	if a.HoursUntilDepletion != nil {
		t.Errorf("HoursUntilDepletion = %v, want absent (depletion after reset)", *a.HoursUntilDepletion)
	}
	if a.Trend != TrendFlat {
		t.Errorf("Trend = %q, want flat with no history", a.Trend)
	}
}

func TestAnalyticsBlendsSessionRate(t *testing.T) {
	reset := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := reset.Add(-75 * time.Minute) // seed an hour and a quarter before reset

	tr := New(WithClock(func() time.Time { return now }))
	tr.Seed(snapAt(500, 1000, reset), true)
	for _, used := range []float64{520, 550, 600} {
		now = now.Add(5 * time.Minute)
		tr.Record(snapAt(used, 1000, reset))
	}

	// now is one hour before reset: 4h elapsed in the 5h cycle.
	snap := snapAt(600, 1000, reset)
	a := tr.AnalyticsAt(snap, now)

	// global = 60/4 = 15; session = (0.60-0.50)*100/0.25h = 40;
	// blended = 0.7*15 + 0.3*40 = 22.5
	if !almostEqual(a.BurnRatePerHour, 22.5) {
		t.Errorf("BurnRatePerHour = %v, want 22.5", a.BurnRatePerHour)
	}
	if a.Trend != TrendRising {
		t.Errorf("Trend = %q, want rising (last-3 delta = 8pp)", a.Trend)
	}
	if a.ProjectedAtReset == nil || *a.ProjectedAtReset != 83 {
		t.Errorf("ProjectedAtReset = %v, want 83", a.ProjectedAtReset)
	}
}

func TestAnalyticsSessionRateUnreliableWhenSpanTooShort(t *testing.T) {
	reset := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := reset.Add(-time.Hour)

	tr := New(WithClock(func() time.Time { return now }))
	tr.Seed(snapAt(500, 1000, reset), true)
	now = now.Add(time.Minute) // 0.017h span, under the 0.05h floor
	tr.Record(snapAt(900, 1000, reset))

	a := tr.AnalyticsAt(snapAt(900, 1000, reset), now)

	// elapsed ≈ 3.983h, global = 90/3.983...; the burst must not leak in.
	wantGlobal := 90 / (5.0 - reset.Sub(now).Hours())
	if !almostEqual(a.BurnRatePerHour, wantGlobal) {
		t.Errorf("BurnRatePerHour = %v, want global-only %v", a.BurnRatePerHour, wantGlobal)
	}
}

func TestAnalyticsDepletionBeforeReset(t *testing.T) {
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	snap := snapAt(850, 1000, now.Add(time.Hour))

	tr := New()
	a := tr.AnalyticsAt(snap, now)

	// global = 85/4 = 21.25 %/h; 15% remaining depletes in ~0.706h < 1h.
	if a.HoursUntilDepletion == nil {
		t.Fatal("HoursUntilDepletion absent, want present")
	}
	if got, want := *a.HoursUntilDepletion, 15.0/21.25; !almostEqual(got, want) {
		t.Errorf("HoursUntilDepletion = %v, want %v", got, want)
	}
	if *a.HoursUntilDepletion >= 1.0 {
		t.Errorf("HoursUntilDepletion = %v, must be < hours until reset", *a.HoursUntilDepletion)
	}
}

func TestAnalyticsNoDepletionBelowRateFloor(t *testing.T) {
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	snap := snapAt(30, 1000, now.Add(time.Hour)) // global = 3/4 = 0.75 %/h

	tr := New()
	a := tr.AnalyticsAt(snap, now)
	if a.HoursUntilDepletion != nil {
		t.Errorf("HoursUntilDepletion = %v, want absent below the 1%%/h floor", *a.HoursUntilDepletion)
	}
}

func TestAnalyticsProjectionBounds(t *testing.T) {
	now := time.Date(2026, 8, 29, 7, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		used float64
		want int
	}{
		// elapsed 0.5h > 0.1h floor; 4.5h until reset
		{name: "clamped to 100", used: 400, want: 100}, // 40 + 80*4.5 → way past 100
		{name: "floor at used percent", used: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			a := tr.AnalyticsAt(snapAt(tt.used, 1000, now.Add(270*time.Minute)), now)
			if a.ProjectedAtReset == nil {
				t.Fatal("ProjectedAtReset absent, want present before reset")
			}
			if *a.ProjectedAtReset != tt.want {
				t.Errorf("ProjectedAtReset = %d, want %d", *a.ProjectedAtReset, tt.want)
			}
		})
	}
}

func TestAnalyticsProjectionAbsentAfterReset(t *testing.T) {
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	snap := snapAt(500, 1000, now.Add(-time.Minute))

	tr := New()
	a := tr.AnalyticsAt(snap, now)
	if a.ProjectedAtReset != nil {
		t.Errorf("ProjectedAtReset = %v, want absent once the reset passed", *a.ProjectedAtReset)
	}
	if a.HoursUntilDepletion != nil {
		t.Errorf("HoursUntilDepletion = %v, want absent once the reset passed", *a.HoursUntilDepletion)
	}
}

func TestAnalyticsGlobalRateZeroEarlyInCycle(t *testing.T) {
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	snap := snapAt(100, 1000, now.Add(297*time.Minute)) // 3 minutes into the cycle

	tr := New()
	a := tr.AnalyticsAt(snap, now)
	if a.BurnRatePerHour != 0 {
		t.Errorf("BurnRatePerHour = %v, want 0 under the elapsed floor", a.BurnRatePerHour)
	}
}

func TestAnalyticsTrend(t *testing.T) {
	tests := []struct {
		name      string
		fractions []float64
		want      Trend
	}{
		{name: "rising", fractions: []float64{0.50, 0.52, 0.55, 0.60}, want: TrendRising},
		{name: "falling", fractions: []float64{0.60, 0.55, 0.50}, want: TrendFalling},
		{name: "flat within deadband", fractions: []float64{0.5000, 0.5002, 0.5005}, want: TrendFlat},
		{name: "two points only", fractions: []float64{0.50, 0.60}, want: TrendFlat},
		{name: "uses only last three", fractions: []float64{0.10, 0.50, 0.500, 0.5005, 0.5002}, want: TrendFlat},
	}

	reset := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := reset.Add(-2 * time.Hour)
			tr := New(WithClock(func() time.Time { return now }))
			tr.Seed(snapAt(tt.fractions[0]*1000, 1000, reset), true)
			for _, f := range tt.fractions[1:] {
				now = now.Add(5 * time.Minute)
				tr.Record(snapAt(f*1000, 1000, reset))
			}

			last := tt.fractions[len(tt.fractions)-1]
			a := tr.AnalyticsAt(snapAt(last*1000, 1000, reset), now)
			if a.Trend != tt.want {
				t.Errorf("Trend = %q, want %q", a.Trend, tt.want)
			}
		})
	}
}

// A quota rollover observed mid-window reads as zero session burn, never
// negative, and the analytics flag the window.
func TestAnalyticsRolloverClampsSessionRate(t *testing.T) {
	reset := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := reset.Add(-90 * time.Minute)

	tr := New(WithClock(func() time.Time { return now }))
	tr.Seed(snapAt(900, 1000, reset), true)
	now = now.Add(30 * time.Minute)
	tr.Record(snapAt(50, 1000, reset)) // counter rebounded

	snap := snapAt(50, 1000, reset)
	a := tr.AnalyticsAt(snap, now)

	if !a.CycleRollover {
		t.Error("CycleRollover = false, want true after a mid-window rebound")
	}
	// session rate clamps to 0, so blended = 0.7 * global.
	global := 5.0 / 4.0 // 5% used, 4h elapsed
	if !almostEqual(a.BurnRatePerHour, 0.7*global) {
		t.Errorf("BurnRatePerHour = %v, want %v (session clamped to zero)", a.BurnRatePerHour, 0.7*global)
	}
}

func TestAnalyticsHistoryMapping(t *testing.T) {
	reset := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := reset.Add(-2 * time.Hour)

	tr := New(WithClock(func() time.Time { return now }))
	tr.Seed(snapAt(333, 1000, reset), true)
	now = now.Add(5 * time.Minute)
	tr.Record(snapAt(666, 1000, reset))

	a := tr.AnalyticsAt(snapAt(666, 1000, reset), now)
	if len(a.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(a.History))
	}
	if a.History[0].UsedPercent != 33 || a.History[1].UsedPercent != 67 {
		t.Errorf("history percents = [%d, %d], want [33, 67]",
			a.History[0].UsedPercent, a.History[1].UsedPercent)
	}
}

func TestAnalyticsDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	snap := snapAt(500, 1000, now.Add(time.Hour))

	tr := New()
	a := tr.AnalyticsAt(snap, now)
	b := tr.AnalyticsAt(snap, now)

	if a.BurnRatePerHour != b.BurnRatePerHour || a.Trend != b.Trend {
		t.Errorf("repeated AnalyticsAt calls diverged: %+v vs %+v", a, b)
	}
}

func TestCustomCycleAndWeight(t *testing.T) {
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	snap := snapAt(500, 1000, now.Add(time.Hour))

	// 3h cycle: 2h elapsed, global = 50/2 = 25 %/h.
	tr := New(WithCycleHours(3))
	a := tr.AnalyticsAt(snap, now)
	if !almostEqual(a.BurnRatePerHour, 25) {
		t.Errorf("BurnRatePerHour = %v, want 25 with a 3h cycle", a.BurnRatePerHour)
	}
}
