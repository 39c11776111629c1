package session

import (
	"math"
	"time"

	"github.com/burnwatch/burnwatch/internal/core"
)

const (
	// minCycleElapsedHours is the floor (≈6 min) under which the cycle
	// average is meaningless and reads as zero.
	minCycleElapsedHours = 0.1
	// minSessionSpanHours is the floor (≈3 min) under which the session
	// rate is too noisy to trust.
	minSessionSpanHours = 0.05
	// trendDeadbandPct suppresses trend flapping from measurement jitter.
	trendDeadbandPct = 0.1
	// depletionRateFloor: below 1 %/h, depletion before reset is not a
	// meaningful event.
	depletionRateFloor = 1.0
)

type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
)

// HistoryPoint is a display-ready history sample.
type HistoryPoint struct {
	At          time.Time
	UsedPercent int
}

// Analytics is recomputed fresh on every call; nothing here is cached.
// HoursUntilDepletion is present only when depletion is predicted before
// the next reset. ProjectedAtReset is absent once the reset has passed.
type Analytics struct {
	BurnRatePerHour     float64
	HoursUntilDepletion *float64
	Trend               Trend
	ProjectedAtReset    *int
	CycleRollover       bool
	History             []HistoryPoint
}

// Analytics computes the current figures against the wall clock.
func (t *Tracker) Analytics(snap core.Snapshot) Analytics {
	return t.AnalyticsAt(snap, t.now())
}

// AnalyticsAt is pure given the tracker state, the snapshot, and now.
//
// The cycle average is stable but slow to react; the session rate reacts
// fast but is noisy with few samples. The blend weights toward stability
// and only trusts the session rate once its span clears the floor.
func (t *Tracker) AnalyticsAt(snap core.Snapshot, now time.Time) Analytics {
	usedPercent := snap.Subscription.UsedPercent()
	remainingPercent := 100 - usedPercent
	hoursUntilReset := math.Max(0, snap.Subscription.ResetsAt.Sub(now).Hours())

	// The cycle average assumes usage accrued linearly since the current
	// billing cycle started; it has no visibility into earlier cycles.
	hoursElapsedInCycle := math.Max(0, t.cycleHours-hoursUntilReset)
	globalRate := 0.0
	if hoursElapsedInCycle > minCycleElapsedHours {
		globalRate = usedPercent / hoursElapsedInCycle
	}

	out := Analytics{Trend: TrendFlat}

	var history []Point
	if t.state != nil {
		history = t.state.history
	}

	sessionRate := 0.0
	sessionReliable := false
	if len(history) >= 2 {
		first := history[0]
		last := history[len(history)-1]
		span := last.At.Sub(first.At).Hours()
		if span > minSessionSpanHours {
			sessionReliable = true
			sessionRate = (last.UsedFraction - first.UsedFraction) * 100 / span
			// A net decrease means a quota rollover landed mid-window;
			// treat it as zero burn, not negative burn.
			if sessionRate < 0 {
				sessionRate = 0
			}
		}
		if last.UsedFraction < first.UsedFraction {
			out.CycleRollover = true
		}
	}

	if len(history) >= 3 {
		recent := history[len(history)-3:]
		delta := (recent[2].UsedFraction - recent[0].UsedFraction) * 100
		switch {
		case delta > trendDeadbandPct:
			out.Trend = TrendRising
		case delta < -trendDeadbandPct:
			out.Trend = TrendFalling
		}
	}

	effectiveRate := globalRate
	if sessionReliable {
		effectiveRate = (1-t.sessionWeight)*globalRate + t.sessionWeight*sessionRate
	}
	out.BurnRatePerHour = effectiveRate

	if effectiveRate > depletionRateFloor && remainingPercent > 0 && hoursUntilReset > 0 {
		if candidate := remainingPercent / effectiveRate; candidate < hoursUntilReset {
			out.HoursUntilDepletion = &candidate
		}
	}

	if hoursUntilReset > 0 {
		projected := usedPercent + effectiveRate*hoursUntilReset
		if projected > 100 {
			projected = 100
		}
		if projected < usedPercent {
			projected = usedPercent
		}
		rounded := int(math.Round(projected))
		out.ProjectedAtReset = &rounded
	}

	out.History = make([]HistoryPoint, len(history))
	for i, p := range history {
		out.History[i] = HistoryPoint{
			At:          p.At,
			UsedPercent: int(math.Round(p.UsedFraction * 100)),
		}
	}
	return out
}
