package core

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusOK        Status = "OK"
	StatusNearLimit Status = "NEAR_LIMIT"
	StatusLimited   Status = "LIMITED"
	StatusAuth      Status = "AUTH_REQUIRED"
	StatusError     Status = "ERROR"
	StatusUnknown   Status = "UNKNOWN"
)

// QuotaFamily is one independently-capped counter on the plan: a usage
// limit, the amount consumed so far, and the moment the counter resets.
// Used may transiently exceed Limit (server-side rounding).
type QuotaFamily struct {
	Limit    float64   `json:"limit"`
	Used     float64   `json:"used"`
	ResetsAt time.Time `json:"resets_at"`
}

// UsedFraction returns Used/Limit, or 0 when the limit is non-positive.
func (f QuotaFamily) UsedFraction() float64 {
	if f.Limit <= 0 {
		return 0
	}
	return f.Used / f.Limit
}

// UsedPercent returns UsedFraction scaled to 0–100.
func (f QuotaFamily) UsedPercent() float64 {
	return f.UsedFraction() * 100
}

// RemainingPercent returns 100 − UsedPercent, floored at 0.
func (f QuotaFamily) RemainingPercent() float64 {
	r := 100 - f.UsedPercent()
	if r < 0 {
		return 0
	}
	return r
}

// Snapshot is the state of all three quota families at one instant.
// Immutable once produced; passed by value.
type Snapshot struct {
	Timestamp    time.Time         `json:"timestamp"`
	Status       Status            `json:"status"`
	Subscription QuotaFamily       `json:"subscription"`
	Search       QuotaFamily       `json:"search"`
	ToolCalls    QuotaFamily       `json:"tool_calls"`
	Message      string            `json:"message,omitempty"`
	Raw          map[string]string `json:"raw,omitempty"` // redacted header dump
}

// Families returns the three quota families keyed by display label, in a
// fixed order.
func (s Snapshot) Families() []NamedFamily {
	return []NamedFamily{
		{Key: "subscription", Label: "Subscription", Family: s.Subscription},
		{Key: "search", Label: "Search / hour", Family: s.Search},
		{Key: "tool_calls", Label: "Tool calls", Family: s.ToolCalls},
	}
}

type NamedFamily struct {
	Key    string
	Label  string
	Family QuotaFamily
}

// Validate rejects snapshots the rest of the system must never see:
// every family needs a positive limit and a usable reset timestamp.
func (s Snapshot) Validate() error {
	for _, nf := range s.Families() {
		if nf.Family.Limit <= 0 {
			return fmt.Errorf("quota family %s: non-positive limit %v", nf.Key, nf.Family.Limit)
		}
		if nf.Family.Used < 0 {
			return fmt.Errorf("quota family %s: negative used %v", nf.Key, nf.Family.Used)
		}
		if nf.Family.ResetsAt.IsZero() {
			return fmt.Errorf("quota family %s: missing reset timestamp", nf.Key)
		}
	}
	return nil
}

// WorstPercent returns the highest used-percent across the families, used
// for the at-a-glance status colour.
func (s Snapshot) WorstPercent() float64 {
	worst := 0.0
	for _, nf := range s.Families() {
		if p := nf.Family.UsedPercent(); p > worst {
			worst = p
		}
	}
	return worst
}
