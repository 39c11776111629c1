// Package plan fetches the subscription plan's quota snapshot from the
// vendor usage endpoint.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/burnwatch/burnwatch/internal/core"
	"github.com/burnwatch/burnwatch/internal/providers/providerbase"
	"github.com/burnwatch/burnwatch/internal/providers/shared"
)

const defaultBaseURL = "https://api.burnwatch.dev"

type Provider struct {
	providerbase.Base
	client *http.Client
}

func New() *Provider {
	return &Provider{
		Base: providerbase.New("plan", core.ProviderInfo{
			Name:         "Subscription plan",
			Capabilities: []string{"usage_endpoint"},
			DocURL:       "https://docs.burnwatch.dev/usage-api",
		}),
		client: http.DefaultClient,
	}
}

// NewWithClient is used by tests to point the provider at a fake server.
func NewWithClient(client *http.Client) *Provider {
	p := New()
	if client != nil {
		p.client = client
	}
	return p
}

type quotaPayload struct {
	Limit    float64   `json:"limit"`
	Used     float64   `json:"used"`
	ResetsAt time.Time `json:"resets_at"`
}

type usagePayload struct {
	Subscription quotaPayload `json:"subscription"`
	Search       quotaPayload `json:"search"`
	ToolCalls    quotaPayload `json:"tool_calls"`
}

func (p *Provider) Fetch(ctx context.Context, acct core.AccountConfig) (core.Snapshot, error) {
	apiKey, authSnap := shared.RequireAPIKey(acct)
	if authSnap != nil {
		snap := *authSnap
		snap.Timestamp = time.Now()
		return snap, nil
	}

	baseURL := shared.ResolveBaseURL(acct, defaultBaseURL)

	req, err := shared.CreateStandardRequest(ctx, baseURL, "/v1/usage/quotas", apiKey, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("plan: creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("plan: request failed: %w", err)
	}
	defer resp.Body.Close()

	if snap, done := shared.ClassifyResponse(resp); done {
		snap.Timestamp = time.Now()
		return snap, nil
	}

	if resp.StatusCode != http.StatusOK {
		return core.Snapshot{}, fmt.Errorf("plan: unexpected status %d", resp.StatusCode)
	}

	var payload usagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return core.Snapshot{}, fmt.Errorf("plan: decoding response: %w", err)
	}

	snap := core.Snapshot{
		Timestamp:    time.Now(),
		Status:       core.StatusOK,
		Message:      "OK",
		Subscription: toFamily(payload.Subscription),
		Search:       toFamily(payload.Search),
		ToolCalls:    toFamily(payload.ToolCalls),
		Raw:          shared.RedactHeaders(resp.Header),
	}
	if snap.WorstPercent() >= 90 {
		snap.Status = core.StatusNearLimit
		snap.Message = "approaching a quota cap"
	}
	return snap, nil
}

func toFamily(q quotaPayload) core.QuotaFamily {
	return core.QuotaFamily{Limit: q.Limit, Used: q.Used, ResetsAt: q.ResetsAt}
}
