package shared

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/burnwatch/burnwatch/internal/core"
)

func CreateStandardRequest(ctx context.Context, baseURL, endpoint, apiKey string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if _, hasAuth := headers["Authorization"]; !hasAuth {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return req, nil
}

// ClassifyResponse maps auth and throttling status codes onto a partial
// snapshot; the caller fills in quota data for the remaining codes.
func ClassifyResponse(resp *http.Response) (core.Snapshot, bool) {
	snap := core.Snapshot{Raw: RedactHeaders(resp.Header)}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		snap.Status = core.StatusAuth
		snap.Message = fmt.Sprintf("HTTP %d – check API key", resp.StatusCode)
		return snap, true
	case http.StatusTooManyRequests:
		snap.Status = core.StatusLimited
		snap.Message = "rate limited (HTTP 429)"
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			snap.Raw["retry_after"] = retryAfter
		}
		return snap, true
	}
	return snap, false
}

func RequireAPIKey(acct core.AccountConfig) (string, *core.Snapshot) {
	apiKey := acct.ResolveAPIKey()
	if apiKey != "" {
		return apiKey, nil
	}
	snap := core.Snapshot{
		Status:  core.StatusAuth,
		Message: fmt.Sprintf("no API key (set %s or configure a credential)", acct.APIKeyEnv),
	}
	return "", &snap
}

func ResolveBaseURL(acct core.AccountConfig, defaultURL string) string {
	if acct.BaseURL != "" {
		return acct.BaseURL
	}
	return defaultURL
}

// RedactHeaders keeps rate/usage headers for diagnostics and masks
// anything that smells like a credential.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		lower := strings.ToLower(key)
		if strings.Contains(lower, "authorization") ||
			strings.Contains(lower, "api-key") ||
			strings.Contains(lower, "cookie") ||
			strings.Contains(lower, "token") {
			out[lower] = "REDACTED"
			continue
		}
		out[lower] = values[0]
	}
	return out
}
