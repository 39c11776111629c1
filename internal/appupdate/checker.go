package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultLatestReleaseURL = "https://api.github.com/repos/burnwatch/burnwatch/releases/latest"
	defaultRequestTimeout   = 1500 * time.Millisecond
)

type CheckOptions struct {
	CurrentVersion   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
}

type releasePayload struct {
	TagName string `json:"tag_name"`
}

// Check asks the release endpoint for the newest tag and compares it with
// the running version. Development builds ("dev", empty) never report an
// update.
func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	current := normalizeVersion(opts.CurrentVersion)
	result := Result{CurrentVersion: current}
	if current == "" {
		return result, nil
	}

	url := opts.LatestReleaseURL
	if url == "" {
		url = defaultLatestReleaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return result, fmt.Errorf("appupdate: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return result, fmt.Errorf("appupdate: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("appupdate: unexpected status %d", resp.StatusCode)
	}

	var payload releasePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return result, fmt.Errorf("appupdate: decoding release: %w", err)
	}

	latest := normalizeVersion(payload.TagName)
	if latest == "" {
		return result, nil
	}
	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	return result, nil
}

func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "dev" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
