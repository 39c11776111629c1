package core

import (
	"context"
	"os"
)

type AccountConfig struct {
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	APIKeyEnv string `json:"api_key_env,omitempty"` // env var name holding the API key
	BaseURL   string `json:"base_url,omitempty"`    // custom API base URL
	Token     string `json:"-"`                     // runtime-only: access token (never persisted)
}

func (c AccountConfig) ResolveAPIKey() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv(c.APIKeyEnv)
}

type ProviderInfo struct {
	Name         string
	Capabilities []string // "usage_endpoint", "synthetic"
	DocURL       string
}

// SnapshotProvider produces a validated quota snapshot on demand.
type SnapshotProvider interface {
	ID() string

	Describe() ProviderInfo

	Fetch(ctx context.Context, acct AccountConfig) (Snapshot, error)
}
