package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/burnwatch/burnwatch/internal/core"
	"github.com/burnwatch/burnwatch/internal/session"
)

type UIConfig struct {
	RefreshIntervalSeconds int     `json:"refresh_interval_seconds"`
	WarnThreshold          float64 `json:"warn_threshold"` // used fraction that turns a gauge yellow
	CritThreshold          float64 `json:"crit_threshold"` // used fraction that turns a gauge red
}

type SessionConfig struct {
	Track         bool    `json:"track"`
	CycleHours    float64 `json:"cycle_hours"`
	SessionWeight float64 `json:"session_weight"`
}

type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"` // defaults to <config dir>/journal.db
}

type Config struct {
	UI      UIConfig           `json:"ui"`
	Session SessionConfig      `json:"session"`
	Journal JournalConfig      `json:"journal"`
	Account core.AccountConfig `json:"account"`
}

func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			RefreshIntervalSeconds: 30,
			WarnThreshold:          0.60,
			CritThreshold:          0.85,
		},
		Session: SessionConfig{
			Track:         true,
			CycleHours:    session.DefaultCycleHours,
			SessionWeight: session.DefaultSessionWeight,
		},
		Account: core.AccountConfig{
			ID:        "plan",
			Provider:  "plan",
			APIKeyEnv: "BURNWATCH_API_KEY",
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "burnwatch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "burnwatch")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func JournalPath(cfg Config) string {
	if cfg.Journal.Path != "" {
		return cfg.Journal.Path
	}
	return filepath.Join(ConfigDir(), "journal.db")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return normalize(cfg), nil
}

func normalize(cfg Config) Config {
	def := DefaultConfig()
	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = def.UI.RefreshIntervalSeconds
	}
	if cfg.UI.WarnThreshold <= 0 || cfg.UI.WarnThreshold >= 1 {
		cfg.UI.WarnThreshold = def.UI.WarnThreshold
	}
	if cfg.UI.CritThreshold <= cfg.UI.WarnThreshold || cfg.UI.CritThreshold >= 1 {
		cfg.UI.CritThreshold = def.UI.CritThreshold
	}
	if cfg.Session.CycleHours <= 0 {
		cfg.Session.CycleHours = def.Session.CycleHours
	}
	if cfg.Session.SessionWeight <= 0 || cfg.Session.SessionWeight >= 1 {
		cfg.Session.SessionWeight = def.Session.SessionWeight
	}
	if cfg.Account.Provider == "" {
		cfg.Account = def.Account
	}
	if cfg.Account.ID == "" {
		cfg.Account.ID = cfg.Account.Provider
	}
	if cfg.Account.APIKeyEnv == "" {
		cfg.Account.APIKeyEnv = def.Account.APIKeyEnv
	}
	return cfg
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
