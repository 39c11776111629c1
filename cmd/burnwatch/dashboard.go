package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/burnwatch/burnwatch/internal/appupdate"
	"github.com/burnwatch/burnwatch/internal/config"
	"github.com/burnwatch/burnwatch/internal/core"
	"github.com/burnwatch/burnwatch/internal/journal"
	"github.com/burnwatch/burnwatch/internal/providers/demo"
	"github.com/burnwatch/burnwatch/internal/providers/plan"
	"github.com/burnwatch/burnwatch/internal/session"
	"github.com/burnwatch/burnwatch/internal/tui"
	"github.com/burnwatch/burnwatch/internal/version"
)

func runDashboard(cfg config.Config, configPath string, demoMode bool) error {
	var provider core.SnapshotProvider
	if demoMode {
		provider = demo.New()
	} else {
		provider = plan.New()
	}

	acct := cfg.Account
	if creds, err := config.LoadCredentials(); err == nil {
		if key, ok := creds.Keys[acct.ID]; ok {
			acct.Token = key
		}
	}

	interval := time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second
	engine := core.NewEngine(provider, acct, interval)

	var store *journal.Store
	if cfg.Journal.Enabled {
		var err error
		store, err = journal.Open(config.JournalPath(cfg))
		if err != nil {
			log.Printf("journal disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	model := tui.NewModel(cfg.UI.WarnThreshold, cfg.UI.CritThreshold)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var program *tea.Program

	// The session tracker is single-threaded by contract; this mutex is the
	// host-side serialization of engine callbacks and key handlers.
	var (
		mu      sync.Mutex
		tracker = session.New(
			session.WithCycleHours(cfg.Session.CycleHours),
			session.WithSessionWeight(cfg.Session.SessionWeight),
		)
		tracking = cfg.Session.Track
		seeded   bool
	)

	publish := func(snap core.Snapshot) {
		msg := tui.SnapshotMsg{Snapshot: snap, Tracking: tracking}
		if snap.Status != core.StatusError && snap.Status != core.StatusAuth {
			if !seeded {
				tracker.Seed(snap, tracking)
				seeded = true
			} else {
				tracker.Record(snap)
			}
			msg.Usage = tracker.Usage(snap)
			msg.Analytics = tracker.Analytics(snap)
			if at, ok := tracker.StartedAt(); ok {
				msg.SessionAt = at
			}
		}
		if program != nil {
			program.Send(msg)
		}
	}

	engine.OnUpdate(func(snap core.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		publish(snap)

		if store != nil {
			if err := store.Append(ctx, snap); err != nil {
				log.Printf("journal append: %v", err)
			}
		}
	})

	model.SetOnRefresh(func() {
		go engine.Refresh(ctx)
	})

	model.SetOnToggleTracking(func() {
		mu.Lock()
		defer mu.Unlock()
		tracking = !tracking
		snap, ok := engine.Last()
		if !ok {
			return
		}
		// Flipping the toggle starts (or ends) a session right here: seed
		// replaces any prior state, disabling clears it.
		tracker.Seed(snap, tracking)
		seeded = tracking
		publish(snap)
	})

	program = tea.NewProgram(model, tea.WithAltScreen())

	go engine.Run(ctx)

	// Config hot reload: a toggle flip in the settings file re-seeds the
	// session, matching the in-app `t` key.
	go func() {
		path := configPath
		if path == "" {
			path = config.ConfigPath()
		}
		err := config.Watch(ctx, path, func(next config.Config) {
			mu.Lock()
			defer mu.Unlock()
			engine.SetInterval(time.Duration(next.UI.RefreshIntervalSeconds) * time.Second)
			if next.Session.Track != tracking {
				tracking = next.Session.Track
				if snap, ok := engine.Last(); ok {
					tracker.Seed(snap, tracking)
					seeded = tracking
					publish(snap)
				}
			}
		})
		if err != nil {
			log.Printf("config watch: %v", err)
		}
	}()

	go func() {
		result, err := appupdate.Check(ctx, appupdate.CheckOptions{CurrentVersion: version.Version})
		if err != nil {
			log.Printf("update check: %v", err)
			return
		}
		if result.UpdateAvailable && program != nil {
			program.Send(tui.UpdateAvailableMsg{Version: result.LatestVersion})
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		program.Quit()
	}()

	_, err := program.Run()
	return err
}
