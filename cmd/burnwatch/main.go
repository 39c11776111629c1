package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/burnwatch/burnwatch/internal/config"
	"github.com/burnwatch/burnwatch/internal/version"
)

func main() {
	if os.Getenv("BURNWATCH_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	var (
		demoMode   bool
		configPath string
		refreshSec int
	)

	root := cobra.Command{
		Use:   "burnwatch",
		Short: "burnwatch is a terminal monitor for subscription plan quotas with a session burn-rate forecast.",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if refreshSec > 0 {
				cfg.UI.RefreshIntervalSeconds = refreshSec
			}
			return runDashboard(cfg, configPath, demoMode)
		},
	}
	root.Flags().BoolVar(&demoMode, "demo", false, "run against synthetic data, no credentials needed")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: platform config dir)")
	root.Flags().IntVar(&refreshSec, "refresh", 0, "refresh interval in seconds (overrides config)")

	root.AddCommand(newHistoryCommand(&configPath))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.Version)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
