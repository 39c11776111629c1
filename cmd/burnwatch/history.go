package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/burnwatch/burnwatch/internal/config"
	"github.com/burnwatch/burnwatch/internal/journal"
)

func newHistoryCommand(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent journaled snapshots",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			store, err := journal.Open(config.JournalPath(cfg))
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("journal is empty (enable it with journal.enabled in the config)")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAKEN AT\tSTATUS\tSUBSCRIPTION\tSEARCH\tTOOL CALLS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%.0f%%\t%.0f%%\n",
					e.TakenAt.Local().Format("2006-01-02 15:04:05"),
					e.Status,
					e.Subscription.UsedPercent(),
					e.Search.UsedPercent(),
					e.ToolCalls.UsedPercent())
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of rows to print")
	return cmd
}
