package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"extpack/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent builds of this project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Build history is disabled (history.enabled = false)")
				return nil
			}

			store, err := history.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, records)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No builds recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, historyRow(rec))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Build", "Started", "Status", "Stage", "Size", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of builds to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func historyRow(rec history.Record) []string {
	id := rec.BuildID
	if len(id) > 8 {
		id = id[:8]
	}
	size := "-"
	if rec.Status == history.StatusSucceeded {
		size = humanize.Bytes(uint64(rec.ArchiveBytes))
	}
	stage := rec.FailedStage
	if stage == "" {
		stage = "-"
	}
	return []string{
		id,
		rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
		string(rec.Status),
		stage,
		size,
		rec.Duration().Round(time.Millisecond).String(),
	}
}
