package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"extpack/internal/archiver"
	"extpack/internal/config"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [archive]",
		Short: "List the entries of a packaged archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.ArchivePath()
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				if path, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve archive path: %w", err)
				}
			}

			entries, err := archiver.List(path)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "%s is empty\n", path)
				return nil
			}
			rows := make([][]string, 0, len(entries))
			var total uint64
			for _, e := range entries {
				total += e.Size
				rows = append(rows, []string{
					e.Name,
					humanize.Bytes(e.Size),
					humanize.Bytes(e.CompressedSize),
					e.Method,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Size", "Compressed", "Method"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d entries, %s uncompressed\n", len(entries), humanize.Bytes(total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
