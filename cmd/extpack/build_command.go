package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"extpack/internal/pipeline"
)

type buildOptions struct {
	keepWorkspace bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the extension (same as running extpack with no command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.keepWorkspace, "keep-workspace", false, "Keep the staging directory when the build fails")
	return cmd
}

func runBuild(cmd *cobra.Command, ctx *commandContext, opts buildOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.keepWorkspace {
		cfg.Workspace.KeepOnFailure = true
	}
	logger, err := ctx.newLogger(cmd)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(total int64) io.Writer {
		bar = newArchiveBar(cmd.ErrOrStderr(), total)
		return bar
	}
	result, runErr := pipeline.New(cfg, logger, pipeline.WithArchiveProgress(progress)).Run(cmd.Context())
	if bar != nil {
		_ = bar.Finish()
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Build "+result.BuildID, colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range buildSummaryLines(result, colorize) {
		fmt.Fprintln(out, line)
	}
	return runErr
}

// newArchiveBar draws compression progress on terminals and stays silent
// otherwise so piped output only carries log lines.
func newArchiveBar(w io.Writer, total int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(shouldColorize(w)),
		progressbar.OptionSetDescription("compressing"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func buildSummaryLines(result pipeline.Result, colorize bool) []string {
	elapsed := result.Duration().Round(time.Millisecond).String()
	if !result.Succeeded() {
		lines := []string{
			renderStatusLine("Status", statusError, "failed in "+result.FailedStage, colorize),
			renderStatusLine("Error kind", statusWarn, result.ErrorKind, colorize),
			renderStatusLine("Elapsed", statusInfo, elapsed, colorize),
		}
		if result.WorkspaceKept {
			lines = append(lines, renderStatusLine("Workspace kept", statusInfo, yesNo(true), colorize))
		}
		return lines
	}
	size := fmt.Sprintf("%s (%d bytes, %d entries)", humanize.Bytes(uint64(result.ArchiveBytes)), result.ArchiveBytes, result.ArchiveEntries)
	return []string{
		renderStatusLine("Status", statusOK, "succeeded", colorize),
		renderStatusLine("Archive", statusInfo, result.ArchivePath, colorize),
		renderStatusLine("Size", statusInfo, size, colorize),
		renderStatusLine("Sidecar", statusInfo, result.SidecarPath, colorize),
		renderStatusLine("License generated", statusInfo, yesNo(result.LicenseGenerated), colorize),
		renderStatusLine("Elapsed", statusInfo, elapsed, colorize),
	}
}
