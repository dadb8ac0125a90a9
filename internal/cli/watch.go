package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ppiankov/driftscan/internal/pipeline"
	"github.com/spf13/cobra"
)

var debounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Rescan whenever documentation or the snapshot changes",
	Long: `Watch runs an initial scan and then rescans the repository each time a
document matching the doc globs or the repo-map snapshot changes. Changes
are collected for the debounce window before a rescan starts.

Example:
  driftscan watch
  driftscan watch ./myrepo --debounce 2s --metrics-file drift.prom`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&debounce, "debounce", time.Second, "delay collecting changes before a rescan")
	watchCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path rewritten after each scan")
	watchCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	watchCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored summary")
	addEngineFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(rootArg(args))
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr, logFormat, cfg.Output.Verbose)
	p := pipeline.NewPipeline(cfg, logger, cmd.OutOrStdout())
	rec := newRecorder(cfg)

	rescan := func(ctx context.Context) {
		scanCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if _, err := scanOnce(scanCtx, p, cfg, root, rec); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	rescan(ctx)

	w, err := pipeline.NewWatcher(root, p.Loader(root), p.SnapshotPath(root), debounce, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", root)

	return w.Run(ctx, func(ctx context.Context, changed []string) {
		fmt.Fprintf(os.Stderr, "↻ Changed: %s\n", strings.Join(changed, ", "))
		rescan(ctx)
	})
}
