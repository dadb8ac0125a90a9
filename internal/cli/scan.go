package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/driftscan/internal/metrics"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outJSON     string
	metricsFile string
	snapshotArg string
	workers     int
	noColor     bool
	useCache    bool
	timeout     time.Duration
	minCoverage float64
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Scan a repository for documentation drift",
	Long: `Scan analyzes a repository to:
- Extract feature claims from documentation, roadmaps and manifests
- Look up symbol, usage, file path and CLI flag evidence in the repo-map snapshot
- Classify each claim as implemented, partial or missing
- Report weighted coverage and plan/checkbox mismatches

Without a snapshot the claims are still reported with evidence unavailable.

Example:
  driftscan scan
  driftscan scan ./myrepo --snapshot .cache/repo-map.json
  driftscan scan . --json - --workers 8
  driftscan scan . --metrics-file /var/lib/node_exporter/driftscan.prom`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Output flags
	scanCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path, - for stdout (default from config: drift-report.json)")
	scanCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	scanCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored summary")
	scanCmd.Flags().Float64Var(&minCoverage, "min-coverage", 0, "fail when feature coverage is below this ratio (0-1)")

	addEngineFlags(scanCmd)
}

// addEngineFlags registers the flags shared by scan and watch
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&snapshotArg, "snapshot", "", "repo-map snapshot path, relative to root unless absolute")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent claim evaluators (default: NumCPU)")
	cmd.Flags().BoolVar(&useCache, "cache", false, "cache extracted candidates on disk between runs")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall scan timeout")
}

// buildConfig merges viper configuration with explicitly set flags
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("json") {
		cfg.Output.JSONPath = outJSON
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsPath = metricsFile
	}
	if flags.Changed("snapshot") {
		cfg.Scan.SnapshotPath = snapshotArg
	}
	if flags.Changed("workers") && workers > 0 {
		cfg.Concurrency.Workers = workers
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = useCache
	}
	if noColor {
		cfg.Output.Color = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg, nil
}

func rootArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func runScan(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", root)
		fmt.Fprintf(os.Stderr, "Snapshot: %s\n", cfg.Scan.SnapshotPath)
		fmt.Fprintf(os.Stderr, "Workers: %d\n", cfg.Concurrency.Workers)
		fmt.Fprintln(os.Stderr)
	}

	logger := newLogger(os.Stderr, logFormat, cfg.Output.Verbose)
	p := pipeline.NewPipeline(cfg, logger, cmd.OutOrStdout())

	result, err := scanOnce(ctx, p, cfg, root, newRecorder(cfg))
	if err != nil {
		return err
	}

	if minCoverage > 0 && result.Report.Summary.Available && result.Report.Summary.Features.WeightedCoverage < minCoverage {
		return fmt.Errorf("feature coverage %.4f below minimum %.4f", result.Report.Summary.Features.WeightedCoverage, minCoverage)
	}
	return nil
}

func newRecorder(cfg *model.Config) *metrics.Recorder {
	if cfg.Output.MetricsPath == "" {
		return nil
	}
	return metrics.New()
}

// scanOnce runs one scan and writes every configured output
func scanOnce(ctx context.Context, p *pipeline.Pipeline, cfg *model.Config, root string, rec *metrics.Recorder) (*pipeline.ScanResult, error) {
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Extracting claims...\n")
	}

	result, err := p.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	report := result.Report

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Read %d documents\n", report.Documents)
		fmt.Fprintf(os.Stderr, "✓ Extracted %d claims\n", len(report.Claims))
		if report.Evidence.Available {
			fmt.Fprintf(os.Stderr, "✓ Evaluated %d claims (%d files read)\n", report.Stats.ClaimsEvaluated, report.Stats.FilesRead)
		} else {
			fmt.Fprintf(os.Stderr, "✗ Evidence unavailable: %s\n", report.Evidence.Reason)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	if err := p.RenderReport(report, cfg.Output.JSONPath, cfg.Output.Verbose); err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	if rec != nil {
		rec.Observe(report)
		if err := rec.WriteTextfile(cfg.Output.MetricsPath); err != nil {
			return nil, err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote metrics: %s\n", cfg.Output.MetricsPath)
		}
	}
	return result, nil
}
