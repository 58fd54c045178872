package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stampchain-io/previewscan/internal/catalog"
	"github.com/stampchain-io/previewscan/internal/config"
	"github.com/stampchain-io/previewscan/internal/model"
	"github.com/stampchain-io/previewscan/internal/probe"
	"github.com/stampchain-io/previewscan/internal/report"
	"github.com/stampchain-io/previewscan/internal/runner"
)

// NewRootCmd creates the root command for previewscan.
// The tool deliberately has no subcommands: one invocation is one
// validation run, configured entirely through flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "previewscan",
		Short: "Validate HTML stamp preview rendering",
		Long: `previewscan validates HTML stamp preview rendering across all HTML stamps.

It fetches the full HTML stamp catalog from the rendering service, probes
each stamp's preview endpoint without following redirects, and classifies
every outcome as OK, BLANK, FALLBACK, REDIRECT, TIMEOUT, or HTTP_<code>.

The process exits 0 when the failure rate is at or below 5% and 1 when it
is above, so the run can gate automated monitoring directly.

Examples:
  # Check every cached preview
  previewscan

  # Check a random sample of 50 stamps
  previewscan --sample 50

  # Force a re-render on every probe
  previewscan --refresh

  # Re-render only the stamps that failed the main pass
  previewscan --refresh-failed

  # Validate a staging deployment and keep a markdown report
  previewscan --base-url https://staging.stampchain.io --markdown -o report.md

Configuration file (.previewscan) example:
  base_url: https://stampchain.io
  min_valid_size: 5000
  timeout: 60s
  probe_delay: 100ms`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	cmd.Flags().IntP("sample", "s", 0,
		"Cap the run to a random sample of this size (0 = full catalog)")
	cmd.Flags().Bool("refresh", false,
		"Force re-render on every probe in the main pass")
	cmd.Flags().Bool("refresh-failed", false,
		"Re-render every failing stamp after the main pass")

	cmd.Flags().StringP("base-url", "u", config.DefaultBaseURL,
		"Rendering service base URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-probe request timeout")
	cmd.Flags().Duration("delay", 0,
		"Inter-probe delay override (0 = refresh-dependent default)")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .previewscan in current or home directory)")

	cmd.Flags().BoolP("markdown", "m", false,
		"Write a Markdown report after the run")
	cmd.Flags().StringP("output", "o", "",
		"Markdown report destination (implies --markdown; default stdout)")

	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runRootCmd executes a validation run.
func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runValidation(ctx, cfg, logger)
}

// buildConfig creates a Config from defaults, the optional config file,
// and cobra command flags, in that precedence order (flags win).
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, a missing file just means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.Sample, err = cmd.Flags().GetInt("sample")
	if err != nil {
		return nil, err
	}

	cfg.Refresh, err = cmd.Flags().GetBool("refresh")
	if err != nil {
		return nil, err
	}

	cfg.RefreshFailed, err = cmd.Flags().GetBool("refresh-failed")
	if err != nil {
		return nil, err
	}

	// Scalars that also live in the config file only override when the
	// flag was actually set, so a file value survives the flag default.
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL, err = cmd.Flags().GetString("base-url")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("delay") {
		delay, err := cmd.Flags().GetDuration("delay")
		if err != nil {
			return nil, err
		}
		if delay > 0 {
			cfg.ProbeDelay = delay
			cfg.RefreshDelay = delay
		}
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	if cfg.ReportFile != "" {
		cfg.MarkdownReport = true
	}

	cfg.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// runValidation wires the components together and executes the run.
func runValidation(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting validation run",
		"baseURL", cfg.BaseURL,
		"sample", cfg.Sample,
		"refresh", cfg.Refresh,
		"refreshFailed", cfg.RefreshFailed,
	)

	fetcher := catalog.NewFetcher(
		&http.Client{Timeout: cfg.CatalogTimeout},
		cfg.BaseURL,
		catalog.WithPageSize(cfg.PageSize),
		catalog.WithUserAgent(cfg.UserAgent),
		catalog.WithOutput(os.Stdout),
		catalog.WithLogger(logger),
	)

	prober := probe.NewProber(
		cfg.BaseURL,
		probe.WithTimeout(cfg.Timeout),
		probe.WithMaxBodySize(cfg.MaxBodySize),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithLogger(logger),
	)

	run := runner.NewRunner(fetcher, prober, cfg, runner.WithLogger(logger))

	runReport, err := run.Run(ctx)
	if err != nil {
		return err
	}

	// Summary and failure details continue the numbered stdout sections.
	if _, err := report.NewSimpleWriter(os.Stdout).Write(runReport); err != nil {
		return err
	}

	if cfg.RefreshFailed {
		if err := run.Remediate(ctx, runReport); err != nil {
			return err
		}
	}

	// The markdown report is written last so it includes remediation
	// results when the loop ran.
	if cfg.MarkdownReport {
		if err := writeMarkdownReport(cfg, runReport); err != nil {
			logger.Error("markdown report failed", "error", err)
			return err
		}
	}

	if runReport.ExceedsThreshold(cfg.FailureRateThreshold) {
		return fmt.Errorf("%w: %d of %d stamps failed (%.1f%% > %.0f%%)",
			runner.ErrFailureRateExceeded,
			len(runReport.Failed()), runReport.Total(),
			100*runReport.FailureRate(), 100*cfg.FailureRateThreshold)
	}

	return nil
}

// writeMarkdownReport writes the markdown report to the configured
// destination, creating parent directories as needed.
func writeMarkdownReport(cfg *config.Config, runReport *model.RunReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	writer := report.NewMarkdownWriter(output,
		report.WithThreshold(cfg.FailureRateThreshold))
	_, err := writer.Write(runReport)
	return err
}
