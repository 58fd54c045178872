package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/stampchain-io/previewscan/internal/config"
	"github.com/stampchain-io/previewscan/internal/model"
)

// ErrFailureRateExceeded is returned by the CLI when the run's failure rate
// is strictly above the configured threshold. It exists so automation can
// rely on the exit code while the error message stays human-readable.
var ErrFailureRateExceeded = errors.New("failure rate exceeded threshold")

// CatalogFetcher enumerates the stamps to validate.
// Implemented by catalog.Fetcher; declared here so tests can substitute a
// fixed catalog without a server.
type CatalogFetcher interface {
	FetchAll(ctx context.Context) ([]model.StampRef, error)
}

// PreviewProber probes one stamp's preview endpoint.
// Implemented by probe.Prober.
type PreviewProber interface {
	Probe(ctx context.Context, id int64, refresh bool) model.ProbeResult
}

// Runner drives one full validation pass.
// It owns the run's result list and tally exclusively and appends to them
// only from its single execution goroutine, so no locking is needed.
type Runner struct {
	catalog CatalogFetcher
	prober  PreviewProber
	cfg     *config.Config

	// output receives the human-readable progress stream.
	output io.Writer

	// logger receives debug diagnostics.
	logger *slog.Logger

	// sleep implements the inter-request delays. Injectable so tests run
	// without real timing delays.
	sleep func(time.Duration)

	// rng drives sample selection. Injectable for deterministic tests.
	rng *rand.Rand
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets the destination for the progress stream.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSleep replaces the inter-request sleep function.
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

// WithRand replaces the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) {
		r.rng = rng
	}
}

// NewRunner creates a Runner over the given catalog and prober.
func NewRunner(catalog CatalogFetcher, prober PreviewProber, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		catalog: catalog,
		prober:  prober,
		cfg:     cfg,
		output:  os.Stdout,
		logger:  slog.Default(),
		sleep:   time.Sleep,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // Sampling, not cryptography
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the main validation pass: fetch, sample, probe, classify,
// tally. It returns the report of everything probed so far even when the
// context is cancelled mid-run; the error then reports the cancellation.
func (r *Runner) Run(ctx context.Context) (*model.RunReport, error) {
	fmt.Fprintf(r.output, "=== HTML Stamp Preview Validation ===\n\n")

	fmt.Fprintln(r.output, "[1/4] Fetching HTML stamp list...")
	all, err := r.catalog.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching stamp catalog: %w", err)
	}
	fmt.Fprintf(r.output, "  Total: %d HTML stamps\n\n", len(all))

	report := &model.RunReport{
		BaseURL:     r.cfg.BaseURL,
		StartedAt:   time.Now(),
		CatalogSize: len(all),
		Refresh:     r.cfg.Refresh,
		Tally:       model.NewTally(),
	}

	selected := all
	if r.cfg.Sample > 0 && r.cfg.Sample < len(all) {
		selected = r.sample(all, r.cfg.Sample)
		report.Sampled = true
		fmt.Fprintf(r.output, "  Testing random sample of %d\n\n", len(selected))
	}

	fmt.Fprintf(r.output, "[2/4] Testing %d preview endpoints...\n", len(selected))

	for i, stamp := range selected {
		select {
		case <-ctx.Done():
			report.Elapsed = time.Since(report.StartedAt)
			return report, ctx.Err()
		default:
		}

		result := r.prober.Probe(ctx, stamp.ID, r.cfg.Refresh)
		outcome := model.Classify(result, r.cfg.MinValidSize)

		record := model.RunRecord{Stamp: stamp, Result: result, Outcome: outcome}
		report.Records = append(report.Records, record)
		report.Tally.Add(outcome)

		// Progress every 10th stamp, immediately for anything non-OK.
		if (i+1)%10 == 0 || outcome.Kind != model.OutcomeOK {
			r.printProgress(i+1, len(selected), record)
		}

		if i+1 < len(selected) {
			r.sleep(r.cfg.Delay())
		}
	}

	report.Elapsed = time.Since(report.StartedAt)
	r.logger.Debug("main pass complete",
		"tested", report.Total(),
		"failed", len(report.Failed()),
		"elapsed", report.Elapsed,
	)

	return report, nil
}

// printProgress writes one progress line for a probed stamp.
// The recursive and engine annotations only appear when the rendering
// pipeline set the corresponding headers.
func (r *Runner) printProgress(index, total int, record model.RunRecord) {
	line := fmt.Sprintf("  [%d/%d] #%d: %s (HTTP %d, %dB",
		index, total, record.Stamp.ID, record.Outcome,
		record.Result.HTTPStatus, record.Result.BodySize)
	if record.Result.RecursiveHeader == "true" {
		line += ", recursive"
	}
	if record.Result.EngineHeader != "" {
		line += ", " + record.Result.EngineHeader
	}
	fmt.Fprintln(r.output, line+")")
}

// sample draws a uniform random subset of size n without replacement.
// Callers guarantee 0 < n < len(all).
func (r *Runner) sample(all []model.StampRef, n int) []model.StampRef {
	perm := r.rng.Perm(len(all))
	subset := make([]model.StampRef, n)
	for i := 0; i < n; i++ {
		subset[i] = all[perm[i]]
	}
	return subset
}
