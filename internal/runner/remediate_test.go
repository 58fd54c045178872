package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stampchain-io/previewscan/internal/model"
)

// failedReport builds a report whose failure set contains the given stamp
// ids, all classified BLANK in the main pass.
func failedReport(ids ...int64) *model.RunReport {
	report := &model.RunReport{Tally: model.NewTally()}
	for _, id := range ids {
		outcome := model.Outcome{Kind: model.OutcomeBlank}
		report.Records = append(report.Records, model.RunRecord{
			Stamp:   model.StampRef{ID: id},
			Result:  model.ProbeResult{HTTPStatus: 200, BodySize: 12},
			Outcome: outcome,
		})
		report.Tally.Add(outcome)
	}
	return report
}

// TestRunnerRemediate tests the re-render loop over the failure set.
func TestRunnerRemediate(t *testing.T) {
	t.Parallel()

	t.Run("records fixed and still-failed stamps", func(t *testing.T) {
		t.Parallel()

		prober := &stubProber{
			results: map[int64]model.ProbeResult{
				7:  {HTTPStatus: 200, BodySize: 8000},
				12: {HTTPStatus: 200, BodySize: 12},
			},
		}

		var out bytes.Buffer
		run := NewRunner(&stubCatalog{}, prober, testConfig(),
			WithOutput(&out), WithSleep(noSleep))

		report := failedReport(7, 12)
		if err := run.Remediate(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Remediations) != 2 {
			t.Fatalf("expected 2 remediation entries, got %d", len(report.Remediations))
		}
		if !report.Remediations[0].Fixed || report.Remediations[1].Fixed {
			t.Errorf("expected #7 fixed and #12 still failed, got %+v", report.Remediations)
		}
		if report.FixedCount() != 1 {
			t.Errorf("expected FixedCount 1, got %d", report.FixedCount())
		}
		for _, refreshed := range prober.refreshed {
			if !refreshed {
				t.Error("remediation probes must force a refresh")
			}
		}

		if !strings.Contains(out.String(), "Re-rendering 2 failed stamps...") {
			t.Errorf("expected remediation header, got %q", out.String())
		}
		if !strings.Contains(out.String(), "#7: BLANK -> OK (FIXED, 8000B)") {
			t.Errorf("expected fixed line, got %q", out.String())
		}
		if !strings.Contains(out.String(), "#12: BLANK -> BLANK (STILL_FAILED, 12B)") {
			t.Errorf("expected still-failed line, got %q", out.String())
		}
		if !strings.Contains(out.String(), "Fixed 1/2 stamps on re-render") {
			t.Errorf("expected remediation summary, got %q", out.String())
		}
	})

	t.Run("does nothing when every stamp passed", func(t *testing.T) {
		t.Parallel()

		prober := &stubProber{}
		var out bytes.Buffer
		run := NewRunner(&stubCatalog{}, prober, testConfig(),
			WithOutput(&out), WithSleep(noSleep))

		report := &model.RunReport{Tally: model.NewTally()}
		report.Records = append(report.Records, model.RunRecord{
			Stamp:   model.StampRef{ID: 1},
			Outcome: model.Outcome{Kind: model.OutcomeOK},
		})

		if err := run.Remediate(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(prober.probed) != 0 {
			t.Errorf("expected no probes without failures, got %d", len(prober.probed))
		}
		if out.Len() != 0 {
			t.Errorf("expected no output without failures, got %q", out.String())
		}
	})

	t.Run("remediation never shrinks the failure set", func(t *testing.T) {
		t.Parallel()

		prober := &stubProber{def: model.ProbeResult{HTTPStatus: 200, BodySize: 8000}}
		run := NewRunner(&stubCatalog{}, prober, testConfig(),
			WithOutput(&bytes.Buffer{}), WithSleep(noSleep))

		report := failedReport(1, 2, 3)
		if err := run.Remediate(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Failed()) != 3 {
			t.Errorf("main-pass failure set must be unchanged, got %d failed", len(report.Failed()))
		}
		if report.FixedCount() != 3 {
			t.Errorf("expected every stamp fixed, got %d", report.FixedCount())
		}
	})

	t.Run("uses the remediation delay between re-renders", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.RemediationDelay = time.Second

		var slept []time.Duration
		prober := &stubProber{def: model.ProbeResult{HTTPStatus: 200, BodySize: 8000}}
		run := NewRunner(&stubCatalog{}, prober, cfg,
			WithOutput(&bytes.Buffer{}),
			WithSleep(func(d time.Duration) { slept = append(slept, d) }))

		if err := run.Remediate(context.Background(), failedReport(1, 2, 3)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(slept) != 2 {
			t.Fatalf("expected 2 sleeps for 3 re-renders, got %d", len(slept))
		}
		for _, d := range slept {
			if d != time.Second {
				t.Errorf("expected remediation delay 1s, got %v", d)
			}
		}
	})

	t.Run("cancellation stops the loop", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		prober := &stubProber{}
		run := NewRunner(&stubCatalog{}, prober, testConfig(),
			WithOutput(&bytes.Buffer{}), WithSleep(noSleep))

		if err := run.Remediate(ctx, failedReport(1, 2)); err == nil {
			t.Fatal("expected cancellation error")
		}
		if len(prober.probed) != 0 {
			t.Errorf("expected no probes after cancellation, got %d", len(prober.probed))
		}
	})
}
