package runner

import (
	"context"
	"fmt"

	"github.com/stampchain-io/previewscan/internal/model"
)

// Remediate re-renders every failed stamp from the main pass and records
// whether the forced refresh resolved the failure.
//
// Remediation is observational: it appends Remediation entries to the
// report but never changes the failure set or the exit verdict computed
// from the main pass. A stamp can only be re-probed here, never revisit
// the main pass.
func (r *Runner) Remediate(ctx context.Context, report *model.RunReport) error {
	failed := report.Failed()
	if len(failed) == 0 {
		return nil
	}

	fmt.Fprintf(r.output, "\n  Re-rendering %d failed stamps...\n", len(failed))

	for i, record := range failed {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		after := r.prober.Probe(ctx, record.Stamp.ID, true)
		afterOutcome := model.Classify(after, r.cfg.MinValidSize)
		fixed := afterOutcome.Kind == model.OutcomeOK

		marker := "STILL_FAILED"
		if fixed {
			marker = "FIXED"
		}
		fmt.Fprintf(r.output, "    #%d: %s -> %s (%s, %dB)\n",
			record.Stamp.ID, record.Outcome, afterOutcome, marker, after.BodySize)

		report.Remediations = append(report.Remediations, model.Remediation{
			Record:       record,
			After:        after,
			AfterOutcome: afterOutcome,
			Fixed:        fixed,
		})

		// Re-rendering is the most expensive thing we can ask of the
		// service, so the delay here is longer than either probing delay.
		if i+1 < len(failed) {
			r.sleep(r.cfg.RemediationDelay)
		}
	}

	fmt.Fprintf(r.output, "\n  Fixed %d/%d stamps on re-render\n",
		report.FixedCount(), len(failed))

	return nil
}
