package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/stampchain-io/previewscan/internal/model"
)

// SimpleWriter outputs the plain-text results summary and failed-stamp
// details. This is the format the validation run streams to the terminal,
// continuing the numbered sections the runner printed during fetching and
// probing.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it pipes cleanly to files and CI logs, which is where
// this output usually ends up.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the results summary and failure details.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeSummary(&sb, report)
	w.writeFailures(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeSummary writes the outcome tally section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n[3/4] Results Summary\n")
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n")

	total := report.Total()
	okCount := report.Tally.Count("OK")
	okPercent := 0
	if total > 0 {
		okPercent = 100 * okCount / total
	}

	sb.WriteString(fmt.Sprintf("  Total tested:    %d\n", total))
	sb.WriteString(fmt.Sprintf("  OK (valid PNG):  %d (%d%%)\n", okCount, okPercent))
	sb.WriteString(fmt.Sprintf("  Blank render:    %d\n", report.Tally.Count("BLANK")))
	sb.WriteString(fmt.Sprintf("  Fallback/logo:   %d\n", report.Tally.Count("FALLBACK")))
	sb.WriteString(fmt.Sprintf("  Redirect (S3):   %d\n", report.Tally.Count("REDIRECT")))
	sb.WriteString(fmt.Sprintf("  Timeout:         %d\n", report.Tally.Count("TIMEOUT")))
	sb.WriteString(fmt.Sprintf("  Other errors:    %d\n", report.Tally.OtherCount()))
}

// writeFailures writes the per-stamp failure details, or the all-clear
// line when the failure set is empty.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.RunReport) {
	failed := report.Failed()
	if len(failed) == 0 {
		sb.WriteString(fmt.Sprintf("\n[4/4] All %d HTML stamps rendered successfully!\n", report.Total()))
		return
	}

	sb.WriteString(fmt.Sprintf("\n[4/4] %d stamps need investigation:\n", len(failed)))
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")

	for _, record := range failed {
		sb.WriteString(fmt.Sprintf("  #%d (%s) status=%s HTTP=%d size=%dB cache=%s\n",
			record.Stamp.ID,
			truncateString(record.Stamp.TxHash, 19),
			record.Outcome,
			record.Result.HTTPStatus,
			record.Result.BodySize,
			record.Result.CacheHeader,
		))
		if record.Result.RedirectLocation != "" {
			sb.WriteString(fmt.Sprintf("    -> %s\n", truncateString(record.Result.RedirectLocation, 80)))
		}
	}
}
