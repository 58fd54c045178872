package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stampchain-io/previewscan/internal/config"
	"github.com/stampchain-io/previewscan/internal/model"
)

// MarkdownWriter outputs the run report in Markdown format.
// This format is designed for sharing and for posting into issue trackers
// when a run uncovers broken previews.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// threshold is the failure-rate threshold used for the verdict alert.
	threshold float64

	// printer formats counts with locale-aware digit grouping.
	printer *message.Printer
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithThreshold sets the failure-rate threshold for the verdict alert.
func WithThreshold(threshold float64) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.threshold = threshold
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		threshold:  config.DefaultFailureRateThreshold,
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFailures(md, report)
	w.writeRemediations(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("HTML Stamp Preview Validation Report")
	md.PlainText("")

	scope := "full catalog"
	if report.Sampled {
		scope = w.printer.Sprintf("random sample of %d", report.Total())
	}
	mode := "cached"
	if report.Refresh {
		mode = "forced re-render"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Service", "`" + report.BaseURL + "`"},
			{"Run Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Catalog Size", w.printer.Sprintf("%d HTML stamps", report.CatalogSize)},
			{"Scope", scope},
			{"Probe Mode", mode},
			{"Elapsed", report.Elapsed.Round(time.Second).String()},
		},
	})
	md.PlainText("")
}

// writeSummary writes the outcome summary table, distribution chart, and
// the verdict alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Outcome Summary")
	md.PlainText("")

	rows := [][]string{
		{"OK (valid render)", strconv.Itoa(report.Tally.Count("OK"))},
		{"Blank render", strconv.Itoa(report.Tally.Count("BLANK"))},
		{"Fallback image", strconv.Itoa(report.Tally.Count("FALLBACK"))},
		{"Redirect (external)", strconv.Itoa(report.Tally.Count("REDIRECT"))},
		{"Timeout", strconv.Itoa(report.Tally.Count("TIMEOUT"))},
		{"Other HTTP errors", strconv.Itoa(report.Tally.OtherCount())},
		{"**Total**", "**" + strconv.Itoa(report.Total()) + "**"},
	}
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Total() > 0 {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Preview Outcome Distribution"),
		piechart.WithShowData(true),
	)

	labels := []struct {
		name  string
		count int
	}{
		{"OK", report.Tally.Count("OK")},
		{"Blank", report.Tally.Count("BLANK")},
		{"Fallback", report.Tally.Count("FALLBACK")},
		{"Redirect", report.Tally.Count("REDIRECT")},
		{"Timeout", report.Tally.Count("TIMEOUT")},
		{"Other", report.Tally.OtherCount()},
	}
	for _, l := range labels {
		if l.count > 0 {
			chart.LabelAndIntValue(l.name, uint64(l.count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert reflecting the run's verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	failed := len(report.Failed())
	switch {
	case report.ExceedsThreshold(w.threshold):
		md.Cautionf(
			"Failure rate %.1f%% exceeds the %.0f%% threshold: %d of %d stamps failed validation.",
			100*report.FailureRate(), 100*w.threshold, failed, report.Total(),
		)
	case failed > 0:
		md.Warningf(
			"%d stamp(s) failed validation, within the %.0f%% threshold.",
			failed, 100*w.threshold,
		)
	default:
		md.Tip(fmt.Sprintf("All %d tested stamps rendered successfully.", report.Total()))
	}
	md.PlainText("")
}

// writeFailures writes the failed-stamp table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Failed Stamps")
	md.PlainText("")

	failed := report.Failed()
	if len(failed) == 0 {
		md.PlainText("No failures.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(failed))
	for i, record := range failed {
		location := record.Result.RedirectLocation
		if location == "" {
			location = "-"
		}
		cache := record.Result.CacheHeader
		if cache == "" {
			cache = "-"
		}
		rows[i] = []string{
			fmt.Sprintf("#%d", record.Stamp.ID),
			"`" + truncateString(record.Stamp.TxHash, 19) + "`",
			record.Outcome.String(),
			strconv.Itoa(record.Result.HTTPStatus),
			fmt.Sprintf("%dB", record.Result.BodySize),
			cache,
			truncateString(location, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Stamp", "Tx Hash", "Outcome", "HTTP", "Size", "Cache", "Redirect Target"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRemediations writes the forced re-render results when the
// remediation loop ran.
func (w *MarkdownWriter) writeRemediations(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Remediations) == 0 {
		return
	}

	md.H2("Remediation")
	md.PlainText("")

	rows := make([][]string, len(report.Remediations))
	for i, rem := range report.Remediations {
		result := "STILL_FAILED"
		if rem.Fixed {
			result = "FIXED"
		}
		rows[i] = []string{
			fmt.Sprintf("#%d", rem.Record.Stamp.ID),
			rem.Record.Outcome.String(),
			rem.AfterOutcome.String(),
			result,
			fmt.Sprintf("%dB", rem.After.BodySize),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Stamp", "Before", "After", "Result", "Size"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainTextf("Fixed %d/%d stamps on re-render.",
		report.FixedCount(), len(report.Remediations))
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [previewscan](https://github.com/stampchain-io/previewscan)*")
}
