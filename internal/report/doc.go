// Package report renders a completed validation run for humans.
//
// SimpleWriter produces the plain-text summary and failed-stamp sections of
// the progress stream; MarkdownWriter produces a shareable document with
// tables and an outcome distribution chart. There is deliberately no
// machine-readable writer: automation consumes the process exit code, not
// the output.
package report
