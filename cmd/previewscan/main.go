// Package main provides the entry point for the previewscan CLI.
//
// previewscan validates HTML stamp preview rendering against a stampchain
// rendering service. It enumerates every HTML stamp from the catalog API,
// probes each stamp's preview endpoint, classifies the outcome, and exits
// non-zero when the failure rate crosses the configured threshold.
//
// Usage:
//
//	previewscan                   # Check all cached previews
//	previewscan --sample 50       # Random sample of 50
//	previewscan --refresh         # Force re-render on every probe
//	previewscan --refresh-failed  # Re-render only failed stamps
//
// See --help for all available options.
package main

// main is the entry point for previewscan.
func main() {
	Execute()
}
