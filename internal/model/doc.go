// Package model defines the core data structures used throughout previewscan.
//
// This package contains the following main types:
//   - StampRef: Identifies one HTML stamp discovered in the catalog
//   - ProbeResult: The normalized outcome of a single preview request
//   - Outcome: The classification of a ProbeResult
//   - RunReport: The aggregate result of a full validation pass
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (catalog, probe, runner, report) need to use
// these types, so centralizing them prevents import cycles.
//
// Classification lives here rather than in the probe package because it is a
// pure function over ProbeResult fields with no network dependency, which
// keeps it trivially testable in isolation.
package model
