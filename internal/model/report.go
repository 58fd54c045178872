package model

import "time"

// RunRecord joins a StampRef with its probe result and classification.
// It is the unit appended to a run's result list and is immutable once
// appended; every stamp probed produces exactly one RunRecord.
type RunRecord struct {
	Stamp   StampRef    `json:"stamp"`
	Result  ProbeResult `json:"result"`
	Outcome Outcome     `json:"outcome"`
}

// Remediation records one forced re-render of a failed stamp.
// Remediation is observational: it never changes the verdict computed from
// the main pass.
type Remediation struct {
	// Record is the failed record from the main pass.
	Record RunRecord `json:"record"`

	// After is the probe result of the forced re-render.
	After ProbeResult `json:"after"`

	// AfterOutcome is the classification of After.
	AfterOutcome Outcome `json:"after_outcome"`

	// Fixed is true when the re-render classified as OK.
	Fixed bool `json:"fixed"`
}

// Tally counts outcomes by category label across a run.
type Tally map[string]int

// fixedTallyLabels are the categories reported individually in the summary.
// Everything else (the HTTP_<code> family) is bucketed as OTHER.
var fixedTallyLabels = []string{"OK", "BLANK", "FALLBACK", "REDIRECT", "TIMEOUT"}

// NewTally creates a Tally with the fixed categories pre-seeded at zero so
// the summary always shows every line even for a clean run.
func NewTally() Tally {
	t := make(Tally, len(fixedTallyLabels)+1)
	for _, label := range fixedTallyLabels {
		t[label] = 0
	}
	return t
}

// Add increments the count for the outcome's category.
func (t Tally) Add(o Outcome) {
	t[o.String()]++
}

// Count returns the count for a category label.
func (t Tally) Count(label string) int {
	return t[label]
}

// OtherCount returns the total of all categories outside the five fixed
// labels, i.e. the HTTP_<code> family.
func (t Tally) OtherCount() int {
	other := 0
	for label, n := range t {
		fixed := false
		for _, f := range fixedTallyLabels {
			if label == f {
				fixed = true
				break
			}
		}
		if !fixed {
			other += n
		}
	}
	return other
}

// RunReport is the aggregate result of one full validation pass.
// It is built by the runner and consumed by the report writers.
type RunReport struct {
	// BaseURL is the rendering service that was validated.
	BaseURL string `json:"base_url"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the main pass.
	Elapsed time.Duration `json:"elapsed"`

	// CatalogSize is the number of HTML stamps the catalog returned,
	// before any sampling.
	CatalogSize int `json:"catalog_size"`

	// Sampled is true when the run was capped to a random subset.
	Sampled bool `json:"sampled"`

	// Refresh is true when every probe in the main pass forced a
	// re-render.
	Refresh bool `json:"refresh"`

	// Records holds one RunRecord per probed stamp, in probe order.
	Records []RunRecord `json:"records"`

	// Tally counts records by outcome category.
	Tally Tally `json:"tally"`

	// Remediations holds the forced re-render results when the
	// remediation loop ran. Nil otherwise.
	Remediations []Remediation `json:"remediations,omitempty"`
}

// Total returns the number of stamps tested.
func (r *RunReport) Total() int {
	return len(r.Records)
}

// Failed returns the records whose outcome is neither OK nor REDIRECT,
// in probe order.
func (r *RunReport) Failed() []RunRecord {
	var failed []RunRecord
	for _, rec := range r.Records {
		if rec.Outcome.IsFailure() {
			failed = append(failed, rec)
		}
	}
	return failed
}

// FailureRate returns the fraction of tested stamps that failed.
// An empty run counts as a 0% failure rate.
func (r *RunReport) FailureRate() float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return float64(len(r.Failed())) / float64(total)
}

// ExceedsThreshold reports whether the failure rate is strictly greater
// than the given threshold. Exactly at the threshold still passes.
func (r *RunReport) ExceedsThreshold(threshold float64) bool {
	return r.FailureRate() > threshold
}

// FixedCount returns how many remediations resolved their failure.
func (r *RunReport) FixedCount() int {
	fixed := 0
	for _, rem := range r.Remediations {
		if rem.Fixed {
			fixed++
		}
	}
	return fixed
}
