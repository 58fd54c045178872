package model

import "testing"

// makeRecords builds a report with the given number of OK records and
// failure records (all BLANK).
func makeRecords(ok, failed int) *RunReport {
	report := &RunReport{Tally: NewTally()}
	id := int64(1)
	for i := 0; i < ok; i++ {
		outcome := Outcome{Kind: OutcomeOK}
		report.Records = append(report.Records, RunRecord{
			Stamp:   StampRef{ID: id},
			Result:  ProbeResult{HTTPStatus: 200, BodySize: 8000},
			Outcome: outcome,
		})
		report.Tally.Add(outcome)
		id++
	}
	for i := 0; i < failed; i++ {
		outcome := Outcome{Kind: OutcomeBlank}
		report.Records = append(report.Records, RunRecord{
			Stamp:   StampRef{ID: id},
			Result:  ProbeResult{HTTPStatus: 200, BodySize: 12},
			Outcome: outcome,
		})
		report.Tally.Add(outcome)
		id++
	}
	return report
}

// TestTally tests outcome counting and the OTHER bucket.
func TestTally(t *testing.T) {
	t.Parallel()

	t.Run("fixed categories are pre-seeded", func(t *testing.T) {
		t.Parallel()

		tally := NewTally()
		for _, label := range []string{"OK", "BLANK", "FALLBACK", "REDIRECT", "TIMEOUT"} {
			if _, ok := tally[label]; !ok {
				t.Errorf("expected %s to be pre-seeded", label)
			}
		}
	})

	t.Run("Add counts by category label", func(t *testing.T) {
		t.Parallel()

		tally := NewTally()
		tally.Add(Outcome{Kind: OutcomeOK})
		tally.Add(Outcome{Kind: OutcomeOK})
		tally.Add(Outcome{Kind: OutcomeBlank})

		if tally.Count("OK") != 2 {
			t.Errorf("expected OK count 2, got %d", tally.Count("OK"))
		}
		if tally.Count("BLANK") != 1 {
			t.Errorf("expected BLANK count 1, got %d", tally.Count("BLANK"))
		}
	})

	t.Run("HTTP errors bucket as OTHER", func(t *testing.T) {
		t.Parallel()

		tally := NewTally()
		tally.Add(Outcome{Kind: OutcomeHTTPError, HTTPStatus: 500})
		tally.Add(Outcome{Kind: OutcomeHTTPError, HTTPStatus: 404})
		tally.Add(Outcome{Kind: OutcomeHTTPError, HTTPStatus: 500})
		tally.Add(Outcome{Kind: OutcomeOK})

		if tally.OtherCount() != 3 {
			t.Errorf("expected OtherCount 3, got %d", tally.OtherCount())
		}
		if tally.Count("HTTP_500") != 2 {
			t.Errorf("expected HTTP_500 count 2, got %d", tally.Count("HTTP_500"))
		}
	})
}

// TestRunReportFailed tests that the failure set excludes OK and REDIRECT.
func TestRunReportFailed(t *testing.T) {
	t.Parallel()

	report := &RunReport{Tally: NewTally()}
	outcomes := []Outcome{
		{Kind: OutcomeOK},
		{Kind: OutcomeRedirect},
		{Kind: OutcomeBlank},
		{Kind: OutcomeFallback},
		{Kind: OutcomeTimeout},
		{Kind: OutcomeHTTPError, HTTPStatus: 500},
	}
	for i, outcome := range outcomes {
		report.Records = append(report.Records, RunRecord{
			Stamp:   StampRef{ID: int64(i + 1)},
			Outcome: outcome,
		})
	}

	failed := report.Failed()
	if len(failed) != 4 {
		t.Fatalf("expected 4 failed records, got %d", len(failed))
	}

	// Probe order is preserved.
	expectedIDs := []int64{3, 4, 5, 6}
	for i, record := range failed {
		if record.Stamp.ID != expectedIDs[i] {
			t.Errorf("failed[%d].Stamp.ID = %d, expected %d", i, record.Stamp.ID, expectedIDs[i])
		}
	}
}

// TestRunReportFailureRate tests the exit-code boundary: 5 failures out of
// 100 is exactly the 5% threshold and passes; 6 fails.
func TestRunReportFailureRate(t *testing.T) {
	t.Parallel()

	t.Run("empty run has zero failure rate", func(t *testing.T) {
		t.Parallel()

		report := &RunReport{Tally: NewTally()}
		if report.FailureRate() != 0 {
			t.Errorf("expected 0, got %f", report.FailureRate())
		}
		if report.ExceedsThreshold(0.05) {
			t.Error("empty run must not exceed the threshold")
		}
	})

	t.Run("exactly at threshold passes", func(t *testing.T) {
		t.Parallel()

		report := makeRecords(95, 5)
		if report.ExceedsThreshold(0.05) {
			t.Errorf("5/100 failed (rate %f) must not exceed a 0.05 threshold", report.FailureRate())
		}
	})

	t.Run("above threshold fails", func(t *testing.T) {
		t.Parallel()

		report := makeRecords(94, 6)
		if !report.ExceedsThreshold(0.05) {
			t.Errorf("6/100 failed (rate %f) must exceed a 0.05 threshold", report.FailureRate())
		}
	})
}

// TestRunReportFixedCount tests remediation accounting.
func TestRunReportFixedCount(t *testing.T) {
	t.Parallel()

	report := &RunReport{Tally: NewTally()}
	report.Remediations = []Remediation{
		{Fixed: true},
		{Fixed: false},
		{Fixed: true},
	}

	if report.FixedCount() != 2 {
		t.Errorf("expected FixedCount 2, got %d", report.FixedCount())
	}
}
