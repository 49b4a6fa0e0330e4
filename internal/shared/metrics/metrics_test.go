package metrics

import (
	"strings"
	"testing"
)

func TestHistogramObservePlacesValueOnce(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	var inBuckets uint64
	for i := range snap.buckets {
		inBuckets += snap.counts[i]
	}
	if inBuckets != 2 {
		t.Fatalf("expected 2 observations within buckets, got %d", inBuckets)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("expected one observation per bucket, got %v", snap.counts)
	}
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	if formatFloat(snap.sum) != "555" {
		t.Fatalf("unexpected sum %v", snap.sum)
	}
}

func TestRenderIncludesStageOutcomes(t *testing.T) {
	IncStageOutcome("summary", "failed")
	IncStageOutcome("clauses", "ok")
	ObserveStageDurationMs(42)

	out := Render()
	for _, want := range []string{
		`legallens_stage_outcomes_total{stage="summary",status="failed"}`,
		`legallens_stage_outcomes_total{stage="clauses",status="ok"}`,
		"# TYPE legallens_stage_duration_ms histogram",
		`legallens_stage_duration_ms_bucket{le="+Inf"}`,
		"legallens_reports_total",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
