package metrics

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	IncJobStarted()
	IncJobCompleted()
	IncJobWaitingData()
	IncJobResumed()
	ObservePipelineDurationMs(1500)

	out := Render()
	for _, name := range []string{
		"job_started_total",
		"job_completed_total",
		"job_failed_total",
		"job_waiting_data_total",
		"job_resumed_total",
		"pipeline_duration_ms_bucket",
		"pipeline_duration_ms_sum",
		"pipeline_duration_ms_count",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("rendered output missing %s", name)
		}
	}
	if !strings.Contains(out, `le="+Inf"`) {
		t.Error("histogram missing +Inf bucket")
	}
	if !strings.Contains(out, "# TYPE job_started_total counter") {
		t.Error("missing counter type line")
	}
}

func TestHistogramBucketsCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100, 1000})
	h.Observe(5)
	h.Observe(50)
	h.Observe(50)
	h.Observe(5000)

	snap := h.Snapshot()
	if snap.count != 4 {
		t.Fatalf("expected count 4, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 2 || snap.counts[2] != 0 {
		t.Errorf("unexpected per-bucket counts: %v", snap.counts)
	}
	if snap.sum != 5105 {
		t.Errorf("expected sum 5105, got %v", snap.sum)
	}
}
