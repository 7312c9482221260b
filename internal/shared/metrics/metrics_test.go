package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{100, 250, 500})
	h.Observe(50)
	h.Observe(50)
	h.Observe(300)
	h.Observe(9000)

	var buf bytes.Buffer
	writeHistogram(&buf, "test_ms", "help", h.Snapshot())
	out := buf.String()

	for _, want := range []string{
		`test_ms_bucket{le="100"} 2`,
		`test_ms_bucket{le="250"} 2`,
		`test_ms_bucket{le="500"} 3`,
		`test_ms_bucket{le="+Inf"} 4`,
		`test_ms_count 4`,
		`test_ms_sum 9400`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderIncludesAllSeries(t *testing.T) {
	out := Render()
	for _, name := range []string{
		"resume_uploads_total",
		"resume_uploads_failed_total",
		"analysis_cache_hit_total",
		"analysis_fallback_total",
		"rate_limited_total",
		"analysis_duration_ms_bucket",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("missing series %q in:\n%s", name, out)
		}
	}
}
