package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsTotal          atomic.Uint64
	uploadsFailedTotal    atomic.Uint64
	analysisCacheHitTotal atomic.Uint64
	analysisFallbackTotal atomic.Uint64
	rateLimitedTotal      atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncUpload increments the accepted-uploads counter.
func IncUpload() {
	uploadsTotal.Add(1)
}

// IncUploadFailed increments the failed-uploads counter.
func IncUploadFailed() {
	uploadsFailedTotal.Add(1)
}

// IncAnalysisCacheHit increments the analysis cache-hit counter.
func IncAnalysisCacheHit() {
	analysisCacheHitTotal.Add(1)
}

// IncAnalysisFallback counts analyses that resolved to the placeholder record.
func IncAnalysisFallback() {
	analysisFallbackTotal.Add(1)
}

// IncRateLimited increments the rate-limited-requests counter.
func IncRateLimited() {
	rateLimitedTotal.Add(1)
}

// ObserveAnalysisDurationMs records an end-to-end analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_uploads_total", "Total resume uploads accepted", uploadsTotal.Load())
	writeCounter(&buf, "resume_uploads_failed_total", "Total resume uploads failed", uploadsFailedTotal.Load())
	writeCounter(&buf, "analysis_cache_hit_total", "Total analyses served from the content cache", analysisCacheHitTotal.Load())
	writeCounter(&buf, "analysis_fallback_total", "Total analyses resolved to the fallback record", analysisFallbackTotal.Load())
	writeCounter(&buf, "rate_limited_total", "Total requests rejected by the rate limiter", rateLimitedTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value into the first matching bucket. The render step
// accumulates counts, producing the cumulative le buckets Prometheus expects.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
