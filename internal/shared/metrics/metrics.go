package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Registry tracks analyze-pipeline counters. All methods are safe for
// concurrent use and tolerate a nil receiver.
type Registry struct {
	requests     atomic.Uint64
	succeeded    atomic.Uint64
	rejected     atomic.Uint64
	failed       atomic.Uint64
	completionMs *histogram
}

// Default is the process-wide registry served at /metrics.
var Default = NewRegistry()

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		completionMs: newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000}),
	}
}

// IncRequests counts an analyze request entering the pipeline.
func (r *Registry) IncRequests() {
	if r != nil {
		r.requests.Add(1)
	}
}

// IncSucceeded counts an analysis returned to the caller.
func (r *Registry) IncSucceeded() {
	if r != nil {
		r.succeeded.Add(1)
	}
}

// IncRejected counts a request refused for a client-side reason.
func (r *Registry) IncRejected() {
	if r != nil {
		r.rejected.Add(1)
	}
}

// IncFailed counts a request that failed on the server side.
func (r *Registry) IncFailed() {
	if r != nil {
		r.failed.Add(1)
	}
}

// ObserveCompletion records the latency of one outbound completion call.
func (r *Registry) ObserveCompletion(d time.Duration) {
	if r == nil {
		return
	}
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		ms = 0
	}
	r.completionMs.Observe(ms)
}

// Handler exposes metrics in Prometheus text format.
func (r *Registry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, r.Render())
	}
}

// Render renders metrics in Prometheus text format.
func (r *Registry) Render() string {
	if r == nil {
		return ""
	}
	var buf bytes.Buffer
	writeCounter(&buf, "analyze_requests_total", "Analyze requests received", r.requests.Load())
	writeCounter(&buf, "analyze_succeeded_total", "Analyses returned to the caller", r.succeeded.Load())
	writeCounter(&buf, "analyze_rejected_total", "Analyze requests rejected as client errors", r.rejected.Load())
	writeCounter(&buf, "analyze_failed_total", "Analyze requests failed with server errors", r.failed.Load())
	writeHistogram(&buf, "completion_duration_ms", "Completion API latency in milliseconds", r.completionMs.Snapshot())
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

// Observe adds value to the first bucket whose bound covers it; buckets are
// cumulated at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
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
