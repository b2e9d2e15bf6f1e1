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
	credentialLookupsTotal        atomic.Uint64
	credentialLookupMissesTotal   atomic.Uint64
	credentialLookupFailuresTotal atomic.Uint64
	credentialUploadsTotal        atomic.Uint64

	resolveDuration = newHistogram([]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncLookups adds n to the per-credential lookup counter.
func IncLookups(n int) {
	if n > 0 {
		credentialLookupsTotal.Add(uint64(n))
	}
}

// IncLookupMisses adds n to the absent-record counter.
func IncLookupMisses(n int) {
	if n > 0 {
		credentialLookupMissesTotal.Add(uint64(n))
	}
}

// IncLookupFailures adds n to the store-fault counter.
func IncLookupFailures(n int) {
	if n > 0 {
		credentialLookupFailuresTotal.Add(uint64(n))
	}
}

// IncUploads increments the accepted-upload counter.
func IncUploads() {
	credentialUploadsTotal.Add(1)
}

// ObserveResolveDurationMs records an aggregate resolution duration in milliseconds.
func ObserveResolveDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	resolveDuration.Observe(value)
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
	writeCounter(&buf, "credential_lookups_total", "Total per-credential lookups issued", credentialLookupsTotal.Load())
	writeCounter(&buf, "credential_lookup_misses_total", "Total lookups returning no record", credentialLookupMissesTotal.Load())
	writeCounter(&buf, "credential_lookup_failures_total", "Total lookups failing on a store fault", credentialLookupFailuresTotal.Load())
	writeCounter(&buf, "credential_uploads_total", "Total credential uploads accepted", credentialUploadsTotal.Load())
	writeHistogram(&buf, "credential_resolve_duration_ms", "Aggregate credential resolution duration in milliseconds", resolveDuration.Snapshot())
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
