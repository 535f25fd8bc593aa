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
	applicationsCreatedTotal atomic.Uint64
	documentsGeneratedTotal  atomic.Uint64
	paymentsConfirmedTotal   atomic.Uint64

	bulkApplyJobsReceivedTotal  atomic.Uint64
	bulkApplyJobsCompletedTotal atomic.Uint64
	bulkApplyJobsFailedTotal    atomic.Uint64
	bulkApplyJobsDroppedTotal   atomic.Uint64

	bulkApplyDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncApplicationsCreated increments the applications counter.
func IncApplicationsCreated() {
	applicationsCreatedTotal.Add(1)
}

// IncDocumentsGenerated increments the generated documents counter.
func IncDocumentsGenerated() {
	documentsGeneratedTotal.Add(1)
}

// IncPaymentsConfirmed increments the confirmed payments counter.
func IncPaymentsConfirmed() {
	paymentsConfirmedTotal.Add(1)
}

// IncBulkApplyJobsReceived increments the received bulk apply jobs counter.
func IncBulkApplyJobsReceived() {
	bulkApplyJobsReceivedTotal.Add(1)
}

// IncBulkApplyJobsCompleted increments the completed bulk apply jobs counter.
func IncBulkApplyJobsCompleted() {
	bulkApplyJobsCompletedTotal.Add(1)
}

// IncBulkApplyJobsFailed increments the failed bulk apply jobs counter.
func IncBulkApplyJobsFailed() {
	bulkApplyJobsFailedTotal.Add(1)
}

// IncBulkApplyJobsDroppedUnrecoverable increments the dropped-messages counter.
func IncBulkApplyJobsDroppedUnrecoverable() {
	bulkApplyJobsDroppedTotal.Add(1)
}

// ObserveBulkApplyDurationMs records one bulk apply run duration in milliseconds.
func ObserveBulkApplyDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	bulkApplyDuration.Observe(value)
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
	writeCounter(&buf, "applications_created_total", "Total applications created", applicationsCreatedTotal.Load())
	writeCounter(&buf, "documents_generated_total", "Total resume documents generated", documentsGeneratedTotal.Load())
	writeCounter(&buf, "payments_confirmed_total", "Total payments confirmed", paymentsConfirmedTotal.Load())
	writeCounter(&buf, "bulk_apply_jobs_received_total", "Total bulk apply jobs received", bulkApplyJobsReceivedTotal.Load())
	writeCounter(&buf, "bulk_apply_jobs_completed_total", "Total bulk apply jobs completed", bulkApplyJobsCompletedTotal.Load())
	writeCounter(&buf, "bulk_apply_jobs_failed_total", "Total bulk apply jobs failed", bulkApplyJobsFailedTotal.Load())
	writeCounter(&buf, "bulk_apply_jobs_dropped_total", "Total bulk apply messages dropped as unrecoverable", bulkApplyJobsDroppedTotal.Load())
	writeHistogram(&buf, "bulk_apply_duration_ms", "Bulk apply run duration in milliseconds", bulkApplyDuration.Snapshot())
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
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
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
