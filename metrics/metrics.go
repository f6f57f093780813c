// Package metrics exposes optional Prometheus instrumentation for the
// sink layer: dropped-record counts, batch failures, async queue depth,
// and rolling-file size. Metrics are entirely opt-in — a nil *Registry
// (the default returned by Noop) makes every call a no-op, so sinks
// never have to branch on whether metrics are wired up.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the library's Prometheus collectors, labeled by sink
// name. A nil *Registry is valid and makes every method a no-op.
type Registry struct {
	dropped     *prometheus.CounterVec
	batchFailed *prometheus.CounterVec
	queueDepth  *prometheus.GaugeVec
	rollingSize *prometheus.GaugeVec
}

// New builds a Registry and registers its collectors with reg.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_sink_dropped_total",
			Help: "Records dropped by a sink's overflow policy.",
		}, []string{"sink"}),
		batchFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_batch_failed_total",
			Help: "Batches that failed to flush after exhausting retries.",
		}, []string{"sink"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quill_async_queue_depth",
			Help: "Current depth of an async sink's pending-record queue.",
		}, []string{"sink"}),
		rollingSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quill_rolling_file_bytes",
			Help: "Current size in bytes of a rolling file sink's active file.",
		}, []string{"sink"}),
	}
	reg.MustRegister(r.dropped, r.batchFailed, r.queueDepth, r.rollingSize)
	return r
}

// Noop returns a Registry whose methods are all no-ops.
func Noop() *Registry { return nil }

// DroppedInc increments the dropped-record counter for sink.
func (r *Registry) DroppedInc(sink string) {
	if r == nil {
		return
	}
	r.dropped.WithLabelValues(sink).Inc()
}

// BatchFailedInc increments the batch-failure counter for sink.
func (r *Registry) BatchFailedInc(sink string) {
	if r == nil {
		return
	}
	r.batchFailed.WithLabelValues(sink).Inc()
}

// QueueDepthSet sets the current queue depth gauge for sink.
func (r *Registry) QueueDepthSet(sink string, depth int) {
	if r == nil {
		return
	}
	r.queueDepth.WithLabelValues(sink).Set(float64(depth))
}

// RollingSizeSet sets the active rolling-file size gauge for sink.
func (r *Registry) RollingSizeSet(sink string, bytes int64) {
	if r == nil {
		return
	}
	r.rollingSize.WithLabelValues(sink).Set(float64(bytes))
}
