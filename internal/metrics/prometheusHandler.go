package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countTurnsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_turns_in_queue",
	Help: "Number of turns waiting for a worker",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var pipelineOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pipeline_outcomes_total",
	Help: "Image pipeline runs labelled by how they ended",
}, []string{"outcome"})

var duplicateActivities = promauto.NewCounter(prometheus.CounterOpts{
	Name: "duplicate_activities_total",
	Help: "Redelivered activities that were acknowledged and skipped",
})

var ocrPollIterations = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "ocr_poll_iterations",
	Help:    "Status requests issued per OCR job",
	Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 60, 120},
})

var turnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "turn_duration_seconds",
	Help:    "Total time spent processing one inbound activity.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementTurnsInQueue() {
	countTurnsInQueue.Inc()
}

func DecrementTurnsInQueue() {
	countTurnsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CountPipelineOutcome(outcome string) {
	pipelineOutcomes.WithLabelValues(outcome).Inc()
}

func CountDuplicateActivity() {
	duplicateActivities.Inc()
}

func CaptureOCRPollIterations(n int) {
	ocrPollIterations.Observe(float64(n))
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureTurnMetrics(label string, timeElapsed time.Duration) {
	turnDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
