package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage labels used across metrics and events
const (
	StageCapture    = "capture"
	StageTranscribe = "transcribe"
	StageFeedback   = "feedback"
	StageSynthesize = "synthesize"
	StagePlayback   = "playback"
)

// Metrics holds the Prometheus collectors for the pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	activeRuns             prometheus.Gauge
	runsTotal              *prometheus.CounterVec
	runDuration            prometheus.Histogram
	stageRequests          *prometheus.CounterVec
	stageLatency           *prometheus.HistogramVec
	captureAttempts        *prometheus.CounterVec
	errorsTotal            *prometheus.CounterVec
	circuitBreakerState    *prometheus.GaugeVec
	circuitBreakerFailures *prometheus.CounterVec
	audioBytes             *prometheus.CounterVec
}

// NewMetrics registers the pipeline collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		activeRuns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "speech_coach_active_runs",
			Help: "Number of pipeline runs in progress",
		}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_runs_total",
			Help: "Total number of pipeline runs",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speech_coach_run_duration_seconds",
			Help:    "End-to-end pipeline run duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		stageRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_stage_requests_total",
			Help: "Total number of stage executions",
		}, []string{"stage", "status"}),
		stageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speech_coach_stage_latency_seconds",
			Help:    "Stage latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"stage"}),
		captureAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_capture_attempts_total",
			Help: "Microphone capture attempts by outcome",
		}, []string{"outcome"}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_errors_total",
			Help: "Total number of errors",
		}, []string{"kind", "stage"}),
		circuitBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "speech_coach_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"service"}),
		circuitBreakerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_circuit_breaker_failures_total",
			Help: "Total circuit breaker failures",
		}, []string{"service"}),
		audioBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_audio_bytes_total",
			Help: "Total audio bytes written",
		}, []string{"direction"}), // direction: "in" or "out"
	}
}

// RecordRunStart records the start of a pipeline run
func (m *Metrics) RecordRunStart() {
	if m == nil {
		return
	}
	m.activeRuns.Inc()
}

// RecordRunEnd records the end of a pipeline run
func (m *Metrics) RecordRunEnd(start time.Time, success bool) {
	if m == nil {
		return
	}
	m.activeRuns.Dec()
	m.runDuration.Observe(time.Since(start).Seconds())
	m.runsTotal.WithLabelValues(status(success)).Inc()
}

// ObserveStage records one stage execution
func (m *Metrics) ObserveStage(stage string, start time.Time, success bool) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	m.stageRequests.WithLabelValues(stage, status(success)).Inc()
}

// RecordCaptureAttempt records one microphone attempt outcome
// (captured, timeout, empty, unintelligible, device_error, encode_error)
func (m *Metrics) RecordCaptureAttempt(outcome string) {
	if m == nil {
		return
	}
	m.captureAttempts.WithLabelValues(outcome).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(kind, stage string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(kind, stage).Inc()
}

// RecordAudioBytes records audio bytes written
func (m *Metrics) RecordAudioBytes(direction string, bytes int64) {
	if m == nil {
		return
	}
	m.audioBytes.WithLabelValues(direction).Add(float64(bytes))
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func (m *Metrics) UpdateCircuitBreakerState(service string, state int) {
	if m == nil {
		return
	}
	m.circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func (m *Metrics) IncrementCircuitBreakerFailures(service string) {
	if m == nil {
		return
	}
	m.circuitBreakerFailures.WithLabelValues(service).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
