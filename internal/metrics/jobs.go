package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/kahanmc/internal/job"
	"github.com/agbru/kahanmc/internal/logging"
)

// Namespace prefixes every exported metric.
const Namespace = "kahanmc"

var _ job.Recorder = (*JobMetrics)(nil)

// JobMetrics records job lifecycle events as Prometheus metrics.
type JobMetrics struct {
	registry *prometheus.Registry
	memory   *MemoryCollector

	started      *prometheus.CounterVec
	finished     *prometheus.CounterVec
	observations *prometheus.CounterVec
	estimate     *prometheus.GaugeVec
	errEstimate  *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
	heapDelta    *prometheus.GaugeVec
}

// NewJobMetrics creates the job metrics on a fresh registry, together with
// the Go and process collectors and heap gauges fed by a MemoryCollector.
func NewJobMetrics() *JobMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	mc := NewMemoryCollector()

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "heap_alloc_bytes",
		Help:      "Bytes of allocated heap objects.",
	}, func() float64 { return float64(mc.Snapshot().HeapAlloc) })
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &JobMetrics{
		registry: reg,
		memory:   mc,
		started: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "jobs_started_total",
			Help:      "Number of estimation jobs started.",
		}, []string{"job"}),
		finished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "jobs_finished_total",
			Help:      "Number of estimation jobs that reached a terminal state.",
		}, []string{"job", "state"}),
		observations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "observations_total",
			Help:      "Number of observations absorbed by the estimators.",
		}, []string{"job"}),
		estimate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "estimate",
			Help:      "Latest published estimate.",
		}, []string{"job"}),
		errEstimate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "error_estimate",
			Help:      "Latest published error estimate.",
		}, []string{"job"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time from start to termination of a job.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4.4min
		}, []string{"job", "state"}),
		heapDelta: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "job_heap_delta_bytes",
			Help:      "Live heap change between the start and the end of a job.",
		}, []string{"job"}),
	}
}

// Registry exposes the underlying registry.
func (m *JobMetrics) Registry() *prometheus.Registry { return m.registry }

// Memory returns the collector tracking per-job heap deltas.
func (m *JobMetrics) Memory() *MemoryCollector { return m.memory }

// JobStarted implements job.Recorder.
func (m *JobMetrics) JobStarted(name string) {
	m.started.WithLabelValues(name).Inc()
	m.memory.JobStarted(name)
}

// ObservationsAdded implements job.Recorder.
func (m *JobMetrics) ObservationsAdded(name string, n uint64) {
	m.observations.WithLabelValues(name).Add(float64(n))
}

// EstimatePublished implements job.Recorder.
func (m *JobMetrics) EstimatePublished(name string, estimate, errorEstimate float64) {
	m.estimate.WithLabelValues(name).Set(estimate)
	m.errEstimate.WithLabelValues(name).Set(errorEstimate)
}

// JobFinished implements job.Recorder.
func (m *JobMetrics) JobFinished(name, state string, _ uint64, elapsed time.Duration) {
	m.finished.WithLabelValues(name, state).Inc()
	m.duration.WithLabelValues(name, state).Observe(elapsed.Seconds())
	if d, ok := m.memory.finish(name); ok {
		m.heapDelta.WithLabelValues(name).Set(float64(d.Bytes))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *JobMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *JobMetrics) Serve(ctx context.Context, addr string, logger logging.Logger) error {
	sec := DefaultSecurityConfig()
	mux := http.NewServeMux()
	mux.Handle("/metrics", SecurityMiddleware(sec, m.Handler().ServeHTTP))
	mux.Handle("/healthz", SecurityMiddleware(sec, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", logging.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
