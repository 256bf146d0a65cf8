package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/devstack/internal/domain"
)

// Metrics — Prometheus метрики супервизора.
//
// Реализует supervisor.Observer.
type Metrics struct {
	runsTotal      prometheus.Counter
	runDuration    prometheus.Histogram
	childrenTotal  *prometheus.CounterVec
	spawnFailures  *prometheus.CounterVec
	childExits     *prometheus.CounterVec
	childDuration  *prometheus.HistogramVec
	childrenActive prometheus.Gauge
}

// NewMetrics регистрирует метрики в reg.
// Для /metrics по умолчанию — prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		runsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "devstack_runs_total",
			Help: "Total supervisor runs finished",
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "devstack_run_duration_seconds",
			Help:    "Time from launch phase to DONE",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		childrenTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "devstack_children_started_total",
			Help: "Child processes started successfully",
		}, []string{"child"}),
		spawnFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "devstack_spawn_failures_total",
			Help: "Child processes that could not be started",
		}, []string{"child"}),
		childExits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "devstack_child_exits_total",
			Help: "Child process exits by final status",
		}, []string{"child", "status"}),
		childDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "devstack_child_duration_seconds",
			Help:    "Child process lifetime",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
		}, []string{"child"}),
		childrenActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "devstack_children_running",
			Help: "Child processes currently outstanding",
		}),
	}
}

// RunStarted реализует supervisor.Observer.
func (m *Metrics) RunStarted(_ context.Context, _ *domain.Run) error {
	return nil
}

// ChildStarted реализует supervisor.Observer.
func (m *Metrics) ChildStarted(_ context.Context, _ *domain.Run, child *domain.Child) error {
	if child.Status == domain.ChildStatusSpawnFailed {
		m.spawnFailures.WithLabelValues(child.Name()).Inc()
		return nil
	}
	m.childrenTotal.WithLabelValues(child.Name()).Inc()
	m.childrenActive.Inc()
	return nil
}

// ChildExited реализует supervisor.Observer.
func (m *Metrics) ChildExited(_ context.Context, _ *domain.Run, child *domain.Child) error {
	m.childrenActive.Dec()
	m.childExits.WithLabelValues(child.Name(), child.Status.String()).Inc()
	m.childDuration.WithLabelValues(child.Name()).Observe(child.Duration().Seconds())
	return nil
}

// RunFinished реализует supervisor.Observer.
func (m *Metrics) RunFinished(_ context.Context, run *domain.Run) error {
	m.runsTotal.Inc()
	m.runDuration.Observe(run.Duration().Seconds())
	return nil
}
