// Package metrics 提供排序引擎的 Prometheus 指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager 管理引擎的全部指标，实现 ranker.Recorder。
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	returnedItems  prometheus.Histogram
	excludedItems  prometheus.Counter
	degraded       *prometheus.CounterVec
	failures       *prometheus.CounterVec
	breakerChanges *prometheus.CounterVec
	missingFeature *prometheus.CounterVec
}

// Option 配置 Manager。
type Option func(*Manager)

func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

func WithSubsystem(sub string) Option {
	return func(m *Manager) { m.subsystem = sub }
}

// WithRegistry 指定注册器；测试中传入独立的 prometheus.NewRegistry()。
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

func WithBuckets(b []float64) Option {
	return func(m *Manager) {
		if len(b) > 0 {
			m.buckets = b
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "trailrank",
		subsystem: "ranker",
		buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_total",
		Help:      "Rank requests served, by mode.",
	}, []string{"mode"})

	m.duration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_duration_seconds",
		Help:      "End-to-end rank latency, by mode.",
		Buckets:   m.buckets,
	}, []string{"mode"})

	m.returnedItems = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "returned_items",
		Help:      "Number of items returned per request.",
		Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
	})

	m.excludedItems = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "excluded_items_total",
		Help:      "Candidates dropped because of repeated negative feedback.",
	})

	m.degraded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "degraded_total",
		Help:      "Personalized requests that fell back to cold start, by reason.",
	}, []string{"reason"})

	m.failures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "failures_total",
		Help:      "Rank requests that returned an error, by error code.",
	}, []string{"code"})

	m.breakerChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "breaker_transitions_total",
		Help:      "Store circuit breaker state transitions.",
	}, []string{"name", "from", "to"})

	m.missingFeature = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "feature",
		Name:      "missing_total",
		Help:      "Item fields that were missing, out of range or malformed during extraction.",
	}, []string{"field"})
}

// ObserveRank 记录一次成功的排序请求。
func (m *Manager) ObserveRank(mode string, d time.Duration, returned int) {
	m.requests.WithLabelValues(mode).Inc()
	m.duration.WithLabelValues(mode).Observe(d.Seconds())
	m.returnedItems.Observe(float64(returned))
}

// AddExcluded 累加被反馈排除的物品数。
func (m *Manager) AddExcluded(n int) {
	if n > 0 {
		m.excludedItems.Add(float64(n))
	}
}

// IncDegraded 记录一次降级（missing_preference / malformed_preference）。
func (m *Manager) IncDegraded(reason string) {
	m.degraded.WithLabelValues(reason).Inc()
}

// IncFailure 记录一次失败请求。
func (m *Manager) IncFailure(code string) {
	m.failures.WithLabelValues(code).Inc()
}

// BreakerStateChanged 可直接作为 store.BreakerOptions.OnStateChange。
func (m *Manager) BreakerStateChanged(name, from, to string) {
	m.breakerChanges.WithLabelValues(name, from, to).Inc()
}

// ObserveMissingFeature 实现 feature.Monitor。
func (m *Manager) ObserveMissingFeature(field string) {
	m.missingFeature.WithLabelValues(field).Inc()
}
