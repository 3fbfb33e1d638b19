package observe

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
	"github.com/vango-dev/waymark/pkg/router"
)

// MetricsConfig configures the Prometheus transition observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "waymark").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for transition duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus transition observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "waymark",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// MetricsObserver exports transition outcomes as Prometheus metrics. It
// implements router.Observer.
type MetricsObserver struct {
	transitionsTotal   *prometheus.CounterVec
	transitionDuration prometheus.Histogram
	redirectsTotal     prometheus.Counter
	inFlight           prometheus.Gauge

	mu      sync.Mutex
	started map[uint64]time.Time
}

// Metrics creates the Prometheus observer.
//
// Example:
//
//	r, err := router.New(routes, source,
//	    router.WithObserver(observe.Metrics(
//	        observe.WithNamespace("myapp"),
//	    )),
//	)
func Metrics(opts ...MetricsOption) *MetricsObserver {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &MetricsObserver{
		transitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_total",
			Help:        "Total number of route transitions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		transitionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transition_duration_seconds",
			Help:        "Time from location change to commit or abort",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		redirectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of redirect hops across all transitions",
			ConstLabels: config.ConstLabels,
		}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_in_flight",
			Help:        "Number of transitions currently resolving",
			ConstLabels: config.ConstLabels,
		}),

		started: make(map[uint64]time.Time),
	}
}

func (m *MetricsObserver) TransitionStarted(seq uint64, loc *location.Location) {
	m.mu.Lock()
	m.started[seq] = time.Now()
	m.mu.Unlock()
	m.inFlight.Inc()
}

func (m *MetricsObserver) TransitionCommitted(seq uint64, state *route.State) {
	m.finish(seq, "committed")
}

func (m *MetricsObserver) TransitionAborted(seq uint64, loc *location.Location, err error) {
	if errors.Is(err, router.ErrSuperseded) {
		m.finish(seq, "superseded")
		return
	}
	m.finish(seq, "aborted")
}

func (m *MetricsObserver) TransitionRedirected(seq uint64, from, to *location.Location) {
	m.redirectsTotal.Inc()
}

func (m *MetricsObserver) finish(seq uint64, status string) {
	m.mu.Lock()
	start, ok := m.started[seq]
	delete(m.started, seq)
	m.mu.Unlock()

	m.transitionsTotal.WithLabelValues(status).Inc()
	m.inFlight.Dec()
	if ok {
		m.transitionDuration.Observe(time.Since(start).Seconds())
	}
}
