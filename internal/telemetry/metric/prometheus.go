package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kvstore"

// Registry holds all application metrics on a dedicated prometheus.Registry.
type Registry struct {
	registry *prometheus.Registry

	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	ConnectionsClosed *prometheus.CounterVec
	CommandsTotal     *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	BytesReadTotal    prometheus.Counter
	BytesWrittenTotal prometheus.Counter

	keysOnce sync.Once
}

// NewRegistry creates a registry with the kvstore collectors plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		ConnectionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Total number of closed client connections by reason.",
		}, []string{"reason"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of processed commands by operation and result.",
		}, []string{"op", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent decoding and executing a command.",
			Buckets:   []float64{0.000001, 0.0000025, 0.000005, 0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001},
		}, []string{"op"}),
		BytesReadTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Total bytes read from clients.",
		}),
		BytesWrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Total bytes written to clients.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.ConnectionsClosed,
		r.CommandsTotal,
		r.CommandDuration,
		r.BytesReadTotal,
		r.BytesWrittenTotal,
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RegisterKeyCount exposes kvstore_keys, read from count on every scrape.
// Only the first call has an effect.
func (r *Registry) RegisterKeyCount(count func() int) {
	r.keysOnce.Do(func() {
		r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keys",
			Help:      "Number of keys in the store.",
		}, func() float64 {
			return float64(count())
		}))
	})
}

// ConnectionOpened records an accepted connection.
func (r *Registry) ConnectionOpened() {
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnectionClosed records a reaped connection.
func (r *Registry) ConnectionClosed(reason string) {
	r.ConnectionsActive.Dec()
	r.ConnectionsClosed.WithLabelValues(reason).Inc()
}

// CommandProcessed records one command.
func (r *Registry) CommandProcessed(op, result string, d time.Duration) {
	r.CommandsTotal.WithLabelValues(op, result).Inc()
	r.CommandDuration.WithLabelValues(op).Observe(d.Seconds())
}

// BytesRead records bytes read from a client.
func (r *Registry) BytesRead(n int) {
	r.BytesReadTotal.Add(float64(n))
}

// BytesWritten records bytes written to a client.
func (r *Registry) BytesWritten(n int) {
	r.BytesWrittenTotal.Add(float64(n))
}
