// Package metrics exposes Prometheus collectors for the bot runtime.
//
// All methods are safe on a nil *Metrics, so callers that run without metrics need no
// guards.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "tankbot").
	Namespace string

	// ConstLabels are constant labels added to all metrics, e.g. the bot name.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for callback duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "tankbot",
		// Turn timeouts are tens of milliseconds, so the interesting range is narrow.
		Buckets:  []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.03, 0.05, 0.1, 0.25},
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors of one bot process.
type Metrics struct {
	framesReceived     prometheus.Counter
	framesSent         prometheus.Counter
	messages           *prometheus.CounterVec
	decodeErrors       prometheus.Counter
	unexpectedMessages *prometheus.CounterVec
	ticks              prometheus.Counter
	intentsSent        prometheus.Counter
	intentsSkipped     prometheus.Counter
	callbackDuration   prometheus.Histogram
	phase              prometheus.Gauge
}

// New registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_received_total",
			Help:        "Text frames received from the server",
			ConstLabels: config.ConstLabels,
		}),
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_sent_total",
			Help:        "Text frames sent to the server",
			ConstLabels: config.ConstLabels,
		}),
		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "messages_total",
			Help:        "Decoded inbound messages by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "decode_errors_total",
			Help:        "Inbound frames dropped as malformed",
			ConstLabels: config.ConstLabels,
		}),
		unexpectedMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "unexpected_messages_total",
			Help:        "Messages that arrived in a phase that does not allow them",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "ticks_total",
			Help:        "Tick events handed to the bot",
			ConstLabels: config.ConstLabels,
		}),
		intentsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "intents_sent_total",
			Help:        "Bot intents sent",
			ConstLabels: config.ConstLabels,
		}),
		intentsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "intents_skipped_total",
			Help:        "Ticks the bot chose not to answer",
			ConstLabels: config.ConstLabels,
		}),
		callbackDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "callback_duration_seconds",
			Help:        "Time spent in the bot callback per tick",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		phase: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "phase",
			Help:        "Connection phase: 0 awaiting handshake, 1 active, 2 terminated",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) FrameReceived() {
	if m != nil {
		m.framesReceived.Inc()
	}
}

func (m *Metrics) FrameSent() {
	if m != nil {
		m.framesSent.Inc()
	}
}

func (m *Metrics) Message(typ string) {
	if m != nil {
		m.messages.WithLabelValues(typ).Inc()
	}
}

func (m *Metrics) DecodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *Metrics) Unexpected(typ string) {
	if m != nil {
		m.unexpectedMessages.WithLabelValues(typ).Inc()
	}
}

// Tick records one callback invocation and how long it took.
func (m *Metrics) Tick(d time.Duration) {
	if m != nil {
		m.ticks.Inc()
		m.callbackDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IntentSent() {
	if m != nil {
		m.intentsSent.Inc()
	}
}

func (m *Metrics) IntentSkipped() {
	if m != nil {
		m.intentsSkipped.Inc()
	}
}

func (m *Metrics) Phase(p int) {
	if m != nil {
		m.phase.Set(float64(p))
	}
}
