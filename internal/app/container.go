// Package app assembles a bot process from configuration: it owns the dependency
// container and runs one session against a server.
package app

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"

	"github.com/nfrund/tankbot/internal/config"
	"github.com/nfrund/tankbot/internal/engine"
	"github.com/nfrund/tankbot/internal/logging"
	"github.com/nfrund/tankbot/internal/metrics"
	"github.com/nfrund/tankbot/internal/msglog"
	"github.com/nfrund/tankbot/internal/protocol"
	"github.com/nfrund/tankbot/internal/pubsub"
	"github.com/nfrund/tankbot/internal/script"
	"github.com/nfrund/tankbot/internal/telemetry"
	"github.com/nfrund/tankbot/internal/transport"
)

// Version is stamped at build time.
var Version = "dev"

// ringSize is how many recent messages the diagnostics server can show.
const ringSize = 1000

// Dialer opens the channel to the server.
type Dialer func(ctx context.Context, url string, logger *slog.Logger) (transport.Channel, error)

func dialWebSocket(ctx context.Context, url string, logger *slog.Logger) (transport.Channel, error) {
	return transport.Dial(ctx, url, &transport.DialOptions{Logger: logger})
}

// Option overrides part of the container, mostly for tests and the replay command.
type Option func(do.Injector)

// WithFs replaces the operating system filesystem used for the bot, script and
// recording files.
func WithFs(fs afero.Fs) Option {
	return func(i do.Injector) { do.OverrideValue[afero.Fs](i, fs) }
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d Dialer) Option {
	return func(i do.Injector) { do.OverrideValue[Dialer](i, d) }
}

// WithLogger uses logger instead of building one from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(i do.Injector) { do.OverrideValue(i, logger) }
}

// Tracing holds the tracer and flushes it on shutdown.
type Tracing struct {
	Tracer   trace.Tracer
	shutdown func(context.Context) error
}

func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}

// Bus is the in-process event bus.
type Bus struct {
	*pubsub.WatermillBridge
}

func (b *Bus) Shutdown() error {
	return b.Close()
}

// Recording is the optional JSON lines recording of inbound frames. Recorder is nil when
// no file was configured.
type Recording struct {
	Recorder *msglog.Recorder
}

func (r *Recording) Shutdown() error {
	if r.Recorder == nil {
		return nil
	}
	return r.Recorder.Close()
}

// NewContainer registers every service lazily; nothing is built until it is invoked.
func NewContainer(cfg *config.Config, opts ...Option) *do.RootScope {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideValue[afero.Fs](i, afero.NewOsFs())
	do.ProvideValue[Dialer](i, dialWebSocket)
	do.Provide(i, provideLogger)
	do.Provide(i, provideTracing)
	do.Provide(i, provideRegistry)
	do.Provide(i, provideMetrics)
	do.Provide(i, provideBus)
	do.Provide(i, provideIdentity)
	do.Provide(i, provideStrategy)
	do.Provide(i, provideRing)
	do.Provide(i, provideRecording)

	for _, opt := range opts {
		opt(i)
	}
	return i
}

func provideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return logging.New(logging.Options{Format: cfg.LogFormat, Level: cfg.LogLevel}), nil
}

func provideTracing(i do.Injector) (*Tracing, error) {
	cfg := do.MustInvoke[*config.Config](i)
	tc := telemetry.DefaultTracingConfig()
	tc.Enabled = cfg.TracingEnabled
	tc.ZipkinURL = cfg.TracingZipkinURL
	tc.ServiceVersion = Version

	tracer, shutdown, err := telemetry.Setup(context.Background(), tc)
	if err != nil {
		return nil, err
	}
	return &Tracing{Tracer: tracer, shutdown: shutdown}, nil
}

func provideRegistry(do.Injector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, nil
}

func provideMetrics(i do.Injector) (*metrics.Metrics, error) {
	reg := do.MustInvoke[*prometheus.Registry](i)
	return metrics.New(metrics.WithRegistry(reg)), nil
}

func provideBus(i do.Injector) (*Bus, error) {
	tracing, err := do.Invoke[*Tracing](i)
	if err != nil {
		return nil, err
	}
	return &Bus{pubsub.NewWatermillBridge(pubsub.WithTracer(tracing.Tracer))}, nil
}

func provideIdentity(i do.Injector) (engine.Identity, error) {
	cfg := do.MustInvoke[*config.Config](i)
	fs := do.MustInvoke[afero.Fs](i)

	bot, err := protocol.LoadBotIdentity(fs, cfg.BotInfoFile)
	if err != nil {
		return engine.Identity{}, err
	}
	id := engine.Identity{Bot: bot, Droid: cfg.Droid, Secret: cfg.ServerSecret}
	if cfg.TeamID != 0 {
		team := protocol.TeamIdentity{ID: cfg.TeamID, Name: cfg.TeamName, Version: cfg.TeamVersion}
		if err := team.Validate(); err != nil {
			return engine.Identity{}, err
		}
		id.Team = &team
	}
	return id, nil
}

func provideStrategy(i do.Injector) (*script.Strategy, error) {
	cfg := do.MustInvoke[*config.Config](i)
	fs := do.MustInvoke[afero.Fs](i)
	logger := do.MustInvoke[*slog.Logger](i)

	src, err := script.LoadOrDefault(fs, cfg.BotScript)
	if err != nil {
		return nil, err
	}
	return script.NewStrategy(src, script.WithLogger(logger))
}

func provideRing(do.Injector) (*msglog.Ring, error) {
	return msglog.NewRing(ringSize), nil
}

func provideRecording(i do.Injector) (*Recording, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.MessageLogFile == "" {
		return &Recording{}, nil
	}
	rec, err := msglog.NewRecorder(do.MustInvoke[afero.Fs](i), cfg.MessageLogFile)
	if err != nil {
		return nil, err
	}
	return &Recording{Recorder: rec}, nil
}
