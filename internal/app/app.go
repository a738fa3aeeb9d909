package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/nfrund/tankbot/internal/bot"
	"github.com/nfrund/tankbot/internal/config"
	"github.com/nfrund/tankbot/internal/diag"
	"github.com/nfrund/tankbot/internal/engine"
	"github.com/nfrund/tankbot/internal/metrics"
	"github.com/nfrund/tankbot/internal/msglog"
	"github.com/nfrund/tankbot/internal/pubsub"
	"github.com/nfrund/tankbot/internal/script"
	"github.com/nfrund/tankbot/internal/transport"
)

// Run plays one session with the configured bot and returns when it ends. The
// diagnostics server and the script watcher, when enabled, live exactly as long as the
// session.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) error {
	c := NewContainer(cfg, opts...)
	defer c.Shutdown()

	s, err := newSession(c)
	if err != nil {
		return err
	}
	return s.run(ctx)
}

type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	fs       afero.Fs
	dial     Dialer
	identity engine.Identity
	strategy *script.Strategy
	tracing  *Tracing
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	bus      *Bus
	ring     *msglog.Ring
	rec      *Recording
}

func newSession(i do.Injector) (*session, error) {
	s := &session{
		cfg:      do.MustInvoke[*config.Config](i),
		logger:   do.MustInvoke[*slog.Logger](i),
		fs:       do.MustInvoke[afero.Fs](i),
		dial:     do.MustInvoke[Dialer](i),
		metrics:  do.MustInvoke[*metrics.Metrics](i),
		registry: do.MustInvoke[*prometheus.Registry](i),
		ring:     do.MustInvoke[*msglog.Ring](i),
	}
	var err error
	if s.identity, err = do.Invoke[engine.Identity](i); err != nil {
		return nil, fmt.Errorf("load bot identity: %w", err)
	}
	if s.strategy, err = do.Invoke[*script.Strategy](i); err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	if s.tracing, err = do.Invoke[*Tracing](i); err != nil {
		return nil, fmt.Errorf("set up tracing: %w", err)
	}
	if s.bus, err = do.Invoke[*Bus](i); err != nil {
		return nil, err
	}
	if s.rec, err = do.Invoke[*Recording](i); err != nil {
		return nil, fmt.Errorf("open message log: %w", err)
	}
	return s, nil
}

func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := s.logger.With("bot", s.identity.Bot.Name)
	if err := s.followEvents(ctx, logger); err != nil {
		return err
	}

	if s.cfg.HotReload && s.cfg.BotScript != "" {
		w := script.NewWatcher(s.fs, s.cfg.BotScript, s.strategy, logger)
		if err := w.Start(ctx); err != nil {
			logger.Warn("Script hot reload unavailable", "error", err)
		}
	}

	logger.Info("Connecting", "url", s.cfg.ServerURL, "script", s.strategy.Script().Name)
	ch, err := s.dial(ctx, s.cfg.ServerURL, logger)
	if err != nil {
		return err
	}

	sinks := []msglog.Sink{s.ring}
	if s.rec.Recorder != nil {
		sinks = append(sinks, s.rec.Recorder)
	}
	var engineOpts []engine.Option
	if s.cfg.StrictHandshake {
		engineOpts = append(engineOpts, engine.WithStrictHandshake())
	}

	connID := uuid.NewString()
	runner := bot.NewRunner(ch, s.identity, s.strategy,
		bot.WithConnID(connID),
		bot.WithLogger(logger),
		bot.WithMetrics(s.metrics),
		bot.WithTracer(s.tracing.Tracer),
		bot.WithSink(msglog.Tee(sinks...)),
		bot.WithEngineOptions(engineOpts...),
		bot.WithNotifier(bot.Notifiers{
			bot.NewPubSubNotifier(s.bus, connID),
			s.strategy,
		}),
	)

	var wg sync.WaitGroup
	if s.cfg.DiagAddr != "" {
		srv := diag.New(diag.Options{
			Status:   runner,
			Messages: s.ring,
			Gatherer: s.registry,
			Logger:   logger,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(ctx, s.cfg.DiagAddr); err != nil {
				logger.Error("Diagnostics server failed", "error", err)
			}
		}()
	}

	err = runner.Run(ctx)
	cancel()
	wg.Wait()

	st := runner.Status()
	logger.Info("Session ended", "phase", st.PhaseName, "round", st.Round, "turn", st.Turn, "ticks", st.Ticks, "error", err)
	return err
}

// followEvents logs what the session publishes on the bus.
func (s *session) followEvents(ctx context.Context, logger *slog.Logger) error {
	err := pubsub.Listen(ctx, s.bus, bot.NotificationEvent, func(_ context.Context, connID string, n bot.Notification) error {
		logger.Info("Game event", "type", n.Type, "conn_id", connID)
		return nil
	})
	if err != nil {
		return err
	}
	return pubsub.Listen(ctx, s.bus, bot.TerminatedEvent, func(_ context.Context, connID string, t bot.Termination) error {
		if !t.Clean {
			logger.Warn("Session failed", "conn_id", connID, "error", t.Error)
		}
		return nil
	})
}

// Replay runs the bot offline against recorded frames and returns every frame it would
// have sent.
func Replay(ctx context.Context, cfg *config.Config, frames [][]byte, opts ...Option) ([]transport.Frame, error) {
	replay := transport.NewReplay(frames)
	opts = append(opts, WithDialer(func(context.Context, string, *slog.Logger) (transport.Channel, error) {
		return replay, nil
	}))
	err := Run(ctx, cfg, opts...)
	return replay.Sent(), err
}
