package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nfrund/tankbot/internal/engine"
	"github.com/nfrund/tankbot/internal/logging"
	"github.com/nfrund/tankbot/internal/metrics"
	"github.com/nfrund/tankbot/internal/msglog"
	"github.com/nfrund/tankbot/internal/protocol"
	"github.com/nfrund/tankbot/internal/transport"
)

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithNotifier(n Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithSink replaces the in-memory message log with s. Use msglog.Tee to keep both.
func WithSink(s msglog.Sink) Option {
	return func(r *Runner) { r.sink = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithConnID sets the id attached to log lines and message log entries. A random UUID is
// used otherwise.
func WithConnID(id string) Option {
	return func(r *Runner) { r.connID = id }
}

// WithEngineOptions passes options through to the state machine, e.g.
// engine.WithStrictHandshake.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *Runner) { r.engineOpts = append(r.engineOpts, opts...) }
}

// Status is a snapshot of a running session, safe to read from any goroutine.
type Status struct {
	ConnID    string       `json:"connId"`
	SessionID string       `json:"sessionId,omitempty"`
	Phase     engine.Phase `json:"-"`
	PhaseName string       `json:"phase"`
	Round     int          `json:"round"`
	Turn      int          `json:"turn"`
	Messages  int64        `json:"messages"`
	Ticks     int64        `json:"ticks"`
	Intents   int64        `json:"intents"`
}

// Runner is a single-use bot session over one channel.
type Runner struct {
	ch       transport.Channel
	handler  Handler
	identity engine.Identity

	logger     *slog.Logger
	notifier   Notifier
	sink       msglog.Sink
	log        *msglog.Log
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	connID     string
	engineOpts []engine.Option
	now        func() time.Time

	machine *engine.Machine

	mu     sync.Mutex
	status Status
}

// NewRunner prepares a session. Nothing is read from ch until Run is called.
func NewRunner(ch transport.Channel, identity engine.Identity, h Handler, opts ...Option) *Runner {
	r := &Runner{
		ch:       ch,
		handler:  h,
		identity: identity,
		notifier: NopNotifier{},
		log:      msglog.NewLog(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("tankbot/bot")
	}
	if r.connID == "" {
		r.connID = uuid.NewString()
	}
	if r.sink == nil {
		r.sink = r.log
	}
	r.status = Status{ConnID: r.connID, Phase: engine.AwaitingHandshake, PhaseName: engine.AwaitingHandshake.String()}
	return r
}

// Run is the single entry point: it plays the protocol on ch until the session ends. The
// channel is always closed on return.
//
// A nil error means a clean shutdown: the game was aborted, ctx was cancelled, or the
// server closed an established session. Otherwise the error is the reason the session
// failed, such as a transport failure or a callback error (ErrCallback).
func Run(ctx context.Context, ch transport.Channel, identity engine.Identity, h Handler, opts ...Option) error {
	return NewRunner(ch, identity, h, opts...).Run(ctx)
}

// Run executes the loop. See the package-level Run.
func (r *Runner) Run(ctx context.Context) (err error) {
	if r.machine != nil {
		return ErrAlreadyRun
	}
	r.machine = engine.New(r.identity, r.engineOpts...)

	logger := r.logger.With("conn_id", r.connID, "bot", r.identity.Bot.Name)
	ctx = logging.WithContext(ctx, logger)
	logger.Info("Bot session started")

	defer func() {
		if cerr := r.ch.Close(); cerr != nil {
			logger.Debug("Error closing channel", "error", cerr)
		}
		r.machine.Close(err)
		r.publishStatus()
		r.notifier.Terminated(context.WithoutCancel(ctx), err)
		if err != nil {
			logger.Error("Bot session failed", "error", err)
		} else {
			logger.Info("Bot session ended")
		}
	}()

	for {
		// The stop signal is honoured between cycles.
		if ctx.Err() != nil {
			logger.Info("Stop requested", "cause", ctx.Err())
			return nil
		}
		done, err := r.cycle(ctx, logger)
		if done || err != nil {
			return err
		}
	}
}

// cycle handles one inbound frame: receive, decode, log, step, callback, send.
func (r *Runner) cycle(ctx context.Context, logger *slog.Logger) (bool, error) {
	frame, err := r.ch.Receive(ctx)
	if err != nil {
		return true, r.receiveError(ctx, logger, err)
	}
	r.metrics.FrameReceived()

	msg, err := protocol.Decode(frame)
	if err != nil {
		r.metrics.DecodeError()
		logger.Warn("Dropping malformed frame", "error", err, "size", len(frame))
		return false, nil
	}
	r.metrics.Message(msg.MessageType().String())
	r.record(logger, frame, msg)

	act, err := r.machine.Step(msg)
	if err != nil {
		r.metrics.Unexpected(msg.MessageType().String())
		logger.Warn("Unexpected message", "type", msg.MessageType(), "phase", r.machine.Phase(), "error", err)
	}
	if act.Ignored {
		logger.Debug("Ignoring unrecognized message", "type", msg.MessageType())
	}

	if act.Outbound != nil {
		if err := r.send(ctx, act.Outbound); err != nil {
			return true, err
		}
		logger.Debug("Sent reply", "type", act.Outbound.MessageType())
	}
	if act.Notify != nil {
		r.notifier.Notify(ctx, act.Notify)
	}
	if act.Tick != nil {
		if err := r.tick(ctx, act.Tick); err != nil {
			return true, err
		}
	}
	r.publishStatus()

	if act.Terminal {
		// Only a strict handshake violation terminates with a reason of its own.
		return true, r.machine.Reason()
	}
	return false, nil
}

func (r *Runner) receiveError(ctx context.Context, logger *slog.Logger, err error) error {
	if ctx.Err() != nil {
		logger.Info("Stop requested during receive", "cause", ctx.Err())
		return nil
	}
	if errors.Is(err, transport.ErrConnectionClosed) && r.machine.Phase() == engine.Active {
		logger.Info("Server closed the connection")
		return nil
	}
	return err
}

func (r *Runner) record(logger *slog.Logger, frame transport.Frame, msg protocol.Message) {
	r.mu.Lock()
	r.status.Messages++
	seq := r.status.Messages
	r.mu.Unlock()

	err := r.sink.Append(msglog.Entry{
		Seq:        seq,
		ConnID:     r.connID,
		ReceivedAt: r.now(),
		Type:       msg.MessageType(),
		Raw:        []byte(frame),
		Message:    msg,
	})
	if err != nil {
		logger.Warn("Failed to append to message log", "seq", seq, "error", err)
	}
}

func (r *Runner) tick(ctx context.Context, tick *protocol.TickEventForBot) error {
	ctx, span := r.tracer.Start(ctx, "bot.tick", trace.WithAttributes(
		attribute.String("bot.conn_id", r.connID),
		attribute.Int("tankroyale.round", tick.RoundNumber),
		attribute.Int("tankroyale.turn", tick.TurnNumber),
		attribute.Int("tankroyale.events", len(tick.Events)),
	))
	defer span.End()

	start := r.now()
	intent, err := r.handler.Tick(ctx, tick)
	r.metrics.Tick(r.now().Sub(start))
	r.mu.Lock()
	r.status.Ticks++
	r.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &CallbackError{Round: tick.RoundNumber, Turn: tick.TurnNumber, Err: err}
	}
	if intent == nil {
		r.metrics.IntentSkipped()
		span.SetAttributes(attribute.Bool("bot.intent_sent", false))
		return nil
	}
	if err := r.send(ctx, intent); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	r.metrics.IntentSent()
	span.SetAttributes(attribute.Bool("bot.intent_sent", true))
	r.mu.Lock()
	r.status.Intents++
	r.mu.Unlock()
	return nil
}

func (r *Runner) send(ctx context.Context, msg protocol.Message) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("bot: encode %s: %w", msg.MessageType(), err)
	}
	if err := r.ch.Send(ctx, frame); err != nil {
		return fmt.Errorf("bot: send %s: %w", msg.MessageType(), err)
	}
	r.metrics.FrameSent()
	return nil
}

func (r *Runner) publishStatus() {
	phase := r.machine.Phase()
	round, turn := r.machine.Turn()
	r.metrics.Phase(int(phase))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.SessionID = r.machine.SessionID()
	r.status.Phase = phase
	r.status.PhaseName = phase.String()
	r.status.Round = round
	r.status.Turn = turn
}

// Status returns a snapshot of the session.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// ConnID is the id used in logs and message log entries.
func (r *Runner) ConnID() string { return r.connID }

// Log is the in-memory message log. It is only populated when no sink was configured and
// must not be read while Run is executing.
func (r *Runner) Log() *msglog.Log { return r.log }
