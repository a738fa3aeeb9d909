// Package script runs bot strategies written in Tengo.
//
// A strategy script sees the current turn as the `tick` variable, using the wire field
// names, and answers by defining an `intent` map with BotIntent keys. Keys it leaves out
// stay absent from the intent, and a script that defines no intent skips the turn.
// The `memory` map survives from one turn to the next until the round changes.
package script

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/nfrund/tankbot/internal/protocol"
)

//go:embed scripts/default.tengo
var defaultScript string

// DefaultScript returns the built-in spin-and-fire strategy.
func DefaultScript() *Script {
	return &Script{
		Name:     "default.tengo",
		Content:  defaultScript,
		Source:   SourceEmbedded,
		Checksum: checksum(defaultScript),
	}
}

type program struct {
	script   *Script
	compiled *tengo.Compiled
}

// Strategy is a bot.Handler backed by a compiled script. Load may be called from any
// goroutine; a tick always runs against the program that was current when it started.
type Strategy struct {
	limits  SecurityLimits
	logger  *slog.Logger
	current atomic.Pointer[program]

	// memory is only touched from the loop goroutine.
	memory map[string]interface{}
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithLimits replaces the default security limits.
func WithLimits(limits SecurityLimits) Option {
	return func(s *Strategy) { s.limits = limits }
}

// WithLogger sets the logger behind the script's log function.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Strategy) { s.logger = logger }
}

// NewStrategy compiles src. It fails if the script does not compile.
func NewStrategy(src *Script, opts ...Option) (*Strategy, error) {
	s := &Strategy{
		limits: GetDefaultSecurityLimits(),
		logger: slog.Default(),
		memory: map[string]interface{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(src); err != nil {
		return nil, err
	}
	return s, nil
}

// Load compiles src and makes it the current program. On error the previous program
// stays in place.
func (s *Strategy) Load(src *Script) error {
	compiled, err := s.compile(src)
	if err != nil {
		return err
	}
	s.current.Store(&program{script: src, compiled: compiled})
	return nil
}

// Script returns the source of the current program.
func (s *Strategy) Script() *Script {
	return s.current.Load().script
}

func (s *Strategy) compile(src *Script) (*tengo.Compiled, error) {
	if src == nil {
		return nil, NewScriptError(ErrorTypeNotFound, "", "no script", nil)
	}
	ts := tengo.NewScript([]byte(src.Content))
	ts.SetImports(s.buildModuleMap())
	if s.limits.MaxAllocs > 0 {
		ts.SetMaxAllocs(s.limits.MaxAllocs)
	}
	for name, value := range map[string]interface{}{
		"tick":   map[string]interface{}{},
		"memory": map[string]interface{}{},
	} {
		if err := ts.Add(name, value); err != nil {
			return nil, NewScriptError(ErrorTypeCompilation, src.Name, "failed to declare "+name, err)
		}
	}
	if err := ts.Add("log", s.logFunction(src.Name)); err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, src.Name, "failed to declare log", err)
	}

	compiled, err := ts.Compile()
	if err != nil {
		return nil, NewScriptError(ErrorTypeCompilation, src.Name, "failed to compile Tengo script", err)
	}
	return compiled, nil
}

// Tick runs the current program once for the given turn.
func (s *Strategy) Tick(ctx context.Context, tick *protocol.TickEventForBot) (*protocol.BotIntent, error) {
	p := s.current.Load()
	name := p.script.Name

	input, err := tickValue(tick)
	if err != nil {
		return nil, NewScriptError(ErrorTypeInvalidInput, name, "failed to convert tick", err)
	}
	run := p.compiled.Clone()
	if err := run.Set("tick", input); err != nil {
		return nil, NewScriptError(ErrorTypeInvalidInput, name, "failed to set tick", err)
	}
	if err := run.Set("memory", s.memory); err != nil {
		return nil, NewScriptError(ErrorTypeInvalidInput, name, "failed to set memory", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, s.limits.MaxExecutionTime)
	defer cancel()
	if err := run.RunContext(execCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, NewScriptError(ErrorTypeTimeout, name,
				fmt.Sprintf("script execution exceeded %s", s.limits.MaxExecutionTime), err)
		}
		return nil, NewScriptError(ErrorTypeExecution, name, "script execution failed", err)
	}

	if mem := run.Get("memory").Map(); mem != nil {
		s.memory = mem
	} else {
		s.memory = map[string]interface{}{}
	}

	out := run.Get("intent")
	if out.IsUndefined() {
		return nil, nil
	}
	intent, err := intentFrom(out.Value())
	if err != nil {
		return nil, NewScriptError(ErrorTypeInvalidIntent, name, "invalid intent", err)
	}
	return intent, nil
}

// ResetMemory clears the state kept between turns.
func (s *Strategy) ResetMemory() {
	s.memory = map[string]interface{}{}
}

// Notify clears the memory when a new round starts, so it can sit in a bot.Notifiers list.
func (s *Strategy) Notify(_ context.Context, msg protocol.Message) {
	switch msg.(type) {
	case *protocol.RoundStartedEvent, *protocol.GameStartedEventForBot:
		s.ResetMemory()
	}
}

func (s *Strategy) Terminated(context.Context, error) {}

func (s *Strategy) buildModuleMap() *tengo.ModuleMap {
	modules := tengo.NewModuleMap()
	for _, pkg := range s.limits.AllowedPackages {
		if module, exists := stdlib.BuiltinModules[pkg]; exists {
			modules.AddBuiltinModule(pkg, module)
		}
	}
	return modules
}

func (s *Strategy) logFunction(scriptName string) *tengo.UserFunction {
	return &tengo.UserFunction{
		Name: "log",
		Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			message, ok := tengo.ToString(args[0])
			if !ok {
				message = args[0].String()
			}
			s.logger.Info("script log", "script", scriptName, "message", message)
			return tengo.UndefinedValue, nil
		},
	}
}

func checksum(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

// NewScript wraps source text loaded from outside the binary.
func NewScript(name, content string, modified time.Time) *Script {
	return &Script{
		Name:         name,
		Content:      content,
		Source:       SourceExternal,
		LastModified: modified,
		Checksum:     checksum(content),
	}
}
