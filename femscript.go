package femscript

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/femscript-lang/femscript/engine"
)

// Script is one embedded femscript program: its parsed form, its top-level
// bindings, its registered functions and its named modules.
//
// A Script is not safe for concurrent use; callers serialize Execute
// themselves.
//
//	script, err := femscript.New(`x = add(3, 4);`)
//	script.Register("add", func(call femscript.Call) (any, error) {
//	    return call.Args[0].(int64) + call.Args[1].(int64), nil
//	})
//	result, err := script.Execute(ctx)
type Script struct {
	program    *engine.Program
	vars       engine.Scope
	funcs      []engine.Function
	modules    map[string]*module
	resolution Resolution
	logger     *zap.Logger

	// initErr holds the first failure from a construction option; New
	// reports it after all options have run.
	initErr error
}

type module struct {
	source  string
	program *engine.Program
}

// Option configures a Script at construction.
type Option func(*Script)

// WithVariable adds one initial top-level binding.
func WithVariable(name string, value any) Option {
	return func(s *Script) {
		s.vars.Set(name, ToValue(value))
	}
}

// WithVariables adds initial top-level bindings from a scope, preserving
// its order.
func WithVariables(scope *Scope) Option {
	return func(s *Script) {
		for _, name := range scope.Keys() {
			v, _ := scope.Get(name)
			s.vars.Set(name, ToValue(v))
		}
	}
}

// WithFunc registers an immediate function at construction.
func WithFunc(name string, fn Func) Option {
	return func(s *Script) {
		s.Register(name, fn)
	}
}

// WithTask registers a suspending function at construction.
func WithTask(name string, fn TaskFunc) Option {
	return func(s *Script) {
		s.RegisterTask(name, fn)
	}
}

// WithModule registers an initial named module source, parsed during
// construction. A malformed module fails New.
func WithModule(name, code string) Option {
	return func(s *Script) {
		if err := s.AddModule(name, code); err != nil && s.initErr == nil {
			s.initErr = fmt.Errorf("module %q: %w", name, err)
		}
	}
}

// WithResolution sets the duplicate-name policy for registered functions.
func WithResolution(r Resolution) Option {
	return func(s *Script) {
		s.resolution = r
	}
}

// WithLogger sets the logger for host-layer events. The engine has its own
// package logger; see [engine.SetLogger].
func WithLogger(l *zap.Logger) Option {
	return func(s *Script) {
		s.logger = l
	}
}

// New creates a Script. Initial module sources arrive through [WithModule]
// and are registered before code is parsed; code may be empty, in which
// case [Script.Parse] must run before Execute. Malformed source, whether
// the script's or a module's, fails construction.
func New(code string, opts ...Option) (*Script, error) {
	s := &Script{
		modules: make(map[string]*module),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.initErr != nil {
		return nil, s.initErr
	}
	if code != "" {
		if err := s.Parse(code); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Parse tokenizes and parses code into the Script's current program,
// replacing any previous one, and re-parses every registered module's
// source. Parse failures propagate unchanged.
func (s *Script) Parse(code string) error {
	tokens, err := engine.Tokenize(code)
	if err != nil {
		return err
	}
	program, err := engine.Parse(tokens)
	if err != nil {
		return err
	}
	s.program = program
	for name, mod := range s.modules {
		tokens, err := engine.Tokenize(mod.source)
		if err != nil {
			return fmt.Errorf("module %q: %w", name, err)
		}
		mod.program, err = engine.Parse(tokens)
		if err != nil {
			return fmt.Errorf("module %q: %w", name, err)
		}
	}
	s.logger.Debug("script parsed", zap.Int("modules", len(s.modules)))
	return nil
}

// AddVariable sets a top-level binding, converting the value through the
// codec. An existing name keeps its position; a new name appends.
func (s *Script) AddVariable(name string, value any) {
	s.vars.Set(name, ToValue(value))
}

// AddModule parses code immediately and stores it under name, overwriting
// any previous module with that name. The script imports it with
// "import name".
func (s *Script) AddModule(name, code string) error {
	tokens, err := engine.Tokenize(code)
	if err != nil {
		return err
	}
	program, err := engine.Parse(tokens)
	if err != nil {
		return err
	}
	s.modules[name] = &module{source: code, program: program}
	return nil
}

// Variables returns a read-only snapshot of the top-level bindings, decoded
// to host values. Mutating the snapshot does not affect the Script.
func (s *Script) Variables() *Scope {
	scope := NewScope()
	for _, entry := range s.vars {
		scope.Set(entry.Name, FromValue(entry.Value))
	}
	return scope
}

// ExecOption configures one Execute call.
type ExecOption func(*execConfig)

type execConfig struct {
	debug bool
}

// WithDebug turns on the evaluator's own diagnostics for this execution.
func WithDebug() ExecOption {
	return func(c *execConfig) {
		c.debug = true
	}
}

// Execute runs the current program and returns the decoded result.
//
// The Script's bindings are wholesale replaced by the final scope the
// evaluator returns: a name present before execution but absent afterward
// no longer exists. Script-level failures come back as a [*Error] result
// value, not as a Go error; only fatal conditions (context cancellation,
// non-domain failures inside registered functions) are returned as errors.
func (s *Script) Execute(ctx context.Context, opts ...ExecOption) (any, error) {
	var cfg execConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	programs := make(map[string]*engine.Program, len(s.modules))
	for name, mod := range s.modules {
		programs[name] = mod.program
	}

	result, final, err := engine.Evaluate(ctx, s.program, s.vars, s.resolved(), programs, cfg.debug)
	if err != nil {
		return nil, err
	}
	s.adopt(final)
	s.logger.Debug("script executed",
		zap.Int("bindings", len(s.vars)),
		zap.String("result", result.String()))
	return FromValue(result), nil
}

// adopt replaces the binding store with the evaluator's final scope. Total
// replacement, not a merge.
func (s *Script) adopt(final engine.Scope) {
	s.vars = final
}

// EvalLiteral evaluates a standalone expression without a Script, returning
// the decoded host value.
//
//	v, err := femscript.EvalLiteral("2 + 2 * 3") // int64(8)
func EvalLiteral(text string) (any, error) {
	result, err := engine.EvaluateLiteral(text)
	if err != nil {
		return nil, err
	}
	return FromValue(result), nil
}
