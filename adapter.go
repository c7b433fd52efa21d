package femscript

import (
	"context"
	"errors"

	"github.com/femscript-lang/femscript/engine"
)

// Call describes one invocation of a registered function. Exactly one of
// Args and Kwargs is populated, mirroring the two calling conventions of
// the language: positional arguments or a single scope literal.
type Call struct {
	// Name is the name the script invoked the function under. Functions
	// registered under several names can dispatch on it.
	Name string

	// Args holds positional arguments, decoded to host values in order.
	Args []any

	// Kwargs holds named arguments when the script passed a scope literal,
	// nil otherwise.
	Kwargs *Scope
}

// Func is an immediate registered function. It runs synchronously inside
// the evaluator's call.
//
// Returning a [*Error] makes the call expression evaluate to an Error value
// the script can inspect; any other non-nil error is fatal to the enclosing
// Execute.
type Func func(call Call) (any, error)

// TaskFunc is a suspending registered function. The evaluator's context is
// passed through, so the function can block on context-aware work; the
// evaluation resumes when it returns. Error semantics match [Func].
type TaskFunc func(ctx context.Context, call Call) (any, error)

// adaptFunc wraps an immediate function in the engine's uniform calling
// convention.
func adaptFunc(fn Func) engine.HostFunc {
	return adaptTask(func(_ context.Context, call Call) (any, error) {
		return fn(call)
	})
}

// adaptTask wraps a suspending function in the engine's uniform calling
// convention: decode the argument shape, invoke, re-encode the result, and
// contain the one domain error kind as an Error value.
func adaptTask(fn TaskFunc) engine.HostFunc {
	return func(ctx context.Context, name string, args engine.Args, _ engine.Scope) (engine.Value, error) {
		call := Call{Name: name}
		if scope, ok := args.NamedScope(); ok {
			call.Kwargs = FromValue(scope).(*Scope)
		} else {
			values := args.Values()
			call.Args = make([]any, len(values))
			for i, v := range values {
				call.Args[i] = FromValue(v)
			}
		}

		result, err := fn(ctx, call)
		if err != nil {
			var domain *Error
			if errors.As(err, &domain) {
				return NewErrorValue(domain.Message), nil
			}
			return engine.Value{}, err
		}
		return ToValue(result), nil
	}
}

// Resolution decides which registration wins when the same name is
// registered more than once. Registration itself is append-only.
type Resolution int

const (
	// ResolveLastWins makes re-registering a name shadow earlier
	// registrations. This is the default.
	ResolveLastWins Resolution = iota

	// ResolveFirstWins keeps the first registration of a name authoritative.
	ResolveFirstWins
)

// Register appends an immediate function to the function table.
func (s *Script) Register(name string, fn Func) {
	s.funcs = append(s.funcs, engine.Function{Name: name, Call: adaptFunc(fn)})
}

// RegisterTask appends a suspending function to the function table.
func (s *Script) RegisterTask(name string, fn TaskFunc) {
	s.funcs = append(s.funcs, engine.Function{Name: name, Call: adaptTask(fn)})
}

// resolved flattens the append-only registration list into the table handed
// to the evaluator, applying the duplicate-name policy.
func (s *Script) resolved() engine.Functions {
	var table engine.Functions
	seen := make(map[string]int)
	for _, fn := range s.funcs {
		if i, ok := seen[fn.Name]; ok {
			if s.resolution == ResolveLastWins {
				table[i] = fn
			}
			continue
		}
		seen[fn.Name] = len(table)
		table = append(table, fn)
	}
	return table
}
