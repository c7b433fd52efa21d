package engine

import "context"

// Variable is a single name/value binding.
type Variable struct {
	Name  string
	Value Value
}

// Scope is an ordered sequence of variables. Iteration order is insertion
// order; replacing an existing name keeps its position.
type Scope []Variable

// Get returns the value bound to name, scanning in insertion order.
func (s Scope) Get(name string) (Value, bool) {
	for _, v := range s {
		if v.Name == name {
			return v.Value, true
		}
	}
	return Value{}, false
}

// Set binds name to value. An existing binding is replaced in place at its
// current index; a new name is appended.
func (s *Scope) Set(name string, value Value) {
	for i, v := range *s {
		if v.Name == name {
			(*s)[i].Value = value
			return
		}
	}
	*s = append(*s, Variable{Name: name, Value: value})
}

// Clone returns an independent copy of the binding list. Nested payloads
// are shared; the list itself is not.
func (s Scope) Clone() Scope {
	out := make(Scope, len(s))
	copy(out, s)
	return out
}

// Args carries the arguments of a host-function invocation in one of two
// shapes: an ordered positional list, or a single scope literal of named
// arguments. The evaluator's calling convention decides the shape.
type Args struct {
	positional []Value
	named      *Value
}

// Positional builds a positional argument list.
func Positional(values ...Value) Args {
	return Args{positional: values}
}

// Named builds a named-argument shape from a single Scope-kinded value.
func Named(scope Value) Args {
	return Args{named: &scope}
}

// NamedScope returns the scope literal and true when the call used named
// arguments.
func (a Args) NamedScope() (Value, bool) {
	if a.named != nil {
		return *a.named, true
	}
	return Value{}, false
}

// Values returns the positional arguments in order. It is nil for named
// calls.
func (a Args) Values() []Value {
	return a.positional
}

// HostFunc is the uniform calling convention for registered host functions.
// The evaluator invokes every registered function through this signature,
// regardless of how the host adapted it. A non-nil error aborts the
// enclosing evaluation; script-level failures are returned as error-kinded
// values instead.
type HostFunc func(ctx context.Context, name string, args Args, caller Scope) (Value, error)

// Function is one entry in the function table.
type Function struct {
	Name string
	Call HostFunc
}

// Functions is the table of registered host functions. Duplicate names may
// coexist; Lookup returns the first match in table order, so the caller
// decides the resolution policy by how it orders or dedupes the table.
type Functions []Function

// Lookup finds a function by name.
func (fs Functions) Lookup(name string) (Function, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}
