package femscript

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope is the host-side view of a femscript scope: an ordered name→value
// mapping. It is what Scope-kinded engine values decode to, and what named
// function arguments arrive as.
//
// Iteration order is insertion order. Replacing an existing name keeps its
// position; new names append.
type Scope struct {
	names  []string
	values map[string]any
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Set binds name to value and returns the scope for chaining.
//
//	scope := femscript.NewScope().Set("x", 1).Set("y", "two")
func (s *Scope) Set(name string, value any) *Scope {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
	return s
}

// Get returns the value bound to name.
func (s *Scope) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	return len(s.names)
}

// Keys returns the binding names in insertion order.
func (s *Scope) Keys() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Map returns the bindings as a plain map. The result is independent of the
// scope: mutating it does not affect the scope, though nested reference
// values are shared.
func (s *Scope) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for name, v := range s.values {
		out[name] = v
	}
	return out
}

// String renders the scope as a block, one binding per line, nested scopes
// indented one level deeper than their parent. Depth is threaded through
// the recursion, so sibling and concurrent renders never interfere.
func (s *Scope) String() string {
	var b strings.Builder
	s.render(&b, 1)
	return b.String()
}

func (s *Scope) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("    ", depth)
	b.WriteString("{\n")
	for _, name := range s.names {
		b.WriteString(indent)
		b.WriteString(name)
		b.WriteString(" = ")
		renderValue(b, s.values[name], depth)
		b.WriteString(";\n")
	}
	b.WriteString(strings.Repeat("    ", depth-1))
	b.WriteString("}")
}

func renderValue(b *strings.Builder, v any, depth int) {
	switch v := v.(type) {
	case nil:
		b.WriteString("none")
	case *Scope:
		v.render(b, depth+1)
	case string:
		b.WriteString(strconv.Quote(v))
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case []any:
		b.WriteString("[")
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			renderValue(b, item, depth)
		}
		b.WriteString("]")
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
