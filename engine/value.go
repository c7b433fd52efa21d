package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the payload of a Value.
//
// Exactly one payload field of a Value is meaningful for a given kind.
// Int and Bool share the numeric payload.
type Kind uint8

const (
	KindStr Kind = iota
	KindInt
	KindBool
	KindNone
	KindList
	KindBytes
	KindScope
	// KindObject is the escape hatch for host values with no structural
	// representation. The payload is carried verbatim and never inspected.
	KindObject

	KindError
	KindSyntaxError
	KindTypeError
	KindIndexError
	KindRecursionError
	KindUndefined
)

var kindNames = [...]string{
	KindStr:            "Str",
	KindInt:            "Int",
	KindBool:           "Bool",
	KindNone:           "None",
	KindList:           "List",
	KindBytes:          "Bytes",
	KindScope:          "Scope",
	KindObject:         "Object",
	KindError:          "Error",
	KindSyntaxError:    "SyntaxError",
	KindTypeError:      "TypeError",
	KindIndexError:     "IndexError",
	KindRecursionError: "RecursionError",
	KindUndefined:      "Undefined",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsError reports whether values of this kind represent script errors.
// The rule is name-based: every kind whose name contains "Error" qualifies.
func (k Kind) IsError() bool {
	return strings.Contains(k.String(), "Error")
}

// Value is the engine's tagged value representation.
type Value struct {
	Kind  Kind
	Str   string
	Num   float64
	List  []Value
	Bytes []byte
	Scope Scope
	Obj   any
}

// NewStr creates a Str value.
func NewStr(s string) Value {
	return Value{Kind: KindStr, Str: s}
}

// NewInt creates an Int value. Both integers and floating-point numbers
// are Int; the payload is always a float64.
func NewInt(n float64) Value {
	return Value{Kind: KindInt, Num: n}
}

// NewBool creates a Bool value, stored as numeric 1 or 0.
func NewBool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Num: 1}
	}
	return Value{Kind: KindBool, Num: 0}
}

// None creates a None value.
func None() Value {
	return Value{Kind: KindNone}
}

// NewList creates a List value.
func NewList(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}

// NewBytes creates a Bytes value.
func NewBytes(b []byte) Value {
	return Value{Kind: KindBytes, Bytes: b}
}

// NewScopeValue creates a Scope value from ordered variables.
func NewScopeValue(s Scope) Value {
	return Value{Kind: KindScope, Scope: s}
}

// NewObject creates an Object value holding an opaque host reference.
func NewObject(v any) Value {
	return Value{Kind: KindObject, Obj: v}
}

// Fault creates an error-kinded value with a plain message payload.
// The kind must satisfy Kind.IsError.
func Fault(kind Kind, format string, args ...any) Value {
	return Value{Kind: kind, Str: fmt.Sprintf(format, args...)}
}

// Truthy reports the boolean interpretation of the value.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool, KindInt:
		return v.Num != 0
	case KindStr:
		return v.Str != ""
	case KindList:
		return len(v.List) > 0
	case KindBytes:
		return len(v.Bytes) > 0
	case KindScope:
		return len(v.Scope) > 0
	case KindNone:
		return false
	default:
		return true
	}
}

// String renders the value for diagnostics and the REPL.
func (v Value) String() string {
	switch v.Kind {
	case KindStr:
		return strconv.Quote(v.Str)
	case KindInt:
		return formatNum(v.Num)
	case KindBool:
		if v.Num != 0 {
			return "true"
		}
		return "false"
	case KindNone:
		return "none"
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindBytes:
		return fmt.Sprintf("%q", v.Bytes)
	case KindScope:
		parts := make([]string, len(v.Scope))
		for i, entry := range v.Scope {
			parts[i] = entry.Name + " = " + entry.Value.String() + ";"
		}
		return "{ " + strings.Join(parts, " ") + " }"
	case KindObject:
		return fmt.Sprintf("<object %T>", v.Obj)
	default:
		return v.Str
	}
}

// Text renders the value the way print does: strings unquoted, everything
// else as String.
func (v Value) Text() string {
	if v.Kind == KindStr {
		return v.Str
	}
	return v.String()
}

func formatNum(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
