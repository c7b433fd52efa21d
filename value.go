package femscript

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/femscript-lang/femscript/engine"
)

// Error is the one script-level error kind. It plays two roles:
//
//   - returned from a registered function, it is the domain error the
//     adapter contains: the script sees an ordinary Error value instead of
//     an aborted execution;
//   - produced by [FromValue] when decoding an error-kinded engine value,
//     so script failures come back from Execute as data the caller
//     inspects, never as a raised Go error.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a domain error for use inside registered functions.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// NewErrorValue builds an Error-kinded engine value with the conventional
// "Error: " message prefix.
func NewErrorValue(message string) engine.Value {
	return engine.Fault(engine.KindError, "Error: %s", message)
}

// Classify maps a host value to the engine kind [ToValue] would encode it
// as. It is total: anything without a structural representation maps to
// Object.
func Classify(v any) engine.Kind {
	switch v.(type) {
	case nil:
		return engine.KindNone
	case string:
		return engine.KindStr
	case bool:
		return engine.KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		// Integers and floats share one numeric kind.
		return engine.KindInt
	case []byte:
		return engine.KindBytes
	case *Scope:
		return engine.KindScope
	case engine.Value:
		return v.(engine.Value).Kind
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return engine.KindList
	case reflect.Map:
		return engine.KindScope
	default:
		return engine.KindObject
	}
}

// ToValue converts a host value into the engine's tagged representation.
// Lists and scopes convert element-wise, recursively. Values with no
// structural representation are carried verbatim as opaque Objects.
func ToValue(v any) engine.Value {
	switch v := v.(type) {
	case nil:
		return engine.None()
	case engine.Value:
		return v
	case string:
		return engine.NewStr(v)
	case bool:
		return engine.NewBool(v)
	case int:
		return engine.NewInt(float64(v))
	case int8:
		return engine.NewInt(float64(v))
	case int16:
		return engine.NewInt(float64(v))
	case int32:
		return engine.NewInt(float64(v))
	case int64:
		return engine.NewInt(float64(v))
	case uint:
		return engine.NewInt(float64(v))
	case uint8:
		return engine.NewInt(float64(v))
	case uint16:
		return engine.NewInt(float64(v))
	case uint32:
		return engine.NewInt(float64(v))
	case uint64:
		return engine.NewInt(float64(v))
	case float32:
		return engine.NewInt(float64(v))
	case float64:
		return engine.NewInt(v)
	case []byte:
		b := make([]byte, len(v))
		copy(b, v)
		return engine.NewBytes(b)
	case []any:
		items := make([]engine.Value, len(v))
		for i, item := range v {
			items[i] = ToValue(item)
		}
		return engine.NewList(items...)
	case *Scope:
		var scope engine.Scope
		for _, name := range v.Keys() {
			item, _ := v.Get(name)
			scope.Set(name, ToValue(item))
		}
		return engine.NewScopeValue(scope)
	case map[string]any:
		// Go maps have no insertion order; sort for a stable encoding.
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		var scope engine.Scope
		for _, name := range names {
			scope.Set(name, ToValue(v[name]))
		}
		return engine.NewScopeValue(scope)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]engine.Value, rv.Len())
		for i := range items {
			items[i] = ToValue(rv.Index(i).Interface())
		}
		return engine.NewList(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			names := make([]string, 0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				names = append(names, iter.Key().String())
			}
			sort.Strings(names)
			var scope engine.Scope
			for _, name := range names {
				scope.Set(name, ToValue(rv.MapIndex(reflect.ValueOf(name)).Interface()))
			}
			return engine.NewScopeValue(scope)
		}
	}
	return engine.NewObject(v)
}

// FromValue converts an engine value back into a host value.
//
// Int yields an int64 when the numeric payload has no fractional part, a
// float64 otherwise. Scope decodes into a [*Scope]. Error-kinded values
// decode into a [*Error] carrying the payload as message; the error is
// returned as data, not raised. Unrecognized kinds fall back to the Str
// rule.
func FromValue(v engine.Value) any {
	if v.Kind.IsError() {
		return &Error{Message: v.Str}
	}
	switch v.Kind {
	case engine.KindStr:
		return v.Str
	case engine.KindInt:
		if v.Num == float64(int64(v.Num)) {
			return int64(v.Num)
		}
		return v.Num
	case engine.KindBool:
		return v.Num != 0
	case engine.KindNone:
		return nil
	case engine.KindList:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = FromValue(item)
		}
		return items
	case engine.KindBytes:
		b := make([]byte, len(v.Bytes))
		copy(b, v.Bytes)
		return b
	case engine.KindScope:
		scope := NewScope()
		for _, entry := range v.Scope {
			scope.Set(entry.Name, FromValue(entry.Value))
		}
		return scope
	case engine.KindObject:
		return v.Obj
	default:
		return v.Str
	}
}
