package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// builtin wraps a positional-only builtin body in the HostFunc signature.
func builtin(fn func(name string, args []Value) Value) HostFunc {
	return func(_ context.Context, name string, args Args, _ Scope) (Value, error) {
		if scope, ok := args.NamedScope(); ok {
			// Builtins accept a scope literal by flattening its values.
			values := make([]Value, len(scope.Scope))
			for i, entry := range scope.Scope {
				values[i] = entry.Value
			}
			return fn(name, values), nil
		}
		return fn(name, args.Values()), nil
	}
}

func wantArgs(name string, args []Value, n int) (Value, bool) {
	if len(args) != n {
		return Fault(KindTypeError, "%s() takes %d arguments but %d were given", name, n, len(args)), false
	}
	return Value{}, true
}

var builtins = map[string]HostFunc{
	"type":     builtin(builtinType),
	"str":      builtin(builtinStr),
	"int":      builtin(builtinInt),
	"len":      builtin(builtinLen),
	"get":      builtin(builtinGet),
	"contains": builtin(builtinContains),
	"split":    builtin(builtinSplit),
	"join":     builtin(builtinJoin),
	"format":   builtin(builtinFormat),
	"hex":      builtin(builtinHex),
	"rgb":      builtin(builtinRgb),
	"randint":  builtin(builtinRandint),
	"Error":    builtin(builtinError),
}

// debugBuiltins are only reachable when the evaluator runs with the debug
// flag set.
var debugBuiltins = map[string]HostFunc{
	"print": builtin(builtinPrint),
	"debug": builtin(builtinDebug),
}

func lookupBuiltin(name string, debug bool) (HostFunc, bool) {
	if fn, ok := builtins[name]; ok {
		return fn, true
	}
	if debug {
		if fn, ok := debugBuiltins[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

func builtinPrint(_ string, args []Value) Value {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Text()
	}
	fmt.Println(strings.Join(parts, " "))
	return None()
}

func builtinDebug(_ string, args []Value) Value {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("%v(%s)", arg.Kind, arg.String())
	}
	fmt.Println(strings.Join(parts, " "))
	return None()
}

func builtinType(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 1); !ok {
		return fault
	}
	return NewStr(args[0].Kind.String())
}

func builtinStr(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 1); !ok {
		return fault
	}
	return NewStr(args[0].Text())
}

func builtinInt(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 1); !ok {
		return fault
	}
	switch arg := args[0]; arg.Kind {
	case KindInt, KindBool:
		return NewInt(arg.Num)
	case KindStr:
		n, err := strconv.ParseFloat(strings.TrimSpace(arg.Str), 64)
		if err != nil {
			return Fault(KindTypeError, "int() got an invalid literal: %q", arg.Str)
		}
		return NewInt(n)
	default:
		return Fault(KindTypeError, "int() takes a string or number as its first argument")
	}
}

func builtinLen(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 1); !ok {
		return fault
	}
	switch arg := args[0]; arg.Kind {
	case KindList:
		return NewInt(float64(len(arg.List)))
	case KindStr:
		return NewInt(float64(len(arg.Str)))
	case KindBytes:
		return NewInt(float64(len(arg.Bytes)))
	default:
		return Fault(KindTypeError, "len() takes a list or string as its first argument")
	}
}

func builtinGet(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 2); !ok {
		return fault
	}
	switch target := args[0]; target.Kind {
	case KindList:
		if args[1].Kind != KindInt {
			return Fault(KindTypeError, "get() takes an Int index for lists")
		}
		idx := int(args[1].Num)
		if idx < 0 || idx >= len(target.List) {
			return Fault(KindIndexError, "list index out of range")
		}
		return target.List[idx]
	case KindScope:
		if args[1].Kind != KindStr {
			return Fault(KindTypeError, "get() takes a Str key for scopes")
		}
		if v, ok := target.Scope.Get(args[1].Str); ok {
			return v
		}
		return Fault(KindUndefined, "%s is not defined", args[1].Str)
	default:
		return Fault(KindTypeError, "get() takes a list or scope as its first argument")
	}
}

func builtinContains(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 2); !ok {
		return fault
	}
	switch target := args[0]; target.Kind {
	case KindStr:
		if args[1].Kind != KindStr {
			return Fault(KindTypeError, "contains() takes a Str to search a Str")
		}
		return NewBool(strings.Contains(target.Str, args[1].Str))
	case KindList:
		for _, item := range target.List {
			if valuesEqual(item, args[1]) {
				return NewBool(true)
			}
		}
		return NewBool(false)
	default:
		return Fault(KindTypeError, "contains() takes a list or string as its first argument")
	}
}

func builtinSplit(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 2); !ok {
		return fault
	}
	if args[0].Kind != KindStr || args[1].Kind != KindStr {
		return Fault(KindTypeError, "split() takes two strings")
	}
	parts := strings.Split(args[0].Str, args[1].Str)
	items := make([]Value, len(parts))
	for i, part := range parts {
		items[i] = NewStr(part)
	}
	return NewList(items...)
}

func builtinJoin(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 2); !ok {
		return fault
	}
	if args[0].Kind != KindList || args[1].Kind != KindStr {
		return Fault(KindTypeError, "join() takes a list and a string")
	}
	parts := make([]string, len(args[0].List))
	for i, item := range args[0].List {
		parts[i] = item.Text()
	}
	return NewStr(strings.Join(parts, args[1].Str))
}

func builtinFormat(name string, args []Value) Value {
	if len(args) == 0 {
		return Fault(KindTypeError, "%s() takes at least 1 argument", name)
	}
	if args[0].Kind != KindStr {
		return Fault(KindTypeError, "format() takes a string as its first argument")
	}
	out := args[0].Str
	for _, arg := range args[1:] {
		out = strings.Replace(out, "{}", arg.Text(), 1)
	}
	return NewStr(out)
}

func builtinHex(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 1); !ok {
		return fault
	}
	if args[0].Kind != KindInt {
		return Fault(KindTypeError, "hex() takes an Int as its first argument")
	}
	return NewStr("0x" + strconv.FormatInt(int64(args[0].Num), 16))
}

func builtinRgb(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 3); !ok {
		return fault
	}
	for i, word := range []string{"first", "second", "third"} {
		if args[i].Kind != KindInt {
			return Fault(KindTypeError, "rgb() takes an Int as its %s argument", word)
		}
	}
	r, g, b := uint64(args[0].Num), uint64(args[1].Num), uint64(args[2].Num)
	return NewInt(float64(r<<16 | g<<8 | b))
}

// builtinRandint draws from [lo, hi) and floors the result unless the
// optional third Bool argument is true.
func builtinRandint(name string, args []Value) Value {
	if len(args) != 2 && len(args) != 3 {
		return Fault(KindTypeError, "%s() takes 2 or 3 arguments but %d were given", name, len(args))
	}
	if args[0].Kind != KindInt || args[1].Kind != KindInt {
		return Fault(KindTypeError, "randint() takes two Ints as its bounds")
	}
	n := rand.Float64()*(args[1].Num-args[0].Num) + args[0].Num
	if len(args) == 3 {
		if args[2].Kind != KindBool {
			return Fault(KindTypeError, "randint() takes a Bool as its third argument")
		}
		if args[2].Num != 0 {
			return NewInt(n)
		}
	}
	return NewInt(math.Floor(n))
}

func builtinError(name string, args []Value) Value {
	if fault, ok := wantArgs(name, args, 1); !ok {
		return fault
	}
	if args[0].Kind != KindStr {
		return Fault(KindTypeError, "Error() takes a string as its first argument")
	}
	return Fault(KindError, "%s", args[0].Str)
}
