package engine

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// maxDepth bounds nested function calls.
const maxDepth = 256

// Evaluate runs a parsed program. It receives the caller's bindings, the
// table of registered host functions and the named module programs, and
// returns the result of the last statement together with the final top-level
// scope. The caller owns replacing its binding state with that scope.
//
// Script-level failures (type errors, undefined names, errors returned by
// host functions as values) are carried inside the result Value. The error
// return is reserved for fatal conditions: context cancellation and
// non-domain failures escaping a host function.
//
// The debug flag enables the evaluator's own diagnostics: per-statement
// logging through the package logger and the print/debug builtins.
func Evaluate(ctx context.Context, prog *Program, scope Scope, funcs Functions, modules map[string]*Program, debug bool) (Value, Scope, error) {
	top := scope.Clone()
	ev := &evaluator{
		ctx:     ctx,
		funcs:   funcs,
		modules: modules,
		userFns: make(map[string]fnNode),
		frames:  []*Scope{&top},
		debug:   debug,
	}
	var stmts []node
	if prog != nil {
		stmts = prog.stmts
	}
	result, _, err := ev.run(stmts)
	if err != nil {
		return Value{}, nil, err
	}
	return result, *ev.frames[0], nil
}

// EvaluateLiteral evaluates a standalone expression or short script without
// any surrounding instance state.
func EvaluateLiteral(text string) (Value, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return Value{}, err
	}
	prog, err := Parse(tokens)
	if err != nil {
		return Value{}, err
	}
	result, _, err := Evaluate(context.Background(), prog, nil, nil, nil, false)
	return result, err
}

type evaluator struct {
	ctx     context.Context
	funcs   Functions
	modules map[string]*Program
	userFns map[string]fnNode
	frames  []*Scope
	depth   int
	debug   bool
}

// isFault reports whether a value aborts the surrounding statement list.
// Undefined carries no "Error" in its name but still stops execution.
func isFault(v Value) bool {
	return v.Kind.IsError() || v.Kind == KindUndefined
}

// run executes a statement list in the current frame. It returns the value
// of the last statement, or early with returned=true when a return
// statement fires. A fault value stops the list and becomes its result.
func (ev *evaluator) run(stmts []node) (Value, bool, error) {
	result := None()
	for i, stmt := range stmts {
		if err := ev.ctx.Err(); err != nil {
			return Value{}, false, err
		}
		if ret, ok := stmt.(returnNode); ok {
			if ret.expr == nil {
				return None(), true, nil
			}
			v, err := ev.eval(ret.expr)
			return v, true, err
		}
		v, returned, err := ev.exec(stmt)
		if err != nil {
			return Value{}, false, err
		}
		if returned {
			return v, true, nil
		}
		result = v
		if ev.debug {
			Logger().Debug("statement evaluated",
				zap.Int("index", i),
				zap.String("result", result.String()))
		}
		if isFault(result) {
			break
		}
	}
	return result, false, nil
}

// exec evaluates one statement, threading the return flag out of nested
// blocks.
func (ev *evaluator) exec(stmt node) (Value, bool, error) {
	switch n := stmt.(type) {
	case ifNode:
		cond, err := ev.eval(n.cond)
		if err != nil {
			return Value{}, false, err
		}
		if isFault(cond) {
			return cond, false, nil
		}
		if cond.Truthy() {
			return ev.run(n.then)
		}
		return ev.run(n.els)
	case fnNode:
		ev.userFns[n.name] = n
		return None(), false, nil
	case importNode:
		mod, ok := ev.modules[n.name]
		if !ok {
			return Fault(KindError, "no module named %q", n.name), false, nil
		}
		return ev.run(mod.stmts)
	case assignNode:
		v, err := ev.assign(n)
		return v, false, err
	default:
		v, err := ev.eval(stmt)
		return v, false, err
	}
}

func (ev *evaluator) assign(n assignNode) (Value, error) {
	v, err := ev.eval(n.expr)
	if err != nil {
		return Value{}, err
	}
	// Plain assignment binds fault values instead of aborting, so scripts
	// can carry and inspect errors returned by function calls.
	if isFault(v) && n.op != tEqual {
		return v, nil
	}
	if n.op != tEqual {
		current, ok := ev.lookup(n.name)
		if !ok {
			return Fault(KindUndefined, "%s is not defined", n.name), nil
		}
		v = binaryOp(compoundOp(n.op), current, v)
		if isFault(v) {
			return v, nil
		}
	}
	ev.set(n.name, v)
	return None(), nil
}

func compoundOp(typ tokenType) tokenType {
	switch typ {
	case tPlusEqual:
		return tPlus
	case tMinusEqual:
		return tMinus
	case tStarEqual:
		return tStar
	case tSlashEqual:
		return tSlash
	default:
		return tPercent
	}
}

func (ev *evaluator) lookup(name string) (Value, bool) {
	for i := len(ev.frames) - 1; i >= 0; i-- {
		if v, ok := ev.frames[i].Get(name); ok {
			return v, true
		}
	}
	return Value{}, false
}

// set replaces the binding in the frame that defines name, or creates it in
// the innermost frame.
func (ev *evaluator) set(name string, v Value) {
	for i := len(ev.frames) - 1; i >= 0; i-- {
		if _, ok := ev.frames[i].Get(name); ok {
			ev.frames[i].Set(name, v)
			return
		}
	}
	ev.frames[len(ev.frames)-1].Set(name, v)
}

func (ev *evaluator) eval(n node) (Value, error) {
	switch n := n.(type) {
	case literalNode:
		return n.val, nil
	case varNode:
		if v, ok := ev.lookup(n.name); ok {
			return v, nil
		}
		return Fault(KindUndefined, "%s is not defined", n.name), nil
	case listNode:
		items := make([]Value, 0, len(n.elems))
		for _, elem := range n.elems {
			v, err := ev.eval(elem)
			if err != nil {
				return Value{}, err
			}
			if isFault(v) {
				return v, nil
			}
			items = append(items, v)
		}
		return NewList(items...), nil
	case scopeNode:
		return ev.evalScopeLiteral(n)
	case unaryNode:
		operand, err := ev.eval(n.operand)
		if err != nil {
			return Value{}, err
		}
		if isFault(operand) {
			return operand, nil
		}
		switch n.op {
		case tMinus:
			if operand.Kind != KindInt {
				return Fault(KindTypeError, "bad operand type for unary -: %v", operand.Kind), nil
			}
			return NewInt(-operand.Num), nil
		default:
			return NewBool(!operand.Truthy()), nil
		}
	case binaryNode:
		return ev.evalBinary(n)
	case attrNode:
		target, err := ev.eval(n.target)
		if err != nil {
			return Value{}, err
		}
		if isFault(target) {
			return target, nil
		}
		if target.Kind != KindScope {
			return Fault(KindTypeError, "%v has no attributes", target.Kind), nil
		}
		if v, ok := target.Scope.Get(n.name); ok {
			return v, nil
		}
		return Fault(KindUndefined, "%s is not defined", n.name), nil
	case callNode:
		return ev.call(n)
	default:
		return Fault(KindError, "unexpected node %T", n), nil
	}
}

func (ev *evaluator) evalScopeLiteral(n scopeNode) (Value, error) {
	var scope Scope
	for _, entry := range n.entries {
		v, err := ev.eval(entry.expr)
		if err != nil {
			return Value{}, err
		}
		if isFault(v) {
			return v, nil
		}
		scope.Set(entry.name, v)
	}
	return NewScopeValue(scope), nil
}

func (ev *evaluator) evalBinary(n binaryNode) (Value, error) {
	lhs, err := ev.eval(n.lhs)
	if err != nil {
		return Value{}, err
	}
	if isFault(lhs) {
		return lhs, nil
	}
	// Short-circuit logic before the right side is touched.
	switch n.op {
	case tAnd:
		if !lhs.Truthy() {
			return NewBool(false), nil
		}
	case tOr:
		if lhs.Truthy() {
			return NewBool(true), nil
		}
	}
	rhs, err := ev.eval(n.rhs)
	if err != nil {
		return Value{}, err
	}
	if isFault(rhs) {
		return rhs, nil
	}
	if n.op == tAnd || n.op == tOr {
		return NewBool(rhs.Truthy()), nil
	}
	return binaryOp(n.op, lhs, rhs), nil
}

func binaryOp(op tokenType, lhs, rhs Value) Value {
	bothNum := isNumeric(lhs) && isNumeric(rhs)
	bothStr := lhs.Kind == KindStr && rhs.Kind == KindStr
	switch op {
	case tPlus:
		switch {
		case bothNum:
			return NewInt(lhs.Num + rhs.Num)
		case bothStr:
			return NewStr(lhs.Str + rhs.Str)
		case lhs.Kind == KindList && rhs.Kind == KindList:
			items := make([]Value, 0, len(lhs.List)+len(rhs.List))
			items = append(items, lhs.List...)
			items = append(items, rhs.List...)
			return NewList(items...)
		}
	case tMinus:
		if bothNum {
			return NewInt(lhs.Num - rhs.Num)
		}
	case tStar:
		if bothNum {
			return NewInt(lhs.Num * rhs.Num)
		}
	case tSlash:
		if bothNum {
			if rhs.Num == 0 {
				return Fault(KindError, "division by zero")
			}
			return NewInt(lhs.Num / rhs.Num)
		}
	case tPercent:
		if bothNum {
			if rhs.Num == 0 {
				return Fault(KindError, "division by zero")
			}
			return NewInt(math.Mod(lhs.Num, rhs.Num))
		}
	case tEqualTo:
		return NewBool(valuesEqual(lhs, rhs))
	case tNotEqual:
		return NewBool(!valuesEqual(lhs, rhs))
	case tGreater, tLess, tGreaterEqual, tLessEqual:
		switch {
		case bothNum:
			return compareNums(op, lhs.Num, rhs.Num)
		case bothStr:
			return compareStrs(op, lhs.Str, rhs.Str)
		}
	}
	return Fault(KindTypeError, "unsupported operand types for %v: %v and %v", op, lhs.Kind, rhs.Kind)
}

func isNumeric(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindBool
}

func valuesEqual(lhs, rhs Value) bool {
	switch {
	case isNumeric(lhs) && isNumeric(rhs):
		return lhs.Num == rhs.Num
	case lhs.Kind == KindStr && rhs.Kind == KindStr:
		return lhs.Str == rhs.Str
	case lhs.Kind == KindNone && rhs.Kind == KindNone:
		return true
	case lhs.Kind == KindList && rhs.Kind == KindList:
		if len(lhs.List) != len(rhs.List) {
			return false
		}
		for i := range lhs.List {
			if !valuesEqual(lhs.List[i], rhs.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func compareNums(op tokenType, a, b float64) Value {
	switch op {
	case tGreater:
		return NewBool(a > b)
	case tLess:
		return NewBool(a < b)
	case tGreaterEqual:
		return NewBool(a >= b)
	default:
		return NewBool(a <= b)
	}
}

func compareStrs(op tokenType, a, b string) Value {
	switch op {
	case tGreater:
		return NewBool(a > b)
	case tLess:
		return NewBool(a < b)
	case tGreaterEqual:
		return NewBool(a >= b)
	default:
		return NewBool(a <= b)
	}
}

func (ev *evaluator) call(n callNode) (Value, error) {
	if ev.depth >= maxDepth {
		return Fault(KindRecursionError, "maximum call depth exceeded"), nil
	}

	// Build the argument shape the adapter contract expects: either an
	// ordered positional list or a single scope literal.
	var args Args
	if n.named != nil {
		scope, err := ev.evalScopeLiteral(*n.named)
		if err != nil {
			return Value{}, err
		}
		if isFault(scope) {
			return scope, nil
		}
		args = Named(scope)
	} else {
		// Fault values are passed through as arguments rather than
		// propagated, so functions like type() can inspect them.
		values := make([]Value, 0, len(n.args))
		for _, arg := range n.args {
			v, err := ev.eval(arg)
			if err != nil {
				return Value{}, err
			}
			values = append(values, v)
		}
		args = Positional(values...)
	}

	if fn, ok := ev.userFns[n.name]; ok {
		return ev.callUser(fn, args)
	}
	if fn, ok := ev.funcs.Lookup(n.name); ok {
		return fn.Call(ev.ctx, n.name, args, ev.frames[0].Clone())
	}
	if fn, ok := lookupBuiltin(n.name, ev.debug); ok {
		return fn(ev.ctx, n.name, args, ev.frames[0].Clone())
	}
	return Fault(KindUndefined, "%s is not defined", n.name), nil
}

func (ev *evaluator) callUser(fn fnNode, args Args) (Value, error) {
	var frame Scope
	if scope, ok := args.NamedScope(); ok {
		for _, entry := range scope.Scope {
			frame.Set(entry.Name, entry.Value)
		}
	} else {
		values := args.Values()
		if len(values) != len(fn.params) {
			return Fault(KindTypeError, "%s() takes %d arguments but %d were given",
				fn.name, len(fn.params), len(values)), nil
		}
		for i, param := range fn.params {
			frame.Set(param, values[i])
		}
	}

	ev.frames = append(ev.frames, &frame)
	ev.depth++
	result, _, err := ev.run(fn.body)
	ev.depth--
	ev.frames = ev.frames[:len(ev.frames)-1]
	return result, err
}
