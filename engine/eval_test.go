package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/femscript-lang/femscript/engine"
)

func parse(t *testing.T, src string) *engine.Program {
	t.Helper()
	tokens, err := engine.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", src, err)
	}
	prog, err := engine.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return prog
}

func run(t *testing.T, src string) engine.Value {
	t.Helper()
	result, _, err := engine.Evaluate(context.Background(), parse(t, src), nil, nil, nil, false)
	if err != nil {
		t.Fatalf("Evaluate(%q) failed: %v", src, err)
	}
	return result
}

func wantInt(t *testing.T, v engine.Value, want float64) {
	t.Helper()
	if v.Kind != engine.KindInt || v.Num != want {
		t.Errorf("got %s, want %v", v, want)
	}
}

func wantBool(t *testing.T, v engine.Value, want bool) {
	t.Helper()
	if v.Kind != engine.KindBool || (v.Num != 0) != want {
		t.Errorf("got %s, want %v", v, want)
	}
}

func wantStr(t *testing.T, v engine.Value, want string) {
	t.Helper()
	if v.Kind != engine.KindStr || v.Str != want {
		t.Errorf("got %s, want %q", v, want)
	}
}

func TestArithmetic(t *testing.T) {
	wantInt(t, run(t, "2 + 2 * 3"), 8)
	wantInt(t, run(t, "(2 + 2) * 3"), 12)
	wantInt(t, run(t, "10 / 4"), 2.5)
	wantInt(t, run(t, "7 % 3"), 1)
	wantInt(t, run(t, "-5 + 2"), -3)
	wantStr(t, run(t, `"foo" + "bar"`), "foobar")
}

func TestComparisonsAndLogic(t *testing.T) {
	wantBool(t, run(t, "1 < 2 and 3 >= 3"), true)
	wantBool(t, run(t, `"a" == "a"`), true)
	wantBool(t, run(t, "1 == 2 or 2 == 2"), true)
	wantBool(t, run(t, "!(1 == 2)"), true)
	wantBool(t, run(t, `"abc" < "abd"`), true)
	wantBool(t, run(t, "[1, 2] == [1, 2]"), true)
}

func TestVariables(t *testing.T) {
	result, scope, err := engine.Evaluate(context.Background(),
		parse(t, "x = 2; y = x * 3; y"), nil, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, result, 6)

	if len(scope) != 2 || scope[0].Name != "x" || scope[1].Name != "y" {
		t.Errorf("final scope = %v, want [x y]", scope)
	}
	wantInt(t, scope[1].Value, 6)
}

func TestCompoundAssignment(t *testing.T) {
	wantInt(t, run(t, "x = 1; x += 4; x"), 5)
	wantInt(t, run(t, "x = 10; x /= 4; x"), 2.5)
}

func TestIfElse(t *testing.T) {
	wantInt(t, run(t, "x = 1; if x == 1 { y = 2 } else { y = 3 }; y"), 2)
	wantInt(t, run(t, "x = 5; if x == 1 { y = 2 } else if x == 5 { y = 4 } else { y = 3 }; y"), 4)
	wantInt(t, run(t, "if false { y = 1 }; 9"), 9)
}

func TestFunctions(t *testing.T) {
	wantInt(t, run(t, "fn double(x) { return x * 2 } double(21)"), 42)
	wantInt(t, run(t, `
		fn fib(n) {
			if n < 2 { return n }
			return fib(n - 1) + fib(n - 2)
		}
		fib(10)
	`), 55)
}

func TestFunctionLocalsDoNotLeak(t *testing.T) {
	_, scope, err := engine.Evaluate(context.Background(),
		parse(t, "fn f(a) { b = a; return b } x = f(1)"), nil, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := scope.Get("b"); ok {
		t.Error("function-local b leaked into the top-level scope")
	}
	if _, ok := scope.Get("x"); !ok {
		t.Error("x missing from the top-level scope")
	}
}

func TestRecursionLimit(t *testing.T) {
	v := run(t, "fn loop() { return loop() } loop()")
	if v.Kind != engine.KindRecursionError {
		t.Errorf("got %v(%s), want RecursionError", v.Kind, v)
	}
}

func TestScopeLiteralAndAttributes(t *testing.T) {
	wantInt(t, run(t, "s = { a = 1; b = 2 }; s.a + s.b"), 3)

	v := run(t, "s = { a = 1 }; s.missing")
	if v.Kind != engine.KindUndefined {
		t.Errorf("got %v, want Undefined", v.Kind)
	}
}

func TestFaults(t *testing.T) {
	t.Run("undefined variable", func(t *testing.T) {
		if v := run(t, "nope"); v.Kind != engine.KindUndefined {
			t.Errorf("got %v, want Undefined", v.Kind)
		}
	})
	t.Run("division by zero", func(t *testing.T) {
		v := run(t, "1 / 0")
		if v.Kind != engine.KindError || v.Str != "division by zero" {
			t.Errorf("got %v(%q)", v.Kind, v.Str)
		}
	})
	t.Run("type error", func(t *testing.T) {
		if v := run(t, `1 + "a"`); v.Kind != engine.KindTypeError {
			t.Errorf("got %v, want TypeError", v.Kind)
		}
	})
	t.Run("fault stops execution", func(t *testing.T) {
		// x stays unset because the faulting statement aborts the list.
		_, scope, err := engine.Evaluate(context.Background(),
			parse(t, `1 + "a"; x = 1`), nil, nil, nil, false)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := scope.Get("x"); ok {
			t.Error("statement after fault still executed")
		}
	})
	t.Run("assignment carries fault values", func(t *testing.T) {
		wantStr(t, run(t, `e = 1 / 0; type(e)`), "Error")
	})
}

func TestBuiltins(t *testing.T) {
	wantStr(t, run(t, "str(42)"), "42")
	wantInt(t, run(t, `int("3.5")`), 3.5)
	wantInt(t, run(t, "len([1, 2, 3])"), 3)
	wantInt(t, run(t, `len("abcd")`), 4)
	wantInt(t, run(t, "get([1, 2, 3], 1)"), 2)
	wantBool(t, run(t, `contains("abc", "b")`), true)
	wantBool(t, run(t, "contains([1, 2], 3)"), false)
	wantStr(t, run(t, `join(split("a,b", ","), "-")`), "a-b")
	wantStr(t, run(t, `format("x={} y={}", 1, "z")`), "x=1 y=z")
	wantStr(t, run(t, "hex(255)"), "0xff")
	wantInt(t, run(t, "rgb(255, 128, 1)"), 0xff8001)
	wantStr(t, run(t, "type(1)"), "Int")
	wantStr(t, run(t, `type("a")`), "Str")

	if v := run(t, "get([1], 5)"); v.Kind != engine.KindIndexError {
		t.Errorf("got %v, want IndexError", v.Kind)
	}
	if v := run(t, `rgb(255, "x", 1)`); v.Kind != engine.KindTypeError {
		t.Errorf("got %v, want TypeError", v.Kind)
	}
}

func TestErrorBuiltin(t *testing.T) {
	v := run(t, `Error("boom")`)
	if v.Kind != engine.KindError || v.Str != "boom" {
		t.Errorf("got %v(%q), want Error(boom)", v.Kind, v.Str)
	}
	if v := run(t, "Error(1)"); v.Kind != engine.KindTypeError {
		t.Errorf("got %v, want TypeError", v.Kind)
	}
	// A constructed error can be bound and inspected like any other fault.
	wantStr(t, run(t, `e = Error("boom"); type(e)`), "Error")
}

func TestRandintRange(t *testing.T) {
	for i := 0; i < 20; i++ {
		v := run(t, "randint(3, 5)")
		if v.Kind != engine.KindInt || v.Num < 3 || v.Num >= 5 {
			t.Fatalf("randint(3, 5) = %s, out of range", v)
		}
		if v.Num != float64(int64(v.Num)) {
			t.Fatalf("randint(3, 5) = %s, not integral", v)
		}
	}
	// The optional third argument keeps the fractional part.
	for i := 0; i < 20; i++ {
		v := run(t, "randint(3, 5, true)")
		if v.Kind != engine.KindInt || v.Num < 3 || v.Num >= 5 {
			t.Fatalf("randint(3, 5, true) = %s, out of range", v)
		}
	}
	if v := run(t, "randint(3, 5, 1)"); v.Kind != engine.KindTypeError {
		t.Errorf("got %v, want TypeError", v.Kind)
	}
	if v := run(t, "randint(3)"); v.Kind != engine.KindTypeError {
		t.Errorf("got %v, want TypeError", v.Kind)
	}
}

func TestDebugGatesPrint(t *testing.T) {
	// print is part of the evaluator's diagnostics and only exists when the
	// debug flag is set.
	if v := run(t, "print(1)"); v.Kind != engine.KindUndefined {
		t.Errorf("print without debug: got %v, want Undefined", v.Kind)
	}
	result, _, err := engine.Evaluate(context.Background(),
		parse(t, "print(1)"), nil, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Kind != engine.KindNone {
		t.Errorf("print with debug: got %v, want None", result.Kind)
	}
}

func TestHostFunctionPositional(t *testing.T) {
	var got []engine.Value
	funcs := engine.Functions{{
		Name: "add",
		Call: func(_ context.Context, name string, args engine.Args, _ engine.Scope) (engine.Value, error) {
			got = args.Values()
			return engine.NewInt(got[0].Num + got[1].Num), nil
		},
	}}
	result, _, err := engine.Evaluate(context.Background(),
		parse(t, "add(3, 4)"), nil, funcs, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, result, 7)
	if len(got) != 2 || got[0].Num != 3 || got[1].Num != 4 {
		t.Errorf("host function received %v, want [3 4]", got)
	}
}

func TestHostFunctionNamed(t *testing.T) {
	var got engine.Value
	funcs := engine.Functions{{
		Name: "configure",
		Call: func(_ context.Context, name string, args engine.Args, _ engine.Scope) (engine.Value, error) {
			scope, ok := args.NamedScope()
			if !ok {
				t.Error("expected named arguments")
			}
			got = scope
			return engine.None(), nil
		},
	}}
	_, _, err := engine.Evaluate(context.Background(),
		parse(t, `configure { host = "localhost"; port = 8080 }`), nil, funcs, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != engine.KindScope || len(got.Scope) != 2 {
		t.Fatalf("got %s, want a two-entry scope", got)
	}
	if got.Scope[0].Name != "host" || got.Scope[1].Name != "port" {
		t.Errorf("entry order = [%s %s], want [host port]", got.Scope[0].Name, got.Scope[1].Name)
	}
}

func TestModules(t *testing.T) {
	modules := map[string]*engine.Program{
		"util": parse(t, "fn double(x) { return x * 2 }"),
	}
	result, _, err := engine.Evaluate(context.Background(),
		parse(t, "import util; double(5)"), nil, nil, modules, false)
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, result, 10)

	v, _, err := engine.Evaluate(context.Background(),
		parse(t, "import nope"), nil, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != engine.KindError {
		t.Errorf("missing module: got %v, want Error", v.Kind)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := engine.Evaluate(ctx, parse(t, "x = 1"), nil, nil, nil, false)
	if err == nil {
		t.Fatal("expected a context error")
	}
}

func TestTokenizeErrors(t *testing.T) {
	if _, err := engine.Tokenize(`"unterminated`); err == nil {
		t.Error("unterminated string: expected an error")
	}
	if _, err := engine.Tokenize("@"); err == nil {
		t.Error("stray character: expected an error")
	}
	if _, err := engine.Tokenize(`"bad \q escape"`); err == nil {
		t.Error("invalid escape: expected an error")
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"x = ;", "if 1 {", "fn f(", "f(1,"} {
		tokens, err := engine.Tokenize(src)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", src, err)
		}
		if _, err := engine.Parse(tokens); err == nil {
			t.Errorf("Parse(%q): expected an error", src)
		} else if !strings.Contains(err.Error(), "syntax error") {
			t.Errorf("Parse(%q) error %q does not mention syntax", src, err)
		}
	}
}

func TestEvaluateLiteral(t *testing.T) {
	v, err := engine.EvaluateLiteral("2 + 2")
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, v, 4)

	if _, err := engine.EvaluateLiteral("1 +"); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestStringEscapesAndComments(t *testing.T) {
	wantStr(t, run(t, "# comment\n\"a\\nb\" # trailing"), "a\nb")
}
