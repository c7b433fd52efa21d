package femscript_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/femscript-lang/femscript"
)

func TestPositionalCall(t *testing.T) {
	script, err := femscript.New("add(3, 4)")
	if err != nil {
		t.Fatal(err)
	}
	var got []any
	script.Register("add", func(call femscript.Call) (any, error) {
		got = call.Args
		return call.Args[0].(int64) + call.Args[1].(int64), nil
	})

	result, err := script.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result != int64(7) {
		t.Errorf("result = %v, want 7", result)
	}
	if len(got) != 2 || got[0] != int64(3) || got[1] != int64(4) {
		t.Errorf("callable received %v, want [3 4]", got)
	}
}

func TestNamedScopeCall(t *testing.T) {
	script, err := femscript.New(`configure { host = "localhost"; port = 8080 }`)
	if err != nil {
		t.Fatal(err)
	}
	var got *femscript.Scope
	script.Register("configure", func(call femscript.Call) (any, error) {
		got = call.Kwargs
		return nil, nil
	})

	if _, err := script.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("callable did not receive named arguments")
	}
	if host, _ := got.Get("host"); host != "localhost" {
		t.Errorf("host = %v", host)
	}
	if port, _ := got.Get("port"); port != int64(8080) {
		t.Errorf("port = %v", port)
	}
}

func TestCallName(t *testing.T) {
	handler := func(call femscript.Call) (any, error) {
		return call.Name, nil
	}
	script, err := femscript.New("first() + second()")
	if err != nil {
		t.Fatal(err)
	}
	script.Register("first", handler)
	script.Register("second", handler)

	result, err := script.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result != "firstsecond" {
		t.Errorf("result = %v, want firstsecond", result)
	}
}

func TestDomainErrorContainment(t *testing.T) {
	script, err := femscript.New("boom()")
	if err != nil {
		t.Fatal(err)
	}
	script.Register("boom", func(call femscript.Call) (any, error) {
		return nil, femscript.Errorf("bad input")
	})

	result, err := script.Execute(context.Background())
	if err != nil {
		t.Fatalf("domain error aborted Execute: %v", err)
	}
	scriptErr, ok := result.(*femscript.Error)
	if !ok {
		t.Fatalf("result = %#v, want *Error", result)
	}
	if scriptErr.Message != "Error: bad input" {
		t.Errorf("message = %q, want %q", scriptErr.Message, "Error: bad input")
	}
}

func TestNonDomainErrorIsFatal(t *testing.T) {
	script, err := femscript.New("boom()")
	if err != nil {
		t.Fatal(err)
	}
	fatal := errors.New("connection lost")
	script.Register("boom", func(call femscript.Call) (any, error) {
		return nil, fatal
	})

	if _, err := script.Execute(context.Background()); !errors.Is(err, fatal) {
		t.Errorf("Execute error = %v, want %v", err, fatal)
	}
}

func TestTaskFunction(t *testing.T) {
	script, err := femscript.New("wait(5)")
	if err != nil {
		t.Fatal(err)
	}
	script.RegisterTask("wait", func(ctx context.Context, call femscript.Call) (any, error) {
		select {
		case <-time.After(time.Millisecond):
			return call.Args[0], nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	result, err := script.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result != int64(5) {
		t.Errorf("result = %v, want 5", result)
	}
}

func TestTaskObservesCancellation(t *testing.T) {
	script, err := femscript.New("wait()")
	if err != nil {
		t.Fatal(err)
	}
	script.RegisterTask("wait", func(ctx context.Context, call femscript.Call) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := script.Execute(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute error = %v, want deadline exceeded", err)
	}
}

func TestDuplicateRegistrationLastWins(t *testing.T) {
	script, err := femscript.New("f()")
	if err != nil {
		t.Fatal(err)
	}
	script.Register("f", func(femscript.Call) (any, error) { return int64(1), nil })
	script.Register("f", func(femscript.Call) (any, error) { return int64(2), nil })

	result, err := script.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Default policy: re-registering a name shadows the earlier entry.
	if result != int64(2) {
		t.Errorf("result = %v, want 2 (last registration wins)", result)
	}
}

func TestDuplicateRegistrationFirstWins(t *testing.T) {
	script, err := femscript.New("f()",
		femscript.WithResolution(femscript.ResolveFirstWins))
	if err != nil {
		t.Fatal(err)
	}
	script.Register("f", func(femscript.Call) (any, error) { return int64(1), nil })
	script.Register("f", func(femscript.Call) (any, error) { return int64(2), nil })

	result, err := script.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result != int64(1) {
		t.Errorf("result = %v, want 1 (first registration wins)", result)
	}
}
