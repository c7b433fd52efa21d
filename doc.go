// Package femscript embeds the femscript scripting language in Go
// applications.
//
// # Overview
//
// femscript is a small dynamically-typed language. This package is the
// host-facing layer: it converts values between Go and the engine's tagged
// representation, adapts Go functions so scripts can call them, and manages
// the lifecycle of a running script (its parsed program, top-level
// bindings, registered functions and modules). The language core lives in
// the engine subpackage.
//
// # Quick Start
//
//	script, err := femscript.New(`result = add(3, 4);`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	script.Register("add", func(call femscript.Call) (any, error) {
//	    return call.Args[0].(int64) + call.Args[1].(int64), nil
//	})
//	if _, err := script.Execute(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	vars := script.Variables() // result = 7
//
// # Registering Functions
//
// Register adds an immediate function; RegisterTask adds a suspending one
// that receives the execution's context:
//
//	script.RegisterTask("fetch", func(ctx context.Context, call femscript.Call) (any, error) {
//	    return httpGet(ctx, call.Args[0].(string))
//	})
//
// Scripts call registered functions positionally, fetch("url"), or with a
// scope literal whose entries arrive as Call.Kwargs:
//
//	configure { host = "localhost"; port = 8080; }
//
// Returning a *Error from a function surfaces in the script as an ordinary
// Error value; any other error aborts the execution.
//
// # Values
//
// Go to script: string→Str, integers and floats→Int, bool→Bool, nil→None,
// slices→List, []byte→Bytes, *Scope and string-keyed maps→Scope. Anything
// else is carried through opaquely as an Object. Script to Go is the
// inverse; integral numbers come back as int64, scopes as *Scope, and
// error values as *Error data for the caller to inspect.
package femscript
