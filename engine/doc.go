// Package engine implements the femscript language core: the tokenizer,
// the parser and the tree-walking evaluator.
//
// The host-facing layer in the parent package reaches the engine through
// four operations: [Tokenize], [Parse], [Evaluate] and [EvaluateLiteral].
// Everything else in this package is an implementation detail of those.
//
// Values cross the boundary as [Value], a tagged union over the fixed kind
// vocabulary (Str, Int, Bool, None, List, Bytes, Scope, Object and the
// error kinds). Registered host functions are invoked through the uniform
// [HostFunc] signature with an [Args] shape that is either an ordered
// positional list or a single scope literal of named arguments.
package engine
