/*
Package interpreter evaluates quoth expression trees: a tree-walking
evaluator with lazy argument promises and special forms, plus the
metaprogramming operations built on top of it: quote, substitute,
quasiquotation, call standardization and a generic tree walker.

Evaluation is single-threaded and synchronous. Every operation runs to
completion or failure before returning; node trees are never mutated, so a
failed transform leaves all inputs untouched.
*/
package interpreter

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'quoth.interp'.
func tracer() tracing.Trace {
	return tracing.Select("quoth.interp")
}
