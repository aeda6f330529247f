package runtime

import "quoth/engine-go/pkg/ast"

// Promise defers an expression paired with the environment to evaluate it
// in. It is forced at most once; the forcing flag converts self-reference
// during forcing into a reportable error instead of a stack overflow.
type Promise struct {
	Expr ast.Node
	Env  *Environment

	forced  bool
	value   Value
	forcing bool
}

func NewPromise(expr ast.Node, env *Environment) *Promise {
	return &Promise{Expr: expr, Env: env}
}

func (p *Promise) Kind() Kind { return KindPromise }

func (p *Promise) String() string {
	if p.forced {
		return "<promise: " + p.value.String() + ">"
	}
	return "<promise: " + p.Expr.String() + ">"
}

// Forced reports whether the promise has been evaluated already.
func (p *Promise) Forced() bool { return p.forced }

// ForcedValue returns the memoized result, if any.
func (p *Promise) ForcedValue() (Value, bool) {
	if !p.forced {
		return nil, false
	}
	return p.value, true
}

// Force evaluates the expression in the captured environment using the
// supplied evaluator, memoizing the result. Re-entry while forcing fails
// with RecursiveDefaultEvaluationError.
func (p *Promise) Force(eval func(ast.Node, *Environment) (Value, error)) (Value, error) {
	if p.forced {
		return p.value, nil
	}
	if p.forcing {
		return nil, RecursiveDefaultEvaluationError{Expr: p.Expr.String()}
	}
	p.forcing = true
	v, err := eval(p.Expr, p.Env)
	p.forcing = false
	if err != nil {
		return nil, err
	}
	p.forced = true
	p.value = v
	return v, nil
}
