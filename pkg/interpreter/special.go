package interpreter

import (
	"fmt"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

// Special forms receive their argument nodes unevaluated plus the calling
// environment, and decide internally what to evaluate and when. This is
// what makes quoting and substitution possible at all.
func (i *Interpreter) installSpecialForms() {
	i.defineSpecial("quote", ast.Formals(ast.P("expr")), i.quoteForm)
	i.defineSpecial("substitute", ast.Formals(ast.P("expr")), i.substituteForm)
	i.defineSpecial("bquote", ast.Formals(ast.P("expr")), i.bquoteForm)
	i.defineSpecial("if", ast.Formals(ast.P("cond"), ast.P("then"), ast.PD("else", ast.Null())), i.ifForm)
	i.defineSpecial("function", ast.Formals(ast.P("formals"), ast.P("body")), i.functionForm)
	i.defineSpecial("<-", ast.Formals(ast.P("lhs"), ast.P("rhs")), i.assignForm)
	i.defineSpecial("=", ast.Formals(ast.P("lhs"), ast.P("rhs")), i.assignForm)
	i.defineSpecial("{", nil, i.blockForm)
	i.defineSpecial("missing", ast.Formals(ast.P("name")), i.missingForm)
}

func singleArgument(call *ast.Call, callee string) (ast.Node, error) {
	if len(call.Args) != 1 {
		return nil, runtime.ArityError{Callee: callee, Detail: fmt.Sprintf("expected 1 argument, got %d", len(call.Args))}
	}
	return call.Args[0].Value, nil
}

// quoteForm is the identity on its argument node: no lookups, no rewriting.
func (i *Interpreter) quoteForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	expr, err := singleArgument(call, "quote")
	if err != nil {
		return nil, err
	}
	return runtime.NodeValue{Node: expr}, nil
}

func (i *Interpreter) substituteForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	expr, err := singleArgument(call, "substitute")
	if err != nil {
		return nil, err
	}
	node, err := i.Substitute(expr, env)
	if err != nil {
		return nil, err
	}
	return runtime.NodeValue{Node: node}, nil
}

func (i *Interpreter) bquoteForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	expr, err := singleArgument(call, "bquote")
	if err != nil {
		return nil, err
	}
	node, err := i.Quasiquote(expr, env)
	if err != nil {
		return nil, err
	}
	return runtime.NodeValue{Node: node}, nil
}

func (i *Interpreter) ifForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	if len(call.Args) < 2 || len(call.Args) > 3 {
		return nil, runtime.ArityError{Callee: "if", Detail: fmt.Sprintf("expected 2 or 3 arguments, got %d", len(call.Args))}
	}
	cond, err := i.eval(call.Args[0].Value, env)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(cond) {
		return i.eval(call.Args[1].Value, env)
	}
	if len(call.Args) == 3 {
		return i.eval(call.Args[2].Value, env)
	}
	return runtime.NilValue{}, nil
}

// functionForm constructs a closure over the calling environment. The
// formals node and the body stay unevaluated.
func (i *Interpreter) functionForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	if len(call.Args) != 2 {
		return nil, runtime.ArityError{Callee: "function", Detail: fmt.Sprintf("expected formals and body, got %d argument(s)", len(call.Args))}
	}
	var formals *ast.ParameterList
	switch f := call.Args[0].Value.(type) {
	case *ast.ParameterList:
		formals = f
	case *ast.Symbol:
		if !ast.IsMissing(f) {
			return nil, fmt.Errorf("function formals must be a parameter list, got symbol '%s'", f.Name)
		}
		formals = ast.NewParameterList()
	default:
		return nil, fmt.Errorf("function formals must be a parameter list, got %s", f.Kind())
	}
	return &runtime.ClosureValue{Formals: formals, Body: call.Args[1].Value, Env: env}, nil
}

func (i *Interpreter) assignForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	if len(call.Args) != 2 {
		return nil, runtime.ArityError{Callee: "<-", Detail: fmt.Sprintf("expected lhs and rhs, got %d argument(s)", len(call.Args))}
	}
	target, ok := call.Args[0].Value.(*ast.Symbol)
	if !ok || ast.IsMissing(target) {
		return nil, fmt.Errorf("invalid assignment target %s", call.Args[0].Value)
	}
	value, err := i.eval(call.Args[1].Value, env)
	if err != nil {
		return nil, err
	}
	if closure, isClosure := value.(*runtime.ClosureValue); isClosure && closure.Name == "" {
		closure.Name = target.Name
	}
	env.Define(target.Name, value)
	return value, nil
}

func (i *Interpreter) blockForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	var result runtime.Value = runtime.NilValue{}
	for _, arg := range call.Args {
		val, err := i.eval(arg.Value, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

// missingForm reports whether a formal received neither an argument nor a
// usable default in the current frame.
func (i *Interpreter) missingForm(env *runtime.Environment, call *ast.Call) (runtime.Value, error) {
	expr, err := singleArgument(call, "missing")
	if err != nil {
		return nil, err
	}
	sym, ok := expr.(*ast.Symbol)
	if !ok {
		return nil, fmt.Errorf("missing() requires a symbol, got %s", expr.Kind())
	}
	bound, ok := env.LookupLocal(sym.Name)
	if !ok {
		return runtime.BoolValue{Val: false}, nil
	}
	switch v := bound.(type) {
	case runtime.MissingValue:
		return runtime.BoolValue{Val: true}, nil
	case *runtime.Promise:
		return runtime.BoolValue{Val: ast.IsMissing(v.Expr)}, nil
	default:
		return runtime.BoolValue{Val: false}, nil
	}
}
