package interpreter

import (
	"errors"
	"fmt"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

func (i *Interpreter) eval(node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	defer i.leave()

	switch n := node.(type) {
	case *ast.Constant:
		return constantValue(n), nil
	case *ast.Symbol:
		return i.evalSymbol(n, env)
	case *ast.Call:
		return i.evalCall(n, env)
	case *ast.ParameterList:
		// A bare parameter list evaluates to itself, as quoted data.
		return runtime.NodeValue{Node: n}, nil
	default:
		return nil, runtime.UnknownNodeKindError{Kind: fmt.Sprintf("%T", node)}
	}
}

func constantValue(c *ast.Constant) runtime.Value {
	switch v := c.Val.(type) {
	case nil:
		return runtime.NilValue{}
	case bool:
		return runtime.BoolValue{Val: v}
	case int64:
		return runtime.IntegerValue{Val: v}
	case int:
		return runtime.IntegerValue{Val: int64(v)}
	case float64:
		return runtime.FloatValue{Val: v}
	case string:
		return runtime.StringValue{Val: v}
	case runtime.Value:
		// Opaque host payload injected by quasiquotation.
		return v
	default:
		return runtime.StringValue{Val: fmt.Sprintf("%v", v)}
	}
}

func (i *Interpreter) evalSymbol(sym *ast.Symbol, env *runtime.Environment) (runtime.Value, error) {
	if ast.IsMissing(sym) {
		return nil, runtime.MissingValueAccessError{}
	}
	bound, err := env.Lookup(sym.Name)
	if err != nil {
		return nil, err
	}
	switch v := bound.(type) {
	case *runtime.Promise:
		return v.Force(i.eval)
	case runtime.MissingValue:
		return nil, runtime.MissingValueAccessError{Name: sym.Name}
	default:
		return v, nil
	}
}

func (i *Interpreter) evalCall(call *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	head, err := i.resolveHead(call, env)
	if err != nil {
		return nil, err
	}
	switch fn := head.(type) {
	case *runtime.SpecialFormValue:
		tracer().Debugf("special form %s%s", fn.Name, call)
		return fn.Impl(env, call)
	case *runtime.BuiltinValue:
		return i.applyBuiltin(fn, call, env)
	case *runtime.ClosureValue:
		return i.applyClosure(fn, call, env)
	default:
		return nil, runtime.NotCallableError{Head: call.Head.String(), Kind: head.Kind().String()}
	}
}

// resolveHead produces the callable (or other value) in head position.
// Environment bindings win; a symbol head bound nowhere in the chain falls
// back to the host callable table, so externally registered callables are
// invocable without touching the root environment.
func (i *Interpreter) resolveHead(call *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	head, err := i.eval(call.Head, env)
	if err == nil {
		return head, nil
	}
	sym, ok := call.Head.(*ast.Symbol)
	if !ok {
		return nil, err
	}
	var unbound runtime.UnboundSymbolError
	if !errors.As(err, &unbound) || unbound.Name != sym.Name {
		return nil, err
	}
	callable, rerr := i.registry.Resolve(sym.Name)
	if rerr != nil {
		return nil, err
	}
	return callable, nil
}

// applyClosure binds standardized arguments as fresh promises in a child of
// the closure's defining environment: lexical scoping, call by need.
// Defaults are promised against the new frame itself, so one default may
// reference another formal.
func (i *Interpreter) applyClosure(fn *runtime.ClosureValue, call *ast.Call, callerEnv *runtime.Environment) (runtime.Value, error) {
	match, err := matchArgs(i.expandArgs(call, callerEnv), fn.Formals, fn.CallableName())
	if err != nil {
		return nil, err
	}
	frame := runtime.NewCallFrame(fn.Env)
	for _, param := range fn.Formals.Params {
		if param.Name == ast.VariadicName {
			entries := make([]runtime.PromisedArg, 0, len(match.variadic))
			for _, arg := range match.variadic {
				entries = append(entries, runtime.PromisedArg{
					Name:    arg.name,
					Promise: argPromise(arg, callerEnv),
				})
			}
			frame.Define(ast.VariadicName, &runtime.ArgListValue{Entries: entries})
			continue
		}
		if arg, ok := match.byFormal[param.Name]; ok {
			frame.Define(param.Name, argPromise(arg, callerEnv))
			continue
		}
		if !ast.IsMissing(param.Default) {
			frame.Define(param.Name, runtime.NewPromise(param.Default, frame))
			continue
		}
		frame.Define(param.Name, runtime.MissingValue{})
	}
	tracer().Debugf("applying %s to %d argument(s)", fn.CallableName(), len(call.Args))
	return i.eval(fn.Body, frame)
}

// argPromise wraps one matched argument for a call frame: arguments
// forwarded from a variadic collector keep their original promise, fresh
// arguments are promised against the caller's environment.
func argPromise(arg callArg, callerEnv *runtime.Environment) *runtime.Promise {
	if arg.promise != nil {
		return arg.promise
	}
	return runtime.NewPromise(arg.value, callerEnv)
}

// applyBuiltin standardizes and then strictly evaluates arguments in formal
// order before invoking the host implementation.
func (i *Interpreter) applyBuiltin(fn *runtime.BuiltinValue, call *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	match, err := matchArgs(i.expandArgs(call, env), fn.Formals, fn.Name)
	if err != nil {
		return nil, err
	}
	values := make([]runtime.Value, 0, len(call.Args))
	for _, param := range fn.Formals.Params {
		if param.Name == ast.VariadicName {
			for _, arg := range match.variadic {
				v, err := i.evalArg(arg, env)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
			}
			continue
		}
		arg, ok := match.byFormal[param.Name]
		switch {
		case ok:
			v, err := i.evalArg(arg, env)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case !ast.IsMissing(param.Default):
			v, err := i.eval(param.Default, env)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		default:
			return nil, runtime.MissingValueAccessError{Name: param.Name}
		}
	}
	return fn.Impl(&runtime.NativeCallContext{Env: env}, values)
}

func (i *Interpreter) evalArg(arg callArg, env *runtime.Environment) (runtime.Value, error) {
	if arg.promise != nil {
		return arg.promise.Force(i.eval)
	}
	return i.eval(arg.value, env)
}
