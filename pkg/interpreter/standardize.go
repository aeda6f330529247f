package interpreter

import (
	"fmt"
	"strings"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

// callArg is one effective argument of a call after variadic expansion.
// Arguments forwarded out of a variadic collector carry their original
// promise so that laziness and memoization survive the hop.
type callArg struct {
	name    string
	value   ast.Node
	promise *runtime.Promise
}

// plainArgs lifts a call's arguments without any expansion.
func plainArgs(call *ast.Call) []callArg {
	args := make([]callArg, 0, len(call.Args))
	for _, arg := range call.Args {
		args = append(args, callArg{name: arg.Name, value: arg.Value})
	}
	return args
}

// expandArgs lifts a call's arguments, splicing any reference to the
// variadic collector bound in env into the arguments it collected, in
// order and under their original names.
func (i *Interpreter) expandArgs(call *ast.Call, env *runtime.Environment) []callArg {
	args := make([]callArg, 0, len(call.Args))
	for _, arg := range call.Args {
		if sym, ok := arg.Value.(*ast.Symbol); ok && sym.Name == ast.VariadicName {
			if bound, err := env.Lookup(ast.VariadicName); err == nil {
				if collector, isList := bound.(*runtime.ArgListValue); isList {
					for _, entry := range collector.Entries {
						args = append(args, callArg{
							name:    entry.Name,
							value:   entry.Promise.Expr,
							promise: entry.Promise,
						})
					}
					continue
				}
			}
		}
		args = append(args, callArg{name: arg.Name, value: arg.Value})
	}
	return args
}

// argMatch is the outcome of argument matching: formal name → argument,
// plus the arguments collected by the variadic slot in call order.
type argMatch struct {
	byFormal map[string]callArg
	variadic []callArg
}

// matchArgs runs the three matching passes (exact name, unambiguous
// prefix, then positional) against the call's effective arguments.
// Formals at or after the variadic slot can only be matched by exact name.
func matchArgs(callArgs []callArg, formals *ast.ParameterList, callee string) (*argMatch, error) {
	type slot struct {
		arg     callArg
		matched bool
	}
	args := make([]slot, len(callArgs))
	for idx, arg := range callArgs {
		args[idx] = slot{arg: arg}
	}
	variadicIdx := formals.VariadicIndex()
	match := &argMatch{byFormal: make(map[string]callArg)}

	// Pass 1: exact name matches.
	for ai := range args {
		name := args[ai].arg.name
		if name == "" || name == ast.VariadicName {
			continue
		}
		if _, ok := formals.Lookup(name); !ok {
			continue
		}
		if _, taken := match.byFormal[name]; taken {
			return nil, runtime.AmbiguousArgumentMatchError{Arg: name, Formals: []string{name}}
		}
		match.byFormal[name] = args[ai].arg
		args[ai].matched = true
	}

	// Pass 2: a remaining named argument binds to the single remaining
	// formal its name is a prefix of. Formals behind the variadic slot are
	// excluded: those match exactly or not at all.
	for ai := range args {
		name := args[ai].arg.name
		if args[ai].matched || name == "" || name == ast.VariadicName {
			continue
		}
		var candidates []string
		for _, param := range formals.Params {
			if param.Name == ast.VariadicName {
				break
			}
			if _, taken := match.byFormal[param.Name]; taken {
				continue
			}
			if strings.HasPrefix(param.Name, name) {
				candidates = append(candidates, param.Name)
			}
		}
		switch len(candidates) {
		case 0:
			if variadicIdx < 0 {
				return nil, runtime.ArityError{Callee: callee, Detail: fmt.Sprintf("unused argument '%s'", name)}
			}
			// Collected by the variadic slot in pass 3.
		case 1:
			match.byFormal[candidates[0]] = args[ai].arg
			args[ai].matched = true
		default:
			return nil, runtime.AmbiguousArgumentMatchError{Arg: name, Formals: candidates}
		}
	}

	// Pass 3: remaining unnamed arguments fill the remaining formals before
	// the variadic slot left to right; everything beyond lands in the
	// variadic slot, preserving call order.
	limit := len(formals.Params)
	if variadicIdx >= 0 {
		limit = variadicIdx
	}
	fi := 0
	for ai := range args {
		if args[ai].matched {
			continue
		}
		arg := args[ai].arg
		if arg.name != "" {
			match.variadic = append(match.variadic, arg)
			continue
		}
		for fi < limit {
			if _, taken := match.byFormal[formals.Params[fi].Name]; taken {
				fi++
				continue
			}
			break
		}
		if fi < limit {
			match.byFormal[formals.Params[fi].Name] = arg
			fi++
			continue
		}
		if variadicIdx >= 0 {
			match.variadic = append(match.variadic, arg)
			continue
		}
		return nil, runtime.ArityError{Callee: callee, Detail: fmt.Sprintf("unmatched positional argument %s", arg.value)}
	}
	return match, nil
}

// Standardize canonicalizes a call against a formal-parameter list: every
// matched argument is rewritten to its formal name and arguments are
// reordered into formal declaration order, with variadic-collected
// arguments spliced at the variadic position under their original names.
// The operation is idempotent. Callables without introspectable formals
// are the caller's problem: the formals must be supplied here.
func (i *Interpreter) Standardize(call *ast.Call, formals *ast.ParameterList) (*ast.Call, error) {
	callee := ""
	if sym, ok := call.Head.(*ast.Symbol); ok {
		callee = sym.Name
	}
	match, err := matchArgs(plainArgs(call), formals, callee)
	if err != nil {
		return nil, err
	}
	args := make([]ast.Arg, 0, len(call.Args))
	for _, param := range formals.Params {
		if param.Name == ast.VariadicName {
			for _, arg := range match.variadic {
				args = append(args, ast.Arg{Name: arg.name, Value: arg.value})
			}
			continue
		}
		if arg, ok := match.byFormal[param.Name]; ok {
			args = append(args, ast.Arg{Name: param.Name, Value: arg.value})
		}
	}
	return ast.NewCall(call.Head, args...), nil
}
