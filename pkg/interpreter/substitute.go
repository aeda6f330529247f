package interpreter

import (
	"fmt"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

// Substitute rebuilds node, replacing free symbols using the bindings of the
// given frame. Promises contribute their unevaluated expressions, never
// their forced values; code, not results, propagates outward. Outside an
// active call frame (e.g. the root environment) substitution behaves as
// quote and returns the node unchanged. The node budget resets only when
// this is the top-level operation, not when the substitute form runs inside
// an evaluation.
func (i *Interpreter) Substitute(node ast.Node, env *runtime.Environment) (ast.Node, error) {
	if i.depth == 0 {
		i.visited = 0
	}
	if env == nil || !env.IsCallFrame() {
		return node, nil
	}
	return i.substitute(node, env)
}

func (i *Interpreter) substitute(node ast.Node, env *runtime.Environment) (ast.Node, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	defer i.leave()
	switch n := node.(type) {
	case *ast.Constant:
		return n, nil
	case *ast.Symbol:
		return substituteSymbol(n, env), nil
	case *ast.Call:
		return i.substituteCall(n, env)
	case *ast.ParameterList:
		params := make([]ast.Param, 0, len(n.Params))
		for _, param := range n.Params {
			def := param.Default
			if def != nil && !ast.IsMissing(def) {
				rebuilt, err := i.substitute(def, env)
				if err != nil {
					return nil, err
				}
				def = rebuilt
			}
			params = append(params, ast.Param{Name: param.Name, Default: def})
		}
		return ast.NewParameterList(params...), nil
	default:
		return nil, runtime.UnknownNodeKindError{Kind: fmt.Sprintf("%T", node)}
	}
}

func (i *Interpreter) substituteCall(call *ast.Call, env *runtime.Environment) (ast.Node, error) {
	head, err := i.substitute(call.Head, env)
	if err != nil {
		return nil, err
	}
	args := make([]ast.Arg, 0, len(call.Args))
	for _, arg := range call.Args {
		// The variadic collector splices its collected expressions into the
		// parent call at this position, flattened in order.
		if sym, ok := arg.Value.(*ast.Symbol); ok && sym.Name == ast.VariadicName {
			if bound, found := env.LookupLocal(ast.VariadicName); found {
				if collector, isList := bound.(*runtime.ArgListValue); isList {
					for _, entry := range collector.Entries {
						args = append(args, ast.Arg{Name: entry.Name, Value: entry.Promise.Expr})
					}
					continue
				}
			}
		}
		rebuilt, err := i.substitute(arg.Value, env)
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Arg{Name: arg.Name, Value: rebuilt})
	}
	return ast.NewCall(head, args...), nil
}

// substituteSymbol applies the per-symbol rules against the frame's own
// bindings; parent frames do not participate.
func substituteSymbol(sym *ast.Symbol, env *runtime.Environment) ast.Node {
	if ast.IsMissing(sym) {
		return sym
	}
	bound, ok := env.LookupLocal(sym.Name)
	if !ok {
		return sym
	}
	switch v := bound.(type) {
	case *runtime.Promise:
		return v.Expr
	case *runtime.ArgListValue:
		// Splicing happens in call position; a bare collector reference
		// stays as written.
		return sym
	case runtime.MissingValue:
		return sym
	default:
		return valueToNode(v)
	}
}

// valueToNode embeds a runtime value into a tree as a literal sub-tree.
// Node values splice verbatim, which is what permits code-as-data
// injection; scalars become constants; anything else is carried as an
// opaque constant payload.
func valueToNode(v runtime.Value) ast.Node {
	switch val := v.(type) {
	case runtime.NodeValue:
		return val.Node
	case runtime.NilValue:
		return ast.NewConstant(nil)
	case runtime.BoolValue:
		return ast.NewConstant(val.Val)
	case runtime.IntegerValue:
		return ast.NewConstant(val.Val)
	case runtime.FloatValue:
		return ast.NewConstant(val.Val)
	case runtime.StringValue:
		return ast.NewConstant(val.Val)
	default:
		return ast.NewConstant(v)
	}
}
