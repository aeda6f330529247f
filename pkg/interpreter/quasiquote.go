package interpreter

import (
	"fmt"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

// Quasiquote rebuilds node, evaluating every marked sub-expression in env
// and splicing the result in as a literal sub-tree. The marker is a unary
// call whose head is the reserved unquote symbol; evaluated values that are
// themselves code splice as trees, so injection is not limited to scalars.
// The input tree is never mutated. The node budget resets only when this is
// the top-level operation, not when the bquote form runs inside an
// evaluation.
func (i *Interpreter) Quasiquote(node ast.Node, env *runtime.Environment) (ast.Node, error) {
	if i.depth == 0 {
		i.visited = 0
	}
	return i.quasiquote(node, env)
}

func (i *Interpreter) quasiquote(node ast.Node, env *runtime.Environment) (ast.Node, error) {
	if err := i.enter(); err != nil {
		return nil, err
	}
	defer i.leave()
	switch n := node.(type) {
	case *ast.Constant, *ast.Symbol:
		return node, nil
	case *ast.Call:
		// An unquote marker applied with no arguments does not satisfy the
		// single-argument pattern and falls through to the plain rebuild.
		if sym, ok := n.Head.(*ast.Symbol); ok && sym.Name == ast.UnquoteName && len(n.Args) == 1 {
			val, err := i.eval(n.Args[0].Value, env)
			if err != nil {
				return nil, err
			}
			return valueToNode(val), nil
		}
		head, err := i.quasiquote(n.Head, env)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Arg, 0, len(n.Args))
		for _, arg := range n.Args {
			rebuilt, err := i.quasiquote(arg.Value, env)
			if err != nil {
				return nil, err
			}
			args = append(args, ast.Arg{Name: arg.Name, Value: rebuilt})
		}
		return ast.NewCall(head, args...), nil
	case *ast.ParameterList:
		params := make([]ast.Param, 0, len(n.Params))
		for _, param := range n.Params {
			def := param.Default
			if def != nil && !ast.IsMissing(def) {
				rebuilt, err := i.quasiquote(def, env)
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
