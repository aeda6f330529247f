package interpreter

import (
	"fmt"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

// Visitor is a generic recursive-descent tree walk. Base supplies results
// for Constant and Symbol leaves; Combine reduces the visited children of a
// Call or ParameterList into one result. Halt, when set, stops the walk as
// soon as a child result satisfies it, which gives short-circuit scans.
// Dispatch is exhaustive over the four node kinds. MaxDepth bounds nesting;
// zero means DefaultRecursionLimit.
type Visitor struct {
	Base     func(node ast.Node) (any, error)
	Combine  func(node ast.Node, children []any) (any, error)
	Halt     func(result any) bool
	MaxDepth int
}

// Visit walks the tree rooted at node. Trees nested deeper than the depth
// bound fail with RecursionLimitExceededError instead of exhausting the
// host stack.
func (v Visitor) Visit(node ast.Node) (any, error) {
	limit := v.MaxDepth
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}
	return v.visit(node, 0, limit)
}

func (v Visitor) visit(node ast.Node, depth, limit int) (any, error) {
	if depth >= limit {
		return nil, runtime.RecursionLimitExceededError{Limit: limit}
	}
	switch n := node.(type) {
	case *ast.Constant, *ast.Symbol:
		return v.Base(node)
	case *ast.Call:
		results := make([]any, 0, n.Len())
		for idx := 0; idx < n.Len(); idx++ {
			r, err := v.visit(n.Child(idx), depth+1, limit)
			if err != nil {
				return nil, err
			}
			if v.Halt != nil && v.Halt(r) {
				return r, nil
			}
			results = append(results, r)
		}
		return v.Combine(node, results)
	case *ast.ParameterList:
		results := make([]any, 0, len(n.Params))
		for _, param := range n.Params {
			r, err := v.visit(param.Default, depth+1, limit)
			if err != nil {
				return nil, err
			}
			if v.Halt != nil && v.Halt(r) {
				return r, nil
			}
			results = append(results, r)
		}
		return v.Combine(node, results)
	default:
		return nil, runtime.UnknownNodeKindError{Kind: fmt.Sprintf("%T", node)}
	}
}

// ContainsSymbol reports whether a symbol with the given name occurs
// anywhere in the tree. The walk stops at the first hit.
func ContainsSymbol(node ast.Node, name string) (bool, error) {
	v := Visitor{
		Base: func(n ast.Node) (any, error) {
			sym, ok := n.(*ast.Symbol)
			return ok && sym.Name == name, nil
		},
		Combine: func(ast.Node, []any) (any, error) {
			return false, nil
		},
		Halt: func(r any) bool {
			hit, ok := r.(bool)
			return ok && hit
		},
	}
	result, err := v.Visit(node)
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func isAssignment(call *ast.Call) bool {
	sym, ok := call.Head.(*ast.Symbol)
	return ok && (sym.Name == "<-" || sym.Name == "=") && len(call.Args) == 2
}

// AssignmentTargets collects the left-hand-side names of every assignment
// in the tree, in first-occurrence order without duplicates. Right-hand
// sides are walked too, since assignments may nest.
func AssignmentTargets(node ast.Node) ([]string, error) {
	v := Visitor{
		Base: func(ast.Node) (any, error) {
			return []string(nil), nil
		},
		Combine: func(n ast.Node, children []any) (any, error) {
			var names []string
			if call, ok := n.(*ast.Call); ok && isAssignment(call) {
				if sym, isSym := call.Args[0].Value.(*ast.Symbol); isSym && !ast.IsMissing(sym) {
					names = append(names, sym.Name)
				}
			}
			for _, child := range children {
				if childNames, ok := child.([]string); ok {
					names = append(names, childNames...)
				}
			}
			return names, nil
		},
	}
	result, err := v.Visit(node)
	if err != nil {
		return nil, err
	}
	seen := linkedhashset.New()
	for _, name := range result.([]string) {
		seen.Add(name)
	}
	out := make([]string, 0, seen.Size())
	for _, name := range seen.Values() {
		out = append(out, name.(string))
	}
	return out, nil
}

// RenameSymbol rebuilds the tree with every occurrence of one symbol
// renamed. The result is always a new tree of the same kind as the input.
func RenameSymbol(node ast.Node, from, to string) (ast.Node, error) {
	v := Visitor{
		Base: func(n ast.Node) (any, error) {
			if sym, ok := n.(*ast.Symbol); ok && sym.Name == from && from != "" {
				return ast.Node(ast.NewSymbol(to)), nil
			}
			return n, nil
		},
		Combine: func(n ast.Node, children []any) (any, error) {
			switch orig := n.(type) {
			case *ast.Call:
				args := make([]ast.Arg, 0, len(orig.Args))
				for idx, arg := range orig.Args {
					args = append(args, ast.Arg{Name: arg.Name, Value: children[idx+1].(ast.Node)})
				}
				return ast.Node(ast.NewCall(children[0].(ast.Node), args...)), nil
			case *ast.ParameterList:
				params := make([]ast.Param, 0, len(orig.Params))
				for idx, param := range orig.Params {
					params = append(params, ast.Param{Name: param.Name, Default: children[idx].(ast.Node)})
				}
				return ast.Node(ast.NewParameterList(params...)), nil
			default:
				return nil, runtime.UnknownNodeKindError{Kind: fmt.Sprintf("%T", n)}
			}
		},
	}
	result, err := v.Visit(node)
	if err != nil {
		return nil, err
	}
	return result.(ast.Node), nil
}
