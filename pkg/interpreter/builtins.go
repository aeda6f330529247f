package interpreter

import (
	"fmt"
	"sort"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

// Registry is the host callable table: the evaluator and external drivers
// resolve call heads against it. It does not define which callables exist;
// the interpreter installs its built-ins here and hosts may add more.
type Registry struct {
	entries map[string]runtime.Callable
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]runtime.Callable)}
}

// Register adds or replaces a callable under its own name.
func (r *Registry) Register(c runtime.Callable) {
	r.entries[c.CallableName()] = c
}

// Resolve returns the callable registered under name.
func (r *Registry) Resolve(name string) (runtime.Callable, error) {
	if c, ok := r.entries[name]; ok {
		return c, nil
	}
	return nil, runtime.UnboundSymbolError{Name: name}
}

// Names lists the registered callables in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (i *Interpreter) installBuiltins() {
	binary := ast.Formals(ast.P("e1"), ast.P("e2"))

	i.defineBuiltin("+", binary, arithmeticImpl("+"))
	i.defineBuiltin("-", binary, arithmeticImpl("-"))
	i.defineBuiltin("*", binary, arithmeticImpl("*"))
	i.defineBuiltin("/", binary, arithmeticImpl("/"))

	i.defineBuiltin("<", binary, comparisonImpl("<"))
	i.defineBuiltin(">", binary, comparisonImpl(">"))
	i.defineBuiltin("<=", binary, comparisonImpl("<="))
	i.defineBuiltin(">=", binary, comparisonImpl(">="))
	i.defineBuiltin("==", binary, equalityImpl(false))
	i.defineBuiltin("!=", binary, equalityImpl(true))

	i.defineBuiltin("identical", ast.Formals(ast.P("x"), ast.P("y")), identicalImpl)
	i.defineBuiltin("list", ast.Formals(ast.Variadic()), listImpl)
	i.defineBuiltin("c", ast.Formals(ast.Variadic()), listImpl)
	i.defineBuiltin("length", ast.Formals(ast.P("x")), lengthImpl)
	i.defineBuiltin("print", ast.Formals(ast.P("x")), printImpl)
}

func numericPair(op string, args []runtime.Value) (float64, float64, bool, error) {
	asFloat := func(v runtime.Value) (float64, bool, error) {
		switch n := v.(type) {
		case runtime.IntegerValue:
			return float64(n.Val), true, nil
		case runtime.FloatValue:
			return n.Val, false, nil
		default:
			return 0, false, fmt.Errorf("non-numeric argument %s to operator '%s'", v.Kind(), op)
		}
	}
	a, aInt, err := asFloat(args[0])
	if err != nil {
		return 0, 0, false, err
	}
	b, bInt, err := asFloat(args[1])
	if err != nil {
		return 0, 0, false, err
	}
	return a, b, aInt && bInt, nil
}

func arithmeticImpl(op string) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		a, b, bothInt, err := numericPair(op, args)
		if err != nil {
			return nil, err
		}
		var out float64
		switch op {
		case "+":
			out = a + b
		case "-":
			out = a - b
		case "*":
			out = a * b
		case "/":
			if b == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			out = a / b
			bothInt = false
		}
		if bothInt {
			return runtime.IntegerValue{Val: int64(out)}, nil
		}
		return runtime.FloatValue{Val: out}, nil
	}
}

func comparisonImpl(op string) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		a, b, _, err := numericPair(op, args)
		if err != nil {
			return nil, err
		}
		var out bool
		switch op {
		case "<":
			out = a < b
		case ">":
			out = a > b
		case "<=":
			out = a <= b
		case ">=":
			out = a >= b
		}
		return runtime.BoolValue{Val: out}, nil
	}
}

func equalityImpl(negate bool) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		eq := valueIdentical(args[0], args[1])
		if negate {
			eq = !eq
		}
		return runtime.BoolValue{Val: eq}, nil
	}
}

func identicalImpl(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	return runtime.BoolValue{Val: valueIdentical(args[0], args[1])}, nil
}

// valueIdentical is deep value equality; quoted code compares by structural
// tree equality.
func valueIdentical(a, b runtime.Value) bool {
	if a.Kind() != b.Kind() {
		// Mixed int/float comparisons are still numeric equality.
		af, aok := asNumber(a)
		bf, bok := asNumber(b)
		return aok && bok && af == bf
	}
	switch x := a.(type) {
	case runtime.NodeValue:
		return ast.Equal(x.Node, b.(runtime.NodeValue).Node)
	case *runtime.ListValue:
		y := b.(*runtime.ListValue)
		if len(x.Elements) != len(y.Elements) {
			return false
		}
		for idx := range x.Elements {
			if !valueIdentical(x.Elements[idx], y.Elements[idx]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func asNumber(v runtime.Value) (float64, bool) {
	switch n := v.(type) {
	case runtime.IntegerValue:
		return float64(n.Val), true
	case runtime.FloatValue:
		return n.Val, true
	default:
		return 0, false
	}
}

func listImpl(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	elements := make([]runtime.Value, len(args))
	copy(elements, args)
	return &runtime.ListValue{Elements: elements}, nil
}

func lengthImpl(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case *runtime.ListValue:
		return runtime.IntegerValue{Val: int64(len(v.Elements))}, nil
	case runtime.StringValue:
		return runtime.IntegerValue{Val: int64(len(v.Val))}, nil
	case runtime.NilValue:
		return runtime.IntegerValue{Val: 0}, nil
	default:
		return runtime.IntegerValue{Val: 1}, nil
	}
}

func printImpl(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	fmt.Println(args[0].String())
	return args[0], nil
}
