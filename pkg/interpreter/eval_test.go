package interpreter

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

func evalAt(t *testing.T, i *Interpreter, node ast.Node) runtime.Value {
	t.Helper()
	val, err := i.Eval(node, i.GlobalEnvironment())
	if err != nil {
		t.Fatalf("eval %s: %v", node, err)
	}
	return val
}

func TestEvalConstants(t *testing.T) {
	i := New()
	cases := []struct {
		node ast.Node
		want runtime.Value
	}{
		{ast.Int(42), runtime.IntegerValue{Val: 42}},
		{ast.Flt(2.5), runtime.FloatValue{Val: 2.5}},
		{ast.Str("hi"), runtime.StringValue{Val: "hi"}},
		{ast.Bool(true), runtime.BoolValue{Val: true}},
		{ast.Null(), runtime.NilValue{}},
	}
	for _, tc := range cases {
		got := evalAt(t, i, tc.node)
		if got != tc.want {
			t.Fatalf("eval %s: got %v, want %v", tc.node, got, tc.want)
		}
	}
}

func TestEvalSymbolLookup(t *testing.T) {
	i := New()
	i.GlobalEnvironment().Define("x", runtime.IntegerValue{Val: 7})
	got := evalAt(t, i, ast.Sym("x"))
	if got != (runtime.IntegerValue{Val: 7}) {
		t.Fatalf("got %v", got)
	}
}

func TestEvalUnboundSymbol(t *testing.T) {
	i := New()
	_, err := i.Eval(ast.Sym("nope"), i.GlobalEnvironment())
	var unbound runtime.UnboundSymbolError
	if !errors.As(err, &unbound) {
		t.Fatalf("expected unbound symbol error, got %v", err)
	}
	if unbound.Name != "nope" {
		t.Fatalf("wrong symbol in error: %q", unbound.Name)
	}
}

func TestEvalArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "quoth.interp")
	defer teardown()
	//
	i := New()
	got := evalAt(t, i, ast.CallTo("+", ast.Int(1), ast.CallTo("*", ast.Int(2), ast.Int(3))))
	if got != (runtime.IntegerValue{Val: 7}) {
		t.Fatalf("1 + 2*3 = %v", got)
	}
	got = evalAt(t, i, ast.CallTo("/", ast.Int(7), ast.Int(2)))
	if got != (runtime.FloatValue{Val: 3.5}) {
		t.Fatalf("7 / 2 = %v", got)
	}
}

func TestEvalNotCallable(t *testing.T) {
	i := New()
	i.GlobalEnvironment().Define("n", runtime.IntegerValue{Val: 3})
	_, err := i.Eval(ast.CallTo("n", ast.Int(1)), i.GlobalEnvironment())
	var notCallable runtime.NotCallableError
	if !errors.As(err, &notCallable) {
		t.Fatalf("expected not-callable error, got %v", err)
	}
}

func TestClosureLexicalScope(t *testing.T) {
	i := New()
	// make <- function(n) function(x) x + n; add2 <- make(2)
	inner := ast.Lambda(ast.Formals(ast.P("x")), ast.CallTo("+", ast.Sym("x"), ast.Sym("n")))
	make_ := ast.Lambda(ast.Formals(ast.P("n")), inner)
	evalAt(t, i, ast.Assign(ast.Sym("make"), make_))
	evalAt(t, i, ast.Assign(ast.Sym("add2"), ast.CallTo("make", ast.Int(2))))
	// A global n must not shadow the captured one.
	i.GlobalEnvironment().Define("n", runtime.IntegerValue{Val: 100})
	got := evalAt(t, i, ast.CallTo("add2", ast.Int(5)))
	if got != (runtime.IntegerValue{Val: 7}) {
		t.Fatalf("add2(5) = %v, want 7", got)
	}
}

func TestLazyArgumentNotEvaluated(t *testing.T) {
	i := New()
	// f <- function(a, b) a; the second argument never forces, so the
	// unbound symbol inside it never surfaces.
	f := ast.Lambda(ast.Formals(ast.P("a"), ast.P("b")), ast.Sym("a"))
	evalAt(t, i, ast.Assign(ast.Sym("f"), f))
	got := evalAt(t, i, ast.CallTo("f", ast.Int(1), ast.Sym("does.not.exist")))
	if got != (runtime.IntegerValue{Val: 1}) {
		t.Fatalf("f(1, bad) = %v", got)
	}
}

func TestPromiseForcedOncePerCall(t *testing.T) {
	i := New()
	// f <- function(a) a + a forces its promise twice but evaluates once;
	// observable through a side effect on the global environment.
	i.defineBuiltin("bump", ast.Formals(), func(ctx *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
		prev, err := ctx.Env.Lookup("counter")
		if err != nil {
			return nil, err
		}
		next := runtime.IntegerValue{Val: prev.(runtime.IntegerValue).Val + 1}
		i.GlobalEnvironment().Define("counter", next)
		return next, nil
	})
	i.GlobalEnvironment().Define("counter", runtime.IntegerValue{Val: 0})
	f := ast.Lambda(ast.Formals(ast.P("a")), ast.CallTo("+", ast.Sym("a"), ast.Sym("a")))
	evalAt(t, i, ast.Assign(ast.Sym("f"), f))
	got := evalAt(t, i, ast.CallTo("f", ast.CallTo("bump")))
	if got != (runtime.IntegerValue{Val: 2}) {
		t.Fatalf("f(bump()) = %v, want 2", got)
	}
	counter := evalAt(t, i, ast.Sym("counter"))
	if counter != (runtime.IntegerValue{Val: 1}) {
		t.Fatalf("bump ran %v times, want once", counter)
	}
}

func TestDefaultSeesOtherFormal(t *testing.T) {
	i := New()
	// f <- function(a, b = a + 1) b
	f := ast.Lambda(
		ast.Formals(ast.P("a"), ast.PD("b", ast.CallTo("+", ast.Sym("a"), ast.Int(1)))),
		ast.Sym("b"),
	)
	evalAt(t, i, ast.Assign(ast.Sym("f"), f))
	got := evalAt(t, i, ast.CallTo("f", ast.Int(4)))
	if got != (runtime.IntegerValue{Val: 5}) {
		t.Fatalf("f(4) = %v, want 5", got)
	}
}

func TestRecursiveDefaultDetected(t *testing.T) {
	i := New()
	// f <- function(a = a) a; forcing the default loops back into itself.
	f := ast.Lambda(ast.Formals(ast.PD("a", ast.Sym("a"))), ast.Sym("a"))
	evalAt(t, i, ast.Assign(ast.Sym("f"), f))
	_, err := i.Eval(ast.CallTo("f"), i.GlobalEnvironment())
	var recursive runtime.RecursiveDefaultEvaluationError
	if !errors.As(err, &recursive) {
		t.Fatalf("expected recursive default error, got %v", err)
	}
}

func TestMissingArgumentAccess(t *testing.T) {
	i := New()
	f := ast.Lambda(ast.Formals(ast.P("a")), ast.Sym("a"))
	evalAt(t, i, ast.Assign(ast.Sym("f"), f))
	_, err := i.Eval(ast.CallTo("f"), i.GlobalEnvironment())
	var missing runtime.MissingValueAccessError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing-value error, got %v", err)
	}
	if missing.Name != "a" {
		t.Fatalf("wrong formal in error: %q", missing.Name)
	}
}

func TestMissingPredicate(t *testing.T) {
	i := New()
	// f <- function(a, b) if (missing(b)) "absent" else "present"
	f := ast.Lambda(
		ast.Formals(ast.P("a"), ast.P("b")),
		ast.CallTo("if", ast.CallTo("missing", ast.Sym("b")), ast.Str("absent"), ast.Str("present")),
	)
	evalAt(t, i, ast.Assign(ast.Sym("f"), f))
	if got := evalAt(t, i, ast.CallTo("f", ast.Int(1))); got != (runtime.StringValue{Val: "absent"}) {
		t.Fatalf("f(1) = %v", got)
	}
	if got := evalAt(t, i, ast.CallTo("f", ast.Int(1), ast.Int(2))); got != (runtime.StringValue{Val: "present"}) {
		t.Fatalf("f(1, 2) = %v", got)
	}
}

func TestSpecialFormReceivesUnevaluatedArgs(t *testing.T) {
	i := New()
	// quote(does.not.exist + 1) must not touch the environment.
	got := evalAt(t, i, ast.CallTo("quote", ast.CallTo("+", ast.Sym("does.not.exist"), ast.Int(1))))
	nv, ok := got.(runtime.NodeValue)
	if !ok {
		t.Fatalf("quote returned %T", got)
	}
	want := ast.CallTo("+", ast.Sym("does.not.exist"), ast.Int(1))
	if !ast.Equal(nv.Node, want) {
		t.Fatalf("quote returned %s, want %s", nv.Node, want)
	}
}

func TestBlockReturnsLastValue(t *testing.T) {
	i := New()
	got := evalAt(t, i, ast.Block(
		ast.Assign(ast.Sym("a"), ast.Int(1)),
		ast.CallTo("+", ast.Sym("a"), ast.Int(2)),
	))
	if got != (runtime.IntegerValue{Val: 3}) {
		t.Fatalf("block = %v", got)
	}
	if empty := evalAt(t, i, ast.Block()); empty != (runtime.NilValue{}) {
		t.Fatalf("empty block = %v", empty)
	}
}

func TestVariadicCollectsAndForwards(t *testing.T) {
	i := New()
	// f <- function(...) list(...); re-passing the collector forwards the
	// collected arguments in order.
	f := ast.Lambda(ast.Formals(ast.Variadic()), ast.CallTo("list", ast.Sym(ast.VariadicName)))
	evalAt(t, i, ast.Assign(ast.Sym("f"), f))
	got := evalAt(t, i, ast.CallTo("f", ast.Int(1), ast.Int(2), ast.Int(3)))
	list, ok := got.(*runtime.ListValue)
	if !ok {
		t.Fatalf("f(1,2,3) returned %T", got)
	}
	if len(list.Elements) != 3 || list.Elements[2] != (runtime.IntegerValue{Val: 3}) {
		t.Fatalf("collected %v", list.Elements)
	}
}

func TestRecursionLimit(t *testing.T) {
	i := New(WithRecursionLimit(50))
	// loop <- function() loop()
	loop := ast.Lambda(ast.Formals(), ast.CallTo("loop"))
	evalAt(t, i, ast.Assign(ast.Sym("loop"), loop))
	_, err := i.Eval(ast.CallTo("loop"), i.GlobalEnvironment())
	var limit runtime.RecursionLimitExceededError
	if !errors.As(err, &limit) {
		t.Fatalf("expected recursion limit error, got %v", err)
	}
	if limit.Limit != 50 {
		t.Fatalf("wrong limit in error: %d", limit.Limit)
	}
}

func TestNodeBudget(t *testing.T) {
	i := New(WithNodeBudget(5))
	wide := ast.CallTo("+",
		ast.CallTo("+", ast.Int(1), ast.Int(2)),
		ast.CallTo("+", ast.Int(3), ast.Int(4)),
	)
	_, err := i.Eval(wide, i.GlobalEnvironment())
	var budget runtime.BudgetExceededError
	if !errors.As(err, &budget) {
		t.Fatalf("expected budget error, got %v", err)
	}
	// The budget resets per operation: a small expression still evaluates.
	if got := evalAt(t, i, ast.Int(1)); got != (runtime.IntegerValue{Val: 1}) {
		t.Fatalf("post-budget eval = %v", got)
	}
}

func TestNodeBudgetCoversMetaOperations(t *testing.T) {
	// The budget is charged per top-level operation. Running substitute or
	// bquote inside an evaluation must not restart the count.
	for _, form := range []string{"substitute", "bquote"} {
		i := New(WithNodeBudget(8))
		stmts := make([]ast.Node, 50)
		for idx := range stmts {
			stmts[idx] = ast.CallTo(form, ast.Sym("x"))
		}
		_, err := i.Eval(ast.Block(stmts...), i.GlobalEnvironment())
		var budget runtime.BudgetExceededError
		if !errors.As(err, &budget) {
			t.Fatalf("%s block: expected budget error, got %v", form, err)
		}
	}
}

func TestHostRegisteredCallableInvocable(t *testing.T) {
	i := New()
	i.Registry().Register(&runtime.BuiltinValue{
		Name:    "twice",
		Formals: ast.Formals(ast.P("x")),
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return runtime.IntegerValue{Val: args[0].(runtime.IntegerValue).Val * 2}, nil
		},
	})
	got := evalAt(t, i, ast.CallTo("twice", ast.Int(21)))
	if got != (runtime.IntegerValue{Val: 42}) {
		t.Fatalf("twice(21) = %v, want 42", got)
	}
	// An environment binding for the same name shadows the registration.
	i.GlobalEnvironment().Define("twice", runtime.IntegerValue{Val: 0})
	_, err := i.Eval(ast.CallTo("twice", ast.Int(21)), i.GlobalEnvironment())
	var notCallable runtime.NotCallableError
	if !errors.As(err, &notCallable) {
		t.Fatalf("expected not-callable error, got %v", err)
	}
}

func TestEvaluateProgram(t *testing.T) {
	i := New()
	program := []ast.Node{
		ast.Assign(ast.Sym("x"), ast.Int(10)),
		ast.Assign(ast.Sym("y"), ast.CallTo("+", ast.Sym("x"), ast.Int(1))),
		ast.Sym("y"),
	}
	got, err := i.EvaluateProgram(program)
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	if got != (runtime.IntegerValue{Val: 11}) {
		t.Fatalf("program = %v", got)
	}
}

func TestRegistryResolve(t *testing.T) {
	i := New()
	c, err := i.Resolve("quote")
	if err != nil {
		t.Fatalf("resolve quote: %v", err)
	}
	if !c.IsSpecialForm() {
		t.Fatalf("quote should be a special form")
	}
	if _, err := i.Resolve("no-such-callable"); err == nil {
		t.Fatalf("expected resolve failure")
	}
}
