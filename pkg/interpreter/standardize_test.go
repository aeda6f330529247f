package interpreter

import (
	"errors"
	"testing"

	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

func mustStandardize(t *testing.T, call *ast.Call, formals *ast.ParameterList) *ast.Call {
	t.Helper()
	i := New()
	got, err := i.Standardize(call, formals)
	if err != nil {
		t.Fatalf("standardize %s: %v", call, err)
	}
	return got
}

func TestStandardizeCanonicalizesOrderings(t *testing.T) {
	formals := ast.Formals(ast.P("x"), ast.P("y"), ast.PD("z", ast.Int(0)))
	want := ast.CallArgs(ast.Sym("f"),
		ast.Named("x", ast.Int(1)),
		ast.Named("y", ast.Int(2)),
		ast.Named("z", ast.Int(3)),
	)
	// Three spellings of the same call collapse to one canonical form.
	calls := []*ast.Call{
		ast.CallTo("f", ast.Int(1), ast.Int(2), ast.Int(3)),
		ast.CallArgs(ast.Sym("f"), ast.Named("z", ast.Int(3)), ast.Pos(ast.Int(1)), ast.Pos(ast.Int(2))),
		ast.CallArgs(ast.Sym("f"), ast.Named("y", ast.Int(2)), ast.Named("x", ast.Int(1)), ast.Pos(ast.Int(3))),
	}
	for _, call := range calls {
		got := mustStandardize(t, call, formals)
		if !ast.Equal(got, want) {
			t.Fatalf("standardize %s = %s, want %s", call, got, want)
		}
	}
}

func TestStandardizePrefixMatch(t *testing.T) {
	formals := ast.Formals(ast.P("verbose"), ast.P("value"))
	call := ast.CallArgs(ast.Sym("f"), ast.Named("verb", ast.Bool(true)), ast.Pos(ast.Int(1)))
	got := mustStandardize(t, call, formals)
	want := ast.CallArgs(ast.Sym("f"),
		ast.Named("verbose", ast.Bool(true)),
		ast.Named("value", ast.Int(1)),
	)
	if !ast.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestStandardizeAmbiguousPrefix(t *testing.T) {
	i := New()
	formals := ast.Formals(ast.P("value"), ast.P("valve"))
	call := ast.CallArgs(ast.Sym("f"), ast.Named("val", ast.Int(1)))
	_, err := i.Standardize(call, formals)
	var ambiguous runtime.AmbiguousArgumentMatchError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if len(ambiguous.Formals) != 2 {
		t.Fatalf("ambiguity candidates: %v", ambiguous.Formals)
	}
}

func TestStandardizeDuplicateExactName(t *testing.T) {
	i := New()
	formals := ast.Formals(ast.P("x"))
	call := ast.CallArgs(ast.Sym("f"), ast.Named("x", ast.Int(1)), ast.Named("x", ast.Int(2)))
	_, err := i.Standardize(call, formals)
	var ambiguous runtime.AmbiguousArgumentMatchError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
}

func TestStandardizeUnusedNamedArgument(t *testing.T) {
	i := New()
	formals := ast.Formals(ast.P("x"))
	call := ast.CallArgs(ast.Sym("f"), ast.Named("q", ast.Int(1)))
	_, err := i.Standardize(call, formals)
	var arity runtime.ArityError
	if !errors.As(err, &arity) {
		t.Fatalf("expected arity error, got %v", err)
	}
}

func TestStandardizeExcessPositional(t *testing.T) {
	i := New()
	formals := ast.Formals(ast.P("x"))
	call := ast.CallTo("f", ast.Int(1), ast.Int(2))
	var arity runtime.ArityError
	if _, err := i.Standardize(call, formals); !errors.As(err, &arity) {
		t.Fatalf("expected arity error, got %v", err)
	}
}

func TestStandardizeVariadicCollection(t *testing.T) {
	formals := ast.Formals(ast.P("x"), ast.Variadic())
	call := ast.CallArgs(ast.Sym("f"),
		ast.Pos(ast.Int(1)),
		ast.Named("extra", ast.Int(2)),
		ast.Pos(ast.Int(3)),
	)
	got := mustStandardize(t, call, formals)
	want := ast.CallArgs(ast.Sym("f"),
		ast.Named("x", ast.Int(1)),
		ast.Named("extra", ast.Int(2)),
		ast.Pos(ast.Int(3)),
	)
	if !ast.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestStandardizePostVariadicExactOnly(t *testing.T) {
	formals := ast.Formals(ast.P("x"), ast.Variadic(), ast.PD("tail", ast.Null()))
	// "ta" is a prefix of "tail" but tail sits behind the variadic slot, so
	// the argument lands in the variadic collection instead.
	call := ast.CallArgs(ast.Sym("f"), ast.Pos(ast.Int(1)), ast.Named("ta", ast.Int(9)))
	got := mustStandardize(t, call, formals)
	want := ast.CallArgs(ast.Sym("f"), ast.Named("x", ast.Int(1)), ast.Named("ta", ast.Int(9)))
	if !ast.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
	// The exact name still reaches it.
	call = ast.CallArgs(ast.Sym("f"), ast.Pos(ast.Int(1)), ast.Named("tail", ast.Int(9)))
	got = mustStandardize(t, call, formals)
	want = ast.CallArgs(ast.Sym("f"), ast.Named("x", ast.Int(1)), ast.Named("tail", ast.Int(9)))
	if !ast.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestStandardizeIdempotent(t *testing.T) {
	i := New()
	formals := ast.Formals(ast.P("x"), ast.P("y"), ast.Variadic())
	call := ast.CallArgs(ast.Sym("f"),
		ast.Named("y", ast.Int(2)),
		ast.Pos(ast.Int(1)),
		ast.Pos(ast.Str("rest")),
	)
	once, err := i.Standardize(call, formals)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	twice, err := i.Standardize(once, formals)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !ast.Equal(once, twice) {
		t.Fatalf("not idempotent: %s vs %s", once, twice)
	}
}

func TestStandardizeAssignmentCall(t *testing.T) {
	// Operators are calls like any other; `<-` standardizes against its
	// lhs/rhs formals.
	formals := ast.Formals(ast.P("lhs"), ast.P("rhs"))
	call := ast.Assign(ast.Sym("a"), ast.Int(1))
	got := mustStandardize(t, call, formals)
	want := ast.CallArgs(ast.Sym("<-"),
		ast.Named("lhs", ast.Sym("a")),
		ast.Named("rhs", ast.Int(1)),
	)
	if !ast.Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}
