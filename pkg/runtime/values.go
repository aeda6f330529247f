package runtime

import (
	"fmt"
	"strings"

	"quoth/engine-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindNode
	KindList
	KindClosure
	KindBuiltin
	KindSpecialForm
	KindArgList
	KindPromise
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindNode:
		return "node"
	case KindList:
		return "list"
	case KindClosure:
		return "closure"
	case KindBuiltin:
		return "builtin"
	case KindSpecialForm:
		return "special_form"
	case KindArgList:
		return "arg_list"
	case KindPromise:
		return "promise"
	case KindMissing:
		return "missing"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
	String() string
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind     { return KindNil }
func (NilValue) String() string { return "NULL" }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }
func (v BoolValue) String() string {
	if v.Val {
		return "TRUE"
	}
	return "FALSE"
}

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind     { return KindInteger }
func (v IntegerValue) String() string { return fmt.Sprintf("%d", v.Val) }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind     { return KindFloat }
func (v FloatValue) String() string { return fmt.Sprintf("%g", v.Val) }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind     { return KindString }
func (v StringValue) String() string { return fmt.Sprintf("%q", v.Val) }

//-----------------------------------------------------------------------------
// Code as data
//-----------------------------------------------------------------------------

// NodeValue wraps an unevaluated expression tree as a first-class value.
// Quote, substitute and quasiquotation all hand their results back this way.
type NodeValue struct {
	Node ast.Node
}

func (v NodeValue) Kind() Kind     { return KindNode }
func (v NodeValue) String() string { return v.Node.String() }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }
func (v *ListValue) String() string {
	parts := make([]string, 0, len(v.Elements))
	for _, el := range v.Elements {
		parts = append(parts, el.String())
	}
	return "list(" + strings.Join(parts, ", ") + ")"
}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// Callable is the behaviour the evaluator needs from anything in head
// position: formal parameters for standardization, and whether arguments
// arrive unevaluated.
type Callable interface {
	Value
	CallableName() string
	FormalParameters() *ast.ParameterList
	IsSpecialForm() bool
}

// ClosureValue pairs formals and a body with the defining environment.
type ClosureValue struct {
	Name    string // binding name, if known; informational only
	Formals *ast.ParameterList
	Body    ast.Node
	Env     *Environment
}

func (v *ClosureValue) Kind() Kind { return KindClosure }
func (v *ClosureValue) String() string {
	return "function" + v.Formals.String()
}
func (v *ClosureValue) CallableName() string {
	if v.Name != "" {
		return v.Name
	}
	return "<closure>"
}
func (v *ClosureValue) FormalParameters() *ast.ParameterList { return v.Formals }
func (v *ClosureValue) IsSpecialForm() bool                  { return false }

// NativeCallContext carries the calling environment into host builtins.
type NativeCallContext struct {
	Env *Environment
}

// NativeFunc is the implementation of an ordinary (strict) builtin.
type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// BuiltinValue is a host-provided strict callable. Arguments are
// standardized against Formals and evaluated before Impl runs.
type BuiltinValue struct {
	Name    string
	Formals *ast.ParameterList
	Impl    NativeFunc
}

func (v *BuiltinValue) Kind() Kind                            { return KindBuiltin }
func (v *BuiltinValue) String() string                        { return "builtin '" + v.Name + "'" }
func (v *BuiltinValue) CallableName() string                  { return v.Name }
func (v *BuiltinValue) FormalParameters() *ast.ParameterList  { return v.Formals }
func (v *BuiltinValue) IsSpecialForm() bool                   { return false }

// SpecialFunc receives the calling environment and the whole call node with
// its arguments unevaluated, and decides internally what to evaluate.
type SpecialFunc func(env *Environment, call *ast.Call) (Value, error)

// SpecialFormValue is the analog of quote, substitute, bquote, conditional
// and function-literal construction: a callable that controls evaluation of
// its own arguments.
type SpecialFormValue struct {
	Name    string
	Formals *ast.ParameterList // may be nil for forms with no fixed formals
	Impl    SpecialFunc
}

func (v *SpecialFormValue) Kind() Kind                           { return KindSpecialForm }
func (v *SpecialFormValue) String() string                       { return "special form '" + v.Name + "'" }
func (v *SpecialFormValue) CallableName() string                 { return v.Name }
func (v *SpecialFormValue) FormalParameters() *ast.ParameterList { return v.Formals }
func (v *SpecialFormValue) IsSpecialForm() bool                  { return true }

//-----------------------------------------------------------------------------
// Call-frame internals
//-----------------------------------------------------------------------------

// PromisedArg is one collected variadic argument: the caller-side name (may
// be empty) and the promise holding its unevaluated expression.
type PromisedArg struct {
	Name    string
	Promise *Promise
}

// ArgListValue is the variadic collector bound to "..." inside a call
// frame. Substitution splices its entries back into call position.
type ArgListValue struct {
	Entries []PromisedArg
}

func (v *ArgListValue) Kind() Kind { return KindArgList }
func (v *ArgListValue) String() string {
	return fmt.Sprintf("<...[%d]>", len(v.Entries))
}

// MissingValue is the binding placed in a frame for a formal that received
// neither an argument nor a default. Reading it through evaluation raises
// MissingValueAccessError; it cannot be copied into an ordinary binding.
type MissingValue struct{}

func (MissingValue) Kind() Kind     { return KindMissing }
func (MissingValue) String() string { return "<missing>" }

// Truthy reports the condition semantics used by the conditional form.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case NilValue:
		return false
	case BoolValue:
		return val.Val
	case IntegerValue:
		return val.Val != 0
	case FloatValue:
		return val.Val != 0
	case StringValue:
		return val.Val != ""
	default:
		return true
	}
}
