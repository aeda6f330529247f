package ast

import (
	"fmt"
	"strings"
)

// Kind identifies the node category. The model is closed: exactly four kinds
// exist, and every consumer dispatches exhaustively over them. Code that
// would need a fifth case must fail instead of guessing.
type Kind int

const (
	KindConstant Kind = iota
	KindSymbol
	KindCall
	KindParameterList
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindSymbol:
		return "symbol"
	case KindCall:
		return "call"
	case KindParameterList:
		return "parameter_list"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Node is the shared behaviour of all expression nodes. Trees are persistent
// values: once constructed they are never mutated, and every edit operation
// returns a new tree.
type Node interface {
	Kind() Kind
	String() string
	isNode()
}

// VariadicName is the reserved formal-parameter name that collects any
// number of extra arguments.
const VariadicName = "..."

// UnquoteName is the reserved call head that marks a sub-expression for
// evaluation inside a quasiquoted tree.
const UnquoteName = "."

//-----------------------------------------------------------------------------
// Constant
//-----------------------------------------------------------------------------

// Constant is an atomic literal. Val is nil, bool, int64, float64 or string
// for parsed literals; quasiquotation may inject opaque host payloads, which
// compare by interface equality.
type Constant struct {
	Val any
}

func NewConstant(val any) *Constant {
	return &Constant{Val: val}
}

func (*Constant) Kind() Kind { return KindConstant }
func (*Constant) isNode()    {}

func (c *Constant) String() string {
	switch v := c.Val.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

//-----------------------------------------------------------------------------
// Symbol
//-----------------------------------------------------------------------------

// Symbol is a bare identifier, distinct from whatever value it may be bound
// to. Equality is name equality.
type Symbol struct {
	Name string
}

func NewSymbol(name string) *Symbol {
	return &Symbol{Name: name}
}

func (*Symbol) Kind() Kind { return KindSymbol }
func (*Symbol) isNode()    {}

func (s *Symbol) String() string {
	if s.Name == "" {
		return "<missing>"
	}
	return s.Name
}

// Missing is the reserved singleton denoting an absent default value in a
// parameter list. It can be classified and inspected, but the evaluator
// refuses to read it as an ordinary value.
var Missing = &Symbol{Name: ""}

// IsMissing reports whether the node is the missing-value marker.
func IsMissing(n Node) bool {
	s, ok := n.(*Symbol)
	return ok && s.Name == ""
}

//-----------------------------------------------------------------------------
// Call
//-----------------------------------------------------------------------------

// Arg is one argument slot of a Call: an optionally named child node.
type Arg struct {
	Name  string
	Value Node
}

// Call applies a callee to ordered, optionally named arguments. The callee
// occupies child index 0 and is itself a Symbol or a nested Call.
type Call struct {
	Head Node
	Args []Arg
}

func NewCall(head Node, args ...Arg) *Call {
	return &Call{Head: head, Args: args}
}

func (*Call) Kind() Kind { return KindCall }
func (*Call) isNode()    {}

// Len counts children including the callee, so it is always >= 1.
func (c *Call) Len() int { return len(c.Args) + 1 }

// Child returns the node at index i, where index 0 is the callee.
func (c *Call) Child(i int) Node {
	if i == 0 {
		return c.Head
	}
	return c.Args[i-1].Value
}

// ChildName returns the argument name at index i; the callee and unnamed
// arguments yield "".
func (c *Call) ChildName(i int) string {
	if i == 0 {
		return ""
	}
	return c.Args[i-1].Name
}

// WithChild returns a copy of the call with child i replaced. The receiver
// is left untouched.
func (c *Call) WithChild(i int, n Node) *Call {
	if i == 0 {
		return &Call{Head: n, Args: c.Args}
	}
	args := make([]Arg, len(c.Args))
	copy(args, c.Args)
	args[i-1].Value = n
	return &Call{Head: c.Head, Args: args}
}

// WithoutChild returns a copy of the call with argument child i removed,
// shifting subsequent children down. The callee cannot be removed: a call
// always keeps at least its head.
func (c *Call) WithoutChild(i int) (*Call, error) {
	if i == 0 {
		return nil, fmt.Errorf("cannot remove the callee of a call")
	}
	args := make([]Arg, 0, len(c.Args)-1)
	args = append(args, c.Args[:i-1]...)
	args = append(args, c.Args[i:]...)
	return &Call{Head: c.Head, Args: args}, nil
}

// WithArg returns a copy of the call with one more argument appended.
func (c *Call) WithArg(arg Arg) *Call {
	args := make([]Arg, 0, len(c.Args)+1)
	args = append(args, c.Args...)
	args = append(args, arg)
	return &Call{Head: c.Head, Args: args}
}

// ArgByName returns the first argument carrying the given name.
func (c *Call) ArgByName(name string) (Arg, bool) {
	for _, arg := range c.Args {
		if arg.Name == name {
			return arg, true
		}
	}
	return Arg{}, false
}

func (c *Call) String() string {
	var b strings.Builder
	b.WriteString(c.Head.String())
	b.WriteByte('(')
	for i, arg := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		if arg.Name != "" {
			b.WriteString(arg.Name)
			b.WriteString(" = ")
		}
		b.WriteString(arg.Value.String())
	}
	b.WriteByte(')')
	return b.String()
}

//-----------------------------------------------------------------------------
// ParameterList
//-----------------------------------------------------------------------------

// Param is one formal parameter: a name plus a default expression, which is
// Missing when the parameter has no default.
type Param struct {
	Name    string
	Default Node
}

// ParameterList describes the formal parameters of a callable. Names are
// unique except that the reserved variadic marker may appear once.
type ParameterList struct {
	Params []Param
}

func NewParameterList(params ...Param) *ParameterList {
	return &ParameterList{Params: params}
}

func (*ParameterList) Kind() Kind { return KindParameterList }
func (*ParameterList) isNode()    {}

// Lookup returns the formal with the given name.
func (p *ParameterList) Lookup(name string) (Param, bool) {
	for _, param := range p.Params {
		if param.Name == name {
			return param, true
		}
	}
	return Param{}, false
}

// VariadicIndex returns the position of the variadic marker, or -1.
func (p *ParameterList) VariadicIndex() int {
	for i, param := range p.Params {
		if param.Name == VariadicName {
			return i
		}
	}
	return -1
}

func (p *ParameterList) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, param := range p.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.Name)
		if param.Default != nil && !IsMissing(param.Default) {
			b.WriteString(" = ")
			b.WriteString(param.Default.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

//-----------------------------------------------------------------------------
// Structural equality
//-----------------------------------------------------------------------------

// Equal is deep structural equality: order- and name-sensitive, so
// f(a=1, b=2) is not equal to f(b=2, a=1) even though standardization may
// later unify the two.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Constant:
		y := b.(*Constant)
		return x.Val == y.Val
	case *Symbol:
		y := b.(*Symbol)
		return x.Name == y.Name
	case *Call:
		y := b.(*Call)
		if !Equal(x.Head, y.Head) || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if x.Args[i].Name != y.Args[i].Name || !Equal(x.Args[i].Value, y.Args[i].Value) {
				return false
			}
		}
		return true
	case *ParameterList:
		y := b.(*ParameterList)
		if len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i].Name != y.Params[i].Name || !Equal(x.Params[i].Default, y.Params[i].Default) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
