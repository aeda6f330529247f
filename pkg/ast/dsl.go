package ast

// Builder shorthands used by tests and fixtures.

func Sym(name string) *Symbol {
	return NewSymbol(name)
}

func Con(val any) *Constant {
	return NewConstant(val)
}

func Int(val int64) *Constant {
	return NewConstant(val)
}

func Flt(val float64) *Constant {
	return NewConstant(val)
}

func Str(val string) *Constant {
	return NewConstant(val)
}

func Bool(val bool) *Constant {
	return NewConstant(val)
}

func Null() *Constant {
	return NewConstant(nil)
}

// CallTo builds a call to a named head with unnamed arguments.
func CallTo(head string, args ...Node) *Call {
	wrapped := make([]Arg, 0, len(args))
	for _, a := range args {
		wrapped = append(wrapped, Arg{Value: a})
	}
	return NewCall(Sym(head), wrapped...)
}

// CallArgs builds a call with explicit argument slots.
func CallArgs(head Node, args ...Arg) *Call {
	return NewCall(head, args...)
}

// Named tags an argument node with a name.
func Named(name string, value Node) Arg {
	return Arg{Name: name, Value: value}
}

// Pos is an unnamed argument slot.
func Pos(value Node) Arg {
	return Arg{Value: value}
}

// Assign builds the assignment call `lhs <- rhs`.
func Assign(lhs, rhs Node) *Call {
	return CallTo("<-", lhs, rhs)
}

// Block builds the sequencing call `{ stmts... }`.
func Block(stmts ...Node) *Call {
	return CallTo("{", stmts...)
}

// Unquote marks a sub-expression for evaluation inside a quasiquoted tree.
func Unquote(expr Node) *Call {
	return CallTo(UnquoteName, expr)
}

// P declares a formal parameter without a default.
func P(name string) Param {
	return Param{Name: name, Default: Missing}
}

// PD declares a formal parameter with a default expression.
func PD(name string, def Node) Param {
	return Param{Name: name, Default: def}
}

// Variadic declares the variadic collector slot.
func Variadic() Param {
	return Param{Name: VariadicName, Default: Missing}
}

// Formals assembles a parameter list.
func Formals(params ...Param) *ParameterList {
	return NewParameterList(params...)
}

// Lambda builds the function-literal call `function(formals, body)`.
func Lambda(formals *ParameterList, body Node) *Call {
	return CallTo("function", formals, body)
}
