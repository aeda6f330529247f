package interpreter

import (
	"quoth/engine-go/pkg/ast"
	"quoth/engine-go/pkg/runtime"
)

// DefaultRecursionLimit bounds evaluator nesting so that runaway recursion
// surfaces as an error instead of corrupting the host stack.
const DefaultRecursionLimit = 1000

// Interpreter drives evaluation of quoth expression trees. A single root
// environment is constructed once and has no parent; every evaluation
// threads an explicit environment from there.
type Interpreter struct {
	global   *runtime.Environment
	registry *Registry
	maxDepth int
	budget   int

	depth   int
	visited int
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithRecursionLimit overrides the evaluator nesting bound.
func WithRecursionLimit(limit int) Option {
	return func(i *Interpreter) { i.maxDepth = limit }
}

// WithNodeBudget bounds the number of nodes a single operation may visit.
// Zero means unlimited.
func WithNodeBudget(budget int) Option {
	return func(i *Interpreter) { i.budget = budget }
}

// New returns an interpreter with the built-in callables installed in a
// fresh root environment.
func New(opts ...Option) *Interpreter {
	interp := &Interpreter{
		global:   runtime.NewEnvironment(nil),
		registry: NewRegistry(),
		maxDepth: DefaultRecursionLimit,
	}
	for _, opt := range opts {
		opt(interp)
	}
	interp.installSpecialForms()
	interp.installBuiltins()
	return interp
}

// GlobalEnvironment returns the root environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Registry returns the host callable table.
func (i *Interpreter) Registry() *Registry {
	return i.registry
}

// Resolve looks a callable up in the host callable table.
func (i *Interpreter) Resolve(name string) (runtime.Callable, error) {
	return i.registry.Resolve(name)
}

// EvaluateProgram evaluates a node forest in order at the root environment
// and returns the last value.
func (i *Interpreter) EvaluateProgram(nodes []ast.Node) (runtime.Value, error) {
	var last runtime.Value = runtime.NilValue{}
	for _, node := range nodes {
		val, err := i.Eval(node, i.global)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

// Eval evaluates one node in the given environment. The node budget is
// charged per operation: it resets here only when this call starts a fresh
// top-level operation, never when re-entered from inside a running one.
func (i *Interpreter) Eval(node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	if i.depth == 0 {
		i.visited = 0
	}
	return i.eval(node, env)
}

// enter accounts for one nested evaluation frame.
func (i *Interpreter) enter() error {
	if i.depth >= i.maxDepth {
		return runtime.RecursionLimitExceededError{Limit: i.maxDepth}
	}
	i.depth++
	if err := i.charge(); err != nil {
		i.depth--
		return err
	}
	return nil
}

func (i *Interpreter) leave() {
	i.depth--
}

// charge accounts for one visited node against the operation budget.
func (i *Interpreter) charge() error {
	if i.budget <= 0 {
		return nil
	}
	i.visited++
	if i.visited > i.budget {
		return runtime.BudgetExceededError{Budget: i.budget}
	}
	return nil
}

func (i *Interpreter) defineSpecial(name string, formals *ast.ParameterList, impl runtime.SpecialFunc) {
	form := &runtime.SpecialFormValue{Name: name, Formals: formals, Impl: impl}
	i.registry.Register(form)
	i.global.Define(name, form)
}

func (i *Interpreter) defineBuiltin(name string, formals *ast.ParameterList, impl runtime.NativeFunc) {
	builtin := &runtime.BuiltinValue{Name: name, Formals: formals, Impl: impl}
	i.registry.Register(builtin)
	i.global.Define(name, builtin)
}
