package runtime

import (
	"fmt"
	"strings"
)

// The engine never recovers locally: every failure below surfaces to the
// direct caller as a typed error carrying enough context for a diagnostic.

// UnboundSymbolError reports a name that no frame in the chain binds.
type UnboundSymbolError struct {
	Name string
}

func (e UnboundSymbolError) Error() string {
	return fmt.Sprintf("unbound symbol '%s'", e.Name)
}

// NotCallableError reports a call whose head resolved to a non-callable.
type NotCallableError struct {
	Head string
	Kind string
}

func (e NotCallableError) Error() string {
	return fmt.Sprintf("'%s' is not callable (resolved to %s)", e.Head, e.Kind)
}

// ArityError reports arguments that cannot be matched to any formal.
type ArityError struct {
	Callee string
	Detail string
}

func (e ArityError) Error() string {
	if e.Callee == "" {
		return fmt.Sprintf("arity error: %s", e.Detail)
	}
	return fmt.Sprintf("arity error in call to '%s': %s", e.Callee, e.Detail)
}

// AmbiguousArgumentMatchError reports an argument name matching more than
// one formal, or matching the same formal twice.
type AmbiguousArgumentMatchError struct {
	Arg     string
	Formals []string
}

func (e AmbiguousArgumentMatchError) Error() string {
	return fmt.Sprintf("argument '%s' matches formals %s ambiguously", e.Arg, strings.Join(e.Formals, ", "))
}

// RecursiveDefaultEvaluationError reports a promise re-entered while it was
// already being forced.
type RecursiveDefaultEvaluationError struct {
	Expr string
}

func (e RecursiveDefaultEvaluationError) Error() string {
	return fmt.Sprintf("promise for '%s' references itself during forcing", e.Expr)
}

// MissingValueAccessError reports a read of the missing-value marker.
type MissingValueAccessError struct {
	Name string
}

func (e MissingValueAccessError) Error() string {
	if e.Name == "" {
		return "the missing-value marker cannot be evaluated"
	}
	return fmt.Sprintf("argument '%s' is missing, with no default", e.Name)
}

// UnknownNodeKindError marks the defensive branch of exhaustive node
// dispatch. It should be unreachable for trees built via the ast package.
type UnknownNodeKindError struct {
	Kind string
}

func (e UnknownNodeKindError) Error() string {
	return fmt.Sprintf("unknown node kind %s", e.Kind)
}

// RecursionLimitExceededError converts stack exhaustion into a reportable
// failure.
type RecursionLimitExceededError struct {
	Limit int
}

func (e RecursionLimitExceededError) Error() string {
	return fmt.Sprintf("evaluation nested deeper than %d frames", e.Limit)
}

// BudgetExceededError aborts a transform that visited more nodes than the
// driver allowed. No partial result is returned alongside it.
type BudgetExceededError struct {
	Budget int
}

func (e BudgetExceededError) Error() string {
	return fmt.Sprintf("operation exceeded its budget of %d nodes", e.Budget)
}
