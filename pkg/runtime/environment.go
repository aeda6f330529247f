package runtime

import "sort"

// Environment provides chained scope frames. Bindings are shared: every
// closure or promise holding a reference to a frame observes writes through
// any other reference. The parent link is a back-pointer only; chains are
// acyclic by construction and terminate at a single root with no parent.
type Environment struct {
	bindings  map[string]Value
	parent    *Environment
	callFrame bool
}

// NewEnvironment creates a frame, optionally nested under a parent. The
// process-wide root is simply NewEnvironment(nil), built once at startup.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		bindings: make(map[string]Value),
		parent:   parent,
	}
}

// NewCallFrame creates the frame the evaluator installs for a closure
// invocation. Substitution only rewrites symbols against such frames.
func NewCallFrame(parent *Environment) *Environment {
	env := NewEnvironment(parent)
	env.callFrame = true
	return env
}

// FromTable builds a frame from a flat table of values. The parent must be
// supplied explicitly: there is no implicit global fallback.
func FromTable(table map[string]Value, parent *Environment) *Environment {
	env := NewEnvironment(parent)
	for name, value := range table {
		env.bindings[name] = value
	}
	return env
}

// Parent exposes the enclosing frame (nil at the root).
func (e *Environment) Parent() *Environment { return e.parent }

// IsCallFrame reports whether this frame was produced for a closure call.
func (e *Environment) IsCallFrame() bool { return e.callFrame }

// Define creates or overwrites a binding in this frame only, never in an
// ancestor.
func (e *Environment) Define(name string, value Value) {
	e.bindings[name] = value
}

// Lookup walks this frame and then the parent chain, returning the first
// binding found.
func (e *Environment) Lookup(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.bindings[name]; ok {
			return v, nil
		}
	}
	return nil, UnboundSymbolError{Name: name}
}

// LookupLocal consults this frame only.
func (e *Environment) LookupLocal(name string) (Value, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// Keys returns this frame's binding names in sorted order, useful for
// deterministic tests.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies this frame's bindings.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.bindings))
	for k, v := range e.bindings {
		out[k] = v
	}
	return out
}
