// Package scope defines the evaluation context threaded through
// internal/pathnav and internal/evalengine: the dataset registry plus
// the two implicit bindings a filter predicate or path-step function
// call sees (spec §4.2: "evaluate predicate with that element as the
// implicit context and its 0-based index as an implicit variable").
//
// It is a separate package, rather than living in evalengine or
// pathnav, because those two packages call into each other (evaluating
// an Operand's Path requires navigation; navigating a filter's
// predicate requires evaluation) and would otherwise form an import
// cycle over the context type itself.
package scope

import (
	"github.com/mibar/jtq/internal/lang"
	"github.com/mibar/jtq/internal/node"
)

// Scope is the context an expression or path navigation runs in.
type Scope struct {
	Registry *node.Registry
	Current  node.Maybe // bound to the reserved "@" operand
	Index    int        // bound to the reserved "#" operand; -1 outside a filter
}

// Root returns the top-level scope for evaluating a statement directly
// against the registry, with no implicit current element.
func Root(reg *node.Registry) Scope {
	return Scope{Registry: reg, Current: node.None(), Index: -1}
}

// WithElement returns a child scope for evaluating a filter predicate
// against one array element, as produced by a `[filter]mode` step.
func (s Scope) WithElement(elem node.Node, index int) Scope {
	return Scope{Registry: s.Registry, Current: node.Some(elem), Index: index}
}

// Evaluator evaluates a parsed Statement against a scope. Declared here
// (rather than in evalengine) so pathnav can accept it as a parameter
// without importing evalengine, which itself must import pathnav to
// resolve an Operand's dataset path — the two packages call into each
// other and would otherwise cycle on this single function type.
type Evaluator func(Scope, *lang.Statement) (node.Maybe, error)
