// Package functions holds the query language's callable catalog (spec
// §6). Each function receives the implicit current-context node (nil
// outside a path/filter step), the implicit filter index (-1 outside a
// filter predicate), its raw comma-split argument texts, and an
// Evaluator callback for turning an argument text into a resolved
// value — functions never need to know how to parse or evaluate the
// statement grammar themselves, which keeps this package free of any
// dependency on internal/evalengine (that dependency runs the other
// way: evalengine calls into functions.Registry).
package functions

import (
	"strings"

	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/lang"
	"github.com/mibar/jtq/internal/node"
)

// Evaluator evaluates a raw statement/operand text against whatever
// registry and context the caller is currently working with.
type Evaluator func(expr string) (node.Maybe, error)

// Func is one callable entry. current is the node the call is being
// made against (path/filter-step position) or nil (top-level Operand
// function call, spec §4.1). index is the 0-based filter index when
// inside a `[...]` predicate, or -1 otherwise.
type Func func(current node.Node, index int, args []string, eval Evaluator) (node.Maybe, error)

// Registry is a name -> Func catalog. The zero value is unusable; use
// NewRegistry.
type Registry struct {
	fns map[string]Func
}

// NewRegistry returns a registry pre-populated with the builtin
// catalog (Builtins).
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]Func, len(Builtins))}
	for name, fn := range Builtins {
		r.fns[name] = fn
	}
	return r
}

// Register adds or overrides a named function — the extension point
// called out in spec §6/§9 for callers embedding the engine.
func (r *Registry) Register(name string, fn Func) {
	r.fns[name] = fn
}

func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// Call splits rawArgs on top-level commas and dispatches to name.
func (r *Registry) Call(name string, current node.Node, index int, rawArgs string, eval Evaluator) (node.Maybe, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return node.Maybe{}, jtqerrors.IllegalArgument("unknown function %q", name)
	}
	var args []string
	if strings.TrimSpace(rawArgs) != "" {
		for _, a := range lang.SplitTopLevel(rawArgs, ',') {
			args = append(args, strings.TrimSpace(a))
		}
	}
	return fn(current, index, args, eval)
}
