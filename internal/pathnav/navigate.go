// Package pathnav walks a parsed lang.Path against a resolved node
// tree (spec §4.2): name steps index into objects (mapping over arrays
// element-wise), filter steps select array elements by predicate in
// one of three modes, and function steps call into internal/functions.
package pathnav

import (
	"github.com/mibar/jtq/internal/functions"
	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/lang"
	"github.com/mibar/jtq/internal/node"
	"github.com/mibar/jtq/internal/scope"
)

// Resolve looks up datasetName in sc.Registry (or the reserved "@"/"#"
// bindings) and walks path against it. fns supplies the function
// catalog for functionCall steps; evalStmt evaluates a filter's
// predicate Statement against a child scope bound to each candidate
// element.
func Resolve(sc scope.Scope, datasetName string, path *lang.Path, fns *functions.Registry, evalStmt scope.Evaluator) (node.Maybe, error) {
	base, err := resolveBase(sc, datasetName)
	if err != nil || !base.Present {
		return base, err
	}
	if path == nil {
		return base, nil
	}
	return walk(sc, base, path.Steps, fns, evalStmt)
}

func resolveBase(sc scope.Scope, name string) (node.Maybe, error) {
	switch name {
	case "@":
		return sc.Current, nil
	case "#":
		if sc.Index < 0 {
			return node.None(), nil
		}
		return node.Some(node.NewInt(sc.Index)), nil
	}
	opt, ok := sc.Registry.Get(name)
	if !ok {
		return node.Maybe{}, &jtqerrors.UnresolvedDatasetError{Name: name}
	}
	if !opt.Known {
		return node.Maybe{}, &jtqerrors.UnresolvedDatasetError{Name: name, AlreadyPoisoned: true}
	}
	return node.Some(opt.Value), nil
}

// walk applies steps in sequence to cur. A StepName maps over arrays
// element-wise (spec §4.2: "a name step applied to an array maps over
// its elements"); a filter step's Mode picks first/collect-all/divert.
// collect-all hands the whole matched Array to the remaining steps as
// one value (a trailing name step then maps over it via applyName, but
// a trailing function step sees the array just once); divert-all
// instead re-walks the remaining steps independently for each matched
// element and collects the per-element results into an Array.
func walk(sc scope.Scope, cur node.Maybe, steps []lang.PathStep, fns *functions.Registry, evalStmt scope.Evaluator) (node.Maybe, error) {
	if len(steps) == 0 || !cur.Present {
		return cur, nil
	}
	step := steps[0]
	rest := steps[1:]

	switch step.Kind {
	case lang.StepFunc:
		res, err := callFunc(sc, cur.Value, step.Func, fns, evalStmt)
		if err != nil || !res.Present {
			return res, err
		}
		return walk(sc, res, rest, fns, evalStmt)

	case lang.StepName:
		if step.Name != "" {
			next, err := applyName(cur, step.Name)
			if err != nil || !next.Present {
				return next, err
			}
			cur = next
		}
		if !step.HasFilter {
			return walk(sc, cur, rest, fns, evalStmt)
		}
		return applyFilter(sc, cur, step, rest, fns, evalStmt)
	}
	return node.None(), jtqerrors.IllegalArgument("unknown path step kind")
}

// applyName navigates one object-key (or array-of-objects) step.
func applyName(cur node.Maybe, name string) (node.Maybe, error) {
	switch v := cur.Value.(type) {
	case *node.Object:
		val, ok := v.Get(name)
		if !ok {
			return node.None(), nil
		}
		return node.Some(val), nil
	case []node.Node:
		out := make([]node.Node, 0, len(v))
		for _, elem := range v {
			obj, ok := elem.(*node.Object)
			if !ok {
				continue
			}
			val, ok := obj.Get(name)
			if !ok {
				continue
			}
			out = append(out, val)
		}
		return node.Some(node.Node(out)), nil
	default:
		return node.None(), nil
	}
}

// applyFilter evaluates a `[predicate]mode?` step against cur, which
// must be an array, then continues walking rest per the step's mode.
func applyFilter(sc scope.Scope, cur node.Maybe, step lang.PathStep, rest []lang.PathStep, fns *functions.Registry, evalStmt scope.Evaluator) (node.Maybe, error) {
	arr, ok := cur.Value.([]node.Node)
	if !ok {
		return node.None(), nil
	}

	matches, err := filterMatches(sc, arr, step, evalStmt)
	if err != nil {
		return node.Maybe{}, err
	}

	switch step.Mode {
	case lang.ModeAll:
		// spec §4.2: "collect-all: return an Array of all truthy
		// elements" — the matched Array is the value the rest of the
		// path operates on, as a single unit.
		return walk(sc, node.Some(node.Node(matches)), rest, fns, evalStmt)

	case lang.ModeDivert:
		// spec §4.2: "divert-all: ... marked so that downstream steps
		// map across it rather than treating it as a single array" —
		// unlike collect-all, each matched element re-walks rest on
		// its own, and the per-element results are what gets collected.
		out := make([]node.Node, 0, len(matches))
		for _, m := range matches {
			res, err := walk(sc, node.Some(m), rest, fns, evalStmt)
			if err != nil {
				return node.Maybe{}, err
			}
			if res.Present {
				out = append(out, res.Value)
			}
		}
		return node.Some(node.Node(out)), nil

	default: // ModeSingle
		if len(matches) == 0 {
			return node.None(), nil
		}
		return walk(sc, node.Some(matches[0]), rest, fns, evalStmt)
	}
}

func filterMatches(sc scope.Scope, arr []node.Node, step lang.PathStep, evalStmt scope.Evaluator) ([]node.Node, error) {
	if step.Index != nil {
		idx := *step.Index
		if idx < 0 {
			idx += len(arr)
		}
		if idx < 0 || idx >= len(arr) {
			return nil, nil
		}
		return arr[idx : idx+1], nil
	}

	var out []node.Node
	for i, elem := range arr {
		elemScope := sc.WithElement(elem, i)
		res, err := evalStmt(elemScope, step.Predicate)
		if err != nil {
			if _, ok := jtqerrors.IsUnresolvedDataset(err); ok {
				return nil, err
			}
			continue
		}
		if res.Truthy() {
			out = append(out, elem)
		}
	}
	return out, nil
}

func callFunc(sc scope.Scope, current node.Node, call *lang.FuncCall, fns *functions.Registry, evalStmt scope.Evaluator) (node.Maybe, error) {
	eval := func(expr string) (node.Maybe, error) {
		stmt, err := lang.ParseStatement(expr)
		if err != nil {
			return node.Maybe{}, err
		}
		return evalStmt(sc, stmt)
	}
	return fns.Call(call.Name, current, sc.Index, call.RawArgs, eval)
}
