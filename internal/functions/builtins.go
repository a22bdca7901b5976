package functions

import (
	"strings"

	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/node"
)

// Builtins is the representative function catalog spec §6 calls out.
// Most entries fall back to operating on the implicit current-context
// node when called with no arguments (the common path-step shape,
// e.g. `orders.upper()`), and otherwise evaluate their first argument.
// The exceptions: join returns an IllegalArgument error when called
// without arguments, contains and default return one when given fewer
// than two, coalesce with no arguments returns None, and index ignores
// its arguments.
var Builtins = map[string]Func{
	"length":   fnLength,
	"upper":    fnUpper,
	"lower":    fnLower,
	"trim":     fnTrim,
	"concat":   fnConcat,
	"join":     fnJoin,
	"split":    fnSplit,
	"substr":   fnSubstr,
	"contains": fnContains,
	"keys":     fnKeys,
	"first":    fnFirst,
	"last":     fnLast,
	"reverse":  fnReverse,
	"default":  fnDefault,
	"coalesce": fnCoalesce,
	"index":    fnIndex,
}

// subject resolves the value a single-argument-or-current-sensitive
// function should act on: args[0] if given, else the implicit current
// node.
func subject(current node.Node, args []string, eval Evaluator) (node.Maybe, error) {
	if len(args) == 0 {
		return node.Some(current), nil
	}
	return eval(args[0])
}

func fnLength(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	switch v := m.Value.(type) {
	case string:
		return node.Some(node.NewInt(len(v))), nil
	case []node.Node:
		return node.Some(node.NewInt(len(v))), nil
	case *node.Object:
		return node.Some(node.NewInt(v.Len())), nil
	default:
		return node.None(), nil
	}
}

func fnUpper(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	return node.Some(strings.ToUpper(node.Text(m.Value))), nil
}

func fnLower(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	return node.Some(strings.ToLower(node.Text(m.Value))), nil
}

func fnTrim(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	return node.Some(strings.TrimSpace(node.Text(m.Value))), nil
}

func fnConcat(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	if len(args) == 0 {
		return node.Some(node.Text(current)), nil
	}
	var b strings.Builder
	for _, a := range args {
		m, err := eval(a)
		if err != nil {
			return node.Maybe{}, err
		}
		if m.Present {
			b.WriteString(node.Text(m.Value))
		}
	}
	return node.Some(b.String()), nil
}

func fnJoin(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	if len(args) == 0 {
		return node.None(), jtqerrors.IllegalArgument("join: requires at least an array argument")
	}
	m, err := eval(args[0])
	if err != nil || !m.Present {
		return node.None(), err
	}
	arr, ok := m.Value.([]node.Node)
	if !ok {
		return node.None(), nil
	}
	sep := ","
	if len(args) > 1 {
		sm, err := eval(args[1])
		if err != nil {
			return node.Maybe{}, err
		}
		if sm.Present {
			sep = node.Text(sm.Value)
		}
	}
	parts := make([]string, len(arr))
	for i, e := range arr {
		parts[i] = node.Text(e)
	}
	return node.Some(strings.Join(parts, sep)), nil
}

func fnSplit(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	sep := ","
	if len(args) > 1 {
		sm, err := eval(args[1])
		if err != nil {
			return node.Maybe{}, err
		}
		if sm.Present {
			sep = node.Text(sm.Value)
		}
	}
	parts := strings.Split(node.Text(m.Value), sep)
	out := make([]node.Node, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return node.Some(node.Node(out)), nil
}

func fnSubstr(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	if len(args) == 0 {
		return node.Some(node.Text(current)), nil
	}
	m, err := eval(args[0])
	if err != nil || !m.Present {
		return node.None(), err
	}
	text := node.Text(m.Value)
	start := 0
	if len(args) > 1 {
		sm, err := eval(args[1])
		if err != nil {
			return node.Maybe{}, err
		}
		if f, ok := node.ToFloat64(sm.Value); ok {
			start = int(f)
		}
	}
	if start < 0 {
		start += len(text)
	}
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		start = len(text)
	}
	end := len(text)
	if len(args) > 2 {
		lm, err := eval(args[2])
		if err != nil {
			return node.Maybe{}, err
		}
		if f, ok := node.ToFloat64(lm.Value); ok {
			end = start + int(f)
		}
	}
	if end > len(text) {
		end = len(text)
	}
	if end < start {
		end = start
	}
	return node.Some(text[start:end]), nil
}

func fnContains(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	if len(args) < 2 {
		return node.None(), jtqerrors.IllegalArgument("contains: requires a haystack and needle argument")
	}
	hm, err := eval(args[0])
	if err != nil || !hm.Present {
		return node.Some(false), err
	}
	nm, err := eval(args[1])
	if err != nil || !nm.Present {
		return node.Some(false), err
	}
	switch hv := hm.Value.(type) {
	case string:
		return node.Some(strings.Contains(hv, node.Text(nm.Value))), nil
	case []node.Node:
		for _, e := range hv {
			if node.Equal(e, nm.Value) {
				return node.Some(true), nil
			}
		}
		return node.Some(false), nil
	default:
		return node.Some(false), nil
	}
}

func fnKeys(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	obj, ok := m.Value.(*node.Object)
	if !ok {
		return node.None(), nil
	}
	out := make([]node.Node, 0, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return node.Some(node.Node(out)), nil
}

func fnFirst(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	arr, ok := m.Value.([]node.Node)
	if !ok || len(arr) == 0 {
		return node.None(), nil
	}
	return node.Some(arr[0]), nil
}

func fnLast(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	arr, ok := m.Value.([]node.Node)
	if !ok || len(arr) == 0 {
		return node.None(), nil
	}
	return node.Some(arr[len(arr)-1]), nil
}

func fnReverse(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	m, err := subject(current, args, eval)
	if err != nil || !m.Present {
		return node.None(), err
	}
	switch v := m.Value.(type) {
	case []node.Node:
		out := make([]node.Node, len(v))
		for i, e := range v {
			out[len(v)-1-i] = e
		}
		return node.Some(node.Node(out)), nil
	case string:
		r := []rune(v)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return node.Some(string(r)), nil
	default:
		return node.None(), nil
	}
}

// fnDefault returns its first-argument value, or the second argument
// if the first is absent, a JSON null, or an empty string.
func fnDefault(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	if len(args) < 2 {
		return node.None(), jtqerrors.IllegalArgument("default: requires a value and a fallback argument")
	}
	m, err := eval(args[0])
	if err != nil {
		return node.Maybe{}, err
	}
	if m.Present && m.Value != nil && m.Value != "" {
		return m, nil
	}
	return eval(args[1])
}

// fnCoalesce returns the first present, non-null argument value.
func fnCoalesce(current node.Node, _ int, args []string, eval Evaluator) (node.Maybe, error) {
	for _, a := range args {
		m, err := eval(a)
		if err != nil {
			return node.Maybe{}, err
		}
		if m.Present && m.Value != nil {
			return m, nil
		}
	}
	return node.None(), nil
}

// fnIndex exposes the implicit filter index as a value, e.g.
// `items[index() > 0]` inside a predicate; with no predicate context
// index is -1 and this returns None.
func fnIndex(current node.Node, index int, args []string, eval Evaluator) (node.Maybe, error) {
	if index < 0 {
		return node.None(), nil
	}
	return node.Some(node.NewInt(index)), nil
}
