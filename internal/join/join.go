// Package join implements the five dataset-query join operators (spec
// §4.3): one-to-one inner and left/right joins, and one-to-many
// left/right joins that nest every match into an array field.
package join

import (
	"strings"

	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/node"
)

// Operator is one of the five join tokens recognized in a dataset
// query (spec §4.3).
type Operator string

const (
	InnerOne  Operator = ">=<"  // keep only matching left elements, one match each
	LeftOne   Operator = "<=<"  // keep every left element, overlay the one match if any
	RightOne  Operator = ">=>"  // mirror of LeftOne, anchored on the right side
	LeftMany  Operator = "<=<<" // keep every left element, nest all matches into arrayField
	RightMany Operator = ">>=>" // mirror of LeftMany, anchored on the right side
)

// operatorTokens is ordered longest-first so scanning never matches a
// 3-byte operator as a prefix of a 4-byte one (<=<< contains <=<).
var operatorTokens = []Operator{LeftMany, RightMany, InnerOne, LeftOne, RightOne}

// Side is one operand of a join expression: a dataset name and the
// comma-separated dotted field paths (spec §4.3 step 2: "Key lists are
// comma-separated paths; sizes must match") used as its join key.
type Side struct {
	Dataset string
	Keys    []string
}

// Spec is a fully parsed dataset-query join expression, e.g.
// `arrayField:orders:customers{id} <=<< orders{customerId}`.
type Spec struct {
	ArrayField string // from an "arrayField:name:" prefix; otherwise, for -many operators, the opposite side's dataset name; "" for -one operators
	Left       Side
	Op         Operator
	Right      Side
	Raw        string
}

// Parse splits expr on its top-level join operator and the two
// `dataset{key[,key...]}` operands around it.
func Parse(expr string) (*Spec, error) {
	raw := expr
	spec := &Spec{Raw: raw}

	if strings.HasPrefix(expr, "arrayField:") {
		rest := expr[len("arrayField:"):]
		colon := strings.IndexByte(rest, ':')
		if colon < 0 {
			return nil, jtqerrors.IllegalArgument("join: malformed arrayField prefix in %q", raw)
		}
		spec.ArrayField = rest[:colon]
		expr = rest[colon+1:]
	}

	opIdx, op := findOperator(expr)
	if opIdx < 0 {
		return nil, jtqerrors.IllegalArgument("join: no join operator found in %q", raw)
	}
	spec.Op = op

	left, err := parseSide(strings.TrimSpace(expr[:opIdx]))
	if err != nil {
		return nil, err
	}
	right, err := parseSide(strings.TrimSpace(expr[opIdx+len(op):]))
	if err != nil {
		return nil, err
	}
	if len(left.Keys) != len(right.Keys) {
		return nil, jtqerrors.IllegalArgument("join: key count mismatch in %q (%d vs %d)", raw, len(left.Keys), len(right.Keys))
	}
	spec.Left, spec.Right = left, right

	if spec.ArrayField == "" && (op == LeftMany || op == RightMany) {
		if op == LeftMany {
			spec.ArrayField = right.Dataset
		} else {
			spec.ArrayField = left.Dataset
		}
	}
	return spec, nil
}

func findOperator(expr string) (int, Operator) {
	for i := 0; i < len(expr); i++ {
		for _, op := range operatorTokens {
			if strings.HasPrefix(expr[i:], string(op)) {
				return i, op
			}
		}
	}
	return -1, ""
}

func parseSide(s string) (Side, error) {
	open := strings.IndexByte(s, '{')
	if open < 0 || !strings.HasSuffix(s, "}") {
		return Side{}, jtqerrors.IllegalArgument("join: malformed operand %q, expected dataset{key}", s)
	}
	keyList := s[open+1 : len(s)-1]
	var keys []string
	for _, k := range strings.Split(keyList, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			return Side{}, jtqerrors.IllegalArgument("join: empty key in operand %q", s)
		}
		keys = append(keys, k)
	}
	return Side{Dataset: s[:open], Keys: keys}, nil
}

// Resolve looks up both datasets, applies the join, and returns the
// resulting node. Either side being unresolved propagates that error
// untouched so the caller's resolution driver can retry.
func Resolve(spec *Spec, reg *node.Registry) (node.Maybe, error) {
	left, err := lookup(reg, spec.Left.Dataset)
	if err != nil || !left.Present {
		return left, err
	}
	right, err := lookup(reg, spec.Right.Dataset)
	if err != nil || !right.Present {
		return right, err
	}

	leftArr, leftWasRow := asRows(left.Value)
	rightArr, rightWasRow := asRows(right.Value)
	if !leftWasRow || !rightWasRow {
		return node.Maybe{}, jtqerrors.JoinFailure(
			"join operands must be containers, got %s and %s", node.KindOf(left.Value), node.KindOf(right.Value))
	}
	_, leftIsArray := left.Value.([]node.Node)
	_, rightIsArray := right.Value.([]node.Node)

	var out []node.Node
	// A bare object as the anchor operand (the left one, or the right
	// one for the right-* operators) is a single row (spec §4.3 step 4),
	// so the result collapses to a single object (or nothing) instead of
	// a one-element array. A bare object on the other side joins as a
	// one-row table and the result stays an array.
	collapseLeft := !leftIsArray
	collapseRight := !rightIsArray

	switch spec.Op {
	case InnerOne:
		out = joinOneToOne(leftArr, spec.Left.Keys, rightArr, spec.Right.Keys, false)
	case LeftOne:
		out = joinOneToOne(leftArr, spec.Left.Keys, rightArr, spec.Right.Keys, true)
	case RightOne:
		out = joinOneToOne(rightArr, spec.Right.Keys, leftArr, spec.Left.Keys, true)
		collapseLeft, collapseRight = collapseRight, collapseLeft
	case LeftMany:
		out = joinOneToMany(leftArr, spec.Left.Keys, rightArr, spec.Right.Keys, spec.ArrayField)
	case RightMany:
		out = joinOneToMany(rightArr, spec.Right.Keys, leftArr, spec.Left.Keys, spec.ArrayField)
		collapseLeft, collapseRight = collapseRight, collapseLeft
	default:
		return node.Maybe{}, jtqerrors.JoinFailure("unknown join operator %q", spec.Op)
	}

	if collapseLeft {
		if len(out) == 0 {
			return node.None(), nil
		}
		return node.Some(out[0]), nil
	}
	return node.Some(node.Node(out)), nil
}

// asRows views n as a slice of joinable rows: an Array as itself, a
// single Object as a one-element slice (spec §4.3 step 4), anything
// else (a value node) is not joinable.
func asRows(n node.Node) ([]node.Node, bool) {
	switch v := n.(type) {
	case []node.Node:
		return v, true
	case *node.Object:
		return []node.Node{v}, true
	default:
		return nil, false
	}
}

func lookup(reg *node.Registry, name string) (node.Maybe, error) {
	opt, ok := reg.Get(name)
	if !ok {
		return node.Maybe{}, &jtqerrors.UnresolvedDatasetError{Name: name}
	}
	if !opt.Known {
		return node.Maybe{}, &jtqerrors.UnresolvedDatasetError{Name: name, AlreadyPoisoned: true}
	}
	return node.Some(opt.Value), nil
}

// joinOneToOne anchors on anchor, overlaying the first matching other
// element's fields onto a deep copy of each anchor element. keepAll
// controls whether unmatched anchor elements are kept bare (left/right
// join) or dropped (inner join).
func joinOneToOne(anchor []node.Node, anchorKeys []string, other []node.Node, otherKeys []string, keepAll bool) []node.Node {
	out := make([]node.Node, 0, len(anchor))
	for _, a := range anchor {
		av, ok := getKeyTuple(a, anchorKeys)
		if !ok {
			if keepAll {
				out = append(out, node.DeepCopy(a))
			}
			continue
		}
		matched := false
		for _, o := range other {
			ov, ok := getKeyTuple(o, otherKeys)
			if !ok || !tupleEqual(av, ov) {
				continue
			}
			out = append(out, overlay(a, o))
			matched = true
			break
		}
		if !matched && keepAll {
			out = append(out, node.DeepCopy(a))
		}
	}
	return out
}

// joinOneToMany anchors on anchor, nesting every matching other
// element into arrayField on a deep copy of each anchor element.
func joinOneToMany(anchor []node.Node, anchorKeys []string, other []node.Node, otherKeys []string, arrayField string) []node.Node {
	out := make([]node.Node, 0, len(anchor))
	for _, a := range anchor {
		av, ok := getKeyTuple(a, anchorKeys)
		copyA := node.DeepCopy(a)
		obj, isObj := copyA.(*node.Object)
		if !ok || !isObj {
			out = append(out, copyA)
			continue
		}
		var matches []node.Node
		for _, o := range other {
			ov, ok := getKeyTuple(o, otherKeys)
			if !ok || !tupleEqual(av, ov) {
				continue
			}
			matches = append(matches, node.DeepCopy(o))
		}
		if matches == nil {
			matches = []node.Node{}
		}
		obj.Set(arrayField, node.Node(matches))
		out = append(out, obj)
	}
	return out
}

// overlay deep-copies base and sets every field of extra onto the
// copy, extra's value winning on key conflicts.
func overlay(base, extra node.Node) node.Node {
	copyBase := node.DeepCopy(base)
	baseObj, ok := copyBase.(*node.Object)
	if !ok {
		return copyBase
	}
	extraObj, ok := extra.(*node.Object)
	if !ok {
		return baseObj
	}
	for pair := extraObj.Oldest(); pair != nil; pair = pair.Next() {
		baseObj.Set(pair.Key, node.DeepCopy(pair.Value))
	}
	return baseObj
}

// getKeyTuple resolves a list of plain dotted field paths (join keys
// carry no filters or functions, only object-key navigation) against
// n, failing if any key is missing.
func getKeyTuple(n node.Node, dotted []string) ([]node.Node, bool) {
	tuple := make([]node.Node, len(dotted))
	for i, d := range dotted {
		v, ok := getByPath(n, d)
		if !ok {
			return nil, false
		}
		tuple[i] = v
	}
	return tuple, true
}

func tupleEqual(a, b []node.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !node.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func getByPath(n node.Node, dotted string) (node.Node, bool) {
	cur := n
	for _, part := range strings.Split(dotted, ".") {
		obj, ok := cur.(*node.Object)
		if !ok {
			return nil, false
		}
		val, ok := obj.Get(part)
		if !ok {
			return nil, false
		}
		cur = val
	}
	return cur, true
}
