package node

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// Op is a relational operator symbol (spec §4.1).
type Op string

const (
	OpEq  Op = "="
	OpNe  Op = "!="
	OpGt  Op = ">"
	OpGe  Op = ">="
	OpLt  Op = "<"
	OpLe  Op = "<="
)

// Truthy implements "asBool" (spec §4.1): the truthy/falsy
// interpretation feeding logical & / |. None (absent) is handled by
// the caller before reaching here; within this package a Go nil Node
// (JSON null) is falsy.
func Truthy(n Node) bool {
	switch v := n.(type) {
	case nil:
		return false
	case bool:
		return v
	case json.Number:
		f, err := cast.ToFloat64E(v.String())
		return err == nil && f != 0
	case string:
		return v != ""
	case []Node:
		return len(v) > 0
	case *Object:
		return v.Len() > 0
	default:
		return false
	}
}

// ToFloat64 coerces a node to a float64, mirroring the evaluator's
// "text -> double parse" rule (spec §4.1 arithmetic / relational).
// ok is false when the node cannot be interpreted numerically.
func ToFloat64(n Node) (float64, bool) {
	switch v := n.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Compare implements the relational rules of spec §4.1 for operator op
// applied to (a op b). The swap-so-string-is-on-the-right rule is
// applied internally; callers pass operands in source order.
func Compare(a Node, op Op, b Node) bool {
	// Null + Null: equal.
	if a == nil && b == nil {
		return compareOrdered(0, op)
	}

	aIsContainer, bIsContainer := IsContainer(a), IsContainer(b)
	if aIsContainer || bIsContainer {
		return compareContainers(a, b, op)
	}

	aText, aIsText := a.(string)
	bText, bIsText := b.(string)

	switch {
	case aIsText && bIsText:
		return compareOrdered(stringCompare(aText, bText), op)

	case aIsText && !bIsText:
		// swap sides so the string side is the right operand
		return compareTextVsValue(b, aText, invertStrictness(op))

	case !aIsText && bIsText:
		return compareTextVsValue(a, bText, op)
	}

	// both non-text values: bool, number, null, mismatched combos
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return mismatch(op)
		}
		if op != OpEq && op != OpNe {
			return mismatch(op)
		}
		eq := av == bv
		if op == OpEq {
			return eq
		}
		return !eq

	case json.Number:
		bf, ok := ToFloat64(b)
		if !ok {
			return mismatch(op)
		}
		af, _ := av.Float64()
		return compareOrdered(numCompare(af, bf), op)

	case nil:
		// one side null, the other a non-container value: unequal unless '!='
		return op == OpNe

	default:
		return mismatch(op)
	}
}

// compareTextVsValue compares a non-text value node against text t,
// coercing t to a number when possible (spec §4.1: "text vs numeric
// coerces text to number if parseable, else '=' is false and '!=' is
// true").
func compareTextVsValue(v Node, t string, op Op) bool {
	switch vv := v.(type) {
	case json.Number:
		tf, err := cast.ToFloat64E(t)
		if err != nil {
			return op == OpNe
		}
		vf, _ := vv.Float64()
		return compareOrdered(numCompare(vf, tf), op)
	case bool:
		if op != OpEq && op != OpNe {
			return mismatch(op)
		}
		return op == OpNe
	case nil:
		return op == OpNe
	default:
		return mismatch(op)
	}
}

// invertStrictness swaps '>' <-> '<' and '>=' <-> '<=' to correct
// ordering after the operands are swapped; '=' and '!=' are unaffected.
func invertStrictness(op Op) Op {
	switch op {
	case OpGt:
		return OpLt
	case OpLt:
		return OpGt
	case OpGe:
		return OpLe
	case OpLe:
		return OpGe
	default:
		return op
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func numCompare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareOrdered(cmp int, op Op) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	default:
		return false
	}
}

func mismatch(op Op) bool {
	return op == OpNe
}

// compareContainers implements spec §4.1's container rules: only '='
// and '!=' are defined; same kind and same size are required; arrays
// use multiset equality over value-only elements, objects use
// recursive key-wise equality. Any other combination falls through to
// the "any other mismatch" rule.
func compareContainers(a, b Node, op Op) bool {
	if op != OpEq && op != OpNe {
		return mismatch(op)
	}
	eq := containerEqual(a, b)
	if op == OpEq {
		return eq
	}
	return !eq
}

func containerEqual(a, b Node) bool {
	aArr, aIsArr := a.([]Node)
	bArr, bIsArr := b.([]Node)
	if aIsArr && bIsArr {
		return arrayMultisetEqual(aArr, bArr)
	}

	aObj, aIsObj := a.(*Object)
	bObj, bIsObj := b.(*Object)
	if aIsObj && bIsObj {
		return objectEqual(aObj, bObj)
	}

	return false
}

// arrayMultisetEqual implements the spec's "multiset equality over
// value-only elements (non-value element => not equal)" rule.
func arrayMultisetEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		if IsContainer(av) {
			return false
		}
		found := false
		for i, bv := range b {
			if used[i] {
				continue
			}
			if IsContainer(bv) {
				return false
			}
			if Equal(av, bv) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func objectEqual(a, b *Object) bool {
	if a.Len() != b.Len() {
		return false
	}
	for pair := a.Oldest(); pair != nil; pair = pair.Next() {
		bv, ok := b.Get(pair.Key)
		if !ok {
			return false
		}
		if !Equal(pair.Value, bv) {
			return false
		}
	}
	return true
}

// Equal is Compare(a, "=", b) spelled out for recursive use.
func Equal(a, b Node) bool {
	return Compare(a, OpEq, b)
}
