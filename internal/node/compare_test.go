package node

import (
	"encoding/json"
	"testing"
)

func TestCompareNumericAndTextCoercion(t *testing.T) {
	cases := []struct {
		name string
		a    Node
		op   Op
		b    Node
		want bool
	}{
		{"num eq num", json.Number("3"), OpEq, json.Number("3.0"), true},
		{"text eq parseable num", "3", OpEq, json.Number("3"), true},
		{"num lt swapped text", json.Number("2"), OpLt, "3", true},
		{"text vs non-parseable num is ne", "abc", OpNe, json.Number("3"), true},
		{"text vs non-parseable num is not eq", "abc", OpEq, json.Number("3"), false},
		{"bool eq bool", true, OpEq, true, true},
		{"bool ne bool", true, OpNe, false, true},
		{"null eq null", nil, OpEq, nil, true},
		{"null ne value", nil, OpNe, "x", true},
		{"null eq value is false", nil, OpEq, "x", false},
		{"string ordering", "apple", OpLt, "banana", true},
	}
	for _, c := range cases {
		if got := Compare(c.a, c.op, c.b); got != c.want {
			t.Errorf("%s: Compare(%#v, %s, %#v) = %v, want %v", c.name, c.a, c.op, c.b, got, c.want)
		}
	}
}

func TestCompareContainersOnlyEqNe(t *testing.T) {
	a := []Node{"x", "y"}
	b := []Node{"y", "x"} // multiset equality, order-independent
	if !Compare(a, OpEq, b) {
		t.Error("arrays with same multiset of elements should be equal regardless of order")
	}
	if Compare(a, OpGt, b) {
		t.Error("'>' on containers should fall through to the mismatch rule (false)")
	}
}

func TestArrayMultisetEqualityRejectsNestedContainers(t *testing.T) {
	a := []Node{[]Node{"x"}}
	b := []Node{[]Node{"x"}}
	if Equal(a, b) {
		t.Error("arrays containing container elements must not be considered equal (value-only multiset rule)")
	}
}

func TestObjectEqualityIsRecursiveAndKeyWise(t *testing.T) {
	a := NewObject()
	a.Set("x", json.Number("1"))
	b := NewObject()
	b.Set("x", json.Number("1"))
	if !Equal(a, b) {
		t.Error("objects with the same keys/values should be equal")
	}
	b.Set("y", "extra")
	if Equal(a, b) {
		t.Error("objects with different sizes should not be equal")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		n    Node
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{json.Number("0"), false},
		{json.Number("1"), true},
		{[]Node{}, false},
		{[]Node{"x"}, true},
	}
	for _, c := range cases {
		if got := Truthy(c.n); got != c.want {
			t.Errorf("Truthy(%#v) = %v, want %v", c.n, got, c.want)
		}
	}
}

func TestToFloat64(t *testing.T) {
	if f, ok := ToFloat64(json.Number("2.5")); !ok || f != 2.5 {
		t.Errorf("got %v, %v", f, ok)
	}
	if f, ok := ToFloat64("3"); !ok || f != 3 {
		t.Errorf("got %v, %v", f, ok)
	}
	if _, ok := ToFloat64("abc"); ok {
		t.Error("non-numeric text should not coerce")
	}
	if _, ok := ToFloat64([]Node{}); ok {
		t.Error("containers should not coerce to float64")
	}
}
