package functions

import (
	"testing"

	"github.com/mibar/jtq/internal/node"
)

// literalEval treats its argument as a literal string/number, ignoring
// any grammar — enough to exercise builtins without internal/evalengine.
func literalEval(expr string) (node.Maybe, error) {
	return node.Some(expr), nil
}

func TestRegistryCallDispatchesAndSplitsArgs(t *testing.T) {
	r := NewRegistry()
	got, err := r.Call("concat", nil, -1, "a, b, c", literalEval)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Value != "abc" {
		t.Errorf("got %v", got.Value)
	}
}

func TestRegistryCallUnknownFunction(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Call("nope", nil, -1, "", literalEval); err == nil {
		t.Error("expected an error for an unknown function name")
	}
}

func TestRegistryRegisterOverridesBuiltin(t *testing.T) {
	r := NewRegistry()
	r.Register("upper", func(current node.Node, index int, args []string, eval Evaluator) (node.Maybe, error) {
		return node.Some("overridden"), nil
	})
	got, err := r.Call("upper", "x", -1, "", literalEval)
	if err != nil || got.Value != "overridden" {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestFnLengthOnStringArrayObject(t *testing.T) {
	if m, _ := fnLength("hello", -1, nil, literalEval); m.Value != node.NewInt(5) {
		t.Errorf("string: got %v", m.Value)
	}
	if m, _ := fnLength([]node.Node{"a", "b"}, -1, nil, literalEval); m.Value != node.NewInt(2) {
		t.Errorf("array: got %v", m.Value)
	}
	obj := node.NewObject()
	obj.Set("a", "1")
	if m, _ := fnLength(obj, -1, nil, literalEval); m.Value != node.NewInt(1) {
		t.Errorf("object: got %v", m.Value)
	}
}

func TestFnUpperLowerTrim(t *testing.T) {
	if m, _ := fnUpper("hi", -1, nil, literalEval); m.Value != "HI" {
		t.Errorf("upper: got %v", m.Value)
	}
	if m, _ := fnLower("HI", -1, nil, literalEval); m.Value != "hi" {
		t.Errorf("lower: got %v", m.Value)
	}
	if m, _ := fnTrim("  hi  ", -1, nil, literalEval); m.Value != "hi" {
		t.Errorf("trim: got %v", m.Value)
	}
}

func TestFnConcatUsesCurrentWithNoArgs(t *testing.T) {
	if m, _ := fnConcat(node.NewInt(3), -1, nil, literalEval); m.Value != "3" {
		t.Errorf("got %v", m.Value)
	}
}

func TestFnJoinAndSplitRoundTrip(t *testing.T) {
	arr := []node.Node{"a", "b", "c"}
	eval := func(expr string) (node.Maybe, error) { return node.Some(arr), nil }
	joined, err := fnJoin(nil, -1, []string{"arr"}, eval)
	if err != nil || joined.Value != "a,b,c" {
		t.Fatalf("got %v, %v", joined, err)
	}

	split, err := fnSplit("a,b,c", -1, nil, literalEval)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	got, ok := split.Value.([]node.Node)
	if !ok || len(got) != 3 || got[1] != "b" {
		t.Errorf("got %+v", split.Value)
	}
}

func TestFnSubstrNegativeStart(t *testing.T) {
	eval := func(expr string) (node.Maybe, error) {
		switch expr {
		case "s":
			return node.Some("hello"), nil
		case "start":
			return node.Some(node.NewInt(-3)), nil
		}
		return node.None(), nil
	}
	got, err := fnSubstr(nil, -1, []string{"s", "start"}, eval)
	if err != nil || got.Value != "llo" {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestFnContainsStringAndArray(t *testing.T) {
	eval := func(expr string) (node.Maybe, error) { return node.Some(expr), nil }
	if m, _ := fnContains(nil, -1, []string{"haystack", "stack"}, eval); m.Value != true {
		t.Errorf("substring contains should be true, got %v", m.Value)
	}

	arrEval := func(expr string) (node.Maybe, error) {
		if expr == "arr" {
			return node.Some([]node.Node{"x", "y"}), nil
		}
		return node.Some("y"), nil
	}
	if m, _ := fnContains(nil, -1, []string{"arr", "needle"}, arrEval); m.Value != true {
		t.Errorf("array contains should be true, got %v", m.Value)
	}
}

func TestFnKeysPreservesOrder(t *testing.T) {
	obj := node.NewObject()
	obj.Set("z", 1)
	obj.Set("a", 2)
	m, err := fnKeys(obj, -1, nil, literalEval)
	if err != nil {
		t.Fatalf("fnKeys: %v", err)
	}
	keys := m.Value.([]node.Node)
	if len(keys) != 2 || keys[0] != "z" || keys[1] != "a" {
		t.Errorf("got %v", keys)
	}
}

func TestFnFirstLastReverse(t *testing.T) {
	arr := []node.Node{"a", "b", "c"}
	if m, _ := fnFirst(arr, -1, nil, literalEval); m.Value != "a" {
		t.Errorf("first: got %v", m.Value)
	}
	if m, _ := fnLast(arr, -1, nil, literalEval); m.Value != "c" {
		t.Errorf("last: got %v", m.Value)
	}
	m, _ := fnReverse(arr, -1, nil, literalEval)
	rev := m.Value.([]node.Node)
	if rev[0] != "c" || rev[2] != "a" {
		t.Errorf("got %v", rev)
	}
	if m, _ := fnReverse("abc", -1, nil, literalEval); m.Value != "cba" {
		t.Errorf("string reverse: got %v", m.Value)
	}
}

func TestFnDefaultAndCoalesce(t *testing.T) {
	eval := func(expr string) (node.Maybe, error) {
		switch expr {
		case "empty":
			return node.Some(""), nil
		case "absent":
			return node.None(), nil
		case "fallback":
			return node.Some("fb"), nil
		}
		return node.Some(expr), nil
	}
	m, err := fnDefault(nil, -1, []string{"empty", "fallback"}, eval)
	if err != nil || m.Value != "fb" {
		t.Fatalf("default on empty: got %v, %v", m, err)
	}
	m, err = fnCoalesce(nil, -1, []string{"absent", "fallback"}, eval)
	if err != nil || m.Value != "fb" {
		t.Fatalf("coalesce: got %v, %v", m, err)
	}
}

func TestFnIndexInsideAndOutsideFilter(t *testing.T) {
	if m, _ := fnIndex(nil, 2, nil, literalEval); m.Value != node.NewInt(2) {
		t.Errorf("got %v", m.Value)
	}
	if m, _ := fnIndex(nil, -1, nil, literalEval); m.Present {
		t.Error("expected None outside a filter context")
	}
}
