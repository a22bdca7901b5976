package node

import "testing"

func TestKindOf(t *testing.T) {
	obj := NewObject()
	obj.Set("a", "b")
	cases := []struct {
		name string
		n    Node
		want Kind
	}{
		{"null", nil, KindNull},
		{"bool", true, KindBool},
		{"text", "x", KindText},
		{"array", []Node{"x"}, KindArray},
		{"object", obj, KindObject},
	}
	for _, c := range cases {
		if got := KindOf(c.n); got != c.want {
			t.Errorf("%s: KindOf() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIsContainerIsValue(t *testing.T) {
	if !IsContainer([]Node{}) || !IsContainer(NewObject()) {
		t.Error("arrays and objects should be containers")
	}
	if IsContainer("x") || IsContainer(nil) {
		t.Error("scalars should not be containers")
	}
	if !IsValue("x") || !IsValue(nil) {
		t.Error("scalars should be values")
	}
}

func TestObjectPairsPreservesInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("z", 1)
	obj.Set("a", 2)
	obj.Set("m", 3)

	var keys []string
	for k := range ObjectPairs(obj) {
		keys = append(keys, k)
	}
	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
