package node

// Maybe distinguishes a resolved value — including an explicit JSON
// null — from "no value" (spec's bare `None`, e.g. a path step that
// matched nothing, or a ternary with no else branch taken). This is
// the `Node | None` return shape used throughout §4.1/§4.2.
type Maybe struct {
	Value   Node
	Present bool
}

// Some wraps a resolved node (which may itself be a JSON null, i.e.
// Go nil — Present is still true).
func Some(n Node) Maybe { return Maybe{Value: n, Present: true} }

// None is the absent-value sentinel.
func None() Maybe { return Maybe{} }

// Truthy reports whether m is present and its value is truthy
// (spec §4.1: "None ⇒ false").
func (m Maybe) Truthy() bool {
	return m.Present && Truthy(m.Value)
}
