// Package node implements the JSON value tree (spec §3): a tagged union
// of {Null, Bool, Number, Text, Array, Object} plus the dataset registry
// that resolves names to nodes with tri-state semantics (absent / known
// unresolvable / present).
package node

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is a JSON value. Concrete shapes:
//
//	nil                              -> Null
//	bool                              -> Bool
//	json.Number                       -> Number (preserves original text)
//	string                            -> Text
//	[]Node                            -> Array
//	*orderedmap.OrderedMap[string,Node] -> Object
type Node = any

// Object is the concrete Object-node shape: an insertion-ordered
// string-keyed map, per spec §3 ("ordered map String→Node").
type Object = orderedmap.OrderedMap[string, Node]

// NewObject creates an empty, ordered Object node.
func NewObject() *Object {
	return orderedmap.New[string, Node]()
}

// IsContainer reports whether n is an Array or Object node (spec §3:
// "Container node").
func IsContainer(n Node) bool {
	switch n.(type) {
	case []Node, *Object:
		return true
	default:
		return false
	}
}

// IsValue reports whether n is anything other than a container
// (spec §3: "Value node").
func IsValue(n Node) bool {
	return !IsContainer(n)
}

// IsNull reports whether n represents the JSON null node.
func IsNull(n Node) bool {
	return n == nil
}

// Kind names the six node kinds for diagnostics.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf classifies n.
func KindOf(n Node) Kind {
	switch n.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number:
		return KindNumber
	case string:
		return KindText
	case []Node:
		return KindArray
	case *Object:
		return KindObject
	default:
		return KindNull
	}
}

// ObjectPairs iterates an Object's key/value pairs in insertion order.
func ObjectPairs(o *Object) func(yield func(key string, val Node) bool) {
	return func(yield func(key string, val Node) bool) {
		for pair := o.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}
