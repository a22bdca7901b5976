package node

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// sonicAPI mirrors encoding/json's UseNumber semantics so Number nodes
// keep their original decimal text (spec §3 treats Number as a "double"
// but round-tripping exact text matters for templating output).
var sonicAPI = sonic.Config{UseNumber: true}.Froze()

// Decode parses raw JSON bytes into a Node tree, preserving object key
// order (spec §3: "ordered map String→Node"). Neither encoding/json's
// map decoding nor sonic's preserve key order on their own, so decoding
// walks a token stream directly — the one place this package falls back
// to encoding/json instead of sonic.
func Decode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("node: unexpected delimiter %q", t)
		}
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case json.Number:
		return t, nil
	case string:
		return t, nil
	default:
		return nil, fmt.Errorf("node: unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Node, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("node: expected object key, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	var arr []Node
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	// consume closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if arr == nil {
		arr = []Node{}
	}
	return arr, nil
}

// Encode serializes n back to JSON bytes via sonic (spec §4.4 step 3:
// "Array node -> append its JSON serialization").
func Encode(n Node) ([]byte, error) {
	return sonicAPI.Marshal(n)
}

// Text renders a value node as its placeholder text form (spec §4.4
// step 3: "Value node -> append its text form").
func Text(n Node) string {
	switch v := n.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		b, err := Encode(n)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// DeepCopy returns a structural copy of n. Used by the join planner
// (spec §4.3 step 5: "deep-copy left operand before overlay") and by
// anything that must mutate a resolved node without corrupting the
// registry's cached copy.
func DeepCopy(n Node) Node {
	switch v := n.(type) {
	case []Node:
		out := make([]Node, len(v))
		for i, e := range v {
			out[i] = DeepCopy(e)
		}
		return out
	case *Object:
		out := NewObject()
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, DeepCopy(pair.Value))
		}
		return out
	default:
		return v
	}
}

// NewNumber wraps a float64 as a Number node.
func NewNumber(f float64) Node {
	return json.Number(formatFloat(f))
}

// NewInt wraps an int as a Number node.
func NewInt(i int) Node {
	return json.Number(fmt.Sprintf("%d", i))
}

func formatFloat(f float64) string {
	// %g keeps integral floats compact (e.g. "3" not "3.000000") while
	// retaining enough precision to round-trip typical merge values.
	return fmt.Sprintf("%g", f)
}

// FromGo converts a plain Go value (string, int, float64, bool, nil,
// []any, map[string]any) into a Node tree. Used by the engine
// constructors that accept map[string]string / map[string]int (spec
// §6) and by tests building fixtures inline.
func FromGo(v any) Node {
	switch t := v.(type) {
	case nil:
		return nil
	case *Object:
		return t
	case string:
		return t
	case bool:
		return t
	case int:
		return NewInt(t)
	case int64:
		return json.Number(fmt.Sprintf("%d", t))
	case float64:
		return NewNumber(t)
	case json.Number:
		return t
	case []any:
		out := make([]Node, len(t))
		for i, e := range t {
			out[i] = FromGo(e)
		}
		return out
	case map[string]any:
		out := NewObject()
		for k, e := range t {
			out.Set(k, FromGo(e))
		}
		return out
	}
	return fmt.Sprintf("%v", v)
}
