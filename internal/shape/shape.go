// Package shape provides dataset tree-shaking: projecting a resolved
// node down to only the fields a caller wants (Include) or away from
// the fields it doesn't (Exclude), addressed by a small JSONPath-like
// path syntax (spec §1: dataset input-builder conveniences are
// explicitly out of the core resolution loop, but are fair game as
// opt-in sugar built on top of it). It is never called by
// internal/resolver itself — callers reach for it from pkg/merge when
// they want to shrink a dataset before registering it.
//
// Unlike a generic JSONPath engine walking map[string]any, shape walks
// internal/node.Node directly, so *node.Object's field order survives
// a Project call untouched.
package shape

import (
	"github.com/mibar/jtq/internal/node"
)

// Mode selects whether Project keeps or drops the matched paths.
type Mode int

const (
	ModeInclude Mode = iota
	ModeExclude
)

// Project applies mode over n for every path.
func Project(n node.Node, mode Mode, paths ...string) (node.Node, error) {
	switch mode {
	case ModeInclude:
		return Include(n, paths...)
	case ModeExclude:
		return Exclude(n, paths...)
	default:
		return nil, nil
	}
}

// Include keeps only the fields reachable by the given paths,
// preserving the source order of whichever fields survive.
func Include(n node.Node, paths ...string) (node.Node, error) {
	root := &mask{}
	for _, p := range paths {
		segs, err := parsePath(p)
		if err != nil {
			return nil, err
		}
		addPath(root, segs)
	}
	return applyMask(n, root), nil
}

// Exclude drops the fields reachable by the given paths, keeping
// everything else — including field order — untouched.
func Exclude(n node.Node, paths ...string) (node.Node, error) {
	out := node.DeepCopy(n)
	for _, p := range paths {
		segs, err := parsePath(p)
		if err != nil {
			return nil, err
		}
		if len(segs) == 0 {
			continue // excluding the root entirely is not supported; no-op
		}
		out = excludeOne(out, segs)
	}
	return out, nil
}

// mask is an inclusion tree built from the union of every Include
// path: full marks "keep this whole subtree"; fields/indices/wildcard
// narrow which children to keep descending into.
type mask struct {
	full     bool
	fields   map[string]*mask
	indices  map[int]*mask
	wildcard *mask
}

func addPath(m *mask, segs []segment) {
	if len(segs) == 0 {
		m.full = true
		return
	}
	seg, rest := segs[0], segs[1:]
	switch seg.kind {
	case segField:
		if m.fields == nil {
			m.fields = make(map[string]*mask)
		}
		child, ok := m.fields[seg.name]
		if !ok {
			child = &mask{}
			m.fields[seg.name] = child
		}
		addPath(child, rest)
	case segWildcard:
		if m.wildcard == nil {
			m.wildcard = &mask{}
		}
		addPath(m.wildcard, rest)
	case segIndex:
		if m.indices == nil {
			m.indices = make(map[int]*mask)
		}
		child, ok := m.indices[seg.index]
		if !ok {
			child = &mask{}
			m.indices[seg.index] = child
		}
		addPath(child, rest)
	}
}

func applyMask(n node.Node, m *mask) node.Node {
	if m.full {
		return node.DeepCopy(n)
	}
	switch v := n.(type) {
	case *node.Object:
		out := node.NewObject()
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			child, ok := m.fields[pair.Key]
			if !ok {
				continue
			}
			out.Set(pair.Key, applyMask(pair.Value, child))
		}
		return out
	case []node.Node:
		out := make([]node.Node, 0, len(v))
		for i, el := range v {
			child := m.wildcard
			if idxChild, ok := m.indices[i]; ok {
				child = idxChild
			}
			if child == nil {
				continue
			}
			out = append(out, applyMask(el, child))
		}
		return out
	default:
		// A leaf value reached with path segments still unmatched
		// simply isn't included.
		return nil
	}
}

func excludeOne(n node.Node, segs []segment) node.Node {
	seg, rest := segs[0], segs[1:]
	switch v := n.(type) {
	case *node.Object:
		out := node.NewObject()
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			if seg.kind == segField && pair.Key == seg.name {
				if len(rest) == 0 {
					continue // drop this field entirely
				}
				out.Set(pair.Key, excludeOne(pair.Value, rest))
				continue
			}
			out.Set(pair.Key, pair.Value)
		}
		return out
	case []node.Node:
		out := make([]node.Node, len(v))
		for i, el := range v {
			matches := seg.kind == segWildcard || (seg.kind == segIndex && seg.index == i)
			if !matches {
				out[i] = el
				continue
			}
			if len(rest) == 0 {
				// Dropping a whole array element by path isn't
				// supported; leave it untouched rather than guess.
				out[i] = el
				continue
			}
			out[i] = excludeOne(el, rest)
		}
		return out
	default:
		return v
	}
}
