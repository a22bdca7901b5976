package shape

import (
	"strconv"
	"strings"

	"github.com/mibar/jtq/internal/jtqerrors"
)

// segKind distinguishes the three step shapes a shape path supports:
// a named object field, a specific array index, or a `[*]` wildcard
// that selects every array element.
type segKind int

const (
	segField segKind = iota
	segIndex
	segWildcard
)

type segment struct {
	kind  segKind
	name  string
	index int
}

// parsePath parses a small JSONPath-like expression: `$`, `.name`,
// `[*]`, or `[idx]` steps chained together, e.g. `$.data[*].id` or
// `$[2].name`. It is intentionally narrower than RFC 9535 — shape
// paths exist only to pick or drop fields for dataset projection, not
// to filter or slice.
func parsePath(path string) ([]segment, error) {
	if !strings.HasPrefix(path, "$") {
		return nil, jtqerrors.IllegalArgument("shape: path %q must start with '$'", path)
	}
	rest := path[1:]
	var segs []segment
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			name := rest[:end]
			if name == "" {
				return nil, jtqerrors.IllegalArgument("shape: empty field name in path %q", path)
			}
			segs = append(segs, segment{kind: segField, name: name})
			rest = rest[end:]
		case '[':
			close := strings.IndexByte(rest, ']')
			if close < 0 {
				return nil, jtqerrors.IllegalArgument("shape: unterminated '[' in path %q", path)
			}
			inner := rest[1:close]
			if inner == "*" {
				segs = append(segs, segment{kind: segWildcard})
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil {
					return nil, jtqerrors.IllegalArgument("shape: bad array index %q in path %q", inner, path)
				}
				segs = append(segs, segment{kind: segIndex, index: idx})
			}
			rest = rest[close+1:]
		default:
			return nil, jtqerrors.IllegalArgument("shape: unexpected %q in path %q", rest[:1], path)
		}
	}
	return segs, nil
}
