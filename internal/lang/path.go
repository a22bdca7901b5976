package lang

// FilterMode selects how a filter step's matches are consumed (spec
// §4.2): Single keeps the first match, All collects every match into
// an array, and Divert fans every match out into an independent
// navigation branch ("divert-all").
type FilterMode int

const (
	ModeSingle FilterMode = iota
	ModeAll
	ModeDivert
)

func (m FilterMode) String() string {
	switch m {
	case ModeAll:
		return "*"
	case ModeDivert:
		return "@"
	default:
		return ""
	}
}

// StepKind discriminates a name step from a function step; a filtered
// step is a StepName with HasFilter set.
type StepKind int

const (
	StepName StepKind = iota
	StepFunc
)

// PathStep is one `.`-separated component of a Path (spec §4.2: "step =
// name | name[filter]mode? | functionCall"). The dataset name itself is
// not a step: it lives in Operand.Dataset, and pathnav.Resolve looks it
// up in the registry before walking the steps.
type PathStep struct {
	Kind StepKind

	// StepName fields.
	Name      string
	HasFilter bool
	Index     *int       // bare "[n]" / "[-n]" index shortcut
	Predicate *Statement // "[expr]" predicate, nil when Index is set
	Mode      FilterMode

	// StepFunc fields.
	Func *FuncCall
}

// FuncCall is a parsed `name(argtext)` call. Argument splitting and
// evaluation is deferred to the caller (internal/functions /
// internal/evalengine) because arguments may themselves be full
// sub-statements that need the registry to evaluate.
type FuncCall struct {
	Name    string
	RawArgs string
}

// Path is the parsed sequence of steps following an Operand's dataset
// name (spec §4.2: "Path = step('.'step)*"). Path[0] (when present)
// corresponds to the dataset name's own attached filter, if any — the
// identifier itself is consumed by the Operand parser, not stored here.
type Path struct {
	Steps []PathStep
	Raw   string
}

// ParsePath parses the '.'-joined step sequence of s, which must NOT
// include the leading dataset name (that is split off by the Operand
// parser). An empty s yields a Path with no steps.
func ParsePath(s string) (*Path, error) {
	p := &Path{Raw: s}
	if s == "" {
		return p, nil
	}
	for _, raw := range SplitTopLevel(s, '.') {
		step, err := parseStep(raw)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, *step)
	}
	return p, nil
}

// parseStep parses a single step's text — either `name`, `name[...]`,
// `[...]` (filter on the current context with no name change), or a
// bare `functionCall(...)`.
func parseStep(raw string) (*PathStep, error) {
	sc := &scanner{src: raw}
	sc.skipSpaces()

	if !sc.eof() && isNameStart(rune(sc.peek())) {
		name := sc.scanName()
		sc.skipSpaces()
		// functionCall: name immediately followed by '('.
		if !sc.eof() && sc.peek() == '(' {
			args, err := scanBalancedParen(sc)
			if err != nil {
				return nil, err
			}
			if !sc.eof() {
				return nil, sc.err("unexpected trailing characters after function call")
			}
			return &PathStep{Kind: StepFunc, Func: &FuncCall{Name: name, RawArgs: args}}, nil
		}
		step := &PathStep{Kind: StepName, Name: name}
		if sc.eof() {
			return step, nil
		}
		if err := parseFilterSuffix(sc, step); err != nil {
			return nil, err
		}
		if !sc.eof() {
			return nil, sc.err("unexpected trailing characters after filter")
		}
		return step, nil
	}

	if !sc.eof() && sc.peek() == '[' {
		step := &PathStep{Kind: StepName}
		if err := parseFilterSuffix(sc, step); err != nil {
			return nil, err
		}
		if !sc.eof() {
			return nil, sc.err("unexpected trailing characters after filter")
		}
		return step, nil
	}

	return nil, sc.err("expected step name, filter, or function call")
}

// scanBalancedParen consumes a '('...')' span starting at sc.pos=='(',
// returning the inner text and leaving sc positioned just past ')'.
func scanBalancedParen(sc *scanner) (string, error) {
	start := sc.pos
	depth := 0
	for !sc.eof() {
		switch sc.peek() {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				sc.pos++
				return sc.src[start+1 : sc.pos-1], nil
			}
		}
		sc.pos++
	}
	return "", sc.errAt(start, "unterminated '('")
}

// parseFilterSuffix parses an optional "[predicate]mode?" tail attached
// to step, starting at sc.pos == '[', leaving sc positioned just past
// the mode character (if any). A no-op when sc is not at '['.
func parseFilterSuffix(sc *scanner, step *PathStep) error {
	if sc.eof() || sc.peek() != '[' {
		return nil
	}
	depth := 0
	start := sc.pos
	for !sc.eof() {
		switch sc.peek() {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				sc.pos++
				goto closed
			}
		}
		sc.pos++
	}
	return sc.errAt(start, "unterminated '['")
closed:
	inner := sc.src[start+1 : sc.pos-1]
	step.HasFilter = true

	if n, ok := parseBareIndex(inner); ok {
		step.Index = &n
	} else {
		pred, err := ParseStatement(inner)
		if err != nil {
			return err
		}
		step.Predicate = pred
	}

	if !sc.eof() {
		switch sc.peek() {
		case '*':
			step.Mode = ModeAll
			sc.pos++
		case '@':
			step.Mode = ModeDivert
			sc.pos++
		}
	}
	return nil
}

// parseBareIndex recognizes a plain (possibly negative) integer filter
// body such as "0" or "-1", the shortcut form of an index predicate.
func parseBareIndex(s string) (int, bool) {
	sc := &scanner{src: s}
	n, err := sc.scanInt()
	if err != nil || !sc.eof() {
		return 0, false
	}
	return n, true
}
