package lang

import (
	"encoding/json"
	"strings"
)

// ParseQuery parses a full `{{...}}` placeholder body (minus the
// braces) into a ternary chain (spec §4.1).
func ParseQuery(s string) (*Query, error) {
	s = strings.TrimSpace(s)
	qIdx := FindTopLevel(s, '?')
	if qIdx < 0 {
		stmt, err := ParseStatement(s)
		if err != nil {
			return nil, err
		}
		return &Query{Value: stmt}, nil
	}

	condText := s[:qIdx]
	rest := s[qIdx+1:]

	cond, err := ParseStatement(condText)
	if err != nil {
		return nil, err
	}

	cIdx := FindTopLevel(rest, ':')
	if cIdx < 0 {
		then, err := ParseStatement(rest)
		if err != nil {
			return nil, err
		}
		return &Query{Cond: cond, Then: then}, nil
	}

	thenText := rest[:cIdx]
	elseText := rest[cIdx+1:]

	then, err := ParseStatement(thenText)
	if err != nil {
		return nil, err
	}
	elseQ, err := ParseQuery(elseText)
	if err != nil {
		return nil, err
	}
	return &Query{Cond: cond, Then: then, Else: elseQ}, nil
}

// ParseStatement tokenizes a non-ternary expression into a flat
// Operand/Operator stream (spec §4.1).
func ParseStatement(s string) (*Statement, error) {
	stmt := &Statement{Raw: s}
	sc := &scanner{src: s}
	expectOperand := true

	for {
		sc.skipSpaces()
		if sc.eof() {
			break
		}
		if expectOperand {
			operand, err := parseOperand(sc)
			if err != nil {
				return nil, err
			}
			stmt.Tokens = append(stmt.Tokens, stmtToken{isOperand: true, operand: operand})
			expectOperand = false
			continue
		}

		op, err := scanOperator(sc)
		if err != nil {
			return nil, err
		}
		stmt.Tokens = append(stmt.Tokens, stmtToken{op: op})
		expectOperand = true
	}

	if len(stmt.Tokens) == 0 {
		return nil, sc.err("empty expression")
	}
	if expectOperand {
		return nil, sc.err("expression ends with a dangling operator")
	}
	return stmt, nil
}

// scanOperator recognizes one binary operator, longest match first.
func scanOperator(sc *scanner) (Operator, error) {
	two := sc.src[sc.pos:min(sc.pos+2, len(sc.src))]
	switch two {
	case "!=":
		sc.pos += 2
		return OpNe, nil
	case ">=":
		sc.pos += 2
		return OpGe, nil
	case "<=":
		sc.pos += 2
		return OpLe, nil
	}
	switch sc.peek() {
	case '|':
		sc.pos++
		return OpOr, nil
	case '&':
		sc.pos++
		return OpAnd, nil
	case '=':
		sc.pos++
		return OpEq, nil
	case '>':
		sc.pos++
		return OpGt, nil
	case '<':
		sc.pos++
		return OpLt, nil
	case '+':
		sc.pos++
		return OpAdd, nil
	case '-':
		sc.pos++
		return OpSub, nil
	case '*':
		sc.pos++
		return OpMul, nil
	case '/':
		sc.pos++
		return OpDiv, nil
	case '%':
		sc.pos++
		return OpMod, nil
	}
	return "", sc.err("expected an operator")
}

// parseOperand parses one Operand: optional leading '!' run, then a
// literal, a parenthesized sub-statement, a function call, or a
// dataset path.
func parseOperand(sc *scanner) (*Operand, error) {
	negate := false
	for {
		sc.skipSpaces()
		if !sc.eof() && sc.peek() == '!' && sc.peekAt(1) != '=' {
			negate = !negate
			sc.pos++
			continue
		}
		break
	}
	sc.skipSpaces()
	if sc.eof() {
		return nil, sc.err("expected an operand")
	}

	switch {
	case sc.peek() == '(':
		inner, err := scanBalancedParen(sc)
		if err != nil {
			return nil, err
		}
		sub, err := ParseStatement(inner)
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandParen, Negate: negate, Sub: sub}, nil

	case sc.peek() == '\'' || sc.peek() == '"':
		text, err := sc.scanQuoted()
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandLiteral, Negate: negate, Literal: text}, nil

	case sc.peek() == '@':
		sc.pos++
		path, err := scanAttachedPath(sc)
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandPath, Negate: negate, Dataset: "@", Path: path}, nil

	case sc.peek() == '#':
		sc.pos++
		path, err := scanAttachedPath(sc)
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandPath, Negate: negate, Dataset: "#", Path: path}, nil

	case isDigit(sc.peek()) || (sc.peek() == '-' && isDigit(sc.peekAt(1))):
		lit, err := scanNumberLiteral(sc)
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandLiteral, Negate: negate, Literal: lit}, nil

	case isNameStart(rune(sc.peek())):
		name := sc.scanName()
		switch name {
		case "true":
			return &Operand{Kind: OperandLiteral, Negate: negate, Literal: true}, nil
		case "false":
			return &Operand{Kind: OperandLiteral, Negate: negate, Literal: false}, nil
		case "null":
			return &Operand{Kind: OperandLiteral, Negate: negate, Literal: nil}, nil
		}
		if !sc.eof() && sc.peek() == '(' {
			args, err := scanBalancedParen(sc)
			if err != nil {
				return nil, err
			}
			return &Operand{Kind: OperandFunc, Negate: negate, Func: &FuncCall{Name: name, RawArgs: args}}, nil
		}
		path, err := scanAttachedPath(sc)
		if err != nil {
			return nil, err
		}
		return &Operand{Kind: OperandPath, Negate: negate, Dataset: name, Path: path}, nil
	}

	return nil, sc.err("unexpected character in operand position")
}

// scanNumberLiteral scans a JSON-compatible number literal and returns
// it as a json.Number so it flows through internal/node the same way a
// decoded document number would.
func scanNumberLiteral(sc *scanner) (json.Number, error) {
	start := sc.pos
	if sc.peek() == '-' {
		sc.pos++
	}
	for !sc.eof() && isDigit(sc.peek()) {
		sc.pos++
	}
	if !sc.eof() && sc.peek() == '.' && isDigit(sc.peekAt(1)) {
		sc.pos++
		for !sc.eof() && isDigit(sc.peek()) {
			sc.pos++
		}
	}
	if !sc.eof() && (sc.peek() == 'e' || sc.peek() == 'E') {
		save := sc.pos
		sc.pos++
		if !sc.eof() && (sc.peek() == '+' || sc.peek() == '-') {
			sc.pos++
		}
		if sc.eof() || !isDigit(sc.peek()) {
			sc.pos = save
		} else {
			for !sc.eof() && isDigit(sc.peek()) {
				sc.pos++
			}
		}
	}
	return json.Number(sc.src[start:sc.pos]), nil
}

// scanAttachedPath consumes an optional immediate "[filter]mode?" on
// the identifier just scanned, followed by zero or more ".name" /
// ".name[filter]mode?" / ".func(args)" steps.
func scanAttachedPath(sc *scanner) (*Path, error) {
	p := &Path{}

	if !sc.eof() && sc.peek() == '[' {
		step := PathStep{Kind: StepName}
		if err := parseFilterSuffix(sc, &step); err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, step)
	}

	for !sc.eof() && sc.peek() == '.' {
		sc.pos++
		if sc.eof() || !isNameStart(rune(sc.peek())) {
			return nil, sc.err("expected a step name after '.'")
		}
		name := sc.scanName()
		if !sc.eof() && sc.peek() == '(' {
			args, err := scanBalancedParen(sc)
			if err != nil {
				return nil, err
			}
			p.Steps = append(p.Steps, PathStep{Kind: StepFunc, Func: &FuncCall{Name: name, RawArgs: args}})
			continue
		}
		step := PathStep{Kind: StepName, Name: name}
		if !sc.eof() && sc.peek() == '[' {
			if err := parseFilterSuffix(sc, &step); err != nil {
				return nil, err
			}
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}
