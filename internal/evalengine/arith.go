package evalengine

import (
	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/lang"
	"github.com/mibar/jtq/internal/node"
)

// applyOp reduces two already-evaluated operands with a binary
// operator (spec §4.1). Logical operators always produce a definite
// boolean (None is falsy); relational operators treat either side
// being absent as a type mismatch (§4.1's "any other mismatch" rule:
// '!=' true, everything else false); arithmetic propagates absence.
func applyOp(a node.Maybe, op lang.Operator, b node.Maybe) (node.Maybe, error) {
	switch {
	case op == lang.OpAnd:
		return node.Some(a.Truthy() && b.Truthy()), nil
	case op == lang.OpOr:
		return node.Some(a.Truthy() || b.Truthy()), nil
	case op.IsRelational():
		return applyRelational(a, op, b)
	default:
		return applyArith(a, op, b)
	}
}

func applyRelational(a node.Maybe, op lang.Operator, b node.Maybe) (node.Maybe, error) {
	if !a.Present || !b.Present {
		return node.Some(op == lang.OpNe), nil
	}
	nodeOp, err := toNodeOp(op)
	if err != nil {
		return node.Maybe{}, err
	}
	return node.Some(node.Compare(a.Value, nodeOp, b.Value)), nil
}

func toNodeOp(op lang.Operator) (node.Op, error) {
	switch op {
	case lang.OpEq:
		return node.OpEq, nil
	case lang.OpNe:
		return node.OpNe, nil
	case lang.OpGt:
		return node.OpGt, nil
	case lang.OpGe:
		return node.OpGe, nil
	case lang.OpLt:
		return node.OpLt, nil
	case lang.OpLe:
		return node.OpLe, nil
	default:
		return "", jtqerrors.IllegalArgument("not a relational operator: %s", op)
	}
}

// applyArith implements +, -, *, /, % (spec §4.1): operands coerce to a
// double via text→double parsing, and any failure to coerce — absence
// on either side, non-numeric text, or division/modulo by zero —
// yields the neutral None result rather than an error. An arithmetic
// expression over a path step that matched nothing, or over text that
// isn't a number, is just unresolved, not malformed.
func applyArith(a node.Maybe, op lang.Operator, b node.Maybe) (node.Maybe, error) {
	if !a.Present || !b.Present {
		return node.None(), nil
	}

	af, aok := node.ToFloat64(a.Value)
	bf, bok := node.ToFloat64(b.Value)
	if !aok || !bok {
		return node.None(), nil
	}

	switch op {
	case lang.OpAdd:
		return node.Some(node.NewNumber(af + bf)), nil
	case lang.OpSub:
		return node.Some(node.NewNumber(af - bf)), nil
	case lang.OpMul:
		return node.Some(node.NewNumber(af * bf)), nil
	case lang.OpDiv:
		if bf == 0 {
			return node.None(), nil
		}
		return node.Some(node.NewNumber(af / bf)), nil
	case lang.OpMod:
		if bf == 0 {
			return node.None(), nil
		}
		ai, bi := int64(af), int64(bf)
		return node.Some(node.NewNumber(float64(ai % bi))), nil
	default:
		return node.Maybe{}, jtqerrors.IllegalArgument("unknown arithmetic operator %s", op)
	}
}
