// Package evalengine runs the two-stack evaluator over a parsed
// lang.Statement/lang.Query (spec §4.1): one stack holds already
// reduced Operand values, the other pending Operators, reduced by
// precedence exactly as a standard expression evaluator would.
package evalengine

import (
	"github.com/mibar/jtq/internal/functions"
	"github.com/mibar/jtq/internal/jtqerrors"
	"github.com/mibar/jtq/internal/lang"
	"github.com/mibar/jtq/internal/node"
	"github.com/mibar/jtq/internal/pathnav"
	"github.com/mibar/jtq/internal/scope"
)

// Engine evaluates statements and ternary queries against a scope,
// using fns to dispatch function-call operands and path steps.
type Engine struct {
	Functions *functions.Registry
}

// New returns an Engine backed by fns (NewRegistry() if nil).
func New(fns *functions.Registry) *Engine {
	if fns == nil {
		fns = functions.NewRegistry()
	}
	return &Engine{Functions: fns}
}

// EvaluateQuery walks a ternary chain, evaluating conditions until one
// is truthy (or the chain is exhausted) and evaluating only the
// selected branch (spec §4.1: unselected branches are never touched,
// so a dataset referenced only in a dead branch cannot poison the
// merge or trigger a resolver callback).
func (e *Engine) EvaluateQuery(sc scope.Scope, q *lang.Query) (node.Maybe, error) {
	if q.Cond == nil {
		return e.Evaluate(sc, q.Value)
	}
	cond, err := e.Evaluate(sc, q.Cond)
	if err != nil {
		return node.Maybe{}, err
	}
	if cond.Truthy() {
		return e.Evaluate(sc, q.Then)
	}
	if q.Else == nil {
		return node.None(), nil
	}
	return e.EvaluateQuery(sc, q.Else)
}

// Evaluate matches scope.Evaluator's signature, so an *Engine can be
// passed directly to pathnav.Resolve as the predicate evaluator.
func (e *Engine) Evaluate(sc scope.Scope, stmt *lang.Statement) (node.Maybe, error) {
	var operands []node.Maybe
	var operators []lang.Operator

	reduceTop := func() error {
		if len(operands) < 2 || len(operators) == 0 {
			return jtqerrors.IllegalArgument("malformed expression %q", stmt.Raw)
		}
		b := operands[len(operands)-1]
		a := operands[len(operands)-2]
		op := operators[len(operators)-1]
		operands = operands[:len(operands)-2]
		operators = operators[:len(operators)-1]
		res, err := applyOp(a, op, b)
		if err != nil {
			return err
		}
		operands = append(operands, res)
		return nil
	}

	for _, tok := range stmt.Tokens {
		if tok.isOperand {
			val, err := e.evalOperand(sc, tok.operand)
			if err != nil {
				return node.Maybe{}, err
			}
			operands = append(operands, val)
			continue
		}
		for len(operators) > 0 && operators[len(operators)-1].Precedence() >= tok.op.Precedence() {
			if err := reduceTop(); err != nil {
				return node.Maybe{}, err
			}
		}
		operators = append(operators, tok.op)
	}
	for len(operators) > 0 {
		if err := reduceTop(); err != nil {
			return node.Maybe{}, err
		}
	}
	if len(operands) != 1 {
		return node.Maybe{}, jtqerrors.IllegalArgument("malformed expression %q", stmt.Raw)
	}
	return operands[0], nil
}

func (e *Engine) evalOperand(sc scope.Scope, op *lang.Operand) (node.Maybe, error) {
	var result node.Maybe
	var err error

	switch op.Kind {
	case lang.OperandLiteral:
		result = literalToMaybe(op.Literal)

	case lang.OperandParen:
		result, err = e.Evaluate(sc, op.Sub)

	case lang.OperandFunc:
		evalArg := func(expr string) (node.Maybe, error) {
			s, perr := lang.ParseStatement(expr)
			if perr != nil {
				return node.Maybe{}, perr
			}
			return e.Evaluate(sc, s)
		}
		result, err = e.Functions.Call(op.Func.Name, sc.Current.Value, sc.Index, op.Func.RawArgs, evalArg)

	case lang.OperandPath:
		result, err = pathnav.Resolve(sc, op.Dataset, op.Path, e.Functions, e.Evaluate)

	default:
		err = jtqerrors.IllegalArgument("unknown operand kind")
	}
	if err != nil {
		return node.Maybe{}, err
	}
	if op.Negate {
		result = node.Some(!result.Truthy())
	}
	return result, nil
}

func literalToMaybe(v any) node.Maybe {
	return node.Some(node.FromGo(v))
}
