package evaluator

import (
	"errors"
	"fmt"

	"github.com/sandrolain/gorule/pkg/types"
)

// scope carries the per-evaluation state down the tree.
type scope struct {
	ctx    *Context
	record types.Nested
	source string
}

// locate stamps the position of n onto err unless a deeper node already did.
func (s *scope) locate(err error, n types.Logical) error {
	var terr *types.Error
	if errors.As(err, &terr) && terr.Position < 0 {
		terr.Position = n.Pos()
		terr.WithSource(s.source)
	}
	return err
}

func (e *Evaluator) trace(n types.Logical) {
	if e.opts.Debug {
		e.logger.Debug("evaluating node", "type", fmt.Sprintf("%T", n), "node", n.String(), "position", n.Pos())
	}
}

// The eval functions mirror the AST levels. Each one handles its own binary
// node and hands everything tighter to the next level down.

func (e *Evaluator) evalLogical(n types.Logical, s *scope) (types.Value, error) {
	switch n := n.(type) {
	case *types.LogicalExpr:
		e.trace(n)
		v, err := e.evalLogicalExpr(n, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		return v, nil
	case types.Equality:
		return e.evalEquality(n, s)
	}
	return nil, unknownNode(n)
}

func (e *Evaluator) evalLogicalExpr(n *types.LogicalExpr, s *scope) (types.Value, error) {
	left, err := e.evalLogical(n.Left, s)
	if err != nil {
		return nil, err
	}
	lb, lok := left.(types.Boolean)
	if lok && e.opts.ShortCircuit && decides(n.Op, lb) {
		return lb, nil
	}

	right, err := e.evalEquality(n.Right, s)
	if err != nil {
		return nil, err
	}
	rb, rok := right.(types.Boolean)
	if !lok || !rok {
		return nil, logicalMismatch(n.Op, left, right)
	}
	if n.Op == types.OpAnd {
		return lb && rb, nil
	}
	return lb || rb, nil
}

// decides reports whether left alone determines the result of op.
func decides(op types.Operator, left types.Boolean) bool {
	return (op == types.OpAnd && !bool(left)) || (op == types.OpOr && bool(left))
}

func (e *Evaluator) evalEquality(n types.Equality, s *scope) (types.Value, error) {
	switch n := n.(type) {
	case *types.EqualityExpr:
		e.trace(n)
		left, right, err := evalPair(e.evalComparison, n.Left, n.Right, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		eq, err := equal(n.Op, left, right)
		if err != nil {
			return nil, s.locate(err, n)
		}
		if n.Op == types.OpNotEqual {
			eq = !eq
		}
		return types.Boolean(eq), nil
	case types.Comparison:
		return e.evalComparison(n, s)
	}
	return nil, unknownNode(n)
}

func (e *Evaluator) evalComparison(n types.Comparison, s *scope) (types.Value, error) {
	switch n := n.(type) {
	case *types.ComparisonExpr:
		e.trace(n)
		left, right, err := evalPair(e.evalAdditive, n.Left, n.Right, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		ok, err := compare(n.Op, left, right)
		if err != nil {
			return nil, s.locate(err, n)
		}
		return types.Boolean(ok), nil
	case types.Additive:
		return e.evalAdditive(n, s)
	}
	return nil, unknownNode(n)
}

func (e *Evaluator) evalAdditive(n types.Additive, s *scope) (types.Value, error) {
	switch n := n.(type) {
	case *types.AdditiveExpr:
		e.trace(n)
		left, err := e.evalAdditive(n.Left, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		right, err := e.evalFactor(n.Right, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		v, err := arithmetic(n.Op, left, right)
		if err != nil {
			return nil, s.locate(err, n)
		}
		return v, nil
	case types.Factor:
		return e.evalFactor(n, s)
	}
	return nil, unknownNode(n)
}

func (e *Evaluator) evalFactor(n types.Factor, s *scope) (types.Value, error) {
	switch n := n.(type) {
	case *types.FactorExpr:
		e.trace(n)
		left, err := e.evalFactor(n.Left, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		right, err := e.evalUnary(n.Right, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		v, err := arithmetic(n.Op, left, right)
		if err != nil {
			return nil, s.locate(err, n)
		}
		return v, nil
	case types.Unary:
		return e.evalUnary(n, s)
	}
	return nil, unknownNode(n)
}

func (e *Evaluator) evalUnary(n types.Unary, s *scope) (types.Value, error) {
	switch n := n.(type) {
	case *types.UnaryExpr:
		e.trace(n)
		operand, err := e.evalPrimary(n.Operand, s)
		if err != nil {
			return nil, s.locate(err, n)
		}
		v, err := unary(n.Op, operand)
		if err != nil {
			return nil, s.locate(err, n)
		}
		return v, nil
	case types.Primary:
		return e.evalPrimary(n, s)
	}
	return nil, unknownNode(n)
}

func (e *Evaluator) evalPrimary(n types.Primary, s *scope) (types.Value, error) {
	e.trace(n)
	switch n := n.(type) {
	case *types.Literal:
		return n.Value, nil
	case *types.Symbol:
		v, err := s.ctx.Resolve(n.Name, s.record)
		if err != nil {
			return nil, s.locate(err, n)
		}
		return v, nil
	case *types.AttributePath:
		v, err := s.ctx.ResolveAttribute(n.Segments, s.record)
		if err != nil {
			return nil, s.locate(err, n)
		}
		return v, nil
	case *types.Group:
		return e.evalLogical(n.Inner, s)
	}
	return nil, unknownNode(n)
}

// evalPair evaluates two operands of the same level, left first.
func evalPair[T types.Logical](eval func(T, *scope) (types.Value, error), l, r T, s *scope) (types.Value, types.Value, error) {
	left, err := eval(l, s)
	if err != nil {
		return nil, nil, err
	}
	right, err := eval(r, s)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func unknownNode(n types.Logical) error {
	return types.NewEvaluationError(types.ErrEvaluation, fmt.Sprintf("unknown node type %T", n))
}
