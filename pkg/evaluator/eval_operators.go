package evaluator

import (
	"fmt"
	"math"

	"github.com/sandrolain/gorule/pkg/types"
)

// numbers holds a numeric operand pair. When both sides are Integer the
// int fields are authoritative; otherwise both are promoted to float.
type numbers struct {
	li, ri int64
	lf, rf float64
	ints   bool
}

func numeric(left, right types.Value) (numbers, bool) {
	var n numbers
	switch l := left.(type) {
	case types.Integer:
		n.li, n.lf = int64(l), float64(l)
	case types.Float:
		n.lf = float64(l)
	default:
		return n, false
	}
	switch r := right.(type) {
	case types.Integer:
		n.ri, n.rf = int64(r), float64(r)
	case types.Float:
		n.rf = float64(r)
	default:
		return n, false
	}
	_, lInt := left.(types.Integer)
	_, rInt := right.(types.Integer)
	n.ints = lInt && rInt
	return n, true
}

// equal implements == for operands of the same kind. Integer and Float
// compare numerically.
func equal(op types.Operator, left, right types.Value) (bool, error) {
	if n, ok := numeric(left, right); ok {
		if n.ints {
			return n.li == n.ri, nil
		}
		return n.lf == n.rf, nil
	}
	switch l := left.(type) {
	case types.Boolean:
		if r, ok := right.(types.Boolean); ok {
			return l == r, nil
		}
	case types.String:
		if r, ok := right.(types.String); ok {
			return l == r, nil
		}
	}
	return false, mismatch(op, left, right)
}

// compare implements the ordering operators, which are defined on numbers
// only. Any ordering involving NaN is false.
func compare(op types.Operator, left, right types.Value) (bool, error) {
	n, ok := numeric(left, right)
	if !ok {
		return false, mismatch(op, left, right)
	}
	if n.ints {
		return ordered(op, n.li, n.ri)
	}
	return ordered(op, n.lf, n.rf)
}

func ordered[T int64 | float64](op types.Operator, a, b T) (bool, error) {
	switch op {
	case types.OpLess:
		return a < b, nil
	case types.OpLessEqual:
		return a <= b, nil
	case types.OpGreater:
		return a > b, nil
	case types.OpGreaterEqual:
		return a >= b, nil
	}
	return false, unknownOperator(op)
}

// arithmetic implements + - * / %. Integer operands stay Integer, with
// wrapping overflow, except for / which always divides as float.
func arithmetic(op types.Operator, left, right types.Value) (types.Value, error) {
	n, ok := numeric(left, right)
	if !ok {
		return nil, mismatch(op, left, right)
	}

	switch op {
	case types.OpDiv:
		if n.rf == 0 {
			return nil, divisionByZero(op)
		}
		return types.Float(n.lf / n.rf), nil
	case types.OpMod:
		if n.rf == 0 {
			return nil, divisionByZero(op)
		}
		if n.ints {
			return types.Integer(n.li % n.ri), nil
		}
		return types.Float(math.Mod(n.lf, n.rf)), nil
	}

	if n.ints {
		switch op {
		case types.OpAdd:
			return types.Integer(n.li + n.ri), nil
		case types.OpSub:
			return types.Integer(n.li - n.ri), nil
		case types.OpMul:
			return types.Integer(n.li * n.ri), nil
		}
	} else {
		switch op {
		case types.OpAdd:
			return types.Float(n.lf + n.rf), nil
		case types.OpSub:
			return types.Float(n.lf - n.rf), nil
		case types.OpMul:
			return types.Float(n.lf * n.rf), nil
		}
	}
	return nil, unknownOperator(op)
}

// unary implements prefix not and minus.
func unary(op types.Operator, operand types.Value) (types.Value, error) {
	switch op {
	case types.OpNot:
		if b, ok := operand.(types.Boolean); ok {
			return !b, nil
		}
		return nil, operandMismatch(op, "boolean", operand)
	case types.OpNeg:
		switch v := operand.(type) {
		case types.Integer:
			return -v, nil
		case types.Float:
			return -v, nil
		}
		return nil, operandMismatch(op, "number", operand)
	}
	return nil, unknownOperator(op)
}

func mismatch(op types.Operator, left, right types.Value) error {
	err := types.NewEvaluationError(types.ErrTypeMismatch,
		fmt.Sprintf("cannot compare different types (%s and %s) for operator '%s'", left.Kind(), right.Kind(), op))
	err.Details.Expected = left.Kind().String()
	err.Details.Actual = right.Kind().String()
	return err
}

// logicalMismatch reports and/or operands that are not both Boolean.
func logicalMismatch(op types.Operator, left, right types.Value) error {
	var err *types.Error
	if left.Kind() != right.Kind() {
		err = types.NewEvaluationError(types.ErrTypeMismatch,
			fmt.Sprintf("cannot compare different types (%s and %s) in logical '%s'", left.Kind(), right.Kind(), op))
	} else {
		err = types.NewEvaluationError(types.ErrTypeMismatch,
			fmt.Sprintf("logical '%s' requires boolean operands, got %s", op, left.Kind()))
	}
	err.Details.Expected = types.KindBoolean.String()
	err.Details.Actual = left.Kind().String() + ", " + right.Kind().String()
	return err
}

func operandMismatch(op types.Operator, want string, operand types.Value) error {
	err := types.NewEvaluationError(types.ErrTypeMismatch,
		fmt.Sprintf("operator '%s' requires a %s operand, got %s", op, want, operand.Kind()))
	err.Details.Expected = want
	err.Details.Actual = operand.Kind().String()
	return err
}

func divisionByZero(op types.Operator) error {
	return types.NewEvaluationError(types.ErrDivisionByZero, fmt.Sprintf("division by zero for operator '%s'", op))
}

func unknownOperator(op types.Operator) error {
	return types.NewEvaluationError(types.ErrEvaluation, fmt.Sprintf("unknown operator '%s'", op))
}
