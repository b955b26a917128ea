package evaluator

import (
	"math"

	"github.com/sandrolain/gorule/pkg/types"
)

// folder evaluates constant subtrees. Both operands of and/or are always
// evaluated, so a fold never hides an error the runtime would report.
var folder = New()

// Reduce returns a copy of expr in which every subtree whose operands are
// all literals is replaced by its value. Subtrees that fail to evaluate are
// kept as written, so the error still surfaces at evaluation time, and so
// are subtrees yielding an infinite or NaN Float, which has no literal. Groups
// around a folded literal disappear. expr itself is not modified.
func Reduce(expr *types.Expression) *types.Expression {
	if expr == nil || expr.Root() == nil {
		return expr
	}
	return types.NewExpression(reduceLogical(expr.Root()), expr.Source())
}

func reduceLogical(n types.Logical) types.Logical {
	switch n := n.(type) {
	case *types.LogicalExpr:
		r := &types.LogicalExpr{Op: n.Op, Left: reduceLogical(n.Left), Right: reduceEquality(n.Right), Position: n.Position}
		return fold[types.Logical](r, r.Left, r.Right)
	case types.Equality:
		return reduceEquality(n)
	}
	return n
}

func reduceEquality(n types.Equality) types.Equality {
	switch n := n.(type) {
	case *types.EqualityExpr:
		r := &types.EqualityExpr{Op: n.Op, Left: reduceComparison(n.Left), Right: reduceComparison(n.Right), Position: n.Position}
		return fold[types.Equality](r, r.Left, r.Right)
	case types.Comparison:
		return reduceComparison(n)
	}
	return n
}

func reduceComparison(n types.Comparison) types.Comparison {
	switch n := n.(type) {
	case *types.ComparisonExpr:
		r := &types.ComparisonExpr{Op: n.Op, Left: reduceAdditive(n.Left), Right: reduceAdditive(n.Right), Position: n.Position}
		return fold[types.Comparison](r, r.Left, r.Right)
	case types.Additive:
		return reduceAdditive(n)
	}
	return n
}

func reduceAdditive(n types.Additive) types.Additive {
	switch n := n.(type) {
	case *types.AdditiveExpr:
		r := &types.AdditiveExpr{Op: n.Op, Left: reduceAdditive(n.Left), Right: reduceFactor(n.Right), Position: n.Position}
		return fold[types.Additive](r, r.Left, r.Right)
	case types.Factor:
		return reduceFactor(n)
	}
	return n
}

func reduceFactor(n types.Factor) types.Factor {
	switch n := n.(type) {
	case *types.FactorExpr:
		r := &types.FactorExpr{Op: n.Op, Left: reduceFactor(n.Left), Right: reduceUnary(n.Right), Position: n.Position}
		return fold[types.Factor](r, r.Left, r.Right)
	case types.Unary:
		return reduceUnary(n)
	}
	return n
}

func reduceUnary(n types.Unary) types.Unary {
	switch n := n.(type) {
	case *types.UnaryExpr:
		r := &types.UnaryExpr{Op: n.Op, Operand: reducePrimary(n.Operand), Position: n.Position}
		return fold[types.Unary](r, r.Operand)
	case types.Primary:
		return reducePrimary(n)
	}
	return n
}

func reducePrimary(n types.Primary) types.Primary {
	g, ok := n.(*types.Group)
	if !ok {
		return n
	}
	inner := reduceLogical(g.Inner)
	if lit, ok := inner.(*types.Literal); ok {
		return lit
	}
	return &types.Group{Inner: inner, Position: g.Position}
}

// fold replaces n by a literal when all children are literals and n
// evaluates without error to a value that can be written as a literal.
func fold[T types.Logical](n T, children ...types.Logical) T {
	for _, c := range children {
		if _, ok := c.(*types.Literal); !ok {
			return n
		}
	}
	v, err := folder.evalLogical(n, &scope{ctx: emptyContext})
	if err != nil || !finite(v) {
		return n
	}
	var lit types.Logical = &types.Literal{Value: v, Position: n.Pos()}
	return lit.(T)
}

func finite(v types.Value) bool {
	f, ok := v.(types.Float)
	return !ok || !math.IsInf(float64(f), 0) && !math.IsNaN(float64(f))
}
