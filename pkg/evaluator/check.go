package evaluator

import (
	"fmt"
	"strings"

	"github.com/sandrolain/gorule/pkg/functions"
	"github.com/sandrolain/gorule/pkg/types"
)

// TypeResolver supplies the static types of symbols and dotted attribute
// paths. *Context implements it. Unknown names resolve to Undefined, which
// is compatible with everything.
type TypeResolver interface {
	ResolveType(name string) types.DataType
}

// Check infers the type of every node of expr without evaluating it and
// reports the first operator whose operands can never be valid. Names the
// resolver does not know pass unchecked, so a nil resolver only finds
// conflicts between literals and builtin results.
func Check(expr *types.Expression, r TypeResolver) (types.DataType, error) {
	if expr == nil || expr.Root() == nil {
		return types.TypeUndefined, fmt.Errorf("invalid expression")
	}
	if r == nil {
		r = emptyContext
	}
	c := &checker{resolver: r, source: expr.Source()}
	return c.infer(expr.Root())
}

type checker struct {
	resolver TypeResolver
	source   string
}

func (c *checker) infer(n types.Logical) (types.DataType, error) {
	switch n := n.(type) {
	case *types.LogicalExpr:
		return c.binary(n, n.Op, n.Left, n.Right, types.TypeBoolean, types.TypeBoolean)
	case *types.EqualityExpr:
		return c.equality(n)
	case *types.ComparisonExpr:
		return c.binary(n, n.Op, n.Left, n.Right, types.TypeFloat, types.TypeBoolean)
	case *types.AdditiveExpr:
		return c.binary(n, n.Op, n.Left, n.Right, types.TypeFloat, types.TypeFloat)
	case *types.FactorExpr:
		return c.binary(n, n.Op, n.Left, n.Right, types.TypeFloat, types.TypeFloat)
	case *types.UnaryExpr:
		want := types.TypeFloat
		if n.Op == types.OpNot {
			want = types.TypeBoolean
		}
		t, err := c.infer(n.Operand)
		if err != nil {
			return types.TypeUndefined, err
		}
		if err := c.expect(n, n.Op, n.Operand, t, want); err != nil {
			return types.TypeUndefined, err
		}
		return want, nil
	case *types.Literal:
		return types.FromValue(n.Value), nil
	case *types.Symbol:
		return c.resolver.ResolveType(n.Name), nil
	case *types.AttributePath:
		return c.path(n, n.Segments)
	case *types.Group:
		return c.infer(n.Inner)
	}
	return types.TypeUndefined, unknownNode(n)
}

// binary checks that both operands are compatible with operand and yields
// result.
func (c *checker) binary(n types.Logical, op types.Operator, l, r types.Logical, operand, result types.DataType) (types.DataType, error) {
	for _, side := range []types.Logical{l, r} {
		t, err := c.infer(side)
		if err != nil {
			return types.TypeUndefined, err
		}
		if err := c.expect(n, op, side, t, operand); err != nil {
			return types.TypeUndefined, err
		}
	}
	return result, nil
}

func (c *checker) equality(n *types.EqualityExpr) (types.DataType, error) {
	lt, err := c.infer(n.Left)
	if err != nil {
		return types.TypeUndefined, err
	}
	rt, err := c.infer(n.Right)
	if err != nil {
		return types.TypeUndefined, err
	}
	if !types.IsCompatible(lt, rt) || !equatable(lt) || !equatable(rt) {
		err := types.NewEvaluationError(types.ErrTypeMismatch,
			fmt.Sprintf("cannot compare different types (%s and %s) for operator '%s'", lt, rt, n.Op))
		err.Details.Expected = lt.String()
		err.Details.Actual = rt.String()
		return types.TypeUndefined, c.locate(err, n)
	}
	return types.TypeBoolean, nil
}

// expect reports operand when its type t cannot satisfy want. Declared
// symbols and attributes are blamed by name.
func (c *checker) expect(n types.Logical, op types.Operator, operand types.Logical, t, want types.DataType) error {
	if types.IsCompatible(t, want) {
		return nil
	}
	var err *types.Error
	switch o := unwrapGroups(operand).(type) {
	case *types.Symbol:
		err = types.NewSymbolTypeError(o.Name, t, want)
	case *types.AttributePath:
		if _, builtin := functions.Lookup(o.Segments[len(o.Segments)-1]); !builtin {
			err = types.NewAttributeTypeError(strings.Join(o.Segments, "."),
				strings.Join(o.Segments[:len(o.Segments)-1], "."), t, want)
		}
	}
	if err == nil {
		err = types.NewEvaluationError(types.ErrTypeMismatch,
			fmt.Sprintf("operator '%s' requires %s operands, got %s", op, want, t))
		err.Details.Expected = want.String()
		err.Details.Actual = t.String()
	}
	return c.locate(err, n)
}

// path infers the type of a dotted path, applying builtins from the tail.
func (c *checker) path(n *types.AttributePath, segments []string) (types.DataType, error) {
	if len(segments) > 1 {
		last := segments[len(segments)-1]
		if b, ok := functions.Lookup(last); ok {
			arg, err := c.path(n, segments[:len(segments)-1])
			if err != nil {
				return types.TypeUndefined, err
			}
			if !types.IsCompatible(arg, b.ArgType()) {
				err := types.NewFunctionCallError(b.Name, fmt.Sprintf("expected %s, got %s", b.ArgType(), arg))
				err.Details.Expected = b.ArgType().String()
				err.Details.Actual = arg.String()
				return types.TypeUndefined, c.locate(err, n)
			}
			return b.ReturnType(), nil
		}
	}
	return c.resolver.ResolveType(strings.Join(segments, ".")), nil
}

func (c *checker) locate(err *types.Error, n types.Logical) error {
	err.Position = n.Pos()
	return err.WithSource(c.source)
}

// equatable reports whether == may ever succeed on a value of type t.
func equatable(t types.DataType) bool {
	return t.IsScalar() || t.Kind() == types.UndefinedKind
}

func unwrapGroups(n types.Logical) types.Logical {
	for {
		g, ok := n.(*types.Group)
		if !ok {
			return n
		}
		n = g.Inner
	}
}
