package types

import (
	"fmt"
	"strings"
)

// Operator identifies the operator of a binary or unary node.
type Operator uint8

const (
	OpAnd Operator = iota + 1
	OpOr
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNot
	OpNeg
)

var operatorSymbols = [...]string{
	OpAnd:          "and",
	OpOr:           "or",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAdd:          "+",
	OpSub:          "-",
	OpMul:          "*",
	OpDiv:          "/",
	OpMod:          "%",
	OpNot:          "not",
	OpNeg:          "-",
}

// String returns the operator as written in rule text.
func (o Operator) String() string {
	if o > 0 && int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return "?"
}

// The AST is organised as one sealed interface per precedence level, from
// the loosest-binding Logical down to Primary. Every level embeds the one
// above it, so a node of a tighter level can stand wherever a looser one is
// expected, while a binary node only fits its own level and the ones above.
// A Group is the only way to put a looser expression below a tighter one.
//
// Nodes are immutable after parsing and own their children.
type (
	// Logical is the root level: and, or.
	Logical interface {
		// Pos returns the byte offset of the node in the rule text.
		Pos() int
		// String renders the node in a canonical, fully parenthesised form.
		String() string
		logical()
	}

	// Equality is the ==, != level.
	Equality interface {
		Logical
		equality()
	}

	// Comparison is the <, <=, >, >= level.
	Comparison interface {
		Equality
		comparison()
	}

	// Additive is the +, - level.
	Additive interface {
		Comparison
		additive()
	}

	// Factor is the *, /, % level.
	Factor interface {
		Additive
		factor()
	}

	// Unary is the prefix not, - level.
	Unary interface {
		Factor
		unary()
	}

	// Primary is a literal, symbol, attribute path or group.
	Primary interface {
		Unary
		primary()
	}
)

type logicalNode struct{}
type equalityNode struct{ logicalNode }
type comparisonNode struct{ equalityNode }
type additiveNode struct{ comparisonNode }
type factorNode struct{ additiveNode }
type unaryNode struct{ factorNode }
type primaryNode struct{ unaryNode }

func (logicalNode) logical()       {}
func (equalityNode) equality()     {}
func (comparisonNode) comparison() {}
func (additiveNode) additive()     {}
func (factorNode) factor()         {}
func (unaryNode) unary()           {}
func (primaryNode) primary()       {}

// LogicalExpr is a left-associative and/or chain link.
type LogicalExpr struct {
	logicalNode
	Op       Operator
	Left     Logical
	Right    Equality
	Position int
}

// EqualityExpr compares two operands for (in)equality.
type EqualityExpr struct {
	equalityNode
	Op       Operator
	Left     Comparison
	Right    Comparison
	Position int
}

// ComparisonExpr orders two numeric operands.
type ComparisonExpr struct {
	comparisonNode
	Op       Operator
	Left     Additive
	Right    Additive
	Position int
}

// AdditiveExpr adds or subtracts.
type AdditiveExpr struct {
	additiveNode
	Op       Operator
	Left     Additive
	Right    Factor
	Position int
}

// FactorExpr multiplies, divides or takes a remainder.
type FactorExpr struct {
	factorNode
	Op       Operator
	Left     Factor
	Right    Unary
	Position int
}

// UnaryExpr negates its operand, logically or arithmetically.
type UnaryExpr struct {
	unaryNode
	Op       Operator
	Operand  Primary
	Position int
}

// Literal is a constant value.
type Literal struct {
	primaryNode
	Value    Value
	Position int
}

// Symbol is a bare identifier, resolved through the context then the record.
type Symbol struct {
	primaryNode
	Name     string
	Position int
}

// AttributePath is a dotted identifier sequence such as a.b.c.
type AttributePath struct {
	primaryNode
	Segments []string
	Position int
}

// Group is a parenthesised sub-expression.
type Group struct {
	primaryNode
	Inner    Logical
	Position int
}

func (e *LogicalExpr) Pos() int    { return e.Position }
func (e *EqualityExpr) Pos() int   { return e.Position }
func (e *ComparisonExpr) Pos() int { return e.Position }
func (e *AdditiveExpr) Pos() int   { return e.Position }
func (e *FactorExpr) Pos() int     { return e.Position }
func (e *UnaryExpr) Pos() int      { return e.Position }
func (e *Literal) Pos() int        { return e.Position }
func (e *Symbol) Pos() int         { return e.Position }
func (e *AttributePath) Pos() int  { return e.Position }
func (e *Group) Pos() int          { return e.Position }

func binaryString(op Operator, l, r Logical) string {
	return fmt.Sprintf("(%s %s %s)", l, op, r)
}

func (e *LogicalExpr) String() string    { return binaryString(e.Op, e.Left, e.Right) }
func (e *EqualityExpr) String() string   { return binaryString(e.Op, e.Left, e.Right) }
func (e *ComparisonExpr) String() string { return binaryString(e.Op, e.Left, e.Right) }
func (e *AdditiveExpr) String() string   { return binaryString(e.Op, e.Left, e.Right) }
func (e *FactorExpr) String() string     { return binaryString(e.Op, e.Left, e.Right) }

func (e *UnaryExpr) String() string {
	if e.Op == OpNot {
		return fmt.Sprintf("(not %s)", e.Operand)
	}
	return fmt.Sprintf("(-%s)", e.Operand)
}

func (e *Literal) String() string       { return e.Value.String() }
func (e *Symbol) String() string        { return e.Name }
func (e *AttributePath) String() string { return strings.Join(e.Segments, ".") }
func (e *Group) String() string         { return e.Inner.String() }

// Children returns the direct sub-nodes of n, left to right.
func Children(n Logical) []Logical {
	switch n := n.(type) {
	case *LogicalExpr:
		return []Logical{n.Left, n.Right}
	case *EqualityExpr:
		return []Logical{n.Left, n.Right}
	case *ComparisonExpr:
		return []Logical{n.Left, n.Right}
	case *AdditiveExpr:
		return []Logical{n.Left, n.Right}
	case *FactorExpr:
		return []Logical{n.Left, n.Right}
	case *UnaryExpr:
		return []Logical{n.Operand}
	case *Group:
		return []Logical{n.Inner}
	default:
		return nil
	}
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the current node.
func Walk(n Logical, fn func(Logical) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
