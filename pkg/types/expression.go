// Package types defines the core type system for gorule.
//
// This package contains type definitions for:
//   - Value: scalar evaluation results (Boolean, Float, Integer, String)
//   - Node: record trees built from host data at the boundary
//   - DataType: static types used for declared-type validation
//   - Expression and the per-precedence-level AST node families
//   - Error types: structured errors with codes
package types

import (
	"slices"
	"strings"
)

// Expression represents a compiled rule.
//
// An Expression can be evaluated many times against different records by
// passing it to [evaluator.Evaluator.Eval]. It is never modified after
// construction and is safe for concurrent use by multiple goroutines.
type Expression struct {
	root   Logical
	source string
}

// NewExpression creates a new Expression from an AST.
func NewExpression(root Logical, source string) *Expression {
	return &Expression{
		root:   root,
		source: source,
	}
}

// Root returns the root node of the expression.
func (e *Expression) Root() Logical {
	return e.root
}

// Source returns the original rule text.
func (e *Expression) Source() string {
	return e.source
}

// References returns the sorted, de-duplicated symbol names and dotted
// attribute paths the expression reads.
func (e *Expression) References() []string {
	var refs []string
	Walk(e.root, func(n Logical) bool {
		switch n := n.(type) {
		case *Symbol:
			refs = append(refs, n.Name)
		case *AttributePath:
			refs = append(refs, strings.Join(n.Segments, "."))
		}
		return true
	})
	slices.Sort(refs)
	return slices.Compact(refs)
}

// String returns the original rule text.
func (e *Expression) String() string {
	return e.source
}
