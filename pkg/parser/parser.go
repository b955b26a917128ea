// Package parser implements the gorule expression parser.
//
// The parser is a hand-written recursive descent parser with one function
// per precedence level, from the loosest binding to the tightest:
//
//	logical    := equality (("and" | "or") equality)*
//	equality   := comparison (("==" | "!=") comparison)?
//	comparison := additive (("<" | "<=" | ">" | ">=") additive)?
//	additive   := factor (("+" | "-") factor)*
//	factor     := unary (("*" | "/" | "%") unary)*
//	unary      := ("not" | "-")? primary
//	primary    := NUMBER | "true" | "false" | STRING | NAME | PATH | "(" logical ")"
//
// # Example
//
//	expr, err := parser.Parse("age >= required_age and not attribution.unassigned")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root := expr.Root()
//
// Errors are *types.Error values carrying the offending token, its byte
// position and line/column, or "EOF" when the input ended early. No partial
// tree is ever returned.
package parser

import (
	"github.com/sandrolain/gorule/pkg/types"
)

// Parse parses a rule and returns the compiled Expression.
//
// Example:
//
//	expr, err := parser.Parse("age == 1")
//	if err != nil {
//	    var perr *types.Error
//	    if errors.As(err, &perr) {
//	        fmt.Printf("Parse error at line %d, column %d\n", perr.Line, perr.Column)
//	    }
//	    return
//	}
func Parse(text string) (*types.Expression, error) {
	p := NewParser(text)
	return p.Parse()
}

// Compile is Parse with options.
func Compile(text string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(text, opts...)
	return p.Parse()
}

// IsValid reports whether text parses. Nothing is evaluated.
func IsValid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits the nesting of parenthesised groups.
	MaxDepth int
}

// DefaultMaxDepth is the group nesting limit used when none is configured.
const DefaultMaxDepth = 100

// WithMaxDepth sets the maximum group nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
