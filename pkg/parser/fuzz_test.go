package parser_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/sandrolain/gorule/pkg/parser"
	"github.com/sandrolain/gorule/pkg/types"
)

func FuzzParser(f *testing.F) {
	seeds := []string{
		`age == 1`,
		`age >= required_age and not attribution.unassigned`,
		`provider.language.language_code == "en"`,
		`name.as_lower == 'hank'`,
		`(1 + 2) * 3 % 4 / 5 - -6`,
		`5.0 % 2 == 1e2`,
		`"é😀"`,
		`1abc == 1`,
		`a == b == c`,
		``,
		`(`,
		`'unterminated`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		expr, err := parser.Compile(input)
		if err != nil {
			if expr != nil {
				t.Fatalf("partial expression returned with error: %v", err)
			}
			var perr *types.Error
			if !errors.As(err, &perr) || !perr.Code.IsSyntax() {
				t.Fatalf("non-syntax error from parser: %v", err)
			}
			return
		}
		// The canonical form must parse to itself, with the same literals.
		canonical := expr.Root().String()
		again, err := parser.Compile(canonical)
		if err != nil {
			t.Fatalf("canonical form %q of %q does not parse: %v", canonical, input, err)
		}
		if got := again.Root().String(); got != canonical {
			t.Fatalf("canonical form not stable: %q -> %q", canonical, got)
		}
		if want, got := literalKinds(expr.Root()), literalKinds(again.Root()); !slices.Equal(got, want) {
			t.Fatalf("literal kinds of %q changed: %v -> %v", canonical, want, got)
		}
	})
}
