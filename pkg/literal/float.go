// Package literal parses the textual forms of literal values: numbers,
// ISO-8601 durations, datetimes and regular expressions.
//
// Every parser reports malformed input with a *types.Error whose code names
// the literal kind (ErrFloatSyntax, ErrTimedeltaSyntax, ErrDatetimeSyntax,
// ErrRegexSyntax). The regular expressions used internally are compiled once
// at package initialisation and are safe for concurrent use.
package literal

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sandrolain/gorule/pkg/types"
)

var decimalRe = regexp.MustCompile(`^[+-]?([0-9]+)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

const (
	msgInvalidFloat = "invalid floating point literal"
	msgLeadingZeros = "invalid floating point literal (leading zeros in decimal literals are not permitted)"
	msgOutOfRange   = "invalid floating point literal (out of range)"
)

// ParseFloat parses a decimal literal such as 42, 3.14 or 1e-3.
// Redundant leading zeros in the integer part (007, 00.5) are rejected.
func ParseFloat(s string) (float64, error) {
	if err := checkDecimal(s); err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, types.NewLiteralError(types.ErrFloatSyntax, msgOutOfRange, s).WithCause(err)
	}
	return f, nil
}

// ParseNumber parses a decimal literal into the narrowest Value: an Integer
// when the text has no fraction or exponent and fits in 64 bits, otherwise a
// Float.
func ParseNumber(s string) (types.Value, error) {
	if err := checkDecimal(s); err != nil {
		return nil, err
	}
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return types.Integer(i), nil
		}
		if !errors.Is(err, strconv.ErrRange) {
			return nil, types.NewLiteralError(types.ErrFloatSyntax, msgInvalidFloat, s).WithCause(err)
		}
	}
	f, err := ParseFloat(s)
	if err != nil {
		return nil, err
	}
	return types.Float(f), nil
}

func checkDecimal(s string) error {
	m := decimalRe.FindStringSubmatch(s)
	if m == nil {
		return types.NewLiteralError(types.ErrFloatSyntax, msgInvalidFloat, s)
	}
	if intPart := m[1]; len(intPart) > 1 && intPart[0] == '0' {
		return types.NewLiteralError(types.ErrFloatSyntax, msgLeadingZeros, s)
	}
	return nil
}
