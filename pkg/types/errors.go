package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the kind of an engine error.
type ErrorCode string

// Error codes. The leading letter names the family.
const (
	// S01xx: lexical errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrUnsupportedEscape ErrorCode = "S0102"
	ErrInvalidNumber     ErrorCode = "S0103"
	ErrUnexpectedChar    ErrorCode = "S0104"

	// S02xx: grammar errors
	ErrSyntaxError   ErrorCode = "S0201"
	ErrExpectedToken ErrorCode = "S0202"
	ErrUnexpectedEnd ErrorCode = "S0203"
	ErrMaxDepth      ErrorCode = "S0204"

	// L01xx: malformed literal values
	ErrFloatSyntax     ErrorCode = "L0101"
	ErrDatetimeSyntax  ErrorCode = "L0102"
	ErrTimedeltaSyntax ErrorCode = "L0103"
	ErrRegexSyntax     ErrorCode = "L0104"

	// R01xx: resolution errors
	ErrSymbolResolution    ErrorCode = "R0101"
	ErrAttributeResolution ErrorCode = "R0102"
	ErrLookup              ErrorCode = "R0103"

	// T01xx: declared type mismatches
	ErrSymbolType    ErrorCode = "T0101"
	ErrAttributeType ErrorCode = "T0102"

	// F01xx: builtin failures
	ErrFunctionCall ErrorCode = "F0101"

	// E01xx: evaluation errors
	ErrEvaluation       ErrorCode = "E0101"
	ErrTypeMismatch     ErrorCode = "E0102"
	ErrDivisionByZero   ErrorCode = "E0103"
	ErrUnsupportedValue ErrorCode = "E0104"
)

// Kind returns the taxonomy name of the code, e.g. "SymbolResolutionError".
func (c ErrorCode) Kind() string {
	switch {
	case strings.HasPrefix(string(c), "S01"):
		return "SyntaxError"
	case strings.HasPrefix(string(c), "S02"):
		return "RuleSyntaxError"
	}
	switch c {
	case ErrFloatSyntax:
		return "FloatSyntaxError"
	case ErrDatetimeSyntax:
		return "DatetimeSyntaxError"
	case ErrTimedeltaSyntax:
		return "TimedeltaSyntaxError"
	case ErrRegexSyntax:
		return "RegexSyntaxError"
	case ErrSymbolResolution:
		return "SymbolResolutionError"
	case ErrAttributeResolution:
		return "AttributeResolutionError"
	case ErrLookup:
		return "LookupError"
	case ErrSymbolType:
		return "SymbolTypeError"
	case ErrAttributeType:
		return "AttributeTypeError"
	case ErrFunctionCall:
		return "FunctionCallError"
	default:
		return "EvaluationError"
	}
}

// IsSyntax reports whether the code belongs to a parse-time family.
func (c ErrorCode) IsSyntax() bool {
	return strings.HasPrefix(string(c), "S") || strings.HasPrefix(string(c), "L")
}

// Details holds the facts needed to localize and explain a failure.
// Which fields are set depends on the error kind.
type Details struct {
	Name       string // symbol, attribute, builtin or literal text
	Scope      string // enclosing object path or container
	Suggestion string // near-miss name, if any
	Expected   string // expected type
	Actual     string // actual type
}

// Error represents a structured engine error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int // byte offset into the rule text, -1 if not applicable
	Line     int // 1-based, 0 if unknown
	Column   int // 1-based, 0 if unknown
	Token    string
	Details  Details
	Err      error
}

// NewError creates a new error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	switch {
	case e.Line > 0:
		fmt.Fprintf(&sb, " at line %d, column %d", e.Line, e.Column)
	case e.Position >= 0:
		fmt.Fprintf(&sb, " at position %d", e.Position)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Details.Suggestion != "" {
		fmt.Fprintf(&sb, " (did you mean '%s'?)", e.Details.Suggestion)
	}
	return sb.String()
}

// Kind returns the taxonomy name of the error.
func (e *Error) Kind() string {
	return e.Code.Kind()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithSuggestion records a near-miss name.
func (e *Error) WithSuggestion(s string) *Error {
	e.Details.Suggestion = s
	return e
}

// WithSource fills Line and Column from Position within src.
func (e *Error) WithSource(src string) *Error {
	if e.Position < 0 || e.Position > len(src) {
		return e
	}
	e.Line = 1 + strings.Count(src[:e.Position], "\n")
	e.Column = 1 + len([]rune(src[strings.LastIndexByte(src[:e.Position], '\n')+1:e.Position]))
	return e
}

// HasCode reports whether any error in err's chain is an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NewRuleSyntaxError reports a grammar violation at a token. An empty token
// means the input ended early and is rendered as EOF.
func NewRuleSyntaxError(code ErrorCode, message, token string, position int) *Error {
	at := token
	if at == "" {
		at = "EOF"
	}
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf("%s at: %s", message, at),
		Position: position,
		Token:    token,
	}
}

// NewLiteralError reports a malformed literal value.
func NewLiteralError(code ErrorCode, message, value string) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf("%s: %s", message, value),
		Position: -1,
		Details:  Details{Name: value},
	}
}

// NewSymbolResolutionError reports an unresolved symbol. scope is optional.
func NewSymbolResolutionError(name, scope, suggestion string) *Error {
	msg := fmt.Sprintf("symbol '%s' not found", name)
	if scope != "" {
		msg = fmt.Sprintf("symbol '%s' not found in %s", name, scope)
	}
	return &Error{
		Code:     ErrSymbolResolution,
		Message:  msg,
		Position: -1,
		Details:  Details{Name: name, Scope: scope, Suggestion: suggestion},
	}
}

// NewAttributeResolutionError reports a missing key while traversing object.
func NewAttributeResolutionError(attribute, object, suggestion string) *Error {
	return &Error{
		Code:     ErrAttributeResolution,
		Message:  fmt.Sprintf("attribute '%s' not found on '%s'", attribute, object),
		Position: -1,
		Details:  Details{Name: attribute, Scope: object, Suggestion: suggestion},
	}
}

// NewLookupError reports an item that cannot be looked up in a container.
func NewLookupError(container, item string) *Error {
	return &Error{
		Code:     ErrLookup,
		Message:  fmt.Sprintf("cannot look up '%s' in %s", item, container),
		Position: -1,
		Details:  Details{Name: item, Scope: container},
	}
}

// NewSymbolTypeError reports a symbol whose value disagrees with its
// declared type.
func NewSymbolTypeError(name string, is, expected DataType) *Error {
	return &Error{
		Code: ErrSymbolType,
		Message: fmt.Sprintf("symbol '%s' resolved to incorrect datatype (is: %s, expected: %s)",
			name, is, expected),
		Position: -1,
		Details:  Details{Name: name, Actual: is.String(), Expected: expected.String()},
	}
}

// NewAttributeTypeError reports an attribute whose value has the wrong type.
func NewAttributeTypeError(attribute, object string, is, expected DataType) *Error {
	return &Error{
		Code: ErrAttributeType,
		Message: fmt.Sprintf("attribute '%s' resolved to incorrect datatype (is: %s, expected: %s)",
			attribute, is, expected),
		Position: -1,
		Details:  Details{Name: attribute, Scope: object, Actual: is.String(), Expected: expected.String()},
	}
}

// NewFunctionCallError reports a builtin that rejected its input.
func NewFunctionCallError(function, message string) *Error {
	return &Error{
		Code:     ErrFunctionCall,
		Message:  fmt.Sprintf("%s: %s", function, message),
		Position: -1,
		Details:  Details{Name: function},
	}
}

// NewEvaluationError reports a generic evaluation failure.
func NewEvaluationError(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: -1,
	}
}
