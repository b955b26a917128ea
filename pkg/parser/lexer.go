package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/gorule/pkg/types"
)

const eof = -1

// Lexer converts rule text into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. After an error it returns a single TokenError and then
// TokenEOF.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// Check for two-character symbols first (e.g., ==, !=, <=)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	// Check for single-character symbols
	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	// String literals (single or double quoted)
	if ch == '"' || ch == '\'' {
		l.ignore()
		return l.scanString(ch)
	}

	// Number literals
	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}

	// Names, attribute paths and keywords
	if isNameStart(ch) {
		l.backup()
		return l.scanName()
	}

	return l.error(types.ErrUnexpectedChar, fmt.Sprintf("unexpected character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// Tokens lexes the whole input. It stops at the first error.
func (l *Lexer) Tokens() ([]Token, error) {
	var tokens []Token
	for {
		t := l.Next()
		switch t.Type {
		case TokenError:
			return tokens, l.err
		case TokenEOF:
			return tokens, nil
		}
		tokens = append(tokens, t)
	}
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed.
// Supports both single and double quotes with escape sequences.
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			// Consume escaped character
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, "unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?
//
// Leading zeros are accepted here and rejected by the literal parser, so the
// error names the whole literal.
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	// Decimal part
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrInvalidNumber, "invalid numeric literal")
		}
	}

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrInvalidNumber, "invalid numeric literal")
		}
	}

	// A number glued to a name, such as 1abc, is not two tokens.
	if l.acceptAll(isNameChar) {
		return l.error(types.ErrInvalidNumber, "invalid numeric literal")
	}

	return l.newToken(TokenNumber)
}

// scanName reads a name, keyword or dotted attribute path from the current
// position. Names contain letters, digits and underscores and do not start
// with a digit. Path segments are joined by '.' without whitespace.
func (l *Lexer) scanName() Token {
	l.acceptAll(isNameChar)
	segments := 1

	for l.acceptRune('.') {
		if !l.accept(isNameStart) {
			l.acceptAll(isNameChar)
			return l.error(types.ErrSyntaxError, "invalid attribute path")
		}
		l.acceptAll(isNameChar)
		segments++
	}

	if segments == 1 {
		t := l.newToken(TokenName)
		if tt := lookupKeyword(t.Value); tt > 0 {
			t.Type = tt
		}
		return t
	}

	path := l.input[l.start:l.current]
	for _, seg := range strings.Split(path, ".") {
		if lookupKeyword(seg) > 0 {
			return l.error(types.ErrSyntaxError,
				fmt.Sprintf("keyword '%s' cannot be used as an attribute name", seg))
		}
	}
	return l.newToken(TokenPath)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = types.NewRuleSyntaxError(code, message, t.Value, t.Position).WithSource(l.input)
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameChar(r rune) bool {
	return isNameStart(r) || isDigit(r)
}
