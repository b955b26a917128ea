package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/sandrolain/gorule/pkg/literal"
	"github.com/sandrolain/gorule/pkg/types"
)

// Parser implements a recursive descent parser for rules. Each precedence
// level has its own parse function returning that level's node family.
type Parser struct {
	lexer   *Lexer
	current Token
	depth   int
	opts    CompileOptions
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire rule and returns the expression.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrUnexpectedEnd, "empty expression")
	}

	root, err := p.parseLogical()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.error(types.ErrSyntaxError, "unexpected token")
	}

	return types.NewExpression(root, p.lexer.input), nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(types.ErrExpectedToken, fmt.Sprintf("expected %s but got %s", tt, p.current.Type))
	}
	p.advance()
	return nil
}

// error builds a syntax error at the current token. A pending lexer error
// always takes precedence, since it explains why the token stream stopped.
func (p *Parser) error(code types.ErrorCode, message string) error {
	if err := p.lexer.Error(); err != nil {
		return err
	}
	var token string
	switch p.current.Type {
	case TokenEOF:
		if code == types.ErrSyntaxError {
			code = types.ErrUnexpectedEnd
		}
	case TokenString:
		token = strconv.Quote(p.current.Value)
	default:
		token = p.current.Value
	}
	return types.NewRuleSyntaxError(code, message, token, p.current.Position).WithSource(p.lexer.input)
}

// logical := equality (("and" | "or") equality)*
func (p *Parser) parseLogical() (types.Logical, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	var node types.Logical = left
	for p.current.Type == TokenAnd || p.current.Type == TokenOr {
		op, pos := logicalOp(p.current.Type), p.current.Position
		p.advance()

		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		node = &types.LogicalExpr{Op: op, Left: node, Right: right, Position: pos}
	}
	return node, nil
}

// equality := comparison (("==" | "!=") comparison)?
func (p *Parser) parseEquality() (types.Equality, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	op, ok := equalityOps[p.current.Type]
	if !ok {
		return left, nil
	}
	pos := p.current.Position
	p.advance()

	right, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if _, chained := equalityOps[p.current.Type]; chained {
		return nil, p.error(types.ErrSyntaxError, "equality operators cannot be chained")
	}
	return &types.EqualityExpr{Op: op, Left: left, Right: right, Position: pos}, nil
}

// comparison := additive (("<" | "<=" | ">" | ">=") additive)?
func (p *Parser) parseComparison() (types.Comparison, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	op, ok := comparisonOps[p.current.Type]
	if !ok {
		return left, nil
	}
	pos := p.current.Position
	p.advance()

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, chained := comparisonOps[p.current.Type]; chained {
		return nil, p.error(types.ErrSyntaxError, "comparison operators cannot be chained")
	}
	return &types.ComparisonExpr{Op: op, Left: left, Right: right, Position: pos}, nil
}

// additive := factor (("+" | "-") factor)*
func (p *Parser) parseAdditive() (types.Additive, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	var node types.Additive = left
	for {
		op, ok := additiveOps[p.current.Type]
		if !ok {
			return node, nil
		}
		pos := p.current.Position
		p.advance()

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		node = &types.AdditiveExpr{Op: op, Left: node, Right: right, Position: pos}
	}
}

// factor := unary (("*" | "/" | "%") unary)*
func (p *Parser) parseFactor() (types.Factor, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	var node types.Factor = left
	for {
		op, ok := factorOps[p.current.Type]
		if !ok {
			return node, nil
		}
		pos := p.current.Position
		p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node = &types.FactorExpr{Op: op, Left: node, Right: right, Position: pos}
	}
}

// unary := ("not" | "-")? primary
func (p *Parser) parseUnary() (types.Unary, error) {
	var op types.Operator
	switch p.current.Type {
	case TokenNot:
		op = types.OpNot
	case TokenMinus:
		op = types.OpNeg
	default:
		return p.parsePrimary()
	}
	pos := p.current.Position
	p.advance()

	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &types.UnaryExpr{Op: op, Operand: operand, Position: pos}, nil
}

// primary := NUMBER | "true" | "false" | STRING | NAME | PATH | "(" logical ")"
func (p *Parser) parsePrimary() (types.Primary, error) {
	tok := p.current

	switch tok.Type {
	case TokenNumber:
		return p.parseNumber()

	case TokenString:
		s, err := unescapeString(tok.Value)
		if err != nil {
			return nil, p.error(types.ErrUnsupportedEscape, err.Error())
		}
		p.advance()
		return &types.Literal{Value: types.String(s), Position: tok.Position}, nil

	case TokenBoolean:
		p.advance()
		return &types.Literal{Value: types.Boolean(tok.Value == "true"), Position: tok.Position}, nil

	case TokenName:
		p.advance()
		return &types.Symbol{Name: tok.Value, Position: tok.Position}, nil

	case TokenPath:
		p.advance()
		return &types.AttributePath{Segments: strings.Split(tok.Value, "."), Position: tok.Position}, nil

	case TokenParenOpen:
		return p.parseGroup()

	case TokenEOF:
		return nil, p.error(types.ErrUnexpectedEnd, "unexpected end of expression")

	default:
		return nil, p.error(types.ErrSyntaxError, "unexpected token")
	}
}

// parseGroup parses a parenthesised sub-expression.
func (p *Parser) parseGroup() (types.Primary, error) {
	pos := p.current.Position
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrMaxDepth, fmt.Sprintf("maximum nesting depth of %d exceeded", p.opts.MaxDepth))
	}
	p.advance()

	inner, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	p.depth--
	return &types.Group{Inner: inner, Position: pos}, nil
}

// parseNumber converts a numeric token through the literal parser, so
// malformed literals surface as FloatSyntaxError at compile time.
func (p *Parser) parseNumber() (types.Primary, error) {
	tok := p.current
	v, err := literal.ParseNumber(tok.Value)
	if err != nil {
		var lerr *types.Error
		if errors.As(err, &lerr) {
			lerr.Position = tok.Position
			lerr.Token = tok.Value
			lerr.WithSource(p.lexer.input)
		}
		return nil, err
	}
	p.advance()
	return &types.Literal{Value: v, Position: tok.Position}, nil
}

var (
	equalityOps = map[TokenType]types.Operator{
		TokenEqual:    types.OpEqual,
		TokenNotEqual: types.OpNotEqual,
	}
	comparisonOps = map[TokenType]types.Operator{
		TokenLess:         types.OpLess,
		TokenLessEqual:    types.OpLessEqual,
		TokenGreater:      types.OpGreater,
		TokenGreaterEqual: types.OpGreaterEqual,
	}
	additiveOps = map[TokenType]types.Operator{
		TokenPlus:  types.OpAdd,
		TokenMinus: types.OpSub,
	}
	factorOps = map[TokenType]types.Operator{
		TokenMult: types.OpMul,
		TokenDiv:  types.OpDiv,
		TokenMod:  types.OpMod,
	}
)

func logicalOp(tt TokenType) types.Operator {
	if tt == TokenAnd {
		return types.OpAnd
	}
	return types.OpOr
}

// unescapeString processes escape sequences in a string literal.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++ // Skip backslash
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case '\\', '"', '\'', '/':
			result.WriteByte(s[i])
		case 'u':
			r, n, err := decodeUnicodeEscape(s[i+1:])
			if err != nil {
				return "", err
			}
			result.WriteRune(r)
			i += n
		default:
			return "", fmt.Errorf("unsupported escape sequence \\%c", s[i])
		}
	}

	return result.String(), nil
}

// decodeUnicodeEscape decodes the XXXX of a \uXXXX escape, joining a
// following low surrogate when s starts with a high one. It returns the
// rune and the number of bytes consumed.
func decodeUnicodeEscape(s string) (rune, int, error) {
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("invalid \\u escape: not enough characters")
	}
	cp, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid \\u escape: %s", s[:4])
	}
	r := rune(cp)
	if !utf16.IsSurrogate(r) || len(s) < 10 || s[4:6] != `\u` {
		return r, 4, nil
	}
	low, err := strconv.ParseUint(s[6:10], 16, 16)
	if err != nil {
		return r, 4, nil
	}
	if pair := utf16.DecodeRune(r, rune(low)); pair != unicode.ReplacementChar {
		return pair, 10, nil
	}
	return r, 4, nil
}
