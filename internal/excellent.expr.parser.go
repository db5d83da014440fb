package internal

import (
	"errors"
	"fmt"
	"strings"
)

// ExprParser parses expression tokens into an AST by recursive descent.
// Every binary level is left-associative.
type ExprParser struct {
	tokens   []ExprToken
	pos      int
	depth    int
	maxDepth int
}

// NewExprParser creates a new expression parser. A maxDepth of zero disables
// the nesting limit.
func NewExprParser(tokens []ExprToken, maxDepth int) *ExprParser {
	return &ExprParser{
		tokens:   tokens,
		pos:      0,
		maxDepth: maxDepth,
	}
}

// Parse parses the expression and returns the root AST node
func (p *ExprParser) Parse() (ExprNode, error) {
	if len(p.tokens) == 0 || (len(p.tokens) == 1 && p.tokens[0].Type == ExprTokenTypeEOF) {
		return nil, NewExprParseError(ErrMsgExprEmptyExpression, 0, "")
	}

	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
	}

	return node, nil
}

// parseExpression is the entry point for every nested expression
func (p *ExprParser) parseExpression() (ExprNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseEquality()
}

// parseEquality parses equality expressions (=, <>)
func (p *ExprParser) parseEquality() (ExprNode, error) {
	return p.parseBinary(p.parseComparison, ExprTokenTypeEq, ExprTokenTypeNeq)
}

// parseComparison parses ordering expressions (<, >, <=, >=)
func (p *ExprParser) parseComparison() (ExprNode, error) {
	return p.parseBinary(p.parseConcat, ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte)
}

// parseConcat parses text concatenation (&)
func (p *ExprParser) parseConcat() (ExprNode, error) {
	return p.parseBinary(p.parseAdditive, ExprTokenTypeConcat)
}

// parseAdditive parses + and -
func (p *ExprParser) parseAdditive() (ExprNode, error) {
	return p.parseBinary(p.parseMultiplicative, ExprTokenTypePlus, ExprTokenTypeMinus)
}

// parseMultiplicative parses * and /
func (p *ExprParser) parseMultiplicative() (ExprNode, error) {
	return p.parseBinary(p.parsePower, ExprTokenTypeTimes, ExprTokenTypeDivide)
}

// parsePower parses exponentiation (^)
func (p *ExprParser) parsePower() (ExprNode, error) {
	return p.parseBinary(p.parseUnary, ExprTokenTypePower)
}

// parseBinary parses one left-associative precedence level
func (p *ExprParser) parseBinary(next func() (ExprNode, error), ops ...ExprTokenType) (ExprNode, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ops...) {
		op := p.previous().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, op, right)
	}

	return left, nil
}

// parseUnary parses unary minus
func (p *ExprParser) parseUnary() (ExprNode, error) {
	if p.match(ExprTokenTypeMinus) {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnary(ExprTokenTypeMinus, right), nil
	}

	return p.parsePrimary()
}

// finishCall finishes parsing a function call after the opening paren
func (p *ExprParser) finishCall(name string) (ExprNode, error) {
	var args []ExprNode

	if !p.check(ExprTokenTypeRParen) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.match(ExprTokenTypeComma) {
				break
			}
		}
	}

	if !p.match(ExprTokenTypeRParen) {
		return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), "")
	}

	return NewCall(name, args), nil
}

// parsePrimary parses literals, calls, identifier paths and parenthesized expressions
func (p *ExprParser) parsePrimary() (ExprNode, error) {
	if p.match(ExprTokenTypeString) {
		return NewLiteral(Text(p.previous().Value)), nil
	}

	if p.match(ExprTokenTypeNumber) {
		tok := p.previous()
		num, err := NumberFromString(tok.Value)
		if err != nil {
			return nil, NewExprParseError(ErrMsgExprInvalidNumber, tok.Pos, tok.Value)
		}
		return NewLiteral(num), nil
	}

	if p.match(ExprTokenTypeBool) {
		value := p.previous().Value
		// TRUE() and FALSE() are function calls
		if p.match(ExprTokenTypeLParen) {
			return p.finishCall(strings.ToUpper(value))
		}
		return NewLiteral(Boolean(value == ExprKeywordTrue)), nil
	}

	if p.match(ExprTokenTypeName) {
		name := p.previous().Value
		if p.match(ExprTokenTypeLParen) {
			return p.finishCall(name)
		}
		return NewIdentifier(name), nil
	}

	if p.match(ExprTokenTypeLParen) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if !p.match(ExprTokenTypeRParen) {
			return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), "")
		}

		return expr, nil
	}

	if p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedEOF, p.currentPos(), "")
	}

	return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
}

// enter increments the nesting depth and enforces the limit
func (p *ExprParser) enter() error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return NewEvalErrorf(ErrorKindLimitExceeded, "%s (%d)", ErrMsgMaxDepthExceeded, p.maxDepth)
	}
	return nil
}

func (p *ExprParser) leave() {
	p.depth--
}

// match checks if the current token matches and advances if so
func (p *ExprParser) match(tokenType ExprTokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

// matchAny checks if the current token matches any of the given types
func (p *ExprParser) matchAny(types ...ExprTokenType) bool {
	for _, t := range types {
		if p.match(t) {
			return true
		}
	}
	return false
}

// check returns true if the current token is of the given type
func (p *ExprParser) check(tokenType ExprTokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// advance moves to the next token and returns the previous one
func (p *ExprParser) advance() ExprToken {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

// peek returns the current token
func (p *ExprParser) peek() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenTypeEOF, Pos: p.currentPos()}
	}
	return p.tokens[p.pos]
}

// previous returns the previous token
func (p *ExprParser) previous() ExprToken {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

// isAtEnd returns true if we've consumed all tokens
func (p *ExprParser) isAtEnd() bool {
	return p.pos >= len(p.tokens) || p.tokens[p.pos].Type == ExprTokenTypeEOF
}

// currentPos returns the current position for error reporting
func (p *ExprParser) currentPos() int {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1].Pos
		}
		return 0
	}
	return p.tokens[p.pos].Pos
}

// ExprParseError represents an error during expression parsing
type ExprParseError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprParseError creates a new expression parse error
func NewExprParseError(message string, pos int, detail string) *ExprParseError {
	return &ExprParseError{
		Message: message,
		Pos:     pos,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression parser error messages
const (
	ErrMsgExprEmptyExpression = "empty expression"
	ErrMsgExprUnexpectedToken = "unexpected token"
	ErrMsgExprExpectedRParen  = "expected closing parenthesis"
	ErrMsgExprUnexpectedEOF   = "unexpected end of expression"
)

// ParseExpression tokenizes and parses an expression string. Tokenizer and
// parser failures are reported as a single invalid-expression EvalError whose
// cause carries the position detail; limit violations keep their own kind.
func ParseExpression(expr string, maxDepth int) (ExprNode, error) {
	tokens, err := NewExprTokenizer(expr).Tokenize()
	if err != nil {
		return nil, NewInvalidExpressionError(err)
	}

	node, err := NewExprParser(tokens, maxDepth).Parse()
	if err != nil {
		var evalErr *EvalError
		if errors.As(err, &evalErr) {
			return nil, evalErr
		}
		return nil, NewInvalidExpressionError(err)
	}
	return node, nil
}
