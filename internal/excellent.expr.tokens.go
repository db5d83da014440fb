package internal

import (
	"fmt"
	"strings"
)

// ExprTokenType represents the type of an expression token
type ExprTokenType string

// Expression token type constants
const (
	ExprTokenTypeName   ExprTokenType = "NAME"
	ExprTokenTypeString ExprTokenType = "STRING"
	ExprTokenTypeNumber ExprTokenType = "NUMBER"
	ExprTokenTypeBool   ExprTokenType = "BOOL"
	ExprTokenTypeLParen ExprTokenType = "LPAREN"
	ExprTokenTypeRParen ExprTokenType = "RPAREN"
	ExprTokenTypeComma  ExprTokenType = "COMMA"

	// Operators
	ExprTokenTypePlus   ExprTokenType = "PLUS"
	ExprTokenTypeMinus  ExprTokenType = "MINUS"
	ExprTokenTypeTimes  ExprTokenType = "TIMES"
	ExprTokenTypeDivide ExprTokenType = "DIVIDE"
	ExprTokenTypePower  ExprTokenType = "POWER"
	ExprTokenTypeConcat ExprTokenType = "CONCAT"
	ExprTokenTypeEq     ExprTokenType = "EQ"
	ExprTokenTypeNeq    ExprTokenType = "NEQ"
	ExprTokenTypeLt     ExprTokenType = "LT"
	ExprTokenTypeGt     ExprTokenType = "GT"
	ExprTokenTypeLte    ExprTokenType = "LTE"
	ExprTokenTypeGte    ExprTokenType = "GTE"

	ExprTokenTypeEOF ExprTokenType = "EOF"
)

// Expression operator strings
const (
	ExprOpPlus   = "+"
	ExprOpMinus  = "-"
	ExprOpTimes  = "*"
	ExprOpDivide = "/"
	ExprOpPower  = "^"
	ExprOpConcat = "&"
	ExprOpEq     = "="
	ExprOpNeq    = "<>"
	ExprOpLt     = "<"
	ExprOpGt     = ">"
	ExprOpLte    = "<="
	ExprOpGte    = ">="
)

// Expression keyword constants, matched case-insensitively
const (
	ExprKeywordTrue  = "true"
	ExprKeywordFalse = "false"
)

// ExprToken represents a token in an expression
type ExprToken struct {
	Type  ExprTokenType
	Value string
	Pos   int
}

// String returns the string representation of the token
func (t ExprToken) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return string(t.Type)
}

// ExprTokenizer tokenizes expression strings
type ExprTokenizer struct {
	input string
	pos   int
	len   int
}

// NewExprTokenizer creates a new expression tokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{
		input: input,
		pos:   0,
		len:   len(input),
	}
}

// Tokenize converts the input string into a slice of tokens
func (t *ExprTokenizer) Tokenize() ([]ExprToken, error) {
	var tokens []ExprToken

	for {
		t.skipWhitespace()

		if t.pos >= t.len {
			tokens = append(tokens, ExprToken{Type: ExprTokenTypeEOF, Pos: t.pos})
			break
		}

		token, err := t.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// nextToken reads the next token from the input
func (t *ExprTokenizer) nextToken() (ExprToken, error) {
	startPos := t.pos
	ch := t.peek()

	if ch == CharDoubleQuote {
		return t.readString()
	}

	if isDigit(ch) {
		return t.readNumber()
	}

	if isNameStart(ch) {
		return t.readName()
	}

	// Two-character operators
	if t.pos+1 < t.len {
		twoChar := t.input[t.pos : t.pos+2]
		switch twoChar {
		case ExprOpNeq:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeNeq, Value: ExprOpNeq, Pos: startPos}, nil
		case ExprOpLte:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeLte, Value: ExprOpLte, Pos: startPos}, nil
		case ExprOpGte:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeGte, Value: ExprOpGte, Pos: startPos}, nil
		}
	}

	// Single-character tokens
	t.pos++
	switch ch {
	case '(':
		return ExprToken{Type: ExprTokenTypeLParen, Value: "(", Pos: startPos}, nil
	case ')':
		return ExprToken{Type: ExprTokenTypeRParen, Value: ")", Pos: startPos}, nil
	case ',':
		return ExprToken{Type: ExprTokenTypeComma, Value: ",", Pos: startPos}, nil
	case '+':
		return ExprToken{Type: ExprTokenTypePlus, Value: ExprOpPlus, Pos: startPos}, nil
	case '-':
		return ExprToken{Type: ExprTokenTypeMinus, Value: ExprOpMinus, Pos: startPos}, nil
	case '*':
		return ExprToken{Type: ExprTokenTypeTimes, Value: ExprOpTimes, Pos: startPos}, nil
	case '/':
		return ExprToken{Type: ExprTokenTypeDivide, Value: ExprOpDivide, Pos: startPos}, nil
	case '^':
		return ExprToken{Type: ExprTokenTypePower, Value: ExprOpPower, Pos: startPos}, nil
	case '&':
		return ExprToken{Type: ExprTokenTypeConcat, Value: ExprOpConcat, Pos: startPos}, nil
	case '=':
		return ExprToken{Type: ExprTokenTypeEq, Value: ExprOpEq, Pos: startPos}, nil
	case '<':
		return ExprToken{Type: ExprTokenTypeLt, Value: ExprOpLt, Pos: startPos}, nil
	case '>':
		return ExprToken{Type: ExprTokenTypeGt, Value: ExprOpGt, Pos: startPos}, nil
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnexpectedChar, startPos, string(ch))
}

// readString reads a double-quoted string literal. A doubled quote inside the
// literal stands for one quote character.
func (t *ExprTokenizer) readString() (ExprToken, error) {
	startPos := t.pos
	t.pos++ // skip opening quote

	var sb strings.Builder
	for t.pos < t.len {
		ch := t.input[t.pos]
		if ch == CharDoubleQuote {
			if t.pos+1 < t.len && t.input[t.pos+1] == CharDoubleQuote {
				sb.WriteByte(CharDoubleQuote)
				t.pos += 2
				continue
			}
			t.pos++ // skip closing quote
			return ExprToken{Type: ExprTokenTypeString, Value: sb.String(), Pos: startPos}, nil
		}
		sb.WriteByte(ch)
		t.pos++
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnterminatedStr, startPos, "")
}

// readNumber reads a decimal literal
func (t *ExprTokenizer) readNumber() (ExprToken, error) {
	startPos := t.pos
	for t.pos < t.len && isDigit(t.input[t.pos]) {
		t.pos++
	}
	if t.pos+1 < t.len && t.input[t.pos] == '.' && isDigit(t.input[t.pos+1]) {
		t.pos++
		for t.pos < t.len && isDigit(t.input[t.pos]) {
			t.pos++
		}
	}

	value := t.input[startPos:t.pos]
	if t.pos < t.len && isNameStart(t.input[t.pos]) {
		return ExprToken{}, NewExprTokenError(ErrMsgExprInvalidNumber, startPos, value)
	}
	return ExprToken{Type: ExprTokenTypeNumber, Value: value, Pos: startPos}, nil
}

// readName reads a dotted name or a boolean keyword
func (t *ExprTokenizer) readName() (ExprToken, error) {
	startPos := t.pos
	t.pos++

	for t.pos < t.len {
		ch := t.input[t.pos]
		if IsWordChar(rune(ch)) {
			t.pos++
			continue
		}
		// a dot continues the name only when another word character follows
		if ch == '.' && t.pos+1 < t.len && IsWordChar(rune(t.input[t.pos+1])) {
			t.pos++
			continue
		}
		break
	}

	value := t.input[startPos:t.pos]
	switch strings.ToLower(value) {
	case ExprKeywordTrue, ExprKeywordFalse:
		return ExprToken{Type: ExprTokenTypeBool, Value: strings.ToLower(value), Pos: startPos}, nil
	}

	return ExprToken{Type: ExprTokenTypeName, Value: value, Pos: startPos}, nil
}

// peek returns the current character without advancing
func (t *ExprTokenizer) peek() byte {
	if t.pos >= t.len {
		return 0
	}
	return t.input[t.pos]
}

// skipWhitespace skips whitespace characters
func (t *ExprTokenizer) skipWhitespace() {
	for t.pos < t.len {
		switch t.input[t.pos] {
		case CharSpace, CharTab, CharNewline, CharCarriageRet:
			t.pos++
		default:
			return
		}
	}
}

func isNameStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

// ExprTokenError represents an error during expression tokenization
type ExprTokenError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprTokenError creates a new expression token error
func NewExprTokenError(message string, pos int, detail string) *ExprTokenError {
	return &ExprTokenError{
		Message: message,
		Pos:     pos,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprTokenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression tokenizer error messages
const (
	ErrMsgExprUnexpectedChar  = "unexpected character"
	ErrMsgExprUnterminatedStr = "unterminated string literal"
	ErrMsgExprInvalidNumber   = "invalid number format"
)
