package internal

import "fmt"

// ErrorKind classifies evaluation failures. All kinds travel through the same
// EvalError type; callers that only need the message can ignore the kind.
type ErrorKind int

// Error kind constants
const (
	ErrorKindInvalidExpression ErrorKind = iota
	ErrorKindUndefinedIdentifier
	ErrorKindUnknownFunction
	ErrorKindArityMismatch
	ErrorKindConversion
	ErrorKindFunctionDomain
	ErrorKindLimitExceeded
)

// Error kind names
const (
	ErrorKindNameInvalidExpression   = "invalid_expression"
	ErrorKindNameUndefinedIdentifier = "undefined_identifier"
	ErrorKindNameUnknownFunction     = "unknown_function"
	ErrorKindNameArityMismatch       = "arity_mismatch"
	ErrorKindNameConversion          = "type_conversion"
	ErrorKindNameFunctionDomain      = "function_domain"
	ErrorKindNameLimitExceeded       = "limit_exceeded"
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUndefinedIdentifier:
		return ErrorKindNameUndefinedIdentifier
	case ErrorKindUnknownFunction:
		return ErrorKindNameUnknownFunction
	case ErrorKindArityMismatch:
		return ErrorKindNameArityMismatch
	case ErrorKindConversion:
		return ErrorKindNameConversion
	case ErrorKindFunctionDomain:
		return ErrorKindNameFunctionDomain
	case ErrorKindLimitExceeded:
		return ErrorKindNameLimitExceeded
	default:
		return ErrorKindNameInvalidExpression
	}
}

// Evaluation error messages
const (
	ErrMsgExprInvalid         = "expression is invalid"
	ErrMsgUndefinedIdentifier = "undefined identifier"
	ErrMsgUnknownFunction     = "unknown function"
	ErrMsgTooFewArgs          = "too few arguments"
	ErrMsgTooManyArgs         = "too many arguments"
	ErrMsgFuncFailed          = "function %s failed: %v"
	ErrMsgFuncPanicked        = "function panicked"
	ErrMsgCannotConvert       = "cannot convert %s to %s"
	ErrMsgDivisionByZero      = "division by zero"
	ErrMsgNumericOverflow     = "numeric result out of range"
	ErrMsgMaxDepthExceeded    = "maximum expression depth exceeded"
	ErrMsgInvalidDate         = "invalid date"
	ErrMsgIntegerOutOfRange   = "integer out of range"
	ErrMsgInvalidArgument     = "invalid argument"
	ErrMsgUnsupportedOperator = "unsupported operator"
	ErrMsgUnsupportedNode     = "unsupported expression node"
	ErrMsgContextDuplicateKey = "duplicate context key"
	ErrMsgContextUnsupported  = "unsupported context value"
	ErrMsgContextNonFinite    = "non-finite number in context"
)

// EvalError is the single failure value produced while parsing or evaluating
// an expression. Message is human readable; Kind and Cause carry detail.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// NewEvalError creates an evaluation error
func NewEvalError(kind ErrorKind, message string) *EvalError {
	return &EvalError{Kind: kind, Message: message}
}

// NewEvalErrorf creates an evaluation error with a formatted message
func NewEvalErrorf(kind ErrorKind, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidExpressionError wraps a tokenizer or parser failure
func NewInvalidExpressionError(cause error) *EvalError {
	return &EvalError{Kind: ErrorKindInvalidExpression, Message: ErrMsgExprInvalid, Cause: cause}
}

// NewUndefinedIdentifierError reports an identifier path missing from the context
func NewUndefinedIdentifierError(path string) *EvalError {
	return NewEvalErrorf(ErrorKindUndefinedIdentifier, "%s: %s", ErrMsgUndefinedIdentifier, path)
}

// NewConversionError reports a failed coercion between kinds
func NewConversionError(v Value, target Kind) *EvalError {
	return NewEvalErrorf(ErrorKindConversion, ErrMsgCannotConvert, describe(v), target)
}

// Error implements the error interface
func (e *EvalError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause
func (e *EvalError) Unwrap() error {
	return e.Cause
}

// describe renders a value for error messages without failing on Missing
func describe(v Value) string {
	if v.IsMissing() {
		return KindNameMissing
	}
	return fmt.Sprintf("%s %s", v.kind, v.String())
}
