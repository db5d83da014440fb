package excellent

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-excellent/internal"
)

// Error message constants
const (
	// Configuration errors
	ErrMsgInvalidTrigger       = "invalid trigger character"
	ErrMsgInvalidMaxDepth      = "max depth must not be negative"
	ErrMsgInvalidMaxLength     = "max expression length must not be negative"
	ErrMsgFunctionRegistry     = "unable to build function registry"
	ErrMsgUnknownLibrary       = "unknown function library"
	ErrMsgInvalidDateStyle     = "invalid date style"
	ErrMsgInvalidTimezone      = "invalid timezone"
	ErrMsgConfigRead           = "unable to read configuration"
	ErrMsgConfigParse          = "unable to parse configuration"
	ErrMsgEmptyLibraryName     = "library name cannot be empty"
	ErrMsgNilStorage           = "storage is nil"
	ErrMsgTriggerNotSingleRune = "trigger must be a single character"

	// Evaluation errors
	ErrMsgEvaluationFailed  = "expression evaluation failed"
	ErrMsgExpressionTooLong = "expression exceeds maximum length"

	// Context errors
	ErrMsgContextInvalid = "invalid evaluation context"

	// Storage errors
	ErrMsgTemplateNotFound        = "template not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgEmptyTemplateName       = "template name cannot be empty"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgEmptyConnString         = "connection string cannot be empty"
	ErrMsgConnectionFailed        = "database connection failed"
	ErrMsgMigrationFailed         = "database migration failed"
	ErrMsgQueryFailed             = "database query failed"
	ErrMsgScanFailed              = "unable to read stored template"
	ErrMsgSaveFailed              = "unable to save template"
	ErrMsgDeleteFailed            = "unable to delete template"
	ErrMsgInvalidTablePrefix      = "table prefix must be a plain SQL identifier"
	ErrMsgInvalidStorageRoot      = "storage root directory cannot be empty"
	ErrMsgCreateStorageDir        = "unable to create storage directory"
	ErrMsgReadStorageDir          = "unable to read storage directory"
	ErrMsgInvalidPathSegment      = "template name and language must be plain path segments"
	ErrMsgMarshalTemplate         = "unable to encode template"
	ErrMsgWriteTemplate           = "unable to write template file"
	ErrMsgReadTemplate            = "unable to read template file"
)

// Error code constants for categorization
const (
	ErrCodeConfig  = "EXCELLENT_CONFIG"
	ErrCodeEval    = "EXCELLENT_EVAL"
	ErrCodeContext = "EXCELLENT_CONTEXT"
	ErrCodeStorage = "EXCELLENT_STORAGE"
)

// ErrorKind classifies evaluation failures
type ErrorKind = internal.ErrorKind

// Evaluation error kinds
const (
	ErrorKindInvalidExpression   = internal.ErrorKindInvalidExpression
	ErrorKindUndefinedIdentifier = internal.ErrorKindUndefinedIdentifier
	ErrorKindUnknownFunction     = internal.ErrorKindUnknownFunction
	ErrorKindArityMismatch       = internal.ErrorKindArityMismatch
	ErrorKindConversion          = internal.ErrorKindConversion
	ErrorKindFunctionDomain      = internal.ErrorKindFunctionDomain
	ErrorKindLimitExceeded       = internal.ErrorKindLimitExceeded
)

// EvalError is the failure produced by parsing or evaluating one expression.
// Function implementations may return it to choose the error kind.
type EvalError = internal.EvalError

// NewEvalError creates an evaluation error of the given kind
func NewEvalError(kind ErrorKind, message string) *EvalError {
	return internal.NewEvalError(kind, message)
}

// NewConfigError creates a configuration error with an optional cause
func NewConfigError(msg string, cause error) error {
	if cause != nil {
		return cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	}
	return cuserr.NewValidationError(ErrCodeConfig, msg)
}

// NewInvalidTriggerError creates an error for an unusable trigger character
func NewInvalidTriggerError(trigger rune) error {
	return cuserr.NewValidationError(ErrCodeConfig, ErrMsgInvalidTrigger).
		WithMetadata(MetaKeyTrigger, strconv.QuoteRune(trigger))
}

// NewUnknownLibraryError creates an error for a library name that is not built in
func NewUnknownLibraryError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyLibrary, ErrMsgUnknownLibrary).
		WithMetadata(MetaKeyLibrary, name)
}

// NewEvaluationError wraps an expression failure. The cause is usually an
// *EvalError whose kind is recorded as metadata.
func NewEvaluationError(expression string, cause error) error {
	err := cuserr.WrapStdError(cause, ErrCodeEval, ErrMsgEvaluationFailed).
		WithMetadata(MetaKeyExpression, expression)

	var evalErr *EvalError
	if errors.As(cause, &evalErr) {
		err = err.WithMetadata(MetaKeyKind, evalErr.Kind.String())
	}
	return err
}

// NewContextError creates an error for an evaluation context that cannot be built
func NewContextError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeContext, ErrMsgContextInvalid)
}

// NewStorageError wraps a storage failure
func NewStorageError(msg string, cause error) error {
	if cause == nil {
		return cuserr.NewInternalError(ErrCodeStorage, errors.New(msg))
	}
	return cuserr.WrapStdError(cause, ErrCodeStorage, msg)
}

// NewFilesystemError wraps a filesystem storage failure on path
func NewFilesystemError(msg, path string, cause error) error {
	if cause == nil {
		cause = errors.New(msg)
	}
	return cuserr.WrapStdError(cause, ErrCodeStorage, msg).WithMetadata(MetaKeyPath, path)
}

// NewTemplateNotFoundError creates an error for a stored template that does
// not exist. It matches ErrTemplateNotFound.
func NewTemplateNotFoundError(name, language string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeStorage, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyTemplate, name).
		WithMetadata(MetaKeyLanguage, language)
}

// ErrorKindOf reports the evaluation error kind carried by err, if any
func ErrorKindOf(err error) (ErrorKind, bool) {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Kind, true
	}
	return 0, false
}
