package flows

import (
	"github.com/itsatony/go-cuserr"
)

// Error messages
const (
	ErrMsgDefinitionParse   = "failed to parse definition"
	ErrMsgMissingType       = "definition has no type"
	ErrMsgUnknownTestType   = "unknown test type"
	ErrMsgUnknownActionType = "unknown action type"
	ErrMsgMissingField      = "definition field is required"
	ErrMsgInvalidField      = "definition field has an invalid value"
	ErrMsgTypeRegistered    = "type is already registered"
	ErrMsgEmptyTypeName     = "type name cannot be empty"
	ErrMsgNilConstructor    = "constructor cannot be nil"
	ErrMsgInvalidURN        = "invalid contact URN"
	ErrMsgEvaluatorCreate   = "failed to create evaluator"
	ErrMsgNilRunState       = "run state requires an org and a contact"
)

// Error codes
const (
	ErrCodeDefinition = "EXCELLENT_FLOW_DEFINITION"
	ErrCodeRunner     = "EXCELLENT_FLOW_RUNNER"
)

// Metadata keys
const (
	MetaKeyType  = "type"
	MetaKeyField = "field"
	MetaKeyURN   = "urn"
)

// NewDefinitionError creates an error for a malformed test or action definition
func NewDefinitionError(msg string, cause error) *cuserr.CustomError {
	if cause != nil {
		return cuserr.WrapStdError(cause, ErrCodeDefinition, msg)
	}
	return cuserr.NewValidationError(ErrCodeDefinition, msg)
}

// NewFieldError creates an error for a missing or invalid definition field
func NewFieldError(msg, typeName, field string) *cuserr.CustomError {
	return NewDefinitionError(msg, nil).
		WithMetadata(MetaKeyType, typeName).
		WithMetadata(MetaKeyField, field)
}

// NewUnknownTypeError creates an error for an unregistered test or action type
func NewUnknownTypeError(msg, typeName string) *cuserr.CustomError {
	return cuserr.NewNotFoundError(MetaKeyType, msg).WithMetadata(MetaKeyType, typeName)
}

// NewInvalidURNError creates an error for a URN without scheme or path
func NewInvalidURNError(urn string) *cuserr.CustomError {
	return NewDefinitionError(ErrMsgInvalidURN, nil).WithMetadata(MetaKeyURN, urn)
}

// NewRunnerError creates an error for invalid runner configuration or run state
func NewRunnerError(msg string, cause error) *cuserr.CustomError {
	if cause != nil {
		return cuserr.WrapStdError(cause, ErrCodeRunner, msg)
	}
	return cuserr.NewValidationError(ErrCodeRunner, msg)
}
