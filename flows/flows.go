// Package flows models the flow engine boundary around excellent templates:
// the org and contact a run belongs to, the evaluation context built from
// them, and the rule tests and actions that evaluate expressions while a run
// moves through a flow.
//
// The flow runner itself, flow definition storage and location gazetteers
// live outside this package. Tests and actions are constructed from decoded
// definitions through a Factory:
//
//	factory := flows.NewFactory()
//	test, err := factory.NewTest(flows.Definition{"type": "eq", "test": "@(contact.age - 2)"})
//
//	runner, err := flows.NewRunner(flows.WithLocationResolver(resolver))
//	run := flows.NewRunState(org, contact)
//	ctx, err := run.BuildContext()
//	result := test.Evaluate(runner, run, ctx, "32")
package flows

// Test type names
const (
	TestTypeTrue        = "true"
	TestTypeFalse       = "false"
	TestTypeEqual       = "eq"
	TestTypeLessThan    = "lt"
	TestTypeLessOrEqual = "lte"
	TestTypeGreaterThan = "gt"
	TestTypeGreaterOrEq = "gte"
	TestTypeHasState    = "state"
	TestTypeHasDistrict = "district"
)

// Action type names
const (
	ActionTypeReply    = "reply"
	ActionTypeAddGroup = "add_group"
)

// Definition keys
const (
	DefKeyType   = "type"
	DefKeyTest   = "test"
	DefKeyMsg    = "msg"
	DefKeyGroups = "groups"
	DefKeyUUID   = "uuid"
	DefKeyName   = "name"
)

// Contact context keys
const (
	ContextKeyContact   = "contact"
	ContextKeyDefault   = "*"
	ContextKeyName      = "name"
	ContextKeyFirstName = "first_name"
	ContextKeyTelE164   = "tel_e164"
	ContextKeyGroups    = "groups"
	ContextKeyUUID      = "uuid"
	ContextKeyLanguage  = "language"
)

// URN schemes exposed in the contact context
const (
	URNSchemeTel      = "tel"
	URNSchemeTwitter  = "twitter"
	URNSchemeFacebook = "facebook"
	URNSchemeTelegram = "telegram"
	URNSchemeEmail    = "email"
	URNSchemeExternal = "ext"
)

// URNSchemes lists the schemes every contact context carries a key for
var URNSchemes = []string{
	URNSchemeTel,
	URNSchemeTwitter,
	URNSchemeFacebook,
	URNSchemeTelegram,
	URNSchemeEmail,
	URNSchemeExternal,
}

// Formatting
const (
	MaskedURN       = "********"
	GroupsSeparator = ","
	URNSeparator    = ":"
)

// Log messages
const (
	LogMsgRunnerCreated    = "flow runner created"
	LogMsgTestOperandError = "unable to evaluate test operand"
	LogMsgTestEvaluated    = "test evaluated"
	LogMsgActionExecuted   = "action executed"
)

// Log field keys
const (
	LogFieldType    = "type"
	LogFieldMatched = "matched"
	LogFieldErrors  = "errors"
	LogFieldOperand = "operand"
)
