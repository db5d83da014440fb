package internal

// Character constants
const (
	CharDoubleQuote = '"'
	CharOpenParen   = '('
	CharCloseParen  = ')'
	CharPeriod      = '.'
	CharUnderscore  = '_'
	CharNewline     = '\n'
	CharSpace       = ' '
	CharTab         = '\t'
	CharCarriageRet = '\r'
)

// DefaultTrigger introduces an embedded expression
const DefaultTrigger = '@'

// Numeric constants for conversions
const (
	FloatFormatFlag   = 'f'
	FloatPrecisionAll = -1
	FloatBitSize64    = 64
	IntBase10         = 10
)

// Log message constants
const (
	LogMsgScannerCreated   = "scanner created"
	LogMsgScanStart        = "starting template scan"
	LogMsgScanComplete     = "template scan complete"
	LogMsgScanUnterminated = "unterminated expression passed through"
	LogMsgExpressionFailed = "unable to evaluate expression"
)

// Log field names
const (
	LogFieldSource     = "source_length"
	LogFieldSegments   = "segment_count"
	LogFieldFunctions  = "function_count"
	LogFieldLibraries  = "library_count"
	LogFieldExpression = "expression"
	LogFieldTrigger    = "trigger"
	LogFieldOffset     = "offset"
)
