package main

// Command names
const (
	CmdNameRender  = "render"
	CmdNameEval    = "eval"
	CmdNameScan    = "scan"
	CmdNameFuncs   = "funcs"
	CmdNameSave    = "save"
	CmdNameList    = "list"
	CmdNameVersion = "version"
)

// Flag names - long form
const (
	FlagConfig           = "config"
	FlagContext          = "context"
	FlagTimezone         = "timezone"
	FlagMonthFirst       = "month-first"
	FlagVerbose          = "verbose"
	FlagTemplate         = "template"
	FlagURLEncode        = "url-encode"
	FlagFormat           = "format"
	FlagLibrary          = "library"
	FlagStorage          = "storage"
	FlagDSN              = "dsn"
	FlagName             = "name"
	FlagLanguage         = "language"
	FlagFallbackLanguage = "fallback-language"
	FlagPrefix           = "prefix"
)

// Flag names - short form
const (
	FlagConfigShort   = "c"
	FlagContextShort  = "x"
	FlagTemplateShort = "t"
	FlagFormatShort   = "F"
	FlagVerboseShort  = "v"
	FlagLanguageShort = "l"
)

// Flag default values
const (
	FlagDefaultFormat   = OutputFormatText
	FlagDefaultStorage  = "sqlite"
	FlagDefaultLanguage = "eng"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess          = 0
	ExitCodeError            = 1
	ExitCodeUsageError       = 2
	ExitCodeEvaluationErrors = 3
	ExitCodeInputError       = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgMissingTemplate   = "template source required"
	ErrMsgTemplateConflict  = "use either a template argument or --template, not both"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgInvalidContext    = "invalid context file"
	ErrMsgInvalidConfig     = "invalid configuration"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgEvaluationFailed  = "expression evaluation failed"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgStorageFailed     = "template storage failed"
	ErrMsgUnknownLibrary    = "unknown function library"
)

// CLI metadata
const (
	CLIName        = "excellent"
	CLIDescription = "Evaluate RapidPro style message templates and expressions"
	CLILong        = `excellent evaluates message templates containing @-expressions such as
"Hi @contact.name, you are @(contact.age + 1) next year".

Variables come from a YAML or JSON context file (--context); evaluation
settings come from a YAML config file (--config) and the flags below.`
)

// Version output format templates
const (
	VersionTextTemplate = "go-excellent version %s\nGo: %s\n"
)

// Format string constants
const (
	FmtErrorWithCause = "%s: %v\n"
	FmtErrorLine      = "error: %s\n"
	FmtSegmentLine    = "%d-%d\t%s\t%q\n"
	FmtFunctionLine   = "%-14s %s\n"
	FmtTemplateLine   = "%s\t%s\tv%d\n"
	FmtSavedLine      = "saved %s/%s version %d\n"
)
