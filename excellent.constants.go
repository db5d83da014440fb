package excellent

import (
	"time"

	"github.com/itsatony/go-excellent/internal"
)

// Default configuration values
const (
	DefaultTrigger             = internal.DefaultTrigger
	DefaultMaxDepth            = 64
	DefaultMaxExpressionLength = 4096
)

// Version of the module
const Version = "v1.0.0"

// Date style names accepted by configuration
const (
	DateStyleNameDayFirst   = internal.DateStyleNameDayFirst
	DateStyleNameMonthFirst = internal.DateStyleNameMonthFirst
)

// Library names of the built-in function libraries
const (
	LibraryText    = internal.LibraryNameText
	LibraryMath    = internal.LibraryNameMath
	LibraryLogical = internal.LibraryNameLogical
	LibraryDate    = internal.LibraryNameDate
	LibraryCustom  = internal.LibraryNameCustom
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameSQLite     = "sqlite"
	StorageDriverNamePostgres   = "postgres"
	StorageDriverNameFilesystem = "filesystem"
)

// Filesystem storage layout
const (
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
	FilesystemVersionPrefix   = "v"
	FilesystemVersionSuffix   = ".json"
	FilesystemNoLanguageDir   = "_"
)

// SQL storage defaults
const (
	SQLTablePrefix             = "excellent_"
	SQLDefaultQueryTimeout     = 30 * time.Second
	SQLDefaultMaxOpenConns     = 25
	SQLDefaultMaxIdleConns     = 5
	SQLDefaultConnMaxLifetime  = 5 * time.Minute
	SQLDefaultConnMaxIdleTime  = 5 * time.Minute
	SQLiteDriverName           = "sqlite"
	PostgresDriverName         = "postgres"
	SQLiteMemoryConnection     = ":memory:"
	SQLitePragmaJournalModeWAL = "PRAGMA journal_mode=WAL"
)

// Metric instrument names
const (
	MeterName                 = "github.com/itsatony/go-excellent"
	MetricTemplateEvaluations = "excellent.template.evaluations"
	MetricTemplateLatency     = "excellent.template.latency_ms"
	MetricTemplateErrors      = "excellent.template.errors"
	MetricExpressionEvals     = "excellent.expression.evaluations"
	MetricAttrSuccess         = "success"
	MetricUnitMilliseconds    = "ms"
)

// Metric descriptions
const (
	MetricDescTemplateEvaluations = "Number of template evaluations"
	MetricDescTemplateLatency     = "Template evaluation latency in milliseconds"
	MetricDescTemplateErrors      = "Number of expressions that failed inside templates"
	MetricDescExpressionEvals     = "Number of expression evaluations"
)

// Log messages
const (
	LogMsgEvaluatorCreated   = "evaluator created"
	LogMsgTemplateEvaluated  = "template evaluated"
	LogMsgExpressionFailed   = "unable to evaluate expression"
	LogMsgStorageOpened      = "template storage opened"
	LogMsgStoredTemplateUsed = "stored template evaluated"
)

// Log field keys
const (
	LogFieldTrigger    = "trigger"
	LogFieldLibraries  = "libraries"
	LogFieldFunctions  = "functions"
	LogFieldMaxDepth   = "max_depth"
	LogFieldMaxLength  = "max_expression_length"
	LogFieldExpression = "expression"
	LogFieldErrors     = "errors"
	LogFieldDuration   = "duration"
	LogFieldPath       = "path"
	LogFieldDriver     = "driver"
	LogFieldName       = "name"
	LogFieldLanguage   = "language"
	LogFieldVersion    = "version"
)

// Metadata keys attached to errors
const (
	MetaKeyExpression = "expression"
	MetaKeyKind       = "kind"
	MetaKeyTrigger    = "trigger"
	MetaKeyLibrary    = "library"
	MetaKeyPath       = "path"
	MetaKeyTemplate   = "template"
	MetaKeyLanguage   = "language"
)
