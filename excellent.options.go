package excellent

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Evaluator.
type Option func(*evaluatorConfig)

// evaluatorConfig holds the internal configuration for an Evaluator.
type evaluatorConfig struct {
	trigger             rune
	libraries           []*FuncLibrary
	maxDepth            int
	maxExpressionLength int
	logger              *zap.Logger
	metrics             MetricsRecorder
}

// defaultEvaluatorConfig returns the default evaluator configuration.
func defaultEvaluatorConfig() *evaluatorConfig {
	return &evaluatorConfig{
		trigger:             DefaultTrigger,
		libraries:           nil,
		maxDepth:            DefaultMaxDepth,
		maxExpressionLength: DefaultMaxExpressionLength,
		logger:              nil,
		metrics:             nil,
	}
}

// WithTrigger sets the character that introduces an expression.
// Default: '@'
func WithTrigger(trigger rune) Option {
	return func(c *evaluatorConfig) {
		c.trigger = trigger
	}
}

// WithLibraries replaces the function libraries. Libraries are registered in
// order; a function name defined twice fails construction.
// Default: BuiltinLibraries()
func WithLibraries(libs ...*FuncLibrary) Option {
	return func(c *evaluatorConfig) {
		c.libraries = libs
	}
}

// WithMaxDepth sets the maximum nesting depth of an expression.
// Use 0 for unlimited depth.
// Default: 64
func WithMaxDepth(depth int) Option {
	return func(c *evaluatorConfig) {
		c.maxDepth = depth
	}
}

// WithMaxExpressionLength sets the maximum length in bytes of one expression.
// Use 0 for unlimited length.
// Default: 4096
func WithMaxExpressionLength(length int) Option {
	return func(c *evaluatorConfig) {
		c.maxExpressionLength = length
	}
}

// WithLogger sets the logger for the evaluator.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *evaluatorConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: NoopMetrics
func WithMetrics(metrics MetricsRecorder) Option {
	return func(c *evaluatorConfig) {
		c.metrics = metrics
	}
}

// TemplateOption configures a single EvaluateTemplate call
type TemplateOption func(*templateConfig)

type templateConfig struct {
	urlEncode bool
}

// WithURLEncode percent-encodes each substituted value for use in URLs.
// Spaces become "+".
func WithURLEncode(urlEncode bool) TemplateOption {
	return func(c *templateConfig) {
		c.urlEncode = urlEncode
	}
}
