package excellent

import (
	"context"
	"iter"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/itsatony/go-excellent/internal"
	"go.uber.org/zap"
)

// Evaluator evaluates templates and expressions. It is immutable after
// construction and may be shared by any number of goroutines; each call
// supplies its own EvaluationContext.
type Evaluator struct {
	scanner *internal.Scanner
	funcs   *internal.FuncRegistry
	config  *evaluatorConfig
	logger  *zap.Logger
	metrics MetricsRecorder
}

// EvaluatedTemplate is the result of evaluating a template. Errors holds one
// message per expression that could not be evaluated, in template order; it
// is empty, never nil, when every expression succeeded.
type EvaluatedTemplate struct {
	Output string   `json:"output"`
	Errors []string `json:"errors"`
}

// HasErrors reports whether any expression failed
func (t EvaluatedTemplate) HasErrors() bool {
	return len(t.Errors) > 0
}

// Segment is one literal or expression piece of a scanned template
type Segment = internal.Segment

// SegmentKind distinguishes literal text from expressions
type SegmentKind = internal.SegmentKind

// Segment kinds
const (
	SegmentKindLiteral    = internal.SegmentKindLiteral
	SegmentKindExpression = internal.SegmentKindExpression
)

// New creates a new Evaluator with the given options.
func New(opts ...Option) (*Evaluator, error) {
	config := defaultEvaluatorConfig()
	for _, opt := range opts {
		opt(config)
	}

	if err := validateTrigger(config.trigger); err != nil {
		return nil, err
	}
	if config.maxDepth < 0 {
		return nil, NewConfigError(ErrMsgInvalidMaxDepth, nil)
	}
	if config.maxExpressionLength < 0 {
		return nil, NewConfigError(ErrMsgInvalidMaxLength, nil)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := config.metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	libs := config.libraries
	if libs == nil {
		libs = BuiltinLibraries()
	}
	funcs, err := internal.NewFuncRegistry(libs...)
	if err != nil {
		return nil, NewConfigError(ErrMsgFunctionRegistry, err)
	}

	logger.Debug(LogMsgEvaluatorCreated,
		zap.String(LogFieldTrigger, string(config.trigger)),
		zap.Int(LogFieldLibraries, len(libs)),
		zap.Int(LogFieldFunctions, funcs.Count()),
		zap.Int(LogFieldMaxDepth, config.maxDepth),
		zap.Int(LogFieldMaxLength, config.maxExpressionLength),
	)

	return &Evaluator{
		scanner: internal.NewScanner(config.trigger, logger),
		funcs:   funcs,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// MustNew creates a new Evaluator and panics if there's an error.
func MustNew(opts ...Option) *Evaluator {
	evaluator, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return evaluator
}

// validateTrigger rejects characters the scanner could not tell apart from
// expression content
func validateTrigger(trigger rune) error {
	if !utf8.ValidRune(trigger) || unicode.IsSpace(trigger) || internal.IsWordChar(trigger) {
		return NewInvalidTriggerError(trigger)
	}
	switch trigger {
	case internal.CharOpenParen, internal.CharCloseParen, internal.CharDoubleQuote:
		return NewInvalidTriggerError(trigger)
	}
	return nil
}

// Trigger returns the character that introduces an expression
func (e *Evaluator) Trigger() rune {
	return e.config.trigger
}

// Functions returns the registered function names, sorted
func (e *Evaluator) Functions() []string {
	return e.funcs.List()
}

// FunctionLibrary returns the name of the library that registered a function
func (e *Evaluator) FunctionLibrary(name string) (string, bool) {
	return e.funcs.Library(name)
}

// Segments streams the literal and expression segments of a template
func (e *Evaluator) Segments(template string) iter.Seq[Segment] {
	return e.scanner.Segments(template)
}

// Scan returns all segments of a template
func (e *Evaluator) Scan(template string) []Segment {
	return e.scanner.Scan(template)
}

// EvaluateTemplate substitutes every expression in template. It never fails:
// an expression that cannot be evaluated is left in the output exactly as
// written and its error message is recorded. Expressions are evaluated as the
// scanner finds them, left to right.
func (e *Evaluator) EvaluateTemplate(template string, ctx *EvaluationContext, opts ...TemplateOption) EvaluatedTemplate {
	tc := &templateConfig{}
	for _, opt := range opts {
		opt(tc)
	}

	start := time.Now()
	var out strings.Builder
	out.Grow(len(template))
	errs := []string{}

	for seg := range e.scanner.Segments(template) {
		if seg.Kind != internal.SegmentKindExpression {
			out.WriteString(seg.Text)
			continue
		}

		text, err := e.resolveExpression(seg.Text, ctx, tc.urlEncode)
		if err != nil {
			e.logger.Debug(LogMsgExpressionFailed,
				zap.String(LogFieldExpression, seg.Text),
				zap.Error(err),
			)
			out.WriteString(seg.Text)
			errs = append(errs, err.Error())
			continue
		}
		out.WriteString(text)
	}

	duration := time.Since(start)
	e.metrics.RecordTemplate(context.Background(), duration, len(errs))
	e.logger.Debug(LogMsgTemplateEvaluated,
		zap.Int(LogFieldErrors, len(errs)),
		zap.Duration(LogFieldDuration, duration),
	)

	return EvaluatedTemplate{Output: out.String(), Errors: errs}
}

// resolveExpression evaluates one scanned expression, trigger included, and
// renders the result
func (e *Evaluator) resolveExpression(source string, ctx *EvaluationContext, urlEncode bool) (string, error) {
	value, err := e.evaluate(e.stripTrigger(source), ctx)
	if err != nil {
		return "", err
	}

	text, err := internal.ToText(value, ctx)
	if err != nil {
		return "", err
	}
	if urlEncode {
		text = url.QueryEscape(text)
	}
	return text, nil
}

// EvaluateExpression evaluates a single expression. A leading trigger
// character is optional, so "@(1 + 2)" and "1 + 2" are equivalent. Failures
// are returned as go-cuserr errors wrapping an *EvalError; use ErrorKindOf to
// read the kind.
func (e *Evaluator) EvaluateExpression(expression string, ctx *EvaluationContext) (Value, error) {
	value, err := e.evaluate(e.stripTrigger(expression), ctx)
	if err != nil {
		return Missing(), NewEvaluationError(expression, err)
	}
	return value, nil
}

// EvaluateExpressionText evaluates a single expression and renders the result
// as text
func (e *Evaluator) EvaluateExpressionText(expression string, ctx *EvaluationContext) (string, error) {
	value, err := e.EvaluateExpression(expression, ctx)
	if err != nil {
		return "", err
	}
	text, err := internal.ToText(value, ctx)
	if err != nil {
		return "", NewEvaluationError(expression, err)
	}
	return text, nil
}

// evaluate parses and evaluates an expression without its trigger
func (e *Evaluator) evaluate(expr string, ctx *EvaluationContext) (Value, error) {
	if limit := e.config.maxExpressionLength; limit > 0 && len(expr) > limit {
		e.metrics.RecordExpression(context.Background(), false)
		return Missing(), internal.NewEvalErrorf(internal.ErrorKindLimitExceeded,
			"%s (%d > %d)", ErrMsgExpressionTooLong, len(expr), limit)
	}

	value, err := internal.Evaluate(expr, e.funcs, ctx, e.config.maxDepth)
	e.metrics.RecordExpression(context.Background(), err == nil)
	return value, err
}

func (e *Evaluator) stripTrigger(expression string) string {
	trimmed := strings.TrimSpace(expression)
	if r, size := utf8.DecodeRuneInString(trimmed); r == e.config.trigger {
		return trimmed[size:]
	}
	return expression
}
