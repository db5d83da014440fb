package flows

import (
	"strings"

	excellent "github.com/itsatony/go-excellent"
	"go.uber.org/zap"
)

// LocationLevel is a level of the administrative boundary hierarchy.
type LocationLevel int

const (
	LocationLevelState LocationLevel = iota + 1
	LocationLevelDistrict
)

// String returns the level name.
func (l LocationLevel) String() string {
	switch l {
	case LocationLevelState:
		return "state"
	case LocationLevelDistrict:
		return "district"
	default:
		return "unknown"
	}
}

// Location is a resolved administrative boundary.
type Location struct {
	Name string
}

// LocationResolver finds the location a piece of text refers to. Parent is
// the name of the enclosing state when resolving districts, empty otherwise.
// Implementations return nil when nothing matches.
type LocationResolver interface {
	Resolve(input, country string, level LocationLevel, parent string) *Location
}

// LocationResolverFunc adapts a function to the LocationResolver interface.
type LocationResolverFunc func(input, country string, level LocationLevel, parent string) *Location

// Resolve calls f.
func (f LocationResolverFunc) Resolve(input, country string, level LocationLevel, parent string) *Location {
	return f(input, country, level, parent)
}

// RunState is the state of one contact's run through a flow.
type RunState struct {
	Org     *Org
	Contact *Contact

	// Variables holds further top-level context entries, e.g. "step" or
	// "flow". The contact entry always comes from Contact.
	Variables map[string]any

	// Actions holds the results of every action executed in this run.
	Actions []ActionResult
}

// NewRunState creates the state for a new run.
func NewRunState(org *Org, contact *Contact) *RunState {
	return &RunState{Org: org, Contact: contact}
}

// BuildContext creates the evaluation context for this run. The org timezone
// and date style apply unless overridden by opts.
func (r *RunState) BuildContext(opts ...excellent.ContextOption) (*excellent.EvaluationContext, error) {
	if r == nil || r.Org == nil || r.Contact == nil {
		return nil, NewRunnerError(ErrMsgNilRunState, nil)
	}

	vars := make(map[string]any, len(r.Variables)+1)
	for key, value := range r.Variables {
		if !strings.EqualFold(key, ContextKeyContact) {
			vars[key] = value
		}
	}
	vars[ContextKeyContact] = r.Contact.BuildContext(r.Org)

	ctxOpts := []excellent.ContextOption{
		excellent.WithTimezone(r.Org.Timezone),
		excellent.WithDateStyle(r.Org.DateStyle),
	}
	ctxOpts = append(ctxOpts, opts...)
	return excellent.NewEvaluationContext(vars, ctxOpts...)
}

// Languages returns the preferred languages for translated text, contact first.
func (r *RunState) Languages() []string {
	var languages []string
	if r.Contact != nil && r.Contact.Language != "" {
		languages = append(languages, r.Contact.Language)
	}
	if r.Org != nil && r.Org.PrimaryLanguage != "" {
		languages = append(languages, r.Org.PrimaryLanguage)
	}
	return languages
}

// Runner evaluates tests and executes actions on behalf of flow runs. It is
// safe for concurrent use by multiple runs.
type Runner struct {
	evaluator *excellent.Evaluator
	locations LocationResolver
	logger    *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEvaluator sets the template evaluator. Defaults to excellent.New().
func WithEvaluator(evaluator *excellent.Evaluator) RunnerOption {
	return func(r *Runner) {
		r.evaluator = evaluator
	}
}

// WithLocationResolver sets the resolver used by location tests.
func WithLocationResolver(resolver LocationResolver) RunnerOption {
	return func(r *Runner) {
		r.locations = resolver
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.evaluator == nil {
		evaluator, err := excellent.New(excellent.WithLogger(r.logger))
		if err != nil {
			return nil, NewRunnerError(ErrMsgEvaluatorCreate, err)
		}
		r.evaluator = evaluator
	}

	r.logger.Debug(LogMsgRunnerCreated)
	return r, nil
}

// Evaluator returns the template evaluator.
func (r *Runner) Evaluator() *excellent.Evaluator {
	return r.evaluator
}

// LocationResolver returns the location resolver, which may be nil.
func (r *Runner) LocationResolver() LocationResolver {
	return r.locations
}

// SubstituteVariables evaluates a template, collecting errors rather than failing.
func (r *Runner) SubstituteVariables(text string, ctx *excellent.EvaluationContext, opts ...excellent.TemplateOption) excellent.EvaluatedTemplate {
	return r.evaluator.EvaluateTemplate(text, ctx, opts...)
}

// EvaluateExpression evaluates a single expression.
func (r *Runner) EvaluateExpression(expression string, ctx *excellent.EvaluationContext) (excellent.Value, error) {
	return r.evaluator.EvaluateExpression(expression, ctx)
}

// EvaluateTest runs a rule test against the text of an incoming message.
func (r *Runner) EvaluateTest(test Test, run *RunState, ctx *excellent.EvaluationContext, text string) Result {
	result := test.Evaluate(r, run, ctx, text)
	r.logger.Debug(LogMsgTestEvaluated,
		zap.String(LogFieldType, test.Type()),
		zap.Bool(LogFieldMatched, result.Matched),
	)
	return result
}

// Execute runs actions in order and records their results on the run.
func (r *Runner) Execute(run *RunState, ctx *excellent.EvaluationContext, actions ...Action) []ActionResult {
	results := make([]ActionResult, 0, len(actions))
	for _, action := range actions {
		result := action.Execute(r, run, ctx)
		r.logger.Debug(LogMsgActionExecuted,
			zap.String(LogFieldType, action.Type()),
			zap.Int(LogFieldErrors, len(result.Errors)),
		)
		results = append(results, result)
	}
	run.Actions = append(run.Actions, results...)
	return results
}

// evaluateOperand substitutes variables in a test operand and trims the result.
func (r *Runner) evaluateOperand(operand string, ctx *excellent.EvaluationContext) (string, bool) {
	tmpl := r.SubstituteVariables(operand, ctx)
	if tmpl.HasErrors() {
		r.logger.Debug(LogMsgTestOperandError,
			zap.String(LogFieldOperand, operand),
			zap.Strings(LogFieldErrors, tmpl.Errors),
		)
		return "", false
	}
	return strings.TrimSpace(tmpl.Output), true
}
