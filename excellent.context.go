package excellent

import (
	"strings"
	"time"

	"github.com/itsatony/go-excellent/internal"
)

// EvaluationContext is the read-only variable and locale environment an
// expression is evaluated against. Build one per evaluation call with
// NewEvaluationContext; it is never mutated afterwards.
type EvaluationContext = internal.EvalContext

// DateStyle decides how ambiguous numeric dates such as 01/02/2015 are read
type DateStyle = internal.DateStyle

// Date styles
const (
	DateStyleDayFirst   = internal.DateStyleDayFirst
	DateStyleMonthFirst = internal.DateStyleMonthFirst
)

// ParseDateStyle parses a date style name. Both "day_first" and "DAY_FIRST"
// are accepted; an empty name means day first.
func ParseDateStyle(name string) (DateStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DateStyleNameDayFirst:
		return DateStyleDayFirst, nil
	case DateStyleNameMonthFirst:
		return DateStyleMonthFirst, nil
	default:
		return DateStyleDayFirst, NewConfigError(ErrMsgInvalidDateStyle, nil)
	}
}

// ContextOption configures an EvaluationContext
type ContextOption func(*contextConfig)

type contextConfig struct {
	location *time.Location
	style    DateStyle
	now      time.Time
}

// WithTimezone sets the location dates are parsed, rendered and compared in.
// Default: UTC
func WithTimezone(location *time.Location) ContextOption {
	return func(c *contextConfig) {
		if location != nil {
			c.location = location
		}
	}
}

// WithDateStyle sets the day-first or month-first reading of ambiguous dates.
// Default: DateStyleDayFirst
func WithDateStyle(style DateStyle) ContextOption {
	return func(c *contextConfig) {
		c.style = style
	}
}

// WithNow pins the clock read by NOW() and TODAY()
func WithNow(now time.Time) ContextOption {
	return func(c *contextConfig) {
		c.now = now
	}
}

// NewEvaluationContext builds a context from Go data. Map keys are matched
// case-insensitively; leaves may be strings, booleans, integers, floats,
// *apd.Decimal, time.Time, Value, nil, slices and nested maps. A "*" key in a
// nested map is the value used when the map itself is referenced.
func NewEvaluationContext(vars map[string]any, opts ...ContextOption) (*EvaluationContext, error) {
	config := &contextConfig{
		location: time.UTC,
		style:    DateStyleDayFirst,
	}
	for _, opt := range opts {
		opt(config)
	}

	ctx, err := internal.NewEvalContext(vars, config.location, config.style, config.now)
	if err != nil {
		return nil, NewContextError(err)
	}
	return ctx, nil
}

// MustNewEvaluationContext builds a context and panics on error
func MustNewEvaluationContext(vars map[string]any, opts ...ContextOption) *EvaluationContext {
	ctx, err := NewEvaluationContext(vars, opts...)
	if err != nil {
		panic(err)
	}
	return ctx
}
