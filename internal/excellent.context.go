package internal

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// DateStyle decides how ambiguous numeric dates such as 01/02/2015 are read
type DateStyle int

// Date style constants
const (
	DateStyleDayFirst DateStyle = iota
	DateStyleMonthFirst
)

// Date style names
const (
	DateStyleNameDayFirst   = "day_first"
	DateStyleNameMonthFirst = "month_first"
)

// String returns the date style name
func (s DateStyle) String() string {
	if s == DateStyleMonthFirst {
		return DateStyleNameMonthFirst
	}
	return DateStyleNameDayFirst
}

// Context path constants
const (
	PathSeparator = "."
	DefaultKey    = "*"
	ListSeparator = ", "
)

// EvalContext is the read-only environment an expression is evaluated against.
// Keys are folded to lower case at construction; leaves are Values and
// branches are map[string]any.
type EvalContext struct {
	vars     map[string]any
	location *time.Location
	style    DateStyle
	now      time.Time
}

// NewEvalContext builds a context from Go data. A nil location means UTC; a
// zero now means the wall clock is read on every NOW() or TODAY() call.
func NewEvalContext(vars map[string]any, location *time.Location, style DateStyle, now time.Time) (*EvalContext, error) {
	if location == nil {
		location = time.UTC
	}
	folded, err := foldMap(vars, "")
	if err != nil {
		return nil, err
	}
	return &EvalContext{
		vars:     folded,
		location: location,
		style:    style,
		now:      now,
	}, nil
}

// Location returns the context timezone
func (c *EvalContext) Location() *time.Location { return c.location }

// DateStyle returns the date disambiguation style
func (c *EvalContext) DateStyle() DateStyle { return c.style }

// Now returns the context clock in the context timezone
func (c *EvalContext) Now() time.Time {
	if c.now.IsZero() {
		return time.Now().In(c.location)
	}
	return c.now.In(c.location)
}

// Has reports whether a path resolves to a value
func (c *EvalContext) Has(path string) bool {
	_, err := c.Resolve(path)
	return err == nil
}

// Resolve descends the variable tree one path component at a time.
// A path ending on a branch yields the branch's "*" entry when present.
func (c *EvalContext) Resolve(path string) (Value, error) {
	if path == "" {
		return Missing(), NewUndefinedIdentifierError(path)
	}

	var current any = c.vars
	for _, part := range strings.Split(strings.ToLower(path), PathSeparator) {
		branch, ok := current.(map[string]any)
		if !ok {
			return Missing(), NewUndefinedIdentifierError(path)
		}
		next, ok := branch[part]
		if !ok {
			return Missing(), NewUndefinedIdentifierError(path)
		}
		current = next
	}

	switch v := current.(type) {
	case Value:
		return v, nil
	case map[string]any:
		if def, ok := v[DefaultKey].(Value); ok {
			return def, nil
		}
	}
	return Missing(), NewUndefinedIdentifierError(path)
}

// Keys returns the top-level variable names
func (c *EvalContext) Keys() []string {
	keys := make([]string, 0, len(c.vars))
	for k := range c.vars {
		keys = append(keys, k)
	}
	return keys
}

func foldMap(in map[string]any, prefix string) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, raw := range in {
		folded := strings.ToLower(key)
		path := folded
		if prefix != "" {
			path = prefix + PathSeparator + folded
		}
		if _, exists := out[folded]; exists {
			return nil, NewEvalErrorf(ErrorKindConversion, "%s: %s", ErrMsgContextDuplicateKey, path)
		}
		v, err := FromGo(raw, path)
		if err != nil {
			return nil, err
		}
		out[folded] = v
	}
	return out, nil
}

// FromGo converts a Go value into a context leaf (Value) or branch (map[string]any)
func FromGo(raw any, path string) (any, error) {
	switch v := raw.(type) {
	case nil:
		return Missing(), nil
	case Value:
		return v, nil
	case string:
		return Text(v), nil
	case bool:
		return Boolean(v), nil
	case int:
		return NumberFromInt(int64(v)), nil
	case int32:
		return NumberFromInt(int64(v)), nil
	case int64:
		return NumberFromInt(v), nil
	case uint:
		return numberFromUint(uint64(v)), nil
	case uint32:
		return NumberFromInt(int64(v)), nil
	case uint64:
		return numberFromUint(v), nil
	case float32:
		return numberFromFloat(float64(v), path)
	case float64:
		return numberFromFloat(v, path)
	case *apd.Decimal:
		return Number(v), nil
	case time.Time:
		return DateTime(v), nil
	case []string:
		return Text(strings.Join(v, ListSeparator)), nil
	case map[string]string:
		branch := make(map[string]any, len(v))
		for k, s := range v {
			branch[k] = s
		}
		return foldMap(branch, path)
	case map[string]any:
		return foldMap(v, path)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			leaf, err := FromGo(item, path)
			if err != nil {
				return nil, err
			}
			val, ok := leaf.(Value)
			if !ok {
				return nil, NewEvalErrorf(ErrorKindConversion, "%s: %s", ErrMsgContextUnsupported, path)
			}
			s, err := ToText(val, nil)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		return Text(strings.Join(parts, ListSeparator)), nil
	default:
		return nil, NewEvalErrorf(ErrorKindConversion, "%s: %s (%T)", ErrMsgContextUnsupported, path, raw)
	}
}

func numberFromUint(u uint64) Value {
	v, _ := NumberFromString(strconv.FormatUint(u, IntBase10))
	return v
}

func numberFromFloat(f float64, path string) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing(), NewEvalErrorf(ErrorKindConversion, "%s: %s", ErrMsgContextNonFinite, path)
	}
	return NumberFromString(strconv.FormatFloat(f, FloatFormatFlag, FloatPrecisionAll, FloatBitSize64))
}
