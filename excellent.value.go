package excellent

import (
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/itsatony/go-excellent/internal"
)

// Value is an immutable tagged union of text, decimal number, boolean,
// date/time and missing. The zero Value is Missing.
type Value = internal.Value

// Kind identifies the runtime type of a Value
type Kind = internal.Kind

// Value kinds
const (
	KindMissing  = internal.KindMissing
	KindText     = internal.KindText
	KindNumber   = internal.KindNumber
	KindBoolean  = internal.KindBoolean
	KindDateTime = internal.KindDateTime
)

// Missing returns the missing value
func Missing() Value { return internal.Missing() }

// Text returns a text value
func Text(s string) Value { return internal.Text(s) }

// Number returns a number value holding a copy of d
func Number(d *apd.Decimal) Value { return internal.Number(d) }

// NumberFromInt returns a number value
func NumberFromInt(i int64) Value { return internal.NumberFromInt(i) }

// NumberFromString parses a plain decimal literal such as "-12.50"
func NumberFromString(s string) (Value, error) { return internal.NumberFromString(s) }

// Boolean returns a boolean value
func Boolean(b bool) Value { return internal.Boolean(b) }

// DateTime returns a date/time value for an instant
func DateTime(t time.Time) Value { return internal.DateTime(t) }

// Date returns a date-only value; it renders without a time of day
func Date(t time.Time) Value { return internal.Date(t) }

// ToText renders a value as text. Dates use the context's location and date
// style; ctx may be nil.
func ToText(v Value, ctx *EvaluationContext) (string, error) {
	return internal.ToText(v, ctx)
}

// ToBoolean converts a value for conditional use
func ToBoolean(v Value) (bool, error) { return internal.ToBoolean(v) }

// ToDecimal converts a value to a freshly allocated decimal
func ToDecimal(v Value) (*apd.Decimal, error) { return internal.ToDecimal(v) }

// ToInteger converts a value to an integer, truncating toward zero
func ToInteger(v Value) (int64, error) { return internal.ToInteger(v) }

// ToDateTime converts a value to a date/time, parsing text in the context's
// location and date style
func ToDateTime(v Value, ctx *EvaluationContext) (Value, error) {
	return internal.ToDateTime(v, ctx)
}
