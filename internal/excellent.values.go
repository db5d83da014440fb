package internal

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Kind identifies the runtime type of a Value
type Kind int

// Value kind constants
const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindBoolean
	KindDateTime
)

// Value kind names
const (
	KindNameMissing  = "missing"
	KindNameText     = "text"
	KindNameNumber   = "number"
	KindNameBoolean  = "boolean"
	KindNameDateTime = "datetime"
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindText:
		return KindNameText
	case KindNumber:
		return KindNameNumber
	case KindBoolean:
		return KindNameBoolean
	case KindDateTime:
		return KindNameDateTime
	default:
		return KindNameMissing
	}
}

// Value is an immutable tagged union of the runtime types an expression can produce.
// The zero Value is Missing.
type Value struct {
	kind     Kind
	text     string
	num      *apd.Decimal
	boolean  bool
	datetime time.Time
	dateOnly bool
}

// Missing returns the missing value
func Missing() Value {
	return Value{kind: KindMissing}
}

// Text returns a text value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a number value. The decimal is copied so later changes to d
// are not visible through the value.
func Number(d *apd.Decimal) Value {
	if d == nil {
		return Missing()
	}
	c := new(apd.Decimal).Set(d)
	return Value{kind: KindNumber, num: c}
}

// NumberFromInt returns a number value for an integer
func NumberFromInt(i int64) Value {
	return Value{kind: KindNumber, num: apd.New(i, 0)}
}

// NumberFromString parses a decimal literal into a number value
func NumberFromString(s string) (Value, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Missing(), err
	}
	return Value{kind: KindNumber, num: d}, nil
}

// Boolean returns a boolean value
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// DateTime returns a date/time value carrying t's location
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, datetime: t}
}

// Date returns a date-only value at midnight of t's calendar day in t's location
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDateTime, datetime: time.Date(y, m, d, 0, 0, 0, 0, t.Location()), dateOnly: true}
}

// Kind returns the value kind
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is Missing
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// IsDateOnly reports whether a date/time value represents a calendar date
func (v Value) IsDateOnly() bool { return v.kind == KindDateTime && v.dateOnly }

// TextValue returns the raw text of a text value
func (v Value) TextValue() (string, bool) {
	return v.text, v.kind == KindText
}

// DecimalValue returns a copy of the decimal of a number value
func (v Value) DecimalValue() (*apd.Decimal, bool) {
	if v.kind != KindNumber {
		return nil, false
	}
	return new(apd.Decimal).Set(v.num), true
}

// BoolValue returns the raw boolean of a boolean value
func (v Value) BoolValue() (bool, bool) {
	return v.boolean, v.kind == KindBoolean
}

// TimeValue returns the instant of a date/time value
func (v Value) TimeValue() (time.Time, bool) {
	return v.datetime, v.kind == KindDateTime
}

// Equal reports whether two values have the same kind and content.
// Numbers compare by magnitude, so 1.0 equals 1.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num.Cmp(o.num) == 0
	case KindBoolean:
		return v.boolean == o.boolean
	case KindDateTime:
		return v.datetime.Equal(o.datetime) && v.dateOnly == o.dateOnly
	default:
		return true
	}
}

// String returns a debugging representation of the value
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("%q", v.text)
	case KindNumber:
		return formatDecimal(v.num)
	case KindBoolean:
		if v.boolean {
			return BoolTextTrue
		}
		return BoolTextFalse
	case KindDateTime:
		if v.dateOnly {
			return v.datetime.Format(DateFormatISO)
		}
		return v.datetime.Format(time.RFC3339)
	default:
		return KindNameMissing
	}
}
