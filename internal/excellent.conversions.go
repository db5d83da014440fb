package internal

import (
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Decimal arithmetic settings
const (
	DecimalPrecision = 34
)

// Boolean text forms
const (
	BoolTextTrue  = "TRUE"
	BoolTextFalse = "FALSE"
)

var (
	// decimalContext is shared by every arithmetic operation. apd contexts are
	// not mutated by operations, so concurrent use is safe.
	decimalContext = contextWithRounding(apd.RoundHalfUp)

	// truncContext rounds toward zero when producing integers
	truncContext = contextWithRounding(apd.RoundDown)
)

func contextWithRounding(r apd.Rounder) *apd.Context {
	c := apd.BaseContext.WithPrecision(DecimalPrecision)
	c.Rounding = r
	return c
}

// ToText renders a value canonically. A nil context renders dates in UTC, day first.
func ToText(v Value, ctx *EvalContext) (string, error) {
	switch v.kind {
	case KindText:
		return v.text, nil
	case KindNumber:
		return formatDecimal(v.num), nil
	case KindBoolean:
		if v.boolean {
			return BoolTextTrue, nil
		}
		return BoolTextFalse, nil
	case KindDateTime:
		return formatDateTime(v, ctx), nil
	default:
		return "", NewConversionError(v, KindText)
	}
}

// ToBoolean coerces a value for conditional use
func ToBoolean(v Value) (bool, error) {
	switch v.kind {
	case KindBoolean:
		return v.boolean, nil
	case KindNumber:
		return !v.num.IsZero(), nil
	case KindText:
		switch strings.ToLower(strings.TrimSpace(v.text)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, NewConversionError(v, KindBoolean)
	case KindDateTime:
		return true, nil
	default:
		return false, nil
	}
}

// ToDecimal coerces a value to a decimal. The returned decimal is never shared.
func ToDecimal(v Value) (*apd.Decimal, error) {
	switch v.kind {
	case KindNumber:
		return new(apd.Decimal).Set(v.num), nil
	case KindText:
		d, err := parseDecimal(v.text)
		if err != nil {
			return nil, NewConversionError(v, KindNumber)
		}
		return d, nil
	default:
		return nil, NewConversionError(v, KindNumber)
	}
}

// ToInteger coerces a value to a decimal and truncates it toward zero
func ToInteger(v Value) (int64, error) {
	d, err := ToDecimal(v)
	if err != nil {
		return 0, err
	}
	var whole apd.Decimal
	if _, err := truncContext.RoundToIntegralValue(&whole, d); err != nil {
		return 0, NewEvalErrorf(ErrorKindConversion, "%s: %s", ErrMsgIntegerOutOfRange, formatDecimal(d))
	}
	i, err := whole.Int64()
	if err != nil {
		return 0, NewEvalErrorf(ErrorKindConversion, "%s: %s", ErrMsgIntegerOutOfRange, formatDecimal(d))
	}
	return i, nil
}

// ToDateTime coerces a value to a date/time, parsing text in the context's
// timezone and date style
func ToDateTime(v Value, ctx *EvalContext) (Value, error) {
	switch v.kind {
	case KindDateTime:
		return v, nil
	case KindText:
		parsed, err := ParseDate(v.text, ctx)
		if err != nil {
			return Missing(), NewConversionError(v, KindDateTime)
		}
		return parsed, nil
	default:
		return Missing(), NewConversionError(v, KindDateTime)
	}
}

// parseDecimal accepts plain decimal literals only: an optional sign, digits
// and an optional fraction. Exponents, NaN and infinities are rejected.
func parseDecimal(s string) (*apd.Decimal, error) {
	s = strings.TrimSpace(s)
	if !isPlainDecimal(s) {
		return nil, NewEvalErrorf(ErrorKindConversion, ErrMsgCannotConvert, s, KindNumber)
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func isPlainDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		fraction := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			fraction++
		}
		if fraction == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// formatDecimal renders a decimal without exponent, trailing zeros or negative zero
func formatDecimal(d *apd.Decimal) string {
	var r apd.Decimal
	r.Reduce(d)
	if r.IsZero() {
		r.Negative = false
	}
	return r.Text('f')
}

func formatDateTime(v Value, ctx *EvalContext) string {
	loc := time.UTC
	style := DateStyleDayFirst
	if ctx != nil {
		loc = ctx.Location()
		style = ctx.DateStyle()
	}

	layout := DateFormatDayFirst
	if style == DateStyleMonthFirst {
		layout = DateFormatMonthFirst
	}
	if v.dateOnly {
		return v.datetime.Format(layout)
	}
	return v.datetime.In(loc).Format(layout + " " + TimeFormatShort)
}
