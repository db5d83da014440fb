package internal

import (
	"strings"
	"time"
)

// Date rendering layouts
const (
	DateFormatISO        = "2006-01-02"
	DateFormatDayFirst   = "02-01-2006"
	DateFormatMonthFirst = "01-02-2006"
	TimeFormatShort      = "15:04"
)

// Unambiguous date/time layouts tried before any day/month ordering applies
var isoDateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Numeric layouts after separators are normalized to '-'
var (
	dayFirstDateLayouts   = []string{"2-1-2006", "2-1-06"}
	monthFirstDateLayouts = []string{"1-2-2006", "1-2-06"}
	numericTimeSuffixes   = []string{" 15:04:05", " 15:04"}
)

// Named-month layouts, unambiguous in either style
var namedDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var dateSeparatorReplacer = strings.NewReplacer("/", "-", ".", "-")

// ParseDate parses date text in the context timezone. Numeric dates whose
// day and month order is ambiguous are read using the context date style.
// Text without a time of day yields a date-only value.
func ParseDate(s string, ctx *EvalContext) (Value, error) {
	s = strings.TrimSpace(s)
	loc := time.UTC
	style := DateStyleDayFirst
	if ctx != nil {
		loc = ctx.Location()
		style = ctx.DateStyle()
	}

	for _, layout := range isoDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return DateTime(t), nil
		}
	}
	if t, err := time.ParseInLocation(DateFormatISO, s, loc); err == nil {
		return Date(t), nil
	}

	dateLayouts := dayFirstDateLayouts
	if style == DateStyleMonthFirst {
		dateLayouts = monthFirstDateLayouts
	}
	normalized := dateSeparatorReplacer.Replace(s)
	for _, layout := range dateLayouts {
		for _, suffix := range numericTimeSuffixes {
			if t, err := time.ParseInLocation(layout+suffix, normalized, loc); err == nil {
				return DateTime(t), nil
			}
		}
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return Date(t), nil
		}
	}

	for _, layout := range namedDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Date(t), nil
		}
	}

	return Missing(), NewEvalErrorf(ErrorKindFunctionDomain, "%s: %q", ErrMsgInvalidDate, s)
}

// localTime returns the wall-clock time of a date/time value in the context
// timezone. Date-only values keep their calendar day.
func localTime(v Value, ctx *EvalContext) time.Time {
	if v.dateOnly || ctx == nil {
		return v.datetime
	}
	return v.datetime.In(ctx.Location())
}

// AddDays moves a date/time value by a number of days. Whole days move the
// calendar day and keep a date-only value date-only; fractions are added as
// elapsed time.
func AddDays(v Value, days int64, fraction time.Duration, ctx *EvalContext) Value {
	t := localTime(v, ctx).AddDate(0, 0, int(days))
	if fraction == 0 {
		if v.dateOnly {
			return Date(t)
		}
		return DateTime(t)
	}
	return DateTime(t.Add(fraction))
}

// DaysBetween returns the number of calendar days from start to end in the
// context timezone
func DaysBetween(end, start Value, ctx *EvalContext) int64 {
	e := calendarDay(localTime(end, ctx))
	s := calendarDay(localTime(start, ctx))
	return (e.Unix() - s.Unix()) / secondsPerDay
}

// AddMonths moves a date/time value by whole months, clamping the day to the
// last day of the target month
func AddMonths(v Value, months int, ctx *EvalContext) Value {
	t := localTime(v, ctx)
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	moved := time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if v.dateOnly {
		return Date(moved)
	}
	return DateTime(moved)
}

const secondsPerDay = 24 * 60 * 60

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
