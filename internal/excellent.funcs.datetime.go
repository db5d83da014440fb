package internal

import (
	"time"
)

// Date function names
const (
	FuncNameDate      = "DATE"
	FuncNameDateValue = "DATEVALUE"
	FuncNameDay       = "DAY"
	FuncNameDays      = "DAYS"
	FuncNameEDate     = "EDATE"
	FuncNameHour      = "HOUR"
	FuncNameMinute    = "MINUTE"
	FuncNameMonth     = "MONTH"
	FuncNameNow       = "NOW"
	FuncNameSecond    = "SECOND"
	FuncNameToday     = "TODAY"
	FuncNameWeekday   = "WEEKDAY"
	FuncNameYear      = "YEAR"
)

// Date part bounds
const (
	minYear = 1
	maxYear = 9999
)

// DateLibrary returns the date function library
func DateLibrary() *FuncLibrary {
	return &FuncLibrary{
		Name: LibraryNameDate,
		Funcs: []*Func{
			{Name: FuncNameDate, MinArgs: 3, MaxArgs: 3, Fn: funcDate},
			{Name: FuncNameDateValue, MinArgs: 1, MaxArgs: 1, Fn: funcDateValue},
			{Name: FuncNameDay, MinArgs: 1, MaxArgs: 1, Fn: datePart(func(t time.Time) int { return t.Day() })},
			{Name: FuncNameDays, MinArgs: 2, MaxArgs: 2, Fn: funcDays},
			{Name: FuncNameEDate, MinArgs: 2, MaxArgs: 2, Fn: funcEDate},
			{Name: FuncNameHour, MinArgs: 1, MaxArgs: 1, Fn: datePart(func(t time.Time) int { return t.Hour() })},
			{Name: FuncNameMinute, MinArgs: 1, MaxArgs: 1, Fn: datePart(func(t time.Time) int { return t.Minute() })},
			{Name: FuncNameMonth, MinArgs: 1, MaxArgs: 1, Fn: datePart(func(t time.Time) int { return int(t.Month()) })},
			{Name: FuncNameNow, MinArgs: 0, MaxArgs: 0, Fn: funcNow},
			{Name: FuncNameSecond, MinArgs: 1, MaxArgs: 1, Fn: datePart(func(t time.Time) int { return t.Second() })},
			{Name: FuncNameToday, MinArgs: 0, MaxArgs: 0, Fn: funcToday},
			{Name: FuncNameWeekday, MinArgs: 1, MaxArgs: 1, Fn: datePart(func(t time.Time) int { return int(t.Weekday()) + 1 })},
			{Name: FuncNameYear, MinArgs: 1, MaxArgs: 1, Fn: datePart(func(t time.Time) int { return t.Year() })},
		},
	}
}

// funcDate builds a calendar date in the context timezone. Months and days
// outside their range roll over as in spreadsheet DATE.
func funcDate(ctx *EvalContext, args []Value) (Value, error) {
	parts := make([]int, 3)
	for i := range parts {
		n, err := argInt(args, i)
		if err != nil {
			return Missing(), err
		}
		parts[i] = n
	}
	if parts[0] < minYear || parts[0] > maxYear {
		return Missing(), NewEvalErrorf(ErrorKindFunctionDomain, "%s: year %d", ErrMsgInvalidDate, parts[0])
	}
	return Date(time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, contextLocation(ctx))), nil
}

func funcDateValue(ctx *EvalContext, args []Value) (Value, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	return ParseDate(s, ctx)
}

func funcDays(ctx *EvalContext, args []Value) (Value, error) {
	end, err := argDate(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	start, err := argDate(ctx, args, 1)
	if err != nil {
		return Missing(), err
	}
	return NumberFromInt(DaysBetween(end, start, ctx)), nil
}

func funcEDate(ctx *EvalContext, args []Value) (Value, error) {
	date, err := argDate(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	months, err := argInt(args, 1)
	if err != nil {
		return Missing(), err
	}
	return AddMonths(date, months, ctx), nil
}

func funcNow(ctx *EvalContext, _ []Value) (Value, error) {
	return DateTime(contextNow(ctx)), nil
}

func funcToday(ctx *EvalContext, _ []Value) (Value, error) {
	return Date(contextNow(ctx)), nil
}

// datePart builds the single-argument functions that extract a component of
// a date in the context timezone
func datePart(part func(time.Time) int) FuncImpl {
	return func(ctx *EvalContext, args []Value) (Value, error) {
		date, err := argDate(ctx, args, 0)
		if err != nil {
			return Missing(), err
		}
		return NumberFromInt(int64(part(localTime(date, ctx)))), nil
	}
}

func contextLocation(ctx *EvalContext) *time.Location {
	if ctx == nil {
		return time.UTC
	}
	return ctx.Location()
}

func contextNow(ctx *EvalContext) time.Time {
	if ctx == nil {
		return time.Now().UTC()
	}
	return ctx.Now()
}
