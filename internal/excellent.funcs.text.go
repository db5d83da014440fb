package internal

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Text function names
const (
	FuncNameChar        = "CHAR"
	FuncNameClean       = "CLEAN"
	FuncNameCode        = "CODE"
	FuncNameConcatenate = "CONCATENATE"
	FuncNameFixed       = "FIXED"
	FuncNameLeft        = "LEFT"
	FuncNameLen         = "LEN"
	FuncNameLower       = "LOWER"
	FuncNameProper      = "PROPER"
	FuncNameRept        = "REPT"
	FuncNameRight       = "RIGHT"
	FuncNameSubstitute  = "SUBSTITUTE"
	FuncNameUnichar     = "UNICHAR"
	FuncNameUnicode     = "UNICODE"
	FuncNameUpper       = "UPPER"
)

// Text function error messages
const (
	ErrMsgNegativeCount  = "count cannot be negative"
	ErrMsgEmptyText      = "text cannot be empty"
	ErrMsgInvalidCode    = "invalid character code"
	ErrMsgRepeatTooLarge = "repeated text too large"
)

// Text function defaults
const (
	fixedDefaultDecimals = 2
	maxReptLength        = 1 << 20
	thousandsSeparator   = ","
)

// TextLibrary returns the text function library
func TextLibrary() *FuncLibrary {
	return &FuncLibrary{
		Name: LibraryNameText,
		Funcs: []*Func{
			{Name: FuncNameChar, MinArgs: 1, MaxArgs: 1, Fn: funcChar},
			{Name: FuncNameClean, MinArgs: 1, MaxArgs: 1, Fn: funcClean},
			{Name: FuncNameCode, MinArgs: 1, MaxArgs: 1, Fn: funcCode},
			{Name: FuncNameConcatenate, MinArgs: 1, MaxArgs: -1, Fn: funcConcatenate},
			{Name: FuncNameFixed, MinArgs: 1, MaxArgs: 3, Fn: funcFixed},
			{Name: FuncNameLeft, MinArgs: 2, MaxArgs: 2, Fn: funcLeft},
			{Name: FuncNameLen, MinArgs: 1, MaxArgs: 1, Fn: funcLen},
			{Name: FuncNameLower, MinArgs: 1, MaxArgs: 1, Fn: funcLower},
			{Name: FuncNameProper, MinArgs: 1, MaxArgs: 1, Fn: funcProper},
			{Name: FuncNameRept, MinArgs: 2, MaxArgs: 2, Fn: funcRept},
			{Name: FuncNameRight, MinArgs: 2, MaxArgs: 2, Fn: funcRight},
			{Name: FuncNameSubstitute, MinArgs: 3, MaxArgs: 4, Fn: funcSubstitute},
			{Name: FuncNameUnichar, MinArgs: 1, MaxArgs: 1, Fn: funcChar},
			{Name: FuncNameUnicode, MinArgs: 1, MaxArgs: 1, Fn: funcCode},
			{Name: FuncNameUpper, MinArgs: 1, MaxArgs: 1, Fn: funcUpper},
		},
	}
}

func funcChar(_ *EvalContext, args []Value) (Value, error) {
	code, err := argInt(args, 0)
	if err != nil {
		return Missing(), err
	}
	r := rune(code)
	if code <= 0 || !utf8.ValidRune(r) {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgInvalidCode)
	}
	return Text(string(r)), nil
}

func funcClean(ctx *EvalContext, args []Value) (Value, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	return Text(strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)), nil
}

func funcCode(ctx *EvalContext, args []Value) (Value, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	if s == "" {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgEmptyText)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return NumberFromInt(int64(r)), nil
}

func funcConcatenate(ctx *EvalContext, args []Value) (Value, error) {
	var sb strings.Builder
	for i := range args {
		s, err := argText(ctx, args, i)
		if err != nil {
			return Missing(), err
		}
		sb.WriteString(s)
	}
	return Text(sb.String()), nil
}

// funcFixed rounds a number to a number of decimals and renders it with a
// fixed count of decimal places, grouping thousands unless told not to
func funcFixed(_ *EvalContext, args []Value) (Value, error) {
	d, err := argDecimal(args, 0)
	if err != nil {
		return Missing(), err
	}
	decimals, err := optInt(args, 1, fixedDefaultDecimals)
	if err != nil {
		return Missing(), err
	}
	noCommas := false
	if len(args) > 2 {
		if noCommas, err = argBool(args, 2); err != nil {
			return Missing(), err
		}
	}

	rounded, err := roundDecimal(d, decimals, apd.RoundHalfUp)
	if err != nil {
		return Missing(), err
	}
	if decimals < 0 {
		decimals = 0
	}

	var quantized apd.Decimal
	if _, err := decimalContext.Quantize(&quantized, rounded, int32(-decimals)); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	if quantized.IsZero() {
		quantized.Negative = false
	}
	text := quantized.Text('f')
	if !noCommas {
		text = groupThousands(text)
	}
	return Text(text), nil
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, fraction, hasFraction := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteString(thousandsSeparator)
		}
		sb.WriteRune(r)
	}
	if hasFraction {
		sb.WriteByte('.')
		sb.WriteString(fraction)
	}
	return sign + sb.String()
}

func funcLeft(ctx *EvalContext, args []Value) (Value, error) {
	s, n, err := textAndCount(ctx, args)
	if err != nil {
		return Missing(), err
	}
	runes := []rune(s)
	if n > len(runes) {
		n = len(runes)
	}
	return Text(string(runes[:n])), nil
}

func funcRight(ctx *EvalContext, args []Value) (Value, error) {
	s, n, err := textAndCount(ctx, args)
	if err != nil {
		return Missing(), err
	}
	runes := []rune(s)
	if n > len(runes) {
		n = len(runes)
	}
	return Text(string(runes[len(runes)-n:])), nil
}

func textAndCount(ctx *EvalContext, args []Value) (string, int, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return "", 0, err
	}
	n, err := argInt(args, 1)
	if err != nil {
		return "", 0, err
	}
	if n < 0 {
		return "", 0, NewEvalError(ErrorKindFunctionDomain, ErrMsgNegativeCount)
	}
	return s, n, nil
}

func funcLen(ctx *EvalContext, args []Value) (Value, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	return NumberFromInt(int64(utf8.RuneCountInString(s))), nil
}

func funcLower(ctx *EvalContext, args []Value) (Value, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	return Text(strings.ToLower(s)), nil
}

func funcUpper(ctx *EvalContext, args []Value) (Value, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	return Text(strings.ToUpper(s)), nil
}

func funcProper(ctx *EvalContext, args []Value) (Value, error) {
	s, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	// cases.Caser keeps state, so each call gets its own
	return Text(cases.Title(language.Und).String(s)), nil
}

func funcRept(ctx *EvalContext, args []Value) (Value, error) {
	s, n, err := textAndCount(ctx, args)
	if err != nil {
		return Missing(), err
	}
	if n > 0 && len(s) > maxReptLength/n {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgRepeatTooLarge)
	}
	return Text(strings.Repeat(s, n)), nil
}

// funcSubstitute replaces old with new in text, either everywhere or only at
// the given 1-based occurrence
func funcSubstitute(ctx *EvalContext, args []Value) (Value, error) {
	parts := make([]string, 3)
	for i := range parts {
		s, err := argText(ctx, args, i)
		if err != nil {
			return Missing(), err
		}
		parts[i] = s
	}
	text, old, replacement := parts[0], parts[1], parts[2]

	if len(args) < 4 {
		if old == "" {
			return Text(text), nil
		}
		return Text(strings.ReplaceAll(text, old, replacement)), nil
	}

	instance, err := argInt(args, 3)
	if err != nil {
		return Missing(), err
	}
	if instance < 1 {
		return Missing(), NewEvalErrorf(ErrorKindFunctionDomain, "%s: instance %d", ErrMsgInvalidArgument, instance)
	}
	if old == "" {
		return Text(text), nil
	}

	offset := 0
	for seen := 1; ; seen++ {
		idx := strings.Index(text[offset:], old)
		if idx < 0 {
			return Text(text), nil
		}
		start := offset + idx
		if seen == instance {
			return Text(text[:start] + replacement + text[start+len(old):]), nil
		}
		offset = start + len(old)
	}
}
