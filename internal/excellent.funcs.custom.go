package internal

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/apd/v3"
)

// Custom function names
const (
	FuncNameField           = "FIELD"
	FuncNameFirstWord       = "FIRST_WORD"
	FuncNamePercent         = "PERCENT"
	FuncNameRemoveFirstWord = "REMOVE_FIRST_WORD"
	FuncNameWord            = "WORD"
	FuncNameWordCount       = "WORD_COUNT"
	FuncNameWordSlice       = "WORD_SLICE"
)

// Custom function error messages
const (
	ErrMsgFieldIndex     = "field index must be positive"
	ErrMsgWordIndex      = "word index cannot be zero"
	ErrMsgWordSliceStart = "slice start cannot be zero"
)

const (
	fieldDefaultDelimiter = " "
	percentSuffix         = "%"
)

// CustomLibrary returns messaging-oriented helpers for picking words and
// fields out of inbound text
func CustomLibrary() *FuncLibrary {
	return &FuncLibrary{
		Name: LibraryNameCustom,
		Funcs: []*Func{
			{Name: FuncNameField, MinArgs: 2, MaxArgs: 3, Fn: funcField},
			{Name: FuncNameFirstWord, MinArgs: 1, MaxArgs: 1, Fn: funcFirstWord},
			{Name: FuncNamePercent, MinArgs: 1, MaxArgs: 1, Fn: funcPercent},
			{Name: FuncNameRemoveFirstWord, MinArgs: 1, MaxArgs: 1, Fn: funcRemoveFirstWord},
			{Name: FuncNameWord, MinArgs: 2, MaxArgs: 3, Fn: funcWord},
			{Name: FuncNameWordCount, MinArgs: 1, MaxArgs: 2, Fn: funcWordCount},
			{Name: FuncNameWordSlice, MinArgs: 2, MaxArgs: 4, Fn: funcWordSlice},
		},
	}
}

// funcField returns the 1-based field of text split by a delimiter, trimmed.
// Missing fields are empty.
func funcField(ctx *EvalContext, args []Value) (Value, error) {
	text, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	index, err := argInt(args, 1)
	if err != nil {
		return Missing(), err
	}
	if index < 1 {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgFieldIndex)
	}
	delimiter := fieldDefaultDelimiter
	if len(args) > 2 {
		if delimiter, err = argText(ctx, args, 2); err != nil {
			return Missing(), err
		}
	}

	var fields []string
	if delimiter == fieldDefaultDelimiter {
		fields = strings.Fields(text)
	} else {
		fields = strings.Split(text, delimiter)
	}
	if index > len(fields) {
		return Text(""), nil
	}
	return Text(strings.TrimSpace(fields[index-1])), nil
}

func funcFirstWord(ctx *EvalContext, args []Value) (Value, error) {
	text, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	words := splitWords(text, true)
	if len(words) == 0 {
		return Text(""), nil
	}
	return Text(words[0]), nil
}

func funcRemoveFirstWord(ctx *EvalContext, args []Value) (Value, error) {
	text, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return Text(""), nil
	}
	return Text(strings.TrimLeftFunc(trimmed[idx:], unicode.IsSpace)), nil
}

// funcPercent renders a fraction as a whole percentage, so 0.5 is 50%
func funcPercent(_ *EvalContext, args []Value) (Value, error) {
	d, err := argDecimal(args, 0)
	if err != nil {
		return Missing(), err
	}
	var scaled apd.Decimal
	if _, err := decimalContext.Mul(&scaled, d, apd.New(100, 0)); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	rounded, err := roundDecimal(&scaled, 0, apd.RoundHalfUp)
	if err != nil {
		return Missing(), err
	}
	return Text(formatDecimal(rounded) + percentSuffix), nil
}

// funcWord returns the nth word, counting from the end when n is negative
func funcWord(ctx *EvalContext, args []Value) (Value, error) {
	text, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	n, err := argInt(args, 1)
	if err != nil {
		return Missing(), err
	}
	bySpaces, err := optBool(args, 2)
	if err != nil {
		return Missing(), err
	}
	if n == 0 {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgWordIndex)
	}

	words := splitWords(text, bySpaces)
	if n < 0 {
		n = len(words) + n + 1
	}
	if n < 1 || n > len(words) {
		return Text(""), nil
	}
	return Text(words[n-1]), nil
}

func funcWordCount(ctx *EvalContext, args []Value) (Value, error) {
	text, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	bySpaces, err := optBool(args, 1)
	if err != nil {
		return Missing(), err
	}
	return NumberFromInt(int64(len(splitWords(text, bySpaces)))), nil
}

// funcWordSlice returns words from start up to but not including stop, both
// 1-based. A stop of zero means the end; negative positions count from the end.
func funcWordSlice(ctx *EvalContext, args []Value) (Value, error) {
	text, err := argText(ctx, args, 0)
	if err != nil {
		return Missing(), err
	}
	start, err := argInt(args, 1)
	if err != nil {
		return Missing(), err
	}
	stop, err := optInt(args, 2, 0)
	if err != nil {
		return Missing(), err
	}
	bySpaces, err := optBool(args, 3)
	if err != nil {
		return Missing(), err
	}
	if start == 0 {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgWordSliceStart)
	}

	words := splitWords(text, bySpaces)
	from := start - 1
	if start < 0 {
		from = len(words) + start
	}
	to := len(words)
	if stop > 0 {
		to = stop - 1
	} else if stop < 0 {
		to = len(words) + stop
	}
	from = max(from, 0)
	to = min(to, len(words))
	if from >= to {
		return Text(""), nil
	}
	return Text(strings.Join(words[from:to], " ")), nil
}

// splitWords splits on whitespace, or on any run of characters that are not
// letters, digits or underscores
func splitWords(text string, bySpaces bool) []string {
	if bySpaces {
		return strings.Fields(text)
	}
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != CharUnderscore
	})
}

func optBool(args []Value, i int) (bool, error) {
	if i >= len(args) {
		return false, nil
	}
	return argBool(args, i)
}
