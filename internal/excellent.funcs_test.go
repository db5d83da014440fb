package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncRegistry_Construction(t *testing.T) {
	registry := newTestRegistry(t)

	assert.True(t, registry.Has("len"))
	assert.True(t, registry.Has("Len"))
	assert.True(t, registry.Has("WORD_COUNT"))
	assert.False(t, registry.Has("nope"))

	lib, ok := registry.Library("sum")
	require.True(t, ok)
	assert.Equal(t, LibraryNameMath, lib)

	names := registry.List()
	assert.Len(t, names, registry.Count())
	assert.IsIncreasing(t, names)
}

func TestFuncRegistry_RejectsInvalid(t *testing.T) {
	noop := func(_ *EvalContext, _ []Value) (Value, error) { return Missing(), nil }

	tests := []struct {
		name    string
		libs    []*FuncLibrary
		message string
	}{
		{
			"duplicate across libraries",
			[]*FuncLibrary{
				{Name: "a", Funcs: []*Func{{Name: "foo", MinArgs: 0, MaxArgs: 0, Fn: noop}}},
				{Name: "b", Funcs: []*Func{{Name: "FOO", MinArgs: 0, MaxArgs: 0, Fn: noop}}},
			},
			ErrMsgFuncAlreadyExists,
		},
		{
			"duplicate within library",
			[]*FuncLibrary{{Name: "a", Funcs: []*Func{
				{Name: "foo", MinArgs: 0, MaxArgs: 0, Fn: noop},
				{Name: "foo", MinArgs: 0, MaxArgs: 0, Fn: noop},
			}}},
			ErrMsgFuncAlreadyExists,
		},
		{"nil library", []*FuncLibrary{nil}, ErrMsgFuncNilLibrary},
		{"nil func", []*FuncLibrary{{Name: "a", Funcs: []*Func{nil}}}, ErrMsgFuncNilFunc},
		{"nil impl", []*FuncLibrary{{Name: "a", Funcs: []*Func{{Name: "foo"}}}}, ErrMsgFuncNilFunc},
		{"empty name", []*FuncLibrary{{Name: "a", Funcs: []*Func{{Name: " ", Fn: noop}}}}, ErrMsgFuncEmptyName},
		{"max below min", []*FuncLibrary{{Name: "a", Funcs: []*Func{{Name: "foo", MinArgs: 2, MaxArgs: 1, Fn: noop}}}}, ErrMsgFuncInvalidArity},
		{"negative min", []*FuncLibrary{{Name: "a", Funcs: []*Func{{Name: "foo", MinArgs: -1, MaxArgs: 1, Fn: noop}}}}, ErrMsgFuncInvalidArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFuncRegistry(tt.libs...)

			require.Error(t, err)
			var regErr *FuncRegistryError
			require.True(t, errors.As(err, &regErr))
			assert.Equal(t, tt.message, regErr.Message)
		})
	}
}

func TestFuncRegistry_DuplicateNamesBothLibraries(t *testing.T) {
	_, err := NewFuncRegistry(TextLibrary(), TextLibrary())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "text, text")
}

func TestFuncRegistry_CallWrapsFailures(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Call(nil, "char", []Value{NumberFromInt(-1)})
	require.Error(t, err)
	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, ErrorKindFunctionDomain, evalErr.Kind)
	assert.Contains(t, evalErr.Error(), "function CHAR failed")
}

func TestBuiltinLibrary(t *testing.T) {
	lib, ok := BuiltinLibrary("MATH")
	require.True(t, ok)
	assert.Equal(t, LibraryNameMath, lib.Name)

	_, ok = BuiltinLibrary("nope")
	assert.False(t, ok)
}

func TestTextFunctions(t *testing.T) {
	ctx := newTestContext(t, map[string]any{"name": "joe flow"})

	tests := []struct {
		expr     string
		expected string
	}{
		{"CHAR(65)", "A"},
		{"UNICHAR(9731)", "☃"},
		{`CLEAN("a` + "\x07" + `b")`, "ab"},
		{`CODE("A")`, "65"},
		{`UNICODE("☃")`, "9731"},
		{`CONCATENATE("a", 1, true)`, "a1TRUE"},
		{"FIXED(1234.567)", "1,234.57"},
		{"FIXED(1234.567, 1, true)", "1234.6"},
		{"FIXED(-1234567.5, 0)", "-1,234,568"},
		{"FIXED(1234.5, -2)", "1,200"},
		{"FIXED(0.001, 2)", "0.00"},
		{`LEFT("hello", 2)`, "he"},
		{`LEFT("hé", 10)`, "hé"},
		{`RIGHT("hello", 3)`, "llo"},
		{`LEN("héllo")`, "5"},
		{`LOWER("ABC")`, "abc"},
		{`UPPER("abc")`, "ABC"},
		{"PROPER(name)", "Joe Flow"},
		{`PROPER("mIXED cASE")`, "Mixed Case"},
		{`REPT("ab", 3)`, "ababab"},
		{`SUBSTITUTE("a-b-c", "-", "+")`, "a+b+c"},
		{`SUBSTITUTE("a-b-c", "-", "+", 2)`, "a-b+c"},
		{`SUBSTITUTE("a-b-c", "-", "+", 5)`, "a-b-c"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.expr, ctx))
		})
	}
}

func TestMathFunctions(t *testing.T) {
	ctx := newTestContext(t, nil)

	tests := []struct {
		expr     string
		expected string
	}{
		{"ABS(-1.5)", "1.5"},
		{"AVERAGE(1, 2, 3, 4)", "2.5"},
		{"EXP(0)", "1"},
		{"INT(1.9)", "1"},
		{"INT(-1.5)", "-2"},
		{"MAX(1, 10, 3)", "10"},
		{"MIN(4, -2, 3)", "-2"},
		{`MAX("5", 2)`, "5"},
		{"MOD(10, 3)", "1"},
		{"MOD(-10, 3)", "2"},
		{"MOD(10, -3)", "-2"},
		{"POWER(2, 0.5) > 1.41", "TRUE"},
		{"POWER(3, 3)", "27"},
		{"ROUND(2.5)", "3"},
		{"ROUND(-2.5)", "-3"},
		{"ROUND(3.14159, 2)", "3.14"},
		{"ROUND(1234, -2)", "1200"},
		{"ROUNDDOWN(3.99)", "3"},
		{"ROUNDUP(3.01)", "4"},
		{"ROUNDUP(-3.01)", "-4"},
		{"SUM(1, 2.5, \"3\")", "6.5"},
		{"TRUNC(-3.99)", "-3"},
		{"TRUNC(3.14159, 3)", "3.141"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.expr, ctx))
		})
	}

	_, err := Evaluate("MOD(1, 0)", newTestRegistry(t), ctx, 0)
	assert.Error(t, err)
	_, err = Evaluate("POWER(0, -1)", newTestRegistry(t), ctx, 0)
	assert.Error(t, err)
}

func TestFunctionArgumentLimits(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := newTestContext(t, nil)

	tests := []struct {
		name string
		expr string
	}{
		{"repeat count near int64 limit", `REPT("ab", 4611686018427387904)`},
		{"repeat count past int32", `REPT("ab", 4294967296)`},
		{"repeat output too large", `REPT("ab", 1000000)`},
		{"char code past int32", "CHAR(4294967361)"},
		{"round places past int32", "ROUND(1.5, 4294967296)"},
		{"round places past limit", "ROUND(1.5, 100000)"},
		{"negative round places past limit", "ROUNDDOWN(1.5, -100000)"},
		{"left count past int32", `LEFT("abc", 4294967296)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = Evaluate(tt.expr, registry, ctx, 0)
			})
			require.Error(t, err)
			var evalErr *EvalError
			require.True(t, errors.As(err, &evalErr))
			assert.Equal(t, ErrorKindFunctionDomain, evalErr.Kind)
		})
	}

	assert.Equal(t, "abc", evalText(t, `LEFT("abc", 2147483647)`, ctx))
}

func TestFuncMod_Overflow(t *testing.T) {
	args := []Value{Number(apd.New(1, 99999)), Number(apd.New(1, -99999))}

	_, err := funcMod(nil, args)
	require.Error(t, err)
	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, ErrorKindFunctionDomain, evalErr.Kind)
}

func TestFuncRegistry_CallRecoversPanic(t *testing.T) {
	registry, err := NewFuncRegistry(&FuncLibrary{Name: "test", Funcs: []*Func{{
		Name:    "BOOM",
		MinArgs: 0,
		MaxArgs: 0,
		Fn: func(*EvalContext, []Value) (Value, error) {
			panic("boom")
		},
	}}})
	require.NoError(t, err)

	require.NotPanics(t, func() {
		_, err = registry.Call(nil, "boom", nil)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgFuncPanicked)
}

func TestLogicalFunctions(t *testing.T) {
	ctx := newTestContext(t, map[string]any{"age": 34})

	tests := []struct {
		expr     string
		expected string
	}{
		{"AND(true, 1, \"true\")", "TRUE"},
		{"AND(true, 0)", "FALSE"},
		{"OR(false, 0, 1)", "TRUE"},
		{"OR(false)", "FALSE"},
		{"NOT(false)", "TRUE"},
		{"TRUE()", "TRUE"},
		{"false()", "FALSE"},
		{`IF(age > 18, "adult", "minor")`, "adult"},
		{`IF(age < 18, "adult", "minor")`, "minor"},
		{"IF(1)", "TRUE"},
		{"IF(0)", "FALSE"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.expr, ctx))
		})
	}

	_, err := Evaluate(`AND("maybe")`, newTestRegistry(t), ctx, 0)
	assert.Error(t, err)
}

func TestDateFunctions(t *testing.T) {
	kigali, err := time.LoadLocation("Africa/Kigali")
	require.NoError(t, err)
	ctx, err := NewEvalContext(map[string]any{
		"created": time.Date(2015, time.January, 31, 22, 30, 15, 0, time.UTC),
	}, kigali, DateStyleDayFirst, testNow)
	require.NoError(t, err)

	tests := []struct {
		expr     string
		expected string
	}{
		{"DATE(2015, 2, 3)", "03-02-2015"},
		{"DATE(2015, 13, 1)", "01-01-2016"},
		{`DATEVALUE("2015-02-03")`, "03-02-2015"},
		{`DATEVALUE("03/02/2015 10:30")`, "03-02-2015 10:30"},
		{"DAY(created)", "1"},
		{"MONTH(created)", "2"},
		{"YEAR(created)", "2015"},
		{"HOUR(created)", "0"},
		{"MINUTE(created)", "30"},
		{"SECOND(created)", "15"},
		{"WEEKDAY(DATE(2015, 10, 21))", "4"},
		{"DAYS(DATE(2015, 3, 1), DATE(2015, 2, 1))", "28"},
		{`DAYS("10-01-2015", "01-01-2015")`, "9"},
		{"EDATE(DATE(2015, 1, 31), 1)", "28-02-2015"},
		{"EDATE(DATE(2016, 3, 31), -1)", "29-02-2016"},
		{"NOW()", "21-10-2015 16:30"},
		{"TODAY()", "21-10-2015"},
		{"created", "01-02-2015 00:30"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.expr, ctx))
		})
	}
}

func TestCustomFunctions(t *testing.T) {
	ctx := newTestContext(t, map[string]any{"text": "  hello, big world! "})

	tests := []struct {
		expr     string
		expected string
	}{
		{`FIELD("a,b,c", 2, ",")`, "b"},
		{`FIELD("a, b ,c", 2, ",")`, "b"},
		{`FIELD("one two", 2)`, "two"},
		{`FIELD("one two", 5)`, ""},
		{"FIRST_WORD(text)", "hello,"},
		{"REMOVE_FIRST_WORD(text)", "big world! "},
		{`REMOVE_FIRST_WORD("single")`, ""},
		{"PERCENT(0.5)", "50%"},
		{"PERCENT(0.125)", "13%"},
		{"WORD(text, 1)", "hello"},
		{"WORD(text, -1)", "world"},
		{"WORD(text, 1, true)", "hello,"},
		{"WORD(text, 10)", ""},
		{"WORD_COUNT(text)", "3"},
		{`WORD_COUNT("a-b c", true)`, "2"},
		{`WORD_SLICE("a b c d e", 2, 4)`, "b c"},
		{`WORD_SLICE("a b c d e", 2)`, "b c d e"},
		{`WORD_SLICE("a b c d e", -2)`, "d e"},
		{`WORD_SLICE("a b c d e", 1, -1)`, "a b c d"},
		{`WORD_SLICE("a b c d e", 4, 2)`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, evalText(t, tt.expr, ctx))
		})
	}

	for _, expr := range []string{`FIELD("a", 0)`, `WORD("a", 0)`, `WORD_SLICE("a", 0)`} {
		_, err := Evaluate(expr, newTestRegistry(t), ctx, 0)
		assert.Error(t, err, expr)
	}
}
