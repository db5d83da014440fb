package flows

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/apd/v3"
	excellent "github.com/itsatony/go-excellent"
)

// Result is the outcome of a rule test.
type Result struct {
	// Matched reports whether the test matched the input.
	Matched bool

	// Value is the typed value the test extracted, e.g. the number that matched.
	Value excellent.Value

	// Text is the portion of the input that matched.
	Text string
}

// NoMatch is the result of a test that did not match.
func NoMatch() Result {
	return Result{Value: excellent.Missing()}
}

// Match returns a matching result.
func Match(value excellent.Value, text string) Result {
	return Result{Matched: true, Value: value, Text: text}
}

// Test is a rule test applied to the text of an incoming message.
type Test interface {
	// Type returns the definition type name.
	Type() string

	// Evaluate tests text within the given run and context.
	Evaluate(runner *Runner, run *RunState, ctx *excellent.EvaluationContext, text string) Result
}

// TrueTest always matches.
type TrueTest struct{}

// Type returns "true".
func (TrueTest) Type() string { return TestTypeTrue }

// Evaluate matches the whole text.
func (TrueTest) Evaluate(_ *Runner, _ *RunState, _ *excellent.EvaluationContext, text string) Result {
	return Match(excellent.Text(text), text)
}

// FalseTest never matches.
type FalseTest struct{}

// Type returns "false".
func (FalseTest) Type() string { return TestTypeFalse }

// Evaluate never matches but still carries the text.
func (FalseTest) Evaluate(_ *Runner, _ *RunState, _ *excellent.EvaluationContext, text string) Result {
	return Result{Value: excellent.Text(text), Text: text}
}

// NumericComparison compares an input number against a test number.
type NumericComparison func(input, test *apd.Decimal) bool

// NumericTest matches the first number in the input that satisfies a
// comparison against its operand. The operand may be a template such as
// "@(contact.age - 2)"; an operand that fails to evaluate or is not a number
// never matches.
type NumericTest struct {
	typeName string
	operand  string
	compare  NumericComparison
}

// NewNumericTest creates a numeric test with a custom comparison.
func NewNumericTest(typeName, operand string, compare NumericComparison) *NumericTest {
	return &NumericTest{typeName: typeName, operand: operand, compare: compare}
}

// NewEqualTest matches numbers equal to operand.
func NewEqualTest(operand string) *NumericTest {
	return NewNumericTest(TestTypeEqual, operand, func(input, test *apd.Decimal) bool {
		return input.Cmp(test) == 0
	})
}

// NewLessThanTest matches numbers less than operand.
func NewLessThanTest(operand string) *NumericTest {
	return NewNumericTest(TestTypeLessThan, operand, func(input, test *apd.Decimal) bool {
		return input.Cmp(test) < 0
	})
}

// NewLessThanOrEqualTest matches numbers less than or equal to operand.
func NewLessThanOrEqualTest(operand string) *NumericTest {
	return NewNumericTest(TestTypeLessOrEqual, operand, func(input, test *apd.Decimal) bool {
		return input.Cmp(test) <= 0
	})
}

// NewGreaterThanTest matches numbers greater than operand.
func NewGreaterThanTest(operand string) *NumericTest {
	return NewNumericTest(TestTypeGreaterThan, operand, func(input, test *apd.Decimal) bool {
		return input.Cmp(test) > 0
	})
}

// NewGreaterThanOrEqualTest matches numbers greater than or equal to operand.
func NewGreaterThanOrEqualTest(operand string) *NumericTest {
	return NewNumericTest(TestTypeGreaterOrEq, operand, func(input, test *apd.Decimal) bool {
		return input.Cmp(test) >= 0
	})
}

// Type returns the definition type name.
func (t *NumericTest) Type() string { return t.typeName }

// Operand returns the unevaluated test operand.
func (t *NumericTest) Operand() string { return t.operand }

// Evaluate checks each word of text against the evaluated operand.
func (t *NumericTest) Evaluate(runner *Runner, _ *RunState, ctx *excellent.EvaluationContext, text string) Result {
	operand, ok := runner.evaluateOperand(t.operand, ctx)
	if !ok {
		return NoMatch()
	}
	testValue, err := excellent.NumberFromString(operand)
	if err != nil {
		return NoMatch()
	}
	test, _ := testValue.DecimalValue()

	for _, word := range numericWords(text) {
		value, err := excellent.NumberFromString(word)
		if err != nil {
			continue
		}
		input, _ := value.DecimalValue()
		if t.compare(input, test) {
			return Match(value, word)
		}
	}
	return NoMatch()
}

// numericWords splits text on whitespace and strips surrounding punctuation
// that cannot be part of a number.
func numericWords(text string) []string {
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) && r != '.' && r != '-' && r != '+'
		})
		word = strings.TrimSuffix(word, ".")
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

// HasStateTest matches text naming a state of the org's country.
type HasStateTest struct{}

// Type returns "state".
func (HasStateTest) Type() string { return TestTypeHasState }

// Evaluate resolves text as a state.
func (HasStateTest) Evaluate(runner *Runner, run *RunState, _ *excellent.EvaluationContext, text string) Result {
	country := run.Org.Country
	resolver := runner.LocationResolver()
	if country == "" || resolver == nil {
		return NoMatch()
	}
	if location := resolver.Resolve(text, country, LocationLevelState, ""); location != nil {
		return Match(excellent.Text(location.Name), location.Name)
	}
	return NoMatch()
}

// HasDistrictTest matches text naming a district within a state. The state
// may be a template such as "@flow.state".
type HasDistrictTest struct {
	State string
}

// NewHasDistrictTest creates a district test.
func NewHasDistrictTest(state string) *HasDistrictTest {
	return &HasDistrictTest{State: state}
}

// Type returns "district".
func (*HasDistrictTest) Type() string { return TestTypeHasDistrict }

// Evaluate resolves text as a district of the evaluated state.
func (t *HasDistrictTest) Evaluate(runner *Runner, run *RunState, ctx *excellent.EvaluationContext, text string) Result {
	country := run.Org.Country
	resolver := runner.LocationResolver()
	if country == "" || resolver == nil {
		return NoMatch()
	}

	state, ok := runner.evaluateOperand(t.State, ctx)
	if !ok {
		return NoMatch()
	}
	if location := resolver.Resolve(text, country, LocationLevelDistrict, state); location != nil {
		return Match(excellent.Text(location.Name), location.Name)
	}
	return NoMatch()
}
