package internal

import (
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// ExprEvaluator evaluates expression AST nodes against a context
type ExprEvaluator struct {
	funcs    *FuncRegistry
	ctx      *EvalContext
	maxDepth int
	depth    int
}

// NewExprEvaluator creates a new expression evaluator. A maxDepth of zero
// disables the recursion limit.
func NewExprEvaluator(funcs *FuncRegistry, ctx *EvalContext, maxDepth int) *ExprEvaluator {
	return &ExprEvaluator{
		funcs:    funcs,
		ctx:      ctx,
		maxDepth: maxDepth,
	}
}

// Evaluate evaluates an expression and returns the result
func (e *ExprEvaluator) Evaluate(node ExprNode) (Value, error) {
	if node == nil {
		return Missing(), NewEvalError(ErrorKindInvalidExpression, ErrMsgExprInvalid)
	}

	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil

	case *IdentifierNode:
		return e.evaluateIdentifier(n)

	case *UnaryNode:
		return e.evaluateUnary(n)

	case *BinaryNode:
		return e.evaluateBinary(n)

	case *CallNode:
		return e.evaluateCall(n)

	default:
		return Missing(), NewEvalErrorf(ErrorKindInvalidExpression, "%s: %T", ErrMsgUnsupportedNode, node)
	}
}

// enter counts one level of call or unary nesting. Operator chains such as
// 1+2+3 are flat and do not count toward the limit.
func (e *ExprEvaluator) enter() error {
	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		return NewEvalErrorf(ErrorKindLimitExceeded, "%s (%d)", ErrMsgMaxDepthExceeded, e.maxDepth)
	}
	e.depth++
	return nil
}

func (e *ExprEvaluator) leave() {
	e.depth--
}

// evaluateIdentifier resolves a dotted path in the context
func (e *ExprEvaluator) evaluateIdentifier(node *IdentifierNode) (Value, error) {
	if e.ctx == nil {
		return Missing(), NewUndefinedIdentifierError(node.Path)
	}
	return e.ctx.Resolve(node.Path)
}

// evaluateUnary evaluates unary minus
func (e *ExprEvaluator) evaluateUnary(node *UnaryNode) (Value, error) {
	if err := e.enter(); err != nil {
		return Missing(), err
	}
	defer e.leave()

	right, err := e.Evaluate(node.Right)
	if err != nil {
		return Missing(), err
	}
	if node.Op != ExprTokenTypeMinus {
		return Missing(), NewEvalErrorf(ErrorKindInvalidExpression, "%s: %s", ErrMsgUnsupportedOperator, node.Op)
	}

	d, err := ToDecimal(right)
	if err != nil {
		return Missing(), err
	}
	var res apd.Decimal
	res.Neg(d)
	return Number(&res), nil
}

// evaluateCall evaluates arguments left to right and invokes the function
func (e *ExprEvaluator) evaluateCall(node *CallNode) (Value, error) {
	if e.funcs == nil || !e.funcs.Has(node.Name) {
		return Missing(), NewEvalErrorf(ErrorKindUnknownFunction, "%s: %s", ErrMsgUnknownFunction, node.Name)
	}
	if err := e.enter(); err != nil {
		return Missing(), err
	}
	defer e.leave()

	args := make([]Value, len(node.Args))
	for i, arg := range node.Args {
		v, err := e.Evaluate(arg)
		if err != nil {
			return Missing(), err
		}
		args[i] = v
	}

	return e.funcs.Call(e.ctx, node.Name, args)
}

// evaluateBinary evaluates both operands, then applies the operator
func (e *ExprEvaluator) evaluateBinary(node *BinaryNode) (Value, error) {
	left, err := e.Evaluate(node.Left)
	if err != nil {
		return Missing(), err
	}

	right, err := e.Evaluate(node.Right)
	if err != nil {
		return Missing(), err
	}

	switch node.Op {
	case ExprTokenTypePlus, ExprTokenTypeMinus:
		if left.Kind() == KindDateTime || right.Kind() == KindDateTime {
			return e.dateArithmetic(node.Op, left, right)
		}
		return arithmetic(node.Op, left, right)
	case ExprTokenTypeTimes, ExprTokenTypeDivide, ExprTokenTypePower:
		return arithmetic(node.Op, left, right)
	case ExprTokenTypeConcat:
		return e.concat(left, right)
	case ExprTokenTypeEq, ExprTokenTypeNeq:
		eq, err := e.equal(left, right)
		if err != nil {
			return Missing(), err
		}
		return Boolean(eq == (node.Op == ExprTokenTypeEq)), nil
	case ExprTokenTypeLt, ExprTokenTypeLte, ExprTokenTypeGt, ExprTokenTypeGte:
		c, err := e.compare(left, right)
		if err != nil {
			return Missing(), err
		}
		return Boolean(orderingHolds(node.Op, c)), nil
	default:
		return Missing(), NewEvalErrorf(ErrorKindInvalidExpression, "%s: %s", ErrMsgUnsupportedOperator, node.Op)
	}
}

// arithmetic applies a numeric operator to two values converted to decimals
func arithmetic(op ExprTokenType, left, right Value) (Value, error) {
	a, err := ToDecimal(left)
	if err != nil {
		return Missing(), err
	}
	b, err := ToDecimal(right)
	if err != nil {
		return Missing(), err
	}

	var res apd.Decimal
	switch op {
	case ExprTokenTypePlus:
		_, err = decimalContext.Add(&res, a, b)
	case ExprTokenTypeMinus:
		_, err = decimalContext.Sub(&res, a, b)
	case ExprTokenTypeTimes:
		_, err = decimalContext.Mul(&res, a, b)
	case ExprTokenTypeDivide:
		if b.IsZero() {
			return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgDivisionByZero)
		}
		_, err = decimalContext.Quo(&res, a, b)
	case ExprTokenTypePower:
		return power(a, b)
	default:
		return Missing(), NewEvalErrorf(ErrorKindInvalidExpression, "%s: %s", ErrMsgUnsupportedOperator, op)
	}
	if err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return Number(&res), nil
}

// dateArithmetic handles date + days, days + date, date - days and
// date - date, which yields a number of days
func (e *ExprEvaluator) dateArithmetic(op ExprTokenType, left, right Value) (Value, error) {
	if op == ExprTokenTypeMinus && left.Kind() == KindDateTime && right.Kind() == KindDateTime {
		return NumberFromInt(DaysBetween(left, right, e.ctx)), nil
	}

	date, offset := left, right
	if left.Kind() != KindDateTime {
		if op == ExprTokenTypeMinus {
			return Missing(), NewConversionError(left, KindNumber)
		}
		date, offset = right, left
	}

	days, err := ToDecimal(offset)
	if err != nil {
		return Missing(), err
	}
	if op == ExprTokenTypeMinus {
		days.Neg(days)
	}

	whole, fraction, err := splitDays(days)
	if err != nil {
		return Missing(), err
	}
	return AddDays(date, whole, fraction, e.ctx), nil
}

// splitDays splits a decimal day count into whole days and the remaining
// elapsed time
func splitDays(days *apd.Decimal) (int64, time.Duration, error) {
	var whole, frac, nanos apd.Decimal
	if _, err := truncContext.RoundToIntegralValue(&whole, days); err != nil {
		return 0, 0, NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	n, err := whole.Int64()
	if err != nil {
		return 0, 0, NewEvalErrorf(ErrorKindConversion, "%s: %s", ErrMsgIntegerOutOfRange, formatDecimal(days))
	}

	ed := apd.MakeErrDecimal(decimalContext)
	ed.Sub(&frac, days, &whole)
	ed.Mul(&nanos, &frac, apd.New(int64(24*time.Hour), 0))
	if err := ed.Err(); err != nil {
		return 0, 0, NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	if _, err := decimalContext.RoundToIntegralValue(&nanos, &nanos); err != nil {
		return 0, 0, NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	ns, err := nanos.Int64()
	if err != nil {
		return 0, 0, NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return n, time.Duration(ns), nil
}

func (e *ExprEvaluator) concat(left, right Value) (Value, error) {
	a, err := ToText(left, e.ctx)
	if err != nil {
		return Missing(), err
	}
	b, err := ToText(right, e.ctx)
	if err != nil {
		return Missing(), err
	}
	return Text(a + b), nil
}

// equal compares two booleans directly and everything else by ordering
func (e *ExprEvaluator) equal(left, right Value) (bool, error) {
	if lb, ok := left.BoolValue(); ok {
		if rb, ok := right.BoolValue(); ok {
			return lb == rb, nil
		}
	}
	c, err := e.compare(left, right)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// compare orders two values: numerically when both convert to decimals,
// chronologically when either is a date, otherwise as case-insensitive text
func (e *ExprEvaluator) compare(left, right Value) (int, error) {
	if a, err := ToDecimal(left); err == nil {
		if b, err := ToDecimal(right); err == nil {
			return a.Cmp(b), nil
		}
	}

	if left.Kind() == KindDateTime || right.Kind() == KindDateTime {
		a, err := ToDateTime(left, e.ctx)
		if err != nil {
			return 0, err
		}
		b, err := ToDateTime(right, e.ctx)
		if err != nil {
			return 0, err
		}
		return compareTimes(a, b, e.ctx), nil
	}

	a, err := ToText(left, e.ctx)
	if err != nil {
		return 0, err
	}
	b, err := ToText(right, e.ctx)
	if err != nil {
		return 0, err
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b)), nil
}

// compareTimes compares calendar days when either side is date-only and
// instants otherwise
func compareTimes(a, b Value, ctx *EvalContext) int {
	if a.IsDateOnly() || b.IsDateOnly() {
		days := DaysBetween(a, b, ctx)
		switch {
		case days < 0:
			return -1
		case days > 0:
			return 1
		default:
			return 0
		}
	}
	return a.datetime.Compare(b.datetime)
}

func orderingHolds(op ExprTokenType, c int) bool {
	switch op {
	case ExprTokenTypeLt:
		return c < 0
	case ExprTokenTypeLte:
		return c <= 0
	case ExprTokenTypeGt:
		return c > 0
	default:
		return c >= 0
	}
}

// Evaluate parses and evaluates an expression in one step
func Evaluate(expr string, funcs *FuncRegistry, ctx *EvalContext, maxDepth int) (Value, error) {
	node, err := ParseExpression(expr, maxDepth)
	if err != nil {
		return Missing(), err
	}
	return NewExprEvaluator(funcs, ctx, maxDepth).Evaluate(node)
}
