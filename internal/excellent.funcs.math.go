package internal

import (
	"github.com/cockroachdb/apd/v3"
)

// Math function names
const (
	FuncNameAbs       = "ABS"
	FuncNameAverage   = "AVERAGE"
	FuncNameExp       = "EXP"
	FuncNameInt       = "INT"
	FuncNameMax       = "MAX"
	FuncNameMin       = "MIN"
	FuncNameMod       = "MOD"
	FuncNamePower     = "POWER"
	FuncNameRound     = "ROUND"
	FuncNameRoundDown = "ROUNDDOWN"
	FuncNameRoundUp   = "ROUNDUP"
	FuncNameSum       = "SUM"
	FuncNameTrunc     = "TRUNC"
)

var floorContext = contextWithRounding(apd.RoundFloor)

// maxRoundPlaces bounds the decimal places accepted by the rounding functions
const maxRoundPlaces = 1 << 16

// MathLibrary returns the math function library
func MathLibrary() *FuncLibrary {
	return &FuncLibrary{
		Name: LibraryNameMath,
		Funcs: []*Func{
			{Name: FuncNameAbs, MinArgs: 1, MaxArgs: 1, Fn: funcAbs},
			{Name: FuncNameAverage, MinArgs: 1, MaxArgs: -1, Fn: funcAverage},
			{Name: FuncNameExp, MinArgs: 1, MaxArgs: 1, Fn: funcExp},
			{Name: FuncNameInt, MinArgs: 1, MaxArgs: 1, Fn: funcInt},
			{Name: FuncNameMax, MinArgs: 1, MaxArgs: -1, Fn: funcMax},
			{Name: FuncNameMin, MinArgs: 1, MaxArgs: -1, Fn: funcMin},
			{Name: FuncNameMod, MinArgs: 2, MaxArgs: 2, Fn: funcMod},
			{Name: FuncNamePower, MinArgs: 2, MaxArgs: 2, Fn: funcPower},
			{Name: FuncNameRound, MinArgs: 1, MaxArgs: 2, Fn: roundFunc(apd.RoundHalfUp)},
			{Name: FuncNameRoundDown, MinArgs: 1, MaxArgs: 2, Fn: roundFunc(apd.RoundDown)},
			{Name: FuncNameRoundUp, MinArgs: 1, MaxArgs: 2, Fn: roundFunc(apd.RoundUp)},
			{Name: FuncNameSum, MinArgs: 1, MaxArgs: -1, Fn: funcSum},
			{Name: FuncNameTrunc, MinArgs: 1, MaxArgs: 2, Fn: roundFunc(apd.RoundDown)},
		},
	}
}

func funcAbs(_ *EvalContext, args []Value) (Value, error) {
	d, err := argDecimal(args, 0)
	if err != nil {
		return Missing(), err
	}
	var res apd.Decimal
	res.Abs(d)
	return Number(&res), nil
}

func funcSum(_ *EvalContext, args []Value) (Value, error) {
	total, err := sumArgs(args)
	if err != nil {
		return Missing(), err
	}
	return Number(total), nil
}

func funcAverage(_ *EvalContext, args []Value) (Value, error) {
	total, err := sumArgs(args)
	if err != nil {
		return Missing(), err
	}
	var res apd.Decimal
	if _, err := decimalContext.Quo(&res, total, apd.New(int64(len(args)), 0)); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return Number(&res), nil
}

func sumArgs(args []Value) (*apd.Decimal, error) {
	total := new(apd.Decimal)
	for i := range args {
		d, err := argDecimal(args, i)
		if err != nil {
			return nil, err
		}
		if _, err := decimalContext.Add(total, total, d); err != nil {
			return nil, NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
		}
	}
	return total, nil
}

func funcExp(_ *EvalContext, args []Value) (Value, error) {
	d, err := argDecimal(args, 0)
	if err != nil {
		return Missing(), err
	}
	var res apd.Decimal
	if _, err := decimalContext.Exp(&res, d); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return Number(&res), nil
}

// funcInt rounds down to the nearest integer, so INT(-1.5) is -2
func funcInt(_ *EvalContext, args []Value) (Value, error) {
	d, err := argDecimal(args, 0)
	if err != nil {
		return Missing(), err
	}
	var res apd.Decimal
	if _, err := floorContext.RoundToIntegralValue(&res, d); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return Number(&res), nil
}

func funcMax(_ *EvalContext, args []Value) (Value, error) {
	return extremum(args, 1)
}

func funcMin(_ *EvalContext, args []Value) (Value, error) {
	return extremum(args, -1)
}

func extremum(args []Value, want int) (Value, error) {
	var best *apd.Decimal
	for i := range args {
		d, err := argDecimal(args, i)
		if err != nil {
			return Missing(), err
		}
		if best == nil || d.Cmp(best) == want {
			best = d
		}
	}
	return Number(best), nil
}

// funcMod returns the remainder with the sign of the divisor
func funcMod(_ *EvalContext, args []Value) (Value, error) {
	a, err := argDecimal(args, 0)
	if err != nil {
		return Missing(), err
	}
	b, err := argDecimal(args, 1)
	if err != nil {
		return Missing(), err
	}
	if b.IsZero() {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgDivisionByZero)
	}

	var quo, floored, prod, res apd.Decimal
	ed := apd.MakeErrDecimal(decimalContext)
	ed.Quo(&quo, a, b)
	if _, err := floorContext.RoundToIntegralValue(&floored, &quo); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	ed.Mul(&prod, b, &floored)
	ed.Sub(&res, a, &prod)
	if err := ed.Err(); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return Number(&res), nil
}

func funcPower(_ *EvalContext, args []Value) (Value, error) {
	base, err := argDecimal(args, 0)
	if err != nil {
		return Missing(), err
	}
	exp, err := argDecimal(args, 1)
	if err != nil {
		return Missing(), err
	}
	return power(base, exp)
}

func power(base, exp *apd.Decimal) (Value, error) {
	if base.IsZero() && exp.Negative {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgDivisionByZero)
	}
	var res apd.Decimal
	if _, err := decimalContext.Pow(&res, base, exp); err != nil {
		return Missing(), NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return Number(&res), nil
}

// roundFunc builds ROUND, ROUNDUP, ROUNDDOWN and TRUNC, which differ only in
// rounding direction. The optional second argument is the number of decimal
// places and may be negative.
func roundFunc(rounding apd.Rounder) FuncImpl {
	return func(_ *EvalContext, args []Value) (Value, error) {
		d, err := argDecimal(args, 0)
		if err != nil {
			return Missing(), err
		}
		places, err := optInt(args, 1, 0)
		if err != nil {
			return Missing(), err
		}
		res, err := roundDecimal(d, places, rounding)
		if err != nil {
			return Missing(), err
		}
		return Number(res), nil
	}
}

func roundDecimal(d *apd.Decimal, places int, rounding apd.Rounder) (*apd.Decimal, error) {
	if places > maxRoundPlaces || places < -maxRoundPlaces {
		return nil, NewEvalErrorf(ErrorKindFunctionDomain, "%s: %d", ErrMsgIntegerOutOfRange, places)
	}
	res := new(apd.Decimal)
	if _, err := contextWithRounding(rounding).Quantize(res, d, int32(-places)); err != nil {
		return nil, NewEvalError(ErrorKindFunctionDomain, ErrMsgNumericOverflow)
	}
	return res, nil
}
