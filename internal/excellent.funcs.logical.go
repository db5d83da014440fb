package internal

// Logical function names
const (
	FuncNameAnd   = "AND"
	FuncNameFalse = "FALSE"
	FuncNameIf    = "IF"
	FuncNameNot   = "NOT"
	FuncNameOr    = "OR"
	FuncNameTrue  = "TRUE"
)

// LogicalLibrary returns the logical function library
func LogicalLibrary() *FuncLibrary {
	return &FuncLibrary{
		Name: LibraryNameLogical,
		Funcs: []*Func{
			{Name: FuncNameAnd, MinArgs: 1, MaxArgs: -1, Fn: funcAnd},
			{Name: FuncNameFalse, MinArgs: 0, MaxArgs: 0, Fn: constBool(false)},
			{Name: FuncNameIf, MinArgs: 1, MaxArgs: 3, Fn: funcIf},
			{Name: FuncNameNot, MinArgs: 1, MaxArgs: 1, Fn: funcNot},
			{Name: FuncNameOr, MinArgs: 1, MaxArgs: -1, Fn: funcOr},
			{Name: FuncNameTrue, MinArgs: 0, MaxArgs: 0, Fn: constBool(true)},
		},
	}
}

func funcAnd(_ *EvalContext, args []Value) (Value, error) {
	for i := range args {
		b, err := argBool(args, i)
		if err != nil {
			return Missing(), err
		}
		if !b {
			return Boolean(false), nil
		}
	}
	return Boolean(true), nil
}

func funcOr(_ *EvalContext, args []Value) (Value, error) {
	for i := range args {
		b, err := argBool(args, i)
		if err != nil {
			return Missing(), err
		}
		if b {
			return Boolean(true), nil
		}
	}
	return Boolean(false), nil
}

func funcNot(_ *EvalContext, args []Value) (Value, error) {
	b, err := argBool(args, 0)
	if err != nil {
		return Missing(), err
	}
	return Boolean(!b), nil
}

// funcIf selects the second or third argument. Omitted branches yield TRUE
// and FALSE respectively.
func funcIf(_ *EvalContext, args []Value) (Value, error) {
	cond, err := argBool(args, 0)
	if err != nil {
		return Missing(), err
	}
	if cond {
		if len(args) > 1 {
			return args[1], nil
		}
		return Boolean(true), nil
	}
	if len(args) > 2 {
		return args[2], nil
	}
	return Boolean(false), nil
}

func constBool(b bool) FuncImpl {
	return func(_ *EvalContext, _ []Value) (Value, error) {
		return Boolean(b), nil
	}
}
