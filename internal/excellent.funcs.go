package internal

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// FuncImpl is the implementation of a callable function. Implementations
// must be pure and must not block.
type FuncImpl func(ctx *EvalContext, args []Value) (Value, error)

// Func describes a callable function in expressions
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      FuncImpl
}

// FuncLibrary is a named group of functions
type FuncLibrary struct {
	Name  string
	Funcs []*Func
}

// FuncRegistry is an immutable case-insensitive function index. It holds no
// lock; after construction it is only read.
type FuncRegistry struct {
	funcs  map[string]*Func
	owners map[string]string
	names  []string
}

// NewFuncRegistry indexes the functions of the given libraries in order.
// A nil function, an empty name, invalid arity bounds or a name registered
// twice fail construction.
func NewFuncRegistry(libs ...*FuncLibrary) (*FuncRegistry, error) {
	r := &FuncRegistry{
		funcs:  make(map[string]*Func),
		owners: make(map[string]string),
	}

	for _, lib := range libs {
		if lib == nil {
			return nil, NewFuncRegistryError(ErrMsgFuncNilLibrary, "", "")
		}
		for _, f := range lib.Funcs {
			if err := r.add(lib.Name, f); err != nil {
				return nil, err
			}
		}
	}

	sort.Strings(r.names)
	return r, nil
}

func (r *FuncRegistry) add(library string, f *Func) error {
	if f == nil || f.Fn == nil {
		return NewFuncRegistryError(ErrMsgFuncNilFunc, "", library)
	}
	if strings.TrimSpace(f.Name) == "" {
		return NewFuncRegistryError(ErrMsgFuncEmptyName, "", library)
	}
	if f.MinArgs < 0 || (f.MaxArgs >= 0 && f.MaxArgs < f.MinArgs) || f.MaxArgs < -1 {
		return NewFuncRegistryError(ErrMsgFuncInvalidArity, f.Name, library)
	}

	key := strings.ToUpper(f.Name)
	if owner, exists := r.owners[key]; exists {
		return NewFuncRegistryError(ErrMsgFuncAlreadyExists, f.Name, owner+", "+library)
	}

	r.funcs[key] = f
	r.owners[key] = library
	r.names = append(r.names, key)
	return nil
}

// Get retrieves a function by name, ignoring case
func (r *FuncRegistry) Get(name string) (*Func, bool) {
	f, ok := r.funcs[strings.ToUpper(name)]
	return f, ok
}

// Has checks if a function is registered
func (r *FuncRegistry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Library returns the name of the library that contributed a function
func (r *FuncRegistry) Library(name string) (string, bool) {
	lib, ok := r.owners[strings.ToUpper(name)]
	return lib, ok
}

// Call checks arity and invokes a function by name
func (r *FuncRegistry) Call(ctx *EvalContext, name string, args []Value) (Value, error) {
	f, ok := r.Get(name)
	if !ok {
		return Missing(), NewEvalErrorf(ErrorKindUnknownFunction, "%s: %s", ErrMsgUnknownFunction, name)
	}

	display := strings.ToUpper(name)
	argCount := len(args)
	if argCount < f.MinArgs {
		return Missing(), NewEvalErrorf(ErrorKindArityMismatch, "%s for %s: expected at least %d, got %d",
			ErrMsgTooFewArgs, display, f.MinArgs, argCount)
	}
	if f.MaxArgs >= 0 && argCount > f.MaxArgs {
		return Missing(), NewEvalErrorf(ErrorKindArityMismatch, "%s for %s: expected at most %d, got %d",
			ErrMsgTooManyArgs, display, f.MaxArgs, argCount)
	}

	result, err := invoke(f, ctx, args)
	if err != nil {
		kind := ErrorKindFunctionDomain
		var evalErr *EvalError
		if errors.As(err, &evalErr) {
			kind = evalErr.Kind
		}
		return Missing(), &EvalError{Kind: kind, Message: fmt.Sprintf(ErrMsgFuncFailed, display, err), Cause: err}
	}

	return result, nil
}

// invoke runs a function implementation and reports a panic as a function error
func invoke(f *Func, ctx *EvalContext, args []Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = Missing()
			err = NewEvalErrorf(ErrorKindFunctionDomain, "%s: %v", ErrMsgFuncPanicked, r)
		}
	}()
	return f.Fn(ctx, args)
}

// List returns all registered function names, upper-cased and sorted
func (r *FuncRegistry) List() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Count returns the number of registered functions
func (r *FuncRegistry) Count() int {
	return len(r.funcs)
}

// FuncRegistryError represents a registry construction error
type FuncRegistryError struct {
	Message  string
	FuncName string
	Library  string
}

// NewFuncRegistryError creates a new function registry error
func NewFuncRegistryError(message, funcName, library string) *FuncRegistryError {
	return &FuncRegistryError{
		Message:  message,
		FuncName: funcName,
		Library:  library,
	}
}

// Error implements the error interface
func (e *FuncRegistryError) Error() string {
	msg := e.Message
	if e.FuncName != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.FuncName)
	}
	if e.Library != "" {
		msg = fmt.Sprintf("%s (library %s)", msg, e.Library)
	}
	return msg
}

// Function registry error messages
const (
	ErrMsgFuncNilLibrary    = "function library cannot be nil"
	ErrMsgFuncNilFunc       = "function cannot be nil"
	ErrMsgFuncEmptyName     = "function name cannot be empty"
	ErrMsgFuncInvalidArity  = "function arity bounds are invalid"
	ErrMsgFuncAlreadyExists = "function already registered"
)

// Built-in library names
const (
	LibraryNameText    = "text"
	LibraryNameMath    = "math"
	LibraryNameLogical = "logical"
	LibraryNameDate    = "date"
	LibraryNameCustom  = "custom"
)

// BuiltinLibraries returns the built-in libraries in registration order
func BuiltinLibraries() []*FuncLibrary {
	return []*FuncLibrary{
		TextLibrary(),
		MathLibrary(),
		LogicalLibrary(),
		DateLibrary(),
		CustomLibrary(),
	}
}

// BuiltinLibrary returns a built-in library by name, ignoring case
func BuiltinLibrary(name string) (*FuncLibrary, bool) {
	for _, lib := range BuiltinLibraries() {
		if strings.EqualFold(lib.Name, name) {
			return lib, true
		}
	}
	return nil, false
}

// Argument helpers. Each converts args[i] through the conversion model and
// reports failures naming the argument position.

func argText(ctx *EvalContext, args []Value, i int) (string, error) {
	s, err := ToText(args[i], ctx)
	if err != nil {
		return "", argError(i, err)
	}
	return s, nil
}

func argDecimal(args []Value, i int) (*apd.Decimal, error) {
	d, err := ToDecimal(args[i])
	if err != nil {
		return nil, argError(i, err)
	}
	return d, nil
}

// argInt converts args[i] to an integer within the int32 range, which covers
// every count, code, offset and precision the built-ins accept
func argInt(args []Value, i int) (int, error) {
	n, err := ToInteger(args[i])
	if err != nil {
		return 0, argError(i, err)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, argError(i, NewEvalErrorf(ErrorKindFunctionDomain, "%s: %d", ErrMsgIntegerOutOfRange, n))
	}
	return int(n), nil
}

func argBool(args []Value, i int) (bool, error) {
	b, err := ToBoolean(args[i])
	if err != nil {
		return false, argError(i, err)
	}
	return b, nil
}

func argDate(ctx *EvalContext, args []Value, i int) (Value, error) {
	v, err := ToDateTime(args[i], ctx)
	if err != nil {
		return Missing(), argError(i, err)
	}
	return v, nil
}

// optInt returns args[i] as an integer, or def when the argument is absent
func optInt(args []Value, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	return argInt(args, i)
}

func argError(i int, err error) error {
	kind := ErrorKindConversion
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		kind = evalErr.Kind
	}
	return &EvalError{Kind: kind, Message: fmt.Sprintf("argument %d: %v", i+1, err), Cause: err}
}
