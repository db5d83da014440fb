package excellent

import (
	"strings"

	"github.com/itsatony/go-excellent/internal"
)

// Func describes a callable function. MaxArgs of -1 means variadic. The
// implementation must be pure and must not block; an *EvalError it returns
// keeps its kind, any other error becomes a function domain error.
type Func = internal.Func

// FuncImpl is the implementation of a Func
type FuncImpl = internal.FuncImpl

// FuncLibrary is a named group of functions
type FuncLibrary = internal.FuncLibrary

// NewLibrary creates a function library
func NewLibrary(name string, funcs ...*Func) *FuncLibrary {
	return &FuncLibrary{Name: name, Funcs: funcs}
}

// BuiltinLibraries returns fresh copies of the built-in libraries in
// registration order: text, math, logical, date, custom.
func BuiltinLibraries() []*FuncLibrary {
	return internal.BuiltinLibraries()
}

// BuiltinLibrary returns the built-in library with the given name
func BuiltinLibrary(name string) (*FuncLibrary, bool) {
	return internal.BuiltinLibrary(name)
}

// LibrariesByName resolves built-in library names, preserving order
func LibrariesByName(names ...string) ([]*FuncLibrary, error) {
	libs := make([]*FuncLibrary, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, NewConfigError(ErrMsgEmptyLibraryName, nil)
		}
		lib, ok := BuiltinLibrary(name)
		if !ok {
			return nil, NewUnknownLibraryError(name)
		}
		libs = append(libs, lib)
	}
	return libs, nil
}
