package compiler

import "errors"

var (
	ErrMalformedAST    = errors.New("compile error: malformed AST")
	ErrUnknownVariable = errors.New("compile error: unknown variable")
	ErrUnknownFunction = errors.New("compile error: unknown function")
	ErrUnsupportedLval = errors.New("compile error: unsupported lvalue")
	ErrUnknownStruct   = errors.New("compile error: unknown struct field")
	ErrUnresolvedLabel = errors.New("compile error: break/continue outside a loop")
	ErrCompile         = errors.New("compile error")
)
