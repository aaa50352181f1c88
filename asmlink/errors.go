package asmlink

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvedSymbol = errors.New("link error: unresolved symbol")
	ErrDuplicateSymbol  = errors.New("link error: duplicate symbol")
	ErrBadDataDirective = errors.New("parse error: invalid data directive")
)

// LinkError carries the offending label alongside one of the sentinels
// above, so callers can both errors.Is match and print a useful diagnostic.
type LinkError struct {
	Err   error
	Label string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Label)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}
