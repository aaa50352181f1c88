package system

import "errors"

// ErrIO reports stdin EOF (or another read failure) while CIS=1.
var ErrIO = errors.New("io error: failed to read from stdin")
