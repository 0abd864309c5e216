package access

import "errors"

// ErrInvalidInput marks a caller contract violation (empty designation,
// negative threshold). Business outcomes never use it.
var ErrInvalidInput = errors.New("access: invalid input")
