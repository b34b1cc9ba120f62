package common

import (
	"errors"
	"fmt"
)

// ErrValidation marks input that is rejected before any work begins.
var ErrValidation = errors.New("validation error")

// Invalidf wraps ErrValidation with a formatted reason.
func Invalidf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, a...))
}
