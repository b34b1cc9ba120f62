// internal/writers/brokenpipe.go
package writers

import (
	"errors"
	"io"
	"syscall"
)

// pipeClosed lists the errors a reader going away early (head, less, a
// dropped socket) surfaces as.
var pipeClosed = []error{syscall.EPIPE, syscall.ECONNRESET, io.ErrClosedPipe}

// IsBrokenPipe reports whether err only means nobody is reading anymore.
// Callers treat it as success.
func IsBrokenPipe(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range pipeClosed {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
