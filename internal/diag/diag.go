// Package diag provides the engine's fatal-diagnostic path.
//
// Fatal program errors (out-of-memory during growth, slot-index or
// generation overflow, registration collisions, corrupt invariants) are not
// recoverable: they call for immediate termination with a diagnostic, not
// error plumbing through hot data paths. Fatal wraps the error with a stack
// trace and panics.
package diag

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// Fatal terminates the program with a traced diagnostic. Callers should
// treat this as a non-local exit; it never returns.
func Fatal(err error) {
	panic(bark.AddTrace(err))
}

// Fatalf formats a message and terminates the program the same way Fatal
// does.
func Fatalf(format string, args ...any) {
	Fatal(fmt.Errorf(format, args...))
}
