package output

import (
	"errors"

	"github.com/impactsel/engine/errs"
)

// ExitCode is the process exit code a CLI front-end surfaces for one run.
type ExitCode int

const (
	// ExitCodeSuccess indicates a clean run with no warnings.
	ExitCodeSuccess ExitCode = 0

	// ExitCodePartial indicates the run succeeded but some projects were
	// excluded or other non-fatal warnings were gathered.
	ExitCodePartial ExitCode = 1

	// ExitCodeInvalidInput indicates malformed input at the API boundary.
	ExitCodeInvalidInput ExitCode = 2

	// ExitCodeCancelled indicates the operation was aborted before
	// completion.
	ExitCodeCancelled ExitCode = 3

	// ExitCodeInternal indicates an invariant violation inside the engine.
	ExitCodeInternal ExitCode = 4
)

// DetermineExitCode maps one run's outcome to an exit code.
//
// Precedence:
//  1. A fatal error picks its own code (invalid input 2, cancelled 3,
//     anything else 4).
//  2. ExitCodePartial (1) when the run succeeded with warnings.
//  3. ExitCodeSuccess (0) otherwise.
func DetermineExitCode(err error, warningCount int) ExitCode {
	if err != nil {
		var invalid *errs.InvalidInput
		if errors.As(err, &invalid) {
			return ExitCodeInvalidInput
		}
		var cancelled *errs.Cancelled
		if errors.As(err, &cancelled) {
			return ExitCodeCancelled
		}
		return ExitCodeInternal
	}
	if warningCount > 0 {
		return ExitCodePartial
	}
	return ExitCodeSuccess
}
