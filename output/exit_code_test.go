package output

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/impactsel/engine/errs"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		warningCount int
		expected     ExitCode
	}{
		{
			name:     "clean run",
			expected: ExitCodeSuccess,
		},
		{
			name:         "run with warnings",
			warningCount: 3,
			expected:     ExitCodePartial,
		},
		{
			name:     "invalid input",
			err:      &errs.InvalidInput{What: "no projects"},
			expected: ExitCodeInvalidInput,
		},
		{
			name:     "wrapped invalid input",
			err:      fmt.Errorf("plan: %w", &errs.InvalidInput{What: "no index built yet"}),
			expected: ExitCodeInvalidInput,
		},
		{
			name:     "cancelled",
			err:      &errs.Cancelled{Phase: "sourceindex.Build"},
			expected: ExitCodeCancelled,
		},
		{
			name:     "internal",
			err:      &errs.Internal{Reason: "edge endpoint missing from vertex set"},
			expected: ExitCodeInternal,
		},
		{
			name:     "unclassified errors map to internal",
			err:      errors.New("boom"),
			expected: ExitCodeInternal,
		},
		{
			name:         "fatal error wins over warnings",
			err:          &errs.Cancelled{Phase: "coverage"},
			warningCount: 5,
			expected:     ExitCodeCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetermineExitCode(tt.err, tt.warningCount))
		})
	}
}

func TestExitCodeValues(t *testing.T) {
	// The numeric contract is surfaced to shell scripts; pin it.
	assert.Equal(t, 0, int(ExitCodeSuccess))
	assert.Equal(t, 1, int(ExitCodePartial))
	assert.Equal(t, 2, int(ExitCodeInvalidInput))
	assert.Equal(t, 3, int(ExitCodeCancelled))
	assert.Equal(t, 4, int(ExitCodeInternal))
}
