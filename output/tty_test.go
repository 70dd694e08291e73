package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTTY_NonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTTY(&buf))
}

func TestIsTTY_NilSafe(t *testing.T) {
	assert.False(t, IsTTY(nil))
}

func TestGetTerminalWidth_DefaultsForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 80, GetTerminalWidth(&buf))
}
