package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBanner_FullBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.2", DefaultBannerOptions())

	out := buf.String()
	// go-figure renders multi-line ASCII art.
	assert.Greater(t, len(strings.Split(out, "\n")), 3)
	assert.Contains(t, out, "Impact Engine v1.2.2")
	assert.Contains(t, out, "MIT License")
}

func TestPrintBanner_TextOnly(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.2", BannerOptions{ShowBanner: false, ShowVersion: true, ShowLicense: true})

	out := buf.String()
	assert.Contains(t, out, "Impact Engine v1.2.2")
	assert.Contains(t, out, "MIT License")
	// No ASCII art block.
	assert.Less(t, len(strings.Split(out, "\n")), 6)
}

func TestPrintBanner_VersionOnly(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.2", BannerOptions{ShowBanner: false, ShowVersion: true})

	assert.Contains(t, buf.String(), "Impact Engine v1.2.2")
	assert.NotContains(t, buf.String(), "License")
}

func TestPrintBanner_NilWriter(t *testing.T) {
	assert.NotPanics(t, func() {
		PrintBanner(nil, "1.2.2", DefaultBannerOptions())
	})
}

func TestGetCompactBanner(t *testing.T) {
	banner := GetCompactBanner("1.2.2")
	assert.Equal(t, "Impact Engine v1.2.2 | MIT", banner)
	assert.NotContains(t, banner, "\n")
}

func TestShouldShowBanner(t *testing.T) {
	tests := []struct {
		name     string
		isTTY    bool
		noBanner bool
		expected bool
	}{
		{name: "tty without no-banner", isTTY: true, noBanner: false, expected: true},
		{name: "tty with no-banner", isTTY: true, noBanner: true, expected: false},
		{name: "non-tty", isTTY: false, noBanner: false, expected: false},
		{name: "non-tty with no-banner", isTTY: false, noBanner: true, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldShowBanner(tt.isTTY, tt.noBanner))
		})
	}
}
