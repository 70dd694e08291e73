package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogger_VerbosityGating(t *testing.T) {
	tests := []struct {
		name      string
		verbosity VerbosityLevel
		log       func(l *Logger)
		expect    string
		absent    string
	}{
		{
			name:      "progress hidden at default",
			verbosity: VerbosityDefault,
			log:       func(l *Logger) { l.Progress("parsed %d projects", 3) },
			absent:    "parsed 3 projects",
		},
		{
			name:      "progress shown at verbose",
			verbosity: VerbosityVerbose,
			log:       func(l *Logger) { l.Progress("parsed %d projects", 3) },
			expect:    "parsed 3 projects",
		},
		{
			name:      "debug hidden at verbose",
			verbosity: VerbosityVerbose,
			log:       func(l *Logger) { l.Debug("resolved %d call sites", 42) },
			absent:    "resolved 42 call sites",
		},
		{
			name:      "debug shown at debug with elapsed prefix",
			verbosity: VerbosityDebug,
			log:       func(l *Logger) { l.Debug("resolved %d call sites", 42) },
			expect:    "resolved 42 call sites",
		},
		{
			name:      "warnings always shown",
			verbosity: VerbosityDefault,
			log:       func(l *Logger) { l.Warning("project %s skipped", "Legacy") },
			expect:    "Warning: project Legacy skipped",
		},
		{
			name:      "errors always shown",
			verbosity: VerbosityDefault,
			log:       func(l *Logger) { l.Error("invalid input: %s", "no projects") },
			expect:    "Error: invalid input: no projects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter(tt.verbosity, &buf)
			tt.log(l)
			if tt.expect != "" {
				assert.Contains(t, buf.String(), tt.expect)
			}
			if tt.absent != "" {
				assert.NotContains(t, buf.String(), tt.absent)
			}
		})
	}
}

func TestLogger_DebugHasElapsedPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityDebug, &buf)
	l.Debug("hello")
	// [MM:SS.mmm] prefix.
	assert.Regexp(t, `^\[\d{2}:\d{2}\.\d{3}\] hello`, buf.String())
}

func TestLogger_ObservePhase_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityVerbose, &buf)

	// A bytes.Buffer is not a TTY: phases print once, at the transition.
	l.ObservePhase(PhaseSample{Phase: "parse", Done: 0, Total: 10})
	l.ObservePhase(PhaseSample{Phase: "parse", Done: 5, Total: 10})
	l.ObservePhase(PhaseSample{Phase: "parse", Done: 10, Total: 10})
	l.ObservePhase(PhaseSample{Phase: "bfs", Done: 0, Total: 4})
	l.FinishPhases()

	out := buf.String()
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("parse...")))
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("bfs...")))
}

func TestLogger_ObservePhase_QuietNonTTY(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityDefault, &buf)

	l.ObservePhase(PhaseSample{Phase: "parse", Done: 1, Total: 10})
	l.FinishPhases()
	assert.Empty(t, buf.String())
}

func TestLogger_Timings(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityVerbose, &buf)

	stop := l.StartTiming("parse")
	time.Sleep(time.Millisecond)
	stop()

	assert.Greater(t, l.GetTiming("parse"), time.Duration(0))
	assert.Zero(t, l.GetTiming("unknown"))

	l.PrintTimingSummary()
	assert.Contains(t, buf.String(), "Timing Summary:")
	assert.Contains(t, buf.String(), "parse:")
}

func TestLogger_TimingSummaryHiddenAtDefault(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityDefault, &buf)
	stop := l.StartTiming("parse")
	stop()
	l.PrintTimingSummary()
	assert.Empty(t, buf.String())
}

func TestLogger_Accessors(t *testing.T) {
	var buf bytes.Buffer

	l := NewLoggerWithWriter(VerbosityVerbose, &buf)
	assert.Equal(t, VerbosityVerbose, l.Verbosity())
	assert.True(t, l.IsVerbose())
	assert.False(t, l.IsDebug())
	assert.False(t, l.IsTTY())
	assert.Equal(t, &buf, l.GetWriter())

	d := NewLoggerWithWriter(VerbosityDebug, &buf)
	assert.True(t, d.IsVerbose())
	assert.True(t, d.IsDebug())
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "00:00.000"},
		{42 * time.Millisecond, "00:00.042"},
		{3 * time.Second, "00:03.000"},
		{90*time.Second + 250*time.Millisecond, "01:30.250"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatElapsed(tt.d))
	}
}
