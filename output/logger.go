package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// PhaseSample is one pull-model progress sample from the engine: a named
// phase (parse, bfs, scoring) with done/total counts. Total may be -1 for
// phases whose extent is not known up front.
type PhaseSample struct {
	Phase string
	Done  int
	Total int
}

// Logger provides verbosity-leveled logging plus phase-progress rendering.
// Output goes to stderr so stdout stays clean for plan results.
type Logger struct {
	verbosity   VerbosityLevel
	writer      io.Writer
	startTime   time.Time
	timings     map[string]time.Duration
	isTTY       bool
	progressBar *progressbar.ProgressBar
	activePhase string
}

// NewLogger creates a logger writing to stderr at the given verbosity.
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a logger with a custom writer, primarily for
// testing.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{
		verbosity: verbosity,
		writer:    w,
		startTime: time.Now(),
		timings:   make(map[string]time.Duration),
		isTTY:     IsTTY(w),
	}
}

// Progress logs progress and statistics messages (verbose and debug modes).
// Use for milestones like "Indexed 12 projects, 4301 methods".
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs diagnostics (debug mode only) with an elapsed-time prefix.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		elapsed := time.Since(l.startTime)
		fmt.Fprintf(l.writer, "[%s] %s\n", formatElapsed(elapsed), fmt.Sprintf(format, args...))
	}
}

// Warning logs warnings (always shown).
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// Error logs errors (always shown).
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Error: %s\n", fmt.Sprintf(format, args...))
}

// ObservePhase consumes one engine progress sample. In a TTY it renders a
// progress bar per phase, replacing the bar when the phase name changes; in
// non-TTY verbose mode it prints a line at phase transitions only, so CI
// logs stay readable.
func (l *Logger) ObservePhase(s PhaseSample) {
	if s.Phase != l.activePhase {
		l.finishBar()
		l.activePhase = s.Phase
		if !l.isTTY {
			l.Progress("%s...", s.Phase)
		} else {
			l.progressBar = newPhaseBar(l.writer, s.Phase, s.Total)
		}
	}
	if l.progressBar != nil {
		_ = l.progressBar.Set(s.Done)
	}
}

// FinishPhases completes any active progress bar. Call once after the last
// sample of a run.
func (l *Logger) FinishPhases() {
	l.finishBar()
	l.activePhase = ""
}

func (l *Logger) finishBar() {
	if l.progressBar != nil {
		_ = l.progressBar.Finish()
		l.progressBar = nil
	}
}

func newPhaseBar(w io.Writer, phase string, total int) *progressbar.ProgressBar {
	if total <= 0 {
		return progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(phase),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		)
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(phase),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// StartTiming begins timing a named operation; the returned func records the
// elapsed duration when called.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.timings[name] = time.Since(start)
	}
}

// GetTiming returns the recorded duration for a named operation.
func (l *Logger) GetTiming(name string) time.Duration {
	return l.timings[name]
}

// PrintTimingSummary prints all recorded timings (verbose mode only).
func (l *Logger) PrintTimingSummary() {
	if l.verbosity < VerbosityVerbose {
		return
	}
	fmt.Fprintln(l.writer, "\nTiming Summary:")
	for name, duration := range l.timings {
		fmt.Fprintf(l.writer, "  %s: %s\n", name, duration.Round(time.Millisecond))
	}
}

// formatElapsed formats a duration as MM:SS.mmm.
func formatElapsed(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// Verbosity returns the current verbosity level.
func (l *Logger) Verbosity() VerbosityLevel {
	return l.verbosity
}

// IsVerbose reports whether verbose or debug mode is enabled.
func (l *Logger) IsVerbose() bool {
	return l.verbosity >= VerbosityVerbose
}

// IsDebug reports whether debug mode is enabled.
func (l *Logger) IsDebug() bool {
	return l.verbosity >= VerbosityDebug
}

// IsTTY reports whether the logger's writer is a terminal.
func (l *Logger) IsTTY() bool {
	return l.isTTY
}

// GetWriter returns the logger's output writer.
func (l *Logger) GetWriter() io.Writer {
	return l.writer
}
