package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/impactsel/engine/model"
)

// TextFormatter formats an enriched ExecutionPlan as human-readable text.
type TextFormatter struct {
	writer  io.Writer
	options *OutputOptions
	logger  *Logger
}

// NewTextFormatter creates a text formatter writing to stdout.
func NewTextFormatter(opts *OutputOptions, logger *Logger) *TextFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &TextFormatter{
		writer:  os.Stdout,
		options: opts,
		logger:  logger,
	}
}

// NewTextFormatterWithWriter creates a formatter with custom writer (for testing).
func NewTextFormatterWithWriter(w io.Writer, opts *OutputOptions, logger *Logger) *TextFormatter {
	tf := NewTextFormatter(opts, logger)
	tf.writer = w
	return tf
}

// Format renders the plan: header, batches with their tests, and a summary
// footer. An empty plan prints the header and its rationale only.
func (f *TextFormatter) Format(plan model.ExecutionPlan, enriched []*EnrichedTest, summary *Summary) error {
	f.writeHeader(plan)

	if len(plan.Tests) == 0 {
		fmt.Fprintf(f.writer, "No tests selected: %s\n", plan.Rationale)
		return nil
	}

	f.writeBatches(plan, enriched)
	f.writeSummary(summary)
	return nil
}

func (f *TextFormatter) writeHeader(plan model.ExecutionPlan) {
	fmt.Fprintf(f.writer, "Test Impact Plan (%s)\n", plan.ConfidenceLevel)
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeBatches(plan model.ExecutionPlan, enriched []*EnrichedTest) {
	byID := make(map[string]*EnrichedTest, len(enriched))
	for _, et := range enriched {
		byID[string(et.Test.ID)] = et
	}

	for i, batch := range plan.Batches {
		fmt.Fprintf(f.writer, "Batch %d (%d tests, ~%s):\n", i+1, len(batch), formatApproxDuration(batchDuration(batch)))
		for _, t := range batch {
			f.writeTest(t, byID[string(t.ID)])
		}
		fmt.Fprintln(f.writer)
	}
}

func (f *TextFormatter) writeTest(t model.TestRecord, et *EnrichedTest) {
	flaky := ""
	if t.IsFlaky {
		flaky = " [flaky]"
	}
	fmt.Fprintf(f.writer, "  %s  (%s, ~%s)%s\n", t.ID, t.Category, formatApproxDuration(t.AvgExecution), flaky)

	if et == nil || !f.options.ShowCoverage {
		return
	}
	for _, c := range et.Covered {
		fmt.Fprintf(f.writer, "      covers %s (confidence %.2f, depth %d)\n", c.ID, c.Confidence, c.Depth)
	}
	if len(et.Snippet.Lines) > 0 {
		f.writeCodeSnippet(et.Snippet)
	}
}

func (f *TextFormatter) writeCodeSnippet(snippet CodeSnippet) {
	maxLineNum := 0
	for _, line := range snippet.Lines {
		if line.Number > maxLineNum {
			maxLineNum = line.Number
		}
	}
	lineWidth := len(fmt.Sprintf("%d", maxLineNum))

	for _, line := range snippet.Lines {
		marker := " "
		if line.IsHighlight {
			marker = ">"
		}
		fmt.Fprintf(f.writer, "      %s %*d | %s\n", marker, lineWidth, line.Number, line.Content)
	}
}

func (f *TextFormatter) writeSummary(summary *Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintf(f.writer, "  Selected %d of %d candidates\n", summary.TotalSelected, summary.TotalCandidates)
	fmt.Fprintf(f.writer, "  Estimated duration %s across %d batches\n",
		formatApproxDuration(summary.EstimatedDuration), summary.Batches)

	if len(summary.ByCategory) > 0 {
		categories := make([]string, 0, len(summary.ByCategory))
		for cat := range summary.ByCategory {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
		fmt.Fprint(f.writer, "  By category:")
		for _, cat := range categories {
			fmt.Fprintf(f.writer, " %s=%d", cat, summary.ByCategory[cat])
		}
		fmt.Fprintln(f.writer)
	}

	if summary.WarningCount > 0 {
		fmt.Fprintf(f.writer, "  Warnings: %d (run with --verbose for details)\n", summary.WarningCount)
	}
}

func batchDuration(batch []model.TestRecord) time.Duration {
	var total time.Duration
	for _, t := range batch {
		total += t.AvgExecution
	}
	return total
}

// formatApproxDuration renders a duration rounded to a readable unit:
// milliseconds under a second, tenths of seconds under a minute, minutes
// and seconds above that.
func formatApproxDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
