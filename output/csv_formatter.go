package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

// CSVFormatter formats an enriched ExecutionPlan as CSV, one row per
// selected test, for spreadsheet triage and quick grepping.
type CSVFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewCSVFormatter creates a CSV formatter writing to stdout.
func NewCSVFormatter(opts *OutputOptions) *CSVFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &CSVFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewCSVFormatterWithWriter creates a formatter with custom writer (for testing).
func NewCSVFormatterWithWriter(w io.Writer, opts *OutputOptions) *CSVFormatter {
	cf := NewCSVFormatter(opts)
	cf.writer = w
	return cf
}

// CSVHeaders returns the CSV column headers.
func CSVHeaders() []string {
	return []string{
		"test_id",
		"display_name",
		"category",
		"framework",
		"file",
		"line",
		"avg_ms",
		"flaky",
		"batch",
		"covered_methods",
		"top_covered_method",
		"top_confidence",
	}
}

// Format outputs the enriched plan as CSV.
func (f *CSVFormatter) Format(enriched []*EnrichedTest) error {
	w := csv.NewWriter(f.writer)
	defer w.Flush()

	if err := w.Write(CSVHeaders()); err != nil {
		return err
	}
	for _, et := range enriched {
		if err := w.Write(f.buildRow(et)); err != nil {
			return err
		}
	}
	return w.Error()
}

func (f *CSVFormatter) buildRow(et *EnrichedTest) []string {
	topMethod := ""
	topConfidence := ""
	if len(et.Covered) > 0 {
		topMethod = string(et.Covered[0].ID)
		topConfidence = strconv.FormatFloat(et.Covered[0].Confidence, 'f', 2, 64)
	}

	return []string{
		string(et.Test.ID),                             // test_id
		et.Test.DisplayName,                            // display_name
		string(et.Test.Category),                       // category
		string(et.Test.Framework),                      // framework
		et.RelPath,                                     // file
		intToString(et.Test.StartLine),                 // line
		strconv.FormatInt(et.Test.AvgExecution.Milliseconds(), 10), // avg_ms
		boolToString(et.Test.IsFlaky),                  // flaky
		strconv.Itoa(et.Batch),                         // batch
		strconv.Itoa(len(et.Covered)),                  // covered_methods
		topMethod,                                      // top_covered_method
		topConfidence,                                  // top_confidence
	}
}

func intToString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
