package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/impactsel/engine/model"
)

// JSONFormatter formats an enriched ExecutionPlan as JSON for machine
// consumption (CI runners, test harness adapters).
type JSONFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewJSONFormatter creates a JSON formatter writing to stdout.
func NewJSONFormatter(opts *OutputOptions) *JSONFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &JSONFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewJSONFormatterWithWriter creates a formatter with custom writer (for testing).
func NewJSONFormatterWithWriter(w io.Writer, opts *OutputOptions) *JSONFormatter {
	jf := NewJSONFormatter(opts)
	jf.writer = w
	return jf
}

// JSONOutput is the complete JSON output structure.
type JSONOutput struct {
	Tool     JSONTool    `json:"tool"`
	Plan     JSONPlan    `json:"plan"`
	Tests    []JSONTest  `json:"tests"`
	Batches  [][]string  `json:"batches"`
	Summary  JSONSummary `json:"summary"`
	Warnings []string    `json:"warnings,omitempty"`
}

// JSONTool contains tool metadata.
type JSONTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// JSONPlan contains planning-run metadata.
type JSONPlan struct {
	Solution        string  `json:"solution,omitempty"`
	ConfidenceLevel string  `json:"confidence_level"` //nolint:tagliatelle
	Timestamp       string  `json:"timestamp"`
	Duration        float64 `json:"duration"`
	Rationale       string  `json:"rationale"`
}

// JSONTest is one selected test.
type JSONTest struct {
	ID          string              `json:"id"`
	DisplayName string              `json:"display_name"` //nolint:tagliatelle
	Category    string              `json:"category"`
	Framework   string              `json:"framework,omitempty"`
	File        string              `json:"file,omitempty"`
	Line        int                 `json:"line,omitempty"`
	AvgMS       int64               `json:"avg_ms"` //nolint:tagliatelle
	Flaky       bool                `json:"flaky,omitempty"`
	Batch       int                 `json:"batch"`
	Covers      []JSONCoveredMethod `json:"covers,omitempty"`
}

// JSONCoveredMethod is one affected production method a test covers.
type JSONCoveredMethod struct {
	Method     string   `json:"method"`
	Confidence float64  `json:"confidence"`
	Depth      uint32   `json:"depth"`
	Path       []string `json:"path,omitempty"`
}

// JSONSummary contains aggregated statistics.
type JSONSummary struct {
	TotalSelected     int            `json:"total_selected"`     //nolint:tagliatelle
	TotalCandidates   int            `json:"total_candidates"`   //nolint:tagliatelle
	ByCategory        map[string]int `json:"by_category"`        //nolint:tagliatelle
	EstimatedDuration float64        `json:"estimated_duration"` //nolint:tagliatelle
	Batches           int            `json:"batches"`
}

// Format outputs the enriched plan as indented JSON.
func (f *JSONFormatter) Format(plan model.ExecutionPlan, enriched []*EnrichedTest, summary *Summary, info PlanInfo) error {
	output := f.buildOutput(plan, enriched, summary, info)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (f *JSONFormatter) buildOutput(plan model.ExecutionPlan, enriched []*EnrichedTest, summary *Summary, info PlanInfo) JSONOutput {
	version := info.Version
	if version == "" {
		version = "unknown"
	}
	timestamp := info.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	return JSONOutput{
		Tool: JSONTool{
			Name:    "impact-engine",
			Version: version,
		},
		Plan: JSONPlan{
			Solution:        info.Solution,
			ConfidenceLevel: plan.ConfidenceLevel,
			Timestamp:       timestamp.Format(time.RFC3339),
			Duration:        info.Duration.Seconds(),
			Rationale:       plan.Rationale,
		},
		Tests:   f.buildTests(enriched),
		Batches: f.buildBatches(plan),
		Summary: JSONSummary{
			TotalSelected:     summary.TotalSelected,
			TotalCandidates:   summary.TotalCandidates,
			ByCategory:        summary.ByCategory,
			EstimatedDuration: summary.EstimatedDuration.Seconds(),
			Batches:           summary.Batches,
		},
		Warnings: info.Warnings,
	}
}

func (f *JSONFormatter) buildTests(enriched []*EnrichedTest) []JSONTest {
	tests := make([]JSONTest, 0, len(enriched))
	for _, et := range enriched {
		t := JSONTest{
			ID:          string(et.Test.ID),
			DisplayName: et.Test.DisplayName,
			Category:    string(et.Test.Category),
			Framework:   string(et.Test.Framework),
			File:        et.RelPath,
			Line:        et.Test.StartLine,
			AvgMS:       et.Test.AvgExecution.Milliseconds(),
			Flaky:       et.Test.IsFlaky,
			Batch:       et.Batch,
			Covers:      f.buildCovers(et.Covered),
		}
		tests = append(tests, t)
	}
	return tests
}

func (f *JSONFormatter) buildCovers(covered []CoveredMethod) []JSONCoveredMethod {
	if len(covered) == 0 {
		return nil
	}
	out := make([]JSONCoveredMethod, 0, len(covered))
	for _, c := range covered {
		path := make([]string, len(c.Path))
		for i, id := range c.Path {
			path[i] = string(id)
		}
		out = append(out, JSONCoveredMethod{
			Method:     string(c.ID),
			Confidence: c.Confidence,
			Depth:      c.Depth,
			Path:       path,
		})
	}
	return out
}

func (f *JSONFormatter) buildBatches(plan model.ExecutionPlan) [][]string {
	batches := make([][]string, 0, len(plan.Batches))
	for _, batch := range plan.Batches {
		ids := make([]string, 0, len(batch))
		for _, t := range batch {
			ids = append(ids, string(t.ID))
		}
		batches = append(batches, ids)
	}
	return batches
}
