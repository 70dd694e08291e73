package output

import (
	"time"

	"github.com/impactsel/engine/model"
)

// VerbosityLevel controls how much the Logger prints.
type VerbosityLevel int

const (
	// VerbosityDefault prints warnings, errors, and final results only.
	VerbosityDefault VerbosityLevel = iota

	// VerbosityVerbose adds phase progress and statistics.
	VerbosityVerbose

	// VerbosityDebug adds elapsed-time-prefixed diagnostics.
	VerbosityDebug
)

// OutputOptions configures formatters and the enricher.
type OutputOptions struct {
	// ProjectRoot, when set, is stripped from source paths so output shows
	// repository-relative locations.
	ProjectRoot string

	// ContextLines is how many lines of source context the enricher reads
	// around a test declaration.
	ContextLines int

	// ShowCoverage includes per-test covered-method detail in text output.
	ShowCoverage bool

	// Version is stamped into machine-readable output.
	Version string
}

// NewDefaultOptions returns the default output configuration.
func NewDefaultOptions() *OutputOptions {
	return &OutputOptions{
		ContextLines: 3,
	}
}

// PlanInfo carries metadata about one planning run, stamped into JSON and
// SARIF output alongside the plan itself.
type PlanInfo struct {
	Solution        string
	Version         string
	Duration        time.Duration
	ConfidenceLevel string
	Timestamp       time.Time
	Warnings        []string
}

// Summary aggregates an ExecutionPlan for the human-readable and
// machine-readable footers.
type Summary struct {
	TotalSelected     int
	TotalCandidates   int
	ByCategory        map[string]int
	Batches           int
	EstimatedDuration time.Duration
	WarningCount      int
}

// BuildSummary computes a Summary over plan. totalCandidates is the size of
// the scored candidate pool before selection; warningCount the number of
// build warnings surfaced alongside the plan.
func BuildSummary(plan model.ExecutionPlan, totalCandidates, warningCount int) *Summary {
	s := &Summary{
		TotalSelected:     len(plan.Tests),
		TotalCandidates:   totalCandidates,
		ByCategory:        make(map[string]int),
		Batches:           len(plan.Batches),
		EstimatedDuration: plan.EstimatedDuration,
		WarningCount:      warningCount,
	}
	for _, t := range plan.Tests {
		s.ByCategory[string(t.Category)]++
	}
	return s
}
