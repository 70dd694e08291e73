package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/impactsel/engine/model"
)

// selectedTestRuleID is the single reporting rule the SARIF output uses:
// every selected test becomes one "note" result under it, located at the
// test's declaration, so CI annotators can show why each test is in the run.
const selectedTestRuleID = "impact/selected-test"

// SARIFFormatter formats an enriched ExecutionPlan as SARIF 2.1.0.
type SARIFFormatter struct {
	writer  io.Writer
	options *OutputOptions
}

// NewSARIFFormatter creates a SARIF formatter writing to stdout.
func NewSARIFFormatter(opts *OutputOptions) *SARIFFormatter {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &SARIFFormatter{
		writer:  os.Stdout,
		options: opts,
	}
}

// NewSARIFFormatterWithWriter creates a formatter with custom writer (for testing).
func NewSARIFFormatterWithWriter(w io.Writer, opts *OutputOptions) *SARIFFormatter {
	sf := NewSARIFFormatter(opts)
	sf.writer = w
	return sf
}

// Format outputs the enriched plan as SARIF.
func (f *SARIFFormatter) Format(plan model.ExecutionPlan, enriched []*EnrichedTest, info PlanInfo) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("impact-engine", "https://github.com/impactsel/engine")
	f.buildRule(run, plan)

	for _, et := range enriched {
		f.buildResult(et, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (f *SARIFFormatter) buildRule(run *sarif.Run, plan model.ExecutionPlan) {
	desc := fmt.Sprintf("Test selected for execution under the %s confidence level. %s",
		plan.ConfidenceLevel, plan.Rationale)

	rule := run.AddRule(selectedTestRuleID).
		WithDescription(desc).
		WithName("SelectedTest")

	rule.WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel("note"))
	rule.WithProperties(map[string]interface{}{
		"tags": []string{"test-selection"},
	})
}

func (f *SARIFFormatter) buildResult(et *EnrichedTest, run *sarif.Run) {
	message := fmt.Sprintf("%s selected (category %s, batch %d)", et.Test.ID, et.Test.Category, et.Batch+1)
	if len(et.Covered) > 0 {
		top := et.Covered[0]
		message += fmt.Sprintf("; covers %s at confidence %.2f", top.ID, top.Confidence)
	}

	result := run.CreateResultForRule(selectedTestRuleID).
		WithMessage(sarif.NewTextMessage(message))

	f.addLocation(et, result)
	f.addCoveragePath(et, result)
}

func (f *SARIFFormatter) addLocation(et *EnrichedTest, result *sarif.Result) {
	path := et.RelPath
	if path == "" {
		path = et.Test.SourcePath
	}
	if path == "" {
		return
	}

	region := sarif.NewRegion().WithStartLine(et.Test.StartLine)
	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(path)).
				WithRegion(region),
		)
	result.AddLocation(location)
}

// addCoveragePath attaches the strongest coverage path as a code flow, so a
// reviewer can trace test → … → changed method hop by hop.
func (f *SARIFFormatter) addCoveragePath(et *EnrichedTest, result *sarif.Result) {
	if len(et.Covered) == 0 || len(et.Covered[0].Path) == 0 {
		return
	}
	top := et.Covered[0]

	path := et.RelPath
	if path == "" {
		path = et.Test.SourcePath
	}

	locations := make([]*sarif.ThreadFlowLocation, 0, len(top.Path))
	for i, hop := range top.Path {
		msg := string(hop)
		if i == 0 {
			msg = "test entry: " + msg
		} else if i == len(top.Path)-1 {
			msg = "changed method: " + msg
		}
		loc := sarif.NewLocation().
			WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(path)).
					WithRegion(sarif.NewRegion().WithStartLine(et.Test.StartLine)),
			).
			WithMessage(sarif.NewTextMessage(msg))
		locations = append(locations, sarif.NewThreadFlowLocation().WithLocation(loc))
	}

	threadFlow := sarif.NewThreadFlow().WithLocations(locations)
	flowMsg := fmt.Sprintf("Call path from %s to %s (%d hops)", top.Path[0], top.ID, top.Depth)
	codeFlow := sarif.NewCodeFlow().
		WithThreadFlows([]*sarif.ThreadFlow{threadFlow}).
		WithMessage(sarif.NewTextMessage(flowMsg))

	result.WithCodeFlows([]*sarif.CodeFlow{codeFlow})
}
