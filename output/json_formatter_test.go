package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Format(t *testing.T) {
	plan, affected, coverage := planFixture()
	enriched := NewEnricher(coverage, nil).EnrichPlan(plan, affected)
	summary := BuildSummary(plan, 10, 1)

	var buf bytes.Buffer
	f := NewJSONFormatterWithWriter(&buf, &OutputOptions{Version: "1.0.0"})

	info := PlanInfo{
		Solution:        "calc.sln",
		Version:         "1.0.0",
		Duration:        250 * time.Millisecond,
		ConfidenceLevel: "Fast",
		Timestamp:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Warnings:        []string{"parse failure in project legacy"},
	}
	require.NoError(t, f.Format(plan, enriched, summary, info))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "impact-engine", out.Tool.Name)
	assert.Equal(t, "1.0.0", out.Tool.Version)

	assert.Equal(t, "calc.sln", out.Plan.Solution)
	assert.Equal(t, "Fast", out.Plan.ConfidenceLevel)
	assert.Equal(t, "2026-03-01T12:00:00Z", out.Plan.Timestamp)
	assert.InDelta(t, 0.25, out.Plan.Duration, 0.001)
	assert.Equal(t, "2 tests cover the affected methods", out.Plan.Rationale)

	require.Len(t, out.Tests, 2)
	addT := out.Tests[0]
	assert.Equal(t, "Calc.Tests.AddT()", addT.ID)
	assert.Equal(t, "Unit", addT.Category)
	assert.Equal(t, "nunit", addT.Framework)
	assert.Equal(t, int64(20), addT.AvgMS)
	assert.Equal(t, 1, addT.Batch)
	require.Len(t, addT.Covers, 2)
	assert.Equal(t, "Calc.Calculator.Add(Int32,Int32)", addT.Covers[0].Method)
	assert.InDelta(t, 0.85, addT.Covers[0].Confidence, 0.001)
	assert.Equal(t, []string{"Calc.Tests.AddT()", "Calc.Calculator.Add(Int32,Int32)"}, addT.Covers[0].Path)

	require.Len(t, out.Batches, 2)
	assert.Equal(t, []string{"Calc.Tests.MulT()"}, out.Batches[0])
	assert.Equal(t, []string{"Calc.Tests.AddT()"}, out.Batches[1])

	assert.Equal(t, 2, out.Summary.TotalSelected)
	assert.Equal(t, 10, out.Summary.TotalCandidates)
	assert.Equal(t, map[string]int{"Unit": 1, "Integration": 1}, out.Summary.ByCategory)
	assert.Equal(t, 2, out.Summary.Batches)

	assert.Equal(t, []string{"parse failure in project legacy"}, out.Warnings)
}

func TestJSONFormatter_EmptyPlan(t *testing.T) {
	plan, _, _ := planFixture()
	plan.Tests = nil
	plan.Batches = nil
	plan.Rationale = "no affected methods"

	var buf bytes.Buffer
	f := NewJSONFormatterWithWriter(&buf, nil)
	require.NoError(t, f.Format(plan, nil, BuildSummary(plan, 0, 0), PlanInfo{}))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Empty(t, out.Tests)
	assert.Equal(t, "no affected methods", out.Plan.Rationale)
	assert.Equal(t, "unknown", out.Tool.Version)
	assert.NotEmpty(t, out.Plan.Timestamp)
}

func TestJSONFormatter_ValidJSONStructure(t *testing.T) {
	plan, affected, coverage := planFixture()
	enriched := NewEnricher(coverage, nil).EnrichPlan(plan, affected)

	var buf bytes.Buffer
	f := NewJSONFormatterWithWriter(&buf, nil)
	require.NoError(t, f.Format(plan, enriched, BuildSummary(plan, 2, 0), PlanInfo{}))

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &generic))
	assert.Contains(t, generic, "tool")
	assert.Contains(t, generic, "plan")
	assert.Contains(t, generic, "tests")
	assert.Contains(t, generic, "batches")
	assert.Contains(t, generic, "summary")
	assert.NotContains(t, generic, "warnings")
}
