package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

func methodID(s string) methodid.MethodID { return methodid.MethodID(s) }

// fakeCoverage is a canned CoverageSource.
type fakeCoverage struct {
	entries map[methodid.MethodID][]model.CoverageEntry
}

func (f *fakeCoverage) TestsFor(production methodid.MethodID) []model.CoverageEntry {
	return f.entries[production]
}

func planFixture() (model.ExecutionPlan, map[methodid.MethodID]struct{}, *fakeCoverage) {
	addT := model.TestRecord{
		MethodRecord: model.MethodRecord{
			ID:          methodID("Calc.Tests.AddT()"),
			DisplayName: "AddT",
			IsTest:      true,
			Framework:   model.FrameworkNUnit,
			SourcePath:  "/src/Calc.Tests/CalcTests.cs",
			StartLine:   10,
			EndLine:     14,
		},
		Category:     model.CategoryUnit,
		AvgExecution: 20 * time.Millisecond,
	}
	mulT := model.TestRecord{
		MethodRecord: model.MethodRecord{
			ID:          methodID("Calc.Tests.MulT()"),
			DisplayName: "MulT",
			IsTest:      true,
			Framework:   model.FrameworkNUnit,
			SourcePath:  "/src/Calc.Tests/CalcTests.cs",
			StartLine:   20,
			EndLine:     24,
		},
		Category:     model.CategoryIntegration,
		AvgExecution: 150 * time.Millisecond,
	}

	plan := model.ExecutionPlan{
		Tests:             []model.TestRecord{addT, mulT},
		Batches:           [][]model.TestRecord{{mulT}, {addT}},
		EstimatedDuration: 170 * time.Millisecond,
		ConfidenceLevel:   "Fast",
		Rationale:         "2 tests cover the affected methods",
	}

	add := methodID("Calc.Calculator.Add(Int32,Int32)")
	mul := methodID("Calc.Calculator.Multiply(Int32,Int32)")
	affected := map[methodid.MethodID]struct{}{add: {}, mul: {}}

	coverage := &fakeCoverage{entries: map[methodid.MethodID][]model.CoverageEntry{
		add: {
			{Test: addT.ID, Production: add, Path: []methodid.MethodID{addT.ID, add}, Depth: 1, Confidence: 0.85},
		},
		mul: {
			{Test: mulT.ID, Production: mul, Path: []methodid.MethodID{mulT.ID, mul}, Depth: 1, Confidence: 0.85},
			{Test: addT.ID, Production: mul, Path: []methodid.MethodID{addT.ID, add, mul}, Depth: 2, Confidence: 0.70},
		},
	}}

	return plan, affected, coverage
}

func TestEnrichPlan_CoveredMethods(t *testing.T) {
	plan, affected, coverage := planFixture()
	e := NewEnricher(coverage, nil)

	enriched := e.EnrichPlan(plan, affected)
	require.Len(t, enriched, 2)

	addT := enriched[0]
	assert.Equal(t, methodID("Calc.Tests.AddT()"), addT.Test.ID)
	require.Len(t, addT.Covered, 2)
	// Most confident first.
	assert.Equal(t, methodID("Calc.Calculator.Add(Int32,Int32)"), addT.Covered[0].ID)
	assert.InDelta(t, 0.85, addT.Covered[0].Confidence, 0.001)
	assert.Equal(t, methodID("Calc.Calculator.Multiply(Int32,Int32)"), addT.Covered[1].ID)
	assert.Equal(t, uint32(2), addT.Covered[1].Depth)

	mulT := enriched[1]
	require.Len(t, mulT.Covered, 1)
	assert.Equal(t, methodID("Calc.Calculator.Multiply(Int32,Int32)"), mulT.Covered[0].ID)
}

func TestEnrichPlan_BatchAssignment(t *testing.T) {
	plan, affected, coverage := planFixture()
	e := NewEnricher(coverage, nil)

	enriched := e.EnrichPlan(plan, affected)
	require.Len(t, enriched, 2)

	// mulT is in batch 0, addT in batch 1 (LPT puts the longer test first).
	assert.Equal(t, 1, enriched[0].Batch)
	assert.Equal(t, 0, enriched[1].Batch)
}

func TestEnrichPlan_RelPath(t *testing.T) {
	plan, affected, coverage := planFixture()
	e := NewEnricher(coverage, &OutputOptions{ProjectRoot: "/src", ContextLines: 3})

	enriched := e.EnrichPlan(plan, affected)
	require.Len(t, enriched, 2)
	assert.Equal(t, filepath.Join("Calc.Tests", "CalcTests.cs"), enriched[0].RelPath)
}

func TestEnrichPlan_Snippet(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "CalcTests.cs")
	content := "line1\nline2\nline3\nline4\nline5\nline6\nline7\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	test := model.TestRecord{
		MethodRecord: model.MethodRecord{
			ID:         methodID("Calc.Tests.AddT()"),
			IsTest:     true,
			SourcePath: src,
			StartLine:  4,
		},
		Category: model.CategoryUnit,
	}
	plan := model.ExecutionPlan{
		Tests:   []model.TestRecord{test},
		Batches: [][]model.TestRecord{{test}},
	}

	e := NewEnricher(&fakeCoverage{}, &OutputOptions{ContextLines: 2})
	enriched := e.EnrichPlan(plan, nil)
	require.Len(t, enriched, 1)

	snippet := enriched[0].Snippet
	assert.Equal(t, 2, snippet.StartLine)
	assert.Equal(t, 4, snippet.HighlightLine)
	require.Len(t, snippet.Lines, 5) // lines 2-6
	assert.Equal(t, "line4", snippet.Lines[2].Content)
	assert.True(t, snippet.Lines[2].IsHighlight)
	assert.False(t, snippet.Lines[0].IsHighlight)
}

func TestEnrichPlan_MissingSourceFile(t *testing.T) {
	test := model.TestRecord{
		MethodRecord: model.MethodRecord{
			ID:         methodID("Calc.Tests.AddT()"),
			IsTest:     true,
			SourcePath: "/nonexistent/path.cs",
			StartLine:  4,
		},
	}
	plan := model.ExecutionPlan{Tests: []model.TestRecord{test}}

	e := NewEnricher(&fakeCoverage{}, nil)
	enriched := e.EnrichPlan(plan, nil)
	require.Len(t, enriched, 1)
	assert.Empty(t, enriched[0].Snippet.Lines)
}

func TestEnrichPlan_NilCoverage(t *testing.T) {
	plan, affected, _ := planFixture()
	e := NewEnricher(nil, nil)

	enriched := e.EnrichPlan(plan, affected)
	require.Len(t, enriched, 2)
	assert.Empty(t, enriched[0].Covered)
}
