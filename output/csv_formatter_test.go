package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVFormatter_Format(t *testing.T) {
	plan, affected, coverage := planFixture()
	enriched := NewEnricher(coverage, nil).EnrichPlan(plan, affected)

	var buf bytes.Buffer
	f := NewCSVFormatterWithWriter(&buf, nil)
	require.NoError(t, f.Format(enriched))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 tests

	assert.Equal(t, CSVHeaders(), records[0])

	addT := records[1]
	assert.Equal(t, "Calc.Tests.AddT()", addT[0])
	assert.Equal(t, "AddT", addT[1])
	assert.Equal(t, "Unit", addT[2])
	assert.Equal(t, "nunit", addT[3])
	assert.Equal(t, "10", addT[5])
	assert.Equal(t, "20", addT[6])
	assert.Equal(t, "false", addT[7])
	assert.Equal(t, "1", addT[8])
	assert.Equal(t, "2", addT[9])
	assert.Equal(t, "Calc.Calculator.Add(Int32,Int32)", addT[10])
	assert.Equal(t, "0.85", addT[11])
}

func TestCSVFormatter_EmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	f := NewCSVFormatterWithWriter(&buf, nil)
	require.NoError(t, f.Format(nil))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, CSVHeaders(), records[0])
}

func TestCSVFormatter_NoCoverage(t *testing.T) {
	plan, _, _ := planFixture()
	enriched := NewEnricher(&fakeCoverage{}, nil).EnrichPlan(plan, nil)

	var buf bytes.Buffer
	f := NewCSVFormatterWithWriter(&buf, nil)
	require.NoError(t, f.Format(enriched))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	// covered_methods, top_covered_method, top_confidence stay empty-ish.
	assert.Equal(t, "0", records[1][9])
	assert.Equal(t, "", records[1][10])
	assert.Equal(t, "", records[1][11])
}
