package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactsel/engine/model"
)

func testRecord(id string, category model.Category, tags ...string) model.TestRecord {
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}
	return model.TestRecord{
		MethodRecord: model.MethodRecord{ID: methodID(id), IsTest: true},
		Category:     category,
		Tags:         tagSet,
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: []string{}},
		{name: "whitespace only", input: "   ", expected: []string{}},
		{name: "single", input: "Unit", expected: []string{"Unit"}},
		{name: "multiple", input: "Unit,Integration", expected: []string{"Unit", "Integration"}},
		{name: "spaces trimmed", input: " Unit , Integration ", expected: []string{"Unit", "Integration"}},
		{name: "empty parts dropped", input: "Unit,,Integration,", expected: []string{"Unit", "Integration"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseList(tt.input))
		})
	}
}

func TestParseCategories(t *testing.T) {
	t.Run("valid names canonicalize case-insensitively", func(t *testing.T) {
		cats, err := ParseCategories([]string{"unit", "INTEGRATION", "EndToEnd"})
		require.NoError(t, err)
		assert.Equal(t, []model.Category{model.CategoryUnit, model.CategoryIntegration, model.CategoryEndToEnd}, cats)
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		_, err := ParseCategories([]string{"unit", "smoke"})
		require.Error(t, err)
		var invalid *InvalidCategoryError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "smoke", invalid.Category)
		assert.Contains(t, err.Error(), "invalid category 'smoke'")
	})

	t.Run("empty input", func(t *testing.T) {
		cats, err := ParseCategories(nil)
		require.NoError(t, err)
		assert.Empty(t, cats)
	})
}

func TestTestFilter(t *testing.T) {
	tests := []model.TestRecord{
		testRecord("Calc.Tests.AddT()", model.CategoryUnit, "fast"),
		testRecord("Calc.Tests.DbT()", model.CategoryDatabase, "slow"),
		testRecord("Calc.Tests.ApiT()", model.CategoryAPI, "fast", "smoke"),
	}

	t.Run("no constraints passes everything", func(t *testing.T) {
		f := NewTestFilter(nil, nil)
		assert.Len(t, f.Filter(tests), 3)
		assert.Equal(t, 0, f.FilteredCount(tests))
	})

	t.Run("category filter", func(t *testing.T) {
		f := NewTestFilter([]model.Category{model.CategoryUnit}, nil)
		got := f.Filter(tests)
		require.Len(t, got, 1)
		assert.Equal(t, methodID("Calc.Tests.AddT()"), got[0].ID)
		assert.Equal(t, 2, f.FilteredCount(tests))
	})

	t.Run("tag filter requires any matching tag", func(t *testing.T) {
		f := NewTestFilter(nil, []string{"fast"})
		got := f.Filter(tests)
		assert.Len(t, got, 2)
	})

	t.Run("category and tag combine", func(t *testing.T) {
		f := NewTestFilter([]model.Category{model.CategoryAPI}, []string{"smoke"})
		got := f.Filter(tests)
		require.Len(t, got, 1)
		assert.Equal(t, methodID("Calc.Tests.ApiT()"), got[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		f := NewTestFilter([]model.Category{model.CategoryUI}, nil)
		assert.Empty(t, f.Filter(tests))
	})
}
