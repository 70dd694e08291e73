package output

import (
	"fmt"
	"strings"

	"github.com/impactsel/engine/model"
)

// InvalidCategoryError is returned when an unrecognized test category is
// provided on a filter flag.
type InvalidCategoryError struct {
	Category string
	Valid    []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category '%s', must be one of: %s",
		e.Category, strings.Join(e.Valid, ", "))
}

// validCategories maps lowercase category spellings to their canonical form.
var validCategories = map[string]model.Category{
	"unit":        model.CategoryUnit,
	"integration": model.CategoryIntegration,
	"api":         model.CategoryAPI,
	"database":    model.CategoryDatabase,
	"ui":          model.CategoryUI,
	"endtoend":    model.CategoryEndToEnd,
	"performance": model.CategoryPerformance,
	"security":    model.CategorySecurity,
}

// ParseList splits a comma-separated flag value, trimming whitespace and
// dropping empty parts. Returns an empty slice for empty input.
func ParseList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ParseCategories validates and canonicalizes category names
// (case-insensitive). Returns an InvalidCategoryError for the first
// unrecognized name.
func ParseCategories(names []string) ([]model.Category, error) {
	validList := []string{"Unit", "Integration", "API", "Database", "UI", "EndToEnd", "Performance", "Security"}
	out := make([]model.Category, 0, len(names))
	for _, name := range names {
		cat, ok := validCategories[strings.ToLower(name)]
		if !ok {
			return nil, &InvalidCategoryError{Category: name, Valid: validList}
		}
		out = append(out, cat)
	}
	return out, nil
}

// TestFilter narrows a test list for display by category and tag. Used when
// a caller wants full plan output but only one slice of it on screen; the
// Selector applies its own admission filters independently.
type TestFilter struct {
	categories map[model.Category]bool
	tags       map[string]bool
}

// NewTestFilter creates a filter keeping tests whose category is in
// categories (all, when empty) and that carry at least one of tags (all,
// when empty).
func NewTestFilter(categories []model.Category, tags []string) *TestFilter {
	f := &TestFilter{
		categories: make(map[model.Category]bool, len(categories)),
		tags:       make(map[string]bool, len(tags)),
	}
	for _, c := range categories {
		f.categories[c] = true
	}
	for _, t := range tags {
		f.tags[t] = true
	}
	return f
}

// Filter returns only the tests passing the category and tag constraints.
func (f *TestFilter) Filter(tests []model.TestRecord) []model.TestRecord {
	if len(f.categories) == 0 && len(f.tags) == 0 {
		return tests
	}
	filtered := make([]model.TestRecord, 0, len(tests))
	for _, t := range tests {
		if f.matches(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// FilteredCount returns how many tests the filter would remove.
func (f *TestFilter) FilteredCount(tests []model.TestRecord) int {
	return len(tests) - len(f.Filter(tests))
}

func (f *TestFilter) matches(t model.TestRecord) bool {
	if len(f.categories) > 0 && !f.categories[t.Category] {
		return false
	}
	if len(f.tags) > 0 {
		found := false
		for tag := range f.tags {
			if t.HasTag(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
