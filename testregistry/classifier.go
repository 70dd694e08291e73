package testregistry

import (
	"strings"

	"github.com/impactsel/engine/model"
)

// categoryKeyword maps a substring found in a fixture's type name or tag set
// to the category it implies, checked in table order so the first match
// wins. A test with none of these signals defaults to Unit.
var categoryKeyword = []struct {
	keyword  string
	category model.Category
}{
	{"endtoend", model.CategoryEndToEnd},
	{"e2e", model.CategoryEndToEnd},
	{"integration", model.CategoryIntegration},
	{"database", model.CategoryDatabase},
	{"repository", model.CategoryDatabase},
	{"api", model.CategoryAPI},
	{"controller", model.CategoryAPI},
	{"ui", model.CategoryUI},
	{"selenium", model.CategoryUI},
	{"performance", model.CategoryPerformance},
	{"benchmark", model.CategoryPerformance},
	{"security", model.CategorySecurity},
}

// ClassifyCategory assigns a Category to a test based on its declaring type
// name and tag set, defaulting to Unit when no keyword matches. Tags take
// precedence over the type name so an explicit [Category("Integration")]
// style tag always wins over a name heuristic.
func ClassifyCategory(declaringType string, tags map[string]struct{}) model.Category {
	for tag := range tags {
		if cat, ok := categoryFromKeyword(tag); ok {
			return cat
		}
	}
	if cat, ok := categoryFromKeyword(declaringType); ok {
		return cat
	}
	return model.CategoryUnit
}

func categoryFromKeyword(s string) (model.Category, bool) {
	lower := strings.ToLower(s)
	for _, entry := range categoryKeyword {
		if strings.Contains(lower, entry.keyword) {
			return entry.category, true
		}
	}
	return "", false
}
