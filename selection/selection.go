// Package selection builds a bounded ExecutionPlan from scored tests under a
// confidence-level policy: count caps, a duration budget, a score floor, and
// category/tag filters. Select stages the work as filter candidates, then
// admit under the policy's budgets.
package selection

import (
	"sort"
	"time"

	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

// ConfidenceLevel is a closed selection-policy preset.
type ConfidenceLevel string

const (
	Fast   ConfidenceLevel = "Fast"
	Medium ConfidenceLevel = "Medium"
	High   ConfidenceLevel = "High"
	Full   ConfidenceLevel = "Full"
)

// Policy is the resolved set of bounds a ConfidenceLevel applies. A zero
// MaxTests/MaxDuration means unbounded (the Full level's ∞).
type Policy struct {
	MaxTests      int
	MaxDuration   time.Duration
	MinScore      float64
	// CategorySplit, when non-empty, pre-allocates slots by category as a
	// fraction of MaxTests before falling back to the global score order —
	// the Fast level's 80/20 unit/integration mix. Open for other levels.
	CategorySplit map[model.Category]float64
}

// DefaultPolicies is the built-in confidence-level table. The Fast level's
// 80/20 unit/integration split is exposed as data rather than hardcoded in
// Select, so callers may override CategorySplit via Options.
func DefaultPolicies() map[ConfidenceLevel]Policy {
	return map[ConfidenceLevel]Policy{
		Fast: {
			MaxTests:    50,
			MaxDuration: 2 * time.Minute,
			MinScore:    0.50,
			CategorySplit: map[model.Category]float64{
				model.CategoryUnit:        0.8,
				model.CategoryIntegration: 0.2,
			},
		},
		Medium: {MaxTests: 300, MaxDuration: 10 * time.Minute, MinScore: 0.40},
		High:   {MaxTests: 1500, MaxDuration: 45 * time.Minute, MinScore: 0.20},
		Full:   {MaxTests: 0, MaxDuration: 0, MinScore: 0.0},
	}
}

// Options overrides and filters layered on top of a Policy.
type Options struct {
	Level             ConfidenceLevel
	PolicyOverride    *Policy
	IncludeFlaky      bool
	IncludedCategories map[model.Category]struct{}
	ExcludedCategories map[model.Category]struct{}
	RequiredTags      map[string]struct{}
	ExcludedTags      map[string]struct{}
	MaxParallelism    int
}

// Candidate is one scored test handed to Select.
type Candidate struct {
	Test  model.TestRecord
	Score float64
}

// Select builds an ExecutionPlan from candidates under opts. Sorting and
// admission are deterministic given identical inputs: ties in score break on
// MethodID, satisfying the engine's "identical inputs → identical plan"
// invariant.
func Select(candidates []Candidate, opts Options) model.ExecutionPlan {
	policy := resolvePolicy(opts)

	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if passesFilters(c.Test, opts) {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return filtered[i].Test.ID < filtered[j].Test.ID
	})

	if opts.Level == Full {
		tests := make([]model.TestRecord, len(filtered))
		for i, c := range filtered {
			tests[i] = c.Test
		}
		return finishPlan(tests, opts, policy, "Full: all filtered tests included")
	}

	var selected []Candidate
	var cumulative time.Duration
	admit := func(c Candidate) bool {
		if policy.MaxTests > 0 && len(selected) >= policy.MaxTests {
			return false
		}
		if c.Score < policy.MinScore {
			return false
		}
		if policy.MaxDuration > 0 && cumulative+c.Test.AvgExecution > policy.MaxDuration {
			return false
		}
		selected = append(selected, c)
		cumulative += c.Test.AvgExecution
		return true
	}

	if len(policy.CategorySplit) > 0 && policy.MaxTests > 0 {
		used := make(map[methodid.MethodID]bool)
		for _, alloc := range orderedSplit(policy.CategorySplit) {
			slots := int(float64(policy.MaxTests) * alloc.Fraction)
			taken := 0
			for _, c := range filtered {
				if taken >= slots || len(selected) >= policy.MaxTests {
					break
				}
				if used[c.Test.ID] || c.Test.Category != alloc.Category {
					continue
				}
				if admit(c) {
					used[c.Test.ID] = true
					taken++
				}
			}
		}
		for _, c := range filtered {
			if used[c.Test.ID] {
				continue
			}
			if !admit(c) {
				if policy.MaxTests > 0 && len(selected) >= policy.MaxTests {
					break
				}
				continue
			}
			used[c.Test.ID] = true
		}
	} else {
		for _, c := range filtered {
			if policy.MaxTests > 0 && len(selected) >= policy.MaxTests {
				break
			}
			admit(c)
		}
	}

	tests := make([]model.TestRecord, len(selected))
	for i, c := range selected {
		tests[i] = c.Test
	}

	rationale := "selected by composite score under policy bounds"
	if len(tests) == 0 {
		rationale = rationaleForEmpty(candidates, filtered, policy)
	}
	return finishPlan(tests, opts, policy, rationale)
}

// categoryAllocation is one category's share of a split-slot pre-allocation.
type categoryAllocation struct {
	Category model.Category
	Fraction float64
}

// orderedSplit returns split with the largest share first (name as
// tie-break), so the dominant category fills its slots before smaller
// shares compete for the remaining budget, and repeated Select calls
// allocate slots identically.
func orderedSplit(split map[model.Category]float64) []categoryAllocation {
	out := make([]categoryAllocation, 0, len(split))
	for k, f := range split {
		out = append(out, categoryAllocation{Category: k, Fraction: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fraction != out[j].Fraction {
			return out[i].Fraction > out[j].Fraction
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func rationaleForEmpty(all, filtered []Candidate, policy Policy) string {
	if len(all) == 0 {
		return "no affected methods"
	}
	if len(filtered) == 0 {
		return "no tests passed category/tag/flakiness filters"
	}
	return "no tests met the minimum score or duration budget"
}

func passesFilters(t model.TestRecord, opts Options) bool {
	if t.IsFlaky && !opts.IncludeFlaky {
		return false
	}
	if len(opts.IncludedCategories) > 0 {
		if _, ok := opts.IncludedCategories[t.Category]; !ok {
			return false
		}
	}
	if _, excluded := opts.ExcludedCategories[t.Category]; excluded {
		return false
	}
	for tag := range opts.RequiredTags {
		if !t.HasTag(tag) {
			return false
		}
	}
	for tag := range opts.ExcludedTags {
		if t.HasTag(tag) {
			return false
		}
	}
	return true
}

func resolvePolicy(opts Options) Policy {
	if opts.PolicyOverride != nil {
		return *opts.PolicyOverride
	}
	level := opts.Level
	if level == "" {
		level = Medium
	}
	return DefaultPolicies()[level]
}

func finishPlan(tests []model.TestRecord, opts Options, policy Policy, rationale string) model.ExecutionPlan {
	parallelism := opts.MaxParallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	batches := batchLPT(tests, parallelism)

	var total time.Duration
	for _, t := range tests {
		total += t.AvgExecution
	}

	return model.ExecutionPlan{
		Tests:             tests,
		Batches:           batches,
		EstimatedDuration: total,
		ConfidenceLevel:   string(opts.Level),
		Rationale:         rationale,
	}
}

// batchLPT partitions tests into min(maxParallelism, len(tests)) batches of
// roughly equal total duration using greedy longest-processing-time-first
// fill: place each test, slowest first, into the currently lightest batch.
func batchLPT(tests []model.TestRecord, maxParallelism int) [][]model.TestRecord {
	if len(tests) == 0 {
		return nil
	}
	p := maxParallelism
	if p > len(tests) {
		p = len(tests)
	}
	if p < 1 {
		p = 1
	}

	ordered := make([]model.TestRecord, len(tests))
	copy(ordered, tests)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].AvgExecution != ordered[j].AvgExecution {
			return ordered[i].AvgExecution > ordered[j].AvgExecution
		}
		return ordered[i].ID < ordered[j].ID
	})

	batches := make([][]model.TestRecord, p)
	totals := make([]time.Duration, p)
	for _, t := range ordered {
		min := 0
		for i := 1; i < p; i++ {
			if totals[i] < totals[min] {
				min = i
			}
		}
		batches[min] = append(batches[min], t)
		totals[min] += t.AvgExecution
	}
	return batches
}
