package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/impactsel/engine/methodid"
)

func TestLineRangeOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     LineRange
		expected bool
	}{
		{name: "identical", a: LineRange{1, 5}, b: LineRange{1, 5}, expected: true},
		{name: "partial overlap", a: LineRange{1, 5}, b: LineRange{5, 9}, expected: true},
		{name: "contained", a: LineRange{1, 10}, b: LineRange{3, 4}, expected: true},
		{name: "disjoint before", a: LineRange{1, 4}, b: LineRange{5, 9}, expected: false},
		{name: "disjoint after", a: LineRange{10, 12}, b: LineRange{5, 9}, expected: false},
		{name: "single line", a: LineRange{7, 7}, b: LineRange{7, 7}, expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a))
		})
	}
}

func TestChangeSetAffectedMethods(t *testing.T) {
	add := methodid.MethodID("Calc.Calculator.Add(Int32,Int32)")
	mul := methodid.MethodID("Calc.Calculator.Multiply(Int32,Int32)")
	cs := ChangeSet{Changes: []CodeChange{
		{ChangedMethods: map[methodid.MethodID]struct{}{add: {}}},
		{ChangedMethods: map[methodid.MethodID]struct{}{add: {}, mul: {}}},
	}}

	affected := cs.AffectedMethods()
	assert.Len(t, affected, 2)
	assert.Contains(t, affected, add)
	assert.Contains(t, affected, mul)
}

func TestRecordHelpers(t *testing.T) {
	rec := MethodRecord{Attributes: map[string]struct{}{"Test": {}}}
	assert.True(t, rec.HasAttribute("Test"))
	assert.False(t, rec.HasAttribute("Fact"))

	test := TestRecord{
		MethodRecord: rec,
		Tags:         map[string]struct{}{"smoke": {}},
		AvgExecution: 20 * time.Millisecond,
	}
	assert.True(t, test.HasTag("smoke"))
	assert.False(t, test.HasTag("slow"))
}
