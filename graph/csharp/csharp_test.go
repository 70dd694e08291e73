package csharp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTypeSpelling(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"int", "Int32"},
		{"Int32", "Int32"},
		{"string", "String"},
		{"List<int>", "List<Int32>"},
		{"List< int >", "List<Int32>"},
		{"Dictionary<string,\n    int>", "Dictionary<String,Int32>"},
		{"int[ ]", "Int32[]"},
		{"MyIntValue", "MyIntValue"},
		{"float", "Single"},
		{"CustomType", "CustomType"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeTypeSpelling(tt.in), "input %q", tt.in)
	}
}

func TestStripAttributeSuffix(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Test", "Test"},
		{"TestAttribute", "Test"},
		{"TestCaseAttribute", "TestCase"},
		// Bare "Attribute" is a legal (if odd) attribute name, not a suffix.
		{"Attribute", "Attribute"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripAttributeSuffix(tt.in), "input %q", tt.in)
	}
}

func TestSyntheticLambdaName(t *testing.T) {
	assert.Equal(t, "$lambda_1", SyntheticLambdaName(1))
	assert.Equal(t, "$lambda_12", SyntheticLambdaName(12))
}

func TestParamTypeList(t *testing.T) {
	p := Params{Names: []string{"a", "b"}, Types: []string{"int", "List< string >"}}
	assert.Equal(t, []string{"Int32", "List<String>"}, p.ParamTypeList())
}
