package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodesOfType(cg *CodeGraph, nodeType string) []*Node {
	var out []*Node
	for _, n := range cg.Nodes {
		if n.Type == nodeType {
			out = append(out, n)
		}
	}
	return out
}

func findNode(cg *CodeGraph, nodeType, name string) *Node {
	for _, n := range cg.Nodes {
		if n.Type == nodeType && n.Name == name {
			return n
		}
	}
	return nil
}

func TestInitialize_CalcFixture(t *testing.T) {
	cg, warnings, err := Initialize(context.Background(), "../test-fixtures/csharp/calc_project", nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Both files parsed into one graph.
	classes := nodesOfType(cg, "class_declaration")
	require.Len(t, classes, 2)

	add := findNode(cg, "method_declaration", "Add")
	require.NotNil(t, add)
	assert.Equal(t, "Calc", add.Namespace)
	assert.Equal(t, "Calculator", add.DeclaringType)
	assert.Equal(t, []string{"Int32", "Int32"}, add.ParamTypes)
	assert.Greater(t, add.EndLineNumber, add.LineNumber)

	// The [Test] attribute survives extraction.
	addTest := findNode(cg, "method_declaration", "AddReturnsSum")
	require.NotNil(t, addTest)
	assert.Contains(t, addTest.Attributes, "Test")
	assert.Equal(t, "Calc.Tests", addTest.Namespace)

	setUp := findNode(cg, "method_declaration", "Init")
	require.NotNil(t, setUp)
	assert.Contains(t, setUp.Attributes, "SetUp")

	// The lambda in Sum gets a synthetic node parented to Sum.
	lambdas := nodesOfType(cg, "lambda_expression")
	require.Len(t, lambdas, 1)
	sum := findNode(cg, "method_declaration", "Sum")
	require.NotNil(t, sum)
	assert.Equal(t, sum.ID, cg.ParentOf[lambdas[0].ID])
}

func TestInitialize_ShapesFixture(t *testing.T) {
	cg, warnings, err := Initialize(context.Background(), "../test-fixtures/csharp/shapes_project", nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	iface := findNode(cg, "interface_declaration", "IShape")
	require.NotNil(t, iface)

	circle := findNode(cg, "class_declaration", "Circle")
	require.NotNil(t, circle)
	assert.Equal(t, []string{"IShape"}, circle.BaseTypes)

	// Nested type is flagged and keeps its enclosing type on the stack.
	corner := findNode(cg, "class_declaration", "Corner")
	require.NotNil(t, corner)
	assert.True(t, corner.IsNestedType)
	assert.Equal(t, "Square", corner.DeclaringType)

	angle := findNode(cg, "method_declaration", "Angle")
	require.NotNil(t, angle)
	assert.Equal(t, "Square+Corner", angle.DeclaringType)

	// shape.Area() is captured as an invocation with its receiver.
	var areaCall *Node
	for _, n := range nodesOfType(cg, "invocation_expression") {
		if n.CallTargetName == "Area" {
			areaCall = n
		}
	}
	require.NotNil(t, areaCall)
	assert.Equal(t, "shape", areaCall.CallObjectName)
}

func TestInitialize_MissingDirectory(t *testing.T) {
	_, _, err := Initialize(context.Background(), "../test-fixtures/csharp/nonexistent", nil)
	assert.Error(t, err)
}

func TestParseFiles_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ParseFiles(ctx, []string{"../test-fixtures/csharp/calc_project/Calculator.cs"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFiles_MissingFileIsWarning(t *testing.T) {
	cg, warnings, err := ParseFiles(context.Background(), []string{
		"../test-fixtures/csharp/calc_project/Calculator.cs",
		"../test-fixtures/csharp/calc_project/DoesNotExist.cs",
	}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].File, "DoesNotExist.cs")
	// The good file still contributes nodes.
	assert.NotNil(t, findNode(cg, "method_declaration", "Add"))
}

func TestParseFiles_ProgressSamples(t *testing.T) {
	progress := make(chan ProgressSample, 16)
	_, _, err := ParseFiles(context.Background(), []string{
		"../test-fixtures/csharp/calc_project/Calculator.cs",
		"../test-fixtures/csharp/calc_project/CalculatorTests.cs",
	}, progress)
	require.NoError(t, err)
	close(progress)

	var last ProgressSample
	count := 0
	for s := range progress {
		last = s
		count++
	}
	require.Greater(t, count, 0)
	assert.Equal(t, 2, last.Total)
	assert.Equal(t, 2, last.Done)
}
