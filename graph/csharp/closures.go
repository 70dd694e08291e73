package csharp

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// LambdaInfo describes an anonymous function body (lambda_expression or
// anonymous_method_expression) that needs a synthetic MethodID.
type LambdaInfo struct {
	Params     Params
	LineNumber uint32
	StartByte  uint32
	EndByte    uint32
}

// ParseLambdaExpression extracts parameter info from a lambda_expression node,
// e.g. "(x, y) => x + y" or "x => x * 2".
func ParseLambdaExpression(node *sitter.Node, sourceCode []byte) *LambdaInfo {
	info := &LambdaInfo{
		LineNumber: node.StartPoint().Row + 1,
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
	}

	params := node.ChildByFieldName("parameters")
	if params != nil && params.Type() == "parameter_list" {
		info.Params = ExtractParameters(params, sourceCode)
		return info
	}
	// Single implicit parameter: "x => ...".
	if params != nil {
		info.Params = Params{Names: []string{params.Content(sourceCode)}, Types: []string{"object"}}
	}
	return info
}

// SyntheticLambdaName builds the "$lambda_N" segment appended to the
// enclosing method's MethodID for the Nth lambda found within it, matching
// the glossary's λ_n naming in a filesystem/identifier-safe spelling.
func SyntheticLambdaName(ordinal int) string {
	return fmt.Sprintf("$lambda_%d", ordinal)
}

// LocalFunctionInfo describes a C# local function declared inside a method body.
type LocalFunctionInfo struct {
	Name       string
	Params     Params
	LineNumber uint32
}

// ParseLocalFunctionStatement extracts info from a local_function_statement node.
func ParseLocalFunctionStatement(node *sitter.Node, sourceCode []byte) *LocalFunctionInfo {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(sourceCode)
	}
	params := node.ChildByFieldName("parameters")
	return &LocalFunctionInfo{
		Name:       name,
		Params:     ExtractParameters(params, sourceCode),
		LineNumber: node.StartPoint().Row + 1,
	}
}
