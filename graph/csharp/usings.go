package csharp

import sitter "github.com/smacker/go-tree-sitter"

// UsingInfo describes a single using directive.
type UsingInfo struct {
	Namespace string // "System.Collections.Generic"
	Alias     string // "Json" for "using Json = System.Text.Json;", empty otherwise
	IsStatic  bool   // "using static System.Math;"
}

// ParseUsingDirective extracts info from a using_directive node.
func ParseUsingDirective(node *sitter.Node, sourceCode []byte) *UsingInfo {
	info := &UsingInfo{}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Content(sourceCode) == "static" {
			info.IsStatic = true
		}
	}

	aliasNode := node.ChildByFieldName("alias")
	nameNode := node.ChildByFieldName("name")

	if aliasNode != nil {
		info.Alias = aliasNode.Content(sourceCode)
	}
	if nameNode != nil {
		info.Namespace = nameNode.Content(sourceCode)
	}
	return info
}

// NamespaceInfo describes a namespace_declaration or
// file_scoped_namespace_declaration.
type NamespaceInfo struct {
	Name string
}

// ParseNamespaceDeclaration extracts the namespace name.
func ParseNamespaceDeclaration(node *sitter.Node, sourceCode []byte) *NamespaceInfo {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(sourceCode)
	}
	return &NamespaceInfo{Name: name}
}
