package csharp

import sitter "github.com/smacker/go-tree-sitter"

// MethodInfo holds extracted information from a C# method_declaration node.
type MethodInfo struct {
	Name           string
	Params         Params
	TypeParams     []string // generic method type parameters, e.g. ["T"]
	ReturnType     string
	Visibility     string
	IsStatic       bool
	Attributes     []AttributeInfo
	LineNumber     uint32
	EndLineNumber  uint32
	StartByte      uint32
	EndByte        uint32
}

// ParseMethodDeclaration extracts method information from a method_declaration node.
//
//	[Test]
//	public void AddReturnsSum() { ... }
func ParseMethodDeclaration(node *sitter.Node, sourceCode []byte) *MethodInfo {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(sourceCode)
	}

	modifiers := node.ChildByFieldName("modifiers")
	paramList := node.ChildByFieldName("parameters")
	typeParamList := node.ChildByFieldName("type_parameters")
	returnsNode := node.ChildByFieldName("returns")

	return &MethodInfo{
		Name:       name,
		Params:     ExtractParameters(paramList, sourceCode),
		TypeParams: ExtractTypeParameters(typeParamList, sourceCode),
		ReturnType: ExtractReturnType(returnsNode, sourceCode),
		Visibility: DetermineVisibility(modifiers, sourceCode),
		IsStatic:   IsStatic(modifiers, sourceCode),
		Attributes:    ExtractAttributes(node, sourceCode),
		LineNumber:    node.StartPoint().Row + 1,
		EndLineNumber: node.EndPoint().Row + 1,
		StartByte:     node.StartByte(),
		EndByte:       node.EndByte(),
	}
}

// ConstructorInfo holds extracted information from a constructor_declaration node.
type ConstructorInfo struct {
	Name          string // the declaring type's name (constructors are named after their type)
	Params        Params
	Visibility    string
	LineNumber    uint32
	EndLineNumber uint32
	StartByte     uint32
	EndByte       uint32
}

// ParseConstructorDeclaration extracts info from a constructor_declaration node.
func ParseConstructorDeclaration(node *sitter.Node, sourceCode []byte) *ConstructorInfo {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(sourceCode)
	}
	modifiers := node.ChildByFieldName("modifiers")
	paramList := node.ChildByFieldName("parameters")

	return &ConstructorInfo{
		Name:       name,
		Params:     ExtractParameters(paramList, sourceCode),
		Visibility:    DetermineVisibility(modifiers, sourceCode),
		LineNumber:    node.StartPoint().Row + 1,
		EndLineNumber: node.EndPoint().Row + 1,
		StartByte:     node.StartByte(),
		EndByte:       node.EndByte(),
	}
}

// TypeInfo holds extracted information from a class/struct/interface/record
// declaration.
type TypeInfo struct {
	Name       string
	Kind       string // "class", "struct", "interface", "record"
	BaseTypes  []string
	Attributes []AttributeInfo
	Nested     bool // true when declared inside another type (joined by "+" in the MethodID)
	LineNumber uint32
}

// ParseTypeDeclaration extracts type information from a class_declaration,
// struct_declaration, interface_declaration, or record_declaration node.
func ParseTypeDeclaration(node *sitter.Node, sourceCode []byte) *TypeInfo {
	kind := declarationKind(node.Type())

	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(sourceCode)
	}

	basesNode := node.ChildByFieldName("bases")
	if basesNode == nil {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if c := node.NamedChild(i); c.Type() == "base_list" {
				basesNode = c
				break
			}
		}
	}
	var bases []string
	if basesNode != nil {
		for i := 0; i < int(basesNode.NamedChildCount()); i++ {
			bases = append(bases, basesNode.NamedChild(i).Content(sourceCode))
		}
	}

	return &TypeInfo{
		Name:       name,
		Kind:       kind,
		BaseTypes:  bases,
		Attributes: ExtractAttributes(node, sourceCode),
		Nested:     isNestedType(node),
		LineNumber: node.StartPoint().Row + 1,
	}
}

func declarationKind(nodeType string) string {
	switch nodeType {
	case "class_declaration":
		return "class"
	case "struct_declaration":
		return "struct"
	case "interface_declaration":
		return "interface"
	case "record_declaration":
		return "record"
	default:
		return nodeType
	}
}

// isNestedType reports whether a type declaration's nearest declaration
// ancestor is itself a type (as opposed to a namespace or the compilation
// unit), which determines whether its MethodID segment is joined with "+".
func isNestedType(node *sitter.Node) bool {
	parent := node.Parent()
	for parent != nil {
		switch parent.Type() {
		case "class_declaration", "struct_declaration", "interface_declaration", "record_declaration":
			return true
		case "namespace_declaration", "compilation_unit", "file_scoped_namespace_declaration":
			return false
		}
		parent = parent.Parent()
	}
	return false
}
