package csharp

import sitter "github.com/smacker/go-tree-sitter"

// CallInfo represents a parsed C# invocation_expression.
type CallInfo struct {
	FunctionName string   // "Add", "Println"
	ObjectName   string   // "calc", "Console" for obj.Method()/Type.Method(), "" for bare calls
	Arguments    []string // argument source snippets
	IsMemberCall bool     // true for obj.Method()/pkg.Func(), false for bare Foo()
	LineNumber   uint32
	StartByte    uint32
	EndByte      uint32
}

// ParseInvocationExpression parses a C# invocation_expression node into a CallInfo.
//
// Handles bare calls (Foo()), member calls (calc.Add(1,2)), and static calls
// (Console.WriteLine(...)) — both are member_access_expression at the grammar
// level and are disambiguated later during resolution via the using-directive
// and type registries, not here.
func ParseInvocationExpression(node *sitter.Node, sourceCode []byte) *CallInfo {
	if node == nil || node.Type() != "invocation_expression" {
		return nil
	}

	info := &CallInfo{
		LineNumber: node.StartPoint().Row + 1,
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
	}

	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return nil
	}

	switch funcNode.Type() {
	case "identifier", "generic_name":
		info.FunctionName = baseIdentifier(funcNode, sourceCode)
		info.IsMemberCall = false

	case "member_access_expression":
		obj, member := parseMemberAccess(funcNode, sourceCode)
		info.ObjectName = obj
		info.FunctionName = member
		info.IsMemberCall = true

	default:
		info.FunctionName = funcNode.Content(sourceCode)
	}

	argsNode := node.ChildByFieldName("arguments")
	if argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			info.Arguments = append(info.Arguments, argsNode.NamedChild(i).Content(sourceCode))
		}
	}

	return info
}

// parseMemberAccess extracts (object, member) from a member_access_expression.
// "response.Content.ReadAsStringAsync" → object="response.Content", member="ReadAsStringAsync".
func parseMemberAccess(node *sitter.Node, sourceCode []byte) (object, member string) {
	exprNode := node.ChildByFieldName("expression")
	nameNode := node.ChildByFieldName("name")

	if exprNode != nil {
		object = exprNode.Content(sourceCode)
	}
	if nameNode != nil {
		member = baseIdentifier(nameNode, sourceCode)
	}
	return object, member
}

// baseIdentifier strips a generic_name's type argument list, returning just
// the method/type name: "Foo<int>" → "Foo".
func baseIdentifier(node *sitter.Node, sourceCode []byte) string {
	if node.Type() == "generic_name" {
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			return nameNode.Content(sourceCode)
		}
	}
	return node.Content(sourceCode)
}
