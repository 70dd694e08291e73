package csharp

import sitter "github.com/smacker/go-tree-sitter"

// AttributeInfo describes a single parsed C# attribute, e.g. [TestCase(1, 2)].
type AttributeInfo struct {
	Name      string   // attribute name without brackets, e.g. "Test", "TestCase"
	Arguments []string // raw argument expressions, e.g. ["1", "2"]
}

// ExtractAttributes returns every attribute attached to a declaration node,
// in source order.
//
// C# attributes are written as attribute_lists immediately before the member
// they annotate:
//
//	[Test]
//	[Category("unit")]
//	public void AddReturnsSum() { ... }
//
// declNode must be the method/class node itself. Both its own attribute_list
// children (where tree-sitter-c-sharp places them) and any attribute_list
// siblings immediately preceding it are collected.
func ExtractAttributes(declNode *sitter.Node, sourceCode []byte) []AttributeInfo {
	var attrs []AttributeInfo
	if declNode == nil {
		return attrs
	}

	sibling := declNode.PrevSibling()
	var lists []*sitter.Node
	for sibling != nil && sibling.Type() == "attribute_list" {
		lists = append(lists, sibling)
		sibling = sibling.PrevSibling()
	}

	// Reverse to preserve source order (we walked backwards).
	for i := len(lists) - 1; i >= 0; i-- {
		attrs = append(attrs, parseAttributeList(lists[i], sourceCode)...)
	}

	for i := 0; i < int(declNode.NamedChildCount()); i++ {
		if child := declNode.NamedChild(i); child.Type() == "attribute_list" {
			attrs = append(attrs, parseAttributeList(child, sourceCode)...)
		}
	}
	return attrs
}

func parseAttributeList(listNode *sitter.Node, sourceCode []byte) []AttributeInfo {
	var attrs []AttributeInfo
	for i := 0; i < int(listNode.NamedChildCount()); i++ {
		child := listNode.NamedChild(i)
		if child.Type() != "attribute" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		name := ""
		if nameNode != nil {
			name = nameNode.Content(sourceCode)
		}
		info := AttributeInfo{Name: stripAttributeSuffix(name)}

		argsNode := child.ChildByFieldName("arg_list")
		if argsNode != nil {
			for j := 0; j < int(argsNode.NamedChildCount()); j++ {
				arg := argsNode.NamedChild(j)
				info.Arguments = append(info.Arguments, arg.Content(sourceCode))
			}
		}
		attrs = append(attrs, info)
	}
	return attrs
}

// stripAttributeSuffix normalizes "TestAttribute" to "Test" so that both
// spellings match the same recognized-name table (C# allows omitting the
// "Attribute" suffix at use sites).
func stripAttributeSuffix(name string) string {
	const suffix = "Attribute"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return name
}

// AttributeNames returns just the (suffix-stripped) names from a slice of
// AttributeInfo, for cheap membership checks against a recognized-name set.
func AttributeNames(attrs []AttributeInfo) []string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return names
}
