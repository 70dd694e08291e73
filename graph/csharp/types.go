// Package csharp extracts structural information from C# tree-sitter nodes.
//
// Each exported Parse/Extract function takes a *sitter.Node of a known grammar
// type and the backing source bytes, and returns a small value struct. Callers
// (graph/parser_csharp.go) are responsible for turning those structs into
// graph.Node entries and wiring them into a CodeGraph.
package csharp

import sitter "github.com/smacker/go-tree-sitter"

// Params holds extracted C# parameter information.
type Params struct {
	Names []string // parameter names, e.g. ["id", "name"]
	Types []string // raw type spellings as written, e.g. ["int", "string"]
}

// ExtractParameters extracts parameter names and types from a parameter_list node.
//
//	void Add(int a, int b) → Names=["a","b"], Types=["int","int"]
func ExtractParameters(paramList *sitter.Node, sourceCode []byte) Params {
	result := Params{}
	if paramList == nil {
		return result
	}

	for i := 0; i < int(paramList.NamedChildCount()); i++ {
		param := paramList.NamedChild(i)
		if param.Type() != "parameter" {
			continue
		}

		nameNode := param.ChildByFieldName("name")
		typeNode := param.ChildByFieldName("type")

		name := ""
		if nameNode != nil {
			name = nameNode.Content(sourceCode)
		}
		paramType := ""
		if typeNode != nil {
			paramType = typeNode.Content(sourceCode)
		}

		result.Names = append(result.Names, name)
		if paramType != "" {
			result.Types = append(result.Types, paramType)
		} else {
			result.Types = append(result.Types, "object")
		}
	}

	return result
}

// ParamTypeList returns just the ordered parameter type list, used to build
// the disambiguating "(ParamType,...)" suffix of a MethodID.
func (p Params) ParamTypeList() []string {
	out := make([]string, len(p.Types))
	for i, t := range p.Types {
		out[i] = normalizeTypeSpelling(t)
	}
	return out
}

// clrNames maps C# keyword type aliases to the CLR simple names MethodIDs
// are spelled with: "Add(int, int)" identifies as "Add(Int32,Int32)".
var clrNames = map[string]string{
	"bool":    "Boolean",
	"byte":    "Byte",
	"sbyte":   "SByte",
	"char":    "Char",
	"decimal": "Decimal",
	"double":  "Double",
	"float":   "Single",
	"int":     "Int32",
	"uint":    "UInt32",
	"long":    "Int64",
	"ulong":   "UInt64",
	"short":   "Int16",
	"ushort":  "UInt16",
	"string":  "String",
	"object":  "Object",
}

// normalizeTypeSpelling strips whitespace variance and rewrites keyword type
// aliases to their CLR names, so "List< int >" and "List<Int32>" canonicalize
// to the same string. Alias rewriting respects identifier boundaries:
// "internal" never becomes "internalernal".
func normalizeTypeSpelling(t string) string {
	compact := make([]byte, 0, len(t))
	for i := 0; i < len(t); i++ {
		c := t[i]
		if c == ' ' || c == '\t' || c == '\n' {
			continue
		}
		compact = append(compact, c)
	}

	var out []byte
	for i := 0; i < len(compact); {
		if !isIdentByte(compact[i]) {
			out = append(out, compact[i])
			i++
			continue
		}
		j := i
		for j < len(compact) && isIdentByte(compact[j]) {
			j++
		}
		word := string(compact[i:j])
		if clr, ok := clrNames[word]; ok {
			out = append(out, clr...)
		} else {
			out = append(out, word...)
		}
		i = j
	}
	return string(out)
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ExtractReturnType extracts the return type string from a method_declaration's
// "returns" field, or "void" if absent (constructors have no returns field).
func ExtractReturnType(returnsNode *sitter.Node, sourceCode []byte) string {
	if returnsNode == nil {
		return "void"
	}
	return returnsNode.Content(sourceCode)
}

// ExtractTypeParameters extracts generic type parameter names from a
// type_parameter_list node, e.g. "<T, TResult>" → ["T", "TResult"].
func ExtractTypeParameters(typeParamList *sitter.Node, sourceCode []byte) []string {
	var names []string
	if typeParamList == nil {
		return names
	}
	for i := 0; i < int(typeParamList.NamedChildCount()); i++ {
		child := typeParamList.NamedChild(i)
		if child.Type() == "type_parameter" {
			nameNode := child.ChildByFieldName("name")
			if nameNode != nil {
				names = append(names, nameNode.Content(sourceCode))
			}
		}
	}
	return names
}

// DetermineVisibility inspects a modifiers node (or nil) and returns the C#
// access modifier present, defaulting to "private" (C# class member default)
// per the language spec — unlike Go, visibility is not name-derived.
func DetermineVisibility(modifiers *sitter.Node, sourceCode []byte) string {
	if modifiers == nil {
		return "private"
	}
	for i := 0; i < int(modifiers.NamedChildCount()); i++ {
		switch modifiers.NamedChild(i).Content(sourceCode) {
		case "public":
			return "public"
		case "internal":
			return "internal"
		case "protected":
			return "protected"
		case "private":
			return "private"
		}
	}
	return "private"
}

// IsStatic reports whether a modifiers node contains the "static" keyword.
func IsStatic(modifiers *sitter.Node, sourceCode []byte) bool {
	if modifiers == nil {
		return false
	}
	for i := 0; i < int(modifiers.NamedChildCount()); i++ {
		if modifiers.NamedChild(i).Content(sourceCode) == "static" {
			return true
		}
	}
	return false
}
