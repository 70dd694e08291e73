package graph

import (
	"github.com/impactsel/engine/graph/csharp"
	sitter "github.com/smacker/go-tree-sitter"
)

// walkContext carries the structural state threaded through the AST walk:
// the enclosing namespace, the stack of enclosing type names (for "+"-joined
// nested types), and the nearest enclosing method/lambda/local-function node
// that call and lambda nodes attach their containment edge to.
type walkContext struct {
	namespace      string
	typeStack      []string
	currentContext *Node
}

func (c walkContext) declaringType() string {
	joined := ""
	for i, t := range c.typeStack {
		if i > 0 {
			joined += "+"
		}
		joined += t
	}
	return joined
}

func (c walkContext) withType(name string) walkContext {
	next := c
	next.typeStack = append(append([]string{}, c.typeStack...), name)
	return next
}

func (c walkContext) withContext(n *Node) walkContext {
	next := c
	next.currentContext = n
	return next
}

// builderState holds the per-file mutable state the walk needs beyond the
// read-only walkContext: the graph being populated and a lambda counter
// scoped to each enclosing method, so synthetic lambda names stay stable
// across rebuilds of identical source.
type builderState struct {
	graph          *CodeGraph
	file           string
	sourceCode     []byte
	lambdaCounters map[string]int
}

// buildGraphFromAST walks a parsed C# file's AST and populates graph with a
// Node per declaration and call site, plus containment Edges: namespace to
// type, type to method, method to call/lambda/local-function.
func buildGraphFromAST(rootNode *sitter.Node, sourceCode []byte, graph *CodeGraph, file string) {
	b := &builderState{
		graph:          graph,
		file:           file,
		sourceCode:     sourceCode,
		lambdaCounters: make(map[string]int),
	}
	b.walk(rootNode, walkContext{})
}

func (b *builderState) walk(node *sitter.Node, ctx walkContext) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "namespace_declaration", "file_scoped_namespace_declaration":
		info := csharp.ParseNamespaceDeclaration(node, b.sourceCode)
		ctx.namespace = info.Name

	case "using_directive":
		info := csharp.ParseUsingDirective(node, b.sourceCode)
		id := GenerateNodeID("using", info.Namespace, b.file, node.StartByte(), node.EndByte())
		b.graph.AddNode(&Node{
			ID:         id,
			Type:       "using_directive",
			Name:       info.Namespace,
			Namespace:  ctx.namespace,
			File:       b.file,
			LineNumber: node.StartPoint().Row + 1,
			SourceLocation: &SourceLocation{
				File: b.file, StartByte: node.StartByte(), EndByte: node.EndByte(),
			},
		})
		return

	case "class_declaration", "struct_declaration", "interface_declaration", "record_declaration":
		info := csharp.ParseTypeDeclaration(node, b.sourceCode)
		id := GenerateNodeID("type", ctx.namespace+"."+ctx.declaringType()+"."+info.Name, b.file, node.StartByte(), node.EndByte())
		typeNode := &Node{
			ID:             id,
			Type:           node.Type(),
			Name:           info.Name,
			Namespace:      ctx.namespace,
			DeclaringType:  ctx.declaringType(),
			File:           b.file,
			LineNumber:     info.LineNumber,
			Attributes:     csharp.AttributeNames(info.Attributes),
			BaseTypes:      info.BaseTypes,
			IsNestedType:   info.Nested,
			SourceLocation: &SourceLocation{File: b.file, StartByte: node.StartByte(), EndByte: node.EndByte()},
		}
		b.graph.AddNode(typeNode)
		if ctx.currentContext != nil {
			b.graph.AddEdge(ctx.currentContext, typeNode)
		}

		childCtx := ctx.withType(info.Name).withContext(typeNode)
		b.walkChildren(node, childCtx)
		return

	case "method_declaration":
		info := csharp.ParseMethodDeclaration(node, b.sourceCode)
		id := GenerateNodeID("method", ctx.namespace+"."+ctx.declaringType()+"."+info.Name, b.file, node.StartByte(), node.EndByte())
		methodNode := &Node{
			ID:             id,
			Type:           "method_declaration",
			Name:           info.Name,
			Namespace:      ctx.namespace,
			DeclaringType:  ctx.declaringType(),
			File:           b.file,
			LineNumber:     info.LineNumber,
			EndLineNumber:  info.EndLineNumber,
			Visibility:     info.Visibility,
			IsStatic:       info.IsStatic,
			ReturnType:     info.ReturnType,
			ParamNames:     info.Params.Names,
			ParamTypes:     info.Params.ParamTypeList(),
			TypeParams:     info.TypeParams,
			Attributes:     csharp.AttributeNames(info.Attributes),
			SourceLocation: &SourceLocation{File: b.file, StartByte: info.StartByte, EndByte: info.EndByte},
		}
		b.graph.AddNode(methodNode)
		if ctx.currentContext != nil {
			b.graph.AddEdge(ctx.currentContext, methodNode)
		}

		b.walkChildren(node, ctx.withContext(methodNode))
		return

	case "constructor_declaration":
		info := csharp.ParseConstructorDeclaration(node, b.sourceCode)
		id := GenerateNodeID("ctor", ctx.namespace+"."+ctx.declaringType()+"."+info.Name, b.file, node.StartByte(), node.EndByte())
		ctorNode := &Node{
			ID:             id,
			Type:           "constructor_declaration",
			Name:           info.Name,
			Namespace:      ctx.namespace,
			DeclaringType:  ctx.declaringType(),
			File:           b.file,
			LineNumber:     info.LineNumber,
			EndLineNumber:  info.EndLineNumber,
			Visibility:     info.Visibility,
			ReturnType:     "void",
			ParamNames:     info.Params.Names,
			ParamTypes:     info.Params.ParamTypeList(),
			SourceLocation: &SourceLocation{File: b.file, StartByte: info.StartByte, EndByte: info.EndByte},
		}
		b.graph.AddNode(ctorNode)
		if ctx.currentContext != nil {
			b.graph.AddEdge(ctx.currentContext, ctorNode)
		}

		b.walkChildren(node, ctx.withContext(ctorNode))
		return

	case "local_function_statement":
		info := csharp.ParseLocalFunctionStatement(node, b.sourceCode)
		id := GenerateNodeID("localfunc", info.Name, b.file, node.StartByte(), node.EndByte())
		fnNode := &Node{
			ID:         id,
			Type:       "local_function_statement",
			Name:       info.Name,
			Namespace:  ctx.namespace,
			DeclaringType: ctx.declaringType(),
			File:       b.file,
			LineNumber: info.LineNumber,
			ParamNames: info.Params.Names,
			ParamTypes: info.Params.ParamTypeList(),
			SourceLocation: &SourceLocation{File: b.file, StartByte: node.StartByte(), EndByte: node.EndByte()},
		}
		b.graph.AddNode(fnNode)
		if ctx.currentContext != nil {
			b.graph.AddEdge(ctx.currentContext, fnNode)
		}

		b.walkChildren(node, ctx.withContext(fnNode))
		return

	case "lambda_expression", "anonymous_method_expression":
		info := csharp.ParseLambdaExpression(node, b.sourceCode)
		scopeKey := ""
		if ctx.currentContext != nil {
			scopeKey = ctx.currentContext.ID
		}
		b.lambdaCounters[scopeKey]++
		name := csharp.SyntheticLambdaName(b.lambdaCounters[scopeKey])

		id := GenerateNodeID("lambda", name, b.file, node.StartByte(), node.EndByte())
		lambdaNode := &Node{
			ID:         id,
			Type:       "lambda_expression",
			Name:       name,
			Namespace:  ctx.namespace,
			DeclaringType: ctx.declaringType(),
			File:       b.file,
			LineNumber: info.LineNumber,
			ParamNames: info.Params.Names,
			ParamTypes: info.Params.ParamTypeList(),
			SourceLocation: &SourceLocation{File: b.file, StartByte: info.StartByte, EndByte: info.EndByte},
		}
		b.graph.AddNode(lambdaNode)
		if ctx.currentContext != nil {
			b.graph.AddEdge(ctx.currentContext, lambdaNode)
		}

		b.walkChildren(node, ctx.withContext(lambdaNode))
		return

	case "invocation_expression":
		info := csharp.ParseInvocationExpression(node, b.sourceCode)
		if info != nil {
			id := GenerateNodeID("call", info.FunctionName, b.file, node.StartByte(), node.EndByte())
			callNode := &Node{
				ID:             id,
				Type:           "invocation_expression",
				Name:           info.FunctionName,
				File:           b.file,
				LineNumber:     info.LineNumber,
				CallTargetName: info.FunctionName,
				CallObjectName: info.ObjectName,
				SourceLocation: &SourceLocation{File: b.file, StartByte: info.StartByte, EndByte: info.EndByte},
			}
			b.graph.AddNode(callNode)
			if ctx.currentContext != nil {
				b.graph.AddEdge(ctx.currentContext, callNode)
			}
		}
		// Fall through to walk the invocation's arguments, which may
		// themselves contain nested invocations or lambdas.
	}

	b.walkChildren(node, ctx)
}

// walkChildren recurses into every named child with the given context.
func (b *builderState) walkChildren(node *sitter.Node, ctx walkContext) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		b.walk(node.NamedChild(i), ctx)
	}
}
