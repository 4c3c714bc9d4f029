package parser

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"declmap/internal/decl"
)

// PythonExtractor builds declaration trees from Python sources. __init__
// maps to a constructor, other methods to functions, class-level assignments
// to properties. Classes defined inside function bodies are local.
type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*decl.File, error) {
	file := &decl.File{
		Path:     filePath,
		Language: "python",
		ParsedAt: time.Now(),
	}
	ctx := &ExtractionContext{Source: source, File: file}

	engine := NewExtractorEngine(map[string]NodeHandler{
		"class_definition":    e.extractTopClass,
		"function_definition": e.extractTopFunction,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *PythonExtractor) extractTopClass(ctx *ExtractionContext, node *sitter.Node) bool {
	if class := e.extractClass(ctx, node, false); class != nil {
		ctx.File.Decls = append(ctx.File.Decls, class)
	}
	return true
}

func (e *PythonExtractor) extractTopFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.ChildText(node, "identifier")
	if name == "" {
		return true
	}
	ctx.File.Decls = append(ctx.File.Decls, &decl.SimpleFunction{
		Name: name,
		Symbol: &decl.CallableSymbol{
			Name:      name,
			Kind:      decl.KindFunction,
			Signature: ctx.ChildText(node, "parameters"),
		},
		Loc: ctx.Location(node),
	})
	e.extractLocalClasses(ctx, ctx.ChildByKind(node, "block"))
	return true
}

func (e *PythonExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, local bool) *decl.Class {
	name := ctx.ChildText(node, "identifier")
	if name == "" {
		return nil
	}
	class := &decl.Class{
		Name:   name,
		Symbol: &decl.ClassSymbol{Name: name},
		Local:  local,
		Loc:    ctx.Location(node),
	}
	body := ctx.ChildByKind(node, "block")
	if body == nil {
		return class
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		e.extractMember(ctx, class, body.Child(i))
	}
	return class
}

func (e *PythonExtractor) extractMember(ctx *ExtractionContext, class *decl.Class, node *sitter.Node) {
	switch node.Kind() {
	case "decorated_definition":
		// Decorators wrap the definition node; index the definition itself.
		if inner := ctx.ChildByKind(node, "class_definition", "function_definition"); inner != nil {
			e.extractMember(ctx, class, inner)
		}

	case "class_definition":
		if nested := e.extractClass(ctx, node, false); nested != nil {
			class.Members = append(class.Members, nested)
		}

	case "function_definition":
		name := ctx.ChildText(node, "identifier")
		if name == "" {
			return
		}
		signature := ctx.ChildText(node, "parameters")
		loc := ctx.Location(node)
		if name == "__init__" {
			class.Members = append(class.Members, &decl.Constructor{
				Name: class.Name,
				Symbol: &decl.CallableSymbol{
					Name:      class.Name,
					Kind:      decl.KindConstructor,
					Signature: signature,
				},
				Loc: loc,
			})
		} else {
			class.Members = append(class.Members, &decl.SimpleFunction{
				Name: name,
				Symbol: &decl.CallableSymbol{
					Name:      name,
					Kind:      decl.KindFunction,
					Signature: signature,
				},
				Loc: loc,
			})
		}
		e.extractLocalClasses(ctx, ctx.ChildByKind(node, "block"))

	case "expression_statement":
		assignment := ctx.ChildByKind(node, "assignment")
		if assignment == nil {
			return
		}
		target := assignment.Child(0)
		if target == nil || target.Kind() != "identifier" {
			return
		}
		name := ctx.Text(target)
		class.Members = append(class.Members, &decl.Property{
			Name: name,
			Symbol: &decl.CallableSymbol{
				Name: name,
				Kind: decl.KindProperty,
			},
			Loc: ctx.Location(assignment),
		})
	}
}

func (e *PythonExtractor) extractLocalClasses(ctx *ExtractionContext, body *sitter.Node) {
	if body == nil {
		return
	}
	for _, node := range ctx.CollectByKind(body, "class_definition") {
		if class := e.extractClass(ctx, node, true); class != nil {
			ctx.File.Decls = append(ctx.File.Decls, class)
		}
	}
}
