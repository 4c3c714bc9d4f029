package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"declmap/internal/decl"
)

// RustExtractor builds declaration trees from Rust sources. Structs, enums
// and traits map to classes; impl blocks attach their functions to the class
// named by the implemented type, with the conventional `new` surfacing as a
// constructor. Types declared inside function bodies are local.
type RustExtractor struct{}

var rustClassKinds = []string{"struct_item", "enum_item", "trait_item"}

func (e *RustExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*decl.File, error) {
	file := &decl.File{
		Path:     filePath,
		Language: "rust",
		ParsedAt: time.Now(),
	}
	ctx := &ExtractionContext{Source: source, File: file}

	classes := make(map[string]*decl.Class)
	type pendingImpl struct {
		target string
		node   *sitter.Node
	}
	var impls []pendingImpl

	engine := NewExtractorEngine(map[string]NodeHandler{
		"struct_item": func(ctx *ExtractionContext, node *sitter.Node) bool {
			if class := e.extractClass(ctx, node, false); class != nil {
				ctx.File.Decls = append(ctx.File.Decls, class)
				classes[class.Name] = class
			}
			return true
		},
		"enum_item": func(ctx *ExtractionContext, node *sitter.Node) bool {
			if class := e.extractClass(ctx, node, false); class != nil {
				ctx.File.Decls = append(ctx.File.Decls, class)
				classes[class.Name] = class
			}
			return true
		},
		"trait_item": func(ctx *ExtractionContext, node *sitter.Node) bool {
			if class := e.extractClass(ctx, node, false); class != nil {
				ctx.File.Decls = append(ctx.File.Decls, class)
				classes[class.Name] = class
			}
			return true
		},
		"type_item": func(ctx *ExtractionContext, node *sitter.Node) bool {
			name := ctx.ChildText(node, "type_identifier")
			if name == "" {
				return true
			}
			ctx.File.Decls = append(ctx.File.Decls, &decl.TypeAlias{
				Name:   name,
				Symbol: &decl.ClassSymbol{Name: name},
				Loc:    ctx.Location(node),
			})
			return true
		},
		"function_item": func(ctx *ExtractionContext, node *sitter.Node) bool {
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
		},
		"impl_item": func(ctx *ExtractionContext, node *sitter.Node) bool {
			target := e.implTarget(ctx, node)
			if target != "" {
				impls = append(impls, pendingImpl{target: target, node: node})
			}
			return true
		},
	})
	engine.Walk(ctx, root)

	// Impl blocks may precede the type they implement, so attachment waits
	// until the whole file has been walked.
	for _, impl := range impls {
		class, ok := classes[impl.target]
		if !ok {
			continue
		}
		body := ctx.ChildByKind(impl.node, "declaration_list")
		if body == nil {
			continue
		}
		for i := uint(0); i < body.ChildCount(); i++ {
			e.extractImplMember(ctx, class, body.Child(i))
		}
	}

	return file, nil
}

func (e *RustExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, local bool) *decl.Class {
	name := ctx.ChildText(node, "type_identifier")
	if name == "" {
		return nil
	}
	class := &decl.Class{
		Name:   name,
		Symbol: &decl.ClassSymbol{Name: name},
		Local:  local,
		Loc:    ctx.Location(node),
	}

	switch node.Kind() {
	case "struct_item":
		if body := ctx.ChildByKind(node, "field_declaration_list"); body != nil {
			for _, field := range ctx.CollectByKind(body, "field_declaration") {
				fieldName := ctx.ChildText(field, "field_identifier")
				if fieldName == "" {
					continue
				}
				class.Members = append(class.Members, &decl.Property{
					Name: fieldName,
					Symbol: &decl.CallableSymbol{
						Name: fieldName,
						Kind: decl.KindProperty,
					},
					Loc: ctx.Location(field),
				})
			}
		}
	case "enum_item":
		if body := ctx.ChildByKind(node, "enum_variant_list"); body != nil {
			for _, variant := range ctx.CollectByKind(body, "enum_variant") {
				variantName := ctx.ChildText(variant, "identifier")
				if variantName == "" {
					continue
				}
				class.Members = append(class.Members, &decl.EnumEntry{
					Name: variantName,
					Symbol: &decl.CallableSymbol{
						Name: variantName,
						Kind: decl.KindEnumEntry,
					},
					Loc: ctx.Location(variant),
				})
			}
		}
	case "trait_item":
		if body := ctx.ChildByKind(node, "declaration_list"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				e.extractImplMember(ctx, class, body.Child(i))
			}
		}
	}

	return class
}

func (e *RustExtractor) extractImplMember(ctx *ExtractionContext, class *decl.Class, node *sitter.Node) {
	kind := node.Kind()
	if kind != "function_item" && kind != "function_signature_item" {
		return
	}
	name := ctx.ChildText(node, "identifier")
	if name == "" {
		return
	}
	signature := ctx.ChildText(node, "parameters")
	loc := ctx.Location(node)
	if name == "new" {
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
}

func (e *RustExtractor) extractLocalClasses(ctx *ExtractionContext, body *sitter.Node) {
	if body == nil {
		return
	}
	for _, node := range ctx.CollectByKind(body, rustClassKinds...) {
		if class := e.extractClass(ctx, node, true); class != nil {
			ctx.File.Decls = append(ctx.File.Decls, class)
		}
	}
}

// implTarget returns the simple name of the type an impl block targets,
// with any path qualifier and type arguments stripped.
func (e *RustExtractor) implTarget(ctx *ExtractionContext, node *sitter.Node) string {
	var target *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "type_identifier", "generic_type", "scoped_type_identifier":
			target = child
		case "declaration_list":
			// Past the header.
		}
	}
	if target == nil {
		return ""
	}
	text := ctx.Text(target)
	if i := strings.IndexByte(text, '<'); i >= 0 {
		text = text[:i]
	}
	if i := strings.LastIndex(text, "::"); i >= 0 {
		text = text[i+2:]
	}
	return text
}
