package parser

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"declmap/internal/decl"
)

// JavaExtractor builds declaration trees from Java sources. Classes,
// interfaces, enums, records and annotation types all map to class
// declarations; their bodies are extracted in one recursive pass so nesting
// survives intact. Classes declared inside method bodies come out as local.
type JavaExtractor struct{}

var javaClassKinds = []string{
	"class_declaration",
	"interface_declaration",
	"enum_declaration",
	"record_declaration",
	"annotation_type_declaration",
}

func (e *JavaExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*decl.File, error) {
	file := &decl.File{
		Path:     filePath,
		Language: "java",
		ParsedAt: time.Now(),
	}
	ctx := &ExtractionContext{Source: source, File: file}

	engine := NewExtractorEngine(map[string]NodeHandler{
		"package_declaration":         e.extractPackage,
		"class_declaration":           e.extractTopClass,
		"interface_declaration":       e.extractTopClass,
		"enum_declaration":            e.extractTopClass,
		"record_declaration":          e.extractTopClass,
		"annotation_type_declaration": e.extractTopClass,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *JavaExtractor) extractPackage(ctx *ExtractionContext, node *sitter.Node) bool {
	if name := ctx.ChildByKind(node, "scoped_identifier", "identifier"); name != nil {
		ctx.File.Package = ctx.Text(name)
	}
	return true
}

func (e *JavaExtractor) extractTopClass(ctx *ExtractionContext, node *sitter.Node) bool {
	if class := e.extractClass(ctx, node, false); class != nil {
		ctx.File.Decls = append(ctx.File.Decls, class)
	}
	return true
}

func (e *JavaExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, local bool) *decl.Class {
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
	body := ctx.ChildByKind(node,
		"class_body", "interface_body", "enum_body", "annotation_type_body")
	if body == nil {
		return class
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		e.extractMember(ctx, class, body.Child(i))
	}
	return class
}

func (e *JavaExtractor) extractMember(ctx *ExtractionContext, class *decl.Class, node *sitter.Node) {
	switch node.Kind() {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		if nested := e.extractClass(ctx, node, false); nested != nil {
			class.Members = append(class.Members, nested)
		}

	case "method_declaration":
		name := ctx.ChildText(node, "identifier")
		if name == "" {
			return
		}
		class.Members = append(class.Members, &decl.SimpleFunction{
			Name: name,
			Symbol: &decl.CallableSymbol{
				Name:      name,
				Kind:      decl.KindFunction,
				Signature: ctx.ChildText(node, "formal_parameters"),
			},
			Loc: ctx.Location(node),
		})
		e.extractLocalClasses(ctx, ctx.ChildByKind(node, "block"))

	case "constructor_declaration":
		class.Members = append(class.Members, &decl.Constructor{
			Name: class.Name,
			Symbol: &decl.CallableSymbol{
				Name:      class.Name,
				Kind:      decl.KindConstructor,
				Signature: ctx.ChildText(node, "formal_parameters"),
			},
			Loc: ctx.Location(node),
		})
		e.extractLocalClasses(ctx, ctx.ChildByKind(node, "constructor_body"))

	case "field_declaration":
		for _, declarator := range ctx.CollectByKind(node, "variable_declarator") {
			name := ctx.ChildText(declarator, "identifier")
			if name == "" {
				continue
			}
			class.Members = append(class.Members, &decl.Property{
				Name: name,
				Symbol: &decl.CallableSymbol{
					Name: name,
					Kind: decl.KindProperty,
				},
				Loc: ctx.Location(declarator),
			})
		}

	case "enum_constant":
		name := ctx.ChildText(node, "identifier")
		if name == "" {
			return
		}
		class.Members = append(class.Members, &decl.EnumEntry{
			Name: name,
			Symbol: &decl.CallableSymbol{
				Name: name,
				Kind: decl.KindEnumEntry,
			},
			Loc: ctx.Location(node),
		})

	case "enum_body_declarations":
		// Methods and fields of an enum live behind the constant list.
		for i := uint(0); i < node.ChildCount(); i++ {
			e.extractMember(ctx, class, node.Child(i))
		}
	}
}

// extractLocalClasses scans a method or constructor body for class
// declarations and surfaces them at the file level with the local flag set.
func (e *JavaExtractor) extractLocalClasses(ctx *ExtractionContext, body *sitter.Node) {
	if body == nil {
		return
	}
	for _, node := range ctx.CollectByKind(body, javaClassKinds...) {
		if class := e.extractClass(ctx, node, true); class != nil {
			ctx.File.Decls = append(ctx.File.Decls, class)
		}
	}
}
