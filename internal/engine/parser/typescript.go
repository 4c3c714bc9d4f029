package parser

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"declmap/internal/decl"
)

// TypeScriptExtractor builds declaration trees from TypeScript and JavaScript
// sources. The two grammars name their declaration-bearing nodes the same
// way, so one extractor serves both; JavaScript simply never produces type
// aliases or interfaces. Neither language has package syntax, so the package
// name is left empty and derived from the directory by the parser.
type TypeScriptExtractor struct {
	Language string
}

var tsClassKinds = []string{
	"class_declaration",
	"abstract_class_declaration",
	"interface_declaration",
	"enum_declaration",
}

func (e *TypeScriptExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*decl.File, error) {
	file := &decl.File{
		Path:     filePath,
		Language: e.Language,
		ParsedAt: time.Now(),
	}
	ctx := &ExtractionContext{Source: source, File: file}

	engine := NewExtractorEngine(map[string]NodeHandler{
		"class_declaration":          e.extractTopClass,
		"abstract_class_declaration": e.extractTopClass,
		"interface_declaration":      e.extractTopClass,
		"enum_declaration":           e.extractTopClass,
		"type_alias_declaration":     e.extractAlias,
		"function_declaration":       e.extractFunction,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *TypeScriptExtractor) extractTopClass(ctx *ExtractionContext, node *sitter.Node) bool {
	if class := e.extractClass(ctx, node, false); class != nil {
		ctx.File.Decls = append(ctx.File.Decls, class)
	}
	return true
}

func (e *TypeScriptExtractor) extractAlias(ctx *ExtractionContext, node *sitter.Node) bool {
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
}

func (e *TypeScriptExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.ChildText(node, "identifier")
	if name == "" {
		return true
	}
	ctx.File.Decls = append(ctx.File.Decls, &decl.SimpleFunction{
		Name: name,
		Symbol: &decl.CallableSymbol{
			Name:      name,
			Kind:      decl.KindFunction,
			Signature: ctx.ChildText(node, "formal_parameters"),
		},
		Loc: ctx.Location(node),
	})
	e.extractLocalClasses(ctx, ctx.ChildByKind(node, "statement_block"))
	return true
}

func (e *TypeScriptExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, local bool) *decl.Class {
	// TypeScript names classes with type_identifier, JavaScript with identifier.
	name := ctx.Text(ctx.ChildByKind(node, "type_identifier", "identifier"))
	if name == "" {
		return nil
	}
	class := &decl.Class{
		Name:   name,
		Symbol: &decl.ClassSymbol{Name: name},
		Local:  local,
		Loc:    ctx.Location(node),
	}
	body := ctx.ChildByKind(node, "class_body", "interface_body", "object_type", "enum_body")
	if body == nil {
		return class
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		e.extractMember(ctx, class, body.Child(i))
	}
	return class
}

func (e *TypeScriptExtractor) extractMember(ctx *ExtractionContext, class *decl.Class, node *sitter.Node) {
	switch node.Kind() {
	case "method_definition", "method_signature":
		name := ctx.Text(ctx.ChildByKind(node, "property_identifier", "identifier"))
		if name == "" {
			return
		}
		loc := ctx.Location(node)
		signature := ctx.ChildText(node, "formal_parameters")
		if name == "constructor" {
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
		e.extractLocalClasses(ctx, ctx.ChildByKind(node, "statement_block"))

	case "public_field_definition", "field_definition", "property_signature":
		name := ctx.Text(ctx.ChildByKind(node, "property_identifier", "identifier"))
		if name == "" {
			return
		}
		class.Members = append(class.Members, &decl.Property{
			Name: name,
			Symbol: &decl.CallableSymbol{
				Name: name,
				Kind: decl.KindProperty,
			},
			Loc: ctx.Location(node),
		})

	case "enum_assignment":
		e.extractEnumEntry(ctx, class, ctx.ChildByKind(node, "property_identifier", "identifier"))

	case "property_identifier":
		// Plain enum members appear as bare names inside enum_body.
		e.extractEnumEntry(ctx, class, node)

	case "class_declaration", "abstract_class_declaration", "interface_declaration", "enum_declaration":
		if nested := e.extractClass(ctx, node, false); nested != nil {
			class.Members = append(class.Members, nested)
		}
	}
}

func (e *TypeScriptExtractor) extractEnumEntry(ctx *ExtractionContext, class *decl.Class, node *sitter.Node) {
	name := ctx.Text(node)
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
}

func (e *TypeScriptExtractor) extractLocalClasses(ctx *ExtractionContext, body *sitter.Node) {
	if body == nil {
		return
	}
	for _, node := range ctx.CollectByKind(body, tsClassKinds...) {
		if class := e.extractClass(ctx, node, true); class != nil {
			ctx.File.Decls = append(ctx.File.Decls, class)
		}
	}
}
