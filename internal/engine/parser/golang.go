package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"declmap/internal/decl"
)

// GoExtractor builds declaration trees from Go sources. Struct and interface
// types map to classes, other type specs to aliases. Methods are attached to
// the class matching their receiver type when that type is declared in the
// same file; otherwise they surface as top-level functions.
type GoExtractor struct{}

func (e *GoExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*decl.File, error) {
	file := &decl.File{
		Path:     filePath,
		Language: "go",
		ParsedAt: time.Now(),
	}
	ctx := &ExtractionContext{Source: source, File: file}

	classes := make(map[string]*decl.Class)
	type pendingMethod struct {
		receiver string
		fn       *decl.SimpleFunction
	}
	var pending []pendingMethod

	engine := NewExtractorEngine(map[string]NodeHandler{
		"package_clause": func(ctx *ExtractionContext, node *sitter.Node) bool {
			if name := ctx.ChildText(node, "package_identifier"); name != "" {
				ctx.File.Package = name
			}
			return true
		},
		"type_declaration": func(ctx *ExtractionContext, node *sitter.Node) bool {
			for _, spec := range ctx.CollectByKind(node, "type_spec", "type_alias") {
				e.extractTypeSpec(ctx, classes, spec)
			}
			return true
		},
		"function_declaration": func(ctx *ExtractionContext, node *sitter.Node) bool {
			name := ctx.ChildText(node, "identifier")
			if name == "" {
				return true
			}
			ctx.File.Decls = append(ctx.File.Decls, &decl.SimpleFunction{
				Name: name,
				Symbol: &decl.CallableSymbol{
					Name:      name,
					Kind:      decl.KindFunction,
					Signature: ctx.ChildText(node, "parameter_list"),
				},
				Loc: ctx.Location(node),
			})
			return true
		},
		"method_declaration": func(ctx *ExtractionContext, node *sitter.Node) bool {
			name := ctx.ChildText(node, "field_identifier")
			if name == "" {
				return true
			}
			fn := &decl.SimpleFunction{
				Name: name,
				Symbol: &decl.CallableSymbol{
					Name:      name,
					Kind:      decl.KindFunction,
					Signature: e.methodSignature(ctx, node),
				},
				Loc: ctx.Location(node),
			}
			pending = append(pending, pendingMethod{receiver: e.receiverType(ctx, node), fn: fn})
			return true
		},
	})
	engine.Walk(ctx, root)

	// Methods may precede their receiver type in the file, so attachment
	// waits until every type spec has been seen.
	for _, pm := range pending {
		if class, ok := classes[pm.receiver]; ok {
			class.Members = append(class.Members, pm.fn)
			continue
		}
		file.Decls = append(file.Decls, pm.fn)
	}

	return file, nil
}

func (e *GoExtractor) extractTypeSpec(ctx *ExtractionContext, classes map[string]*decl.Class, spec *sitter.Node) {
	name := ctx.ChildText(spec, "type_identifier")
	if name == "" {
		return
	}
	if ctx.ChildByKind(spec, "struct_type", "interface_type") != nil {
		class := &decl.Class{
			Name:   name,
			Symbol: &decl.ClassSymbol{Name: name},
			Loc:    ctx.Location(spec),
		}
		ctx.File.Decls = append(ctx.File.Decls, class)
		classes[name] = class
		return
	}
	ctx.File.Decls = append(ctx.File.Decls, &decl.TypeAlias{
		Name:   name,
		Symbol: &decl.ClassSymbol{Name: name},
		Loc:    ctx.Location(spec),
	})
}

// receiverType returns the bare type name of a method receiver, with any
// pointer marker and type parameters stripped.
func (e *GoExtractor) receiverType(ctx *ExtractionContext, node *sitter.Node) string {
	receiver := ctx.ChildByKind(node, "parameter_list")
	if receiver == nil {
		return ""
	}
	param := ctx.ChildByKind(receiver, "parameter_declaration")
	if param == nil {
		return ""
	}
	text := ctx.Text(param)
	fields := strings.Fields(text)
	typ := fields[len(fields)-1]
	typ = strings.TrimPrefix(typ, "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	return typ
}

func (e *GoExtractor) methodSignature(ctx *ExtractionContext, node *sitter.Node) string {
	// The receiver list comes first; the parameter list proper is the second
	// parameter_list child.
	var lists []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == "parameter_list" {
			lists = append(lists, child)
		}
	}
	if len(lists) >= 2 {
		return ctx.Text(lists[1])
	}
	return ""
}
