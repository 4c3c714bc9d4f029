package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"declmap/internal/decl"
)

// NodeHandler processes a node for a language-specific extractor.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source []byte
	File   *decl.File
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	stop := false
	if handler, ok := e.handlers[node.Kind()]; ok {
		stop = handler(ctx, node)
	}

	if !stop {
		for i := uint(0); i < node.ChildCount(); i++ {
			e.Walk(ctx, node.Child(i))
		}
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) decl.Location {
	return decl.Location{
		File:   c.File.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

// ChildText returns the text of the first direct child with the given kind.
func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	return c.Text(c.ChildByKind(node, kind))
}

// ChildByKind returns the first direct child whose kind is in kinds.
func (c *ExtractionContext) ChildByKind(node *sitter.Node, kinds ...string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		for _, kind := range kinds {
			if child.Kind() == kind {
				return child
			}
		}
	}
	return nil
}

// CollectByKind walks the subtree under node depth-first and returns every
// descendant whose kind is in kinds. Matched nodes are not descended into.
func (c *ExtractionContext) CollectByKind(node *sitter.Node, kinds ...string) []*sitter.Node {
	var out []*sitter.Node
	if node == nil {
		return out
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		matched := false
		for _, kind := range kinds {
			if child.Kind() == kind {
				out = append(out, child)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, c.CollectByKind(child, kinds...)...)
		}
	}
	return out
}
