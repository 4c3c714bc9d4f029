package parser

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// LanguageSpec describes one supported language: which file extensions map to
// it and whether it participates in scans.
type LanguageSpec struct {
	Name       string
	Extensions []string
	Enabled    bool
}

// LanguageOverride carries per-language configuration adjustments.
type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
}

func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"go": {
			Name:       "go",
			Extensions: []string{".go"},
			Enabled:    true,
		},
		"java": {
			Name:       "java",
			Extensions: []string{".java"},
			Enabled:    true,
		},
		"javascript": {
			Name:       "javascript",
			Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			Enabled:    true,
		},
		"python": {
			Name:       "python",
			Extensions: []string{".py"},
			Enabled:    true,
		},
		"rust": {
			Name:       "rust",
			Extensions: []string{".rs"},
			Enabled:    true,
		},
		"typescript": {
			Name:       "typescript",
			Extensions: []string{".ts", ".tsx"},
			Enabled:    true,
		},
	}
}

// GrammarLoader owns the compiled tree-sitter grammars and a parser pool per
// enabled language. Grammars are process-wide singletons; the loader is safe
// to share across goroutines once constructed.
type GrammarLoader struct {
	registry  map[string]LanguageSpec
	languages map[string]*sitter.Language
	pools     map[string]*ParserPool
}

func NewGrammarLoader(overrides map[string]LanguageOverride) (*GrammarLoader, error) {
	registry := DefaultLanguageRegistry()
	for name, override := range overrides {
		spec, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown language in configuration: %s", name)
		}
		if override.Enabled != nil {
			spec.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			spec.Extensions = override.Extensions
		}
		registry[name] = spec
	}

	gl := &GrammarLoader{
		registry:  registry,
		languages: make(map[string]*sitter.Language),
		pools:     make(map[string]*ParserPool),
	}

	for name, spec := range registry {
		if !spec.Enabled {
			continue
		}
		switch name {
		case "go":
			gl.languages[name] = sitter.NewLanguage(tree_sitter_go.Language())
		case "java":
			gl.languages[name] = sitter.NewLanguage(tree_sitter_java.Language())
		case "javascript":
			gl.languages[name] = sitter.NewLanguage(tree_sitter_javascript.Language())
		case "python":
			gl.languages[name] = sitter.NewLanguage(tree_sitter_python.Language())
		case "rust":
			gl.languages[name] = sitter.NewLanguage(tree_sitter_rust.Language())
		case "typescript":
			gl.languages[name] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		default:
			return nil, fmt.Errorf("language %q is enabled but no grammar is built in", name)
		}
		gl.pools[name] = NewParserPool(gl.languages[name])
	}

	return gl, nil
}

func (gl *GrammarLoader) Language(name string) *sitter.Language {
	return gl.languages[name]
}

func (gl *GrammarLoader) Pool(name string) *ParserPool {
	return gl.pools[name]
}

func (gl *GrammarLoader) LanguageRegistry() map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(gl.registry))
	for name, spec := range gl.registry {
		exts := make([]string, len(spec.Extensions))
		copy(exts, spec.Extensions)
		spec.Extensions = exts
		out[name] = spec
	}
	return out
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.registry {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			set[strings.ToLower(ext)] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
