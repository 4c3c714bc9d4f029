package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"declmap/internal/core/errors"
	"declmap/internal/decl"
	"declmap/internal/shared/observability"
	"declmap/internal/shared/util"
)

// Extractor converts one parsed syntax tree into the declaration model.
type Extractor interface {
	Extract(root *sitter.Node, source []byte, filePath string) (*decl.File, error)
}

// Parser is the language-dispatching front end. It owns the mapping from
// file extensions to languages and hands each file to the matching
// extractor. Parsers are leased from the loader's per-language pools, so a
// single Parser is safe for concurrent ParseFile calls.
type Parser struct {
	loader     *GrammarLoader
	root       string
	extractors map[string]Extractor
	extensions map[string]string
}

// NewParser builds a parser rooted at the given project directory. The root
// is used to derive package names for languages without package syntax.
func NewParser(loader *GrammarLoader, root string) *Parser {
	p := &Parser{
		loader:     loader,
		root:       root,
		extractors: make(map[string]Extractor),
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
	}
	return p
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

// RegisterDefaultExtractors wires the built-in extractor for every enabled
// language. JavaScript shares the TypeScript extractor; the grammars differ
// but the declaration-bearing node kinds are the same.
func (p *Parser) RegisterDefaultExtractors() error {
	for lang, spec := range p.loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		switch lang {
		case "go":
			p.RegisterExtractor(lang, &GoExtractor{})
		case "java":
			p.RegisterExtractor(lang, &JavaExtractor{})
		case "javascript":
			p.RegisterExtractor(lang, &TypeScriptExtractor{Language: "javascript"})
		case "python":
			p.RegisterExtractor(lang, &PythonExtractor{})
		case "rust":
			p.RegisterExtractor(lang, &RustExtractor{})
		case "typescript":
			p.RegisterExtractor(lang, &TypeScriptExtractor{Language: "typescript"})
		default:
			return errors.New(errors.CodeNotSupported, fmt.Sprintf("no default extractor for enabled language: %s", lang))
		}
	}
	return nil
}

// ParseFile parses one source file and returns its declaration tree.
func (p *Parser) ParseFile(path string, content []byte) (*decl.File, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxFile, path)
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("no extractor for: %s", lang))
	}

	pool := p.loader.Pool(lang)
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeInternal, "parse failed"), errors.CtxFile, path)
	}
	defer tree.Close()

	file, err := extractor.Extract(tree.RootNode(), content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	if file.Package == "" {
		file.Package = util.PackageFromDir(p.root, path)
	}
	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	return file, nil
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return p.extensions[ext]
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.detectLanguage(path) != ""
}

func (p *Parser) GetLanguage(path string) string {
	return p.detectLanguage(path)
}
