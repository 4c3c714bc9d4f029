// Package synth derives accessor-style synthetic declarations after a file
// has been recorded. A method shaped like a getter (getBalance with no
// parameters) yields a synthetic property (balance) attached to the owning
// class and recorded through the generated-declaration hook, so that a full
// rebuild of the index reproduces it.
package synth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"declmap/internal/decl"
	"declmap/internal/engine/index"
)

// Synthesizer runs the accessor pass. Stateless; one instance serves
// concurrent files as long as the state is guarded by the caller.
type Synthesizer struct {
	recorder index.Recorder
}

func New() *Synthesizer {
	return &Synthesizer{}
}

// Run synthesizes accessor properties for every addressable class in the
// file. The file must already be recorded in st: generated declarations are
// attached under their owner's identity and container file. Local classes
// are skipped since they have no addressable identity to attach to.
func (s *Synthesizer) Run(st *index.State, f *decl.File) (int, error) {
	pkg := index.PackageName(f.Package)
	total := 0
	for _, d := range f.Decls {
		class, ok := d.(*decl.Class)
		if !ok || class.Local {
			continue
		}
		n, err := s.synthClass(st, pkg, class.Name, class)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *Synthesizer) synthClass(st *index.State, pkg index.PackageName, path string, class *decl.Class) (int, error) {
	owner := index.ClassID{Package: pkg, Path: path}

	// A plain field sharing the getter's derived name does not suppress
	// synthesis; only an already-synthesized property does, which is what
	// keeps repeated passes over the same class from duplicating members.
	synthesized := make(map[string]bool)
	var getters []*decl.SimpleFunction
	for _, member := range class.Members {
		switch m := member.(type) {
		case *decl.Property:
			if m.Symbol.Synthetic() {
				synthesized[m.Name] = true
			}
		case *decl.SimpleFunction:
			if propertyNameFor(m) != "" {
				getters = append(getters, m)
			}
		}
	}

	total := 0
	for _, getter := range getters {
		name := propertyNameFor(getter)
		if synthesized[name] {
			continue
		}
		synthesized[name] = true
		prop := &decl.Property{
			Name: name,
			Symbol: &decl.CallableSymbol{
				Name:       name,
				Kind:       decl.KindProperty,
				Underlying: getter.Symbol,
			},
			Loc: getter.Loc,
		}
		class.Members = append(class.Members, prop)
		if err := s.recorder.RecordGeneratedInClass(st, owner, prop); err != nil {
			return total, err
		}
		total++
	}

	// Nested classes get their own pass under the extended path.
	for _, member := range class.Members {
		nested, ok := member.(*decl.Class)
		if !ok || nested.Local {
			continue
		}
		n, err := s.synthClass(st, pkg, path+"."+nested.Name, nested)
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

// propertyNameFor returns the property name a getter implies, or "" when the
// function is not getter-shaped. Getter-shaped means a name like getBalance
// with an upper-case rune after the prefix and an empty parameter list
// (an implicit self receiver still counts as empty).
func propertyNameFor(fn *decl.SimpleFunction) string {
	name := fn.Symbol.Name
	if !strings.HasPrefix(name, "get") || len(name) <= len("get") {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name[len("get"):])
	if !unicode.IsUpper(first) {
		return ""
	}
	if !emptyParams(fn.Symbol.Signature) {
		return ""
	}
	return string(unicode.ToLower(first)) + name[len("get")+size:]
}

func emptyParams(signature string) bool {
	inner := strings.TrimSpace(signature)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")
	inner = strings.TrimSpace(inner)
	return inner == "" || inner == "self"
}
