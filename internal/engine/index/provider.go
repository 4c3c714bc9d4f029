package index

import (
	"sort"

	"declmap/internal/core/errors"
	"declmap/internal/decl"
)

// Provider is the read-only query façade over the current State. All
// lookups are plain map reads plus the small amount of query-time logic
// that cannot be expressed as one: override-chain walking for callable
// container files and the local-identity guard.
//
// "Not recorded" is not an error: lookups return nil/empty for unknown
// keys. Errors mark caller bugs (querying a local identity) or the
// present-or-fatal container variant.
type Provider struct {
	state *State
}

func NewProvider(st *State) *Provider {
	return &Provider{state: st}
}

// swap replaces the live state wholesale. Only the consistency checker's
// rebuild path uses it.
func (p *Provider) swap(st *State) {
	p.state = st
}

// State exposes the live state for the single writer that records into it.
// Readers must go through the lookup methods instead.
func (p *Provider) State() *State {
	return p.state
}

// Reset replaces the live state with the result of a full authoritative
// scan. Incremental updates never use this; they record into State() and
// rely on the consistency checker to verify the result.
func (p *Provider) Reset(st *State) {
	p.state = st
}

func (p *Provider) Stats() Stats {
	return p.state.Stats()
}

// Classifier returns the class-or-typealias declaration recorded for id, or
// nil when none is recorded. Local identities are never uniquely
// addressable and querying one is a precondition violation.
func (p *Provider) Classifier(id ClassID) (decl.Classifier, error) {
	if id.Local {
		err := errors.Newf(errors.CodePrecondition, "classifier lookup with local identity %s", id)
		return nil, errors.AddContext(err, errors.CtxClass, id.String())
	}
	return p.state.classifiers[id], nil
}

// ClassifierSymbol returns the symbol of the classifier recorded for id.
func (p *Provider) ClassifierSymbol(id ClassID) (*decl.ClassSymbol, error) {
	c, err := p.Classifier(id)
	if err != nil || c == nil {
		return nil, err
	}
	return c.Sym(), nil
}

// NestedScope lists the nested classifiers declared directly inside the
// class identified by id. Only classes have a nested scope; the result is
// nil when id resolves to a type alias or nothing at all.
func (p *Provider) NestedScope(id ClassID) ([]ClassID, error) {
	c, err := p.Classifier(id)
	if err != nil {
		return nil, err
	}
	class, ok := c.(*decl.Class)
	if !ok {
		return nil, nil
	}
	var nested []ClassID
	for _, m := range class.Members {
		switch m := m.(type) {
		case *decl.Class:
			nested = append(nested, ClassID{Package: id.Package, Path: id.Path + "." + m.Name, Local: id.Local || m.Local})
		case *decl.TypeAlias:
			nested = append(nested, ClassID{Package: id.Package, Path: id.Path + "." + m.Name, Local: id.Local})
		}
	}
	return nested, nil
}

// ContainerFile returns the file owning the classifier id, failing when no
// file is recorded. Use ContainerFileIfAny for the soft-miss variant.
func (p *Provider) ContainerFile(id ClassID) (*decl.File, error) {
	if f := p.state.classifierFiles[id]; f != nil {
		return f, nil
	}
	err := errors.Newf(errors.CodeNotFound, "no container file recorded for classifier %s", id)
	return nil, errors.AddContext(err, errors.CtxClass, id.String())
}

// ContainerFileIfAny returns the file owning the classifier id, or nil.
func (p *Provider) ContainerFileIfAny(id ClassID) *decl.File {
	return p.state.classifierFiles[id]
}

// CallableContainerFile returns the file owning a callable symbol. The map
// is keyed by the most basic symbol of an override chain, so the chain is
// walked first; synthetic property symbols redirect to their underlying
// getter before the final lookup. The override relation must be acyclic.
func (p *Provider) CallableContainerFile(sym *decl.CallableSymbol) (*decl.File, bool) {
	for sym.Overridden != nil {
		sym = sym.Overridden
	}
	if sym.Underlying != nil {
		sym = sym.Underlying
	}
	f, ok := p.state.callableFiles[sym]
	return f, ok
}

// TopLevelCallables returns the symbols recorded for a top-level callable
// name in pkg. The result is empty, never absent, when nothing matches.
func (p *Provider) TopLevelCallables(pkg PackageName, name string) []*decl.CallableSymbol {
	syms := p.state.callables[CallableID{Package: pkg, Name: name}]
	if len(syms) == 0 {
		return nil
	}
	out := make([]*decl.CallableSymbol, len(syms))
	copy(out, syms)
	return out
}

// Callables returns the overload set recorded for an exact callable
// identity, including member callables.
func (p *Provider) Callables(id CallableID) []*decl.CallableSymbol {
	syms := p.state.callables[id]
	if len(syms) == 0 {
		return nil
	}
	out := make([]*decl.CallableSymbol, len(syms))
	copy(out, syms)
	return out
}

// ClassNames returns the sorted simple names of the top-level, non-local
// classes recorded under pkg.
func (p *Provider) ClassNames(pkg PackageName) []string {
	set := p.state.classNames[pkg]
	if len(set) == 0 {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Files returns the files that contributed declarations under pkg.
func (p *Provider) Files(pkg PackageName) []*decl.File {
	files := p.state.files[pkg]
	if len(files) == 0 {
		return nil
	}
	out := make([]*decl.File, len(files))
	copy(out, files)
	return out
}

// Packages returns the sorted names of every package with at least one
// recorded file.
func (p *Provider) Packages() []PackageName {
	pkgs := make([]PackageName, 0, len(p.state.files))
	for pkg := range p.state.files {
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i] < pkgs[j] })
	return pkgs
}
