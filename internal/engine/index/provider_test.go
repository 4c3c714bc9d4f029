package index

import (
	"testing"

	"declmap/internal/core/errors"
	"declmap/internal/decl"
)

func TestClassifierLookupRejectsLocalIdentity(t *testing.T) {
	st := NewState()
	Recorder{}.RecordFile(st, newFile("F.java", "a", newLocalClass("L")))
	p := NewProvider(st)

	_, err := p.Classifier(ClassID{Package: "a", Path: "L", Local: true})
	if err == nil {
		t.Fatal("expected precondition violation for local identity lookup")
	}
	if !errors.IsCode(err, errors.CodePrecondition) {
		t.Fatalf("expected CodePrecondition, got %v", err)
	}
}

func TestClassifierSoftMiss(t *testing.T) {
	p := NewProvider(NewState())
	c, err := p.Classifier(ClassID{Package: "a", Path: "Nope"})
	if err != nil {
		t.Fatalf("soft miss must not be an error: %v", err)
	}
	if c != nil {
		t.Fatal("expected nil classifier for unknown identity")
	}
	if syms := p.TopLevelCallables("a", "f"); syms != nil {
		t.Fatal("expected empty callable list, not an error")
	}
	if files := p.Files("a"); files != nil {
		t.Fatal("expected empty file list")
	}
}

func TestClassifierSymbol(t *testing.T) {
	c := newClass("C")
	st := NewState()
	Recorder{}.RecordFile(st, newFile("C.java", "a", c))
	p := NewProvider(st)

	sym, err := p.ClassifierSymbol(ClassID{Package: "a", Path: "C"})
	if err != nil {
		t.Fatal(err)
	}
	if sym != c.Symbol {
		t.Fatal("expected the recorded class's own symbol")
	}
}

func TestNestedScopeOnlyForClasses(t *testing.T) {
	inner := newClass("Inner")
	alias := &decl.TypeAlias{Name: "A", Symbol: &decl.ClassSymbol{Name: "A"}}
	outer := newClass("Outer", inner, newFunc("m"))
	st := NewState()
	Recorder{}.RecordFile(st, newFile("F.java", "p", outer, alias))
	p := NewProvider(st)

	nested, err := p.NestedScope(ClassID{Package: "p", Path: "Outer"})
	if err != nil {
		t.Fatal(err)
	}
	if len(nested) != 1 || nested[0].Path != "Outer.Inner" {
		t.Fatalf("expected nested scope {Outer.Inner}, got %v", nested)
	}

	// Type aliases have no nested scope.
	nested, err = p.NestedScope(ClassID{Package: "p", Path: "A"})
	if err != nil || nested != nil {
		t.Fatalf("expected absent scope for alias, got %v, %v", nested, err)
	}
}

func TestContainerFilePresentOrFatal(t *testing.T) {
	st := NewState()
	f := newFile("C.java", "a", newClass("C"))
	Recorder{}.RecordFile(st, f)
	p := NewProvider(st)

	got, err := p.ContainerFile(ClassID{Package: "a", Path: "C"})
	if err != nil || got != f {
		t.Fatalf("expected container file, got %v, %v", got, err)
	}

	_, err = p.ContainerFile(ClassID{Package: "a", Path: "Missing"})
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected CodeNotFound from present-or-fatal variant, got %v", err)
	}
	if p.ContainerFileIfAny(ClassID{Package: "a", Path: "Missing"}) != nil {
		t.Fatal("present-or-absent variant must return nil")
	}
}

func TestCallableContainerFollowsOverrideChain(t *testing.T) {
	base := newFunc("run")
	f := newFile("Base.java", "a", newClass("Base", base))
	st := NewState()
	Recorder{}.RecordFile(st, f)
	p := NewProvider(st)

	// B overrides A overrides base; only base has a recorded container.
	overrideA := &decl.CallableSymbol{Name: "run", Kind: decl.KindFunction, Overridden: base.Symbol}
	overrideB := &decl.CallableSymbol{Name: "run", Kind: decl.KindFunction, Overridden: overrideA}

	got, ok := p.CallableContainerFile(overrideB)
	if !ok || got != f {
		t.Fatal("expected override chain to resolve to the base symbol's file")
	}
}

func TestCallableContainerRedirectsSyntheticProperty(t *testing.T) {
	getter := newFunc("getName")
	f := newFile("Bean.java", "a", newClass("Bean", getter))
	st := NewState()
	Recorder{}.RecordFile(st, f)
	p := NewProvider(st)

	synthetic := &decl.CallableSymbol{Name: "name", Kind: decl.KindProperty, Underlying: getter.Symbol}
	got, ok := p.CallableContainerFile(synthetic)
	if !ok || got != f {
		t.Fatal("expected synthetic property to redirect to its getter's file")
	}

	if _, ok := p.CallableContainerFile(&decl.CallableSymbol{Name: "orphan"}); ok {
		t.Fatal("unrecorded symbol must be a soft miss")
	}
}

func TestTopLevelCallablesReturnsCopy(t *testing.T) {
	g := newFunc("g")
	st := NewState()
	Recorder{}.RecordFile(st, newFile("F.java", "a", g))
	p := NewProvider(st)

	syms := p.TopLevelCallables("a", "g")
	syms[0] = nil
	if got := p.TopLevelCallables("a", "g"); got[0] != g.Symbol {
		t.Fatal("provider result must not alias internal state")
	}
}

func TestPackagesSorted(t *testing.T) {
	st := NewState()
	Recorder{}.RecordFile(st, newFile("b.java", "b.pkg"))
	Recorder{}.RecordFile(st, newFile("a.java", "a.pkg"))
	p := NewProvider(st)

	pkgs := p.Packages()
	if len(pkgs) != 2 || pkgs[0] != "a.pkg" || pkgs[1] != "b.pkg" {
		t.Fatalf("expected sorted packages, got %v", pkgs)
	}
}
