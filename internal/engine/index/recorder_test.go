package index

import (
	"testing"

	"declmap/internal/core/errors"
	"declmap/internal/decl"
)

func newFunc(name string) *decl.SimpleFunction {
	return &decl.SimpleFunction{Name: name, Symbol: &decl.CallableSymbol{Name: name, Kind: decl.KindFunction}}
}

func newClass(name string, members ...decl.Decl) *decl.Class {
	return &decl.Class{Name: name, Symbol: &decl.ClassSymbol{Name: name}, Members: members}
}

func newLocalClass(name string) *decl.Class {
	c := newClass(name)
	c.Local = true
	return c
}

func newFile(path, pkg string, decls ...decl.Decl) *decl.File {
	return &decl.File{Path: path, Language: "java", Package: pkg, Decls: decls}
}

func TestRecordFilePackageScenario(t *testing.T) {
	// Package a.b: F1 declares top-level class C and top-level function g,
	// F2 declares a local class L inside g's body.
	f1 := newFile("F1.java", "a.b", newClass("C"), newFunc("g"))
	f2 := newFile("F2.java", "a.b", newLocalClass("L"))

	st := NewState()
	var r Recorder
	r.RecordFile(st, f1)
	r.RecordFile(st, f2)
	p := NewProvider(st)

	names := p.ClassNames("a.b")
	if len(names) != 1 || names[0] != "C" {
		t.Fatalf("expected class names {C}, got %v", names)
	}

	files := p.Files("a.b")
	if len(files) != 2 || files[0] != f1 || files[1] != f2 {
		t.Fatalf("expected files [F1 F2], got %v", files)
	}

	syms := p.TopLevelCallables("a.b", "g")
	if len(syms) != 1 || syms[0].Name != "g" {
		t.Fatalf("expected exactly one symbol for g, got %v", syms)
	}
}

func TestRecordClassSubtreeInOnePass(t *testing.T) {
	inner := newClass("Inner", newFunc("m"))
	outer := newClass("Outer",
		inner,
		&decl.Constructor{Name: "Outer", Symbol: &decl.CallableSymbol{Name: "Outer", Kind: decl.KindConstructor}},
		&decl.Property{Name: "size", Symbol: &decl.CallableSymbol{Name: "size", Kind: decl.KindProperty}},
	)
	f := newFile("Outer.java", "p", outer)

	st := NewState()
	Recorder{}.RecordFile(st, f)
	p := NewProvider(st)

	outerID := ClassID{Package: "p", Path: "Outer"}
	innerID := ClassID{Package: "p", Path: "Outer.Inner"}

	if c, _ := p.Classifier(outerID); c != decl.Classifier(outer) {
		t.Fatal("outer classifier not recorded")
	}
	if c, _ := p.Classifier(innerID); c != decl.Classifier(inner) {
		t.Fatal("nested classifier not recorded in the same pass")
	}
	if !innerID.Nested() {
		t.Fatal("expected Outer.Inner to classify as nested")
	}

	// Only the top-level class reaches the package class-name set.
	names := p.ClassNames("p")
	if len(names) != 1 || names[0] != "Outer" {
		t.Fatalf("expected {Outer}, got %v", names)
	}

	// Member callables are keyed by their owning class.
	ctorID := CallableID{Package: "p", Owner: outerID, Name: "Outer"}
	if len(p.Callables(ctorID)) != 1 {
		t.Fatal("constructor not recorded under owner identity")
	}
	mID := CallableID{Package: "p", Owner: innerID, Name: "m"}
	if len(p.Callables(mID)) != 1 {
		t.Fatal("nested member callable not recorded")
	}

	if f2, err := p.ContainerFile(innerID); err != nil || f2 != f {
		t.Fatalf("expected container file for nested class, got %v, %v", f2, err)
	}
}

func TestTypeAliasRecordedWithoutClassName(t *testing.T) {
	alias := &decl.TypeAlias{Name: "Alias", Symbol: &decl.ClassSymbol{Name: "Alias"}}
	f := newFile("alias.ts", "web.types", alias)

	st := NewState()
	Recorder{}.RecordFile(st, f)
	p := NewProvider(st)

	id := ClassID{Package: "web.types", Path: "Alias"}
	c, err := p.Classifier(id)
	if err != nil || c == nil {
		t.Fatalf("alias classifier missing: %v", err)
	}
	if got := p.ClassNames("web.types"); got != nil {
		t.Fatalf("type aliases must not populate the class-name set, got %v", got)
	}
	if p.ContainerFileIfAny(id) != f {
		t.Fatal("alias container file missing")
	}
}

func TestOverloadAccumulation(t *testing.T) {
	g1 := newFunc("g")
	g2 := newFunc("g")
	f := newFile("F.java", "a", g1, g2)

	st := NewState()
	Recorder{}.RecordFile(st, f)
	p := NewProvider(st)

	syms := p.TopLevelCallables("a", "g")
	if len(syms) != 2 {
		t.Fatalf("expected both overloads, got %d", len(syms))
	}
	seen := map[*decl.CallableSymbol]bool{syms[0]: true, syms[1]: true}
	if !seen[g1.Symbol] || !seen[g2.Symbol] {
		t.Fatal("an overload symbol was lost")
	}
}

func TestIdempotentRebuild(t *testing.T) {
	files := []*decl.File{
		newFile("F1.java", "a.b", newClass("C", newFunc("m")), newFunc("g")),
		newFile("F2.java", "a.b", newLocalClass("L"), newFunc("g")),
		newFile("G.ts", "web", &decl.TypeAlias{Name: "T", Symbol: &decl.ClassSymbol{Name: "T"}}),
	}

	first := Rebuild(files)
	second := Rebuild(files)

	report := diffStates(first, second)
	if !report.Empty() {
		t.Fatalf("two rebuilds over the same file set must be identical:\n%s", report)
	}
}

func TestRecordGeneratedInClassUsesOwnerContainerFile(t *testing.T) {
	owner := newClass("C")
	f := newFile("C.java", "a", owner)

	st := NewState()
	var r Recorder
	r.RecordFile(st, f)

	gen := newClass("Generated")
	ownerID := ClassID{Package: "a", Path: "C"}
	if err := r.RecordGeneratedInClass(st, ownerID, gen); err != nil {
		t.Fatalf("record generated: %v", err)
	}

	p := NewProvider(st)
	genID := ClassID{Package: "a", Path: "C.Generated"}
	got, err := p.ContainerFile(genID)
	if err != nil {
		t.Fatalf("container file for generated class: %v", err)
	}
	if got != f {
		t.Fatal("generated class must inherit the owner's container file")
	}
	// Generated nested classes stay out of the package class-name set.
	if names := p.ClassNames("a"); len(names) != 1 || names[0] != "C" {
		t.Fatalf("expected {C}, got %v", names)
	}
}

func TestRecordGeneratedInClassFailsForUnrecordedOwner(t *testing.T) {
	st := NewState()
	err := Recorder{}.RecordGeneratedInClass(st, ClassID{Package: "a", Path: "Missing"}, newClass("G"))
	if err == nil {
		t.Fatal("expected error for unrecorded owner")
	}
	if !errors.IsCode(err, errors.CodePrecondition) {
		t.Fatalf("expected precondition violation, got %v", err)
	}
}

func TestRecordGeneratedInFile(t *testing.T) {
	f := newFile("F.java", "a")
	st := NewState()
	var r Recorder
	r.RecordFile(st, f)

	gen := newFunc("synthesized")
	r.RecordGeneratedInFile(st, f, gen)

	p := NewProvider(st)
	if len(p.TopLevelCallables("a", "synthesized")) != 1 {
		t.Fatal("generated file-scope callable not recorded")
	}
	if got, ok := p.CallableContainerFile(gen.Symbol); !ok || got != f {
		t.Fatal("generated callable container file missing")
	}
}
