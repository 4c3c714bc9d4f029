package index

import "testing"

func TestClassIDClassification(t *testing.T) {
	top := ClassID{Package: "a.b", Path: "C"}
	if top.Nested() {
		t.Fatal("top-level identity must not classify as nested")
	}
	if top.SimpleName() != "C" {
		t.Fatalf("simple name: got %q", top.SimpleName())
	}
	if _, ok := top.Parent(); ok {
		t.Fatal("top-level identity has no parent")
	}

	nested := ClassID{Package: "a.b", Path: "C.D.E"}
	if !nested.Nested() {
		t.Fatal("expected nested classification")
	}
	if nested.SimpleName() != "E" {
		t.Fatalf("simple name: got %q", nested.SimpleName())
	}
	parent, ok := nested.Parent()
	if !ok || parent.Path != "C.D" {
		t.Fatalf("parent: got %v", parent)
	}
}

func TestClassIDUsableAsMapKey(t *testing.T) {
	m := map[ClassID]int{}
	a := ClassID{Package: "p", Path: "C"}
	b := ClassID{Package: "p", Path: "C"}
	m[a] = 1
	if m[b] != 1 {
		t.Fatal("structurally equal identities must hash equal")
	}
	local := ClassID{Package: "p", Path: "C", Local: true}
	if _, ok := m[local]; ok {
		t.Fatal("local flag must participate in identity")
	}
}

func TestCallableIDTopLevel(t *testing.T) {
	top := CallableID{Package: "p", Name: "f"}
	if !top.TopLevel() {
		t.Fatal("zero owner means top-level")
	}
	member := CallableID{Package: "p", Owner: ClassID{Package: "p", Path: "C"}, Name: "f"}
	if member.TopLevel() {
		t.Fatal("owned callable is not top-level")
	}
	if top == member {
		t.Fatal("distinct identities compared equal")
	}
}
