package synth

import (
	"testing"

	"declmap/internal/core/errors"
	"declmap/internal/decl"
	"declmap/internal/engine/index"
)

func getter(name string) *decl.SimpleFunction {
	return &decl.SimpleFunction{
		Name: name,
		Symbol: &decl.CallableSymbol{
			Name:      name,
			Kind:      decl.KindFunction,
			Signature: "()",
		},
	}
}

func accountFile() (*decl.File, *decl.Class) {
	class := &decl.Class{
		Name:   "Account",
		Symbol: &decl.ClassSymbol{Name: "Account"},
		Members: []decl.Decl{
			getter("getBalance"),
			getter("getOwner"),
			&decl.Property{
				Name:   "owner",
				Symbol: &decl.CallableSymbol{Name: "owner", Kind: decl.KindProperty},
			},
			getter("get"), // no property name after the prefix
			&decl.SimpleFunction{
				Name: "getTotal",
				Symbol: &decl.CallableSymbol{
					Name:      "getTotal",
					Kind:      decl.KindFunction,
					Signature: "(int scale)",
				},
			},
		},
	}
	file := &decl.File{
		Path:    "bank/Account.java",
		Package: "bank",
		Decls:   []decl.Decl{class},
	}
	return file, class
}

func TestRunSynthesizesGetterProperties(t *testing.T) {
	file, class := accountFile()
	st := index.NewState()
	index.Recorder{}.RecordFile(st, file)

	n, err := New().Run(st, file)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Fatalf("synthesized %d properties, want 2", n)
	}

	var synthesized *decl.Property
	for _, member := range class.Members {
		if prop, ok := member.(*decl.Property); ok && prop.Name == "balance" {
			synthesized = prop
		}
	}
	if synthesized == nil {
		t.Fatal("expected synthetic property balance on Account")
	}
	if !synthesized.Symbol.Synthetic() {
		t.Error("synthetic property must link its underlying getter")
	}

	p := index.NewProvider(st)
	owner := index.ClassID{Package: "bank", Path: "Account"}

	syms := p.Callables(index.CallableID{Package: "bank", Owner: owner, Name: "balance"})
	if len(syms) != 1 || syms[0] != synthesized.Symbol {
		t.Fatalf("index does not serve the synthetic property: %v", syms)
	}

	// Container lookup on the synthetic symbol redirects via the getter.
	f, ok := p.CallableContainerFile(synthesized.Symbol)
	if !ok || f != file {
		t.Errorf("CallableContainerFile = %v, %v; want the declaring file", f, ok)
	}
}

func TestRunFieldBackedGetter(t *testing.T) {
	file, _ := accountFile()
	st := index.NewState()
	index.Recorder{}.RecordFile(st, file)

	if _, err := New().Run(st, file); err != nil {
		t.Fatalf("Run: %v", err)
	}

	p := index.NewProvider(st)
	owner := index.ClassID{Package: "bank", Path: "Account"}

	// The declared field owner does not suppress getOwner: both the field
	// and the derived property share the identity.
	syms := p.Callables(index.CallableID{Package: "bank", Owner: owner, Name: "owner"})
	if len(syms) != 2 {
		t.Fatalf("owner callables = %d, want 2", len(syms))
	}
	synthetic := 0
	for _, sym := range syms {
		if sym.Synthetic() {
			synthetic++
		}
	}
	if synthetic != 1 {
		t.Errorf("owner has %d synthetic symbols, want 1", synthetic)
	}
}

func TestRunSkipsMalformedGetters(t *testing.T) {
	file, _ := accountFile()
	st := index.NewState()
	index.Recorder{}.RecordFile(st, file)

	if _, err := New().Run(st, file); err != nil {
		t.Fatalf("Run: %v", err)
	}

	p := index.NewProvider(st)
	owner := index.ClassID{Package: "bank", Path: "Account"}

	// get has no property name, getTotal takes a parameter.
	for _, name := range []string{"", "total"} {
		if syms := p.Callables(index.CallableID{Package: "bank", Owner: owner, Name: name}); len(syms) != 0 {
			t.Errorf("unexpected synthetic callable %q", name)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	file, class := accountFile()
	st := index.NewState()
	index.Recorder{}.RecordFile(st, file)

	s := New()
	if _, err := s.Run(st, file); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	n, err := s.Run(st, file)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if n != 0 {
		t.Errorf("second Run synthesized %d properties, want 0", n)
	}

	count := 0
	for _, member := range class.Members {
		if prop, ok := member.(*decl.Property); ok && prop.Name == "balance" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("balance appears %d times in members, want 1", count)
	}
}

func TestRunSurvivesRebuild(t *testing.T) {
	file, _ := accountFile()
	st := index.NewState()
	index.Recorder{}.RecordFile(st, file)
	if _, err := New().Run(st, file); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The synthetic property lives in the owner's member list, so a rebuild
	// from the same files reproduces it and the checker stays quiet.
	p := index.NewProvider(st)
	checker := index.NewChecker(p, index.ModeStrict)
	report, err := checker.EnsureConsistent([]*decl.File{file})
	if err != nil {
		t.Fatalf("EnsureConsistent: %v", err)
	}
	if !report.Empty() {
		t.Errorf("unexpected diffs after rebuild:\n%s", report.String())
	}
}

func TestRunNestedAndLocalClasses(t *testing.T) {
	inner := &decl.Class{
		Name:    "Inner",
		Symbol:  &decl.ClassSymbol{Name: "Inner"},
		Members: []decl.Decl{getter("getDepth")},
	}
	local := &decl.Class{
		Name:    "Helper",
		Symbol:  &decl.ClassSymbol{Name: "Helper"},
		Local:   true,
		Members: []decl.Decl{getter("getScratch")},
	}
	outer := &decl.Class{
		Name:    "Outer",
		Symbol:  &decl.ClassSymbol{Name: "Outer"},
		Members: []decl.Decl{inner},
	}
	file := &decl.File{
		Path:    "a/Outer.java",
		Package: "a",
		Decls:   []decl.Decl{outer, local},
	}
	st := index.NewState()
	index.Recorder{}.RecordFile(st, file)

	n, err := New().Run(st, file)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Fatalf("synthesized %d properties, want 1 (nested only)", n)
	}

	p := index.NewProvider(st)
	owner := index.ClassID{Package: "a", Path: "Outer.Inner"}
	if syms := p.Callables(index.CallableID{Package: "a", Owner: owner, Name: "depth"}); len(syms) != 1 {
		t.Errorf("depth callables = %d, want 1", len(syms))
	}
}

func TestRunUnrecordedFileFails(t *testing.T) {
	file, _ := accountFile()
	st := index.NewState()

	_, err := New().Run(st, file)
	if !errors.IsCode(err, errors.CodePrecondition) {
		t.Fatalf("expected CodePrecondition, got %v", err)
	}
}
