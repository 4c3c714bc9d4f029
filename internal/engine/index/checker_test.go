package index

import (
	"strings"
	"testing"

	"declmap/internal/core/errors"
	"declmap/internal/decl"
)

func twoFileSet() (f1, f2 *decl.File) {
	f1 = newFile("F1.java", "a.b", newClass("C", newFunc("m")), newFunc("g"))
	f2 = newFile("F2.java", "a.b", newClass("D"), newFunc("h"))
	return
}

func TestCheckerCleanWhenConsistent(t *testing.T) {
	f1, f2 := twoFileSet()
	files := []*decl.File{f1, f2}

	st := Rebuild(files)
	p := NewProvider(st)
	checker := NewChecker(p, ModeStrict)

	report, err := checker.EnsureConsistent(files)
	if err != nil {
		t.Fatalf("consistent index reported drift: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected empty report, got:\n%s", report)
	}
}

func TestCheckerDetectsLoss(t *testing.T) {
	f1, f2 := twoFileSet()
	files := []*decl.File{f1, f2}

	// Build the live index from both files, then manually strip f2's
	// contribution to simulate a recording bug.
	live := Rebuild(files)
	dID := ClassID{Package: "a.b", Path: "D"}
	delete(live.classifiers, dID)
	delete(live.classifierFiles, dID)
	hID := CallableID{Package: "a.b", Name: "h"}
	for _, sym := range live.callables[hID] {
		delete(live.callableFiles, sym)
	}
	delete(live.callables, hID)
	live.files["a.b"] = live.files["a.b"][:1]

	p := NewProvider(live)
	report, err := NewChecker(p, ModeStrict).EnsureConsistent(files)
	if err == nil {
		t.Fatal("expected strict mode to fail on drift")
	}
	if !errors.IsCode(err, errors.CodeInconsistent) {
		t.Fatalf("expected CodeInconsistent, got %v", err)
	}

	// Everything uniquely contributed by f2 must be listed as lost.
	wantLost := map[string]bool{
		"classifierMap":              false,
		"classifierContainerFileMap": false,
		"callableContainerMap":       false,
		"callableMap":                false,
		"fileMap":                    false,
	}
	for _, d := range report.Diffs {
		if d.Kind == DiffLost {
			wantLost[d.Map] = true
		}
	}
	for mapName, seen := range wantLost {
		if !seen {
			t.Errorf("expected a lost entry for %s, report:\n%s", mapName, report)
		}
	}
}

func TestCheckerDetectsStaleReference(t *testing.T) {
	f1, f2 := twoFileSet()
	files := []*decl.File{f1, f2}

	live := Rebuild(files)
	// Replace the recorded classifier with a structurally identical but
	// distinct object; identity comparison must flag it.
	cID := ClassID{Package: "a.b", Path: "C"}
	live.classifiers[cID] = newClass("C", newFunc("m"))

	report, err := NewChecker(NewProvider(live), ModeStrict).EnsureConsistent(files)
	if err == nil {
		t.Fatal("expected stale reference to be reported")
	}
	changed, _, _ := report.Counts()
	if changed == 0 {
		t.Fatalf("expected a changed entry, report:\n%s", report)
	}
}

func TestCheckerSelfHealSwapsState(t *testing.T) {
	f1, f2 := twoFileSet()
	files := []*decl.File{f1, f2}

	live := Rebuild(files)
	dID := ClassID{Package: "a.b", Path: "D"}
	delete(live.classifiers, dID)
	delete(live.classifierFiles, dID)

	p := NewProvider(live)
	report, err := NewChecker(p, ModeSelfHeal).EnsureConsistent(files)
	if err != nil {
		t.Fatalf("self-heal must not fail: %v", err)
	}
	if report.Empty() {
		t.Fatal("drift should still be reported for logging")
	}

	// The live index was replaced with the rebuild: D is back.
	c, lookupErr := p.Classifier(dID)
	if lookupErr != nil || c == nil {
		t.Fatal("expected self-healed index to serve the lost classifier")
	}
}

func TestReportRendering(t *testing.T) {
	f1, f2 := twoFileSet()
	files := []*decl.File{f1, f2}

	live := Rebuild(files)
	delete(live.classifiers, ClassID{Package: "a.b", Path: "D"})

	report := diffStates(live, Rebuild(files))
	out := report.String()
	if !strings.Contains(out, "classifierMap") || !strings.Contains(out, "a.b/D") {
		t.Fatalf("report must name the drifted key:\n%s", out)
	}
	if !strings.Contains(out, "--- live") || !strings.Contains(out, "+++ rebuilt") {
		t.Fatalf("report must include the unified dump diff:\n%s", out)
	}

	if (Report{}).String() != "index consistent" {
		t.Fatal("empty report rendering changed")
	}
}
