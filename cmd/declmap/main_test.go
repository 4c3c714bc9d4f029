package main

import (
	"strings"
	"testing"

	"declmap/internal/data/query"
)

func TestEffectiveMode(t *testing.T) {
	if got := effectiveMode("selfheal", true); got != "strict" {
		t.Errorf("check run mode = %q, want strict", got)
	}
	if got := effectiveMode("selfheal", false); got != "selfheal" {
		t.Errorf("normal run mode = %q, want selfheal", got)
	}
}

func TestFormatQueryResultPackages(t *testing.T) {
	out := formatQueryResult(query.Result{
		Target: "packages",
		Packages: []query.PackageRow{
			{Name: "bank", FileCount: 2, ClassCount: 3},
		},
	})
	if !strings.Contains(out, "bank\t2 files\t3 classes") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "1 rows") {
		t.Errorf("missing row count:\n%s", out)
	}
}

func TestFormatQueryResultCallables(t *testing.T) {
	out := formatQueryResult(query.Result{
		Target: "callables",
		Callables: []query.CallableRow{
			{Package: "bank", Owner: "Account", Name: "balance", Kind: "property", Synthetic: true},
			{Package: "bank", Name: "open", Kind: "function"},
		},
	})
	if !strings.Contains(out, "bank/Account.balance\tproperty\t(synthetic)") {
		t.Errorf("synthetic member missing:\n%s", out)
	}
	if !strings.Contains(out, "bank/<top-level>.open\tfunction") {
		t.Errorf("top-level callable missing:\n%s", out)
	}
}
