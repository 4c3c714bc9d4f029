package util

import (
	"context"
	"testing"
	"time"
)

func TestNormalizePatternPath(t *testing.T) {
	cases := map[string]string{
		"./src/main":      "src/main",
		"src\\main\\java": "src/main/java",
		".":               "",
		" src/ ":          "src",
	}
	for in, want := range cases {
		if got := NormalizePatternPath(in); got != want {
			t.Errorf("NormalizePatternPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPackageFromDir(t *testing.T) {
	cases := []struct {
		root, path, want string
	}{
		{".", "web/types/api.ts", "web.types"},
		{"src", "src/app/models/user.py", "app.models"},
		{".", "main.ts", ""},
		{"proj", "proj/lib/util.js", "lib"},
	}
	for _, c := range cases {
		if got := PackageFromDir(c.root, c.path); got != c.want {
			t.Errorf("PackageFromDir(%q, %q) = %q, want %q", c.root, c.path, got, c.want)
		}
	}
}

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := SortedStringKeys(m)
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Fatalf("unexpected order: %v", keys)
	}
}

func TestLimiterBurstThenThrottle(t *testing.T) {
	l := NewLimiter(1, 2)
	if !l.Allow() || !l.Allow() {
		t.Fatal("burst capacity should admit two events")
	}
	if l.Allow() {
		t.Fatal("third immediate event should be throttled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected Wait to fail under a short deadline")
	}
}
