package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func collectChanges(t *testing.T, dir string, excludeDirs, excludeFiles, extensions []string) chan []string {
	t.Helper()
	changes := make(chan []string, 16)
	w, err := NewWatcher(50*time.Millisecond, excludeDirs, excludeFiles, func(paths []string) {
		changes <- paths
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if len(extensions) > 0 {
		w.SetExtensionFilter(extensions)
	}
	if err := w.Watch([]string{dir}); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return changes
}

func waitFor(t *testing.T, changes chan []string, want map[string]bool, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	seen := make(map[string]bool)
	for {
		remaining := false
		for path := range want {
			if !seen[path] {
				remaining = true
			}
		}
		if !remaining {
			return
		}
		select {
		case batch := <-changes:
			for _, path := range batch {
				seen[path] = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for changes; seen %v, want %v", seen, want)
		}
	}
}

func TestWatcherDetectsWrites(t *testing.T) {
	dir := t.TempDir()
	changes := collectChanges(t, dir, nil, nil, nil)

	path := filepath.Join(dir, "Main.java")
	if err := os.WriteFile(path, []byte("class Main {}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, changes, map[string]bool{path: true}, 3*time.Second)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	changes := collectChanges(t, dir, nil, nil, nil)

	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	if err := os.WriteFile(a, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(b, []byte("y = 2"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, changes, map[string]bool{a: true, b: true}, 3*time.Second)
}

func TestWatcherExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	changes := collectChanges(t, dir, nil, nil, []string{".go"})

	ignored := filepath.Join(dir, "notes.txt")
	wanted := filepath.Join(dir, "main.go")
	if err := os.WriteFile(ignored, []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(wanted, []byte("package main"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, changes, map[string]bool{wanted: true}, 3*time.Second)

	// Drain any further batches and make sure the filtered file never shows.
	drain := time.After(200 * time.Millisecond)
	for {
		select {
		case batch := <-changes:
			for _, path := range batch {
				if path == ignored {
					t.Fatalf("filtered file reported: %s", path)
				}
			}
		case <-drain:
			return
		}
	}
}

func TestWatcherExcludesFilePatterns(t *testing.T) {
	dir := t.TempDir()
	changes := collectChanges(t, dir, nil, []string{"*.tmp"}, nil)

	ignored := filepath.Join(dir, "scratch.tmp")
	wanted := filepath.Join(dir, "lib.rs")
	if err := os.WriteFile(ignored, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(wanted, []byte("fn main() {}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, changes, map[string]bool{wanted: true}, 3*time.Second)
}

func TestWatcherRequiresCallback(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, nil, nil, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestWatcherRejectsBadGlob(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"[0-"}, nil, func([]string) {}); err == nil {
		t.Fatal("expected error for malformed glob")
	}
}
