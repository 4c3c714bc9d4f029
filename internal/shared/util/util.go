package util

import (
	"path"
	"sort"
	"strings"
)

// NormalizePatternPath cleans and normalizes paths for matcher/pattern usage.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// PackageFromDir derives a dot-qualified package name from a directory path
// relative to the project root. Used for languages without a package
// declaration of their own.
func PackageFromDir(root, filePath string) string {
	rel := strings.TrimPrefix(NormalizePatternPath(filePath), NormalizePatternPath(root))
	rel = strings.TrimPrefix(rel, "/")
	dir := path.Dir(rel)
	if dir == "." || dir == "/" || dir == "" {
		return ""
	}
	return strings.ReplaceAll(dir, "/", ".")
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
