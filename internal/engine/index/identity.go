// Package index implements the session-scoped declaration index: a registry
// of structural facts about declaration trees, the recorder that populates
// it, the read-only query provider layered over it, and a consistency
// checker that can verify the incrementally-built state against a
// from-scratch rebuild.
package index

import "strings"

// PackageName is a dot-qualified package path ("com.example.app").
type PackageName string

// ClassID identifies a class or type alias: package plus the dot-joined
// simple-name path inside the file ("Outer.Inner"). Local identities are
// recorded but never meant to be resolved by identity.
type ClassID struct {
	Package PackageName
	Path    string
	Local   bool
}

// Nested reports whether the identity names a class declared inside
// another class.
func (id ClassID) Nested() bool {
	return strings.Contains(id.Path, ".")
}

// SimpleName returns the last segment of the path.
func (id ClassID) SimpleName() string {
	if i := strings.LastIndex(id.Path, "."); i >= 0 {
		return id.Path[i+1:]
	}
	return id.Path
}

// Parent returns the identity of the enclosing class and false when the
// identity is top-level.
func (id ClassID) Parent() (ClassID, bool) {
	i := strings.LastIndex(id.Path, ".")
	if i < 0 {
		return ClassID{}, false
	}
	return ClassID{Package: id.Package, Path: id.Path[:i], Local: id.Local}, true
}

func (id ClassID) IsZero() bool {
	return id == ClassID{}
}

func (id ClassID) String() string {
	s := string(id.Package) + "/" + id.Path
	if id.Local {
		s += " (local)"
	}
	return s
}

// CallableID identifies a function, property, constructor or enum entry.
// Owner is the zero ClassID for top-level callables. Overloads share one
// identity.
type CallableID struct {
	Package PackageName
	Owner   ClassID
	Name    string
}

func (id CallableID) TopLevel() bool {
	return id.Owner.IsZero()
}

func (id CallableID) String() string {
	if id.TopLevel() {
		return string(id.Package) + "/" + id.Name
	}
	return id.Owner.String() + "." + id.Name
}
