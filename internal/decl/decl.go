// Package decl defines the declaration-tree node shapes produced by the
// language front-ends and consumed by the declaration index. The variant set
// is closed: the index dispatches on the concrete types below and treats
// anything else as a no-op.
package decl

import "time"

// File is the root of a declaration tree. A file belongs to exactly one
// package; a package usually has many files.
type File struct {
	Path     string
	Language string
	Package  string // dot-qualified package name
	Decls    []Decl
	ParsedAt time.Time
}

// Decl is the sealed declaration variant: Class, TypeAlias, SimpleFunction,
// Property, Constructor or EnumEntry.
type Decl interface {
	isDecl()
}

// Classifier is a class or type-alias declaration, addressable by a class
// identity.
type Classifier interface {
	Decl
	DeclaredName() string
	Sym() *ClassSymbol
}

// Class is a class-like declaration (class, interface, enum, trait).
// Members holds the indexed subtree: nested classes and callables.
// Local marks classes declared inside a function body; they are recorded
// but never addressable by qualified identity.
type Class struct {
	Name    string
	Symbol  *ClassSymbol
	Local   bool
	Members []Decl
	Loc     Location
}

type TypeAlias struct {
	Name   string
	Symbol *ClassSymbol
	Loc    Location
}

type SimpleFunction struct {
	Name   string
	Symbol *CallableSymbol
	Loc    Location
}

type Property struct {
	Name   string
	Symbol *CallableSymbol
	Loc    Location
}

type Constructor struct {
	// Name matches the owning class's simple name so that overloaded
	// constructors accumulate under one callable identity.
	Name   string
	Symbol *CallableSymbol
	Loc    Location
}

type EnumEntry struct {
	Name   string
	Symbol *CallableSymbol
	Loc    Location
}

func (*Class) isDecl()          {}
func (*TypeAlias) isDecl()      {}
func (*SimpleFunction) isDecl() {}
func (*Property) isDecl()       {}
func (*Constructor) isDecl()    {}
func (*EnumEntry) isDecl()      {}

func (c *Class) DeclaredName() string { return c.Name }
func (c *Class) Sym() *ClassSymbol    { return c.Symbol }

func (a *TypeAlias) DeclaredName() string { return a.Name }
func (a *TypeAlias) Sym() *ClassSymbol    { return a.Symbol }

type Location struct {
	File   string
	Line   int
	Column int
}
