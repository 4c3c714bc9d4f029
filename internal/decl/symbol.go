package decl

// Symbols are the handles the surrounding name-resolution machinery passes
// around. The index stores them by pointer; two structurally identical
// symbols are still two distinct entries, which is what lets the consistency
// checker catch stale references.

type ClassSymbol struct {
	Name string
}

type CallableKind int

const (
	KindFunction CallableKind = iota
	KindProperty
	KindConstructor
	KindEnumEntry
)

func (k CallableKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindProperty:
		return "property"
	case KindConstructor:
		return "constructor"
	case KindEnumEntry:
		return "enum-entry"
	default:
		return "unknown"
	}
}

type CallableSymbol struct {
	Name      string
	Kind      CallableKind
	Signature string

	// Overridden links a virtual override to the symbol it overrides.
	// The container-file map is keyed by the most basic symbol of the
	// chain, so container lookups walk this link first. The chain is
	// attached by later semantic passes and must be acyclic.
	Overridden *CallableSymbol

	// Underlying is set only on synthetic property symbols and points at
	// the getter the property wraps. Container lookups redirect through it.
	Underlying *CallableSymbol
}

// Synthetic reports whether the symbol is a compiler-generated property
// wrapping an underlying accessor.
func (s *CallableSymbol) Synthetic() bool {
	return s.Underlying != nil
}
