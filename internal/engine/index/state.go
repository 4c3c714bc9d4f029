package index

import "declmap/internal/decl"

// State is the mutable declaration registry: six independently keyed maps
// holding everything the provider can answer. It exposes raw merge/insert
// primitives only; all traversal policy lives in the Recorder, and callers
// are responsible for invoking the primitives in a way that preserves the
// cross-map invariants (every classifier has a container file, every
// recorded callable symbol has a container file).
//
// State has exactly one owner, the analysis session that created it. It is
// not safe for concurrent mutation; the session must serialize recording
// passes against each other and against provider reads.
type State struct {
	files           map[PackageName][]*decl.File
	classifiers     map[ClassID]decl.Classifier
	classifierFiles map[ClassID]*decl.File
	classNames      map[PackageName]map[string]struct{}
	callables       map[CallableID][]*decl.CallableSymbol
	callableFiles   map[*decl.CallableSymbol]*decl.File
}

func NewState() *State {
	return &State{
		files:           make(map[PackageName][]*decl.File),
		classifiers:     make(map[ClassID]decl.Classifier),
		classifierFiles: make(map[ClassID]*decl.File),
		classNames:      make(map[PackageName]map[string]struct{}),
		callables:       make(map[CallableID][]*decl.CallableSymbol),
		callableFiles:   make(map[*decl.CallableSymbol]*decl.File),
	}
}

// AddFile appends f to the package's file list.
func (s *State) AddFile(pkg PackageName, f *decl.File) {
	s.files[pkg] = append(s.files[pkg], f)
}

// SetClassifier records the class-or-typealias declaration for id,
// overwriting any previous entry (last write wins).
func (s *State) SetClassifier(id ClassID, c decl.Classifier) {
	s.classifiers[id] = c
}

// SetClassifierFile records the container file for a classifier identity.
func (s *State) SetClassifierFile(id ClassID, f *decl.File) {
	s.classifierFiles[id] = f
}

// AddClassName inserts a simple name into the package's class-name set.
// Only the Recorder decides which classes qualify (top-level, non-local).
func (s *State) AddClassName(pkg PackageName, name string) {
	set, ok := s.classNames[pkg]
	if !ok {
		set = make(map[string]struct{})
		s.classNames[pkg] = set
	}
	set[name] = struct{}{}
}

// AddCallable appends a symbol to the identity's symbol list, preserving
// prior entries; overload sets accumulate through repeated calls.
func (s *State) AddCallable(id CallableID, sym *decl.CallableSymbol) {
	s.callables[id] = append(s.callables[id], sym)
}

// SetCallableFile records the container file for a callable symbol.
func (s *State) SetCallableFile(sym *decl.CallableSymbol, f *decl.File) {
	s.callableFiles[sym] = f
}

// Stats summarizes map sizes for metrics and health reporting.
type Stats struct {
	Packages    int
	Files       int
	Classifiers int
	Callables   int
	Symbols     int
}

func (s *State) Stats() Stats {
	st := Stats{
		Packages:    len(s.files),
		Classifiers: len(s.classifiers),
		Callables:   len(s.callables),
		Symbols:     len(s.callableFiles),
	}
	for _, files := range s.files {
		st.Files += len(files)
	}
	return st
}
