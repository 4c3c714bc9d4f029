package index

import (
	"fmt"
	"sort"
	"strings"

	"declmap/internal/core/errors"
	"declmap/internal/decl"

	"github.com/pmezard/go-difflib/difflib"
)

// Mode selects the consistency checker's outcome policy.
type Mode int

const (
	// ModeStrict turns any detected drift into a hard failure carrying
	// the full per-key report.
	ModeStrict Mode = iota
	// ModeSelfHeal tolerates drift and unconditionally replaces the live
	// state with the fresh rebuild, trading diagnosability for
	// resilience.
	ModeSelfHeal
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return ModeStrict, nil
	case "selfheal", "self-heal":
		return ModeSelfHeal, nil
	default:
		return ModeStrict, errors.Newf(errors.CodeValidation, "index mode must be one of: strict, selfheal (got %q)", s)
	}
}

func (m Mode) String() string {
	if m == ModeSelfHeal {
		return "selfheal"
	}
	return "strict"
}

// Checker verifies that the live, incrementally-built state matches a
// from-scratch rebuild over a known-complete file set. Single-valued maps
// are compared by reference identity, intentionally: a re-parsed but
// structurally identical declaration is still drift, because the point is
// to catch stale references after an incremental update replaced an object
// without updating the index.
type Checker struct {
	provider *Provider
	mode     Mode
}

func NewChecker(p *Provider, mode Mode) *Checker {
	return &Checker{provider: p, mode: mode}
}

func (c *Checker) Mode() Mode {
	return c.mode
}

// EnsureConsistent rebuilds from files and diffs the live state against the
// rebuild. In strict mode any difference is returned as an error carrying
// the report; in self-heal mode the rebuilt state replaces the live one and
// the report is returned for logging.
func (c *Checker) EnsureConsistent(files []*decl.File) (Report, error) {
	rebuilt := Rebuild(files)
	report := diffStates(c.provider.state, rebuilt)
	if report.Empty() {
		return report, nil
	}
	if c.mode == ModeStrict {
		return report, errors.Wrap(
			errors.New(errors.CodeInconsistent, report.String()),
			errors.CodeInconsistent,
			fmt.Sprintf("declaration index drifted from rebuild (%d diffs)", len(report.Diffs)),
		)
	}
	c.provider.swap(rebuilt)
	return report, nil
}

type DiffKind string

const (
	DiffChanged DiffKind = "changed"
	DiffLost    DiffKind = "lost"
	DiffNew     DiffKind = "new"
)

// Diff describes one drifted entry. Lost entries exist in the rebuild but
// not in the live index; new entries exist only in the live index (stale
// extras the rebuild does not reproduce).
type Diff struct {
	Map     string
	Key     string
	Kind    DiffKind
	Live    string
	Rebuilt string
}

type Report struct {
	Diffs []Diff
	// dumps of the two states, kept for the unified rendering
	liveDump    []string
	rebuiltDump []string
}

func (r Report) Empty() bool {
	return len(r.Diffs) == 0
}

// Counts returns the number of changed, lost and new entries.
func (r Report) Counts() (changed, lost, added int) {
	for _, d := range r.Diffs {
		switch d.Kind {
		case DiffChanged:
			changed++
		case DiffLost:
			lost++
		case DiffNew:
			added++
		}
	}
	return
}

// String renders one line per diff followed by a unified diff of the two
// state dumps.
func (r Report) String() string {
	if r.Empty() {
		return "index consistent"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "declaration index drift: %d differences\n", len(r.Diffs))
	for _, d := range r.Diffs {
		switch d.Kind {
		case DiffChanged:
			fmt.Fprintf(&b, "  %s %s: changed %s -> %s\n", d.Map, d.Key, d.Live, d.Rebuilt)
		case DiffLost:
			fmt.Fprintf(&b, "  %s %s: lost %s\n", d.Map, d.Key, d.Rebuilt)
		case DiffNew:
			fmt.Fprintf(&b, "  %s %s: new %s\n", d.Map, d.Key, d.Live)
		}
	}
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        r.liveDump,
		B:        r.rebuiltDump,
		FromFile: "live",
		ToFile:   "rebuilt",
		Context:  2,
	})
	if err == nil && unified != "" {
		b.WriteString(unified)
	}
	return b.String()
}

func diffStates(live, rebuilt *State) Report {
	report := Report{
		liveDump:    dumpState(live),
		rebuiltDump: dumpState(rebuilt),
	}

	// classifierMap: single-valued, identity comparison.
	for _, key := range unionClassIDs(live.classifiers, rebuilt.classifiers) {
		lv, liveOK := live.classifiers[key]
		rv, rebuiltOK := rebuilt.classifiers[key]
		report.appendSingle("classifierMap", key.String(),
			describeClassifier(lv), describeClassifier(rv),
			liveOK, rebuiltOK, lv == rv)
	}

	// classifierContainerFileMap: single-valued, identity comparison.
	for _, key := range unionClassIDs(live.classifierFiles, rebuilt.classifierFiles) {
		lv, liveOK := live.classifierFiles[key]
		rv, rebuiltOK := rebuilt.classifierFiles[key]
		report.appendSingle("classifierContainerFileMap", key.String(),
			describeFile(lv), describeFile(rv),
			liveOK, rebuiltOK, lv == rv)
	}

	// callableContainerMap: single-valued, keyed by symbol.
	for _, key := range unionSymbols(live.callableFiles, rebuilt.callableFiles) {
		lv, liveOK := live.callableFiles[key]
		rv, rebuiltOK := rebuilt.callableFiles[key]
		report.appendSingle("callableContainerMap", describeSymbol(key),
			describeFile(lv), describeFile(rv),
			liveOK, rebuiltOK, lv == rv)
	}

	// fileMap: list-valued, compared as sets.
	filePkgs := make(map[PackageName]struct{})
	for pkg := range live.files {
		filePkgs[pkg] = struct{}{}
	}
	for pkg := range rebuilt.files {
		filePkgs[pkg] = struct{}{}
	}
	for _, pkg := range sortedPackages(filePkgs) {
		liveSet := fileSet(live.files[pkg])
		rebuiltSet := fileSet(rebuilt.files[pkg])
		for f := range rebuiltSet {
			if _, ok := liveSet[f]; !ok {
				report.Diffs = append(report.Diffs, Diff{Map: "fileMap", Key: string(pkg), Kind: DiffLost, Rebuilt: describeFile(f)})
			}
		}
		for f := range liveSet {
			if _, ok := rebuiltSet[f]; !ok {
				report.Diffs = append(report.Diffs, Diff{Map: "fileMap", Key: string(pkg), Kind: DiffNew, Live: describeFile(f)})
			}
		}
	}

	// callableMap: list-valued, compared as sets of symbols.
	callableIDs := make(map[CallableID]struct{})
	for id := range live.callables {
		callableIDs[id] = struct{}{}
	}
	for id := range rebuilt.callables {
		callableIDs[id] = struct{}{}
	}
	for _, id := range sortedCallableIDs(callableIDs) {
		liveSet := symbolSet(live.callables[id])
		rebuiltSet := symbolSet(rebuilt.callables[id])
		for sym := range rebuiltSet {
			if _, ok := liveSet[sym]; !ok {
				report.Diffs = append(report.Diffs, Diff{Map: "callableMap", Key: id.String(), Kind: DiffLost, Rebuilt: describeSymbol(sym)})
			}
		}
		for sym := range liveSet {
			if _, ok := rebuiltSet[sym]; !ok {
				report.Diffs = append(report.Diffs, Diff{Map: "callableMap", Key: id.String(), Kind: DiffNew, Live: describeSymbol(sym)})
			}
		}
	}

	return report
}

func (r *Report) appendSingle(mapName, key, live, rebuilt string, liveOK, rebuiltOK, same bool) {
	switch {
	case liveOK && rebuiltOK && !same:
		r.Diffs = append(r.Diffs, Diff{Map: mapName, Key: key, Kind: DiffChanged, Live: live, Rebuilt: rebuilt})
	case rebuiltOK && !liveOK:
		r.Diffs = append(r.Diffs, Diff{Map: mapName, Key: key, Kind: DiffLost, Rebuilt: rebuilt})
	case liveOK && !rebuiltOK:
		r.Diffs = append(r.Diffs, Diff{Map: mapName, Key: key, Kind: DiffNew, Live: live})
	}
}

func describeClassifier(c decl.Classifier) string {
	if c == nil {
		return "<absent>"
	}
	return fmt.Sprintf("%T(%s)@%p", c, c.DeclaredName(), c)
}

func describeFile(f *decl.File) string {
	if f == nil {
		return "<absent>"
	}
	return fmt.Sprintf("%s@%p", f.Path, f)
}

func describeSymbol(s *decl.CallableSymbol) string {
	if s == nil {
		return "<absent>"
	}
	return fmt.Sprintf("%s(%s)@%p", s.Name, s.Kind, s)
}

func fileSet(files []*decl.File) map[*decl.File]struct{} {
	set := make(map[*decl.File]struct{}, len(files))
	for _, f := range files {
		set[f] = struct{}{}
	}
	return set
}

func symbolSet(syms []*decl.CallableSymbol) map[*decl.CallableSymbol]struct{} {
	set := make(map[*decl.CallableSymbol]struct{}, len(syms))
	for _, s := range syms {
		set[s] = struct{}{}
	}
	return set
}

func unionClassIDs[V any](a, b map[ClassID]V) []ClassID {
	set := make(map[ClassID]struct{}, len(a)+len(b))
	for id := range a {
		set[id] = struct{}{}
	}
	for id := range b {
		set[id] = struct{}{}
	}
	ids := make([]ClassID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func unionSymbols(a, b map[*decl.CallableSymbol]*decl.File) []*decl.CallableSymbol {
	set := make(map[*decl.CallableSymbol]struct{}, len(a)+len(b))
	for sym := range a {
		set[sym] = struct{}{}
	}
	for sym := range b {
		set[sym] = struct{}{}
	}
	syms := make([]*decl.CallableSymbol, 0, len(set))
	for sym := range set {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return describeSymbol(syms[i]) < describeSymbol(syms[j]) })
	return syms
}

func sortedPackages(set map[PackageName]struct{}) []PackageName {
	pkgs := make([]PackageName, 0, len(set))
	for pkg := range set {
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i] < pkgs[j] })
	return pkgs
}

func sortedCallableIDs(set map[CallableID]struct{}) []CallableID {
	ids := make([]CallableID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// dumpState renders every map entry as one line, sorted, for the unified
// diff in the report.
func dumpState(s *State) []string {
	var lines []string
	for pkg, files := range s.files {
		for _, f := range files {
			lines = append(lines, fmt.Sprintf("file %s => %s\n", pkg, describeFile(f)))
		}
	}
	for id, c := range s.classifiers {
		lines = append(lines, fmt.Sprintf("classifier %s => %s\n", id, describeClassifier(c)))
	}
	for id, f := range s.classifierFiles {
		lines = append(lines, fmt.Sprintf("classifier-file %s => %s\n", id, describeFile(f)))
	}
	for pkg, names := range s.classNames {
		for name := range names {
			lines = append(lines, fmt.Sprintf("class-name %s => %s\n", pkg, name))
		}
	}
	for id, syms := range s.callables {
		for _, sym := range syms {
			lines = append(lines, fmt.Sprintf("callable %s => %s\n", id, describeSymbol(sym)))
		}
	}
	for sym, f := range s.callableFiles {
		lines = append(lines, fmt.Sprintf("callable-file %s => %s\n", describeSymbol(sym), describeFile(f)))
	}
	sort.Strings(lines)
	return lines
}
