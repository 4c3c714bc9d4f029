package query

type PackageRow struct {
	Name       string
	FileCount  int
	ClassCount int
}

type ClassRow struct {
	Package string
	Name    string
	File    string
	Nested  bool
}

type FileRow struct {
	Package   string
	Path      string
	Language  string
	DeclCount int
}

type CallableRow struct {
	Package   string
	Owner     string // empty for top-level callables
	Name      string
	Kind      string
	Synthetic bool
	File      string
}

// Result carries the rows for exactly one target; the other slices are nil.
type Result struct {
	Target    string
	Packages  []PackageRow
	Classes   []ClassRow
	Files     []FileRow
	Callables []CallableRow
}

func (r Result) Len() int {
	switch r.Target {
	case "packages":
		return len(r.Packages)
	case "classes":
		return len(r.Classes)
	case "files":
		return len(r.Files)
	case "callables":
		return len(r.Callables)
	}
	return 0
}
