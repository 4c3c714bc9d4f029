package query

import (
	"context"
	"fmt"
	"sort"

	"declmap/internal/decl"
	"declmap/internal/engine/index"
)

// Service executes DQL queries against the declaration index. The provider
// is the only data source; results are always sorted and detached from the
// index's internal storage.
type Service struct {
	provider *index.Provider
}

func NewService(p *index.Provider) *Service {
	return &Service{provider: p}
}

// Execute parses and runs one query.
func (s *Service) Execute(ctx context.Context, raw string) (Result, error) {
	q, err := Parse(raw)
	if err != nil {
		return Result{}, err
	}
	return s.Run(ctx, q)
}

func (s *Service) Run(ctx context.Context, q Query) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	result := Result{Target: q.Target}
	switch q.Target {
	case "packages":
		rows, err := s.listPackages(ctx, q)
		if err != nil {
			return Result{}, err
		}
		result.Packages = rows
	case "classes":
		rows, err := s.listClasses(ctx, q)
		if err != nil {
			return Result{}, err
		}
		result.Classes = rows
	case "files":
		rows, err := s.listFiles(ctx, q)
		if err != nil {
			return Result{}, err
		}
		result.Files = rows
	case "callables":
		rows, err := s.listCallables(ctx, q)
		if err != nil {
			return Result{}, err
		}
		result.Callables = rows
	default:
		return Result{}, fmt.Errorf("unknown DQL target %q", q.Target)
	}
	return result, nil
}

func (s *Service) listPackages(ctx context.Context, q Query) ([]PackageRow, error) {
	var rows []PackageRow
	for _, pkg := range s.provider.Packages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields := map[string]string{"name": string(pkg), "package": string(pkg)}
		if !matchAll(q.Conditions, fields) {
			continue
		}
		rows = append(rows, PackageRow{
			Name:       string(pkg),
			FileCount:  len(s.provider.Files(pkg)),
			ClassCount: len(s.provider.ClassNames(pkg)),
		})
	}
	return limitRows(rows, q.Limit), nil
}

func (s *Service) listClasses(ctx context.Context, q Query) ([]ClassRow, error) {
	var rows []ClassRow
	err := s.eachClass(ctx, func(id index.ClassID) error {
		fields := map[string]string{
			"package": string(id.Package),
			"name":    id.SimpleName(),
			"path":    id.Path,
		}
		if !matchAll(q.Conditions, fields) {
			return nil
		}
		row := ClassRow{
			Package: string(id.Package),
			Name:    id.Path,
			Nested:  id.Nested(),
		}
		if f := s.provider.ContainerFileIfAny(id); f != nil {
			row.File = f.Path
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Package == rows[j].Package {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Package < rows[j].Package
	})
	return limitRows(rows, q.Limit), nil
}

func (s *Service) listFiles(ctx context.Context, q Query) ([]FileRow, error) {
	var rows []FileRow
	for _, pkg := range s.provider.Packages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, f := range s.provider.Files(pkg) {
			fields := map[string]string{
				"package": string(pkg),
				"name":    f.Path,
				"path":    f.Path,
			}
			if !matchAll(q.Conditions, fields) {
				continue
			}
			rows = append(rows, FileRow{
				Package:   string(pkg),
				Path:      f.Path,
				Language:  f.Language,
				DeclCount: len(f.Decls),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })
	return limitRows(rows, q.Limit), nil
}

func (s *Service) listCallables(ctx context.Context, q Query) ([]CallableRow, error) {
	var rows []CallableRow

	appendRow := func(pkg index.PackageName, owner string, sym *decl.CallableSymbol) {
		fields := map[string]string{
			"package": string(pkg),
			"name":    sym.Name,
			"owner":   owner,
			"kind":    sym.Kind.String(),
		}
		if !matchAll(q.Conditions, fields) {
			return
		}
		row := CallableRow{
			Package:   string(pkg),
			Owner:     owner,
			Name:      sym.Name,
			Kind:      sym.Kind.String(),
			Synthetic: sym.Synthetic(),
		}
		if f, ok := s.provider.CallableContainerFile(sym); ok {
			row.File = f.Path
		}
		rows = append(rows, row)
	}

	// Top-level callables live directly in file declaration lists.
	for _, pkg := range s.provider.Packages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, f := range s.provider.Files(pkg) {
			for _, d := range f.Decls {
				if sym := callableSymbol(d); sym != nil {
					appendRow(pkg, "", sym)
				}
			}
		}
	}

	// Member callables come from the recorded classifier trees.
	err := s.eachClass(ctx, func(id index.ClassID) error {
		c, err := s.provider.Classifier(id)
		if err != nil || c == nil {
			return err
		}
		class, ok := c.(*decl.Class)
		if !ok {
			return nil
		}
		for _, member := range class.Members {
			if sym := callableSymbol(member); sym != nil {
				appendRow(id.Package, id.Path, sym)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Package != rows[j].Package {
			return rows[i].Package < rows[j].Package
		}
		if rows[i].Owner != rows[j].Owner {
			return rows[i].Owner < rows[j].Owner
		}
		return rows[i].Name < rows[j].Name
	})
	return limitRows(rows, q.Limit), nil
}

// eachClass visits every addressable class identity: the top-level names of
// every package plus their nested scopes, depth first.
func (s *Service) eachClass(ctx context.Context, visit func(index.ClassID) error) error {
	var walk func(id index.ClassID) error
	walk = func(id index.ClassID) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := visit(id); err != nil {
			return err
		}
		nested, err := s.provider.NestedScope(id)
		if err != nil {
			return err
		}
		for _, n := range nested {
			if n.Local {
				continue
			}
			if err := walk(n); err != nil {
				return err
			}
		}
		return nil
	}

	for _, pkg := range s.provider.Packages() {
		for _, name := range s.provider.ClassNames(pkg) {
			if err := walk(index.ClassID{Package: pkg, Path: name}); err != nil {
				return err
			}
		}
	}
	return nil
}

func callableSymbol(d decl.Decl) *decl.CallableSymbol {
	switch m := d.(type) {
	case *decl.SimpleFunction:
		return m.Symbol
	case *decl.Property:
		return m.Symbol
	case *decl.Constructor:
		return m.Symbol
	case *decl.EnumEntry:
		return m.Symbol
	}
	return nil
}

func limitRows[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
