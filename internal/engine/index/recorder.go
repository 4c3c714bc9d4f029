package index

import (
	"declmap/internal/core/errors"
	"declmap/internal/decl"
)

// Recorder walks a declaration tree and populates a State through its raw
// primitives. It is stateless and reentrant: callers drive it once per file
// during initial processing and again for every generated subtree. Running
// it twice over the same file against the same State duplicates callable
// list entries, so callers must not double-record without rebuilding first.
type Recorder struct{}

// RecordFile records f under its package and indexes its whole declaration
// subtree in one pass.
func (r Recorder) RecordFile(st *State, f *decl.File) {
	ctx := recordCtx{file: f, pkg: PackageName(f.Package)}
	st.AddFile(ctx.pkg, f)
	for _, d := range f.Decls {
		r.record(st, ctx, d)
	}
}

// RecordGeneratedInFile records a declaration synthesized directly at file
// scope, using the file itself as container.
func (r Recorder) RecordGeneratedInFile(st *State, f *decl.File, d decl.Decl) {
	r.record(st, recordCtx{file: f, pkg: PackageName(f.Package)}, d)
}

// RecordGeneratedInClass records a declaration synthesized inside an
// already-recorded owner class, using the owner's container file as file
// context. A generated class nested inside class C is therefore recorded
// with C's container file, not a newly discovered one. The owner must have
// been recorded first; a missing owner is a caller bug, not a recoverable
// condition.
func (r Recorder) RecordGeneratedInClass(st *State, owner ClassID, d decl.Decl) error {
	f, ok := st.classifierFiles[owner]
	if !ok {
		err := errors.Newf(errors.CodePrecondition,
			"generated declaration recorded before its owner class %s", owner)
		return errors.AddContext(err, errors.CtxClass, owner.String())
	}
	ctx := recordCtx{
		file:       f,
		pkg:        owner.Package,
		ownerPath:  owner.Path,
		ownerLocal: owner.Local,
	}
	r.record(st, ctx, d)
	return nil
}

type recordCtx struct {
	file       *decl.File
	pkg        PackageName
	ownerPath  string // dot path of enclosing classes, empty at top level
	ownerLocal bool
}

func (c recordCtx) childPath(name string) string {
	if c.ownerPath == "" {
		return name
	}
	return c.ownerPath + "." + name
}

func (c recordCtx) owner() ClassID {
	if c.ownerPath == "" {
		return ClassID{}
	}
	return ClassID{Package: c.pkg, Path: c.ownerPath, Local: c.ownerLocal}
}

// record applies the per-kind rule for one declaration. The variant set is
// closed; anything outside it is ignored.
func (r Recorder) record(st *State, ctx recordCtx, d decl.Decl) {
	switch d := d.(type) {
	case *decl.Class:
		id := ClassID{
			Package: ctx.pkg,
			Path:    ctx.childPath(d.Name),
			Local:   d.Local || ctx.ownerLocal,
		}
		st.SetClassifier(id, d)
		st.SetClassifierFile(id, ctx.file)
		if !id.Nested() && !id.Local {
			st.AddClassName(ctx.pkg, d.Name)
		}
		member := ctx
		member.ownerPath = id.Path
		member.ownerLocal = id.Local
		for _, m := range d.Members {
			r.record(st, member, m)
		}
	case *decl.TypeAlias:
		// No members to recurse into and no class-name entry; only
		// classes populate the package's class-name set.
		id := ClassID{Package: ctx.pkg, Path: ctx.childPath(d.Name), Local: ctx.ownerLocal}
		st.SetClassifier(id, d)
		st.SetClassifierFile(id, ctx.file)
	case *decl.SimpleFunction:
		r.recordCallable(st, ctx, d.Name, d.Symbol)
	case *decl.Property:
		r.recordCallable(st, ctx, d.Name, d.Symbol)
	case *decl.Constructor:
		r.recordCallable(st, ctx, d.Name, d.Symbol)
	case *decl.EnumEntry:
		r.recordCallable(st, ctx, d.Name, d.Symbol)
	default:
		// Other node kinds carry nothing the index serves.
	}
}

func (r Recorder) recordCallable(st *State, ctx recordCtx, name string, sym *decl.CallableSymbol) {
	id := CallableID{Package: ctx.pkg, Owner: ctx.owner(), Name: name}
	st.AddCallable(id, sym)
	st.SetCallableFile(sym, ctx.file)
}

// Rebuild runs a full recording pass over files into a fresh State. This is
// the from-scratch constructor the consistency checker compares against and
// swaps in.
func Rebuild(files []*decl.File) *State {
	st := NewState()
	var r Recorder
	for _, f := range files {
		r.RecordFile(st, f)
	}
	return st
}
