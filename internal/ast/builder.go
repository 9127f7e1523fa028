package ast

import (
	"kiln/internal/source"
)

type Hints struct{ Files, Exprs, Patterns uint }

// Builder owns the arenas of one module's tree. Every parsed module has its
// own Builder, so ids are only meaningful together with it.
type Builder struct {
	Files    *Files
	Exprs    *Exprs
	Patterns *Patterns
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Patterns == 0 {
		hints.Patterns = 1 << 5
	}
	return &Builder{
		Files:    NewFiles(hints.Files),
		Exprs:    NewExprs(hints.Exprs),
		Patterns: NewPatterns(hints.Patterns),
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

func (b *Builder) PushItem(file FileID, item ExprID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}

// AddImport records an imported module once.
func (b *Builder) AddImport(file FileID, m ModuleInfo) {
	f := b.Files.Get(file)
	for _, existing := range f.Imports {
		if existing.Path == m.Path {
			return
		}
	}
	f.Imports = append(f.Imports, m)
}
