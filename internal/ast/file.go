package ast

import (
	"kiln/internal/source"
)

// File is the root of one parsed module.
type File struct {
	Span    source.Span
	Items   []ExprID
	Imports []ModuleInfo // в порядке первого упоминания, без повторов
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{
		Span:  sp,
		Items: make([]ExprID, 0),
	}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
