package ast

import "kiln/internal/source"

// ModuleInfo names one source module: a dotted name relative to the project root and its file path.
type ModuleInfo struct {
	Name string
	Path string
}

func (m ModuleInfo) IsZero() bool { return m.Path == "" }

type Visibility uint8

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// NameSpan is a name together with where it was written.
type NameSpan struct {
	Name string
	Span source.Span
}
