package symbols

import (
	"kiln/internal/ast"
	"kiln/internal/source"
	"kiln/internal/types"
)

// BindingKind classifies the semantic meaning of a binding.
type BindingKind uint8

const (
	BindingInvalid BindingKind = iota
	BindingValue
	BindingFunction
	BindingExternFn
	BindingExternVar
	BindingType
	BindingParam
	BindingForVar
	BindingImport
	BindingBuiltin
)

func (k BindingKind) String() string {
	switch k {
	case BindingValue:
		return "let"
	case BindingFunction:
		return "function"
	case BindingExternFn:
		return "extern function"
	case BindingExternVar:
		return "extern variable"
	case BindingType:
		return "type"
	case BindingParam:
		return "param"
	case BindingForVar:
		return "loop variable"
	case BindingImport:
		return "import"
	case BindingBuiltin:
		return "builtin"
	default:
		return "invalid"
	}
}

// FromAST maps a declaration form to the kind of binding it creates.
func FromAST(k ast.BindingKind) BindingKind {
	switch k {
	case ast.BindFunction:
		return BindingFunction
	case ast.BindExternFn:
		return BindingExternFn
	case ast.BindExternVar:
		return BindingExternVar
	case ast.BindType:
		return BindingType
	default:
		return BindingValue
	}
}

// BindingInfo describes one declared name. Entries are created once and
// never removed.
type BindingInfo struct {
	Module     uint32
	Name       string
	Visibility ast.Visibility
	Ty         types.Ty
	Const      *ConstValue
	Mutable    bool
	Kind       BindingKind
	// Level is the scope depth: 0 for module globals.
	Level int
	// FnDepth is how many function bodies enclose the declaration.
	FnDepth   int
	ScopeName string
	Span      source.Span
	Uses      int
}

// IsGlobal reports a module-level binding.
func (b *BindingInfo) IsGlobal() bool { return b.Level == 0 }
