package ast

import (
	"strings"

	"kiln/internal/source"
)

type PatternKind uint8

const (
	PatSymbol PatternKind = iota
	PatStructUnpack
	PatTupleUnpack
)

// SymbolPattern is `[mut] name [: alias]` or `_` (Ignore).
// В struct-распаковке Name - имя поля, Alias - локальное имя.
type SymbolPattern struct {
	Name    string
	Alias   string
	Mut     bool
	Ignore  bool
	Span    source.Span
	Binding BindingID
}

// LocalName is the name the pattern introduces into scope.
func (s *SymbolPattern) LocalName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

type Pattern struct {
	Kind   PatternKind
	Span   source.Span
	Symbol SymbolPattern   // PatSymbol
	Elems  []SymbolPattern // PatStructUnpack, PatTupleUnpack
}

// Symbols returns every symbol sub-pattern, including the top-level one.
func (p *Pattern) Symbols() []*SymbolPattern {
	if p.Kind == PatSymbol {
		return []*SymbolPattern{&p.Symbol}
	}
	out := make([]*SymbolPattern, 0, len(p.Elems))
	for i := range p.Elems {
		out = append(out, &p.Elems[i])
	}
	return out
}

func (s SymbolPattern) String() string {
	if s.Ignore {
		return "_"
	}
	var sb strings.Builder
	if s.Mut {
		sb.WriteString("mut ")
	}
	sb.WriteString(s.Name)
	if s.Alias != "" {
		sb.WriteString(": ")
		sb.WriteString(s.Alias)
	}
	return sb.String()
}

func (p *Pattern) String() string {
	switch p.Kind {
	case PatStructUnpack, PatTupleUnpack:
		parts := make([]string, 0, len(p.Elems))
		for _, e := range p.Elems {
			parts = append(parts, e.String())
		}
		if p.Kind == PatStructUnpack {
			return "{" + strings.Join(parts, ", ") + "}"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return p.Symbol.String()
	}
}

type Patterns struct {
	Arena *Arena[Pattern]
}

func NewPatterns(capHint uint) *Patterns {
	return &Patterns{Arena: NewArena[Pattern](capHint)}
}

func (p *Patterns) New(pat Pattern) PatternID {
	return PatternID(p.Arena.Allocate(pat))
}

func (p *Patterns) NewSymbol(sym SymbolPattern) PatternID {
	return p.New(Pattern{Kind: PatSymbol, Span: sym.Span, Symbol: sym})
}

func (p *Patterns) Get(id PatternID) *Pattern {
	return p.Arena.Get(uint32(id))
}
