package symbols

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	// ScopeGlobal holds the top-level declarations of one module.
	ScopeGlobal
	// ScopeFunction is the parameter scope of a function body.
	ScopeFunction
	// ScopeLocal is a block, loop body or branch.
	ScopeLocal
	// ScopePrelude holds the builtin names visible everywhere.
	ScopePrelude
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeLocal:
		return "local"
	case ScopePrelude:
		return "prelude"
	default:
		return "invalid"
	}
}

// Scope maps names to bindings. A later insert of the same name wins.
type Scope struct {
	Name    string
	Kind    ScopeKind
	Symbols map[string]BindingID
	Order   []BindingID // в порядке объявления
}

func (s *Scope) insert(name string, id BindingID) {
	s.Symbols[name] = id
	s.Order = append(s.Order, id)
}
