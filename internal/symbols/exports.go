package symbols

import (
	"sort"

	"kiln/internal/ast"
)

// ExportedSymbol is one public top-level binding of a module.
type ExportedSymbol struct {
	Name    string
	Binding BindingID
	Kind    BindingKind
}

// Exports lists the public globals of module that were bound so far, sorted
// by name. Globals are bound lazily, so callers check the module first.
func (t *Table) Exports(module uint32) []ExportedSymbol {
	scopeID, ok := t.globals[module]
	if !ok {
		return nil
	}
	scope := t.Scopes.Get(scopeID)
	out := make([]ExportedSymbol, 0, len(scope.Symbols))
	for name, id := range scope.Symbols {
		info := t.Get(id)
		if info.Visibility != ast.Public || info.Module != module {
			continue
		}
		out = append(out, ExportedSymbol{Name: name, Binding: id, Kind: info.Kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
