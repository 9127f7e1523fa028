package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Bindings uint }

// Table is the workspace-wide binding table: every BindingInfo, the global
// scope of each module and the redirects left by import destructuring.
type Table struct {
	Scopes    *Scopes
	Bindings  *Bindings
	globals   map[uint32]ScopeID
	redirects map[BindingID]BindingID
	prelude   ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
func NewTable(h Hints) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	bindCap, err := safecast.Conv[uint32](h.Bindings)
	if err != nil {
		panic(fmt.Errorf("binding capacity overflow: %w", err))
	}
	t := &Table{
		Scopes:    NewScopes(scopeCap),
		Bindings:  NewBindings(bindCap),
		globals:   make(map[uint32]ScopeID),
		redirects: make(map[BindingID]BindingID),
	}
	t.prelude = t.Scopes.New(ScopePrelude, "prelude")
	return t
}

// GlobalScope returns (and creates if needed) the global scope of module.
func (t *Table) GlobalScope(module uint32, name string) ScopeID {
	if scope, ok := t.globals[module]; ok {
		return scope
	}
	scope := t.Scopes.New(ScopeGlobal, name)
	t.globals[module] = scope
	return scope
}

// Global finds a top-level binding of module.
func (t *Table) Global(module uint32, name string) (BindingID, bool) {
	scope, ok := t.globals[module]
	if !ok {
		return NoBindingID, false
	}
	id, ok := t.Scopes.Get(scope).Symbols[name]
	return id, ok
}

// PreludeScope returns the scope with builtin names.
func (t *Table) PreludeScope() *Scope { return t.Scopes.Get(t.prelude) }

// Get returns the binding for id. Unresolved ids are a compiler bug.
func (t *Table) Get(id BindingID) *BindingInfo {
	info := t.Bindings.Get(id)
	if info == nil {
		panic(fmt.Errorf("binding %d is unresolved", id))
	}
	return info
}

// Redirect records that from is an alias of to.
func (t *Table) Redirect(from, to BindingID) {
	if from == to {
		return
	}
	t.redirects[from] = to
}

// Resolve follows redirects to the original binding.
func (t *Table) Resolve(id BindingID) BindingID {
	for {
		next, ok := t.redirects[id]
		if !ok {
			return id
		}
		id = next
	}
}

// IncUse counts one use of id and of the binding it redirects to.
func (t *Table) IncUse(id BindingID) {
	t.Get(id).Uses++
	if target := t.Resolve(id); target != id {
		t.Get(target).Uses++
	}
}

// Unused lists local bindings that were never read. Names starting with
// `_` are skipped.
func (t *Table) Unused() []BindingID {
	var out []BindingID
	for i, b := range t.Bindings.Data() {
		if b.Level == 0 || b.Uses > 0 || b.Name == "" || b.Name[0] == '_' {
			continue
		}
		if b.Kind != BindingValue && b.Kind != BindingParam && b.Kind != BindingForVar {
			continue
		}
		id, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("binding id overflow: %w", err))
		}
		out = append(out, BindingID(id))
	}
	return out
}
