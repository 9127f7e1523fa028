package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and returns its ID.
func (s *Scopes) New(kind ScopeKind, name string) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	s.data = append(s.data, Scope{
		Name:    name,
		Kind:    kind,
		Symbols: make(map[string]BindingID),
	})
	return ScopeID(value)
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Bindings is the append-only arena of BindingInfo.
type Bindings struct {
	data []BindingInfo
}

// NewBindings creates a binding arena with optional capacity hint.
func NewBindings(capacity uint32) *Bindings {
	if capacity == 0 {
		capacity = 64
	}
	return &Bindings{
		data: make([]BindingInfo, 1, capacity+1), // index 0 is the unresolved sentinel
	}
}

// New allocates a binding in the arena and returns its ID.
func (b *Bindings) New(info *BindingInfo) BindingID {
	if info == nil {
		panic("bindings.New: nil binding")
	}
	value, err := safecast.Conv[uint32](len(b.data))
	if err != nil {
		panic(fmt.Errorf("bindings arena overflow: %w", err))
	}
	b.data = append(b.data, *info)
	return BindingID(value)
}

// Get returns a binding pointer or nil for invalid ID.
func (b *Bindings) Get(id BindingID) *BindingInfo {
	if !id.IsResolved() || int(id) >= len(b.data) {
		return nil
	}
	return &b.data[id]
}

// Len reports number of stored bindings excluding sentinel.
func (b *Bindings) Len() int { return len(b.data) - 1 }

// Data exposes the arena storage without the sentinel.
func (b *Bindings) Data() []BindingInfo {
	if len(b.data) <= 1 {
		return nil
	}
	return b.data[1:]
}
