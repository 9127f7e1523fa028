package symbols

import "kiln/internal/ast"

// ScopeID identifies a scope in the table arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// BindingID identifies a BindingInfo. It is the id the AST stores in
// identifiers and patterns.
type BindingID = ast.BindingID

// NoBindingID is the unresolved sentinel.
const NoBindingID = ast.UnresolvedBinding
