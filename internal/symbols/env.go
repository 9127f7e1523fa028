package symbols

import "fmt"

// Env is the scope stack of one walk over a module. An empty stack means
// declarations go to the module's global scope.
type Env struct {
	table   *Table
	module  uint32
	name    string
	stack   []ScopeID
	fnDepth int
}

// NewEnv starts at the global level of module.
func NewEnv(table *Table, module uint32, name string) *Env {
	table.GlobalScope(module, name)
	return &Env{table: table, module: module, name: name, stack: make([]ScopeID, 0, 8)}
}

func (e *Env) Module() uint32     { return e.module }
func (e *Env) ModuleName() string { return e.name }
func (e *Env) Table() *Table      { return e.table }

// Level is the scope depth; 0 is the global level.
func (e *Env) Level() int { return len(e.stack) }

// IsGlobal reports whether declarations go to the module's global scope.
func (e *Env) IsGlobal() bool { return len(e.stack) == 0 }

// FnDepth is the number of enclosing function scopes.
func (e *Env) FnDepth() int { return e.fnDepth }

// Enter pushes a new scope and returns its ID.
func (e *Env) Enter(kind ScopeKind, name string) ScopeID {
	if name == "" {
		name = e.ScopeName()
	}
	scope := e.table.Scopes.New(kind, name)
	e.stack = append(e.stack, scope)
	if kind == ScopeFunction {
		e.fnDepth++
	}
	return scope
}

// Leave pops the current scope. Popping anything but expected is a bug in
// the walker.
func (e *Env) Leave(expected ScopeID) {
	if len(e.stack) == 0 {
		panic(fmt.Errorf("leave of scope %d with empty stack", expected))
	}
	top := e.stack[len(e.stack)-1]
	if top != expected {
		panic(fmt.Errorf("scope mismatch: leaving %d, top is %d", expected, top))
	}
	e.stack = e.stack[:len(e.stack)-1]
	if e.table.Scopes.Get(top).Kind == ScopeFunction {
		e.fnDepth--
	}
}

// ScopeName names the innermost scope, or the module at global level.
func (e *Env) ScopeName() string {
	if len(e.stack) == 0 {
		return e.name
	}
	return e.table.Scopes.Get(e.stack[len(e.stack)-1]).Name
}

// Insert puts id into the innermost scope.
func (e *Env) Insert(name string, id BindingID) {
	var scope ScopeID
	if len(e.stack) == 0 {
		scope = e.table.GlobalScope(e.module, e.name)
	} else {
		scope = e.stack[len(e.stack)-1]
	}
	e.table.Scopes.Get(scope).insert(name, id)
}

// LookupLocal searches the local scopes only, innermost first.
func (e *Env) LookupLocal(name string) (BindingID, bool) {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if id, ok := e.table.Scopes.Get(e.stack[i]).Symbols[name]; ok {
			return id, true
		}
	}
	return NoBindingID, false
}

// LookupPrelude searches the builtin names.
func (e *Env) LookupPrelude(name string) (BindingID, bool) {
	id, ok := e.table.PreludeScope().Symbols[name]
	return id, ok
}
