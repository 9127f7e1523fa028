package symbols

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/types"
)

// CallerInfo says who asks for a top-level symbol of another module.
type CallerInfo struct {
	Module uint32
	Span   source.Span
}

// TopLevelChecker checks (if needed) a top-level symbol of a module and
// returns its binding. It reports unknown and private symbols itself.
type TopLevelChecker interface {
	CheckTopLevel(caller CallerInfo, module uint32, name string) (BindingID, bool)
}

// Symbol is everything BindSymbol needs to create a BindingInfo.
type Symbol struct {
	Name       string
	Visibility ast.Visibility
	Ty         types.Ty
	Const      *ConstValue
	Mutable    bool
	Kind       BindingKind
	Span       source.Span
}

// Binder attaches patterns to BindingInfo entries.
type Binder struct {
	Table    *Table
	Tycx     *types.Context
	Reporter diag.Reporter
	TopLevel TopLevelChecker
}

// BindSymbol adds a binding to the innermost scope of env. At global level a
// second binding of the same name in a module is reported with both spans;
// local bindings may shadow freely.
func (b *Binder) BindSymbol(env *Env, s Symbol) (BindingID, bool) {
	if env.IsGlobal() {
		if id, ok := b.Table.Global(env.Module(), s.Name); ok {
			prev := b.Table.Get(id)
			diag.ReportError(b.Reporter, diag.SemaDuplicateSymbol, s.Span,
				fmt.Sprintf("the symbol `%s` is defined multiple times", s.Name)).
				WithLabel(fmt.Sprintf("`%s` redefined here", s.Name)).
				WithNote(prev.Span, fmt.Sprintf("previous definition of `%s` is here", s.Name)).
				Emit()
			return NoBindingID, false
		}
	}
	id := b.Table.Bindings.New(&BindingInfo{
		Module:     env.Module(),
		Name:       s.Name,
		Visibility: s.Visibility,
		Ty:         s.Ty,
		Const:      s.Const,
		Mutable:    s.Mutable,
		Kind:       s.Kind,
		Level:      env.Level(),
		FnDepth:    env.FnDepth(),
		ScopeName:  env.ScopeName(),
		Span:       s.Span,
	})
	env.Insert(s.Name, id)
	return id, true
}

// BindSymbolPattern binds one `[mut] name`. A mutable binding never carries
// a constant value.
func (b *Binder) BindSymbolPattern(env *Env, sym *ast.SymbolPattern, vis ast.Visibility, ty types.Ty, cv *ConstValue, kind BindingKind) bool {
	if sym.Ignore {
		return true
	}
	if sym.Mut {
		cv = nil
	}
	id, ok := b.BindSymbol(env, Symbol{
		Name:       sym.LocalName(),
		Visibility: vis,
		Ty:         ty,
		Const:      cv,
		Mutable:    sym.Mut,
		Kind:       kind,
		Span:       sym.Span,
	})
	sym.Binding = id
	return ok
}

// BindPattern binds every name in pat against a value of type ty. origin is
// where ty came from, used as the secondary span of a mismatch.
func (b *Binder) BindPattern(env *Env, pat *ast.Pattern, vis ast.Visibility, ty types.Ty, cv *ConstValue, kind BindingKind, origin source.Span) bool {
	switch pat.Kind {
	case ast.PatStructUnpack:
		return b.bindStructUnpack(env, pat, vis, ty, cv, kind, origin)
	case ast.PatTupleUnpack:
		return b.bindTupleUnpack(env, pat, vis, ty, cv, kind, origin)
	default:
		return b.BindSymbolPattern(env, &pat.Symbol, vis, ty, cv, kind)
	}
}

func (b *Binder) bindStructUnpack(env *Env, pat *ast.Pattern, vis ast.Visibility, ty types.Ty, cv *ConstValue, kind BindingKind, origin source.Span) bool {
	if k := b.Tycx.Kind(ty); k.Kind == types.KindModule {
		return b.bindModuleUnpack(env, pat, vis, k.Module, kind)
	}

	fields := make([]types.PartialField, len(pat.Elems))
	for i := range pat.Elems {
		fields[i] = types.PartialField{
			Name: pat.Elems[i].Name,
			Ty:   types.VarOf(b.Tycx.FreshVar(pat.Elems[i].Span)),
		}
	}
	partial := b.Tycx.PartialStruct(fields, pat.Span)
	if err := b.Tycx.UnifyTy(ty, partial); err != nil {
		types.ReportUnify(b.Reporter, b.Tycx, err, types.VarOf(ty), types.VarOf(partial), pat.Span, origin)
		b.bindUnknown(env, pat, vis, kind)
		return false
	}

	ok := true
	for i := range pat.Elems {
		sym := &pat.Elems[i]
		fieldTy := b.Tycx.Bound(fields[i].Ty, sym.Span)
		fieldConst, _ := cv.Field(sym.Name)
		ok = b.BindSymbolPattern(env, sym, vis, fieldTy, fieldConst, kind) && ok
	}
	return ok
}

// bindModuleUnpack is `let {a, b: c} = some_module`: each name is a public
// top-level symbol of the module, and the new binding redirects to it.
func (b *Binder) bindModuleUnpack(env *Env, pat *ast.Pattern, vis ast.Visibility, module uint32, kind BindingKind) bool {
	ok := true
	for i := range pat.Elems {
		sym := &pat.Elems[i]
		var target BindingID
		found := false
		if b.TopLevel != nil {
			target, found = b.TopLevel.CheckTopLevel(CallerInfo{Module: env.Module(), Span: sym.Span}, module, sym.Name)
		}
		if !found {
			b.bindUnknownSymbol(env, sym, vis, kind)
			ok = false
			continue
		}
		b.Table.IncUse(target)
		info := b.Table.Get(target)
		if !b.BindSymbolPattern(env, sym, vis, info.Ty, info.Const, kind) {
			ok = false
			continue
		}
		b.Table.Redirect(sym.Binding, target)
	}
	return ok
}

func (b *Binder) bindTupleUnpack(env *Env, pat *ast.Pattern, vis ast.Visibility, ty types.Ty, cv *ConstValue, kind BindingKind, origin source.Span) bool {
	elems := make([]types.TyKind, len(pat.Elems))
	for i := range pat.Elems {
		elems[i] = types.VarOf(b.Tycx.FreshVar(pat.Elems[i].Span))
	}
	partial := b.Tycx.PartialTuple(elems, pat.Span)
	if err := b.Tycx.UnifyTy(ty, partial); err != nil {
		types.ReportUnify(b.Reporter, b.Tycx, err, types.VarOf(ty), types.VarOf(partial), pat.Span, origin)
		b.bindUnknown(env, pat, vis, kind)
		return false
	}

	ok := true
	for i := range pat.Elems {
		sym := &pat.Elems[i]
		elemTy := b.Tycx.Bound(elems[i], sym.Span)
		elemConst, _ := cv.Elem(i)
		ok = b.BindSymbolPattern(env, sym, vis, elemTy, elemConst, kind) && ok
	}
	return ok
}

// bindUnknown still declares the names of a failed pattern so later uses
// do not report them as unresolved.
func (b *Binder) bindUnknown(env *Env, pat *ast.Pattern, vis ast.Visibility, kind BindingKind) {
	for _, sym := range pat.Symbols() {
		b.bindUnknownSymbol(env, sym, vis, kind)
	}
}

func (b *Binder) bindUnknownSymbol(env *Env, sym *ast.SymbolPattern, vis ast.Visibility, kind BindingKind) {
	b.BindSymbolPattern(env, sym, vis, b.Tycx.Bound(types.Unknown(), sym.Span), nil, kind)
}
