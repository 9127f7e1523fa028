package sema

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

type declState uint8

const (
	declPending declState = iota
	declActive
	declDone
)

type moduleState struct {
	Module
	exprs *ast.Exprs
	pats  *ast.Patterns
	items []ast.ExprID
	// decls maps a top-level name to the declarations introducing it.
	decls     map[string][]ast.ExprID
	wildcards []ast.ExprID
	state     map[ast.ExprID]declState
}

func newModuleState(m Module) *moduleState {
	ms := &moduleState{
		Module: m,
		exprs:  m.Builder.Exprs,
		pats:   m.Builder.Patterns,
		items:  m.Builder.Files.Get(m.File).Items,
		decls:  make(map[string][]ast.ExprID),
		state:  make(map[ast.ExprID]declState),
	}
	for _, item := range ms.items {
		switch ms.exprs.Kind(item) {
		case ast.ExprBinding:
			d, _ := ms.exprs.Binding(item)
			pat := ms.pats.Get(d.Pattern)
			if pat == nil {
				continue
			}
			for _, sym := range pat.Symbols() {
				if !sym.Ignore {
					ms.decls[sym.LocalName()] = append(ms.decls[sym.LocalName()], item)
				}
			}
		case ast.ExprUse:
			d, _ := ms.exprs.Use(item)
			if d.Wildcard {
				ms.wildcards = append(ms.wildcards, item)
				continue
			}
			ms.decls[d.Alias.Name] = append(ms.decls[d.Alias.Name], item)
		}
	}
	return ms
}

type fnFrame struct {
	ret     types.Ty
	retSpan source.Span
	// explicit: the return type was written down, so it can be pointed at.
	explicit bool
}

// frame is the walker state of one top-level declaration. Checking another
// declaration on demand swaps in a fresh frame.
type frame struct {
	mod      *moduleState
	env      *symbols.Env
	fns      []fnFrame
	loops    int
	failed   bool
	declSpan source.Span
	tys      []types.Ty
	inits    initSet
}

func (c *checker) checkDecl(m *moduleState, decl ast.ExprID) {
	if m.state[decl] != declPending {
		return
	}
	m.state[decl] = declActive
	saved := c.cur
	c.cur = &frame{
		mod:      m,
		env:      symbols.NewEnv(c.table, m.ID, m.Info.Name),
		declSpan: m.exprs.Span(decl),
		inits:    initSet{},
	}

	switch m.exprs.Kind(decl) {
	case ast.ExprBinding:
		c.checkBinding(decl)
	case ast.ExprUse:
		c.checkUse(decl)
	default:
		c.checkExpr(decl, types.NoTy)
	}
	if c.cur.failed {
		c.declareUnknown(decl)
	}
	for _, ty := range c.cur.tys {
		c.tycx.ApplyDefaults(ty)
	}

	m.state[decl] = declDone
	c.cur = saved
}

// declareUnknown binds the names a failed declaration never got to, so
// that other declarations do not report them as missing.
func (c *checker) declareUnknown(decl ast.ExprID) {
	m := c.cur.mod
	if m.exprs.Kind(decl) != ast.ExprBinding {
		return
	}
	d, _ := m.exprs.Binding(decl)
	pat := m.pats.Get(d.Pattern)
	if pat == nil {
		return
	}
	for _, sym := range pat.Symbols() {
		if sym.Ignore {
			continue
		}
		if _, ok := c.table.Global(m.ID, sym.LocalName()); ok {
			continue
		}
		c.binder.BindSymbolPattern(c.cur.env, sym, d.Visibility, c.bound(types.Unknown(), sym.Span), nil, symbols.FromAST(d.Kind))
	}
}

func (c *checker) checkAllDecls(m *moduleState) {
	for _, item := range m.items {
		c.checkDecl(m, item)
	}
}

type lookupResult uint8

const (
	lookupFound lookupResult = iota
	lookupMissing
	// lookupCycle: reported already.
	lookupCycle
)

// topLevel finds a global of m, checking its declaration first if needed.
func (c *checker) topLevel(m *moduleState, name string, at source.Span) (symbols.BindingID, lookupResult) {
	if id, ok := c.table.Global(m.ID, name); ok {
		return id, lookupFound
	}
	for _, decl := range m.decls[name] {
		if m.state[decl] == declActive {
			diag.ReportError(c.reporter, diag.SemaCyclicDeclaration, at, fmt.Sprintf("`%s` refers to itself", name)).
				WithNote(m.exprs.Span(decl), fmt.Sprintf("`%s` is declared here", name)).
				Emit()
			return symbols.NoBindingID, lookupCycle
		}
		c.checkDecl(m, decl)
		if id, ok := c.table.Global(m.ID, name); ok {
			return id, lookupFound
		}
	}
	for _, w := range m.wildcards {
		c.checkDecl(m, w)
		if id, ok := c.table.Global(m.ID, name); ok {
			return id, lookupFound
		}
	}
	return symbols.NoBindingID, lookupMissing
}

// CheckTopLevel implements symbols.TopLevelChecker: a symbol of another
// module must be public.
func (c *checker) CheckTopLevel(caller symbols.CallerInfo, module uint32, name string) (symbols.BindingID, bool) {
	m, ok := c.byID[module]
	if !ok {
		return symbols.NoBindingID, false
	}
	id, res := c.topLevel(m, name, caller.Span)
	switch res {
	case lookupCycle:
		return symbols.NoBindingID, false
	case lookupMissing:
		diag.ReportError(c.reporter, diag.SemaUnresolvedSymbol, caller.Span,
			fmt.Sprintf("cannot find `%s` in module `%s`", name, m.Info.Name)).Emit()
		return symbols.NoBindingID, false
	}
	info := c.table.Get(id)
	if caller.Module != module && info.Visibility != ast.Public {
		diag.ReportError(c.reporter, diag.SemaPrivateSymbol, caller.Span, fmt.Sprintf("`%s` is private", name)).
			WithNote(info.Span, fmt.Sprintf("`%s` is defined here", name)).
			Emit()
		return symbols.NoBindingID, false
	}
	return id, true
}

// lookupValue resolves a name used in the current declaration: locals
// first, then globals of the module, then builtins.
func (c *checker) lookupValue(name string, at source.Span) (symbols.BindingID, bool) {
	if id, ok := c.cur.env.LookupLocal(name); ok {
		return id, true
	}
	id, res := c.topLevel(c.cur.mod, name, at)
	switch res {
	case lookupFound:
		return id, true
	case lookupCycle:
		return symbols.NoBindingID, false
	}
	if id, ok := c.cur.env.LookupPrelude(name); ok {
		return id, true
	}
	diag.ReportError(c.reporter, diag.SemaUnresolvedSymbol, at, fmt.Sprintf("cannot find value `%s` in this scope", name)).
		WithLabel("not found in this scope").
		Emit()
	return symbols.NoBindingID, false
}

func (c *checker) moduleFor(info ast.ModuleInfo) (*moduleState, bool) {
	if info.IsZero() && info.Name == "" {
		return nil, false
	}
	m, ok := c.byKey[moduleKey(info)]
	return m, ok
}

// checkBinding handles every declaration form, at global or local level.
func (c *checker) checkBinding(id ast.ExprID) types.Ty {
	m := c.cur.mod
	d, _ := m.exprs.Binding(id)
	pat := m.pats.Get(d.Pattern)
	if pat == nil {
		internalf("binding %d has no pattern", id)
	}
	switch d.Kind {
	case ast.BindFunction:
		c.checkFnDecl(d, pat)
	case ast.BindExternFn:
		c.checkExternFn(d, pat)
	case ast.BindExternVar:
		ty := c.bound(c.resolveType(d.TypeExpr), pat.Span)
		c.binder.BindPattern(c.cur.env, pat, d.Visibility, ty, nil, symbols.BindingExternVar, c.span(d.TypeExpr))
	case ast.BindType:
		c.checkTypeDecl(d, pat)
	default:
		c.checkLet(d, pat)
	}
	return c.setType(id, c.bound(types.Unit(), c.span(id)))
}

func (c *checker) checkLet(d *ast.ExprBindingData, pat *ast.Pattern) {
	var declared types.Ty
	origin := source.Span{}
	if d.TypeExpr.IsValid() {
		origin = c.span(d.TypeExpr)
		declared = c.bound(c.resolveType(d.TypeExpr), origin)
	}

	ty := declared
	var cv *symbols.ConstValue
	if d.Value.IsValid() {
		valTy := c.checkExpr(d.Value, declared)
		if declared != types.NoTy {
			c.expect(declared, valTy, c.span(d.Value), origin)
		} else {
			ty = valTy
			origin = c.span(d.Value)
		}
		cv = c.constOf(d.Value)
	}
	if ty == types.NoTy {
		ty = c.tycx.FreshVar(pat.Span)
	}

	env := c.cur.env
	c.binder.BindPattern(env, pat, d.Visibility, ty, cv, symbols.BindingValue, origin)
	if !d.Value.IsValid() && !env.IsGlobal() {
		for _, sym := range pat.Symbols() {
			if sym.Binding.IsResolved() {
				c.cur.inits.declare(sym.Binding)
			}
		}
	}
}

func (c *checker) checkFnDecl(d *ast.ExprBindingData, pat *ast.Pattern) {
	fn, ok := c.cur.mod.exprs.Function(d.Value)
	if !ok {
		internalf("function declaration without a function value")
	}
	sig := c.fnSignature(&fn.Sig, "")
	ty := c.setType(d.Value, c.bound(sig, fn.Sig.Span))
	// имя видно до тела: рекурсия
	c.binder.BindSymbolPattern(c.cur.env, &pat.Symbol, d.Visibility, ty, nil, symbols.BindingFunction)
	c.checkFnBody(fn, sig)
}

func (c *checker) checkExternFn(d *ast.ExprBindingData, pat *ast.Pattern) {
	fn, ok := c.cur.mod.exprs.Function(d.TypeExpr)
	if !ok {
		internalf("extern function without a signature")
	}
	sig := c.fnSignature(&fn.Sig, d.Lib)
	ty := c.setType(d.TypeExpr, c.bound(sig, fn.Sig.Span))
	c.binder.BindSymbolPattern(c.cur.env, &pat.Symbol, d.Visibility, ty, nil, symbols.BindingExternFn)
}

// checkTypeDecl binds the name before resolving the right-hand side, so a
// struct may point to itself. The alias is a variable bound to the result.
func (c *checker) checkTypeDecl(d *ast.ExprBindingData, pat *ast.Pattern) {
	self := c.tycx.FreshVar(pat.Span)
	ty := c.bound(types.MakeType(types.VarOf(self)), pat.Span)
	if !c.binder.BindSymbolPattern(c.cur.env, &pat.Symbol, d.Visibility, ty, nil, symbols.BindingType) {
		return
	}
	if st, ok := c.cur.mod.exprs.StructType(d.Value); ok {
		st.Binding = pat.Symbol.Binding
	}
	inner := c.resolveType(d.Value)
	if err := c.tycx.Unify(types.VarOf(self), inner); err != nil {
		types.ReportUnify(c.reporter, c.tycx, err, types.VarOf(self), inner, c.span(d.Value), pat.Span)
	}
}

// checkUse binds one leaf of a `use` tree.
func (c *checker) checkUse(id ast.ExprID) {
	m := c.cur.mod
	d, _ := m.exprs.Use(id)
	env := c.cur.env
	target, ok := c.moduleFor(d.Module)
	if !ok {
		// модуль не найден: парсер уже сообщил
		if !d.Wildcard {
			d.Binding, _ = c.binder.BindSymbol(env, symbols.Symbol{
				Name: d.Alias.Name, Visibility: d.Visibility, Ty: c.bound(types.Unknown(), d.Alias.Span),
				Kind: symbols.BindingImport, Span: d.Alias.Span,
			})
		}
		return
	}

	mod := target
	var found symbols.BindingID
	for i, seg := range d.Path {
		bid, ok := c.CheckTopLevel(symbols.CallerInfo{Module: m.ID, Span: seg.Span}, mod.ID, seg.Name)
		if !ok {
			if !d.Wildcard {
				c.bindUseUnknown(d)
			}
			return
		}
		c.table.IncUse(bid)
		found = bid
		if i == len(d.Path)-1 && !d.Wildcard {
			break
		}
		k := c.tycx.Kind(c.table.Get(bid).Ty)
		next, isModule := c.byID[k.Module]
		if k.Kind != types.KindModule || !isModule {
			diag.ReportError(c.reporter, diag.SemaUnresolvedSymbol, seg.Span, fmt.Sprintf("`%s` is not a module", seg.Name)).Emit()
			if !d.Wildcard {
				c.bindUseUnknown(d)
			}
			return
		}
		mod = next
	}

	if d.Wildcard {
		c.checkAllDecls(mod)
		for _, exp := range c.table.Exports(mod.ID) {
			if _, taken := c.table.Global(m.ID, exp.Name); taken {
				continue
			}
			info := c.table.Get(exp.Binding)
			alias, _ := c.binder.BindSymbol(env, symbols.Symbol{
				Name: exp.Name, Visibility: d.Visibility, Ty: info.Ty, Const: info.Const,
				Kind: symbols.BindingImport, Span: d.Alias.Span,
			})
			c.table.Redirect(alias, exp.Binding)
		}
		return
	}

	if len(d.Path) == 0 {
		d.Binding, _ = c.binder.BindSymbol(env, symbols.Symbol{
			Name: d.Alias.Name, Visibility: d.Visibility, Ty: c.bound(types.MakeModule(mod.ID), d.Alias.Span),
			Kind: symbols.BindingImport, Span: d.Alias.Span,
		})
		return
	}
	info := c.table.Get(found)
	alias, ok := c.binder.BindSymbol(env, symbols.Symbol{
		Name: d.Alias.Name, Visibility: d.Visibility, Ty: info.Ty, Const: info.Const,
		Kind: symbols.BindingImport, Span: d.Alias.Span,
	})
	d.Binding = alias
	if ok {
		c.table.Redirect(alias, found)
	}
}

func (c *checker) bindUseUnknown(d *ast.ExprUseData) {
	d.Binding, _ = c.binder.BindSymbol(c.cur.env, symbols.Symbol{
		Name: d.Alias.Name, Visibility: d.Visibility, Ty: c.bound(types.Unknown(), d.Alias.Span),
		Kind: symbols.BindingImport, Span: d.Alias.Span,
	})
}
