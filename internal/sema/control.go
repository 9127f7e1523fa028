package sema

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

// checkFnBody binds the parameters in a new function scope and unifies the
// value the body yields with the return type.
func (c *checker) checkFnBody(fn *ast.ExprFunctionData, sig types.TyKind) {
	if !fn.Body.IsValid() {
		return
	}
	f := c.cur
	scope := f.env.Enter(symbols.ScopeFunction, fn.Sig.Name)

	seen := make(map[string]source.Span, len(fn.Sig.Params))
	for i, p := range fn.Sig.Params {
		pat := f.mod.pats.Get(p.Pattern)
		if pat == nil {
			continue
		}
		for _, sym := range pat.Symbols() {
			if sym.Ignore {
				continue
			}
			name := sym.LocalName()
			if prev, dup := seen[name]; dup {
				diag.ReportError(c.reporter, diag.SemaDuplicateParameter, sym.Span,
					fmt.Sprintf("identifier `%s` is bound more than once in this parameter list", name)).
					WithNote(prev, "first bound here").
					Emit()
			}
			seen[name] = sym.Span
		}
		origin := pat.Span
		if p.Type.IsValid() {
			origin = c.span(p.Type)
		}
		c.binder.BindPattern(f.env, pat, ast.Private, c.bound(sig.Fn.Params[i], pat.Span), nil, symbols.BindingParam, origin)
	}

	frame := fnFrame{retSpan: fn.Sig.Span, explicit: fn.Sig.Ret.IsValid()}
	if frame.explicit {
		frame.retSpan = c.span(fn.Sig.Ret)
	}
	frame.ret = c.bound(sig.Fn.Ret, frame.retSpan)
	loops := f.loops
	f.loops = 0
	f.fns = append(f.fns, frame)

	body := c.checkExpr(fn.Body, frame.ret)
	origin := source.Span{}
	if frame.explicit {
		origin = frame.retSpan
	}
	c.expect(frame.ret, body, c.yieldSpan(fn.Body), origin)

	f.fns = f.fns[:len(f.fns)-1]
	f.loops = loops
	f.env.Leave(scope)
}

// yieldSpan is the span of the expression a block hands out: its trailing
// expression, or the block itself.
func (c *checker) yieldSpan(id ast.ExprID) source.Span {
	exprs := c.cur.mod.exprs
	for {
		d, ok := exprs.Block(id)
		if !ok || !d.Yields || len(d.Stmts) == 0 {
			return c.span(id)
		}
		id = d.Stmts[len(d.Stmts)-1]
	}
}

func (c *checker) checkBlock(id ast.ExprID, hint types.Ty) types.Ty {
	d, _ := c.cur.mod.exprs.Block(id)
	env := c.cur.env
	scope := env.Enter(symbols.ScopeLocal, "")
	var last types.Ty
	diverges := false
	for i, stmt := range d.Stmts {
		h := types.NoTy
		if d.Yields && i == len(d.Stmts)-1 {
			h = hint
		}
		last = c.checkExpr(stmt, h)
		if c.tycx.Kind(last).Kind == types.KindNever {
			diverges = true
		}
	}
	env.Leave(scope)

	switch {
	case d.Yields && len(d.Stmts) > 0:
		return c.setType(id, last)
	case diverges:
		return c.setType(id, c.bound(types.Never(), c.span(id)))
	default:
		return c.setType(id, c.bound(types.Unit(), c.span(id)))
	}
}

func (c *checker) checkCond(cond ast.ExprID) {
	b := c.bound(types.Bool(), c.span(cond))
	c.expect(b, c.checkExpr(cond, b), c.span(cond), source.Span{})
}

func (c *checker) checkIf(id ast.ExprID, hint types.Ty) types.Ty {
	d, _ := c.cur.mod.exprs.If(id)
	c.checkCond(d.Cond)

	before := c.cur.inits.clone()
	then := c.checkExpr(d.Then, hint)
	if !d.Else.IsValid() {
		c.cur.inits = merge(c.cur.inits, before)
		return c.setType(id, c.bound(types.Unit(), c.span(id)))
	}
	afterThen := c.cur.inits
	c.cur.inits = before
	if hint == types.NoTy {
		hint = then
	}
	els := c.checkExpr(d.Else, hint)
	c.cur.inits = merge(afterThen, c.cur.inits)

	if c.tycx.Kind(then).Kind == types.KindNever {
		return c.setType(id, els)
	}
	c.expect(then, els, c.yieldSpan(d.Else), c.yieldSpan(d.Then))
	return c.setType(id, then)
}

func (c *checker) checkWhile(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.While(id)
	c.checkCond(d.Cond)
	before := c.cur.inits.clone()
	c.cur.loops++
	c.checkExpr(d.Body, types.NoTy)
	c.cur.loops--
	c.cur.inits = merge(c.cur.inits, before)
	return c.setType(id, c.bound(types.Unit(), c.span(id)))
}

func (c *checker) checkFor(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.For(id)
	env := c.cur.env

	var iter types.Ty
	if d.End.IsValid() {
		start := c.checkExpr(d.Start, types.NoTy)
		end := c.checkExpr(d.End, start)
		c.expect(start, end, c.span(d.End), c.span(d.Start))
		if k := c.tycx.Kind(start); !types.FamilyIntegral.Accepts(k) {
			diag.ReportError(c.reporter, diag.SemaInvalidOperand, c.span(d.Start),
				fmt.Sprintf("a range needs integer bounds, found `%s`", c.tycx.Display(k))).Emit()
		}
		iter = start
	} else {
		iter = c.elemOf(d.Start)
	}

	scope := env.Enter(symbols.ScopeLocal, "")
	if d.Iter.Name != "" && d.Iter.Name != "_" {
		d.Iter.Binding, _ = c.binder.BindSymbol(env, symbols.Symbol{
			Name: d.Iter.Name, Ty: iter, Kind: symbols.BindingForVar, Span: d.Iter.Span,
		})
	}
	if d.Index.Name != "" && d.Index.Name != "_" {
		d.Index.Binding, _ = c.binder.BindSymbol(env, symbols.Symbol{
			Name: d.Index.Name, Ty: c.bound(types.MakeUint(types.WidthAny), d.Index.Span),
			Kind: symbols.BindingForVar, Span: d.Index.Span,
		})
	}
	before := c.cur.inits.clone()
	c.cur.loops++
	c.checkExpr(d.Body, types.NoTy)
	c.cur.loops--
	c.cur.inits = merge(c.cur.inits, before)
	env.Leave(scope)
	return c.setType(id, c.bound(types.Unit(), c.span(id)))
}

// elemOf is the element type `for x in value` iterates over.
func (c *checker) elemOf(value ast.ExprID) types.Ty {
	at := c.span(value)
	k := c.tycx.Kind(c.checkExpr(value, types.NoTy))
	if k.Kind == types.KindPointer && k.Elem.Kind == types.KindArray {
		k = *k.Elem
	}
	switch k.Kind {
	case types.KindArray, types.KindSlice:
		return c.bound(*k.Elem, at)
	case types.KindUnknown, types.KindNever:
		return c.bound(types.Unknown(), at)
	}
	diag.ReportError(c.reporter, diag.SemaNotIndexable, at,
		fmt.Sprintf("cannot iterate over a value of type `%s`", c.tycx.Display(k))).Emit()
	return c.bound(types.Unknown(), at)
}

func (c *checker) checkLoopControl(id ast.ExprID) types.Ty {
	if c.cur.loops == 0 {
		word := "break"
		if c.cur.mod.exprs.Kind(id) == ast.ExprContinue {
			word = "continue"
		}
		diag.ReportError(c.reporter, diag.SemaBreakOutsideLoop, c.span(id),
			fmt.Sprintf("`%s` outside of a loop", word)).
			WithLabel("cannot `" + word + "` outside of a loop").
			Emit()
	}
	return c.setType(id, c.bound(types.Never(), c.span(id)))
}

func (c *checker) checkReturn(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Return(id)
	at := c.span(id)
	if len(c.cur.fns) == 0 {
		diag.ReportError(c.reporter, diag.SemaReturnOutsideFn, at, "`return` outside of a function").Emit()
		if d.Value.IsValid() {
			c.checkExpr(d.Value, types.NoTy)
		}
		return c.setType(id, c.bound(types.Never(), at))
	}
	fn := c.cur.fns[len(c.cur.fns)-1]
	origin := source.Span{}
	if fn.explicit {
		origin = fn.retSpan
	}
	if d.Value.IsValid() {
		value := c.checkExpr(d.Value, fn.ret)
		c.expect(fn.ret, value, c.span(d.Value), origin)
	} else {
		c.expect(fn.ret, c.bound(types.Unit(), at), at, origin)
	}
	return c.setType(id, c.bound(types.Never(), at))
}
