package sema

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

// checkExpr types one expression. hint is the type the context expects, or
// NoTy; it only guides anonymous literals and never replaces a unification.
func (c *checker) checkExpr(id ast.ExprID, hint types.Ty) types.Ty {
	if !id.IsValid() {
		internalf("check of an absent expression")
	}
	exprs := c.cur.mod.exprs
	switch exprs.Kind(id) {
	case ast.ExprError:
		return c.unknown(id)
	case ast.ExprPlaceholder:
		diag.ReportError(c.reporter, diag.SemaInvalidOperand, c.span(id),
			"`_` can only be used on the left-hand side of an assignment").Emit()
		return c.unknown(id)
	case ast.ExprIdent:
		return c.checkIdent(id)
	case ast.ExprLiteral:
		return c.checkLiteral(id)
	case ast.ExprBinding:
		return c.checkBinding(id)
	case ast.ExprUse:
		return c.setType(id, c.bound(types.Unit(), c.span(id)))
	case ast.ExprBuiltin:
		return c.checkBuiltin(id)
	case ast.ExprDefer:
		d, _ := exprs.Defer(id)
		if len(c.cur.fns) == 0 {
			diag.ReportError(c.reporter, diag.SemaReturnOutsideFn, c.span(id), "`defer` outside of a function").Emit()
		}
		c.checkExpr(d.Expr, types.NoTy)
		return c.setType(id, c.bound(types.Unit(), c.span(id)))
	case ast.ExprAssign:
		return c.checkAssign(id)
	case ast.ExprCast:
		return c.checkCast(id)
	case ast.ExprFunction:
		fn, _ := exprs.Function(id)
		sig := c.fnSignature(&fn.Sig, "")
		ty := c.setType(id, c.bound(sig, c.span(id)))
		c.checkFnBody(fn, sig)
		return ty
	case ast.ExprWhile:
		return c.checkWhile(id)
	case ast.ExprFor:
		return c.checkFor(id)
	case ast.ExprBreak, ast.ExprContinue:
		return c.checkLoopControl(id)
	case ast.ExprReturn:
		return c.checkReturn(id)
	case ast.ExprIf:
		return c.checkIf(id, hint)
	case ast.ExprBlock:
		return c.checkBlock(id, hint)
	case ast.ExprBinary:
		return c.checkBinary(id)
	case ast.ExprUnary:
		return c.checkUnary(id)
	case ast.ExprSubscript:
		return c.checkSubscript(id)
	case ast.ExprSlice:
		return c.checkSlice(id)
	case ast.ExprCall:
		return c.checkCall(id)
	case ast.ExprMember:
		return c.checkMember(id)
	case ast.ExprArrayLit:
		return c.checkArrayLit(id, hint)
	case ast.ExprTupleLit:
		return c.checkTupleLit(id, hint)
	case ast.ExprStructLit:
		return c.checkStructLit(id, hint)
	case ast.ExprFnType, ast.ExprPointerType, ast.ExprMultiPointerType, ast.ExprArrayType,
		ast.ExprSliceType, ast.ExprStructType:
		inner := c.typeLiteral(id)
		return c.setType(id, c.bound(types.MakeType(inner), c.span(id)))
	}
	internalf("unexpected expression kind %s", exprs.Kind(id))
	return types.NoTy
}

func (c *checker) checkIdent(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Ident(id)
	at := c.span(id)
	bid, ok := c.lookupValue(d.Name, at)
	if !ok {
		return c.unknown(id)
	}
	d.Binding = bid
	c.table.IncUse(bid)
	info := c.table.Get(c.table.Resolve(bid))
	if c.checkCapture(info, at) {
		c.checkInitialized(bid, info, at)
	}
	c.setConst(id, info.Const)
	return c.setType(id, info.Ty)
}

func (c *checker) checkLiteral(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Literal(id)
	at := c.span(id)
	var ty types.Ty
	switch d.Kind {
	case ast.LitNil:
		ty = c.bound(types.MakePointer(types.VarOf(c.tycx.FreshVar(at)), true), at)
	case ast.LitBool:
		ty = c.bound(types.Bool(), at)
		c.setConst(id, symbols.BoolConst(d.Bool))
	case ast.LitInt:
		ty = c.tycx.AnyInt(at)
		c.setConst(id, intLiteral(d.Int))
	case ast.LitFloat:
		ty = c.tycx.AnyFloat(at)
		c.setConst(id, symbols.FloatConst(d.Float))
	case ast.LitStr:
		ty = c.bound(types.MakeStr(), at)
		c.setConst(id, symbols.StrConst(d.Str))
	case ast.LitChar:
		ty = c.bound(types.MakeUint(types.Width8), at)
		c.setConst(id, intLiteral(d.Int))
	default:
		internalf("unknown literal kind %d", d.Kind)
	}
	return c.setType(id, ty)
}

func (c *checker) checkAssign(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Assign(id)
	lhs := c.checkAssignTarget(d.Lhs)
	rhs := c.checkExpr(d.Rhs, lhs)
	c.expect(lhs, rhs, c.span(d.Rhs), c.span(d.Lhs))
	return c.setType(id, c.bound(types.Unit(), c.span(id)))
}

func (c *checker) checkBuiltin(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Builtin(id)
	at := c.span(id)
	switch d.Kind {
	case ast.BuiltinSizeOf, ast.BuiltinAlignOf:
		t := c.resolveType(d.Arg)
		l, err := c.layout.LayoutOf(t)
		if err == nil {
			v := l.Size
			if d.Kind == ast.BuiltinAlignOf {
				v = l.Align
			}
			c.setConst(id, symbols.IntConst(int64(v)))
		} else if c.tycx.Normalize(t).Kind != types.KindUnknown {
			diag.ReportError(c.reporter, diag.SemaNotConst, c.span(d.Arg), err.Error()).Emit()
		}
		return c.setType(id, c.bound(types.MakeUint(types.WidthAny), at))
	case ast.BuiltinImport:
		if d.Arg.IsValid() {
			c.checkExpr(d.Arg, types.NoTy)
		}
		m, ok := c.moduleFor(d.Module)
		if !ok {
			return c.unknown(id)
		}
		return c.setType(id, c.bound(types.MakeModule(m.ID), at))
	case ast.BuiltinPanic:
		if d.Arg.IsValid() {
			str := c.bound(types.MakeStr(), at)
			arg := c.checkExpr(d.Arg, str)
			c.expect(str, arg, c.span(d.Arg), source.Span{})
		}
		return c.setType(id, c.bound(types.Never(), at))
	}
	internalf("unknown builtin %s", d.Kind)
	return types.NoTy
}

func (c *checker) checkCast(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Cast(id)
	value := c.checkExpr(d.Expr, types.NoTy)
	target := c.resolveType(d.Target)
	to := c.tycx.Normalize(target)
	from := c.tycx.Kind(value)
	if !c.castable(from, to) {
		diag.ReportError(c.reporter, diag.SemaInvalidCast, c.span(id),
			fmt.Sprintf("invalid cast from `%s` to `%s`", c.tycx.Display(from), c.tycx.Display(to))).Emit()
	} else {
		c.foldCast(id, d.Expr, to)
	}
	return c.setType(id, c.bound(target, c.span(id)))
}

func (c *checker) castable(from, to types.TyKind) bool {
	switch {
	case from.Kind == types.KindUnknown || to.Kind == types.KindUnknown:
		return true
	case from.Kind == types.KindNever:
		return true
	case from.Kind == types.KindVar:
		return c.tycx.Unify(to, from) == nil
	case from.IsAnyInt():
		return to.IsNumeric() || to.IsAnyPointer()
	case from.IsAnyFloat():
		return to.IsNumeric()
	case types.Equal(from, to):
		return true
	case from.IsNumeric() && to.IsNumeric():
		return true
	case from.Kind == types.KindBool && to.IsInteger():
		return true
	case from.IsAnyPointer() && to.IsAnyPointer():
		return true
	case from.IsInteger() && to.IsAnyPointer(), from.IsAnyPointer() && to.IsInteger():
		return true
	}
	return c.tycx.Coerce(from, to) == types.CoerceToRight
}
