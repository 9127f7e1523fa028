package sema

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

type initState uint8

const (
	// initNone: declared without a value and never assigned on any path.
	initNone initState = iota + 1
	// initMaybe: assigned on some paths only.
	initMaybe
	initDone
)

// initSet tracks locals declared without a value. Bindings that are not in
// the set are initialized.
type initSet map[symbols.BindingID]initState

func (s initSet) declare(id symbols.BindingID) { s[id] = initNone }

func (s initSet) get(id symbols.BindingID) initState {
	if st, ok := s[id]; ok {
		return st
	}
	return initDone
}

func (s initSet) clone() initSet {
	out := make(initSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// merge joins the states of two control-flow paths.
func merge(a, b initSet) initSet {
	out := make(initSet, len(a))
	for id, sa := range a {
		sb := b.get(id)
		if sa == sb {
			out[id] = sa
		} else {
			out[id] = initMaybe
		}
	}
	return out
}

func isValueBinding(k symbols.BindingKind) bool {
	return k == symbols.BindingValue || k == symbols.BindingParam || k == symbols.BindingForVar
}

// checkCapture rejects reading a local of an enclosing function.
func (c *checker) checkCapture(info *symbols.BindingInfo, at source.Span) bool {
	if info.IsGlobal() || !isValueBinding(info.Kind) || info.FnDepth >= c.cur.env.FnDepth() {
		return true
	}
	diag.ReportError(c.reporter, diag.SemaIllegalCapture, at,
		fmt.Sprintf("cannot capture `%s` from an enclosing function", info.Name)).
		WithNote(info.Span, fmt.Sprintf("`%s` is declared here", info.Name)).
		Emit()
	return false
}

func (c *checker) checkInitialized(id symbols.BindingID, info *symbols.BindingInfo, at source.Span) {
	if c.cur.inits.get(id) == initDone {
		return
	}
	diag.ReportError(c.reporter, diag.SemaUninitialized, at,
		fmt.Sprintf("use of possibly uninitialized value `%s`", info.Name)).
		WithNote(info.Span, fmt.Sprintf("`%s` is declared here without a value", info.Name)).
		Emit()
}

// checkAssignTarget checks the left-hand side of `=` and returns its type.
func (c *checker) checkAssignTarget(lhs ast.ExprID) types.Ty {
	exprs := c.cur.mod.exprs
	switch exprs.Kind(lhs) {
	case ast.ExprPlaceholder:
		return c.setType(lhs, c.tycx.FreshVar(c.span(lhs)))
	case ast.ExprIdent:
		return c.assignIdent(lhs)
	case ast.ExprMember, ast.ExprSubscript, ast.ExprUnary:
		if exprs.Kind(lhs) == ast.ExprUnary {
			if d, _ := exprs.Unary(lhs); d.Op != ast.UnDeref {
				break
			}
		}
		ty := c.checkExpr(lhs, types.NoTy)
		if !c.placeMutable(lhs) {
			diag.ReportError(c.reporter, diag.SemaAssignImmutable, c.span(lhs), "cannot assign to immutable value").
				WithLabel("cannot assign").
				Emit()
		}
		return ty
	}
	c.checkExpr(lhs, types.NoTy)
	diag.ReportError(c.reporter, diag.SemaInvalidOperand, c.span(lhs), "invalid left-hand side of assignment").Emit()
	return c.unknown(lhs)
}

func (c *checker) assignIdent(lhs ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Ident(lhs)
	at := c.span(lhs)
	id, ok := c.lookupValue(d.Name, at)
	if !ok {
		return c.unknown(lhs)
	}
	d.Binding = id
	info := c.table.Get(c.table.Resolve(id))
	c.checkCapture(info, at)

	state := c.cur.inits.get(id)
	switch {
	case info.Mutable:
	case !isValueBinding(info.Kind) && info.Kind != symbols.BindingExternVar:
		diag.ReportError(c.reporter, diag.SemaAssignImmutable, at,
			fmt.Sprintf("cannot assign to `%s`, which is a %s", info.Name, info.Kind)).Emit()
	case state == initNone:
	default:
		diag.ReportError(c.reporter, diag.SemaAssignTwice, at,
			fmt.Sprintf("cannot assign twice to immutable variable `%s`", info.Name)).
			WithLabel("cannot assign twice to immutable variable").
			WithNote(info.Span, fmt.Sprintf("help: consider making this binding mutable: `mut %s`", info.Name)).
			Emit()
	}
	if state != initDone {
		c.cur.inits[id] = initDone
	}
	return c.setType(lhs, info.Ty)
}

// placeMutable reports whether a place expression may be written through.
func (c *checker) placeMutable(id ast.ExprID) bool {
	exprs := c.cur.mod.exprs
	switch exprs.Kind(id) {
	case ast.ExprIdent:
		d, _ := exprs.Ident(id)
		if !d.Binding.IsResolved() {
			return true
		}
		return c.table.Get(c.table.Resolve(d.Binding)).Mutable
	case ast.ExprMember:
		d, _ := exprs.Member(id)
		if k := c.typeOfExpr(d.Expr); k.Kind == types.KindPointer {
			return k.Mutable
		}
		return c.placeMutable(d.Expr)
	case ast.ExprSubscript:
		d, _ := exprs.Subscript(id)
		switch k := c.typeOfExpr(d.Expr); k.Kind {
		case types.KindSlice, types.KindMultiPointer, types.KindPointer:
			return k.Mutable
		case types.KindUnknown:
			return true
		default:
			return c.placeMutable(d.Expr)
		}
	case ast.ExprUnary:
		d, _ := exprs.Unary(id)
		if d.Op != ast.UnDeref {
			return false
		}
		k := c.typeOfExpr(d.Operand)
		return k.Kind != types.KindPointer || k.Mutable
	case ast.ExprError:
		return true
	}
	return false
}

func isPlace(exprs *ast.Exprs, id ast.ExprID) bool {
	switch exprs.Kind(id) {
	case ast.ExprIdent, ast.ExprMember, ast.ExprSubscript:
		return true
	case ast.ExprUnary:
		d, _ := exprs.Unary(id)
		return d.Op == ast.UnDeref
	}
	return false
}

// typeOfExpr is the recorded, normalized type of an already checked expression.
func (c *checker) typeOfExpr(id ast.ExprID) types.TyKind {
	ty, ok := c.result.ExprTypes[ExprKey{Module: c.cur.mod.ID, Expr: id}]
	if !ok {
		return types.Unknown()
	}
	return c.tycx.Kind(ty)
}
