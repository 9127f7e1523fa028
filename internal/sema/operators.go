package sema

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/types"
)

func (c *checker) checkBinary(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Binary(id)
	spec, ok := types.BinarySpecFor(d.Op)
	if !ok {
		internalf("no operator spec for %s", d.Op)
	}
	at := c.span(id)

	if spec.Operand == types.FamilyBool {
		b := c.bound(types.Bool(), at)
		lhs := c.checkExpr(d.Lhs, b)
		rhs := c.checkExpr(d.Rhs, b)
		if c.expect(b, lhs, c.span(d.Lhs), source.Span{}) && c.expect(b, rhs, c.span(d.Rhs), source.Span{}) {
			c.foldBinary(id, d)
		}
		return c.setType(id, b)
	}

	lhs := c.checkExpr(d.Lhs, types.NoTy)
	var rhs types.Ty
	result := lhs
	if spec.Flags&types.BinaryFlagSameType != 0 {
		rhs = c.checkExpr(d.Rhs, lhs)
		switch c.widen(lhs, rhs) {
		case types.CoerceToRight:
			result = rhs
		case types.CoerceToLeft:
		default:
			if !c.expect(lhs, rhs, c.span(d.Rhs), c.span(d.Lhs)) {
				return c.unknown(id)
			}
		}
	} else {
		rhs = c.checkExpr(d.Rhs, types.NoTy)
		if !c.operandFits(d.Op.String(), spec.Operand, rhs, d.Rhs) {
			return c.unknown(id)
		}
	}
	if !c.operandFits(d.Op.String(), spec.Operand, lhs, d.Lhs) {
		return c.unknown(id)
	}

	c.checkDivisor(d, result)
	c.foldBinary(id, d)
	if spec.Result == types.BinaryResultBool {
		return c.setType(id, c.bound(types.Bool(), at))
	}
	return c.setType(id, result)
}

// widen picks the wider of two concrete operand types. Open types are left
// to unification.
func (c *checker) widen(lhs, rhs types.Ty) types.Coercion {
	l, r := c.tycx.Kind(lhs), c.tycx.Kind(rhs)
	if l.IsOpen() || r.IsOpen() || !l.IsNumeric() || !r.IsNumeric() {
		return types.NoCoercion
	}
	return c.tycx.Coerce(l, r)
}

func (c *checker) operandFits(op string, mask types.FamilyMask, ty types.Ty, operand ast.ExprID) bool {
	k := c.tycx.Kind(ty)
	if mask.Accepts(k) {
		return true
	}
	diag.ReportError(c.reporter, diag.SemaInvalidOperand, c.span(operand),
		fmt.Sprintf("cannot apply `%s` to a value of type `%s`", op, c.tycx.Display(k))).Emit()
	return false
}

func (c *checker) checkUnary(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Unary(id)
	spec, ok := types.UnarySpecFor(d.Op)
	if !ok {
		internalf("no operator spec for %s", d.Op)
	}
	at := c.span(id)
	operand := c.checkExpr(d.Operand, types.NoTy)

	switch spec.Result {
	case types.UnaryResultReference:
		if d.Mut {
			c.checkMutRef(d.Operand)
		}
		return c.setType(id, c.bound(types.MakePointer(types.VarOf(operand), d.Mut), at))
	case types.UnaryResultDeref:
		return c.setType(id, c.deref(operand, d.Operand))
	}
	if !c.operandFits(d.Op.String(), spec.Operand, operand, d.Operand) {
		return c.unknown(id)
	}
	c.foldUnary(id, d)
	return c.setType(id, operand)
}

func (c *checker) deref(operand types.Ty, expr ast.ExprID) types.Ty {
	at := c.span(expr)
	k := c.tycx.Kind(operand)
	switch k.Kind {
	case types.KindPointer, types.KindMultiPointer:
		return c.bound(*k.Elem, at)
	case types.KindVar:
		elem := c.tycx.FreshVar(at)
		if err := c.tycx.Unify(types.MakePointer(types.VarOf(elem), false), k); err != nil {
			types.ReportUnify(c.reporter, c.tycx, err, types.MakePointer(types.VarOf(elem), false), k, at, source.Span{})
		}
		return elem
	case types.KindUnknown, types.KindNever:
		return c.bound(types.Unknown(), at)
	}
	diag.ReportError(c.reporter, diag.SemaInvalidOperand, at,
		fmt.Sprintf("cannot dereference a value of type `%s`", c.tycx.Display(k))).Emit()
	return c.bound(types.Unknown(), at)
}

// checkMutRef rejects `&mut` of a place that cannot be written through.
func (c *checker) checkMutRef(operand ast.ExprID) {
	exprs := c.cur.mod.exprs
	if !isPlace(exprs, operand) || c.placeMutable(operand) {
		return
	}
	if d, ok := exprs.Ident(operand); ok {
		diag.ReportError(c.reporter, diag.SemaMutRefImmutable, c.span(operand),
			fmt.Sprintf("cannot reference immutable value `%s` as mutable", d.Name)).
			WithNote(c.table.Get(c.table.Resolve(d.Binding)).Span, fmt.Sprintf("help: consider making this binding mutable: `mut %s`", d.Name)).
			Emit()
		return
	}
	diag.ReportError(c.reporter, diag.SemaMutRefImmutable, c.span(operand),
		"cannot reference immutable value as mutable").Emit()
}
