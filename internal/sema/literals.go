package sema

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

// hintKind returns the normalized hint, or Unknown when there is none.
func (c *checker) hintKind(hint types.Ty) types.TyKind {
	if hint == types.NoTy {
		return types.Unknown()
	}
	return c.tycx.Kind(hint)
}

func (c *checker) checkArrayLit(id ast.ExprID, hint types.Ty) types.Ty {
	d, _ := c.cur.mod.exprs.ArrayLit(id)
	at := c.span(id)

	var elem types.Ty
	if h := c.hintKind(hint); h.Kind == types.KindArray {
		elem = c.bound(*h.Elem, at)
	} else {
		elem = c.tycx.FreshVar(at)
	}

	if d.Len.IsValid() {
		fill := c.checkExpr(d.Fill, elem)
		c.expect(elem, fill, c.span(d.Fill), source.Span{})
		n, ok := c.constLen(d.Len)
		if !ok {
			return c.unknown(id)
		}
		return c.setType(id, c.bound(types.MakeArray(types.VarOf(elem), n), at))
	}

	var first source.Span
	for i, e := range d.Elems {
		ty := c.checkExpr(e, elem)
		origin := source.Span{}
		if i > 0 {
			origin = first
		}
		c.expect(elem, ty, c.span(e), origin)
		if i == 0 {
			first = c.span(e)
		}
	}
	c.foldAggregate(id, d.Elems)
	return c.setType(id, c.bound(types.MakeArray(types.VarOf(elem), uint64(len(d.Elems))), at))
}

func (c *checker) checkTupleLit(id ast.ExprID, hint types.Ty) types.Ty {
	d, _ := c.cur.mod.exprs.TupleLit(id)
	at := c.span(id)
	if len(d.Elems) == 0 {
		return c.setType(id, c.bound(types.Unit(), at))
	}
	h := c.hintKind(hint)
	elems := make([]types.TyKind, len(d.Elems))
	for i, e := range d.Elems {
		eh := types.NoTy
		if h.Kind == types.KindTuple && i < len(h.Elems) {
			eh = c.bound(h.Elems[i], at)
		}
		elems[i] = types.VarOf(c.checkExpr(e, eh))
	}
	c.foldAggregate(id, d.Elems)
	return c.setType(id, c.bound(types.MakeTuple(elems...), at))
}

// checkStructLit types `T { ... }` against T, and `.{ ... }` against the
// struct the context expects or, without one, an anonymous struct built from
// the fields.
func (c *checker) checkStructLit(id ast.ExprID, hint types.Ty) types.Ty {
	d, _ := c.cur.mod.exprs.StructLit(id)
	at := c.span(id)

	var target types.TyKind
	switch {
	case d.Type.IsValid():
		target = c.tycx.Normalize(c.resolveType(d.Type))
		switch target.Kind {
		case types.KindStruct:
		case types.KindUnknown, types.KindNever:
			c.checkFieldsLoose(d)
			return c.unknown(id)
		default:
			diag.ReportError(c.reporter, diag.SemaNotAType, c.span(d.Type),
				fmt.Sprintf("`%s` is not a struct type", c.tycx.Display(target))).Emit()
			c.checkFieldsLoose(d)
			return c.unknown(id)
		}
	default:
		if h := c.hintKind(hint); h.Kind == types.KindStruct {
			target = h
		} else {
			return c.anonStructLit(id, d)
		}
	}

	st := target.Struct
	seen := make(map[string]source.Span, len(d.Fields))
	for _, f := range d.Fields {
		if prev, dup := seen[f.Name]; dup {
			diag.ReportError(c.reporter, diag.SemaDuplicateField, f.Span,
				fmt.Sprintf("field `%s` is specified more than once", f.Name)).
				WithNote(prev, "first specified here").
				Emit()
			c.checkExpr(f.Value, types.NoTy)
			continue
		}
		seen[f.Name] = f.Span
		field, ok := st.Field(f.Name)
		if !ok {
			diag.ReportError(c.reporter, diag.SemaNoField, f.Span,
				fmt.Sprintf("no field `%s` on type `%s`", f.Name, c.tycx.Display(target))).Emit()
			c.checkExpr(f.Value, types.NoTy)
			continue
		}
		want := c.bound(field.Ty, f.Span)
		got := c.checkExpr(f.Value, want)
		c.expect(want, got, c.span(f.Value), source.Span{})
	}
	if st.Kind != types.StructUnion {
		for _, field := range st.Fields {
			if _, ok := seen[field.Name]; !ok {
				diag.ReportError(c.reporter, diag.SemaMissingField, at,
					fmt.Sprintf("missing field `%s` in struct literal", field.Name)).Emit()
			}
		}
	}
	c.foldStruct(id, d)
	return c.setType(id, c.bound(target, at))
}

func (c *checker) anonStructLit(id ast.ExprID, d *ast.ExprStructLitData) types.Ty {
	st := types.StructTy{Fields: make([]types.StructField, 0, len(d.Fields))}
	seen := make(map[string]source.Span, len(d.Fields))
	for _, f := range d.Fields {
		ty := c.checkExpr(f.Value, types.NoTy)
		if prev, dup := seen[f.Name]; dup {
			diag.ReportError(c.reporter, diag.SemaDuplicateField, f.Span,
				fmt.Sprintf("field `%s` is specified more than once", f.Name)).
				WithNote(prev, "first specified here").
				Emit()
			continue
		}
		seen[f.Name] = f.Span
		st.Fields = append(st.Fields, types.StructField{Name: f.Name, Ty: types.VarOf(ty)})
	}
	c.foldStruct(id, d)
	return c.setType(id, c.bound(types.MakeStruct(st), c.span(id)))
}

func (c *checker) checkFieldsLoose(d *ast.ExprStructLitData) {
	for _, f := range d.Fields {
		c.checkExpr(f.Value, types.NoTy)
	}
}

// constLen evaluates an array length: a non-negative integer constant.
func (c *checker) constLen(id ast.ExprID) (uint64, bool) {
	k := c.tycx.Kind(c.checkExpr(id, types.NoTy))
	switch k.Kind {
	case types.KindUnknown, types.KindNever:
		return 0, false
	}
	if !types.FamilyIntegral.Accepts(k) {
		diag.ReportError(c.reporter, diag.SemaTypeMismatch, c.span(id),
			fmt.Sprintf("array length must be an integer, found `%s`", c.tycx.Display(k))).Emit()
		return 0, false
	}
	cv := c.constOf(id)
	if cv == nil || cv.Kind != symbols.ConstInt {
		diag.ReportError(c.reporter, diag.SemaNotConst, c.span(id),
			"array length must be a compile-time constant").Emit()
		return 0, false
	}
	if cv.Int < 0 {
		diag.ReportError(c.reporter, diag.SemaNotConst, c.span(id),
			fmt.Sprintf("array length cannot be negative, found %d", cv.Int)).Emit()
		return 0, false
	}
	return uint64(cv.Int), true
}
