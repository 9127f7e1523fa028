package sema

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/types"
)

// resolveType evaluates an expression in type position. Types are values of
// kind Type(T); anything else is reported and yields Unknown.
func (c *checker) resolveType(id ast.ExprID) types.TyKind {
	exprs := c.cur.mod.exprs
	at := c.span(id)
	switch exprs.Kind(id) {
	case ast.ExprPlaceholder:
		v := types.VarOf(c.tycx.FreshVar(at))
		c.setType(id, c.bound(types.MakeType(v), at))
		return v
	case ast.ExprTupleLit:
		d, _ := exprs.TupleLit(id)
		elems := make([]types.TyKind, len(d.Elems))
		for i, e := range d.Elems {
			elems[i] = c.resolveType(e)
		}
		t := types.MakeTuple(elems...)
		c.setType(id, c.bound(types.MakeType(t), at))
		return t
	}

	k := c.tycx.Kind(c.checkExpr(id, types.NoTy))
	if inner, ok := asType(k); ok {
		return inner
	}
	switch k.Kind {
	case types.KindUnknown, types.KindNever:
		return types.Unknown()
	}
	diag.ReportError(c.reporter, diag.SemaNotAType, at,
		fmt.Sprintf("expected a type, found a value of type `%s`", c.tycx.Display(k))).Emit()
	return types.Unknown()
}

// asType reads a value as a type: Type(T) is T, and `()` and tuples of
// types are types too.
func asType(k types.TyKind) (types.TyKind, bool) {
	switch k.Kind {
	case types.KindType:
		return *k.Elem, true
	case types.KindUnit:
		return types.Unit(), true
	case types.KindTuple:
		elems := make([]types.TyKind, len(k.Elems))
		for i, e := range k.Elems {
			inner, ok := asType(e)
			if !ok {
				return types.TyKind{}, false
			}
			elems[i] = inner
		}
		return types.MakeTuple(elems...), true
	}
	return types.TyKind{}, false
}

// typeLiteral builds the type written by a type expression node.
func (c *checker) typeLiteral(id ast.ExprID) types.TyKind {
	exprs := c.cur.mod.exprs
	switch exprs.Kind(id) {
	case ast.ExprPointerType:
		d, _ := exprs.TypeRef(id)
		return types.MakePointer(c.resolveType(d.Inner), d.Mut)
	case ast.ExprMultiPointerType:
		d, _ := exprs.TypeRef(id)
		return types.MakeMultiPointer(c.resolveType(d.Inner), d.Mut)
	case ast.ExprSliceType:
		d, _ := exprs.TypeRef(id)
		return types.MakeSlice(c.resolveType(d.Inner), d.Mut)
	case ast.ExprArrayType:
		d, _ := exprs.ArrayType(id)
		elem := c.resolveType(d.Inner)
		n, ok := c.constLen(d.Size)
		if !ok {
			return types.Unknown()
		}
		return types.MakeArray(elem, n)
	case ast.ExprFnType:
		d, _ := exprs.Function(id)
		return c.fnSignature(&d.Sig, "")
	case ast.ExprStructType:
		return c.structType(id)
	}
	internalf("%s is not a type expression", exprs.Kind(id))
	return types.Unknown()
}

func (c *checker) structType(id ast.ExprID) types.TyKind {
	d, _ := c.cur.mod.exprs.StructType(id)
	st := types.StructTy{
		Name:    d.Name,
		Binding: uint32(d.Binding),
		Fields:  make([]types.StructField, 0, len(d.Fields)),
	}
	switch d.Kind {
	case ast.StructPacked:
		st.Kind = types.StructPacked
	case ast.StructUnion:
		st.Kind = types.StructUnion
	default:
		st.Kind = types.StructPlain
	}
	seen := make(map[string]source.Span, len(d.Fields))
	for _, f := range d.Fields {
		ty := c.resolveType(f.Type)
		if prev, dup := seen[f.Name]; dup {
			diag.ReportError(c.reporter, diag.SemaDuplicateField, f.Span,
				fmt.Sprintf("field `%s` is already declared", f.Name)).
				WithNote(prev, fmt.Sprintf("`%s` first declared here", f.Name)).
				Emit()
			continue
		}
		seen[f.Name] = f.Span
		st.Fields = append(st.Fields, types.StructField{Name: f.Name, Ty: ty})
	}
	return types.MakeStruct(st)
}

// fnSignature resolves parameter and return types. A parameter without a
// type gets a fresh variable that the body fixes.
func (c *checker) fnSignature(sig *ast.FnSig, lib string) types.TyKind {
	params := make([]types.TyKind, len(sig.Params))
	names := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		if p.Type.IsValid() {
			params[i] = c.resolveType(p.Type)
		} else {
			params[i] = types.VarOf(c.tycx.FreshVar(sig.Span))
		}
		if pat := c.cur.mod.pats.Get(p.Pattern); pat != nil && pat.Kind == ast.PatSymbol && !pat.Symbol.Ignore {
			names[i] = pat.Symbol.Name
		}
	}
	ret := types.Unit()
	if sig.Ret.IsValid() {
		ret = c.resolveType(sig.Ret)
	}
	return types.MakeDeclFn(params, names, ret, sig.Variadic, lib)
}
