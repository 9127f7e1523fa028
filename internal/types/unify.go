package types

import "fmt"

// UnifyErrorKind distinguishes why unification failed.
type UnifyErrorKind uint8

const (
	Mismatch UnifyErrorKind = iota
	Occurs
)

// UnifyError names the innermost pair of shapes that could not be unified.
type UnifyError struct {
	Kind     UnifyErrorKind
	Expected TyKind
	Found    TyKind
}

func (e *UnifyError) Error() string {
	if e.Kind == Occurs {
		return fmt.Sprintf("recursive type: %s occurs in %s", e.Expected, e.Found)
	}
	return fmt.Sprintf("mismatched types: expected %s, found %s", e.Expected, e.Found)
}

func mismatch(expected, found TyKind) error {
	return &UnifyError{Kind: Mismatch, Expected: expected, Found: found}
}

// CanCoerceMut reports whether a value with mutability from may be used
// where mutability to is expected: `*mut T` is accepted as `*T`, not back.
func CanCoerceMut(from, to bool) bool {
	return from == to || (from && !to)
}

// UnifyTy unifies two handles; see Unify.
func (c *Context) UnifyTy(expected, found Ty) error {
	return c.Unify(VarOf(expected), VarOf(found))
}

// Unify makes expected and found equal by binding free variables, or
// returns a *UnifyError. Pointer mutability is directional: found may be
// more mutable than expected. Bindings made before a failure are kept.
func (c *Context) Unify(expected, found TyKind) error {
	expected, found = c.shallow(expected), c.shallow(found)

	switch {
	case expected.Kind == KindVar:
		return c.bindVar(expected.Var, found, expected, false)
	case found.Kind == KindVar:
		return c.bindVar(found.Var, expected, found, true)
	case expected.Kind == KindNever || found.Kind == KindNever:
		return nil
	case expected.Kind == KindUnknown || found.Kind == KindUnknown:
		// уже сообщили об ошибке выше - не плодим каскад
		return nil
	case expected.Kind == KindInfer:
		return c.unifyInfer(expected, found, false)
	case found.Kind == KindInfer:
		return c.unifyInfer(found, expected, true)
	}

	if expected.Kind != found.Kind {
		return mismatch(expected, found)
	}
	switch expected.Kind {
	case KindUnit, KindBool:
		return nil
	case KindInt, KindUint, KindFloat:
		if expected.Width != found.Width {
			return mismatch(expected, found)
		}
		return nil
	case KindPointer, KindMultiPointer, KindSlice:
		if !CanCoerceMut(found.Mutable, expected.Mutable) {
			return mismatch(expected, found)
		}
		return c.Unify(*expected.Elem, *found.Elem)
	case KindArray:
		if expected.Len != found.Len {
			return mismatch(expected, found)
		}
		return c.Unify(*expected.Elem, *found.Elem)
	case KindType:
		return c.Unify(*expected.Elem, *found.Elem)
	case KindModule:
		if expected.Module != found.Module {
			return mismatch(expected, found)
		}
		return nil
	case KindTuple:
		if len(expected.Elems) != len(found.Elems) {
			return mismatch(expected, found)
		}
		return c.unifyList(expected.Elems, found.Elems)
	case KindFn:
		ef, ff := expected.Fn, found.Fn
		if len(ef.Params) != len(ff.Params) || ef.Variadic != ff.Variadic {
			return mismatch(expected, found)
		}
		if err := c.unifyList(ef.Params, ff.Params); err != nil {
			return err
		}
		return c.Unify(ef.Ret, ff.Ret)
	case KindStruct:
		return c.unifyStruct(expected, found)
	}
	return mismatch(expected, found)
}

func (c *Context) unifyList(expected, found []TyKind) error {
	for i := range expected {
		if err := c.Unify(expected[i], found[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) unifyStruct(expected, found TyKind) error {
	es, fs := expected.Struct, found.Struct
	if es.Binding != 0 || fs.Binding != 0 {
		if es.Binding != fs.Binding {
			return mismatch(expected, found)
		}
		return nil
	}
	if es.Kind != fs.Kind || len(es.Fields) != len(fs.Fields) {
		return mismatch(expected, found)
	}
	for i := range es.Fields {
		if es.Fields[i].Name != fs.Fields[i].Name {
			return mismatch(expected, found)
		}
		if err := c.Unify(es.Fields[i].Ty, fs.Fields[i].Ty); err != nil {
			return err
		}
	}
	return nil
}

// orient calls Unify keeping the caller's expected/found order when one
// side was swapped into the first position.
func (c *Context) orient(first, second TyKind, flipped bool) error {
	if flipped {
		return c.Unify(second, first)
	}
	return c.Unify(first, second)
}

func (c *Context) bindVar(v Ty, other, self TyKind, flipped bool) error {
	if other.Kind == KindVar && other.Var == v {
		return nil
	}
	norm := c.Normalize(other)
	if norm.Kind == KindVar && norm.Var == v {
		return nil
	}
	if c.occurs(v, norm) {
		if flipped {
			return &UnifyError{Kind: Occurs, Expected: norm, Found: self}
		}
		return &UnifyError{Kind: Occurs, Expected: self, Found: norm}
	}
	c.Bind(v, norm)
	return nil
}

// unifyInfer handles an unbound Infer on one side. other is never a Var,
// Never or Unknown here.
func (c *Context) unifyInfer(inf, other TyKind, flipped bool) error {
	fail := func() error {
		if flipped {
			return mismatch(other, inf)
		}
		return mismatch(inf, other)
	}
	if other.Kind == KindInfer && other.Var == inf.Var {
		return nil
	}

	switch inf.Infer.Kind {
	case InferAnyInt:
		switch {
		case other.IsNumeric():
			c.Bind(inf.Var, other)
			return nil
		case other.IsAnyInt():
			return nil
		}
		return fail()

	case InferAnyFloat:
		switch {
		case other.Kind == KindFloat:
			c.Bind(inf.Var, other)
			return nil
		case other.IsAnyFloat():
			return nil
		}
		return fail()

	case InferPartialStruct:
		switch {
		case other.Kind == KindStruct:
			for _, pf := range inf.Infer.Fields {
				sf, ok := other.Struct.Field(pf.Name)
				if !ok {
					return fail()
				}
				if err := c.orient(pf.Ty, sf.Ty, flipped); err != nil {
					return err
				}
			}
			return c.bindInfer(inf.Var, other)
		case other.Kind == KindInfer && other.Infer.Kind == InferPartialStruct:
			return c.mergePartialStructs(inf, other, flipped)
		}
		return fail()

	case InferPartialTuple:
		switch {
		case other.Kind == KindTuple:
			if len(other.Elems) < len(inf.Infer.Elems) {
				return fail()
			}
			for i, e := range inf.Infer.Elems {
				if err := c.orient(e, other.Elems[i], flipped); err != nil {
					return err
				}
			}
			return c.bindInfer(inf.Var, other)
		case other.Kind == KindInfer && other.Infer.Kind == InferPartialTuple:
			return c.mergePartialTuples(inf, other, flipped)
		}
		return fail()
	}
	return fail()
}

func (c *Context) bindInfer(v Ty, kind TyKind) error {
	norm := c.Normalize(kind)
	if c.occurs(v, norm) {
		return &UnifyError{Kind: Occurs, Expected: VarOf(v), Found: norm}
	}
	c.Bind(v, norm)
	return nil
}

// mergePartialStructs unifies the common fields and points both partial
// shapes at one new partial holding the union of their fields.
func (c *Context) mergePartialStructs(a, b TyKind, flipped bool) error {
	merged := make([]PartialField, 0, len(a.Infer.Fields)+len(b.Infer.Fields))
	merged = append(merged, a.Infer.Fields...)
	for _, bf := range b.Infer.Fields {
		found := false
		for _, af := range a.Infer.Fields {
			if af.Name != bf.Name {
				continue
			}
			found = true
			if err := c.orient(af.Ty, bf.Ty, flipped); err != nil {
				return err
			}
			break
		}
		if !found {
			merged = append(merged, bf)
		}
	}
	joined := VarOf(c.PartialStruct(merged, c.Span(a.Var)))
	c.Bind(a.Var, joined)
	c.Bind(b.Var, joined)
	return nil
}

// mergePartialTuples unifies the common prefix and keeps the longer one.
func (c *Context) mergePartialTuples(a, b TyKind, flipped bool) error {
	ae, be := a.Infer.Elems, b.Infer.Elems
	n := min(len(ae), len(be))
	for i := range n {
		if err := c.orient(ae[i], be[i], flipped); err != nil {
			return err
		}
	}
	longer := ae
	if len(be) > len(ae) {
		longer = be
	}
	joined := VarOf(c.PartialTuple(longer, c.Span(a.Var)))
	c.Bind(a.Var, joined)
	c.Bind(b.Var, joined)
	return nil
}

// occurs reports whether v appears in the normalized shape k.
func (c *Context) occurs(v Ty, k TyKind) bool {
	switch k.Kind {
	case KindVar:
		return k.Var == v
	case KindInfer:
		if k.Var == v {
			return true
		}
		for _, f := range k.Infer.Fields {
			if c.occurs(v, f.Ty) {
				return true
			}
		}
		return c.occursList(v, k.Infer.Elems)
	case KindPointer, KindMultiPointer, KindArray, KindSlice, KindType:
		return c.occurs(v, *k.Elem)
	case KindTuple:
		return c.occursList(v, k.Elems)
	case KindFn:
		return c.occursList(v, k.Fn.Params) || c.occurs(v, k.Fn.Ret)
	case KindStruct:
		if k.Struct.Binding != 0 {
			return false
		}
		for _, f := range k.Struct.Fields {
			if c.occurs(v, f.Ty) {
				return true
			}
		}
	}
	return false
}

func (c *Context) occursList(v Ty, list []TyKind) bool {
	for _, t := range list {
		if c.occurs(v, t) {
			return true
		}
	}
	return false
}

// Occurs reports whether the variable t appears inside k.
func (c *Context) Occurs(t Ty, k TyKind) bool {
	return c.occurs(t, c.Normalize(k))
}
