package sema

import (
	"fmt"
	"strconv"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

func (c *checker) checkCall(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Call(id)
	at := c.span(id)
	callee := c.checkExpr(d.Callee, types.NoTy)
	k := c.tycx.Kind(callee)

	switch k.Kind {
	case types.KindFn:
		c.checkArgs(id, d, k.Fn)
		return c.setType(id, c.bound(k.Fn.Ret, at))
	case types.KindVar:
		// вызов ещё не выведенного значения: строим сигнатуру по аргументам
		params := make([]types.TyKind, len(d.Args))
		for i, arg := range d.Args {
			params[i] = types.VarOf(c.checkExpr(arg.Value, types.NoTy))
		}
		ret := c.tycx.FreshVar(at)
		fn := types.MakeFn(params, types.VarOf(ret), false)
		if err := c.tycx.Unify(k, fn); err != nil {
			types.ReportUnify(c.reporter, c.tycx, err, k, fn, c.span(d.Callee), source.Span{})
		}
		return c.setType(id, ret)
	case types.KindUnknown, types.KindNever:
		for _, arg := range d.Args {
			c.checkExpr(arg.Value, types.NoTy)
		}
		return c.unknown(id)
	}
	for _, arg := range d.Args {
		c.checkExpr(arg.Value, types.NoTy)
	}
	diag.ReportError(c.reporter, diag.SemaNotCallable, c.span(d.Callee),
		fmt.Sprintf("expected a function, found `%s`", c.tycx.Display(k))).Emit()
	return c.unknown(id)
}

// checkArgs matches positional and named arguments to parameters. Extra
// arguments of a variadic function are checked but not unified.
func (c *checker) checkArgs(id ast.ExprID, d *ast.ExprCallData, fn *types.FnTy) {
	slots := make([]*ast.CallArg, len(fn.Params))
	var extra []*ast.CallArg
	next := 0
	ok := true
	for i := range d.Args {
		arg := &d.Args[i]
		if arg.Name.Name == "" {
			for next < len(slots) && slots[next] != nil {
				next++
			}
			if next < len(slots) {
				slots[next] = arg
				next++
			} else {
				extra = append(extra, arg)
			}
			continue
		}
		idx := indexOf(fn.Names, arg.Name.Name)
		switch {
		case idx < 0:
			diag.ReportError(c.reporter, diag.SemaUnknownNamedArg, arg.Name.Span,
				fmt.Sprintf("unknown argument `%s`", arg.Name.Name)).Emit()
			ok = false
			c.checkExpr(arg.Value, types.NoTy)
		case slots[idx] != nil:
			diag.ReportError(c.reporter, diag.SemaUnknownNamedArg, arg.Name.Span,
				fmt.Sprintf("argument `%s` is specified more than once", arg.Name.Name)).Emit()
			ok = false
			c.checkExpr(arg.Value, types.NoTy)
		default:
			slots[idx] = arg
		}
	}

	missing := 0
	for _, s := range slots {
		if s == nil {
			missing++
		}
	}
	if ok && (missing > 0 || (len(extra) > 0 && !fn.Variadic)) {
		supplied := len(d.Args)
		want := strconv.Itoa(len(fn.Params))
		if fn.Variadic {
			want = "at least " + want
		}
		diag.ReportError(c.reporter, diag.SemaArgCount, c.span(id),
			fmt.Sprintf("function takes %s %s but %d %s supplied", want, plural(len(fn.Params), "argument"), supplied, wasWere(supplied))).Emit()
	}

	for i, s := range slots {
		if s == nil {
			continue
		}
		param := c.bound(fn.Params[i], c.span(s.Value))
		arg := c.checkExpr(s.Value, param)
		c.expect(param, arg, c.span(s.Value), source.Span{})
	}
	for _, e := range extra {
		c.checkExpr(e.Value, types.NoTy)
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func wasWere(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}

func (c *checker) checkMember(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Member(id)
	at := c.span(id)
	target := c.checkExpr(d.Expr, types.NoTy)
	k := c.tycx.Kind(target)
	if k.Kind == types.KindPointer {
		k = c.tycx.Normalize(*k.Elem)
	}

	switch k.Kind {
	case types.KindStruct:
		if f, ok := k.Struct.Field(d.Member); ok {
			c.foldMember(id, d)
			return c.setType(id, c.bound(f.Ty, at))
		}
	case types.KindTuple:
		if i, err := strconv.Atoi(d.Member); err == nil && i >= 0 && i < len(k.Elems) {
			c.foldMember(id, d)
			return c.setType(id, c.bound(k.Elems[i], at))
		}
	case types.KindArray, types.KindSlice:
		switch d.Member {
		case "len":
			if k.Kind == types.KindArray {
				c.setConst(id, symbols.IntConst(int64(k.Len))) // #nosec G115 -- длины массивов из констант int64
			}
			return c.setType(id, c.bound(types.MakeUint(types.WidthAny), at))
		case "ptr":
			return c.setType(id, c.bound(types.MakeMultiPointer(*k.Elem, k.Mutable), at))
		}
	case types.KindModule:
		bid, ok := c.CheckTopLevel(symbols.CallerInfo{Module: c.cur.mod.ID, Span: at}, k.Module, d.Member)
		if !ok {
			return c.unknown(id)
		}
		c.table.IncUse(bid)
		info := c.table.Get(c.table.Resolve(bid))
		c.setConst(id, info.Const)
		return c.setType(id, info.Ty)
	case types.KindVar:
		return c.setType(id, c.inferMember(k, d.Member, at))
	case types.KindInfer:
		if !k.IsAnyInt() && !k.IsAnyFloat() {
			return c.setType(id, c.inferMember(k, d.Member, at))
		}
	case types.KindUnknown, types.KindNever:
		return c.unknown(id)
	}
	diag.ReportError(c.reporter, diag.SemaNoField, at,
		fmt.Sprintf("no field `%s` on type `%s`", d.Member, c.tycx.Display(k))).Emit()
	return c.unknown(id)
}

// inferMember accesses a field of a value whose type is not known yet: the
// value must be a struct with that field, or a tuple long enough.
func (c *checker) inferMember(k types.TyKind, member string, at source.Span) types.Ty {
	var partial types.Ty
	var result types.Ty
	if i, err := strconv.Atoi(member); err == nil && i >= 0 {
		elems := make([]types.TyKind, i+1)
		for j := range elems {
			elems[j] = types.VarOf(c.tycx.FreshVar(at))
		}
		partial = c.tycx.PartialTuple(elems, at)
		result = elems[i].Var
	} else {
		result = c.tycx.FreshVar(at)
		partial = c.tycx.PartialStruct([]types.PartialField{{Name: member, Ty: types.VarOf(result)}}, at)
	}
	if err := c.tycx.Unify(k, types.VarOf(partial)); err != nil {
		types.ReportUnify(c.reporter, c.tycx, err, k, types.VarOf(partial), at, source.Span{})
		return c.bound(types.Unknown(), at)
	}
	return result
}

func (c *checker) checkIndex(index ast.ExprID) {
	k := c.tycx.Kind(c.checkExpr(index, types.NoTy))
	if !types.FamilyIntegral.Accepts(k) {
		diag.ReportError(c.reporter, diag.SemaInvalidOperand, c.span(index),
			fmt.Sprintf("the index must be an integer, found `%s`", c.tycx.Display(k))).Emit()
	}
}

func (c *checker) checkSubscript(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Subscript(id)
	at := c.span(id)
	k := c.tycx.Kind(c.checkExpr(d.Expr, types.NoTy))
	c.checkIndex(d.Index)
	if k.Kind == types.KindPointer && k.Elem.Kind == types.KindArray {
		k = *k.Elem
	}
	switch k.Kind {
	case types.KindArray:
		if cv := c.constOf(d.Index); cv != nil && cv.Kind == symbols.ConstInt && (cv.Int < 0 || uint64(cv.Int) >= k.Len) {
			diag.ReportError(c.reporter, diag.SemaNotIndexable, c.span(d.Index),
				fmt.Sprintf("index out of bounds: the length is %d but the index is %d", k.Len, cv.Int)).Emit()
		}
		return c.setType(id, c.bound(*k.Elem, at))
	case types.KindSlice, types.KindMultiPointer:
		return c.setType(id, c.bound(*k.Elem, at))
	case types.KindUnknown, types.KindNever:
		return c.unknown(id)
	}
	diag.ReportError(c.reporter, diag.SemaNotIndexable, c.span(d.Expr),
		fmt.Sprintf("cannot index into a value of type `%s`", c.tycx.Display(k))).Emit()
	return c.unknown(id)
}

func (c *checker) checkSlice(id ast.ExprID) types.Ty {
	d, _ := c.cur.mod.exprs.Slice(id)
	at := c.span(id)
	k := c.tycx.Kind(c.checkExpr(d.Expr, types.NoTy))
	if d.Low.IsValid() {
		c.checkIndex(d.Low)
	}
	if d.High.IsValid() {
		c.checkIndex(d.High)
	}

	switch k.Kind {
	case types.KindArray:
		return c.setType(id, c.bound(types.MakeSlice(*k.Elem, c.placeMutable(d.Expr)), at))
	case types.KindPointer:
		if k.Elem.Kind == types.KindArray {
			return c.setType(id, c.bound(types.MakeSlice(*k.Elem.Elem, k.Mutable), at))
		}
	case types.KindSlice:
		return c.setType(id, c.bound(types.MakeSlice(*k.Elem, k.Mutable), at))
	case types.KindMultiPointer:
		if !d.High.IsValid() {
			diag.ReportError(c.reporter, diag.SemaNotIndexable, at,
				"slicing a multi-pointer needs an upper bound").Emit()
			return c.unknown(id)
		}
		return c.setType(id, c.bound(types.MakeSlice(*k.Elem, k.Mutable), at))
	case types.KindUnknown, types.KindNever:
		return c.unknown(id)
	}
	diag.ReportError(c.reporter, diag.SemaNotIndexable, c.span(d.Expr),
		fmt.Sprintf("cannot slice a value of type `%s`", c.tycx.Display(k))).Emit()
	return c.unknown(id)
}
