package ast

import (
	"fmt"
	"strconv"
)

// Children returns the direct sub-expressions of id in source order.
// Absent optional children (NoExprID) are skipped.
func (e *Exprs) Children(id ExprID) []ExprID {
	expr := e.Get(id)
	if expr == nil {
		return nil
	}
	var out []ExprID
	add := func(ids ...ExprID) {
		for _, c := range ids {
			if c.IsValid() {
				out = append(out, c)
			}
		}
	}
	switch expr.Kind {
	case ExprError, ExprPlaceholder, ExprIdent, ExprLiteral, ExprUse, ExprBreak, ExprContinue:
	case ExprBinding:
		d, _ := e.Binding(id)
		add(d.TypeExpr, d.Value)
	case ExprBuiltin:
		d, _ := e.Builtin(id)
		add(d.Arg)
	case ExprDefer:
		d, _ := e.Defer(id)
		add(d.Expr)
	case ExprAssign:
		d, _ := e.Assign(id)
		add(d.Lhs, d.Rhs)
	case ExprCast:
		d, _ := e.Cast(id)
		add(d.Expr, d.Target)
	case ExprFunction, ExprFnType:
		d, _ := e.Function(id)
		for _, p := range d.Sig.Params {
			add(p.Type)
		}
		add(d.Sig.Ret, d.Body)
	case ExprWhile:
		d, _ := e.While(id)
		add(d.Cond, d.Body)
	case ExprFor:
		d, _ := e.For(id)
		add(d.Start, d.End, d.Body)
	case ExprReturn:
		d, _ := e.Return(id)
		add(d.Value)
	case ExprIf:
		d, _ := e.If(id)
		add(d.Cond, d.Then, d.Else)
	case ExprBlock:
		d, _ := e.Block(id)
		add(d.Stmts...)
	case ExprBinary:
		d, _ := e.Binary(id)
		add(d.Lhs, d.Rhs)
	case ExprUnary:
		d, _ := e.Unary(id)
		add(d.Operand)
	case ExprSubscript:
		d, _ := e.Subscript(id)
		add(d.Expr, d.Index)
	case ExprSlice:
		d, _ := e.Slice(id)
		add(d.Expr, d.Low, d.High)
	case ExprCall:
		d, _ := e.Call(id)
		add(d.Callee)
		for _, a := range d.Args {
			add(a.Value)
		}
	case ExprMember:
		d, _ := e.Member(id)
		add(d.Expr)
	case ExprArrayLit:
		d, _ := e.ArrayLit(id)
		add(d.Elems...)
		add(d.Fill, d.Len)
	case ExprTupleLit:
		d, _ := e.TupleLit(id)
		add(d.Elems...)
	case ExprStructLit:
		d, _ := e.StructLit(id)
		add(d.Type)
		for _, f := range d.Fields {
			add(f.Value)
		}
	case ExprPointerType, ExprMultiPointerType, ExprSliceType:
		d, _ := e.TypeRef(id)
		add(d.Inner)
	case ExprArrayType:
		d, _ := e.ArrayType(id)
		add(d.Size, d.Inner)
	case ExprStructType:
		d, _ := e.StructType(id)
		for _, f := range d.Fields {
			add(f.Type)
		}
	default:
		panic(fmt.Errorf("ast: unhandled expression kind %v", expr.Kind))
	}
	return out
}

// Walk visits id and its descendants depth-first; returning false from fn skips the subtree.
func (e *Exprs) Walk(id ExprID, fn func(ExprID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	for _, c := range e.Children(id) {
		e.Walk(c, fn)
	}
}

// Describe renders a one-line summary of the node, used by AST dumps.
func (b *Builder) Describe(id ExprID) string {
	e := b.Exprs
	expr := e.Get(id)
	if expr == nil {
		return "<none>"
	}
	head := expr.Kind.String()
	switch expr.Kind {
	case ExprIdent:
		d, _ := e.Ident(id)
		return head + " " + d.Name
	case ExprLiteral:
		d, _ := e.Literal(id)
		return head + " " + d.String()
	case ExprBinding:
		d, _ := e.Binding(id)
		s := fmt.Sprintf("%s %s %s", head, d.Kind, b.Patterns.Get(d.Pattern))
		if d.Visibility == Public {
			s += " pub"
		}
		if d.Static {
			s += " static"
		}
		if d.Lib != "" {
			s += " lib=" + strconv.Quote(d.Lib)
		}
		return s
	case ExprUse:
		d, _ := e.Use(id)
		s := fmt.Sprintf("%s %s as %s", head, d.Module.Name, d.Alias.Name)
		if d.Wildcard {
			s += " .?"
		}
		return s
	case ExprBuiltin:
		d, _ := e.Builtin(id)
		if d.Kind == BuiltinImport {
			return head + " @import " + d.Module.Name
		}
		return head + " @" + d.Kind.String()
	case ExprFunction, ExprFnType:
		d, _ := e.Function(id)
		s := head
		if d.Sig.Name != "" {
			s += " " + d.Sig.Name
		}
		for _, p := range d.Sig.Params {
			s += " " + b.Patterns.Get(p.Pattern).String()
		}
		if d.Sig.Variadic {
			s += " ..."
		}
		return s
	case ExprFor:
		d, _ := e.For(id)
		s := head + " " + d.Iter.Name
		if d.Index.Name != "" {
			s += ", " + d.Index.Name
		}
		return s
	case ExprBlock:
		d, _ := e.Block(id)
		if d.Yields {
			return head + " yields"
		}
	case ExprBinary:
		d, _ := e.Binary(id)
		return head + " " + d.Op.String()
	case ExprUnary:
		d, _ := e.Unary(id)
		if d.Op == UnRef && d.Mut {
			return head + " &mut"
		}
		return head + " " + d.Op.String()
	case ExprCall:
		d, _ := e.Call(id)
		s := head
		for _, a := range d.Args {
			if a.Name.Name != "" {
				s += " " + a.Name.Name + ":"
			}
			if a.Spread {
				s += " ..."
			}
		}
		return s
	case ExprMember:
		d, _ := e.Member(id)
		return head + " ." + d.Member
	case ExprStructLit:
		d, _ := e.StructLit(id)
		for _, f := range d.Fields {
			head += " " + f.Name
		}
		return head
	case ExprPointerType, ExprMultiPointerType, ExprSliceType:
		d, _ := e.TypeRef(id)
		if d.Mut {
			return head + " mut"
		}
	case ExprStructType:
		d, _ := e.StructType(id)
		s := head
		if d.Name != "" {
			s += " " + d.Name
		}
		switch d.Kind {
		case StructPacked:
			s += " packed"
		case StructUnion:
			s += " union"
		}
		for _, f := range d.Fields {
			s += " " + f.Name
		}
		return s
	}
	return head
}

func (l *ExprLiteralData) String() string {
	switch l.Kind {
	case LitNil:
		return "nil"
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitInt:
		return strconv.FormatUint(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitStr:
		return strconv.Quote(l.Str)
	case LitChar:
		return strconv.QuoteRune(rune(l.Int))
	default:
		return "?"
	}
}
