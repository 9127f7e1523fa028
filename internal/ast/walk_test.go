package ast

import (
	"testing"

	"kiln/internal/source"
)

func TestArenaIsOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil {
		t.Fatalf("index 0 must be the empty sentinel")
	}
	id := a.Allocate(42)
	if id != 1 || *a.Get(id) != 42 {
		t.Fatalf("first allocation: id=%d", id)
	}
	if a.Get(2) != nil {
		t.Fatalf("out of range lookups must return nil")
	}
}

func TestChildrenAndWalk(t *testing.T) {
	b := NewBuilder(Hints{})
	e := b.Exprs
	sp := source.Span{File: 1, Start: 0, End: 1}
	x := e.NewIdent(sp, "x")
	one := e.NewLiteral(sp, ExprLiteralData{Kind: LitInt, Int: 1})
	sum := e.NewBinary(sp, BinAdd, x, one)
	ret := e.NewReturn(sp, sum)
	blk := e.NewBlock(sp, []ExprID{ret}, false)

	if got := e.Children(sum); len(got) != 2 || got[0] != x || got[1] != one {
		t.Fatalf("binary children = %v", got)
	}
	if got := e.Children(e.NewReturn(sp, NoExprID)); len(got) != 0 {
		t.Fatalf("bare return has no children, got %v", got)
	}

	var seen []ExprKind
	e.Walk(blk, func(id ExprID) bool {
		seen = append(seen, e.Kind(id))
		return true
	})
	want := []ExprKind{ExprBlock, ExprReturn, ExprBinary, ExprIdent, ExprLiteral}
	if len(seen) != len(want) {
		t.Fatalf("walk order = %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("walk order = %v, want %v", seen, want)
		}
	}
}

func TestPayloadKindCheck(t *testing.T) {
	b := NewBuilder(Hints{})
	sp := source.Span{}
	id := b.Exprs.NewIdent(sp, "x")
	if _, ok := b.Exprs.Call(id); ok {
		t.Fatalf("Call() must reject an identifier")
	}
	if d, ok := b.Exprs.Ident(id); !ok || d.Name != "x" || d.Binding.IsResolved() {
		t.Fatalf("Ident() = %+v, %v", d, ok)
	}
	fnType := b.Exprs.NewFunction(sp, FnSig{}, NoExprID)
	if b.Exprs.Kind(fnType) != ExprFnType {
		t.Fatalf("bodyless function must be a function type")
	}
}

func TestPatternString(t *testing.T) {
	p := Pattern{Kind: PatStructUnpack, Elems: []SymbolPattern{
		{Name: "x"},
		{Name: "y", Alias: "b", Mut: true},
	}}
	if got := p.String(); got != "{x, mut y: b}" {
		t.Fatalf("String() = %q", got)
	}
	tup := Pattern{Kind: PatTupleUnpack, Elems: []SymbolPattern{{Name: "a"}, {Ignore: true}}}
	if got := tup.String(); got != "(a, _)" {
		t.Fatalf("String() = %q", got)
	}
	if n := len(tup.Symbols()); n != 2 {
		t.Fatalf("Symbols() len = %d", n)
	}
}
