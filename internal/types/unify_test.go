package types

import (
	"errors"
	"testing"

	"kiln/internal/source"
)

var testSpan = source.Span{File: 0, Start: 1, End: 2}

func i32() TyKind { return MakeInt(Width32) }

func point() TyKind {
	return MakeStruct(StructTy{Fields: []StructField{
		{Name: "x", Ty: i32()},
		{Name: "y", Ty: Bool()},
	}})
}

// concreteSamples are variable-free shapes used by the symmetry check.
func concreteSamples() []TyKind {
	return []TyKind{
		Never(), Unit(), Bool(),
		MakeInt(Width8), i32(), MakeInt(WidthAny), MakeUint(Width8), MakeUint(Width64),
		MakeFloat(Width32), MakeFloat(Width64),
		MakePointer(i32(), false), MakePointer(Bool(), false),
		MakeMultiPointer(MakeUint(Width8), true),
		MakeArray(i32(), 3), MakeArray(i32(), 4),
		MakeSlice(i32(), false), MakeStr(),
		MakeTuple(i32(), Bool()), MakeTuple(i32(), Bool(), Unit()),
		MakeFn([]TyKind{i32()}, Bool(), false), MakeFn([]TyKind{i32()}, Bool(), true),
		point(), MakeModule(1), MakeModule(2), MakeType(i32()),
	}
}

func unifyErr(t *testing.T, err error) *UnifyError {
	t.Helper()
	var uerr *UnifyError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnifyError, got %v", err)
	}
	return uerr
}

func TestUnifyIsSymmetricForConcreteTypes(t *testing.T) {
	samples := concreteSamples()
	for _, a := range samples {
		for _, b := range samples {
			c := NewContext()
			before := c.Len()
			ab := c.Unify(a, b) == nil
			ba := c.Unify(b, a) == nil
			if ab != ba {
				t.Errorf("unify(%s, %s)=%v but unify(%s, %s)=%v", a, b, ab, b, a, ba)
			}
			if ab && c.Len() != before {
				t.Errorf("unify(%s, %s) allocated types", a, b)
			}
		}
	}
}

func TestUnifyEqualConcreteTypesSucceeds(t *testing.T) {
	for _, a := range concreteSamples() {
		c := NewContext()
		if err := c.Unify(a, a); err != nil {
			t.Errorf("unify(%s, %s): %v", a, a, err)
		}
	}
}

func TestUnifyMismatchNamesTypes(t *testing.T) {
	c := NewContext()
	uerr := unifyErr(t, c.Unify(Bool(), i32()))
	if uerr.Kind != Mismatch {
		t.Fatalf("kind = %v, want Mismatch", uerr.Kind)
	}
	if got := uerr.Error(); got != "mismatched types: expected bool, found i32" {
		t.Fatalf("message = %q", got)
	}
}

func TestPointerMutability(t *testing.T) {
	tests := []struct {
		name     string
		expected TyKind
		found    TyKind
		ok       bool
	}{
		{"mut to immutable", MakePointer(i32(), false), MakePointer(i32(), true), true},
		{"immutable to mut", MakePointer(i32(), true), MakePointer(i32(), false), false},
		{"mut slice to slice", MakeSlice(i32(), false), MakeSlice(i32(), true), true},
		{"slice to mut slice", MakeSlice(i32(), true), MakeSlice(i32(), false), false},
		{"multi pointer", MakeMultiPointer(i32(), false), MakeMultiPointer(i32(), true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext()
			err := c.Unify(tt.expected, tt.found)
			if (err == nil) != tt.ok {
				t.Fatalf("unify(%s, %s) = %v, want ok=%v", tt.expected, tt.found, err, tt.ok)
			}
		})
	}
}

func TestVarBindsAndDereferences(t *testing.T) {
	c := NewContext()
	v := c.FreshVar(testSpan)
	if err := c.Unify(VarOf(v), MakePointer(i32(), false)); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got := c.DisplayTy(v); got != "*i32" {
		t.Fatalf("v = %s, want *i32", got)
	}
	if err := c.Unify(MakePointer(i32(), false), VarOf(v)); err != nil {
		t.Fatalf("bound var should unify with its binding: %v", err)
	}
	uerr := unifyErr(t, c.Unify(VarOf(v), MakePointer(Bool(), false)))
	if uerr.Kind != Mismatch || uerr.Expected.Kind != KindInt || uerr.Found.Kind != KindBool {
		t.Fatalf("expected inner i32/bool mismatch, got %v", uerr)
	}
}

func TestVarsChain(t *testing.T) {
	c := NewContext()
	a, b := c.FreshVar(testSpan), c.FreshVar(testSpan)
	if err := c.UnifyTy(a, b); err != nil {
		t.Fatalf("var/var: %v", err)
	}
	if err := c.UnifyTy(a, a); err != nil {
		t.Fatalf("var with itself: %v", err)
	}
	if err := c.Unify(VarOf(b), Bool()); err != nil {
		t.Fatalf("bind b: %v", err)
	}
	if got := c.DisplayTy(a); got != "bool" {
		t.Fatalf("a = %s, want bool", got)
	}
}

func TestOccursCheck(t *testing.T) {
	tests := []struct {
		name string
		wrap func(TyKind) TyKind
	}{
		{"pointer", func(v TyKind) TyKind { return MakePointer(v, false) }},
		{"multi pointer", func(v TyKind) TyKind { return MakeMultiPointer(v, true) }},
		{"array", func(v TyKind) TyKind { return MakeArray(v, 2) }},
		{"slice", func(v TyKind) TyKind { return MakeSlice(v, false) }},
		{"tuple", func(v TyKind) TyKind { return MakeTuple(Bool(), v) }},
		{"fn param", func(v TyKind) TyKind { return MakeFn([]TyKind{v}, Unit(), false) }},
		{"fn return", func(v TyKind) TyKind { return MakeFn(nil, v, false) }},
		{"struct field", func(v TyKind) TyKind {
			return MakeStruct(StructTy{Fields: []StructField{{Name: "next", Ty: MakePointer(v, false)}}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext()
			v := c.FreshVar(testSpan)
			uerr := unifyErr(t, c.Unify(VarOf(v), tt.wrap(VarOf(v))))
			if uerr.Kind != Occurs {
				t.Fatalf("kind = %v, want Occurs", uerr.Kind)
			}
			if _, bound := c.FindBinding(v); bound {
				t.Fatalf("variable must stay unbound after occurs failure")
			}
			uerr = unifyErr(t, c.Unify(tt.wrap(VarOf(v)), VarOf(v)))
			if uerr.Kind != Occurs {
				t.Fatalf("flipped kind = %v, want Occurs", uerr.Kind)
			}
		})
	}
}

func TestOccursThroughBoundVar(t *testing.T) {
	c := NewContext()
	v, w := c.FreshVar(testSpan), c.FreshVar(testSpan)
	if err := c.Unify(VarOf(w), MakeSlice(VarOf(v), false)); err != nil {
		t.Fatalf("bind w: %v", err)
	}
	uerr := unifyErr(t, c.Unify(VarOf(v), MakePointer(VarOf(w), false)))
	if uerr.Kind != Occurs {
		t.Fatalf("kind = %v, want Occurs", uerr.Kind)
	}
}

func TestAnyIntBindsToConcrete(t *testing.T) {
	for _, target := range []TyKind{MakeInt(Width64), MakeUint(Width8), MakeFloat(Width32)} {
		c := NewContext()
		lit := c.AnyInt(testSpan)
		if got := c.DisplayTy(lit); got != "{integer}" {
			t.Fatalf("fresh literal displays as %s", got)
		}
		if err := c.Unify(target, VarOf(lit)); err != nil {
			t.Fatalf("unify(%s, {integer}): %v", target, err)
		}
		if got := c.Kind(lit); !Equal(got, target) {
			t.Fatalf("literal = %s, want %s", got, target)
		}
	}
}

func TestAnyIntPairStaysUnbound(t *testing.T) {
	c := NewContext()
	a, b := c.AnyInt(testSpan), c.AnyInt(testSpan)
	if err := c.UnifyTy(a, b); err != nil {
		t.Fatalf("AnyInt/AnyInt: %v", err)
	}
	if !c.Kind(a).IsAnyInt() || !c.Kind(b).IsAnyInt() {
		t.Fatalf("both literals must stay open, got %s and %s", c.DisplayTy(a), c.DisplayTy(b))
	}
}

func TestAnyIntRejections(t *testing.T) {
	c := NewContext()
	tests := []struct {
		name  string
		other TyKind
	}{
		{"bool", Bool()},
		{"pointer", MakePointer(i32(), false)},
		{"float literal", c.Kind(c.AnyFloat(testSpan))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := c.AnyInt(testSpan)
			if err := c.Unify(VarOf(lit), tt.other); err == nil {
				t.Fatalf("{integer} unified with %s", tt.other)
			}
		})
	}
}

func TestAnyFloatOnlyTakesFloats(t *testing.T) {
	c := NewContext()
	lit := c.AnyFloat(testSpan)
	if err := c.Unify(MakeInt(Width32), VarOf(lit)); err == nil {
		t.Fatalf("{float} unified with i32")
	}
	if err := c.Unify(MakeFloat(Width64), VarOf(lit)); err != nil {
		t.Fatalf("{float} with f64: %v", err)
	}
	if got := c.DisplayTy(lit); got != "f64" {
		t.Fatalf("literal = %s, want f64", got)
	}
}

func TestPartialStructSubset(t *testing.T) {
	c := NewContext()
	x := c.AnyInt(testSpan)
	partial := c.PartialStruct([]PartialField{{Name: "x", Ty: VarOf(x)}}, testSpan)
	if err := c.Unify(point(), VarOf(partial)); err != nil {
		t.Fatalf("partial {x} against {x: i32, y: bool}: %v", err)
	}
	if got := c.DisplayTy(x); got != "i32" {
		t.Fatalf("x = %s, want i32", got)
	}
	if got := c.DisplayTy(partial); got != "struct { x: i32, y: bool }" {
		t.Fatalf("partial = %s", got)
	}

	c = NewContext()
	partial = c.PartialStruct([]PartialField{{Name: "x", Ty: VarOf(c.AnyInt(testSpan))}}, testSpan)
	onlyY := MakeStruct(StructTy{Fields: []StructField{{Name: "y", Ty: Bool()}}})
	if err := c.Unify(onlyY, VarOf(partial)); err == nil {
		t.Fatalf("partial {x} unified with struct lacking x")
	}
}

func TestPartialStructsMerge(t *testing.T) {
	c := NewContext()
	a := c.PartialStruct([]PartialField{{Name: "x", Ty: VarOf(c.FreshVar(testSpan))}}, testSpan)
	b := c.PartialStruct([]PartialField{
		{Name: "x", Ty: i32()},
		{Name: "y", Ty: Bool()},
	}, testSpan)
	if err := c.UnifyTy(a, b); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := c.DisplayTy(a); got != "{ x: i32, y: bool, .. }" {
		t.Fatalf("a = %s", got)
	}
	if err := c.Unify(point(), VarOf(b)); err != nil {
		t.Fatalf("resolve merged: %v", err)
	}
	if got := c.DisplayTy(a); got != "struct { x: i32, y: bool }" {
		t.Fatalf("a after resolve = %s", got)
	}
}

func TestPartialTupleAtLeast(t *testing.T) {
	c := NewContext()
	first := c.FreshVar(testSpan)
	partial := c.PartialTuple([]TyKind{VarOf(first)}, testSpan)
	if got := c.DisplayTy(partial); got != "(?, ..)" {
		t.Fatalf("partial displays as %s", got)
	}
	if err := c.Unify(MakeTuple(Bool(), i32()), VarOf(partial)); err != nil {
		t.Fatalf("partial (a, ..) against (bool, i32): %v", err)
	}
	if got := c.DisplayTy(first); got != "bool" {
		t.Fatalf("first = %s, want bool", got)
	}

	c = NewContext()
	partial = c.PartialTuple([]TyKind{Bool(), Bool(), Bool()}, testSpan)
	if err := c.Unify(MakeTuple(Bool(), Bool()), VarOf(partial)); err == nil {
		t.Fatalf("3-element partial unified with a pair")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	c := NewContext()
	v := c.FreshVar(testSpan)
	lit := c.AnyInt(testSpan)
	if err := c.Unify(VarOf(v), MakeTuple(VarOf(lit), MakeSlice(Bool(), true))); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := c.Unify(MakeUint(Width16), VarOf(lit)); err != nil {
		t.Fatalf("bind literal: %v", err)
	}
	samples := append(concreteSamples(), VarOf(v), MakePointer(VarOf(v), false))
	for _, k := range samples {
		once := c.Normalize(k)
		if twice := c.Normalize(once); !Equal(once, twice) {
			t.Errorf("normalize not idempotent: %s then %s", once, twice)
		}
	}
	if got := c.DisplayTy(v); got != "(u16, []mut bool)" {
		t.Fatalf("v = %s", got)
	}
}

func TestNeverAndUnknownUnifyWithAnything(t *testing.T) {
	c := NewContext()
	for _, k := range concreteSamples() {
		if err := c.Unify(Never(), k); err != nil {
			t.Errorf("never vs %s: %v", k, err)
		}
		if err := c.Unify(k, Unknown()); err != nil {
			t.Errorf("%s vs unknown: %v", k, err)
		}
	}
}

func TestNamedStructsAreNominal(t *testing.T) {
	c := NewContext()
	a := MakeStruct(StructTy{Name: "A", Binding: 1, Fields: []StructField{{Name: "x", Ty: i32()}}})
	b := MakeStruct(StructTy{Name: "B", Binding: 2, Fields: []StructField{{Name: "x", Ty: i32()}}})
	if err := c.Unify(a, b); err == nil {
		t.Fatalf("distinct named structs unified")
	}
	if err := c.Unify(a, a); err != nil {
		t.Fatalf("same named struct: %v", err)
	}
	if got := a.String(); got != "A" {
		t.Fatalf("display = %s", got)
	}
}

func TestRebindingInconsistentlyPanics(t *testing.T) {
	c := NewContext()
	v := c.FreshVar(testSpan)
	c.Bind(v, Bool())
	c.Bind(v, Bool())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on inconsistent rebinding")
		}
	}()
	c.Bind(v, i32())
}
