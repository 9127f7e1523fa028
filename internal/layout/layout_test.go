package layout

import (
	"errors"
	"testing"

	"kiln/internal/source"
	"kiln/internal/types"
)

func TestScalarAndAggregateLayout(t *testing.T) {
	e := New(X86_64LinuxGNU(), types.NewContext())
	tests := []struct {
		name  string
		ty    types.TyKind
		size  int
		align int
	}{
		{"bool", types.Bool(), 1, 1},
		{"i16", types.MakeInt(types.Width16), 2, 2},
		{"uint", types.MakeUint(types.WidthAny), 8, 8},
		{"pointer", types.MakePointer(types.Bool(), true), 8, 8},
		{"str", types.MakeStr(), 16, 8},
		{"array", types.MakeArray(types.MakeInt(types.Width32), 3), 12, 4},
		{"unit", types.Unit(), 0, 1},
		{"tuple pads", types.MakeTuple(types.MakeUint(types.Width8), types.MakeInt(types.Width32)), 8, 4},
		{"packed struct", types.MakeStruct(types.StructTy{Kind: types.StructPacked, Fields: []types.StructField{
			{Name: "a", Ty: types.MakeUint(types.Width8)},
			{Name: "b", Ty: types.MakeInt(types.Width32)},
		}}), 5, 1},
		{"union", types.MakeStruct(types.StructTy{Kind: types.StructUnion, Fields: []types.StructField{
			{Name: "a", Ty: types.MakeUint(types.Width8)},
			{Name: "b", Ty: types.MakeFloat(types.Width64)},
		}}), 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := e.LayoutOf(tt.ty)
			if err != nil {
				t.Fatalf("LayoutOf(%s): %v", tt.ty, err)
			}
			if l.Size != tt.size || l.Align != tt.align {
				t.Fatalf("%s: size %d align %d, want %d/%d", tt.ty, l.Size, l.Align, tt.size, tt.align)
			}
		})
	}
}

func TestFieldOffsets(t *testing.T) {
	e := New(X86_64LinuxGNU(), types.NewContext())
	st := types.MakeStruct(types.StructTy{Fields: []types.StructField{
		{Name: "a", Ty: types.Bool()},
		{Name: "b", Ty: types.MakeInt(types.Width64)},
		{Name: "c", Ty: types.MakeUint(types.Width16)},
	}})
	want := []int{0, 8, 16}
	for i, w := range want {
		off, err := e.FieldOffset(st, i)
		if err != nil || off != w {
			t.Fatalf("field %d offset %d (%v), want %d", i, off, err, w)
		}
	}
	if size, _ := e.SizeOf(st); size != 24 {
		t.Fatalf("size = %d, want 24", size)
	}
}

func TestRecursiveStructs(t *testing.T) {
	tycx := types.NewContext()
	self := tycx.FreshVar(source.Span{})
	node := types.MakeStruct(types.StructTy{Name: "Node", Binding: 1, Fields: []types.StructField{
		{Name: "value", Ty: types.MakeInt(types.Width32)},
		{Name: "next", Ty: types.MakePointer(types.VarOf(self), false)},
	}})
	tycx.Bind(self, node)

	e := New(X86_64LinuxGNU(), tycx)
	if size, err := e.SizeOf(node); err != nil || size != 16 {
		t.Fatalf("Node through a pointer: size %d err %v", size, err)
	}

	inner := tycx.FreshVar(source.Span{})
	bad := types.MakeStruct(types.StructTy{Name: "Bad", Binding: 2, Fields: []types.StructField{
		{Name: "again", Ty: types.VarOf(inner)},
	}})
	tycx.Bind(inner, bad)
	_, err := e.LayoutOf(bad)
	var lerr *LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != LayoutErrRecursiveUnsized {
		t.Fatalf("expected recursive layout error, got %v", err)
	}
}

func TestOpenTypeHasNoLayout(t *testing.T) {
	tycx := types.NewContext()
	e := New(Host(), tycx)
	_, err := e.LayoutOf(types.VarOf(tycx.AnyInt(source.Span{})))
	var lerr *LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != LayoutErrOpenType {
		t.Fatalf("expected open type error, got %v", err)
	}
}
