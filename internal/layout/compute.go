package layout

import (
	"fortio.org/safecast"

	"kiln/internal/types"
)

func (e *LayoutEngine) computeLayout(t types.TyKind, state *layoutState) (TypeLayout, *LayoutError) {
	switch t.Kind {
	case types.KindUnit, types.KindNever, types.KindModule, types.KindType, types.KindUnknown:
		return TypeLayout{Size: 0, Align: 1}, nil

	case types.KindBool:
		return scalarLayoutBytes(1), nil

	case types.KindInt, types.KindUint, types.KindFloat:
		return scalarLayoutBytes(t.Width.Bits() / 8), nil

	case types.KindPointer, types.KindMultiPointer, types.KindFn:
		return e.ptrLayout(), nil

	case types.KindSlice:
		// указатель + длина
		ptr := e.ptrLayout()
		return TypeLayout{Size: 2 * ptr.Size, Align: ptr.Align}, nil

	case types.KindArray:
		return e.arrayFixedLayout(t, state)

	case types.KindTuple:
		return e.sequenceLayout(t.Elems, false, state)

	case types.KindStruct:
		fields := make([]types.TyKind, len(t.Struct.Fields))
		for i, f := range t.Struct.Fields {
			fields[i] = f.Ty
		}
		switch t.Struct.Kind {
		case types.StructUnion:
			return e.unionLayout(fields, state)
		case types.StructPacked:
			return e.sequenceLayout(fields, true, state)
		default:
			return e.sequenceLayout(fields, false, state)
		}

	default:
		// Var и Infer: тип ещё не выведен
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrOpenType, Type: e.display(t)}
	}
}

func (e *LayoutEngine) display(t types.TyKind) string {
	if e.Types != nil {
		return e.Types.Display(t)
	}
	return t.String()
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *LayoutEngine) arrayFixedLayout(t types.TyKind, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(*t.Elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	n, convErr := safecast.Conv[int](t.Len)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: e.display(t), Err: convErr}
	}
	return TypeLayout{
		Size:  stride * n,
		Align: elemAlign,
	}, nil
}

// sequenceLayout lays out tuple elements and struct fields in order.
func (e *LayoutEngine) sequenceLayout(elems []types.TyKind, packed bool, state *layoutState) (TypeLayout, *LayoutError) {
	offsets := make([]int, len(elems))
	size := 0
	align := 1
	for i, elem := range elems {
		el, err := e.layoutOf(elem, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		a := max(el.Align, 1)
		if packed {
			a = 1
		}
		size = roundUp(size, a)
		offsets[i] = size
		size += el.Size
		align = max(align, a)
	}
	size = roundUp(size, align)
	return TypeLayout{Size: size, Align: align, FieldOffsets: offsets}, nil
}

func (e *LayoutEngine) unionLayout(members []types.TyKind, state *layoutState) (TypeLayout, *LayoutError) {
	size := 0
	align := 1
	for _, m := range members {
		ml, err := e.layoutOf(m, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		size = max(size, ml.Size)
		align = max(align, ml.Align)
	}
	return TypeLayout{
		Size:         roundUp(size, align),
		Align:        align,
		FieldOffsets: make([]int, len(members)),
	}, nil
}
