package layout

import (
	"kiln/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int
}

// LayoutEngine computes memory layout for types of one types.Context.
// Named structs are cached by their binding.
type LayoutEngine struct {
	Target Target
	Types  *types.Context

	cache map[uint32]cacheEntry
}

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, tycx *types.Context) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Types:  tycx,
		cache:  make(map[uint32]cacheEntry, 32),
	}
}

// layoutState is the chain of named structs currently being laid out.
type layoutState struct {
	stack []*types.StructTy
	index map[uint32]int
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[uint32]int, 8)}
}

// LayoutOf computes the layout of a type. Open types (unbound variables,
// literals without a fixed type) have no layout.
func (e *LayoutEngine) LayoutOf(t types.TyKind) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = make(map[uint32]cacheEntry, 32)
	}
	l, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *LayoutEngine) layoutOf(t types.TyKind, state *layoutState) (TypeLayout, *LayoutError) {
	if e.Types != nil {
		t = e.Types.Normalize(t)
	}
	if t.Kind != types.KindStruct || t.Struct.Binding == 0 {
		return e.computeLayout(t, state)
	}

	key := t.Struct.Binding
	if cached, ok := e.cache[key]; ok {
		return cached.Layout, cached.Err
	}
	if idx, ok := state.index[key]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, st := range state.stack[idx:] {
			cycle = append(cycle, st.Name)
		}
		cycle = append(cycle, t.Struct.Name)
		err := &LayoutError{Kind: LayoutErrRecursiveUnsized, Type: t.Struct.Name, Cycle: cycle}
		e.cache[key] = cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err}
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[key] = len(state.stack)
	state.stack = append(state.stack, t.Struct)
	layout, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, key)

	e.cache[key] = cacheEntry{Layout: layout, Err: err}
	return layout, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TyKind) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TyKind) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field.
func (e *LayoutEngine) FieldOffset(st types.TyKind, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(st)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}
