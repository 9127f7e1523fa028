package symbols

import (
	"kiln/internal/ast"
	"kiln/internal/source"
	"kiln/internal/types"
)

// PreludeEntry describes a builtin type name.
type PreludeEntry struct {
	Name string
	Type types.TyKind
}

// builtinPreludeEntries returns the default set of built-in symbols exposed to every module.
func builtinPreludeEntries() []PreludeEntry {
	return []PreludeEntry{
		{Name: "i8", Type: types.MakeInt(types.Width8)},
		{Name: "i16", Type: types.MakeInt(types.Width16)},
		{Name: "i32", Type: types.MakeInt(types.Width32)},
		{Name: "i64", Type: types.MakeInt(types.Width64)},
		{Name: "int", Type: types.MakeInt(types.WidthAny)},
		{Name: "u8", Type: types.MakeUint(types.Width8)},
		{Name: "u16", Type: types.MakeUint(types.Width16)},
		{Name: "u32", Type: types.MakeUint(types.Width32)},
		{Name: "u64", Type: types.MakeUint(types.Width64)},
		{Name: "uint", Type: types.MakeUint(types.WidthAny)},
		{Name: "f16", Type: types.MakeFloat(types.Width16)},
		{Name: "f32", Type: types.MakeFloat(types.Width32)},
		{Name: "f64", Type: types.MakeFloat(types.Width64)},
		{Name: "float", Type: types.MakeFloat(types.WidthAny)},
		{Name: "bool", Type: types.Bool()},
		{Name: "str", Type: types.MakeStr()},
		{Name: "never", Type: types.Never()},
		{Name: "unit", Type: types.Unit()},
	}
}

// InstallPrelude binds the builtin type names once per table. Each name is
// a type binding whose value type is Type(T).
func (t *Table) InstallPrelude(tycx *types.Context, extra ...PreludeEntry) {
	scope := t.PreludeScope()
	if len(scope.Symbols) > 0 {
		return
	}
	entries := append(builtinPreludeEntries(), extra...)
	for _, e := range entries {
		id := t.Bindings.New(&BindingInfo{
			Name:       e.Name,
			Visibility: ast.Public,
			Ty:         tycx.Bound(types.MakeType(e.Type), source.Span{}),
			Kind:       BindingBuiltin,
			ScopeName:  "prelude",
		})
		scope.insert(e.Name, id)
	}
}
