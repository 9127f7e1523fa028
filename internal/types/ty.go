package types

import "fmt"

// Ty is a handle into a Context. A handle means nothing without the Context
// that issued it.
type Ty uint32

// NoTy marks the absence of a type.
const NoTy Ty = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	// KindUnknown is the type of an expression that already failed to check.
	KindUnknown Kind = iota
	KindNever
	KindUnit
	KindBool
	KindInt
	KindUint
	KindFloat
	KindPointer
	KindMultiPointer
	KindFn
	KindArray
	KindSlice
	KindTuple
	KindStruct
	KindModule
	// KindType is the type of a type expression: `i32` used as a value.
	KindType
	// KindVar is a reference to another handle, bound or not.
	KindVar
	// KindInfer is a literal or pattern shape still waiting for a concrete type.
	KindInfer
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindNever:
		return "never"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindMultiPointer:
		return "multi-pointer"
	case KindFn:
		return "fn"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	case KindModule:
		return "module"
	case KindType:
		return "type"
	case KindVar:
		return "var"
	case KindInfer:
		return "infer"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	// WidthAny is the pointer-sized `int`/`uint` or the default `float`.
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Bits returns the storage size; WidthAny counts as 64.
func (w Width) Bits() int {
	if w == WidthAny {
		return 64
	}
	return int(w)
}

// TyKind is the shape of a type. Values are immutable: constructors copy
// their inputs and nothing writes through the pointer fields afterwards.
type TyKind struct {
	Kind    Kind
	Width   Width
	Mutable bool    // Pointer, MultiPointer, Slice
	Elem    *TyKind // Pointer, MultiPointer, Array, Slice, Type
	Len     uint64  // Array
	Fn      *FnTy
	Elems   []TyKind // Tuple
	Struct  *StructTy
	Module  uint32
	Var     Ty // Var, Infer
	Infer   *InferTy
}

// FnTy describes a function signature.
type FnTy struct {
	Params   []TyKind
	Ret      TyKind
	Variadic bool
	Lib      string   // extern library, ignored by equality
	Names    []string // parameter names for named arguments, ignored by equality
}

// StructKind distinguishes plain, packed structs and unions.
type StructKind uint8

const (
	StructPlain StructKind = iota
	StructPacked
	StructUnion
)

// StructField is one declared field.
type StructField struct {
	Name string
	Ty   TyKind
}

// StructTy describes a struct or union. Name is empty for anonymous literal
// types; Binding is the declaring binding for named ones.
type StructTy struct {
	Name    string
	Binding uint32
	Fields  []StructField
	Kind    StructKind
}

// Field returns the field with the given name.
func (s *StructTy) Field(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// InferKind enumerates the soft shapes.
type InferKind uint8

const (
	InferAnyInt InferKind = iota
	InferAnyFloat
	InferPartialStruct
	InferPartialTuple
)

// PartialField is a field known to exist on a partial struct.
type PartialField struct {
	Name string
	Ty   TyKind
}

// InferTy carries the known part of an Infer type.
type InferTy struct {
	Kind   InferKind
	Fields []PartialField // InferPartialStruct, in first-seen order
	Elems  []TyKind       // InferPartialTuple, a prefix of the tuple
}

// Descriptor helpers ---------------------------------------------------------

func Unknown() TyKind { return TyKind{Kind: KindUnknown} }
func Never() TyKind   { return TyKind{Kind: KindNever} }
func Unit() TyKind    { return TyKind{Kind: KindUnit} }
func Bool() TyKind    { return TyKind{Kind: KindBool} }

// MakeInt describes a signed integer of the given width (WidthAny for "int").
func MakeInt(width Width) TyKind { return TyKind{Kind: KindInt, Width: width} }

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) TyKind { return TyKind{Kind: KindUint, Width: width} }

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) TyKind { return TyKind{Kind: KindFloat, Width: width} }

func MakePointer(elem TyKind, mutable bool) TyKind {
	return TyKind{Kind: KindPointer, Elem: &elem, Mutable: mutable}
}

func MakeMultiPointer(elem TyKind, mutable bool) TyKind {
	return TyKind{Kind: KindMultiPointer, Elem: &elem, Mutable: mutable}
}

func MakeArray(elem TyKind, n uint64) TyKind {
	return TyKind{Kind: KindArray, Elem: &elem, Len: n}
}

func MakeSlice(elem TyKind, mutable bool) TyKind {
	return TyKind{Kind: KindSlice, Elem: &elem, Mutable: mutable}
}

// MakeStr is the string type, `[]u8`.
func MakeStr() TyKind { return MakeSlice(MakeUint(Width8), false) }

func MakeTuple(elems ...TyKind) TyKind {
	if len(elems) == 0 {
		return Unit()
	}
	return TyKind{Kind: KindTuple, Elems: append([]TyKind(nil), elems...)}
}

func MakeFn(params []TyKind, ret TyKind, variadic bool) TyKind {
	return TyKind{Kind: KindFn, Fn: &FnTy{
		Params:   append([]TyKind(nil), params...),
		Ret:      ret,
		Variadic: variadic,
	}}
}

// MakeDeclFn is MakeFn for a declared function: it keeps the parameter
// names and the extern library.
func MakeDeclFn(params []TyKind, names []string, ret TyKind, variadic bool, lib string) TyKind {
	k := MakeFn(params, ret, variadic)
	k.Fn.Names = append([]string(nil), names...)
	k.Fn.Lib = lib
	return k
}

func MakeStruct(st StructTy) TyKind {
	st.Fields = append([]StructField(nil), st.Fields...)
	return TyKind{Kind: KindStruct, Struct: &st}
}

func MakeModule(id uint32) TyKind { return TyKind{Kind: KindModule, Module: id} }

// MakeType is the type of the type expression `inner`.
func MakeType(inner TyKind) TyKind { return TyKind{Kind: KindType, Elem: &inner} }

// VarOf refers to the handle t.
func VarOf(t Ty) TyKind { return TyKind{Kind: KindVar, Var: t} }

func makeInfer(v Ty, inf InferTy) TyKind {
	return TyKind{Kind: KindInfer, Var: v, Infer: &inf}
}

// Predicates -----------------------------------------------------------------

func (t TyKind) IsInteger() bool { return t.Kind == KindInt || t.Kind == KindUint }
func (t TyKind) IsNumeric() bool { return t.IsInteger() || t.Kind == KindFloat }

// IsAnyPointer reports single and multi pointers.
func (t TyKind) IsAnyPointer() bool {
	return t.Kind == KindPointer || t.Kind == KindMultiPointer
}

// IsAnyInt reports an integer literal whose type is still open.
func (t TyKind) IsAnyInt() bool {
	return t.Kind == KindInfer && t.Infer.Kind == InferAnyInt
}

// IsAnyFloat reports a float literal whose type is still open.
func (t TyKind) IsAnyFloat() bool {
	return t.Kind == KindInfer && t.Infer.Kind == InferAnyFloat
}

// IsOpen reports a type that is still a free variable or a soft shape.
func (t TyKind) IsOpen() bool { return t.Kind == KindVar || t.Kind == KindInfer }

// Inner returns the element type of pointers, arrays, slices and Type.
func (t TyKind) Inner() TyKind {
	if t.Elem == nil {
		return Unknown()
	}
	return *t.Elem
}

// Equal compares two shapes structurally. Vars are compared by handle, so
// callers normalize first.
func Equal(a, b TyKind) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt, KindUint, KindFloat:
		return a.Width == b.Width
	case KindPointer, KindMultiPointer, KindSlice:
		return a.Mutable == b.Mutable && Equal(*a.Elem, *b.Elem)
	case KindArray:
		return a.Len == b.Len && Equal(*a.Elem, *b.Elem)
	case KindType:
		return Equal(*a.Elem, *b.Elem)
	case KindTuple:
		return equalList(a.Elems, b.Elems)
	case KindFn:
		return a.Fn.Variadic == b.Fn.Variadic &&
			equalList(a.Fn.Params, b.Fn.Params) &&
			Equal(a.Fn.Ret, b.Fn.Ret)
	case KindStruct:
		return equalStruct(a.Struct, b.Struct)
	case KindModule:
		return a.Module == b.Module
	case KindVar:
		return a.Var == b.Var
	case KindInfer:
		if a.Var != b.Var || a.Infer.Kind != b.Infer.Kind {
			return false
		}
		if len(a.Infer.Fields) != len(b.Infer.Fields) {
			return false
		}
		for i := range a.Infer.Fields {
			if a.Infer.Fields[i].Name != b.Infer.Fields[i].Name ||
				!Equal(a.Infer.Fields[i].Ty, b.Infer.Fields[i].Ty) {
				return false
			}
		}
		return equalList(a.Infer.Elems, b.Infer.Elems)
	default:
		return true
	}
}

func equalList(a, b []TyKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalStruct(a, b *StructTy) bool {
	if a.Binding != 0 || b.Binding != 0 {
		return a.Binding == b.Binding
	}
	if a.Kind != b.Kind || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Ty, b.Fields[i].Ty) {
			return false
		}
	}
	return true
}
