package types

import (
	"fmt"

	"fortio.org/safecast"

	"kiln/internal/source"
)

type entry struct {
	bound bool
	kind  TyKind
	span  source.Span
}

// Context owns every Ty handed out during one checking session. Entries are
// append-only; an entry goes from unbound to bound at most once.
type Context struct {
	entries []entry
}

// NewContext constructs an empty context. Handle 0 is reserved for NoTy.
func NewContext() *Context {
	c := &Context{entries: make([]entry, 1, 256)}
	c.entries[0] = entry{bound: true, kind: Unknown()}
	return c
}

func (c *Context) alloc(e entry) Ty {
	id, err := safecast.Conv[uint32](len(c.entries))
	if err != nil {
		panic(fmt.Errorf("type context overflow: %w", err))
	}
	c.entries = append(c.entries, e)
	return Ty(id)
}

// Len reports how many handles were issued, including the reserved one.
func (c *Context) Len() int { return len(c.entries) }

// FreshVar allocates a new unbound variable tied to sp.
func (c *Context) FreshVar(sp source.Span) Ty {
	return c.alloc(entry{span: sp})
}

// Bound allocates a handle that is already bound to kind.
func (c *Context) Bound(kind TyKind, sp source.Span) Ty {
	return c.alloc(entry{bound: true, kind: kind, span: sp})
}

// AnyInt is the type of an integer literal.
func (c *Context) AnyInt(sp source.Span) Ty {
	return c.inferred(InferTy{Kind: InferAnyInt}, sp)
}

// AnyFloat is the type of a float literal.
func (c *Context) AnyFloat(sp source.Span) Ty {
	return c.inferred(InferTy{Kind: InferAnyFloat}, sp)
}

// PartialStruct is a struct with at least the given fields.
func (c *Context) PartialStruct(fields []PartialField, sp source.Span) Ty {
	return c.inferred(InferTy{Kind: InferPartialStruct, Fields: append([]PartialField(nil), fields...)}, sp)
}

// PartialTuple is a tuple whose first len(elems) elements are known.
func (c *Context) PartialTuple(elems []TyKind, sp source.Span) Ty {
	return c.inferred(InferTy{Kind: InferPartialTuple, Elems: append([]TyKind(nil), elems...)}, sp)
}

// inferred allocates the hidden variable v that unification binds, and a
// handle bound to Infer(v, inf) that callers hold.
func (c *Context) inferred(inf InferTy, sp source.Span) Ty {
	v := c.FreshVar(sp)
	return c.Bound(makeInfer(v, inf), sp)
}

func (c *Context) get(t Ty) *entry {
	if int(t) >= len(c.entries) {
		panic(fmt.Errorf("type handle %d out of range (len %d)", t, len(c.entries)))
	}
	return &c.entries[t]
}

// FindBinding returns the kind t is bound to.
func (c *Context) FindBinding(t Ty) (TyKind, bool) {
	e := c.get(t)
	return e.kind, e.bound
}

// Span returns where t was created.
func (c *Context) Span(t Ty) source.Span {
	return c.get(t).span
}

// Bind records t := kind. Only the unifier and literal defaulting call it.
// Binding an already bound handle to a different shape is a bug.
func (c *Context) Bind(t Ty, kind TyKind) {
	if t == NoTy {
		panic(fmt.Errorf("bind of NoTy to %s", kind))
	}
	e := c.get(t)
	if e.bound {
		if !Equal(c.Normalize(e.kind), c.Normalize(kind)) {
			panic(fmt.Errorf("rebinding type %d from %s to %s", t, c.Display(e.kind), c.Display(kind)))
		}
		return
	}
	e.bound = true
	e.kind = kind
}

// Kind returns the normalized shape behind t.
func (c *Context) Kind(t Ty) TyKind {
	return c.Normalize(VarOf(t))
}

// Display renders t in source syntax.
func (c *Context) Display(k TyKind) string {
	return c.Normalize(k).String()
}

// DisplayTy renders the handle t in source syntax.
func (c *Context) DisplayTy(t Ty) string {
	return c.Kind(t).String()
}

// shallow follows bound Var/Infer links at the top of k only.
func (c *Context) shallow(k TyKind) TyKind {
	for k.Kind == KindVar || k.Kind == KindInfer {
		bound, ok := c.FindBinding(k.Var)
		if !ok {
			break
		}
		k = bound
	}
	return k
}

// Normalize replaces every bound Var and Infer reachable from k with its
// binding. Unbound leaves stay as they are. Named structs are nominal, so
// their fields are left untouched.
func (c *Context) Normalize(k TyKind) TyKind {
	k = c.shallow(k)
	switch k.Kind {
	case KindPointer, KindMultiPointer, KindSlice, KindArray, KindType:
		elem := c.Normalize(*k.Elem)
		out := k
		out.Elem = &elem
		return out
	case KindTuple:
		out := k
		out.Elems = c.normalizeList(k.Elems)
		return out
	case KindFn:
		out := k
		out.Fn = &FnTy{
			Params:   c.normalizeList(k.Fn.Params),
			Ret:      c.Normalize(k.Fn.Ret),
			Variadic: k.Fn.Variadic,
			Lib:      k.Fn.Lib,
			Names:    k.Fn.Names,
		}
		return out
	case KindStruct:
		if k.Struct.Binding != 0 {
			return k
		}
		st := *k.Struct
		st.Fields = make([]StructField, len(k.Struct.Fields))
		for i, f := range k.Struct.Fields {
			st.Fields[i] = StructField{Name: f.Name, Ty: c.Normalize(f.Ty)}
		}
		out := k
		out.Struct = &st
		return out
	case KindInfer:
		inf := InferTy{Kind: k.Infer.Kind, Elems: c.normalizeList(k.Infer.Elems)}
		if len(k.Infer.Fields) > 0 {
			inf.Fields = make([]PartialField, len(k.Infer.Fields))
			for i, f := range k.Infer.Fields {
				inf.Fields[i] = PartialField{Name: f.Name, Ty: c.Normalize(f.Ty)}
			}
		}
		return makeInfer(k.Var, inf)
	default:
		return k
	}
}

func (c *Context) normalizeList(list []TyKind) []TyKind {
	if list == nil {
		return nil
	}
	out := make([]TyKind, len(list))
	for i, t := range list {
		out[i] = c.Normalize(t)
	}
	return out
}

// NormalizeTy is Normalize for a handle.
func (c *Context) NormalizeTy(t Ty) TyKind { return c.Kind(t) }
