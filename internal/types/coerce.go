package types

// Coercion is the verdict of Coerce.
type Coercion uint8

const (
	NoCoercion Coercion = iota
	// CoerceToLeft: the right operand converts to the left operand's type.
	CoerceToLeft
	// CoerceToRight: the left operand converts to the right operand's type.
	CoerceToRight
)

func (c Coercion) String() string {
	switch c {
	case CoerceToLeft:
		return "to-left"
	case CoerceToRight:
		return "to-right"
	default:
		return "none"
	}
}

// Coerce decides which of two already-checked types can be widened into the
// other without losing information. Equal types need no coercion.
func (c *Context) Coerce(left, right TyKind) Coercion {
	left, right = c.Normalize(left), c.Normalize(right)
	if Equal(left, right) {
		return NoCoercion
	}

	switch {
	case left.Kind == right.Kind && left.IsNumeric():
		if left.Width.Bits() <= right.Width.Bits() {
			return CoerceToRight
		}
		return CoerceToLeft
	case arrayPointerCoerces(left, right):
		return CoerceToRight
	case arrayPointerCoerces(right, left):
		return CoerceToLeft
	}
	return NoCoercion
}

// arrayPointerCoerces reports `*[N]T` -> `[]T` and `*[N]T` -> `[*]T`.
func arrayPointerCoerces(from, to TyKind) bool {
	if from.Kind != KindPointer || from.Elem.Kind != KindArray {
		return false
	}
	if to.Kind != KindSlice && to.Kind != KindMultiPointer {
		return false
	}
	if !CanCoerceMut(from.Mutable, to.Mutable) {
		return false
	}
	return Equal(*from.Elem.Elem, *to.Elem)
}

// Literal defaults for numbers no context ever fixed.
var (
	DefaultInt   = MakeInt(Width32)
	DefaultFloat = MakeFloat(Width32)
)

// ApplyDefaults binds every open integer literal reachable from t to
// DefaultInt and every open float literal to DefaultFloat.
func (c *Context) ApplyDefaults(t Ty) {
	c.applyDefaults(c.Kind(t))
}

func (c *Context) applyDefaults(k TyKind) {
	switch k.Kind {
	case KindInfer:
		switch k.Infer.Kind {
		case InferAnyInt:
			c.Bind(k.Var, DefaultInt)
		case InferAnyFloat:
			c.Bind(k.Var, DefaultFloat)
		default:
			for _, f := range k.Infer.Fields {
				c.applyDefaults(f.Ty)
			}
			for _, e := range k.Infer.Elems {
				c.applyDefaults(e)
			}
		}
	case KindPointer, KindMultiPointer, KindArray, KindSlice, KindType:
		c.applyDefaults(*k.Elem)
	case KindTuple:
		for _, e := range k.Elems {
			c.applyDefaults(e)
		}
	case KindFn:
		for _, p := range k.Fn.Params {
			c.applyDefaults(p)
		}
		c.applyDefaults(k.Fn.Ret)
	case KindStruct:
		if k.Struct.Binding == 0 {
			for _, f := range k.Struct.Fields {
				c.applyDefaults(f.Ty)
			}
		}
	}
}
