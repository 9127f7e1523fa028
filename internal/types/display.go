package types

import (
	"strconv"
	"strings"
)

// String renders the shape in source syntax. Bound variables are not
// followed; use Context.Display for that.
func (t TyKind) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t TyKind) write(sb *strings.Builder) {
	switch t.Kind {
	case KindUnknown:
		sb.WriteString("unknown")
	case KindNever:
		sb.WriteString("never")
	case KindUnit:
		sb.WriteString("()")
	case KindBool:
		sb.WriteString("bool")
	case KindInt:
		writeNumeric(sb, "i", "int", t.Width)
	case KindUint:
		writeNumeric(sb, "u", "uint", t.Width)
	case KindFloat:
		writeNumeric(sb, "f", "float", t.Width)
	case KindPointer:
		sb.WriteString("*")
		writeMut(sb, t.Mutable, " ")
		t.Elem.write(sb)
	case KindMultiPointer:
		sb.WriteString("[*")
		writeMut(sb, t.Mutable, "")
		sb.WriteString("]")
		t.Elem.write(sb)
	case KindArray:
		sb.WriteString("[")
		sb.WriteString(strconv.FormatUint(t.Len, 10))
		sb.WriteString("]")
		t.Elem.write(sb)
	case KindSlice:
		sb.WriteString("[]")
		writeMut(sb, t.Mutable, " ")
		t.Elem.write(sb)
	case KindTuple:
		sb.WriteString("(")
		writeList(sb, t.Elems)
		sb.WriteString(")")
	case KindFn:
		sb.WriteString("fn(")
		writeList(sb, t.Fn.Params)
		if t.Fn.Variadic {
			if len(t.Fn.Params) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
		sb.WriteString(") -> ")
		t.Fn.Ret.write(sb)
	case KindStruct:
		writeStruct(sb, t.Struct)
	case KindModule:
		sb.WriteString("module")
	case KindType:
		sb.WriteString("type ")
		t.Elem.write(sb)
	case KindVar:
		sb.WriteString("?")
	case KindInfer:
		writeInfer(sb, t.Infer)
	}
}

func writeNumeric(sb *strings.Builder, prefix, name string, w Width) {
	if w == WidthAny {
		sb.WriteString(name)
		return
	}
	sb.WriteString(prefix)
	sb.WriteString(strconv.Itoa(int(w)))
}

func writeMut(sb *strings.Builder, mut bool, sep string) {
	if mut {
		sb.WriteString("mut")
		sb.WriteString(sep)
	}
}

func writeList(sb *strings.Builder, list []TyKind) {
	for i, t := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		t.write(sb)
	}
}

func writeStruct(sb *strings.Builder, st *StructTy) {
	if st.Name != "" {
		sb.WriteString(st.Name)
		return
	}
	switch st.Kind {
	case StructPacked:
		sb.WriteString("struct(packed) {")
	case StructUnion:
		sb.WriteString("union {")
	default:
		sb.WriteString("struct {")
	}
	for i, f := range st.Fields {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		f.Ty.write(sb)
	}
	sb.WriteString(" }")
}

func writeInfer(sb *strings.Builder, inf *InferTy) {
	switch inf.Kind {
	case InferAnyInt:
		sb.WriteString("{integer}")
	case InferAnyFloat:
		sb.WriteString("{float}")
	case InferPartialStruct:
		sb.WriteString("{")
		for i, f := range inf.Fields {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" ")
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			f.Ty.write(sb)
		}
		sb.WriteString(", .. }")
	case InferPartialTuple:
		sb.WriteString("(")
		writeList(sb, inf.Elems)
		if len(inf.Elems) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("..)")
	}
}
