package symbols

import (
	"strconv"
	"strings"
)

// ConstKind enumerates compile-time value shapes.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstFloat
	ConstStr
	ConstTuple
	ConstStruct
)

// ConstField is one field of a constant struct.
type ConstField struct {
	Name  string
	Value ConstValue
}

// ConstValue is a value known at compile time. Integers of every signedness
// are kept in Int; the binding's type says how to read them.
type ConstValue struct {
	Kind   ConstKind
	Int    int64
	Bool   bool
	Float  float64
	Str    string
	Elems  []ConstValue
	Fields []ConstField
}

func IntConst(v int64) *ConstValue     { return &ConstValue{Kind: ConstInt, Int: v} }
func BoolConst(v bool) *ConstValue     { return &ConstValue{Kind: ConstBool, Bool: v} }
func FloatConst(v float64) *ConstValue { return &ConstValue{Kind: ConstFloat, Float: v} }
func StrConst(v string) *ConstValue    { return &ConstValue{Kind: ConstStr, Str: v} }

// Field returns the value of a struct field.
func (v *ConstValue) Field(name string) (*ConstValue, bool) {
	if v == nil || v.Kind != ConstStruct {
		return nil, false
	}
	for i := range v.Fields {
		if v.Fields[i].Name == name {
			return &v.Fields[i].Value, true
		}
	}
	return nil, false
}

// Elem returns the i-th tuple element.
func (v *ConstValue) Elem(i int) (*ConstValue, bool) {
	if v == nil || v.Kind != ConstTuple || i < 0 || i >= len(v.Elems) {
		return nil, false
	}
	return &v.Elems[i], true
}

func (v *ConstValue) String() string {
	if v == nil {
		return "<none>"
	}
	switch v.Kind {
	case ConstInt:
		return strconv.FormatInt(v.Int, 10)
	case ConstBool:
		return strconv.FormatBool(v.Bool)
	case ConstFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ConstStr:
		return strconv.Quote(v.Str)
	case ConstTuple:
		parts := make([]string, len(v.Elems))
		for i := range v.Elems {
			parts[i] = v.Elems[i].String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ConstStruct:
		parts := make([]string, len(v.Fields))
		for i := range v.Fields {
			parts[i] = v.Fields[i].Name + ": " + v.Fields[i].Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}
