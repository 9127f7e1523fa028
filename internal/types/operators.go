package types

import "kiln/internal/ast"

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint32

const (
	FamilyNone FamilyMask = 0
	FamilyAny  FamilyMask = 1 << iota
	FamilyBool
	FamilySignedInt
	FamilyUnsignedInt
	FamilyFloat
	FamilyPointer
)

const (
	FamilyIntegral = FamilySignedInt | FamilyUnsignedInt
	FamilyNumeric  = FamilyIntegral | FamilyFloat
)

// BinaryResult describes how to derive the result type for an operator.
type BinaryResult uint8

const (
	BinaryResultUnknown BinaryResult = iota
	BinaryResultLeft
	BinaryResultBool
)

// BinaryFlags annotate special handling for binary operators.
type BinaryFlags uint16

const (
	BinaryFlagNone BinaryFlags = 0
	// BinaryFlagSameType: operands are unified with each other.
	BinaryFlagSameType BinaryFlags = 1 << iota
	BinaryFlagShortCircuit
)

// BinarySpec lists operand families and expected result for an operation.
type BinarySpec struct {
	Operand FamilyMask
	Result  BinaryResult
	Flags   BinaryFlags
}

// UnaryResult indicates how to derive the resulting type.
type UnaryResult uint8

const (
	UnaryResultSame UnaryResult = iota
	UnaryResultReference
	UnaryResultDeref
)

// UnarySpec describes operand expectations for unary operators.
type UnarySpec struct {
	Operand FamilyMask
	Result  UnaryResult
}

var binarySpecTable = [...]BinarySpec{
	ast.BinAdd:    {Operand: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	ast.BinSub:    {Operand: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	ast.BinMul:    {Operand: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	ast.BinDiv:    {Operand: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	ast.BinRem:    {Operand: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	ast.BinEq:     {Operand: FamilyAny, Result: BinaryResultBool, Flags: BinaryFlagSameType},
	ast.BinNe:     {Operand: FamilyAny, Result: BinaryResultBool, Flags: BinaryFlagSameType},
	ast.BinLt:     {Operand: FamilyNumeric | FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameType},
	ast.BinLe:     {Operand: FamilyNumeric | FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameType},
	ast.BinGt:     {Operand: FamilyNumeric | FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameType},
	ast.BinGe:     {Operand: FamilyNumeric | FamilyPointer, Result: BinaryResultBool, Flags: BinaryFlagSameType},
	ast.BinAnd:    {Operand: FamilyBool, Result: BinaryResultBool, Flags: BinaryFlagSameType | BinaryFlagShortCircuit},
	ast.BinOr:     {Operand: FamilyBool, Result: BinaryResultBool, Flags: BinaryFlagSameType | BinaryFlagShortCircuit},
	ast.BinShl:    {Operand: FamilyIntegral, Result: BinaryResultLeft},
	ast.BinShr:    {Operand: FamilyIntegral, Result: BinaryResultLeft},
	ast.BinBitAnd: {Operand: FamilyIntegral | FamilyBool, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	ast.BinBitOr:  {Operand: FamilyIntegral | FamilyBool, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	ast.BinBitXor: {Operand: FamilyIntegral | FamilyBool, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
}

var unarySpecTable = [...]UnarySpec{
	ast.UnRef:   {Operand: FamilyAny, Result: UnaryResultReference},
	ast.UnDeref: {Operand: FamilyPointer, Result: UnaryResultDeref},
	ast.UnNeg:   {Operand: FamilyNumeric, Result: UnaryResultSame},
	ast.UnPlus:  {Operand: FamilyNumeric, Result: UnaryResultSame},
	ast.UnNot:   {Operand: FamilyBool | FamilyIntegral, Result: UnaryResultSame},
}

// BinarySpecFor returns operand rules for the given operator.
func BinarySpecFor(op ast.BinaryOp) (BinarySpec, bool) {
	if int(op) >= len(binarySpecTable) {
		return BinarySpec{}, false
	}
	return binarySpecTable[op], true
}

// UnarySpecFor returns operand/result hints for unary operators.
func UnarySpecFor(op ast.UnaryOp) (UnarySpec, bool) {
	if int(op) >= len(unarySpecTable) {
		return UnarySpec{}, false
	}
	return unarySpecTable[op], true
}

// FamilyOf classifies a normalized type. Open numeric literals belong to
// every family they may still become; free variables and Never belong to
// all of them.
func FamilyOf(k TyKind) FamilyMask {
	switch k.Kind {
	case KindBool:
		return FamilyAny | FamilyBool
	case KindInt:
		return FamilyAny | FamilySignedInt
	case KindUint:
		return FamilyAny | FamilyUnsignedInt
	case KindFloat:
		return FamilyAny | FamilyFloat
	case KindPointer, KindMultiPointer:
		return FamilyAny | FamilyPointer
	case KindVar, KindNever, KindUnknown:
		return ^FamilyNone
	case KindInfer:
		switch k.Infer.Kind {
		case InferAnyInt:
			return FamilyAny | FamilyNumeric
		case InferAnyFloat:
			return FamilyAny | FamilyFloat
		}
	}
	return FamilyAny
}

// Accepts reports whether k belongs to one of the families in mask.
func (m FamilyMask) Accepts(k TyKind) bool {
	return FamilyOf(k)&m != 0
}
