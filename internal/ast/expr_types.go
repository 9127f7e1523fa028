package ast

import (
	"kiln/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
// Объявления, операторы и типы - тоже выражения: дерево одно.
type ExprKind uint8

const (
	// ExprError replaces a node that failed to parse.
	ExprError ExprKind = iota
	// ExprPlaceholder is `_` in expression position.
	ExprPlaceholder
	ExprIdent
	ExprLiteral
	ExprBinding
	ExprUse
	ExprBuiltin
	ExprDefer
	ExprAssign
	ExprCast
	ExprFunction
	ExprFnType
	ExprWhile
	ExprFor
	ExprBreak
	ExprContinue
	ExprReturn
	ExprIf
	ExprBlock
	ExprBinary
	ExprUnary
	ExprSubscript
	ExprSlice
	ExprCall
	ExprMember
	ExprArrayLit
	ExprTupleLit
	ExprStructLit
	ExprPointerType
	ExprMultiPointerType
	ExprArrayType
	ExprSliceType
	ExprStructType

	exprKindCount
)

var exprKindNames = [exprKindCount]string{
	ExprError: "Error", ExprPlaceholder: "Placeholder", ExprIdent: "Ident", ExprLiteral: "Literal",
	ExprBinding: "Binding", ExprUse: "Use", ExprBuiltin: "Builtin", ExprDefer: "Defer",
	ExprAssign: "Assign", ExprCast: "Cast", ExprFunction: "Function", ExprFnType: "FnType",
	ExprWhile: "While", ExprFor: "For", ExprBreak: "Break", ExprContinue: "Continue",
	ExprReturn: "Return", ExprIf: "If", ExprBlock: "Block", ExprBinary: "Binary",
	ExprUnary: "Unary", ExprSubscript: "Subscript", ExprSlice: "Slice", ExprCall: "Call",
	ExprMember: "MemberAccess", ExprArrayLit: "ArrayLiteral", ExprTupleLit: "TupleLiteral",
	ExprStructLit: "StructLiteral", ExprPointerType: "PointerType",
	ExprMultiPointerType: "MultiPointerType", ExprArrayType: "ArrayType",
	ExprSliceType: "SliceType", ExprStructType: "StructType",
}

func (k ExprKind) String() string {
	if k < exprKindCount {
		return exprKindNames[k]
	}
	return "Unknown"
}

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// BinaryOp enumerates binary operator kinds.
type BinaryOp uint8

const (
	// Арифметические
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem

	// Сравнения
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe

	// Логические
	BinAnd
	BinOr

	// Битовые
	BinShl
	BinShr
	BinBitAnd
	BinBitOr
	BinBitXor
)

var binaryOpText = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinRem: "%",
	BinEq: "==", BinNe: "!=", BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	BinAnd: "&&", BinOr: "||", BinShl: "<<", BinShr: ">>",
	BinBitAnd: "&", BinBitOr: "|", BinBitXor: "^",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsComparison reports ==, !=, <, <=, >, >=.
func (op BinaryOp) IsComparison() bool { return op >= BinEq && op <= BinGe }

// IsLogical reports && and ||.
func (op BinaryOp) IsLogical() bool { return op == BinAnd || op == BinOr }

// IsShift reports << and >>.
func (op BinaryOp) IsShift() bool { return op == BinShl || op == BinShr }

type UnaryOp uint8

const (
	UnRef UnaryOp = iota
	UnDeref
	UnNeg
	UnPlus
	UnNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnRef:
		return "&"
	case UnDeref:
		return ".*"
	case UnNeg:
		return "-"
	case UnPlus:
		return "+"
	case UnNot:
		return "!"
	default:
		return "?"
	}
}

type LitKind uint8

const (
	LitNil LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitStr
	LitChar
)

// ExprLiteralData хранит уже декодированное значение литерала.
type ExprLiteralData struct {
	Kind  LitKind
	Bool  bool
	Int   uint64 // LitInt и LitChar
	Float float64
	Str   string
}

type ExprIdentData struct {
	Name    string
	Binding BindingID
}

// BindingKind distinguishes the declaration forms that introduce names.
type BindingKind uint8

const (
	// BindLet - `let pattern [: T] [= value]`.
	BindLet BindingKind = iota
	BindFunction
	BindExternFn
	BindExternVar
	BindType
)

func (k BindingKind) String() string {
	switch k {
	case BindLet:
		return "let"
	case BindFunction:
		return "function"
	case BindExternFn:
		return "extern function"
	case BindExternVar:
		return "extern variable"
	case BindType:
		return "type"
	default:
		return "binding"
	}
}

// ExprBindingData describes every declaration. Functions, externs and type
// aliases carry a Symbol pattern holding their name.
type ExprBindingData struct {
	Kind       BindingKind
	Visibility Visibility
	Pattern    PatternID
	TypeExpr   ExprID // явная аннотация; для extern fn - ExprFnType
	Value      ExprID
	Static     bool
	Lib        string // библиотека для extern
}

// ExprUseData is one imported name. `use a.{b, c}` produces two of them.
type ExprUseData struct {
	Module     ModuleInfo
	Alias      NameSpan
	Path       []NameSpan // путь внутри модуля; пустой - сам модуль
	Wildcard   bool
	Visibility Visibility
	Binding    BindingID
}

type BuiltinKind uint8

const (
	BuiltinSizeOf BuiltinKind = iota
	BuiltinAlignOf
	BuiltinImport
	BuiltinPanic
)

func (k BuiltinKind) String() string {
	switch k {
	case BuiltinSizeOf:
		return "size_of"
	case BuiltinAlignOf:
		return "align_of"
	case BuiltinImport:
		return "import"
	case BuiltinPanic:
		return "panic"
	default:
		return "builtin"
	}
}

type ExprBuiltinData struct {
	Kind   BuiltinKind
	Arg    ExprID
	Module ModuleInfo // только для @import
}

type ExprDeferData struct {
	Expr ExprID
}

type ExprAssignData struct {
	Lhs ExprID
	Rhs ExprID
}

type ExprCastData struct {
	Expr   ExprID
	Target ExprID
}

type Param struct {
	Pattern PatternID
	Type    ExprID
}

// FnSig is shared by function literals, declarations and function types.
type FnSig struct {
	Name     string
	Params   []Param
	Ret      ExprID // NoExprID - возвращает ()
	Variadic bool
	Span     source.Span
}

type ExprFunctionData struct {
	Sig  FnSig
	Body ExprID // NoExprID для ExprFnType
}

type ExprWhileData struct {
	Cond ExprID
	Body ExprID
}

// ForVar is an iteration variable of a `for` loop.
type ForVar struct {
	Name    string
	Span    source.Span
	Binding BindingID
}

// ExprForData: `for x, i in start..end {}` или `for x in value {}` (End == NoExprID).
type ExprForData struct {
	Iter  ForVar
	Index ForVar // Name == "" если индекса нет
	Start ExprID
	End   ExprID
	Body  ExprID
}

type ExprReturnData struct {
	Value ExprID
}

type ExprIfData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

type ExprBlockData struct {
	Stmts  []ExprID
	Yields bool
}

type ExprBinaryData struct {
	Op  BinaryOp
	Lhs ExprID
	Rhs ExprID
}

type ExprUnaryData struct {
	Op      UnaryOp
	Mut     bool // для &mut
	Operand ExprID
}

type ExprSubscriptData struct {
	Expr  ExprID
	Index ExprID
}

type ExprSliceData struct {
	Expr ExprID
	Low  ExprID
	High ExprID
}

type CallArg struct {
	Name   NameSpan // Name == "" для позиционного аргумента
	Value  ExprID
	Spread bool
}

type ExprCallData struct {
	Callee ExprID
	Args   []CallArg
}

type ExprMemberData struct {
	Expr   ExprID
	Member string
}

// ExprArrayLitData: `.[a, b]` или `.[v; n]` (Len != NoExprID).
type ExprArrayLitData struct {
	Elems []ExprID
	Fill  ExprID
	Len   ExprID
}

type ExprTupleLitData struct {
	Elems []ExprID
}

type FieldInit struct {
	Name  string
	Value ExprID
	Span  source.Span
}

// ExprStructLitData: `T { x: 1 }` или анонимный `.{ x: 1 }` (Type == NoExprID).
type ExprStructLitData struct {
	Type   ExprID
	Fields []FieldInit
}

// ExprTypeRefData covers *T, [*]T and []T.
type ExprTypeRefData struct {
	Inner ExprID
	Mut   bool
}

type ExprArrayTypeData struct {
	Inner ExprID
	Size  ExprID
}

type StructKind uint8

const (
	StructPlain StructKind = iota
	StructPacked
	StructUnion
)

type FieldDecl struct {
	Name string
	Type ExprID
	Span source.Span
}

type ExprStructTypeData struct {
	Name    string // имя объявления `type Name = struct {...}`, иначе ""
	Kind    StructKind
	Fields  []FieldDecl
	Binding BindingID
}
