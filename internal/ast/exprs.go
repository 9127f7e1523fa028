package ast

import (
	"kiln/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena       *Arena[Expr]
	Idents      *Arena[ExprIdentData]
	Literals    *Arena[ExprLiteralData]
	Bindings    *Arena[ExprBindingData]
	Uses        *Arena[ExprUseData]
	Builtins    *Arena[ExprBuiltinData]
	Defers      *Arena[ExprDeferData]
	Assigns     *Arena[ExprAssignData]
	Casts       *Arena[ExprCastData]
	Functions   *Arena[ExprFunctionData]
	Whiles      *Arena[ExprWhileData]
	Fors        *Arena[ExprForData]
	Returns     *Arena[ExprReturnData]
	Ifs         *Arena[ExprIfData]
	Blocks      *Arena[ExprBlockData]
	Binaries    *Arena[ExprBinaryData]
	Unaries     *Arena[ExprUnaryData]
	Subscripts  *Arena[ExprSubscriptData]
	Slices      *Arena[ExprSliceData]
	Calls       *Arena[ExprCallData]
	Members     *Arena[ExprMemberData]
	ArrayLits   *Arena[ExprArrayLitData]
	TupleLits   *Arena[ExprTupleLitData]
	StructLits  *Arena[ExprStructLitData]
	TypeRefs    *Arena[ExprTypeRefData]
	ArrayTypes  *Arena[ExprArrayTypeData]
	StructTypes *Arena[ExprStructTypeData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
// If capHint is 0, a default capacity of 1<<8 is used for the node arena; payload arenas start smaller.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint / 8
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Idents:      NewArena[ExprIdentData](capHint / 2),
		Literals:    NewArena[ExprLiteralData](capHint / 4),
		Bindings:    NewArena[ExprBindingData](small),
		Uses:        NewArena[ExprUseData](small),
		Builtins:    NewArena[ExprBuiltinData](small),
		Defers:      NewArena[ExprDeferData](small),
		Assigns:     NewArena[ExprAssignData](small),
		Casts:       NewArena[ExprCastData](small),
		Functions:   NewArena[ExprFunctionData](small),
		Whiles:      NewArena[ExprWhileData](small),
		Fors:        NewArena[ExprForData](small),
		Returns:     NewArena[ExprReturnData](small),
		Ifs:         NewArena[ExprIfData](small),
		Blocks:      NewArena[ExprBlockData](small),
		Binaries:    NewArena[ExprBinaryData](small),
		Unaries:     NewArena[ExprUnaryData](small),
		Subscripts:  NewArena[ExprSubscriptData](small),
		Slices:      NewArena[ExprSliceData](small),
		Calls:       NewArena[ExprCallData](small),
		Members:     NewArena[ExprMemberData](small),
		ArrayLits:   NewArena[ExprArrayLitData](small),
		TupleLits:   NewArena[ExprTupleLitData](small),
		StructLits:  NewArena[ExprStructLitData](small),
		TypeRefs:    NewArena[ExprTypeRefData](small),
		ArrayTypes:  NewArena[ExprArrayTypeData](small),
		StructTypes: NewArena[ExprStructTypeData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func newWith[T any](e *Exprs, a *Arena[T], kind ExprKind, span source.Span, data T) ExprID {
	return e.new(kind, span, PayloadID(a.Allocate(data)))
}

func payloadOf[T any](e *Exprs, a *Arena[T], id ExprID, kinds ...ExprKind) (*T, bool) {
	expr := e.Get(id)
	if expr == nil {
		return nil, false
	}
	for _, k := range kinds {
		if expr.Kind == k {
			return a.Get(uint32(expr.Payload)), true
		}
	}
	return nil, false
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Span returns the span of id, or an empty span for NoExprID.
func (e *Exprs) Span(id ExprID) source.Span {
	if x := e.Get(id); x != nil {
		return x.Span
	}
	return source.Span{}
}

// Kind returns the kind of id; ExprError for NoExprID.
func (e *Exprs) Kind(id ExprID) ExprKind {
	if x := e.Get(id); x != nil {
		return x.Kind
	}
	return ExprError
}

// SetSpan переписывает span узла (скобки расширяют span вложенного выражения).
func (e *Exprs) SetSpan(id ExprID, sp source.Span) {
	if x := e.Get(id); x != nil {
		x.Span = sp
	}
}

// Узлы без данных

func (e *Exprs) NewError(span source.Span) ExprID       { return e.new(ExprError, span, NoPayloadID) }
func (e *Exprs) NewPlaceholder(span source.Span) ExprID { return e.new(ExprPlaceholder, span, NoPayloadID) }
func (e *Exprs) NewBreak(span source.Span) ExprID       { return e.new(ExprBreak, span, NoPayloadID) }
func (e *Exprs) NewContinue(span source.Span) ExprID    { return e.new(ExprContinue, span, NoPayloadID) }

// NewIdent creates a new identifier expression with an unresolved binding.
func (e *Exprs) NewIdent(span source.Span, name string) ExprID {
	return newWith(e, e.Idents, ExprIdent, span, ExprIdentData{Name: name})
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	return payloadOf(e, e.Idents, id, ExprIdent)
}

func (e *Exprs) NewLiteral(span source.Span, lit ExprLiteralData) ExprID {
	return newWith(e, e.Literals, ExprLiteral, span, lit)
}

func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	return payloadOf(e, e.Literals, id, ExprLiteral)
}

func (e *Exprs) NewBinding(span source.Span, data ExprBindingData) ExprID {
	return newWith(e, e.Bindings, ExprBinding, span, data)
}

func (e *Exprs) Binding(id ExprID) (*ExprBindingData, bool) {
	return payloadOf(e, e.Bindings, id, ExprBinding)
}

func (e *Exprs) NewUse(span source.Span, data ExprUseData) ExprID {
	return newWith(e, e.Uses, ExprUse, span, data)
}

func (e *Exprs) Use(id ExprID) (*ExprUseData, bool) {
	return payloadOf(e, e.Uses, id, ExprUse)
}

func (e *Exprs) NewBuiltin(span source.Span, data ExprBuiltinData) ExprID {
	return newWith(e, e.Builtins, ExprBuiltin, span, data)
}

func (e *Exprs) Builtin(id ExprID) (*ExprBuiltinData, bool) {
	return payloadOf(e, e.Builtins, id, ExprBuiltin)
}

func (e *Exprs) NewDefer(span source.Span, inner ExprID) ExprID {
	return newWith(e, e.Defers, ExprDefer, span, ExprDeferData{Expr: inner})
}

func (e *Exprs) Defer(id ExprID) (*ExprDeferData, bool) {
	return payloadOf(e, e.Defers, id, ExprDefer)
}

func (e *Exprs) NewAssign(span source.Span, lhs, rhs ExprID) ExprID {
	return newWith(e, e.Assigns, ExprAssign, span, ExprAssignData{Lhs: lhs, Rhs: rhs})
}

func (e *Exprs) Assign(id ExprID) (*ExprAssignData, bool) {
	return payloadOf(e, e.Assigns, id, ExprAssign)
}

func (e *Exprs) NewCast(span source.Span, value, target ExprID) ExprID {
	return newWith(e, e.Casts, ExprCast, span, ExprCastData{Expr: value, Target: target})
}

func (e *Exprs) Cast(id ExprID) (*ExprCastData, bool) {
	return payloadOf(e, e.Casts, id, ExprCast)
}

// NewFunction creates a function literal; a NoExprID body makes it a function type.
func (e *Exprs) NewFunction(span source.Span, sig FnSig, body ExprID) ExprID {
	kind := ExprFunction
	if !body.IsValid() {
		kind = ExprFnType
	}
	return newWith(e, e.Functions, kind, span, ExprFunctionData{Sig: sig, Body: body})
}

// Function returns data for both function literals and function types.
func (e *Exprs) Function(id ExprID) (*ExprFunctionData, bool) {
	return payloadOf(e, e.Functions, id, ExprFunction, ExprFnType)
}

func (e *Exprs) NewWhile(span source.Span, cond, body ExprID) ExprID {
	return newWith(e, e.Whiles, ExprWhile, span, ExprWhileData{Cond: cond, Body: body})
}

func (e *Exprs) While(id ExprID) (*ExprWhileData, bool) {
	return payloadOf(e, e.Whiles, id, ExprWhile)
}

func (e *Exprs) NewFor(span source.Span, data ExprForData) ExprID {
	return newWith(e, e.Fors, ExprFor, span, data)
}

func (e *Exprs) For(id ExprID) (*ExprForData, bool) {
	return payloadOf(e, e.Fors, id, ExprFor)
}

func (e *Exprs) NewReturn(span source.Span, value ExprID) ExprID {
	return newWith(e, e.Returns, ExprReturn, span, ExprReturnData{Value: value})
}

func (e *Exprs) Return(id ExprID) (*ExprReturnData, bool) {
	return payloadOf(e, e.Returns, id, ExprReturn)
}

func (e *Exprs) NewIf(span source.Span, cond, then, otherwise ExprID) ExprID {
	return newWith(e, e.Ifs, ExprIf, span, ExprIfData{Cond: cond, Then: then, Else: otherwise})
}

func (e *Exprs) If(id ExprID) (*ExprIfData, bool) {
	return payloadOf(e, e.Ifs, id, ExprIf)
}

func (e *Exprs) NewBlock(span source.Span, stmts []ExprID, yields bool) ExprID {
	return newWith(e, e.Blocks, ExprBlock, span, ExprBlockData{Stmts: stmts, Yields: yields})
}

func (e *Exprs) Block(id ExprID) (*ExprBlockData, bool) {
	return payloadOf(e, e.Blocks, id, ExprBlock)
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, lhs, rhs ExprID) ExprID {
	return newWith(e, e.Binaries, ExprBinary, span, ExprBinaryData{Op: op, Lhs: lhs, Rhs: rhs})
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	return payloadOf(e, e.Binaries, id, ExprBinary)
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, mut bool, operand ExprID) ExprID {
	return newWith(e, e.Unaries, ExprUnary, span, ExprUnaryData{Op: op, Mut: mut, Operand: operand})
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	return payloadOf(e, e.Unaries, id, ExprUnary)
}

func (e *Exprs) NewSubscript(span source.Span, target, index ExprID) ExprID {
	return newWith(e, e.Subscripts, ExprSubscript, span, ExprSubscriptData{Expr: target, Index: index})
}

func (e *Exprs) Subscript(id ExprID) (*ExprSubscriptData, bool) {
	return payloadOf(e, e.Subscripts, id, ExprSubscript)
}

func (e *Exprs) NewSlice(span source.Span, target, low, high ExprID) ExprID {
	return newWith(e, e.Slices, ExprSlice, span, ExprSliceData{Expr: target, Low: low, High: high})
}

func (e *Exprs) Slice(id ExprID) (*ExprSliceData, bool) {
	return payloadOf(e, e.Slices, id, ExprSlice)
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []CallArg) ExprID {
	return newWith(e, e.Calls, ExprCall, span, ExprCallData{Callee: callee, Args: args})
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	return payloadOf(e, e.Calls, id, ExprCall)
}

func (e *Exprs) NewMember(span source.Span, target ExprID, member string) ExprID {
	return newWith(e, e.Members, ExprMember, span, ExprMemberData{Expr: target, Member: member})
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	return payloadOf(e, e.Members, id, ExprMember)
}

func (e *Exprs) NewArrayLit(span source.Span, data ExprArrayLitData) ExprID {
	return newWith(e, e.ArrayLits, ExprArrayLit, span, data)
}

func (e *Exprs) ArrayLit(id ExprID) (*ExprArrayLitData, bool) {
	return payloadOf(e, e.ArrayLits, id, ExprArrayLit)
}

func (e *Exprs) NewTupleLit(span source.Span, elems []ExprID) ExprID {
	return newWith(e, e.TupleLits, ExprTupleLit, span, ExprTupleLitData{Elems: elems})
}

func (e *Exprs) TupleLit(id ExprID) (*ExprTupleLitData, bool) {
	return payloadOf(e, e.TupleLits, id, ExprTupleLit)
}

func (e *Exprs) NewStructLit(span source.Span, typeExpr ExprID, fields []FieldInit) ExprID {
	return newWith(e, e.StructLits, ExprStructLit, span, ExprStructLitData{Type: typeExpr, Fields: fields})
}

func (e *Exprs) StructLit(id ExprID) (*ExprStructLitData, bool) {
	return payloadOf(e, e.StructLits, id, ExprStructLit)
}

// NewTypeRef creates *T, [*]T or []T depending on kind.
func (e *Exprs) NewTypeRef(kind ExprKind, span source.Span, inner ExprID, mut bool) ExprID {
	return newWith(e, e.TypeRefs, kind, span, ExprTypeRefData{Inner: inner, Mut: mut})
}

func (e *Exprs) TypeRef(id ExprID) (*ExprTypeRefData, bool) {
	return payloadOf(e, e.TypeRefs, id, ExprPointerType, ExprMultiPointerType, ExprSliceType)
}

func (e *Exprs) NewArrayType(span source.Span, inner, size ExprID) ExprID {
	return newWith(e, e.ArrayTypes, ExprArrayType, span, ExprArrayTypeData{Inner: inner, Size: size})
}

func (e *Exprs) ArrayType(id ExprID) (*ExprArrayTypeData, bool) {
	return payloadOf(e, e.ArrayTypes, id, ExprArrayType)
}

func (e *Exprs) NewStructType(span source.Span, data ExprStructTypeData) ExprID {
	return newWith(e, e.StructTypes, ExprStructType, span, data)
}

func (e *Exprs) StructType(id ExprID) (*ExprStructTypeData, bool) {
	return payloadOf(e, e.StructTypes, id, ExprStructType)
}
