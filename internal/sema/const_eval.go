package sema

import (
	"math"
	"strconv"

	"kiln/internal/ast"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

// intLiteral is the constant of an integer literal. Literals above
// math.MaxInt64 have no constant value.
func intLiteral(v uint64) *symbols.ConstValue {
	if v > math.MaxInt64 {
		return nil
	}
	return symbols.IntConst(int64(v))
}

// asFloat reads an int or float constant as float64.
func asFloat(cv *symbols.ConstValue) (float64, bool) {
	switch cv.Kind {
	case symbols.ConstFloat:
		return cv.Float, true
	case symbols.ConstInt:
		return float64(cv.Int), true
	}
	return 0, false
}

func (c *checker) foldBinary(id ast.ExprID, d *ast.ExprBinaryData) {
	l, r := c.constOf(d.Lhs), c.constOf(d.Rhs)
	if l == nil || r == nil {
		return
	}
	var v *symbols.ConstValue
	switch {
	case l.Kind == symbols.ConstInt && r.Kind == symbols.ConstInt:
		v = foldInts(d.Op, l.Int, r.Int)
	case l.Kind == symbols.ConstBool && r.Kind == symbols.ConstBool:
		v = foldBools(d.Op, l.Bool, r.Bool)
	case l.Kind == symbols.ConstStr && r.Kind == symbols.ConstStr:
		switch d.Op {
		case ast.BinEq:
			v = symbols.BoolConst(l.Str == r.Str)
		case ast.BinNe:
			v = symbols.BoolConst(l.Str != r.Str)
		}
	default:
		lf, lok := asFloat(l)
		rf, rok := asFloat(r)
		if lok && rok {
			v = foldFloats(d.Op, lf, rf)
		}
	}
	c.setConst(id, v)
}

func foldInts(op ast.BinaryOp, a, b int64) *symbols.ConstValue {
	switch op {
	case ast.BinAdd:
		return symbols.IntConst(a + b)
	case ast.BinSub:
		return symbols.IntConst(a - b)
	case ast.BinMul:
		return symbols.IntConst(a * b)
	case ast.BinDiv:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return nil
		}
		return symbols.IntConst(a / b)
	case ast.BinRem:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return nil
		}
		return symbols.IntConst(a % b)
	case ast.BinShl:
		if b < 0 || b >= 64 {
			return nil
		}
		return symbols.IntConst(a << uint(b))
	case ast.BinShr:
		if b < 0 || b >= 64 {
			return nil
		}
		return symbols.IntConst(a >> uint(b))
	case ast.BinBitAnd:
		return symbols.IntConst(a & b)
	case ast.BinBitOr:
		return symbols.IntConst(a | b)
	case ast.BinBitXor:
		return symbols.IntConst(a ^ b)
	case ast.BinEq:
		return symbols.BoolConst(a == b)
	case ast.BinNe:
		return symbols.BoolConst(a != b)
	case ast.BinLt:
		return symbols.BoolConst(a < b)
	case ast.BinLe:
		return symbols.BoolConst(a <= b)
	case ast.BinGt:
		return symbols.BoolConst(a > b)
	case ast.BinGe:
		return symbols.BoolConst(a >= b)
	}
	return nil
}

func foldBools(op ast.BinaryOp, a, b bool) *symbols.ConstValue {
	switch op {
	case ast.BinAnd, ast.BinBitAnd:
		return symbols.BoolConst(a && b)
	case ast.BinOr, ast.BinBitOr:
		return symbols.BoolConst(a || b)
	case ast.BinBitXor, ast.BinNe:
		return symbols.BoolConst(a != b)
	case ast.BinEq:
		return symbols.BoolConst(a == b)
	}
	return nil
}

func foldFloats(op ast.BinaryOp, a, b float64) *symbols.ConstValue {
	switch op {
	case ast.BinAdd:
		return symbols.FloatConst(a + b)
	case ast.BinSub:
		return symbols.FloatConst(a - b)
	case ast.BinMul:
		return symbols.FloatConst(a * b)
	case ast.BinDiv:
		if b == 0 {
			return nil
		}
		return symbols.FloatConst(a / b)
	case ast.BinEq:
		return symbols.BoolConst(a == b)
	case ast.BinNe:
		return symbols.BoolConst(a != b)
	case ast.BinLt:
		return symbols.BoolConst(a < b)
	case ast.BinLe:
		return symbols.BoolConst(a <= b)
	case ast.BinGt:
		return symbols.BoolConst(a > b)
	case ast.BinGe:
		return symbols.BoolConst(a >= b)
	}
	return nil
}

func (c *checker) foldUnary(id ast.ExprID, d *ast.ExprUnaryData) {
	cv := c.constOf(d.Operand)
	if cv == nil {
		return
	}
	switch {
	case d.Op == ast.UnPlus:
		c.setConst(id, cv)
	case d.Op == ast.UnNeg && cv.Kind == symbols.ConstInt:
		c.setConst(id, symbols.IntConst(-cv.Int))
	case d.Op == ast.UnNeg && cv.Kind == symbols.ConstFloat:
		c.setConst(id, symbols.FloatConst(-cv.Float))
	case d.Op == ast.UnNot && cv.Kind == symbols.ConstBool:
		c.setConst(id, symbols.BoolConst(!cv.Bool))
	case d.Op == ast.UnNot && cv.Kind == symbols.ConstInt:
		c.setConst(id, symbols.IntConst(^cv.Int))
	}
}

// foldCast converts a constant operand to the target type, wrapping
// integers to the target width.
func (c *checker) foldCast(id, value ast.ExprID, to types.TyKind) {
	cv := c.constOf(value)
	if cv == nil {
		return
	}
	switch to.Kind {
	case types.KindInt, types.KindUint:
		var n int64
		switch cv.Kind {
		case symbols.ConstInt:
			n = cv.Int
		case symbols.ConstBool:
			if cv.Bool {
				n = 1
			}
		case symbols.ConstFloat:
			if math.IsNaN(cv.Float) || math.IsInf(cv.Float, 0) {
				return
			}
			n = int64(cv.Float)
		default:
			return
		}
		c.setConst(id, symbols.IntConst(truncate(n, to)))
	case types.KindFloat:
		if f, ok := asFloat(cv); ok {
			if to.Width == types.Width32 {
				f = float64(float32(f))
			}
			c.setConst(id, symbols.FloatConst(f))
		}
	case types.KindBool:
		if cv.Kind == symbols.ConstBool {
			c.setConst(id, cv)
		}
	}
}

// truncate wraps n to the width and signedness of an integer type.
func truncate(n int64, to types.TyKind) int64 {
	bits := to.Width.Bits()
	if bits >= 64 {
		return n
	}
	mask := uint64(1)<<uint(bits) - 1
	u := uint64(n) & mask
	if to.Kind == types.KindInt && u&(uint64(1)<<uint(bits-1)) != 0 {
		return int64(u | ^mask)
	}
	return int64(u) // #nosec G115 -- u < 2^63
}

// foldAggregate records a tuple constant when every element is constant.
func (c *checker) foldAggregate(id ast.ExprID, elems []ast.ExprID) {
	if len(elems) == 0 {
		return
	}
	out := make([]symbols.ConstValue, len(elems))
	for i, e := range elems {
		cv := c.constOf(e)
		if cv == nil {
			return
		}
		out[i] = *cv
	}
	c.setConst(id, &symbols.ConstValue{Kind: symbols.ConstTuple, Elems: out})
}

func (c *checker) foldStruct(id ast.ExprID, d *ast.ExprStructLitData) {
	out := make([]symbols.ConstField, 0, len(d.Fields))
	for _, f := range d.Fields {
		cv := c.constOf(f.Value)
		if cv == nil {
			return
		}
		out = append(out, symbols.ConstField{Name: f.Name, Value: *cv})
	}
	c.setConst(id, &symbols.ConstValue{Kind: symbols.ConstStruct, Fields: out})
}

// foldMember reads a field or element out of a constant aggregate.
func (c *checker) foldMember(id ast.ExprID, d *ast.ExprMemberData) {
	base := c.constOf(d.Expr)
	if base == nil {
		return
	}
	if i, err := strconv.Atoi(d.Member); err == nil {
		if v, ok := base.Elem(i); ok {
			c.setConst(id, v)
		}
		return
	}
	if v, ok := base.Field(d.Member); ok {
		c.setConst(id, v)
	}
}
