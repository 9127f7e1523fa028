package sema

import (
	"fmt"
	"math"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/symbols"
	"kiln/internal/types"
)

// reportOverflow runs once unification is final: a literal's type may be
// fixed by a later declaration. Only the outermost folded integer is
// checked, so `-128` as i8 is one constant and not 128 negated.
func (c *checker) reportOverflow() {
	for _, m := range c.modules {
		if c.ctx.Err() != nil {
			return
		}
		covered := make(map[ast.ExprID]bool)
		stack := append([]ast.ExprID(nil), m.items...)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			children := m.exprs.Children(id)
			stack = append(stack, children...)

			key := ExprKey{Module: m.ID, Expr: id}
			cv := c.result.Consts[key]
			if cv == nil || cv.Kind != symbols.ConstInt {
				continue
			}
			for _, ch := range children {
				covered[ch] = true
			}
			if covered[id] || !producesConst(m.exprs, id) {
				continue
			}
			ty, ok := c.result.ExprTypes[key]
			if !ok {
				continue
			}
			k := c.tycx.Kind(ty)
			lo, hi, ok := intRange(k)
			if !ok || (cv.Int >= lo && cv.Int <= hi) {
				continue
			}
			name := c.tycx.Display(k)
			diag.ReportError(c.out, diag.SemaConstOverflow, m.exprs.Span(id),
				fmt.Sprintf("integer constant %d overflows `%s`", cv.Int, name)).
				WithNote(m.exprs.Span(id), fmt.Sprintf("`%s` holds values from %d to %d", name, lo, hi)).
				Emit()
		}
	}
}

// producesConst: идентификаторы и доступ к полям лишь передают значение,
// которое уже проверено там, где оно появилось. `!x` складывается как
// int64 и для беззнаковых типов даёт отрицательное число.
func producesConst(exprs *ast.Exprs, id ast.ExprID) bool {
	switch exprs.Kind(id) {
	case ast.ExprLiteral, ast.ExprBinary:
		return true
	case ast.ExprUnary:
		d, _ := exprs.Unary(id)
		return d.Op != ast.UnNot
	}
	return false
}

// intRange returns the values a concrete integer type can hold, clipped to
// int64 where constants live.
func intRange(k types.TyKind) (lo, hi int64, ok bool) {
	bits := k.Width.Bits()
	switch k.Kind {
	case types.KindInt:
		if bits >= 64 {
			return math.MinInt64, math.MaxInt64, true
		}
		return -1 << (bits - 1), 1<<(bits-1) - 1, true
	case types.KindUint:
		if bits >= 64 {
			return 0, math.MaxInt64, true
		}
		return 0, 1<<bits - 1, true
	}
	return 0, 0, false
}

// checkDivisor reports an integer division whose divisor folds to zero.
func (c *checker) checkDivisor(d *ast.ExprBinaryData, result types.Ty) {
	if d.Op != ast.BinDiv && d.Op != ast.BinRem {
		return
	}
	cv := c.constOf(d.Rhs)
	if cv == nil || cv.Kind != symbols.ConstInt || cv.Int != 0 {
		return
	}
	if k := c.tycx.Kind(result); k.IsAnyFloat() || k.Kind == types.KindFloat {
		return
	}
	msg := "attempt to divide by zero"
	if d.Op == ast.BinRem {
		msg = "attempt to calculate the remainder with a divisor of zero"
	}
	diag.ReportError(c.reporter, diag.SemaDivideByZero, c.span(d.Rhs), msg).Emit()
}
