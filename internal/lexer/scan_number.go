package lexer

import (
	"kiln/internal/diag"
	"kiln/internal/token"
)

// scanNumber: 0, 123, 1_000, 0b1010, 0o17, 0xff, 1.5, 1e9, 2.5e-3.
// Точка входит в число только если за ней цифра, поэтому `1..2` и `t.0.1`
// разбираются как `1` `..` `2` и `t` `.` `0.1`.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		case 'x', 'X':
			digit = isHex
		}
		if digit != nil {
			lx.cursor.Bump()
			lx.cursor.Bump()
			n := 0
			for digit(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				if lx.cursor.Bump() != '_' {
					n++
				}
			}
			// хвост вроде 0b102 или 0xfg - съедаем и репортим
			bad := false
			for isIdentContinueByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
				bad = true
			}
			sp := lx.cursor.SpanFrom(start)
			if n == 0 || bad {
				lx.report(diag.LexBadNumber, sp, "invalid number literal `"+lx.text(sp)+"`")
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
			}
			return token.Token{Kind: token.IntLit, Span: sp, Text: lx.text(sp)}
		}
	}

	lx.eatDecimals()

	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.eatDecimals()
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if s := lx.cursor.Peek(); s == '+' || s == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			kind = token.FloatLit
			lx.eatDecimals()
		} else {
			// `1e` без цифр - экспоненты нет, `e` начнёт идентификатор
			lx.cursor.Reset(mark)
		}
	}

	sp := lx.cursor.SpanFrom(start)
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp = lx.cursor.SpanFrom(start)
		lx.report(diag.LexBadNumber, sp, "invalid number literal `"+lx.text(sp)+"`")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) eatDecimals() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}
