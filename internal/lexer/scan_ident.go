package lexer

import (
	"golang.org/x/text/unicode/norm"

	"kiln/internal/diag"
	"kiln/internal/token"
)

// scanIdentOrKeyword сканирует идентификатор и проверяет через LookupKeyword.
// Не-ASCII идентификаторы приводятся к NFC, чтобы "é" и "é" совпадали.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	ascii := true

	r, sz := lx.peekRune()
	if r < utf8RuneSelf {
		lx.cursor.Bump()
	} else {
		if !isIdentStartRune(r) {
			lx.bumpRune()
			sp := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnknownChar, sp, "unknown character `"+lx.text(sp)+"`")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		ascii = false
		lx.cursor.Off += uint32(sz) // #nosec G115 -- rune size is at most 4
	}

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b < utf8RuneSelf {
			if !isIdentContinueByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r2, _ := lx.peekRune()
		if !isIdentContinueRune(r2) {
			break
		}
		ascii = false
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if !ascii {
		text = norm.NFC.String(text)
	}
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}
