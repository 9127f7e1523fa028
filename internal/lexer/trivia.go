package lexer

import "kiln/internal/diag"

// skipTrivia пропускает пробелы и комментарии, запоминая переводы строк.
// Блочные комментарии вложенные: /* a /* b */ c */.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == '\n':
			lx.newline = true
			lx.cursor.Bump()
		case b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v':
			lx.cursor.Bump()
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.skipBlockComment()
		default:
			return
		}
	}
}

func (lx *Lexer) skipBlockComment() {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	depth := 1
	for depth > 0 {
		if lx.cursor.EOF() {
			lx.report(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
			return
		}
		switch b := lx.cursor.Bump(); {
		case b == '\n':
			lx.newline = true
		case b == '/' && lx.cursor.Peek() == '*':
			lx.cursor.Bump()
			depth++
		case b == '*' && lx.cursor.Peek() == '/':
			lx.cursor.Bump()
			depth--
		}
	}
}
