package lexer

import (
	"errors"
	"fmt"
	"strings"

	"kiln/internal/diag"
	"kiln/internal/token"
)

// scanString: "..." с escape-последовательностями, без переводов строк внутри.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '"'
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnterminatedString, sp, "unterminated string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		b := lx.cursor.Bump()
		if b == '"' {
			break
		}
		if b == '\\' {
			lx.scanEscape()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
}

// scanChar: 'a', '\n', '\x41'. Значение - ровно один байт.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\''
	n := 0
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnterminatedChar, sp, "unterminated character literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		if lx.cursor.Peek() == '\'' {
			lx.cursor.Bump()
			break
		}
		if lx.cursor.Bump() == '\\' {
			lx.scanEscape()
		}
		n++
	}
	sp := lx.cursor.SpanFrom(start)
	if n != 1 {
		lx.report(diag.LexBadChar, sp, "character literal must contain exactly one byte")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	return token.Token{Kind: token.CharLit, Span: sp, Text: lx.text(sp)}
}

// scanEscape вызывается после '\\'; ошибки репортятся, но токен не ломается.
func (lx *Lexer) scanEscape() {
	escStart := lx.cursor.Off - 1
	switch lx.cursor.Peek() {
	case 'n', 't', 'r', '0', '\\', '\'', '"':
		lx.cursor.Bump()
	case 'x':
		lx.cursor.Bump()
		if isHex(lx.cursor.Peek()) && isHex(lx.cursor.PeekAt(1)) {
			lx.cursor.Bump()
			lx.cursor.Bump()
			return
		}
		sp := lx.cursor.SpanFrom(Mark(escStart))
		lx.report(diag.LexBadEscape, sp, "invalid hex escape, expected two hex digits")
	default:
		if lx.cursor.EOF() {
			return
		}
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(Mark(escStart))
		lx.report(diag.LexBadEscape, sp, fmt.Sprintf("unknown escape sequence `%s`", lx.text(sp)))
	}
}

var errBadEscape = errors.New("invalid escape sequence")

// Unquote декодирует строковый или символьный литерал вместе с кавычками.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 {
		return "", fmt.Errorf("literal too short: %q", lit)
	}
	q := lit[0]
	if (q != '"' && q != '\'') || lit[len(lit)-1] != q {
		return "", fmt.Errorf("bad quotes in %q", lit)
	}
	body := lit[1 : len(lit)-1]
	if strings.IndexByte(body, '\\') < 0 {
		return body, nil
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errBadEscape
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '\'', '"':
			sb.WriteByte(body[i])
		case 'x':
			if i+2 >= len(body) || !isHex(body[i+1]) || !isHex(body[i+2]) {
				return "", errBadEscape
			}
			sb.WriteByte(hexVal(body[i+1])<<4 | hexVal(body[i+2]))
			i += 2
		default:
			return "", errBadEscape
		}
	}
	// строки - это []u8, невалидный UTF-8 после \x допустим
	return sb.String(), nil
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
