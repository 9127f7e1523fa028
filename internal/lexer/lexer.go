package lexer

import (
	"kiln/internal/source"
	"kiln/internal/token"
)

type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	newline bool // между предыдущим и следующим токеном был перевод строки
	errors  int
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:    file,
		cursor:  NewCursor(file),
		opts:    opts,
		newline: true,
	}
}

// Next возвращает следующий значимый токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()

	nl := lx.newline
	lx.newline = false

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan(), NewlineBefore: nl}
	}

	ch := lx.cursor.Peek()
	var tok token.Token
	switch {
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	case ch == '\'':
		tok = lx.scanChar()
	default:
		tok = lx.scanOperatorOrPunct()
	}
	tok.NewlineBefore = nl
	return tok
}

// Tokenize сканирует файл целиком; результат всегда заканчивается ровно одним EOF.
func (lx *Lexer) Tokenize() []token.Token {
	toks := make([]token.Token, 0, len(lx.file.Content)/4+1)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// ErrorCount reports how many lexical errors were emitted so far.
func (lx *Lexer) ErrorCount() int { return lx.errors }

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}
