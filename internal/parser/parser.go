package parser

import (
	"fmt"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/token"
)

// ModuleResolver maps `use`/`@import` specifiers to module files.
// The driver passes *project.Resolver; a nil resolver leaves imports unresolved.
type ModuleResolver interface {
	ResolveUse(fromFile, name string) (ast.ModuleInfo, error)
	ResolveImport(fromFile, path string) (ast.ModuleInfo, error)
}

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	Resolver      ModuleResolver
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File    ast.FileID
	Imports []ast.ModuleInfo
	Errors  uint
}

// Restrictions - контекстные флаги, подавляющие отдельные продукции грамматики.
type Restrictions uint8

const (
	// NoStructLiteral: `{` после выражения открывает тело if/while/for, а не литерал.
	NoStructLiteral Restrictions = 1 << iota
	// NoCast: постфиксный `as` не разбирается, пока читаем цель другого `as`.
	NoCast
	// TypeAnnotation: позиция типа - без `=` и без хвостового fn-литерала.
	TypeAnnotation
)

func (r Restrictions) has(f Restrictions) bool { return r&f != 0 }

// Parser - состояние парсера на один файл
type Parser struct {
	toks      []token.Token
	pos       int
	marks     []int
	res       Restrictions
	arenas    *ast.Builder
	file      ast.FileID
	src       *source.File
	opts      Options
	declNames []string // имена объявлений `type X = struct {...}` для именования структур
}

// ParseFile - входная точка для разбора одного файла.
// toks должен заканчиваться EOF (lexer.Tokenize это гарантирует).
func ParseFile(src *source.File, toks []token.Token, arenas *ast.Builder, opts Options) Result {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		end := source.Span{File: src.ID}
		if len(toks) > 0 {
			end = toks[len(toks)-1].Span.After()
		}
		toks = append(toks, token.Token{Kind: token.EOF, Span: end})
	}
	p := Parser{
		toks:   toks,
		arenas: arenas,
		src:    src,
		opts:   opts,
	}
	p.file = arenas.NewFile(toks[0].Span)
	p.parseItems()
	// файл покрывает все элементы, до EOF включительно
	f := arenas.Files.Get(p.file)
	f.Span = f.Span.Cover(toks[len(toks)-1].Span)
	return Result{
		File:    p.file,
		Imports: arenas.Files.Get(p.file).Imports,
		Errors:  p.opts.CurrentErrors,
	}
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) prev() token.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) atEOF() bool { return p.at(token.EOF) }

// advance - съедает текущий токен; на EOF стоит на месте.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// mark/resetToMark - ограниченный откат для локально неоднозначных продукций.
func (p *Parser) mark()        { p.marks = append(p.marks, p.pos) }
func (p *Parser) popMark()     { p.marks = p.marks[:len(p.marks)-1] }
func (p *Parser) resetToMark() { p.pos = p.marks[len(p.marks)-1]; p.popMark() }

// withRes ставит restrictions на время f и восстанавливает прежние.
func (p *Parser) withRes(r Restrictions, f func() (ast.ExprID, bool)) (ast.ExprID, bool) {
	old := p.res
	p.res = r
	defer func() { p.res = old }()
	return f()
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	return "`" + tok.Lexeme() + "`"
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	code := diag.SynUnexpectedToken
	switch k {
	case token.Semicolon:
		code = diag.SynExpectSemicolon
	case token.Ident:
		code = diag.SynExpectIdentifier
	case token.Colon:
		code = diag.SynExpectColon
	case token.RParen, token.RBrace, token.RBracket:
		code = diag.SynUnclosedDelimiter
	}
	p.errExpected(code, what)
	return token.Token{Kind: token.Invalid, Span: p.peek().Span}, false
}

func (p *Parser) expectIdent() (token.Token, bool) {
	return p.expect(token.Ident, "an identifier")
}

// errExpected: "expected X, got Y" на текущем токене.
func (p *Parser) errExpected(code diag.Code, what string) {
	p.emit(code, p.peek().Span, fmt.Sprintf("expected %s, got %s", what, describe(p.peek())))
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	p.opts.CurrentErrors++
	if p.opts.Reporter == nil || (p.opts.MaxErrors != 0 && p.opts.CurrentErrors > p.opts.MaxErrors) {
		return nil
	}
	return diag.ReportError(p.opts.Reporter, code, sp, msg)
}

// emit - report + Emit для простых случаев без меток.
func (p *Parser) emit(code diag.Code, sp source.Span, msg string) {
	p.report(code, sp, msg).Emit()
}

// recover прокручивает до ближайшей границы инструкции: `;` (съедаем),
// токен с переводом строки перед ним или `}`. Гарантирует продвижение,
// если с начала инструкции (start) ничего не было съедено.
func (p *Parser) recover(start int) {
	for !p.atEOF() {
		tok := p.peek()
		if tok.Kind == token.Semicolon {
			p.advance()
			return
		}
		if p.pos > start && (tok.NewlineBefore || tok.Kind == token.RBrace) {
			return
		}
		p.advance()
	}
}

func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.To(p.prev().Span)
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	return p.arenas.Exprs.Span(id)
}

func (p *Parser) declName() string {
	if n := len(p.declNames); n > 0 {
		return p.declNames[n-1]
	}
	return ""
}
