package parser

import (
	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/source"
	"kiln/internal/token"
)

// parseItems - основной цикл верхнего уровня. Ошибка в одном объявлении не
// останавливает разбор: на его месте остаётся Error-узел, а цикл продолжается
// с ближайшей границы.
func (p *Parser) parseItems() {
	for !p.atEOF() {
		if p.opts.Enough() {
			return
		}
		if p.eat(token.Semicolon) {
			continue
		}
		start := p.pos
		startSpan := p.peek().Span
		if !p.parseItem() {
			p.recover(start)
			p.arenas.PushItem(p.file, p.arenas.Exprs.NewError(p.spanFrom(startSpan)))
		}
	}
}

// parseItem разбирает одно объявление и добавляет его в файл.
// `use a.{b, c}` добавляет несколько узлов.
func (p *Parser) parseItem() bool {
	start := p.peek().Span
	vis := ast.Private
	if p.eat(token.KwPub) {
		vis = ast.Public
	}

	tok := p.peek()
	var (
		item ast.ExprID
		ok   bool
	)
	switch tok.Kind {
	case token.KwLet:
		p.advance()
		item, ok = p.parseLet(start, vis)
		ok = ok && p.expectSemi()
	case token.KwFn:
		p.advance()
		item, ok = p.parseFnDecl(start, vis)
	case token.KwType:
		p.advance()
		item, ok = p.parseTypeDecl(start, vis)
		ok = ok && p.expectSemi()
	case token.KwExtern:
		p.advance()
		item, ok = p.parseExtern(start, vis)
		ok = ok && p.expectSemi()
	case token.KwUse:
		p.advance()
		uses, good := p.parseUse(start, vis)
		if !good || !p.expectSemi() {
			return false
		}
		for _, u := range uses {
			p.arenas.PushItem(p.file, u)
		}
		return true
	default:
		p.errExpected(diag.SynUnexpectedTopLevel, "`let`, `fn`, `type`, `extern` or `use`")
		return false
	}
	if !ok {
		return false
	}
	p.arenas.PushItem(p.file, item)
	return true
}

func (p *Parser) expectSemi() bool {
	if p.at(token.Semicolon) {
		p.advance()
		return true
	}
	p.emit(diag.SynExpectSemicolon, p.prev().Span.After(), "expected `;`, got "+describe(p.peek()))
	return false
}

// parseTypeDecl: `type Name = <type expr>`.
func (p *Parser) parseTypeDecl(start source.Span, vis ast.Visibility) (ast.ExprID, bool) {
	id, ok := p.expectIdent()
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.Assign, "`=`"); !ok {
		return ast.NoExprID, false
	}
	p.declNames = append(p.declNames, id.Text)
	value, ok := p.parseExpr()
	p.declNames = p.declNames[:len(p.declNames)-1]
	if !ok {
		return ast.NoExprID, false
	}
	pat := p.arenas.Patterns.NewSymbol(ast.SymbolPattern{Name: id.Text, Span: id.Span})
	return p.arenas.Exprs.NewBinding(p.spanFrom(start), ast.ExprBindingData{
		Kind:       ast.BindType,
		Visibility: vis,
		Pattern:    pat,
		Value:      value,
	}), true
}

// parseExtern: `extern "lib" fn name(params) -> T` или `extern "lib" let [mut] name: T`.
func (p *Parser) parseExtern(start source.Span, vis ast.Visibility) (ast.ExprID, bool) {
	libTok, ok := p.expect(token.StringLit, "a library name")
	if !ok {
		return ast.NoExprID, false
	}
	lib, err := lexer.Unquote(libTok.Text)
	if err != nil {
		p.emit(diag.SynBadLiteral, libTok.Span, err.Error())
		return ast.NoExprID, false
	}

	data := ast.ExprBindingData{Visibility: vis, Lib: lib}
	e := p.arenas.Exprs
	switch {
	case p.at(token.KwFn):
		fnTok := p.advance()
		id, ok := p.expectIdent()
		if !ok {
			return ast.NoExprID, false
		}
		sig, ok := p.parseFnSig(fnTok.Span, id.Text)
		if !ok {
			return ast.NoExprID, false
		}
		data.Kind = ast.BindExternFn
		data.Pattern = p.arenas.Patterns.NewSymbol(ast.SymbolPattern{Name: id.Text, Span: id.Span})
		data.TypeExpr = e.NewFunction(p.spanFrom(fnTok.Span), sig, ast.NoExprID)
	case p.eat(token.KwLet):
		mut := p.eat(token.KwMut)
		id, ok := p.expectIdent()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.Colon, "`:`"); !ok {
			return ast.NoExprID, false
		}
		ty, ok := p.parseTypeExpr()
		if !ok {
			return ast.NoExprID, false
		}
		data.Kind = ast.BindExternVar
		data.Pattern = p.arenas.Patterns.NewSymbol(ast.SymbolPattern{Name: id.Text, Mut: mut, Span: id.Span})
		data.TypeExpr = ty
	default:
		p.errExpected(diag.SynUnexpectedToken, "`fn` or `let`")
		return ast.NoExprID, false
	}
	return e.NewBinding(p.spanFrom(start), data), true
}
