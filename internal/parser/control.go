package parser

import (
	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/token"
)

func (p *Parser) parseIf() (ast.ExprID, bool) {
	start := p.advance().Span
	cond, ok := p.parseExprWithRes(NoStructLiteral)
	if !ok {
		return ast.NoExprID, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.NoExprID, false
	}
	otherwise := ast.NoExprID
	if p.eat(token.KwElse) {
		if p.at(token.KwIf) {
			otherwise, ok = p.parseIf()
		} else {
			otherwise, ok = p.parseBlock()
		}
		if !ok {
			return ast.NoExprID, false
		}
	}
	return p.arenas.Exprs.NewIf(p.spanFrom(start), cond, then, otherwise), true
}

func (p *Parser) parseWhile() (ast.ExprID, bool) {
	start := p.advance().Span
	cond, ok := p.parseExprWithRes(NoStructLiteral)
	if !ok {
		return ast.NoExprID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewWhile(p.spanFrom(start), cond, body), true
}

// parseFor: `for x[, i] in start..end {}` или `for x[, i] in value {}`.
func (p *Parser) parseFor() (ast.ExprID, bool) {
	start := p.advance().Span
	iter, ok := p.expectIdent()
	if !ok {
		return ast.NoExprID, false
	}
	data := ast.ExprForData{Iter: ast.ForVar{Name: iter.Text, Span: iter.Span}}
	if p.eat(token.Comma) {
		idx, ok := p.expectIdent()
		if !ok {
			return ast.NoExprID, false
		}
		data.Index = ast.ForVar{Name: idx.Text, Span: idx.Span}
	}
	if _, ok := p.expect(token.KwIn, "`in`"); !ok {
		return ast.NoExprID, false
	}
	data.Start, ok = p.parseExprWithRes(NoStructLiteral)
	if !ok {
		return ast.NoExprID, false
	}
	if p.eat(token.DotDot) {
		data.End, ok = p.parseExprWithRes(NoStructLiteral)
		if !ok {
			return ast.NoExprID, false
		}
	}
	data.Body, ok = p.parseBlock()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewFor(p.spanFrom(start), data), true
}

// parseBlock: `{ stmt; stmt; expr }`. Блок отдаёт значение, если последняя
// инструкция не закрыта `;`. Ошибка внутри инструкции не прерывает блок:
// на её месте остаётся Error-узел, разбор продолжается со следующей границы.
func (p *Parser) parseBlock() (ast.ExprID, bool) {
	open, ok := p.expect(token.LBrace, "`{`")
	if !ok {
		return ast.NoExprID, false
	}
	e := p.arenas.Exprs
	var stmts []ast.ExprID
	yields := false
	for !p.at(token.RBrace) && !p.atEOF() {
		if p.eat(token.Semicolon) {
			continue
		}
		start := p.pos
		startSpan := p.peek().Span
		stmt, ok := p.withRes(0, p.parseStmt)
		if !ok {
			p.recover(start)
			stmts = append(stmts, e.NewError(p.spanFrom(startSpan)))
			yields = false
			continue
		}
		stmts = append(stmts, stmt)

		switch {
		case p.eat(token.Semicolon):
			yields = false
		case p.at(token.RBrace), p.atEOF():
			// на EOF про незакрытый блок сообщит проверка ниже
			yields = true
		case !needsSemicolon(p.arenas, stmt):
			yields = false
		default:
			p.emit(diag.SynExpectSemicolon, p.prev().Span.After(),
				"expected `;`, got "+describe(p.peek()))
			p.recover(start)
			yields = false
		}
	}
	if !p.eat(token.RBrace) {
		p.report(diag.SynUnclosedDelimiter, p.peek().Span, "expected `}`, got "+describe(p.peek())).
			WithNote(open.Span, "unclosed delimiter").
			Emit()
		return ast.NoExprID, false
	}
	return e.NewBlock(p.spanFrom(open.Span), stmts, yields), true
}
