package parser

import (
	"kiln/internal/ast"
	"kiln/internal/token"
)

// parseStmt разбирает одну инструкцию блока (без разделителя).
func (p *Parser) parseStmt() (ast.ExprID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.KwLet:
		p.advance()
		return p.parseLet(tok.Span, ast.Private)
	case token.KwDefer:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewDefer(p.spanFrom(tok.Span), inner), true
	case token.KwFn:
		if p.peekN(1).Kind == token.Ident {
			p.advance()
			return p.parseFnDecl(tok.Span, ast.Private)
		}
	case token.KwIf, token.KwWhile, token.KwFor, token.LBrace:
		// инструкция-блок не продолжается бинарным оператором: `if c {} -x` - две инструкции
		return p.parsePrimary()
	}
	return p.parseExpr()
}

// needsSemicolon: if/while/for/блок и объявление функции не требуют `;`.
func needsSemicolon(b *ast.Builder, id ast.ExprID) bool {
	switch b.Exprs.Kind(id) {
	case ast.ExprIf, ast.ExprWhile, ast.ExprFor, ast.ExprBlock:
		return false
	case ast.ExprBinding:
		d, _ := b.Exprs.Binding(id)
		return d.Kind != ast.BindFunction
	default:
		return true
	}
}
