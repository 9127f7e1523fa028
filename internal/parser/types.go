package parser

import (
	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/token"
)

// parsePointerType: `*T`, `*mut T`.
func (p *Parser) parsePointerType() (ast.ExprID, bool) {
	start := p.advance().Span
	mut := p.eat(token.KwMut)
	inner, ok := p.parseTypeExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewTypeRef(ast.ExprPointerType, p.spanFrom(start), inner, mut), true
}

// parseBracketType: `[*]T`, `[*mut]T`, `[]T`, `[]mut T`, `[N]T`.
func (p *Parser) parseBracketType() (ast.ExprID, bool) {
	start := p.advance().Span
	e := p.arenas.Exprs

	switch {
	case p.eat(token.Star):
		mut := p.eat(token.KwMut)
		if _, ok := p.expect(token.RBracket, "`]`"); !ok {
			return ast.NoExprID, false
		}
		inner, ok := p.parseTypeExpr()
		if !ok {
			return ast.NoExprID, false
		}
		return e.NewTypeRef(ast.ExprMultiPointerType, p.spanFrom(start), inner, mut), true

	case p.eat(token.RBracket):
		mut := p.eat(token.KwMut)
		inner, ok := p.parseTypeExpr()
		if !ok {
			return ast.NoExprID, false
		}
		return e.NewTypeRef(ast.ExprSliceType, p.spanFrom(start), inner, mut), true

	default:
		size, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.RBracket, "`]`"); !ok {
			return ast.NoExprID, false
		}
		inner, ok := p.parseTypeExpr()
		if !ok {
			return ast.NoExprID, false
		}
		return e.NewArrayType(p.spanFrom(start), inner, size), true
	}
}

// parseStructType: `struct {..}`, `struct(packed) {..}`, `union {..}`.
func (p *Parser) parseStructType() (ast.ExprID, bool) {
	kw := p.advance()
	data := ast.ExprStructTypeData{Name: p.declName(), Kind: ast.StructPlain}
	if kw.Kind == token.KwUnion {
		data.Kind = ast.StructUnion
	} else if p.eat(token.LParen) {
		id, ok := p.expectIdent()
		if !ok {
			return ast.NoExprID, false
		}
		if id.Text != "packed" {
			p.emit(diag.SynUnexpectedToken, id.Span, "expected `packed`, got `"+id.Text+"`")
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.RParen, "`)`"); !ok {
			return ast.NoExprID, false
		}
		data.Kind = ast.StructPacked
	}
	if _, ok := p.expect(token.LBrace, "`{`"); !ok {
		return ast.NoExprID, false
	}
	for !p.at(token.RBrace) && !p.atEOF() {
		id, ok := p.expectIdent()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.Colon, "`:`"); !ok {
			return ast.NoExprID, false
		}
		ty, ok := p.withRes(0, p.parseTypeExpr)
		if !ok {
			return ast.NoExprID, false
		}
		data.Fields = append(data.Fields, ast.FieldDecl{Name: id.Text, Type: ty, Span: id.Span})
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, "`,` or `}`"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewStructType(p.spanFrom(kw.Span), data), true
}

// parseFnExpr вызывается после `fn`: сигнатура и, если дальше `{`, тело.
// Без тела получается тип функции.
func (p *Parser) parseFnExpr(start source.Span, name string) (ast.ExprID, bool) {
	sig, ok := p.parseFnSig(start, name)
	if !ok {
		return ast.NoExprID, false
	}
	body := ast.NoExprID
	if p.at(token.LBrace) {
		body, ok = p.parseBlock()
		if !ok {
			return ast.NoExprID, false
		}
	}
	return p.arenas.Exprs.NewFunction(p.spanFrom(start), sig, body), true
}

// parseFnSig: `(params [, ...]) [-> T]`.
func (p *Parser) parseFnSig(start source.Span, name string) (ast.FnSig, bool) {
	sig := ast.FnSig{Name: name}
	if _, ok := p.expect(token.LParen, "`(`"); !ok {
		return sig, false
	}
	for !p.at(token.RParen) && !p.atEOF() {
		if p.eat(token.DotDotDot) {
			sig.Variadic = true
			break
		}
		pat, ok := p.parsePattern()
		if !ok {
			return sig, false
		}
		param := ast.Param{Pattern: pat}
		if p.eat(token.Colon) {
			param.Type, ok = p.withRes(0, p.parseTypeExpr)
			if !ok {
				return sig, false
			}
		}
		sig.Params = append(sig.Params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, "`,` or `)`"); !ok {
		return sig, false
	}
	if p.eat(token.Arrow) {
		ret, ok := p.withRes(0, p.parseTypeExpr)
		if !ok {
			return sig, false
		}
		sig.Ret = ret
	}
	sig.Span = p.spanFrom(start)
	return sig, true
}
