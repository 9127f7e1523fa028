package parser

import (
	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/token"
)

// parseLet вызывается после `let`: `[static] pattern [: T] [= value]`.
// Разделитель `;` съедает вызывающий.
func (p *Parser) parseLet(start source.Span, vis ast.Visibility) (ast.ExprID, bool) {
	data := ast.ExprBindingData{Kind: ast.BindLet, Visibility: vis}
	data.Static = p.eat(token.KwStatic)

	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoExprID, false
	}
	data.Pattern = pat

	if p.eat(token.Colon) {
		data.TypeExpr, ok = p.parseTypeExpr()
		if !ok {
			return ast.NoExprID, false
		}
	}
	if p.eat(token.Assign) {
		if sym := p.arenas.Patterns.Get(pat); sym.Kind == ast.PatSymbol {
			p.declNames = append(p.declNames, sym.Symbol.Name)
			defer func() { p.declNames = p.declNames[:len(p.declNames)-1] }()
		}
		data.Value, ok = p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
	} else if !data.TypeExpr.IsValid() {
		p.errExpected(diag.SynUnexpectedToken, "`:` or `=`")
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewBinding(p.spanFrom(start), data), true
}

// parseFnDecl вызывается после `fn` перед именем: `fn name(params) -> T { body }`.
func (p *Parser) parseFnDecl(start source.Span, vis ast.Visibility) (ast.ExprID, bool) {
	id, ok := p.expectIdent()
	if !ok {
		return ast.NoExprID, false
	}
	sig, ok := p.parseFnSig(start, id.Text)
	if !ok {
		return ast.NoExprID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoExprID, false
	}
	e := p.arenas.Exprs
	fn := e.NewFunction(p.spanFrom(start), sig, body)
	pat := p.arenas.Patterns.NewSymbol(ast.SymbolPattern{Name: id.Text, Span: id.Span})
	return e.NewBinding(p.spanFrom(start), ast.ExprBindingData{
		Kind:       ast.BindFunction,
		Visibility: vis,
		Pattern:    pat,
		Value:      fn,
	}), true
}

// parsePattern: `[mut] name`, `_`, `{a, mut b: c}`, `(a, _, mut c)`.
func (p *Parser) parsePattern() (ast.PatternID, bool) {
	tok := p.peek()
	pats := p.arenas.Patterns
	switch tok.Kind {
	case token.LBrace:
		p.advance()
		elems, ok := p.parsePatternElems(token.RBrace, true)
		if !ok {
			return ast.NoPatternID, false
		}
		return pats.New(ast.Pattern{Kind: ast.PatStructUnpack, Span: p.spanFrom(tok.Span), Elems: elems}), true
	case token.LParen:
		p.advance()
		elems, ok := p.parsePatternElems(token.RParen, false)
		if !ok {
			return ast.NoPatternID, false
		}
		return pats.New(ast.Pattern{Kind: ast.PatTupleUnpack, Span: p.spanFrom(tok.Span), Elems: elems}), true
	default:
		sym, ok := p.parseSymbolPattern(false)
		if !ok {
			return ast.NoPatternID, false
		}
		return pats.NewSymbol(sym), true
	}
}

func (p *Parser) parsePatternElems(closing token.Kind, fields bool) ([]ast.SymbolPattern, bool) {
	var elems []ast.SymbolPattern
	for !p.at(closing) && !p.atEOF() {
		sym, ok := p.parseSymbolPattern(fields)
		if !ok {
			return nil, false
		}
		elems = append(elems, sym)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(closing, "`,` or `"+closing.String()+"`"); !ok {
		return nil, false
	}
	if len(elems) == 0 {
		p.emit(diag.SynInvalidPattern, p.prev().Span, "empty unpack pattern")
		return nil, false
	}
	return elems, true
}

// parseSymbolPattern: `[mut] name`, в struct-распаковке ещё `[: alias]`; `_` - пропуск.
func (p *Parser) parseSymbolPattern(field bool) (ast.SymbolPattern, bool) {
	start := p.peek().Span
	if !field && p.at(token.Underscore) {
		p.advance()
		return ast.SymbolPattern{Name: "_", Ignore: true, Span: start}, true
	}
	sym := ast.SymbolPattern{Mut: p.eat(token.KwMut)}
	id, ok := p.expectIdent()
	if !ok {
		return sym, false
	}
	sym.Name = id.Text
	if field && p.eat(token.Colon) {
		alias, ok := p.expectIdent()
		if !ok {
			return sym, false
		}
		sym.Alias = alias.Text
	}
	sym.Span = p.spanFrom(start)
	return sym, true
}
