package parser

import (
	"strconv"
	"strings"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/token"
)

// parsePostfix - цикл постфиксных операторов после операнда.
// Порядок в каждой итерации: struct-литерал `T {..}`, составное присваивание и `=`
// (терминальные), `.`, `(`, `[`, `as`, хвостовой fn-литерал.
func (p *Parser) parsePostfix(expr ast.ExprID) (ast.ExprID, bool) {
	blockLike := isBlockLike(p.arenas.Exprs.Kind(expr))
	for {
		tok := p.peek()
		// `if c {} \n {..}` - следующая инструкция, а не продолжение
		if blockLike && tok.NewlineBefore {
			return expr, true
		}

		if tok.Kind == token.LBrace && !p.res.has(NoStructLiteral) && !p.res.has(TypeAnnotation) {
			p.advance()
			next, ok := p.parseStructLiteral(expr, p.exprSpan(expr))
			if !ok {
				return ast.NoExprID, false
			}
			expr, blockLike = next, false
			continue
		}

		if !p.res.has(TypeAnnotation) {
			if tok.Kind.IsCompoundAssign() {
				p.advance()
				return p.parseCompoundAssign(expr, tok)
			}
			if tok.Kind == token.Assign {
				p.advance()
				return p.parseAssign(expr)
			}
		}

		var (
			next ast.ExprID
			ok   bool
		)
		switch {
		case tok.Kind == token.Dot:
			p.advance()
			next, ok = p.parseMemberAccess(expr)
		case tok.Kind == token.LParen:
			p.advance()
			next, ok = p.parseCall(expr)
		case tok.Kind == token.LBracket:
			p.advance()
			next, ok = p.parseSubscriptOrSlice(expr)
		case tok.Kind == token.KwAs && !p.res.has(NoCast):
			p.advance()
			next, ok = p.parseCast(expr)
		case tok.Kind == token.KwFn && !tok.NewlineBefore && !p.res.has(TypeAnnotation):
			p.advance()
			next, ok = p.parseTrailingFn(expr, tok)
		default:
			return expr, true
		}
		if !ok {
			return ast.NoExprID, false
		}
		expr, blockLike = next, false
	}
}

func isBlockLike(k ast.ExprKind) bool {
	switch k {
	case ast.ExprIf, ast.ExprWhile, ast.ExprFor, ast.ExprBlock:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAssign(lhs ast.ExprID) (ast.ExprID, bool) {
	rhs, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewAssign(p.exprSpan(lhs).To(p.exprSpan(rhs)), lhs, rhs), true
}

// parseCompoundAssign: `a += b` превращается в `a = a + b`; lhs-узел используется дважды.
func (p *Parser) parseCompoundAssign(lhs ast.ExprID, opTok token.Token) (ast.ExprID, bool) {
	base, _ := opTok.Kind.CompoundBase()
	rhs, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	e := p.arenas.Exprs
	rhsSpan := e.Span(rhs)
	bin := e.NewBinary(rhsSpan, binaryOpOf(base), lhs, rhs)
	return e.NewAssign(e.Span(lhs).To(rhsSpan), lhs, bin), true
}

func binaryOpOf(k token.Kind) ast.BinaryOp {
	for _, level := range binaryLevels {
		if op, ok := level[k]; ok {
			return op
		}
	}
	panic("parser: " + k.String() + " is not a binary operator")
}

func (p *Parser) parseCast(expr ast.ExprID) (ast.ExprID, bool) {
	target, ok := p.withRes(p.res|NoCast|NoStructLiteral, p.parseUnary)
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewCast(p.exprSpan(expr).To(p.exprSpan(target)), expr, target), true
}

// parseMemberAccess вызывается после `.`: имя, индекс кортежа, `*` (разыменование).
func (p *Parser) parseMemberAccess(expr ast.ExprID) (ast.ExprID, bool) {
	e := p.arenas.Exprs
	start := e.Span(expr)
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return e.NewMember(start.To(tok.Span), expr, tok.Text), true
	case token.IntLit:
		p.advance()
		v, err := parseIntLiteral(tok.Text)
		if err != nil {
			p.emit(diag.SynInvalidTupleIndex, tok.Span, "invalid tuple index `"+tok.Text+"`")
			return ast.NoExprID, false
		}
		return e.NewMember(start.To(tok.Span), expr, strconv.FormatUint(v, 10)), true
	case token.FloatLit:
		// `t.0.1`: лексер отдаёт `0.1` одним float-токеном, делим по точке
		p.advance()
		components := strings.Split(tok.Text, ".")
		for _, c := range components {
			if c == "" || strings.ContainsAny(c, "eE_") {
				p.emit(diag.SynInvalidTupleIndex, tok.Span, "invalid tuple index `"+tok.Text+"`")
				return ast.NoExprID, false
			}
		}
		firstEnd := tok.Span.Start + uint32(len(components[0])) // #nosec G115 -- token length fits the span
		first := e.NewMember(start.To(tok.Span.WithEnd(firstEnd)), expr, components[0])
		return e.NewMember(start.To(tok.Span), first, components[0]), true
	case token.Star:
		p.advance()
		return e.NewUnary(start.To(tok.Span), ast.UnDeref, false, expr), true
	default:
		p.errExpected(diag.SynExpectIdentifier, "an identifier, number or `*`")
		return ast.NoExprID, false
	}
}

// parseCall вызывается после `(`. Именованный аргумент `name: value` распознаётся откатом через mark.
func (p *Parser) parseCall(callee ast.ExprID) (ast.ExprID, bool) {
	var args []ast.CallArg
	sawNamed := false
	for !p.at(token.RParen) && !p.atEOF() {
		arg := ast.CallArg{}
		p.mark()
		nameTok := p.peek()
		if p.eat(token.Ident) && p.eat(token.Colon) {
			p.popMark()
			arg.Name = ast.NameSpan{Name: nameTok.Text, Span: nameTok.Span}
			sawNamed = true
		} else {
			p.resetToMark()
			if sawNamed {
				p.emit(diag.SynPositionalAfterNamed, p.peek().Span, "can't use positional arguments after named arguments")
				return ast.NoExprID, false
			}
		}
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		arg.Value = value
		arg.Spread = p.eat(token.DotDotDot)
		args = append(args, arg)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, "`,` or `)`"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewCall(p.spanFrom(p.exprSpan(callee)), callee, args), true
}

// parseSubscriptOrSlice вызывается после `[`: `[i]`, `[lo..hi]`, `[..hi]`, `[lo..]`, `[..]`.
func (p *Parser) parseSubscriptOrSlice(expr ast.ExprID) (ast.ExprID, bool) {
	e := p.arenas.Exprs
	start := e.Span(expr)

	low := ast.NoExprID
	if !p.at(token.DotDot) {
		index, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if !p.at(token.DotDot) {
			if _, ok := p.expect(token.RBracket, "`]`"); !ok {
				return ast.NoExprID, false
			}
			return e.NewSubscript(p.spanFrom(start), expr, index), true
		}
		low = index
	}
	p.advance() // ..

	high := ast.NoExprID
	if !p.at(token.RBracket) {
		h, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		high = h
	}
	if _, ok := p.expect(token.RBracket, "`]`"); !ok {
		return ast.NoExprID, false
	}
	return e.NewSlice(p.spanFrom(start), expr, low, high), true
}

// parseTrailingFn: `map(xs) fn(x) {..}` дописывает аргумент к вызову,
// `each fn(x) {..}` создаёт вызов с одним аргументом.
func (p *Parser) parseTrailingFn(expr ast.ExprID, fnTok token.Token) (ast.ExprID, bool) {
	fn, ok := p.parseFnExpr(fnTok.Span, "")
	if !ok {
		return ast.NoExprID, false
	}
	e := p.arenas.Exprs
	span := e.Span(expr).To(e.Span(fn))
	if call, isCall := e.Call(expr); isCall {
		call.Args = append(call.Args, ast.CallArg{Value: fn})
		e.SetSpan(expr, span)
		return expr, true
	}
	return e.NewCall(span, expr, []ast.CallArg{{Value: fn}}), true
}
