package parser

import (
	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/token"
)

// parseExpr разбирает полное выражение без ограничений.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.withRes(0, p.parseLogicOr)
}

// parseExprWithRes - выражение с заданными ограничениями (условия if/while/for).
func (p *Parser) parseExprWithRes(r Restrictions) (ast.ExprID, bool) {
	return p.withRes(r, p.parseLogicOr)
}

// parseTypeExpr разбирает выражение в позиции типа: уровень унарных
// операторов, без присваивания, struct-литералов и хвостовых fn.
func (p *Parser) parseTypeExpr() (ast.ExprID, bool) {
	return p.withRes(p.res|TypeAnnotation|NoStructLiteral, p.parseUnary)
}

// binaryLevels - каскад приоритетов от самого слабого к самому сильному;
// после последнего уровня идёт parseUnary.
var binaryLevels = [...]map[token.Kind]ast.BinaryOp{
	{token.OrOr: ast.BinOr},
	{token.AndAnd: ast.BinAnd},
	{token.EqEq: ast.BinEq, token.BangEq: ast.BinNe, token.Lt: ast.BinLt, token.LtEq: ast.BinLe, token.Gt: ast.BinGt, token.GtEq: ast.BinGe},
	{token.Pipe: ast.BinBitOr},
	{token.Caret: ast.BinBitXor},
	{token.Amp: ast.BinBitAnd},
	{token.Shl: ast.BinShl, token.Shr: ast.BinShr},
	{token.Plus: ast.BinAdd, token.Minus: ast.BinSub},
	{token.Star: ast.BinMul, token.Slash: ast.BinDiv, token.Percent: ast.BinRem},
}

func (p *Parser) parseLogicOr() (ast.ExprID, bool) { return p.parseBinary(0) }

// parseBinary - один уровень каскада: левоассоциативная свёртка, пока текущий токен из набора уровня.
func (p *Parser) parseBinary(level int) (ast.ExprID, bool) {
	next := func() (ast.ExprID, bool) {
		if level+1 < len(binaryLevels) {
			return p.parseBinary(level + 1)
		}
		return p.parseUnary()
	}
	lhs, ok := next()
	if !ok {
		return ast.NoExprID, false
	}
	start := p.exprSpan(lhs)
	for {
		op, isOp := binaryLevels[level][p.peek().Kind]
		if !isOp {
			return lhs, true
		}
		p.advance()
		rhs, ok := next()
		if !ok {
			return ast.NoExprID, false
		}
		lhs = p.arenas.Exprs.NewBinary(p.spanFrom(start), op, lhs, rhs)
	}
}

// parseUnary: & &mut && ! - + - правоассоциативно, операнд снова унарный.
// `&&x` - это две ссылки: &(&x).
func (p *Parser) parseUnary() (ast.ExprID, bool) {
	tok := p.peek()
	var op ast.UnaryOp
	switch tok.Kind {
	case token.Amp, token.AndAnd:
		op = ast.UnRef
	case token.Bang:
		op = ast.UnNot
	case token.Minus:
		op = ast.UnNeg
	case token.Plus:
		op = ast.UnPlus
	default:
		return p.parsePrimary()
	}
	p.advance()
	mut := op == ast.UnRef && p.eat(token.KwMut)

	operand, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	e := p.arenas.Exprs
	if tok.Kind == token.AndAnd {
		inner := tok.Span
		inner.Start++
		ref := e.NewUnary(inner.To(p.exprSpan(operand)), ast.UnRef, mut, operand)
		return e.NewUnary(p.spanFrom(tok.Span), ast.UnRef, false, ref), true
	}
	return e.NewUnary(p.spanFrom(tok.Span), op, mut, operand), true
}

// parsePrimary разбирает первичное выражение и затем постфиксную цепочку.
func (p *Parser) parsePrimary() (ast.ExprID, bool) {
	expr, ok := p.parseOperand()
	if !ok {
		return ast.NoExprID, false
	}
	return p.parsePostfix(expr)
}

func (p *Parser) parseOperand() (ast.ExprID, bool) {
	tok := p.peek()
	e := p.arenas.Exprs
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return e.NewIdent(tok.Span, tok.Text), true
	case token.Underscore:
		p.advance()
		return e.NewPlaceholder(tok.Span), true
	case token.KwNil, token.KwTrue, token.KwFalse, token.IntLit, token.FloatLit, token.StringLit, token.CharLit:
		return p.parseLiteral()
	case token.Star:
		return p.parsePointerType()
	case token.LBracket:
		return p.parseBracketType()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.LBrace:
		return p.parseBlock()
	case token.Dot:
		p.advance()
		switch {
		case p.at(token.LBrace):
			p.advance()
			return p.parseStructLiteral(ast.NoExprID, tok.Span)
		case p.at(token.LBracket):
			p.advance()
			return p.parseArrayLiteral(tok.Span)
		default:
			p.errExpected(diag.SynExpectExpression, "`{` or `[` after `.`")
			return ast.NoExprID, false
		}
	case token.At:
		return p.parseBuiltin()
	case token.KwBreak:
		p.advance()
		return e.NewBreak(tok.Span), true
	case token.KwContinue:
		p.advance()
		return e.NewContinue(tok.Span), true
	case token.KwReturn:
		return p.parseReturn()
	case token.LParen:
		return p.parseParenOrTuple()
	case token.KwFn:
		p.advance()
		return p.parseFnExpr(tok.Span, "")
	case token.KwStruct, token.KwUnion:
		return p.parseStructType()
	default:
		p.errExpected(diag.SynExpectExpression, "an expression")
		return ast.NoExprID, false
	}
}

// parseParenOrTuple: `()`, `(e)`, `(a, b, ...)`. Внутри скобок ограничения сбрасываются.
func (p *Parser) parseParenOrTuple() (ast.ExprID, bool) {
	open := p.advance()
	e := p.arenas.Exprs
	if p.eat(token.RParen) {
		return e.NewTupleLit(p.spanFrom(open.Span), nil), true
	}
	first, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if p.eat(token.Comma) {
		elems := []ast.ExprID{first}
		for !p.at(token.RParen) && !p.atEOF() {
			el, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			elems = append(elems, el)
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.RParen, "`,` or `)`"); !ok {
			return ast.NoExprID, false
		}
		return e.NewTupleLit(p.spanFrom(open.Span), elems), true
	}
	if _, ok := p.expect(token.RParen, "`)`"); !ok {
		return ast.NoExprID, false
	}
	// скобки входят в span вложенного выражения
	e.SetSpan(first, p.spanFrom(open.Span))
	return first, true
}

func (p *Parser) parseReturn() (ast.ExprID, bool) {
	tok := p.advance()
	value := ast.NoExprID
	if p.peek().Kind.CanStartExpr() {
		v, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		value = v
	}
	return p.arenas.Exprs.NewReturn(p.spanFrom(tok.Span), value), true
}
