package parser

import (
	"errors"
	"strconv"
	"strings"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/source"
	"kiln/internal/token"
)

func (p *Parser) parseLiteral() (ast.ExprID, bool) {
	tok := p.advance()
	var lit ast.ExprLiteralData
	switch tok.Kind {
	case token.KwNil:
		lit.Kind = ast.LitNil
	case token.KwTrue, token.KwFalse:
		lit.Kind = ast.LitBool
		lit.Bool = tok.Kind == token.KwTrue
	case token.IntLit:
		v, err := parseIntLiteral(tok.Text)
		if err != nil {
			p.emit(diag.SynBadLiteral, tok.Span, "integer literal `"+tok.Text+"` is too large")
			return ast.NoExprID, false
		}
		lit.Kind, lit.Int = ast.LitInt, v
	case token.FloatLit:
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok.Text, "_", ""), 64)
		if err != nil {
			p.emit(diag.SynBadLiteral, tok.Span, "invalid float literal `"+tok.Text+"`")
			return ast.NoExprID, false
		}
		lit.Kind, lit.Float = ast.LitFloat, v
	case token.StringLit:
		s, err := lexer.Unquote(tok.Text)
		if err != nil {
			p.emit(diag.SynBadLiteral, tok.Span, "invalid string literal: "+err.Error())
			return ast.NoExprID, false
		}
		lit.Kind, lit.Str = ast.LitStr, s
	case token.CharLit:
		s, err := lexer.Unquote(tok.Text)
		if err != nil || len(s) != 1 {
			p.emit(diag.SynBadLiteral, tok.Span, "invalid character literal `"+tok.Text+"`")
			return ast.NoExprID, false
		}
		lit.Kind, lit.Int = ast.LitChar, uint64(s[0])
	default:
		panic("parser: unexpected literal " + tok.Kind.String())
	}
	return p.arenas.Exprs.NewLiteral(tok.Span, lit), true
}

var errEmptyLiteral = errors.New("empty integer literal")

// parseIntLiteral понимает 123, 1_000, 0x.., 0o.., 0b... Ведущий ноль - это десятичное число.
func parseIntLiteral(text string) (uint64, error) {
	text = strings.ReplaceAll(text, "_", "")
	base := 10
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			text = text[2:]
		}
	}
	if text == "" {
		return 0, errEmptyLiteral
	}
	return strconv.ParseUint(text, base, 64)
}

// parseArrayLiteral вызывается после `.[`: `.[a, b, c]` или `.[value; len]`.
func (p *Parser) parseArrayLiteral(start source.Span) (ast.ExprID, bool) {
	var elems []ast.ExprID
	for !p.at(token.RBracket) && !p.atEOF() {
		el, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if len(elems) == 0 && p.eat(token.Semicolon) {
			n, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			if _, ok := p.expect(token.RBracket, "`]`"); !ok {
				return ast.NoExprID, false
			}
			return p.arenas.Exprs.NewArrayLit(p.spanFrom(start), ast.ExprArrayLitData{Fill: el, Len: n}), true
		}
		elems = append(elems, el)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBracket, "`,` or `]`"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewArrayLit(p.spanFrom(start), ast.ExprArrayLitData{Elems: elems}), true
}

// parseStructLiteral вызывается после `{`. typeExpr == NoExprID - анонимный литерал `.{..}`.
// Поле без значения (`{ x }`) - сокращение для `{ x: x }`.
func (p *Parser) parseStructLiteral(typeExpr ast.ExprID, start source.Span) (ast.ExprID, bool) {
	var fields []ast.FieldInit
	for !p.at(token.RBrace) && !p.atEOF() {
		id, ok := p.expectIdent()
		if !ok {
			return ast.NoExprID, false
		}
		var value ast.ExprID
		if p.eat(token.Colon) {
			value, ok = p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
		} else {
			value = p.arenas.Exprs.NewIdent(id.Span, id.Text)
		}
		fields = append(fields, ast.FieldInit{
			Name:  id.Text,
			Value: value,
			Span:  id.Span.To(p.exprSpan(value)),
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, "`,` or `}`"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewStructLit(p.spanFrom(start), typeExpr, fields), true
}
