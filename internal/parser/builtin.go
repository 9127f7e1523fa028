package parser

import (
	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/token"
)

var builtinNames = map[string]ast.BuiltinKind{
	"size_of":  ast.BuiltinSizeOf,
	"align_of": ast.BuiltinAlignOf,
	"import":   ast.BuiltinImport,
	"panic":    ast.BuiltinPanic,
}

// parseBuiltin: `@size_of(T)`, `@align_of(T)`, `@import("path")`, `@panic([msg])`.
func (p *Parser) parseBuiltin() (ast.ExprID, bool) {
	at := p.advance()
	id, ok := p.expectIdent()
	if !ok {
		return ast.NoExprID, false
	}
	kind, known := builtinNames[id.Text]
	if !known {
		p.emit(diag.SynUnknownBuiltin, at.Span.To(id.Span), "unknown builtin function `"+id.Text+"`")
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.LParen, "`(`"); !ok {
		return ast.NoExprID, false
	}

	data := ast.ExprBuiltinData{Kind: kind}
	switch kind {
	case ast.BuiltinSizeOf, ast.BuiltinAlignOf:
		data.Arg, ok = p.withRes(0, p.parseTypeExpr)
		if !ok {
			return ast.NoExprID, false
		}
	case ast.BuiltinImport:
		lit, ok := p.expect(token.StringLit, "a module path")
		if !ok {
			return ast.NoExprID, false
		}
		path, err := lexer.Unquote(lit.Text)
		if err != nil {
			p.emit(diag.SynBadLiteral, lit.Span, err.Error())
			return ast.NoExprID, false
		}
		data.Module, ok = p.resolveImport(path, lit.Span)
		if !ok {
			return ast.NoExprID, false
		}
		data.Arg = p.arenas.Exprs.NewLiteral(lit.Span, ast.ExprLiteralData{Kind: ast.LitStr, Str: path})
	case ast.BuiltinPanic:
		if !p.at(token.RParen) {
			data.Arg, ok = p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
		}
	}
	if _, ok := p.expect(token.RParen, "`)`"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewBuiltin(p.spanFrom(at.Span), data), true
}
