package parser

import (
	"errors"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/project"
	"kiln/internal/source"
	"kiln/internal/token"
)

// parseUse вызывается после `use`. Модуль определяется первым компонентом пути;
// каждый лист дерева (`a.b`, `a.{b, c: d}`, `a.?`) становится отдельным ExprUse.
func (p *Parser) parseUse(start source.Span, vis ast.Visibility) ([]ast.ExprID, bool) {
	head, ok := p.expectIdent()
	if !ok {
		return nil, false
	}
	module, ok := p.resolveUse(head)
	if !ok {
		return nil, false
	}
	base := ast.ExprUseData{
		Module:     module,
		Visibility: vis,
		Alias:      ast.NameSpan{Name: head.Text, Span: head.Span},
	}
	var uses []ast.ExprID
	if !p.parseUseTree(start, base, nil, &uses) {
		return nil, false
	}
	return uses, true
}

// parseUseTree разбирает хвост пути после уже прочитанного префикса.
func (p *Parser) parseUseTree(start source.Span, base ast.ExprUseData, prefix []ast.NameSpan, out *[]ast.ExprID) bool {
	path := append([]ast.NameSpan(nil), prefix...)
	for p.eat(token.Dot) {
		switch tok := p.peek(); tok.Kind {
		case token.Ident:
			p.advance()
			path = append(path, ast.NameSpan{Name: tok.Text, Span: tok.Span})
			continue
		case token.Question:
			p.advance()
			data := base
			data.Path = path
			data.Wildcard = true
			*out = append(*out, p.arenas.Exprs.NewUse(p.spanFrom(start), data))
			return true
		case token.LBrace:
			p.advance()
			for !p.at(token.RBrace) && !p.atEOF() {
				id, ok := p.expectIdent()
				if !ok {
					return false
				}
				elem := append(append([]ast.NameSpan(nil), path...), ast.NameSpan{Name: id.Text, Span: id.Span})
				if !p.parseUseTree(id.Span, base, elem, out) {
					return false
				}
				if !p.eat(token.Comma) {
					break
				}
			}
			_, ok := p.expect(token.RBrace, "`,` or `}`")
			return ok
		default:
			p.errExpected(diag.SynExpectIdentifier, "an identifier, `{` or `?`")
			return false
		}
	}

	data := base
	data.Path = path
	if n := len(path); n > 0 {
		data.Alias = path[n-1]
	}
	if p.eat(token.Colon) {
		alias, ok := p.expectIdent()
		if !ok {
			return false
		}
		data.Alias = ast.NameSpan{Name: alias.Text, Span: alias.Span}
	}
	*out = append(*out, p.arenas.Exprs.NewUse(p.spanFrom(start), data))
	return true
}

// resolveUse находит файл модуля и записывает его в импорты файла.
// Без резолвера модуль остаётся безымянным путём (режим `kiln parse` одного файла).
func (p *Parser) resolveUse(head token.Token) (ast.ModuleInfo, bool) {
	if p.opts.Resolver == nil {
		return ast.ModuleInfo{Name: head.Text}, true
	}
	info, err := p.opts.Resolver.ResolveUse(p.src.Path, head.Text)
	return p.registerModule(info, err, head.Span)
}

func (p *Parser) resolveImport(path string, sp source.Span) (ast.ModuleInfo, bool) {
	if p.opts.Resolver == nil {
		return ast.ModuleInfo{Name: path}, true
	}
	info, err := p.opts.Resolver.ResolveImport(p.src.Path, path)
	return p.registerModule(info, err, sp)
}

func (p *Parser) registerModule(info ast.ModuleInfo, err error, sp source.Span) (ast.ModuleInfo, bool) {
	if err != nil {
		var rerr *project.ResolveError
		switch {
		case errors.As(err, &rerr) && rerr.Kind == project.ResolveOutsideRoot:
			p.emit(diag.ProjOutsideRoot, sp, rerr.Error())
		case errors.As(err, &rerr):
			p.report(diag.ProjMissingModule, sp, rerr.Error()).
				WithNote(sp, "tried to resolve this path: "+rerr.Tried).
				Emit()
		default:
			p.emit(diag.ProjMissingModule, sp, err.Error())
		}
		return ast.ModuleInfo{}, false
	}
	p.arenas.AddImport(p.file, info)
	return info, true
}
