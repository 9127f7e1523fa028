package lexer

import (
	"kiln/internal/diag"
	"kiln/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil - тогда ошибки игнорируем (но продолжаем лексить)
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	lx.errors++
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}
