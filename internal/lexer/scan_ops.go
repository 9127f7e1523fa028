package lexer

import (
	"kiln/internal/diag"
	"kiln/internal/token"
)

// opTable упорядочена по длине внутри каждой группы: сначала самые длинные.
var opTable = []struct {
	text string
	kind token.Kind
}{
	{"...", token.DotDotDot},
	{"<<=", token.ShlAssign},
	{">>=", token.ShrAssign},
	{"&&=", token.AndAndAssign},
	{"||=", token.OrOrAssign},
	{"..", token.DotDot},
	{"->", token.Arrow},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"@", token.At},
	{";", token.Semicolon},
	{":", token.Colon},
	{"(", token.LParen},
	{")", token.RParen},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"?", token.Question},
	{",", token.Comma},
	{"&", token.Amp},
	{"|", token.Pipe},
	{"~", token.Tilde},
	{"^", token.Caret},
	{"!", token.Bang},
	{"=", token.Assign},
	{"<", token.Lt},
	{">", token.Gt},
	{".", token.Dot},
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	rest := lx.file.Content[lx.cursor.Off:lx.cursor.Limit]
	for _, op := range opTable {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			lx.cursor.Off += uint32(len(op.text)) // #nosec G115 -- operators are at most 3 bytes
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: op.kind, Span: sp, Text: op.text}
		}
	}
	lx.bumpRune()
	sp := lx.cursor.SpanFrom(start)
	lx.report(diag.LexUnknownChar, sp, "unknown character `"+lx.text(sp)+"`")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
