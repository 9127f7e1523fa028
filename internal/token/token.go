package token

import (
	"kiln/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
	// NewlineBefore is set when a line break separates this token from the previous one.
	NewlineBefore bool
}

// IsLiteral reports whether the token is a literal.
func (t Token) IsLiteral() bool { return t.Kind.IsLiteral() }

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// Lexeme is the text used in "got ..." diagnostics.
func (t Token) Lexeme() string {
	if t.Kind == EOF {
		return "end of file"
	}
	if t.Text != "" {
		return t.Text
	}
	return t.Kind.String()
}
