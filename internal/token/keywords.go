package token

var keywords = map[string]Kind{
	"let":      KwLet,
	"mut":      KwMut,
	"pub":      KwPub,
	"fn":       KwFn,
	"type":     KwType,
	"extern":   KwExtern,
	"use":      KwUse,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"defer":    KwDefer,
	"as":       KwAs,
	"struct":   KwStruct,
	"union":    KwUnion,
	"static":   KwStatic,
	"nil":      KwNil,
	"true":     KwTrue,
	"false":    KwFalse,
	"_":        Underscore,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
