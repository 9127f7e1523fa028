package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// Underscore represents the placeholder `_`.
	Underscore

	KwLet      // let
	KwMut      // mut
	KwPub      // pub
	KwFn       // fn
	KwType     // type
	KwExtern   // extern
	KwUse      // use
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwFor      // for
	KwIn       // in
	KwBreak    // break
	KwContinue // continue
	KwReturn   // return
	KwDefer    // defer
	KwAs       // as
	KwStruct   // struct
	KwUnion    // union
	KwStatic   // static
	KwNil      // nil
	KwTrue     // true
	KwFalse    // false

	// IntLit represents an integer literal (decimal, 0x, 0o, 0b).
	IntLit
	// FloatLit represents a floating point literal.
	FloatLit
	// StringLit represents a double quoted string literal.
	StringLit
	// CharLit represents a single quoted character literal.
	CharLit

	At            // @
	Semicolon     // ;
	Colon         // :
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	Plus          // +
	PlusAssign    // +=
	Minus         // -
	MinusAssign   // -=
	Star          // *
	StarAssign    // *=
	Slash         // /
	SlashAssign   // /=
	Percent       // %
	PercentAssign // %=
	Question      // ?
	Comma         // ,
	Amp           // &
	AmpAssign     // &=
	AndAnd        // &&
	AndAndAssign  // &&=
	Pipe          // |
	PipeAssign    // |=
	OrOr          // ||
	OrOrAssign    // ||=
	Tilde         // ~
	Caret         // ^
	CaretAssign   // ^=
	Bang          // !
	BangEq        // !=
	Assign        // =
	EqEq          // ==
	Lt            // <
	LtEq          // <=
	Shl           // <<
	ShlAssign     // <<=
	Gt            // >
	GtEq          // >=
	Shr           // >>
	ShrAssign     // >>=
	Dot           // .
	DotDot        // ..
	DotDotDot     // ...
	Arrow         // ->

	kindCount
)

var kindNames = [kindCount]string{
	Invalid: "invalid", EOF: "end of file", Ident: "identifier", Underscore: "_",
	KwLet: "let", KwMut: "mut", KwPub: "pub", KwFn: "fn", KwType: "type", KwExtern: "extern",
	KwUse: "use", KwIf: "if", KwElse: "else", KwWhile: "while", KwFor: "for", KwIn: "in",
	KwBreak: "break", KwContinue: "continue", KwReturn: "return", KwDefer: "defer", KwAs: "as",
	KwStruct: "struct", KwUnion: "union", KwStatic: "static", KwNil: "nil", KwTrue: "true",
	KwFalse: "false",
	IntLit: "{integer}", FloatLit: "{float}", StringLit: "{string}", CharLit: "{char}",
	At: "@", Semicolon: ";", Colon: ":", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Plus: "+", PlusAssign: "+=", Minus: "-", MinusAssign: "-=",
	Star: "*", StarAssign: "*=", Slash: "/", SlashAssign: "/=", Percent: "%", PercentAssign: "%=",
	Question: "?", Comma: ",", Amp: "&", AmpAssign: "&=", AndAnd: "&&", AndAndAssign: "&&=",
	Pipe: "|", PipeAssign: "|=", OrOr: "||", OrOrAssign: "||=", Tilde: "~", Caret: "^",
	CaretAssign: "^=", Bang: "!", BangEq: "!=", Assign: "=", EqEq: "==", Lt: "<", LtEq: "<=",
	Shl: "<<", ShlAssign: "<<=", Gt: ">", GtEq: ">=", Shr: ">>", ShrAssign: ">>=", Dot: ".",
	DotDot: "..", DotDotDot: "...", Arrow: "->",
}

// String returns the lexeme (or a description for classes such as identifiers).
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k >= KwLet && k <= KwFalse }

// IsLiteral reports whether k carries a literal value.
func (k Kind) IsLiteral() bool {
	switch k {
	case IntLit, FloatLit, StringLit, CharLit, KwNil, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsCompoundAssign reports whether k is an operator-assignment such as `+=`.
func (k Kind) IsCompoundAssign() bool {
	switch k {
	case PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign, AmpAssign,
		PipeAssign, CaretAssign, ShlAssign, ShrAssign, AndAndAssign, OrOrAssign:
		return true
	default:
		return false
	}
}

// CompoundBase maps `+=` to `+`, `&&=` to `&&` and so on.
func (k Kind) CompoundBase() (Kind, bool) {
	switch k {
	case PlusAssign:
		return Plus, true
	case MinusAssign:
		return Minus, true
	case StarAssign:
		return Star, true
	case SlashAssign:
		return Slash, true
	case PercentAssign:
		return Percent, true
	case AmpAssign:
		return Amp, true
	case PipeAssign:
		return Pipe, true
	case CaretAssign:
		return Caret, true
	case ShlAssign:
		return Shl, true
	case ShrAssign:
		return Shr, true
	case AndAndAssign:
		return AndAnd, true
	case OrOrAssign:
		return OrOr, true
	default:
		return Invalid, false
	}
}

// CanStartExpr reports whether a token of kind k can begin an expression.
// `return` uses it to decide whether a value follows.
func (k Kind) CanStartExpr() bool {
	switch k {
	case Ident, Underscore, IntLit, FloatLit, StringLit, CharLit, KwNil, KwTrue, KwFalse,
		LParen, LBrace, LBracket, Dot, At, Amp, AndAnd, Bang, Minus, Plus, Star,
		KwIf, KwWhile, KwFor, KwFn, KwStruct, KwUnion, KwBreak, KwContinue, KwReturn:
		return true
	default:
		return false
	}
}
