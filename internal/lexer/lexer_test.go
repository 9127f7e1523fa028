package lexer

import (
	"testing"

	"kiln/internal/diag"
	"kiln/internal/source"
	"kiln/internal/token"
)

func lexString(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kn", []byte(src))
	bag := diag.NewBag(100)
	lx := New(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.Tokenize(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tk := range toks {
		out = append(out, tk.Kind)
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"let", "let x = 1;", []token.Kind{token.KwLet, token.Ident, token.Assign, token.IntLit, token.Semicolon, token.EOF}},
		{"range", "1..2", []token.Kind{token.IntLit, token.DotDot, token.IntLit, token.EOF}},
		{"tuple index", "t.0.1", []token.Kind{token.Ident, token.Dot, token.FloatLit, token.EOF}},
		{"spread", "f(xs...)", []token.Kind{token.Ident, token.LParen, token.Ident, token.DotDotDot, token.RParen, token.EOF}},
		{"compound", "a <<= 1; b &&= c", []token.Kind{token.Ident, token.ShlAssign, token.IntLit, token.Semicolon, token.Ident, token.AndAndAssign, token.Ident, token.EOF}},
		{"deref", "p.*", []token.Kind{token.Ident, token.Dot, token.Star, token.EOF}},
		{"arrow", "fn() -> i32", []token.Kind{token.KwFn, token.LParen, token.RParen, token.Arrow, token.Ident, token.EOF}},
		{"underscore", "_ _x", []token.Kind{token.Underscore, token.Ident, token.EOF}},
		{"builtin", "@size_of(u8)", []token.Kind{token.At, token.Ident, token.LParen, token.Ident, token.RParen, token.EOF}},
		{"comments", "a // x\n/* b /* c */ d */ e", []token.Kind{token.Ident, token.Ident, token.EOF}},
		{"empty", "", []token.Kind{token.EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := lexString(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %v", bag.Items())
			}
			got := kinds(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("token %d: got %v, want %v (all: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
	}{
		{"0", token.IntLit},
		{"1_000", token.IntLit},
		{"0xff", token.IntLit},
		{"0b1010", token.IntLit},
		{"0o17", token.IntLit},
		{"1.5", token.FloatLit},
		{"1e9", token.FloatLit},
		{"2.5e-3", token.FloatLit},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, bag := lexString(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics for %q", tt.src)
			}
			if toks[0].Kind != tt.kind || toks[0].Text != tt.src {
				t.Fatalf("got %v %q", toks[0].Kind, toks[0].Text)
			}
		})
	}
}

func TestBadNumbers(t *testing.T) {
	for _, src := range []string{"0x", "0b102", "12abc"} {
		t.Run(src, func(t *testing.T) {
			toks, bag := lexString(t, src)
			if toks[0].Kind != token.Invalid {
				t.Fatalf("expected invalid token, got %v", toks[0].Kind)
			}
			if bag.Len() != 1 || bag.Items()[0].Code != diag.LexBadNumber {
				t.Fatalf("expected one LexBadNumber, got %v", bag.Items())
			}
		})
	}
}

func TestNewlineBefore(t *testing.T) {
	toks, _ := lexString(t, "f\n{ x }")
	if !toks[0].NewlineBefore {
		t.Errorf("first token must be marked as line start")
	}
	if !toks[1].NewlineBefore {
		t.Errorf("`{` after newline must have NewlineBefore")
	}
	if toks[2].NewlineBefore {
		t.Errorf("`x` is on the same line as `{`")
	}

	toks, _ = lexString(t, "a /* \n */ b")
	if !toks[1].NewlineBefore {
		t.Errorf("newline inside block comment must count")
	}
}

func TestStringsAndChars(t *testing.T) {
	toks, bag := lexString(t, `"a\n\x41" 'c' '\''`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.StringLit || toks[1].Kind != token.CharLit || toks[2].Kind != token.CharLit {
		t.Fatalf("unexpected kinds %v", kinds(toks))
	}
	s, err := Unquote(toks[0].Text)
	if err != nil || s != "a\nA" {
		t.Fatalf("Unquote = %q, %v", s, err)
	}
	c, err := Unquote(toks[2].Text)
	if err != nil || c != "'" {
		t.Fatalf("Unquote char = %q, %v", c, err)
	}
}

func TestStringErrors(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{`"abc`, diag.LexUnterminatedString},
		{"'a", diag.LexUnterminatedChar},
		{"'ab'", diag.LexBadChar},
		{`"\q"`, diag.LexBadEscape},
		{"/* open", diag.LexUnterminatedBlockComment},
		{"$", diag.LexUnknownChar},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, bag := lexString(t, tt.src)
			if toks[len(toks)-1].Kind != token.EOF {
				t.Fatalf("stream must end with EOF")
			}
			if bag.Len() == 0 || bag.Items()[0].Code != tt.code {
				t.Fatalf("want %v, got %v", tt.code, bag.Items())
			}
		})
	}
}

func TestIdentifiersAreNFC(t *testing.T) {
	// "é" как e + combining acute и как один code point
	toks, bag := lexString(t, "cafe\u0301 caf\u00e9")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Text != toks[1].Text {
		t.Fatalf("identifiers differ after normalization: %q vs %q", toks[0].Text, toks[1].Text)
	}
	if toks[0].Span.Len() != 6 {
		t.Fatalf("span must cover source bytes, got %d", toks[0].Span.Len())
	}
}
