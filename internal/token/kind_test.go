package token_test

import (
	"testing"

	"kiln/internal/token"
)

func TestKindStringCoversAllKinds(t *testing.T) {
	for k := token.Invalid; k <= token.Arrow; k++ {
		if k.String() == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if token.Kind(250).String() != "unknown" {
		t.Errorf("out of range kind must be unknown")
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want token.Kind
		ok   bool
	}{
		{"let", token.KwLet, true},
		{"union", token.KwUnion, true},
		{"_", token.Underscore, true},
		{"Let", token.Invalid, false},
		{"i32", token.Invalid, false},
	}
	for _, tt := range tests {
		got, ok := token.LookupKeyword(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("LookupKeyword(%q) = %v, %v", tt.in, got, ok)
		}
		if ok && tt.want != token.Underscore && !got.IsKeyword() {
			t.Errorf("%v must be a keyword", got)
		}
	}
}

func TestCompoundBase(t *testing.T) {
	tests := map[token.Kind]token.Kind{
		token.PlusAssign:   token.Plus,
		token.ShrAssign:    token.Shr,
		token.AndAndAssign: token.AndAnd,
		token.OrOrAssign:   token.OrOr,
	}
	for in, want := range tests {
		if !in.IsCompoundAssign() {
			t.Errorf("%v must be compound", in)
		}
		got, ok := in.CompoundBase()
		if !ok || got != want {
			t.Errorf("CompoundBase(%v) = %v, %v", in, got, ok)
		}
	}
	if token.Assign.IsCompoundAssign() {
		t.Errorf("= is not compound")
	}
	if _, ok := token.EqEq.CompoundBase(); ok {
		t.Errorf("== has no base")
	}
}
