package testkit

import (
	"strings"
	"testing"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/parser"
	"kiln/internal/source"
)

func parse(t *testing.T, src string) (*ast.Builder, ast.FileID, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("inv.kn", []byte(src)))
	bag := diag.NewBag(16)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(file, lexer.New(file, lexer.Options{Reporter: rep}).Tokenize(), b, parser.Options{Reporter: rep})
	if bag.Len() != 0 {
		t.Fatalf("parse: %s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	return b, res.File, file
}

func TestCheckSpanInvariants(t *testing.T) {
	srcs := []string{
		"",
		"let x = 1 + 2;",
		"fn add(a: i32, b: i32) -> i32 { a + b }\nlet s = add(1, 2);",
		"let t = (1, true).0;\nlet arr = .[1, 2, 3];",
	}
	for _, src := range srcs {
		b, id, file := parse(t, src)
		if err := CheckSpanInvariants(b, id, file); err != nil {
			t.Errorf("%q: %v", src, err)
		}
	}
}

func TestCheckSpanInvariantsDetectsBrokenSpans(t *testing.T) {
	b, id, file := parse(t, "let x = 1;\nlet y = 2;")

	item := b.Files.Get(id).Items[1]
	sp := b.Exprs.Span(item)
	b.Exprs.SetSpan(item, source.Span{File: sp.File, Start: sp.Start, End: sp.End + 100})

	err := CheckSpanInvariants(b, id, file)
	if err == nil || !strings.Contains(err.Error(), "outside file span") {
		t.Fatalf("err = %v", err)
	}
	if CheckSpanInvariants(nil, id, file) == nil {
		t.Errorf("nil builder accepted")
	}
}
