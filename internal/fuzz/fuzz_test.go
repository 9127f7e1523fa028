package fuzztests

import (
	"context"
	"testing"
	"time"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/layout"
	"kiln/internal/lexer"
	"kiln/internal/parser"
	"kiln/internal/sema"
	"kiln/internal/source"
	"kiln/internal/testkit"
	"kiln/internal/token"
)

// parseTimeout is the maximum time allowed for one input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

type frontEnd struct {
	file    *source.File
	bag     *diag.Bag
	builder *ast.Builder
	result  parser.Result
}

func parseInput(input []byte) frontEnd {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("fuzz.kn", clampSeed(input)))
	bag := diag.NewBag(128)
	rep := diag.BagReporter{Bag: bag}
	builder := ast.NewBuilder(ast.Hints{})
	toks := lexer.New(file, lexer.Options{Reporter: rep}).Tokenize()
	res := parser.ParseFile(file, toks, builder, parser.Options{Reporter: rep, MaxErrors: 128})
	return frontEnd{file: file, bag: bag, builder: builder, result: res}
}

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.kn", clampSeed(input)))
		toks := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: diag.NewBag(64)}}).Tokenize()
		if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
			t.Fatalf("token stream does not end with EOF")
		}
		for i := 1; i < len(toks); i++ {
			if toks[i].Span.Start < toks[i-1].Span.End {
				t.Fatalf("token %d overlaps previous: %v after %v", i, toks[i].Span, toks[i-1].Span)
			}
		}
	})
}

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fe := parseInput(input)
		if fe.bag.HasErrors() {
			return
		}
		if err := testkit.CheckSpanInvariants(fe.builder, fe.result.File, fe.file); err != nil {
			t.Fatalf("span invariants: %v\ninput: %q", err, input)
		}
	})
}

// FuzzParserNoHang tests that recovery never loops forever.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("fn test() { let x: i32 = 1\nlet y: i32 = 2; }")) // missing semicolon
	f.Add([]byte("fn test() { x + y\nlet z: i32 = 3; }"))
	f.Add([]byte("if x { } else"))
	f.Add([]byte("let p = Point.{ x: , y: };"))

	f.Fuzz(func(t *testing.T, input []byte) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = parseInput(input)
		}()
		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang detected after %v\ninput (%d bytes): %q", parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// FuzzCheckerNoPanic runs the type checker on every input that parses.
func FuzzCheckerNoPanic(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fe := parseInput(input)
		if fe.bag.HasErrors() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()
		_ = sema.Check(ctx, []sema.Module{{
			ID:      1,
			Info:    ast.ModuleInfo{Name: "fuzz", Path: "fuzz.kn"},
			Builder: fe.builder,
			File:    fe.result.File,
		}}, sema.Options{Reporter: diag.BagReporter{Bag: fe.bag}, Target: layout.Host()})
	})
}

func truncateForLog(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
