package driver

import (
	"context"
	"strings"

	"fortio.org/safecast"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/layout"
	"kiln/internal/lexer"
	"kiln/internal/parser"
	"kiln/internal/sema"
	"kiln/internal/source"
	"kiln/internal/trace"
)

const (
	sessionModule   = 1
	sessionPath     = "<repl>"
	sessionValueVar = "__repl_value"
)

// Session держит объявления, введённые в `kiln repl`. Каждый ввод
// проверяется заново вместе со всеми принятыми ранее объявлениями.
type Session struct {
	MaxDiagnostics int
	Target         layout.Target
	Tracer         trace.Tracer

	decls []string
}

// EvalResult is the outcome of one REPL input. For declarations Type is empty
// and Accepted tells whether the declaration joined the session.
type EvalResult struct {
	FileSet  *source.FileSet
	Bag      *diag.Bag
	Decl     bool
	Accepted bool
	Type     string
	// Const is the folded value when the expression is constant.
	Const string
}

func NewSession() *Session {
	return &Session{MaxDiagnostics: defaultMaxDiagnostics, Target: layout.Host()}
}

// Decls returns the accepted declarations in input order.
func (s *Session) Decls() []string {
	return append([]string(nil), s.decls...)
}

// Reset forgets every accepted declaration.
func (s *Session) Reset() { s.decls = s.decls[:0] }

func isDeclInput(input string) bool {
	word, rest, _ := strings.Cut(input, " ")
	switch word {
	case "let", "pub", "extern", "type":
		return true
	case "fn":
		// `fn name(...)` объявляет функцию, `fn(...)` - литерал
		rest = strings.TrimSpace(rest)
		return rest != "" && rest[0] != '('
	}
	return false
}

// Eval checks one line of input. Declarations that check without errors are
// kept; any other input is typed as an expression and is not kept.
func (s *Session) Eval(ctx context.Context, input string) (*EvalResult, error) {
	input = strings.TrimSpace(input)
	decl := isDeclInput(input)

	var src strings.Builder
	for _, d := range s.decls {
		src.WriteString(d)
		src.WriteByte('\n')
	}
	entry := input
	if decl {
		if !strings.HasSuffix(entry, ";") && !strings.HasSuffix(entry, "}") {
			entry += ";"
		}
		src.WriteString(entry)
	} else {
		src.WriteString("let " + sessionValueVar + " = " + strings.TrimSuffix(input, ";") + ";")
	}
	src.WriteByte('\n')

	fs := source.NewFileSet()
	fileID := fs.AddVirtual(sessionPath, []byte(src.String()))
	file := fs.Get(fileID)

	maxErrors, err := safecast.Conv[uint](s.MaxDiagnostics)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(s.MaxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	toks := lexer.New(file, lexer.Options{Reporter: rep}).Tokenize()
	builder := ast.NewBuilder(ast.Hints{})
	pr := parser.ParseFile(file, toks, builder, parser.Options{Reporter: rep, MaxErrors: maxErrors})

	res := &EvalResult{FileSet: fs, Bag: bag, Decl: decl}
	if bag.HasErrors() {
		return res, nil
	}
	result := sema.Check(ctx, []sema.Module{{
		ID:      sessionModule,
		Info:    ast.ModuleInfo{Name: "repl", Path: sessionPath},
		Builder: builder,
		File:    pr.File,
	}}, sema.Options{Reporter: rep, Tracer: s.Tracer, Target: s.Target})
	bag.Sort()
	if bag.HasErrors() || result.Aborted {
		return res, nil
	}

	if decl {
		s.decls = append(s.decls, entry)
		res.Accepted = true
		return res, nil
	}
	id, ok := result.Table.Global(sessionModule, sessionValueVar)
	if !ok {
		return res, nil
	}
	info := result.Table.Get(id)
	res.Type = result.Types.DisplayTy(info.Ty)
	if info.Const != nil {
		res.Const = info.Const.String()
	}
	return res, nil
}
