package driver

import (
	"fortio.org/safecast"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/parser"
	"kiln/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
}

// Parse разбирает один файл без разрешения импортов: `use` остаются
// безымянными модулями, файлы зависимостей не читаются.
func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, err
	}

	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	toks := lexer.New(file, lexer.Options{Reporter: rep}).Tokenize()
	builder := ast.NewBuilder(ast.Hints{})

	result := parser.ParseFile(file, toks, builder, parser.Options{
		Reporter:  rep,
		MaxErrors: maxErrors,
	})

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  result.File,
		Bag:     bag,
	}, nil
}
