package driver

import (
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/source"
	"kiln/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize лексит один файл целиком (команда `kiln tokenize`).
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  lx.Tokenize(),
		Bag:     bag,
	}, nil
}
