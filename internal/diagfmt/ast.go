package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"kiln/internal/ast"
	"kiln/internal/source"
)

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Span     source.Span     `json:"span"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

func formatSpan(sp source.Span, fs *source.FileSet) string {
	if fs == nil || fs.Get(sp.File) == nil {
		return sp.String()
	}
	start, end := fs.Resolve(sp)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}

// FormatASTPretty печатает дерево модуля: по узлу на строку, ветви рисуются ├─ и └─.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	file := builder.Files.Get(fileID)
	if file == nil {
		return fmt.Errorf("file not found")
	}

	header := "File"
	if fs != nil {
		if f := fs.Get(file.Span.File); f != nil {
			header = formatPath(f, fs, PathModeAuto)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (span: %s)\n", header, formatSpan(file.Span, fs))
	for i, item := range file.Items {
		writeExprTree(&b, builder, item, fs, "", i == len(file.Items)-1)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeExprTree(b *strings.Builder, builder *ast.Builder, id ast.ExprID, fs *source.FileSet, prefix string, last bool) {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	fmt.Fprintf(b, "%s%s%s (span: %s)\n", prefix, branch, builder.Describe(id), formatSpan(builder.Exprs.Span(id), fs))
	children := builder.Exprs.Children(id)
	for i, c := range children {
		writeExprTree(b, builder, c, fs, prefix+next, i == len(children)-1)
	}
}

func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID) error {
	file := builder.Files.Get(fileID)
	if file == nil {
		return fmt.Errorf("file not found")
	}
	root := ASTNodeOutput{Type: "File", Span: file.Span}
	for _, item := range file.Items {
		root.Children = append(root.Children, exprJSON(builder, item))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(root)
}

func exprJSON(builder *ast.Builder, id ast.ExprID) ASTNodeOutput {
	node := ASTNodeOutput{
		Type: builder.Exprs.Kind(id).String(),
		Text: builder.Describe(id),
		Span: builder.Exprs.Span(id),
	}
	for _, c := range builder.Exprs.Children(id) {
		node.Children = append(node.Children, exprJSON(builder, c))
	}
	return node
}
