package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"kiln/internal/ast"
	"kiln/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span lies within the file content and points at sf
// 2) every item span is non-empty and fully contained in file.Span
// 3) every nested expression span is ordered and inside the file content
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	if f.Span.End < f.Span.Start || f.Span.End > lenContent {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}

	for _, it := range f.Items {
		sp := b.Exprs.Span(it)
		if sp.End <= sp.Start {
			return fmt.Errorf("empty item span: %v (%s)", sp, b.Describe(it))
		}
		if sp.File != sf.ID {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("item span %v is outside file span %v", sp, f.Span)
		}

		var walkErr error
		b.Exprs.Walk(it, func(id ast.ExprID) bool {
			inner := b.Exprs.Span(id)
			if walkErr == nil && (inner.End < inner.Start || inner.End > lenContent) {
				walkErr = fmt.Errorf("expression span %v out of bounds (%s)", inner, b.Describe(id))
				return false
			}
			return true
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return nil
}
