package types

import (
	"errors"
	"fmt"

	"kiln/internal/diag"
	"kiln/internal/source"
)

// ReportUnify turns a failed unification into a diagnostic. expected and
// found are the top-level types of the check, at is the expression that
// failed, origin (optional) is where the expected type came from.
func ReportUnify(r diag.Reporter, c *Context, err error, expected, found TyKind, at, origin source.Span) {
	var uerr *UnifyError
	if !errors.As(err, &uerr) {
		diag.ReportError(r, diag.SemaInternal, at, err.Error()).Emit()
		return
	}
	exp, fnd := c.Display(expected), c.Display(found)
	var b *diag.ReportBuilder
	switch uerr.Kind {
	case Occurs:
		b = diag.ReportError(r, diag.SemaRecursiveType, at,
			fmt.Sprintf("recursive type: `%s` refers to itself through `%s`", exp, fnd))
	default:
		b = diag.ReportError(r, diag.SemaTypeMismatch, at,
			fmt.Sprintf("mismatched types: expected `%s`, found `%s`", exp, fnd)).
			WithLabel(fmt.Sprintf("expected `%s`", exp))
	}
	if origin != (source.Span{}) && origin != at {
		b.WithNote(origin, fmt.Sprintf("`%s` is expected because of this", exp))
	}
	b.Emit()
}
