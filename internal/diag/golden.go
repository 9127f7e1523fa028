package diag

import (
	"fmt"
	"path/filepath"
	"strings"

	"kiln/internal/source"
)

// FormatShortDiagnostics renders one line per diagnostic:
// `ERROR SEM3001 main.kn:3:5 message`. Notes follow as indented lines when
// includeNotes is set. The order of diags is preserved.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code.ID(), location(fs, d.Primary), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "\n  note %s %s", location(fs, n.Span), n.Msg)
		}
	}
	return b.String()
}

func location(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return sp.String()
	}
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", filepath.Base(f.Path), start.Line, start.Col)
}
