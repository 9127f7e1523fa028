package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"kiln/internal/diag"
	"kiln/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		// явный выбор перекрывает глобальный color.NoColor
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики для терминала:
//
//	main.kn:2:15: ERROR SEM3001: mismatched types
//	   2 | let a: bool = 1;
//	     |               ^ expected `bool`
//
// Диагностики без позиции выводятся одной строкой.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev := p.severity(d.Severity)
	f := spanFile(fs, d.Code, d.Primary)
	if f == nil {
		fmt.Fprintf(w, "%s %s: %s\n", sev.Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
		if d.Code == diag.ObsTimings || opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			}
		}
		return
	}

	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d:", formatPath(f, fs, opts.PathMode), start.Line, start.Col),
		sev.Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)

	writeExcerpt(w, f, start, end, d.Label, opts, p)

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := spanFile(fs, d.Code, n.Span)
		if nf == nil {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			continue
		}
		ns, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
			formatPath(nf, fs, opts.PathMode), ns.Line, ns.Col, n.Msg)
	}
}

func writeExcerpt(w io.Writer, f *source.File, start, end source.LineCol, label string, opts PrettyOpts, p palette) {
	total := uint32(max(f.LineCount(), 1)) // #nosec G115
	ctx := uint32(max(opts.Context, 0))   // #nosec G115
	first := start.Line - min(ctx, start.Line-1)
	last := min(start.Line+ctx, total)
	gutterWidth := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for ln := first; ln <= last; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprintf("%*d", gutterWidth, ln), p.gutter.Sprint("|"), text)
		if ln != start.Line {
			continue
		}
		pad, width := caretColumns(f.GetLine(ln), start, end)
		marker := "^" + strings.Repeat("~", max(width-1, 0))
		line := fmt.Sprintf(" %s %s %s%s", blank, p.gutter.Sprint("|"), strings.Repeat(" ", pad), p.caret.Sprint(marker))
		if label != "" {
			line += " " + p.caret.Sprint(label)
		}
		fmt.Fprintln(w, line)
	}
}

// caretColumns returns the display offset and width of the underline for a
// span starting on line. Spans running past the line end are cut at it.
func caretColumns(line string, start, end source.LineCol) (pad, width int) {
	from := min(int(start.Col-1), len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col-1), len(line))
	}
	pad = runewidth.StringWidth(expandTabs(line[:from]))
	if to > from {
		width = runewidth.StringWidth(expandTabs(line[from:to]))
	}
	return pad, max(width, 1)
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
