package diagfmt

import (
	"encoding/json"
	"io"

	"kiln/internal/diag"
	"kiln/internal/source"
)

// LocationJSON представляет местоположение в файле
type LocationJSON struct {
	File      string `json:"file" yaml:"file"`
	StartByte uint32 `json:"start_byte" yaml:"start_byte"`
	EndByte   uint32 `json:"end_byte" yaml:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty" yaml:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty" yaml:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string        `json:"message" yaml:"message"`
	Location *LocationJSON `json:"location,omitempty" yaml:"location,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON/YAML формате.
// Location пуст у диагностик без позиции.
type DiagnosticJSON struct {
	Severity string        `json:"severity" yaml:"severity"`
	Code     string        `json:"code" yaml:"code"`
	Message  string        `json:"message" yaml:"message"`
	Label    string        `json:"label,omitempty" yaml:"label,omitempty"`
	Location *LocationJSON `json:"location,omitempty" yaml:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DiagnosticsOutput is the root object of the JSON and YAML outputs.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics" yaml:"diagnostics"`
	Count       int              `json:"count" yaml:"count"`
}

func makeLocation(code diag.Code, span source.Span, fs *source.FileSet, opts JSONOpts) *LocationJSON {
	f := spanFile(fs, code, span)
	if f == nil {
		return nil
	}
	loc := &LocationJSON{
		File:      formatPath(f, fs, opts.PathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if opts.IncludePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру вывода без сериализации.
// Заметки OBS6001 включаются всегда: в них лежит сам отчёт.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	diagnostics := make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		out := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Label:    d.Label,
			Location: makeLocation(d.Code, d.Primary, fs, opts),
		}
		if (opts.IncludeNotes || d.Code == diag.ObsTimings) && len(d.Notes) > 0 {
			out.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				out.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(d.Code, note.Span, fs, opts),
				}
			}
		}
		diagnostics = append(diagnostics, out)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON форматирует диагностики в JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
