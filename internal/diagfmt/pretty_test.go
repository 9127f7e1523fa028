package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"kiln/internal/diag"
	"kiln/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("let x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.kn", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 8, End: 28},
		"Unterminated string literal",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.kn:1:9:"},
		{"Relative path", PathModeRelative, "src/test.kn:1:9:"},
		{"Basename only", PathModeBasename, "test.kn:1:9:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			for _, want := range []string{"ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected %q in output:\n%s", want, output)
				}
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "test.kn", "test.kn:1:9:"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/file.kn", " file.kn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("let x = 42\n"))
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: fileID, Start: 8, End: 10}, "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := " " + buf.String()
			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, output)
			}
		})
	}
}

func TestPrettyCaretUnderline(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.kn", []byte("fn main() {\n\tlet a: bool = 1;\n}\n"))

	bag := diag.NewBag(4)
	// `1` на второй строке: смещение 12 + "\tlet a: bool = " (15 байт)
	bag.Add(diag.New(diag.SevError, diag.SemaTypeMismatch, source.Span{File: fileID, Start: 27, End: 28}, "mismatched types").
		WithLabel("expected `bool`"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header, source and caret lines, got:\n%s", buf.String())
	}
	if lines[0] != "main.kn:2:16: ERROR SEM3001: mismatched types" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != " 2 |     let a: bool = 1;" {
		t.Errorf("source line = %q", lines[1])
	}
	src := strings.Index(lines[1], "1;")
	caret := strings.Index(lines[2], "^")
	if caret != src {
		t.Errorf("caret at column %d, source `1` at %d:\n%s", caret, src, buf.String())
	}
	if !strings.HasSuffix(lines[2], "^ expected `bool`") {
		t.Errorf("caret line = %q", lines[2])
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	fs := source.NewFileSet()
	src := "let s = \"日本\" + 1;\n"
	fileID := fs.AddVirtual("wide.kn", []byte(src))
	start := uint32(strings.Index(src, "1;")) // #nosec G115

	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SemaTypeMismatch, source.Span{File: fileID, Start: start, End: start + 1}, "bad operand"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	// две широкие руны занимают по две колонки
	want := "   | " + strings.Repeat(" ", len(`let s = "`)+4+len(`" + `)) + "^"
	if lines[2] != want {
		t.Errorf("caret line = %q, want %q", lines[2], want)
	}
}

func TestPrettyContextAndWidth(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("ctx.kn", []byte("let a = 1;\nlet b = a + aaaaaaaaaaaaaaaaaaaa;\nlet c = 3;\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 15, End: 16}, "boom"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1, Width: 12})
	out := buf.String()
	for _, want := range []string{" 1 | let a = 1;", " 2 | let b = a +…", " 3 | let c = 3;"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrettyNotesAndLocationless(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.kn", []byte("let x = 1;\nlet x = 2;\n"))

	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevError, diag.SemaDuplicateSymbol, source.Span{File: fileID, Start: 15, End: 16}, "duplicate symbol `x`").
		WithNote(source.Span{File: fileID, Start: 4, End: 5}, "previous definition here"))
	bag.Add(diag.New(diag.SevError, diag.ProjInvalidManifest, source.Span{}, "missing [package]"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	out := buf.String()
	if !strings.Contains(out, "note: test.kn:1:5: previous definition here") {
		t.Errorf("expected note with location, got:\n%s", out)
	}
	if !strings.Contains(out, "\nERROR PRJ5007: missing [package]\n") {
		t.Errorf("expected a location-less manifest error, got:\n%s", out)
	}
	if strings.Contains(out, "test.kn:1:1: ERROR") {
		t.Errorf("location-less diagnostic must not point into file 0:\n%s", out)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.kn", []byte("x\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 0, End: 1}, "undefined"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output has escape codes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes: %q", colored.String())
	}
}
