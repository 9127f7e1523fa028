package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"kiln/internal/ast"
	"kiln/internal/diag"
	"kiln/internal/lexer"
	"kiln/internal/parser"
	"kiln/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.kn", []byte("fn main() {\n\tlet x = \"unterminated\n}"))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, source.Span{File: fileID, Start: 21, End: 34}, "Unterminated string literal").
		WithNote(source.Span{File: fileID, Start: 0, End: 2}, "in this function"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings").
		WithNote(source.Span{}, `{"kind":"diagnose"}`))
	return bag, fs
}

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	bag, fs := sampleBag()

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 2 || len(output.Diagnostics) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", output.Count)
	}

	first := output.Diagnostics[0]
	if first.Severity != "ERROR" || first.Code != "LEX1002" {
		t.Errorf("severity/code = %s/%s", first.Severity, first.Code)
	}
	if first.Location == nil {
		t.Fatalf("first diagnostic has no location")
	}
	want := LocationJSON{File: "test.kn", StartByte: 21, EndByte: 34, StartLine: 2, StartCol: 10, EndLine: 2, EndCol: 23}
	if *first.Location != want {
		t.Errorf("location = %+v, want %+v", *first.Location, want)
	}
	if len(first.Notes) != 0 {
		t.Errorf("notes must be omitted unless requested: %+v", first.Notes)
	}

	timings := output.Diagnostics[1]
	if timings.Location != nil {
		t.Errorf("timings must be location-less, got %+v", timings.Location)
	}
	if len(timings.Notes) != 1 || timings.Notes[0].Message != `{"kind":"diagnose"}` {
		t.Errorf("timings payload lost: %+v", timings.Notes)
	}
}

func TestJSONOptions(t *testing.T) {
	bag, fs := sampleBag()

	tests := []struct {
		name  string
		opts  JSONOpts
		count int
		check func(t *testing.T, out DiagnosticsOutput)
	}{
		{
			name:  "max truncates output",
			opts:  JSONOpts{Max: 1},
			count: 1,
		},
		{
			name:  "positions omitted",
			opts:  JSONOpts{PathMode: PathModeBasename},
			count: 2,
			check: func(t *testing.T, out DiagnosticsOutput) {
				if loc := out.Diagnostics[0].Location; loc.StartLine != 0 || loc.StartCol != 0 {
					t.Errorf("positions leaked: %+v", loc)
				}
			},
		},
		{
			name:  "notes included",
			opts:  JSONOpts{IncludeNotes: true, IncludePositions: true},
			count: 2,
			check: func(t *testing.T, out DiagnosticsOutput) {
				notes := out.Diagnostics[0].Notes
				if len(notes) != 1 || notes[0].Location == nil || notes[0].Location.StartLine != 1 {
					t.Errorf("notes = %+v", notes)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := BuildDiagnosticsOutput(bag, fs, tt.opts)
			if out.Count != tt.count {
				t.Fatalf("count = %d, want %d", out.Count, tt.count)
			}
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestYAMLMatchesJSON(t *testing.T) {
	bag, fs := sampleBag()
	opts := JSONOpts{IncludePositions: true, IncludeNotes: true, PathMode: PathModeBasename}

	var buf bytes.Buffer
	if err := YAML(&buf, bag, fs, opts); err != nil {
		t.Fatalf("YAML() error: %v", err)
	}
	var got DiagnosticsOutput
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	want := BuildDiagnosticsOutput(bag, fs, opts)
	if got.Count != want.Count || got.Diagnostics[0].Code != want.Diagnostics[0].Code {
		t.Fatalf("yaml = %+v, want %+v", got, want)
	}
	if *got.Diagnostics[0].Location != *want.Diagnostics[0].Location {
		t.Errorf("location = %+v, want %+v", *got.Diagnostics[0].Location, *want.Diagnostics[0].Location)
	}
	if !strings.Contains(buf.String(), "code: LEX1002") {
		t.Errorf("unexpected yaml layout:\n%s", buf.String())
	}
}

func TestSarif(t *testing.T) {
	bag, fs := sampleBag()

	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "kiln", ToolVersion: "0.1.0", InvocationArgs: []string{"diag", "."}}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("header = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 2 || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("results = %d rules = %d", len(run.Results), len(run.Tool.Driver.Rules))
	}
	if run.Results[0].Level != "error" || len(run.Results[0].Locations) != 1 {
		t.Errorf("first result = %+v", run.Results[0])
	}
	if run.Results[0].Locations[0].Physical.Region.StartLine != 2 {
		t.Errorf("region = %+v", run.Results[0].Locations[0].Physical.Region)
	}
	if run.Results[1].Level != "note" || len(run.Results[1].Locations) != 0 {
		t.Errorf("timings result = %+v", run.Results[1])
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Errorf("run with errors reported as successful")
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.kn", []byte("let x\n= 1;"))
	toks := lexer.New(fs.Get(id), lexer.Options{}).Tokenize()

	var pretty bytes.Buffer
	if err := FormatTokensPretty(&pretty, toks, fs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(pretty.String(), "\n"), "\n")
	if len(lines) != len(toks) {
		t.Fatalf("got %d lines for %d tokens:\n%s", len(lines), len(toks), pretty.String())
	}
	if !strings.Contains(lines[1], `"x" at 1:5-1:6`) {
		t.Errorf("ident line = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "(nl)") {
		t.Errorf("newline flag missing: %q", lines[2])
	}

	var js bytes.Buffer
	if err := FormatTokensJSON(&js, toks); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(js.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(toks) || out[1].Text != "x" || !out[2].NewlineBefore {
		t.Errorf("json tokens = %+v", out)
	}
}

func TestFormatAST(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("ast.kn", []byte("let x = 1 + 2;\n"))
	file := fs.Get(id)
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(file, lexer.New(file, lexer.Options{Reporter: rep}).Tokenize(), builder, parser.Options{Reporter: rep})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}

	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, builder, res.File, fs); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"ast.kn (span: ",
		"└─ Binding let x (span: 1:1-",
		"   └─ Binary + (span: 1:9-1:14)",
		"      ├─ Literal 1 (span: 1:9-1:10)",
		"      └─ Literal 2 (span: 1:13-1:14)",
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("tree:\n%s", buf.String())
	}
	for i := range want {
		if !strings.HasPrefix(lines[i], want[i]) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], want[i])
		}
	}

	buf.Reset()
	if err := FormatASTJSON(&buf, builder, res.File); err != nil {
		t.Fatal(err)
	}
	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 1 || root.Children[0].Type != "Binding" || len(root.Children[0].Children) != 1 {
		t.Errorf("json tree = %+v", root)
	}
}
