package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiln/internal/diag"
)

// writeTree creates files under a fresh temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func parseTree(t *testing.T, dir string, jobs int) *Workspace {
	t.Helper()
	proj, err := LoadProject(filepath.Join(dir, "main.kn"))
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	ws, err := ParseWorkspace(context.Background(), proj, WorkspaceOptions{Jobs: jobs})
	if err != nil {
		t.Fatalf("ParseWorkspace: %v", err)
	}
	return ws
}

func codes(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

var diamond = map[string]string{
	"main.kn": "use util;\nuse math;\nfn main() {\n\tlet x = util.twice(math.one());\n}\n",
	"util.kn": "use math;\npub fn twice(x: i32) -> i32 { x * 2 + math.one() - 1 }\n",
	"math.kn": "pub fn one() -> i32 { 1 }\n",
}

func TestParseWorkspaceParsesEachModuleOnce(t *testing.T) {
	dir := writeTree(t, diamond)
	ws := parseTree(t, dir, 2)
	if ws.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(ws.Bag))
	}
	want := []string{"main", "math", "util"}
	if len(ws.Modules) != len(want) {
		t.Fatalf("got %d modules, want %d", len(ws.Modules), len(want))
	}
	for i, m := range ws.Modules {
		if m.Info.Name != want[i] {
			t.Errorf("module %d = %s, want %s", i, m.Info.Name, want[i])
		}
		if m.ID != uint32(i+1) {
			t.Errorf("%s: id = %d, want %d", m.Info.Name, m.ID, i+1)
		}
		if m.Status != NewModule {
			t.Errorf("%s: status = %s", m.Info.Name, m.Status)
		}
	}
	if ws.TotalLines != 8 {
		t.Errorf("TotalLines = %d, want 8", ws.TotalLines)
	}
	if ws.FileSet.Len() != 3 {
		t.Errorf("file set holds %d files, want 3", ws.FileSet.Len())
	}
}

func TestParseWorkspaceManyImportersShareOneParse(t *testing.T) {
	files := map[string]string{"common.kn": "pub let base = 1;\n"}
	var main strings.Builder
	for i := range 24 {
		name := fmt.Sprintf("m%02d", i)
		files[name+".kn"] = fmt.Sprintf("use common;\npub let v = common.base + %d;\n", i)
		fmt.Fprintf(&main, "use %s;\n", name)
	}
	main.WriteString("use common;\n")
	files["main.kn"] = main.String()
	dir := writeTree(t, files)

	for _, jobs := range []int{1, 4, 32} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			ws := parseTree(t, dir, jobs)
			if ws.Bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %v", codes(ws.Bag))
			}
			if len(ws.Modules) != 26 {
				t.Fatalf("got %d modules, want 26", len(ws.Modules))
			}
			seen := make(map[string]bool)
			for _, m := range ws.Modules {
				if seen[m.Info.Path] {
					t.Fatalf("%s parsed twice", m.Info.Path)
				}
				seen[m.Info.Path] = true
			}
			if ws.FileSet.Len() != 26 {
				t.Errorf("file set holds %d files, want 26", ws.FileSet.Len())
			}
		})
	}
}

func TestParseWorkspaceFailures(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		module string
		status ParseStatus
		code   diag.Code
	}{
		{
			name:   "missing import",
			files:  map[string]string{"main.kn": "use nope;\nfn main() {}\n"},
			module: "main",
			status: NewModule,
			code:   diag.ProjMissingModule,
		},
		{
			name:   "syntax error",
			files:  map[string]string{"main.kn": "use bad;\n", "bad.kn": "let = 1;\n"},
			module: "bad",
			status: ParserFailed,
			code:   diag.SynExpectIdentifier,
		},
		{
			name:   "missing value",
			files:  map[string]string{"main.kn": "use bad;\n", "bad.kn": "pub let x = ;\npub let y = 2;\n"},
			module: "bad",
			status: ParserFailed,
			code:   diag.SynExpectExpression,
		},
		{
			name:   "lexer error",
			files:  map[string]string{"main.kn": "use bad;\n", "bad.kn": "let s = \"open;\n"},
			module: "bad",
			status: LexerFailed,
			code:   diag.LexUnterminatedString,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := parseTree(t, writeTree(t, tt.files), 2)
			var found *ParsedModule
			for _, m := range ws.Modules {
				if m.Info.Name == tt.module {
					found = m
				}
			}
			if found == nil {
				t.Fatalf("module %s missing", tt.module)
			}
			if found.Status != tt.status {
				t.Errorf("status = %s, want %s", found.Status, tt.status)
			}
			items := ws.Bag.Items()
			if len(items) == 0 || items[0].Code != tt.code {
				t.Errorf("diagnostics = %v, want %s first", codes(ws.Bag), tt.code.ID())
			}
		})
	}
}

func TestLoadProject(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"kiln.toml":  "[package]\nname = \"demo\"\nmain = \"src/app.kn\"\n",
		"src/app.kn": "fn main() {}\n",
	})

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject(dir): %v", err)
	}
	if p.Entry != filepath.Join(dir, "src", "app.kn") || p.Root != dir {
		t.Errorf("entry = %s root = %s", p.Entry, p.Root)
	}

	p, err = LoadProject(filepath.Join(dir, "src", "app.kn"))
	if err != nil {
		t.Fatalf("LoadProject(file): %v", err)
	}
	if p.Root != dir || p.Manifest == nil || p.Manifest.Package.Name != "demo" {
		t.Errorf("file inside project: root = %s manifest = %+v", p.Root, p.Manifest)
	}

	loose := writeTree(t, map[string]string{"one.kn": "fn main() {}\n"})
	p, err = LoadProject(filepath.Join(loose, "one.kn"))
	if err != nil {
		t.Fatalf("LoadProject(loose): %v", err)
	}
	if p.Root != loose || p.Manifest != nil {
		t.Errorf("loose file: root = %s manifest = %+v", p.Root, p.Manifest)
	}
}
