package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"kiln/internal/diag"
	"kiln/internal/trace"
)

func diagnoseTree(t *testing.T, dir string, opts DiagnoseOptions) *DiagnoseResult {
	t.Helper()
	res, err := Diagnose(context.Background(), filepath.Join(dir, "main.kn"), opts)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	return res
}

func TestDiagnoseCleanWorkspace(t *testing.T) {
	res := diagnoseTree(t, writeTree(t, diamond), DiagnoseOptions{Jobs: 2})
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, true))
	}
	if res.Check == nil || res.Check.Aborted {
		t.Fatalf("check did not run to completion")
	}
	if res.Cached {
		t.Errorf("no cache configured, result must not be cached")
	}
}

func TestDiagnoseReportsAcrossModules(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.kn": "use util;\nlet a: bool = util.twice(1);\n",
		"util.kn": "pub fn twice(x: i32) -> i32 { x * 2 }\nfn broken() -> i32 { true }\n",
	})
	res := diagnoseTree(t, dir, DiagnoseOptions{})
	items := res.Bag.Items()
	if len(items) != 2 {
		t.Fatalf("want 2 diagnostics, got:\n%s", diag.FormatShortDiagnostics(items, res.FileSet, false))
	}
	files := make([]string, 0, 2)
	for _, d := range items {
		if d.Code != diag.SemaTypeMismatch {
			t.Errorf("code = %s, want %s", d.Code.ID(), diag.SemaTypeMismatch.ID())
		}
		files = append(files, filepath.Base(res.FileSet.Get(d.Primary.File).Path))
	}
	// bag отсортирован по файлам
	if strings.Join(files, " ") != "main.kn util.kn" {
		t.Errorf("diagnostic files = %v", files)
	}
}

func TestDiagnoseSkipsBrokenModules(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.kn": "use bad;\nlet a = bad.x + 1;\nlet b: bool = 1;\n",
		"bad.kn":  "pub let x = ;\n",
	})
	res := diagnoseTree(t, dir, DiagnoseOptions{})
	got := codes(res.Bag)
	want := []string{diag.SemaTypeMismatch.ID(), diag.SynExpectExpression.ID()}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("codes = %v, want %v", got, want)
	}
}

func TestDiagnoseInvalidManifest(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"kiln.toml": "[paths]\nstd = \"std\"\n",
		"main.kn":   "fn main() {}\n",
	})
	res := diagnoseTree(t, dir, DiagnoseOptions{})
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ProjInvalidManifest {
		t.Fatalf("codes = %v, want a single manifest error", codes(res.Bag))
	}
	if !strings.Contains(items[0].Message, "missing [package]") {
		t.Errorf("message = %q", items[0].Message)
	}
}

func TestDiagnoseDiskCache(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.kn": "use util;\nlet a: bool = util.one;\n",
		"util.kn": "pub let one = 1;\n",
	})
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := DiagnoseOptions{Cache: cache}

	first := diagnoseTree(t, dir, opts)
	if first.Cached {
		t.Fatalf("first run cannot be cached")
	}
	second := diagnoseTree(t, dir, opts)
	if !second.Cached || second.Check != nil {
		t.Fatalf("second run must come from the cache")
	}
	a := diag.FormatShortDiagnostics(first.Bag.Items(), first.FileSet, true)
	b := diag.FormatShortDiagnostics(second.Bag.Items(), second.FileSet, true)
	if a != b || a == "" {
		t.Errorf("cached diagnostics differ:\n%s\n---\n%s", a, b)
	}
	if first.Digest != second.Digest {
		t.Errorf("digest changed without edits")
	}

	// правка зависимости меняет хеш всего рабочего пространства
	if err := os.WriteFile(filepath.Join(dir, "util.kn"), []byte("pub let one = true;\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	third := diagnoseTree(t, dir, opts)
	if third.Cached || third.Digest == first.Digest {
		t.Fatalf("edited workspace must be checked again")
	}
	if third.Bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", codes(third.Bag))
	}

	warn := diagnoseTree(t, dir, DiagnoseOptions{Cache: cache, WarnUnused: true})
	if warn.Cached {
		t.Errorf("different options must not share cache entries")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestDiagnoseProgressAndTimings(t *testing.T) {
	dir := writeTree(t, diamond)
	sink := &recordingSink{}
	res := diagnoseTree(t, dir, DiagnoseOptions{Progress: sink, Timings: true})

	final := make(map[string]map[Stage]Status)
	for _, ev := range sink.events {
		if final[ev.File] == nil {
			final[ev.File] = make(map[Stage]Status)
		}
		final[ev.File][ev.Stage] = ev.Status
	}
	if len(final) != 3 {
		t.Fatalf("events for %d files, want 3", len(final))
	}
	for file, stages := range final {
		if stages[StageParse] != StatusDone || stages[StageCheck] != StatusDone {
			t.Errorf("%s: final statuses %v", filepath.Base(file), stages)
		}
	}

	var names []string
	for _, p := range res.Timings.Phases {
		names = append(names, p.Name)
	}
	if strings.Join(names, " ") != "parse graph check" {
		t.Errorf("phases = %v", names)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || len(items[0].Notes) != 1 {
		t.Fatalf("want one timings diagnostic, got %v", codes(res.Bag))
	}
	if !strings.Contains(items[0].Notes[0].Msg, `"lines":8`) {
		t.Errorf("timings payload = %s", items[0].Notes[0].Msg)
	}
}

func TestDiagnoseTracerFromContext(t *testing.T) {
	rec := trace.NewRecorder(trace.LevelPhase)
	ctx := trace.Attach(context.Background(), rec)
	if _, err := Diagnose(ctx, filepath.Join(writeTree(t, diamond), "main.kn"), DiagnoseOptions{}); err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	parents := make(map[string]uint64)
	ids := make(map[string]uint64)
	for _, ev := range rec.Finished() {
		parents[ev.Name] = ev.ParentID
		ids[ev.Name] = ev.SpanID
	}
	if ids["diagnose"] == 0 {
		t.Fatalf("diagnose span not recorded: %+v", rec.Finished())
	}
	if parents["parse"] != ids["diagnose"] {
		t.Errorf("parse parent = %d, want diagnose %d", parents["parse"], ids["diagnose"])
	}
	for _, ev := range rec.Finished() {
		if ev.Name == "diagnose" && len(ev.Extra["digest"]) != 12 {
			t.Errorf("digest extra = %q", ev.Extra["digest"])
		}
	}
}
