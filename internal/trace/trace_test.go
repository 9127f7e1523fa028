package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"off", LevelOff, true},
		{"Phase", LevelPhase, true},
		{" module ", LevelModule, true},
		{"DEBUG", LevelDebug, true},
		{"verbose", LevelOff, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err == nil) != tt.ok || got != tt.want {
				t.Fatalf("ParseLevel(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}

func TestBeginRespectsLevel(t *testing.T) {
	rec := NewRecorder(LevelPhase)
	root := Begin(rec, ScopePass, "parse", 0)
	mod := Begin(rec, ScopeModule, "parse:util", root.ID())
	if mod.ID() != 0 {
		t.Errorf("module span must be filtered at phase level")
	}
	mod.End("")
	root.WithExtra("modules", "3").End("ok")
	root.End("twice")

	ends := rec.Finished()
	if len(ends) != 1 || ends[0].Name != "parse" || ends[0].Detail != "ok" {
		t.Fatalf("finished = %+v", ends)
	}
	if ends[0].Extra["modules"] != "3" {
		t.Errorf("extra lost: %+v", ends[0].Extra)
	}
	if len(rec.Events()) != 2 {
		t.Errorf("events = %d, want begin+end", len(rec.Events()))
	}
}

func TestNilAndNopTracers(t *testing.T) {
	for _, tr := range []Tracer{nil, Nop} {
		sp := Begin(tr, ScopeDriver, "x", 0)
		if sp.ID() != 0 || sp.End("") != 0 {
			t.Errorf("%v: disabled span recorded", tr)
		}
		Point(tr, ScopeDriver, "p", "", 0)
	}
	var sp *Span
	sp.WithExtra("k", "v").End("")
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelModule, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	root := Begin(tr, ScopePass, "parse", 0)
	Begin(tr, ScopeModule, "parse:main", root.ID()).End("")
	root.End("modules=1")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("trace:\n%s", buf.String())
	}
	if !strings.Contains(lines[0], "] → parse") || !strings.Contains(lines[1], "]   → parse:main") {
		t.Errorf("indentation:\n%s", buf.String())
	}
	if !strings.Contains(lines[3], "← parse ") || !strings.HasSuffix(lines[3], "(modules=1)") {
		t.Errorf("end line = %q", lines[3])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDriver, "diagnose", 0).End("done")
	_ = tr.Close()

	var kinds []string
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		var ev jsonEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		kinds = append(kinds, ev.Kind+":"+ev.Name)
	}
	if strings.Join(kinds, " ") != "begin:diagnose end:diagnose" {
		t.Errorf("events = %v", kinds)
	}
}

func TestChromeLanes(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Format: FormatChrome, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	pass := Begin(tr, ScopePass, "parse", 0)
	a := Begin(tr, ScopeModule, "parse:a", pass.ID())
	b := Begin(tr, ScopeModule, "parse:b", pass.ID())
	Begin(tr, ScopeDecl, "decl", b.ID()).End("")
	a.End("")
	b.End("")
	pass.End("")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		TraceEvents []chromeEvent `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	lanes := make(map[string]uint64)
	for _, ev := range doc.TraceEvents {
		if ev.Ph != "X" {
			t.Errorf("%s: phase %q", ev.Name, ev.Ph)
		}
		lanes[ev.Name] = ev.TID
	}
	if len(lanes) != 4 {
		t.Fatalf("events = %+v", doc.TraceEvents)
	}
	if lanes["parse:a"] == lanes["parse:b"] || lanes["parse:a"] == lanes["parse"] {
		t.Errorf("modules share a lane: %v", lanes)
	}
	if lanes["decl"] != lanes["parse:b"] {
		t.Errorf("decl not on its module lane: %v", lanes)
	}
}

func TestStartNestsUnderContextSpan(t *testing.T) {
	rec := NewRecorder(LevelPhase)
	ctx := Attach(context.Background(), rec)
	if TracerFrom(ctx) != Tracer(rec) || ParentFrom(ctx) != 0 {
		t.Fatalf("Attach lost tracer")
	}
	ctx, drv := Start(ctx, ScopeDriver, "diagnose")
	modCtx, mod := Start(ctx, ScopeModule, "parse:util")
	if mod.ID() != 0 || ParentFrom(modCtx) != drv.ID() {
		t.Fatalf("filtered span must keep parent %d, got %d", drv.ID(), ParentFrom(modCtx))
	}
	_, pass := Start(modCtx, ScopePass, "parse")
	pass.End("")
	drv.End("")

	ends := rec.Finished()
	if len(ends) != 2 || ends[0].Name != "parse" || ends[0].ParentID != drv.ID() {
		t.Fatalf("finished = %+v", ends)
	}
	if TracerFrom(context.Background()) != Nop || TracerFrom(Attach(context.Background(), nil)) != Nop {
		t.Errorf("missing tracer must read as Nop")
	}
}
