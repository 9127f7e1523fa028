package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"kiln/internal/driver"
)

func TestProgressModelAddsFilesOnFirstEvent(t *testing.T) {
	m := NewProgressModel("kiln diag", nil).(*progressModel)
	events := []driver.Event{
		{Stage: driver.StageParse, File: "/p/util.kn", Status: driver.StatusWorking},
		{Stage: driver.StageParse, File: "/p/main.kn", Status: driver.StatusWorking},
		{Stage: driver.StageParse, File: "/p/main.kn", Status: driver.StatusDone},
		{Stage: driver.StageParse, File: "/p/bad.kn", Status: driver.StatusError},
		{Stage: driver.StageCheck, File: "/p/main.kn", Status: driver.StatusDone},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}

	var paths []string
	for _, it := range m.items {
		paths = append(paths, it.path)
	}
	if strings.Join(paths, " ") != "/p/bad.kn /p/main.kn /p/util.kn" {
		t.Fatalf("rows = %v", paths)
	}
	for path, i := range m.index {
		if m.items[i].path != path {
			t.Errorf("index[%s] = %d points at %s", path, i, m.items[i].path)
		}
	}

	want := map[string]string{"/p/bad.kn": "error", "/p/main.kn": "done", "/p/util.kn": "parsing"}
	for _, it := range m.items {
		if it.label() != want[it.path] {
			t.Errorf("%s: label %q, want %q", it.path, it.label(), want[it.path])
		}
	}

	view := m.View()
	if !strings.Contains(view, "kiln diag (2/3)") {
		t.Errorf("header missing counts:\n%s", view)
	}
}

func TestProgressModelQuitsWhenEventsClose(t *testing.T) {
	ch := make(chan driver.Event)
	close(ch)
	m := NewProgressModel("kiln diag", ch).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("closed channel produced %T", msg)
	}
	_, cmd := m.Update(msg)
	if !m.done || cmd == nil {
		t.Fatalf("model did not finish")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("finish command is not tea.Quit")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.kn", 20, "short.kn"},
		{"/a/very/long/path/module.kn", 10, "/a/very..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
