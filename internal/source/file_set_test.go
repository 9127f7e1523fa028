package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("test.kn", []byte("hello world"), 0)
	id2 := fs.Add("test.kn", []byte("hello universe"), 0)
	if id1 == id2 {
		t.Fatalf("expected a new id for the second version")
	}
	latest, ok := fs.GetLatest("test.kn")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Errorf("old version content = %q", got)
	}
	if fs.Get(FileID(99)) != nil {
		t.Errorf("unknown id must return nil")
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.kn", []byte("let a = 1;\nlet bb = 2;\n\nx"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{4, LineCol{Line: 1, Col: 5}},
		{10, LineCol{Line: 1, Col: 11}},
		{11, LineCol{Line: 2, Col: 1}},
		{15, LineCol{Line: 2, Col: 5}},
		{24, LineCol{Line: 4, Col: 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
	f := fs.Get(id)
	if got := f.GetLine(2); got != "let bb = 2;" {
		t.Errorf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "" {
		t.Errorf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Errorf("GetLine(9) = %q", got)
	}
	if f.LineCount() != 4 {
		t.Errorf("LineCount = %d, want 4", f.LineCount())
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.kn")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
}

func TestFileSetConcurrentAdd(t *testing.T) {
	fs := NewFileSet()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fs.AddVirtual(filepath.Join("f", string(rune('a'+i%26))), []byte("x"))
		}(i)
	}
	wg.Wait()
	if fs.Len() != 32 {
		t.Fatalf("Len = %d, want 32", fs.Len())
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		path, dir string
		want      bool
	}{
		{"/root/proj/a.kn", "/root/proj", true},
		{"/root/proj/sub/a.kn", "/root/proj", true},
		{"/root/proj", "/root/proj", true},
		{"/root/other/a.kn", "/root/proj", false},
		{"/root/proj/../x.kn", "/root/proj", false},
		{"/root/project/a.kn", "/root/proj", false},
		{"/root/proj/a.kn", "", false},
	}
	for _, tt := range tests {
		if got := IsWithin(tt.path, tt.dir); got != tt.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.path, tt.dir, got, tt.want)
		}
	}
}
