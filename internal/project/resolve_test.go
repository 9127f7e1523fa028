package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolveUse(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "proj")
	std := filepath.Join(dir, "std")
	main := filepath.Join(root, "main.kn")
	writeFile(t, main, "")
	writeFile(t, filepath.Join(root, "math.kn"), "")
	writeFile(t, filepath.Join(root, "io", "mod.kn"), "")
	writeFile(t, filepath.Join(root, "io", "file.kn"), "")
	writeFile(t, filepath.Join(std, "mod.kn"), "")

	r, err := NewResolver(root, std)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	tests := []struct {
		from, name string
		wantName   string
		wantPath   string
	}{
		{main, "math", "math", filepath.Join(root, "math.kn")},
		{main, "io", "io", filepath.Join(root, "io", "mod.kn")},
		{filepath.Join(root, "io", "mod.kn"), "file", "io.file", filepath.Join(root, "io", "file.kn")},
		{main, "std", "std", filepath.Join(std, "mod.kn")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := r.ResolveUse(tt.from, tt.name)
			if err != nil {
				t.Fatalf("ResolveUse: %v", err)
			}
			if info.Name != tt.wantName || info.Path != tt.wantPath {
				t.Fatalf("got %+v, want {%s %s}", info, tt.wantName, tt.wantPath)
			}
		})
	}
}

func TestResolveUseMissing(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "main.kn")
	writeFile(t, main, "")
	r, err := NewResolver(root, "")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	_, err = r.ResolveUse(main, "nope")
	var rerr *ResolveError
	if !errors.As(err, &rerr) || rerr.Kind != ResolveMissing {
		t.Fatalf("want missing module error, got %v", err)
	}
	if got, want := err.Error(), "couldn't find module `nope`"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
	if rerr.Tried != filepath.Join(root, "nope") {
		t.Fatalf("tried = %q", rerr.Tried)
	}

	if _, err := r.ResolveUse(main, "std"); !errors.Is(err, ErrNoStd) {
		t.Fatalf("want ErrNoStd, got %v", err)
	}
}

func TestResolveImportOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "proj")
	main := filepath.Join(root, "main.kn")
	writeFile(t, main, "")
	writeFile(t, filepath.Join(dir, "secret.kn"), "")
	writeFile(t, filepath.Join(root, "lib", "util.kn"), "")

	r, err := NewResolver(root, "")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	info, err := r.ResolveImport(main, "lib/util")
	if err != nil {
		t.Fatalf("ResolveImport: %v", err)
	}
	if info.Name != "lib.util" {
		t.Fatalf("name = %q", info.Name)
	}

	_, err = r.ResolveImport(main, "../secret.kn")
	var rerr *ResolveError
	if !errors.As(err, &rerr) || rerr.Kind != ResolveOutsideRoot {
		t.Fatalf("want outside-root error, got %v", err)
	}
	if got := err.Error(); got != "cannot use modules outside of the root module scope" {
		t.Fatalf("message = %q", got)
	}
}

func TestModuleInfoForRoot(t *testing.T) {
	root := t.TempDir()
	r, err := NewResolver(root, "")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if got := r.ModuleInfoFor(filepath.Join(root, "mod.kn")).Name; got != "main" {
		t.Fatalf("root module name = %q", got)
	}
	if got := r.ModuleInfoFor(filepath.Join(root, "main.kn")).Name; got != "main" {
		t.Fatalf("main.kn module name = %q", got)
	}
}

func TestPathWithin(t *testing.T) {
	tests := []struct {
		root, path string
		want       bool
	}{
		{"/a", "/a", true},
		{"/a", "/a/b/c.kn", true},
		{"/a", "/ab/c.kn", false},
		{"/a", "/a/../b", false},
		{"/a", "/a/..b/c.kn", true},
		{"", "/a", false},
	}
	for _, tt := range tests {
		if got := PathWithin(tt.root, tt.path); got != tt.want {
			t.Errorf("PathWithin(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}
