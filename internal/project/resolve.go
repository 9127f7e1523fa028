package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kiln/internal/ast"
)

const (
	SourceExt   = ".kn"
	ModFileName = "mod" + SourceExt
	StdName     = "std"
)

// ResolveErrorKind classifies module resolution failures.
type ResolveErrorKind uint8

const (
	ResolveMissing ResolveErrorKind = iota
	ResolveOutsideRoot
)

// ResolveError carries everything the parser needs for its diagnostic.
type ResolveError struct {
	Kind   ResolveErrorKind
	Module string
	Tried  string
}

func (e *ResolveError) Error() string {
	if e.Kind == ResolveOutsideRoot {
		return "cannot use modules outside of the root module scope"
	}
	return fmt.Sprintf("couldn't find module `%s`", e.Module)
}

// ErrNoStd is returned for `use std` when no std root is configured.
var ErrNoStd = errors.New("standard library root is not configured")

// Resolver maps `use` and `@import` specifiers to module files.
// It only reads the file system, so it is safe for concurrent use.
type Resolver struct {
	Root string // каталог проекта (абсолютный)
	Std  string // корень std; может быть пустым
}

func NewResolver(root, std string) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	r := &Resolver{Root: absRoot}
	if std != "" {
		absStd, err := filepath.Abs(std)
		if err != nil {
			return nil, fmt.Errorf("resolve std root: %w", err)
		}
		r.Std = absStd
	}
	return r, nil
}

// ResolveUse resolves the first component of a `use` path relative to fromFile's directory:
// `<dir>/name.kn`, then `<dir>/name/mod.kn`. The name `std` maps to `<std>/mod.kn`.
func (r *Resolver) ResolveUse(fromFile, name string) (ast.ModuleInfo, error) {
	if name == StdName {
		if r.Std == "" {
			return ast.ModuleInfo{}, ErrNoStd
		}
		return ast.ModuleInfo{Name: StdName, Path: filepath.Join(r.Std, ModFileName)}, nil
	}

	base := filepath.Join(filepath.Dir(fromFile), name)
	if path := base + SourceExt; isFile(path) {
		return r.checked(name, path)
	}
	if isDir(base) {
		if err := r.checkWithin(name, base); err != nil {
			return ast.ModuleInfo{}, err
		}
		mod := filepath.Join(base, ModFileName)
		if isFile(mod) {
			return r.checked(name, mod)
		}
	}
	return ast.ModuleInfo{}, &ResolveError{Kind: ResolveMissing, Module: r.moduleName(base), Tried: base}
}

// ResolveImport resolves `@import("p")` relative to fromFile. A directory resolves to its mod.kn.
func (r *Resolver) ResolveImport(fromFile, rel string) (ast.ModuleInfo, error) {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(rel))
	}
	if filepath.Ext(path) == "" {
		switch {
		case isFile(path + SourceExt):
			path += SourceExt
		case isDir(path):
			path = filepath.Join(path, ModFileName)
		}
	}
	if !isFile(path) {
		return ast.ModuleInfo{}, &ResolveError{Kind: ResolveMissing, Module: rel, Tried: path}
	}
	return r.checked(rel, path)
}

func (r *Resolver) checked(name, path string) (ast.ModuleInfo, error) {
	if err := r.checkWithin(name, path); err != nil {
		return ast.ModuleInfo{}, err
	}
	return ast.ModuleInfo{Name: r.moduleName(path), Path: filepath.Clean(path)}, nil
}

func (r *Resolver) checkWithin(name, path string) error {
	if PathWithin(r.Root, path) || (r.Std != "" && PathWithin(r.Std, path)) {
		return nil
	}
	return &ResolveError{Kind: ResolveOutsideRoot, Module: name, Tried: path}
}

// ModuleInfoFor describes the entry file of a workspace.
func (r *Resolver) ModuleInfoFor(path string) ast.ModuleInfo {
	return ast.ModuleInfo{Name: r.moduleName(path), Path: filepath.Clean(path)}
}

// moduleName строит точечное имя модуля относительно корня проекта (или std):
// "<root>/a/b.kn" -> "a.b", "<root>/a/mod.kn" -> "a".
func (r *Resolver) moduleName(path string) string {
	root := r.Root
	prefix := ""
	if r.Std != "" && PathWithin(r.Std, path) {
		root = r.Std
		prefix = StdName
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return strings.TrimSuffix(filepath.Base(path), SourceExt)
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), SourceExt)
	rel = strings.TrimSuffix(rel, "/mod")
	if rel == "mod" || rel == "." {
		rel = ""
	}
	parts := make([]string, 0, 4)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if rel != "" {
		parts = append(parts, strings.Split(rel, "/")...)
	}
	if len(parts) == 0 {
		return "main"
	}
	return strings.Join(parts, ".")
}

// PathWithin reports whether path lies inside root (or is root itself).
func PathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
