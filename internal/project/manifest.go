package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the decoded kiln.toml.
type Manifest struct {
	Package PackageSection `toml:"package"`
	Paths   PathsSection   `toml:"paths"`
	Build   BuildSection   `toml:"build"`

	// Root - каталог, в котором лежит манифест; в файл не пишется.
	Root string `toml:"-"`
}

type PackageSection struct {
	Name string `toml:"name"`
	Main string `toml:"main"`
}

type PathsSection struct {
	Std string `toml:"std"`
}

type BuildSection struct {
	Jobs           int  `toml:"jobs"`
	MaxDiagnostics uint `toml:"max_diagnostics"`
}

var (
	// ErrPackageSectionMissing indicates that [package] is missing in kiln.toml.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrInvalidPackageName indicates that [package].name is not an identifier.
	ErrInvalidPackageName = errors.New("invalid [package].name")
)

const defaultMain = "main" + SourceExt

// LoadManifest parses kiln.toml at path and fills defaults.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	m.Package.Name = strings.TrimSpace(m.Package.Name)
	if !IsValidModuleIdent(m.Package.Name) {
		return nil, fmt.Errorf("%s: %w %q", path, ErrInvalidPackageName, m.Package.Name)
	}
	if m.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	m.Root = filepath.Dir(path)
	if m.Package.Main == "" {
		m.Package.Main = defaultMain
	}
	return &m, nil
}

// MainPath returns the absolute path of the entry module; it must stay inside the project.
func (m *Manifest) MainPath() (string, error) {
	main := filepath.Join(m.Root, filepath.FromSlash(m.Package.Main))
	if !PathWithin(m.Root, main) {
		return "", fmt.Errorf("invalid [package].main %q: escapes project root", m.Package.Main)
	}
	return main, nil
}

// StdPath resolves [paths].std relative to the project root; empty means no std.
func (m *Manifest) StdPath() string {
	if m.Paths.Std == "" {
		return ""
	}
	if filepath.IsAbs(m.Paths.Std) {
		return m.Paths.Std
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Paths.Std))
}

// WriteDefault creates kiln.toml and an empty entry module in dir.
// Existing files are never overwritten.
func WriteDefault(dir, name string) (string, error) {
	if !IsValidModuleIdent(name) {
		return "", fmt.Errorf("%w %q", ErrInvalidPackageName, name)
	}
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create manifest: %w", err)
	}
	m := Manifest{
		Package: PackageSection{Name: name, Main: defaultMain},
		Build:   BuildSection{MaxDiagnostics: 100},
	}
	if err := toml.NewEncoder(f).Encode(m); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close manifest: %w", err)
	}

	mainPath := filepath.Join(dir, defaultMain)
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(mainPath, []byte("fn main() {\n}\n"), 0o600); err != nil {
			return "", fmt.Errorf("create %s: %w", defaultMain, err)
		}
	}
	return path, nil
}
