package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kiln/internal/project"
)

// StdEnv переопределяет [paths].std манифеста.
const StdEnv = "KILN_STD"

// Project - корень проекта и входной модуль одного запуска.
type Project struct {
	Root     string
	Entry    string
	Std      string
	Manifest *project.Manifest // nil, если kiln.toml не найден
}

var (
	ErrNoEntry         = errors.New("no kiln.toml found and no source file given")
	ErrInvalidManifest = errors.New("invalid project manifest")
)

// LoadProject определяет проект по пути из командной строки: файл .kn
// (корень - каталог с ближайшим kiln.toml выше по дереву, иначе каталог
// файла) или каталог проекта (тогда вход - [package].main).
func LoadProject(path string) (*Project, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}
	manifestPath, found, err := project.FindManifest(dir)
	if err != nil {
		return nil, err
	}

	p := &Project{Entry: abs, Root: dir}
	if found {
		m, err := project.LoadManifest(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		p.Manifest = m
		p.Root = m.Root
		p.Std = m.StdPath()
		if info.IsDir() {
			if p.Entry, err = m.MainPath(); err != nil {
				return nil, err
			}
		}
	} else if info.IsDir() {
		return nil, ErrNoEntry
	}
	if std := os.Getenv(StdEnv); std != "" {
		p.Std = std
	}
	return p, nil
}

// Jobs returns the worker count from the manifest, 0 when unset.
func (p *Project) Jobs() int {
	if p == nil || p.Manifest == nil {
		return 0
	}
	return p.Manifest.Build.Jobs
}

// MaxDiagnostics returns the manifest limit, 0 when unset.
func (p *Project) MaxDiagnostics() int {
	if p == nil || p.Manifest == nil {
		return 0
	}
	return int(p.Manifest.Build.MaxDiagnostics) // #nosec G115 -- значение из конфигурации, разумный предел
}
