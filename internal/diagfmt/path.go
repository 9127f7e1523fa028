package diagfmt

import (
	"path/filepath"

	"kiln/internal/diag"
	"kiln/internal/source"
)

const autoPathLimit = 40

// formatPath renders a file path according to mode.
func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		if rel, err := filepath.Rel(fs.BaseDir(), f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		if len(f.Path) < autoPathLimit || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)
	}
}

// spanFile returns the file a span points into, or nil for diagnostics that
// carry no location (manifest errors, timing reports).
func spanFile(fs *source.FileSet, code diag.Code, sp source.Span) *source.File {
	if fs == nil {
		return nil
	}
	if sp == (source.Span{}) && (code == diag.ObsTimings || code == diag.ProjInvalidManifest) {
		return nil
	}
	return fs.Get(sp.File)
}
