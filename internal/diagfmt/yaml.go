package diagfmt

import (
	"io"

	"gopkg.in/yaml.v3"

	"kiln/internal/diag"
	"kiln/internal/source"
)

// YAML writes the same document as JSON in YAML form.
func YAML(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(BuildDiagnosticsOutput(bag, fs, opts)); err != nil {
		return err
	}
	return enc.Close()
}
