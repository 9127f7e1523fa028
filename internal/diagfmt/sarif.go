package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"kiln/internal/diag"
	"kiln/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Related   []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	Physical sarifPhysical `json:"physicalLocation"`
	Message  *sarifMessage `json:"message,omitempty"`
}

type sarifPhysical struct {
	Artifact sarifArtifact `json:"artifactLocation"`
	Region   sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

func sarifLoc(fs *source.FileSet, code diag.Code, sp source.Span) (sarifLocation, bool) {
	f := spanFile(fs, code, sp)
	if f == nil {
		return sarifLocation{}, false
	}
	start, end := fs.Resolve(sp)
	return sarifLocation{Physical: sarifPhysical{
		Artifact: sarifArtifact{URI: formatPath(f, fs, PathModeRelative)},
		Region: sarifRegion{
			StartLine: start.Line, StartColumn: start.Col,
			EndLine: end.Line, EndColumn: end.Col,
			ByteOffset: sp.Start, ByteLength: sp.Len(),
		},
	}}, true
}

// Sarif форматирует диагностики в SARIF (v2.1.0); правила собираются из встреченных кодов.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion}},
		Results: make([]sarifResult, 0, bag.Len()),
	}
	seen := make(map[diag.Code]bool)
	for _, d := range bag.Items() {
		if !seen[d.Code] {
			seen[d.Code] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               d.Code.ID(),
				ShortDescription: sarifMessage{Text: d.Code.Title()},
			})
		}
		res := sarifResult{
			RuleID:  d.Code.ID(),
			Level:   d.Severity.SarifLevel(),
			Message: sarifMessage{Text: d.Message},
		}
		if loc, ok := sarifLoc(fs, d.Code, d.Primary); ok {
			res.Locations = []sarifLocation{loc}
		}
		for _, n := range d.Notes {
			if loc, ok := sarifLoc(fs, d.Code, n.Span); ok {
				loc.Message = &sarifMessage{Text: n.Msg}
				res.Related = append(res.Related, loc)
			}
		}
		run.Results = append(run.Results, res)
	}
	slices.SortFunc(run.Tool.Driver.Rules, func(a, b sarifRule) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !bag.HasErrors()}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []sarifRun{run}})
}
