package driver

import (
	"encoding/json"
	"fmt"

	"kiln/internal/diag"
	"kiln/internal/observ"
	"kiln/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	Lines   int                  `json:"lines"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic кладёт отчёт таймера в bag как OBS6001 с JSON в заметке.
// Лимит bag на неё не распространяется.
func appendTimingDiagnostic(bag *diag.Bag, path string, lines int, report observ.Report) {
	if bag == nil {
		return
	}
	payload := timingPayload{
		Kind:    "diagnose",
		Path:    path,
		Lines:   lines,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := &diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS),
		Notes:    []diag.Note{{Span: source.Span{}, Msg: string(data)}},
	}
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
