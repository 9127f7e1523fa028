package diag

import "testing"

func TestSeverityNames(t *testing.T) {
	tests := []struct {
		sev   Severity
		name  string
		sarif string
		err   bool
	}{
		{SevInfo, "INFO", "note", false},
		{SevWarning, "WARNING", "warning", false},
		{SevError, "ERROR", "error", true},
		{Severity(9), "UNKNOWN", "note", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sev.String(); got != tt.name {
				t.Errorf("String = %q, want %q", got, tt.name)
			}
			if got := tt.sev.SarifLevel(); got != tt.sarif {
				t.Errorf("SarifLevel = %q, want %q", got, tt.sarif)
			}
			if got := tt.sev.IsError(); got != tt.err {
				t.Errorf("IsError = %v, want %v", got, tt.err)
			}
		})
	}
}
