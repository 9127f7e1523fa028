package diag

// Severity упорядочена: сравнение >= работает как "не менее серьёзно".
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityInfo = [...]struct {
	name  string
	sarif string
}{
	SevInfo:    {"INFO", "note"},
	SevWarning: {"WARNING", "warning"},
	SevError:   {"ERROR", "error"},
}

func (s Severity) String() string {
	if int(s) < len(severityInfo) {
		return severityInfo[s].name
	}
	return "UNKNOWN"
}

// SarifLevel maps the severity onto SARIF result.level; unknown values become "note".
func (s Severity) SarifLevel() string {
	if int(s) < len(severityInfo) {
		return severityInfo[s].sarif
	}
	return "note"
}

// IsError reports whether the diagnostic blocks the build.
func (s Severity) IsError() bool { return s >= SevError }
