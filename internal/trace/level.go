package trace

import (
	"fmt"
	"strings"
)

// Level controls which scopes are recorded.
type Level uint8

const (
	LevelOff    Level = iota
	LevelPhase        // driver + проходы
	LevelModule       // + по модулю
	LevelDebug        // всё
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelPhase:  "phase",
	LevelModule: "module",
	LevelDebug:  "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String, case-insensitively.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for l, n := range levelNames {
		if n == name {
			return Level(l), nil // #nosec G115
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|phase|module|debug)", s)
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelModule:
		return scope <= ScopeModule
	case LevelDebug:
		return true
	}
	return false
}
