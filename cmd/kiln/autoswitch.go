package main

import (
	"fmt"
	"os"
	"strings"
)

// autoSwitch - значение флагов вида auto|on|off (--color, --ui).
type autoSwitch uint8

const (
	switchAuto autoSwitch = iota
	switchOn
	switchOff
)

var switchWords = map[string]autoSwitch{
	"":       switchAuto,
	"auto":   switchAuto,
	"on":     switchOn,
	"always": switchOn,
	"off":    switchOff,
	"never":  switchOff,
}

func parseAutoSwitch(flag, value string) (autoSwitch, error) {
	if s, ok := switchWords[strings.ToLower(strings.TrimSpace(value))]; ok {
		return s, nil
	}
	return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled решает auto по тому, подключён ли поток к терминалу.
func (s autoSwitch) enabled(stream func() bool) bool {
	switch s {
	case switchOn:
		return true
	case switchOff:
		return false
	}
	return stream()
}

func terminalStream(f *os.File) func() bool {
	return func() bool { return isTerminal(f) }
}
