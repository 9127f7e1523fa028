package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives span events. Implementations must be goroutine-safe:
// modules are parsed and traced from several workers at once.
type Tracer interface {
	Emit(ev *Event)
	// Close flushes buffered output and closes the file opened by New.
	Close() error
	Level() Level
}

// Enabled reports whether t records anything.
func Enabled(t Tracer) bool {
	return t != nil && t.Level() > LevelOff
}

// Format selects the on-disk representation of events.
type Format uint8

const (
	// FormatAuto picks by OutputPath extension: .ndjson, .json (chrome), else text.
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
	FormatChrome
)

// ParseFormat разбирает значение флага --trace-format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	case "chrome":
		return FormatChrome, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|chrome)", s)
}

type Config struct {
	Level  Level
	Format Format
	// Output wins over OutputPath; OutputPath "" or "-" means stderr.
	Output     io.Writer
	OutputPath string
}

// New builds a tracer for cfg. LevelOff yields Nop without touching the output.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		switch {
		case strings.HasSuffix(cfg.OutputPath, ".ndjson"):
			format = FormatNDJSON
		case strings.HasSuffix(cfg.OutputPath, ".json"):
			format = FormatChrome
		}
	}
	w, closer, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	if format == FormatChrome {
		return newChromeTracer(w, closer, cfg.Level), nil
	}
	return newStreamTracer(w, closer, cfg.Level, format), nil
}

func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, f, nil
}
