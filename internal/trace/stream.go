package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// streamTracer пишет события сразу по мере поступления (text или NDJSON).
type streamTracer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	level  Level
	format Format
	start  time.Time
	depth  map[uint64]int // открытые спаны -> глубина для отступов
}

func newStreamTracer(w io.Writer, closer io.Closer, level Level, format Format) *streamTracer {
	return &streamTracer{
		w:      bufio.NewWriter(w),
		closer: closer,
		level:  level,
		format: format,
		start:  time.Now(),
		depth:  make(map[uint64]int),
	}
}

func (t *streamTracer) Level() Level { return t.level }

func (t *streamTracer) Emit(ev *Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	depth := 0
	if d, ok := t.depth[ev.ParentID]; ok {
		depth = d + 1
	}
	switch ev.Kind {
	case KindSpanBegin:
		t.depth[ev.SpanID] = depth
	case KindSpanEnd:
		delete(t.depth, ev.SpanID)
	}

	// ошибки записи трассы не должны ломать компиляцию
	if t.format == FormatNDJSON {
		_, _ = t.w.Write(formatNDJSON(ev, t.start))
		return
	}
	_, _ = t.w.WriteString(formatText(ev, t.start, depth))
}

func (t *streamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.w.Flush()
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type jsonEvent struct {
	AtMS     float64           `json:"at_ms"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	DurMS    float64           `json:"dur_ms,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func formatNDJSON(ev *Event, start time.Time) []byte {
	data, err := json.Marshal(jsonEvent{
		AtMS:     millis(ev.Time.Sub(start)),
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		DurMS:    millis(ev.Dur),
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText: `[  12.345ms]     ← parse:util 0.412ms (detail) {k=v}`
func formatText(ev *Event, start time.Time, depth int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%9.3fms] %s", millis(ev.Time.Sub(start)), strings.Repeat("  ", depth))
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	default:
		sb.WriteString("• ")
	}
	sb.WriteString(ev.Name)
	if ev.Kind == KindSpanEnd {
		fmt.Fprintf(&sb, " %.3fms", millis(ev.Dur))
	}
	if ev.Detail != "" {
		sb.WriteString(" (" + ev.Detail + ")")
	}
	if len(ev.Extra) > 0 {
		parts := make([]string, 0, len(ev.Extra))
		for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			parts = append(parts, k+"="+ev.Extra[k])
		}
		sb.WriteString(" {" + strings.Join(parts, ", ") + "}")
	}
	sb.WriteByte('\n')
	return sb.String()
}
