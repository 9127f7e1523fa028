package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one measured stage of a run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	done  bool
}

// Timer records stage durations. A nil *Timer is valid and records nothing,
// so callers do not branch on --timings.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a phase and returns the function that ends it.
func (t *Timer) Begin(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	t.mu.Lock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	idx := len(t.phases) - 1
	t.mu.Unlock()
	return func(note string) { t.end(idx, note) }
}

func (t *Timer) end(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := &t.phases[idx]
	if p.done {
		return
	}
	p.Dur = time.Since(p.Start)
	p.Note = note
	p.done = true
}

// PhaseReport - сериализуемая запись о фазе.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report - все фазы и их сумма в миллисекундах.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots finished phases in start order.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	report := Report{Phases: make([]PhaseReport, 0, len(t.phases))}
	var total time.Duration
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		total += p.Dur
		report.Phases = append(report.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	report.TotalMS = millis(total)
	return report
}

// Summary renders the report as an aligned table; lines > 0 adds throughput.
func (r Report) Summary(lines int) string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-12s %9.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %9.2f ms", "total", r.TotalMS)
	if lines > 0 && r.TotalMS > 0 {
		fmt.Fprintf(&b, "  (%d lines, %.0f lines/s)", lines, float64(lines)/(r.TotalMS/1000))
	}
	b.WriteByte('\n')
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
