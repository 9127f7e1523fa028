package trace

import "sync"

// Recorder keeps events in memory; the REPL and tests read them back after a run.
type Recorder struct {
	mu     sync.Mutex
	level  Level
	events []Event
}

func NewRecorder(level Level) *Recorder {
	return &Recorder{level: level}
}

func (r *Recorder) Emit(ev *Event) {
	r.mu.Lock()
	r.events = append(r.events, *ev)
	r.mu.Unlock()
}

func (r *Recorder) Close() error { return nil }
func (r *Recorder) Level() Level { return r.level }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Finished returns the end events of closed spans in completion order.
func (r *Recorder) Finished() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, len(r.events)/2)
	for _, ev := range r.events {
		if ev.Kind == KindSpanEnd {
			out = append(out, ev)
		}
	}
	return out
}
