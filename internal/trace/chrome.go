package trace

import (
	"encoding/json"
	"io"
	"maps"
	"sync"
	"time"
)

// chromeTracer копит события и пишет их при Close в формате
// chrome://tracing (Trace Event Format, "X"-события с длительностью).
type chromeTracer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	level  Level
	start  time.Time
	events []chromeEvent
	lanes  map[uint64]uint64 // открытый спан -> дорожка (tid)
	next   uint64
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Ph    string            `json:"ph"`
	TS    int64             `json:"ts"`
	Dur   int64             `json:"dur,omitempty"`
	PID   int               `json:"pid"`
	TID   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

func newChromeTracer(w io.Writer, closer io.Closer, level Level) *chromeTracer {
	return &chromeTracer{
		w:      w,
		closer: closer,
		level:  level,
		start:  time.Now(),
		lanes:  make(map[uint64]uint64),
		next:   1,
	}
}

func (t *chromeTracer) Level() Level { return t.level }

// lane puts every module span on its own row so parallel workers do not
// overlap; coarser spans share row 1 and finer ones inherit their parent's.
func (t *chromeTracer) lane(ev *Event) uint64 {
	var tid uint64 = 1
	switch {
	case ev.Scope == ScopeModule:
		t.next++
		tid = t.next
	case ev.Scope > ScopeModule:
		if parent, ok := t.lanes[ev.ParentID]; ok {
			tid = parent
		}
	}
	t.lanes[ev.SpanID] = tid
	return tid
}

func (t *chromeTracer) Emit(ev *Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Kind {
	case KindSpanBegin:
		t.lane(ev)
	case KindSpanEnd:
		tid, ok := t.lanes[ev.SpanID]
		if !ok {
			tid = 1
		}
		args := ev.Extra
		if ev.Detail != "" {
			args = make(map[string]string, len(ev.Extra)+1)
			maps.Copy(args, ev.Extra)
			args["detail"] = ev.Detail
		}
		begin := ev.Time.Add(-ev.Dur)
		t.events = append(t.events, chromeEvent{
			Name: ev.Name, Cat: ev.Scope.String(), Ph: "X",
			TS:  begin.Sub(t.start).Microseconds(),
			Dur: max(ev.Dur.Microseconds(), 1),
			PID: 1, TID: tid, Args: args,
		})
		delete(t.lanes, ev.SpanID)
	case KindPoint:
		t.events = append(t.events, chromeEvent{
			Name: ev.Name, Cat: ev.Scope.String(), Ph: "i",
			TS:  ev.Time.Sub(t.start).Microseconds(),
			PID: 1, TID: max(t.lanes[ev.ParentID], 1), Scope: "t",
			Args: map[string]string{"detail": ev.Detail},
		})
	}
}

func (t *chromeTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := json.NewEncoder(t.w).Encode(struct {
		TraceEvents []chromeEvent `json:"traceEvents"`
	}{t.events})
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
