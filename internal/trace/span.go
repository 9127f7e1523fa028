package trace

import (
	"sync/atomic"
	"time"
)

var spanSeq atomic.Uint64

// Span is an open interval of work. The zero value and nil are valid and inert.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin opens a span under parent (0 for a root) and emits its begin event.
// When t is nil, disabled or filters scope out, the span records nothing.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !Enabled(t) || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:   t,
		id:       spanSeq.Add(1),
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// End closes the span; calling it again is a no-op.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Dur:      dur,
		Extra:    s.extra,
	})
	s.tracer = nil
	return dur
}

// WithExtra attaches a key/value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 1)
	}
	s.extra[key] = value
	return s
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !Enabled(t) || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, ParentID: parent, Name: name, Detail: detail})
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
