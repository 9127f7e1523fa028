package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	// KindPoint is an instant event without duration.
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	ScopePass         // parse, sema
	ScopeModule       // parse:util, sema:util
	ScopeDecl         // отдельные объявления при проверке
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeModule:
		return "module"
	case ScopeDecl:
		return "decl"
	default:
		return "unknown"
	}
}

// Event is one record written by a Tracer.
type Event struct {
	Time     time.Time
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string
	Detail   string
	// Dur is set on KindSpanEnd.
	Dur   time.Duration
	Extra map[string]string
}
