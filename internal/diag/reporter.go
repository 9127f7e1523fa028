package diag

import (
	"sync"

	"kiln/internal/source"
)

// Reporter - минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(d *Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     *Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, primary, msg)}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, primary, msg)
}

// WithLabel sets the message shown under the primary span.
func (b *ReportBuilder) WithLabel(label string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Label = label
	return b
}

// WithNote appends a secondary span.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.WithNote(sp, msg)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() *Diagnostic {
	if b == nil {
		return nil
	}
	return b.diag
}

// BagReporter - адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d *Diagnostic) {
	if r.Bag == nil || d == nil {
		return
	}
	r.Bag.Add(d)
}

// LockedReporter serializes reports coming from several goroutines.
type LockedReporter struct {
	mu   sync.Mutex
	Next Reporter
}

func (r *LockedReporter) Report(d *Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Next != nil {
		r.Next.Report(d)
	}
}

// CountingReporter forwards to Next and counts errors.
type CountingReporter struct {
	Next   Reporter
	Errors int
}

func (r *CountingReporter) Report(d *Diagnostic) {
	if d != nil && d.Severity.IsError() {
		r.Errors++
	}
	if r.Next != nil {
		r.Next.Report(d)
	}
}
