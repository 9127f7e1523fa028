// Package trace records nested spans of compiler work (driver, passes,
// modules) and writes them as text, NDJSON or Chrome trace JSON.
//
// Spans are cheap when tracing is off: Begin on a nil or disabled Tracer
// returns a span whose End does nothing.
package trace
