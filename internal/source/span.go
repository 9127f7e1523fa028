package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// To is Cover for spans known to be ordered: it runs from s.Start to other.End.
// Never shrinks s: a nested other keeps s.End.
func (s Span) To(other Span) Span {
	if s.File != other.File || other.End < s.Start {
		return s.Cover(other)
	}
	return Span{File: s.File, Start: s.Start, End: max(s.End, other.End)}
}

// WithEnd returns a copy of s ending at end.
func (s Span) WithEnd(end uint32) Span {
	if end < s.Start {
		end = s.Start
	}
	return Span{File: s.File, Start: s.Start, End: end}
}

// WithStart returns a copy of s starting at start.
func (s Span) WithStart(start uint32) Span {
	if start > s.End {
		start = s.End
	}
	return Span{File: s.File, Start: start, End: s.End}
}

// After is the empty span right behind s, used for "missing `;`" reports.
func (s Span) After() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}
