package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	endParse := tm.Begin("parse")
	endCheck := tm.Begin("check")
	endParse("modules=2")
	endParse("ignored")
	endCheck("")
	tm.Begin("unfinished")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v, want only finished ones", r.Phases)
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].Note != "modules=2" {
		t.Errorf("first phase = %+v", r.Phases[0])
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Errorf("total %f below phase %f", r.TotalMS, r.Phases[0].DurationMS)
	}

	sum := r.Summary(0)
	for _, want := range []string{"timings:", "parse", "modules=2", "total"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary missing %q:\n%s", want, sum)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Begin("x")("note")
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Errorf("nil timer report = %+v", r)
	}
}
