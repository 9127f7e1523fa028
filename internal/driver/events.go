package driver

// Stage describes a phase of a workspace run.
type Stage string

const (
	StageParse Stage = "parse"
	StageCheck Stage = "check"
	// StageCache is reported when diagnostics come from the disk cache.
	StageCache Stage = "cache"
)

// Status of a file (or of the whole run when Event.File is empty).
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one file.
type Event struct {
	Stage  Stage
	File   string
	Status Status
}

// ProgressSink receives events. Parser workers call OnEvent concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, stage Stage, file string, status Status) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, File: file, Status: status})
}
