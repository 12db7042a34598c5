package export

import "github.com/handiism/waifu2ugc/internal/model"

// Phase is the stage an export is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreloading
	PhasePreprocessing
	PhaseExporting
)

func (p Phase) String() string {
	switch p {
	case PhasePreloading:
		return "preloading"
	case PhasePreprocessing:
		return "preprocessing"
	case PhaseExporting:
		return "exporting"
	}
	return "idle"
}

// Progress bands in percent. Each phase owns [start, start+total).
const (
	preloadStart   = 0.0
	preloadTotal   = 10.0
	processStart   = 10.0
	processTotal   = 10.0
	exportStart    = 20.0
	exportTotal    = 80.0
	progressChange = 0.005
)

// EventKind identifies an Event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventProgress
	EventStatus
	EventAborted
	EventFinished
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventStatus:
		return "status"
	case EventAborted:
		return "aborted"
	case EventFinished:
		return "finished"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is published to the Exporter's callback.
type Event struct {
	Kind     EventKind
	Phase    Phase
	Progress float64

	// Message is the status text for EventStatus and EventAborted, and the
	// error message for EventError.
	Message string

	Err error
}

// State is a point-in-time view of an Exporter.
type State struct {
	Phase        Phase
	Progress     float64
	Status       string
	Busy         bool
	ErrorMessage string
}

// Outcome is how a job ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeFinished
	OutcomeAborted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeAborted:
		return "aborted"
	case OutcomeFailed:
		return "failed"
	}
	return "none"
}

// Result is the final report of one job.
type Result struct {
	Outcome Outcome
	Err     error

	// Message is the last status before the job ended, or the error message.
	Message string

	Dimensions model.GridDimensions
	Visited    int
	Written    int
	Files      []string
}
