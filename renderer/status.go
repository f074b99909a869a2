package renderer

import "fmt"

type AcquireStatus int

const (
	AcquireSuccess AcquireStatus = iota
	AcquireSuboptimal
	AcquireOutOfDate
)

func (s AcquireStatus) String() string {
	switch s {
	case AcquireSuccess:
		return "success"
	case AcquireSuboptimal:
		return "suboptimal"
	case AcquireOutOfDate:
		return "out of date"
	default:
		return fmt.Sprintf("AcquireStatus(%d)", int(s))
	}
}

type PresentStatus int

const (
	PresentSuccess PresentStatus = iota
	PresentSuboptimal
	PresentOutOfDate
)

func (s PresentStatus) String() string {
	switch s {
	case PresentSuccess:
		return "success"
	case PresentSuboptimal:
		return "suboptimal"
	case PresentOutOfDate:
		return "out of date"
	default:
		return fmt.Sprintf("PresentStatus(%d)", int(s))
	}
}

// State is the phase of the frame loop. A frame walks Idle -> Acquiring -> Recording -> Submitted -> Presenting
// and back to Idle. Rebuilding is entered from Acquiring or Presenting whenever the swapchain went stale. Failed is
// terminal, it is entered from whatever phase DrawFrame returned an error in.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateRecording
	StateSubmitted
	StatePresenting
	StateRebuilding
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAcquiring:
		return "Acquiring"
	case StateRecording:
		return "Recording"
	case StateSubmitted:
		return "Submitted"
	case StatePresenting:
		return "Presenting"
	case StateRebuilding:
		return "Rebuilding"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
