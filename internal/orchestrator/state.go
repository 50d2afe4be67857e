package orchestrator

import (
	"fmt"
	"time"
)

// State is a pipeline run state
type State string

const (
	StateAwaitingInput      State = "awaiting_input"
	StateCapturing          State = "capturing"
	StateTranscribing       State = "transcribing"
	StateGeneratingFeedback State = "generating_feedback"
	StateSynthesizing       State = "synthesizing"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Terminal reports whether no further transitions are possible
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// isValidTransition enforces the allowed run state machine edges
func isValidTransition(from, to State) bool {
	if to == StateFailed {
		return !from.Terminal()
	}
	switch from {
	case StateAwaitingInput:
		return to == StateCapturing || to == StateTranscribing
	case StateCapturing:
		return to == StateTranscribing
	case StateTranscribing:
		return to == StateGeneratingFeedback
	case StateGeneratingFeedback:
		return to == StateSynthesizing
	case StateSynthesizing:
		return to == StateDone
	default:
		return false
	}
}

// Event is published on every state change
type Event struct {
	RunID     string    `json:"run_id"`
	State     State     `json:"state"`
	Timestamp time.Time `json:"timestamp"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// EventSink receives run events. Publish must not block.
type EventSink interface {
	Publish(Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(Event)

func (f EventSinkFunc) Publish(e Event) { f(e) }

func (r *Run) transition(to State) error {
	if !isValidTransition(r.State, to) {
		return fmt.Errorf("invalid transition: %s -> %s", r.State, to)
	}
	r.State = to
	return nil
}
