// Package apperr defines the failure kinds shared by every pipeline stage.
//
// Stages return *Error values whose Kind is one of the sentinels below, so callers can
// classify a failure with errors.Is while still reaching the underlying cause.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrDevice means no usable capture device, or the device failed mid-recording
	ErrDevice = errors.New("capture device error")

	// ErrEncoding means captured audio could not be encoded to the artifact format
	ErrEncoding = errors.New("audio encoding failed")

	// ErrNoSpeechDetected means every capture attempt timed out before speech started
	ErrNoSpeechDetected = errors.New("no speech detected")

	// ErrUnintelligibleAudio means audio was captured but could not be understood as speech
	ErrUnintelligibleAudio = errors.New("unintelligible audio")

	// ErrTranscription wraps a speech-to-text service failure
	ErrTranscription = errors.New("transcription failed")

	// ErrFeedback wraps a language model failure
	ErrFeedback = errors.New("feedback generation failed")

	// ErrSynthesis wraps a text-to-speech service failure
	ErrSynthesis = errors.New("speech synthesis failed")

	// ErrEmptyInput means a stage received empty or whitespace-only text
	ErrEmptyInput = errors.New("empty input")

	// ErrEmptyArtifact means an audio artifact exists but holds zero bytes
	ErrEmptyArtifact = errors.New("empty audio artifact")

	// ErrNotFound means a required file does not exist
	ErrNotFound = errors.New("file not found")
)

var kindLabels = []struct {
	kind  error
	label string
}{
	{ErrDevice, "device_error"},
	{ErrEncoding, "encoding_error"},
	{ErrNoSpeechDetected, "no_speech_detected"},
	{ErrUnintelligibleAudio, "unintelligible_audio"},
	{ErrTranscription, "transcription_error"},
	{ErrFeedback, "feedback_error"},
	{ErrSynthesis, "synthesis_error"},
	{ErrEmptyInput, "empty_input"},
	{ErrEmptyArtifact, "empty_artifact"},
	{ErrNotFound, "not_found"},
}

// Error is a typed stage failure.
type Error struct {
	Kind error  // one of the sentinels above
	Op   string // operation that failed, e.g. "stt.transcribe"
	Err  error  // underlying cause, may be nil
}

// New creates an Error of the given kind.
func New(kind error, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Newf creates an Error whose cause is a formatted message.
func Newf(kind error, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns a stable label for err, or "internal" when err carries no known kind.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, kl := range kindLabels {
		if errors.Is(err, kl.kind) {
			return kl.label
		}
	}
	return "internal"
}
