package orchestrator

import (
	"context"
	"time"

	"github.com/lexiqai/speech-coach/internal/artifact"
	"github.com/lexiqai/speech-coach/internal/capture"
	"github.com/lexiqai/speech-coach/internal/feedback"
)

// Response is the three-field result shown to the user. On failure
// Transcription holds "Error: <message>" and the other fields are empty.
type Response struct {
	Transcription string `json:"transcription"`
	Feedback      string `json:"feedback"`
	AudioPath     string `json:"audio_path"`
}

// Run records one pass through the pipeline
type Run struct {
	ID            string
	State         State
	InputPath     string
	Captured      bool // input came from the microphone
	Transcription string
	Feedback      *feedback.Result
	OutputPath    string
	StartedAt     time.Time
	Stages        []StageTiming
	Err           error
}

// StageTiming is how long one stage took
type StageTiming struct {
	State    State
	Duration time.Duration
}

// Response converts the run to the user-facing triple
func (r *Run) Response() Response {
	if r.Err != nil {
		return ErrorResponse(r.Err)
	}
	resp := Response{Transcription: r.Transcription, AudioPath: r.OutputPath}
	if r.Feedback != nil {
		resp.Feedback = r.Feedback.Raw
	}
	return resp
}

// ErrorResponse reports err as data
func ErrorResponse(err error) Response {
	return Response{Transcription: "Error: " + err.Error()}
}

// Capturer records speech from the microphone
type Capturer interface {
	Record(ctx context.Context, dest string, opts capture.Options) (*artifact.Audio, error)
}

// Transcriber converts an audio file to text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// FeedbackGenerator critiques a transcribed sentence
type FeedbackGenerator interface {
	Generate(ctx context.Context, transcription string) (*feedback.Result, error)
}

// Synthesizer speaks text into an audio file
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dest string) (*artifact.Audio, error)
}
