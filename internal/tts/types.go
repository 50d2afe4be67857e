package tts

import "context"

// SampleRate of the MP3 produced by the supported engines
const SampleRate = 24000

// TextToSpeech is a remote speech synthesis service returning encoded MP3
type TextToSpeech interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	Name() string
}

// Player plays an audio file to completion
type Player interface {
	Play(ctx context.Context, path string) error
}
