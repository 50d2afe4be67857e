package stt

import "context"

// Request describes one transcription call
type Request struct {
	FilePath string // encoded audio file, validated by the caller
	Language string // ISO-639-1 code, e.g. "en"
	Model    string
}

// SpeechToText is a remote transcription service.
// Implementations make exactly one remote call per Transcribe.
type SpeechToText interface {
	Transcribe(ctx context.Context, req Request) (string, error)
	Name() string
}
