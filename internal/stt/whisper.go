package stt

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperClient transcribes through an OpenAI-compatible /audio/transcriptions
// endpoint. Groq and OpenAI differ only in base URL and model.
type WhisperClient struct {
	client *openai.Client
	name   string
}

// NewWhisperClient creates a client. An empty baseURL targets OpenAI.
func NewWhisperClient(name, apiKey, baseURL string) *WhisperClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperClient{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
	}
}

func (w *WhisperClient) Name() string { return w.name }

// Transcribe uploads the file and returns the recognized text
func (w *WhisperClient) Transcribe(ctx context.Context, req Request) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    req.Model,
		FilePath: req.FilePath,
		Language: req.Language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("%s transcription: %w", w.name, err)
	}
	return resp.Text, nil
}
