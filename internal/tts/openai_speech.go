package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISpeech synthesizes speech with OpenAI's tts-1 model
type OpenAISpeech struct {
	client *openai.Client
	voice  string
}

// NewOpenAISpeech creates a client. An empty baseURL targets OpenAI.
func NewOpenAISpeech(apiKey, baseURL, voice string) *OpenAISpeech {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAISpeech{client: openai.NewClientWithConfig(cfg), voice: voice}
}

func (o *OpenAISpeech) Name() string { return "openai-tts" }

// Synthesize returns MP3 audio. The model detects language from the text.
func (o *OpenAISpeech) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(o.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return data, nil
}
