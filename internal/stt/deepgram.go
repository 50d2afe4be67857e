package stt

import (
	"context"
	"fmt"

	prerecorded "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
)

// DeepgramClient transcribes files with Deepgram's pre-recorded API
type DeepgramClient struct {
	api *prerecorded.Client
}

// NewDeepgramClient creates a Deepgram REST client
func NewDeepgramClient(apiKey string) *DeepgramClient {
	c := listenClient.NewREST(apiKey, &interfaces.ClientOptions{})
	return &DeepgramClient{api: prerecorded.New(c)}
}

func (d *DeepgramClient) Name() string { return "deepgram" }

// Transcribe uploads the file and returns the first alternative of the first channel
func (d *DeepgramClient) Transcribe(ctx context.Context, req Request) (string, error) {
	res, err := d.api.FromFile(ctx, req.FilePath, &interfaces.PreRecordedTranscriptionOptions{
		Model:       req.Model,
		Language:    req.Language,
		Punctuate:   true,
		SmartFormat: true,
	})
	if err != nil {
		return "", fmt.Errorf("deepgram transcription: %w", err)
	}

	if res == nil || res.Results == nil || len(res.Results.Channels) == 0 ||
		len(res.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return res.Results.Channels[0].Alternatives[0].Transcript, nil
}
