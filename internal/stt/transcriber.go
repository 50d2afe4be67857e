// Package stt turns a recorded audio artifact into text through a remote
// speech-to-text service.
package stt

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/apperr"
	"github.com/lexiqai/speech-coach/internal/artifact"
	"github.com/lexiqai/speech-coach/internal/observability"
	"github.com/lexiqai/speech-coach/internal/resilience"
)

// Options configure a Transcriber
type Options struct {
	Model    string
	Language string
	Timeout  time.Duration // bound on the remote call, zero for none
}

// Transcriber validates audio artifacts and sends them to a SpeechToText backend
type Transcriber struct {
	client  SpeechToText
	opts    Options
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewTranscriber wires a transcriber. breaker and metrics may be nil.
func NewTranscriber(client SpeechToText, opts Options, breaker *resilience.CircuitBreaker, logger zerolog.Logger, metrics *observability.Metrics) *Transcriber {
	return &Transcriber{
		client:  client,
		opts:    opts,
		breaker: breaker,
		logger:  logger.With().Str("component", "stt").Str("backend", client.Name()).Logger(),
		metrics: metrics,
	}
}

// Transcribe returns the non-empty text spoken in the file at audioPath.
// There is no local retry: the backend is called exactly once.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := artifact.Validate(audioPath); err != nil {
		return "", err
	}

	start := time.Now()
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	var text string
	err := t.call(func() error {
		var err error
		text, err = t.client.Transcribe(ctx, Request{
			FilePath: audioPath,
			Language: t.opts.Language,
			Model:    t.opts.Model,
		})
		return err
	})
	if err != nil {
		t.metrics.ObserveStage(observability.StageTranscribe, start, false)
		t.logger.Error().Err(err).Str("path", audioPath).Msg("Transcription failed")
		return "", apperr.New(apperr.ErrTranscription, "stt.transcribe", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		t.metrics.ObserveStage(observability.StageTranscribe, start, false)
		return "", apperr.Newf(apperr.ErrUnintelligibleAudio, "stt.transcribe", "no speech recognized in %s", audioPath)
	}

	t.metrics.ObserveStage(observability.StageTranscribe, start, true)
	t.logger.Debug().
		Dur("latency", time.Since(start)).
		Int("chars", len(text)).
		Msg("Transcription complete")

	return text, nil
}

func (t *Transcriber) call(fn func() error) error {
	if t.breaker == nil {
		return fn()
	}
	return t.breaker.Call(fn)
}
