// Package tts converts feedback text into a playable MP3 artifact and
// optionally plays it on the local speakers.
package tts

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/apperr"
	"github.com/lexiqai/speech-coach/internal/artifact"
	"github.com/lexiqai/speech-coach/internal/observability"
	"github.com/lexiqai/speech-coach/internal/resilience"
)

// Options configure a Synthesizer
type Options struct {
	Language string
	Timeout  time.Duration // bound on the remote call, zero for none
}

// Synthesizer writes synthesized speech to files
type Synthesizer struct {
	engine   TextToSpeech
	opts     Options
	breaker  *resilience.CircuitBreaker
	playback *Playback
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewSynthesizer wires a synthesizer. breaker, playback and metrics may be nil;
// without playback nothing is played.
func NewSynthesizer(engine TextToSpeech, opts Options, breaker *resilience.CircuitBreaker, playback *Playback, logger zerolog.Logger, metrics *observability.Metrics) *Synthesizer {
	return &Synthesizer{
		engine:   engine,
		opts:     opts,
		breaker:  breaker,
		playback: playback,
		logger:   logger.With().Str("component", "tts").Str("backend", engine.Name()).Logger(),
		metrics:  metrics,
	}
}

// Synthesize speaks text into dest, overwriting it. The artifact is validated
// before it is returned or queued for playback; playback never delays the return.
func (s *Synthesizer) Synthesize(ctx context.Context, text, dest string) (*artifact.Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Newf(apperr.ErrEmptyInput, "tts.synthesize", "nothing to speak")
	}

	start := time.Now()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	var data []byte
	call := func() error {
		var err error
		data, err = s.engine.Synthesize(ctx, text, s.opts.Language)
		return err
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Call(call)
	} else {
		err = call()
	}
	if err != nil {
		s.metrics.ObserveStage(observability.StageSynthesize, start, false)
		s.logger.Error().Err(err).Msg("Speech synthesis failed")
		return nil, apperr.New(apperr.ErrSynthesis, "tts.synthesize", err)
	}
	if len(data) == 0 {
		s.metrics.ObserveStage(observability.StageSynthesize, start, false)
		return nil, apperr.Newf(apperr.ErrEmptyArtifact, "tts.synthesize", "engine returned no audio")
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		s.metrics.ObserveStage(observability.StageSynthesize, start, false)
		return nil, apperr.New(apperr.ErrSynthesis, "tts.write", err)
	}

	a, err := artifact.Load(dest, SampleRate, artifact.BitDepth, 0)
	if err != nil {
		s.metrics.ObserveStage(observability.StageSynthesize, start, false)
		return nil, err
	}

	s.metrics.ObserveStage(observability.StageSynthesize, start, true)
	s.metrics.RecordAudioBytes("out", a.Size)
	s.logger.Debug().Str("path", dest).Int64("bytes", a.Size).Dur("latency", time.Since(start)).Msg("Speech synthesized")

	if s.playback != nil {
		s.playback.Enqueue(a.Path)
	}

	return a, nil
}
