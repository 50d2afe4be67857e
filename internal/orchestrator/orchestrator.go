// Package orchestrator runs one capture, transcribe, feedback and synthesize
// cycle per request and reports the outcome as data.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/apperr"
	"github.com/lexiqai/speech-coach/internal/artifact"
	"github.com/lexiqai/speech-coach/internal/capture"
	"github.com/lexiqai/speech-coach/internal/observability"
)

// Stages are the pipeline collaborators
type Stages struct {
	Capturer    Capturer
	Transcriber Transcriber
	Feedback    FeedbackGenerator
	Synthesizer Synthesizer
}

// Options configure an Orchestrator
type Options struct {
	OutputDir string
	Capture   capture.Options
}

// Orchestrator executes runs one at a time
type Orchestrator struct {
	stages  Stages
	opts    Options
	names   *outputNamer
	events  EventSink
	logger  zerolog.Logger
	metrics *observability.Metrics

	mu sync.Mutex // one active run
}

// New wires an orchestrator. events and metrics may be nil.
func New(stages Stages, opts Options, events EventSink, logger zerolog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		stages:  stages,
		opts:    opts,
		names:   newOutputNamer(opts.OutputDir),
		events:  events,
		logger:  logger.With().Str("component", "orchestrator").Logger(),
		metrics: metrics,
	}
}

// Run processes suppliedPath, or records from the microphone when it does not
// name an existing file. It never returns an error: failures become
// Response{"Error: <message>", "", ""}.
func (o *Orchestrator) Run(ctx context.Context, suppliedPath string) Response {
	run, err := o.Process(ctx, suppliedPath)
	if err != nil {
		return ErrorResponse(err)
	}
	return run.Response()
}

// Process is Run with the full run record and a typed error.
// The returned Run is non-nil even on failure.
func (o *Orchestrator) Process(ctx context.Context, suppliedPath string) (*Run, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	run := &Run{
		ID:        observability.NewRunID(),
		State:     StateAwaitingInput,
		StartedAt: time.Now(),
	}
	logger := observability.WithRunID(o.logger, run.ID)
	o.metrics.RecordRunStart()
	o.publish(run, nil)

	err := o.execute(ctx, run, suppliedPath, logger)
	o.metrics.RecordRunEnd(run.StartedAt, err == nil)

	if err != nil {
		failedIn := run.State
		run.Err = err
		run.State = StateFailed
		o.metrics.RecordError(apperr.KindOf(err), string(failedIn))
		o.publish(run, err)
		logger.Error().
			Err(err).
			Str("stage", string(failedIn)).
			Str("error_kind", apperr.KindOf(err)).
			Dur("elapsed", time.Since(run.StartedAt)).
			Msg("Run failed")
		return run, err
	}

	logger.Info().
		Str("input", run.InputPath).
		Str("output", run.OutputPath).
		Bool("captured", run.Captured).
		Dur("elapsed", time.Since(run.StartedAt)).
		Msg("Run complete")
	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, suppliedPath string, logger zerolog.Logger) error {
	stamp := o.names.stamp()

	run.InputPath = suppliedPath
	if !artifact.Exists(suppliedPath) {
		if suppliedPath != "" {
			logger.Warn().Str("path", suppliedPath).Msg("Supplied audio not found, recording from microphone")
		}
		err := o.stage(ctx, run, StateCapturing, logger, func(ctx context.Context) error {
			a, err := o.stages.Capturer.Record(ctx, o.names.path(InputPrefix, stamp), o.opts.Capture)
			if err != nil {
				return err
			}
			run.InputPath = a.Path
			run.Captured = true
			return nil
		})
		if err != nil {
			return err
		}
	}

	err := o.stage(ctx, run, StateTranscribing, logger, func(ctx context.Context) error {
		text, err := o.stages.Transcriber.Transcribe(ctx, run.InputPath)
		run.Transcription = text
		return err
	})
	if err != nil {
		return err
	}

	err = o.stage(ctx, run, StateGeneratingFeedback, logger, func(ctx context.Context) error {
		result, err := o.stages.Feedback.Generate(ctx, run.Transcription)
		run.Feedback = result
		return err
	})
	if err != nil {
		return err
	}

	err = o.stage(ctx, run, StateSynthesizing, logger, func(ctx context.Context) error {
		a, err := o.stages.Synthesizer.Synthesize(ctx, run.Feedback.Raw, o.names.path(OutputPrefix, stamp))
		if err != nil {
			return err
		}
		run.OutputPath = a.Path
		return nil
	})
	if err != nil {
		return err
	}

	if err := run.transition(StateDone); err != nil {
		return err
	}
	o.publish(run, nil)
	return nil
}

// stage enters state, runs fn and records its timing
func (o *Orchestrator) stage(ctx context.Context, run *Run, state State, logger zerolog.Logger, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := run.transition(state); err != nil {
		return err
	}
	o.publish(run, nil)

	start := time.Now()
	logger.Info().Str("stage", string(state)).Msg("Stage started")

	err := fn(ctx)
	elapsed := time.Since(start)
	run.Stages = append(run.Stages, StageTiming{State: state, Duration: elapsed})

	if err != nil {
		return err
	}
	logger.Info().Str("stage", string(state)).Dur("latency", elapsed).Msg("Stage complete")
	return nil
}

func (o *Orchestrator) publish(run *Run, err error) {
	if o.events == nil {
		return
	}
	e := Event{
		RunID:     run.ID,
		State:     run.State,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		e.ErrorKind = apperr.KindOf(err)
		e.Message = err.Error()
	}
	o.events.Publish(e)
}
