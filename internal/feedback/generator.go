// Package feedback asks a language model for grammar and pronunciation
// feedback on a transcribed sentence.
package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/apperr"
	"github.com/lexiqai/speech-coach/internal/observability"
	"github.com/lexiqai/speech-coach/internal/resilience"
)

// SystemPrompt fixes the assistant's role and the three-part reply format
const SystemPrompt = "You are a language learning assistant. Analyze the user's spoken sentence for grammar and pronunciation. " +
	"Provide clear, concise feedback on grammar errors, word choice, and potential pronunciation issues based on the transcription. " +
	"Suggest corrections and provide a follow-up practice prompt to reinforce learning. Format the response as:\n" +
	"Feedback: [Your feedback here]\n" +
	"Correction: [Corrected sentence]\n" +
	"Practice Prompt: [A new sentence or question for practice]"

// UserPrompt wraps a transcription as the user turn
func UserPrompt(transcription string) string {
	return "Analyze this sentence: " + transcription
}

// Generator produces feedback through a ChatCompletion backend
type Generator struct {
	chat    ChatCompletion
	model   string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewGenerator wires a generator. breaker and metrics may be nil.
func NewGenerator(chat ChatCompletion, model string, timeout time.Duration, breaker *resilience.CircuitBreaker, logger zerolog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{
		chat:    chat,
		model:   model,
		timeout: timeout,
		breaker: breaker,
		logger:  logger.With().Str("component", "feedback").Str("backend", chat.Name()).Logger(),
		metrics: metrics,
	}
}

// Generate sends one system and one user message and returns the reply.
// The model is called once; failures are not retried.
func (g *Generator) Generate(ctx context.Context, transcription string) (*Result, error) {
	transcription = strings.TrimSpace(transcription)
	if transcription == "" {
		return nil, apperr.Newf(apperr.ErrEmptyInput, "feedback.generate", "transcription is empty")
	}

	start := time.Now()
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: UserPrompt(transcription)},
	}

	var reply string
	call := func() error {
		var err error
		reply, err = g.chat.Complete(ctx, messages, g.model)
		return err
	}

	var err error
	if g.breaker != nil {
		err = g.breaker.Call(call)
	} else {
		err = call()
	}
	if err != nil {
		g.metrics.ObserveStage(observability.StageFeedback, start, false)
		g.logger.Error().Err(err).Msg("Feedback generation failed")
		return nil, apperr.New(apperr.ErrFeedback, "feedback.generate", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		g.metrics.ObserveStage(observability.StageFeedback, start, false)
		return nil, apperr.Newf(apperr.ErrFeedback, "feedback.generate", "model returned an empty reply")
	}

	g.metrics.ObserveStage(observability.StageFeedback, start, true)
	g.logger.Debug().Dur("latency", time.Since(start)).Int("chars", len(reply)).Msg("Feedback generated")

	result := Parse(reply)
	return &result, nil
}
