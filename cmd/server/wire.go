package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/capture"
	"github.com/lexiqai/speech-coach/internal/config"
	"github.com/lexiqai/speech-coach/internal/feedback"
	"github.com/lexiqai/speech-coach/internal/observability"
	"github.com/lexiqai/speech-coach/internal/orchestrator"
	"github.com/lexiqai/speech-coach/internal/resilience"
	"github.com/lexiqai/speech-coach/internal/stt"
	"github.com/lexiqai/speech-coach/internal/tts"
)

// app holds the wired pipeline
type app struct {
	orch     *orchestrator.Orchestrator
	recorder *capture.Recorder
	playback *tts.Playback // nil when playback is disabled
	breakers []*resilience.CircuitBreaker
}

func newSpeechToText(cfg *config.Config) stt.SpeechToText {
	switch cfg.STTBackend {
	case config.BackendOpenAI:
		return stt.NewWhisperClient("openai-whisper", cfg.OpenAIAPIKey, "")
	case config.BackendDeepgram:
		return stt.NewDeepgramClient(cfg.DeepgramAPIKey)
	default:
		return stt.NewWhisperClient("groq-whisper", cfg.GroqAPIKey, config.GroqBaseURL)
	}
}

func newChat(cfg *config.Config) feedback.ChatCompletion {
	switch cfg.LLMBackend {
	case config.BackendOpenAI:
		return feedback.NewOpenAIChat("openai", cfg.OpenAIAPIKey, "")
	case config.BackendAnthropic:
		return feedback.NewAnthropicChat(cfg.AnthropicAPIKey)
	default:
		return feedback.NewOpenAIChat("groq", cfg.GroqAPIKey, config.GroqBaseURL)
	}
}

func newTextToSpeech(cfg *config.Config) tts.TextToSpeech {
	if cfg.TTSBackend == config.BackendOpenAI {
		return tts.NewOpenAISpeech(cfg.OpenAIAPIKey, "", cfg.TTSVoice)
	}
	return tts.NewGoogleTTS("")
}

func newBreaker(cfg *config.Config, name string, metrics *observability.Metrics) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(
		name,
		cfg.CircuitBreakerMaxFailures,
		time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
	).WithObserver(metrics)
}

func captureSettings(cfg *config.Config) capture.Settings {
	s := capture.DefaultSettings()
	s.DeviceIndex = cfg.CaptureDeviceIndex
	s.Calibration = config.Seconds(cfg.CaptureCalibrationSeconds)
	s.EnergyThreshold = cfg.CaptureEnergyThreshold
	s.Pause = config.Seconds(cfg.CapturePauseSeconds)
	s.MinSpeech = config.Seconds(cfg.CaptureMinSpeechSeconds)
	return s
}

// wire builds every pipeline stage from cfg
func wire(cfg *config.Config, events orchestrator.EventSink, logger zerolog.Logger, metrics *observability.Metrics) (*app, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	recorder := capture.NewRecorder(
		capture.NewALSASource(cfg.ArecordPath),
		capture.NewFFmpegEncoder(cfg.FFmpegPath),
		captureSettings(cfg),
		logger,
		metrics,
	)

	sttBreaker := newBreaker(cfg, "stt", metrics)
	llmBreaker := newBreaker(cfg, "llm", metrics)
	ttsBreaker := newBreaker(cfg, "tts", metrics)

	transcriber := stt.NewTranscriber(
		newSpeechToText(cfg),
		stt.Options{
			Model:    cfg.STTModelOrDefault(),
			Language: cfg.STTLanguage,
			Timeout:  cfg.RemoteTimeout(),
		},
		sttBreaker,
		logger,
		metrics,
	)

	generator := feedback.NewGenerator(
		newChat(cfg),
		cfg.LLMModelOrDefault(),
		cfg.RemoteTimeout(),
		llmBreaker,
		logger,
		metrics,
	)

	var playback *tts.Playback
	if cfg.PlaybackEnabled {
		playback = tts.NewPlayback(tts.NewCommandPlayer(cfg.PlayerPath), logger, metrics)
	}

	synthesizer := tts.NewSynthesizer(
		newTextToSpeech(cfg),
		tts.Options{Language: cfg.TTSLanguage, Timeout: cfg.RemoteTimeout()},
		ttsBreaker,
		playback,
		logger,
		metrics,
	)

	orch := orchestrator.New(
		orchestrator.Stages{
			Capturer:    recorder,
			Transcriber: transcriber,
			Feedback:    generator,
			Synthesizer: synthesizer,
		},
		orchestrator.Options{
			OutputDir: cfg.OutputDir,
			Capture: capture.Options{
				Timeout:     cfg.CaptureTimeout(),
				PhraseLimit: cfg.CapturePhraseLimit(),
				MaxRetries:  cfg.CaptureMaxRetries,
			},
		},
		events,
		logger,
		metrics,
	)

	return &app{
		orch:     orch,
		recorder: recorder,
		playback: playback,
		breakers: []*resilience.CircuitBreaker{sttBreaker, llmBreaker, ttsBreaker},
	}, nil
}

// readinessChecks reports whether the output directory is writable, a
// capture device is present and no remote circuit is open
func (a *app) readinessChecks(outputDir string) map[string]observability.HealthCheckFunc {
	checks := map[string]observability.HealthCheckFunc{
		"output_dir": func(ctx context.Context) (bool, error) {
			f, err := os.CreateTemp(outputDir, ".ready-*")
			if err != nil {
				return false, err
			}
			f.Close()
			os.Remove(f.Name())
			return true, nil
		},
		"capture_device": func(ctx context.Context) (bool, error) {
			devices, err := a.recorder.Devices(ctx)
			if err != nil {
				return false, err
			}
			return len(devices) > 0, nil
		},
	}
	for _, cb := range a.breakers {
		checks[cb.Name()+"_circuit"] = cb.Ready
	}
	return checks
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
