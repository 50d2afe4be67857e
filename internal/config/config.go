package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Backend identifiers
const (
	BackendGroq      = "groq"
	BackendOpenAI    = "openai"
	BackendDeepgram  = "deepgram"
	BackendAnthropic = "anthropic"
	BackendGTTS      = "gtts"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Config holds all configuration for the speech coach service
type Config struct {
	// Server configuration
	Port           string `envconfig:"PORT" default:"7861"`
	GRPCHealthPort string `envconfig:"GRPC_HEALTH_PORT" default:"7862"`
	OutputDir      string `envconfig:"OUTPUT_DIR" default:"outputs"` // Relative to the working directory

	// Remote service credentials. Groq serves STT and the language model by default.
	GroqAPIKey      string `envconfig:"GROQ_API_KEY" required:"true"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" default:""`
	DeepgramAPIKey  string `envconfig:"DEEPGRAM_API_KEY" default:""`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY" default:""`

	// Speech-to-text
	STTBackend  string `envconfig:"STT_BACKEND" default:"groq"` // groq, openai, deepgram
	STTModel    string `envconfig:"STT_MODEL" default:""`       // Empty selects the backend default
	STTLanguage string `envconfig:"STT_LANGUAGE" default:"en"`

	// Language feedback
	LLMBackend string `envconfig:"LLM_BACKEND" default:"groq"` // groq, openai, anthropic
	LLMModel   string `envconfig:"LLM_MODEL" default:""`

	// Text-to-speech
	TTSBackend  string `envconfig:"TTS_BACKEND" default:"gtts"` // gtts, openai
	TTSLanguage string `envconfig:"TTS_LANGUAGE" default:"en"`
	TTSVoice    string `envconfig:"TTS_VOICE" default:"alloy"` // openai backend only

	// Audio capture
	CaptureDeviceIndex        int     `envconfig:"CAPTURE_DEVICE_INDEX" default:"-1"` // -1 selects the first available device
	CaptureTimeoutSeconds     int     `envconfig:"CAPTURE_TIMEOUT_SECONDS" default:"15"`
	CapturePhraseLimitSeconds int     `envconfig:"CAPTURE_PHRASE_LIMIT_SECONDS" default:"10"`
	CaptureMaxRetries         int     `envconfig:"CAPTURE_MAX_RETRIES" default:"3"`
	CaptureCalibrationSeconds float64 `envconfig:"CAPTURE_CALIBRATION_SECONDS" default:"2"`
	CaptureEnergyThreshold    float64 `envconfig:"CAPTURE_ENERGY_THRESHOLD" default:"100"`
	CapturePauseSeconds       float64 `envconfig:"CAPTURE_PAUSE_SECONDS" default:"0.8"`
	CaptureMinSpeechSeconds   float64 `envconfig:"CAPTURE_MIN_SPEECH_SECONDS" default:"0.25"`
	ArecordPath               string  `envconfig:"ARECORD_PATH" default:"arecord"`
	FFmpegPath                string  `envconfig:"FFMPEG_PATH" default:"ffmpeg"`

	// Playback
	PlaybackEnabled bool   `envconfig:"PLAYBACK_ENABLED" default:"false"` // Play feedback on the server's speakers
	PlayerPath      string `envconfig:"PLAYER_PATH" default:"ffplay"`

	// Resilience configuration
	RemoteTimeoutSeconds       int `envconfig:"REMOTE_TIMEOUT_SECONDS" default:"30"`        // Per remote call
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	RateLimitPerMinute         int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`         // /api/process requests per IP

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required credentials and backend selections
func (c *Config) Validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}

	switch c.STTBackend {
	case BackendGroq:
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when STT_BACKEND=openai")
		}
	case BackendDeepgram:
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required when STT_BACKEND=deepgram")
		}
	default:
		return fmt.Errorf("unknown STT_BACKEND %q", c.STTBackend)
	}

	switch c.LLMBackend {
	case BackendGroq:
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_BACKEND=openai")
		}
	case BackendAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_BACKEND=anthropic")
		}
	default:
		return fmt.Errorf("unknown LLM_BACKEND %q", c.LLMBackend)
	}

	switch c.TTSBackend {
	case BackendGTTS:
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TTS_BACKEND=openai")
		}
	default:
		return fmt.Errorf("unknown TTS_BACKEND %q", c.TTSBackend)
	}

	if c.CaptureMaxRetries < 1 {
		return fmt.Errorf("CAPTURE_MAX_RETRIES must be at least 1")
	}
	if c.CaptureDeviceIndex < -1 {
		return fmt.Errorf("CAPTURE_DEVICE_INDEX must be -1 (auto) or a device index")
	}
	if c.CaptureTimeoutSeconds <= 0 || c.CapturePhraseLimitSeconds <= 0 {
		return fmt.Errorf("capture timeout and phrase limit must be positive")
	}
	if c.RemoteTimeoutSeconds <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT_SECONDS must be positive")
	}

	return nil
}

// STTModelOrDefault returns the configured STT model or the backend's default
func (c *Config) STTModelOrDefault() string {
	if c.STTModel != "" {
		return c.STTModel
	}
	switch c.STTBackend {
	case BackendOpenAI:
		return "whisper-1"
	case BackendDeepgram:
		return "nova-2"
	default:
		return "whisper-large-v3"
	}
}

// LLMModelOrDefault returns the configured feedback model or the backend's default
func (c *Config) LLMModelOrDefault() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	switch c.LLMBackend {
	case BackendOpenAI:
		return "gpt-4o-mini"
	case BackendAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return "meta-llama/llama-4-scout-17b-16e-instruct"
	}
}

// RemoteTimeout returns the per-call bound for remote services
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}

// CaptureTimeout returns how long to wait for speech to start
func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutSeconds) * time.Second
}

// CapturePhraseLimit returns the maximum phrase length
func (c *Config) CapturePhraseLimit() time.Duration {
	return time.Duration(c.CapturePhraseLimitSeconds) * time.Second
}

// Seconds converts a fractional seconds setting to a duration
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
