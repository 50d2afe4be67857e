package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-groq-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.GroqAPIKey != "test-groq-key" {
		t.Errorf("Expected GroqAPIKey 'test-groq-key', got '%s'", cfg.GroqAPIKey)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when GROQ_API_KEY is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-groq-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "7861" {
		t.Errorf("Expected default Port '7861', got '%s'", cfg.Port)
	}
	if cfg.OutputDir != "outputs" {
		t.Errorf("Expected default OutputDir 'outputs', got '%s'", cfg.OutputDir)
	}
	if cfg.STTBackend != BackendGroq || cfg.LLMBackend != BackendGroq || cfg.TTSBackend != BackendGTTS {
		t.Errorf("Unexpected default backends: %s/%s/%s", cfg.STTBackend, cfg.LLMBackend, cfg.TTSBackend)
	}
	if cfg.STTLanguage != "en" || cfg.TTSLanguage != "en" {
		t.Errorf("Expected English defaults, got %s/%s", cfg.STTLanguage, cfg.TTSLanguage)
	}
	if cfg.CaptureDeviceIndex != -1 {
		t.Errorf("Expected default CaptureDeviceIndex -1, got %d", cfg.CaptureDeviceIndex)
	}
	if cfg.PlaybackEnabled {
		t.Error("Expected playback disabled by default")
	}
}

func TestConfig_CaptureDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-groq-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.CaptureTimeout() != 15*time.Second {
		t.Errorf("Expected capture timeout 15s, got %v", cfg.CaptureTimeout())
	}
	if cfg.CapturePhraseLimit() != 10*time.Second {
		t.Errorf("Expected phrase limit 10s, got %v", cfg.CapturePhraseLimit())
	}
	if cfg.CaptureMaxRetries != 3 {
		t.Errorf("Expected 3 capture retries, got %d", cfg.CaptureMaxRetries)
	}
	if Seconds(cfg.CaptureCalibrationSeconds) != 2*time.Second {
		t.Errorf("Expected 2s calibration, got %v", Seconds(cfg.CaptureCalibrationSeconds))
	}
	if cfg.CaptureEnergyThreshold != 100.0 {
		t.Errorf("Expected energy threshold 100, got %f", cfg.CaptureEnergyThreshold)
	}
	if Seconds(cfg.CapturePauseSeconds) != 800*time.Millisecond {
		t.Errorf("Expected 800ms pause, got %v", Seconds(cfg.CapturePauseSeconds))
	}
}

func TestConfig_ResilienceDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-groq-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.RemoteTimeout() != 30*time.Second {
		t.Errorf("Expected remote timeout 30s, got %v", cfg.RemoteTimeout())
	}
	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}
	if cfg.CircuitBreakerResetTimeout != 30 {
		t.Errorf("Expected default CircuitBreakerResetTimeout 30, got %d", cfg.CircuitBreakerResetTimeout)
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-groq-key")
	t.Setenv("LOG_LEVEL", "debug")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}
	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			GroqAPIKey:                "k",
			STTBackend:                BackendGroq,
			LLMBackend:                BackendGroq,
			TTSBackend:                BackendGTTS,
			CaptureDeviceIndex:        -1,
			CaptureMaxRetries:         3,
			CaptureTimeoutSeconds:     15,
			CapturePhraseLimitSeconds: 10,
			RemoteTimeoutSeconds:      30,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing groq key", func(c *Config) { c.GroqAPIKey = "" }, true},
		{"deepgram without key", func(c *Config) { c.STTBackend = BackendDeepgram }, true},
		{"deepgram with key", func(c *Config) { c.STTBackend = BackendDeepgram; c.DeepgramAPIKey = "d" }, false},
		{"anthropic without key", func(c *Config) { c.LLMBackend = BackendAnthropic }, true},
		{"openai tts without key", func(c *Config) { c.TTSBackend = BackendOpenAI }, true},
		{"unknown stt backend", func(c *Config) { c.STTBackend = "vosk" }, true},
		{"unknown tts backend", func(c *Config) { c.TTSBackend = "espeak" }, true},
		{"zero retries", func(c *Config) { c.CaptureMaxRetries = 0 }, true},
		{"bad device index", func(c *Config) { c.CaptureDeviceIndex = -2 }, true},
		{"explicit device index", func(c *Config) { c.CaptureDeviceIndex = 5 }, false},
		{"zero remote timeout", func(c *Config) { c.RemoteTimeoutSeconds = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ModelDefaults(t *testing.T) {
	tests := []struct {
		stt, llm         string
		wantSTT, wantLLM string
	}{
		{BackendGroq, BackendGroq, "whisper-large-v3", "meta-llama/llama-4-scout-17b-16e-instruct"},
		{BackendOpenAI, BackendOpenAI, "whisper-1", "gpt-4o-mini"},
		{BackendDeepgram, BackendAnthropic, "nova-2", "claude-3-5-haiku-latest"},
	}

	for _, tt := range tests {
		c := Config{STTBackend: tt.stt, LLMBackend: tt.llm}
		if got := c.STTModelOrDefault(); got != tt.wantSTT {
			t.Errorf("STT %s: expected %s, got %s", tt.stt, tt.wantSTT, got)
		}
		if got := c.LLMModelOrDefault(); got != tt.wantLLM {
			t.Errorf("LLM %s: expected %s, got %s", tt.llm, tt.wantLLM, got)
		}
	}

	c := Config{STTBackend: BackendGroq, STTModel: "distil-whisper"}
	if c.STTModelOrDefault() != "distil-whisper" {
		t.Error("Expected explicit STT model to win")
	}
}
