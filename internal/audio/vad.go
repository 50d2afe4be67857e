package audio

import "math"

// VADConfig holds configuration for Voice Activity Detection
type VADConfig struct {
	EnergyThreshold    float64 // Initial RMS energy threshold for speech detection
	MinEnergyThreshold float64 // Calibration never lowers the threshold below this
	SilenceFrames      int     // Consecutive silence frames that end an utterance
	FrameSize          int     // Samples per frame (480 = 30ms at 16kHz)
	SampleRate         int
	Damping            float64 // Per-second weight kept from the old threshold during calibration
	Ratio              float64 // Threshold as a multiple of ambient energy
}

// DefaultVADConfig returns a configuration for 16kHz mono speech
func DefaultVADConfig() *VADConfig {
	return &VADConfig{
		EnergyThreshold:    100.0,
		MinEnergyThreshold: 30.0,
		SilenceFrames:      27, // ~800ms of silence (27 frames * 30ms)
		FrameSize:          480,
		SampleRate:         16000,
		Damping:            0.15,
		Ratio:              1.5,
	}
}

// VADDetector performs Voice Activity Detection
type VADDetector struct {
	config         *VADConfig
	threshold      float64
	silenceCounter int
	isSpeaking     bool
	lastVoiced     bool
}

// NewVADDetector creates a new VAD detector
func NewVADDetector(config *VADConfig) *VADDetector {
	if config == nil {
		config = DefaultVADConfig()
	}
	return &VADDetector{
		config:    config,
		threshold: config.EnergyThreshold,
	}
}

// Calibrate folds one frame of ambient noise into the threshold.
// Repeated calls over a quiet interval move the threshold toward
// Ratio times the ambient energy, damped by the frame duration.
func (v *VADDetector) Calibrate(samples []int16) {
	if len(samples) == 0 {
		return
	}

	seconds := float64(len(samples)) / float64(v.sampleRate())
	damping := math.Pow(v.config.Damping, seconds)
	target := CalculateRMS(samples) * v.config.Ratio

	v.threshold = v.threshold*damping + target*(1-damping)
	if v.threshold < v.config.MinEnergyThreshold {
		v.threshold = v.config.MinEnergyThreshold
	}
}

// Threshold returns the current energy threshold
func (v *VADDetector) Threshold() float64 {
	return v.threshold
}

// ProcessFrame processes an audio frame and returns whether speech is detected
// Returns: (isSpeaking, speechStarted, speechEnded)
func (v *VADDetector) ProcessFrame(samples []int16) (bool, bool, bool) {
	frameHasSpeech := CalculateRMS(samples) > v.threshold
	v.lastVoiced = frameHasSpeech

	var speechStarted, speechEnded bool

	if frameHasSpeech {
		v.silenceCounter = 0
		if !v.isSpeaking {
			speechStarted = true
			v.isSpeaking = true
		}
	} else {
		v.silenceCounter++
		if v.isSpeaking && v.silenceCounter >= v.config.SilenceFrames {
			speechEnded = true
			v.isSpeaking = false
			v.silenceCounter = 0
		}
	}

	return v.isSpeaking, speechStarted, speechEnded
}

// LastFrameVoiced reports whether the most recent frame exceeded the threshold
func (v *VADDetector) LastFrameVoiced() bool {
	return v.lastVoiced
}

func (v *VADDetector) sampleRate() int {
	if v.config.SampleRate <= 0 {
		return 16000
	}
	return v.config.SampleRate
}
