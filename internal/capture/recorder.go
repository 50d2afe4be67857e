// Package capture records one spoken phrase from a microphone into an MP3 artifact.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/apperr"
	"github.com/lexiqai/speech-coach/internal/artifact"
	"github.com/lexiqai/speech-coach/internal/audio"
	"github.com/lexiqai/speech-coach/internal/observability"
	"github.com/lexiqai/speech-coach/internal/resilience"
)

// FrameDuration is the unit of capture time. Timeouts and phrase limits
// are counted in frames read from the device, not wall-clock time.
const FrameDuration = 30 * time.Millisecond

// AutoSelectDevice picks the first enumerated device
const AutoSelectDevice = -1

var errStartTimeout = errors.New("listening timed out while waiting for phrase to start")

// Options bound one Record call
type Options struct {
	Timeout     time.Duration // wait for speech onset per attempt; zero waits forever
	PhraseLimit time.Duration // maximum phrase length; zero means no limit
	MaxRetries  int           // attempts before giving up; values below 1 mean 1
}

// Settings tune device selection and speech detection
type Settings struct {
	DeviceIndex     int
	SampleRate      int
	Calibration     time.Duration // ambient noise sampling before each attempt
	EnergyThreshold float64       // starting threshold, adjusted by calibration
	Pause           time.Duration // silence that ends a phrase
	MinSpeech       time.Duration // voiced audio below this is unintelligible
	PreRoll         time.Duration // audio kept from before speech onset
}

// DefaultSettings matches the capture defaults in config
func DefaultSettings() Settings {
	return Settings{
		DeviceIndex:     AutoSelectDevice,
		SampleRate:      artifact.SampleRate,
		Calibration:     2 * time.Second,
		EnergyThreshold: 100,
		Pause:           800 * time.Millisecond,
		MinSpeech:       250 * time.Millisecond,
		PreRoll:         500 * time.Millisecond,
	}
}

// Recorder captures a single phrase per Record call. Calls are serialized
// so the device is never opened twice.
type Recorder struct {
	source   Source
	encoder  Encoder
	settings Settings
	logger   zerolog.Logger
	metrics  *observability.Metrics

	mu sync.Mutex
}

// NewRecorder wires a recorder. metrics may be nil.
func NewRecorder(source Source, encoder Encoder, settings Settings, logger zerolog.Logger, metrics *observability.Metrics) *Recorder {
	if settings.SampleRate <= 0 {
		settings.SampleRate = artifact.SampleRate
	}
	return &Recorder{
		source:   source,
		encoder:  encoder,
		settings: settings,
		logger:   logger.With().Str("component", "capture").Logger(),
		metrics:  metrics,
	}
}

// Devices lists the available capture devices
func (r *Recorder) Devices(ctx context.Context) ([]DeviceInfo, error) {
	devices, err := r.source.ListDevices(ctx)
	if err != nil {
		return nil, apperr.New(apperr.ErrDevice, "capture.devices", err)
	}
	if len(devices) == 0 {
		return nil, apperr.Newf(apperr.ErrDevice, "capture.devices", "no input devices found")
	}
	return devices, nil
}

// Record listens for one phrase and writes it to dest, overwriting any existing file.
//
// Start timeouts and empty recordings are retried up to opts.MaxRetries times and
// then reported as ErrNoSpeechDetected. Device failures and phrases with too little
// voiced audio end the call immediately.
func (r *Recorder) Record(ctx context.Context, dest string, opts Options) (*artifact.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	a, err := r.record(ctx, dest, opts)
	r.metrics.ObserveStage(observability.StageCapture, start, err == nil)
	return a, err
}

func (r *Recorder) record(ctx context.Context, dest string, opts Options) (*artifact.Audio, error) {
	devices, err := r.Devices(ctx)
	if err != nil {
		r.metrics.RecordCaptureAttempt("device_error")
		return nil, err
	}
	dev, err := selectDevice(devices, r.settings.DeviceIndex)
	if err != nil {
		r.metrics.RecordCaptureAttempt("device_error")
		return nil, err
	}

	logger := r.logger.With().Str("device", dev.ID()).Str("dest", dest).Logger()

	var result *artifact.Audio
	err = resilience.Retry(ctx, func(ctx context.Context, attempt int) error {
		logger.Info().Int("attempt", attempt).Msg("Listening for speech")

		a, err := r.attempt(ctx, dev, dest, opts)
		outcome := attemptOutcome(err)
		r.metrics.RecordCaptureAttempt(outcome)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Str("outcome", outcome).Msg("Capture attempt failed")
			return err
		}

		result = a
		return nil
	}, resilience.ImmediateRetryConfig(opts.MaxRetries), resilience.IsRetryable)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("capture.record: %w", ctxErr)
		}
		if resilience.IsRetryable(err) {
			return nil, apperr.New(apperr.ErrNoSpeechDetected, "capture.record", errors.Unwrap(err))
		}
		return nil, err
	}

	logger.Info().Int64("bytes", result.Size).Msg("Phrase captured")
	return result, nil
}

func (r *Recorder) attempt(ctx context.Context, dev DeviceInfo, dest string, opts Options) (*artifact.Audio, error) {
	stream, err := r.source.Open(ctx, dev, r.settings.SampleRate)
	if err != nil {
		return nil, apperr.New(apperr.ErrDevice, "capture.open", err)
	}
	defer stream.Close()

	vadConfig := audio.DefaultVADConfig()
	vadConfig.SampleRate = r.settings.SampleRate
	vadConfig.FrameSize = audio.FrameBytes(r.settings.SampleRate, FrameDuration) / 2
	vadConfig.SilenceFrames = max(1, framesIn(r.settings.Pause))
	if r.settings.EnergyThreshold > 0 {
		vadConfig.EnergyThreshold = r.settings.EnergyThreshold
	}
	vad := audio.NewVADDetector(vadConfig)

	frame := make([]byte, vadConfig.FrameSize*2)
	read := func() ([]int16, error) {
		if _, err := io.ReadFull(stream, frame); err != nil {
			return nil, apperr.New(apperr.ErrDevice, "capture.read", err)
		}
		return audio.BytesToSamples(frame)
	}

	for i := 0; i < framesIn(r.settings.Calibration); i++ {
		samples, err := read()
		if err != nil {
			return nil, err
		}
		vad.Calibrate(samples)
	}
	r.logger.Debug().Str("device", dev.ID()).Float64("threshold", vad.Threshold()).Msg("Energy threshold calibrated")

	// Wait for onset, keeping a short pre-roll so the first syllable survives
	preRoll := audio.NewPreRollBuffer(len(frame) * max(1, framesIn(r.settings.PreRoll)))
	timeoutFrames := framesIn(opts.Timeout)
	var phrase bytes.Buffer
	for waited := 0; ; waited++ {
		if opts.Timeout > 0 && waited >= timeoutFrames {
			return nil, resilience.NewRetryableError(errStartTimeout)
		}
		samples, err := read()
		if err != nil {
			return nil, err
		}
		if _, started, _ := vad.ProcessFrame(samples); started {
			phrase.Write(preRoll.Drain())
			phrase.Write(frame)
			break
		}
		preRoll.Push(frame)
	}

	voiced, frames := 1, 1
	limitFrames := framesIn(opts.PhraseLimit)
	for opts.PhraseLimit <= 0 || frames < limitFrames {
		samples, err := read()
		if err != nil {
			return nil, err
		}
		phrase.Write(frame)
		frames++

		_, _, ended := vad.ProcessFrame(samples)
		if vad.LastFrameVoiced() {
			voiced++
		}
		if ended {
			break
		}
	}

	if speech := time.Duration(voiced) * FrameDuration; speech < r.settings.MinSpeech {
		return nil, apperr.Newf(apperr.ErrUnintelligibleAudio, "capture.record",
			"only %v of voiced audio, need %v", speech, r.settings.MinSpeech)
	}

	if err := r.encoder.Encode(ctx, phrase.Bytes(), r.settings.SampleRate, dest); err != nil {
		return nil, apperr.New(apperr.ErrEncoding, "capture.encode", err)
	}

	maxDuration := audio.PCMDuration(phrase.Len(), r.settings.SampleRate)
	a, err := artifact.Load(dest, r.settings.SampleRate, artifact.BitDepth, maxDuration)
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyArtifact) {
			return nil, resilience.NewRetryableError(err)
		}
		return nil, err
	}
	r.metrics.RecordAudioBytes("in", a.Size)
	return a, nil
}

func selectDevice(devices []DeviceInfo, index int) (DeviceInfo, error) {
	if index == AutoSelectDevice {
		return devices[0], nil
	}
	if index < 0 || index >= len(devices) {
		return DeviceInfo{}, apperr.Newf(apperr.ErrDevice, "capture.select",
			"device index %d out of range (%d devices)", index, len(devices))
	}
	return devices[index], nil
}

// framesIn rounds d up to whole frames
func framesIn(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + FrameDuration - 1) / FrameDuration)
}

func attemptOutcome(err error) string {
	switch {
	case err == nil:
		return "captured"
	case errors.Is(err, errStartTimeout):
		return "timeout"
	case errors.Is(err, apperr.ErrEmptyArtifact):
		return "empty"
	case errors.Is(err, apperr.ErrUnintelligibleAudio):
		return "unintelligible"
	case errors.Is(err, apperr.ErrDevice):
		return "device_error"
	case errors.Is(err, apperr.ErrEncoding):
		return "encode_error"
	default:
		return "error"
	}
}

// String describes the device for logs
func (d DeviceInfo) String() string {
	return fmt.Sprintf("#%d %s (%s)", d.Index, d.Name, d.ID())
}
