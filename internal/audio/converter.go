package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// BytesToSamples decodes 16-bit signed little-endian PCM
func BytesToSamples(pcm []byte) ([]int16, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("PCM data length must be even (16-bit samples), got %d", len(pcm))
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples, nil
}

// SamplesToBytes encodes samples as 16-bit signed little-endian PCM
func SamplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// FrameBytes returns the byte length of a 16-bit mono frame of the given duration
func FrameBytes(sampleRate int, d time.Duration) int {
	return int(int64(sampleRate)*int64(d)/int64(time.Second)) * 2
}

// PCMDuration returns the playback duration of 16-bit mono PCM
func PCMDuration(numBytes int, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := int64(numBytes / 2)
	return time.Duration(samples * int64(time.Second) / int64(sampleRate))
}

// CalculateRMS calculates the root mean square (RMS) of audio samples
// Useful for detecting audio levels and silence
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}

	return math.Sqrt(sum / float64(len(samples)))
}
