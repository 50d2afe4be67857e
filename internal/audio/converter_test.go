package audio

import (
	"math"
	"testing"
	"time"
)

func TestBytesToSamples(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80}

	samples, err := BytesToSamples(pcm)
	if err != nil {
		t.Fatalf("BytesToSamples failed: %v", err)
	}

	want := []int16{1, -1, math.MinInt16}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], samples[i])
		}
	}
}

func TestBytesToSamples_OddLength(t *testing.T) {
	if _, err := BytesToSamples([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for odd-length PCM")
	}
}

func TestSamplesToBytes_RoundTrip(t *testing.T) {
	in := []int16{0, 1200, -1200, math.MaxInt16}

	out, err := BytesToSamples(SamplesToBytes(in))
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: expected %d, got %d", i, in[i], out[i])
		}
	}
}

func TestFrameBytes(t *testing.T) {
	if got := FrameBytes(16000, 30*time.Millisecond); got != 960 {
		t.Errorf("Expected 960 bytes for 30ms at 16kHz, got %d", got)
	}
	if got := FrameBytes(8000, 20*time.Millisecond); got != 320 {
		t.Errorf("Expected 320 bytes for 20ms at 8kHz, got %d", got)
	}
}

func TestPCMDuration(t *testing.T) {
	if got := PCMDuration(32000, 16000); got != time.Second {
		t.Errorf("Expected 1s, got %v", got)
	}
	if got := PCMDuration(100, 0); got != 0 {
		t.Errorf("Expected 0 for invalid rate, got %v", got)
	}
}

func TestCalculateRMS(t *testing.T) {
	tests := []struct {
		name     string
		samples  []int16
		expected float64
	}{
		{"empty", nil, 0},
		{"silence", []int16{0, 0, 0, 0}, 0},
		{"constant", []int16{100, -100, 100, -100}, 100},
		{"mixed", []int16{3, 4}, math.Sqrt(12.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateRMS(tt.samples); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}
