package artifact

import (
	"os"
	"time"

	"github.com/lexiqai/speech-coach/internal/apperr"
)

// Audio formats produced by the pipeline
const (
	SampleRate = 16000 // Hz, capture and encode rate
	BitDepth   = 16    // bits per sample
)

// Audio is an encoded audio file handed between pipeline stages.
// It is never mutated after creation.
type Audio struct {
	Path        string
	SampleRate  int
	BitDepth    int
	MaxDuration time.Duration // upper bound on content length, zero if unknown
	Size        int64
}

// Validate checks that path is a regular, non-empty file and returns its size.
// A zero-byte file is indistinguishable from "no audio" without this check.
func Validate(path string) (int64, error) {
	if path == "" {
		return 0, apperr.Newf(apperr.ErrNotFound, "artifact.validate", "empty path")
	}

	// Unreadable paths (permissions, dangling links) are reported as not found too
	info, err := os.Stat(path)
	if err != nil {
		return 0, apperr.New(apperr.ErrNotFound, "artifact.validate", err)
	}
	if info.IsDir() {
		return 0, apperr.Newf(apperr.ErrNotFound, "artifact.validate", "%s is a directory", path)
	}
	if info.Size() == 0 {
		return 0, apperr.Newf(apperr.ErrEmptyArtifact, "artifact.validate", "%s has zero bytes", path)
	}

	return info.Size(), nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load validates path and describes it as an Audio artifact.
func Load(path string, sampleRate, bitDepth int, maxDuration time.Duration) (*Audio, error) {
	size, err := Validate(path)
	if err != nil {
		return nil, err
	}
	return &Audio{
		Path:        path,
		SampleRate:  sampleRate,
		BitDepth:    bitDepth,
		MaxDuration: maxDuration,
		Size:        size,
	}, nil
}
