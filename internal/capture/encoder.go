package capture

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Encoder writes PCM to an encoded audio file
type Encoder interface {
	Encode(ctx context.Context, pcm []byte, sampleRate int, dest string) error
}

// FFmpegEncoder encodes 16-bit mono PCM to 128 kbps MP3 with ffmpeg
type FFmpegEncoder struct {
	ffmpegPath string
	runner     commandRunner
}

// NewFFmpegEncoder creates an encoder using the ffmpeg binary at ffmpegPath
func NewFFmpegEncoder(ffmpegPath string) *FFmpegEncoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegEncoder{ffmpegPath: ffmpegPath, runner: &execRunner{}}
}

// Encode pipes pcm into ffmpeg and overwrites dest
func (e *FFmpegEncoder) Encode(ctx context.Context, pcm []byte, sampleRate int, dest string) error {
	res, err := e.runner.Run(ctx, bytes.NewReader(pcm), e.ffmpegPath,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", "128k",
		dest,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg encode (exit=%d): %w: %s", res.ExitCode, err, strings.TrimSpace(res.Stderr))
	}
	return nil
}
