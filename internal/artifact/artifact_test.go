package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexiqai/speech-coach/internal/apperr"
)

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	full := filepath.Join(dir, "full.mp3")
	if err := os.WriteFile(full, []byte("ID3audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"non-empty file", full, nil},
		{"zero bytes", empty, apperr.ErrEmptyArtifact},
		{"missing", filepath.Join(dir, "missing.mp3"), apperr.ErrNotFound},
		{"directory", dir, apperr.ErrNotFound},
		{"empty path", "", apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := Validate(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() failed: %v", err)
				}
				if size != 8 {
					t.Errorf("Expected size 8, got %d", size)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if !Exists(path) {
		t.Error("Expected existing file to exist, even when empty")
	}
	if Exists(dir) {
		t.Error("Expected directory not to count as an artifact")
	}
	if Exists("") {
		t.Error("Expected empty path not to exist")
	}
	if Exists(filepath.Join(dir, "nope.wav")) {
		t.Error("Expected missing file not to exist")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_audio_1.mp3")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := Load(path, SampleRate, BitDepth, 10*time.Second)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if a.Path != path || a.Size != 3 || a.SampleRate != 16000 || a.BitDepth != 16 {
		t.Errorf("Unexpected artifact: %+v", a)
	}
	if a.MaxDuration != 10*time.Second {
		t.Errorf("Expected max duration 10s, got %v", a.MaxDuration)
	}
}
