package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAISpeech_Synthesize(t *testing.T) {
	var body map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "audio/mpeg")
		io.WriteString(w, "mp3-data")
	}))
	defer server.Close()

	data, err := NewOpenAISpeech("test-key", server.URL, "").Synthesize(context.Background(), "Hello there.", "en")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if string(data) != "mp3-data" {
		t.Errorf("Unexpected audio %q", data)
	}
	if body["model"] != "tts-1" || body["voice"] != "alloy" || body["input"] != "Hello there." {
		t.Errorf("Unexpected request body %v", body)
	}
	if body["response_format"] != "mp3" {
		t.Errorf("Expected mp3 format, got %v", body["response_format"])
	}
}
