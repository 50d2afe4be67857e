package feedback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

var promptPair = []Message{
	{Role: RoleSystem, Content: SystemPrompt},
	{Role: RoleUser, Content: UserPrompt("hello world")},
}

func TestOpenAIChat_Complete(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature *float64 `json:"temperature"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"llama","choices":[{"index":0,"message":{"role":"assistant","content":"Feedback: Good."},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	chat := NewOpenAIChat("groq", "test-key", server.URL)
	reply, err := chat.Complete(context.Background(), promptPair, "meta-llama/llama-4-scout-17b-16e-instruct")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if reply != "Feedback: Good." {
		t.Errorf("Unexpected reply %q", reply)
	}
	if body.Model != "meta-llama/llama-4-scout-17b-16e-instruct" {
		t.Errorf("Unexpected model %q", body.Model)
	}
	if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "Analyze this sentence: hello world" {
		t.Errorf("Unexpected messages %+v", body.Messages)
	}
	if body.Temperature != nil {
		t.Error("Expected no temperature to be sent")
	}
}

func TestOpenAIChat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","choices":[]}`)
	}))
	defer server.Close()

	reply, err := NewOpenAIChat("groq", "k", server.URL).Complete(context.Background(), promptPair, "m")
	if err != nil || reply != "" {
		t.Errorf("Expected empty reply and no error, got %q, %v", reply, err)
	}
}

func TestAnthropicChat_Complete(t *testing.T) {
	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",`+
			`"content":[{"type":"text","text":"Feedback: Good.\n"},{"type":"text","text":"Correction: Hello world."}],`+
			`"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer server.Close()

	chat := NewAnthropicChat("test-key", option.WithBaseURL(server.URL))
	reply, err := chat.Complete(context.Background(), promptPair, "claude-3-5-haiku-latest")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if reply != "Feedback: Good.\nCorrection: Hello world." {
		t.Errorf("Unexpected reply %q", reply)
	}
	if len(body.System) != 1 || body.System[0].Text != SystemPrompt {
		t.Errorf("Expected system prompt as system block, got %+v", body.System)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
		t.Errorf("Expected one user message, got %+v", body.Messages)
	}
	if body.MaxTokens != anthropicMaxTokens {
		t.Errorf("Expected max_tokens %d, got %d", anthropicMaxTokens, body.MaxTokens)
	}
	if requests != 1 {
		t.Errorf("Expected 1 request, got %d", requests)
	}
}

func TestAnthropicChat_ServerErrorNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"overloaded"}}`)
	}))
	defer server.Close()

	_, err := NewAnthropicChat("k", option.WithBaseURL(server.URL)).Complete(context.Background(), promptPair, "claude-3-5-haiku-latest")

	if err == nil {
		t.Fatal("Expected error")
	}
	if requests != 1 {
		t.Errorf("Expected exactly 1 request, got %d", requests)
	}
}
