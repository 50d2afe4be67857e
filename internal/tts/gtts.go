package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultGoogleTTSURL is the Google Translate speech endpoint
const DefaultGoogleTTSURL = "https://translate.google.com/translate_tts"

// maxChunkChars is the longest text the endpoint accepts per request
const maxChunkChars = 100

// GoogleTTS synthesizes speech with the Google Translate voice at normal speed
type GoogleTTS struct {
	apiURL     string
	httpClient *http.Client
}

// NewGoogleTTS creates a client. An empty apiURL uses DefaultGoogleTTSURL.
func NewGoogleTTS(apiURL string) *GoogleTTS {
	if apiURL == "" {
		apiURL = DefaultGoogleTTSURL
	}
	return &GoogleTTS{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *GoogleTTS) Name() string { return "gtts" }

// Synthesize fetches each chunk of text as MP3 and concatenates the results.
// MP3 frames are self-delimiting, so the concatenation plays as one file.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	chunks := chunkText(text, maxChunkChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no speakable text")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		data, err := g.fetch(ctx, chunk, language, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("gtts chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out.Write(data)
	}
	return out.Bytes(), nil
}

func (g *GoogleTTS) fetch(ctx context.Context, chunk, language string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", language)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	q.Set("client", "tw-ob")
	q.Set("ttsspeed", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("google tts returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return data, nil
}

// chunkText splits text into pieces of at most limit runes, preferring
// sentence and clause boundaries, then word boundaries.
func chunkText(text string, limit int) []string {
	var chunks []string
	current := ""

	emit := func() {
		if s := strings.TrimSpace(current); s != "" {
			chunks = append(chunks, s)
		}
		current = ""
	}

	for _, piece := range splitClauses(text) {
		if utf8.RuneCountInString(piece) > limit {
			emit()
			chunks = append(chunks, splitWords(piece, limit)...)
			continue
		}
		candidate := piece
		if current != "" {
			candidate = current + " " + piece
		}
		if utf8.RuneCountInString(candidate) > limit {
			emit()
			candidate = piece
		}
		current = candidate
	}
	emit()

	return chunks
}

// splitClauses cuts after punctuation that is followed by whitespace or the end
func splitClauses(text string) []string {
	var pieces []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		boundary := r == '\n' || (strings.ContainsRune(".!?;:,", r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])))
		if boundary {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				pieces = append(pieces, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		pieces = append(pieces, s)
	}
	return pieces
}

func splitWords(text string, limit int) []string {
	var chunks []string
	current := ""
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			r := []rune(word)
			chunks = append(chunks, string(r[:limit]))
			word = string(r[limit:])
		}
		if current == "" {
			current = word
		} else if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= limit {
			current += " " + word
		} else {
			chunks = append(chunks, current)
			current = word
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
