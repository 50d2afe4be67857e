// Package ui serves the browser page, the JSON processing API and the
// run event stream.
package ui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/apperr"
	"github.com/lexiqai/speech-coach/internal/observability"
	"github.com/lexiqai/speech-coach/internal/orchestrator"
)

//go:embed static/index.html
var staticFiles embed.FS

const (
	maxUploadBytes = 32 << 20
	uploadPrefix   = "upload"
)

// Processor runs the pipeline for one request
type Processor interface {
	Process(ctx context.Context, suppliedPath string) (*orchestrator.Run, error)
}

// Options configure the HTTP surface
type Options struct {
	OutputDir          string
	RateLimitPerMinute int                                      // zero disables limiting
	Checks             map[string]observability.HealthCheckFunc // readiness checks
	MetricsHandler     http.Handler                             // nil disables /metrics
}

// Server holds the HTTP handlers
type Server struct {
	proc   Processor
	hub    *EventHub
	opts   Options
	logger zerolog.Logger
}

// NewServer creates the HTTP surface. hub may be nil.
func NewServer(proc Processor, hub *EventHub, opts Options, logger zerolog.Logger) *Server {
	return &Server{
		proc:   proc,
		hub:    hub,
		opts:   opts,
		logger: logger.With().Str("component", "ui").Logger(),
	}
}

// ProcessResponse is the JSON body of POST /api/process
type ProcessResponse struct {
	RunID         string `json:"run_id"`
	Transcription string `json:"transcription"`
	Feedback      string `json:"feedback"`
	AudioURL      string `json:"audio_url"`
	ErrorKind     string `json:"error_kind,omitempty"`
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", observability.HealthCheckHandler())
	r.Get("/ready", observability.ReadinessHandler(s.opts.Checks))
	if s.opts.MetricsHandler != nil {
		r.Handle("/metrics", s.opts.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if s.opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimitPerMinute, time.Minute))
		}
		r.Post("/api/process", s.handleProcess)
	})

	r.Get("/outputs/{name}", s.handleOutput)
	if s.hub != nil {
		r.Get("/ws/events", s.hub.ServeWS)
	}

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleProcess runs the pipeline on an uploaded file, or on the
// microphone when no file (or an empty one) is sent. Pipeline failures are
// reported in the body with status 200.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	supplied, err := s.saveUpload(r)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Rejected upload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	run, err := s.proc.Process(r.Context(), supplied)
	resp := ProcessResponse{}
	if run != nil {
		resp.RunID = run.ID
	}
	if err != nil {
		out := orchestrator.ErrorResponse(err)
		resp.Transcription = out.Transcription
		resp.ErrorKind = apperr.KindOf(err)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	out := run.Response()
	resp.Transcription = out.Transcription
	resp.Feedback = out.Feedback
	resp.AudioURL = "/outputs/" + filepath.Base(out.AudioPath)
	writeJSON(w, http.StatusOK, resp)
}

// saveUpload stores the "audio" form file in the output directory and
// returns its path, or "" when nothing usable was sent
func (s *Server) saveUpload(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return "", nil
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", errors.New("invalid multipart form")
	}

	file, header, err := r.FormFile("audio")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", errors.New("invalid audio field")
	}
	defer file.Close()

	if header.Size == 0 {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !isAudioExt(ext) {
		ext = ".mp3"
	}
	dest := filepath.Join(s.opts.OutputDir, uploadPrefix+"_"+uuid.NewString()+ext)

	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, file); err != nil {
		f.Close()
		os.Remove(dest)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}

func isAudioExt(ext string) bool {
	switch ext {
	case ".mp3", ".wav", ".webm", ".ogg", ".m4a", ".flac", ".mp4", ".mpeg", ".mpga":
		return true
	}
	return false
}

// handleOutput serves one file from the output directory by base name
func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !safeName(name) {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.opts.OutputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if filepath.Ext(name) == ".mp3" {
		w.Header().Set("Content-Type", "audio/mpeg")
	}
	http.ServeFile(w, r, path)
}

func safeName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return name == filepath.Base(name) && !strings.ContainsAny(name, `/\`)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
