package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/lexiqai/speech-coach/internal/config"
	"github.com/lexiqai/speech-coach/internal/observability"
	"github.com/lexiqai/speech-coach/internal/ui"
)

func main() {
	once := flag.Bool("once", false, "process one file (or one microphone phrase) and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogPretty)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics(reg)
	}

	if *once {
		os.Exit(runOnce(cfg, flag.Arg(0), logger, metrics))
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("grpc_health_port", cfg.GRPCHealthPort).
		Str("output_dir", absOrSelf(cfg.OutputDir)).
		Str("stt_backend", cfg.STTBackend).
		Str("llm_backend", cfg.LLMBackend).
		Str("tts_backend", cfg.TTSBackend).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Bool("playback_enabled", cfg.PlaybackEnabled).
		Msg("Speech Coach starting")

	hub := ui.NewEventHub(logger)
	a, err := wire(cfg, hub, logger, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to wire pipeline")
	}

	uiOpts := ui.Options{
		OutputDir:          cfg.OutputDir,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Checks:             a.readinessChecks(cfg.OutputDir),
	}
	if cfg.MetricsEnabled {
		uiOpts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts. WriteTimeout covers a whole run,
	// including every capture attempt.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      ui.NewServer(a.orch, hub, uiOpts, logger).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC health service
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCHealthPort))
	if err != nil {
		logger.Fatal().Err(err).Str("port", cfg.GRPCHealthPort).Msg("Failed to listen for gRPC health")
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	healthServer.Shutdown()
	hub.Close()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	grpcServer.GracefulStop()
	if a.playback != nil {
		a.playback.Close()
	}

	logger.Info().Msg("Server exited gracefully")
}

// runOnce processes path (or the microphone when empty), prints the result
// as JSON and waits for playback to finish. It returns the exit code.
func runOnce(cfg *config.Config, path string, logger zerolog.Logger, metrics *observability.Metrics) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := wire(cfg, nil, logger, metrics)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to wire pipeline")
		return 1
	}

	run, err := a.orch.Process(ctx, path)
	resp := run.Response()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(resp)

	if a.playback != nil {
		a.playback.Wait()
		a.playback.Close()
	}
	if err != nil {
		return 1
	}
	return 0
}
