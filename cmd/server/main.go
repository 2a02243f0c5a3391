package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dokbae/voice-todo/internal/clock"
	"github.com/dokbae/voice-todo/internal/config"
	"github.com/dokbae/voice-todo/internal/database"
	"github.com/dokbae/voice-todo/internal/extract"
	"github.com/dokbae/voice-todo/internal/handlers"
	"github.com/dokbae/voice-todo/internal/logger"
	"github.com/dokbae/voice-todo/internal/middleware"
	"github.com/dokbae/voice-todo/internal/services/ai"
	"github.com/dokbae/voice-todo/internal/services/voice"
	"github.com/dokbae/voice-todo/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for API call logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("extractor", cfg.Extractor),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to database and run the idempotent migration
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	if err := db.Migrate(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	// The temporal anchor all relative date expressions resolve against
	wallClock, err := clock.NewWall(cfg.Timezone)
	if err != nil {
		zapLogger.Fatal("failed_to_load_timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	// OpenAI provider serves both transcription and the LLM extractor
	var provider *ai.OpenAIProvider
	if cfg.OpenAIKey != "" {
		provider = ai.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			cfg.TranscribeModel,
			zapLogger,
			debugMode,
		)
	} else {
		zapLogger.Warn("openai_key_not_configured_voice_analysis_degraded")
	}

	strategy := buildStrategy(cfg, provider, zapLogger)

	var transcriber ai.Transcriber
	if provider != nil {
		transcriber = provider
	} else {
		transcriber = unavailableTranscriber{}
	}

	analyzer := voice.NewAnalyzer(transcriber, strategy, wallClock, zapLogger,
		voice.WithTempDir(cfg.TempDir),
		voice.WithSilenceThreshold(cfg.SilenceThreshold),
		voice.WithCallTimeout(cfg.ExternalCallTimeout),
	)

	// Repositories and handlers
	taskRepo := database.NewTaskRepository(db)
	taskHandler := handlers.NewTaskHandler(taskRepo, zapLogger)
	voiceHandler := handlers.NewVoiceHandler(analyzer, zapLogger)
	healthChecker := handlers.NewHealthChecker(db)

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// Voice analysis: multipart upload, larger body cap, rate limited
	// because every hit costs a transcription call
	voiceRouter := r.PathPrefix("").Subrouter()
	voiceRouter.Use(middleware.MaxRequestSize(middleware.MaxAudioUploadSize))
	voiceRouter.Use(rateLimitMW)
	voiceHandler.RegisterRoutes(voiceRouter)

	// Task CRUD: JSON bodies only
	tasksRouter := r.PathPrefix("/tasks").Subrouter()
	tasksRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	tasksRouter.Use(middleware.JSONContentType)
	taskHandler.RegisterRoutes(tasksRouter)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    2 * time.Minute, // audio uploads can be slow
		WriteTimeout:   2 * time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// buildStrategy picks the extraction strategy from configuration. Both
// strategies honor the same contract, so the analyzer never knows which
// one resolves the transcript.
func buildStrategy(cfg *config.Config, provider *ai.OpenAIProvider, logger *zap.Logger) extract.Strategy {
	if cfg.Extractor == config.ExtractorLLM && provider != nil {
		logger.Info("using_llm_extractor", zap.String("model", cfg.AIModel))
		return provider
	}
	if cfg.Extractor == config.ExtractorLLM {
		logger.Warn("llm_extractor_requested_but_no_api_key_falling_back_to_lexical")
	}
	return extract.NewLexical()
}

// unavailableTranscriber stands in when no API key is configured; every
// recording degrades to the recognition-failure sentinel.
type unavailableTranscriber struct{}

func (unavailableTranscriber) Transcribe(_ context.Context, _ io.Reader, _ string) (string, error) {
	return "", fmt.Errorf("transcription service not configured")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
