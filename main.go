package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/practice-companion/internal/api"
	"github.com/Conceptual-Machines/practice-companion/internal/config"
	"github.com/Conceptual-Machines/practice-companion/internal/harmony"
	"github.com/Conceptual-Machines/practice-companion/internal/ingest"
	"github.com/Conceptual-Machines/practice-companion/internal/logger"
	"github.com/Conceptual-Machines/practice-companion/internal/metrics"
	"github.com/Conceptual-Machines/practice-companion/internal/observability"
	"github.com/Conceptual-Machines/practice-companion/internal/ocr"
	"github.com/Conceptual-Machines/practice-companion/internal/omr"
	"github.com/Conceptual-Machines/practice-companion/internal/services"
	"github.com/Conceptual-Machines/practice-companion/internal/theory"
	"github.com/Conceptual-Machines/practice-companion/internal/vision"
)

const (
	sentryFlushTimeout = 2 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	ctx := context.Background()
	logger.SetDebug(cfg.Debug)

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "practice-companion@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Debug,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	observability.InitializeLangfuse(ctx, cfg)

	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load detector tuning:", err)
	}

	recognizer, err := ocr.NewRecognizer(ctx, cfg)
	if err != nil {
		log.Printf("⚠️  Text recognition disabled: %v", err)
		recognizer = ocr.DisabledRecognizer{}
	}
	log.Printf("🔤 Text recognition provider: %s", recognizer.Name())

	catalogue, err := harmony.DefaultCatalogue()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load progression catalogue:", err)
	}

	toolkit := vision.NewToolkit()
	processor := omr.NewProcessor(
		omr.NewPreprocessor(toolkit, tuning.PreprocessParams()),
		toolkit,
		tuning.StaffParams(),
		tuning.BarParams(),
		omr.WithNoteDetector(omr.StubNoteDetector{}),
		omr.WithTempoExtractor(omr.NewTempoExtractor(recognizer, cfg.OCRTimeout)),
		omr.WithDetectionTimeout(cfg.DetectionTimeout),
	)

	loader := ingest.NewLoader(ingest.DefaultRenderer(), cfg.MaxUploadBytes)
	transcriber := services.NewTranscriptionService(
		loader,
		processor,
		harmony.NewAnalyzer(theory.Engine{}, catalogue, nil),
		cfg.RandomSeed,
		cloudwatch,
	)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(api.Dependencies{
		Config:      cfg,
		Version:     GetVersion(),
		Transcriber: transcriber,
		Uploads:     loader,
		OCRProvider: recognizer.Name(),
		CloudWatch:  cloudwatch,
	})

	log.Printf("🚀 Starting server on %s", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
