package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/practice-companion/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/practice-companion/internal/api/middleware"
	"github.com/Conceptual-Machines/practice-companion/internal/config"
	"github.com/Conceptual-Machines/practice-companion/internal/metrics"
)

// Dependencies are the collaborators the router hands to its handlers
type Dependencies struct {
	Config      *config.Config
	Version     string
	Transcriber handlers.Transcriber
	Uploads     handlers.UploadReader
	OCRProvider string
	CloudWatch  *metrics.Client
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.CloudWatch))

	// CORS middleware
	router.Use(apimiddleware.CORS(deps.Config.CORSAllowedOrigins))

	healthHandler := handlers.NewHealthHandler(deps.Version, deps.OCRProvider)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(deps.Version, deps.OCRProvider)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	transcriptionHandler := handlers.NewTranscriptionHandler(deps.Transcriber, deps.Uploads, metricsHandler)
	router.POST("/transcribe-sheet-music", transcriptionHandler.Transcribe)
	router.POST("/analyze-sheet-music", transcriptionHandler.TranscribeDeprecated)

	router.POST("/suggest-config", handlers.SuggestConfig)

	return router
}
