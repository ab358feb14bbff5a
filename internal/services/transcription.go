package services

import (
	"context"
	"image"
	"time"

	"github.com/Conceptual-Machines/practice-companion/internal/harmony"
	"github.com/Conceptual-Machines/practice-companion/internal/logger"
	"github.com/Conceptual-Machines/practice-companion/internal/metrics"
	"github.com/Conceptual-Machines/practice-companion/internal/omr"
)

const (
	StageIngest  = "ingest"
	StageDetect  = "detect"
	StageAnalyze = "analyze"
)

// PageLoader turns upload bytes into a page image
type PageLoader interface {
	Load(ctx context.Context, contentType string, data []byte) (image.Image, error)
}

// PageProcessor runs structural detection over a page
type PageProcessor interface {
	Process(ctx context.Context, img image.Image) (omr.StructuralRecord, error)
}

// TranscriptionService runs upload -> detection -> harmonic analysis
type TranscriptionService struct {
	loader     PageLoader
	processor  PageProcessor
	analyzer   *harmony.Analyzer
	seed       *uint64
	sentry     *metrics.SentryMetrics
	cloudwatch *metrics.Client
}

// NewTranscriptionService wires the pipeline. A non-nil seed pins progression
// generation so identical uploads yield identical results.
func NewTranscriptionService(
	loader PageLoader,
	processor PageProcessor,
	analyzer *harmony.Analyzer,
	seed *uint64,
	cloudwatch *metrics.Client,
) *TranscriptionService {
	return &TranscriptionService{
		loader:     loader,
		processor:  processor,
		analyzer:   analyzer,
		seed:       seed,
		sentry:     metrics.NewSentryMetrics(),
		cloudwatch: cloudwatch,
	}
}

// Transcribe analyses one upload. Only input errors are returned; everything
// after a successfully decoded page yields an outcome.
func (s *TranscriptionService) Transcribe(ctx context.Context, contentType string, data []byte) (harmony.Outcome, error) {
	start := time.Now()

	img, err := timedStage(ctx, s.sentry, StageIngest, func() (image.Image, error) {
		return s.loader.Load(ctx, contentType, data)
	})
	if err != nil {
		return harmony.Outcome{}, err
	}

	record, err := timedStage(ctx, s.sentry, StageDetect, func() (omr.StructuralRecord, error) {
		return s.processor.Process(ctx, img)
	})
	if err != nil {
		return harmony.Outcome{}, err
	}

	analysisStart := time.Now()
	// a *rand.Rand per request keeps the shared analyzer free of data races
	outcome := s.analyzer.WithRand(harmony.NewRand(s.seed)).Analyze(ctx, record)
	s.sentry.RecordStage(ctx, StageAnalyze, time.Since(analysisStart), !outcome.Fallback)

	duration := time.Since(start)
	fields := logger.Fields{
		"staves":        len(record.Staves),
		"measures":      len(record.Measures),
		"key_signature": record.KeySignature,
		"tempo_found":   record.TempoBPM != nil,
	}
	if outcome.Cause != nil {
		fields["cause"] = outcome.Cause.Error()
	}
	logger.LogAnalysis(ctx, duration, outcome.Result.ConfidenceScore, outcome.Fallback, fields)
	s.sentry.RecordAnalysis(ctx, outcome.Result.ConfidenceScore, outcome.Fallback, len(record.Measures))
	s.cloudwatch.RecordAnalysis(outcome.Result.ConfidenceScore, outcome.Fallback, duration)

	return outcome, nil
}

func timedStage[T any](ctx context.Context, m *metrics.SentryMetrics, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	m.RecordStage(ctx, stage, time.Since(start), err == nil)
	return v, err
}
