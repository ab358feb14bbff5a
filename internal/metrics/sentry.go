package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records span-based metrics in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // spans are dropped when no Sentry client is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordStage records one pipeline stage (ingest, detect, analyze)
func (m *SentryMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "pipeline."+stage)
	defer span.Finish()

	span.SetTag("stage", stage)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Pipeline stage: %s", stage)
}

// RecordAnalysis records the quality signals of one analysis
func (m *SentryMetrics) RecordAnalysis(ctx context.Context, confidence float64, fallback bool, measures int) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("analysis.fallback", fmt.Sprintf("%t", fallback))
		transaction.SetData("analysis.confidence", confidence)
		transaction.SetData("analysis.measures", measures)
	}

	span := sentry.StartSpan(ctx, "analysis.result")
	defer span.Finish()

	span.SetTag("fallback", fmt.Sprintf("%t", fallback))
	span.SetData("confidence", confidence)
	span.SetData("measures", measures)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Analysis confidence %.2f", confidence)
}
