package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"

	"github.com/Conceptual-Machines/practice-companion/internal/observability"
)

const geminiUserRole = "user"

// GeminiRecognizer reads page text with a Gemini vision model
type GeminiRecognizer struct {
	client *genai.Client
	model  string
}

// NewGeminiRecognizer creates a Gemini recognizer
func NewGeminiRecognizer(ctx context.Context, apiKey, model string) (*GeminiRecognizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiRecognizer{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider name
func (r *GeminiRecognizer) Name() string {
	return providerNameGemini
}

// RecognizeText sends the page as an inline PNG blob
func (r *GeminiRecognizer) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	transaction := sentry.StartTransaction(ctx, "gemini.recognize_text")
	defer transaction.Finish()
	transaction.SetTag("model", r.model)
	transaction.SetTag("provider", providerNameGemini)

	trace := observability.GetClient().StartTrace(ctx, "ocr.recognize_text", map[string]interface{}{
		"provider": providerNameGemini,
	})
	defer trace.Finish()
	gen := trace.Generation("tempo-ocr", map[string]interface{}{"model": r.model})
	defer gen.Finish()

	pngBytes, err := encodePNG(img)
	if err != nil {
		transaction.SetTag("success", "false")
		return "", err
	}

	contents := []*genai.Content{{
		Role: geminiUserRole,
		Parts: []*genai.Part{
			{Text: recognitionPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeTypePNG, Data: pngBytes}},
		},
	}}

	span := transaction.StartChild("gemini.api_call")
	start := time.Now()
	result, err := r.client.Models.GenerateContent(ctx, r.model, contents, nil)
	span.Finish()
	if err != nil {
		log.Printf("❌ GEMINI OCR REQUEST FAILED after %v: %v", time.Since(start), err)
		transaction.SetTag("success", "false")
		gen.SetLevel("ERROR")
		sentry.CaptureException(err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(candidateText(result))
	gen.LogTextResponse(r.model, recognitionPrompt, text)
	transaction.SetTag("success", "true")
	return text, nil
}

// candidateText joins the text parts of the first candidate
func candidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
