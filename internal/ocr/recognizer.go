package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/Conceptual-Machines/practice-companion/internal/config"
)

const (
	providerNameOpenAI = "openai"
	providerNameGemini = "gemini"
	mimeTypePNG        = "image/png"

	// recognitionPrompt asks a vision model to act as plain OCR
	recognitionPrompt = "Transcribe all printed text on this sheet music page exactly as written, " +
		"including tempo markings such as \"Allegro\", \"♩ = 120\" or \"90 BPM\". " +
		"Return only the text, one line per text block, with no commentary."
)

// ErrDisabled is returned when no text recognition provider is configured
var ErrDisabled = errors.New("text recognition disabled")

// Recognizer extracts best-effort text from an image
type Recognizer interface {
	RecognizeText(ctx context.Context, img image.Image) (string, error)
	Name() string
}

// DisabledRecognizer is used when no provider is configured
type DisabledRecognizer struct{}

func (DisabledRecognizer) RecognizeText(context.Context, image.Image) (string, error) {
	return "", ErrDisabled
}

func (DisabledRecognizer) Name() string { return config.OCRProviderNone }

// NewRecognizer returns the recognizer for the configured provider
func NewRecognizer(ctx context.Context, cfg *config.Config) (Recognizer, error) {
	switch strings.ToLower(cfg.OCRProvider) {
	case config.OCRProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		return NewOpenAIRecognizer(cfg.OpenAIAPIKey, cfg.OCRModel), nil

	case config.OCRProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		return NewGeminiRecognizer(ctx, cfg.GeminiAPIKey, cfg.OCRModel)

	case config.OCRProviderNone, "":
		return DisabledRecognizer{}, nil

	default:
		return nil, fmt.Errorf("unknown OCR provider: %s (allowed: openai, gemini, none)", cfg.OCRProvider)
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
