package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/Conceptual-Machines/practice-companion/internal/observability"
)

// OpenAIRecognizer reads page text with a vision model over the Responses API
type OpenAIRecognizer struct {
	client *openai.Client
	model  string
}

// NewOpenAIRecognizer creates an OpenAI recognizer
func NewOpenAIRecognizer(apiKey, model string, opts ...option.RequestOption) *OpenAIRecognizer {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIRecognizer{
		client: &client,
		model:  model,
	}
}

// Name returns the provider name
func (r *OpenAIRecognizer) Name() string {
	return providerNameOpenAI
}

// RecognizeText sends the page as an input_image and returns the output text
func (r *OpenAIRecognizer) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	transaction := sentry.StartTransaction(ctx, "openai.recognize_text")
	defer transaction.Finish()
	transaction.SetTag("model", r.model)
	transaction.SetTag("provider", providerNameOpenAI)

	trace := observability.GetClient().StartTrace(ctx, "ocr.recognize_text", map[string]interface{}{
		"provider": providerNameOpenAI,
	})
	defer trace.Finish()
	gen := trace.Generation("tempo-ocr", map[string]interface{}{"model": r.model})
	defer gen.Finish()

	pngBytes, err := encodePNG(img)
	if err != nil {
		transaction.SetTag("success", "false")
		return "", err
	}
	dataURL := "data:" + mimeTypePNG + ";base64," + base64.StdEncoding.EncodeToString(pngBytes)

	params := responses.ResponseNewParams{
		Model: r.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(responses.ResponseInputMessageContentListParam{
					{OfInputText: &responses.ResponseInputTextParam{Text: recognitionPrompt}},
					{OfInputImage: &responses.ResponseInputImageParam{
						ImageURL: openai.String(dataURL),
						Detail:   responses.ResponseInputImageDetailHigh,
					}},
				}, responses.EasyInputMessageRoleUser),
			},
		},
	}

	span := transaction.StartChild("openai.api_call")
	start := time.Now()
	resp, err := r.client.Responses.New(ctx, params)
	span.Finish()
	if err != nil {
		log.Printf("❌ OPENAI OCR REQUEST FAILED after %v: %v", time.Since(start), err)
		transaction.SetTag("success", "false")
		gen.SetLevel("ERROR")
		sentry.CaptureException(err)
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	gen.LogOpenAIResponse(r.model, recognitionPrompt, resp)
	transaction.SetTag("success", "true")
	transaction.SetData("input_tokens", resp.Usage.InputTokens)
	transaction.SetData("output_tokens", resp.Usage.OutputTokens)
	return strings.TrimSpace(resp.OutputText()), nil
}
