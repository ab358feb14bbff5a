package omr

import (
	"context"
	"image"
	"regexp"
	"strconv"
	"time"

	"github.com/Conceptual-Machines/practice-companion/internal/logger"
)

// TextRecognizer returns best-effort text found in an image
type TextRecognizer interface {
	RecognizeText(ctx context.Context, img image.Image) (string, error)
}

// tempoPatterns are tried in order; the first match wins. Tempo words only
// pick up a number on the same line.
var tempoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:♩|𝅘𝅥|\bq)\s*=\s*(\d+)`),
	regexp.MustCompile(`(?i)BPM\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*BPM`),
	regexp.MustCompile(`(?i)Allegro[^\d\n]*(\d+)`),
	regexp.MustCompile(`(?i)Andante[^\d\n]*(\d+)`),
	regexp.MustCompile(`(?i)Moderato[^\d\n]*(\d+)`),
	regexp.MustCompile(`(?i)(?:Adagio|Largo|Lento|Presto|Vivace|Allegretto)[^\d\n]*(\d+)`),
}

// ParseTempo finds a tempo marking in recognized text
func ParseTempo(text string) (int, bool) {
	for _, re := range tempoPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		bpm, err := strconv.Atoi(m[1])
		if err != nil || bpm <= 0 {
			continue
		}
		return bpm, true
	}
	return 0, false
}

// TempoExtractor reads a tempo marking from the raw page
type TempoExtractor struct {
	recognizer TextRecognizer
	timeout    time.Duration
}

// NewTempoExtractor creates an extractor; timeout <= 0 means no limit beyond ctx
func NewTempoExtractor(recognizer TextRecognizer, timeout time.Duration) *TempoExtractor {
	return &TempoExtractor{recognizer: recognizer, timeout: timeout}
}

// Extract returns the tempo in BPM, or nil when none was found or recognition failed
func (e *TempoExtractor) Extract(ctx context.Context, img image.Image) *int {
	text, err := runBounded(ctx, e.timeout, func(ctx context.Context) (string, error) {
		return e.recognizer.RecognizeText(ctx, img)
	})
	if err != nil {
		logger.Warn("Could not extract tempo marking", logger.Fields{
			"stage": "tempo",
			"error": err.Error(),
		})
		return nil
	}

	bpm, ok := ParseTempo(text)
	if !ok {
		return nil
	}
	return &bpm
}
