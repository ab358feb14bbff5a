package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/practice-companion/internal/harmony"
	"github.com/Conceptual-Machines/practice-companion/internal/ingest"
	"github.com/Conceptual-Machines/practice-companion/internal/logger"
	"github.com/Conceptual-Machines/practice-companion/internal/omr"
)

const (
	uploadField = "file"
	// multipartOverhead leaves room for boundaries and part headers above the file limit
	multipartOverhead = 1 << 20

	headerFallback    = "X-Analysis-Fallback"
	headerDeprecation = "Deprecation"
)

// Transcriber runs the analysis pipeline over one upload
type Transcriber interface {
	Transcribe(ctx context.Context, contentType string, data []byte) (harmony.Outcome, error)
}

// UploadReader reads an uploaded file under the configured size limit.
// Implemented by *ingest.Loader.
type UploadReader interface {
	ReadAll(r io.Reader) ([]byte, error)
	Limit() int64
}

// AnalysisCounter receives one call per completed analysis
type AnalysisCounter interface {
	CountAnalysis(fallback bool)
}

type TranscriptionHandler struct {
	transcriber Transcriber
	uploads     UploadReader
	counter     AnalysisCounter
}

func NewTranscriptionHandler(transcriber Transcriber, uploads UploadReader, counter AnalysisCounter) *TranscriptionHandler {
	return &TranscriptionHandler{
		transcriber: transcriber,
		uploads:     uploads,
		counter:     counter,
	}
}

// Transcribe handles POST /transcribe-sheet-music
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	limit := h.uploads.Limit()
	if limit > 0 {
		// bounds the whole multipart body; the file itself is checked by ReadAll
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("%v: limit is %d bytes", ingest.ErrTooLarge, limit))
			return
		}
		respondError(c, http.StatusBadRequest, fmt.Sprintf("missing upload: multipart field %q is required", uploadField))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read upload")
		return
	}
	defer file.Close()

	data, err := h.uploads.ReadAll(file)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		respondError(c, status, err.Error())
		return
	}

	fields := logger.WithContext(c)
	fields["filename"] = fileHeader.Filename
	fields["upload_bytes"] = len(data)

	outcome, err := h.transcriber.Transcribe(c.Request.Context(), fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Transcription failed", err, fields)
			respondError(c, status, "transcription failed")
			return
		}
		fields["error"] = err.Error()
		logger.Warn("Rejected upload", fields)
		respondError(c, status, err.Error())
		return
	}

	if h.counter != nil {
		h.counter.CountAnalysis(outcome.Fallback)
	}
	if outcome.Fallback {
		c.Header(headerFallback, "true")
	}
	c.JSON(http.StatusOK, outcome.Result)
}

// TranscribeDeprecated handles the legacy POST /analyze-sheet-music route
func (h *TranscriptionHandler) TranscribeDeprecated(c *gin.Context) {
	c.Header(headerDeprecation, "true")
	c.Header("Link", `</transcribe-sheet-music>; rel="successor-version"`)
	h.Transcribe(c)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ingest.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingest.ErrUnsupportedType),
		errors.Is(err, ingest.ErrCorruptInput),
		errors.Is(err, omr.ErrInvalidImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":      message,
		"request_id": c.GetString("request_id"),
	})
}
