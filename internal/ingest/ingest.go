package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Conceptual-Machines/practice-companion/internal/logger"
)

const (
	TypeJPEG = "image/jpeg"
	TypePNG  = "image/png"
	TypeGIF  = "image/gif"
	TypePDF  = "application/pdf"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrCorruptInput    = errors.New("could not decode upload")
	ErrTooLarge        = errors.New("upload too large")
)

var allowedTypes = map[string]bool{
	TypeJPEG: true,
	TypePNG:  true,
	TypeGIF:  true,
	TypePDF:  true,
}

// genericTypes are declared types that say nothing about the payload
var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// Loader turns an uploaded file into the single page image that gets analysed
type Loader struct {
	renderer PageRenderer
	maxBytes int64
}

// NewLoader creates a loader. maxBytes <= 0 disables the size check.
func NewLoader(renderer PageRenderer, maxBytes int64) *Loader {
	return &Loader{renderer: renderer, maxBytes: maxBytes}
}

// Limit is the largest accepted upload in bytes, 0 when unlimited
func (l *Loader) Limit() int64 {
	return max(l.maxBytes, 0)
}

// ReadAll reads an upload body, refusing anything above the size limit
func (l *Loader) ReadAll(r io.Reader) ([]byte, error) {
	if l.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, l.maxBytes)
	}
	return data, nil
}

// ResolveType normalizes the declared content type and sniffs the payload when the
// client sent nothing useful. The result is not checked against the allow list.
func ResolveType(declared string, data []byte) string {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	if mediaType == "image/jpg" || mediaType == "image/pjpeg" {
		mediaType = TypeJPEG
	}
	if genericTypes[mediaType] && len(data) > 0 {
		mediaType = mimetype.Detect(data).String()
		if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
			mediaType = parsed
		}
	}
	return mediaType
}

// Allowed reports whether a resolved content type can be analysed
func Allowed(contentType string) bool {
	return allowedTypes[contentType]
}

// Load validates and decodes an upload. PDFs contribute their first page only.
func (l *Loader) Load(ctx context.Context, declared string, data []byte) (image.Image, error) {
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, l.maxBytes)
	}

	contentType := ResolveType(declared, data)
	if !Allowed(contentType) {
		return nil, fmt.Errorf("%w: %s (allowed: jpeg, png, gif, pdf)", ErrUnsupportedType, contentType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptInput)
	}

	if contentType == TypePDF {
		if l.renderer == nil {
			return nil, fmt.Errorf("%w: no PDF renderer configured", ErrCorruptInput)
		}
		img, err := l.renderer.RenderFirstPage(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
		}
		return img, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
	}
	logger.Debug("Decoded upload", logger.Fields{
		"content_type": contentType,
		"format":       format,
		"width":        img.Bounds().Dx(),
		"height":       img.Bounds().Dy(),
	})
	return img, nil
}
