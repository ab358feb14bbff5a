package ingest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/getsentry/sentry-go"

	"github.com/Conceptual-Machines/practice-companion/internal/logger"
)

const (
	// FitzDPI renders at twice the 72 dpi PDF user space
	FitzDPI = 144.0
	// PopplerDPI is the resolution of the pdftoppm fallback
	PopplerDPI = 300
)

// PageRenderer rasterizes the first page of a PDF
type PageRenderer interface {
	RenderFirstPage(ctx context.Context, pdf []byte) (image.Image, error)
	Name() string
}

// FitzRenderer renders with MuPDF
type FitzRenderer struct {
	DPI float64
}

func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{DPI: FitzDPI}
}

func (r *FitzRenderer) Name() string { return "mupdf" }

func (r *FitzRenderer) RenderFirstPage(ctx context.Context, pdf []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return nil, errors.New("PDF has no pages")
	}
	img, err := doc.ImageDPI(0, r.DPI)
	if err != nil {
		return nil, fmt.Errorf("failed to render first page: %w", err)
	}
	return img, nil
}

// PopplerRenderer shells out to pdftoppm
type PopplerRenderer struct {
	Binary string
	DPI    int
}

func NewPopplerRenderer() *PopplerRenderer {
	return &PopplerRenderer{Binary: "pdftoppm", DPI: PopplerDPI}
}

func (r *PopplerRenderer) Name() string { return "poppler" }

func (r *PopplerRenderer) RenderFirstPage(ctx context.Context, pdf []byte) (image.Image, error) {
	dir, err := os.MkdirTemp("", "practice-companion-pdf-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "upload.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.Binary,
		"-r", fmt.Sprint(r.DPI),
		"-f", "1", "-l", "1",
		"-png", "-singlefile",
		input, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s failed: %w (%s)", r.Binary, err, out)
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("%s produced no page: %w", r.Binary, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page: %w", err)
	}
	return img, nil
}

// ChainRenderer tries each renderer in order until one succeeds
type ChainRenderer []PageRenderer

func (c ChainRenderer) Name() string { return "chain" }

func (c ChainRenderer) RenderFirstPage(ctx context.Context, pdf []byte) (image.Image, error) {
	var errs []error
	for _, r := range c {
		img, err := r.RenderFirstPage(ctx, pdf)
		if err == nil {
			return img, nil
		}
		logger.Warn("PDF renderer failed", logger.Fields{
			"renderer": r.Name(),
			"error":    err.Error(),
		})
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}
	if len(errs) == 0 {
		return nil, errors.New("no PDF renderers configured")
	}
	err := errors.Join(errs...)
	logger.LogToSentry(sentry.LevelWarning, "Every PDF renderer failed", logger.Fields{
		"stage":     "ingest",
		"renderers": len(c),
		"error":     err.Error(),
	})
	return nil, err
}

// DefaultRenderer is MuPDF with pdftoppm as fallback
func DefaultRenderer() PageRenderer {
	return ChainRenderer{NewFitzRenderer(), NewPopplerRenderer()}
}
