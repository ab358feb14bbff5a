package omr

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrInvalidImage is returned for images with no pixels or inconsistent bounds
var ErrInvalidImage = errors.New("invalid image dimensions")

// PreprocessParams tune smoothing and local-adaptive binarization
type PreprocessParams struct {
	BlurKernel int     // odd, Gaussian kernel size
	BlockSize  int     // odd, adaptive threshold neighbourhood
	C          float64 // constant subtracted from the weighted neighbourhood mean
}

// DefaultPreprocessParams returns a 3x3 blur and an 11px Gaussian threshold block with C=2
func DefaultPreprocessParams() PreprocessParams {
	return PreprocessParams{BlurKernel: 3, BlockSize: 11, C: 2}
}

// Binarizer converts a decoded image to an inverted binary mask: intensity,
// Gaussian smoothing, adaptive Gaussian threshold, invert. Implemented by vision.Toolkit.
type Binarizer interface {
	Binarize(ctx context.Context, img image.Image, params PreprocessParams) (*Bitmap, error)
}

// Preprocessor normalizes decoded pages into bitmaps for geometric detection
type Preprocessor struct {
	binarizer Binarizer
	params    PreprocessParams
}

// NewPreprocessor creates a preprocessor over the given binarization primitive
func NewPreprocessor(binarizer Binarizer, params PreprocessParams) *Preprocessor {
	return &Preprocessor{binarizer: binarizer, params: params}
}

// Process binarizes img. A *Bitmap is already binary and inverted and is
// returned unchanged.
func (p *Preprocessor) Process(ctx context.Context, img image.Image) (*Bitmap, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}
	if bm, ok := img.(*Bitmap); ok {
		if !bm.valid() {
			return nil, ErrInvalidImage
		}
		return bm, nil
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, bounds.Dx(), bounds.Dy())
	}

	bm, err := p.binarizer.Binarize(ctx, img, p.params)
	if err != nil {
		return nil, fmt.Errorf("binarize: %w", err)
	}
	if !bm.valid() || bm.Width != bounds.Dx() || bm.Height != bounds.Dy() {
		return nil, fmt.Errorf("binarize: mask does not match %dx%d input", bounds.Dx(), bounds.Dy())
	}
	return bm, nil
}
