package vision

import (
	"context"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/Conceptual-Machines/practice-companion/internal/omr"
)

// Toolkit implements the OMR vision primitives on OpenCV
type Toolkit struct{}

// NewToolkit returns an OpenCV-backed toolkit
func NewToolkit() *Toolkit {
	return &Toolkit{}
}

// Binarize converts img to gray, smooths it, applies a Gaussian adaptive
// threshold and inverts the result so ink is foreground.
func (t *Toolkit) Binarize(ctx context.Context, img image.Image, params omr.PreprocessParams) (*omr.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := oddAtLeast(params.BlurKernel, 1)
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(blurred, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
		oddAtLeast(params.BlockSize, 3), float32(params.C))

	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(binary, &inverted)

	return matToBitmap(inverted)
}

// DetectLines runs the probabilistic Hough transform at 1px / 1° resolution
func (t *Toolkit) DetectLines(ctx context.Context, bm *omr.Bitmap, params omr.LineParams) ([]omr.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := bitmapToMat(bm)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(src, &lines, 1, math.Pi/180, params.Threshold,
		float32(params.MinLength), float32(params.MaxGap))

	segments := make([]omr.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, omr.Segment{
			X1: int(v[0]), Y1: int(v[1]),
			X2: int(v[2]), Y2: int(v[3]),
		})
	}
	return segments, nil
}

// imageToMat copies any image into a 4-channel RGBA Mat
func imageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				rgba.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
			}
		}
	}
	return gocv.NewMatFromBytes(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
}

func bitmapToMat(bm *omr.Bitmap) (gocv.Mat, error) {
	pix := make([]byte, len(bm.Ink))
	for i, ink := range bm.Ink {
		if ink {
			pix[i] = 0xff
		}
	}
	return gocv.NewMatFromBytes(bm.Height, bm.Width, gocv.MatTypeCV8UC1, pix)
}

func matToBitmap(m gocv.Mat) (*omr.Bitmap, error) {
	if m.Empty() || m.Channels() != 1 {
		return nil, fmt.Errorf("expected single-channel mask, got %d channels", m.Channels())
	}
	bm := omr.NewBitmap(m.Cols(), m.Rows())
	pix := m.ToBytes()
	if len(pix) != len(bm.Ink) {
		return nil, fmt.Errorf("mask has %d bytes, want %d", len(pix), len(bm.Ink))
	}
	for i, v := range pix {
		bm.Ink[i] = v > 0
	}
	return bm, nil
}

func oddAtLeast(n, floor int) int {
	if n < floor {
		n = floor
	}
	if n%2 == 0 {
		n++
	}
	return n
}
