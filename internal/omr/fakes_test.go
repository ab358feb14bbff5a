package omr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"time"
)

// thresholdBinarizer marks dark pixels as ink
type thresholdBinarizer struct {
	calls atomic.Int32
}

func (b *thresholdBinarizer) Binarize(_ context.Context, img image.Image, _ PreprocessParams) (*Bitmap, error) {
	b.calls.Add(1)
	bounds := img.Bounds()
	bm := NewBitmap(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			bm.Set(x-bounds.Min.X, y-bounds.Min.Y, g.Y < 128)
		}
	}
	return bm, nil
}

type failingBinarizer struct{}

func (failingBinarizer) Binarize(context.Context, image.Image, PreprocessParams) (*Bitmap, error) {
	return nil, errors.New("opencv unavailable")
}

// fakeLines answers staff and bar-line queries from fixed segment sets, told
// apart by their Hough threshold.
type fakeLines struct {
	horizontal []Segment
	vertical   []Segment
	err        error
	delay      time.Duration
	calls      atomic.Int32
}

func (f *fakeLines) DetectLines(ctx context.Context, _ *Bitmap, params LineParams) ([]Segment, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if params.Threshold >= DefaultStaffParams().Lines.Threshold {
		return f.horizontal, nil
	}
	return f.vertical, nil
}

type fakeRecognizer struct {
	text  string
	err   error
	delay time.Duration
}

func (f fakeRecognizer) RecognizeText(ctx context.Context, _ image.Image) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

type fakeNotes struct {
	candidates []NoteChordCandidate
	err        error
}

func (f fakeNotes) Detect(context.Context, *Bitmap, []StaffGroup, []Measure) ([]NoteChordCandidate, error) {
	return f.candidates, f.err
}

type fixedSignatures Signatures

func (f fixedSignatures) Detect(context.Context, *Bitmap, []StaffGroup) Signatures {
	return Signatures(f)
}

// staffSegments draws five horizontal lines per top position, 10px apart
func staffSegments(tops ...int) []Segment {
	var segs []Segment
	for _, top := range tops {
		for i := 0; i < linesPerStaff; i++ {
			y := top + i*10
			segs = append(segs, Segment{X1: 10, Y1: y, X2: 500, Y2: y})
		}
	}
	return segs
}

// barSegments draws vertical bar lines spanning y 90..150 at each x
func barSegments(xs ...int) []Segment {
	segs := make([]Segment, 0, len(xs))
	for _, x := range xs {
		segs = append(segs, Segment{X1: x, Y1: 90, X2: x, Y2: 150})
	}
	return segs
}

func whitePage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

type fakeHeadLocator struct {
	heads     []NoteHead
	err       error
	gotStaves int
}

func (f *fakeHeadLocator) Locate(_ context.Context, _ *Bitmap, staves []StaffGroup) ([]NoteHead, error) {
	f.gotStaves = len(staves)
	return f.heads, f.err
}
