package omr

import (
	"context"
	"math"
)

// Segment is a detected line segment in pixel coordinates
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Angle returns the segment's inclination in degrees folded into (-90, 90],
// so direction of travel does not matter: 0 is horizontal, 90 vertical.
func (s Segment) Angle() float64 {
	a := math.Atan2(float64(s.Y2-s.Y1), float64(s.X2-s.X1)) * 180 / math.Pi
	switch {
	case a > 90:
		a -= 180
	case a <= -90:
		a += 180
	}
	return a
}

// LineParams tune the probabilistic Hough transform
type LineParams struct {
	Threshold int // accumulator votes
	MinLength int // pixels
	MaxGap    int // pixels bridged within one segment
}

// LineDetector finds straight segments in a bitmap. No ordering is guaranteed.
type LineDetector interface {
	DetectLines(ctx context.Context, bm *Bitmap, params LineParams) ([]Segment, error)
}
