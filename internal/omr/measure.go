package omr

import (
	"context"
	"math"
	"sort"
)

// Measure is the horizontal span between two consecutive bar lines
type Measure struct {
	StartX        int `json:"start_x"`
	EndX          int `json:"end_x"`
	Width         int `json:"width"`
	MeasureNumber int `json:"measure_number"`
}

// BarParams tune bar-line detection
type BarParams struct {
	Lines   LineParams
	MaxTilt float64 // degrees away from vertical
}

// DefaultBarParams accept shorter segments than staff detection, within 15° of vertical
func DefaultBarParams() BarParams {
	return BarParams{
		Lines:   LineParams{Threshold: 50, MinLength: 50, MaxGap: 5},
		MaxTilt: 15,
	}
}

// MeasureSegmenter derives measures from vertical bar lines
type MeasureSegmenter struct {
	lines  LineDetector
	params BarParams
}

// NewMeasureSegmenter creates a measure segmenter
func NewMeasureSegmenter(lines LineDetector, params BarParams) *MeasureSegmenter {
	return &MeasureSegmenter{lines: lines, params: params}
}

// Segment returns one measure per adjacent pair of bar lines, sorted by x and
// numbered from 1. Only segments that cross a staff count as bar lines, and a
// pair at the same x is skipped, so N bar lines yield at most N-1 measures.
// Without staves, or with fewer than two bar lines, there are no measures.
func (s *MeasureSegmenter) Segment(ctx context.Context, bm *Bitmap, staves []StaffGroup) ([]Measure, error) {
	if len(staves) == 0 {
		return []Measure{}, nil
	}

	segments, err := s.lines.DetectLines(ctx, bm, s.params.Lines)
	if err != nil {
		return nil, err
	}

	var bars []int
	for _, seg := range segments {
		if 90-math.Abs(seg.Angle()) >= s.params.MaxTilt {
			continue
		}
		if !crossesStaff(seg, staves) {
			continue
		}
		bars = append(bars, (seg.X1+seg.X2)/2)
	}
	sort.Ints(bars)

	measures := make([]Measure, 0, max(len(bars)-1, 0))
	for i := 1; i < len(bars); i++ {
		start, end := bars[i-1], bars[i]
		if end <= start {
			// duplicate detection of the same bar line
			continue
		}
		measures = append(measures, Measure{
			StartX:        start,
			EndX:          end,
			Width:         end - start,
			MeasureNumber: len(measures) + 1,
		})
	}
	return measures, nil
}

func crossesStaff(seg Segment, staves []StaffGroup) bool {
	top, bottom := min(seg.Y1, seg.Y2), max(seg.Y1, seg.Y2)
	for _, st := range staves {
		if top <= st.BottomLine && bottom >= st.TopLine {
			return true
		}
	}
	return false
}
