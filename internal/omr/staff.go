package omr

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Conceptual-Machines/practice-companion/internal/logger"
)

const linesPerStaff = 5

// StaffLine is one horizontal staff line
type StaffLine struct {
	YPosition int     `json:"y_position"`
	XStart    int     `json:"x_start"`
	XEnd      int     `json:"x_end"`
	Angle     float64 `json:"angle"`
}

// StaffGroup is five staff lines sorted top to bottom
type StaffGroup struct {
	Lines       [linesPerStaff]StaffLine `json:"lines"`
	TopLine     int                      `json:"top_line"`
	BottomLine  int                      `json:"bottom_line"`
	StaffHeight int                      `json:"staff_height"`
	LineSpacing float64                  `json:"line_spacing"` // mean gap between adjacent lines
}

// StaffParams tune staff-line detection
type StaffParams struct {
	Lines    LineParams
	MaxAngle float64 // degrees from horizontal
}

// DefaultStaffParams favour long, nearly straight horizontal segments
func DefaultStaffParams() StaffParams {
	return StaffParams{
		Lines:    LineParams{Threshold: 100, MinLength: 100, MaxGap: 10},
		MaxAngle: 5,
	}
}

// StaffDetector groups horizontal lines into five-line staves
type StaffDetector struct {
	lines  LineDetector
	params StaffParams
}

// NewStaffDetector creates a staff detector
func NewStaffDetector(lines LineDetector, params StaffParams) *StaffDetector {
	return &StaffDetector{lines: lines, params: params}
}

// Detect returns the staves on the page, top to bottom. Lines are chunked into
// consecutive runs of five by vertical position; a trailing run shorter than five
// is dropped. No staves is a valid result.
func (d *StaffDetector) Detect(ctx context.Context, bm *Bitmap) ([]StaffGroup, error) {
	segments, err := d.lines.DetectLines(ctx, bm, d.params.Lines)
	if err != nil {
		return nil, err
	}

	horizontal := make([]StaffLine, 0, len(segments))
	for _, s := range segments {
		angle := s.Angle()
		if math.Abs(angle) >= d.params.MaxAngle {
			continue
		}
		horizontal = append(horizontal, StaffLine{
			YPosition: (s.Y1 + s.Y2) / 2,
			XStart:    min(s.X1, s.X2),
			XEnd:      max(s.X1, s.X2),
			Angle:     angle,
		})
	}
	sort.SliceStable(horizontal, func(i, j int) bool {
		return horizontal[i].YPosition < horizontal[j].YPosition
	})

	staves := make([]StaffGroup, 0, len(horizontal)/linesPerStaff)
	for i := 0; i+linesPerStaff <= len(horizontal); i += linesPerStaff {
		group := newStaffGroup(horizontal[i : i+linesPerStaff])
		if group.StaffHeight <= 0 {
			// five fragments of one physical line
			logger.Debug("Skipping degenerate staff group", logger.Fields{
				"stage":      "staff",
				"y_position": group.TopLine,
			})
			continue
		}
		staves = append(staves, group)
	}
	return staves, nil
}

func newStaffGroup(lines []StaffLine) StaffGroup {
	var g StaffGroup
	copy(g.Lines[:], lines)
	g.TopLine = g.Lines[0].YPosition
	g.BottomLine = g.Lines[linesPerStaff-1].YPosition
	g.StaffHeight = g.BottomLine - g.TopLine

	gaps := make([]float64, linesPerStaff-1)
	for i := 1; i < linesPerStaff; i++ {
		gaps[i-1] = float64(g.Lines[i].YPosition - g.Lines[i-1].YPosition)
	}
	g.LineSpacing = stat.Mean(gaps, nil)
	return g
}
