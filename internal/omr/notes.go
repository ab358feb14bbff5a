package omr

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DurationClass is a note value read from stem and flag geometry
type DurationClass string

const (
	DurationWhole     DurationClass = "whole"
	DurationHalf      DurationClass = "half"
	DurationQuarter   DurationClass = "quarter"
	DurationEighth    DurationClass = "eighth"
	DurationSixteenth DurationClass = "sixteenth"
	DurationUnknown   DurationClass = "unknown"
)

// NoteChordCandidate is a set of simultaneous pitches at one horizontal position
type NoteChordCandidate struct {
	XPosition int           `json:"x_position"`
	Pitches   []string      `json:"pitches"`
	Duration  DurationClass `json:"duration"`
}

// NoteDetection records whether note detection ran and what it found. Attempted
// with no candidates means nothing pitched was found.
type NoteDetection struct {
	Attempted  bool                 `json:"attempted"`
	Candidates []NoteChordCandidate `json:"candidates"`
}

// NoteDetector finds note and chord candidates, ordered by x
type NoteDetector interface {
	Detect(ctx context.Context, bm *Bitmap, staves []StaffGroup, measures []Measure) ([]NoteChordCandidate, error)
}

// StubNoteDetector finds nothing
type StubNoteDetector struct{}

func (StubNoteDetector) Detect(context.Context, *Bitmap, []StaffGroup, []Measure) ([]NoteChordCandidate, error) {
	return []NoteChordCandidate{}, nil
}

// NoteHead is a single located note head
type NoteHead struct {
	X, Y     int
	Pitch    string
	Duration DurationClass
}

// NoteHeadLocator finds note heads and assigns them pitches from staff position
type NoteHeadLocator interface {
	Locate(ctx context.Context, bm *Bitmap, staves []StaffGroup) ([]NoteHead, error)
}

// GroupingNoteDetector turns located note heads into chord candidates by
// grouping heads that share a measure and sit within Tolerance pixels of each
// other horizontally.
type GroupingNoteDetector struct {
	Heads     NoteHeadLocator
	Tolerance int
}

func (d GroupingNoteDetector) Detect(ctx context.Context, bm *Bitmap, staves []StaffGroup, measures []Measure) ([]NoteChordCandidate, error) {
	heads, err := d.Heads.Locate(ctx, bm, staves)
	if err != nil {
		return nil, err
	}
	return GroupNoteHeads(heads, measures, d.Tolerance), nil
}

// GroupNoteHeads clusters note heads into chords. Heads are ordered by x; a head
// joins the open cluster when it lies in the same measure and within tolerance
// of the cluster's first head. Each candidate sits at the mean x of its heads
// and takes the duration of its first head.
func GroupNoteHeads(heads []NoteHead, measures []Measure, tolerance int) []NoteChordCandidate {
	sorted := make([]NoteHead, len(heads))
	copy(sorted, heads)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		// low to high pitch reads bottom to top
		return sorted[i].Y > sorted[j].Y
	})

	candidates := make([]NoteChordCandidate, 0, len(sorted))
	var cluster []NoteHead
	flush := func() {
		if len(cluster) == 0 {
			return
		}
		xs := make([]float64, len(cluster))
		pitches := make([]string, len(cluster))
		for i, h := range cluster {
			xs[i] = float64(h.X)
			pitches[i] = h.Pitch
		}
		duration := cluster[0].Duration
		if duration == "" {
			duration = DurationUnknown
		}
		candidates = append(candidates, NoteChordCandidate{
			XPosition: int(math.Round(stat.Mean(xs, nil))),
			Pitches:   pitches,
			Duration:  duration,
		})
		cluster = nil
	}

	for _, h := range sorted {
		if len(cluster) > 0 {
			first := cluster[0]
			if h.X-first.X > tolerance || measureIndex(first.X, measures) != measureIndex(h.X, measures) {
				flush()
			}
		}
		cluster = append(cluster, h)
	}
	flush()
	return candidates
}

// measureIndex returns the index of the measure containing x, or -1
func measureIndex(x int, measures []Measure) int {
	for i, m := range measures {
		if x >= m.StartX && x < m.EndX {
			return i
		}
	}
	return -1
}
