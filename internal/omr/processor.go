package omr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/Conceptual-Machines/practice-companion/internal/logger"
)

// StructuralRecord aggregates every detector output for one page. Each field is
// either detected or defaulted; nothing is left unset.
type StructuralRecord struct {
	Staves        []StaffGroup  `json:"staff_lines"`
	Measures      []Measure     `json:"measures"`
	KeySignature  string        `json:"key_signature"`
	TimeSignature string        `json:"time_signature"`
	TempoBPM      *int          `json:"tempo_bpm"`
	Notes         NoteDetection `json:"notes_and_chords"`
	ImageWidth    int           `json:"image_width"`
	ImageHeight   int           `json:"image_height"`
}

// EmptyRecord is the record of a page where nothing was detected
func EmptyRecord(width, height int) StructuralRecord {
	return StructuralRecord{
		Staves:        []StaffGroup{},
		Measures:      []Measure{},
		KeySignature:  DefaultKeySignature,
		TimeSignature: DefaultTimeSignature,
		Notes:         NoteDetection{Candidates: []NoteChordCandidate{}},
		ImageWidth:    width,
		ImageHeight:   height,
	}
}

// Processor runs the detection stage over one page
type Processor struct {
	preprocessor *Preprocessor
	staves       *StaffDetector
	measures     *MeasureSegmenter
	signatures   SignatureDetector
	notes        NoteDetector
	tempo        *TempoExtractor
	timeout      time.Duration
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithSignatureDetector replaces the default C major / 4/4 detector
func WithSignatureDetector(d SignatureDetector) ProcessorOption {
	return func(p *Processor) { p.signatures = d }
}

// WithNoteDetector sets the note detector; without one notes are not attempted
func WithNoteDetector(d NoteDetector) ProcessorOption {
	return func(p *Processor) { p.notes = d }
}

// WithTempoExtractor enables tempo extraction
func WithTempoExtractor(e *TempoExtractor) ProcessorOption {
	return func(p *Processor) { p.tempo = e }
}

// WithDetectionTimeout bounds each geometric detection sub-step
func WithDetectionTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.timeout = d }
}

// NewProcessor wires the detectors. The line detector is shared by staff and
// bar-line detection.
func NewProcessor(pre *Preprocessor, lines LineDetector, staff StaffParams, bars BarParams, opts ...ProcessorOption) *Processor {
	p := &Processor{
		preprocessor: pre,
		staves:       NewStaffDetector(lines, staff),
		measures:     NewMeasureSegmenter(lines, bars),
		signatures:   DefaultSignatureDetector{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process analyses a decoded page. Only an invalid image is an error; every
// detector failure or timeout degrades to that detector's default.
func (p *Processor) Process(ctx context.Context, img image.Image) (StructuralRecord, error) {
	if img == nil || img.Bounds().Empty() {
		return StructuralRecord{}, ErrInvalidImage
	}
	bounds := img.Bounds()
	record := EmptyRecord(bounds.Dx(), bounds.Dy())

	bm, err := runBounded(ctx, p.timeout, func(ctx context.Context) (*Bitmap, error) {
		return p.preprocessor.Process(ctx, img)
	})
	switch {
	case errors.Is(err, ErrInvalidImage):
		return StructuralRecord{}, err
	case err != nil:
		degraded("preprocess", err)
	default:
		p.detectStructure(ctx, bm, &record)
	}

	if p.tempo != nil {
		record.TempoBPM = p.tempo.Extract(ctx, img)
	}
	return record, nil
}

func (p *Processor) detectStructure(ctx context.Context, bm *Bitmap, record *StructuralRecord) {
	staves, err := runBounded(ctx, p.timeout, func(ctx context.Context) ([]StaffGroup, error) {
		return p.staves.Detect(ctx, bm)
	})
	if err != nil {
		degraded("staff", err)
	} else {
		record.Staves = staves
	}

	measures, err := runBounded(ctx, p.timeout, func(ctx context.Context) ([]Measure, error) {
		return p.measures.Segment(ctx, bm, record.Staves)
	})
	if err != nil {
		degraded("measure", err)
	} else {
		record.Measures = measures
	}

	sigs, err := runBounded(ctx, p.timeout, func(ctx context.Context) (Signatures, error) {
		return p.signatures.Detect(ctx, bm, record.Staves), nil
	})
	if err != nil {
		degraded("signature", err)
	} else {
		sigs = sigs.withDefaults()
		record.KeySignature, record.TimeSignature = sigs.Key, sigs.Time
	}

	if p.notes == nil {
		return
	}
	record.Notes.Attempted = true
	candidates, err := runBounded(ctx, p.timeout, func(ctx context.Context) ([]NoteChordCandidate, error) {
		return p.notes.Detect(ctx, bm, record.Staves, record.Measures)
	})
	if err != nil {
		degraded("notes", err)
		return
	}
	if candidates != nil {
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].XPosition < candidates[j].XPosition })
		record.Notes.Candidates = candidates
	}
}

func degraded(stage string, err error) {
	logger.Warn("Detection step failed, using default", logger.Fields{
		"stage": stage,
		"error": err.Error(),
	})
}

// runBounded runs fn under timeout. Vision and OCR primitives may ignore
// cancellation, so the call runs in its own goroutine and is abandoned on
// timeout; a panic inside fn is returned as an error.
func runBounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
