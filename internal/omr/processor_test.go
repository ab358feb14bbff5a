package omr

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shortTimeout = 20 * time.Millisecond
	timeoutDelay = 2 * time.Second
)

func newTestProcessor(lines LineDetector, opts ...ProcessorOption) *Processor {
	pre := NewPreprocessor(&thresholdBinarizer{}, DefaultPreprocessParams())
	return NewProcessor(pre, lines, DefaultStaffParams(), DefaultBarParams(), opts...)
}

func TestProcessorBuildsCompleteRecord(t *testing.T) {
	lines := &fakeLines{
		horizontal: staffSegments(100),
		vertical:   barSegments(10, 130, 250, 400),
	}
	p := newTestProcessor(lines,
		WithNoteDetector(fakeNotes{candidates: []NoteChordCandidate{
			{XPosition: 200, Pitches: []string{"G4"}, Duration: DurationQuarter},
			{XPosition: 50, Pitches: []string{"C4", "E4"}, Duration: DurationHalf},
		}}),
		WithTempoExtractor(NewTempoExtractor(fakeRecognizer{text: "♩ = 100"}, time.Second)),
		WithSignatureDetector(fixedSignatures{Key: "G", Time: ""}),
		WithDetectionTimeout(time.Second),
	)

	record, err := p.Process(context.Background(), whitePage(500, 300))
	require.NoError(t, err)

	assert.Len(t, record.Staves, 1)
	assert.Len(t, record.Measures, 3)
	assert.Equal(t, "G", record.KeySignature)
	assert.Equal(t, DefaultTimeSignature, record.TimeSignature)
	require.NotNil(t, record.TempoBPM)
	assert.Equal(t, 100, *record.TempoBPM)
	assert.True(t, record.Notes.Attempted)
	require.Len(t, record.Notes.Candidates, 2)
	assert.Equal(t, 50, record.Notes.Candidates[0].XPosition)
	assert.Equal(t, 500, record.ImageWidth)
	assert.Equal(t, 300, record.ImageHeight)
}

func TestProcessorInvalidImageIsAnError(t *testing.T) {
	p := newTestProcessor(&fakeLines{})
	_, err := p.Process(context.Background(), image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestProcessorAbsorbsDetectorFailures(t *testing.T) {
	tests := []struct {
		name string
		p    *Processor
	}{
		{
			name: "line detector error",
			p:    newTestProcessor(&fakeLines{err: errors.New("hough failed")}, WithNoteDetector(fakeNotes{err: errors.New("no templates")})),
		},
		{
			name: "line detector timeout",
			p: newTestProcessor(&fakeLines{horizontal: staffSegments(100), delay: timeoutDelay},
				WithDetectionTimeout(shortTimeout), WithNoteDetector(StubNoteDetector{})),
		},
		{
			name: "binarizer error",
			p: NewProcessor(NewPreprocessor(failingBinarizer{}, DefaultPreprocessParams()), &fakeLines{horizontal: staffSegments(100)},
				DefaultStaffParams(), DefaultBarParams(), WithNoteDetector(StubNoteDetector{})),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := tt.p.Process(context.Background(), whitePage(50, 40))
			require.NoError(t, err)

			assert.Empty(t, record.Staves)
			assert.NotNil(t, record.Staves)
			assert.Empty(t, record.Measures)
			assert.Equal(t, DefaultKeySignature, record.KeySignature)
			assert.Equal(t, DefaultTimeSignature, record.TimeSignature)
			assert.Nil(t, record.TempoBPM)
			assert.Empty(t, record.Notes.Candidates)
			assert.Equal(t, 50, record.ImageWidth)
		})
	}
}

func TestProcessorNotesAttemptedOnlyWithDetector(t *testing.T) {
	without, err := newTestProcessor(&fakeLines{}).Process(context.Background(), whitePage(10, 10))
	require.NoError(t, err)
	assert.False(t, without.Notes.Attempted)

	with, err := newTestProcessor(&fakeLines{}, WithNoteDetector(StubNoteDetector{})).Process(context.Background(), whitePage(10, 10))
	require.NoError(t, err)
	assert.True(t, with.Notes.Attempted)
	assert.NotNil(t, with.Notes.Candidates)
	assert.Empty(t, with.Notes.Candidates)
}

func TestProcessorWithGroupingNoteDetector(t *testing.T) {
	lines := &fakeLines{
		horizontal: staffSegments(100),
		vertical:   barSegments(10, 130, 250),
	}
	locator := &fakeHeadLocator{heads: []NoteHead{
		{X: 200, Y: 120, Pitch: "G4", Duration: DurationHalf},
		{X: 60, Y: 140, Pitch: "C4", Duration: DurationQuarter},
		{X: 61, Y: 130, Pitch: "E4", Duration: DurationQuarter},
	}}
	p := newTestProcessor(lines, WithNoteDetector(GroupingNoteDetector{Heads: locator, Tolerance: 5}))

	record, err := p.Process(context.Background(), whitePage(500, 300))
	require.NoError(t, err)
	assert.Equal(t, 1, locator.gotStaves)
	assert.True(t, record.Notes.Attempted)
	assert.Equal(t, []NoteChordCandidate{
		{XPosition: 61, Pitches: []string{"C4", "E4"}, Duration: DurationQuarter},
		{XPosition: 200, Pitches: []string{"G4"}, Duration: DurationHalf},
	}, record.Notes.Candidates)
}

func TestRunBoundedRecoversPanics(t *testing.T) {
	_, err := runBounded(context.Background(), time.Second, func(context.Context) (int, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
