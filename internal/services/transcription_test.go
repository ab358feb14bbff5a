package services

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/practice-companion/internal/harmony"
	"github.com/Conceptual-Machines/practice-companion/internal/ingest"
	"github.com/Conceptual-Machines/practice-companion/internal/omr"
	"github.com/Conceptual-Machines/practice-companion/internal/theory"
)

type fakeLoader struct {
	err error
}

func (f fakeLoader) Load(context.Context, string, []byte) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewGray(image.Rect(0, 0, 300, 200)), nil
}

type fakeProcessor struct {
	record omr.StructuralRecord
	err    error
	calls  int
}

func (f *fakeProcessor) Process(_ context.Context, img image.Image) (omr.StructuralRecord, error) {
	f.calls++
	if f.err != nil {
		return omr.StructuralRecord{}, f.err
	}
	if f.record.KeySignature == "" {
		return omr.EmptyRecord(img.Bounds().Dx(), img.Bounds().Dy()), nil
	}
	return f.record, nil
}

func newService(t *testing.T, loader PageLoader, processor PageProcessor, seed *uint64) *TranscriptionService {
	t.Helper()
	catalogue, err := harmony.DefaultCatalogue()
	require.NoError(t, err)
	return NewTranscriptionService(loader, processor, harmony.NewAnalyzer(theory.Engine{}, catalogue, nil), seed, nil)
}

func TestTranscribeEmptyPage(t *testing.T) {
	processor := &fakeProcessor{}
	svc := newService(t, fakeLoader{}, processor, nil)

	out, err := svc.Transcribe(context.Background(), "image/png", []byte("png"))
	require.NoError(t, err)
	assert.False(t, out.Fallback)
	assert.Equal(t, 0.2, out.Result.ConfidenceScore)
	assert.Len(t, out.Result.ChordProgression, harmony.DefaultProgressionLength)
	assert.Equal(t, 1, processor.calls)
}

func TestTranscribeSurfacesInputErrors(t *testing.T) {
	processor := &fakeProcessor{}
	svc := newService(t, fakeLoader{err: ingest.ErrUnsupportedType}, processor, nil)

	_, err := svc.Transcribe(context.Background(), "text/plain", []byte("hi"))
	assert.ErrorIs(t, err, ingest.ErrUnsupportedType)
	assert.Zero(t, processor.calls)

	svc = newService(t, fakeLoader{}, &fakeProcessor{err: omr.ErrInvalidImage}, nil)
	_, err = svc.Transcribe(context.Background(), "image/png", []byte("png"))
	assert.True(t, errors.Is(err, omr.ErrInvalidImage))
}

func TestTranscribeWithSeedIsReproducible(t *testing.T) {
	seed := uint64(2024)
	record := omr.EmptyRecord(300, 200)
	record.Measures = []omr.Measure{
		{StartX: 0, EndX: 50, Width: 50, MeasureNumber: 1},
		{StartX: 50, EndX: 100, Width: 50, MeasureNumber: 2},
		{StartX: 100, EndX: 150, Width: 50, MeasureNumber: 3},
		{StartX: 150, EndX: 200, Width: 50, MeasureNumber: 4},
		{StartX: 200, EndX: 250, Width: 50, MeasureNumber: 5},
		{StartX: 250, EndX: 300, Width: 50, MeasureNumber: 6},
	}
	svc := newService(t, fakeLoader{}, &fakeProcessor{record: record}, &seed)

	first, err := svc.Transcribe(context.Background(), "image/png", nil)
	require.NoError(t, err)
	second, err := svc.Transcribe(context.Background(), "image/png", nil)
	require.NoError(t, err)

	assert.Equal(t, first.Result.ChordProgression, second.Result.ChordProgression)
	assert.Len(t, first.Result.Measures, 6)
}
