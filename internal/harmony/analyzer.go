package harmony

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/practice-companion/internal/logger"
	"github.com/Conceptual-Machines/practice-companion/internal/models"
	"github.com/Conceptual-Machines/practice-companion/internal/omr"
	"github.com/Conceptual-Machines/practice-companion/internal/theory"
)

const (
	// DefaultProgressionLength is used when no measures were detected
	DefaultProgressionLength = 8

	// variationChance is the probability that an extended progression continues
	// with a freshly chosen template instead of repeating the first one
	variationChance = 0.3

	beatsPerAnnotatedMeasure = 4
	voicingOctave            = 4
	guitarVoices             = 4
	maxConfidence            = 0.85
)

const (
	noteLowConfidence      = "Low confidence analysis - image quality may be poor"
	noteModerateConfidence = "Moderate confidence - some elements may be inaccurate"
	noteGoodConfidence     = "Good confidence - analysis should be reliable"
	noteNoStaves           = "No staff lines detected - using default assumptions"
	noteNoMeasures         = "No measure divisions detected - using estimated progression"
	noteDefaultKey         = "Key signature defaulted to C major"
	noteDefaultTime        = "Time signature defaulted to 4/4"
	noteNoNotes            = "No individual notes detected - chord progression is estimated"
	noteTemplateGenerated  = "Chord progression generated using common harmonic patterns"
)

// Outcome is the single terminal result of one analysis. Fallback is set when the
// fixed fallback result replaced the derived one, with Cause holding the reason.
type Outcome struct {
	Result   models.AnalysisResult
	Fallback bool
	Cause    error
}

// Analyzer turns a structural record into a harmonic analysis
type Analyzer struct {
	theory    Theory
	catalogue *Catalogue
	rng       *rand.Rand
}

// NewAnalyzer creates an analyzer. A *rand.Rand is not safe for concurrent use:
// share an analyzer across goroutines only with a nil rng (a fresh source is drawn
// per call) or hand each caller its own copy via WithRand.
func NewAnalyzer(t Theory, catalogue *Catalogue, rng *rand.Rand) *Analyzer {
	return &Analyzer{theory: t, catalogue: catalogue, rng: rng}
}

// WithRand returns a copy of the analyzer drawing from rng
func (a *Analyzer) WithRand(rng *rand.Rand) *Analyzer {
	cp := *a
	cp.rng = rng
	return &cp
}

// NewRand returns a seeded source, or a randomly seeded one when seed is nil
func NewRand(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Analyze never fails: step-level errors and panics yield the fixed fallback result.
func (a *Analyzer) Analyze(ctx context.Context, record omr.StructuralRecord) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = fallbackOutcome(fmt.Errorf("analysis panicked: %v", r))
		}
	}()

	result, err := a.analyze(ctx, record)
	if err != nil {
		return fallbackOutcome(err)
	}
	return Outcome{Result: result}
}

func fallbackOutcome(cause error) Outcome {
	logger.Error("Harmonic analysis failed, using fallback", cause, logger.Fields{
		"stage": "harmony",
	})
	return Outcome{Result: FallbackResult(), Fallback: true, Cause: cause}
}

func (a *Analyzer) analyze(ctx context.Context, record omr.StructuralRecord) (models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}
	if a.theory == nil || a.catalogue == nil {
		return models.AnalysisResult{}, errors.New("analyzer is not configured")
	}

	rng := a.rng
	if rng == nil {
		rng = NewRand(nil)
	}

	key := a.resolveKey(record.KeySignature)

	numerals, err := a.selectProgression(rng, key.Mode, len(record.Measures))
	if err != nil {
		return models.AnalysisResult{}, err
	}
	progression := a.realize(numerals, key)

	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	functions := a.chordFunctions(progression, key)
	voicings := a.voicings(progression)
	if len(functions) != len(progression) || len(voicings.Piano) != len(progression) {
		return models.AnalysisResult{}, errors.New("derived records do not match the progression")
	}

	confidence := Confidence(record)

	return models.AnalysisResult{
		KeySignature:     key.Symbol(),
		TimeSignature:    record.TimeSignature,
		TempoBPM:         record.TempoBPM,
		Measures:         annotateMeasures(record.Measures, progression),
		ChordProgression: progression,
		ConfidenceScore:  confidence,
		AnalysisNotes:    Notes(record, confidence),
		HarmonicAnalysis: models.HarmonicAnalysis{
			KeyAnalysis:       keyAnalysis(key),
			ChordFunctions:    functions,
			SuggestedVoicings: voicings,
			HarmonicRhythm:    Rhythm(record.TimeSignature, len(record.Measures)),
		},
	}, nil
}

// resolveKey falls back to C major for unreadable key signatures
func (a *Analyzer) resolveKey(signature string) theory.Key {
	key, err := a.theory.ParseKey(signature)
	if err != nil {
		logger.Debug("Unparsable key signature, using C major", logger.Fields{
			"key_signature": signature,
			"error":         err.Error(),
		})
		return theory.CMajor
	}
	return key
}

// selectProgression picks Roman numerals for n measures (8 when n is 0)
func (a *Analyzer) selectProgression(rng *rand.Rand, mode theory.Mode, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultProgressionLength
	}
	templates, err := a.catalogue.Templates(mode)
	if err != nil {
		return nil, err
	}
	pick := func() Template { return templates[rng.IntN(len(templates))] }

	var numerals []string
	switch {
	case n <= 4:
		numerals = append(numerals, pick()...)
	case n <= 8:
		base := pick()
		numerals = append(append(numerals, base...), base...)
	default:
		base := pick()
		numerals = append(numerals, base...)
		for len(numerals) < n {
			if rng.Float64() < variationChance {
				numerals = append(numerals, pick()...)
			} else {
				numerals = append(numerals, base...)
			}
		}
	}

	for len(numerals) < n {
		numerals = append(numerals, numerals[len(numerals)-1])
	}
	return numerals[:n], nil
}

// realize converts numerals to chord names; a failed slot becomes the tonic
func (a *Analyzer) realize(numerals []string, key theory.Key) []string {
	chords := make([]string, len(numerals))
	for i, numeral := range numerals {
		chord, err := a.theory.RomanToChord(numeral, key)
		if err != nil {
			logger.Debug("Roman numeral conversion failed, using tonic", logger.Fields{
				"numeral": numeral,
				"key":     key.Name(),
				"error":   err.Error(),
			})
			chords[i] = key.Tonic.Name()
			continue
		}
		chords[i] = chord.Name()
	}
	return chords
}

// chordFunctions re-derives each chord's numeral and harmonic function
func (a *Analyzer) chordFunctions(progression []string, key theory.Key) []models.ChordFunction {
	functions := make([]models.ChordFunction, len(progression))
	for i, name := range progression {
		entry := models.ChordFunction{
			Chord:    name,
			Roman:    "I",
			Function: string(theory.FunctionTonic),
			Quality:  string(theory.QualityMajor),
		}
		chord, err := a.theory.ParseChord(name)
		if err == nil {
			var analysis theory.RomanAnalysis
			if analysis, err = a.theory.RomanFromChord(chord, key); err == nil {
				entry.Roman = analysis.Numeral
				entry.Function = string(a.theory.FunctionOf(analysis.Numeral))
				entry.Quality = string(analysis.Quality)
			}
		}
		if err != nil {
			logger.Debug("Roman analysis failed, using I", logger.Fields{"chord": name, "error": err.Error()})
		}
		functions[i] = entry
	}
	return functions
}

// voicings renders each chord three ways; a failed chord is rendered by name
func (a *Analyzer) voicings(progression []string) models.Voicings {
	v := models.Voicings{
		Piano:        make([]string, len(progression)),
		Guitar:       make([]string, len(progression)),
		CloseHarmony: make([]string, len(progression)),
		MIDI:         make([][]int, len(progression)),
	}
	for i, name := range progression {
		chord, err := a.theory.ParseChord(name)
		if err != nil || len(chord.Pitches) == 0 {
			v.Piano[i], v.Guitar[i], v.CloseHarmony[i] = name, name, name
			v.MIDI[i] = []int{}
			continue
		}
		pitches := chord.PitchNames()
		closed := a.theory.ClosedPosition(chord)

		v.Piano[i] = strings.Join(pitches, " ")
		v.Guitar[i] = strings.Join(pitches[:min(len(pitches), guitarVoices)], " ")
		v.CloseHarmony[i] = joinPitches(closed)
		v.MIDI[i] = a.theory.VoicingMIDI(closed, voicingOctave)
		if len(v.MIDI[i]) == 0 {
			// root position when the closed voicing leaves the MIDI range
			midi, err := a.theory.ChordToMIDI(name, voicingOctave)
			if err != nil {
				midi = []int{}
			}
			v.MIDI[i] = midi
		}
	}
	return v
}

func joinPitches(pitches []theory.Pitch) string {
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.Name()
	}
	return strings.Join(names, " ")
}

func keyAnalysis(key theory.Key) models.KeyAnalysis {
	return models.KeyAnalysis{
		Key:          key.Name(),
		Mode:         string(key.Mode),
		Tonic:        key.Tonic.Name(),
		ScaleDegrees: key.ScaleNames(),
	}
}

// Rhythm summarizes harmonic rhythm as one chord change per measure
func Rhythm(timeSignature string, measures int) models.HarmonicRhythm {
	beats, ok := beatsPerMeasure(timeSignature)
	if !ok {
		return models.HarmonicRhythm{
			BeatsPerMeasure:        4,
			ChordChangesPerMeasure: 1,
			TotalBeats:             4 * measures,
			SuggestedChordDuration: "1 measure",
			Notes:                  []string{"Using default 4/4 rhythm"},
		}
	}
	return models.HarmonicRhythm{
		BeatsPerMeasure:        beats,
		ChordChangesPerMeasure: 1,
		TotalBeats:             beats * measures,
		SuggestedChordDuration: fmt.Sprintf("1 measure (%d beats)", beats),
		Notes: []string{
			"Time signature: " + timeSignature,
			"Suggested: one chord per measure",
			fmt.Sprintf("Total duration: %d measures", measures),
		},
	}
}

func beatsPerMeasure(timeSignature string) (int, bool) {
	num, den, found := strings.Cut(strings.TrimSpace(timeSignature), "/")
	if !found {
		return 0, false
	}
	beats, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || beats <= 0 {
		return 0, false
	}
	if _, err := strconv.Atoi(strings.TrimSpace(den)); err != nil {
		return 0, false
	}
	return beats, true
}

// Confidence scores how much of the record was detected rather than defaulted
func Confidence(record omr.StructuralRecord) float64 {
	score := 0.30
	if len(record.Staves) > 0 {
		score += 0.15
	}
	if len(record.Measures) > 0 {
		score += 0.15
	}
	if record.KeySignature != "" && record.KeySignature != omr.DefaultKeySignature {
		score += 0.10
	}
	if record.TimeSignature != "" && record.TimeSignature != omr.DefaultTimeSignature {
		score += 0.10
	}
	if record.TempoBPM != nil {
		score += 0.10
	}
	if len(record.Notes.Candidates) > 0 {
		score += 0.20
	} else {
		score -= 0.10
	}
	// two decimals keeps 0.3 - 0.1 at exactly 0.2
	score = math.Round(score*100) / 100
	return math.Max(0, math.Min(score, maxConfidence))
}

// Notes explains the confidence tier and which signals were defaulted
func Notes(record omr.StructuralRecord, confidence float64) []string {
	var notes []string
	switch {
	case confidence < 0.4:
		notes = append(notes, noteLowConfidence)
	case confidence < 0.6:
		notes = append(notes, noteModerateConfidence)
	default:
		notes = append(notes, noteGoodConfidence)
	}

	if len(record.Staves) == 0 {
		notes = append(notes, noteNoStaves)
	}
	if len(record.Measures) == 0 {
		notes = append(notes, noteNoMeasures)
	}
	if record.KeySignature == omr.DefaultKeySignature {
		notes = append(notes, noteDefaultKey)
	}
	if record.TimeSignature == omr.DefaultTimeSignature {
		notes = append(notes, noteDefaultTime)
	}
	if len(record.Notes.Candidates) == 0 {
		notes = append(notes, noteNoNotes)
	}
	return append(notes, noteTemplateGenerated)
}

// annotateMeasures zips measures with chords, reusing the last chord
func annotateMeasures(measures []omr.Measure, progression []string) []models.AnnotatedMeasure {
	annotated := make([]models.AnnotatedMeasure, len(measures))
	for i, m := range measures {
		chord := progression[len(progression)-1]
		if i < len(progression) {
			chord = progression[i]
		}
		annotated[i] = models.AnnotatedMeasure{
			MeasureNumber: m.MeasureNumber,
			StartX:        m.StartX,
			EndX:          m.EndX,
			Width:         m.Width,
			Chord:         chord,
			BeatCount:     beatsPerAnnotatedMeasure,
			Notes:         []string{},
		}
	}
	return annotated
}
