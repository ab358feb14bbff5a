package harmony

import "github.com/Conceptual-Machines/practice-companion/internal/models"

// FallbackResult is the fixed I-vi-IV-V analysis in C major. It is built from
// literals only so it cannot fail.
func FallbackResult() models.AnalysisResult {
	progression := []string{"C", "Am", "F", "G"}
	voicings := []string{"C E G", "A C E", "F A C", "G B D"}

	measures := make([]models.AnnotatedMeasure, len(progression))
	for i, chord := range progression {
		measures[i] = models.AnnotatedMeasure{
			MeasureNumber: i + 1,
			Chord:         chord,
			BeatCount:     beatsPerAnnotatedMeasure,
			Notes:         []string{},
		}
	}

	return models.AnalysisResult{
		KeySignature:     "C",
		TimeSignature:    "4/4",
		TempoBPM:         nil,
		Measures:         measures,
		ChordProgression: progression,
		ConfidenceScore:  0.2,
		AnalysisNotes: []string{
			"Fallback analysis used due to processing error",
			"Using basic I-vi-IV-V progression in C major",
			"Manual verification recommended",
		},
		HarmonicAnalysis: models.HarmonicAnalysis{
			KeyAnalysis: models.KeyAnalysis{
				Key:          "C major",
				Mode:         "major",
				Tonic:        "C",
				ScaleDegrees: []string{"C", "D", "E", "F", "G", "A", "B"},
			},
			ChordFunctions: []models.ChordFunction{
				{Chord: "C", Roman: "I", Function: "tonic", Quality: "major"},
				{Chord: "Am", Roman: "vi", Function: "tonic", Quality: "minor"},
				{Chord: "F", Roman: "IV", Function: "subdominant", Quality: "major"},
				{Chord: "G", Roman: "V", Function: "dominant", Quality: "major"},
			},
			SuggestedVoicings: models.Voicings{
				Piano:        append([]string(nil), voicings...),
				Guitar:       append([]string(nil), voicings...),
				CloseHarmony: append([]string(nil), voicings...),
				MIDI:         [][]int{{60, 64, 67}, {69, 72, 76}, {65, 69, 72}, {67, 71, 74}},
			},
			HarmonicRhythm: models.HarmonicRhythm{
				BeatsPerMeasure:        4,
				ChordChangesPerMeasure: 1,
				TotalBeats:             16,
				SuggestedChordDuration: "1 measure (4 beats)",
				Notes:                  []string{"Default 4/4 rhythm", "One chord per measure"},
			},
		},
	}
}
