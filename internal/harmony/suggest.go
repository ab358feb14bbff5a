package harmony

import (
	"github.com/Conceptual-Machines/practice-companion/internal/models"
)

const (
	DefaultTempoBPM = 120

	StyleWaltz  = "waltz"
	StylePiano  = "piano"
	StyleSimple = "simple"
)

// SuggestConfig derives a playback configuration from a finished analysis
func SuggestConfig(result models.AnalysisResult) models.ConfigSuggestion {
	tempo := DefaultTempoBPM
	if result.TempoBPM != nil && *result.TempoBPM > 0 {
		tempo = *result.TempoBPM
	}

	style := StyleSimple
	switch {
	case result.TimeSignature == "3/4" || result.TimeSignature == "6/8":
		style = StyleWaltz
	case len(result.ChordProgression) > 4:
		style = StylePiano
	}

	progression := append([]string{}, result.ChordProgression...)

	return models.ConfigSuggestion{
		TempoBPM:           tempo,
		TimeSignature:      result.TimeSignature,
		Key:                result.KeySignature,
		ChordProgression:   progression,
		AccompanimentStyle: style,
	}
}
