package models

// AnalysisResult is the complete analysis of one page of sheet music
type AnalysisResult struct {
	KeySignature     string             `json:"key_signature"`  // short form, e.g. "C", "Am"
	TimeSignature    string             `json:"time_signature"` // e.g. "4/4"
	TempoBPM         *int               `json:"tempo_bpm"`      // nil when no tempo marking was read
	Measures         []AnnotatedMeasure `json:"measures"`
	ChordProgression []string           `json:"chord_progression"`
	ConfidenceScore  float64            `json:"confidence_score"` // 0.0-0.85
	AnalysisNotes    []string           `json:"analysis_notes"`
	HarmonicAnalysis HarmonicAnalysis   `json:"harmonic_analysis"`
}

// AnnotatedMeasure is a detected measure with the chord assigned to it
type AnnotatedMeasure struct {
	MeasureNumber int      `json:"measure_number"`
	StartX        int      `json:"start_x"`
	EndX          int      `json:"end_x"`
	Width         int      `json:"width"`
	Chord         string   `json:"chord"`
	BeatCount     int      `json:"beat_count"`
	Notes         []string `json:"notes"`
}

// HarmonicAnalysis groups the derived theory records
type HarmonicAnalysis struct {
	KeyAnalysis       KeyAnalysis     `json:"key_analysis"`
	ChordFunctions    []ChordFunction `json:"chord_functions"`
	SuggestedVoicings Voicings        `json:"suggested_voicings"`
	HarmonicRhythm    HarmonicRhythm  `json:"harmonic_rhythm"`
}

// KeyAnalysis describes the resolved key
type KeyAnalysis struct {
	Key          string   `json:"key"` // long form, e.g. "C major"
	Mode         string   `json:"mode"`
	Tonic        string   `json:"tonic"`
	ScaleDegrees []string `json:"scale_degrees"`
}

// ChordFunction labels one progression chord
type ChordFunction struct {
	Chord    string `json:"chord"`
	Roman    string `json:"roman"`
	Function string `json:"function"` // tonic, subdominant, dominant, other
	Quality  string `json:"quality"`
}

// Voicings holds one space-separated pitch list per chord and style
type Voicings struct {
	Piano        []string `json:"piano"`
	Guitar       []string `json:"guitar"`
	CloseHarmony []string `json:"close_harmony"`
	MIDI         [][]int  `json:"midi"` // close voicing as MIDI note numbers, C4 = 60
}

// HarmonicRhythm describes how often chords change
type HarmonicRhythm struct {
	BeatsPerMeasure        int      `json:"beats_per_measure"`
	ChordChangesPerMeasure int      `json:"chord_changes_per_measure"`
	TotalBeats             int      `json:"total_beats"`
	SuggestedChordDuration string   `json:"suggested_chord_duration"`
	Notes                  []string `json:"harmonic_rhythm_notes"`
}

// ConfigSuggestion is the playback configuration derived from an analysis
type ConfigSuggestion struct {
	TempoBPM           int      `json:"tempo_bpm"`
	TimeSignature      string   `json:"time_signature"`
	Key                string   `json:"key"`
	ChordProgression   []string `json:"chord_progression"`
	AccompanimentStyle string   `json:"accompaniment_style"`
}
