package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		input  string
		symbol string
		name   string
		scale  []string
	}{
		{"C", "C", "C major", []string{"C", "D", "E", "F", "G", "A", "B"}},
		{"Am", "Am", "A minor", []string{"A", "B", "C", "D", "E", "F", "G"}},
		{"a", "Am", "A minor", []string{"A", "B", "C", "D", "E", "F", "G"}},
		{"Bb", "Bb", "Bb major", []string{"Bb", "C", "D", "Eb", "F", "G", "A"}},
		{"E-", "Eb", "Eb major", []string{"Eb", "F", "G", "Ab", "Bb", "C", "D"}},
		{"F#m", "F#m", "F# minor", []string{"F#", "G#", "A", "B", "C#", "D", "E"}},
		{"C major", "C", "C major", []string{"C", "D", "E", "F", "G", "A", "B"}},
		{"g minor", "Gm", "G minor", []string{"G", "A", "Bb", "C", "D", "Eb", "F"}},
		{"Dmin", "Dm", "D minor", []string{"D", "E", "F", "G", "A", "Bb", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, err := ParseKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, key.Symbol())
			assert.Equal(t, tt.name, key.Name())
			assert.Equal(t, tt.scale, key.ScaleNames())
		})
	}
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "H", "C dorian", "Cxyz", "C major minor", "C###"} {
		_, err := ParseKey(input)
		assert.Error(t, err, input)
	}
}

func TestParseChord(t *testing.T) {
	tests := []struct {
		symbol  string
		name    string
		quality Quality
		pitches []string
	}{
		{"C", "C", QualityMajor, []string{"C", "E", "G"}},
		{"Am", "Am", QualityMinor, []string{"A", "C", "E"}},
		{"Am7", "Am7", QualityMinor, []string{"A", "C", "E", "G"}},
		{"Cmaj7", "Cmaj7", QualityMajor, []string{"C", "E", "G", "B"}},
		{"Cmaj", "C", QualityMajor, []string{"C", "E", "G"}},
		{"Bdim", "Bdim", QualityDiminished, []string{"B", "D", "F"}},
		{"Cdim7", "Cdim7", QualityDiminished, []string{"C", "Eb", "Gb", "Bbb"}},
		{"Caug", "Caug", QualityAugmented, []string{"C", "E", "G#"}},
		{"Dsus4", "Dsus4", QualitySus4, []string{"D", "G", "A"}},
		{"G9", "G9", QualityMajor, []string{"G", "B", "D", "F", "A"}},
		{"Bb", "Bb", QualityMajor, []string{"Bb", "D", "F"}},
		{"Em/G", "Em/G", QualityMinor, []string{"G", "E", "G", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			c, err := ParseChord(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name())
			assert.Equal(t, tt.quality, c.Quality)
			assert.Equal(t, tt.pitches, c.PitchNames())
		})
	}
}

func TestParseChordErrors(t *testing.T) {
	for _, symbol := range []string{"", "H", "am", "Cxyz", "C/H", "Am/C/E"} {
		_, err := ParseChord(symbol)
		assert.Error(t, err, symbol)
	}
}

func TestRomanToChord(t *testing.T) {
	cMajor := CMajor
	aMinor, err := ParseKey("Am")
	require.NoError(t, err)

	tests := []struct {
		numeral string
		key     Key
		name    string
		pitches []string
	}{
		{"I", cMajor, "C", []string{"C", "E", "G"}},
		{"vi", cMajor, "Am", []string{"A", "C", "E"}},
		{"V7", cMajor, "G7", []string{"G", "B", "D", "F"}},
		{"vii°", cMajor, "Bdim", []string{"B", "D", "F"}},
		{"viio", cMajor, "Bdim", []string{"B", "D", "F"}},
		{"bVII", cMajor, "Bb", []string{"Bb", "D", "F"}},
		{"III+", cMajor, "Eaug", []string{"E", "G#", "B#"}},
		{"i", aMinor, "Am", []string{"A", "C", "E"}},
		{"VII", aMinor, "G", []string{"G", "B", "D"}},
		{"V", aMinor, "E", []string{"E", "G#", "B"}},
		{"ii°", aMinor, "Bdim", []string{"B", "D", "F"}},
		{"vii°", aMinor, "G#dim", []string{"G#", "B", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.numeral+" in "+tt.key.Name(), func(t *testing.T) {
			c, err := RomanToChord(tt.numeral, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name())
			assert.Equal(t, tt.pitches, c.PitchNames())
		})
	}
}

func TestRomanToChordErrors(t *testing.T) {
	for _, numeral := range []string{"", "X", "Iv", "IIII", "I9", "bbbV"} {
		_, err := RomanToChord(numeral, CMajor)
		assert.Error(t, err, numeral)
	}
}

func TestRomanFromChord(t *testing.T) {
	aMinor, err := ParseKey("Am")
	require.NoError(t, err)

	tests := []struct {
		chord   string
		key     Key
		numeral string
		quality Quality
	}{
		{"C", CMajor, "I", QualityMajor},
		{"Am", CMajor, "vi", QualityMinor},
		{"G7", CMajor, "V7", QualityMajor},
		{"Bdim", CMajor, "vii°", QualityDiminished},
		{"Bb", CMajor, "bVII", QualityMajor},
		{"F#m", CMajor, "#iv", QualityMinor},
		{"Caug", CMajor, "I+", QualityAugmented},
		{"G#dim", aMinor, "vii°", QualityDiminished},
		{"G", aMinor, "VII", QualityMajor},
		{"E", aMinor, "V", QualityMajor},
		{"C", aMinor, "III", QualityMajor},
	}

	for _, tt := range tests {
		t.Run(tt.chord+" in "+tt.key.Name(), func(t *testing.T) {
			c, err := ParseChord(tt.chord)
			require.NoError(t, err)
			ra, err := RomanFromChord(c, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.numeral, ra.Numeral)
			assert.Equal(t, tt.quality, ra.Quality)
		})
	}
}

func TestRomanRoundTripOverCatalogueNumerals(t *testing.T) {
	aMinor, err := ParseKey("Am")
	require.NoError(t, err)

	for _, numeral := range []string{"I", "V", "vi", "IV", "ii"} {
		c, err := RomanToChord(numeral, CMajor)
		require.NoError(t, err)
		ra, err := RomanFromChord(c, CMajor)
		require.NoError(t, err)
		assert.Equal(t, numeral, ra.Numeral)
	}
	for _, numeral := range []string{"i", "VII", "VI", "iv", "V", "III", "v", "ii°"} {
		c, err := RomanToChord(numeral, aMinor)
		require.NoError(t, err)
		ra, err := RomanFromChord(c, aMinor)
		require.NoError(t, err)
		assert.Equal(t, numeral, ra.Numeral)
	}
}

func TestFunctionOf(t *testing.T) {
	tests := map[string]Function{
		"I":    FunctionTonic,
		"i":    FunctionTonic,
		"vi":   FunctionTonic,
		"VI":   FunctionTonic,
		"IV":   FunctionSubdominant,
		"iv":   FunctionSubdominant,
		"ii":   FunctionSubdominant,
		"ii°":  FunctionSubdominant,
		"V":    FunctionDominant,
		"V7":   FunctionDominant,
		"v":    FunctionDominant,
		"VII":  FunctionDominant,
		"bVII": FunctionDominant,
		"vii°": FunctionDominant,
		"iii":  FunctionOther,
		"III":  FunctionOther,
		"":     FunctionOther,
	}
	for numeral, want := range tests {
		assert.Equal(t, want, FunctionOf(numeral), numeral)
	}
}

func TestClosedPosition(t *testing.T) {
	tests := []struct {
		symbol string
		want   []string
	}{
		{"C", []string{"C", "E", "G"}},
		{"G7", []string{"G", "B", "D", "F"}},
		{"G9", []string{"G", "A", "B", "D", "F"}},
		{"Em/G", []string{"G", "E", "B"}},
	}
	for _, tt := range tests {
		c, err := ParseChord(tt.symbol)
		require.NoError(t, err)
		assert.Equal(t, tt.want, pitchNames(ClosedPosition(c)), tt.symbol)
	}
}

func TestChordToMIDI(t *testing.T) {
	tests := []struct {
		name          string
		chordSymbol   string
		octave        int
		expectedNotes []int
	}{
		{"C major", "C", 4, []int{60, 64, 67}},
		{"A minor 7th", "Am7", 4, []int{69, 72, 76, 79}},
		{"C major 7th", "Cmaj7", 3, []int{48, 52, 55, 59}},
		{"slash chord bass drops an octave", "Em/G", 4, []int{55, 64, 67, 71}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := ChordToMIDI(tt.chordSymbol, tt.octave)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedNotes, notes)
		})
	}

	_, err := ChordToMIDI("X", 4)
	assert.Error(t, err)
}

func TestVoicingMIDIAscends(t *testing.T) {
	am, err := ParseChord("Am")
	require.NoError(t, err)
	assert.Equal(t, []int{69, 72, 76}, VoicingMIDI(ClosedPosition(am), 4))

	slash, err := ParseChord("Em/G")
	require.NoError(t, err)
	assert.Equal(t, []int{67, 76, 83}, VoicingMIDI(ClosedPosition(slash), 4))
}
