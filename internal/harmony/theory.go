package harmony

import "github.com/Conceptual-Machines/practice-companion/internal/theory"

// Theory is the music-theory primitive the analyzer is built on. Every method
// may fail; the analyzer absorbs failures per item.
type Theory interface {
	ParseKey(name string) (theory.Key, error)
	RomanToChord(numeral string, key theory.Key) (theory.Chord, error)
	ParseChord(symbol string) (theory.Chord, error)
	RomanFromChord(c theory.Chord, key theory.Key) (theory.RomanAnalysis, error)
	ClosedPosition(c theory.Chord) []theory.Pitch
	VoicingMIDI(voicing []theory.Pitch, octave int) []int
	ChordToMIDI(symbol string, octave int) ([]int, error)
	FunctionOf(numeral string) theory.Function
}

var _ Theory = theory.Engine{}
