package theory

import "fmt"

const (
	midiMin = 0
	midiMax = 127
)

// midiNumber places a pitch class in an octave, C4 = 60
func midiNumber(p Pitch, octave int) int {
	return (octave+1)*semitonesPerOctave + letterPitchClass[p.Letter] + p.Accidental
}

// ChordToMIDI converts chord symbols to MIDI note numbers in root position.
// Supports: C, Em, Am7, Cmaj7, Em/G (inversions), etc.
// A slash bass is placed one octave below the root.
func ChordToMIDI(chordSymbol string, octave int) ([]int, error) {
	c, err := ParseChord(chordSymbol)
	if err != nil {
		return nil, err
	}

	rootMIDI := midiNumber(c.Root, octave)
	tones := buildChordTones(c.Quality, c.Extensions)

	notes := make([]int, 0, len(tones)+1)
	if c.Bass != nil {
		if bassMIDI := midiNumber(*c.Bass, octave-1); bassMIDI >= midiMin && bassMIDI <= midiMax {
			notes = append(notes, bassMIDI)
		}
	}
	for _, t := range tones {
		n := rootMIDI + t.semitones
		if n < midiMin || n > midiMax {
			continue // Skip out-of-range notes
		}
		notes = append(notes, n)
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("no valid MIDI notes generated for chord: %s", chordSymbol)
	}
	return notes, nil
}

// VoicingMIDI stacks an ordered voicing upwards starting in octave: each pitch
// lands on the lowest MIDI number above the previous one.
func VoicingMIDI(voicing []Pitch, octave int) []int {
	notes := make([]int, 0, len(voicing))
	prev := midiMin - 1
	for i, p := range voicing {
		n := midiNumber(p, octave)
		if i > 0 {
			for n <= prev {
				n += semitonesPerOctave
			}
		}
		if n < midiMin || n > midiMax {
			continue
		}
		notes = append(notes, n)
		prev = n
	}
	return notes
}
