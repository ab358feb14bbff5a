package theory

import (
	"fmt"
	"strings"
)

const semitonesPerOctave = 12

// letterNames are the natural pitch letters in scale order starting from C
var letterNames = [7]byte{'C', 'D', 'E', 'F', 'G', 'A', 'B'}

// letterPitchClass maps each natural letter to its pitch class (C = 0)
var letterPitchClass = [7]int{0, 2, 4, 5, 7, 9, 11}

// Pitch is a spelled pitch class: a letter plus an accidental offset in semitones.
// Spelling matters because F# and Gb sound the same but play different roles in a key.
type Pitch struct {
	Letter     int // index into letterNames (0 = C ... 6 = B)
	Accidental int // -2..2, negative for flats
}

// Name returns the pitch spelled with # and b, e.g. "F#", "Bb", "C".
func (p Pitch) Name() string {
	var b strings.Builder
	b.WriteByte(letterNames[p.Letter])
	switch {
	case p.Accidental > 0:
		b.WriteString(strings.Repeat("#", p.Accidental))
	case p.Accidental < 0:
		b.WriteString(strings.Repeat("b", -p.Accidental))
	}
	return b.String()
}

// Class returns the pitch class 0-11
func (p Pitch) Class() int {
	return mod12(letterPitchClass[p.Letter] + p.Accidental)
}

func (p Pitch) String() string {
	return p.Name()
}

// ParsePitch parses a pitch name like "C", "f#", "Bb" or music21-style "E-".
func ParsePitch(name string) (Pitch, error) {
	p, rest, err := parsePitchPrefix(strings.TrimSpace(name))
	if err != nil {
		return Pitch{}, err
	}
	if rest != "" {
		return Pitch{}, fmt.Errorf("unexpected suffix %q in pitch %q", rest, name)
	}
	return p, nil
}

// parsePitchPrefix consumes a letter and any accidentals from the start of s and
// returns the remainder untouched.
func parsePitchPrefix(s string) (Pitch, string, error) {
	if s == "" {
		return Pitch{}, "", fmt.Errorf("empty pitch name")
	}

	letter := letterIndex(s[0])
	if letter < 0 {
		return Pitch{}, "", fmt.Errorf("invalid note letter: %q", s[0])
	}

	p := Pitch{Letter: letter}
	i := 1
	for i < len(s) {
		switch s[i] {
		case '#':
			p.Accidental++
		case 'b', '-':
			p.Accidental--
		default:
			return p, s[i:], validateAccidental(p, s)
		}
		i++
	}
	return p, "", validateAccidental(p, s)
}

func validateAccidental(p Pitch, s string) error {
	if p.Accidental > 2 || p.Accidental < -2 {
		return fmt.Errorf("too many accidentals in %q", s)
	}
	return nil
}

func letterIndex(c byte) int {
	switch c {
	case 'C', 'c':
		return 0
	case 'D', 'd':
		return 1
	case 'E', 'e':
		return 2
	case 'F', 'f':
		return 3
	case 'G', 'g':
		return 4
	case 'A', 'a':
		return 5
	case 'B', 'b':
		return 6
	}
	return -1
}

// spellAbove returns the pitch `steps` letters above root that has pitch class
// root.Class()+semitones.
func spellAbove(root Pitch, steps, semitones int) Pitch {
	letter := (root.Letter + steps) % len(letterNames)
	target := mod12(root.Class() + semitones)
	return Pitch{Letter: letter, Accidental: signedInterval(target - letterPitchClass[letter])}
}

func mod12(n int) int {
	return ((n % semitonesPerOctave) + semitonesPerOctave) % semitonesPerOctave
}

// signedInterval folds a semitone difference into -5..6
func signedInterval(n int) int {
	n = mod12(n)
	if n > semitonesPerOctave/2 {
		n -= semitonesPerOctave
	}
	return n
}

func pitchNames(pitches []Pitch) []string {
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.Name()
	}
	return names
}
