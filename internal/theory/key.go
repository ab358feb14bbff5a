package theory

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode is the tonal mode of a key
type Mode string

const (
	Major Mode = "major"
	Minor Mode = "minor"
)

var (
	majorSteps = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorSteps = [7]int{0, 2, 3, 5, 7, 8, 10} // natural minor
)

// Key is a tonal center plus mode
type Key struct {
	Tonic Pitch
	Mode  Mode
}

// CMajor is the key every unreadable key signature falls back to
var CMajor = Key{Tonic: Pitch{Letter: 0}, Mode: Major}

// Name returns the long form, e.g. "C major", "F# minor".
func (k Key) Name() string {
	return k.Tonic.Name() + " " + string(k.Mode)
}

// Symbol returns the short form used on the wire: "C", "Am".
func (k Key) Symbol() string {
	if k.Mode == Minor {
		return k.Tonic.Name() + "m"
	}
	return k.Tonic.Name()
}

// Scale returns the seven diatonic pitches of the key, spelled one letter per degree.
func (k Key) Scale() []Pitch {
	steps := majorSteps
	if k.Mode == Minor {
		steps = minorSteps
	}
	scale := make([]Pitch, len(steps))
	for degree, semis := range steps {
		scale[degree] = spellAbove(k.Tonic, degree, semis)
	}
	return scale
}

// ScaleNames returns Scale as pitch names
func (k Key) ScaleNames() []string {
	return pitchNames(k.Scale())
}

// ParseKey parses key names in the forms produced by signature detection and by
// hand: "C", "Bb", "E-", "F#m", "Am", "a" (lower-case tonic means minor), "C major",
// "g minor", "Dmin".
func ParseKey(name string) (Key, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return Key{}, fmt.Errorf("empty key name")
	}

	fields := strings.Fields(s)
	if len(fields) > 2 {
		return Key{}, fmt.Errorf("invalid key name: %q", name)
	}

	tonic, suffix, err := parsePitchPrefix(fields[0])
	if err != nil {
		return Key{}, fmt.Errorf("invalid key name %q: %w", name, err)
	}

	if len(fields) == 2 {
		if suffix != "" {
			return Key{}, fmt.Errorf("invalid key name: %q", name)
		}
		suffix = fields[1]
	}

	mode, ok := parseModeSuffix(suffix)
	if !ok {
		return Key{}, fmt.Errorf("invalid mode %q in key name %q", suffix, name)
	}
	if suffix == "" && unicode.IsLower(rune(fields[0][0])) {
		mode = Minor
	}

	return Key{Tonic: tonic, Mode: mode}, nil
}

func parseModeSuffix(suffix string) (Mode, bool) {
	switch strings.ToLower(suffix) {
	case "", "maj", "major":
		return Major, true
	case "m", "min", "minor":
		return Minor, true
	}
	return "", false
}
