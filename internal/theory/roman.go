package theory

import (
	"fmt"
	"strings"
)

// Function is the harmonic role of a chord within its key
type Function string

const (
	FunctionTonic       Function = "tonic"
	FunctionSubdominant Function = "subdominant"
	FunctionDominant    Function = "dominant"
	FunctionOther       Function = "other"
)

var romanDegrees = [7]string{"I", "II", "III", "IV", "V", "VI", "VII"}

// functionTable classifies numerals after accidentals and quality/extension markers
// are stripped; "vii" is the base token of vii°.
var functionTable = map[string]Function{
	"I": FunctionTonic, "i": FunctionTonic, "vi": FunctionTonic, "VI": FunctionTonic,
	"IV": FunctionSubdominant, "iv": FunctionSubdominant, "ii": FunctionSubdominant, "II": FunctionSubdominant,
	"V": FunctionDominant, "v": FunctionDominant, "VII": FunctionDominant, "vii": FunctionDominant,
}

// RomanAnalysis is a chord's Roman-numeral label in a key
type RomanAnalysis struct {
	Numeral string
	Quality Quality
}

type numeral struct {
	accidental int
	degree     int // 0-based scale degree
	upper      bool
	diminished bool
	augmented  bool
	seventh    bool
}

func parseNumeral(token string) (numeral, error) {
	var n numeral
	s := strings.TrimSpace(token)

	for len(s) > 0 && (s[0] == 'b' || s[0] == '#' || s[0] == '-') {
		if s[0] == '#' {
			n.accidental++
		} else {
			n.accidental--
		}
		s = s[1:]
	}

	end := 0
	for end < len(s) && strings.IndexByte("IViv", s[end]) >= 0 {
		end++
	}
	core := s[:end]
	if core == "" {
		return n, fmt.Errorf("invalid roman numeral: %q", token)
	}
	switch core {
	case strings.ToUpper(core):
		n.upper = true
	case strings.ToLower(core):
	default:
		return n, fmt.Errorf("mixed case roman numeral: %q", token)
	}

	n.degree = -1
	for i, r := range romanDegrees {
		if r == strings.ToUpper(core) {
			n.degree = i
			break
		}
	}
	if n.degree < 0 {
		return n, fmt.Errorf("invalid roman numeral: %q", token)
	}

	for rest := s[end:]; rest != ""; {
		switch {
		case strings.HasPrefix(rest, "°"):
			n.diminished = true
			rest = strings.TrimPrefix(rest, "°")
		case strings.HasPrefix(rest, "o"):
			n.diminished = true
			rest = rest[1:]
		case strings.HasPrefix(rest, "+"):
			n.augmented = true
			rest = rest[1:]
		case strings.HasPrefix(rest, "7"):
			n.seventh = true
			rest = rest[1:]
		default:
			return n, fmt.Errorf("unsupported suffix %q in roman numeral %q", rest, token)
		}
	}
	return n, nil
}

// RomanToChord realizes a Roman numeral in a key: "V" in C major is G, "VII" in
// A minor is G, "vii°" in A minor is G#dim (raised leading tone).
func RomanToChord(token string, key Key) (Chord, error) {
	n, err := parseNumeral(token)
	if err != nil {
		return Chord{}, err
	}

	root := key.Scale()[n.degree]
	if key.Mode == Minor && n.degree == 6 && !n.upper {
		root.Accidental++
	}
	root.Accidental += n.accidental
	if root.Accidental > 2 || root.Accidental < -2 {
		return Chord{}, fmt.Errorf("roman numeral %q has no spelling in %s", token, key.Name())
	}

	quality := QualityMinor
	if n.upper {
		quality = QualityMajor
	}
	switch {
	case n.diminished:
		quality = QualityDiminished
	case n.augmented:
		quality = QualityAugmented
	}

	var extensions []string
	if n.seventh {
		extensions = []string{ExtSeventh}
	}
	return newChord(root, quality, extensions, nil), nil
}

// RomanFromChord labels a chord by its scale degree in key. The degree comes from
// the root's letter, so enharmonic spellings land on different degrees.
func RomanFromChord(c Chord, key Key) (RomanAnalysis, error) {
	degree := ((c.Root.Letter-key.Tonic.Letter)%7 + 7) % 7
	diff := signedInterval(c.Root.Class() - key.Scale()[degree].Class())

	lower := c.Quality == QualityMinor || c.Quality == QualityDiminished
	if key.Mode == Minor && degree == 6 && diff == 1 && lower {
		// leading-tone chord in minor, written vii° without an accidental
		diff = 0
	}
	if diff > 2 || diff < -2 {
		return RomanAnalysis{}, fmt.Errorf("chord %s is too chromatic to label in %s", c.Name(), key.Name())
	}

	var b strings.Builder
	if diff > 0 {
		b.WriteString(strings.Repeat("#", diff))
	} else if diff < 0 {
		b.WriteString(strings.Repeat("b", -diff))
	}

	if lower {
		b.WriteString(strings.ToLower(romanDegrees[degree]))
	} else {
		b.WriteString(romanDegrees[degree])
	}

	switch c.Quality {
	case QualityDiminished:
		b.WriteString("°")
	case QualityAugmented:
		b.WriteString("+")
	}
	if c.HasSeventh() {
		b.WriteString("7")
	}

	return RomanAnalysis{Numeral: b.String(), Quality: c.Quality}, nil
}

// FunctionOf classifies a Roman numeral into tonic, subdominant, dominant or other.
// Only the base token counts: "bVII", "V7" and "vii°" classify like VII, V and vii.
func FunctionOf(token string) Function {
	base := strings.TrimLeft(strings.TrimSpace(token), "b#-")
	for _, marker := range []string{"°", "ø", "+", "o", "13", "11", "9", "7"} {
		base = strings.ReplaceAll(base, marker, "")
	}
	if fn, ok := functionTable[base]; ok {
		return fn
	}
	return FunctionOther
}
