package theory

import (
	"fmt"
	"sort"
	"strings"
)

// Quality is the triad quality of a chord
type Quality string

const (
	QualityMajor      Quality = "major"
	QualityMinor      Quality = "minor"
	QualityDiminished Quality = "diminished"
	QualityAugmented  Quality = "augmented"
	QualitySus2       Quality = "sus2"
	QualitySus4       Quality = "sus4"
)

// Extension markers understood in chord symbols
const (
	ExtSeventh      = "7"
	ExtMajorSeventh = "maj7"
	ExtNinth        = "9"
	ExtEleventh     = "11"
	ExtThirteenth   = "13"
	ExtAddNine      = "add9"
)

// tone is a chord member measured from the root both in letters and semitones,
// so it can be spelled correctly (a minor third above B is D, not C##).
type tone struct {
	steps     int
	semitones int
}

// Chord is a spelled chord
type Chord struct {
	Root       Pitch
	Quality    Quality
	Extensions []string
	Bass       *Pitch // slash-chord bass, nil in root position
	Pitches    []Pitch
}

// Name renders the chord symbol: "C", "Am", "Bdim", "G7", "Cmaj7", "Em/G".
func (c Chord) Name() string {
	var b strings.Builder
	b.WriteString(c.Root.Name())

	switch c.Quality {
	case QualityMinor:
		b.WriteString("m")
	case QualityDiminished:
		b.WriteString("dim")
	case QualityAugmented:
		b.WriteString("aug")
	case QualitySus2:
		b.WriteString("sus2")
	case QualitySus4:
		b.WriteString("sus4")
	}
	for _, ext := range c.Extensions {
		b.WriteString(ext)
	}

	if c.Bass != nil {
		b.WriteString("/")
		b.WriteString(c.Bass.Name())
	}
	return b.String()
}

// PitchNames returns the spelled chord tones, bass first for slash chords.
func (c Chord) PitchNames() []string {
	return pitchNames(c.Pitches)
}

// HasSeventh reports whether any seventh extension is present
func (c Chord) HasSeventh() bool {
	return c.hasExtension(ExtSeventh) || c.hasExtension(ExtMajorSeventh)
}

func (c Chord) hasExtension(ext string) bool {
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// newChord spells a chord from its root, quality and extensions
func newChord(root Pitch, quality Quality, extensions []string, bass *Pitch) Chord {
	c := Chord{
		Root:       root,
		Quality:    quality,
		Extensions: extensions,
		Bass:       bass,
	}
	for _, t := range buildChordTones(quality, extensions) {
		c.Pitches = append(c.Pitches, spellAbove(root, t.steps, t.semitones))
	}
	if bass != nil {
		c.Pitches = append([]Pitch{*bass}, c.Pitches...)
	}
	return c
}

// ParseChord parses chord symbols.
// Supports: C, Em, Am7, Cmaj7, Bdim, Caug, Dsus4, G9, Em/G (inversions), etc.
func ParseChord(symbol string) (Chord, error) {
	symbol = strings.TrimSpace(symbol)

	// Parse bass note if present (e.g., "Em/G" -> chord="Em", bass="G")
	baseChord := symbol
	var bass *Pitch
	if strings.Contains(symbol, "/") {
		parts := strings.Split(symbol, "/")
		if len(parts) != 2 {
			return Chord{}, fmt.Errorf("invalid slash chord: %s", symbol)
		}
		baseChord = strings.TrimSpace(parts[0])
		b, err := ParsePitch(parts[1])
		if err != nil {
			return Chord{}, fmt.Errorf("invalid bass note: %w", err)
		}
		bass = &b
	}

	root, rest, err := parseRootNote(baseChord)
	if err != nil {
		return Chord{}, fmt.Errorf("invalid chord root: %w", err)
	}

	quality, rest := parseChordQuality(rest)
	extensions, err := parseExtensions(rest)
	if err != nil {
		return Chord{}, fmt.Errorf("invalid chord %q: %w", symbol, err)
	}

	return newChord(root, quality, extensions, bass), nil
}

// parseRootNote reads the root letter and at most one accidental. Chord roots are
// written with # and b only; "-" flats belong to key names.
func parseRootNote(chordSymbol string) (Pitch, string, error) {
	if len(chordSymbol) == 0 {
		return Pitch{}, "", fmt.Errorf("empty chord symbol")
	}
	if chordSymbol[0] < 'A' || chordSymbol[0] > 'G' {
		return Pitch{}, "", fmt.Errorf("invalid root note: %s", chordSymbol[:1])
	}

	root := Pitch{Letter: letterIndex(chordSymbol[0])}
	rest := chordSymbol[1:]
	if len(rest) > 0 {
		switch rest[0] {
		case '#':
			root.Accidental = 1
			rest = rest[1:]
		case 'b':
			root.Accidental = -1
			rest = rest[1:]
		}
	}
	return root, rest, nil
}

func parseChordQuality(rest string) (Quality, string) {
	switch {
	case rest == "maj":
		return QualityMajor, ""
	case strings.HasPrefix(rest, "maj"):
		// maj7 is an extension on a major triad
		return QualityMajor, rest
	case strings.HasPrefix(rest, "min"):
		return QualityMinor, strings.TrimPrefix(rest, "min")
	case strings.HasPrefix(rest, "dim"):
		return QualityDiminished, strings.TrimPrefix(rest, "dim")
	case strings.HasPrefix(rest, "°"):
		return QualityDiminished, strings.TrimPrefix(rest, "°")
	case strings.HasPrefix(rest, "aug"):
		return QualityAugmented, strings.TrimPrefix(rest, "aug")
	case strings.HasPrefix(rest, "+"):
		return QualityAugmented, strings.TrimPrefix(rest, "+")
	case strings.HasPrefix(rest, "sus2"):
		return QualitySus2, strings.TrimPrefix(rest, "sus2")
	case strings.HasPrefix(rest, "sus4"):
		return QualitySus4, strings.TrimPrefix(rest, "sus4")
	case strings.HasPrefix(rest, "m"):
		return QualityMinor, strings.TrimPrefix(rest, "m")
	}
	return QualityMajor, rest
}

func parseExtensions(rest string) ([]string, error) {
	var extensions []string

	// Longest markers first so "maj7" is not read as "7" and "add9" not as "9"
	markers := []string{ExtMajorSeventh, ExtAddNine, ExtThirteenth, ExtEleventh, ExtNinth, ExtSeventh}
	for rest != "" {
		matched := false
		for _, m := range markers {
			if strings.HasPrefix(rest, m) {
				extensions = append(extensions, m)
				rest = strings.TrimPrefix(rest, m)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown chord extension %q", rest)
		}
	}
	return extensions, nil
}

func buildChordTones(quality Quality, extensions []string) []tone {
	var tones []tone

	// Base triad
	switch quality {
	case QualityMinor:
		tones = []tone{{0, 0}, {2, 3}, {4, 7}}
	case QualityDiminished:
		tones = []tone{{0, 0}, {2, 3}, {4, 6}}
	case QualityAugmented:
		tones = []tone{{0, 0}, {2, 4}, {4, 8}}
	case QualitySus2:
		tones = []tone{{0, 0}, {1, 2}, {4, 7}}
	case QualitySus4:
		tones = []tone{{0, 0}, {3, 5}, {4, 7}}
	default:
		tones = []tone{{0, 0}, {2, 4}, {4, 7}}
	}

	// Add extensions
	for _, ext := range extensions {
		switch ext {
		case ExtSeventh:
			if quality == QualityDiminished {
				tones = append(tones, tone{6, 9}) // fully diminished seventh
			} else {
				tones = append(tones, tone{6, 10})
			}
		case ExtMajorSeventh:
			tones = append(tones, tone{6, 11})
		case ExtNinth:
			// a ninth implies the seventh below it
			tones = append(tones, tone{6, 10}, tone{1, 14})
		case ExtAddNine:
			tones = append(tones, tone{1, 14})
		case ExtEleventh:
			tones = append(tones, tone{3, 17})
		case ExtThirteenth:
			tones = append(tones, tone{5, 21})
		}
	}

	return tones
}

// ClosedPosition respells the chord as tightly as possible: every tone within one
// octave above the root, ascending, duplicates removed. A slash bass stays lowest.
func ClosedPosition(c Chord) []Pitch {
	type placed struct {
		p      Pitch
		height int
	}

	rootClass := c.Root.Class()
	seen := make(map[int]bool)
	var members []placed
	for _, p := range c.Pitches {
		if c.Bass != nil && p == *c.Bass {
			continue
		}
		if seen[p.Class()] {
			continue
		}
		seen[p.Class()] = true
		members = append(members, placed{p: p, height: mod12(p.Class() - rootClass)})
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].height < members[j].height })

	out := make([]Pitch, 0, len(members)+1)
	if c.Bass != nil {
		out = append(out, *c.Bass)
	}
	for _, m := range members {
		out = append(out, m.p)
	}
	return out
}
