package theory

// Engine exposes the package functions as a value, so analyzers can depend on an
// interface and tests can substitute a fake.
type Engine struct{}

func (Engine) ParseKey(name string) (Key, error) { return ParseKey(name) }

func (Engine) RomanToChord(numeral string, key Key) (Chord, error) {
	return RomanToChord(numeral, key)
}

func (Engine) ParseChord(symbol string) (Chord, error) { return ParseChord(symbol) }

func (Engine) RomanFromChord(c Chord, key Key) (RomanAnalysis, error) {
	return RomanFromChord(c, key)
}

func (Engine) ClosedPosition(c Chord) []Pitch { return ClosedPosition(c) }

func (Engine) VoicingMIDI(voicing []Pitch, octave int) []int { return VoicingMIDI(voicing, octave) }

func (Engine) ChordToMIDI(symbol string, octave int) ([]int, error) {
	return ChordToMIDI(symbol, octave)
}

func (Engine) FunctionOf(numeral string) Function { return FunctionOf(numeral) }
