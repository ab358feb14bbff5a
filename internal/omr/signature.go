package omr

import "context"

// Default tokens used whenever a signature cannot be read
const (
	DefaultKeySignature  = "C"
	DefaultTimeSignature = "4/4"
)

// Signatures holds the key and time signature tokens, e.g. "C" and "4/4"
type Signatures struct {
	Key  string
	Time string
}

// SignatureDetector reads key and time signatures. Implementations return the
// defaults unless they are confident; an empty token is treated as the default.
type SignatureDetector interface {
	Detect(ctx context.Context, bm *Bitmap, staves []StaffGroup) Signatures
}

// DefaultSignatureDetector always reports C major in 4/4.
//
// Reading real signatures means template matching the accidentals after the
// clef and recognizing the stacked time-signature digits.
type DefaultSignatureDetector struct{}

func (DefaultSignatureDetector) Detect(context.Context, *Bitmap, []StaffGroup) Signatures {
	return Signatures{Key: DefaultKeySignature, Time: DefaultTimeSignature}
}

func (s Signatures) withDefaults() Signatures {
	if s.Key == "" {
		s.Key = DefaultKeySignature
	}
	if s.Time == "" {
		s.Time = DefaultTimeSignature
	}
	return s
}
