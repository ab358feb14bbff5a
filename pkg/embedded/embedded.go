package embedded

import (
	_ "embed"
)

// Embedded harmonic data
//
//go:embed data/progressions.json
var ProgressionsJSON []byte
