package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Conceptual-Machines/practice-companion/internal/omr"
)

// Tuning holds detector parameters, loaded from an optional YAML file
type Tuning struct {
	Preprocess PreprocessTuning `yaml:"preprocess"`
	Staff      LineTuning       `yaml:"staff"`
	Bars       LineTuning       `yaml:"bars"`
}

// PreprocessTuning controls smoothing and adaptive thresholding
type PreprocessTuning struct {
	BlurKernel int     `yaml:"blur_kernel"` // odd
	BlockSize  int     `yaml:"block_size"`  // odd, >= 3
	C          float64 `yaml:"c"`
}

// LineTuning controls one Hough line pass
type LineTuning struct {
	Threshold int     `yaml:"threshold"`
	MinLength int     `yaml:"min_length"`
	MaxGap    int     `yaml:"max_gap"`
	MaxAngle  float64 `yaml:"max_angle"` // degrees from the target orientation
}

// DefaultTuning matches the built-in detector defaults
func DefaultTuning() *Tuning {
	pre := omr.DefaultPreprocessParams()
	staff := omr.DefaultStaffParams()
	bars := omr.DefaultBarParams()
	return &Tuning{
		Preprocess: PreprocessTuning{BlurKernel: pre.BlurKernel, BlockSize: pre.BlockSize, C: pre.C},
		Staff: LineTuning{
			Threshold: staff.Lines.Threshold, MinLength: staff.Lines.MinLength,
			MaxGap: staff.Lines.MaxGap, MaxAngle: staff.MaxAngle,
		},
		Bars: LineTuning{
			Threshold: bars.Lines.Threshold, MinLength: bars.Lines.MinLength,
			MaxGap: bars.Lines.MaxGap, MaxAngle: bars.MaxTilt,
		},
	}
}

// LoadTuning reads a tuning file over the defaults. An empty path returns the defaults.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	return t, nil
}

// Validate checks parameter ranges
func (t *Tuning) Validate() error {
	var errs []error
	if t.Preprocess.BlurKernel < 1 || t.Preprocess.BlurKernel%2 == 0 {
		errs = append(errs, fmt.Errorf("preprocess.blur_kernel must be a positive odd number, got %d", t.Preprocess.BlurKernel))
	}
	if t.Preprocess.BlockSize < 3 || t.Preprocess.BlockSize%2 == 0 {
		errs = append(errs, fmt.Errorf("preprocess.block_size must be odd and >= 3, got %d", t.Preprocess.BlockSize))
	}
	errs = append(errs, t.Staff.validate("staff"), t.Bars.validate("bars"))
	return errors.Join(errs...)
}

func (l LineTuning) validate(name string) error {
	var errs []error
	if l.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("%s.threshold must be positive", name))
	}
	if l.MinLength <= 0 {
		errs = append(errs, fmt.Errorf("%s.min_length must be positive", name))
	}
	if l.MaxGap < 0 {
		errs = append(errs, fmt.Errorf("%s.max_gap must not be negative", name))
	}
	if l.MaxAngle <= 0 || l.MaxAngle >= 45 {
		errs = append(errs, fmt.Errorf("%s.max_angle must be in (0, 45), got %g", name, l.MaxAngle))
	}
	return errors.Join(errs...)
}

// PreprocessParams converts to preprocessor parameters
func (t *Tuning) PreprocessParams() omr.PreprocessParams {
	return omr.PreprocessParams{BlurKernel: t.Preprocess.BlurKernel, BlockSize: t.Preprocess.BlockSize, C: t.Preprocess.C}
}

// StaffParams converts to staff detector parameters
func (t *Tuning) StaffParams() omr.StaffParams {
	return omr.StaffParams{Lines: t.Staff.lineParams(), MaxAngle: t.Staff.MaxAngle}
}

// BarParams converts to measure segmenter parameters
func (t *Tuning) BarParams() omr.BarParams {
	return omr.BarParams{Lines: t.Bars.lineParams(), MaxTilt: t.Bars.MaxAngle}
}

func (l LineTuning) lineParams() omr.LineParams {
	return omr.LineParams{Threshold: l.Threshold, MinLength: l.MinLength, MaxGap: l.MaxGap}
}
