package harmony

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/practice-companion/internal/theory"
	"github.com/Conceptual-Machines/practice-companion/pkg/embedded"
)

// Template is a Roman-numeral chord pattern
type Template []string

// Catalogue holds the progression templates per mode. It is read-only once loaded.
type Catalogue struct {
	Major []Template `json:"major"`
	Minor []Template `json:"minor"`
}

// LoadCatalogue parses and validates a catalogue document
func LoadCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse progression catalogue: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultCatalogue returns the embedded catalogue
func DefaultCatalogue() (*Catalogue, error) {
	return LoadCatalogue(embedded.ProgressionsJSON)
}

// Validate requires at least one non-empty template per mode
func (c *Catalogue) Validate() error {
	var errs []error
	for mode, templates := range map[theory.Mode][]Template{theory.Major: c.Major, theory.Minor: c.Minor} {
		if len(templates) == 0 {
			errs = append(errs, fmt.Errorf("no %s templates", mode))
		}
		for i, t := range templates {
			if len(t) == 0 {
				errs = append(errs, fmt.Errorf("%s template %d is empty", mode, i))
			}
		}
	}
	return errors.Join(errs...)
}

// Templates returns the templates for a mode
func (c *Catalogue) Templates(mode theory.Mode) ([]Template, error) {
	var templates []Template
	switch mode {
	case theory.Major:
		templates = c.Major
	case theory.Minor:
		templates = c.Minor
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("no progression templates for mode %q", mode)
	}
	return templates, nil
}
