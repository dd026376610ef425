// Package gradient implements backup and restore of gradient-zone presets.
//
// A preset is the exported JSON blob {name, deviceId, zones, createdAt}.
// Import shape-checks the blob and reports malformed input instead of
// dropping it.
package gradient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Zone describes one gradient segment on a strip: an inclusive LED range
// and its RGB color.
type Zone struct {
	Start int    `json:"start"`
	Stop  int    `json:"stop"`
	Color [3]int `json:"color"`
}

// Preset is the exported gradient blob.
type Preset struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	DeviceID  string    `json:"deviceId"`
	Zones     []Zone    `json:"zones"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidationError collects the shape violations found in an imported blob.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid gradient preset: " + strings.Join(e.Problems, "; ")
}

// Validate shape-checks a preset. All problems are collected so the caller
// can report them in one pass.
func (p *Preset) Validate() error {
	var problems []string

	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(p.DeviceID) == "" {
		problems = append(problems, "deviceId is required")
	}
	if len(p.Zones) == 0 {
		problems = append(problems, "at least one zone is required")
	}

	for i, z := range p.Zones {
		if z.Start < 0 {
			problems = append(problems, fmt.Sprintf("zone %d: start must be >= 0", i))
		}
		if z.Stop < z.Start {
			problems = append(problems, fmt.Sprintf("zone %d: stop must be >= start", i))
		}
		for _, c := range z.Color {
			if c < 0 || c > 255 {
				problems = append(problems, fmt.Sprintf("zone %d: color components must be 0..255", i))
				break
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Import parses and shape-checks an exported blob. Malformed JSON and shape
// violations are returned to the caller, never swallowed.
func Import(data []byte) (*Preset, error) {
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse gradient preset: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	return &p, nil
}

// Export serializes a preset for download, stamping ID and CreatedAt if
// absent.
func Export(p *Preset) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	return json.Marshal(p)
}
