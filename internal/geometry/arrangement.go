package geometry

import (
	"fmt"
	"math"
)

// ConfigurationType distinguishes screen-anchored layouts from free 3D space.
type ConfigurationType string

const (
	ConfigurationScreen  ConfigurationType = "screen"
	ConfigurationSpace3D ConfigurationType = "3dspace"
)

// ArrangementType is an algorithmic layout for a set of lights.
type ArrangementType string

const (
	ArrangementLinear    ArrangementType = "linear"
	ArrangementCircle    ArrangementType = "circle"
	ArrangementRectangle ArrangementType = "rectangle"
	ArrangementCustom    ArrangementType = "custom"
)

// Arrangement constants. The circle radius is canonical: earlier panel
// builds disagreed between 0.7 and 0.8, which was a divergence bug.
const (
	circleRadius = 0.75
	edgeExtent   = 0.8
	screenRowY   = 0.6
)

// LightRef identifies a light to be placed by an arrangement.
type LightRef struct {
	ID   string
	Name string
}

// Arrange produces a complete position set for the given lights. The result
// replaces any existing position map wholesale; partial updates are not
// supported. Input order is preserved: the first light takes the first slot
// of the arrangement. ArrangementCustom returns an error because it has no
// generator; custom layouts come from manual placement.
func Arrange(lights []LightRef, arrangement ArrangementType, config ConfigurationType) ([]LightPosition, error) {
	switch arrangement {
	case ArrangementLinear:
		return arrangeLinear(lights, config), nil
	case ArrangementCircle:
		return arrangeCircle(lights), nil
	case ArrangementRectangle:
		return arrangeRectangle(lights), nil
	default:
		return nil, fmt.Errorf("arrangement %q has no generator", arrangement)
	}
}

// arrangeLinear spaces lights evenly along the X axis from -0.8 to 0.8
// inclusive. Screen layouts sit above a display at y=0.6; generic 3D space
// uses y=0. A single light lands at x=0.
func arrangeLinear(lights []LightRef, config ConfigurationType) []LightPosition {
	y := 0.0
	if config == ConfigurationScreen {
		y = screenRowY
	}

	total := len(lights)
	positions := make([]LightPosition, 0, total)
	for i, l := range lights {
		x := 0.0
		if total > 1 {
			x = -edgeExtent + (float64(i)/float64(total-1))*(2*edgeExtent)
		}
		positions = append(positions, rounded(l, x, y, 0))
	}
	return positions
}

// arrangeCircle places lights equally spaced in angle on a fixed radius,
// starting at angle 0 (positive X axis) and going counter-clockwise.
func arrangeCircle(lights []LightRef) []LightPosition {
	total := len(lights)
	positions := make([]LightPosition, 0, total)
	for i, l := range lights {
		angle := (float64(i) / float64(total)) * 2 * math.Pi
		positions = append(positions, rounded(l,
			math.Cos(angle)*circleRadius,
			math.Sin(angle)*circleRadius,
			0))
	}
	return positions
}

// arrangeRectangle distributes lights clockwise across the four edges of a
// rectangle: top (left to right), right (top to bottom), bottom (right to
// left), left (bottom to top). Lights are divided as evenly as possible,
// the first sides taking the remainder, so five lights land 2/1/1/1 and
// every edge is used from four lights up. A side with a single light
// centers it.
func arrangeRectangle(lights []LightRef) []LightPosition {
	total := len(lights)

	var counts [4]int
	for side := range counts {
		counts[side] = total / 4
		if side < total%4 {
			counts[side]++
		}
	}

	positions := make([]LightPosition, 0, total)
	side, slot := 0, 0
	for _, l := range lights {
		for side < 3 && slot >= counts[side] {
			side++
			slot = 0
		}

		spread := 0.0
		if counts[side] > 1 {
			spread = -edgeExtent + (float64(slot)/float64(counts[side]-1))*(2*edgeExtent)
		}

		var x, y float64
		switch side {
		case 0: // top edge, left to right
			x, y = spread, edgeExtent
		case 1: // right edge, top to bottom
			x, y = edgeExtent, -spread
		case 2: // bottom edge, right to left
			x, y = -spread, -edgeExtent
		default: // left edge, bottom to top
			x, y = -edgeExtent, spread
		}

		positions = append(positions, rounded(l, x, y, 0))
		slot++
	}
	return positions
}

func rounded(l LightRef, x, y, z float64) LightPosition {
	return LightPosition{
		LightID:   l.ID,
		LightName: l.Name,
		X:         Round3(Clamp(x)),
		Y:         Round3(Clamp(y)),
		Z:         Round3(Clamp(z)),
	}
}
