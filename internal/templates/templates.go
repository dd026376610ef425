// Package templates holds the static room-template catalog used by the
// entertainment-area wizard. Templates are not user-mutable at runtime.
package templates

import "github.com/lightpanel/lightpaneld/internal/geometry"

// RoomTemplate describes a preset area layout.
type RoomTemplate struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	Description       string                     `json:"description"`
	ConfigurationType geometry.ConfigurationType `json:"configurationType"`
	Arrangement       geometry.ArrangementType   `json:"arrangement"`
}

var catalog = []RoomTemplate{
	{
		ID:                "tv-setup",
		Name:              "TV / Monitor",
		Description:       "Lights in a row above a screen for screen-sync effects",
		ConfigurationType: geometry.ConfigurationScreen,
		Arrangement:       geometry.ArrangementLinear,
	},
	{
		ID:                "desk",
		Name:              "Desk",
		Description:       "Lights spread along the desk edge",
		ConfigurationType: geometry.ConfigurationScreen,
		Arrangement:       geometry.ArrangementLinear,
	},
	{
		ID:                "living-room",
		Name:              "Living room",
		Description:       "Lights in a circle around the seating area",
		ConfigurationType: geometry.ConfigurationSpace3D,
		Arrangement:       geometry.ArrangementCircle,
	},
	{
		ID:                "gaming-room",
		Name:              "Gaming room",
		Description:       "Lights along the room walls",
		ConfigurationType: geometry.ConfigurationSpace3D,
		Arrangement:       geometry.ArrangementRectangle,
	},
	{
		ID:                "free-placement",
		Name:              "Free placement",
		Description:       "Position every light by hand",
		ConfigurationType: geometry.ConfigurationSpace3D,
		Arrangement:       geometry.ArrangementCustom,
	},
}

// All returns the full template catalog.
func All() []RoomTemplate {
	out := make([]RoomTemplate, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up a template by its id.
func ByID(id string) (RoomTemplate, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return RoomTemplate{}, false
}
