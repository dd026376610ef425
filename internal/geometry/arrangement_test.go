package geometry

import (
	"math"
	"testing"
)

func refs(ids ...string) []LightRef {
	out := make([]LightRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, LightRef{ID: id, Name: "Light " + id})
	}
	return out
}

func TestArrangeLinear(t *testing.T) {
	tests := []struct {
		name   string
		lights []LightRef
		config ConfigurationType
		wantX  []float64
		wantY  float64
	}{
		{
			name:   "single_light_centered",
			lights: refs("L1"),
			config: ConfigurationSpace3D,
			wantX:  []float64{0},
			wantY:  0,
		},
		{
			name:   "two_lights_at_extents",
			lights: refs("L1", "L2"),
			config: ConfigurationSpace3D,
			wantX:  []float64{-0.8, 0.8},
			wantY:  0,
		},
		{
			name:   "five_lights_even_spacing",
			lights: refs("L1", "L2", "L3", "L4", "L5"),
			config: ConfigurationSpace3D,
			wantX:  []float64{-0.8, -0.4, 0, 0.4, 0.8},
			wantY:  0,
		},
		{
			name:   "screen_layout_raises_row",
			lights: refs("L1", "L2", "L3"),
			config: ConfigurationScreen,
			wantX:  []float64{-0.8, 0, 0.8},
			wantY:  0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Arrange(tt.lights, ArrangementLinear, tt.config)
			if err != nil {
				t.Fatalf("Arrange() error: %v", err)
			}
			if len(got) != len(tt.lights) {
				t.Fatalf("got %d positions, want %d", len(got), len(tt.lights))
			}
			for i, pos := range got {
				if !almostEqual(pos.X, tt.wantX[i]) {
					t.Errorf("light %d: x = %v, want %v", i, pos.X, tt.wantX[i])
				}
				if !almostEqual(pos.Y, tt.wantY) {
					t.Errorf("light %d: y = %v, want %v", i, pos.Y, tt.wantY)
				}
				if pos.Z != 0 {
					t.Errorf("light %d: z = %v, want 0", i, pos.Z)
				}
			}
		})
	}
}

func TestArrangeCircle(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 12} {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = "L" + string(rune('0'+i))
		}

		got, err := Arrange(refs(ids...), ArrangementCircle, ConfigurationSpace3D)
		if err != nil {
			t.Fatalf("Arrange() error: %v", err)
		}
		if len(got) != n {
			t.Fatalf("n=%d: got %d positions", n, len(got))
		}

		seen := make(map[[2]float64]bool)
		for i, pos := range got {
			// Fixed radius for every point.
			radius := math.Hypot(pos.X, pos.Y)
			if math.Abs(radius-circleRadius) > tolerance {
				t.Errorf("n=%d light %d: radius = %v, want %v", n, i, radius, circleRadius)
			}

			// Equal angular spacing of 2*pi/n from angle 0.
			wantAngle := (float64(i) / float64(n)) * 2 * math.Pi
			gotAngle := math.Atan2(pos.Y, pos.X)
			if gotAngle < 0 {
				gotAngle += 2 * math.Pi
			}
			// Rounded coordinates perturb the angle slightly on large circles.
			if diff := math.Abs(gotAngle - wantAngle); diff > 0.01 && math.Abs(diff-2*math.Pi) > 0.01 {
				t.Errorf("n=%d light %d: angle = %v, want %v", n, i, gotAngle, wantAngle)
			}

			if pos.Z != 0 {
				t.Errorf("n=%d light %d: z = %v, want 0", n, i, pos.Z)
			}

			key := [2]float64{pos.X, pos.Y}
			if seen[key] {
				t.Errorf("n=%d: duplicate point (%v, %v)", n, pos.X, pos.Y)
			}
			seen[key] = true
		}
	}
}

func TestArrangeRectangle(t *testing.T) {
	t.Run("five_lights_across_four_sides", func(t *testing.T) {
		got, err := Arrange(refs("L1", "L2", "L3", "L4", "L5"), ArrangementRectangle, ConfigurationSpace3D)
		if err != nil {
			t.Fatalf("Arrange() error: %v", err)
		}

		// perSide = ceil(5/4) = 2: top gets L1+L2, the rest one light each.
		want := []LightPosition{
			{LightID: "L1", X: -0.8, Y: 0.8}, // top-left-most slot of the top edge
			{LightID: "L2", X: 0.8, Y: 0.8},
			{LightID: "L3", X: 0.8, Y: 0},  // right edge, centered
			{LightID: "L4", X: 0, Y: -0.8}, // bottom edge, centered
			{LightID: "L5", X: -0.8, Y: 0}, // left edge, centered
		}

		for i, w := range want {
			if got[i].LightID != w.LightID {
				t.Errorf("slot %d: light %s, want %s", i, got[i].LightID, w.LightID)
			}
			if !almostEqual(got[i].X, w.X) || !almostEqual(got[i].Y, w.Y) {
				t.Errorf("%s: (%v, %v), want (%v, %v)", w.LightID, got[i].X, got[i].Y, w.X, w.Y)
			}
			if !got[i].InRange() {
				t.Errorf("%s: position out of range", w.LightID)
			}
		}
	})

	t.Run("eight_lights_two_per_side", func(t *testing.T) {
		got, err := Arrange(refs("A", "B", "C", "D", "E", "F", "G", "H"), ArrangementRectangle, ConfigurationSpace3D)
		if err != nil {
			t.Fatalf("Arrange() error: %v", err)
		}

		// perSide = 2: each side holds two slots tracing the rectangle
		// clockwise. Adjacent sides share their corner slots.
		want := [][2]float64{
			{-0.8, 0.8}, {0.8, 0.8}, // top, left to right
			{0.8, 0.8}, {0.8, -0.8}, // right, top to bottom
			{0.8, -0.8}, {-0.8, -0.8}, // bottom, right to left
			{-0.8, -0.8}, {-0.8, 0.8}, // left, bottom to top
		}
		for i, pos := range got {
			if !almostEqual(pos.X, want[i][0]) || !almostEqual(pos.Y, want[i][1]) {
				t.Errorf("%s: (%v, %v), want (%v, %v)", pos.LightID, pos.X, pos.Y, want[i][0], want[i][1])
			}
		}
	})

	t.Run("sides_split_evenly_with_remainder_first", func(t *testing.T) {
		// n=6 -> 2/2/1/1, n=7 -> 2/2/2/1: every edge used, no ceil-fill
		// pileup that leaves the left edge empty.
		for _, n := range []int{4, 5, 6, 7, 9, 11} {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = "L" + string(rune('0'+i))
			}
			got, err := Arrange(refs(ids...), ArrangementRectangle, ConfigurationSpace3D)
			if err != nil {
				t.Fatalf("n=%d: %v", n, err)
			}

			// Corner lights belong to both adjacent edges.
			var onEdge [4]bool
			for _, pos := range got {
				hit := false
				if almostEqual(pos.Y, edgeExtent) {
					onEdge[0], hit = true, true
				}
				if almostEqual(pos.X, edgeExtent) {
					onEdge[1], hit = true, true
				}
				if almostEqual(pos.Y, -edgeExtent) {
					onEdge[2], hit = true, true
				}
				if almostEqual(pos.X, -edgeExtent) {
					onEdge[3], hit = true, true
				}
				if !hit {
					t.Errorf("n=%d %s: (%v, %v) is on no edge", n, pos.LightID, pos.X, pos.Y)
				}
			}
			for side, used := range onEdge {
				if !used {
					t.Errorf("n=%d: edge %d holds no lights", n, side)
				}
			}
		}
	})

	t.Run("five_lights_have_distinct_points", func(t *testing.T) {
		got, err := Arrange(refs("L1", "L2", "L3", "L4", "L5"), ArrangementRectangle, ConfigurationSpace3D)
		if err != nil {
			t.Fatalf("Arrange() error: %v", err)
		}
		seen := make(map[[2]float64]string)
		for _, pos := range got {
			key := [2]float64{pos.X, pos.Y}
			if prev, ok := seen[key]; ok {
				t.Errorf("%s collides with %s at (%v, %v)", pos.LightID, prev, pos.X, pos.Y)
			}
			seen[key] = pos.LightID
		}
	})

	t.Run("centered_slots_never_emit_negative_zero", func(t *testing.T) {
		got, err := Arrange(refs("L1", "L2", "L3", "L4", "L5"), ArrangementRectangle, ConfigurationSpace3D)
		if err != nil {
			t.Fatalf("Arrange() error: %v", err)
		}
		for _, pos := range got {
			for _, v := range []float64{pos.X, pos.Y, pos.Z} {
				if v == 0 && math.Signbit(v) {
					t.Errorf("%s: coordinate is -0", pos.LightID)
				}
			}
		}
	})

	t.Run("single_light_centered_on_top", func(t *testing.T) {
		got, err := Arrange(refs("L1"), ArrangementRectangle, ConfigurationSpace3D)
		if err != nil {
			t.Fatalf("Arrange() error: %v", err)
		}
		if !almostEqual(got[0].X, 0) || !almostEqual(got[0].Y, 0.8) {
			t.Errorf("single light at (%v, %v), want (0, 0.8)", got[0].X, got[0].Y)
		}
	})
}

func TestArrangeCustomHasNoGenerator(t *testing.T) {
	if _, err := Arrange(refs("L1"), ArrangementCustom, ConfigurationSpace3D); err == nil {
		t.Error("expected error for custom arrangement")
	}
}

func TestArrangeAllCoordinatesRounded(t *testing.T) {
	for _, arr := range []ArrangementType{ArrangementLinear, ArrangementCircle, ArrangementRectangle} {
		got, err := Arrange(refs("L1", "L2", "L3", "L4", "L5", "L6", "L7"), arr, ConfigurationScreen)
		if err != nil {
			t.Fatalf("%s: %v", arr, err)
		}
		for _, pos := range got {
			for _, v := range []float64{pos.X, pos.Y, pos.Z} {
				if Round3(v) != v {
					t.Errorf("%s %s: coordinate %v not rounded to 3 decimals", arr, pos.LightID, v)
				}
			}
			if !pos.InRange() {
				t.Errorf("%s %s: out of range", arr, pos.LightID)
			}
		}
	}
}
