// Package geometry implements the coordinate engine for entertainment-area
// position mapping: conversion between normalized world space ([-1,1] per
// axis) and 2D canvas pixel space, plus algorithmic light arrangements.
package geometry

import "math"

// canvasMarginFactor reserves 15% of the canvas radius for boundary and labels.
const canvasMarginFactor = 0.85

// Point is a position in canvas pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LightPosition is a light's position in normalized world space.
// All three coordinates are kept within [-1, 1].
type LightPosition struct {
	LightID   string  `json:"lightId"`
	LightName string  `json:"lightName"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// InRange reports whether all three coordinates are within [-1, 1].
func (p LightPosition) InRange() bool {
	return p.X >= -1 && p.X <= 1 &&
		p.Y >= -1 && p.Y <= 1 &&
		p.Z >= -1 && p.Z <= 1
}

// WorldToCanvas maps a world coordinate onto a square canvas of the given
// pixel size. The Y axis is flipped: world Y grows up, screen Y grows down.
func WorldToCanvas(x, y float64, canvasSize int) Point {
	center := float64(canvasSize) / 2
	scale := center * canvasMarginFactor

	return Point{
		X: center + x*scale,
		Y: center - y*scale,
	}
}

// CanvasToWorld maps a canvas pixel coordinate back into world space.
// Each axis is clamped independently so drags that leave the canvas
// saturate at the world boundary instead of extrapolating.
func CanvasToWorld(px, py float64, canvasSize int) (x, y float64) {
	center := float64(canvasSize) / 2
	scale := center * canvasMarginFactor

	x = Clamp((px - center) / scale)
	y = Clamp((center - py) / scale)
	return x, y
}

// Clamp saturates a single world coordinate to [-1, 1].
func Clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Round3 rounds a coordinate to 3 decimal places (1/1000 world-unit
// resolution). Applied after every interactive update so repeated drag
// deltas do not accumulate floating-point noise. Negative zero is folded
// into zero so it cannot surface as "-0" in JSON payloads.
func Round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0
	}
	return r
}
