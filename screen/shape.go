// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
)

// Ink selects how a part of a shape is painted.
type Ink uint8

const (
	// Default uses the shape's default: black outlines and strokes, white
	// fills.
	Default Ink = iota
	Black
	White
	// Transparent leaves the part unpainted.
	Transparent
)

func (i Ink) String() string {
	switch i {
	case Default:
		return "Default"
	case Black:
		return "Black"
	case White:
		return "White"
	case Transparent:
		return "Transparent"
	}
	return "Ink(?)"
}

// resolve returns the color for the ink, or nil for Transparent.
func (i Ink) resolve(def Ink) color.Color {
	if i == Default {
		i = def
	}
	switch i {
	case Black:
		return color.Black
	case White:
		return color.White
	}
	return nil
}

// Shape is one drawing command. The set of shapes is closed: Rect, Ellipse,
// Line, Polygon and Text.
type Shape interface {
	kind() string
}

// Rect is an axis-aligned rectangle. Both corners are inclusive.
type Rect struct {
	Min, Max image.Point
	Outline  Ink
	Fill     Ink
}

// Ellipse is inscribed in the rectangle spanned by Min and Max (inclusive).
type Ellipse struct {
	Min, Max image.Point
	Outline  Ink
	Fill     Ink
}

// Line is a polyline through Points.
type Line struct {
	Points []image.Point
	// Width in pixels; 0 means 1.
	Width int
	Ink   Ink
}

// Polygon is a closed outline through Points.
type Polygon struct {
	Points  []image.Point
	Outline Ink
	Fill    Ink
}

// Text is a string whose top-left corner is At, rotated by Angle degrees
// clockwise around At.
type Text struct {
	At    image.Point
	Text  string
	Ink   Ink
	Angle float64
	// Face is the font to use; nil selects the screen's default face.
	Face font.Face
}

func (Rect) kind() string { return "rect" }
func (Ellipse) kind() string { return "ellipse" }
func (Line) kind() string { return "line" }
func (Polygon) kind() string { return "polygon" }
func (Text) kind() string { return "text" }
