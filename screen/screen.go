// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen keeps an ordered list of named shapes and renders them into
// a 1-bit image for e-paper displays.
//
// Shapes are replayed in insertion order on every call to Image, on a white
// background. Replacing a named shape keeps its position in the order, which
// makes simple animations a matter of Set followed by a display update.
package screen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ErrUnknownShape is returned for names not present on the screen.
var ErrUnknownShape = errors.New("screen: unknown shape")

// Screen is a named, ordered collection of shapes.
type Screen struct {
	width, height int

	fonts FontProvider
	face  font.Face

	order   []string
	shapes  map[string]Shape
	counter int
}

// New returns an empty screen. The default text face is resolved once from
// fonts; a nil provider or a failure selects basicfont.Face7x13.
func New(width, height int, fonts FontProvider) *Screen {
	s := &Screen{
		width:  width,
		height: height,
		fonts:  fonts,
		shapes: map[string]Shape{},
	}

	s.face = basicfont.Face7x13
	if fonts != nil {
		s.face, _ = FaceOrFallback(fonts, "", DefaultFontSize)
	}

	return s
}

// Bounds returns the size of the rendered image.
func (s *Screen) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Face resolves a font through the screen's provider with the fallback
// policy of FaceOrFallback.
func (s *Screen) Face(name string, size float64) (font.Face, error) {
	if s.fonts == nil {
		return s.face, errors.New("screen: no font provider")
	}
	return FaceOrFallback(s.fonts, name, size)
}

// Add appends a shape and returns its name. An empty name is replaced with
// the shape kind and a running counter ("rect0", "line1", ...). Adding under
// an existing name replaces that shape in place.
func (s *Screen) Add(name string, sh Shape) string {
	if name == "" {
		name = fmt.Sprintf("%s%d", sh.kind(), s.counter)
	}
	s.counter++

	if _, ok := s.shapes[name]; !ok {
		s.order = append(s.order, name)
	}
	s.shapes[name] = sh

	return name
}

// Get returns the named shape.
func (s *Screen) Get(name string) (Shape, error) {
	sh, ok := s.shapes[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownShape, name)
	}
	return sh, nil
}

// Set replaces an existing shape, keeping its drawing position.
func (s *Screen) Set(name string, sh Shape) error {
	if _, ok := s.shapes[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownShape, name)
	}
	s.shapes[name] = sh
	return nil
}

// Remove deletes the named shape.
func (s *Screen) Remove(name string) error {
	if _, ok := s.shapes[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownShape, name)
	}

	delete(s.shapes, name)

	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

// Names returns the shape names in drawing order.
func (s *Screen) Names() []string {
	return append([]string(nil), s.order...)
}

// Reset removes all shapes and restarts the name counter.
func (s *Screen) Reset() {
	s.order = nil
	s.shapes = map[string]Shape{}
	s.counter = 0
}

// Image renders all shapes onto a white background.
func (s *Screen) Image() image.Image {
	dc := gg.NewContext(s.width, s.height)
	dc.SetColor(color.White)
	dc.Clear()

	for _, name := range s.order {
		s.draw(dc, s.shapes[name])
	}

	img := image1bit.NewVerticalLSB(s.Bounds())
	draw.Src.Draw(img, img.Bounds(), dc.Image(), image.Point{})

	return img
}

func (s *Screen) draw(dc *gg.Context, sh Shape) {
	switch sh := sh.(type) {
	case Rect:
		drawRect(dc, sh)
	case Ellipse:
		drawEllipse(dc, sh)
	case Line:
		drawLine(dc, sh)
	case Polygon:
		drawPolygon(dc, sh)
	case Text:
		s.drawText(dc, sh)
	}
}

// Pixel (x, y) covers the square [x, x+1) x [y, y+1). Fills cover whole
// pixels; 1 pixel strokes run through pixel centers.

func fillAndStroke(dc *gg.Context, fill, outline color.Color, fillPath, strokePath func()) {
	if fill != nil {
		fillPath()
		dc.SetColor(fill)
		dc.Fill()
	}
	if outline != nil {
		strokePath()
		dc.SetColor(outline)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
}

func canon(a, b image.Point) (image.Point, image.Point) {
	r := image.Rectangle{Min: a, Max: b}.Canon()
	return r.Min, r.Max
}

func drawRect(dc *gg.Context, r Rect) {
	lo, hi := canon(r.Min, r.Max)
	x, y := float64(lo.X), float64(lo.Y)
	w, h := float64(hi.X-lo.X), float64(hi.Y-lo.Y)

	fillAndStroke(dc, r.Fill.resolve(White), r.Outline.resolve(Black),
		func() { dc.DrawRectangle(x, y, w+1, h+1) },
		func() { dc.DrawRectangle(x+0.5, y+0.5, w, h) },
	)
}

func drawEllipse(dc *gg.Context, e Ellipse) {
	lo, hi := canon(e.Min, e.Max)
	cx := float64(lo.X+hi.X+1) / 2
	cy := float64(lo.Y+hi.Y+1) / 2
	rx := float64(hi.X-lo.X+1) / 2
	ry := float64(hi.Y-lo.Y+1) / 2

	fillAndStroke(dc, e.Fill.resolve(White), e.Outline.resolve(Black),
		func() { dc.DrawEllipse(cx, cy, rx, ry) },
		func() { dc.DrawEllipse(cx, cy, rx-0.5, ry-0.5) },
	)
}

func pointPath(dc *gg.Context, pts []image.Point, closed bool) {
	dc.NewSubPath()
	for i, p := range pts {
		x, y := float64(p.X)+0.5, float64(p.Y)+0.5
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	if closed {
		dc.ClosePath()
	}
}

func drawLine(dc *gg.Context, l Line) {
	c := l.Ink.resolve(Black)
	if c == nil || len(l.Points) < 2 {
		return
	}

	width := l.Width
	if width <= 0 {
		width = 1
	}

	pointPath(dc, l.Points, false)
	dc.SetColor(c)
	dc.SetLineWidth(float64(width))
	dc.SetLineCapSquare()
	dc.Stroke()
}

func drawPolygon(dc *gg.Context, p Polygon) {
	if len(p.Points) < 2 {
		return
	}

	fillAndStroke(dc, p.Fill.resolve(White), p.Outline.resolve(Black),
		func() { pointPath(dc, p.Points, true) },
		func() { pointPath(dc, p.Points, true) },
	)
}

func (s *Screen) drawText(dc *gg.Context, t Text) {
	c := t.Ink.resolve(Black)
	if c == nil || t.Text == "" {
		return
	}

	face := t.Face
	if face == nil {
		face = s.face
	}

	x, y := float64(t.At.X), float64(t.At.Y)

	dc.Push()
	defer dc.Pop()

	dc.SetFontFace(face)
	dc.SetColor(c)
	if t.Angle != 0 {
		dc.RotateAbout(gg.Radians(t.Angle), x, y)
	}
	dc.DrawStringAnchored(t.Text, x, y, 0, 1)
}
