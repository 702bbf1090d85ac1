// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview emulates a monochrome e-paper panel in the terminal
// (stdout) using ANSI color codes.
//
// It mimics the frame memory of the real controller: WriteFrame only updates
// the memory and nothing is printed until ActivateDisplay. Useful to work on
// a scene before the panel arrives.
package termview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ErrSleeping is returned by pixel operations while the emulated panel is in
// deep sleep.
var ErrSleeping = errors.New("termview: display is asleep")

// Opts represents the options available for this display.
type Opts struct {
	Width, Height int
	Palette       *ansi256.Palette

	_ struct{}
}

// Dev is an e-paper panel emulator that outputs to the console.
//
// Dev is not safe for concurrent use.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette

	frame   *image1bit.VerticalLSB
	partial bool
	asleep  bool
	frames  int

	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	return NewWriter(colorable.NewColorableStdout(), opts)
}

// NewWriter returns a Dev that prints to w.
func NewWriter(w io.Writer, opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{
		w:       w,
		palette: *p,
		frame:   image1bit.NewVerticalLSB(image.Rect(0, 0, opts.Width, opts.Height)),
	}
	draw.Src.Draw(d.frame, d.frame.Bounds(), &image.Uniform{image1bit.On}, image.Point{})
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("termview.Dev{Width: %d, Height: %d}", d.frame.Rect.Dx(), d.frame.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.frame.Bounds()
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.asleep {
		return ErrSleeping
	}
	draw.Src.Draw(d.frame, r, src, sp)
	return d.refresh()
}

// Frames returns how many times the panel was refreshed.
func (d *Dev) Frames() int {
	return d.frames
}

// Partial reports whether the partial update mode is selected.
func (d *Dev) Partial() bool {
	return d.partial
}

// SetPartialUpdate selects partial updates and wakes the panel.
func (d *Dev) SetPartialUpdate() error {
	d.partial = true
	d.asleep = false
	return nil
}

// SetFullUpdate selects full updates and wakes the panel.
func (d *Dev) SetFullUpdate() error {
	d.partial = false
	d.asleep = false
	return nil
}

// WriteFrame copies img into the frame memory at (x, y). The horizontal
// position is truncated to a multiple of 8, as on the real controller. A nil
// image or a negative position is ignored.
func (d *Dev) WriteFrame(img image.Image, x, y int) error {
	if img == nil || x < 0 || y < 0 {
		return nil
	}
	if d.asleep {
		return ErrSleeping
	}
	x &^= 7
	b := img.Bounds()
	r := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+b.Dx(), y+b.Dy())}
	draw.Src.Draw(d.frame, r, img, b.Min)
	return nil
}

// ActivateDisplay prints the frame memory.
func (d *Dev) ActivateDisplay() error {
	if d.asleep {
		return ErrSleeping
	}
	return d.refresh()
}

// ClearScreen blanks the frame memory, prints it and selects partial updates.
func (d *Dev) ClearScreen() error {
	if err := d.SetFullUpdate(); err != nil {
		return err
	}
	draw.Src.Draw(d.frame, d.frame.Bounds(), &image.Uniform{image1bit.On}, image.Point{})
	if err := d.refresh(); err != nil {
		return err
	}
	return d.SetPartialUpdate()
}

// Sleep emulates deep sleep. SetPartialUpdate or SetFullUpdate wake it up.
func (d *Dev) Sleep() error {
	d.asleep = true
	return nil
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\033[H\033[0m")
	b := d.frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA{A: 255}
			if d.frame.BitAt(x, y) {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.frames++
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
