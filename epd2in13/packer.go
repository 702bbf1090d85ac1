// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13

import (
	"fmt"
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Window is an area of the controller RAM in device pixels. Both ends are
// inclusive.
//
// The controller addresses X in bytes, so XStart and XEnd are truncated to
// multiples of 8 before use: a window starting at x=5 starts at x=0.
type Window struct {
	XStart, YStart int
	XEnd, YEnd     int
}

// Aligned returns the window with both X coordinates rounded down to a byte
// boundary.
func (w Window) Aligned() Window {
	w.XStart &= 0xF8
	w.XEnd &= 0xF8
	return w
}

func (w Window) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", w.XStart, w.YStart, w.XEnd, w.YEnd)
}

// white reports whether the pixel is sent as a set bit.
func white(img image.Image, x, y int) bool {
	if b, ok := img.(*image1bit.VerticalLSB); ok {
		return bool(b.BitAt(x, y))
	}
	return bool(image1bit.BitModel.Convert(img.At(x, y)).(image1bit.Bit))
}

// Pack converts an image of exactly width x height pixels into the
// controller's RAM layout: rows of (width+7)/8 bytes, most significant bit
// first. White pixels set their bit, black pixels leave it cleared.
func Pack(img image.Image, width, height int) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), width, height)
	}

	stride := (width + 7) / 8
	buf := make([]byte, stride*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if white(img, b.Min.X+x, b.Min.Y+y) {
				buf[x/8+y*stride] |= 0x80 >> (x % 8)
			}
		}
	}

	return buf, nil
}

// PackWindow returns the bytes the controller expects for the given window,
// row after row. The top-left pixel of the image is placed at the aligned
// window origin. Pixels outside the image are sent as cleared bits.
func PackWindow(img image.Image, w Window) []byte {
	w.XStart &= 0xF8

	if w.XStart < 0 || w.YStart < 0 || w.XEnd < w.XStart || w.YEnd < w.YStart {
		return nil
	}

	var out, row []byte

	for y := w.YStart; y <= w.YEnd; y++ {
		row = packRow(row, img, w, y)
		out = append(out, row...)
	}

	return out
}

// packRow packs one device row of the window into dst, reusing its storage.
// A trailing partial byte is emitted with the missing bits cleared.
func packRow(dst []byte, img image.Image, w Window, y int) []byte {
	b := img.Bounds()
	dst = dst[:0]

	var cur byte

	for x := w.XStart; x <= w.XEnd; x++ {
		pt := image.Pt(b.Min.X+x-w.XStart, b.Min.Y+y-w.YStart)

		if pt.In(b) && white(img, pt.X, pt.Y) {
			cur |= 0x80 >> (x % 8)
		}

		if x%8 == 7 || x == w.XEnd {
			dst = append(dst, cur)
			cur = 0
		}
	}

	return dst
}
