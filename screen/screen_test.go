// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func bitAt(t *testing.T, img image.Image, x, y int) image1bit.Bit {
	t.Helper()
	b, ok := img.(*image1bit.VerticalLSB)
	if !ok {
		t.Fatalf("Image() returned %T, want *image1bit.VerticalLSB", img)
	}
	return b.BitAt(x, y)
}

// blackPixels returns the positions of all black pixels.
func blackPixels(t *testing.T, img image.Image) []image.Point {
	t.Helper()
	var pts []image.Point
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if bitAt(t, img, x, y) == image1bit.Off {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	return pts
}

func TestAddNames(t *testing.T) {
	s := New(128, 250, nil)

	got := []string{
		s.Add("", Rect{Max: image.Pt(10, 10)}),
		s.Add("", Ellipse{Max: image.Pt(10, 10)}),
		s.Add("box", Rect{Max: image.Pt(5, 5)}),
		s.Add("", Line{Points: []image.Point{{0, 0}, {5, 5}}}),
		s.Add("", Polygon{Points: []image.Point{{0, 0}, {5, 5}, {0, 5}}}),
		s.Add("", Text{Text: "hi"}),
	}

	want := []string{"rect0", "ellipse1", "box", "line3", "polygon4", "text5"}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Add() names difference (-got +want):\n%s", diff)
	}

	if diff := cmp.Diff(s.Names(), want); diff != "" {
		t.Errorf("Names() difference (-got +want):\n%s", diff)
	}

	// Re-adding keeps the position.
	s.Add("ellipse1", Rect{})

	if diff := cmp.Diff(s.Names(), want); diff != "" {
		t.Errorf("Names() after re-add difference (-got +want):\n%s", diff)
	}

	if sh, err := s.Get("ellipse1"); err != nil {
		t.Errorf("Get() failed: %v", err)
	} else if _, ok := sh.(Rect); !ok {
		t.Errorf("Get() returned %T, want Rect", sh)
	}
}

func TestUnknownShape(t *testing.T) {
	s := New(128, 250, nil)

	if _, err := s.Get("nope"); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Get() returned %v, want %v", err, ErrUnknownShape)
	}
	if err := s.Set("nope", Rect{}); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Set() returned %v, want %v", err, ErrUnknownShape)
	}
	if err := s.Remove("nope"); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Remove() returned %v, want %v", err, ErrUnknownShape)
	}
}

func TestSetRemoveReset(t *testing.T) {
	s := New(128, 250, nil)

	s.Add("a", Rect{})
	s.Add("b", Rect{})
	s.Add("c", Rect{})

	moved := Rect{Min: image.Pt(20, 30), Max: image.Pt(30, 40)}
	if err := s.Set("b", moved); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if sh, _ := s.Get("b"); !cmp.Equal(sh, Shape(moved)) {
		t.Errorf("Get() = %v, want %v", sh, moved)
	}

	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}

	if diff := cmp.Diff(s.Names(), []string{"b", "c"}); diff != "" {
		t.Errorf("Names() difference (-got +want):\n%s", diff)
	}

	s.Reset()

	if got := s.Names(); len(got) != 0 {
		t.Errorf("Names() after Reset() = %v", got)
	}
	if got := s.Add("", Rect{}); got != "rect0" {
		t.Errorf("Add() after Reset() = %q, want %q", got, "rect0")
	}
}

func TestImageBlank(t *testing.T) {
	s := New(128, 250, nil)

	img := s.Image()

	if diff := cmp.Diff(img.Bounds(), image.Rect(0, 0, 128, 250)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}

	if pts := blackPixels(t, img); len(pts) != 0 {
		t.Errorf("blank image has %d black pixels", len(pts))
	}
}

func TestImageShapes(t *testing.T) {
	for _, tc := range []struct {
		name      string
		shape     Shape
		wantBlack []image.Point
		wantWhite []image.Point
	}{
		{
			name:      "filled rect",
			shape:     Rect{Min: image.Pt(10, 10), Max: image.Pt(40, 40), Fill: Black},
			wantBlack: []image.Point{{10, 10}, {25, 25}, {40, 40}},
			wantWhite: []image.Point{{9, 9}, {41, 41}, {60, 60}},
		},
		{
			name:      "outlined rect",
			shape:     Rect{Min: image.Pt(10, 10), Max: image.Pt(40, 40)},
			wantBlack: []image.Point{{10, 10}, {25, 10}, {40, 25}, {10, 40}},
			wantWhite: []image.Point{{25, 25}, {9, 25}, {41, 25}},
		},
		{
			name:      "transparent rect over black",
			shape:     Rect{Min: image.Pt(0, 0), Max: image.Pt(5, 5), Outline: Transparent, Fill: Transparent},
			wantWhite: []image.Point{{0, 0}, {2, 2}},
		},
		{
			name:      "filled ellipse",
			shape:     Ellipse{Min: image.Pt(10, 10), Max: image.Pt(50, 30), Fill: Black},
			wantBlack: []image.Point{{30, 20}, {12, 20}, {30, 11}},
			wantWhite: []image.Point{{10, 10}, {50, 30}, {60, 20}},
		},
		{
			name:      "line",
			shape:     Line{Points: []image.Point{{0, 5}, {50, 5}}},
			wantBlack: []image.Point{{0, 5}, {25, 5}, {50, 5}},
			wantWhite: []image.Point{{25, 3}, {25, 7}, {60, 5}},
		},
		{
			name:      "wide line",
			shape:     Line{Points: []image.Point{{10, 20}, {10, 60}}, Width: 5},
			wantBlack: []image.Point{{8, 40}, {10, 40}, {12, 40}},
			wantWhite: []image.Point{{5, 40}, {15, 40}},
		},
		{
			name:      "white line",
			shape:     Line{Points: []image.Point{{0, 5}, {50, 5}}, Ink: White},
			wantWhite: []image.Point{{25, 5}},
		},
		{
			name: "polygon",
			shape: Polygon{
				Points: []image.Point{{10, 10}, {60, 10}, {10, 60}},
				Fill:   Black,
			},
			wantBlack: []image.Point{{15, 15}, {30, 20}},
			wantWhite: []image.Point{{55, 55}, {59, 40}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := New(128, 250, nil)
			s.Add("", tc.shape)

			img := s.Image()

			for _, pt := range tc.wantBlack {
				if got := bitAt(t, img, pt.X, pt.Y); got != image1bit.Off {
					t.Errorf("pixel %v is white, want black", pt)
				}
			}

			for _, pt := range tc.wantWhite {
				if got := bitAt(t, img, pt.X, pt.Y); got != image1bit.On {
					t.Errorf("pixel %v is black, want white", pt)
				}
			}
		})
	}
}

func TestImageOrder(t *testing.T) {
	s := New(128, 250, nil)

	s.Add("under", Rect{Min: image.Pt(0, 0), Max: image.Pt(20, 20), Fill: Black})
	s.Add("over", Rect{Min: image.Pt(5, 5), Max: image.Pt(15, 15), Outline: White, Fill: White})

	img := s.Image()

	if got := bitAt(t, img, 10, 10); got != image1bit.On {
		t.Errorf("pixel (10,10) is black, want white")
	}
	if got := bitAt(t, img, 2, 2); got != image1bit.Off {
		t.Errorf("pixel (2,2) is white, want black")
	}
}

func TestImageText(t *testing.T) {
	at := image.Pt(60, 10)

	t.Run("horizontal", func(t *testing.T) {
		s := New(128, 250, nil)
		s.Add("", Text{At: at, Text: "HELLO"})

		pts := blackPixels(t, s.Image())
		if len(pts) == 0 {
			t.Fatalf("text was not drawn")
		}

		var right bool
		for _, pt := range pts {
			if pt.Y < at.Y || pt.Y > at.Y+20 || pt.X < at.X {
				t.Fatalf("pixel %v outside of the text area", pt)
			}
			right = right || pt.X > at.X+20
		}
		if !right {
			t.Errorf("text does not extend to the right")
		}
	})

	t.Run("rotated", func(t *testing.T) {
		s := New(128, 250, nil)
		s.Add("", Text{At: at, Text: "HELLO", Angle: 90})

		pts := blackPixels(t, s.Image())
		if len(pts) == 0 {
			t.Fatalf("text was not drawn")
		}

		var down bool
		for _, pt := range pts {
			if pt.X > at.X+1 || pt.Y < at.Y-1 {
				t.Fatalf("pixel %v outside of the rotated text area", pt)
			}
			down = down || pt.Y > at.Y+20
		}
		if !down {
			t.Errorf("rotated text does not extend downwards")
		}
	})

	t.Run("transparent", func(t *testing.T) {
		s := New(128, 250, nil)
		s.Add("", Text{At: at, Text: "HELLO", Ink: Transparent})

		if pts := blackPixels(t, s.Image()); len(pts) != 0 {
			t.Errorf("transparent text drew %d pixels", len(pts))
		}
	})
}
