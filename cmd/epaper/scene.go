// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/GermanBionicSystems/epaper/epaper"
	"github.com/GermanBionicSystems/epaper/screen"
)

// buildScene adds the shapes of cfg to s. Fonts that fail to load fall back
// to the built-in font with a warning.
func buildScene(cfg Config, s *screen.Screen) error {
	for i, sc := range cfg.Shapes {
		sh, err := sc.shape()
		if err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}

		if t, ok := sh.(screen.Text); ok {
			name, size := sc.Font, sc.Size
			if name == "" {
				name = cfg.Font
			}
			if size == 0 {
				size = cfg.FontSize
			}
			if name != "" || size != 0 {
				if size == 0 {
					size = screen.DefaultFontSize
				}
				face, err := s.Face(name, size)
				if err != nil {
					log.Warn().Err(err).Str("font", name).Msg("using fallback font")
				}
				t.Face = face
				sh = t
			}
		}

		added := s.Add(sc.Name, sh)
		log.Debug().Str("name", added).Str("kind", sc.Kind).Msg("added shape")
	}
	return nil
}

// testScene draws a rectangle, an overlapping ellipse and a line.
func testScene(s *screen.Screen) {
	s.Add("", screen.Rect{Min: image.Pt(30, 30), Max: image.Pt(70, 70)})
	s.Add("", screen.Ellipse{Min: image.Pt(50, 50), Max: image.Pt(90, 90)})
	s.Add("", screen.Line{Points: []image.Point{{1, 1}, {45, 65}}})
}

// movingBox moves a small black box down the screen, updating the display
// after every step.
func movingBox(d *epaper.Display, s *screen.Screen, steps int) error {
	box := func(offset int) screen.Rect {
		return screen.Rect{
			Min:  image.Pt(20, 20+offset),
			Max:  image.Pt(30, 30+offset),
			Fill: screen.Black,
		}
	}

	s.Add("box", box(0))
	if err := d.Update(); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		offset := 10 * i
		if err := s.Set("box", box(offset)); err != nil {
			return err
		}
		if err := d.Update(); err != nil {
			return err
		}
		log.Debug().Int("offset", offset).Msg("moved box")
	}

	return nil
}
