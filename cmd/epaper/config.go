// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/GermanBionicSystems/epaper/epd2in13"
	"github.com/GermanBionicSystems/epaper/screen"
)

// Config is the content of the scene file.
type Config struct {
	// Backend selects the host driver: "periph" (default) or "rpio".
	Backend string `yaml:"backend"`

	// SPI is the port name passed to spireg.Open. Empty selects the first
	// port.
	SPI string `yaml:"spi"`

	// Pins override the Waveshare HAT pin assignment. All four must be set.
	// The rpio backend takes BCM numbers, with or without a "GPIO" prefix.
	Pins struct {
		DC   string `yaml:"dc"`
		CS   string `yaml:"cs"`
		RST  string `yaml:"rst"`
		Busy string `yaml:"busy"`
	} `yaml:"pins"`

	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Font is the TTF file used by text shapes without their own font.
	Font     string  `yaml:"font"`
	FontSize float64 `yaml:"font_size"`

	// Shapes are drawn in order.
	Shapes []ShapeConfig `yaml:"shapes"`
}

// ShapeConfig describes one shape. Which fields apply depends on Kind.
type ShapeConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // rect, ellipse, line, polygon or text

	// Points are [x, y] pairs: two corners for rect and ellipse, the
	// vertices for line and polygon, the top-left corner for text.
	Points [][]int `yaml:"points"`

	Outline string `yaml:"outline"`
	Fill    string `yaml:"fill"`
	Ink     string `yaml:"ink"`
	Width   int    `yaml:"width"`

	Text  string  `yaml:"text"`
	Angle float64 `yaml:"angle"`
	Font  string  `yaml:"font"`
	Size  float64 `yaml:"size"`
}

func (c Config) customPins() bool {
	return c.Pins.DC != "" || c.Pins.CS != "" || c.Pins.RST != "" || c.Pins.Busy != ""
}

func parseConfig(filename string) (Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}
	cfg, err := parseConfigBytes(raw)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config from %s: %w", filename, err)
	}
	return cfg, nil
}

func parseConfigBytes(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.customPins() && (cfg.Pins.DC == "" || cfg.Pins.CS == "" || cfg.Pins.RST == "" || cfg.Pins.Busy == "") {
		return Config{}, errors.New("pins: dc, cs, rst and busy must all be set")
	}
	switch cfg.Backend {
	case "", "periph", "rpio":
	default:
		return Config{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.BusyTimeout < 0 {
		return Config{}, fmt.Errorf("busy_timeout %v is negative", cfg.BusyTimeout)
	}
	return cfg, nil
}

// rpioPins returns the pin assignment for the rpio backend.
func (c Config) rpioPins() (epd2in13.RPIOPins, error) {
	if !c.customPins() {
		return epd2in13.HatPins, nil
	}
	var pins [4]int
	for i, name := range []string{c.Pins.RST, c.Pins.DC, c.Pins.CS, c.Pins.Busy} {
		n, err := strconv.Atoi(strings.TrimPrefix(name, "GPIO"))
		if err != nil || n < 0 {
			return epd2in13.RPIOPins{}, fmt.Errorf("pin %q is not a BCM number", name)
		}
		pins[i] = n
	}
	return epd2in13.RPIOPins{Reset: pins[0], DC: pins[1], CS: pins[2], Busy: pins[3]}, nil
}

func parseInk(s string) (screen.Ink, error) {
	switch s {
	case "":
		return screen.Default, nil
	case "black":
		return screen.Black, nil
	case "white":
		return screen.White, nil
	case "none", "transparent":
		return screen.Transparent, nil
	}
	return screen.Default, fmt.Errorf("unknown ink %q", s)
}

func (sc ShapeConfig) points(least, most int) ([]image.Point, error) {
	if len(sc.Points) < least || (most > 0 && len(sc.Points) > most) {
		return nil, fmt.Errorf("%s: got %d points", sc.Kind, len(sc.Points))
	}
	pts := make([]image.Point, 0, len(sc.Points))
	for _, p := range sc.Points {
		if len(p) != 2 {
			return nil, fmt.Errorf("%s: point %v is not an [x, y] pair", sc.Kind, p)
		}
		pts = append(pts, image.Pt(p[0], p[1]))
	}
	return pts, nil
}

func (sc ShapeConfig) inks(names ...string) ([]screen.Ink, error) {
	inks := make([]screen.Ink, len(names))
	for i, n := range names {
		ink, err := parseInk(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Kind, err)
		}
		inks[i] = ink
	}
	return inks, nil
}

// shape converts the description into a screen shape. Text faces are left
// to the caller.
func (sc ShapeConfig) shape() (screen.Shape, error) {
	switch sc.Kind {
	case "rect", "ellipse":
		pts, err := sc.points(2, 2)
		if err != nil {
			return nil, err
		}
		inks, err := sc.inks(sc.Outline, sc.Fill)
		if err != nil {
			return nil, err
		}
		if sc.Kind == "rect" {
			return screen.Rect{Min: pts[0], Max: pts[1], Outline: inks[0], Fill: inks[1]}, nil
		}
		return screen.Ellipse{Min: pts[0], Max: pts[1], Outline: inks[0], Fill: inks[1]}, nil

	case "line":
		pts, err := sc.points(2, 0)
		if err != nil {
			return nil, err
		}
		inks, err := sc.inks(sc.Ink)
		if err != nil {
			return nil, err
		}
		return screen.Line{Points: pts, Width: sc.Width, Ink: inks[0]}, nil

	case "polygon":
		pts, err := sc.points(3, 0)
		if err != nil {
			return nil, err
		}
		inks, err := sc.inks(sc.Outline, sc.Fill)
		if err != nil {
			return nil, err
		}
		return screen.Polygon{Points: pts, Outline: inks[0], Fill: inks[1]}, nil

	case "text":
		pts, err := sc.points(1, 1)
		if err != nil {
			return nil, err
		}
		inks, err := sc.inks(sc.Ink)
		if err != nil {
			return nil, err
		}
		return screen.Text{At: pts[0], Text: sc.Text, Ink: inks[0], Angle: sc.Angle}, nil
	}

	return nil, fmt.Errorf("unknown shape kind %q", sc.Kind)
}
