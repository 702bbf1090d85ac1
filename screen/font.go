// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is the size in points of the default face.
const DefaultFontSize = 12

// FontProvider resolves font names to faces.
type FontProvider interface {
	// Face returns the named font at the given size. The empty name selects
	// the provider's built-in font.
	Face(name string, size float64) (font.Face, error)
}

// Fonts loads TrueType files from disk. The built-in font is Go Regular.
type Fonts struct {
	builtin *truetype.Font
}

// NewFonts returns a provider with Go Regular as its built-in font.
func NewFonts() (*Fonts, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("screen: parsing built-in font: %w", err)
	}
	return &Fonts{builtin: f}, nil
}

// Face implements FontProvider. Non-empty names are paths to TTF files.
func (f *Fonts) Face(name string, size float64) (font.Face, error) {
	if name == "" {
		return truetype.NewFace(f.builtin, &truetype.Options{Size: size}), nil
	}

	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("screen: loading font: %w", err)
	}

	ttf, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("screen: parsing font %s: %w", name, err)
	}

	return truetype.NewFace(ttf, &truetype.Options{Size: size}), nil
}

// FaceOrFallback tries the requested font, then the provider's built-in font,
// then basicfont.Face7x13. The returned face is always usable; the error
// tells why the requested font was not used.
func FaceOrFallback(p FontProvider, name string, size float64) (font.Face, error) {
	face, err := p.Face(name, size)
	if err == nil {
		return face, nil
	}

	if name != "" {
		if builtin, berr := p.Face("", size); berr == nil {
			return builtin, err
		}
	}

	return basicfont.Face7x13, err
}
