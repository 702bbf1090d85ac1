// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epaper ties a renderer to an e-paper panel.
//
// A Display brings the panel up in partial update mode. Every Update renders
// the whole scene, copies it into the controller frame memory at the origin
// and triggers a refresh.
package epaper

import (
	"fmt"
	"image"

	"github.com/GermanBionicSystems/epaper/epd2in13"
)

// Panel is the part of a display driver used by Display. *epd2in13.Dev and
// *termview.Dev implement it.
type Panel interface {
	Bounds() image.Rectangle
	SetPartialUpdate() error
	WriteFrame(img image.Image, x, y int) error
	ActivateDisplay() error
	ClearScreen() error
	Sleep() error
}

// Renderer produces the image to show. *screen.Screen implements it.
type Renderer interface {
	Image() image.Image
}

// Display drives a Panel with images from a Renderer.
//
// Display is not safe for concurrent use.
type Display struct {
	panel    Panel
	renderer Renderer
}

// New initializes panel in partial update mode and returns a Display
// rendering r.
func New(panel Panel, r Renderer) (*Display, error) {
	if err := panel.SetPartialUpdate(); err != nil {
		return nil, fmt.Errorf("epaper: initializing panel: %w", err)
	}
	return &Display{panel: panel, renderer: r}, nil
}

// Panel returns the driven panel.
func (d *Display) Panel() Panel {
	return d.panel
}

// Update renders the scene and shows it. The rendered image must have the
// size of the panel.
func (d *Display) Update() error {
	img := d.renderer.Image()

	if got, want := img.Bounds().Size(), d.panel.Bounds().Size(); got != want {
		return fmt.Errorf("%w: image is %v, display is %v", epd2in13.ErrDimensionMismatch, got, want)
	}

	if err := d.panel.WriteFrame(img, 0, 0); err != nil {
		return fmt.Errorf("epaper: writing frame: %w", err)
	}
	if err := d.panel.ActivateDisplay(); err != nil {
		return fmt.Errorf("epaper: refreshing display: %w", err)
	}

	return nil
}

// ClearScreen blanks the panel with a full refresh and returns it to partial
// update mode.
func (d *Display) ClearScreen() error {
	if err := d.panel.ClearScreen(); err != nil {
		return fmt.Errorf("epaper: clearing screen: %w", err)
	}
	return nil
}

// Sleep puts the panel into deep sleep. Call Wake before the next Update.
func (d *Display) Sleep() error {
	if err := d.panel.Sleep(); err != nil {
		return fmt.Errorf("epaper: entering sleep: %w", err)
	}
	return nil
}

// Wake re-initializes a sleeping panel in partial update mode.
func (d *Display) Wake() error {
	if err := d.panel.SetPartialUpdate(); err != nil {
		return fmt.Errorf("epaper: waking panel: %w", err)
	}
	return nil
}
