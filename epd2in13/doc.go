// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epd2in13 controls the first revision of the Waveshare 2.13 inch
// monochrome e-paper display (128x250 pixels, 30 byte waveform tables).
//
// The controller keeps two frame memories which alternate on every
// ActivateDisplay call. Pixel data is write-only; nothing is ever read back
// from the panel. Writes become visible only once ActivateDisplay runs.
//
// Two waveform tables exist. LUTFull flickers and fully resets every pixel,
// LUTPartial is fast but cannot clear stuck pixels. Switching between them
// always re-runs the initialization sequence (see SetFullUpdate and
// SetPartialUpdate).
//
// Pixel polarity follows image1bit: image1bit.Off is black (ink) and is sent
// as a cleared bit, image1bit.On is white and is sent as a set bit.
//
// Product page:
//
// 2.13 Inch version 1: https://www.waveshare.com/wiki/2.13inch_e-Paper_HAT
package epd2in13
