// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epaper is a container for the Waveshare 2.13" e-paper stack.
//
// epd2in13 talks to the panel controller, screen composes named shapes into
// 1-bit images, and the epaper subpackage pushes rendered scenes to a panel.
// termview emulates the panel in a terminal.
package epaper
