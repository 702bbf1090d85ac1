// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13

import (
	"bytes"
	"encoding/binary"
	"image"
)

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	waitUntilIdle()
}

func initDisplay(ctrl controller, opts *Opts, lut LUT) {
	ctrl.sendCommand(driverOutputControl)
	ctrl.sendData([]byte{
		byte((opts.Height - 1) & 0xFF),
		byte(((opts.Height - 1) >> 8) & 0xFF),
		0x00, // GD = 0, SM = 0, TB = 0
	})

	ctrl.sendCommand(boosterSoftStartControl)
	ctrl.sendData([]byte{0xD7, 0xD6, 0x9D})

	ctrl.sendCommand(writeVcomRegister)
	ctrl.sendData([]byte{0xA8})

	// 4 dummy lines per gate
	ctrl.sendCommand(setDummyLinePeriod)
	ctrl.sendData([]byte{0x1A})

	// 2us per line
	ctrl.sendCommand(setGateTime)
	ctrl.sendData([]byte{0x08})

	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendData([]byte{
		// Y increment, X increment
		0b011,
	})

	loadLUT(ctrl, lut)
}

func loadLUT(ctrl controller, lut LUT) {
	ctrl.sendCommand(writeLutRegister)
	ctrl.sendData(lut)
}

// setMemoryWindow configures the target drawing area. X is sent in bytes,
// Y in pixels.
func setMemoryWindow(ctrl controller, w Window) {
	w = w.Aligned()

	startEndY := [4]byte{}
	binary.LittleEndian.PutUint16(startEndY[0:], uint16(w.YStart))
	binary.LittleEndian.PutUint16(startEndY[2:], uint16(w.YEnd))

	ctrl.sendCommand(setRAMXAddressStartEndPosition)
	ctrl.sendData([]byte{byte((w.XStart >> 3) & 0xFF), byte((w.XEnd >> 3) & 0xFF)})

	ctrl.sendCommand(setRAMYAddressStartEndPosition)
	ctrl.sendData(startEndY[:])
}

// setMemoryPointer positions the RAM address counter. The controller may
// still be busy with the previous frame, hence the wait.
func setMemoryPointer(ctrl controller, x, y int) {
	posY := [2]byte{}
	binary.LittleEndian.PutUint16(posY[:], uint16(y))

	ctrl.sendCommand(setRAMXAddressCounter)
	// x point must be the multiple of 8 or the last 3 bits will be ignored
	ctrl.sendData([]byte{byte((x >> 3) & 0xFF)})

	ctrl.sendCommand(setRAMYAddressCounter)
	ctrl.sendData(posY[:])

	ctrl.waitUntilIdle()
}

// frameWindow computes the RAM area covered by an image of the given size
// placed at (x, y). The second return value is false when nothing is left to
// send.
func frameWindow(opts *Opts, size image.Point, x, y int) (Window, bool) {
	x &= 0xF8
	width := size.X & 0xF8

	if width <= 0 || size.Y <= 0 || x >= opts.Width || y >= opts.Height {
		return Window{}, false
	}

	w := Window{XStart: x, YStart: y}

	if x+width >= opts.Width {
		w.XEnd = opts.Width - 1
	} else {
		w.XEnd = x + width - 1
	}

	if y+size.Y >= opts.Height {
		w.YEnd = opts.Height - 1
	} else {
		w.YEnd = y + size.Y - 1
	}

	return w, true
}

func writeFrame(ctrl controller, opts *Opts, img image.Image, x, y int) {
	w, ok := frameWindow(opts, img.Bounds().Size(), x, y)
	if !ok {
		return
	}

	setMemoryWindow(ctrl, w)

	var rowData []byte

	for row := w.YStart; row <= w.YEnd; row++ {
		setMemoryPointer(ctrl, w.XStart, row)
		ctrl.sendCommand(writeRAM)

		rowData = packRow(rowData, img, w, row)
		ctrl.sendData(rowData)
	}
}

func clearFrame(ctrl controller, opts *Opts, fill byte) {
	rows, cols := dataDimensions(opts)
	data := bytes.Repeat([]byte{fill}, cols)

	setMemoryWindow(ctrl, Window{XEnd: opts.Width - 1, YEnd: opts.Height - 1})
	setMemoryPointer(ctrl, 0, 0)

	ctrl.sendCommand(writeRAM)

	for y := 0; y < rows; y++ {
		ctrl.sendData(data)
	}
}

// activateDisplay switches the two frame memories and refreshes the panel.
// The next write goes to the other memory.
func activateDisplay(ctrl controller) {
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendData([]byte{0xC4})
	ctrl.sendCommand(masterActivation)
	ctrl.sendCommand(terminateFrameReadWrite)
	ctrl.waitUntilIdle()
}

func enterSleep(ctrl controller) {
	ctrl.sendCommand(deepSleepMode)
	ctrl.waitUntilIdle()
}
