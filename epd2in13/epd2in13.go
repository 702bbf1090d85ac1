// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3/rpi"
)

// Commands
const (
	driverOutputControl            byte = 0x01
	boosterSoftStartControl        byte = 0x0C
	gateScanStartPosition          byte = 0x0F
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	temperatureSensorControl       byte = 0x1A
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAM                       byte = 0x24
	writeVcomRegister              byte = 0x2C
	writeLutRegister               byte = 0x32
	setDummyLinePeriod             byte = 0x3A
	setGateTime                    byte = 0x3B
	borderWaveformControl          byte = 0x3C
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
	terminateFrameReadWrite        byte = 0xFF
)

const (
	// lutSize is the length of a waveform table accepted by the controller.
	lutSize = 30

	resetHold        = 200 * time.Millisecond
	busyPollInterval = 100 * time.Millisecond
)

var (
	// ErrDimensionMismatch is returned when an image does not have the exact
	// size of the display.
	ErrDimensionMismatch = errors.New("epd2in13: image dimensions do not match display")
	// ErrInvalidLUTLength is returned for waveform tables which are not 30
	// bytes long.
	ErrInvalidLUTLength = errors.New("epd2in13: invalid LUT length")
	// ErrNotReady is returned when an operation is attempted while the
	// controller is uninitialized or in deep sleep.
	ErrNotReady = errors.New("epd2in13: controller not ready")
	// ErrBusInit is returned when the GPIO or SPI setup fails.
	ErrBusInit = errors.New("epd2in13: bus initialization failed")
	// ErrTimeout is returned when the busy line does not clear within
	// Opts.BusyTimeout.
	ErrTimeout = errors.New("epd2in13: timeout waiting for busy line")
)

// LUT contains the waveform that is used to program the display.
type LUT []byte

// PartialUpdate defines if the display should do a full update or just a partial update.
type PartialUpdate bool

const (
	// Full should update the complete display.
	Full PartialUpdate = false
	// Partial should update only partial parts of the display.
	Partial PartialUpdate = true
)

func (p PartialUpdate) String() string {
	if p {
		return "Partial"
	}
	return "Full"
}

// State is the controller state as tracked by the driver.
type State uint8

const (
	// Uninitialized is the state after construction and after Reset.
	Uninitialized State = iota
	// Ready means the controller accepts pixel data.
	Ready
	// Sleeping means the controller is in deep sleep. Only Reset or Init
	// bring it back.
	Sleeping
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Ready:
		return "Ready"
	case Sleeping:
		return "Sleeping"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Opts definies the structure of the display configuration.
type Opts struct {
	Width         int
	Height        int
	FullUpdate    LUT
	PartialUpdate LUT

	// BusyTimeout bounds every wait on the busy line. Zero waits forever.
	BusyTimeout time.Duration
}

// LUTFull flickers but resets every pixel.
var LUTFull = LUT{
	0x22, 0x55, 0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x11,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E, 0x1E,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// LUTPartial is the low-flicker waveform used for routine updates.
var LUTPartial = LUT{
	0x18, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x0F, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// EPD2in13 contains the display configuration for the Waveshare 2in13 (v1).
var EPD2in13 = Opts{
	Width:         128,
	Height:        250,
	FullUpdate:    LUTFull,
	PartialUpdate: LUTPartial,
}

// Dev defines the handler which is used to access the display.
//
// Dev is not safe for concurrent use.
type Dev struct {
	bus  Bus
	opts *Opts

	state State
	mode  PartialUpdate
	lut   LUT

	// buffer backs Draw; it starts out white.
	buffer *image1bit.VerticalLSB
}

// dataDimensions returns the size in terms of bytes needed to fill the
// display.
func dataDimensions(opts *Opts) (int, int) {
	return opts.Height, (opts.Width + 7) / 8
}

// New creates new handler which is used to access the display. The display is
// not touched until Init is called.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	c, err := p.Connect(2*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	return NewWithBus(newPeriphBus(c, dc, cs, rst, busy), opts)
}

// NewHat creates new handler which is used to access the display. Default Waveshare Hat configuration is used.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

// NewWithBus creates a handler talking through an arbitrary Bus
// implementation.
func NewWithBus(bus Bus, opts *Opts) (*Dev, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("epd2in13: invalid display size %dx%d", opts.Width, opts.Height)
	}
	if opts.Width%8 != 0 {
		return nil, fmt.Errorf("epd2in13: width %d is not a multiple of 8", opts.Width)
	}

	d := &Dev{
		bus:    bus,
		opts:   opts,
		state:  Uninitialized,
		mode:   Full,
		buffer: image1bit.NewVerticalLSB(image.Rect(0, 0, opts.Width, opts.Height)),
	}

	// Default color
	draw.Src.Draw(d.buffer, d.buffer.Bounds(), &image.Uniform{image1bit.On}, image.Point{})

	return d, nil
}

func (d *Dev) newErrorHandler() *errorHandler {
	return &errorHandler{bus: d.bus, busyTimeout: d.opts.BusyTimeout}
}

// State returns the controller state as tracked by the driver.
func (d *Dev) State() State {
	return d.state
}

// Mode returns the update mode selected by the last successful Init.
func (d *Dev) Mode() PartialUpdate {
	return d.mode
}

// ActiveLUT returns a copy of the waveform table loaded last.
func (d *Dev) ActiveLUT() LUT {
	return append(LUT(nil), d.lut...)
}

func checkLUT(lut LUT) error {
	if len(lut) != lutSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLUTLength, len(lut), lutSize)
	}
	return nil
}

// Init resets the controller and runs the initialization sequence with the
// given waveform table. It is also the way out of deep sleep.
func (d *Dev) Init(lut LUT) error {
	if err := checkLUT(lut); err != nil {
		return err
	}

	if err := d.bus.Setup(); err != nil {
		return fmt.Errorf("%w: %w", ErrBusInit, err)
	}

	eh := d.newErrorHandler()
	eh.reset()
	d.state = Uninitialized

	initDisplay(eh, d.opts, lut)

	if eh.err != nil {
		return eh.err
	}

	d.lut = append(d.lut[:0], lut...)
	d.state = Ready
	if bytes.Equal(lut, d.opts.FullUpdate) {
		d.mode = Full
	} else {
		d.mode = Partial
	}

	return nil
}

// SetFullUpdate re-initializes the controller with the full update waveform.
func (d *Dev) SetFullUpdate() error {
	return d.Init(d.opts.FullUpdate)
}

// SetPartialUpdate re-initializes the controller with the partial update
// waveform.
func (d *Dev) SetPartialUpdate() error {
	return d.Init(d.opts.PartialUpdate)
}

// LoadLUT writes a waveform table to the controller without re-running the
// rest of the initialization. Use SetFullUpdate or SetPartialUpdate to switch
// modes.
func (d *Dev) LoadLUT(lut LUT) error {
	if err := checkLUT(lut); err != nil {
		return err
	}
	if err := d.checkAwake(); err != nil {
		return err
	}

	eh := d.newErrorHandler()
	loadLUT(eh, lut)

	if eh.err == nil {
		d.lut = append(d.lut[:0], lut...)
	}

	return eh.err
}

// SetMemoryWindow configures the RAM area targeted by subsequent writes. The
// horizontal coordinates are truncated to multiples of 8.
func (d *Dev) SetMemoryWindow(w Window) error {
	if err := d.checkAwake(); err != nil {
		return err
	}

	eh := d.newErrorHandler()
	setMemoryWindow(eh, w)

	return eh.err
}

// SetMemoryPointer moves the RAM address counter and waits for the
// controller to become idle.
func (d *Dev) SetMemoryPointer(x, y int) error {
	if err := d.checkAwake(); err != nil {
		return err
	}

	eh := d.newErrorHandler()
	setMemoryPointer(eh, x, y)

	return eh.err
}

// WriteFrame puts an image into the frame memory at the given position. The
// display does not change until ActivateDisplay is called.
//
// A nil image or a negative position is silently ignored. The horizontal
// position is truncated to a multiple of 8 and the image is clipped to the
// display.
func (d *Dev) WriteFrame(img image.Image, x, y int) error {
	if img == nil || x < 0 || y < 0 {
		return nil
	}
	if err := d.checkReady(); err != nil {
		return err
	}

	eh := d.newErrorHandler()
	writeFrame(eh, d.opts, img, x, y)

	return eh.err
}

// ClearFrame fills the whole frame memory with the given byte. 0xFF is white.
func (d *Dev) ClearFrame(fill byte) error {
	if err := d.checkReady(); err != nil {
		return err
	}

	eh := d.newErrorHandler()
	clearFrame(eh, d.opts, fill)

	return eh.err
}

// ActivateDisplay shows the content of the frame memory on the panel and
// blocks until the refresh is done.
func (d *Dev) ActivateDisplay() error {
	if err := d.checkReady(); err != nil {
		return err
	}

	eh := d.newErrorHandler()
	activateDisplay(eh)

	return eh.err
}

// Sleep puts the controller into deep sleep. Reset or Init wake it up.
func (d *Dev) Sleep() error {
	if err := d.checkAwake(); err != nil {
		return err
	}

	eh := d.newErrorHandler()
	enterSleep(eh)

	if eh.err != nil {
		return eh.err
	}

	d.state = Sleeping

	return nil
}

// Reset toggles the reset line. The controller has to be initialized again
// afterwards.
func (d *Dev) Reset() error {
	eh := d.newErrorHandler()
	eh.reset()

	if eh.err != nil {
		return eh.err
	}

	d.state = Uninitialized

	return nil
}

// ClearScreen wipes the panel using the full update waveform and returns to
// partial update mode. The panel flickers.
func (d *Dev) ClearScreen() error {
	if err := d.SetFullUpdate(); err != nil {
		return err
	}
	if err := d.ClearFrame(0xFF); err != nil {
		return err
	}
	if err := d.ActivateDisplay(); err != nil {
		return err
	}
	return d.SetPartialUpdate()
}

// FrameBuffer packs an image of the display size into the controller's RAM
// layout.
func (d *Dev) FrameBuffer(img image.Image) ([]byte, error) {
	return Pack(img, d.opts.Width, d.opts.Height)
}

func (d *Dev) checkReady() error {
	if d.state != Ready {
		return fmt.Errorf("%w: state %s", ErrNotReady, d.state)
	}
	return nil
}

// checkAwake allows register writes right after a reset.
func (d *Dev) checkAwake() error {
	if d.state == Sleeping {
		return fmt.Errorf("%w: state %s", ErrNotReady, d.state)
	}
	return nil
}

// ColorModel returns a 1Bit color model.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the bounds for the configurated display.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.opts.Width, d.opts.Height)
}

// Draw draws the given image to the display.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	if err := d.checkReady(); err != nil {
		return err
	}

	draw.Src.Draw(d.buffer, dstRect.Intersect(d.Bounds()), src, srcPts)

	if err := d.WriteFrame(d.buffer, 0, 0); err != nil {
		return err
	}

	return d.ActivateDisplay()
}

// Halt puts the display into deep sleep.
func (d *Dev) Halt() error {
	if d.state == Sleeping {
		return nil
	}
	return d.Sleep()
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("epd2in13.Dev{%s, Width: %d, Height: %d}", d.bus, d.opts.Width, d.opts.Height)
}

var _ display.Drawer = &Dev{}
