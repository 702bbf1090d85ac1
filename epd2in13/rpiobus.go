// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	rpio "github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
)

// RPIOPins is the pin assignment of an RPIOBus in BCM numbering.
type RPIOPins struct {
	Reset, DC, CS, Busy int
}

// HatPins is the wiring of the Waveshare e-Paper HAT.
var HatPins = RPIOPins{Reset: 17, DC: 25, CS: 8, Busy: 24}

// RPIOBus drives the controller through /dev/gpiomem with go-rpio, on SPI0.
// It is an alternative to the periph.io host drivers on a Raspberry Pi.
type RPIOBus struct {
	pins                RPIOPins
	reset, dc, cs, busy rpio.Pin

	clock clockwork.Clock
}

// OpenRPIO maps the GPIO memory and claims SPI0. Close releases both.
func OpenRPIO(pins RPIOPins) (*RPIOBus, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("epd2in13: opening memory range for GPIO access: %w", err)
	}
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		_ = rpio.Close()
		return nil, fmt.Errorf("epd2in13: setting pin modes to SPI: %w", err)
	}
	rpio.SpiSpeed(2000000)
	rpio.SpiMode(0, 0)

	return &RPIOBus{
		pins:  pins,
		reset: rpio.Pin(pins.Reset),
		dc:    rpio.Pin(pins.DC),
		cs:    rpio.Pin(pins.CS),
		busy:  rpio.Pin(pins.Busy),
		clock: clockwork.NewRealClock(),
	}, nil
}

// Close releases SPI0 and the GPIO memory.
func (b *RPIOBus) Close() error {
	rpio.SpiEnd(rpio.Spi0)
	return rpio.Close()
}

// Setup implements Bus.
func (b *RPIOBus) Setup() error {
	b.reset.Mode(rpio.Output)
	b.dc.Mode(rpio.Output)
	b.cs.Mode(rpio.Output)
	b.busy.Mode(rpio.Input)

	b.reset.Write(rpio.High)
	b.dc.Write(rpio.Low)
	b.cs.Write(rpio.High)
	return nil
}

// WriteCommand implements Bus.
func (b *RPIOBus) WriteCommand(cmd byte) error {
	b.dc.Write(rpio.Low)
	b.cs.Write(rpio.Low)
	rpio.SpiTransmit(cmd)
	b.cs.Write(rpio.High)
	return nil
}

// WriteData implements Bus.
func (b *RPIOBus) WriteData(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	b.dc.Write(rpio.High)
	b.cs.Write(rpio.Low)
	rpio.SpiTransmit(data...)
	b.cs.Write(rpio.High)
	return nil
}

// Busy implements Bus.
func (b *RPIOBus) Busy() bool {
	return b.busy.Read() == rpio.High
}

// SetReset implements Bus.
func (b *RPIOBus) SetReset(l gpio.Level) error {
	b.reset.Write(rpioState(l))
	return nil
}

// Sleep implements Bus.
func (b *RPIOBus) Sleep(d time.Duration) {
	b.clock.Sleep(d)
}

func (b *RPIOBus) String() string {
	return fmt.Sprintf("rpio SPI0, DC: GPIO%d", b.pins.DC)
}

func rpioState(l gpio.Level) rpio.State {
	if l == gpio.High {
		return rpio.High
	}
	return rpio.Low
}

var _ Bus = &RPIOBus{}
