// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Bus is the set of primitives the driver needs from the host.
type Bus interface {
	fmt.Stringer

	// Setup configures the pins. It runs at the start of every Init.
	Setup() error
	// WriteCommand sends a command byte (data/command line low).
	WriteCommand(cmd byte) error
	// WriteData sends parameter or pixel bytes (data/command line high).
	WriteData(data []byte) error
	// Busy reports whether the controller is still processing.
	Busy() bool
	// SetReset drives the reset line.
	SetReset(l gpio.Level) error
	// Sleep blocks for the given duration.
	Sleep(d time.Duration)
}

// periphBus talks to the controller through periph.io SPI and GPIO.
type periphBus struct {
	c conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	clock clockwork.Clock
}

func newPeriphBus(c conn.Conn, dc, cs, rst gpio.PinOut, busy gpio.PinIn) *periphBus {
	return &periphBus{
		c:     c,
		dc:    dc,
		cs:    cs,
		rst:   rst,
		busy:  busy,
		clock: clockwork.NewRealClock(),
	}
}

func (b *periphBus) Setup() error {
	if err := b.busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return err
	}
	if err := b.rst.Out(gpio.High); err != nil {
		return err
	}
	if err := b.dc.Out(gpio.Low); err != nil {
		return err
	}
	if b.cs != nil {
		return b.cs.Out(gpio.High)
	}
	return nil
}

func (b *periphBus) tx(dc gpio.Level, w []byte) error {
	if err := b.dc.Out(dc); err != nil {
		return err
	}
	if b.cs != nil {
		if err := b.cs.Out(gpio.Low); err != nil {
			return err
		}
	}
	if err := b.c.Tx(w, nil); err != nil {
		return err
	}
	if b.cs != nil {
		return b.cs.Out(gpio.High)
	}
	return nil
}

func (b *periphBus) WriteCommand(cmd byte) error {
	return b.tx(gpio.Low, []byte{cmd})
}

func (b *periphBus) WriteData(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return b.tx(gpio.High, data)
}

// Busy reads the busy pin; 0 is idle, 1 is busy.
func (b *periphBus) Busy() bool {
	return b.busy.Read() == gpio.High
}

func (b *periphBus) SetReset(l gpio.Level) error {
	return b.rst.Out(l)
}

func (b *periphBus) Sleep(d time.Duration) {
	b.clock.Sleep(d)
}

func (b *periphBus) String() string {
	return fmt.Sprintf("%s, %s", b.c, b.dc)
}
