// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13

import (
	"testing"

	rpio "github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/gpio"
)

func TestRPIOState(t *testing.T) {
	if got := rpioState(gpio.High); got != rpio.High {
		t.Errorf("rpioState(High) = %v, want %v", got, rpio.High)
	}
	if got := rpioState(gpio.Low); got != rpio.Low {
		t.Errorf("rpioState(Low) = %v, want %v", got, rpio.Low)
	}
}

func TestRPIOBusString(t *testing.T) {
	b := &RPIOBus{pins: HatPins}

	if got, want := b.String(), "rpio SPI0, DC: GPIO25"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
