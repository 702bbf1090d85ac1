// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// errorHandler is a wrapper for error management. The first error stops all
// further bus traffic of a sequence.
type errorHandler struct {
	bus         Bus
	busyTimeout time.Duration
	err         error
}

func (eh *errorHandler) setReset(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.bus.SetReset(l)
}

func (eh *errorHandler) sleep(d time.Duration) {
	if eh.err != nil {
		return
	}
	eh.bus.Sleep(d)
}

// reset toggles the reset line, often used to awaken the module from deep
// sleep.
func (eh *errorHandler) reset() {
	eh.setReset(gpio.Low)
	eh.sleep(resetHold)
	eh.setReset(gpio.High)
	eh.sleep(resetHold)
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.bus.WriteCommand(cmd)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.bus.WriteData(data)
}

// waitUntilIdle polls the busy line. Without a timeout it blocks for as long
// as the controller reports busy.
func (eh *errorHandler) waitUntilIdle() {
	if eh.err != nil {
		return
	}

	var waited time.Duration

	for eh.bus.Busy() {
		if eh.busyTimeout > 0 && waited >= eh.busyTimeout {
			eh.err = fmt.Errorf("%w after %v", ErrTimeout, waited)
			return
		}

		eh.bus.Sleep(busyPollInterval)
		waited += busyPollInterval
	}
}
