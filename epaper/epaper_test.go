// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epaper

import (
	"bytes"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/epaper/epd2in13"
	"github.com/GermanBionicSystems/epaper/screen"
)

// fakePanel logs the calls made by a Display.
type fakePanel struct {
	bounds image.Rectangle
	calls  []string
	frames []image.Image
	err    map[string]error
}

func (p *fakePanel) call(name string) error {
	p.calls = append(p.calls, name)
	return p.err[name]
}

func (p *fakePanel) Bounds() image.Rectangle { return p.bounds }
func (p *fakePanel) SetPartialUpdate() error { return p.call("SetPartialUpdate") }
func (p *fakePanel) ActivateDisplay() error { return p.call("ActivateDisplay") }
func (p *fakePanel) ClearScreen() error { return p.call("ClearScreen") }
func (p *fakePanel) Sleep() error { return p.call("Sleep") }

func (p *fakePanel) WriteFrame(img image.Image, x, y int) error {
	p.frames = append(p.frames, img)
	return p.call("WriteFrame")
}

type fixedImage struct {
	img image.Image
}

func (r fixedImage) Image() image.Image { return r.img }

func TestDisplay(t *testing.T) {
	errBus := errors.New("bus error")
	bounds := image.Rect(0, 0, 128, 250)

	for _, tc := range []struct {
		name      string
		err       map[string]error
		image     image.Image
		run       func(*Display) error
		wantNew   error
		wantErr   error
		wantCalls []string
	}{
		{
			name:      "new",
			wantCalls: []string{"SetPartialUpdate"},
		},
		{
			name:      "new fails",
			err:       map[string]error{"SetPartialUpdate": errBus},
			wantNew:   errBus,
			wantCalls: []string{"SetPartialUpdate"},
		},
		{
			name:      "update",
			image:     image.NewGray(bounds),
			run:       (*Display).Update,
			wantCalls: []string{"SetPartialUpdate", "WriteFrame", "ActivateDisplay"},
		},
		{
			name:      "update wrong size",
			image:     image.NewGray(image.Rect(0, 0, 250, 128)),
			run:       (*Display).Update,
			wantErr:   epd2in13.ErrDimensionMismatch,
			wantCalls: []string{"SetPartialUpdate"},
		},
		{
			name:      "update write fails",
			image:     image.NewGray(bounds),
			err:       map[string]error{"WriteFrame": errBus},
			run:       (*Display).Update,
			wantErr:   errBus,
			wantCalls: []string{"SetPartialUpdate", "WriteFrame"},
		},
		{
			name:      "update activate fails",
			image:     image.NewGray(bounds),
			err:       map[string]error{"ActivateDisplay": errBus},
			run:       (*Display).Update,
			wantErr:   errBus,
			wantCalls: []string{"SetPartialUpdate", "WriteFrame", "ActivateDisplay"},
		},
		{
			name:      "clear screen",
			run:       (*Display).ClearScreen,
			wantCalls: []string{"SetPartialUpdate", "ClearScreen"},
		},
		{
			name: "sleep and wake",
			run: func(d *Display) error {
				if err := d.Sleep(); err != nil {
					return err
				}
				return d.Wake()
			},
			wantCalls: []string{"SetPartialUpdate", "Sleep", "SetPartialUpdate"},
		},
		{
			name:      "sleep fails",
			err:       map[string]error{"Sleep": errBus},
			run:       (*Display).Sleep,
			wantErr:   errBus,
			wantCalls: []string{"SetPartialUpdate", "Sleep"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			panel := &fakePanel{bounds: bounds, err: tc.err}

			d, err := New(panel, fixedImage{tc.image})
			if !errors.Is(err, tc.wantNew) {
				t.Fatalf("New() returned %v, want %v", err, tc.wantNew)
			}

			if err == nil && tc.run != nil {
				if err := tc.run(d); !errors.Is(err, tc.wantErr) {
					t.Errorf("returned %v, want %v", err, tc.wantErr)
				}
			}

			if diff := cmp.Diff(panel.calls, tc.wantCalls); diff != "" {
				t.Errorf("panel calls difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestUpdatePassesRenderedImage(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, 128, 250)}
	s := screen.New(128, 250, nil)

	d, err := New(panel, s)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	s.Add("", screen.Rect{Min: image.Pt(0, 0), Max: image.Pt(10, 10), Fill: screen.Black})

	if err := d.Update(); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if len(panel.frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(panel.frames))
	}

	r, g, b, _ := panel.frames[0].At(5, 5).RGBA()
	if r|g|b != 0 {
		t.Errorf("pixel (5,5) is not black")
	}
}

type record struct {
	cmd  byte
	data []byte
}

// recordingBus is an idle epd2in13.Bus recording commands and data.
type recordingBus struct {
	records []record
}

func (b *recordingBus) String() string { return "recordingBus" }
func (b *recordingBus) Setup() error { return nil }
func (b *recordingBus) Busy() bool { return false }
func (b *recordingBus) SetReset(l gpio.Level) error { return nil }
func (b *recordingBus) Sleep(time.Duration) {}

func (b *recordingBus) WriteCommand(cmd byte) error {
	b.records = append(b.records, record{cmd: cmd})
	return nil
}

func (b *recordingBus) WriteData(data []byte) error {
	cur := &b.records[len(b.records)-1]
	cur.data = append(cur.data, data...)
	return nil
}

func (b *recordingBus) commands() []byte {
	var cmds []byte
	for _, r := range b.records {
		cmds = append(cmds, r.cmd)
	}
	return cmds
}

func (b *recordingBus) lut() []byte {
	var lut []byte
	for _, r := range b.records {
		if r.cmd == 0x32 {
			lut = r.data
		}
	}
	return lut
}

func newDisplay(t *testing.T) (*Display, *screen.Screen, *recordingBus) {
	t.Helper()

	bus := &recordingBus{}
	dev, err := epd2in13.NewWithBus(bus, &epd2in13.EPD2in13)
	if err != nil {
		t.Fatalf("NewWithBus() failed: %v", err)
	}

	s := screen.New(128, 250, nil)

	d, err := New(dev, s)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	return d, s, bus
}

var initCommands = []byte{0x01, 0x0C, 0x2C, 0x3A, 0x3B, 0x11, 0x32}

func TestEndToEndInit(t *testing.T) {
	_, _, bus := newDisplay(t)

	if diff := cmp.Diff(bus.commands(), initCommands); diff != "" {
		t.Errorf("init commands difference (-got +want):\n%s", diff)
	}

	if diff := cmp.Diff(bus.lut(), []byte(epd2in13.LUTPartial)); diff != "" {
		t.Errorf("LUT difference (-got +want):\n%s", diff)
	}
}

func TestEndToEndUpdate(t *testing.T) {
	d, s, bus := newDisplay(t)
	bus.records = nil

	s.Add("", screen.Rect{Min: image.Pt(0, 0), Max: image.Pt(7, 0), Outline: screen.Transparent, Fill: screen.Black})

	if err := d.Update(); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	want := []byte{0x44, 0x45}
	for y := 0; y < 250; y++ {
		want = append(want, 0x4E, 0x4F, 0x24)
	}
	want = append(want, 0x22, 0x20, 0xFF)

	if diff := cmp.Diff(bus.commands(), want); diff != "" {
		t.Errorf("update commands difference (-got +want):\n%s", diff)
	}

	var rows [][]byte
	for _, r := range bus.records {
		if r.cmd == 0x24 {
			rows = append(rows, r.data)
		}
	}

	first := append([]byte{0x00}, bytes.Repeat([]byte{0xFF}, 15)...)
	if diff := cmp.Diff(rows[0], first); diff != "" {
		t.Errorf("first row difference (-got +want):\n%s", diff)
	}

	blank := bytes.Repeat([]byte{0xFF}, 16)
	for y, row := range rows[1:] {
		if !bytes.Equal(row, blank) {
			t.Fatalf("row %d = %x, want blank", y+1, row)
		}
	}
}

func TestEndToEndClearScreen(t *testing.T) {
	d, _, bus := newDisplay(t)
	bus.records = nil

	if err := d.ClearScreen(); err != nil {
		t.Fatalf("ClearScreen() failed: %v", err)
	}

	var want []byte
	want = append(want, initCommands...)
	want = append(want, 0x44, 0x45, 0x4E, 0x4F, 0x24, 0x22, 0x20, 0xFF)
	want = append(want, initCommands...)

	if diff := cmp.Diff(bus.commands(), want); diff != "" {
		t.Errorf("clear commands difference (-got +want):\n%s", diff)
	}

	var luts [][]byte
	for _, r := range bus.records {
		if r.cmd == 0x32 {
			luts = append(luts, r.data)
		}
	}

	wantLUTs := [][]byte{epd2in13.LUTFull, epd2in13.LUTPartial}
	if diff := cmp.Diff(luts, wantLUTs); diff != "" {
		t.Errorf("LUT sequence difference (-got +want):\n%s", diff)
	}

	for _, r := range bus.records {
		if r.cmd == 0x24 {
			if got, want := len(r.data), 16*250; got != want {
				t.Errorf("cleared %d bytes, want %d", got, want)
			}
			if !bytes.Equal(r.data, bytes.Repeat([]byte{0xFF}, 16*250)) {
				t.Errorf("frame memory not cleared to white")
			}
		}
	}
}

func TestEndToEndSleep(t *testing.T) {
	d, _, bus := newDisplay(t)
	bus.records = nil

	if err := d.Sleep(); err != nil {
		t.Fatalf("Sleep() failed: %v", err)
	}

	if err := d.Update(); !errors.Is(err, epd2in13.ErrNotReady) {
		t.Errorf("Update() while sleeping returned %v, want %v", err, epd2in13.ErrNotReady)
	}

	if diff := cmp.Diff(bus.commands(), []byte{0x10}); diff != "" {
		t.Errorf("sleep commands difference (-got +want):\n%s", diff)
	}

	if err := d.Wake(); err != nil {
		t.Fatalf("Wake() failed: %v", err)
	}
	if err := d.Update(); err != nil {
		t.Errorf("Update() after Wake() failed: %v", err)
	}
}
