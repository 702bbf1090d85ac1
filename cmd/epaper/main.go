// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// epaper drives a Waveshare 2.13" e-paper panel from the command line.
//
// Actions:
//
//	moving-box  move a black box down the screen with partial updates
//	test        draw a rectangle, an ellipse and a line
//	draw        draw the shapes of the scene file
//	clear       blank the panel with a full refresh
//	sleep       put the panel into deep sleep
//
// With -preview the panel is emulated in the terminal.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/epaper/epaper"
	"github.com/GermanBionicSystems/epaper/epd2in13"
	"github.com/GermanBionicSystems/epaper/screen"
	"github.com/GermanBionicSystems/epaper/termview"
)

var (
	configFile = flag.String("config", "", "scene configuration `filename`")
	debug      = flag.Bool("debug", false, "whether to log extra information")
	preview    = flag.Bool("preview", false, "whether to emulate the panel in the terminal")
	steps      = flag.Int("steps", 10, "number of moves for the moving-box action")
	render     = flag.String("render", "", "`filename` to render a PNG of the scene to")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] moving-box|test|draw|clear|sleep\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: colorable.NewColorableStderr()}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

func run(action string) error {
	var cfg Config
	if *configFile != "" {
		var err error
		if cfg, err = parseConfig(*configFile); err != nil {
			return err
		}
	}

	opts := epd2in13.EPD2in13
	opts.BusyTimeout = cfg.BusyTimeout

	fonts, err := screen.NewFonts()
	if err != nil {
		return err
	}
	s := screen.New(opts.Width, opts.Height, fonts)

	switch action {
	case "test":
		testScene(s)
	case "draw":
		if err := buildScene(cfg, s); err != nil {
			return err
		}
	case "moving-box", "clear", "sleep":
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	if *render != "" {
		return writePNG(*render, s)
	}

	panel, halt, err := openPanel(cfg, &opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := halt(); err != nil {
			log.Error().Err(err).Msg("halting panel")
		}
	}()
	log.Info().Str("panel", fmt.Sprint(panel)).Msg("opened panel")

	d, err := epaper.New(panel, s)
	if err != nil {
		return err
	}

	switch action {
	case "moving-box":
		return movingBox(d, s, *steps)
	case "clear":
		return d.ClearScreen()
	case "sleep":
		return d.Sleep()
	}
	return d.Update()
}

// openPanel returns the real panel, or the terminal emulation with -preview.
// The returned function releases it.
func openPanel(cfg Config, opts *epd2in13.Opts) (epaper.Panel, func() error, error) {
	if *preview {
		dev := termview.New(&termview.Opts{Width: opts.Width, Height: opts.Height})
		return dev, dev.Halt, nil
	}

	if cfg.Backend == "rpio" {
		return openRPIO(cfg, opts)
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, nil, err
	}

	var dev *epd2in13.Dev
	if cfg.customPins() {
		var pins [4]gpio.PinIO
		for i, name := range []string{cfg.Pins.DC, cfg.Pins.CS, cfg.Pins.RST, cfg.Pins.Busy} {
			if pins[i] = gpioreg.ByName(name); pins[i] == nil {
				port.Close()
				return nil, nil, fmt.Errorf("unknown pin %q", name)
			}
		}
		dev, err = epd2in13.New(port, pins[0], pins[1], pins[2], pins[3], opts)
	} else {
		dev, err = epd2in13.NewHat(port, opts)
	}
	if err != nil {
		port.Close()
		return nil, nil, err
	}

	halt := func() error {
		var err error
		if dev.State() != epd2in13.Uninitialized {
			err = dev.Halt()
		}
		return errors.Join(err, port.Close())
	}

	return dev, halt, nil
}

func openRPIO(cfg Config, opts *epd2in13.Opts) (epaper.Panel, func() error, error) {
	pins, err := cfg.rpioPins()
	if err != nil {
		return nil, nil, err
	}

	bus, err := epd2in13.OpenRPIO(pins)
	if err != nil {
		return nil, nil, err
	}

	dev, err := epd2in13.NewWithBus(bus, opts)
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}

	halt := func() error {
		var err error
		if dev.State() != epd2in13.Uninitialized {
			err = dev.Halt()
		}
		return errors.Join(err, bus.Close())
	}

	return dev, halt, nil
}

func writePNG(filename string, s *screen.Screen) error {
	var buf bytes.Buffer
	if err := (&png.Encoder{CompressionLevel: png.BestCompression}).Encode(&buf, s.Image()); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing render: %w", err)
	}
	log.Info().Str("file", filename).Int("bytes", buf.Len()).Msg("wrote render")
	return nil
}
