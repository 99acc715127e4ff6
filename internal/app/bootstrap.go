// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package app

import (
	"context"
	"fmt"

	"github.com/ManuGH/rtcterm/internal/config"
	"github.com/ManuGH/rtcterm/internal/console"
	xglog "github.com/ManuGH/rtcterm/internal/log"
	"github.com/ManuGH/rtcterm/internal/resilience"
	"github.com/ManuGH/rtcterm/internal/rtc"
	"github.com/ManuGH/rtcterm/internal/uart"
)

// OpenDevice opens the clock backend selected by cfg. Opening is retried
// with the configured attempt budget; the clock hardware may be transiently
// busy right after power-up.
func OpenDevice(ctx context.Context, cfg config.Config) (rtc.Device, error) {
	var dev rtc.Device
	var open func() error

	switch cfg.Device.Backend {
	case config.BackendSim:
		open = func() error {
			var err error
			dev, err = rtc.NewSimulator(cfg.Device.StatePath, rtc.WithBusyWindow(cfg.Device.BusyWindow))
			return err
		}
	case config.BackendHost:
		open = func() error {
			var err error
			dev, err = rtc.OpenHostRTC(cfg.Device.Path, cfg.Device.DstPath)
			return err
		}
	default:
		return nil, fmt.Errorf("unknown device backend %q", cfg.Device.Backend)
	}

	if err := resilience.Do(ctx, cfg.Timeouts.RetryAttempts, cfg.Timeouts.RetryDelay, open); err != nil {
		return nil, fmt.Errorf("open %s device: %w", cfg.Device.Backend, err)
	}

	xglog.WithComponent("bootstrap").Info().
		Str(xglog.FieldEvent, "device.opened").
		Str(xglog.FieldDevice, cfg.Device.Backend).
		Msg("rtc device ready")
	return dev, nil
}

// OpenPort opens the terminal transport selected by cfg.
func OpenPort(cfg config.Config) (uart.Port, error) {
	switch cfg.Terminal {
	case config.TerminalStdio:
		return uart.OpenStdio()
	case config.TerminalSerial:
		return uart.OpenSerial(cfg.Serial.Device, cfg.Serial.Baud)
	default:
		return nil, fmt.Errorf("unknown terminal %q", cfg.Terminal)
	}
}

// BuildSession assembles the operator session over an opened port and device.
func BuildSession(cfg config.Config, port uart.Port, dev rtc.Device) *console.Session {
	reader := uart.NewReader(port,
		uart.WithQuantum(cfg.Timeouts.PollQuantum),
		uart.WithCharTimeout(cfg.Timeouts.Char),
	)
	return console.NewSession(port, reader, dev,
		console.WithInputTimeout(cfg.Timeouts.Input),
		console.WithCharTimeout(cfg.Timeouts.Char),
		console.WithRetryPolicy(cfg.Timeouts.RetryAttempts, cfg.Timeouts.RetryDelay),
	)
}
