// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package uart

import (
	"fmt"

	"go.bug.st/serial"

	xglog "github.com/ManuGH/rtcterm/internal/log"
)

// OpenSerial opens a real serial device (8 data bits, no parity, one stop
// bit) and wraps it as a Port. Closing the Port closes the device, which
// also stops the receive pump.
func OpenSerial(device string, baud int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	sp, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial device %s: %w", device, err)
	}

	xglog.WithComponent("uart.serial").Info().
		Str(xglog.FieldDevice, device).
		Int("baud", baud).
		Msg("serial device opened")

	return newStreamPort(sp, sp, sp.Close, "uart.serial"), nil
}
