// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package uart

import (
	"fmt"
	"os"

	"golang.org/x/term"

	xglog "github.com/ManuGH/rtcterm/internal/log"
)

// OpenStdio exposes the process's own terminal as a Port. When stdin is a
// TTY it is switched to raw mode so bytes arrive unbuffered and unechoed,
// matching a serial line; Close restores the previous state. A non-TTY
// stdin (pipe, redirect) is used as-is, which is what scripted runs want.
func OpenStdio() (Port, error) {
	fd := int(os.Stdin.Fd())
	logger := xglog.WithComponent("uart.stdio")

	var restore func() error
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("enter raw mode: %w", err)
		}
		restore = func() error { return term.Restore(fd, state) }
		logger.Debug().Bool("tty", true).Msg("stdin switched to raw mode")
	} else {
		logger.Debug().Bool("tty", false).Msg("stdin is not a tty")
	}

	closeFn := func() error {
		if restore != nil {
			return restore()
		}
		return nil
	}
	return newStreamPort(os.Stdin, os.Stdout, closeFn, "uart.stdio"), nil
}
