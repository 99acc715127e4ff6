// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package uart models the serial console as a byte-oriented duplex port
// plus a polling reader with millisecond timeout budgets. Transports hide
// whether the far end is a real serial device or the local terminal.
package uart

import (
	"io"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/rtcterm/internal/log"
)

// rxBufferDepth is the receive queue depth. Bytes arriving while the queue
// is full are dropped, like a UART RX FIFO overrun.
const rxBufferDepth = 256

// Port is a duplex serial endpoint. TryGet never blocks: it returns the
// next received byte if one is queued and reports false otherwise.
type Port interface {
	TryGet() (byte, bool)
	Put(b byte) error
	PutString(s string) error
	Close() error
}

// streamPort adapts a blocking Read/Write stream into a Port by pumping
// reads into a bounded queue from a dedicated goroutine.
type streamPort struct {
	r       io.Reader
	w       io.Writer
	rx      chan byte
	closeFn func() error
	logger  zerolog.Logger
}

func newStreamPort(r io.Reader, w io.Writer, closeFn func() error, component string) *streamPort {
	p := &streamPort{
		r:       r,
		w:       w,
		rx:      make(chan byte, rxBufferDepth),
		closeFn: closeFn,
		logger:  xglog.WithComponent(component),
	}
	go p.pump()
	return p
}

// pump moves bytes from the stream into the receive queue until the stream
// errors, which is also how Close unblocks it. A serial line never reports
// EOF, so a closed stream just means no further input arrives.
func (p *streamPort) pump() {
	buf := make([]byte, 64)
	for {
		n, err := p.r.Read(buf)
		for i := 0; i < n; i++ {
			select {
			case p.rx <- buf[i]:
			default:
				p.logger.Debug().Msg("rx overrun, byte dropped")
			}
		}
		if err != nil {
			if err != io.EOF {
				p.logger.Debug().Err(err).Msg("rx pump stopped")
			}
			return
		}
	}
}

func (p *streamPort) TryGet() (byte, bool) {
	select {
	case b := <-p.rx:
		return b, true
	default:
		return 0, false
	}
}

func (p *streamPort) Put(b byte) error {
	_, err := p.w.Write([]byte{b})
	return err
}

func (p *streamPort) PutString(s string) error {
	_, err := io.WriteString(p.w, s)
	return err
}

func (p *streamPort) Close() error {
	if p.closeFn == nil {
		return nil
	}
	return p.closeFn()
}
