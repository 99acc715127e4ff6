// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package uart

import (
	"context"
	"errors"
	"time"
)

const (
	// CharTimeout bounds one character read inside a line fetch.
	CharTimeout = 10 * time.Millisecond
	// InputTimeout bounds a whole interactive entry step.
	InputTimeout = 120 * time.Second
	// GetCharDelay is the polling quantum inside GetChar.
	GetCharDelay = 1 * time.Millisecond
	// BufferSize caps an accumulated input line.
	BufferSize = 80
)

// ErrNoData reports that a read timed out before a byte arrived.
var ErrNoData = errors.New("uart: no data")

// Reader layers polled, timeout-budgeted reads on top of a Port.
type Reader struct {
	port        Port
	quantum     time.Duration
	charTimeout time.Duration
	bufSize     int
	sleep       func(time.Duration)
}

// Option configures a Reader.
type Option func(*Reader)

// WithQuantum overrides the polling quantum.
func WithQuantum(d time.Duration) Option {
	return func(r *Reader) { r.quantum = d }
}

// WithCharTimeout overrides the per-character budget used by FetchLine.
func WithCharTimeout(d time.Duration) Option {
	return func(r *Reader) { r.charTimeout = d }
}

// WithBufferSize overrides the line capacity.
func WithBufferSize(n int) Option {
	return func(r *Reader) { r.bufSize = n }
}

// WithSleep substitutes the inter-poll sleep, for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(r *Reader) { r.sleep = fn }
}

// NewReader wraps port with the default polling policy.
func NewReader(port Port, opts ...Option) *Reader {
	r := &Reader{
		port:        port,
		quantum:     GetCharDelay,
		charTimeout: CharTimeout,
		bufSize:     BufferSize,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetChar polls for one byte, sleeping one quantum between attempts and
// charging the budget one quantum per sleep. It returns ErrNoData once the
// budget drops below a quantum. A zero timeout never charges a budget: the
// poll continues until a byte arrives or ctx is cancelled.
func (r *Reader) GetChar(ctx context.Context, timeout time.Duration) (byte, error) {
	remaining := timeout
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if b, ok := r.port.TryGet(); ok {
			return b, nil
		}
		if timeout != 0 {
			if remaining < r.quantum {
				return 0, ErrNoData
			}
			remaining -= r.quantum
		}
		r.sleep(r.quantum)
	}
}

// FetchLine accumulates one line, echoing each accepted byte back to the
// port and counting spaces for later field-cardinality checks. It stops on
// newline or carriage return (neither stored nor echoed), silently when the
// buffer fills, or with ErrNoData when the budget falls to one per-char
// timeout or below. The budget is charged one per-char timeout per
// iteration regardless of how quickly the byte arrived, so it counts
// attempts rather than wall time. A trailing "\n\r" is always written so
// the terminal ends up on a fresh line even after a timeout.
func (r *Reader) FetchLine(ctx context.Context, timeout time.Duration) (string, int, error) {
	buf := make([]byte, 0, r.bufSize)
	spaces := 0
	var err error

	for len(buf) < r.bufSize {
		if timeout <= r.charTimeout {
			err = ErrNoData
			break
		}

		var ch byte
		ch, err = r.GetChar(ctx, r.charTimeout)
		if err == nil {
			if ch == '\n' || ch == '\r' {
				break
			}
			if ch == ' ' {
				spaces++
			}
			buf = append(buf, ch)
			if err = r.port.Put(ch); err != nil {
				break
			}
		} else if !errors.Is(err, ErrNoData) {
			break
		}

		timeout -= r.charTimeout
	}

	if werr := r.port.PutString("\n\r"); werr != nil && err == nil {
		err = werr
	}
	return string(buf), spaces, err
}
