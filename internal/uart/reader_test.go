// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package uart

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort scripts the receive side and records everything transmitted.
// availableAfter delays the first byte by that many failed polls.
type fakePort struct {
	in             []byte
	out            bytes.Buffer
	polls          int
	availableAfter int
	putErr         error
}

func (p *fakePort) TryGet() (byte, bool) {
	p.polls++
	if p.availableAfter > 0 {
		p.availableAfter--
		return 0, false
	}
	if len(p.in) == 0 {
		return 0, false
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b, true
}

func (p *fakePort) Put(b byte) error {
	if p.putErr != nil {
		return p.putErr
	}
	p.out.WriteByte(b)
	return nil
}

func (p *fakePort) PutString(s string) error {
	p.out.WriteString(s)
	return nil
}

func (p *fakePort) Close() error { return nil }

func noSleep(time.Duration) {}

func TestGetCharReturnsQueuedByte(t *testing.T) {
	port := &fakePort{in: []byte{'x'}}
	r := NewReader(port, WithSleep(noSleep))

	b, err := r.GetChar(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)
}

func TestGetCharTimesOutAfterBudget(t *testing.T) {
	port := &fakePort{}
	sleeps := 0
	r := NewReader(port, WithSleep(func(time.Duration) { sleeps++ }))

	_, err := r.GetChar(context.Background(), 1*time.Millisecond)
	require.ErrorIs(t, err, ErrNoData)

	// one quantum of budget buys one sleep between two polls
	assert.Equal(t, 1, sleeps)
	assert.Equal(t, 2, port.polls)
}

func TestGetCharZeroTimeoutNeverExpires(t *testing.T) {
	port := &fakePort{in: []byte{'z'}, availableAfter: 500}
	r := NewReader(port, WithSleep(noSleep))

	b, err := r.GetChar(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, byte('z'), b)
	assert.Greater(t, port.polls, 500)
}

func TestGetCharZeroTimeoutHonorsContext(t *testing.T) {
	port := &fakePort{}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewReader(port, WithSleep(func(time.Duration) {
		if port.polls >= 3 {
			cancel()
		}
	}))

	_, err := r.GetChar(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchLineCountsSpaces(t *testing.T) {
	port := &fakePort{in: []byte("03 15 10 30 00 24\r")}
	r := NewReader(port, WithSleep(noSleep))

	line, spaces, err := r.FetchLine(context.Background(), InputTimeout)
	require.NoError(t, err)
	assert.Equal(t, "03 15 10 30 00 24", line)
	assert.Equal(t, 5, spaces)
	assert.Equal(t, "03 15 10 30 00 24\n\r", port.out.String(), "every accepted byte is echoed")
}

func TestFetchLineWithoutSpaces(t *testing.T) {
	port := &fakePort{in: []byte("03-15-10-30-00-24\n")}
	r := NewReader(port, WithSleep(noSleep))

	line, spaces, err := r.FetchLine(context.Background(), InputTimeout)
	require.NoError(t, err)
	assert.Equal(t, "03-15-10-30-00-24", line)
	assert.Equal(t, 0, spaces)
}

func TestFetchLineNewlineAlone(t *testing.T) {
	for _, term := range []byte{'\n', '\r'} {
		port := &fakePort{in: []byte{term}}
		r := NewReader(port, WithSleep(noSleep))

		line, spaces, err := r.FetchLine(context.Background(), InputTimeout)
		require.NoError(t, err)
		assert.Empty(t, line)
		assert.Zero(t, spaces)
		assert.Equal(t, "\n\r", port.out.String(), "terminator is not echoed")
	}
}

func TestFetchLineStopsSilentlyWhenBufferFull(t *testing.T) {
	port := &fakePort{in: []byte("abcdefghij")}
	r := NewReader(port, WithSleep(noSleep), WithBufferSize(8))

	line, _, err := r.FetchLine(context.Background(), InputTimeout)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", line)
	assert.Len(t, port.in, 2, "overflow bytes stay queued")
}

func TestFetchLineTimesOut(t *testing.T) {
	port := &fakePort{}
	r := NewReader(port, WithSleep(noSleep))

	line, spaces, err := r.FetchLine(context.Background(), 25*time.Millisecond)
	require.ErrorIs(t, err, ErrNoData)
	assert.Empty(t, line)
	assert.Zero(t, spaces)
	assert.Equal(t, "\n\r", port.out.String(), "terminal reset is written even on timeout")
}

func TestFetchLineBudgetCountsAttempts(t *testing.T) {
	// 35ms of budget at a 10ms per-char timeout pays for three reads even
	// when every byte is available instantly.
	port := &fakePort{in: []byte("abcdef")}
	r := NewReader(port, WithSleep(noSleep))

	line, _, err := r.FetchLine(context.Background(), 35*time.Millisecond)
	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "abc", line)
}

func TestFetchLinePutErrorPropagates(t *testing.T) {
	boom := errors.New("tx broke")
	port := &fakePort{in: []byte("ab\r"), putErr: boom}
	r := NewReader(port, WithSleep(noSleep))

	_, _, err := r.FetchLine(context.Background(), InputTimeout)
	assert.ErrorIs(t, err, boom)
}

func TestFetchLineContextCancelAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	port := &fakePort{}
	r := NewReader(port, WithSleep(noSleep))

	_, _, err := r.FetchLine(ctx, InputTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}
