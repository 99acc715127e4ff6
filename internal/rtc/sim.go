// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rtc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	xglog "github.com/ManuGH/rtcterm/internal/log"
)

// clock abstracts time operations for testability.
type clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// registers is the simulated battery-backed register bank. Base is the last
// written date-time and SetAt the wall-clock instant it was written; the
// current time is Base plus the elapsed wall time, which keeps the clock
// "running" across process restarts just like a battery-backed RTC.
type registers struct {
	Base   DateTime  `yaml:"base"`
	SetAt  time.Time `yaml:"setAt"`
	Dst    DstPair   `yaml:"dst"`
	DstSet bool      `yaml:"dstSet"`
}

// Simulator is a Device backed by a small state file instead of clock
// hardware. An optional busy window makes SetDateTime fail transiently for
// a short period after each write, mimicking a clock block that is still
// committing the previous operation.
type Simulator struct {
	path       string
	clock      clock
	busyWindow time.Duration
	busyUntil  time.Time
	state      registers
	logger     zerolog.Logger
}

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithClock substitutes the time source, for tests.
func WithClock(c clock) SimOption {
	return func(s *Simulator) { s.clock = c }
}

// WithBusyWindow makes SetDateTime return ErrBusy when invoked within d of
// the previous write. Zero disables busy emulation.
func WithBusyWindow(d time.Duration) SimOption {
	return func(s *Simulator) { s.busyWindow = d }
}

// NewSimulator opens the simulated device. A non-empty path names the
// register bank file: it is loaded when present and seeded from the wall
// clock otherwise. An empty path yields a volatile device that loses state
// on Close, which is what tests want.
func NewSimulator(path string, opts ...SimOption) (*Simulator, error) {
	s := &Simulator{
		path:   path,
		clock:  realClock{},
		logger: xglog.WithComponent("rtc.sim"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if path == "" {
		now := s.clock.Now()
		s.state = registers{Base: FromTime(now), SetAt: now}
		return s, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s.state); err != nil {
			return nil, fmt.Errorf("load register bank %s: %w", path, err)
		}
		s.logger.Debug().
			Str(xglog.FieldPath, path).
			Msg("register bank loaded")
	case errors.Is(err, os.ErrNotExist):
		now := s.clock.Now()
		s.state = registers{Base: FromTime(now), SetAt: now}
		if err := s.persist(); err != nil {
			return nil, err
		}
		s.logger.Info().
			Str(xglog.FieldPath, path).
			Msg("register bank seeded from wall clock")
	default:
		return nil, fmt.Errorf("read register bank %s: %w", path, err)
	}

	return s, nil
}

// DateTime returns the simulated current time: the last written base plus
// the wall time elapsed since the write.
func (s *Simulator) DateTime() (DateTime, error) {
	elapsed := s.clock.Now().Sub(s.state.SetAt)
	return FromTime(s.state.Base.Time().Add(elapsed)), nil
}

// SetDateTime writes the base registers. The hardware rejects tuples
// outside its register ranges, so the simulator does too. Within the
// configured busy window of a previous write it fails with ErrBusy.
func (s *Simulator) SetDateTime(dt DateTime) error {
	if !dt.Valid() {
		return ErrInvalid
	}
	now := s.clock.Now()
	if s.busyWindow > 0 && now.Before(s.busyUntil) {
		return ErrBusy
	}
	s.state.Base = dt
	s.state.SetAt = now
	s.busyUntil = now.Add(s.busyWindow)
	return s.persist()
}

// EnableDst commits the rule pair into the register bank.
func (s *Simulator) EnableDst(pair DstPair) error {
	s.state.Dst = pair
	s.state.DstSet = true
	return s.persist()
}

// DstActive evaluates the committed rule pair against the current simulated
// time. A device without a committed pair is never in DST.
func (s *Simulator) DstActive() (bool, error) {
	if !s.state.DstSet {
		return false, nil
	}
	now, err := s.DateTime()
	if err != nil {
		return false, err
	}
	return DstActiveAt(s.state.Dst, now), nil
}

// Close is a no-op: every mutation is persisted immediately, the way a
// battery-backed register write sticks without a shutdown hook.
func (s *Simulator) Close() error { return nil }

func (s *Simulator) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("encode register bank: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create register bank dir: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write register bank %s: %w", s.path, err)
	}
	return nil
}
