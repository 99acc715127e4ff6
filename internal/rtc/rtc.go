// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package rtc models the real-time-clock peripheral the console drives: the
// date-time register layout, the DST rule encoding the hardware expects and
// the Device interface the command loop talks to. Two devices ship, a
// simulated battery-backed clock and the Linux /dev/rtc character device.
package rtc

import (
	"errors"
	"time"

	"github.com/ManuGH/rtcterm/internal/calendar"
)

// Retry policy for device operations that can fail while the clock block
// is busy. Writes are attempted this many times with a fixed delay after
// each attempt.
const (
	RetryAttempts = 500
	RetryDelay    = 5 * time.Millisecond
)

var (
	// ErrBusy reports a transient condition where the clock hardware is
	// still committing a previous operation. Callers retry with a bounded
	// attempt budget.
	ErrBusy = errors.New("rtc: device busy")

	// ErrInvalid reports that the device rejected a date-time tuple as
	// outside its register ranges. Not transient: retrying the same tuple
	// fails the same way.
	ErrInvalid = errors.New("rtc: invalid date/time")

	// ErrUnsupported reports that the requested device backend does not
	// exist on this platform.
	ErrUnsupported = errors.New("rtc: device not supported on this platform")
)

// DateTime is the canonical date-time tuple in register order: seconds,
// minutes, hours, day of month, month, full year. Values are only handed to
// a Device after calendar validation.
type DateTime struct {
	Sec   int `yaml:"sec"`
	Min   int `yaml:"min"`
	Hour  int `yaml:"hour"`
	Day   int `yaml:"day"`
	Month int `yaml:"month"`
	Year  int `yaml:"year"`
}

// Valid reports whether the tuple passes the full calendar check.
func (dt DateTime) Valid() bool {
	return calendar.ValidateDateTime(dt.Sec, dt.Min, dt.Hour, dt.Day, dt.Month, dt.Year)
}

// Time converts the tuple to a time.Time in the local zone.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Min, dt.Sec, 0, time.Local)
}

// FromTime builds a DateTime from a time.Time, dropping sub-second precision.
func FromTime(t time.Time) DateTime {
	return DateTime{
		Sec:   t.Second(),
		Min:   t.Minute(),
		Hour:  t.Hour(),
		Day:   t.Day(),
		Month: int(t.Month()),
		Year:  t.Year(),
	}
}

// Device is the hardware collaborator contract consumed by the console.
//
// SetDateTime may fail transiently with ErrBusy while the clock block is
// mid-commit; EnableDst is a single-shot commit with no retry semantics.
type Device interface {
	// DateTime reads the current date and time registers.
	DateTime() (DateTime, error)

	// SetDateTime writes new date and time registers. May return ErrBusy.
	SetDateTime(DateTime) error

	// DstActive reports whether the committed DST window covers the
	// device's current time.
	DstActive() (bool, error)

	// EnableDst commits a start/stop rule pair atomically.
	EnableDst(DstPair) error

	// Close releases the underlying device handle.
	Close() error
}
