// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rtc

import (
	"fmt"

	"github.com/ManuGH/rtcterm/internal/calendar"
)

// DstFormat selects how a DST transition rule addresses its day.
type DstFormat uint8

const (
	// DstFormatFixed pins the transition to a literal day of the month.
	DstFormatFixed DstFormat = iota + 1
	// DstFormatRelative pins the transition to the Nth weekday of the month.
	DstFormatRelative
)

// String returns the format name for diagnostics.
func (f DstFormat) String() string {
	switch f {
	case DstFormatFixed:
		return "fixed"
	case DstFormatRelative:
		return "relative"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(f))
	}
}

// DstRule is one DST transition in the hardware's register encoding. For a
// fixed rule DayOfMonth carries the literal day and DayOfWeek/WeekOfMonth
// hold the sentinel 1. For a relative rule DayOfMonth holds the sentinel 1
// and DayOfWeek and WeekOfMonth both carry the converted weekday value; the
// hardware's relative encoding requires the two fields to match the
// conversion output, so the duplication is deliberate and load-bearing.
type DstRule struct {
	Format      DstFormat `yaml:"format"`
	Hour        int       `yaml:"hour"`
	DayOfMonth  int       `yaml:"dayOfMonth"`
	DayOfWeek   int       `yaml:"dayOfWeek"`
	WeekOfMonth int       `yaml:"weekOfMonth"`
	Month       int       `yaml:"month"`
}

// DstPair is the start/stop rule pair committed to the hardware atomically.
type DstPair struct {
	Start DstRule `yaml:"start"`
	Stop  DstRule `yaml:"stop"`
}

// BuildDstRule encodes a validated date-time tuple into a transition rule
// for the chosen format. It fails only when the format selector is neither
// fixed nor relative; the caller is responsible for validating the tuple
// beforehand.
func BuildDstRule(dt DateTime, format DstFormat) (DstRule, error) {
	switch format {
	case DstFormatFixed:
		return DstRule{
			Format:      DstFormatFixed,
			Hour:        dt.Hour,
			Month:       dt.Month,
			DayOfMonth:  dt.Day,
			DayOfWeek:   1,
			WeekOfMonth: 1,
		}, nil
	case DstFormatRelative:
		dow := calendar.DayOfWeek(dt.Day, dt.Month, dt.Year)
		return DstRule{
			Format:      DstFormatRelative,
			Hour:        dt.Hour,
			Month:       dt.Month,
			DayOfMonth:  1,
			DayOfWeek:   dow,
			WeekOfMonth: dow,
		}, nil
	default:
		return DstRule{}, fmt.Errorf("build dst rule: %s format", format)
	}
}

// DisabledDstPair returns the degenerate rule pair the disable flow commits:
// fixed format, hour 0, January 1st for both transitions. Start and stop
// coincide, so the window is empty and DST never activates.
func DisabledDstPair() DstPair {
	off := DstRule{
		Format:      DstFormatFixed,
		Hour:        0,
		Month:       1,
		DayOfMonth:  1,
		DayOfWeek:   1,
		WeekOfMonth: 1,
	}
	return DstPair{Start: off, Stop: off}
}

// resolveDay resolves the rule's transition day within the given year. For a
// relative rule it finds the WeekOfMonth-th occurrence of DayOfWeek in the
// month, falling back a week at a time when the ordinal runs past the end of
// the month (so an ordinal of 5 means "last").
func (r DstRule) resolveDay(year int) int {
	if r.Format != DstFormatRelative {
		return r.DayOfMonth
	}
	first := calendar.DayOfWeek(1, r.Month, year)
	day := 1 + (r.DayOfWeek-first+7)%7
	day += 7 * (r.WeekOfMonth - 1)
	for day > calendar.DaysInMonth(r.Month, year) {
		day -= 7
	}
	return day
}

// orderKey collapses a transition to an orderable month/day/hour scalar
// within a year.
func (r DstRule) orderKey(year int) int {
	return (r.Month*100+r.resolveDay(year))*100 + r.Hour
}

// DstActiveAt reports whether the given moment falls inside the pair's DST
// window. The start instant is inclusive and the stop instant exclusive.
// Pairs whose stop precedes their start wrap around the end of the year
// (southern-hemisphere schedules).
func DstActiveAt(pair DstPair, at DateTime) bool {
	start := pair.Start.orderKey(at.Year)
	stop := pair.Stop.orderKey(at.Year)
	now := (at.Month*100+at.Day)*100 + at.Hour

	if start == stop {
		return false
	}
	if start < stop {
		return now >= start && now < stop
	}
	return now >= start || now < stop
}

var weekNames = [...]string{"first", "second", "third", "fourth", "last"}

var dayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var monthNames = [...]string{"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

// DescribeRule renders a rule human-readably for diagnostics, e.g.
// "second Sunday of March at 02:00" or "March 15 at 02:00".
func DescribeRule(r DstRule) string {
	if r.Month < 1 || r.Month > 12 {
		return fmt.Sprintf("invalid rule (month %d)", r.Month)
	}
	month := monthNames[r.Month-1]
	if r.Format == DstFormatRelative {
		week := fmt.Sprintf("%dth", r.WeekOfMonth)
		if r.WeekOfMonth >= 1 && r.WeekOfMonth <= len(weekNames) {
			week = weekNames[r.WeekOfMonth-1]
		}
		day := fmt.Sprintf("weekday %d", r.DayOfWeek)
		if r.DayOfWeek >= 1 && r.DayOfWeek <= len(dayNames) {
			day = dayNames[r.DayOfWeek-1]
		}
		return fmt.Sprintf("%s %s of %s at %02d:00", week, day, month, r.Hour)
	}
	return fmt.Sprintf("%s %d at %02d:00", month, r.DayOfMonth, r.Hour)
}
