// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateDateTime_NominalRanges(t *testing.T) {
	tests := []struct {
		name                             string
		sec, min, hour, day, month, year int
		want                             bool
	}{
		{"typical date", 0, 30, 10, 15, 3, 2024, true},
		{"midnight new year", 0, 0, 0, 1, 1, 2000, true},
		{"last second of year", 59, 59, 23, 31, 12, 2099, true},
		{"leap day 2024", 0, 0, 12, 29, 2, 2024, true},
		{"april 30", 0, 0, 0, 30, 4, 2025, true},

		{"second past max", 60, 0, 0, 1, 1, 2024, false},
		{"minute past max", 0, 60, 0, 1, 1, 2024, false},
		{"hour past max", 0, 0, 24, 1, 1, 2024, false},
		{"month past max", 0, 0, 0, 1, 13, 2024, false},
		{"month zero", 0, 0, 0, 1, 0, 2024, false},
		{"day zero", 0, 0, 0, 0, 1, 2024, false},
		{"april 31", 0, 0, 0, 31, 4, 2024, false},
		{"negative second", -1, 0, 0, 1, 1, 2024, false},
		{"year below window", 0, 0, 0, 1, 1, 1999, false},
		{"year above window", 0, 0, 0, 1, 1, 2100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateDateTime(tt.sec, tt.min, tt.hour, tt.day, tt.month, tt.year)
			if got != tt.want {
				t.Errorf("ValidateDateTime(%d,%d,%d,%d,%d,%d) = %v, want %v",
					tt.sec, tt.min, tt.hour, tt.day, tt.month, tt.year, got, tt.want)
			}
		})
	}
}

func TestValidateDateTime_LeapYearRule(t *testing.T) {
	assert.True(t, ValidateDateTime(0, 0, 0, 29, 2, 2024), "Feb 29 2024 is a valid leap day")
	assert.False(t, ValidateDateTime(0, 0, 0, 29, 2, 2023), "Feb 29 2023 does not exist")
	assert.False(t, ValidateDateTime(0, 0, 0, 29, 2, 2100), "Feb 29 2100 is outside the RTC window and not a leap day")
	assert.True(t, ValidateDateTime(0, 0, 0, 29, 2, 2000), "Feb 29 2000 is valid (divisible by 400)")
	assert.False(t, ValidateDateTime(0, 0, 0, 30, 2, 2024), "Feb 30 never exists")
}

func TestValidateDateTime_OutOfRangeMonthNeverIndexesTable(t *testing.T) {
	// A month far outside [1,12] must fail cleanly rather than reach the
	// day-of-month table lookup.
	assert.False(t, ValidateDateTime(0, 0, 0, 15, 99, 2024))
	assert.False(t, ValidateDateTime(0, 0, 0, 15, -3, 2024))
}

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2023, false},
		{2000, true},
		{2100, false},
		{2096, true},
		{1900, false},
		{2400, true},
	}
	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(1, 2024))
	assert.Equal(t, 29, DaysInMonth(2, 2024))
	assert.Equal(t, 28, DaysInMonth(2, 2023))
	assert.Equal(t, 30, DaysInMonth(4, 2024))
	assert.Equal(t, 31, DaysInMonth(12, 2024))
	assert.Equal(t, 0, DaysInMonth(0, 2024), "invalid month is guarded")
	assert.Equal(t, 0, DaysInMonth(13, 2024), "invalid month is guarded")
}

func TestDayOfWeek_AgainstStdlib(t *testing.T) {
	// time.Weekday has Sunday=0; the RTC numbering has Sunday=1.
	dates := []struct{ day, month, year int }{
		{1, 1, 2000},  // Saturday
		{15, 3, 2024}, // Friday
		{12, 3, 2017}, // Sunday (second Sunday of March, US DST start)
		{29, 2, 2024}, // leap day
		{31, 12, 2099},
		{4, 7, 2026},
	}
	for _, d := range dates {
		want := int(time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC).Weekday()) + 1
		got := DayOfWeek(d.day, d.month, d.year)
		if got != want {
			t.Errorf("DayOfWeek(%d,%d,%d) = %d, want %d", d.day, d.month, d.year, got, want)
		}
	}
}

func TestDayOfWeek_FourHundredYearCycle(t *testing.T) {
	// The hardware convention stores two-digit years; the weekday of
	// year y and year y+400 are identical, which is why the 2000 base
	// never changes the result.
	for _, d := range []struct{ day, month, year int }{
		{9, 3, 2025},
		{1, 11, 2037},
	} {
		assert.Equal(t,
			DayOfWeek(d.day, d.month, d.year),
			DayOfWeek(d.day, d.month, d.year-2000),
		)
	}
}
