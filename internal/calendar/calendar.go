// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package calendar holds the pure date arithmetic behind the RTC console:
// field range checks, leap-year aware day-of-month bounds and the weekday
// conversion used by relative DST rules. Everything here is deterministic
// and free of I/O so the validation rules can be tested exhaustively.
package calendar

// The RTC stores a two-digit year with a fixed century base of 2000, so the
// validator only accepts dates inside that window.
const (
	MinYear = 2000
	MaxYear = 2099
)

// Weekday numbering used by the RTC hardware: Sunday is 1, Saturday is 7.
const (
	Sunday = 1 + iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

const monthsPerYear = 12

// daysInMonth is indexed by month-1. February holds the non-leap count;
// callers must only index it with a month that already passed validation.
var daysInMonth = [monthsPerYear]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether year is a Gregorian leap year: divisible by 4
// and not by 100, or divisible by 400.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days in the given month of the given
// year, accounting for leap-year February. It returns 0 for a month outside
// [1,12] so an unvalidated month can never index outside the table.
func DaysInMonth(month, year int) int {
	if month < 1 || month > monthsPerYear {
		return 0
	}
	days := daysInMonth[month-1]
	if month == 2 && IsLeapYear(year) {
		days++
	}
	return days
}

// ValidateDateTime checks a full date-time tuple against the RTC's calendar
// rules. All field range predicates are evaluated together; the day-of-month
// bound is only consulted once the other fields, month included, are known
// to be in range.
func ValidateDateTime(sec, min, hour, day, month, year int) bool {
	ok := sec >= 0 && sec <= 59 &&
		min >= 0 && min <= 59 &&
		hour >= 0 && hour <= 23 &&
		month >= 1 && month <= monthsPerYear &&
		year >= MinYear && year <= MaxYear

	if !ok {
		return false
	}

	return day > 0 && day <= DaysInMonth(month, year)
}

// DayOfWeek returns the weekday of the given date in the RTC's numbering
// (Sunday=1..Saturday=7) using Zeller's congruence. The Gregorian calendar
// repeats exactly every 400 years, so two-digit RTC years shifted by the
// 2000 base yield the same weekday as the full year.
func DayOfWeek(day, month, year int) int {
	if month < 3 {
		month += monthsPerYear
		year--
	}
	k := year % 100
	j := year / 100
	h := (day + 26*(month+1)/10 + k + k/4 + j/4 + 5*j) % 7
	// Zeller's h has Saturday=0 and Sunday=1; rotate to Sunday=1..Saturday=7.
	return (h+6)%7 + 1
}
