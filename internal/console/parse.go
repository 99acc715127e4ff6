// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package console

import (
	"strconv"
	"strings"

	"github.com/ManuGH/rtcterm/internal/calendar"
	"github.com/ManuGH/rtcterm/internal/rtc"
)

// parseDateTime extracts the six numeric fields of an entry line in
// "mm dd HH MM SS yy" order. Missing or non-numeric fields read as zero and
// are left to calendar validation downstream. A two-digit year is resolved
// against the hardware year base of 2000; anything else passes through
// unchanged.
func parseDateTime(line string) rtc.DateTime {
	var vals [6]int
	fields := strings.Fields(line)
	for i := 0; i < len(vals) && i < len(fields); i++ {
		if v, err := strconv.Atoi(fields[i]); err == nil {
			vals[i] = v
		}
	}

	year := vals[5]
	if year >= 0 && year <= 99 {
		year += calendar.MinYear
	}

	return rtc.DateTime{
		Sec:   vals[4],
		Min:   vals[3],
		Hour:  vals[2],
		Day:   vals[1],
		Month: vals[0],
		Year:  year,
	}
}
