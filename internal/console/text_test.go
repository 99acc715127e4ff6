// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/rtcterm/internal/rtc"
)

func TestFormatClockLine(t *testing.T) {
	tests := []struct {
		name string
		dt   rtc.DateTime
		want string
	}{
		{
			name: "mid morning",
			dt:   rtc.DateTime{Sec: 0, Min: 30, Hour: 10, Day: 15, Month: 3, Year: 2024},
			want: "Mon 3 Date 15    10 : 30 : 0    24 Year \r",
		},
		{
			name: "single digit register year",
			dt:   rtc.DateTime{Sec: 9, Min: 8, Hour: 7, Day: 1, Month: 12, Year: 2005},
			want: "Mon 12 Date 1    7 : 8 : 9    5 Year \r",
		},
		{
			name: "year base boundary",
			dt:   rtc.DateTime{Day: 1, Month: 1, Year: 2000},
			want: "Mon 1 Date 1    0 : 0 : 0    0 Year \r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatClockLine(tt.dt))
		})
	}
}

func TestFormatClockLineOverwritesInPlace(t *testing.T) {
	line := formatClockLine(rtc.DateTime{Sec: 1, Min: 2, Hour: 3, Day: 4, Month: 5, Year: 2026})
	assert.True(t, strings.HasSuffix(line, "\r"), "clock line must end with a bare carriage return")
	assert.NotContains(t, line, "\n")
}
