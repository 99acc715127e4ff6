// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	assert.Equal(t, "fallback", ParseString("RTCTERM_TEST_STR", "fallback"))

	t.Setenv("RTCTERM_TEST_STR", "value")
	assert.Equal(t, "value", ParseString("RTCTERM_TEST_STR", "fallback"))

	t.Setenv("RTCTERM_TEST_STR", "")
	assert.Equal(t, "fallback", ParseString("RTCTERM_TEST_STR", "fallback"),
		"empty variable falls back to default")
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 42, ParseInt("RTCTERM_TEST_INT", 42))

	t.Setenv("RTCTERM_TEST_INT", "7")
	assert.Equal(t, 7, ParseInt("RTCTERM_TEST_INT", 42))

	t.Setenv("RTCTERM_TEST_INT", "not-a-number")
	assert.Equal(t, 42, ParseInt("RTCTERM_TEST_INT", 42),
		"unparseable variable falls back to default")
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("RTCTERM_TEST_DUR", 5*time.Second))

	t.Setenv("RTCTERM_TEST_DUR", "250ms")
	assert.Equal(t, 250*time.Millisecond, ParseDuration("RTCTERM_TEST_DUR", 5*time.Second))

	t.Setenv("RTCTERM_TEST_DUR", "soon")
	assert.Equal(t, 5*time.Second, ParseDuration("RTCTERM_TEST_DUR", 5*time.Second),
		"unparseable variable falls back to default")
}
