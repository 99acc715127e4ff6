// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package app

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/rtcterm/internal/config"
	"github.com/ManuGH/rtcterm/internal/console"
	"github.com/ManuGH/rtcterm/internal/rtc"
	"github.com/ManuGH/rtcterm/internal/uart"
)

// nullPort is a terminal that never produces input and swallows output.
type nullPort struct{}

func (nullPort) TryGet() (byte, bool)   { return 0, false }
func (nullPort) Put(byte) error         { return nil }
func (nullPort) PutString(string) error { return nil }
func (nullPort) Close() error           { return nil }

func newIdleSession(t *testing.T) *console.Session {
	t.Helper()
	dev, err := rtc.NewSimulator("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dev.Close() })

	port := nullPort{}
	return console.NewSession(port, uart.NewReader(port), dev)
}

func writeConfigFile(t *testing.T, path, level string) {
	t.Helper()
	data := "log:\n  level: " + level + "\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestRunRequiresSession(t *testing.T) {
	a := New(zerolog.Nop(), nil, nil)
	err := a.Run(context.Background())
	require.ErrorIs(t, err, ErrMissingSession)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	a := New(zerolog.Nop(), newIdleSession(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	require.NoError(t, a.Run(ctx))
}

func TestRunAppliesReloadedLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "info")

	loader := config.NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	holder := config.NewConfigHolder(cfg, loader, path)
	a := New(zerolog.Nop(), newIdleSession(t), holder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	writeConfigFile(t, path, "debug")
	require.NoError(t, holder.Reload(context.Background()))

	assert.Eventually(t, func() bool {
		return zerolog.GlobalLevel() == zerolog.DebugLevel
	}, 2*time.Second, 20*time.Millisecond, "listener must apply the reloaded log level")

	cancel()
	require.NoError(t, <-done)
}

func TestRunSurvivesReloadSignal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "info")

	loader := config.NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	holder := config.NewConfigHolder(cfg, loader, path)
	a := New(zerolog.Nop(), newIdleSession(t), holder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// Give the signal handler time to install; an unhandled SIGHUP would
	// kill the whole test binary.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	time.Sleep(200 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestOpenDeviceSim(t *testing.T) {
	cfg := config.Config{
		Device: config.DeviceConfig{
			Backend:   config.BackendSim,
			StatePath: filepath.Join(t.TempDir(), "registers.yaml"),
		},
		Timeouts: config.TimeoutConfig{RetryAttempts: 1},
	}

	dev, err := OpenDevice(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = dev.Close() }()

	dt, err := dev.DateTime()
	require.NoError(t, err)
	assert.True(t, dt.Valid())
}

func TestOpenDeviceUnknownBackend(t *testing.T) {
	cfg := config.Config{Device: config.DeviceConfig{Backend: "nvram"}}
	_, err := OpenDevice(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown device backend")
}

func TestOpenPortUnknownTerminal(t *testing.T) {
	_, err := OpenPort(config.Config{Terminal: "telnet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown terminal")
}

func TestBuildSession(t *testing.T) {
	dev, err := rtc.NewSimulator("")
	require.NoError(t, err)
	defer func() { _ = dev.Close() }()

	cfg := config.Config{
		Timeouts: config.TimeoutConfig{
			Char:          10 * time.Millisecond,
			Input:         time.Second,
			PollQuantum:   time.Millisecond,
			RetryAttempts: 3,
		},
	}
	require.NotNil(t, BuildSession(cfg, nullPort{}, dev))
}
