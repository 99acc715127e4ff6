// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ManuGH/rtcterm/internal/app"
	"github.com/ManuGH/rtcterm/internal/config"
	xglog "github.com/ManuGH/rtcterm/internal/log"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded. Diagnostics
	// go to stderr; stdout may carry the operator console protocol.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "rtcterm",
	})
	logger := xglog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Determine config path:
	// - Explicit via --config
	// - Otherwise auto-load ${RTCTERM_DATA_DIR}/config.yaml if it exists
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("RTCTERM_DATA_DIR", "/tmp/rtcterm"))
		if dataDir == "" {
			dataDir = "/tmp/rtcterm"
		}
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str(xglog.FieldPath, effectiveConfigPath).
			Msg("failed to load configuration")
	}

	xglog.SetLevel(cfg.LogLevel)

	if effectiveConfigPath != "" {
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "file").
			Str(xglog.FieldPath, effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	device, err := app.OpenDevice(ctx, cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "device.open_failed").
			Str(xglog.FieldDevice, cfg.Device.Backend).
			Msg("failed to open rtc device")
	}

	port, err := app.OpenPort(cfg)
	if err != nil {
		_ = device.Close()
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "terminal.open_failed").
			Str(xglog.FieldTerminal, cfg.Terminal).
			Msg("failed to open terminal")
	}

	session := app.BuildSession(cfg, port, device)
	holder := config.NewConfigHolder(cfg, loader, effectiveConfigPath)

	runErr := app.New(logger, session, holder).Run(ctx)
	stop()

	// Close the port before deciding the exit code: a stdio terminal in raw
	// mode must be restored even on a failed run.
	if cerr := port.Close(); cerr != nil {
		logger.Warn().Err(cerr).Msg("terminal close failed")
	}
	if cerr := device.Close(); cerr != nil {
		logger.Warn().Err(cerr).Msg("device close failed")
	}

	if runErr != nil {
		logger.Error().
			Err(runErr).
			Str(xglog.FieldEvent, "console.failed").
			Msg("console failed")
		os.Exit(1)
	}

	logger.Info().Msg("console exiting")
}
