// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for rtcterm:
// defaults, strict YAML file parsing and RTCTERM_* environment overrides,
// plus hot reloading via file watching and SIGHUP.
package config
