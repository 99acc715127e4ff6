// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/rtcterm/internal/rtc"
	"github.com/ManuGH/rtcterm/internal/uart"
)

// Terminal backends.
const (
	TerminalStdio  = "stdio"
	TerminalSerial = "serial"
)

// RTC device backends.
const (
	BackendSim  = "sim"
	BackendHost = "host"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Terminal string
	DataDir  string
	Device   DeviceConfig
	Serial   SerialConfig
	Timeouts TimeoutConfig
	LogLevel string
	Version  string
}

// DeviceConfig selects and parameterizes the RTC device backend.
type DeviceConfig struct {
	Backend    string
	Path       string        // host backend: RTC character device
	StatePath  string        // sim backend: register bank file
	DstPath    string        // host backend: DST rule sidecar file
	BusyWindow time.Duration // sim backend: busy emulation window
}

// SerialConfig parameterizes the serial terminal backend.
type SerialConfig struct {
	Device string
	Baud   int
}

// TimeoutConfig carries the polling and retry budgets of the console.
type TimeoutConfig struct {
	Char          time.Duration // per-character budget inside a line fetch
	Input         time.Duration // whole entry step budget
	PollQuantum   time.Duration // sleep between polls
	RetryAttempts int           // device write attempts
	RetryDelay    time.Duration // delay after each attempt
}

// FileConfig is the strict YAML schema. Durations are Go duration strings;
// absent fields keep their defaults.
type FileConfig struct {
	Terminal *string       `yaml:"terminal"`
	DataDir  *string       `yaml:"dataDir"`
	Device   *FileDevice   `yaml:"device"`
	Serial   *FileSerial   `yaml:"serial"`
	Timeouts *FileTimeouts `yaml:"timeouts"`
	Log      *FileLog      `yaml:"log"`
}

// FileDevice mirrors DeviceConfig in the config file.
type FileDevice struct {
	Backend    *string `yaml:"backend"`
	Path       *string `yaml:"path"`
	StatePath  *string `yaml:"statePath"`
	DstPath    *string `yaml:"dstPath"`
	BusyWindow *string `yaml:"busyWindow"`
}

// FileSerial mirrors SerialConfig in the config file.
type FileSerial struct {
	Device *string `yaml:"device"`
	Baud   *int    `yaml:"baud"`
}

// FileTimeouts mirrors TimeoutConfig in the config file.
type FileTimeouts struct {
	Char          *string `yaml:"char"`
	Input         *string `yaml:"input"`
	PollQuantum   *string `yaml:"pollQuantum"`
	RetryAttempts *int    `yaml:"retryAttempts"`
	RetryDelay    *string `yaml:"retryDelay"`
}

// FileLog mirrors the logging settings in the config file.
type FileLog struct {
	Level *string `yaml:"level"`
}

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a new configuration loader.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
	}
}

// Load loads configuration with precedence: ENV > File > Defaults.
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate.
func (l *Loader) Load() (Config, error) {
	cfg := Config{}

	// 1. Set defaults
	l.setDefaults(&cfg)

	// 2. Load from file (if provided)
	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	// 3. Override with environment variables (highest priority)
	mergeEnvConfig(&cfg)

	// SAFETY: Ensure DataDir is absolute to prevent path traversal/platform errors
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}

	// 4. Derive state paths that were left unset
	if cfg.Device.StatePath == "" {
		cfg.Device.StatePath = filepath.Join(cfg.DataDir, "registers.yaml")
	}
	if cfg.Device.DstPath == "" {
		cfg.Device.DstPath = filepath.Join(cfg.DataDir, "dst.yaml")
	}

	// 5. Version from binary
	cfg.Version = l.version

	// 6. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) setDefaults(cfg *Config) {
	cfg.Terminal = TerminalStdio
	cfg.DataDir = "/tmp/rtcterm"
	cfg.Device = DeviceConfig{
		Backend: BackendSim,
		Path:    "/dev/rtc0",
	}
	cfg.Serial = SerialConfig{
		Baud: 115200,
	}
	cfg.Timeouts = TimeoutConfig{
		Char:          uart.CharTimeout,
		Input:         uart.InputTimeout,
		PollQuantum:   uart.GetCharDelay,
		RetryAttempts: rtc.RetryAttempts,
		RetryDelay:    rtc.RetryDelay,
	}
	cfg.LogLevel = "info"
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	// Parse YAML with strict mode (unknown fields cause errors)
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(cfg *Config, src *FileConfig) error {
	if src == nil {
		return nil
	}
	if src.Terminal != nil {
		cfg.Terminal = *src.Terminal
	}
	if src.DataDir != nil {
		cfg.DataDir = *src.DataDir
	}
	if src.Device != nil {
		if src.Device.Backend != nil {
			cfg.Device.Backend = *src.Device.Backend
		}
		if src.Device.Path != nil {
			cfg.Device.Path = *src.Device.Path
		}
		if src.Device.StatePath != nil {
			cfg.Device.StatePath = *src.Device.StatePath
		}
		if src.Device.DstPath != nil {
			cfg.Device.DstPath = *src.Device.DstPath
		}
		if src.Device.BusyWindow != nil {
			d, err := time.ParseDuration(*src.Device.BusyWindow)
			if err != nil {
				return fmt.Errorf("device.busyWindow: %w", err)
			}
			cfg.Device.BusyWindow = d
		}
	}
	if src.Serial != nil {
		if src.Serial.Device != nil {
			cfg.Serial.Device = *src.Serial.Device
		}
		if src.Serial.Baud != nil {
			cfg.Serial.Baud = *src.Serial.Baud
		}
	}
	if src.Timeouts != nil {
		if src.Timeouts.Char != nil {
			d, err := time.ParseDuration(*src.Timeouts.Char)
			if err != nil {
				return fmt.Errorf("timeouts.char: %w", err)
			}
			cfg.Timeouts.Char = d
		}
		if src.Timeouts.Input != nil {
			d, err := time.ParseDuration(*src.Timeouts.Input)
			if err != nil {
				return fmt.Errorf("timeouts.input: %w", err)
			}
			cfg.Timeouts.Input = d
		}
		if src.Timeouts.PollQuantum != nil {
			d, err := time.ParseDuration(*src.Timeouts.PollQuantum)
			if err != nil {
				return fmt.Errorf("timeouts.pollQuantum: %w", err)
			}
			cfg.Timeouts.PollQuantum = d
		}
		if src.Timeouts.RetryAttempts != nil {
			cfg.Timeouts.RetryAttempts = *src.Timeouts.RetryAttempts
		}
		if src.Timeouts.RetryDelay != nil {
			d, err := time.ParseDuration(*src.Timeouts.RetryDelay)
			if err != nil {
				return fmt.Errorf("timeouts.retryDelay: %w", err)
			}
			cfg.Timeouts.RetryDelay = d
		}
	}
	if src.Log != nil && src.Log.Level != nil {
		cfg.LogLevel = *src.Log.Level
	}
	return nil
}

func mergeEnvConfig(cfg *Config) {
	cfg.Terminal = ParseString("RTCTERM_TERMINAL", cfg.Terminal)
	cfg.DataDir = ParseString("RTCTERM_DATA_DIR", cfg.DataDir)
	cfg.Device.Backend = ParseString("RTCTERM_DEVICE_BACKEND", cfg.Device.Backend)
	cfg.Device.Path = ParseString("RTCTERM_DEVICE_PATH", cfg.Device.Path)
	cfg.Device.StatePath = ParseString("RTCTERM_STATE_PATH", cfg.Device.StatePath)
	cfg.Device.DstPath = ParseString("RTCTERM_DST_PATH", cfg.Device.DstPath)
	cfg.Device.BusyWindow = ParseDuration("RTCTERM_SIM_BUSY_WINDOW", cfg.Device.BusyWindow)
	cfg.Serial.Device = ParseString("RTCTERM_SERIAL_DEVICE", cfg.Serial.Device)
	cfg.Serial.Baud = ParseInt("RTCTERM_SERIAL_BAUD", cfg.Serial.Baud)
	cfg.Timeouts.Char = ParseDuration("RTCTERM_CHAR_TIMEOUT", cfg.Timeouts.Char)
	cfg.Timeouts.Input = ParseDuration("RTCTERM_INPUT_TIMEOUT", cfg.Timeouts.Input)
	cfg.Timeouts.PollQuantum = ParseDuration("RTCTERM_POLL_QUANTUM", cfg.Timeouts.PollQuantum)
	cfg.Timeouts.RetryAttempts = ParseInt("RTCTERM_RETRY_ATTEMPTS", cfg.Timeouts.RetryAttempts)
	cfg.Timeouts.RetryDelay = ParseDuration("RTCTERM_RETRY_DELAY", cfg.Timeouts.RetryDelay)
	cfg.LogLevel = ParseString("RTCTERM_LOG_LEVEL", cfg.LogLevel)
}

// Validate checks the resolved configuration for contradictions.
func Validate(cfg Config) error {
	switch cfg.Terminal {
	case TerminalStdio:
	case TerminalSerial:
		if cfg.Serial.Device == "" {
			return fmt.Errorf("terminal %q requires serial.device", TerminalSerial)
		}
		if cfg.Serial.Baud <= 0 {
			return fmt.Errorf("serial.baud must be positive (got %d)", cfg.Serial.Baud)
		}
	default:
		return fmt.Errorf("unknown terminal %q (want %q or %q)", cfg.Terminal, TerminalStdio, TerminalSerial)
	}

	switch cfg.Device.Backend {
	case BackendSim:
		if cfg.Device.BusyWindow < 0 {
			return fmt.Errorf("device.busyWindow must not be negative")
		}
	case BackendHost:
		if cfg.Device.Path == "" {
			return fmt.Errorf("backend %q requires device.path", BackendHost)
		}
	default:
		return fmt.Errorf("unknown device backend %q (want %q or %q)", cfg.Device.Backend, BackendSim, BackendHost)
	}

	if cfg.Timeouts.PollQuantum <= 0 {
		return fmt.Errorf("timeouts.pollQuantum must be positive")
	}
	if cfg.Timeouts.Char < cfg.Timeouts.PollQuantum {
		return fmt.Errorf("timeouts.char must be at least one poll quantum")
	}
	if cfg.Timeouts.Input <= cfg.Timeouts.Char {
		return fmt.Errorf("timeouts.input must exceed timeouts.char")
	}
	if cfg.Timeouts.RetryAttempts <= 0 {
		return fmt.Errorf("timeouts.retryAttempts must be positive")
	}
	if cfg.Timeouts.RetryDelay < 0 {
		return fmt.Errorf("timeouts.retryDelay must not be negative")
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	return nil
}
