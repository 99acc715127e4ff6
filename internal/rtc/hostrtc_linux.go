//go:build linux
// +build linux

// SPDX-License-Identifier: MIT

package rtc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"

	xglog "github.com/ManuGH/rtcterm/internal/log"
)

// dstSidecar is the on-disk shape of the committed rule pair. The kernel
// RTC interface has no DST registers, so the pair lives next to the device
// state instead of in it.
type dstSidecar struct {
	Dst    DstPair `yaml:"dst"`
	DstSet bool    `yaml:"dstSet"`
}

// HostRTC drives a kernel RTC character device (/dev/rtc0 and friends)
// through the RTC_RD_TIME/RTC_SET_TIME ioctls. DST rules are persisted in a
// YAML sidecar file because the hardware has nowhere to keep them.
type HostRTC struct {
	f       *os.File
	sidecar string
	dst     dstSidecar
	logger  zerolog.Logger
}

// OpenHostRTC opens the RTC character device at devicePath and loads the
// DST sidecar at sidecarPath if one exists. An empty sidecarPath keeps DST
// state in memory only. The return type matches hostrtc_stub.go so callers
// stay platform independent.
func OpenHostRTC(devicePath, sidecarPath string) (Device, error) {
	f, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open rtc device %s: %w", devicePath, err)
	}

	h := &HostRTC{
		f:       f,
		sidecar: sidecarPath,
		logger:  xglog.WithComponent("rtc.host"),
	}

	if sidecarPath != "" {
		data, err := os.ReadFile(sidecarPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &h.dst); err != nil {
				f.Close()
				return nil, fmt.Errorf("load dst sidecar %s: %w", sidecarPath, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// first run, nothing committed yet
		default:
			f.Close()
			return nil, fmt.Errorf("read dst sidecar %s: %w", sidecarPath, err)
		}
	}

	h.logger.Debug().
		Str(xglog.FieldDevice, devicePath).
		Msg("rtc device opened")
	return h, nil
}

// DateTime reads the hardware registers. The kernel reports years as an
// offset from 1900 and months zero-based.
func (h *HostRTC) DateTime() (DateTime, error) {
	rt, err := unix.IoctlGetRTCTime(int(h.f.Fd()))
	if err != nil {
		return DateTime{}, fmt.Errorf("read rtc time: %w", mapRTCErr(err))
	}
	return DateTime{
		Sec:   int(rt.Sec),
		Min:   int(rt.Min),
		Hour:  int(rt.Hour),
		Day:   int(rt.Mday),
		Month: int(rt.Mon) + 1,
		Year:  int(rt.Year) + 1900,
	}, nil
}

// SetDateTime writes the hardware registers. A busy clock block surfaces as
// ErrBusy so callers can retry.
func (h *HostRTC) SetDateTime(dt DateTime) error {
	if !dt.Valid() {
		return ErrInvalid
	}
	rt := unix.RTCTime{
		Sec:  int32(dt.Sec),
		Min:  int32(dt.Min),
		Hour: int32(dt.Hour),
		Mday: int32(dt.Day),
		Mon:  int32(dt.Month - 1),
		Year: int32(dt.Year - 1900),
	}
	if err := unix.IoctlSetRTCTime(int(h.f.Fd()), &rt); err != nil {
		return fmt.Errorf("set rtc time: %w", mapRTCErr(err))
	}
	return nil
}

// EnableDst commits the rule pair to the sidecar.
func (h *HostRTC) EnableDst(pair DstPair) error {
	h.dst = dstSidecar{Dst: pair, DstSet: true}
	if h.sidecar == "" {
		return nil
	}
	data, err := yaml.Marshal(&h.dst)
	if err != nil {
		return fmt.Errorf("encode dst sidecar: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(h.sidecar), 0o755); err != nil {
		return fmt.Errorf("create dst sidecar dir: %w", err)
	}
	if err := renameio.WriteFile(h.sidecar, data, 0o644); err != nil {
		return fmt.Errorf("write dst sidecar %s: %w", h.sidecar, err)
	}
	return nil
}

// DstActive evaluates the committed rule pair against the hardware time.
func (h *HostRTC) DstActive() (bool, error) {
	if !h.dst.DstSet {
		return false, nil
	}
	now, err := h.DateTime()
	if err != nil {
		return false, err
	}
	return DstActiveAt(h.dst.Dst, now), nil
}

// Close releases the device file.
func (h *HostRTC) Close() error { return h.f.Close() }

// mapRTCErr folds the transient kernel errnos into ErrBusy.
func mapRTCErr(err error) error {
	if errors.Is(err, unix.EBUSY) || errors.Is(err, unix.EAGAIN) {
		return ErrBusy
	}
	return err
}
