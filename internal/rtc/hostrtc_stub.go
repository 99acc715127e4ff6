//go:build !linux
// +build !linux

// SPDX-License-Identifier: MIT

package rtc

// OpenHostRTC is only available on Linux, where the kernel exposes RTC
// character devices. Other platforms must use the simulator.
func OpenHostRTC(devicePath, sidecarPath string) (Device, error) {
	return nil, ErrUnsupported
}
