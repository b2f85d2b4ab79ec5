// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build !linux && !darwin && !windows

package ultralight

import (
	"errors"
	"runtime"
)

func openLibrary(string) error {
	return errors.New("ultralight: unsupported platform " + runtime.GOOS)
}

func symbolAddr(uintptr, string) (uintptr, error) {
	return 0, errors.New("ultralight: unsupported platform")
}

func libName() string { return "libul_bridge.so" }
