// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build windows

package ultralight

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func openLibrary(baseDir string) error {
	path := libPath(baseDir)
	lib, err := windows.LoadLibrary(path)
	if err != nil {
		return fmt.Errorf("failed to load %s from %s: %w", libName(), path, err)
	}
	return resolveAllSymbols(uintptr(lib))
}

func symbolAddr(handle uintptr, name string) (uintptr, error) {
	sym, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, err
	}
	if sym == 0 {
		return 0, fmt.Errorf("symbol %q not found in DLL", name)
	}
	return sym, nil
}

func libName() string {
	return "ul_bridge.dll"
}
