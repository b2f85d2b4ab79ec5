// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build linux || darwin

package ultralight

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

func openLibrary(baseDir string) error {
	path := libPath(baseDir)
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("failed to load %s from %s: %w", libName(), path, err)
	}
	return resolveAllSymbols(handle)
}

func symbolAddr(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func libName() string {
	if runtime.GOOS == "darwin" {
		return "libul_bridge.dylib"
	}
	return "libul_bridge.so"
}
