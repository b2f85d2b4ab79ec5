// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Codes understood by ul_view_fire_mouse, matching ULMouseEventType and
// ULMouseButton.
const (
	mouseEventTypeMoved = 0
	mouseEventTypeDown  = 1
	mouseEventTypeUp    = 2

	mouseButtonNone   = 0
	mouseButtonLeft   = 1
	mouseButtonMiddle = 2
	mouseButtonRight  = 3
)

const scrollEventTypeByPixel = 0

// ULKeyEventType values for ul_view_fire_key.
const (
	keyEventRawKeyDown = 0
	keyEventKeyDown    = 1
	keyEventKeyUp      = 2
	keyEventChar       = 3
)

// Modifier bits as the bridge expects them; see keyMods.
const (
	keyModAlt   = 1
	keyModCtrl  = 2
	keyModMeta  = 4
	keyModShift = 8
)

// messageBufSize bounds one polled page or console message.
const messageBufSize = 2048

// Entry points of the bridge library, bound by resolveAllSymbols.
var (
	ulInit                  func(baseDir string, debug int32) int32
	ulCreateView            func(width, height int32) int32
	ulDestroyView           func(viewID int32)
	ulViewLoadHTML          func(viewID int32, html string)
	ulViewLoadURL           func(viewID int32, url string)
	ulTick                  func()
	ulViewGetPixels         func(viewID int32) uintptr
	ulViewUnlockPixels      func(viewID int32)
	ulViewGetWidth          func(viewID int32) uint32
	ulViewGetHeight         func(viewID int32) uint32
	ulViewGetRowBytes       func(viewID int32) uint32
	ulViewFireMouse         func(viewID int32, eventType, x, y, button int32)
	ulViewFireScroll        func(viewID int32, eventType, dx, dy int32)
	ulViewFireKey           func(viewID int32, keyType int32, vk int32, mods uint32, text string)
	ulViewEvalJS            func(viewID int32, js string)
	ulViewGetMessage        func(viewID int32, buf uintptr, bufSize int32) int32
	ulViewGetConsoleMessage func(viewID int32, buf uintptr, bufSize int32) int32
	ulVfsRegister           func(path string, data uintptr, size int64) int32
	ulVfsClear              func()
	ulVfsCount              func() int32
	ulDestroy               func()
)

var (
	loadOnce sync.Once
	loadErr  error
)

// load opens the bridge library in baseDir and binds every symbol. Only the
// first call does any work; later calls return its result.
func load(baseDir string) error {
	loadOnce.Do(func() {
		loadErr = openLibrary(resolveBaseDir(baseDir))
	})
	return loadErr
}

// resolveBaseDir falls back to the working directory, then to the
// executable's directory, when baseDir is empty.
func resolveBaseDir(baseDir string) string {
	if baseDir != "" {
		return baseDir
	}
	baseDir, _ = os.Getwd()
	if _, err := os.Stat(filepath.Join(baseDir, libName())); err != nil {
		if exe, _ := os.Executable(); exe != "" {
			baseDir = filepath.Dir(exe)
		}
	}
	return baseDir
}

func libPath(baseDir string) string {
	p := filepath.Join(baseDir, libName())
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func resolveAllSymbols(handle uintptr) error {
	for _, reg := range []struct {
		fptr any
		name string
	}{
		{&ulInit, "ul_init"},
		{&ulCreateView, "ul_create_view"},
		{&ulDestroyView, "ul_destroy_view"},
		{&ulViewLoadHTML, "ul_view_load_html"},
		{&ulViewLoadURL, "ul_view_load_url"},
		{&ulTick, "ul_tick"},
		{&ulViewGetPixels, "ul_view_get_pixels"},
		{&ulViewUnlockPixels, "ul_view_unlock_pixels"},
		{&ulViewGetWidth, "ul_view_get_width"},
		{&ulViewGetHeight, "ul_view_get_height"},
		{&ulViewGetRowBytes, "ul_view_get_row_bytes"},
		{&ulViewFireMouse, "ul_view_fire_mouse"},
		{&ulViewFireScroll, "ul_view_fire_scroll"},
		{&ulViewFireKey, "ul_view_fire_key"},
		{&ulViewEvalJS, "ul_view_eval_js"},
		{&ulViewGetMessage, "ul_view_get_message"},
		{&ulViewGetConsoleMessage, "ul_view_get_console_message"},
		{&ulVfsRegister, "ul_vfs_register"},
		{&ulVfsClear, "ul_vfs_clear"},
		{&ulVfsCount, "ul_vfs_count"},
		{&ulDestroy, "ul_destroy"},
	} {
		sym, err := symbolAddr(handle, reg.name)
		if err != nil {
			return fmt.Errorf("%s: %w (recompile %s)", reg.name, err, libName())
		}
		purego.RegisterFunc(reg.fptr, sym)
	}
	return nil
}

func pollMessage(viewID int32) (string, bool) {
	var buf [messageBufSize]byte
	n := ulViewGetMessage(viewID, uintptr(unsafe.Pointer(&buf[0])), messageBufSize)
	if n <= 0 {
		return "", false
	}
	return string(buf[:n]), true
}

func pollConsoleMessage(viewID int32) (string, bool) {
	var buf [messageBufSize]byte
	n := ulViewGetConsoleMessage(viewID, uintptr(unsafe.Pointer(&buf[0])), messageBufSize)
	if n <= 0 {
		return "", false
	}
	return string(buf[:n]), true
}
