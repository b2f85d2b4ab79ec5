// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build darwin

package offscreen

import (
	"sync"

	"github.com/ebitengine/purego"
)

var (
	threadIDOnce sync.Once
	// pthread_threadid_np(pthread_t, uint64_t *). A zero thread means the
	// calling one.
	pthreadThreadID func(thread uintptr, id *uint64) int32
)

func bindThreadID() {
	lib, err := purego.Dlopen("/usr/lib/libSystem.B.dylib", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		Logger().Warn("owner thread checks disabled", "err", err)
		return
	}
	purego.RegisterLibFunc(&pthreadThreadID, lib, "pthread_threadid_np")
}

// threadID identifies the calling OS thread. Only meaningful for goroutines
// that called runtime.LockOSThread. It returns 0, disabling owner checks,
// if libSystem cannot be loaded.
func threadID() uint64 {
	threadIDOnce.Do(bindThreadID)
	if pthreadThreadID == nil {
		return 0
	}
	var id uint64
	if pthreadThreadID(0, &id) != 0 {
		return 0
	}
	return id
}
