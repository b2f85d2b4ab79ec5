// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build linux

package offscreen

import "golang.org/x/sys/unix"

// threadID identifies the calling OS thread. Only meaningful for goroutines
// that called runtime.LockOSThread.
func threadID() uint64 {
	return uint64(unix.Gettid())
}
