// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build windows

package offscreen

import "golang.org/x/sys/windows"

func threadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
