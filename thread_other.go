// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build !linux && !windows && !darwin

package offscreen

// threadID returns 0 where the OS thread id is not available. Owner
// checks then rely on Scope liveness alone.
func threadID() uint64 {
	return 0
}
