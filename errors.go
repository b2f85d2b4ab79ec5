// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import "errors"

var (
	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("offscreen: bridge closed")
	// ErrRunning is returned by a second concurrent Run.
	ErrRunning = errors.New("offscreen: owner loop already running")
	// ErrWrongThread is wrapped by the panic raised when an owner-only
	// operation runs off the owner thread.
	ErrWrongThread = errors.New("offscreen: called off the owner thread")
	// ErrStaleInstance reports an operation on a destroyed instance.
	ErrStaleInstance = errors.New("offscreen: instance destroyed")
	// ErrAlreadyAnswered is returned by a second Decision.Resolve.
	ErrAlreadyAnswered = errors.New("offscreen: decision already answered")
	// ErrDecisionExpired is returned by Decision.Resolve after the default
	// answer was applied.
	ErrDecisionExpired = errors.New("offscreen: decision expired")
	// ErrAnswerType is returned when an answer does not match the
	// decision's answer type.
	ErrAnswerType = errors.New("offscreen: wrong answer type")
)
