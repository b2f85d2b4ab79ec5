// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import (
	"image"
	"image/draw"
	"strconv"
)

// ID identifies one embedded widget session. IDs are issued on the control
// side and never reused, so a command or callback for a destroyed instance
// is a lookup miss on the owner thread rather than a dangling reference.
type ID uint64

func (id ID) String() string {
	return "instance#" + strconv.FormatUint(uint64(id), 10)
}

// Surrogate is the embedded widget as the owner thread sees it. Every method
// is called on the owner thread only. Implementations suppress their own
// on-screen drawing; the bridge renders them through Paint.
type Surrogate interface {
	// Paint renders the current committed state into dst.
	Paint(dst draw.Image) error
	// Viewport is the visible region in content coordinates: scroll offset
	// plus width and height.
	Viewport() image.Rectangle

	SetVisible(visible bool)
	PauseTimers()
	ResumeTimers()

	// HandleInput runs the widget's normal input handling and reports
	// whether it consumed the event.
	HandleInput(ev InputEvent) bool
	Focusable() bool
	HasFocus() bool
	RequestFocus() bool

	// Destroy releases the widget. No method is called after Destroy.
	Destroy()
}

// Ticker is implemented by surrogates that need to run on every owner loop
// pump, e.g. to poll a native event queue.
type Ticker interface {
	Tick()
}

// Toolkit is the process-wide side of a widget kind: the part of the run
// loop that is not tied to one instance (Ultralight's global tick, for
// example). Tick runs on the owner thread before instances are ticked.
type Toolkit interface {
	Tick()
}

// Factory constructs a surrogate on the owner thread. The widget must keep
// h and deliver its invalidation and callback hooks through it.
type Factory[W Surrogate] func(h *Hooks) (W, error)

// Action is a unit of work executed on the owner thread against one
// instance. It has no return channel; results go back through s.Notify.
type Action[W Surrogate] func(s *Scope[W])
