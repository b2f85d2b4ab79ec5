// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

// InputKind classifies an InputEvent.
type InputKind int

const (
	PointerMove InputKind = iota
	PointerDown
	PointerUp
	Scroll
	KeyRawDown
	KeyDown
	KeyUp
	KeyChar
)

func (k InputKind) String() string {
	switch k {
	case PointerMove:
		return "pointer-move"
	case PointerDown:
		return "pointer-down"
	case PointerUp:
		return "pointer-up"
	case Scroll:
		return "scroll"
	case KeyRawDown:
		return "key-raw-down"
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	case KeyChar:
		return "key-char"
	}
	return "unknown"
}

// IsPress reports whether the event is a press or release, the two kinds
// that pull focus to a detached widget.
func (k InputKind) IsPress() bool {
	return k == PointerDown || k == PointerUp
}

// MouseButton identifies a pointer button.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Modifier bits.
const (
	ModAlt uint32 = 1 << iota
	ModCtrl
	ModMeta
	ModShift
)

// InputEvent is one input event in widget-local coordinates.
type InputEvent struct {
	Kind   InputKind
	X, Y   int
	Button MouseButton
	DX, DY int // scroll deltas in pixels

	// Key is a Windows virtual-key code, Mods the modifier bits, Text the
	// produced characters for KeyChar.
	Key  int32
	Mods uint32
	Text string
}

// routeInput is the Input Router: gate on the per-instance flag, pull focus
// on press/release, then hand the event to the widget.
func routeInput(st *instanceState, w Surrogate, ev InputEvent) bool {
	if !st.acceptsInput {
		return false
	}
	if ev.Kind.IsPress() && w.Focusable() && !w.HasFocus() {
		Logger().Debug("input: requesting focus", "instance", st.id, "kind", ev.Kind)
		w.RequestFocus()
	}
	return w.HandleInput(ev)
}
