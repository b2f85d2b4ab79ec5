// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import "github.com/YindSoft/offscreen"

type nativeKind int

const (
	nativeMouse nativeKind = iota + 1
	nativeScroll
	nativeKey
)

// nativeEvent is an InputEvent translated to the bridge's fire_* arguments.
type nativeEvent struct {
	kind   nativeKind
	typ    int32
	x, y   int32
	button int32
	vk     int32
	mods   uint32
	text   string
}

// toNative maps ev onto the bridge's event codes. ok is false for events
// the bridge has no representation for.
func toNative(ev offscreen.InputEvent) (n nativeEvent, ok bool) {
	switch ev.Kind {
	case offscreen.PointerMove, offscreen.PointerDown, offscreen.PointerUp:
		n = nativeEvent{kind: nativeMouse, x: int32(ev.X), y: int32(ev.Y), button: mouseButton(ev.Button)}
		switch ev.Kind {
		case offscreen.PointerMove:
			n.typ = mouseEventTypeMoved
			n.button = mouseButtonNone
		case offscreen.PointerDown:
			n.typ = mouseEventTypeDown
		default:
			n.typ = mouseEventTypeUp
		}
		return n, true
	case offscreen.Scroll:
		return nativeEvent{kind: nativeScroll, typ: scrollEventTypeByPixel, x: int32(ev.DX), y: int32(ev.DY)}, true
	case offscreen.KeyRawDown:
		return keyEvent(keyEventRawKeyDown, ev), ev.Key != 0
	case offscreen.KeyDown:
		return keyEvent(keyEventKeyDown, ev), ev.Key != 0
	case offscreen.KeyUp:
		return keyEvent(keyEventKeyUp, ev), ev.Key != 0
	case offscreen.KeyChar:
		// Character input carries no key code or modifiers.
		return nativeEvent{kind: nativeKey, typ: keyEventChar, text: ev.Text}, ev.Text != ""
	}
	return nativeEvent{}, false
}

func keyEvent(typ int32, ev offscreen.InputEvent) nativeEvent {
	return nativeEvent{kind: nativeKey, typ: typ, vk: ev.Key, mods: keyMods(ev.Mods)}
}

func mouseButton(b offscreen.MouseButton) int32 {
	switch b {
	case offscreen.ButtonLeft:
		return mouseButtonLeft
	case offscreen.ButtonMiddle:
		return mouseButtonMiddle
	case offscreen.ButtonRight:
		return mouseButtonRight
	}
	return mouseButtonNone
}

func keyMods(m uint32) uint32 {
	var mods uint32
	if m&offscreen.ModAlt != 0 {
		mods |= keyModAlt
	}
	if m&offscreen.ModCtrl != 0 {
		mods |= keyModCtrl
	}
	if m&offscreen.ModMeta != 0 {
		mods |= keyModMeta
	}
	if m&offscreen.ModShift != 0 {
		mods |= keyModShift
	}
	return mods
}

func fire(viewID int32, n nativeEvent) {
	switch n.kind {
	case nativeMouse:
		ulViewFireMouse(viewID, n.typ, n.x, n.y, n.button)
	case nativeScroll:
		ulViewFireScroll(viewID, n.typ, n.x, n.y)
	case nativeKey:
		ulViewFireKey(viewID, n.typ, n.vk, n.mods, n.text)
	}
}
