// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ebitenview

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/webview"
)

// View is a browser instance rendered as an Ebiten texture. It embeds the
// webview command surface, so Navigate, Send, EvalScript and friends are
// called on it directly.
type View struct {
	*webview.View
	host *Host

	texture *ebiten.Image
	frame   *image.RGBA
	width   int
	height  int

	// Bounds in screen coordinates for input routing. Set via SetBounds so that
	// only the view under the cursor receives mouse/scroll input.
	BoundsX, BoundsY, BoundsW, BoundsH int

	mouseX, mouseY int
	leftDown       bool
	rightDown      bool

	painting bool // a paint request is in flight
	stale    bool // invalidated while painting
	retry    bool // last paint failed; request again next frame
	state    offscreen.State
	closed   bool

	// OnMessage is called when the page sends a message via go.send(msg).
	// msg is a string or JSON string. Use webview.ParseMessage to get
	// structured data.
	OnMessage func(msg string)
}

// GetTexture returns the Ebiten image with the last painted frame.
func (v *View) GetTexture() *ebiten.Image {
	return v.texture
}

// State returns the last lifecycle state reported for the view.
func (v *View) State() offscreen.State { return v.state }

// SetFocus gives this view keyboard focus. Only the focused view receives key events,
// regardless of cursor position. Mouse and scroll still require the cursor inside bounds.
// Clicking inside a view also gives it focus.
func (v *View) SetFocus() {
	v.host.focused = v.ID()
}

// SetBounds sets the screen rectangle for this view. Mouse and scroll are only
// forwarded when the cursor is inside these bounds. Keyboard goes to the focused view.
// Use (0,0,0,0) to route the whole screen.
func (v *View) SetBounds(x, y, w, h int) {
	v.BoundsX, v.BoundsY, v.BoundsW, v.BoundsH = x, y, w, h
}

// Close destroys the instance. After Close, the view must not be used.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	if v.host.focused == v.ID() {
		v.host.focused = 0
	}
	v.View.Close()
}

// invalidated schedules a paint unless one is already in flight, in which
// case another is requested once it lands.
func (v *View) invalidated() {
	if v.closed {
		return
	}
	if v.painting {
		v.stale = true
		return
	}
	v.painting = true
	v.RequestPaint(v.frame)
}

// painted uploads a finished frame and repaints if the view was
// invalidated meanwhile. A failed paint is retried on the next Update, so
// a page that never invalidates again still gets drawn.
func (v *View) painted(r offscreen.PaintResult) {
	v.painting = false
	if r.Err != nil {
		offscreen.Logger().Debug("ebitenview: paint failed", "instance", v.ID(), "err", r.Err)
		v.retry = true
	} else {
		v.retry = false
		v.texture.WritePixels(v.frame.Pix)
	}
	if v.stale {
		v.stale = false
		v.invalidated()
	}
}

func (v *View) lifecycle(s offscreen.State) {
	v.state = s
	if s == offscreen.Destroyed {
		v.closed = true
		v.painting = false
		v.stale = false
		v.retry = false
	}
}

func (v *View) inBounds(mx, my int) bool {
	if v.BoundsW <= 0 || v.BoundsH <= 0 {
		return true
	}
	return mx >= v.BoundsX && mx < v.BoundsX+v.BoundsW &&
		my >= v.BoundsY && my < v.BoundsY+v.BoundsH
}

// toLocal maps screen coordinates into the view, accounting for a texture
// drawn scaled into its bounds.
func (v *View) toLocal(mx, my int) (int, int) {
	if v.BoundsW <= 0 || v.BoundsH <= 0 {
		return mx, my
	}
	return (mx - v.BoundsX) * v.width / v.BoundsW, (my - v.BoundsY) * v.height / v.BoundsH
}

func (v *View) forwardInput() {
	if v.closed {
		return
	}
	mx, my := ebiten.CursorPosition()
	inBounds := v.inBounds(mx, my)

	if inBounds && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		v.SetFocus()
	}

	if inBounds {
		lx, ly := v.toLocal(mx, my)

		if lx != v.mouseX || ly != v.mouseY {
			v.Input(offscreen.InputEvent{Kind: offscreen.PointerMove, X: lx, Y: ly})
			v.mouseX = lx
			v.mouseY = ly
		}

		v.leftDown = v.forwardButton(ebiten.MouseButtonLeft, offscreen.ButtonLeft, v.leftDown, lx, ly)
		v.rightDown = v.forwardButton(ebiten.MouseButtonRight, offscreen.ButtonRight, v.rightDown, lx, ly)

		dx, dy := ebiten.Wheel()
		if dx != 0 || dy != 0 {
			v.Input(offscreen.InputEvent{Kind: offscreen.Scroll, X: lx, Y: ly, DX: int(dx * 100), DY: int(dy * 100)})
		}
	}

	if v.host.focused == v.ID() {
		v.forwardKeyboard()
	}
}

func (v *View) forwardButton(eb ebiten.MouseButton, b offscreen.MouseButton, down bool, x, y int) bool {
	if ebiten.IsMouseButtonPressed(eb) {
		if !down {
			v.Input(offscreen.InputEvent{Kind: offscreen.PointerDown, X: x, Y: y, Button: b})
		}
		return true
	}
	if down {
		v.Input(offscreen.InputEvent{Kind: offscreen.PointerUp, X: x, Y: y, Button: b})
	}
	return false
}

func (v *View) forwardKeyboard() {
	mods := currentMods()
	// Key down events (RawKeyDown triggers accelerators like Ctrl+C/V/X/A)
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		if vk := KeyToVK(key); vk != 0 {
			v.Input(offscreen.InputEvent{Kind: offscreen.KeyRawDown, Key: vk, Mods: mods})
		}
	}
	// Character input from OS text input system (handles shift, layout, IME correctly)
	for _, r := range ebiten.AppendInputChars(nil) {
		v.Input(offscreen.InputEvent{Kind: offscreen.KeyChar, Text: string(r)})
	}
	// Key up events
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		if vk := KeyToVK(key); vk != 0 {
			v.Input(offscreen.InputEvent{Kind: offscreen.KeyUp, Key: vk, Mods: mods})
		}
	}
}

func currentMods() uint32 {
	var mods uint32
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= offscreen.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= offscreen.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= offscreen.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= offscreen.ModMeta
	}
	return mods
}
