// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package ebitenview shows bridge-driven browser views in an Ebitengine
// game. The game's Update thread is the control thread: Host.Update drains
// the bridge, repaints invalidated views into their textures and forwards
// mouse, wheel and keyboard input.
//
//	b := webview.NewBridge(cfg, tk)
//	go b.Run(ctx)
//	host := ebitenview.NewHost(b)
//	view := host.Open(factory, 800, 600)
//	view.Navigate("https://example.com")
//
//	// In Ebiten Update():
//	host.Update()
//
//	// In Ebiten Draw():
//	screen.DrawImage(view.GetTexture(), opts)
package ebitenview

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/webview"
)

// Host owns the views of one bridge on the control thread. All methods
// must be called from the game loop.
type Host struct {
	b       *webview.Bridge
	views   map[offscreen.ID]*View
	order   []*View
	focused offscreen.ID

	// OnEnvelope receives every envelope after the host has handled it,
	// decisions included. A decision left pending by OnEnvelope (or with no
	// OnEnvelope set) is answered with its default at once, so the page
	// never waits on an absent handler.
	OnEnvelope func(v *View, e offscreen.Envelope)
}

// NewHost returns a host for b. b must be running.
func NewHost(b *webview.Bridge) *Host {
	return &Host{b: b, views: make(map[offscreen.ID]*View)}
}

// Open creates a width x height view built by f. It starts visible, with
// input enabled.
func (h *Host) Open(f webview.Factory, width, height int) *View {
	v := &View{
		View:    webview.Open(h.b, f),
		host:    h,
		texture: ebiten.NewImage(width, height),
		frame:   image.NewRGBA(image.Rect(0, 0, width, height)),
		width:   width,
		height:  height,
	}
	h.views[v.ID()] = v
	h.order = append(h.order, v)
	v.SetVisible(true)
	v.SetInputEnabled(true)
	return v
}

// Update should be called every frame from the game's Update. It retries
// paints that failed last frame, handles queued envelopes, then forwards
// input to every open view.
func (h *Host) Update() error {
	h.retryFailedPaints()
	h.b.Drain(h.handle)
	for _, v := range h.order {
		v.forwardInput()
	}
	return nil
}

func (h *Host) retryFailedPaints() {
	for _, v := range h.order {
		if v.retry && !v.painting {
			v.retry = false
			v.invalidated()
		}
	}
}

func (h *Host) handle(e offscreen.Envelope) {
	v := h.views[e.Instance]
	if v != nil {
		switch e.Kind {
		case offscreen.KindInvalidated:
			v.invalidated()
		case offscreen.KindPainted:
			if r, ok := e.Payload.(offscreen.PaintResult); ok {
				v.painted(r)
			}
		case offscreen.KindLifecycle:
			if s, ok := e.Payload.(offscreen.State); ok {
				v.lifecycle(s)
				if s == offscreen.Destroyed {
					h.forget(v)
				}
			}
		case offscreen.KindCreateFailed:
			offscreen.Logger().Warn("ebitenview: view creation failed", "instance", e.Instance, "err", e.Payload)
			v.lifecycle(offscreen.Destroyed)
			h.forget(v)
		case webview.KindScriptMessage:
			if msg, ok := e.Payload.(string); ok && v.OnMessage != nil {
				v.OnMessage(msg)
			}
		}
	}
	if h.OnEnvelope != nil {
		h.OnEnvelope(v, e)
	}
	if e.IsDecision() && e.Decision.Pending() {
		// Fails only if the bridge expired it meanwhile.
		_ = e.Decision.Resolve(e.Decision.Default())
	}
}

func (h *Host) forget(v *View) {
	delete(h.views, v.ID())
	for i, o := range h.order {
		if o == v {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	if h.focused == v.ID() {
		h.focused = 0
	}
}

// Focused returns the view with keyboard focus, or nil.
func (h *Host) Focused() *View {
	return h.views[h.focused]
}

// Close destroys every open view. The bridge keeps running.
func (h *Host) Close() {
	for _, v := range h.order {
		v.Close()
	}
}
