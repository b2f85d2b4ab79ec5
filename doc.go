// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package offscreen drives interactive widgets that are never attached to a
// window and never draw themselves. A widget lives on one owner thread
// (the goroutine running [Bridge.Run], locked to its OS thread); the
// embedding engine talks to it from its own control thread and pulls its
// pixels into a buffer it owns, e.g. to upload as a texture.
//
// Everything crossing threads goes through the bridge:
//
//   - actions: [Bridge.Submit] queues closures that run on the owner thread,
//     in submission order per instance. Actions for a destroyed instance are
//     dropped.
//   - invalidation: widgets call [Hooks.Invalidate], [Hooks.InvalidateRect]
//     or [Hooks.RequestLayout]; the control side receives at most one
//     [KindInvalidated] envelope until the next successful paint.
//   - paint: [Bridge.RequestPaint] renders into a caller surface on the owner
//     thread and hands it back in a [KindPainted] envelope.
//   - callbacks: widgets relay toolkit events with [Hooks.Notify] and
//     [Hooks.Decide]. Decisions block the owner thread until answered with
//     [Decision.Resolve] or until the configured timeout applies a default.
//   - input: [Bridge.Input] events reach the widget only after
//     [Bridge.SetInputEnabled] granted input.
//   - lifecycle: [Bridge.SetVisible] and [Bridge.Destroy].
//
// Basic usage, with the browser adapter from the webview package:
//
//	b := offscreen.New[webview.Widget](offscreen.DefaultConfig(), nil)
//	go b.Run(ctx)
//
//	v := webview.Open(b, simview.Factory(simview.Options{Width: 800, Height: 600}))
//	v.SetVisible(true)
//	v.Navigate("https://example.test")
//
//	// Once per frame on the control thread:
//	b.Drain(func(e offscreen.Envelope) {
//	    switch e.Kind {
//	    case offscreen.KindInvalidated:
//	        b.RequestPaint(e.Instance, back)
//	    case offscreen.KindPainted:
//	        // upload back
//	    case webview.KindURLOverride:
//	        e.Decision.Resolve(false)
//	    }
//	})
//
// Calling an owner-only operation ([Scope.Paint], [Scope.Widget], any
// [Hooks] method) from another thread panics with an error wrapping
// [ErrWrongThread].
package offscreen
