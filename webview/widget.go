// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package webview adapts browser widgets to the offscreen bridge: the
// toolkit contract a browser widget implements, the Client listener that
// relays its callbacks, and the View command surface used from the control
// thread.
package webview

import "github.com/YindSoft/offscreen"

// Widget is a browser surface driven by the bridge. Methods run on the owner
// thread. Loads are asynchronous from the caller's point of view: progress
// is reported through the Client given to the Factory.
type Widget interface {
	offscreen.Surrogate

	LoadURL(url string, headers map[string]string)
	LoadData(data, mimeType, encoding string)
	LoadDataWithBaseURL(baseURL, data, mimeType, encoding, historyURL string)

	// ContentHeight is the document height in content pixels.
	ContentHeight() int

	CanGoBack() bool
	CanGoForward() bool
	CanGoBackOrForward(steps int) bool
	GoBack()
	GoForward()
	GoBackOrForward(steps int)

	SetDebuggingEnabled(enabled bool)
	// EvalScript runs JavaScript in the page. Fire-and-forget.
	EvalScript(js string)
}

// Bridge is the bridge type browser widgets run on.
type Bridge = offscreen.Bridge[Widget]

// Scope is an action's view of a browser instance.
type Scope = offscreen.Scope[Widget]

// Factory builds a widget on the owner thread. The widget reports every
// callback and invalidation to c.
type Factory func(c *Client) (Widget, error)

// NewBridge returns a bridge for browser widgets. tk may be nil.
func NewBridge(cfg offscreen.Config, tk offscreen.Toolkit) *Bridge {
	return offscreen.New[Widget](cfg, tk)
}
