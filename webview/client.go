// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webview

import (
	"image"

	"github.com/YindSoft/offscreen"
)

// Client is the listener a Widget reports to. It is registered once, when
// the widget is built, and turns every toolkit hook into an envelope for the
// control side. All methods run on the owner thread.
//
// Decision methods block until the control side answers or the bridge
// applies the default.
type Client struct {
	h *offscreen.Hooks
}

// NewClient wraps the instance's hooks.
func NewClient(h *offscreen.Hooks) *Client {
	return &Client{h: h}
}

// ID returns the instance this client reports for.
func (c *Client) ID() offscreen.ID { return c.h.ID() }

// Invalidate reports a whole-surface change.
func (c *Client) Invalidate() { c.h.Invalidate() }

// InvalidateRect reports a change inside r, in content coordinates.
func (c *Client) InvalidateRect(r image.Rectangle) { c.h.InvalidateRect(r) }

// RequestLayout reports a size or layout change.
func (c *Client) RequestLayout() { c.h.RequestLayout() }

func (c *Client) DoUpdateVisitedHistory(url string, isReload bool) {
	c.h.Notify(KindVisitedHistoryUpdated, HistoryUpdate{URL: url, IsReload: isReload})
}

func (c *Client) OnLoadResource(url string) {
	c.h.Notify(KindResourceLoaded, PageEvent{URL: url})
}

func (c *Client) OnPageStarted(url string) {
	c.h.Notify(KindPageStarted, PageEvent{URL: url})
}

func (c *Client) OnPageFinished(url string) {
	c.h.Notify(KindPageFinished, PageEvent{URL: url})
}

func (c *Client) OnReceivedError(code int, description, failingURL string) {
	c.h.Notify(KindLoadError, LoadError{Code: code, Description: description, URL: failingURL})
}

func (c *Client) OnReceivedLoginRequest(realm, account, args string) {
	c.h.Notify(KindLoginRequested, LoginRequest{Realm: realm, Account: account, Args: args})
}

func (c *Client) OnScaleChanged(oldScale, newScale float32) {
	c.h.Notify(KindScaleChanged, ScaleChange{Old: oldScale, New: newScale})
}

func (c *Client) OnUnhandledKeyEvent(ev offscreen.InputEvent) {
	c.h.Notify(KindUnhandledKeyEvent, KeyEvent{Event: ev})
}

func (c *Client) OnProgressChanged(percent int) {
	c.h.Notify(KindProgressChanged, Progress{Percent: percent})
}

// OnScriptMessage relays a message the page sent with go.send(msg).
func (c *Client) OnScriptMessage(msg string) {
	c.h.Notify(KindScriptMessage, msg)
}

// OnFormResubmission asks whether to resend POST data.
func (c *Client) OnFormResubmission(url string) bool {
	return c.h.Decide(KindFormResubmission, URLRequest{URL: url}, false).(bool)
}

// OnReceivedHTTPAuthRequest asks for credentials. The widget must not act on
// the request before this returns.
func (c *Client) OnReceivedHTTPAuthRequest(host, realm string) AuthAnswer {
	return c.h.Decide(KindHTTPAuth, AuthRequest{Host: host, Realm: realm}, AuthAnswer{}).(AuthAnswer)
}

// OnReceivedSSLError asks whether to proceed despite e.
func (c *Client) OnReceivedSSLError(e SSLError) bool {
	return c.h.Decide(KindSSLError, e, false).(bool)
}

// OnTooManyRedirects asks whether to keep following redirects.
func (c *Client) OnTooManyRedirects(url string) bool {
	return c.h.Decide(KindTooManyRedirects, URLRequest{URL: url}, false).(bool)
}

// ShouldInterceptRequest lets the control side replace a resource. A nil
// result loads the resource normally.
func (c *Client) ShouldInterceptRequest(url string) *Response {
	r, _ := c.h.Decide(KindResourceIntercept, ResourceRequest{URL: url}, (*Response)(nil)).(*Response)
	return r
}

// ShouldOverrideKeyEvent reports true when the host takes the key instead of
// the widget.
func (c *Client) ShouldOverrideKeyEvent(ev offscreen.InputEvent) bool {
	return c.h.Decide(KindKeyOverride, KeyEvent{Event: ev}, false).(bool)
}

// ShouldOverrideURLLoading reports true when the host handles url and the
// widget must not load it.
func (c *Client) ShouldOverrideURLLoading(url string) bool {
	return c.h.Decide(KindURLOverride, URLRequest{URL: url}, false).(bool)
}
