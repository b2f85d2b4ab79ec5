// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webview

import (
	"fmt"
	"image/draw"

	"github.com/YindSoft/offscreen"
)

// View is the control-thread handle of one browser instance. Every method
// queues an action and returns at once; results arrive as envelopes tagged
// with ID(). Methods on a destroyed view are silently dropped.
type View struct {
	b  *Bridge
	id offscreen.ID
}

// Open creates a browser instance built by f on the owner thread.
func Open(b *Bridge, f Factory) *View {
	id := b.Create(func(h *offscreen.Hooks) (Widget, error) {
		return f(NewClient(h))
	})
	return &View{b: b, id: id}
}

// ID returns the instance ID carried by this view's envelopes.
func (v *View) ID() offscreen.ID { return v.id }

func (v *View) do(name string, act func(w Widget, s *Scope)) {
	v.b.Submit(v.id, name, func(s *Scope) {
		act(s.Widget(), s)
	})
}

// Navigate loads url.
func (v *View) Navigate(url string) {
	v.do("navigate", func(w Widget, _ *Scope) {
		w.LoadURL(url, nil)
	})
}

// NavigateWithHeaders loads url with extra request headers given as
// alternating name/value lines (see ParseHeaderLines). Malformed entries are
// dropped; the navigation still happens.
func (v *View) NavigateWithHeaders(url, headerLines string) {
	v.do("navigate-with-headers", func(w Widget, s *Scope) {
		headers, dropped := ParseHeaderLines(headerLines)
		if dropped > 0 {
			offscreen.Logger().Warn("navigate: dropped malformed header entries", "instance", s.ID(), "dropped", dropped)
		}
		w.LoadURL(url, headers)
	})
}

// LoadInline loads content directly.
func (v *View) LoadInline(content, mimeType, encoding string) {
	v.do("load-inline", func(w Widget, _ *Scope) {
		w.LoadData(content, mimeType, encoding)
	})
}

// LoadInlineWithBase loads content resolving relative references against
// baseURL; historyURL is the history entry recorded for it.
func (v *View) LoadInlineWithBase(baseURL, content, mimeType, encoding, historyURL string) {
	v.do("load-inline-with-base", func(w Widget, _ *Scope) {
		w.LoadDataWithBaseURL(baseURL, content, mimeType, encoding, historyURL)
	})
}

// QueryContentHeight reports the document height as content-height-result.
func (v *View) QueryContentHeight() {
	v.do("query-content-height", func(w Widget, s *Scope) {
		s.Notify(KindContentHeight, ContentHeight{Height: w.ContentHeight()})
	})
}

func (v *View) QueryCanGoBack() {
	v.do("query-can-go-back", func(w Widget, s *Scope) {
		s.Notify(KindCanGoBack, HistoryQuery{Can: w.CanGoBack(), Steps: -1})
	})
}

func (v *View) QueryCanGoForward() {
	v.do("query-can-go-forward", func(w Widget, s *Scope) {
		s.Notify(KindCanGoForward, HistoryQuery{Can: w.CanGoForward(), Steps: 1})
	})
}

func (v *View) QueryCanGoBackOrForward(steps int) {
	v.do(fmt.Sprintf("query-can-go-back-or-forward(%d)", steps), func(w Widget, s *Scope) {
		s.Notify(KindCanGoBackOrForward, HistoryQuery{Can: w.CanGoBackOrForward(steps), Steps: steps})
	})
}

func (v *View) GoBack() {
	v.do("go-back", func(w Widget, _ *Scope) { w.GoBack() })
}

func (v *View) GoForward() {
	v.do("go-forward", func(w Widget, _ *Scope) { w.GoForward() })
}

func (v *View) GoBackOrForward(steps int) {
	v.do(fmt.Sprintf("go-back-or-forward(%d)", steps), func(w Widget, _ *Scope) {
		w.GoBackOrForward(steps)
	})
}

func (v *View) SetDebuggingEnabled(enabled bool) {
	v.do(fmt.Sprintf("set-debugging(%t)", enabled), func(w Widget, _ *Scope) {
		w.SetDebuggingEnabled(enabled)
	})
}

// EvalScript runs JavaScript in the page. Fire-and-forget (no return value).
func (v *View) EvalScript(js string) {
	v.do("eval-script", func(w Widget, _ *Scope) { w.EvalScript(js) })
}

// Send sends structured data to the page. It serializes to JSON and invokes
// window.go.receive(data). Define go.receive in your HTML to handle it.
func (v *View) Send(data any) error {
	js, err := receiveScript(data)
	if err != nil {
		return err
	}
	v.EvalScript(js)
	return nil
}

// SetVisible resumes (true) or pauses (false) the widget.
func (v *View) SetVisible(visible bool) { v.b.SetVisible(v.id, visible) }

// SetInputEnabled grants or revokes input.
func (v *View) SetInputEnabled(enabled bool) { v.b.SetInputEnabled(v.id, enabled) }

// Input forwards an input event.
func (v *View) Input(ev offscreen.InputEvent) { v.b.Input(v.id, ev) }

// RequestPaint renders into dst; see offscreen.Bridge.RequestPaint.
func (v *View) RequestPaint(dst draw.Image) { v.b.RequestPaint(v.id, dst) }

// Close destroys the instance.
func (v *View) Close() { v.b.Destroy(v.id) }
