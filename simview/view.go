// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package simview is a software browser widget. It lays out HTML as lines
// of text, keeps a history stack and renders with a bitmap font, firing the
// same client callbacks as a native browser. It needs no native library, so
// it backs headless runs and tests.
package simview

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"net/url"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/webview"
)

// MaxRedirects is the redirect count past which a load asks whether to
// continue.
const MaxRedirects = 20

// Virtual-key codes the widget reacts to.
const (
	vkF5       = 0x74
	vkPageUp   = 0x21
	vkPageDown = 0x22
	vkHome     = 0x24
	vkEnd      = 0x23
	vkUp       = 0x26
	vkDown     = 0x28
	vkPlus     = 0xBB
	vkMinus    = 0xBD
)

var (
	errDestroyed = errors.New("simview: widget destroyed")

	linkColor = color.RGBA{0x1a, 0x0d, 0xab, 0xff}
)

// Page is a canned response served for one URL.
type Page struct {
	HTML string
	// Realm, when set, requires HTTP authentication with a non-empty
	// username.
	Realm string
	// CertError fails the TLS handshake unless the host proceeds.
	CertError bool
	// Redirects is the number of redirects before the page is reached.
	Redirects int
	// FormPost marks the page as the result of a POST; reloading it asks
	// whether to resubmit.
	FormPost bool
}

// Options configures a widget.
type Options struct {
	Width, Height int
	// Pages maps absolute URLs to their content. Unknown http(s) URLs load
	// an empty document; other schemes fail with a load error.
	Pages map[string]Page
	// LineHeight is the layout line height in pixels. Defaults to 16.
	LineHeight int
	// OnScript is called for every evaluated script; each returned string
	// is relayed to the host as if the page had called go.send.
	OnScript func(js string) []string
}

// Factory returns a webview.Factory building widgets with opts.
func Factory(opts Options) webview.Factory {
	return func(c *webview.Client) (webview.Widget, error) {
		return New(c, opts)
	}
}

// View is a software browser widget. It satisfies webview.Widget and
// offscreen.Ticker. All methods run on the owner thread.
type View struct {
	c    *webview.Client
	opts Options
	face font.Face

	doc     document
	history []entry
	pos     int
	scrollY int
	scale   float32

	visible   bool
	running   bool
	focused   bool
	debugging bool
	destroyed bool
	frames    int
	scripts   []string
	lastHdrs  map[string]string
}

// entry is one history item. Inline entries keep their content so that
// traversal can show them again.
type entry struct {
	url    string
	inline bool
	docURL string
	data   string
	mime   string
}

// New builds a widget reporting to c.
func New(c *webview.Client, opts Options) (*View, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("simview: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = 16
	}
	return &View{
		c:       c,
		opts:    opts,
		face:    basicfont.Face7x13,
		pos:     -1,
		scale:   1,
		running: true,
		doc:     document{url: "about:blank"},
	}, nil
}

// zoomed converts page pixels to view pixels at the current scale.
func (v *View) zoomed(n int) int {
	return int(float32(n) * v.scale)
}

func (v *View) lineHeight() int {
	return max(1, v.zoomed(v.opts.LineHeight))
}

func (v *View) cols() int {
	return (v.opts.Width - 8) / basicfont.Face7x13.Advance
}

// URL returns the committed document URL.
func (v *View) URL() string { return v.doc.url }

// Title returns the committed document title.
func (v *View) Title() string { return v.doc.title }

// Text returns the laid-out lines of the committed document.
func (v *View) Text() []string {
	out := make([]string, len(v.doc.lines))
	for i, l := range v.doc.lines {
		out[i] = l.text
	}
	return out
}

// Visible reports the last SetVisible value.
func (v *View) Visible() bool { return v.visible }

// TimersRunning reports whether Tick advances the frame counter.
func (v *View) TimersRunning() bool { return v.running }

// Frames is the number of ticks run while timers were running.
func (v *View) Frames() int { return v.frames }

// Debugging reports the last SetDebuggingEnabled value.
func (v *View) Debugging() bool { return v.debugging }

// Scripts returns every script evaluated so far.
func (v *View) Scripts() []string { return v.scripts }

// RequestHeaders returns the extra headers of the last LoadURL.
func (v *View) RequestHeaders() map[string]string { return v.lastHdrs }

// Scale is the current zoom factor.
func (v *View) Scale() float32 { return v.scale }

// ScrollY is the vertical scroll offset in content pixels.
func (v *View) ScrollY() int { return v.scrollY }

// Tick advances page timers.
func (v *View) Tick() {
	if v.running && !v.destroyed {
		v.frames++
	}
}

func (v *View) LoadURL(rawURL string, headers map[string]string) {
	v.lastHdrs = headers
	v.load(rawURL, false, true)
}

func (v *View) LoadData(data, mimeType, encoding string) {
	u := "data:" + mimeType
	if encoding != "" {
		u += ";" + encoding
	}
	u += ","
	v.loadInline(u, data, mimeType, encoding, u, true)
}

func (v *View) LoadDataWithBaseURL(baseURL, data, mimeType, encoding, historyURL string) {
	if baseURL == "" {
		baseURL = "about:blank"
	}
	if historyURL == "" {
		historyURL = "about:blank"
	}
	v.loadInline(baseURL, data, mimeType, encoding, historyURL, true)
}

func (v *View) loadInline(docURL, data, mimeType, encoding, historyURL string, record bool) {
	if strings.EqualFold(encoding, "base64") {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			v.c.OnReceivedError(webview.ErrorBadURL, "net::ERR_INVALID_URL", docURL)
			return
		}
		data = string(b)
	}
	v.c.OnPageStarted(docURL)
	v.commit(docURL, data, mimeType)
	if record {
		v.push(entry{url: historyURL, inline: true, docURL: docURL, data: data, mime: mimeType})
	}
	v.c.OnProgressChanged(100)
	v.c.DoUpdateVisitedHistory(historyURL, false)
	v.c.OnPageFinished(docURL)
}

// load runs a network navigation to completion. Decisions block here until
// the host answers or the default applies.
func (v *View) load(rawURL string, reload, record bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		v.c.OnReceivedError(webview.ErrorBadURL, "net::ERR_INVALID_URL", rawURL)
		return
	}
	page, known := v.opts.Pages[rawURL]
	v.c.OnPageStarted(rawURL)
	v.c.OnProgressChanged(10)

	fail := func(code int, desc string) {
		v.c.OnReceivedError(code, desc, rawURL)
		v.c.OnPageFinished(rawURL)
	}
	if page.Redirects > MaxRedirects && !v.c.OnTooManyRedirects(rawURL) {
		fail(webview.ErrorRedirectLoop, "net::ERR_TOO_MANY_REDIRECTS")
		return
	}
	if page.CertError {
		e := webview.SSLError{URL: rawURL, Primary: webview.SSLUntrusted, Message: "certificate is not trusted"}
		if !v.c.OnReceivedSSLError(e) {
			fail(webview.ErrorFailedSSL, "net::ERR_CERT_AUTHORITY_INVALID")
			return
		}
	}
	if page.Realm != "" {
		ans := v.c.OnReceivedHTTPAuthRequest(u.Host, page.Realm)
		if !ans.Proceed || ans.Username == "" {
			fail(webview.ErrorAuthentication, "net::ERR_INVALID_AUTH_CREDENTIALS")
			return
		}
	}
	if reload && page.FormPost && !v.c.OnFormResubmission(rawURL) {
		v.c.OnPageFinished(rawURL)
		return
	}
	v.c.OnProgressChanged(50)

	body, mimeType := page.HTML, "text/html"
	if r := v.c.ShouldInterceptRequest(rawURL); r != nil {
		b, err := readResponse(r)
		if err != nil {
			fail(webview.ErrorUnknown, err.Error())
			return
		}
		body = b
		if r.MIMEType != "" {
			mimeType = r.MIMEType
		}
	} else if !known && u.Scheme != "http" && u.Scheme != "https" {
		fail(webview.ErrorFileNotFound, "net::ERR_FILE_NOT_FOUND")
		return
	}

	v.commit(rawURL, body, mimeType)
	v.c.OnLoadResource(rawURL)
	if record {
		v.push(entry{url: rawURL})
	}
	v.c.OnProgressChanged(100)
	v.c.DoUpdateVisitedHistory(rawURL, reload)
	v.c.OnPageFinished(rawURL)
}

func readResponse(r *webview.Response) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	if c, ok := r.Body.(io.Closer); ok {
		defer c.Close()
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("read intercepted body: %w", err)
	}
	return string(b), nil
}

func (v *View) commit(docURL, body, mimeType string) {
	doc := document{url: docURL}
	if strings.HasPrefix(mimeType, "text/html") || mimeType == "" {
		title, lines, err := parseHTML(body, v.cols())
		if err != nil {
			offscreen.Logger().Warn("simview: parse failed, showing source", "url", docURL, "error", err)
			lines = parseText(body, v.cols())
		}
		doc.title, doc.lines = title, lines
	} else {
		doc.lines = parseText(body, v.cols())
	}
	v.doc = doc
	v.scrollY = 0
	v.c.RequestLayout()
}

// push records u after the current entry, dropping the forward list.
func (v *View) push(e entry) {
	v.history = append(v.history[:v.pos+1], e)
	v.pos = len(v.history) - 1
}

func (v *View) ContentHeight() int {
	return v.zoomed(len(v.doc.lines) * v.opts.LineHeight)
}

func (v *View) CanGoBack() bool    { return v.CanGoBackOrForward(-1) }
func (v *View) CanGoForward() bool { return v.CanGoBackOrForward(1) }

func (v *View) CanGoBackOrForward(steps int) bool {
	i := v.pos + steps
	return v.pos >= 0 && i >= 0 && i < len(v.history)
}

func (v *View) GoBack()    { v.GoBackOrForward(-1) }
func (v *View) GoForward() { v.GoBackOrForward(1) }

func (v *View) GoBackOrForward(steps int) {
	if steps == 0 || !v.CanGoBackOrForward(steps) {
		return
	}
	v.pos += steps
	v.open(v.history[v.pos], false)
}

func (v *View) reload() {
	if v.pos < 0 {
		return
	}
	v.open(v.history[v.pos], true)
}

// open shows a history entry without recording a new one.
func (v *View) open(e entry, reload bool) {
	if !e.inline {
		v.load(e.url, reload, false)
		return
	}
	v.loadInline(e.docURL, e.data, e.mime, "", e.url, false)
}

func (v *View) SetDebuggingEnabled(enabled bool) { v.debugging = enabled }

func (v *View) EvalScript(js string) {
	v.scripts = append(v.scripts, js)
	if v.opts.OnScript == nil {
		return
	}
	for _, msg := range v.opts.OnScript(js) {
		v.c.OnScriptMessage(msg)
	}
}

func (v *View) Viewport() image.Rectangle {
	return image.Rect(0, v.scrollY, v.opts.Width, v.scrollY+v.opts.Height)
}

func (v *View) SetVisible(visible bool) { v.visible = visible }
func (v *View) PauseTimers()            { v.running = false }
func (v *View) ResumeTimers()           { v.running = true }

func (v *View) Focusable() bool { return true }
func (v *View) HasFocus() bool  { return v.focused }

func (v *View) RequestFocus() bool {
	v.focused = true
	return true
}

func (v *View) Destroy() {
	v.destroyed = true
	v.doc = document{}
	v.history = nil
}

func (v *View) HandleInput(ev offscreen.InputEvent) bool {
	switch ev.Kind {
	case offscreen.PointerMove, offscreen.PointerDown:
		return true
	case offscreen.PointerUp:
		if ev.Button == offscreen.ButtonLeft {
			v.click(ev.X, ev.Y)
		}
		return true
	case offscreen.Scroll:
		v.scrollBy(-ev.DY)
		return true
	case offscreen.KeyRawDown, offscreen.KeyDown:
		if v.c.ShouldOverrideKeyEvent(ev) {
			return false
		}
		if v.handleKey(ev) {
			return true
		}
		v.c.OnUnhandledKeyEvent(ev)
	}
	return false
}

func (v *View) handleKey(ev offscreen.InputEvent) bool {
	lh := v.lineHeight()
	page := v.opts.Height - lh
	switch ev.Key {
	case vkUp:
		v.scrollBy(-lh)
	case vkDown:
		v.scrollBy(lh)
	case vkPageUp:
		v.scrollBy(-page)
	case vkPageDown:
		v.scrollBy(page)
	case vkHome:
		v.scrollBy(-v.scrollY)
	case vkEnd:
		v.scrollBy(v.ContentHeight())
	case vkF5:
		v.reload()
	case vkPlus, vkMinus:
		if ev.Mods&offscreen.ModCtrl == 0 {
			return false
		}
		old := v.scale
		if ev.Key == vkPlus {
			v.scale = min(old*1.25, 5)
		} else {
			v.scale = max(old/1.25, 0.25)
		}
		if v.scale != old {
			// Keep the same page line at the top.
			limit := max(0, v.ContentHeight()-v.opts.Height)
			v.scrollY = min(int(float32(v.scrollY)*v.scale/old), limit)
			v.c.OnScaleChanged(old, v.scale)
			v.c.Invalidate()
		}
	default:
		return false
	}
	return true
}

func (v *View) scrollBy(dy int) {
	limit := max(0, v.ContentHeight()-v.opts.Height)
	y := min(max(v.scrollY+dy, 0), limit)
	if y == v.scrollY {
		return
	}
	v.scrollY = y
	v.c.InvalidateRect(v.Viewport())
}

// click follows the link on the line under (x, y), if any.
func (v *View) click(_, y int) {
	i := int(float32(v.scrollY+y) / (float32(v.opts.LineHeight) * v.scale))
	if i < 0 || i >= len(v.doc.lines) || v.doc.lines[i].href == "" {
		return
	}
	target := v.doc.lines[i].href
	if base, err := url.Parse(v.doc.url); err == nil {
		if ref, err := url.Parse(target); err == nil {
			target = base.ResolveReference(ref).String()
		}
	}
	if v.c.ShouldOverrideURLLoading(target) {
		return
	}
	v.load(target, false, true)
}

// Paint renders the visible lines at the current zoom. The page area that
// fits the widget is laid out at unit scale, then stretched over dst.
func (v *View) Paint(dst draw.Image) error {
	if v.destroyed {
		return errDestroyed
	}
	size := image.Rect(0, 0, v.opts.Width, v.opts.Height)
	if v.scale == 1 && dst.Bounds().Size() == size.Size() {
		v.render(dst, dst.Bounds().Min, size.Size(), v.scrollY)
		return nil
	}
	page := image.Rect(0, 0, v.unzoomed(v.opts.Width), v.unzoomed(v.opts.Height))
	frame := image.NewRGBA(page)
	v.render(frame, image.Point{}, page.Size(), int(float32(v.scrollY)/v.scale))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), frame, page, xdraw.Src, nil)
	return nil
}

// unzoomed is the page extent shown across n view pixels.
func (v *View) unzoomed(n int) int {
	return max(1, int(math.Ceil(float64(n)/float64(v.scale))))
}

// render draws the page area of the given size starting scroll pixels down.
func (v *View) render(dst draw.Image, origin, size image.Point, scroll int) {
	r := image.Rectangle{Min: origin, Max: origin.Add(size)}
	draw.Draw(dst, r, image.White, image.Point{}, draw.Src)
	lh := v.opts.LineHeight
	first := scroll / lh
	d := font.Drawer{Dst: dst, Face: v.face}
	for i := first; i < len(v.doc.lines); i++ {
		top := i*lh - scroll
		if top >= size.Y {
			break
		}
		l := v.doc.lines[i]
		d.Src = image.Black
		if l.href != "" {
			d.Src = image.NewUniform(linkColor)
		}
		d.Dot = fixed.P(origin.X+4, origin.Y+top+lh-4)
		d.DrawString(l.text)
	}
}
