// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"image"
	"image/draw"
	"io"
	"net/url"
	"strings"
	"unsafe"

	xdraw "golang.org/x/image/draw"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/webview"
)

const (
	// readyFrames is how many ticks a new page gets before its DOM is
	// treated as ready and pageScript is injected.
	readyFrames = 30
	// dirtyFrames is how many ticks after the last activity the surface
	// keeps being invalidated. The bridge reports no dirty regions, so
	// animations and transitions are caught this way.
	dirtyFrames = 120
)

var errNoPixels = errors.New("ultralight: view has no pixels")

// entry is one history item. Inline entries keep their markup.
type entry struct {
	url    string
	inline bool
	html   string
}

// View is an Ultralight view driven by the bridge. It satisfies
// webview.Widget and offscreen.Ticker. All methods run on the owner thread.
type View struct {
	tk     *Toolkit
	c      *webview.Client
	viewID int32
	width  int
	height int
	frame  *image.RGBA

	url       string
	reload    bool
	loading   bool
	loadFrame int
	injected  bool
	history   []entry
	pos       int

	contentHeight int
	scrollY       int
	dirty         int

	visible   bool
	running   bool
	focused   bool
	debugging bool
}

func newView(tk *Toolkit, c *webview.Client, viewID int32, width, height int) *View {
	return &View{
		tk:      tk,
		c:       c,
		viewID:  viewID,
		width:   width,
		height:  height,
		pos:     -1,
		running: true,
		dirty:   dirtyFrames,
	}
}

// Tick polls page messages and drives load completion. It runs after the
// toolkit tick on every owner loop pump.
func (v *View) Tick() {
	if !v.running {
		return
	}
	for {
		msg, ok := pollMessage(v.viewID)
		if !ok {
			break
		}
		v.handleMessage(msg)
	}
	for {
		msg, ok := pollConsoleMessage(v.viewID)
		if !ok {
			break
		}
		if v.debugging {
			offscreen.Logger().Debug("ultralight: console", "instance", v.c.ID(), "message", msg)
		}
	}

	if v.loading {
		v.loadFrame++
		if v.loadFrame >= readyFrames {
			v.finishLoad()
		}
	}
	if v.dirty > 0 && v.visible {
		v.dirty--
		v.c.Invalidate()
	}
}

func (v *View) poke() { v.dirty = dirtyFrames }

func (v *View) handleMessage(msg string) {
	v.poke()
	ctl, ok := parseControl(msg)
	if !ok {
		v.c.OnScriptMessage(msg)
		return
	}
	switch ctl.kind {
	case controlReady:
		if ctl.url != "" {
			v.url = ctl.url
		}
	case controlHeight:
		if ctl.n != v.contentHeight {
			v.contentHeight = ctl.n
			v.c.RequestLayout()
		}
	case controlScroll:
		v.scrollY = ctl.n
	case controlNavigate:
		if v.c.ShouldOverrideURLLoading(ctl.url) {
			return
		}
		v.LoadURL(ctl.url, nil)
	}
}

func (v *View) startLoad(u string, reload bool) {
	v.url = u
	v.reload = reload
	v.loading = true
	v.loadFrame = 0
	v.injected = false
	v.contentHeight = 0
	v.scrollY = 0
	v.poke()
	v.c.OnPageStarted(u)
	v.c.OnProgressChanged(10)
}

// finishLoad injects pageScript and reports the load as complete. The
// bridge exposes no load events, so the page is considered loaded after
// readyFrames ticks.
func (v *View) finishLoad() {
	v.loading = false
	if !v.injected {
		ulViewEvalJS(v.viewID, pageScript)
		v.injected = true
	}
	v.c.OnLoadResource(v.url)
	v.c.OnProgressChanged(100)
	v.c.DoUpdateVisitedHistory(v.url, v.reload)
	v.c.OnPageFinished(v.url)
}

func (v *View) LoadURL(rawURL string, headers map[string]string) {
	if u, err := url.Parse(rawURL); err != nil || u.Scheme == "" {
		v.c.OnReceivedError(webview.ErrorBadURL, "net::ERR_INVALID_URL", rawURL)
		return
	}
	if len(headers) > 0 {
		// ul_view_load_url takes no request headers.
		offscreen.Logger().Debug("ultralight: extra headers ignored", "instance", v.c.ID(), "count", len(headers))
	}
	v.push(entry{url: rawURL})
	v.navigate(rawURL, false)
}

func (v *View) navigate(rawURL string, reload bool) {
	v.startLoad(rawURL, reload)
	if r := v.c.ShouldInterceptRequest(rawURL); r != nil {
		body, err := readResponse(r)
		if err != nil {
			v.loading = false
			v.c.OnReceivedError(webview.ErrorUnknown, err.Error(), rawURL)
			v.c.OnPageFinished(rawURL)
			return
		}
		ulViewLoadHTML(v.viewID, toHTML(body, r.MIMEType))
		return
	}
	ulViewLoadURL(v.viewID, rawURL)
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

// toHTML wraps non-HTML content so the view can display it.
func toHTML(body, mimeType string) string {
	if mimeType == "" || strings.HasPrefix(mimeType, "text/html") {
		return body
	}
	return "<pre>" + html.EscapeString(body) + "</pre>"
}

func (v *View) LoadData(data, mimeType, encoding string) {
	u := "data:" + mimeType
	if encoding != "" {
		u += ";" + encoding
	}
	v.loadInline(u+",", "", data, mimeType, encoding, u+",")
}

func (v *View) LoadDataWithBaseURL(baseURL, data, mimeType, encoding, historyURL string) {
	if baseURL == "" {
		baseURL = "about:blank"
	}
	if historyURL == "" {
		historyURL = "about:blank"
	}
	v.loadInline(baseURL, baseURL, data, mimeType, encoding, historyURL)
}

func (v *View) loadInline(docURL, baseURL, data, mimeType, encoding, historyURL string) {
	if strings.EqualFold(encoding, "base64") {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			v.c.OnReceivedError(webview.ErrorBadURL, "net::ERR_INVALID_URL", docURL)
			return
		}
		data = string(b)
	}
	markup := toHTML(data, mimeType)
	if baseURL != "" && baseURL != "about:blank" {
		markup = `<base href="` + html.EscapeString(baseURL) + `">` + markup
	}
	v.push(entry{url: historyURL, inline: true, html: markup})
	v.startLoad(historyURL, false)
	ulViewLoadHTML(v.viewID, markup)
}

func (v *View) push(e entry) {
	v.history = append(v.history[:v.pos+1], e)
	v.pos = len(v.history) - 1
}

func (v *View) ContentHeight() int {
	if v.contentHeight > 0 {
		return v.contentHeight
	}
	return v.height
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
	e := v.history[v.pos]
	if e.inline {
		v.startLoad(e.url, false)
		ulViewLoadHTML(v.viewID, e.html)
		return
	}
	v.navigate(e.url, false)
}

func (v *View) SetDebuggingEnabled(enabled bool) { v.debugging = enabled }

// EvalScript runs JavaScript in the page. Fire-and-forget (no return value).
func (v *View) EvalScript(js string) {
	v.poke()
	ulViewEvalJS(v.viewID, js)
}

func (v *View) Viewport() image.Rectangle {
	return image.Rect(0, v.scrollY, v.width, v.scrollY+v.height)
}

func (v *View) SetVisible(visible bool) {
	v.visible = visible
	if visible {
		v.poke()
	}
}

func (v *View) PauseTimers()  { v.running = false }
func (v *View) ResumeTimers() { v.running = true }

func (v *View) Focusable() bool { return true }
func (v *View) HasFocus() bool  { return v.focused }

func (v *View) RequestFocus() bool {
	v.focused = true
	return true
}

func (v *View) HandleInput(ev offscreen.InputEvent) bool {
	n, ok := toNative(ev)
	if !ok {
		return false
	}
	if n.kind == nativeKey && ev.Kind != offscreen.KeyChar && v.c.ShouldOverrideKeyEvent(ev) {
		return false
	}
	v.poke()
	fire(v.viewID, n)
	return true
}

// Paint copies the view's bitmap into dst, scaling when the sizes differ.
func (v *View) Paint(dst draw.Image) error {
	ptr := ulViewGetPixels(v.viewID)
	if ptr == 0 {
		return errNoPixels
	}
	defer ulViewUnlockPixels(v.viewID)

	w := int(ulViewGetWidth(v.viewID))
	h := int(ulViewGetHeight(v.viewID))
	rowBytes := int(ulViewGetRowBytes(v.viewID))
	if w == 0 || h == 0 {
		return errNoPixels
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), rowBytes*h)

	if rgba, ok := dst.(*image.RGBA); ok && rgba.Rect.Dx() == w && rgba.Rect.Dy() == h {
		bgraToRGBA(rgba.Pix, rgba.Stride, src, rowBytes, w, h)
		return nil
	}
	if v.frame == nil || v.frame.Rect.Dx() != w || v.frame.Rect.Dy() != h {
		v.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	bgraToRGBA(v.frame.Pix, v.frame.Stride, src, rowBytes, w, h)
	if dst.Bounds().Size() == v.frame.Rect.Size() {
		draw.Draw(dst, dst.Bounds(), v.frame, image.Point{}, draw.Src)
		return nil
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), v.frame, v.frame.Rect, xdraw.Src, nil)
	return nil
}

func (v *View) Destroy() {
	ulDestroyView(v.viewID)
	v.history = nil
	v.tk.release()
}
