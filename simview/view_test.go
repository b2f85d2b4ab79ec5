// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package simview

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/webview"
)

const testWait = 5 * time.Second

// rig runs one simview widget on a live bridge. Decisions are answered with
// their defaults.
type rig struct {
	t *testing.T
	b *webview.Bridge
	v *webview.View
}

func newRig(t *testing.T, opts Options) *rig {
	t.Helper()
	cfg := offscreen.DefaultConfig()
	cfg.TickInterval = offscreen.Duration{Duration: time.Millisecond}
	b := webview.NewBridge(cfg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	if opts.Width == 0 {
		opts.Width, opts.Height = 200, 64
	}
	return &rig{t: t, b: b, v: webview.Open(b, Factory(opts))}
}

func (r *rig) answer(e offscreen.Envelope) {
	if e.IsDecision() {
		_ = e.Decision.Resolve(e.Decision.Default())
	}
}

// wait collects envelopes until one of kind arrives.
func (r *rig) wait(kind offscreen.Kind) []offscreen.Envelope {
	r.t.Helper()
	var got []offscreen.Envelope
	deadline := time.After(testWait)
	for {
		found := false
		r.b.Drain(func(e offscreen.Envelope) {
			got = append(got, e)
			r.answer(e)
			found = found || e.Kind == kind
		})
		if found {
			return got
		}
		select {
		case <-r.b.Ready():
		case <-deadline:
			r.t.Fatalf("no %s envelope", kind)
			return got
		}
	}
}

// inspect runs fn on the owner thread and returns its result.
func inspect[T any](r *rig, fn func(v *View) T) T {
	r.t.Helper()
	ch := make(chan T, 1)
	r.b.Submit(r.v.ID(), "inspect", func(s *webview.Scope) { ch <- fn(s.Widget().(*View)) })
	deadline := time.After(testWait)
	for {
		select {
		case v := <-ch:
			return v
		case <-r.b.Ready():
			r.b.Drain(r.answer)
		case <-deadline:
			r.t.Fatal("inspect timed out")
			var zero T
			return zero
		}
	}
}

// clean paints once so the next change raises a fresh invalidation.
func (r *rig) clean() {
	r.t.Helper()
	r.v.RequestPaint(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	r.wait(offscreen.KindPainted)
}

func count(envs []offscreen.Envelope, kind offscreen.Kind) int {
	n := 0
	for _, e := range envs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func payload[T any](t *testing.T, envs []offscreen.Envelope, kind offscreen.Kind) T {
	t.Helper()
	for _, e := range envs {
		if e.Kind == kind {
			return e.Payload.(T)
		}
	}
	t.Fatalf("no %s envelope", kind)
	var zero T
	return zero
}

func TestNewRejectsInvalidSize(t *testing.T) {
	for _, sz := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		if _, err := New(nil, Options{Width: sz[0], Height: sz[1]}); err == nil {
			t.Errorf("New(%dx%d) succeeded", sz[0], sz[1])
		}
	}
}

func TestPaintAfterDestroyFails(t *testing.T) {
	v, err := New(nil, Options{Width: 8, Height: 8})
	if err != nil {
		t.Fatal(err)
	}
	v.Destroy()
	if err := v.Paint(image.NewRGBA(image.Rect(0, 0, 8, 8))); !errors.Is(err, errDestroyed) {
		t.Errorf("Paint = %v, want errDestroyed", err)
	}
}

func TestPaintScalesToTarget(t *testing.T) {
	r := newRig(t, Options{Width: 40, Height: 20})
	r.v.LoadInline("<p>zoomed</p>", "text/html", "")
	dst := image.NewRGBA(image.Rect(0, 0, 80, 40))
	r.v.RequestPaint(dst)
	envs := r.wait(offscreen.KindPainted)
	if res := payload[offscreen.PaintResult](t, envs, offscreen.KindPainted); res.Err != nil {
		t.Fatal(res.Err)
	}
	if c := dst.RGBAAt(79, 39); c.R != 0xff || c.A != 0xff {
		t.Errorf("corner = %v, want opaque white", c)
	}
}

func TestLoadDataBase64(t *testing.T) {
	r := newRig(t, Options{})
	r.v.LoadInline(base64.StdEncoding.EncodeToString([]byte("<p>decoded</p>")), "text/html", "base64")
	envs := r.wait(webview.KindPageFinished)
	if u := payload[webview.PageEvent](t, envs, webview.KindPageFinished).URL; u != "data:text/html;base64," {
		t.Errorf("URL = %q", u)
	}
	if got := inspect(r, func(v *View) []string { return v.Text() }); !cmp.Equal(got, []string{"decoded"}) {
		t.Errorf("text = %q", got)
	}

	r.v.LoadInline("!!not base64!!", "text/html", "base64")
	envs = r.wait(webview.KindLoadError)
	if le := payload[webview.LoadError](t, envs, webview.KindLoadError); le.Code != webview.ErrorBadURL {
		t.Errorf("load error = %+v", le)
	}
}

func TestPlainTextDocument(t *testing.T) {
	r := newRig(t, Options{})
	r.v.LoadInline("<b>not markup</b>\nsecond", "text/plain", "")
	r.wait(webview.KindPageFinished)
	got := inspect(r, func(v *View) []string { return v.Text() })
	if diff := cmp.Diff([]string{"<b>not markup</b>", "second"}, got); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownSchemeFails(t *testing.T) {
	r := newRig(t, Options{})
	r.v.Navigate("ftp://files.test/readme")
	envs := r.wait(webview.KindPageFinished)
	if le := payload[webview.LoadError](t, envs, webview.KindLoadError); le.Code != webview.ErrorFileNotFound {
		t.Errorf("load error = %+v", le)
	}
	// Unknown http(s) pages load empty.
	r.v.Navigate("https://nowhere.test")
	envs = r.wait(webview.KindPageFinished)
	if count(envs, webview.KindLoadError) != 0 {
		t.Error("unexpected load error for an unknown https page")
	}
}

func TestScrollInvalidatesVisibleRegion(t *testing.T) {
	r := newRig(t, Options{Width: 200, Height: 64, LineHeight: 16})
	r.v.SetInputEnabled(true)
	r.v.LoadInline(strings.Repeat("<p>row</p>", 10), "text/html", "")
	r.wait(webview.KindPageFinished)
	r.clean()

	r.v.Input(offscreen.InputEvent{Kind: offscreen.Scroll, DY: -40})
	r.wait(offscreen.KindInvalidated)
	if y := inspect(r, func(v *View) int { return v.ScrollY() }); y != 40 {
		t.Errorf("scrollY = %d, want 40", y)
	}

	// Scrolling is clamped to the document end.
	r.v.Input(offscreen.InputEvent{Kind: offscreen.Scroll, DY: -1000})
	if y := inspect(r, func(v *View) int { return v.ScrollY() }); y != 160-64 {
		t.Errorf("scrollY = %d, want %d", y, 160-64)
	}
}

func TestKeyboardNavigation(t *testing.T) {
	r := newRig(t, Options{Width: 200, Height: 64, LineHeight: 16})
	r.v.SetInputEnabled(true)
	r.v.LoadInline(strings.Repeat("<p>row</p>", 20), "text/html", "")
	r.wait(webview.KindPageFinished)

	tests := []struct {
		key  int32
		want int
	}{
		{vkDown, 16},
		{vkPageDown, 16 + 48},
		{vkEnd, 320 - 64},
		{vkUp, 320 - 64 - 16},
		{vkHome, 0},
		{vkPageUp, 0},
	}
	for _, tt := range tests {
		r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: tt.key})
		if y := inspect(r, func(v *View) int { return v.ScrollY() }); y != tt.want {
			t.Errorf("after key %#x scrollY = %d, want %d", tt.key, y, tt.want)
		}
	}
}

func TestCtrlZoom(t *testing.T) {
	r := newRig(t, Options{})
	r.v.SetInputEnabled(true)

	r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: vkPlus, Mods: offscreen.ModCtrl})
	envs := r.wait(webview.KindScaleChanged)
	if diff := cmp.Diff(webview.ScaleChange{Old: 1, New: 1.25}, payload[webview.ScaleChange](t, envs, webview.KindScaleChanged)); diff != "" {
		t.Errorf("scale change mismatch (-want +got):\n%s", diff)
	}

	// Without Ctrl the key is not the widget's.
	r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: vkMinus})
	r.wait(webview.KindUnhandledKeyEvent)

	for i := 0; i < 20; i++ {
		r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: vkMinus, Mods: offscreen.ModCtrl})
	}
	if s := inspect(r, func(v *View) float32 { return v.Scale() }); s != 0.25 {
		t.Errorf("scale = %v, want the 0.25 floor", s)
	}
}

// inkBounds returns the box around the dark pixels of img.
func inkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).R < 0x80 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestZoomAffectsRendering(t *testing.T) {
	r := newRig(t, Options{Width: 120, Height: 64, LineHeight: 16})
	r.v.SetInputEnabled(true)
	r.v.LoadInline(strings.Repeat("<p>row</p>", 4), "text/html", "")
	r.wait(webview.KindPageFinished)

	paint := func() image.Rectangle {
		t.Helper()
		dst := image.NewRGBA(image.Rect(0, 0, 120, 64))
		r.v.RequestPaint(dst)
		envs := r.wait(offscreen.KindPainted)
		if res := payload[offscreen.PaintResult](t, envs, offscreen.KindPainted); res.Err != nil {
			t.Fatal(res.Err)
		}
		return inkBounds(dst)
	}
	before := paint()
	if before.Empty() {
		t.Fatal("nothing drawn at unit scale")
	}

	r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: vkPlus, Mods: offscreen.ModCtrl})
	r.wait(webview.KindScaleChanged)
	if h := inspect(r, func(v *View) int { return v.ContentHeight() }); h != 80 {
		t.Errorf("content height = %d, want 80", h)
	}
	after := paint()
	if after.Dx() <= before.Dx() {
		t.Errorf("ink width %d after zoom in, want more than %d", after.Dx(), before.Dx())
	}

	// The scroll range grows with the zoomed content.
	r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: vkDown})
	if y := inspect(r, func(v *View) int { return v.ScrollY() }); y != 16 {
		t.Errorf("scrollY = %d, want 16", y)
	}
}

func TestReloadAndFormResubmission(t *testing.T) {
	pages := map[string]Page{
		"https://plain.test": {HTML: "<p>plain</p>"},
		"https://form.test":  {HTML: "<p>posted</p>", FormPost: true},
	}
	r := newRig(t, Options{Pages: pages})
	r.v.SetInputEnabled(true)

	r.v.Navigate("https://plain.test")
	r.wait(webview.KindPageFinished)
	r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: vkF5})
	envs := r.wait(webview.KindPageFinished)
	if h := payload[webview.HistoryUpdate](t, envs, webview.KindVisitedHistoryUpdated); !h.IsReload {
		t.Errorf("history update = %+v, want a reload", h)
	}

	r.v.Navigate("https://form.test")
	r.wait(webview.KindPageFinished)
	r.v.Input(offscreen.InputEvent{Kind: offscreen.KeyDown, Key: vkF5})
	envs = r.wait(webview.KindPageFinished)
	if count(envs, webview.KindFormResubmission) != 1 {
		t.Fatalf("want one form-resubmission decision, got %d", count(envs, webview.KindFormResubmission))
	}
	if count(envs, webview.KindVisitedHistoryUpdated) != 0 {
		t.Error("declined resubmission still committed the page")
	}
}

func TestVisibilityAndTimers(t *testing.T) {
	r := newRig(t, Options{})
	r.v.SetVisible(true)
	r.v.SetDebuggingEnabled(true)
	type state struct{ visible, running, debugging bool }
	got := inspect(r, func(v *View) state { return state{v.Visible(), v.TimersRunning(), v.Debugging()} })
	if got != (state{true, true, true}) {
		t.Errorf("state = %+v", got)
	}

	r.v.SetVisible(false)
	frames := inspect(r, func(v *View) int { return v.Frames() })
	time.Sleep(20 * time.Millisecond)
	if after := inspect(r, func(v *View) int { return v.Frames() }); after != frames {
		t.Errorf("frames advanced from %d to %d while paused", frames, after)
	}

	r.v.SetVisible(true)
	deadline := time.Now().Add(testWait)
	for inspect(r, func(v *View) int { return v.Frames() }) == frames {
		if time.Now().After(deadline) {
			t.Fatal("timers never resumed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHistoryTraversalReplaysInlineContent(t *testing.T) {
	r := newRig(t, Options{})
	r.v.LoadInline("<p>first</p>", "text/html", "")
	r.v.LoadInline("<p>second</p>", "text/html", "")
	r.v.GoBack()
	r.wait(webview.KindPageFinished)
	if got := inspect(r, func(v *View) []string { return v.Text() }); !cmp.Equal(got, []string{"first"}) {
		t.Errorf("after back text = %q", got)
	}
	r.v.GoForward()
	if got := inspect(r, func(v *View) []string { return v.Text() }); !cmp.Equal(got, []string{"second"}) {
		t.Errorf("after forward text = %q", got)
	}
	if inspect(r, func(v *View) bool { return v.CanGoForward() }) {
		t.Error("forward list not exhausted")
	}
}
