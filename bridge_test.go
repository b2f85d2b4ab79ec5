// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

const testWait = 5 * time.Second

// fakeWidget records what the bridge does to it. Owner thread only.
type fakeWidget struct {
	h         *Hooks
	log       []string
	visible   bool
	timers    bool
	focusable bool
	focused   bool
	destroyed bool
	viewport  image.Rectangle
	paintErr  error
	paints    int
	inputs    []InputEvent
	ticks     int
}

func (w *fakeWidget) Paint(dst draw.Image) error {
	if w.paintErr != nil {
		return w.paintErr
	}
	w.paints++
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{R: 0xff, A: 0xff}), image.Point{}, draw.Src)
	return nil
}

func (w *fakeWidget) Viewport() image.Rectangle { return w.viewport }
func (w *fakeWidget) SetVisible(v bool)         { w.visible = v }
func (w *fakeWidget) PauseTimers()              { w.timers = false }
func (w *fakeWidget) ResumeTimers()             { w.timers = true }
func (w *fakeWidget) Focusable() bool           { return w.focusable }
func (w *fakeWidget) HasFocus() bool            { return w.focused }
func (w *fakeWidget) Destroy()                  { w.destroyed = true }
func (w *fakeWidget) Tick()                     { w.ticks++ }

func (w *fakeWidget) RequestFocus() bool {
	w.focused = true
	w.log = append(w.log, "focus")
	return true
}

func (w *fakeWidget) HandleInput(ev InputEvent) bool {
	w.inputs = append(w.inputs, ev)
	return true
}

type fakeBridge = Bridge[*fakeWidget]
type fakeScope = Scope[*fakeWidget]

func fakeFactory(mut func(w *fakeWidget)) Factory[*fakeWidget] {
	return func(h *Hooks) (*fakeWidget, error) {
		w := &fakeWidget{h: h, viewport: image.Rect(0, 0, 100, 100)}
		if mut != nil {
			mut(w)
		}
		return w, nil
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TickInterval = Duration{time.Millisecond}
	return cfg
}

// startBridge runs a bridge until the test ends.
func startBridge(t *testing.T, cfg Config, tk Toolkit) *fakeBridge {
	t.Helper()
	b := New[*fakeWidget](cfg, tk)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(testWait):
			t.Error("owner loop did not stop")
		}
	})
	return b
}

// query runs fn on the owner thread and returns its result.
func query[T any](t *testing.T, b *fakeBridge, id ID, fn func(s *fakeScope) T) T {
	t.Helper()
	ch := make(chan T, 1)
	b.Submit(id, "query", func(s *fakeScope) { ch <- fn(s) })
	select {
	case v := <-ch:
		return v
	case <-time.After(testWait):
		t.Fatal("query timed out")
	}
	var zero T
	return zero
}

// collect drains envelopes until done reports true for what was gathered.
func collect(t *testing.T, b *fakeBridge, done func([]Envelope) bool) []Envelope {
	t.Helper()
	var got []Envelope
	deadline := time.After(testWait)
	for {
		b.Drain(func(e Envelope) { got = append(got, e) })
		if done(got) {
			return got
		}
		select {
		case <-b.Ready():
		case <-deadline:
			t.Fatalf("timed out; collected %v", kinds(got))
			return got
		}
	}
}

func has(kind Kind) func([]Envelope) bool {
	return func(envs []Envelope) bool {
		for _, e := range envs {
			if e.Kind == kind {
				return true
			}
		}
		return false
	}
}

func kinds(envs []Envelope) []string {
	out := make([]string, len(envs))
	for i, e := range envs {
		out[i] = string(e.Kind)
		if s, ok := e.Payload.(State); ok {
			out[i] += ":" + s.String()
		}
	}
	return out
}

func only(envs []Envelope, kind Kind) []Envelope {
	var out []Envelope
	for _, e := range envs {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// create makes an instance and waits until it is attached.
func create(t *testing.T, b *fakeBridge, mut func(w *fakeWidget)) ID {
	t.Helper()
	id := b.Create(fakeFactory(mut))
	query(t, b, id, func(*fakeScope) struct{} { return struct{}{} })
	return id
}

func TestCreateReportsAttached(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := b.Create(fakeFactory(nil))
	envs := collect(t, b, has(KindLifecycle))
	want := []string{"lifecycle:attached"}
	if diff := cmp.Diff(want, kinds(envs)); diff != "" {
		t.Errorf("envelopes mismatch (-want +got):\n%s", diff)
	}
	if envs[0].Instance != id {
		t.Errorf("envelope instance = %s, want %s", envs[0].Instance, id)
	}
	if st := query(t, b, id, func(s *fakeScope) State { return s.State() }); st != Attached {
		t.Errorf("state = %s, want attached", st)
	}
}

func TestCreateFailure(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	boom := errors.New("boom")
	id := b.Create(func(*Hooks) (*fakeWidget, error) { return nil, boom })
	envs := collect(t, b, has(KindCreateFailed))
	e := envs[len(envs)-1]
	if e.Instance != id || !errors.Is(e.Payload.(error), boom) {
		t.Errorf("create-failed envelope = %+v", e)
	}

	ran := make(chan struct{}, 1)
	b.Submit(id, "after-failure", func(*fakeScope) { ran <- struct{}{} })
	other := create(t, b, nil)
	query(t, b, other, func(*fakeScope) bool { return true })
	select {
	case <-ran:
		t.Error("action ran for an instance that failed to build")
	default:
	}
}

func TestActionsRunInSubmissionOrder(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)

	var want []string
	for i := 0; i < 100; i++ {
		s := fmt.Sprint(i)
		want = append(want, s)
		b.Submit(id, "append", func(sc *fakeScope) {
			sc.Widget().log = append(sc.Widget().log, s)
		})
	}
	got := query(t, b, id, func(s *fakeScope) []string { return append([]string(nil), s.Widget().log...) })
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentSubmittersKeepTheirOrder(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)

	const producers, perProducer = 8, 200
	type item struct{ p, i int }
	var seen []item

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				i := i
				b.Submit(id, "append", func(*fakeScope) { seen = append(seen, item{p, i}) })
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	got := query(t, b, id, func(*fakeScope) []item { return append([]item(nil), seen...) })
	if len(got) != producers*perProducer {
		t.Fatalf("ran %d actions, want %d", len(got), producers*perProducer)
	}
	next := make([]int, producers)
	for _, it := range got {
		if it.i != next[it.p] {
			t.Fatalf("producer %d: action %d ran before %d", it.p, it.i, next[it.p])
		}
		next[it.p]++
	}
}

func TestStaleInstanceIsDropped(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)
	hooks := query(t, b, id, func(s *fakeScope) *Hooks { return s.Widget().h })

	var ran atomic.Bool
	b.Destroy(id)
	b.Submit(id, "late", func(*fakeScope) { ran.Store(true) })
	b.Input(id, InputEvent{Kind: PointerDown})
	b.SetVisible(id, true)

	other := create(t, b, func(w *fakeWidget) { w.log = []string{"other"} })
	// Hooks kept by the destroyed widget are inert too.
	query(t, b, other, func(*fakeScope) bool {
		hooks.Notify("late-callback", nil)
		hooks.Invalidate()
		return true
	})
	envs := collect(t, b, func(envs []Envelope) bool { return len(only(envs, KindLifecycle)) >= 3 })
	if ran.Load() {
		t.Error("action for destroyed instance ran")
	}
	for _, e := range envs {
		if e.Instance == id && e.Kind != KindLifecycle {
			t.Errorf("unexpected envelope %s for destroyed instance", e.Kind)
		}
	}
	if id == other {
		t.Error("instance ID reused")
	}
}

func TestInvalidationCoalesces(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)
	b.Drain(func(Envelope) {})

	b.Submit(id, "invalidate", func(s *fakeScope) {
		h := s.Widget().h
		h.Invalidate()
		h.Invalidate()
		h.InvalidateRect(image.Rect(0, 0, 10, 10))
	})
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b.RequestPaint(id, dst)
	envs := collect(t, b, has(KindPainted))
	if diff := cmp.Diff([]string{"invalidated", "painted"}, kinds(envs)); diff != "" {
		t.Fatalf("envelopes mismatch (-want +got):\n%s", diff)
	}
	r := envs[1].Payload.(PaintResult)
	if r.Err != nil || r.Surface != draw.Image(dst) {
		t.Errorf("paint result = %+v", r)
	}
	if got := dst.RGBAAt(1, 1); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("pixel = %v, want red", got)
	}

	// Painting cleared the token, so the next change is reported again.
	b.Submit(id, "invalidate", func(s *fakeScope) { s.Widget().h.Invalidate() })
	envs = collect(t, b, has(KindInvalidated))
	if len(only(envs, KindInvalidated)) != 1 {
		t.Errorf("envelopes = %v, want one invalidated", kinds(envs))
	}
}

func TestInvalidateRectOutsideViewport(t *testing.T) {
	tests := []struct {
		name     string
		viewport image.Rectangle
		rect     image.Rectangle
		want     bool
	}{
		{"inside", image.Rect(0, 0, 100, 100), image.Rect(10, 10, 20, 20), true},
		{"overlapping edge", image.Rect(0, 0, 100, 100), image.Rect(90, 90, 120, 120), true},
		{"right of viewport", image.Rect(0, 0, 100, 100), image.Rect(100, 0, 120, 10), false},
		{"below viewport", image.Rect(0, 0, 100, 100), image.Rect(0, 150, 10, 160), false},
		{"above scrolled viewport", image.Rect(0, 200, 100, 300), image.Rect(0, 0, 100, 100), false},
		{"empty viewport accepts all", image.Rectangle{}, image.Rect(500, 500, 510, 510), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := startBridge(t, testConfig(), nil)
			id := create(t, b, func(w *fakeWidget) { w.viewport = tt.viewport })
			b.Drain(func(Envelope) {})
			got := query(t, b, id, func(s *fakeScope) bool {
				s.Widget().h.InvalidateRect(tt.rect)
				return s.inst.st.dirty
			})
			if got != tt.want {
				t.Errorf("dirty = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestLayoutAlwaysInvalidates(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, func(w *fakeWidget) { w.viewport = image.Rect(0, 0, 1, 1) })
	b.Submit(id, "layout", func(s *fakeScope) { s.Widget().h.RequestLayout() })
	collect(t, b, has(KindInvalidated))
}

func TestPaintFailureKeepsToken(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	boom := errors.New("no surface")
	id := create(t, b, func(w *fakeWidget) { w.paintErr = boom })
	b.Submit(id, "invalidate", func(s *fakeScope) { s.Widget().h.Invalidate() })
	b.RequestPaint(id, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	envs := collect(t, b, has(KindPainted))
	r := only(envs, KindPainted)[0].Payload.(PaintResult)
	if !errors.Is(r.Err, boom) {
		t.Errorf("paint error = %v, want %v", r.Err, boom)
	}
	if dirty := query(t, b, id, func(s *fakeScope) bool { return s.inst.st.dirty }); !dirty {
		t.Error("failed paint cleared the invalidation token")
	}

	b.RequestPaint(id, nil)
	envs = collect(t, b, has(KindPainted))
	if r := only(envs, KindPainted)[0].Payload.(PaintResult); r.Err == nil {
		t.Error("nil surface painted without error")
	}
}

func TestFailedPaintReannounces(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, func(w *fakeWidget) { w.paintErr = errors.New("device lost") })
	b.Drain(func(Envelope) {})

	b.Submit(id, "invalidate", func(s *fakeScope) { s.Widget().h.Invalidate() })
	collect(t, b, has(KindInvalidated))
	b.RequestPaint(id, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	collect(t, b, has(KindPainted))

	// The host saw the failure and waits for the next announcement. Later
	// invalidations must produce one, exactly once.
	b.Submit(id, "recover", func(s *fakeScope) {
		w := s.Widget()
		w.paintErr = nil
		for i := 0; i < 5; i++ {
			w.h.Invalidate()
		}
	})
	envs := collect(t, b, has(KindInvalidated))
	query(t, b, id, func(s *fakeScope) bool { return true })
	b.Drain(func(e Envelope) { envs = append(envs, e) })
	if n := len(only(envs, KindInvalidated)); n != 1 {
		t.Errorf("got %d invalidated envelopes, want 1: %v", n, kinds(envs))
	}

	b.RequestPaint(id, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	envs = collect(t, b, has(KindPainted))
	if r := only(envs, KindPainted)[0].Payload.(PaintResult); r.Err != nil {
		t.Errorf("paint after recovery = %v", r.Err)
	}
	if dirty := query(t, b, id, func(s *fakeScope) bool { return s.inst.st.dirty }); dirty {
		t.Error("successful paint kept the invalidation token")
	}
}

func TestInputDisabledByDefault(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, func(w *fakeWidget) { w.focusable = true })

	b.Input(id, InputEvent{Kind: PointerDown, X: 1, Y: 2, Button: ButtonLeft})
	if n := query(t, b, id, func(s *fakeScope) int { return len(s.Widget().inputs) }); n != 0 {
		t.Fatalf("widget received %d events before input was granted", n)
	}

	b.SetInputEnabled(id, true)
	b.Input(id, InputEvent{Kind: PointerMove, X: 5, Y: 5})
	b.Input(id, InputEvent{Kind: PointerDown, X: 1, Y: 2, Button: ButtonLeft})
	b.Input(id, InputEvent{Kind: PointerUp, X: 1, Y: 2, Button: ButtonLeft})
	type result struct {
		Log    []string
		Inputs []InputKind
	}
	got := query(t, b, id, func(s *fakeScope) result {
		var r result
		r.Log = append(r.Log, s.Widget().log...)
		for _, ev := range s.Widget().inputs {
			r.Inputs = append(r.Inputs, ev.Kind)
		}
		return r
	})
	want := result{Log: []string{"focus"}, Inputs: []InputKind{PointerMove, PointerDown, PointerUp}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}

	b.SetInputEnabled(id, false)
	b.Input(id, InputEvent{Kind: KeyDown, Key: 0x41})
	if n := query(t, b, id, func(s *fakeScope) int { return len(s.Widget().inputs) }); n != 3 {
		t.Errorf("widget received input after it was revoked: %d events", n)
	}
}

func TestInputDoesNotFocusUnfocusableWidget(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)
	b.SetInputEnabled(id, true)
	b.Input(id, InputEvent{Kind: PointerDown})
	if log := query(t, b, id, func(s *fakeScope) []string { return s.Widget().log }); len(log) != 0 {
		t.Errorf("log = %v, want no focus request", log)
	}
}

func TestVisibilityTransitions(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)

	b.SetVisible(id, true)
	b.SetVisible(id, true)
	b.SetVisible(id, false)
	b.SetVisible(id, false)
	b.SetVisible(id, true)
	b.Destroy(id)
	envs := collect(t, b, func(envs []Envelope) bool { return len(only(envs, KindLifecycle)) >= 5 })
	want := []string{"lifecycle:attached", "lifecycle:active", "lifecycle:paused", "lifecycle:active", "lifecycle:destroyed"}
	if diff := cmp.Diff(want, kinds(only(envs, KindLifecycle))); diff != "" {
		t.Errorf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibilityDrivesTimers(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)
	type state struct{ Visible, Timers bool }

	b.SetVisible(id, true)
	if got := query(t, b, id, func(s *fakeScope) state { return state{s.Widget().visible, s.Widget().timers} }); got != (state{true, true}) {
		t.Errorf("after show: %+v", got)
	}
	b.SetVisible(id, false)
	if got := query(t, b, id, func(s *fakeScope) state { return state{s.Widget().visible, s.Widget().timers} }); got != (state{false, false}) {
		t.Errorf("after hide: %+v", got)
	}
}

func TestNotifyKeepsOrderWithLifecycle(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)
	b.Submit(id, "notify", func(s *fakeScope) {
		s.Notify("first", 1)
		s.Widget().h.Notify("second", 2)
	})
	b.SetVisible(id, true)
	b.Submit(id, "notify", func(s *fakeScope) { s.Notify("third", 3) })
	envs := collect(t, b, has("third"))
	want := []string{"lifecycle:attached", "first", "second", "lifecycle:active", "third"}
	if diff := cmp.Diff(want, kinds(envs)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

type countingToolkit struct{ ticks atomic.Int32 }

func (c *countingToolkit) Tick() { c.ticks.Add(1) }

func TestTickPumpsToolkitAndWidgets(t *testing.T) {
	tk := &countingToolkit{}
	b := startBridge(t, testConfig(), tk)
	id := create(t, b, nil)
	deadline := time.Now().Add(testWait)
	for query(t, b, id, func(s *fakeScope) int { return s.Widget().ticks }) < 3 {
		if time.Now().After(deadline) {
			t.Fatal("widget was never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if tk.ticks.Load() == 0 {
		t.Error("toolkit was never ticked")
	}
}

func TestRunTwiceAndAfterClose(t *testing.T) {
	b := New[*fakeWidget](testConfig(), nil)
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()
	id := b.Create(fakeFactory(nil))
	ch := make(chan struct{})
	b.Submit(id, "sync", func(*fakeScope) { close(ch) })
	<-ch

	if err := b.Run(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run = %v, want ErrRunning", err)
	}
	b.Close()
	if err := <-done; err != nil {
		t.Errorf("Run after Close = %v, want nil", err)
	}
	if err := b.Run(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Run on closed bridge = %v, want ErrClosed", err)
	}
}

func TestCloseDestroysLiveInstances(t *testing.T) {
	b := New[*fakeWidget](testConfig(), nil)
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	var widgets []*fakeWidget
	ids := []ID{
		b.Create(func(h *Hooks) (*fakeWidget, error) {
			w := &fakeWidget{h: h}
			widgets = append(widgets, w)
			return w, nil
		}),
		b.Create(func(h *Hooks) (*fakeWidget, error) {
			w := &fakeWidget{h: h}
			widgets = append(widgets, w)
			return w, nil
		}),
	}
	synced := make(chan struct{})
	b.Submit(ids[1], "sync", func(*fakeScope) { close(synced) })
	<-synced
	b.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run = %v", err)
	}
	for i, w := range widgets {
		if !w.destroyed {
			t.Errorf("instance %s not destroyed on close", ids[i])
		}
	}
	var destroyed int
	b.Drain(func(e Envelope) {
		if e.Kind == KindLifecycle && e.Payload == Destroyed {
			destroyed++
		}
	})
	if destroyed != 2 {
		t.Errorf("destroyed notifications = %d, want 2", destroyed)
	}
	// Submissions after close are dropped without blocking.
	b.Submit(ids[0], "late", func(*fakeScope) { t.Error("action ran after close") })
}

func TestDrainSurvivesPanickingHandler(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)
	b.Submit(id, "notify", func(s *fakeScope) {
		s.Notify("a", nil)
		s.Notify("b", nil)
	})
	collect(t, b, func(envs []Envelope) bool { return len(envs) > 0 && envs[len(envs)-1].Kind != KindLifecycle })

	// Re-submit and drain through a handler that panics on the first
	// envelope.
	b.Submit(id, "notify", func(s *fakeScope) {
		s.Notify("a", nil)
		s.Notify("b", nil)
	})
	var got []Kind
	deadline := time.After(testWait)
	for len(got) < 1 {
		b.Drain(func(e Envelope) {
			if e.Kind == "a" {
				panic("handler bug")
			}
			got = append(got, e.Kind)
		})
		if len(got) > 0 {
			break
		}
		select {
		case <-b.Ready():
		case <-deadline:
			t.Fatal("timed out")
		}
	}
	if diff := cmp.Diff([]Kind{"b"}, got); diff != "" {
		t.Errorf("delivered mismatch (-want +got):\n%s", diff)
	}
}

func TestIDString(t *testing.T) {
	if got := ID(42).String(); got != "instance#42" {
		t.Errorf("String() = %q", got)
	}
}

func TestScopeUnusableAfterAction(t *testing.T) {
	b := startBridge(t, testConfig(), nil)
	id := create(t, b, nil)
	s := query(t, b, id, func(s *fakeScope) *fakeScope { return s })
	// A second round trip guarantees the first action has returned.
	query(t, b, id, func(*fakeScope) bool { return true })
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrWrongThread) {
			t.Errorf("recovered %v, want an ErrWrongThread panic", err)
		}
	}()
	s.Widget()
}
