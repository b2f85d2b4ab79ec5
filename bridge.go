// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// core is the part of the bridge that does not depend on the widget type.
// Hooks point at it.
type core struct {
	cfg Config
	out *outbox

	running  atomic.Bool
	ownerTID atomic.Uint64

	stop     chan struct{}
	stopOnce sync.Once

	// staged holds envelopes produced by the current owner loop step. They
	// are published when the step ends, so the control side never sees a
	// callback before the action that caused it has finished.
	staged []Envelope
}

func (c *core) assertOwner(op string) {
	if !c.running.Load() {
		panic(fmt.Errorf("%w: %s called while the owner loop is not running", ErrWrongThread, op))
	}
	want := c.ownerTID.Load()
	if want == 0 {
		return
	}
	if got := threadID(); got != want {
		panic(fmt.Errorf("%w: %s called on thread %d, owner is %d", ErrWrongThread, op, got, want))
	}
}

func (c *core) stage(e Envelope) {
	c.staged = append(c.staged, e)
}

func (c *core) flush() {
	if len(c.staged) == 0 {
		return
	}
	c.out.publish(c.staged...)
	clear(c.staged)
	c.staged = c.staged[:0]
}

// instanceState is the per-instance bookkeeping. Owner thread only.
type instanceState struct {
	id           ID
	state        State
	dirty        bool
	announced    bool // KindInvalidated sent since the last paint attempt
	acceptsInput bool
	destroyed    bool
	viewport     func() image.Rectangle
}

type instance[W Surrogate] struct {
	st *instanceState
	w  W
}

type pending[W Surrogate] struct {
	id     ID
	name   string
	act    Action[W]
	create Factory[W]
}

// Bridge drives widgets of type W on a single owner thread on behalf of a
// control thread. Control-side methods (Create, Submit, SetVisible, Input,
// RequestPaint, Destroy, Drain, Close) are safe for concurrent use and never
// block. Run is the owner loop.
type Bridge[W Surrogate] struct {
	core

	toolkit Toolkit
	actions *fifo[pending[W]]
	nextID  atomic.Uint64

	// Owner thread only.
	instances map[ID]*instance[W]
	live      []*instance[W]
}

// New returns a bridge for widgets of type W. tk may be nil.
func New[W Surrogate](cfg Config, tk Toolkit) *Bridge[W] {
	return &Bridge[W]{
		core: core{
			cfg:  cfg,
			out:  newOutbox(cfg.EventBacklog),
			stop: make(chan struct{}),
		},
		toolkit:   tk,
		actions:   newFIFO[pending[W]](),
		instances: make(map[ID]*instance[W]),
	}
}

// Run is the owner loop. It locks the calling goroutine to its OS thread,
// executes queued actions in submission order and pumps the toolkit every
// TickInterval. It returns when ctx is done or Close is called; live
// instances are destroyed on the way out.
func (b *Bridge[W]) Run(ctx context.Context) error {
	select {
	case <-b.stop:
		return ErrClosed
	default:
	}
	if !b.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	b.ownerTID.Store(threadID())
	defer func() {
		b.ownerTID.Store(0)
		b.running.Store(false)
	}()

	release := context.AfterFunc(ctx, b.Close)
	defer release()

	var tick <-chan time.Time
	if d := b.cfg.TickInterval.Duration; d > 0 {
		t := time.NewTicker(d)
		defer t.Stop()
		tick = t.C
	}

	Logger().Info("owner loop started", "tick", b.cfg.TickInterval, "decision_timeout", b.cfg.DecisionTimeout)
	for {
		select {
		case <-b.stop:
			b.shutdown()
			if err := ctx.Err(); err != nil {
				return err
			}
			return nil
		case <-b.actions.ready:
			b.runPending()
		case <-tick:
			b.tick()
		}
	}
}

// Close stops the owner loop. Outstanding decisions get their default
// answers; actions already queued still run; later submissions are dropped.
func (b *Bridge[W]) Close() {
	b.stopOnce.Do(func() {
		close(b.stop)
		b.actions.close()
		b.out.expireAll()
	})
}

func (b *Bridge[W]) shutdown() {
	b.runPending()
	for _, inst := range slices.Clone(b.live) {
		b.destroy(inst)
	}
	b.flush()
	Logger().Info("owner loop stopped")
}

func (b *Bridge[W]) runPending() {
	for _, p := range b.actions.take() {
		b.runOne(p)
		b.flush()
	}
}

func (b *Bridge[W]) runOne(p pending[W]) {
	if p.create != nil {
		b.attach(p.id, p.create)
		return
	}
	inst := b.instances[p.id]
	if inst == nil {
		Logger().Debug("dropping action for stale instance", "instance", p.id, "action", p.name)
		return
	}
	Logger().Debug("action: run", "instance", p.id, "action", p.name)
	s := &Scope[W]{b: b, inst: inst, live: true}
	defer func() { s.live = false }()
	p.act(s)
}

func (b *Bridge[W]) tick() {
	if b.toolkit != nil {
		b.toolkit.Tick()
	}
	for _, inst := range b.live {
		if inst.st.destroyed {
			continue
		}
		if t, ok := any(inst.w).(Ticker); ok {
			t.Tick()
		}
	}
	b.flush()
}

func (b *Bridge[W]) enqueue(p pending[W]) {
	if !b.actions.push(p) {
		Logger().Debug("dropping action submitted after close", "instance", p.id, "action", p.name)
		return
	}
	Logger().Debug("action: scheduling", "instance", p.id, "action", p.name)
}

// Create requests a new instance built by f on the owner thread and returns
// its ID at once. A KindLifecycle(Attached) or KindCreateFailed envelope
// reports the outcome.
func (b *Bridge[W]) Create(f Factory[W]) ID {
	id := ID(b.nextID.Add(1))
	b.enqueue(pending[W]{id: id, name: "create", create: f})
	return id
}

// Submit queues act for execution on the owner thread against id. Actions
// for one instance run in submission order. If the instance is destroyed by
// the time act would run, act is dropped.
func (b *Bridge[W]) Submit(id ID, name string, act Action[W]) {
	if act == nil {
		return
	}
	b.enqueue(pending[W]{id: id, name: name, act: act})
}

// Destroy releases the instance. Decisions it has outstanding, or raises
// before the destroy runs, get their default answers immediately; later
// actions for id are no-ops.
func (b *Bridge[W]) Destroy(id ID) {
	if n := b.out.expireInstance(id); n > 0 {
		Logger().Info("released pending decisions of destroyed instance", "instance", id, "count", n)
	}
	b.Submit(id, "destroy", func(s *Scope[W]) {
		b.destroy(s.inst)
	})
}

// SetVisible moves the instance to Active (visible, timers running) or
// Paused (invisible, timers paused). Repeating the current state is a no-op.
func (b *Bridge[W]) SetVisible(id ID, visible bool) {
	b.Submit(id, fmt.Sprintf("set-visible(%t)", visible), func(s *Scope[W]) {
		b.setVisible(s.inst, visible)
	})
}

// SetInputEnabled grants or revokes input. New instances ignore input until
// it is granted.
func (b *Bridge[W]) SetInputEnabled(id ID, enabled bool) {
	b.Submit(id, fmt.Sprintf("set-input(%t)", enabled), func(s *Scope[W]) {
		s.inst.st.acceptsInput = enabled
	})
}

// Input forwards one input event to the instance through the input router.
func (b *Bridge[W]) Input(id ID, ev InputEvent) {
	b.Submit(id, "input:"+ev.Kind.String(), func(s *Scope[W]) {
		routeInput(s.inst.st, s.inst.w, ev)
	})
}

// Ready is signalled when envelopes are waiting to be drained.
func (b *Bridge[W]) Ready() <-chan struct{} {
	return b.out.ready
}

// Drain hands every queued envelope to fn in order and returns how many
// were delivered. Call it from the control thread, typically once a frame.
func (b *Bridge[W]) Drain(fn func(Envelope)) int {
	envs := b.out.take()
	for _, e := range envs {
		deliver(fn, e)
	}
	return len(envs)
}

// Scope is an action's view of its instance. It is valid only while the
// action runs, on the owner thread.
type Scope[W Surrogate] struct {
	b    *Bridge[W]
	inst *instance[W]
	live bool
}

func (s *Scope[W]) check(op string) {
	if !s.live {
		panic(fmt.Errorf("%w: %s on a scope whose action already returned", ErrWrongThread, op))
	}
	s.b.assertOwner(op)
}

// ID returns the instance ID.
func (s *Scope[W]) ID() ID { return s.inst.st.id }

// Widget returns the surrogate.
func (s *Scope[W]) Widget() W {
	s.check("Widget")
	return s.inst.w
}

// State returns the lifecycle state.
func (s *Scope[W]) State() State {
	s.check("State")
	return s.inst.st.state
}

// AcceptsInput reports the input router's flag for this instance.
func (s *Scope[W]) AcceptsInput() bool {
	s.check("AcceptsInput")
	return s.inst.st.acceptsInput
}

// Notify queues a fire-and-forget callback for this instance. Commands use
// it to report their results.
func (s *Scope[W]) Notify(kind Kind, payload any) {
	s.check("Notify")
	s.b.stage(Envelope{Instance: s.inst.st.id, Kind: kind, Payload: payload})
}
