// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import (
	"fmt"
	"image/draw"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Kind names a callback. Widget adapters define their own kinds; the core
// defines the ones below.
type Kind string

const (
	// KindLifecycle carries the instance's new State.
	KindLifecycle Kind = "lifecycle"
	// KindCreateFailed carries the factory error. The instance is gone.
	KindCreateFailed Kind = "create-failed"
	// KindInvalidated means the widget's pixels changed since the last
	// paint. At most one is outstanding per instance until a paint
	// succeeds.
	KindInvalidated Kind = "invalidated"
	// KindPainted carries a PaintResult for a RequestPaint.
	KindPainted Kind = "painted"
	// KindDecisionExpired carries a DecisionExpired: a decision got its
	// default answer instead of one from the control side.
	KindDecisionExpired Kind = "decision-expired"
)

// Envelope is one callback delivered to the control side.
type Envelope struct {
	Instance ID
	Kind     Kind
	Payload  any
	// Decision is non-nil for callbacks that block the owner thread until
	// answered.
	Decision *Decision
}

// IsDecision reports whether the envelope needs an answer.
func (e Envelope) IsDecision() bool { return e.Decision != nil }

// PaintResult is the payload of KindPainted. Surface is the caller's target,
// handed back: the bridge holds no reference to it once this is delivered.
type PaintResult struct {
	Surface draw.Image
	Err     error
}

// DecisionExpired is the payload of KindDecisionExpired.
type DecisionExpired struct {
	Kind   Kind
	Answer any
}

const (
	decisionPending int32 = iota
	decisionAnswered
	decisionExpired
)

// Decision is the single-slot answer of a decision callback. Exactly one
// answer reaches the owner thread: the first Resolve, or the default if the
// decision expires first.
type Decision struct {
	kind   Kind
	def    any
	answer chan any
	state  atomic.Int32
}

func newDecision(kind Kind, def any) *Decision {
	return &Decision{kind: kind, def: def, answer: make(chan any, 1)}
}

// Kind returns the decision's callback kind.
func (d *Decision) Kind() Kind { return d.kind }

// Default returns the answer applied on timeout, destruction or shutdown.
func (d *Decision) Default() any { return d.def }

// Pending reports whether the decision still waits for an answer.
func (d *Decision) Pending() bool { return d.state.Load() == decisionPending }

// Resolve answers the decision. v must have the default answer's type (nil
// is accepted for pointer-like defaults). Resolving an answered decision
// returns ErrAlreadyAnswered, an expired one ErrDecisionExpired.
func (d *Decision) Resolve(v any) error {
	v, err := d.fit(v)
	if err != nil {
		return err
	}
	if !d.state.CompareAndSwap(decisionPending, decisionAnswered) {
		if d.state.Load() == decisionExpired {
			return fmt.Errorf("%w: %s", ErrDecisionExpired, d.kind)
		}
		return fmt.Errorf("%w: %s", ErrAlreadyAnswered, d.kind)
	}
	d.answer <- v
	return nil
}

func (d *Decision) fit(v any) (any, error) {
	if d.def == nil {
		return v, nil
	}
	want := reflect.TypeOf(d.def)
	if v == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want).Interface(), nil
		}
		return nil, fmt.Errorf("%w: %s wants %s, got nil", ErrAnswerType, d.kind, want)
	}
	if got := reflect.TypeOf(v); !got.AssignableTo(want) {
		return nil, fmt.Errorf("%w: %s wants %s, got %s", ErrAnswerType, d.kind, want, got)
	}
	return v, nil
}

// expire applies the default answer if nobody answered yet.
func (d *Decision) expire() bool {
	if !d.state.CompareAndSwap(decisionPending, decisionExpired) {
		return false
	}
	d.answer <- d.def
	return true
}

// wait blocks until an answer arrives, the timeout elapses, or stop closes.
// It reports whether the returned value is the default applied by expiry.
func (d *Decision) wait(timeout time.Duration, stop <-chan struct{}) (any, bool) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case v := <-d.answer:
		return v, d.state.Load() == decisionExpired
	case <-timer:
	case <-stop:
	}
	d.expire()
	v := <-d.answer
	return v, d.state.Load() == decisionExpired
}

// outbox is the owner-to-control event stream.
type outbox struct {
	mu      sync.Mutex
	items   []Envelope
	backlog int
	dropped int
	ready   chan struct{}

	// pending decisions per instance, so destruction from the control side
	// can release an owner thread blocked on one.
	pending map[ID]map[*Decision]struct{}
	// destroying holds instances whose Destroy was submitted but has not
	// run yet. Decisions they raise meanwhile get their defaults at once.
	destroying map[ID]struct{}
}

func newOutbox(backlog int) *outbox {
	return &outbox{
		backlog: backlog,
		ready:   make(chan struct{}, 1),
		pending:    make(map[ID]map[*Decision]struct{}),
		destroying: make(map[ID]struct{}),
	}
}

func (o *outbox) publish(envs ...Envelope) {
	if len(envs) == 0 {
		return
	}
	o.mu.Lock()
	o.items = append(o.items, envs...)
	if o.backlog > 0 && len(o.items) > o.backlog {
		o.trimLocked()
	}
	o.mu.Unlock()
	select {
	case o.ready <- struct{}{}:
	default:
	}
}

// trimLocked drops the oldest notifications until the backlog fits.
// Decisions are kept: dropping one would strand the owner thread.
func (o *outbox) trimLocked() {
	excess := len(o.items) - o.backlog
	kept := o.items[:0]
	n := 0
	for _, e := range o.items {
		if excess > 0 && !e.IsDecision() {
			excess--
			n++
			continue
		}
		kept = append(kept, e)
	}
	clear(o.items[len(kept):])
	o.items = kept
	o.dropped += n
	Logger().Warn("relay: event backlog full, dropped notifications", "dropped", n, "total_dropped", o.dropped)
}

func (o *outbox) take() []Envelope {
	o.mu.Lock()
	items := o.items
	o.items = nil
	o.mu.Unlock()
	return items
}

// track registers d as open for id. It reports false when id is being
// destroyed; the caller must not wait on d.
func (o *outbox) track(id ID, d *Decision) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.destroying[id]; ok {
		return false
	}
	set := o.pending[id]
	if set == nil {
		set = make(map[*Decision]struct{})
		o.pending[id] = set
	}
	set[d] = struct{}{}
	return true
}

func (o *outbox) untrack(id ID, d *Decision) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending[id], d)
	if len(o.pending[id]) == 0 {
		delete(o.pending, id)
	}
}

// expireInstance applies defaults to every open decision of id and to any
// it raises until released.
func (o *outbox) expireInstance(id ID) int {
	o.mu.Lock()
	o.destroying[id] = struct{}{}
	set := o.pending[id]
	delete(o.pending, id)
	o.mu.Unlock()
	n := 0
	for d := range set {
		if d.expire() {
			n++
		}
	}
	return n
}

// release forgets id once its widget is gone.
func (o *outbox) release(id ID) {
	o.mu.Lock()
	delete(o.destroying, id)
	o.mu.Unlock()
}

func (o *outbox) expireAll() {
	o.mu.Lock()
	all := o.pending
	o.pending = make(map[ID]map[*Decision]struct{})
	o.mu.Unlock()
	for _, set := range all {
		for d := range set {
			d.expire()
		}
	}
}

// deliver hands one envelope to fn. A panicking handler loses only its own
// envelope.
func deliver(fn func(Envelope), e Envelope) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("relay: envelope handler panicked", "instance", e.Instance, "kind", e.Kind, "panic", r)
		}
	}()
	fn(e)
}
