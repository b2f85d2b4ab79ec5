// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

// State is an instance's lifecycle state:
//
//	Created -> Attached -> {Active <-> Paused} -> Destroyed
type State int

const (
	// Created: the ID exists, the owner thread has not built the widget yet.
	Created State = iota
	// Attached: the widget exists, is logically invisible and was never
	// added to a real view tree.
	Attached
	// Active: logically visible, timers running.
	Active
	// Paused: logically invisible, timers paused.
	Paused
	// Destroyed: the widget is released; actions for it are no-ops.
	Destroyed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Attached:
		return "attached"
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

func (b *Bridge[W]) attach(id ID, f Factory[W]) {
	st := &instanceState{id: id, state: Created}
	h := &Hooks{c: &b.core, st: st}
	w, err := f(h)
	if err != nil {
		st.destroyed = true
		st.state = Destroyed
		Logger().Warn("create failed", "instance", id, "err", err)
		b.stage(Envelope{Instance: id, Kind: KindCreateFailed, Payload: err})
		return
	}
	st.viewport = w.Viewport
	inst := &instance[W]{st: st, w: w}
	b.instances[id] = inst
	b.live = append(b.live, inst)
	b.transition(st, Attached)
}

func (b *Bridge[W]) setVisible(inst *instance[W], visible bool) {
	want := Paused
	if visible {
		want = Active
	}
	if inst.st.state == want {
		Logger().Debug("visibility unchanged", "instance", inst.st.id, "state", want)
		return
	}
	inst.w.SetVisible(visible)
	if visible {
		inst.w.ResumeTimers()
	} else {
		inst.w.PauseTimers()
	}
	b.transition(inst.st, want)
}

func (b *Bridge[W]) destroy(inst *instance[W]) {
	if inst.st.destroyed {
		return
	}
	inst.w.Destroy()
	inst.st.destroyed = true
	delete(b.instances, inst.st.id)
	for i, l := range b.live {
		if l == inst {
			b.live = append(b.live[:i], b.live[i+1:]...)
			break
		}
	}
	b.out.expireInstance(inst.st.id)
	b.out.release(inst.st.id)
	b.transition(inst.st, Destroyed)
}

func (b *Bridge[W]) transition(st *instanceState, to State) {
	Logger().Info("lifecycle", "instance", st.id, "from", st.state, "to", to)
	st.state = to
	b.stage(Envelope{Instance: st.id, Kind: KindLifecycle, Payload: to})
}
