// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import "image"

// Hooks is what a widget sees of the bridge: where it reports that it is
// dirty and where its toolkit callbacks go. A widget receives its Hooks in
// the Factory and calls them on the owner thread only; calls for a
// destroyed instance are dropped.
type Hooks struct {
	c  *core
	st *instanceState
}

// ID returns the instance the hooks belong to.
func (h *Hooks) ID() ID { return h.st.id }

// Invalidate marks the whole surface dirty.
func (h *Hooks) Invalidate() {
	h.c.assertOwner("Invalidate")
	h.markDirty()
}

// InvalidateRect marks r (content coordinates) dirty. Rectangles that do not
// overlap the current viewport are ignored; nothing visible changed.
func (h *Hooks) InvalidateRect(r image.Rectangle) {
	h.c.assertOwner("InvalidateRect")
	if h.st.viewport != nil {
		if vp := h.st.viewport(); !vp.Empty() && !r.Overlaps(vp) {
			Logger().Debug("invalidate: ignoring rectangle outside viewport", "instance", h.st.id, "rect", r, "viewport", vp)
			return
		}
	}
	h.markDirty()
}

// RequestLayout reports a size or layout change. It always invalidates: a
// detached widget may resize without ever asking to draw.
func (h *Hooks) RequestLayout() {
	h.c.assertOwner("RequestLayout")
	h.markDirty()
}

// markDirty sets the invalidation token. One KindInvalidated envelope is
// sent per paint attempt: after a paint, successful or not, the next
// invalidation announces again.
func (h *Hooks) markDirty() {
	if h.st.destroyed {
		return
	}
	h.st.dirty = true
	if h.st.announced {
		return
	}
	h.st.announced = true
	h.c.stage(Envelope{Instance: h.st.id, Kind: KindInvalidated})
}

// Notify relays a fire-and-forget callback.
func (h *Hooks) Notify(kind Kind, payload any) {
	h.c.assertOwner("Notify")
	if h.st.destroyed {
		Logger().Debug("dropping callback for stale instance", "instance", h.st.id, "kind", kind)
		return
	}
	h.c.stage(Envelope{Instance: h.st.id, Kind: kind, Payload: payload})
}

// Decide relays a decision callback and blocks the owner thread until the
// control side answers. If no answer arrives within the configured
// DecisionTimeout, or the instance is destroyed, or the bridge shuts down,
// def is returned and a KindDecisionExpired notification follows.
func (h *Hooks) Decide(kind Kind, payload any, def any) any {
	h.c.assertOwner("Decide")
	if h.st.destroyed {
		return def
	}
	d := newDecision(kind, def)
	if !h.c.out.track(h.st.id, d) {
		Logger().Debug("decision raised while destroying, applying default", "instance", h.st.id, "kind", kind)
		return def
	}
	h.c.stage(Envelope{Instance: h.st.id, Kind: kind, Payload: payload, Decision: d})
	// Everything staged so far happened before the decision; publish it
	// together with the decision, in order.
	h.c.flush()

	v, expired := d.wait(h.c.cfg.DecisionTimeout.Duration, h.c.stop)
	h.c.out.untrack(h.st.id, d)
	if expired {
		Logger().Warn("decision expired, applying default", "instance", h.st.id, "kind", kind, "answer", v)
		if !h.st.destroyed {
			h.c.stage(Envelope{Instance: h.st.id, Kind: KindDecisionExpired, Payload: DecisionExpired{Kind: kind, Answer: v}})
		}
	}
	return v
}
