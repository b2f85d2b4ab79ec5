// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package offscreen

import (
	"errors"
	"fmt"
	"image/draw"
)

var errNilSurface = errors.New("offscreen: nil paint surface")

// Paint renders the widget's committed state into dst, bypassing its
// suppressed on-screen draw. It is owner-thread only and panics elsewhere.
// Painting with no invalidation pending is allowed and simply redraws.
// A successful paint clears the invalidation token. A failed one keeps it,
// and the widget's next invalidation is announced again.
func (s *Scope[W]) Paint(dst draw.Image) error {
	s.check("Paint")
	if dst == nil {
		return errNilSurface
	}
	st := s.inst.st
	if st.destroyed {
		return fmt.Errorf("paint %s: %w", st.id, ErrStaleInstance)
	}
	was := st.dirty
	// Cleared first so an invalidation raised while painting is not lost.
	st.dirty, st.announced = false, false
	if err := s.inst.w.Paint(dst); err != nil {
		st.dirty = st.dirty || was
		return fmt.Errorf("paint %s: %w", st.id, err)
	}
	return nil
}

// RequestPaint asks the owner thread to render the instance into dst. The
// caller must not touch dst until the matching KindPainted envelope, whose
// PaintResult hands dst back. A request for a destroyed instance is dropped
// and produces no envelope.
func (b *Bridge[W]) RequestPaint(id ID, dst draw.Image) {
	b.Submit(id, "paint", func(s *Scope[W]) {
		err := s.Paint(dst)
		s.Notify(KindPainted, PaintResult{Surface: dst, Err: err})
	})
}
