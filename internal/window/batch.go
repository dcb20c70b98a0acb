package window

import "github.com/KDE/kwin-sub007/internal/geom"

// PendingGeometry ranks a geometry change waiting for the batch to close.
type PendingGeometry int

const (
	PendingNone PendingGeometry = iota
	PendingNormal
	PendingForced
)

// GeometrySink receives the final frame geometry of a window.
type GeometrySink interface {
	ApplyFrameGeometry(w *Window, frame geom.Rect)
}

type batchState struct {
	depth   int
	pending PendingGeometry
	applied geom.Rect
	sink    GeometrySink
}

// AttachSink sets where committed geometry goes. A nil sink only records it.
func (w *Window) AttachSink(s GeometrySink) { w.batch.sink = s }

// AppliedFrame is the last geometry handed to the sink.
func (w *Window) AppliedFrame() geom.Rect { return w.batch.applied }

// GeometryBlocked reports whether a batch is open.
func (w *Window) GeometryBlocked() bool { return w.batch.depth > 0 }

// SetFrameGeometry updates the frame. Inside a batch the change is recorded
// and delivered once when the outermost batch is released; otherwise it is
// delivered immediately. A forced change is delivered even if the geometry
// equals the last applied one.
func (w *Window) SetFrameGeometry(r geom.Rect, force bool) {
	w.Frame = r
	p := PendingNormal
	if force {
		p = PendingForced
	}
	if p > w.batch.pending {
		w.batch.pending = p
	}
	if w.batch.depth == 0 {
		w.commit()
	}
}

// Move changes the position only.
func (w *Window) Move(p geom.Point) { w.SetFrameGeometry(w.Frame.MovedTo(p), false) }

func (w *Window) commit() {
	pending := w.batch.pending
	w.batch.pending = PendingNone
	if pending == PendingNone {
		return
	}
	if pending == PendingNormal && w.Frame == w.batch.applied {
		return
	}
	w.batch.applied = w.Frame
	if w.batch.sink != nil {
		w.batch.sink.ApplyFrameGeometry(w, w.Frame)
	}
}

// GeometryBatch defers geometry delivery until Release. Batches nest; only
// the outermost release commits.
type GeometryBatch struct {
	w        *Window
	released bool
}

// BlockGeometryUpdates opens a batch. Callers release it with defer.
func (w *Window) BlockGeometryUpdates() *GeometryBatch {
	w.batch.depth++
	return &GeometryBatch{w: w}
}

// Release closes the batch. Releasing twice is a no-op.
func (b *GeometryBatch) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	b.w.batch.depth--
	if b.w.batch.depth == 0 {
		b.w.commit()
	}
}
