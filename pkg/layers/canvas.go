package layers

import (
	"image"
	"time"

	"github.com/fogleman/gg"

	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
	"github.com/glazework/glaze/pkg/observability"
)

// DrawFunc renders one element onto a canvas surface. The context
// arrives with the viewport transform and the element's anchor already
// applied, so drawing happens in element-local coordinates; bounds is
// the element's bounding box in graph coordinates. State changes are
// confined by a save/restore around every call, so a callback can never
// leak transform state onto sibling elements.
type DrawFunc func(gc *gg.Context, e host.Element, bounds geom.Rect)

// CanvasSurface is the raster drawing surface behind [KindCanvas].
//
// A canvas cannot cheaply patch a sub-region: every repaint clears the
// backing store and redraws all participating elements of all bindings,
// back to front. Repaints are therefore batched at surface level - any
// number of invalidations before the next render tick produce one clear
// and one draw pass.
type CanvasSurface struct {
	baseSurface
	pixelRatio float64
	gc         *gg.Context

	pending    bool
	cancelOnce func()

	// Per-tick repaint subscription, shared by every binding that
	// requeries on render ticks.
	tickSubs  int
	tickUnsub func()
	painted   bool
}

func newCanvasSurface(h host.Host, pixelRatio float64) *CanvasSurface {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	root := dom.NewElement("canvas")
	s := &CanvasSurface{
		baseSurface: baseSurface{kind: KindCanvas, root: root, h: h, tr: geom.Identity()},
		pixelRatio:  pixelRatio,
	}
	root.Data = s
	s.alloc(1, 1)
	return s
}

func (s *CanvasSurface) alloc(w, h float64) {
	pw, ph := int(w*s.pixelRatio), int(h*s.pixelRatio)
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	s.gc = gg.NewContext(pw, ph)
}

// Resize implements [Surface]. A real size change reallocates the
// backing store, which discards pixels, so it schedules a repaint.
func (s *CanvasSurface) Resize(w, h float64) {
	if s.removed || (s.w == w && s.hgt == h) {
		return
	}
	s.w, s.hgt = w, h
	s.alloc(w, h)
	s.invalidate()
}

// SetTransform implements [Surface]. Canvas pixels bake the transform
// in, so any pan/zoom change requires a full redraw.
func (s *CanvasSurface) SetTransform(t geom.Transform) {
	if s.removed || s.tr.Eq(t) {
		return
	}
	s.tr = t
	s.invalidate()
}

// Transform implements [Surface].
func (s *CanvasSurface) Transform() geom.Transform { return s.tr }

// RequestUpdate implements [Surface]. The hint is ignored: canvas
// repaints are always whole-surface.
func (s *CanvasSurface) RequestUpdate(host.Element) {
	if s.removed {
		return
	}
	s.invalidate()
}

// invalidate schedules one repaint on the next render tick. Scheduling
// twice before the tick fires is a no-op.
func (s *CanvasSurface) invalidate() {
	if s.removed || s.pending {
		return
	}
	s.pending = true
	s.cancelOnce = s.h.OnceRenderTick(s.flush)
}

func (s *CanvasSurface) flush() {
	s.pending = false
	s.cancelOnce = nil
	if s.removed {
		// Torn down between scheduling and the tick; stale repaint.
		return
	}
	s.refreshParticipants()
	s.repaint(false)
	if s.tickUnsub != nil {
		// One-shots run before persistent listeners, so the per-tick
		// listener would otherwise repaint a second time this tick.
		s.painted = true
	}
}

// bindRenderTick is called by bindings that repaint on every render
// tick. The surface keeps a single host listener no matter how many
// bindings ask, so a tick still produces at most one repaint.
func (s *CanvasSurface) bindRenderTick() (unsub func()) {
	s.tickSubs++
	if s.tickUnsub == nil {
		s.painted = false
		s.tickUnsub = s.h.OnRender(s.onRenderTick)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		s.tickSubs--
		if s.tickSubs == 0 && s.tickUnsub != nil {
			s.tickUnsub()
			s.tickUnsub = nil
		}
	}
}

func (s *CanvasSurface) onRenderTick() {
	if s.removed {
		return
	}
	if s.painted {
		s.painted = false
		return
	}
	s.refreshParticipants()
	s.repaint(false)
}

// refreshParticipants drops the caches of per-tick bindings and brings
// every binding's participation set up to date before a repaint.
func (s *CanvasSurface) refreshParticipants() {
	for _, b := range s.bindings {
		if b.renderTickSubscribed() {
			b.cacheValid = false
		}
		b.ensureParticipants()
	}
}

// repaint clears the backing store and redraws every binding.
func (s *CanvasSurface) repaint(capture bool) {
	start := time.Now()
	s.gc.SetRGBA(0, 0, 0, 0)
	s.gc.Clear()
	drawn := 0
	for _, b := range s.bindings {
		drawn += b.drawPass(s.gc, capture)
	}
	observability.Render().OnDrawPass(drawn, time.Since(start))
}

// RenderCapture implements [Surface].
func (s *CanvasSurface) RenderCapture() {
	if s.removed {
		return
	}
	s.refreshParticipants()
	s.repaint(true)
}

// Image returns the current raster contents. The snapshot package uses
// it when compositing export output.
func (s *CanvasSurface) Image() image.Image { return s.gc.Image() }

// PixelRatio returns the backing-store scale factor.
func (s *CanvasSurface) PixelRatio() float64 { return s.pixelRatio }

// Remove implements [Surface].
func (s *CanvasSurface) Remove() {
	if s.removed {
		return
	}
	s.removed = true
	if s.cancelOnce != nil {
		s.cancelOnce()
		s.cancelOnce = nil
	}
	if s.tickUnsub != nil {
		s.tickUnsub()
		s.tickUnsub = nil
	}
	for _, b := range append([]*Binding(nil), s.bindings...) {
		b.Remove()
	}
	s.bindings = nil
	s.root.Remove()
}

func (s *CanvasSurface) targetParent() *dom.Element { return nil }

// drawElement runs one draw callback inside a save/restore pair with
// the surface transform, pixel ratio, and anchor applied.
func (s *CanvasSurface) drawElement(gc *gg.Context, draw DrawFunc, e host.Element, anchor geom.Point, anchored bool, bounds geom.Rect) {
	gc.Push()
	gc.Scale(s.pixelRatio, s.pixelRatio)
	gc.Translate(s.tr.Pan.X, s.tr.Pan.Y)
	gc.Scale(s.tr.Zoom, s.tr.Zoom)
	if anchored {
		gc.Translate(anchor.X, anchor.Y)
	}
	draw(gc, e, bounds)
	gc.Pop()
}
