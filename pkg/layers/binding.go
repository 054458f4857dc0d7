package layers

import (
	"fmt"
	"time"

	"github.com/fogleman/gg"

	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
	"github.com/glazework/glaze/pkg/observability"
)

// Position selects how a render target is anchored to its element.
type Position int

const (
	// PositionNone leaves the target's position untouched.
	PositionNone Position = iota

	// PositionTopLeft translates the target's origin to the top-left
	// corner of the element's bounding box.
	PositionTopLeft

	// PositionCenter translates the target's origin to the element's
	// center position, independent of bounding-box size.
	PositionCenter
)

// RenderFunc renders one element into its target on a node surface.
// bounds is the element's bounding box in graph coordinates.
type RenderFunc func(target *dom.Element, e host.Element, bounds geom.Rect)

// InitFunc runs once when a target enters, before its first render.
type InitFunc func(target *dom.Element, e host.Element, bounds geom.Rect)

// CollectionFunc observes each fresh participation query result.
type CollectionFunc func(elements []host.Element)

type bindingConfig struct {
	selector       string
	box            host.BoxOptions
	pos            Position
	unique         bool
	partial        bool
	updateOn       string
	queryEachTime  bool
	checkBounds    bool
	init           InitFunc
	initCollection CollectionFunc
}

// BindingOption configures [RenderPerElement].
type BindingOption func(*bindingConfig)

// WithSelector sets the participation query. The default is "*".
func WithSelector(selector string) BindingOption {
	return func(c *bindingConfig) { c.selector = selector }
}

// WithBoundingBox sets the geometry-inclusion flags used when computing
// element bounding boxes.
func WithBoundingBox(box host.BoxOptions) BindingOption {
	return func(c *bindingConfig) { c.box = box }
}

// WithPosition sets the anchoring mode. The default is [PositionNone].
func WithPosition(p Position) BindingOption {
	return func(c *bindingConfig) { c.pos = p }
}

// WithUniqueElements keys render targets by element identity, so a
// target persists across re-renders instead of being recreated on every
// pass.
func WithUniqueElements() BindingOption {
	return func(c *bindingConfig) { c.unique = true }
}

// WithPartialUpdate patches single targets on element add/remove
// instead of invalidating the whole cached set. Partial updates require
// stable target identity, so this forces unique-elements semantics.
func WithPartialUpdate() BindingOption {
	return func(c *bindingConfig) { c.partial = true; c.unique = true }
}

// WithUpdateOn names an extra geometry-affecting host event that
// invalidates the binding, [host.UpdateRender] to re-query on every
// tick, or [host.UpdateNone] (the default) for add/remove only.
func WithUpdateOn(event string) BindingOption {
	return func(c *bindingConfig) { c.updateOn = event }
}

// WithQueryEachTime re-runs the participation query on every render
// tick instead of caching it between invalidations.
func WithQueryEachTime() BindingOption {
	return func(c *bindingConfig) { c.queryEachTime = true }
}

// WithBoundsCheck skips rendering for elements whose bounding boxes do
// not intersect the visible viewport region. Skipped targets keep their
// association; export passes bypass the check entirely.
func WithBoundsCheck() BindingOption {
	return func(c *bindingConfig) { c.checkBounds = true }
}

// WithInit sets a callback run once per target when it enters.
func WithInit(fn InitFunc) BindingOption {
	return func(c *bindingConfig) { c.init = fn }
}

// WithInitCollection sets a callback observing every fresh
// participation query result.
func WithInitCollection(fn CollectionFunc) BindingOption {
	return func(c *bindingConfig) { c.initCollection = fn }
}

// Binding attaches a participation query and a render callback to a
// surface and keeps the surface's render targets congruent with the
// participating element set. Create bindings with [RenderPerElement]
// (node surfaces) or [DrawPerElement] (canvas surfaces); destroy them
// with [Binding.Remove], which unregisters every listener the binding
// installed.
type Binding struct {
	surface Surface
	h       host.Host
	cfg     bindingConfig

	render RenderFunc
	draw   DrawFunc

	// participants cache; valid only when cacheVersion > 0 and the
	// binding is not in query-each-time mode.
	cache        []host.Element
	cacheValid   bool
	targets      map[string]*dom.Element
	targetOrder  []string
	pending      bool
	cancelOnce   func()
	pendingAdds  []host.Element
	unsubs       []func()
	removed      bool
	renderTicked bool
}

// RenderPerElement creates a binding rendering one persistent target
// per participating element on a node surface.
func RenderPerElement(s Surface, render RenderFunc, opts ...BindingOption) (*Binding, error) {
	if s == nil || s.Removed() {
		return nil, errors.New(errors.ErrCodeRemoved, "surface is removed or nil")
	}
	if s.Kind() == KindCanvas {
		return nil, errors.New(errors.ErrCodeInvalidOption, "canvas surfaces take a DrawFunc; use DrawPerElement")
	}
	if render == nil {
		return nil, errors.New(errors.ErrCodeInvalidOption, "render callback must not be nil")
	}
	b, err := newBinding(s, opts)
	if err != nil {
		return nil, err
	}
	b.render = render
	b.subscribe()
	// Populate immediately so the caller observes targets without
	// waiting for the first tick; subsequent work is batched.
	b.reconcile(false)
	return b, nil
}

// DrawPerElement creates a binding drawing every participating element
// onto a canvas surface. Partial updates are not available: a canvas
// repaint always redraws the full surface.
func DrawPerElement(s Surface, draw DrawFunc, opts ...BindingOption) (*Binding, error) {
	if s == nil || s.Removed() {
		return nil, errors.New(errors.ErrCodeRemoved, "surface is removed or nil")
	}
	cs, ok := s.(*CanvasSurface)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidOption, "node surfaces take a RenderFunc; use RenderPerElement")
	}
	if draw == nil {
		return nil, errors.New(errors.ErrCodeInvalidOption, "draw callback must not be nil")
	}
	b, err := newBinding(s, opts)
	if err != nil {
		return nil, err
	}
	if b.cfg.partial {
		s.dropBinding(b)
		return nil, errors.New(errors.ErrCodeInvalidOption, "partial updates are not supported on canvas surfaces")
	}
	b.draw = draw
	b.subscribe()
	cs.invalidate()
	return b, nil
}

func newBinding(s Surface, opts []BindingOption) (*Binding, error) {
	cfg := bindingConfig{selector: "*"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := errors.ValidateSelector(cfg.selector); err != nil {
		return nil, err
	}
	if cfg.partial && (cfg.queryEachTime || cfg.updateOn == host.UpdateRender) {
		// A per-tick requery rebuilds the whole participation set every
		// tick, so there is nothing left for a partial patch to skip;
		// deferred adds would only accumulate unflushed.
		return nil, errors.New(errors.ErrCodeInvalidOption, "partial updates conflict with per-tick requery")
	}
	b := &Binding{
		surface: s,
		h:       s.bindingHost(),
		cfg:     cfg,
		targets: make(map[string]*dom.Element),
	}
	s.addBinding(b)
	return b, nil
}

func (b *Binding) subscribe() {
	b.unsubs = append(b.unsubs,
		b.h.On(host.EventAdd, b.cfg.selector, b.onAdd),
		b.h.On(host.EventRemove, b.cfg.selector, b.onRemove),
	)
	switch b.cfg.updateOn {
	case "", host.UpdateNone:
	case host.UpdateRender:
		b.unsubs = append(b.unsubs, b.subscribeRenderTick())
	default:
		b.unsubs = append(b.unsubs, b.h.On(host.Event(b.cfg.updateOn), b.cfg.selector, b.onGeometry))
	}
	if b.cfg.queryEachTime && !b.renderTickSubscribed() {
		b.unsubs = append(b.unsubs, b.subscribeRenderTick())
		b.renderTicked = true
	}
}

// subscribeRenderTick registers the per-tick listener. Node bindings
// reconcile directly; draw bindings route through one surface-level
// listener so several of them still produce a single repaint per tick.
func (b *Binding) subscribeRenderTick() func() {
	if cs, ok := b.surface.(*CanvasSurface); ok && b.draw != nil {
		return cs.bindRenderTick()
	}
	return b.h.OnRender(b.onRenderTick)
}

func (b *Binding) renderTickSubscribed() bool {
	return b.renderTicked || b.cfg.updateOn == host.UpdateRender
}

// Surface returns the surface the binding renders to.
func (b *Binding) Surface() Surface { return b.surface }

// Elements returns the currently participating elements.
func (b *Binding) Elements() []host.Element {
	b.ensureParticipants()
	out := make([]host.Element, len(b.cache))
	copy(out, b.cache)
	return out
}

// Target returns the render target currently associated with an element
// ID, or nil. Only unique-elements bindings maintain stable targets.
func (b *Binding) Target(id string) *dom.Element { return b.targets[id] }

// Remove destroys the binding: every listener it installed is
// unregistered, its scheduled work is cancelled, and its render targets
// are detached. Sibling bindings are unaffected. Removing twice is a
// no-op.
func (b *Binding) Remove() {
	if b.removed {
		return
	}
	b.removed = true
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
	if b.cancelOnce != nil {
		b.cancelOnce()
		b.cancelOnce = nil
	}
	for _, id := range b.targetOrder {
		if t := b.targets[id]; t != nil {
			t.Remove()
		}
	}
	b.targets = map[string]*dom.Element{}
	b.targetOrder = nil
	b.cache = nil
	b.surface.dropBinding(b)
	if cs, ok := b.surface.(*CanvasSurface); ok && !cs.Removed() {
		cs.invalidate()
	}
}

// Removed reports whether the binding has been removed.
func (b *Binding) Removed() bool { return b.removed }

// =============================================================================
// Event handling: triggers only set flags and schedule; the work runs
// on the next render tick.
// =============================================================================

func (b *Binding) onAdd(e host.Element) {
	if b.removed {
		return
	}
	if b.cfg.partial {
		b.pendingAdds = append(b.pendingAdds, e)
		b.schedule()
		return
	}
	b.cacheValid = false
	b.schedule()
}

func (b *Binding) onRemove(e host.Element) {
	if b.removed {
		return
	}
	if b.cfg.partial {
		// Incremental exit: drop exactly this element's target without
		// touching siblings. No repaint needed on a node surface.
		b.dropTarget(e.ID())
		b.dropFromCache(e.ID())
		return
	}
	b.cacheValid = false
	b.schedule()
}

func (b *Binding) onGeometry(host.Element) {
	if b.removed {
		return
	}
	// Opted-in events re-run the participation query: a geometry change
	// can move an element into or out of a scoped selector's result.
	b.cacheValid = false
	b.schedule()
}

func (b *Binding) onRenderTick() {
	if b.removed {
		return
	}
	if b.cfg.queryEachTime || b.cfg.updateOn == host.UpdateRender {
		b.cacheValid = false
	}
	b.reconcile(false)
}

// requestUpdate handles Surface.RequestUpdate fan-in.
func (b *Binding) requestUpdate(hint host.Element) {
	if b.removed {
		return
	}
	if hint != nil && b.cfg.partial {
		b.pendingAdds = append(b.pendingAdds, hint)
	} else {
		b.cacheValid = false
	}
	b.schedule()
}

// invalidate schedules a reconciliation, optionally discarding the
// cached participation set.
func (b *Binding) invalidate(dropCache bool) {
	if b.removed {
		return
	}
	if dropCache {
		b.cacheValid = false
	}
	b.schedule()
}

// schedule registers the one-shot tick listener; scheduling twice
// before it fires is a no-op.
func (b *Binding) schedule() {
	if b.pending {
		return
	}
	if b.renderTickSubscribed() {
		// A persistent render listener already reconciles every tick;
		// a one-shot would only produce a second pass.
		return
	}
	b.pending = true
	if cs, ok := b.surface.(*CanvasSurface); ok {
		// Canvas repaints are batched on the surface so that several
		// bindings still produce a single clear-and-redraw.
		cs.invalidate()
		b.pending = false
		return
	}
	b.cancelOnce = b.h.OnceRenderTick(b.flush)
}

func (b *Binding) flush() {
	b.pending = false
	b.cancelOnce = nil
	if b.removed || b.surface.Removed() {
		// Stale one-shot after teardown.
		return
	}
	if len(b.pendingAdds) > 0 && b.cacheValid {
		adds := b.pendingAdds
		b.pendingAdds = nil
		for _, e := range adds {
			b.patchOne(e)
		}
		return
	}
	b.pendingAdds = nil
	b.reconcile(false)
}

// =============================================================================
// Reconciliation
// =============================================================================

// ensureParticipants refreshes the cached participation set when it is
// stale. An empty result is a valid empty render pass.
func (b *Binding) ensureParticipants() {
	if b.cacheValid && !b.cfg.queryEachTime {
		return
	}
	b.cache = b.h.Query(b.cfg.selector)
	b.cacheValid = true
	if b.cfg.initCollection != nil {
		b.cfg.initCollection(b.cache)
	}
}

// visible reports whether the element survives bounds culling for a
// normal render pass.
func (b *Binding) visible(e host.Element, capture bool) bool {
	if capture || !b.cfg.checkBounds {
		return true
	}
	w, h := b.surface.Size()
	view := b.surface.Transform().VisibleRect(w, h)
	return e.BBox(b.cfg.box).Intersects(view)
}

func (b *Binding) anchor(e host.Element) (geom.Point, bool) {
	switch b.cfg.pos {
	case PositionTopLeft:
		return e.BBox(b.cfg.box).TopLeft(), true
	case PositionCenter:
		return e.Position(), true
	default:
		return geom.Point{}, false
	}
}

func (b *Binding) applyAnchor(t *dom.Element, e host.Element) {
	if p, ok := b.anchor(e); ok {
		t.SetTransform(fmt.Sprintf("translate(%g,%g)", p.X, p.Y))
	}
}

func targetTag(kind Kind) string {
	switch kind {
	case KindSVG, KindSVGStatic:
		return "g"
	default:
		return "div"
	}
}

// patchOne incrementally enters or updates the target for a single
// element, leaving every other target untouched.
func (b *Binding) patchOne(e host.Element) {
	if e.Removed() {
		return
	}
	t := b.targets[e.ID()]
	if t == nil {
		b.cache = append(b.cache, e)
		t = b.newTarget(e)
	}
	if b.visible(e, false) {
		b.applyAnchor(t, e)
		b.render(t, e, e.BBox(b.cfg.box))
	}
}

func (b *Binding) newTarget(e host.Element) *dom.Element {
	t := dom.NewElement(targetTag(b.surface.Kind()))
	t.SetAttr("data-element", e.ID())
	b.surface.targetParent().AppendChild(t)
	b.targets[e.ID()] = t
	b.targetOrder = append(b.targetOrder, e.ID())
	if b.cfg.init != nil {
		b.cfg.init(t, e, e.BBox(b.cfg.box))
	}
	return t
}

func (b *Binding) dropTarget(id string) {
	if t, ok := b.targets[id]; ok {
		t.Remove()
		delete(b.targets, id)
		for i, cur := range b.targetOrder {
			if cur == id {
				b.targetOrder = append(b.targetOrder[:i], b.targetOrder[i+1:]...)
				break
			}
		}
	}
}

func (b *Binding) dropFromCache(id string) {
	for i, e := range b.cache {
		if e.ID() == id {
			b.cache = append(b.cache[:i], b.cache[i+1:]...)
			return
		}
	}
}

// reconcile runs one full matching pass on a node surface: enter
// targets for new elements, update existing ones, exit stale ones.
// With capture set, bounds culling is bypassed.
func (b *Binding) reconcile(capture bool) {
	if b.removed || b.draw != nil {
		return
	}
	start := time.Now()
	rendered, culled := 0, 0
	observability.Render().OnReconcileStart(string(b.surface.Kind()), b.cfg.selector)
	defer func() {
		observability.Render().OnReconcileComplete(string(b.surface.Kind()), b.cfg.selector, rendered, culled, time.Since(start))
	}()
	b.ensureParticipants()

	if !b.cfg.unique {
		// Simplest and most expensive: recreate every target each pass.
		for _, id := range b.targetOrder {
			if t := b.targets[id]; t != nil {
				t.Remove()
			}
		}
		b.targets = map[string]*dom.Element{}
		b.targetOrder = nil
		for _, e := range b.cache {
			if e.Removed() {
				continue
			}
			if !b.visible(e, capture) {
				culled++
				continue
			}
			t := b.newTarget(e)
			b.applyAnchor(t, e)
			b.render(t, e, e.BBox(b.cfg.box))
			rendered++
		}
		return
	}

	desired := make(map[string]bool, len(b.cache))
	for _, e := range b.cache {
		if e.Removed() {
			continue
		}
		desired[e.ID()] = true
		t, exists := b.targets[e.ID()]
		if !exists {
			t = b.newTarget(e)
		}
		if !b.visible(e, capture) {
			// Skip render, keep the association.
			culled++
			continue
		}
		b.applyAnchor(t, e)
		b.render(t, e, e.BBox(b.cfg.box))
		rendered++
	}

	for _, id := range append([]string(nil), b.targetOrder...) {
		if !desired[id] {
			b.dropTarget(id)
		}
	}
}

// drawPass draws every participating element onto a canvas and reports
// how many elements were drawn. Called by the surface during its
// batched repaint, inside one clear.
func (b *Binding) drawPass(gc *gg.Context, capture bool) int {
	cs := b.surface.(*CanvasSurface)
	if b.removed || b.draw == nil {
		return 0
	}
	b.ensureParticipants()
	drawn := 0
	for _, e := range b.cache {
		if e.Removed() || !b.visible(e, capture) {
			continue
		}
		p, anchored := b.anchor(e)
		cs.drawElement(gc, b.draw, e, p, anchored, e.BBox(b.cfg.box))
		drawn++
	}
	return drawn
}
