// Package memhost provides an in-memory reference implementation of the
// [host.Host] contract.
//
// It backs the test suites and the demo CLI: a versioned element
// collection with a simple selector language, a spatial index for
// viewport-region queries, and a synchronous event dispatcher with the
// one-shot render-tick scheduling the overlay core's batching relies on.
//
// # Selector language
//
// Selectors are deliberately minimal, since the real language is owned
// by the host engine:
//
//   - "*"     matches every element
//   - "#id"   matches the element with that ID
//   - ".name" matches elements carrying the class
//   - "id"    matches by ID equality
//
// # Execution model
//
// All dispatch is synchronous and single-threaded: events fire on the
// caller's goroutine, and [Host.Tick] is the only place one-shot
// listeners run. The optional resize debouncer is the one concession to
// interactive hosts; it fires on a timer goroutine, so interactive
// callers should pump all host mutations from a single loop.
package memhost

import (
	"time"

	"github.com/bep/debounce"
	"github.com/dhconnelly/rtreego"

	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
)

type elementListener struct {
	id       int
	event    host.Event
	selector string
	fn       func(host.Element)
}

type onceTick struct {
	fn        func()
	cancelled bool
}

// Host is the in-memory host engine.
type Host struct {
	elements []*Element
	byID     map[string]*Element
	entries  map[string]*spatialEntry
	index    *rtreego.Rtree
	version  uint64

	viewport geom.Transform
	width    float64
	height   float64

	nextListenerID int
	elemListeners  []*elementListener
	viewportSubs   map[int]func(geom.Transform)
	resizeSubs     map[int]func(w, h float64)
	renderSubs     map[int]func()
	destroySubs    map[int]func()
	onceQueue      []*onceTick

	resizeDebounce func(func())
	destroyed      bool
}

var _ host.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithResizeDebounce coalesces resize bursts: listeners are notified
// once, d after the last call. A zero duration keeps resize synchronous,
// which is what the tests use.
func WithResizeDebounce(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.resizeDebounce = debounce.New(d)
		}
	}
}

// WithSize sets the initial viewport size.
func WithSize(w, hgt float64) Option {
	return func(h *Host) {
		h.width, h.height = w, hgt
	}
}

// New creates an empty host with an identity viewport.
func New(opts ...Option) *Host {
	h := &Host{
		byID:         make(map[string]*Element),
		entries:      make(map[string]*spatialEntry),
		index:        rtreego.NewTree(2, 25, 50),
		viewport:     geom.Identity(),
		width:        800,
		height:       600,
		viewportSubs: make(map[int]func(geom.Transform)),
		resizeSubs:   make(map[int]func(w, h float64)),
		renderSubs:   make(map[int]func()),
		destroySubs:  make(map[int]func()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func matchSelector(selector string, e *Element) bool {
	switch {
	case selector == "" || selector == "*":
		return true
	case selector[0] == '#':
		return e.id == selector[1:]
	case selector[0] == '.':
		return e.hasClass(selector[1:])
	default:
		return e.id == selector
	}
}

// =============================================================================
// Collection
// =============================================================================

// Query implements [host.Collection].
func (h *Host) Query(selector string) []host.Element {
	var out []host.Element
	for _, e := range h.elements {
		if matchSelector(selector, e) {
			out = append(out, e)
		}
	}
	return out
}

// Version implements [host.Collection].
func (h *Host) Version() uint64 { return h.version }

// QueryRegion returns the elements whose bounding boxes intersect the
// given graph-coordinate region, via the spatial index.
func (h *Host) QueryRegion(r geom.Rect) []host.Element {
	bounds, err := indexRect(r)
	if err != nil {
		return nil
	}
	hits := h.index.SearchIntersect(bounds)
	out := make([]host.Element, 0, len(hits))
	for _, s := range hits {
		out = append(out, s.(*spatialEntry).el)
	}
	return out
}

// Viewport implements [host.Host].
func (h *Host) Viewport() geom.Transform { return h.viewport }

// Size implements [host.Host].
func (h *Host) Size() (w, hgt float64) { return h.width, h.height }

// =============================================================================
// Mutation
// =============================================================================

// AddElement adds an element to the collection, bumps the version, and
// notifies matching add listeners.
func (h *Host) AddElement(e *Element) {
	if h.destroyed || e == nil {
		return
	}
	if _, dup := h.byID[e.id]; dup {
		return
	}
	h.elements = append(h.elements, e)
	h.byID[e.id] = e
	h.indexElement(e)
	h.version++
	h.dispatchElement(host.EventAdd, e)
}

// RemoveElement removes the element with the given ID, bumps the
// version, and notifies matching remove listeners. Unknown IDs are
// ignored.
func (h *Host) RemoveElement(id string) {
	e, ok := h.byID[id]
	if h.destroyed || !ok {
		return
	}
	delete(h.byID, id)
	for i, cur := range h.elements {
		if cur == e {
			h.elements = append(h.elements[:i], h.elements[i+1:]...)
			break
		}
	}
	h.unindexElement(e)
	e.removed = true
	h.version++
	h.dispatchElement(host.EventRemove, e)
}

// MoveElement updates an element's position, bumps the version, and
// notifies matching position listeners.
func (h *Host) MoveElement(id string, pos geom.Point) {
	e, ok := h.byID[id]
	if h.destroyed || !ok {
		return
	}
	h.unindexElement(e)
	e.pos = pos
	h.indexElement(e)
	h.version++
	h.dispatchElement(host.EventPosition, e)
}

// SetViewport updates the pan/zoom transform and notifies viewport
// listeners. An unchanged transform is a no-op.
func (h *Host) SetViewport(t geom.Transform) {
	if h.destroyed || h.viewport.Eq(t) {
		return
	}
	h.viewport = t
	for _, fn := range h.snapshotViewportSubs() {
		fn(t)
	}
}

// Resize updates the viewport size and notifies resize listeners,
// through the debouncer when one is configured.
func (h *Host) Resize(w, hgt float64) {
	if h.destroyed || (h.width == w && h.height == hgt) {
		return
	}
	h.width, h.height = w, hgt
	notify := func() {
		for _, fn := range h.snapshotResizeSubs() {
			fn(w, hgt)
		}
	}
	if h.resizeDebounce != nil {
		h.resizeDebounce(notify)
		return
	}
	notify()
}

// Tick runs one render tick: scheduled one-shot listeners first (each
// exactly once), then every persistent render listener.
func (h *Host) Tick() {
	if h.destroyed {
		return
	}
	queue := h.onceQueue
	h.onceQueue = nil
	for _, entry := range queue {
		if !entry.cancelled {
			entry.fn()
		}
	}
	for _, fn := range h.snapshotRenderSubs() {
		fn()
	}
}

// Destroy notifies destroy listeners and drops all state. Further
// mutations are no-ops.
func (h *Host) Destroy() {
	if h.destroyed {
		return
	}
	h.destroyed = true
	subs := make([]func(), 0, len(h.destroySubs))
	for _, fn := range h.destroySubs {
		subs = append(subs, fn)
	}
	for _, fn := range subs {
		fn()
	}
	h.elements = nil
	h.byID = map[string]*Element{}
	h.entries = map[string]*spatialEntry{}
	h.elemListeners = nil
	h.onceQueue = nil
}

func (h *Host) indexElement(e *Element) {
	bounds, err := indexRect(e.BBox(host.BoxOptions{}))
	if err != nil {
		return
	}
	entry := &spatialEntry{el: e, bounds: bounds}
	h.entries[e.id] = entry
	h.index.Insert(entry)
}

func (h *Host) unindexElement(e *Element) {
	if entry, ok := h.entries[e.id]; ok {
		h.index.Delete(entry)
		delete(h.entries, e.id)
	}
}

func (h *Host) dispatchElement(ev host.Event, e *Element) {
	// Snapshot first: a listener may unsubscribe (or subscribe) during
	// dispatch, and already-queued notifications still fire.
	listeners := make([]*elementListener, len(h.elemListeners))
	copy(listeners, h.elemListeners)
	for _, l := range listeners {
		if l.event == ev && matchSelector(l.selector, e) {
			l.fn(e)
		}
	}
}

// =============================================================================
// EventSource
// =============================================================================

// On implements [host.EventSource].
func (h *Host) On(event host.Event, selector string, fn func(host.Element)) (unsub func()) {
	h.nextListenerID++
	l := &elementListener{id: h.nextListenerID, event: event, selector: selector, fn: fn}
	h.elemListeners = append(h.elemListeners, l)
	return func() {
		for i, cur := range h.elemListeners {
			if cur == l {
				h.elemListeners = append(h.elemListeners[:i], h.elemListeners[i+1:]...)
				return
			}
		}
	}
}

// OnViewport implements [host.EventSource].
func (h *Host) OnViewport(fn func(geom.Transform)) (unsub func()) {
	h.nextListenerID++
	id := h.nextListenerID
	h.viewportSubs[id] = fn
	return func() { delete(h.viewportSubs, id) }
}

// OnResize implements [host.EventSource].
func (h *Host) OnResize(fn func(w, h float64)) (unsub func()) {
	h.nextListenerID++
	id := h.nextListenerID
	h.resizeSubs[id] = fn
	return func() { delete(h.resizeSubs, id) }
}

// OnRender implements [host.EventSource].
func (h *Host) OnRender(fn func()) (unsub func()) {
	h.nextListenerID++
	id := h.nextListenerID
	h.renderSubs[id] = fn
	return func() { delete(h.renderSubs, id) }
}

// OnceRenderTick implements [host.EventSource].
func (h *Host) OnceRenderTick(fn func()) (cancel func()) {
	entry := &onceTick{fn: fn}
	h.onceQueue = append(h.onceQueue, entry)
	return func() { entry.cancelled = true }
}

// OnDestroy implements [host.EventSource].
func (h *Host) OnDestroy(fn func()) (unsub func()) {
	h.nextListenerID++
	id := h.nextListenerID
	h.destroySubs[id] = fn
	return func() { delete(h.destroySubs, id) }
}

func (h *Host) snapshotViewportSubs() []func(geom.Transform) {
	out := make([]func(geom.Transform), 0, len(h.viewportSubs))
	for _, fn := range h.viewportSubs {
		out = append(out, fn)
	}
	return out
}

func (h *Host) snapshotResizeSubs() []func(w, hgt float64) {
	out := make([]func(w, hgt float64), 0, len(h.resizeSubs))
	for _, fn := range h.resizeSubs {
		out = append(out, fn)
	}
	return out
}

func (h *Host) snapshotRenderSubs() []func() {
	out := make([]func(), 0, len(h.renderSubs))
	for _, fn := range h.renderSubs {
		out = append(out, fn)
	}
	return out
}
