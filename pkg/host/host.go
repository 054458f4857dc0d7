// Package host declares the contract between the overlay core and the
// graph engine that owns the data.
//
// The host owns everything the core never computes itself: the element
// collection, positions and bounding boxes, the selector language, the
// viewport, and the event lifecycle. The core consumes read-only
// snapshots pushed through these interfaces and never reaches into host
// state by any other path, which keeps it testable without a live
// engine.
//
// The reference in-memory implementation lives in [memhost].
//
// [memhost]: github.com/glazework/glaze/pkg/host/memhost
package host

import "github.com/glazework/glaze/pkg/geom"

// Event names the element-scoped lifecycle events a host dispatches.
type Event string

const (
	// EventAdd fires when an element matching a listener's selector is
	// added to the collection.
	EventAdd Event = "add"

	// EventRemove fires when a matching element is removed.
	EventRemove Event = "remove"

	// EventPosition fires when a matching element's geometry changes.
	// Bindings opt into it via their update-on configuration.
	EventPosition Event = "position"
)

// UpdateOn values recognized by render bindings, beside concrete
// element events.
const (
	// UpdateNone disables event-driven cache invalidation entirely.
	UpdateNone = "none"

	// UpdateRender re-runs the participation query on every render tick.
	UpdateRender = "render"
)

// BoxOptions controls which parts of an element contribute to its
// bounding box. The host's geometry engine interprets the flags.
type BoxOptions struct {
	IncludeLabels   bool
	IncludeOverlays bool
}

// Element is one host-owned graph element as seen by the overlay core.
type Element interface {
	// ID returns the element's stable identity. Render targets in
	// unique-elements mode are keyed by it.
	ID() string

	// Position returns the element's anchor position in graph coordinates.
	Position() geom.Point

	// BBox returns the element's bounding box in graph coordinates,
	// computed under the given inclusion flags.
	BBox(opts BoxOptions) geom.Rect

	// Removed reports whether the element has left the collection.
	// A removed element must never be rendered, even if a stale event
	// still references it.
	Removed() bool
}

// Collection is the host's queryable, versioned element set.
type Collection interface {
	// Query returns the elements matching a selector, in host order.
	// A selector matching nothing returns an empty slice; that is a
	// valid (empty) render pass, not an error.
	Query(selector string) []Element

	// Version increases whenever the collection or any element's
	// geometry changes. Cached participation sets compare versions to
	// detect staleness.
	Version() uint64
}

// EventSource is the host's listener registry. Every registration
// returns an unsubscribe function; the core must call it on teardown so
// that removing a binding or surface detaches exactly its own listeners.
type EventSource interface {
	// On registers fn for an element-scoped event, filtered by selector.
	On(event Event, selector string, fn func(Element)) (unsub func())

	// OnViewport registers fn for pan/zoom changes.
	OnViewport(fn func(geom.Transform)) (unsub func())

	// OnResize registers fn for host viewport size changes.
	OnResize(fn func(w, h float64)) (unsub func())

	// OnRender registers fn to run on every render tick.
	OnRender(fn func()) (unsub func())

	// OnceRenderTick schedules fn to run exactly once, on the next
	// render tick. The cancel function deregisters it if the tick has
	// not fired yet; cancelling after the tick is a no-op.
	OnceRenderTick(fn func()) (cancel func())

	// OnDestroy registers fn for host teardown.
	OnDestroy(fn func()) (unsub func())
}

// Host is the complete collaborator contract the overlay core consumes.
type Host interface {
	Collection
	EventSource

	// Viewport returns the current pan/zoom transform.
	Viewport() geom.Transform

	// Size returns the host viewport size in pixels.
	Size() (w, h float64)
}
