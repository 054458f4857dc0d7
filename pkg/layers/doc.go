// Package layers implements the overlay rendering core: an ordered
// stack of render surfaces pinned to a host graph view, and the
// reconciliation engine that keeps per-element render targets congruent
// with the host's element collection.
//
// # Architecture
//
// Three pieces cooperate:
//
//   - [Surface]: one renderable target - a canvas (raster drawing), an
//     HTML-like retained node tree, or an SVG-like vector tree - that
//     applies the shared viewport transform. Static variants never move
//     with pan/zoom.
//   - [Stack]: an ordered back-to-front sequence of surfaces inside one
//     container element. The container's child order IS the z-order;
//     enumeration derives from it on every call, so reorder operations
//     can never desynchronize visual order from logical order.
//   - [Binding]: the reconciler attaching a participation query and a
//     per-element render callback to a surface, with enter/update/exit
//     semantics, optional stable keyed identity, incremental partial
//     updates, and viewport-bounds culling.
//
// [Bridge] connects a [host.Host] to a stack, fanning out viewport and
// resize events and tearing the stack down with the host.
//
// # Batching
//
// Invalidations never run work synchronously. Every trigger - element
// add/remove, geometry event, viewport change on a canvas - sets a
// pending flag and schedules an idempotent one-shot listener on the
// host's next render tick. However many invalidating events arrive
// before that tick, each binding reconciles at most once and each
// surface repaints at most once per tick. Removing a binding or surface
// cancels its scheduled one-shot; a one-shot that fires anyway detects
// teardown and becomes a no-op.
//
// # Concurrency
//
// The package is single-threaded by contract: every entry point runs on
// the host's event-dispatch goroutine. There are no locks; the
// discipline is "mutate only in response to a host callback".
//
// # Usage
//
//	container := dom.NewElement("div")
//	stack, _ := layers.NewStack(h, container)
//	bridge := layers.Attach(h, stack)
//	defer bridge.Close()
//
//	svg, _ := stack.Append(layers.KindSVG)
//	binding, _ := layers.RenderPerElement(svg, renderNode,
//	    layers.WithSelector(".annotation"),
//	    layers.WithPosition(layers.PositionCenter),
//	    layers.WithUniqueElements(),
//	    layers.WithPartialUpdate(),
//	)
//	defer binding.Remove()
package layers
