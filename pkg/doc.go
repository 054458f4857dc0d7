// Package pkg provides the core libraries for Glaze overlay rendering.
//
// # Overview
//
// Glaze draws layered overlays on top of a graph: raster canvases for
// bulk shapes, retained node trees for interactive markup, stacked in a
// single container whose child order is the z-order. The pkg directory
// is organized into three main areas:
//
//  1. Core - geometry, DOM-like retained trees, the host contract
//  2. Layers - the surface stack and render bindings
//  3. Tooling - scenes, snapshot export, observability hooks
//
// # Architecture
//
// The typical data flow through Glaze:
//
//	Scene file (TOML/JSON)
//	         ↓
//	    [scene] package (load, validate, auto-layout)
//	         ↓
//	    [host/memhost] package (element collection + events)
//	         ↓
//	    [layers] package (stack, surfaces, bindings)
//	         ↓
//	    [snapshot] package (SVG/PNG export)
//
// # Quick Start
//
// Build a stack over a host and bind a render function per element:
//
//	h := memhost.New()
//	st, _ := layers.NewStack(h, dom.NewElement("div"))
//	layers.Attach(h, st)
//
//	s, _ := st.Append(layers.KindSVG)
//	layers.RenderPerElement(s, func(target *dom.Element, e host.Element, bounds geom.Rect) {
//	    // populate target for e
//	}, layers.WithSelector(".node"), layers.WithUniqueElements())
//
//	h.Tick()
//
// # Main Packages
//
// [geom] - Points, rects, and the pan/zoom transform shared by every
// layer of the system.
//
// [dom] - Minimal retained element trees. Surfaces own one root each;
// render targets are subtrees keyed by element identity.
//
// [host] - The contract between the overlay core and the graph engine
// that owns the data. [host/memhost] is the in-memory reference
// implementation backed by an R-tree spatial index.
//
// [layers] - The heart of Glaze: the surface stack with z-order
// derived from container child order, canvas surfaces with batched
// repaints, and bindings that reconcile render targets against query
// results with culling and anchoring.
//
// [scene] - Declarative scene files with Graphviz auto-layout for
// unpositioned nodes.
//
// [snapshot] - Capture-pass export to SVG (full fidelity) and PNG
// (raster surfaces).
//
// [observability] - Process-wide hook registries for stack mutations,
// reconcile passes, and exports.
//
// [errors] - Coded errors and input validation shared by all packages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/layers/...      # Specific package
//
// [geom]: https://pkg.go.dev/github.com/glazework/glaze/pkg/geom
// [dom]: https://pkg.go.dev/github.com/glazework/glaze/pkg/dom
// [host]: https://pkg.go.dev/github.com/glazework/glaze/pkg/host
// [host/memhost]: https://pkg.go.dev/github.com/glazework/glaze/pkg/host/memhost
// [layers]: https://pkg.go.dev/github.com/glazework/glaze/pkg/layers
// [scene]: https://pkg.go.dev/github.com/glazework/glaze/pkg/scene
// [snapshot]: https://pkg.go.dev/github.com/glazework/glaze/pkg/snapshot
// [observability]: https://pkg.go.dev/github.com/glazework/glaze/pkg/observability
// [errors]: https://pkg.go.dev/github.com/glazework/glaze/pkg/errors
package pkg
