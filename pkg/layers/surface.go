package layers

import (
	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
)

// Kind identifies the closed set of surface variants.
type Kind string

const (
	// KindCanvas is a raster drawing surface. Repaints clear and redraw
	// the whole surface; there are no persistent per-element targets.
	KindCanvas Kind = "canvas"

	// KindHTML is a retained node-tree surface with one persistent
	// target element per rendered graph element.
	KindHTML Kind = "html"

	// KindSVG is a retained vector-markup surface.
	KindSVG Kind = "svg"

	// KindHTMLStatic is an HTML surface that ignores the viewport
	// transform: a fixed, non-panning overlay.
	KindHTMLStatic Kind = "html-static"

	// KindSVGStatic is an SVG surface that ignores the viewport transform.
	KindSVGStatic Kind = "svg-static"
)

// ParseKind converts a kind name to a Kind, rejecting unknown names.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCanvas, KindHTML, KindSVG, KindHTMLStatic, KindSVGStatic:
		return Kind(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidKind, "unknown surface kind: %q", s)
	}
}

// Static reports whether the kind ignores viewport transforms.
func (k Kind) Static() bool {
	return k == KindHTMLStatic || k == KindSVGStatic
}

// Surface is one renderable overlay target owned by a [Stack].
//
// None of the operations can fail under normal conditions; calling them
// on an already-removed surface is a caller error and degrades to a
// no-op without corrupting sibling surfaces.
type Surface interface {
	// Kind returns the surface variant.
	Kind() Kind

	// Root returns the surface's root element. The root's position
	// among the stack container's children is the surface's z-order.
	Root() *dom.Element

	// Size returns the surface's current logical size.
	Size() (w, h float64)

	// Resize sets the surface size. Resizing to the current size is a
	// no-op; a real resize triggers a geometry-dependent repaint on
	// canvas surfaces.
	Resize(w, h float64)

	// SetTransform applies the shared viewport transform. Static
	// variants ignore the call entirely.
	SetTransform(t geom.Transform)

	// Transform returns the surface's effective transform. Static
	// variants always report the identity.
	Transform() geom.Transform

	// RequestUpdate schedules a repaint on the next render tick. For
	// canvas surfaces this redraws everything; for node surfaces it
	// re-runs each binding's reconciler, scoped to hint when the
	// binding supports incremental patches and hint is non-nil.
	RequestUpdate(hint host.Element)

	// RenderCapture runs a full export render pass synchronously:
	// bounds culling is bypassed so every participating element
	// renders, regardless of viewport visibility.
	RenderCapture()

	// Remove detaches the surface permanently, tearing down its
	// bindings. Removing twice is a no-op.
	Remove()

	// Removed reports whether the surface has been removed.
	Removed() bool

	// attach/teardown hooks used by Binding; keeping them unexported
	// closes the variant set per design.
	addBinding(b *Binding)
	dropBinding(b *Binding)
	bindingHost() host.Host
	targetParent() *dom.Element
}

// baseSurface carries the state shared by every variant.
type baseSurface struct {
	kind     Kind
	root     *dom.Element
	h        host.Host
	w, hgt   float64
	tr       geom.Transform
	bindings []*Binding
	removed  bool
}

func (s *baseSurface) Kind() Kind             { return s.kind }
func (s *baseSurface) Root() *dom.Element     { return s.root }
func (s *baseSurface) Size() (w, h float64)   { return s.w, s.hgt }
func (s *baseSurface) Removed() bool          { return s.removed }
func (s *baseSurface) bindingHost() host.Host { return s.h }

func (s *baseSurface) addBinding(b *Binding) {
	s.bindings = append(s.bindings, b)
}

func (s *baseSurface) dropBinding(b *Binding) {
	for i, cur := range s.bindings {
		if cur == b {
			s.bindings = append(s.bindings[:i], s.bindings[i+1:]...)
			return
		}
	}
}

// NodeSurface is the retained-tree surface behind [KindHTML],
// [KindSVG], and their static variants. Render targets are child
// elements of the surface's target parent; the viewport transform is a
// single 2D affine transform on the root.
type NodeSurface struct {
	baseSurface
	// targets attach here: the root itself for HTML, the inner group
	// for SVG (vector roots keep their own coordinate space).
	parent *dom.Element
	static bool
}

func newNodeSurface(h host.Host, kind Kind) *NodeSurface {
	var root, parent *dom.Element
	switch kind {
	case KindSVG, KindSVGStatic:
		root = dom.NewElement("svg")
		parent = dom.NewElement("g")
		root.AppendChild(parent)
	default:
		root = dom.NewElement("div")
		parent = root
	}
	s := &NodeSurface{
		baseSurface: baseSurface{kind: kind, root: root, h: h, tr: geom.Identity()},
		parent:      parent,
		static:      kind.Static(),
	}
	root.Data = s
	return s
}

// Resize implements [Surface]. Node surfaces only record the size; the
// retained tree needs no reallocation.
func (s *NodeSurface) Resize(w, h float64) {
	if s.removed || (s.w == w && s.hgt == h) {
		return
	}
	s.w, s.hgt = w, h
}

// SetTransform implements [Surface].
func (s *NodeSurface) SetTransform(t geom.Transform) {
	if s.removed || s.static || s.tr.Eq(t) {
		return
	}
	s.tr = t
	s.parent.SetTransform(t.CSS())
	// The transform moves targets for free, but a changed viewport can
	// change which bounds-checked elements are visible.
	for _, b := range s.bindings {
		if b.cfg.checkBounds {
			b.invalidate(false)
		}
	}
}

// Transform implements [Surface].
func (s *NodeSurface) Transform() geom.Transform {
	if s.static {
		return geom.Identity()
	}
	return s.tr
}

// RequestUpdate implements [Surface].
func (s *NodeSurface) RequestUpdate(hint host.Element) {
	if s.removed {
		return
	}
	for _, b := range s.bindings {
		b.requestUpdate(hint)
	}
}

// RenderCapture implements [Surface].
func (s *NodeSurface) RenderCapture() {
	if s.removed {
		return
	}
	for _, b := range s.bindings {
		b.reconcile(true)
	}
}

// Remove implements [Surface].
func (s *NodeSurface) Remove() {
	if s.removed {
		return
	}
	s.removed = true
	for _, b := range append([]*Binding(nil), s.bindings...) {
		b.Remove()
	}
	s.bindings = nil
	s.root.Remove()
}

func (s *NodeSurface) targetParent() *dom.Element { return s.parent }
