package layers

import (
	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
	"github.com/glazework/glaze/pkg/observability"
)

// Where selects the insertion side for [Stack.Insert].
type Where string

const (
	// Before inserts the new surface behind the reference surface.
	Before Where = "before"

	// After inserts the new surface in front of the reference surface.
	After Where = "after"
)

// SurfaceOption configures surface creation.
type SurfaceOption func(*surfaceConfig)

type surfaceConfig struct {
	pixelRatio float64
}

// WithPixelRatio sets the canvas backing-store scale factor. Other
// surface kinds ignore it. The default is 1.
func WithPixelRatio(ratio float64) SurfaceOption {
	return func(c *surfaceConfig) { c.pixelRatio = ratio }
}

// Stack maintains the strict back-to-front order of surfaces inside
// one container element and fans global events out to every member.
//
// Order is derived from the container's live child list on every read;
// there is no cached copy that can desynchronize. The surface at index
// 0 is the back-most; appends go to the front.
type Stack struct {
	h         host.Host
	container *dom.Element
	w, hgt    float64
	tr        geom.Transform
	destroyed bool
}

// NewStack creates a stack operating inside the given container
// element, sized and transformed to the host's current viewport.
// Operating without a container is a caller error.
func NewStack(h host.Host, container *dom.Element) (*Stack, error) {
	if container == nil {
		return nil, errors.New(errors.ErrCodeNoContainer, "stack requires a container element")
	}
	w, hgt := h.Size()
	return &Stack{h: h, container: container, w: w, hgt: hgt, tr: h.Viewport()}, nil
}

// Container returns the shared container element.
func (st *Stack) Container() *dom.Element { return st.container }

func (st *Stack) newSurface(kind Kind, opts []SurfaceOption) (Surface, error) {
	cfg := surfaceConfig{pixelRatio: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	var s Surface
	switch kind {
	case KindCanvas:
		s = newCanvasSurface(st.h, cfg.pixelRatio)
	case KindHTML, KindSVG, KindHTMLStatic, KindSVGStatic:
		s = newNodeSurface(st.h, kind)
	default:
		return nil, errors.New(errors.ErrCodeInvalidKind, "unknown surface kind: %q", kind)
	}
	// New surfaces come out already sized and transformed to the
	// current viewport.
	s.Resize(st.w, st.hgt)
	s.SetTransform(st.tr)
	return s, nil
}

// Append creates a surface of the requested kind at the front-most
// position.
func (st *Stack) Append(kind Kind, opts ...SurfaceOption) (Surface, error) {
	s, err := st.newSurface(kind, opts)
	if err != nil {
		return nil, err
	}
	st.container.AppendChild(s.Root())
	observability.Stack().OnSurfaceAppended(string(kind), st.Len())
	return s, nil
}

// Insert creates a surface immediately adjacent to ref. Referencing a
// surface that does not belong to this stack is a caller error.
func (st *Stack) Insert(where Where, ref Surface, kind Kind, opts ...SurfaceOption) (Surface, error) {
	if ref == nil || ref.Root().Parent() != st.container {
		return nil, errors.New(errors.ErrCodeNotInStack, "reference surface does not belong to this stack")
	}
	if where != Before && where != After {
		return nil, errors.New(errors.ErrCodeInvalidOption, "invalid insert position: %q", where)
	}
	s, err := st.newSurface(kind, opts)
	if err != nil {
		return nil, err
	}
	switch where {
	case Before:
		st.container.InsertBefore(s.Root(), ref.Root())
	case After:
		i := st.container.Index(ref.Root())
		st.container.InsertBefore(s.Root(), st.container.ChildAt(i+1))
	}
	observability.Stack().OnSurfaceAppended(string(kind), st.Len())
	return s, nil
}

// Move relocates a surface by offset positions: negative toward the
// back, positive toward the front. The target position clamps to the
// valid range, and a move that lands on the current position is a
// no-op.
func (st *Stack) Move(s Surface, offset int) error {
	from := st.container.Index(s.Root())
	if from < 0 {
		return errors.New(errors.ErrCodeNotInStack, "surface does not belong to this stack")
	}
	n := st.container.ChildCount()
	to := from + offset
	if to < 0 {
		to = 0
	}
	if to > n-1 {
		to = n - 1
	}
	if to == from {
		return nil
	}
	root := s.Root()
	root.Remove()
	// After detaching, indexes past the old slot shift down by one.
	ref := st.container.ChildAt(to)
	st.container.InsertBefore(root, ref)
	observability.Stack().OnSurfaceMoved(string(s.Kind()), from, to)
	return nil
}

// Len returns the number of surfaces in the stack.
func (st *Stack) Len() int { return st.container.ChildCount() }

// Surfaces enumerates the stack back-to-front. The result is derived
// from the container's child order at call time.
func (st *Stack) Surfaces() []Surface {
	children := st.container.Children()
	out := make([]Surface, 0, len(children))
	for _, c := range children {
		if s, ok := c.Data.(Surface); ok {
			out = append(out, s)
		}
	}
	return out
}

// First returns the back-most surface, or nil when the stack is empty.
func (st *Stack) First() Surface {
	if c := st.container.ChildAt(0); c != nil {
		if s, ok := c.Data.(Surface); ok {
			return s
		}
	}
	return nil
}

// Last returns the front-most surface, or nil when the stack is empty.
func (st *Stack) Last() Surface {
	if c := st.container.ChildAt(st.container.ChildCount() - 1); c != nil {
		if s, ok := c.Data.(Surface); ok {
			return s
		}
	}
	return nil
}

// Remove removes a surface from the stack, tearing down its bindings.
// Removing a surface that is not (or no longer) in this stack is a
// no-op; sibling surfaces are untouched.
func (st *Stack) Remove(s Surface) {
	if s == nil || s.Root().Parent() != st.container {
		return
	}
	kind := s.Kind()
	s.Remove()
	observability.Stack().OnSurfaceRemoved(string(kind), st.Len())
}

// Resize broadcasts a new size to every surface, back to front.
func (st *Stack) Resize(w, h float64) {
	if st.destroyed || (st.w == w && st.hgt == h) {
		return
	}
	st.w, st.hgt = w, h
	for _, s := range st.Surfaces() {
		s.Resize(w, h)
	}
}

// SetTransform broadcasts the viewport transform to every surface,
// back to front. Static surfaces ignore it individually.
func (st *Stack) SetTransform(t geom.Transform) {
	if st.destroyed {
		return
	}
	st.tr = t
	for _, s := range st.Surfaces() {
		s.SetTransform(t)
	}
}

// Transform returns the stack's current viewport transform.
func (st *Stack) Transform() geom.Transform { return st.tr }

// Size returns the stack's current surface size.
func (st *Stack) Size() (w, h float64) { return st.w, st.hgt }

// RenderCapture runs an export render pass over every surface, back to
// front, bypassing bounds culling.
func (st *Stack) RenderCapture() {
	for _, s := range st.Surfaces() {
		s.RenderCapture()
	}
}

// Destroy removes every surface and marks the stack dead. Destroying
// twice is a no-op.
func (st *Stack) Destroy() {
	if st.destroyed {
		return
	}
	st.destroyed = true
	for _, s := range st.Surfaces() {
		s.Remove()
	}
}

// Destroyed reports whether the stack has been destroyed.
func (st *Stack) Destroyed() bool { return st.destroyed }
