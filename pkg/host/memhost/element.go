package memhost

import (
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
)

// Element is a concrete in-memory graph element. Fields are set at
// construction; geometry changes go through [Host.MoveElement] so the
// collection version and spatial index stay consistent.
type Element struct {
	id      string
	classes []string
	label   string

	pos  geom.Point
	w, h float64
	// extra margin the bounding box grows by when labels are included
	labelPad float64

	removed bool
}

// NewElement creates an element centered on pos with the given body size.
func NewElement(id string, pos geom.Point, w, h float64) *Element {
	return &Element{id: id, pos: pos, w: w, h: h}
}

// WithClasses attaches selector classes and returns the element.
func (e *Element) WithClasses(classes ...string) *Element {
	e.classes = append(e.classes, classes...)
	return e
}

// WithLabel attaches a display label and the bounding-box padding it
// contributes when label inclusion is requested.
func (e *Element) WithLabel(label string, pad float64) *Element {
	e.label = label
	e.labelPad = pad
	return e
}

// ID implements [host.Element].
func (e *Element) ID() string { return e.id }

// Label returns the element's display label, if any.
func (e *Element) Label() string { return e.label }

// Classes returns the element's selector classes.
func (e *Element) Classes() []string { return slices.Clone(e.classes) }

// Position implements [host.Element]. The position is the element's
// center in graph coordinates.
func (e *Element) Position() geom.Point { return e.pos }

// BBox implements [host.Element].
func (e *Element) BBox(opts host.BoxOptions) geom.Rect {
	r := geom.Rect{X: e.pos.X - e.w/2, Y: e.pos.Y - e.h/2, W: e.w, H: e.h}
	if opts.IncludeLabels && e.labelPad > 0 {
		r = geom.Rect{X: r.X - e.labelPad, Y: r.Y - e.labelPad, W: r.W + 2*e.labelPad, H: r.H + 2*e.labelPad}
	}
	return r
}

// Removed implements [host.Element].
func (e *Element) Removed() bool { return e.removed }

func (e *Element) hasClass(c string) bool {
	return slices.Contains(e.classes, c)
}

// spatialEntry adapts an element to the rtreego.Spatial interface with
// the bounds it was indexed under, so deletions find the right leaf
// after the element moves.
type spatialEntry struct {
	el     *Element
	bounds rtreego.Rect
}

func (s *spatialEntry) Bounds() rtreego.Rect { return s.bounds }

// indexRect converts a geometry rect to an rtreego rect. rtreego
// rejects non-positive extents, so degenerate boxes get a tiny one.
func indexRect(r geom.Rect) (rtreego.Rect, error) {
	const minExtent = 1e-9
	w, h := r.W, r.H
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	return rtreego.NewRect(rtreego.Point{r.X, r.Y}, []float64{w, h})
}
