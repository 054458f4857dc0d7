// Package dom provides the minimal retained element tree that surfaces
// and render targets live in.
//
// The real element APIs (a browser DOM, an SVG document) are external
// collaborators; this package models just enough of their contract for
// the overlay core: ordered children, attributes, a transform slot, and
// an opaque back-reference used for stack introspection. Child order is
// the single source of truth for visual stacking order - nothing in the
// core caches a copy of it.
//
// Everything here is single-threaded by design: elements are only
// mutated from host callbacks, so there is no locking.
package dom

import (
	"fmt"
	"slices"
	"strings"
)

// Element is one node in the retained tree. The zero value is not
// usable; create elements with [NewElement].
type Element struct {
	tag       string
	attrs     map[string]string
	transform string
	text      string
	children  []*Element
	parent    *Element

	// Data is an opaque back-reference from a root element to whatever
	// owns it. The stack uses it to map container children back to
	// surfaces during enumeration.
	Data any
}

// NewElement creates a detached element with the given tag.
func NewElement(tag string) *Element {
	return &Element{tag: tag, attrs: make(map[string]string)}
}

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Parent returns the element's current parent, or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the element's children in visual order. The returned
// slice is a copy; mutating it does not affect the tree.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// ChildCount returns the number of children without copying.
func (e *Element) ChildCount() int { return len(e.children) }

// Index returns the position of child among e's children, or -1 if
// child is not a child of e.
func (e *Element) Index(child *Element) int {
	return slices.Index(e.children, child)
}

// ChildAt returns the child at position i, or nil when out of range.
func (e *Element) ChildAt(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// AppendChild detaches child from its current parent and appends it as
// e's last (front-most) child.
func (e *Element) AppendChild(child *Element) {
	child.Remove()
	child.parent = e
	e.children = append(e.children, child)
}

// InsertBefore detaches child from its current parent and inserts it
// immediately before ref among e's children. A nil ref appends, which
// matches the DOM contract.
func (e *Element) InsertBefore(child, ref *Element) {
	if ref == nil {
		e.AppendChild(child)
		return
	}
	child.Remove()
	i := slices.Index(e.children, ref)
	if i < 0 {
		// ref is not ours; fall back to append rather than corrupt order.
		child.parent = e
		e.children = append(e.children, child)
		return
	}
	child.parent = e
	e.children = slices.Insert(e.children, i, child)
}

// Remove detaches e from its parent. Removing an already-detached
// element is a no-op.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, e); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}

// SetAttr sets an attribute value.
func (e *Element) SetAttr(key, value string) {
	e.attrs[key] = value
}

// Attr returns an attribute value, or "" when unset.
func (e *Element) Attr(key string) string { return e.attrs[key] }

// DelAttr removes an attribute.
func (e *Element) DelAttr(key string) { delete(e.attrs, key) }

// AttrNames returns the element's attribute names in sorted order, for
// deterministic serialization.
func (e *Element) AttrNames() []string {
	names := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// SetTransform sets the element's 2D transform string.
func (e *Element) SetTransform(t string) { e.transform = t }

// Transform returns the element's current transform string.
func (e *Element) Transform() string { return e.transform }

// SetText sets the element's text content.
func (e *Element) SetText(s string) { e.text = s }

// Text returns the element's text content.
func (e *Element) Text() string { return e.text }

// String renders the element and its subtree as markup. Intended for
// debugging and tests, not for export; the snapshot package owns real
// serialization.
func (e *Element) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Element) write(b *strings.Builder) {
	fmt.Fprintf(b, "<%s", e.tag)
	for _, k := range e.AttrNames() {
		fmt.Fprintf(b, " %s=%q", k, e.attrs[k])
	}
	if e.transform != "" {
		fmt.Fprintf(b, " transform=%q", e.transform)
	}
	if len(e.children) == 0 && e.text == "" {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	b.WriteString(e.text)
	for _, c := range e.children {
		c.write(b)
	}
	fmt.Fprintf(b, "</%s>", e.tag)
}
