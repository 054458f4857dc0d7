package layers

import (
	"testing"

	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
	"github.com/glazework/glaze/pkg/host/memhost"
)

func newTestSurface(t *testing.T, h *memhost.Host, kind Kind) Surface {
	t.Helper()
	st, err := NewStack(h, dom.NewElement("div"))
	if err != nil {
		t.Fatalf("NewStack() error = %v", err)
	}
	Attach(h, st)
	s, err := st.Append(kind)
	if err != nil {
		t.Fatalf("Append(%v) error = %v", kind, err)
	}
	return s
}

func TestRenderPerElementValidation(t *testing.T) {
	h := memhost.New()
	svg := newTestSurface(t, h, KindSVG)
	canvas := newTestSurface(t, h, KindCanvas)
	noop := func(*dom.Element, host.Element, geom.Rect) {}

	tests := []struct {
		name    string
		surface Surface
		render  RenderFunc
		opts    []BindingOption
		want    errors.Code
	}{
		{"nil surface", nil, noop, nil, errors.ErrCodeRemoved},
		{"canvas surface", canvas, noop, nil, errors.ErrCodeInvalidOption},
		{"nil render", svg, nil, nil, errors.ErrCodeInvalidOption},
		{"bad selector", svg, noop, []BindingOption{WithSelector("")}, errors.ErrCodeInvalidSelector},
		{"partial with query-each-time", svg, noop, []BindingOption{WithPartialUpdate(), WithQueryEachTime()}, errors.ErrCodeInvalidOption},
		{"partial with update-on-render", svg, noop, []BindingOption{WithPartialUpdate(), WithUpdateOn(host.UpdateRender)}, errors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderPerElement(tt.surface, tt.render, tt.opts...)
			if errors.GetCode(err) != tt.want {
				t.Errorf("RenderPerElement() code = %v, want %v", errors.GetCode(err), tt.want)
			}
		})
	}
}

func TestRenderPerElementInitialPass(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 10, Y: 10}, 20, 20))
	h.AddElement(memhost.NewElement("b", geom.Point{X: 50, Y: 50}, 20, 20))
	s := newTestSurface(t, h, KindSVG)

	var rendered []string
	b, err := RenderPerElement(s, func(target *dom.Element, e host.Element, bounds geom.Rect) {
		rendered = append(rendered, e.ID())
	}, WithUniqueElements())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}

	// Targets exist before any tick.
	if len(rendered) != 2 {
		t.Fatalf("rendered %v before first tick, want both elements", rendered)
	}
	if b.Target("a") == nil || b.Target("b") == nil {
		t.Error("Target() = nil for participating element")
	}
	if got := b.Target("a").Attr("data-element"); got != "a" {
		t.Errorf("data-element = %q, want %q", got, "a")
	}
}

func TestBindingBatchesInvalidations(t *testing.T) {
	h := memhost.New()
	s := newTestSurface(t, h, KindHTML)

	passes := 0
	_, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {
		passes++
	}, WithUniqueElements())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}

	h.AddElement(memhost.NewElement("a", geom.Point{X: 1, Y: 1}, 2, 2))
	h.AddElement(memhost.NewElement("b", geom.Point{X: 2, Y: 2}, 2, 2))
	h.AddElement(memhost.NewElement("c", geom.Point{X: 3, Y: 3}, 2, 2))
	if passes != 0 {
		t.Fatalf("rendered %d times before tick, want 0", passes)
	}

	h.Tick()
	if passes != 3 {
		t.Errorf("rendered %d elements after one tick, want 3", passes)
	}

	// Quiet tick: nothing scheduled, nothing renders.
	h.Tick()
	if passes != 3 {
		t.Errorf("rendered %d elements after quiet tick, want 3", passes)
	}
}

func TestBindingUniqueKeepsTargetIdentity(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 10, Y: 10}, 4, 4))
	s := newTestSurface(t, h, KindSVG)

	b, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {},
		WithUniqueElements(), WithUpdateOn("position"))
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	before := b.Target("a")

	h.MoveElement("a", geom.Point{X: 90, Y: 90})
	h.Tick()

	if after := b.Target("a"); after != before {
		t.Error("target identity changed across a geometry update")
	}
}

func TestBindingNonUniqueRecreatesTargets(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 10, Y: 10}, 4, 4))
	s := newTestSurface(t, h, KindSVG)

	b, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {})
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	before := b.Target("a")
	if before == nil {
		t.Fatal("Target() = nil after initial pass")
	}

	// A membership change invalidates the whole pass.
	h.AddElement(memhost.NewElement("b", geom.Point{X: 20, Y: 20}, 4, 4))
	h.Tick()

	if after := b.Target("a"); after == before {
		t.Error("target identity survived a full re-render without unique elements")
	}
}

func TestBindingPartialUpdate(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 10, Y: 10}, 4, 4))
	s := newTestSurface(t, h, KindHTML)

	inits := 0
	b, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {},
		WithPartialUpdate(),
		WithInit(func(*dom.Element, host.Element, geom.Rect) { inits++ }))
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	existing := b.Target("a")
	if inits != 1 {
		t.Fatalf("init ran %d times after initial pass, want 1", inits)
	}

	// The add patches in one new target; the sibling is untouched.
	h.AddElement(memhost.NewElement("b", geom.Point{X: 20, Y: 20}, 4, 4))
	h.Tick()
	if b.Target("a") != existing {
		t.Error("existing target recreated by a partial add")
	}
	if b.Target("b") == nil {
		t.Error("Target(b) = nil after partial add")
	}
	if inits != 2 {
		t.Errorf("init ran %d times, want 2", inits)
	}

	// Removes apply immediately, no tick required.
	h.RemoveElement("a")
	if b.Target("a") != nil {
		t.Error("Target(a) != nil after remove")
	}
	if b.Target("b") == nil {
		t.Error("sibling target dropped by an unrelated remove")
	}
	if existing.Parent() != nil {
		t.Error("removed target still attached to the surface")
	}
}

func TestBindingBoundsCulling(t *testing.T) {
	h := memhost.New() // 800x600, identity viewport
	h.AddElement(memhost.NewElement("near", geom.Point{X: 100, Y: 100}, 20, 20))
	h.AddElement(memhost.NewElement("far", geom.Point{X: 5000, Y: 5000}, 20, 20))
	s := newTestSurface(t, h, KindSVG)

	var rendered []string
	b, err := RenderPerElement(s, func(_ *dom.Element, e host.Element, _ geom.Rect) {
		rendered = append(rendered, e.ID())
	}, WithUniqueElements(), WithBoundsCheck())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}

	if len(rendered) != 1 || rendered[0] != "near" {
		t.Errorf("rendered = %v, want [near]", rendered)
	}
	// The culled element keeps its target association.
	if b.Target("far") == nil {
		t.Error("Target(far) = nil, want an associated target despite culling")
	}

	// Capture passes bypass culling entirely.
	rendered = nil
	s.RenderCapture()
	if len(rendered) != 2 {
		t.Errorf("capture rendered = %v, want both elements", rendered)
	}
}

func TestBindingCullingFollowsViewport(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("far", geom.Point{X: 5000, Y: 5000}, 20, 20))
	s := newTestSurface(t, h, KindSVG)

	rendered := 0
	_, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {
		rendered++
	}, WithUniqueElements(), WithBoundsCheck())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	if rendered != 0 {
		t.Fatalf("rendered = %d with element off screen, want 0", rendered)
	}

	// Pan the viewport onto the element.
	h.SetViewport(geom.Transform{Pan: geom.Point{X: -4800, Y: -4800}, Zoom: 1})
	h.Tick()
	if rendered != 1 {
		t.Errorf("rendered = %d after panning to the element, want 1", rendered)
	}
}

func TestBindingAnchoring(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 10, Y: 20}, 30, 40))

	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"center", PositionCenter, "translate(10,20)"},
		{"top-left", PositionTopLeft, "translate(-5,0)"},
		{"none", PositionNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSurface(t, h, KindHTML)
			b, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {},
				WithUniqueElements(), WithPosition(tt.pos))
			if err != nil {
				t.Fatalf("RenderPerElement() error = %v", err)
			}
			if got := b.Target("a").Transform(); got != tt.want {
				t.Errorf("target transform = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBindingSelectorScoping(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("n1", geom.Point{X: 1, Y: 1}, 2, 2).WithClasses("node"))
	h.AddElement(memhost.NewElement("e1", geom.Point{X: 2, Y: 2}, 2, 2).WithClasses("edge"))
	s := newTestSurface(t, h, KindSVG)

	b, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {},
		WithUniqueElements(), WithSelector(".node"))
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	if b.Target("n1") == nil {
		t.Error("Target(n1) = nil, want a target for the matching class")
	}
	if b.Target("e1") != nil {
		t.Error("Target(e1) != nil, want no target outside the selector")
	}

	// Adds outside the selector never reach the binding.
	h.AddElement(memhost.NewElement("e2", geom.Point{X: 3, Y: 3}, 2, 2).WithClasses("edge"))
	h.Tick()
	if b.Target("e2") != nil {
		t.Error("Target(e2) != nil after non-matching add")
	}
}

func TestBindingQueryEachTime(t *testing.T) {
	h := memhost.New()
	s := newTestSurface(t, h, KindHTML)

	queries := 0
	_, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {},
		WithUniqueElements(), WithQueryEachTime(),
		WithInitCollection(func([]host.Element) { queries++ }))
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	if queries != 1 {
		t.Fatalf("queried %d times after initial pass, want 1", queries)
	}

	h.Tick()
	h.Tick()
	if queries != 3 {
		t.Errorf("queried %d times after two ticks, want 3", queries)
	}
}

func TestBindingUpdateOnRenderReconcilesEveryTick(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 1, Y: 1}, 2, 2))
	s := newTestSurface(t, h, KindHTML)

	passes := 0
	_, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {
		passes++
	}, WithUniqueElements(), WithUpdateOn(host.UpdateRender))
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	passes = 0

	// One pass per tick, even when an add also lands before the tick.
	h.AddElement(memhost.NewElement("b", geom.Point{X: 2, Y: 2}, 2, 2))
	h.Tick()
	if passes != 2 {
		t.Errorf("rendered %d elements on tick, want 2 (one pass)", passes)
	}
}

func TestBindingUpdateOnEventRequeries(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 10, Y: 10}, 4, 4))
	s := newTestSurface(t, h, KindSVG)

	queries := 0
	_, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {},
		WithUniqueElements(),
		WithUpdateOn("position"),
		WithInitCollection(func([]host.Element) { queries++ }))
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	if queries != 1 {
		t.Fatalf("queried %d times after creation, want 1", queries)
	}

	// A position event re-runs the participation query on the next
	// tick; a scoped selector's membership can change with geometry.
	h.MoveElement("a", geom.Point{X: 30, Y: 30})
	h.Tick()
	if queries != 2 {
		t.Errorf("queried %d times after position event, want 2", queries)
	}
}

func TestBindingRemove(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 1, Y: 1}, 2, 2))
	s := newTestSurface(t, h, KindSVG)

	passes := 0
	b, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {
		passes++
	}, WithUniqueElements())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	target := b.Target("a")

	b.Remove()
	if !b.Removed() {
		t.Fatal("Removed() = false after Remove")
	}
	if target.Parent() != nil {
		t.Error("target still attached after Remove")
	}

	// Listeners are gone: further host activity renders nothing.
	passes = 0
	h.AddElement(memhost.NewElement("b", geom.Point{X: 2, Y: 2}, 2, 2))
	h.Tick()
	if passes != 0 {
		t.Errorf("rendered %d times after Remove, want 0", passes)
	}

	b.Remove() // no-op
}

func TestBindingSurvivesTeardownRace(t *testing.T) {
	h := memhost.New()
	s := newTestSurface(t, h, KindHTML)

	b, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {},
		WithUniqueElements())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}

	// Schedule work, then tear down before the tick fires. The stale
	// one-shot must degrade to a no-op.
	h.AddElement(memhost.NewElement("a", geom.Point{X: 1, Y: 1}, 2, 2))
	s.Remove()
	h.Tick()

	if !b.Removed() {
		t.Error("binding survived surface removal")
	}
}

func TestSurfaceRemoveTearsDownAllBindings(t *testing.T) {
	h := memhost.New()
	s := newTestSurface(t, h, KindSVG)

	b1, _ := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {})
	b2, _ := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {})

	s.Remove()
	if !b1.Removed() || !b2.Removed() {
		t.Error("bindings survived surface removal")
	}
	s.Remove() // no-op
}

func TestStaticSurfaceIgnoresTransform(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 5000, Y: 5000}, 20, 20))
	s := newTestSurface(t, h, KindSVGStatic)

	rendered := 0
	_, err := RenderPerElement(s, func(*dom.Element, host.Element, geom.Rect) {
		rendered++
	}, WithUniqueElements(), WithBoundsCheck())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}

	// Static surfaces report identity, so culling sees the raw
	// viewport rectangle no matter how the host pans.
	h.SetViewport(geom.Transform{Pan: geom.Point{X: -4800, Y: -4800}, Zoom: 1})
	h.Tick()
	if rendered != 0 {
		t.Errorf("rendered = %d on a static surface after panning, want 0", rendered)
	}
	if !s.Transform().Eq(geom.Identity()) {
		t.Errorf("Transform() = %+v, want identity", s.Transform())
	}
}

func TestRequestUpdateWithHint(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 1, Y: 1}, 2, 2))
	h.AddElement(memhost.NewElement("b", geom.Point{X: 2, Y: 2}, 2, 2))
	s := newTestSurface(t, h, KindHTML)

	var rendered []string
	_, err := RenderPerElement(s, func(_ *dom.Element, e host.Element, _ geom.Rect) {
		rendered = append(rendered, e.ID())
	}, WithPartialUpdate())
	if err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	rendered = nil

	hint := h.Query("#a")[0]
	s.RequestUpdate(hint)
	h.Tick()
	if len(rendered) != 1 || rendered[0] != "a" {
		t.Errorf("rendered = %v after hinted update, want [a]", rendered)
	}

	// Without a hint the whole binding reconciles.
	rendered = nil
	s.RequestUpdate(nil)
	h.Tick()
	if len(rendered) != 2 {
		t.Errorf("rendered = %v after unhinted update, want both", rendered)
	}
}
