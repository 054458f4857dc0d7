package snapshot

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"

	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
	"github.com/glazework/glaze/pkg/host/memhost"
	"github.com/glazework/glaze/pkg/layers"
)

// newTestStack builds a host with two elements, a canvas surface
// filling element bounds, and an SVG surface with one target per
// element.
func newTestStack(t *testing.T) (*memhost.Host, *layers.Stack) {
	t.Helper()
	h := memhost.New(memhost.WithSize(400, 300))
	h.AddElement(memhost.NewElement("a", geom.Point{X: 100, Y: 100}, 20, 20))
	h.AddElement(memhost.NewElement("b", geom.Point{X: 5000, Y: 5000}, 20, 20))

	st, err := layers.NewStack(h, dom.NewElement("div"))
	if err != nil {
		t.Fatalf("NewStack() error = %v", err)
	}

	canvas, err := st.Append(layers.KindCanvas)
	if err != nil {
		t.Fatalf("Append(canvas) error = %v", err)
	}
	if _, err := layers.DrawPerElement(canvas, func(gc *gg.Context, _ host.Element, bounds geom.Rect) {
		gc.SetRGB(1, 0, 0)
		gc.DrawRectangle(bounds.X, bounds.Y, bounds.W, bounds.H)
		gc.Fill()
	}); err != nil {
		t.Fatalf("DrawPerElement() error = %v", err)
	}

	svgSurface, err := st.Append(layers.KindSVG)
	if err != nil {
		t.Fatalf("Append(svg) error = %v", err)
	}
	if _, err := layers.RenderPerElement(svgSurface, func(target *dom.Element, e host.Element, _ geom.Rect) {
		target.SetAttr("class", "marker")
	}, layers.WithUniqueElements(), layers.WithPosition(layers.PositionCenter)); err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}
	return h, st
}

func TestRenderSVG(t *testing.T) {
	_, st := newTestStack(t)

	out, err := RenderSVG(st)
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	doc := string(out)

	if !strings.Contains(doc, "<svg") || !strings.Contains(doc, "</svg>") {
		t.Fatal("output is not an SVG document")
	}
	if !strings.Contains(doc, "data:image/png;base64,") {
		t.Error("canvas raster missing from SVG output")
	}
	// Capture passes bypass culling, so the offscreen element exports too.
	for _, id := range []string{"a", "b"} {
		if !strings.Contains(doc, `data-element="`+id+`"`) {
			t.Errorf("element %q missing from SVG output", id)
		}
	}
	if !strings.Contains(doc, `transform="translate(5000,5000)"`) {
		t.Error("center anchor transform missing from SVG output")
	}
}

func TestRenderSVGBackground(t *testing.T) {
	_, st := newTestStack(t)

	out, err := RenderSVG(st, WithBackground("#ffffff"))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(out), "fill:#ffffff") {
		t.Error("background rect missing from SVG output")
	}
}

func TestRenderSVGEmbedsHTMLSurfaces(t *testing.T) {
	h := memhost.New()
	h.AddElement(memhost.NewElement("a", geom.Point{X: 10, Y: 10}, 4, 4).WithLabel("hello", 2))
	st, _ := layers.NewStack(h, dom.NewElement("div"))
	s, _ := st.Append(layers.KindHTML)
	if _, err := layers.RenderPerElement(s, func(target *dom.Element, e host.Element, _ geom.Rect) {
		target.SetText("hello")
	}, layers.WithUniqueElements()); err != nil {
		t.Fatalf("RenderPerElement() error = %v", err)
	}

	out, err := RenderSVG(st)
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, "<foreignObject") {
		t.Error("HTML surface not wrapped in foreignObject")
	}
	if !strings.Contains(doc, "hello") {
		t.Error("target text missing from SVG output")
	}
}

func TestRenderPNG(t *testing.T) {
	_, st := newTestStack(t)

	out, err := RenderPNG(st, WithScale(2))
	if err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("bounds = %v, want 800x600", b)
	}
	// Element center (100,100) lands at (200,200) after 2x scaling.
	if _, _, _, a := img.At(200, 200).RGBA(); a == 0 {
		t.Error("pixel at element center is transparent, want painted")
	}
}

func TestRenderPNGBackground(t *testing.T) {
	_, st := newTestStack(t)

	out, err := RenderPNG(st, WithScale(1), WithPNGBackground("#0000ff"))
	if err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if _, _, b, _ := img.At(0, 0).RGBA(); b == 0 {
		t.Error("background pixel has no blue channel, want filled")
	}
}

func TestWriteFiles(t *testing.T) {
	_, st := newTestStack(t)
	dir := t.TempDir()

	svgPath := filepath.Join(dir, "out.svg")
	if err := WriteSVG(st, svgPath); err != nil {
		t.Fatalf("WriteSVG() error = %v", err)
	}
	pngPath := filepath.Join(dir, "out.png")
	if err := WritePNG(st, pngPath, WithScale(1)); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}

	if err := WriteSVG(st, ""); err == nil {
		t.Error("WriteSVG(empty path) error = nil, want error")
	}
}
