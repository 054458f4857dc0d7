package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glazework/glaze/pkg/scene"
)

// testScene is fully positioned so rendering never needs a layout pass.
const testScene = `
name = "pipeline"
width = 400
height = 300

[[node]]
id = "in"
label = "ingest"
x = 100
y = 100

[[node]]
id = "out"
label = "sink"
x = 300
y = 200

[[edge]]
from = "in"
to = "out"
`

func writeTestScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	if err := os.WriteFile(path, []byte(testScene), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	input := writeTestScene(t)
	output := filepath.Join(t.TempDir(), "out.svg")

	if err := c.runRender(context.Background(), input, output, "svg", "", 2); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "<svg") {
		t.Error("output should be an SVG document")
	}
	if !strings.Contains(got, `data-element="in"`) || !strings.Contains(got, `data-element="out"`) {
		t.Error("output should contain a label target per node")
	}
	if !strings.Contains(got, "ingest") {
		t.Error("output should contain the node label text")
	}
}

func TestRunRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	input := writeTestScene(t)
	output := filepath.Join(t.TempDir(), "out.png")

	if err := c.runRender(context.Background(), input, output, "png", "#ffffff", 1); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output should be a PNG file")
	}
}

func TestRunRenderMissingScene(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	err := c.runRender(context.Background(), "nope.toml", "out.svg", "svg", "", 2)
	if err == nil {
		t.Fatal("expected error for missing scene file")
	}
}

func TestBuildStack(t *testing.T) {
	sc, err := scene.Load(writeTestScene(t))
	if err != nil {
		t.Fatal(err)
	}
	h, err := scene.Build(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}

	st, err := buildStack(h, nil)
	if err != nil {
		t.Fatalf("buildStack() error: %v", err)
	}
	// Default overlays: one shared canvas plus the label layer.
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2 surfaces", st.Len())
	}
}

func TestBuildStackFromOverlays(t *testing.T) {
	sc, err := scene.Load(writeTestScene(t))
	if err != nil {
		t.Fatal(err)
	}
	h, err := scene.Build(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}

	overlays := []scene.Overlay{
		{Kind: "canvas", Selector: ".edge", Shape: scene.ShapeLine},
		{Kind: "canvas", Selector: ".node", Shape: scene.ShapeDot, Color: "#1e6fd9"},
		{Kind: "svg", Selector: ".node", Shape: scene.ShapeLabel, Position: scene.PositionCenter},
		{Kind: "canvas", Selector: "*", Shape: scene.ShapeBox},
	}
	st, err := buildStack(h, overlays)
	if err != nil {
		t.Fatalf("buildStack() error: %v", err)
	}
	// The two leading canvas overlays share a surface; the one after
	// the svg layer gets its own.
	if st.Len() != 3 {
		t.Errorf("Len() = %d, want 3 surfaces", st.Len())
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input  string
		format string
		want   string
	}{
		{"scene.toml", "svg", "scene.svg"},
		{"scene.json", "png", "scene.png"},
		{"dir/scene.toml", "png", "dir/scene.png"},
		{"scene", "svg", "scene.svg"},
	}

	for _, tt := range tests {
		if got := defaultOutput(tt.input, tt.format); got != tt.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}
