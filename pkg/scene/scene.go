package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/layers"
)

// Scene is one declarative graph description.
type Scene struct {
	Name     string    `toml:"name" json:"name"`
	Width    float64   `toml:"width" json:"width"`
	Height   float64   `toml:"height" json:"height"`
	Viewport Viewport  `toml:"viewport" json:"viewport"`
	Nodes    []Node    `toml:"node" json:"nodes"`
	Edges    []Edge    `toml:"edge" json:"edges"`
	Overlays []Overlay `toml:"overlay" json:"overlays"`
}

// Viewport is the initial pan/zoom state. A zero Zoom means 1.
type Viewport struct {
	PanX float64 `toml:"pan_x" json:"pan_x"`
	PanY float64 `toml:"pan_y" json:"pan_y"`
	Zoom float64 `toml:"zoom" json:"zoom"`
}

// Node is one graph node. X and Y are optional; nodes without both
// coordinates are positioned by [AutoLayout].
type Node struct {
	ID      string   `toml:"id" json:"id"`
	Label   string   `toml:"label" json:"label"`
	Classes []string `toml:"classes" json:"classes"`
	X       *float64 `toml:"x" json:"x"`
	Y       *float64 `toml:"y" json:"y"`
	W       float64  `toml:"w" json:"w"`
	H       float64  `toml:"h" json:"h"`
}

// Positioned reports whether the node carries explicit coordinates.
func (n Node) Positioned() bool { return n.X != nil && n.Y != nil }

// Edge connects two nodes by ID.
type Edge struct {
	From    string   `toml:"from" json:"from"`
	To      string   `toml:"to" json:"to"`
	Classes []string `toml:"classes" json:"classes"`
}

// Overlay declares one surface plus the binding drawn on it. Scenes
// without overlays get the standard stack: edges and nodes on a canvas,
// centered labels on a vector layer above.
type Overlay struct {
	// Kind is the surface kind: canvas, html, svg, html-static or
	// svg-static. Empty means svg.
	Kind string `toml:"kind" json:"kind"`

	// Selector picks the participating elements. Empty means "*".
	Selector string `toml:"selector" json:"selector"`

	// Position anchors targets on node surfaces: none, top-left or
	// center. Canvas overlays ignore it.
	Position string `toml:"position" json:"position"`

	// Shape is what gets drawn per element: box, line, dot or label.
	// Empty means box. Labels are only valid on node surfaces.
	Shape string `toml:"shape" json:"shape"`

	// Color is the fill/stroke color as a hex string, e.g. "#1e6fd9".
	Color string `toml:"color" json:"color"`
}

// Overlay shape names.
const (
	ShapeBox   = "box"
	ShapeLine  = "line"
	ShapeDot   = "dot"
	ShapeLabel = "label"
)

// Overlay position names, mirroring the binding anchor modes.
const (
	PositionNone    = "none"
	PositionTopLeft = "top-left"
	PositionCenter  = "center"
)

// Defaults applied during validation.
const (
	defaultWidth      = 800
	defaultHeight     = 600
	defaultNodeWidth  = 60
	defaultNodeHeight = 40
)

// Load reads a scene file, picking the decoder by extension (.toml or
// .json), and validates it.
func Load(path string) (*Scene, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	var sc Scene
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format: %q", filepath.Ext(path))
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks identifiers and edge references and fills in size
// defaults. Nodes keep empty IDs; [Build] generates them.
func (sc *Scene) Validate() error {
	if sc.Width <= 0 {
		sc.Width = defaultWidth
	}
	if sc.Height <= 0 {
		sc.Height = defaultHeight
	}
	if sc.Viewport.Zoom == 0 {
		sc.Viewport.Zoom = 1
	}

	seen := make(map[string]bool, len(sc.Nodes))
	for i := range sc.Nodes {
		n := &sc.Nodes[i]
		if n.ID != "" {
			if err := errors.ValidateElementID(n.ID); err != nil {
				return err
			}
			if seen[n.ID] {
				return errors.New(errors.ErrCodeInvalidScene, "duplicate node ID %q", n.ID)
			}
			seen[n.ID] = true
		}
		if n.W <= 0 {
			n.W = defaultNodeWidth
		}
		if n.H <= 0 {
			n.H = defaultNodeHeight
		}
	}

	for i := range sc.Overlays {
		o := &sc.Overlays[i]
		if o.Kind == "" {
			o.Kind = string(layers.KindSVG)
		}
		if _, err := layers.ParseKind(o.Kind); err != nil {
			return err
		}
		if o.Selector == "" {
			o.Selector = "*"
		}
		if err := errors.ValidateSelector(o.Selector); err != nil {
			return err
		}
		if o.Position == "" {
			o.Position = PositionNone
		}
		switch o.Position {
		case PositionNone, PositionTopLeft, PositionCenter:
		default:
			return errors.New(errors.ErrCodeInvalidScene, "unknown overlay position %q", o.Position)
		}
		if o.Shape == "" {
			o.Shape = ShapeBox
		}
		switch o.Shape {
		case ShapeBox, ShapeLine, ShapeDot, ShapeLabel:
		default:
			return errors.New(errors.ErrCodeInvalidScene, "unknown overlay shape %q", o.Shape)
		}
		if o.Shape == ShapeLabel && o.Kind == string(layers.KindCanvas) {
			return errors.New(errors.ErrCodeInvalidScene, "label overlays require a node surface")
		}
	}

	for _, e := range sc.Edges {
		if e.From == "" || e.To == "" {
			return errors.New(errors.ErrCodeInvalidScene, "edge missing endpoint: %q -> %q", e.From, e.To)
		}
		if !seen[e.From] {
			return errors.New(errors.ErrCodeInvalidScene, "edge references unknown node %q", e.From)
		}
		if !seen[e.To] {
			return errors.New(errors.ErrCodeInvalidScene, "edge references unknown node %q", e.To)
		}
	}
	return nil
}

// NeedsLayout reports whether any node lacks explicit coordinates.
func (sc *Scene) NeedsLayout() bool {
	for _, n := range sc.Nodes {
		if !n.Positioned() {
			return true
		}
	}
	return false
}

// Node returns the node with the given ID, or nil.
func (sc *Scene) Node(id string) *Node {
	for i := range sc.Nodes {
		if sc.Nodes[i].ID == id {
			return &sc.Nodes[i]
		}
	}
	return nil
}

func (sc *Scene) String() string {
	return fmt.Sprintf("scene %q: %d nodes, %d edges", sc.Name, len(sc.Nodes), len(sc.Edges))
}
