package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/spf13/cobra"

	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
	"github.com/glazework/glaze/pkg/host/memhost"
	"github.com/glazework/glaze/pkg/layers"
	"github.com/glazework/glaze/pkg/scene"
	"github.com/glazework/glaze/pkg/snapshot"
)

// renderCommand creates the render command for exporting scenes.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		format     string
		background string
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Export a scene to SVG or PNG",
		Long: `Export a scene to SVG or PNG.

The render command loads a scene file (TOML or JSON), lays out any
unpositioned nodes, builds the layer stack, and exports it. Nodes are
drawn on a raster canvas layer; labels live on a vector layer above it,
so SVG exports keep selectable text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateOutputFormat(format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, strings.ToLower(format), background, scale)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: scene name with format extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg (default), png")
	cmd.Flags().StringVar(&background, "background", "", "background color, e.g. #ffffff (default: transparent)")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG resolution multiplier")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output, format, background string, scale float64) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	sc, err := scene.Load(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}
	logger.Debug("scene loaded", "nodes", len(sc.Nodes), "edges", len(sc.Edges))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", sc.Name))
	spinner.Start()

	h, err := scene.Build(ctx, sc)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("build scene: %w", err)
	}

	st, err := buildStack(h, sc.Overlays)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("build stack: %w", err)
	}
	h.Tick()

	if output == "" {
		output = defaultOutput(input, format)
	}
	switch format {
	case "png":
		err = snapshot.WritePNG(st, output, snapshot.WithScale(scale), snapshot.WithPNGBackground(background))
	default:
		var opts []snapshot.SVGOption
		if background != "" {
			opts = append(opts, snapshot.WithBackground(background))
		}
		err = snapshot.WriteSVG(st, output, opts...)
	}
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export: %w", err)
	}
	spinner.Stop()

	prog.done(fmt.Sprintf("Rendered %d elements", len(sc.Nodes)+len(sc.Edges)))
	printSuccess("Scene rendered")
	printFile(output)
	printStats(len(sc.Nodes), len(sc.Edges), st.Len())
	return nil
}

// defaultOutput derives the output path from the input path.
func defaultOutput(input, format string) string {
	base := strings.TrimSuffix(input, ".toml")
	base = strings.TrimSuffix(base, ".json")
	return base + "." + format
}

// buildStack assembles the render stack from the scene's overlay
// declarations. Scenes without overlays get the standard stack: edges
// and nodes on a canvas, centered labels on a vector layer above.
func buildStack(h *memhost.Host, overlays []scene.Overlay) (*layers.Stack, error) {
	if len(overlays) == 0 {
		overlays = defaultOverlays()
	}

	st, err := layers.NewStack(h, dom.NewElement("div"))
	if err != nil {
		return nil, err
	}
	layers.Attach(h, st)

	// Consecutive canvas overlays share one surface so they batch into
	// a single repaint.
	var canvas layers.Surface
	for _, o := range overlays {
		kind, err := layers.ParseKind(o.Kind)
		if err != nil {
			return nil, err
		}
		if kind == layers.KindCanvas {
			if canvas == nil {
				if canvas, err = st.Append(kind); err != nil {
					return nil, err
				}
			}
			if _, err := layers.DrawPerElement(canvas, canvasDraw(o), layers.WithSelector(o.Selector)); err != nil {
				return nil, err
			}
			continue
		}
		canvas = nil
		s, err := st.Append(kind)
		if err != nil {
			return nil, err
		}
		if _, err := layers.RenderPerElement(s, nodeRender(o),
			layers.WithSelector(o.Selector),
			layers.WithUniqueElements(),
			layers.WithPosition(anchor(o.Position))); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func defaultOverlays() []scene.Overlay {
	return []scene.Overlay{
		{Kind: string(layers.KindCanvas), Selector: ".edge", Shape: scene.ShapeLine},
		{Kind: string(layers.KindCanvas), Selector: ".node", Shape: scene.ShapeBox},
		{Kind: string(layers.KindSVG), Selector: ".node", Shape: scene.ShapeLabel, Position: scene.PositionCenter},
	}
}

func anchor(p string) layers.Position {
	switch p {
	case scene.PositionTopLeft:
		return layers.PositionTopLeft
	case scene.PositionCenter:
		return layers.PositionCenter
	default:
		return layers.PositionNone
	}
}

// canvasDraw builds the draw callback for one canvas overlay.
func canvasDraw(o scene.Overlay) layers.DrawFunc {
	return func(gc *gg.Context, _ host.Element, bounds geom.Rect) {
		switch o.Shape {
		case scene.ShapeLine:
			if o.Color != "" {
				gc.SetHexColor(o.Color)
			} else {
				gc.SetRGBA(0.4, 0.4, 0.45, 0.8)
			}
			gc.SetLineWidth(1)
			gc.DrawLine(bounds.X, bounds.Y, bounds.X+bounds.W, bounds.Y+bounds.H)
			gc.Stroke()
		case scene.ShapeDot:
			if o.Color != "" {
				gc.SetHexColor(o.Color)
			} else {
				gc.SetRGB(0.2, 0.2, 0.25)
			}
			gc.DrawCircle(bounds.X+bounds.W/2, bounds.Y+bounds.H/2, 4)
			gc.Fill()
		default:
			gc.DrawRoundedRectangle(bounds.X, bounds.Y, bounds.W, bounds.H, 4)
			gc.SetRGBA(1, 1, 1, 0.9)
			gc.FillPreserve()
			if o.Color != "" {
				gc.SetHexColor(o.Color)
			} else {
				gc.SetRGB(0.2, 0.2, 0.25)
			}
			gc.SetLineWidth(1.5)
			gc.Stroke()
		}
	}
}

// nodeRender builds the render callback for one node-surface overlay.
func nodeRender(o scene.Overlay) layers.RenderFunc {
	switch o.Shape {
	case scene.ShapeLabel:
		return renderLabel
	case scene.ShapeDot:
		return func(target *dom.Element, _ host.Element, _ geom.Rect) {
			c := ensureChild(target, "circle")
			c.SetAttr("r", "4")
			if o.Color != "" {
				c.SetAttr("fill", o.Color)
			}
		}
	default:
		return func(target *dom.Element, _ host.Element, bounds geom.Rect) {
			r := ensureChild(target, "rect")
			r.SetAttr("width", fmt.Sprintf("%g", bounds.W))
			r.SetAttr("height", fmt.Sprintf("%g", bounds.H))
			r.SetAttr("fill", "none")
			if o.Color != "" {
				r.SetAttr("stroke", o.Color)
			}
		}
	}
}

func renderLabel(target *dom.Element, e host.Element, _ geom.Rect) {
	label := e.ID()
	if me, ok := e.(*memhost.Element); ok && me.Label() != "" {
		label = me.Label()
	}
	text := ensureChild(target, "text")
	text.SetAttr("text-anchor", "middle")
	text.SetAttr("dominant-baseline", "middle")
	text.SetText(label)
}

func ensureChild(target *dom.Element, tag string) *dom.Element {
	if c := target.ChildAt(0); c != nil {
		return c
	}
	c := dom.NewElement(tag)
	target.AppendChild(c)
	return c
}
