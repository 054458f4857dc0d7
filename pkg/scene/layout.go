package scene

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/glazework/glaze/pkg/errors"
)

// toDOT converts the scene to Graphviz DOT input. Positioned nodes pin
// their coordinates; the rest are free for the layout engine.
func toDOT(sc *Scene) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range sc.Nodes {
		attrs := []string{
			// Graphviz sizes are in inches at 72 dpi.
			fmt.Sprintf("width=%.3f", n.W/72),
			fmt.Sprintf("height=%.3f", n.H/72),
			"fixedsize=true",
		}
		if n.Positioned() {
			attrs = append(attrs, fmt.Sprintf("pos=\"%g,%g!\"", *n.X, *n.Y), "pin=true")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range sc.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

var (
	bbRe  = regexp.MustCompile(`bb="([-0-9.]+),([-0-9.]+),([-0-9.]+),([-0-9.]+)"`)
	posRe = regexp.MustCompile(`"?([^"\s\[]+)"?\s*\[[^\]]*\bpos="([-0-9.]+),([-0-9.]+)"`)
)

// AutoLayout positions every node lacking coordinates by running the
// scene through Graphviz and reading back the computed positions.
// Positioned nodes are left untouched.
func AutoLayout(ctx context.Context, sc *Scene) error {
	if !sc.NeedsLayout() {
		return nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(toDOT(sc)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "parse layout input")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run layout")
	}

	positions, height := parsePositions(buf.Bytes())
	for i := range sc.Nodes {
		n := &sc.Nodes[i]
		if n.Positioned() {
			continue
		}
		p, ok := positions[n.ID]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "layout returned no position for node %q", n.ID)
		}
		// Graphviz places the origin bottom-left; flip to top-down
		// graph coordinates.
		x, y := p[0], height-p[1]
		n.X, n.Y = &x, &y
	}
	return nil
}

// parsePositions extracts per-node pos attributes and the drawing
// height from rendered xdot output. Attribute lists wrap with
// backslash-newline continuations, which are stripped first.
func parsePositions(out []byte) (map[string][2]float64, float64) {
	flat := strings.ReplaceAll(string(out), "\\\n", "")

	var height float64
	if m := bbRe.FindStringSubmatch(flat); m != nil {
		height, _ = strconv.ParseFloat(m[4], 64)
	}

	positions := make(map[string][2]float64)
	for _, m := range posRe.FindAllStringSubmatch(flat, -1) {
		x, errX := strconv.ParseFloat(m[2], 64)
		y, errY := strconv.ParseFloat(m[3], 64)
		if errX != nil || errY != nil {
			continue
		}
		positions[m[1]] = [2]float64{x, y}
	}
	return positions, height
}
