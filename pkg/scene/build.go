package scene

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/glazework/glaze/pkg/errors"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host/memhost"
)

// labelPad is the bounding-box padding applied to labeled nodes.
const labelPad = 4

// AssignIDs generates a UUID for every node without an identifier.
func (sc *Scene) AssignIDs() {
	for i := range sc.Nodes {
		if sc.Nodes[i].ID == "" {
			sc.Nodes[i].ID = uuid.NewString()
		}
	}
}

// Build materializes the scene into an in-memory host: one element per
// node, one spanning element per edge. Nodes without coordinates are
// laid out first; nodes without IDs get generated ones.
func Build(ctx context.Context, sc *Scene) (*memhost.Host, error) {
	sc.AssignIDs()
	if err := AutoLayout(ctx, sc); err != nil {
		return nil, err
	}

	h := memhost.New(memhost.WithSize(sc.Width, sc.Height))
	h.SetViewport(geom.Transform{
		Pan:  geom.Point{X: sc.Viewport.PanX, Y: sc.Viewport.PanY},
		Zoom: sc.Viewport.Zoom,
	})

	for _, n := range sc.Nodes {
		e := memhost.NewElement(n.ID, geom.Point{X: *n.X, Y: *n.Y}, n.W, n.H)
		e = e.WithClasses(append([]string{"node"}, n.Classes...)...)
		if n.Label != "" {
			e = e.WithLabel(n.Label, labelPad)
		}
		h.AddElement(e)
	}

	for _, eg := range sc.Edges {
		from, to := sc.Node(eg.From), sc.Node(eg.To)
		if from == nil || to == nil {
			return nil, errors.New(errors.ErrCodeInvalidScene, "edge references unknown node")
		}
		mid := geom.Point{X: (*from.X + *to.X) / 2, Y: (*from.Y + *to.Y) / 2}
		w := math.Max(math.Abs(*from.X-*to.X), 1)
		hgt := math.Max(math.Abs(*from.Y-*to.Y), 1)
		e := memhost.NewElement(edgeID(eg), mid, w, hgt)
		e = e.WithClasses(append([]string{"edge"}, eg.Classes...)...)
		h.AddElement(e)
	}
	return h, nil
}

func edgeID(e Edge) string {
	return e.From + ":" + e.To
}
