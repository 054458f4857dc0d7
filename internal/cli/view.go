package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/glazework/glaze/pkg/dom"
	"github.com/glazework/glaze/pkg/geom"
	"github.com/glazework/glaze/pkg/host"
	"github.com/glazework/glaze/pkg/host/memhost"
	"github.com/glazework/glaze/pkg/layers"
	"github.com/glazework/glaze/pkg/scene"
)

// Viewer styles
var (
	viewerNodeStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewerEdgeStyle = lipgloss.NewStyle().Foreground(colorDim)
	viewerDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// viewCommand creates the view command: an interactive terminal viewer
// for panning and zooming around a scene.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [scene]",
		Short: "Pan and zoom a scene in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.Load(args[0])
			if err != nil {
				return fmt.Errorf("load scene %s: %w", args[0], err)
			}
			h, err := scene.Build(cmd.Context(), sc)
			if err != nil {
				return fmt.Errorf("build scene: %w", err)
			}
			m, err := NewViewerModel(sc.Name, h)
			if err != nil {
				return fmt.Errorf("build viewer: %w", err)
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// ViewerModel is the bubbletea model for the scene viewer. It runs a
// real layer stack over the host: every keystroke feeds the viewport
// and then runs one render tick, so each keypress is exactly one
// reconcile pass per binding no matter how many events it produced.
// The View projects the bindings' render targets onto a character grid.
type ViewerModel struct {
	Name  string
	Host  *memhost.Host
	Stack *layers.Stack
	Nodes *layers.Binding
	Edges *layers.Binding

	Width  int
	Height int
}

// Pan step per keypress, in graph units at zoom 1.
const panStep = 40

// NewViewerModel builds the viewer's layer stack over a built scene
// host: edge markers on one vector surface, node labels on another.
func NewViewerModel(name string, h *memhost.Host) (ViewerModel, error) {
	st, err := layers.NewStack(h, dom.NewElement("div"))
	if err != nil {
		return ViewerModel{}, err
	}
	layers.Attach(h, st)

	edgeSurface, err := st.Append(layers.KindSVG)
	if err != nil {
		return ViewerModel{}, err
	}
	edges, err := layers.RenderPerElement(edgeSurface,
		func(target *dom.Element, _ host.Element, _ geom.Rect) {
			ensureChild(target, "circle").SetAttr("r", "2")
		},
		layers.WithSelector(".edge"),
		layers.WithUniqueElements(),
		layers.WithPosition(layers.PositionCenter),
		layers.WithBoundsCheck(),
		layers.WithQueryEachTime())
	if err != nil {
		return ViewerModel{}, err
	}

	labelSurface, err := st.Append(layers.KindSVG)
	if err != nil {
		return ViewerModel{}, err
	}
	nodes, err := layers.RenderPerElement(labelSurface, renderLabel,
		layers.WithSelector(".node"),
		layers.WithUniqueElements(),
		layers.WithPosition(layers.PositionCenter),
		layers.WithBoundsCheck(),
		layers.WithQueryEachTime())
	if err != nil {
		return ViewerModel{}, err
	}

	h.Tick()
	return ViewerModel{Name: name, Host: h, Stack: st, Nodes: nodes, Edges: edges, Width: 80, Height: 24}, nil
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		t := m.Host.Viewport()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			t.Pan.Y += panStep * t.Zoom
		case "down", "j":
			t.Pan.Y -= panStep * t.Zoom
		case "left", "h":
			t.Pan.X += panStep * t.Zoom
		case "right", "l":
			t.Pan.X -= panStep * t.Zoom
		case "+", "=":
			t.Zoom *= 1.25
		case "-", "_":
			t.Zoom /= 1.25
		case "r":
			t = geom.Identity()
		default:
			return m, nil
		}
		m.Host.SetViewport(t)
		// One tick per keystroke: the viewport event and every binding
		// invalidation it caused collapse into a single render pass.
		m.Host.Tick()
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m ViewerModel) View() string {
	var b strings.Builder

	t := m.Stack.Transform()
	b.WriteString(StyleTitle.Render(m.Name))
	b.WriteString("  ")
	b.WriteString(viewerDimStyle.Render(fmt.Sprintf("pan (%.0f, %.0f)  zoom %.2f", t.Pan.X, t.Pan.Y, t.Zoom)))
	b.WriteString("\n")
	b.WriteString(viewerDimStyle.Render("↑/↓/←/→ pan  +/- zoom  r reset  q quit"))
	b.WriteString("\n\n")

	rows := m.Height - 4
	if rows < 5 {
		rows = 5
	}
	cols := m.Width
	if cols < 20 {
		cols = 20
	}
	b.WriteString(m.renderGrid(cols, rows, t))
	return b.String()
}

// renderGrid rasterizes the stack's render targets onto a cols x rows
// text grid. The visible element set comes from the host's spatial
// index; what gets drawn per element comes from the binding that owns
// its target, so the grid shows exactly what the last tick reconciled.
func (m ViewerModel) renderGrid(cols, rows int, t geom.Transform) string {
	w, hgt := m.Stack.Size()
	grid := make([][]rune, rows)
	styles := make([][]*lipgloss.Style, rows)
	for i := range grid {
		grid[i] = make([]rune, cols)
		styles[i] = make([]*lipgloss.Style, cols)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// cell holds the grid coordinates of a graph-space point under the
	// current transform, mapping host pixels onto terminal cells.
	cell := func(p geom.Point) (col, row int) {
		sx := p.X*t.Zoom + t.Pan.X
		sy := p.Y*t.Zoom + t.Pan.Y
		return int(sx / w * float64(cols)), int(sy / hgt * float64(rows))
	}
	put := func(col, row int, r rune, style *lipgloss.Style) {
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return
		}
		grid[row][col] = r
		styles[row][col] = style
	}

	for _, e := range m.Host.QueryRegion(t.VisibleRect(w, hgt)) {
		col, row := cell(e.Position())
		if m.Edges.Target(e.ID()) != nil {
			put(col, row, '·', &viewerEdgeStyle)
			continue
		}
		target := m.Nodes.Target(e.ID())
		if target == nil {
			continue
		}
		label := e.ID()
		if text := target.ChildAt(0); text != nil && text.Text() != "" {
			label = text.Text()
		}
		rs := []rune(label)
		start := col - len(rs)/2
		put(start-1, row, '[', &viewerNodeStyle)
		for i, r := range rs {
			put(start+i, row, r, &viewerNodeStyle)
		}
		put(start+len(rs), row, ']', &viewerNodeStyle)
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if s := styles[row][col]; s != nil {
				b.WriteString(s.Render(string(grid[row][col])))
			} else {
				b.WriteRune(grid[row][col])
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
