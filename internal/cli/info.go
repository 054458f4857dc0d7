package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glazework/glaze/pkg/scene"
)

// infoCommand creates the info command for inspecting scene files.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [scene]",
		Short: "Show scene metadata without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.Load(args[0])
			if err != nil {
				return fmt.Errorf("load scene %s: %w", args[0], err)
			}

			fmt.Println(StyleTitle.Render(sc.Name))
			fmt.Println()
			printKeyValue("File", args[0])
			printKeyValue("Size", fmt.Sprintf("%g x %g", sc.Width, sc.Height))
			printKeyValue("Viewport", fmt.Sprintf("pan (%g, %g), zoom %g",
				sc.Viewport.PanX, sc.Viewport.PanY, sc.Viewport.Zoom))
			printKeyValue("Nodes", fmt.Sprintf("%d", len(sc.Nodes)))
			printKeyValue("Edges", fmt.Sprintf("%d", len(sc.Edges)))
			if sc.NeedsLayout() {
				printWarning("Scene has unpositioned nodes; render will run automatic layout")
			} else {
				printInfo("All nodes positioned")
			}
			return nil
		},
	}
}
