package cli

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/halfpitch/laygrid/pkg/grid"
	"github.com/halfpitch/laygrid/pkg/tech"
)

// gridOpts holds the flags shared by the grid subcommands.
type gridOpts struct {
	techPath string // technology rule file
	gridPath string // routing grid file
}

// loadTech loads the technology rule table.
func (o *gridOpts) loadTech() (*tech.Table, error) {
	return tech.Load(o.techPath)
}

// loadGrid builds the routing grid from the grid configuration file.
func (o *gridOpts) loadGrid(t *tech.Table) (*grid.Grid, error) {
	cfg, err := grid.LoadConfig(o.gridPath)
	if err != nil {
		return nil, err
	}
	return grid.FromConfig(t, cfg)
}

// newGridCmd creates the grid command with its info and browse subcommands.
func newGridCmd() *cobra.Command {
	opts := gridOpts{}

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Inspect routing grids built from technology and grid files",
	}

	cmd.PersistentFlags().StringVar(&opts.techPath, "tech", "", "technology rule file (TOML)")
	cmd.PersistentFlags().StringVar(&opts.gridPath, "grid", "", "routing grid file (TOML)")
	_ = cmd.MarkPersistentFlagRequired("tech")

	cmd.AddCommand(newGridInfoCmd(&opts))
	cmd.AddCommand(newGridBrowseCmd(&opts))

	return cmd
}

// newGridInfoCmd creates the "grid info" command. With --grid it prints the
// routing grid layer table; without it only the technology rules are shown.
func newGridInfoCmd(opts *gridOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print routing grid layers with pitches and block pitches",
		Example: `  # Technology rules only
  laygrid grid info --tech tech.toml

  # Full routing grid
  laygrid grid info --tech tech.toml --grid grid.toml`,
		RunE: func(c *cobra.Command, args []string) error {
			logger := loggerFromContext(c.Context())

			t, err := opts.loadTech()
			if err != nil {
				return err
			}
			logger.Debugf("Loaded technology from %s", opts.techPath)

			if opts.gridPath == "" {
				printTechTable(t)
				return nil
			}

			g, err := opts.loadGrid(t)
			if err != nil {
				return err
			}
			logger.Debugf("Loaded grid with %d layers from %s", len(g.LayerIDs()), opts.gridPath)

			printGridTable(t, g)
			return nil
		},
	}
}

// newGridBrowseCmd creates the "grid browse" command, an interactive layer
// browser driven by bubbletea.
func newGridBrowseCmd(opts *gridOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse routing grid layers interactively",
		RunE: func(c *cobra.Command, args []string) error {
			if opts.gridPath == "" {
				return fmt.Errorf("browse requires --grid")
			}
			t, err := opts.loadTech()
			if err != nil {
				return err
			}
			g, err := opts.loadGrid(t)
			if err != nil {
				return err
			}

			p := tea.NewProgram(newLayerBrowser(t, g))
			_, err = p.Run()
			return err
		},
	}
}

// printTechTable prints the technology rule summary.
func printTechTable(t *tech.Table) {
	fmt.Println(StyleTitle.Render("Technology"))
	printKeyValue("Resolution", fmt.Sprintf("%g um", t.Resolution()))
	printNewline()

	rows := [][]string{}
	for _, id := range t.LayerIDs() {
		rows = append(rows, []string{
			strconv.Itoa(id),
			t.LayerName(id),
			strconv.Itoa(t.MinLength(id, 1)),
		})
	}
	fmt.Println(ruleTable([]string{"Layer", "Name", "Min length"}, rows, -1))
}

// printGridTable prints the routing grid layer table.
func printGridTable(t *tech.Table, g *grid.Grid) {
	fmt.Println(StyleTitle.Render("Routing grid"))
	printKeyValue("Resolution", fmt.Sprintf("%g um", t.Resolution()))
	printKeyValue("Layers", strconv.Itoa(len(g.LayerIDs())))
	printNewline()

	fmt.Println(ruleTable(gridHeaders, gridRows(t, g), -1))
}

var gridHeaders = []string{"Layer", "Name", "Dir", "Width", "Space", "Pitch", "Offset", "Blk pitch", "Max tr"}

// gridRows renders one table row per routing layer.
func gridRows(t *tech.Table, g *grid.Grid) [][]string {
	rows := [][]string{}
	for _, id := range g.LayerIDs() {
		l, err := g.Layer(id)
		if err != nil {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(id),
			t.LayerName(id),
			l.Dir.String(),
			strconv.Itoa(l.Width),
			strconv.Itoa(l.Space),
			strconv.Itoa(l.Pitch()),
			strconv.Itoa(l.Offset),
			strconv.Itoa(l.BlockPitch),
			strconv.Itoa(l.MaxNumTr),
		})
	}
	return rows
}

// ruleTable renders rows as a bordered lipgloss table. When cursor is
// non-negative that row is highlighted.
func ruleTable(headers []string, rows [][]string, cursor int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
