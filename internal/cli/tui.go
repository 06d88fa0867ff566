package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halfpitch/laygrid/pkg/grid"
	"github.com/halfpitch/laygrid/pkg/tech"
)

// =============================================================================
// LayerBrowser - Interactive routing layer browser
// =============================================================================

// LayerBrowser is the bubbletea model for browsing routing grid layers.
// The cursor moves over the layer table; enter toggles a detail pane with
// derived quantities for the selected layer.
type LayerBrowser struct {
	tech   *tech.Table
	grid   *grid.Grid
	ids    []int
	cursor int
	detail bool
}

// newLayerBrowser creates a browser over the grid's layers.
func newLayerBrowser(t *tech.Table, g *grid.Grid) LayerBrowser {
	return LayerBrowser{tech: t, grid: g, ids: g.LayerIDs()}
}

func (m LayerBrowser) Init() tea.Cmd {
	return nil
}

func (m LayerBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.ids)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.detail = !m.detail
		}
	}
	return m, nil
}

func (m LayerBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Routing Grid Layers"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	b.WriteString(ruleTable(gridHeaders, gridRows(m.tech, m.grid), m.cursor))
	b.WriteString("\n")

	if m.detail && m.cursor < len(m.ids) {
		b.WriteString("\n")
		b.WriteString(m.detailView(m.ids[m.cursor]))
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.ids))))
	b.WriteString("\n")

	return b.String()
}

// detailView renders the derived quantities of one layer.
func (m LayerBrowser) detailView(id int) string {
	l, err := m.grid.Layer(id)
	if err != nil {
		return StyleWarning.Render(err.Error())
	}

	var b strings.Builder
	name := m.tech.LayerName(id)
	if name == "" {
		name = fmt.Sprintf("layer %d", id)
	}
	b.WriteString(StyleNumber.Render(name))
	b.WriteString("\n")

	line := func(key, val string) {
		b.WriteString("  " + StyleDim.Render(fmt.Sprintf("%-14s", key)) + StyleValue.Render(val) + "\n")
	}

	w, h := m.grid.BlockSize(id)
	line("track pitch", fmt.Sprintf("%d", l.Pitch()))
	line("track offset", fmt.Sprintf("%d", l.Offset))
	line("block size", fmt.Sprintf("%d x %d", w, h))

	var widths, spaces, lens []string
	for ntr := 1; ntr <= 4; ntr++ {
		widths = append(widths, fmt.Sprintf("%d", l.WireWidth(ntr)))
		spaces = append(spaces, m.grid.NumSpaceTracks(id, ntr, true).String())
		lens = append(lens, fmt.Sprintf("%d", m.grid.MinLength(id, ntr)))
	}
	line("wire width", strings.Join(widths, " / "))
	line("space (tr)", strings.Join(spaces, " / "))
	line("min length", strings.Join(lens, " / "))

	em := m.tech.MetalEM(id, l.Width, -1)
	line("idc capacity", fmt.Sprintf("%.3g mA", em.Idc))

	return b.String()
}
