package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/layout/ordering"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect <graph.layout.json>",
		Short: "Browse the lanes of a laid-out document",
		Long: `Browse the lanes of a laid-out document in the terminal.

The list shows each lane with its node count, layer count, remaining edge
crossings and size. Press enter to see the nodes of a lane grouped by
layer. With --plain the lane table is printed once without interaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the lane table and exit")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, plain bool) error {
	g, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}
	m := newLaneModel(g)
	if plain {
		fmt.Println(m.laneTable())
		return nil
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

// laneRow is one lane with the figures shown in the browser.
type laneRow struct {
	lane      *graph.Lane
	layers    [][]*graph.Node
	crossings int
}

// laneModel is the bubbletea model of the lane browser.
type laneModel struct {
	rows   []laneRow
	edges  int
	cursor int
	offset int
	height int
	// open shows the node list of the lane under the cursor.
	open bool
}

func newLaneModel(g *graph.Graph) laneModel {
	m := laneModel{edges: len(g.Edges), height: 15}
	for _, l := range g.Lanes() {
		m.rows = append(m.rows, laneRow{
			lane:      l,
			layers:    l.Layers(),
			crossings: ordering.CountCrossings(l, g.LaneEdges(l)),
		})
	}
	return m
}

func (m laneModel) Init() tea.Cmd { return nil }

func (m laneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.open {
				return m, tea.Quit
			}
			m.open = false
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.offset = min(m.offset, m.cursor)
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ":
			if len(m.rows) > 0 {
				m.open = !m.open
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m laneModel) View() string {
	var b strings.Builder
	if m.open && len(m.rows) > 0 {
		r := m.rows[m.cursor]
		b.WriteString(StyleTitle.Render(r.lane.Pool + " / " + r.lane.Name))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("esc back  q quit"))
		b.WriteString("\n\n")
		b.WriteString(m.nodeList(r))
		return b.String()
	}

	b.WriteString(StyleTitle.Render("Lanes"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ nodes  q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.laneTable())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d] · %d edges", min(m.cursor+1, len(m.rows)), len(m.rows), m.edges)))
	return b.String()
}

// laneTable renders the visible window of lanes.
func (m laneModel) laneTable() string {
	end := min(m.offset+m.height, len(m.rows))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			r.lane.Pool,
			r.lane.Name,
			strconv.Itoa(len(r.lane.Nodes)),
			strconv.Itoa(len(r.layers)),
			strconv.Itoa(r.crossings),
			fmt.Sprintf("%.0f×%.0f", r.lane.W, r.lane.H),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "Pool", "Lane", "Nodes", "Layers", "Crossings", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			i := m.offset + row
			if i >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 5 && m.rows[i].crossings > 0 {
				base = base.Foreground(colorYellow)
			}
			if i == m.cursor {
				if col != 5 {
					base = base.Foreground(colorCyan)
				}
				return base.Bold(true)
			}
			return base
		}).
		Render()
}

// nodeList renders a lane's nodes grouped by layer.
func (m laneModel) nodeList(r laneRow) string {
	if len(r.layers) == 0 {
		return StyleDim.Render("  no laid-out nodes")
	}
	var b strings.Builder
	for i, layer := range r.layers {
		b.WriteString(StyleHighlight.Render(fmt.Sprintf("layer %d", layer[0].Layer)))
		b.WriteString("\n")
		for _, n := range layer {
			fmt.Fprintf(&b, "  %s %s %s\n",
				StyleValue.Render(fmt.Sprintf("%-4d", n.ID)),
				n.DisplayLabel(),
				StyleDim.Render(fmt.Sprintf("%s @ %.0f,%.0f", n.Kind, n.X, n.Y)))
		}
		if i < len(r.layers)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
