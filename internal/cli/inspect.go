package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// inspectCommand creates the inspect command for browsing a layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [flows.json | layout.json]",
		Short: "Browse the layers and nodes of a layout",
		Long: `Browse the layers and nodes of a layout in the terminal.

The argument is either flow data, which is laid out first, or a layout.json
produced by 'layout'. Use the arrow keys to move between layers and nodes;
the links entering and leaving the selected node are listed below the table.

With --plain every layer is printed as a table instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.cfg.Apply(&opts)
			layout, err := c.loadLayout(cmd.Context(), args[0], opts, noCache)
			if err != nil {
				return err
			}
			if plain {
				fmt.Print(renderLayers(layout))
				return nil
			}
			return runInspect(layout)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print tables instead of the interactive view")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format: json, yaml, toml (default: from extension)")

	return cmd
}

// loadLayout reads a layout.json as is and lays out anything else.
func (c *CLI) loadLayout(ctx context.Context, path string, opts pipeline.Options, noCache bool) (graph.Layout, error) {
	if strings.HasSuffix(path, ".layout.json") {
		l, err := graph.ReadLayoutFile(path)
		if err != nil {
			return graph.Layout{}, fmt.Errorf("load layout %s: %w", path, err)
		}
		return l, nil
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Source = path
	opts.Logger = loggerFromContext(ctx)
	in, err := runner.Load(ctx, opts)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("load %s: %w", path, err)
	}
	return runner.ComputeLayout(ctx, in, opts)
}

func runInspect(layout graph.Layout) error {
	if len(layout.Layers) == 0 {
		printInfo("Layout is empty")
		return nil
	}

	final, err := tea.NewProgram(newMeshModel(layout)).Run()
	if err != nil {
		return err
	}
	m, ok := final.(meshModel)
	if !ok || m.Selected == nil {
		return nil
	}

	n := *m.Selected
	printSuccess("%s", n.Name)
	printKeyValue("id", n.ID)
	printKeyValue("depth", strconv.Itoa(n.Depth))
	printKeyValue("count", formatValue(n.Count))
	printKeyValue("position", fmt.Sprintf("%s, %s", formatValue(n.X), formatValue(n.Y)))
	printKeyValue("size", fmt.Sprintf("%s × %s", formatValue(n.Width), formatValue(n.Height)))
	return nil
}

// =============================================================================
// meshModel - Interactive layer browser
// =============================================================================

// meshModel is the bubbletea model for browsing a layout layer by layer.
type meshModel struct {
	Layout   graph.Layout
	Layer    int
	Cursor   int
	Offset   int
	Height   int
	Selected *graph.Node

	in  map[string][]graph.Link
	out map[string][]graph.Link
}

func newMeshModel(l graph.Layout) meshModel {
	m := meshModel{
		Layout: l,
		Height: 12,
		in:     make(map[string][]graph.Link),
		out:    make(map[string][]graph.Link),
	}
	for _, link := range l.Links {
		m.out[link.Source] = append(m.out[link.Source], link)
		m.in[link.Target] = append(m.in[link.Target], link)
	}
	return m
}

func (m meshModel) nodes() []graph.Node {
	return m.Layout.Layers[m.Layer].Nodes
}

func (m meshModel) Init() tea.Cmd {
	return nil
}

func (m meshModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.nodes())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "left", "h":
			if m.Layer > 0 {
				m.Layer--
				m.Cursor, m.Offset = 0, 0
			}
		case "right", "l", "tab":
			if m.Layer < len(m.Layout.Layers)-1 {
				m.Layer++
				m.Cursor, m.Offset = 0, 0
			}
		case "enter":
			if nodes := m.nodes(); len(nodes) > 0 {
				n := nodes[m.Cursor]
				m.Selected = &n
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
	}
	return m, nil
}

func (m meshModel) View() string {
	var b strings.Builder

	layer := m.Layout.Layers[m.Layer]
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Layer %d", layer.Depth)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d/%d · x=%s", m.Layer+1, len(m.Layout.Layers), formatValue(layer.X))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ layer  ↑/↓ node  ⏎ select  q quit"))
	b.WriteString("\n\n")

	nodes := layer.Nodes
	end := min(m.Offset+m.Height, len(nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor, n.Name, formatValue(n.Count), formatValue(n.Y), formatValue(n.Height),
			strconv.Itoa(len(m.in[n.ID])), strconv.Itoa(len(m.out[n.ID])),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Count", "Y", "Height", "In", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return StyleNumber
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(nodes) > 0 {
		n := nodes[m.Cursor]
		b.WriteString("\n")
		writeLinks(&b, "in ", m.in[n.ID])
		writeLinks(&b, "out", m.out[n.ID])
	}
	return b.String()
}

func writeLinks(b *strings.Builder, label string, links []graph.Link) {
	for _, l := range links {
		line := fmt.Sprintf("  %s %s %s %s  %s", label, l.SourceName, iconArrow, l.TargetName, formatValue(l.Value))
		b.WriteString(listDimStyle.Render(line))
		b.WriteString("\n")
	}
}

// renderLayers renders every layer of l as a table, for --plain.
func renderLayers(l graph.Layout) string {
	var b strings.Builder
	for _, layer := range l.Layers {
		rows := make([][]string, 0, len(layer.Nodes))
		for _, n := range layer.Nodes {
			rows = append(rows, []string{n.ID, n.Name, formatValue(n.Count), formatValue(n.Y), formatValue(n.Height)})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "Node", "Count", "Y", "Height").
			Rows(rows...)
		fmt.Fprintf(&b, "Layer %d (x=%s)\n%s\n\n", layer.Depth, formatValue(layer.X), t.Render())
	}
	fmt.Fprintf(&b, "%d layers, %d nodes, %d links, %s × %s\n",
		len(l.Layers), l.NodeCount(), len(l.Links), formatValue(l.Width), formatValue(l.Height))
	return b.String()
}

// formatValue prints v with at most two decimals.
func formatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
