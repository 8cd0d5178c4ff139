package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/fluxplot/fluxplot/pkg/dispatch"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// busRow is one selectable line in the bus picker.
type busRow struct {
	Label    string
	Inflows  int
	Outflows int
	Total    float64
}

// BusSelection holds the result of the bus selection.
type BusSelection struct {
	Bus string
}

// BusListModel is the bubbletea model for interactive bus selection.
type BusListModel struct {
	Rows     []busRow
	Cursor   int
	Selected *BusSelection
	Height   int
	Offset   int
}

// NewBusListModel builds a picker over every bus in the results. Feeder
// and draw counts come from the flow key directions, totals from the
// summed absolute flow volumes touching the bus.
func NewBusListModel(res *dispatch.Results) BusListModel {
	rows := make([]busRow, 0, len(res.Buses()))
	for _, bus := range res.Buses() {
		row := busRow{Label: bus}
		for _, key := range res.Keys() {
			in := key.Target == bus
			out := key.Source == bus
			if !in && !out {
				continue
			}
			if in {
				row.Inflows++
			} else {
				row.Outflows++
			}
			values, _ := res.Values(key)
			for _, v := range values {
				if v < 0 {
					v = -v
				}
				row.Total += v
			}
		}
		rows = append(rows, row)
	}
	return BusListModel{
		Rows:   rows,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m BusListModel) Init() tea.Cmd {
	return nil
}

func (m BusListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &BusSelection{Bus: m.Rows[m.Cursor].Label}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BusListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Bus"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor,
			r.Label,
			fmt.Sprintf("%d", r.Inflows),
			fmt.Sprintf("%d", r.Outflows),
			fmt.Sprintf("%.1f", r.Total),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Bus", "Feeders", "Draws", "Throughput").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			if actualIdx == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// pickBus runs the interactive bus picker and returns the chosen bus,
// or ok=false when the user bailed out.
func pickBus(res *dispatch.Results) (string, bool, error) {
	model := NewBusListModel(res)
	prog := tea.NewProgram(model)
	final, err := prog.Run()
	if err != nil {
		return "", false, err
	}
	m, ok := final.(BusListModel)
	if !ok || m.Selected == nil {
		return "", false, nil
	}
	return m.Selected.Bus, true, nil
}
