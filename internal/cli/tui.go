package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command, an interactive browser for
// a document's floors, resolved room positions, and diagnostics.
func (c *CLI) inspectCommand() *cobra.Command {
	var unit string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Browse floors and rooms interactively",
		Long: `Browse a resolved floorplan interactively.

Floors are tabs; rooms are rows with their absolute positions. Rooms
that failed to resolve (cycles, missing references) are dimmed, and the
diagnostics explaining why are listed below the table.

Keys:
  ←/→ or h/l   switch floor
  ↑/↓ or k/j   move selection
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			popts := c.pipelineOptions(args[0])
			if unit != "" {
				popts.SystemUnit = unit
			}
			popts.Formats = []string{pipeline.FormatJSON}
			popts.Diagnostics = true

			result, err := runner.Execute(ctx, popts)
			if err != nil {
				return err
			}

			model := newInspectModel(result.Document, result.Layout)
			_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "fallback unit when the document sets none (m, ft)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

// =============================================================================
// inspectModel - Interactive layout browser
// =============================================================================

// inspectRow is one room row in the inspect view: the declared room plus
// its resolved footprint, if resolution succeeded.
type inspectRow struct {
	room     plan.Room
	rect     resolve.Rect
	resolved bool
}

// inspectModel is the bubbletea model for the inspect command.
type inspectModel struct {
	doc    *plan.Document
	layout *resolve.Layout

	floorIdx int
	cursor   int
	height   int
	offset   int
}

func newInspectModel(doc *plan.Document, layout *resolve.Layout) inspectModel {
	return inspectModel{doc: doc, layout: layout, height: 15}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.floorIdx > 0 {
				m.floorIdx--
				m.cursor, m.offset = 0, 0
			}
		case "right", "l":
			if m.floorIdx < len(m.doc.Floors)-1 {
				m.floorIdx++
				m.cursor, m.offset = 0, 0
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows())-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// rows builds the room rows for the current floor, joining declared
// rooms with their resolved rectangles.
func (m inspectModel) rows() []inspectRow {
	if len(m.doc.Floors) == 0 {
		return nil
	}
	floor := m.doc.Floors[m.floorIdx]
	rows := make([]inspectRow, 0, len(floor.Rooms))
	for _, room := range floor.Rooms {
		row := inspectRow{room: room}
		if r, ok := m.layout.Room(floor.ID, room.ID); ok {
			row.rect = r.Rect
			row.resolved = true
		}
		rows = append(rows, row)
	}
	return rows
}

// floorDiagnostics returns the diagnostics scoped to the current floor,
// plus document-wide ones (empty floor field).
func (m inspectModel) floorDiagnostics() []resolve.Diagnostic {
	if len(m.doc.Floors) == 0 {
		return m.layout.Diagnostics
	}
	id := m.doc.Floors[m.floorIdx].ID
	var diags []resolve.Diagnostic
	for _, d := range m.layout.Diagnostics {
		if d.Floor == "" || d.Floor == id {
			diags = append(diags, d)
		}
	}
	return diags
}

func (m inspectModel) View() string {
	var b strings.Builder

	title := m.doc.Title
	if title == "" {
		title = "Floorplan"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ switch floor  ↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.renderFloorTabs())
	b.WriteString("\n")

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString(listDimStyle.Render("  no rooms"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderRoomTable(rows))
		b.WriteString("\n")
	}

	diags := m.floorDiagnostics()
	if len(diags) == 0 {
		b.WriteString("  " + StyleSuccess.Render("no diagnostics"))
		b.WriteString("\n")
	}
	for _, d := range diags {
		style := StyleWarning
		if d.Severity == resolve.SeverityError {
			style = StyleError
		}
		b.WriteString("  " + style.Render(d.String()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(rows))))

	return b.String()
}

func (m inspectModel) renderFloorTabs() string {
	parts := make([]string, 0, len(m.doc.Floors))
	for i, f := range m.doc.Floors {
		if i == m.floorIdx {
			parts = append(parts, listSelectedStyle.Render("["+f.ID+"]"))
		} else {
			parts = append(parts, listDimStyle.Render(" "+f.ID+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m inspectModel) renderRoomTable(rows []inspectRow) string {
	end := m.offset + m.height
	if end > len(rows) {
		end = len(rows)
	}

	cells := [][]string{}
	for i := m.offset; i < end; i++ {
		row := rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		position, size, status := "—", "—", "unresolved"
		if row.resolved {
			position = fmt.Sprintf("(%.2f, %.2f)", row.rect.X, row.rect.Z)
			size = fmt.Sprintf("%.2f × %.2f", row.rect.Width, row.rect.Depth)
			status = "resolved"
		}

		placement := describePlacement(row.room)
		cells = append(cells, []string{cursor, string(row.room.ID), placement, position, size, status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Room", "Placement", "Position", "Size (m)", "Status").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !rows[idx].resolved {
				base = base.Foreground(colorDim)
			}
			if idx == m.cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	return t.Render()
}

// describePlacement summarizes how a room is positioned in the source.
func describePlacement(room plan.Room) string {
	switch {
	case room.At != nil && room.Position != nil:
		return "ambiguous"
	case room.At != nil:
		return fmt.Sprintf("at %g,%g", room.At.X.Magnitude, room.At.Z.Magnitude)
	case room.Position != nil:
		return fmt.Sprintf("%s %s", room.Position.Direction, room.Position.Reference)
	default:
		return "unplaced"
	}
}
