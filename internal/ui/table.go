package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders static rows with padded columns.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Empty   string // shown when there are no rows
}

// NewTable creates a table with the given title and headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers, Empty: "No results."}
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

var (
	tableTitle  = lipgloss.NewStyle().Bold(true)
	tableHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	tableMuted  = lipgloss.NewStyle().Faint(true)
)

// View renders the table as a string.
func (t *Table) View() string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(tableTitle.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		sb.WriteString(tableMuted.Render(t.Empty))
		sb.WriteString("\n")
		return sb.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	writeRow := func(cells []string, style lipgloss.Style) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			sb.WriteString(style.Render(cell))
			sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers, tableHeader)
	for _, row := range t.Rows {
		writeRow(row, lipgloss.NewStyle())
	}
	return sb.String()
}
