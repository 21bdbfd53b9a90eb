package output

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// Row is one key/value line of a table
type Row struct {
	Key   string
	Value string
}

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Padding(0, 1)
	tableValueStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// NewTable creates a bordered two-column table
func NewTable() *ltable.Table {
	return ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		BorderRow(true).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return tableKeyStyle
			}
			return tableValueStyle
		})
}

// RenderRows renders rows as a key/value grid
func RenderRows(rows []Row) string {
	t := NewTable()
	for _, r := range rows {
		t.Row(r.Key, r.Value)
	}
	return t.Render()
}
