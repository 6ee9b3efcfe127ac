package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tengrikut/galeri/internal/catalog"
)

// Column counts of the static tables.
const (
	tagColumns     = 3
	updatedColumns = 2
)

// tableCell is the display form of one table row entry.
type tableCell struct {
	Text string
	Href string
}

// tableGrid lays rows out left to right into lines of columns cells. The
// last line is padded with empty cells. Missing labels become "Veri N" and
// missing text falls back to the label.
func tableGrid(rows []catalog.TableRow, columns int) [][]tableCell {
	if len(rows) == 0 || columns <= 0 {
		return nil
	}
	grid := make([][]tableCell, 0, (len(rows)+columns-1)/columns)
	for i := 0; i < len(rows); i += columns {
		line := make([]tableCell, columns)
		for j := 0; j < columns && i+j < len(rows); j++ {
			line[j] = displayCell(rows[i+j], i+j)
		}
		grid = append(grid, line)
	}
	return grid
}

func displayCell(row catalog.TableRow, index int) tableCell {
	label := strings.TrimSpace(row.Label)
	if label == "" {
		label = "Veri " + strconv.Itoa(index+1)
	}
	text := strings.TrimSpace(row.Text)
	if text == "" {
		text = label
	}
	href := strings.TrimSpace(row.Href)
	if href == "" {
		href = "#"
	}
	return tableCell{Text: text, Href: href}
}

// renderTable draws a titled static table, or nothing when rows is empty.
func renderTable(title string, rows []catalog.TableRow, columns, width int, theme Theme) string {
	grid := tableGrid(rows, columns)
	if len(grid) == 0 {
		return ""
	}
	styles := theme.Styles()
	cellWidth := 0
	if width > 0 {
		cellWidth = max(8, (width-columns-1)/columns-2)
	}

	data := make([][]string, len(grid))
	for i, line := range grid {
		data[i] = make([]string, len(line))
		for j, cell := range line {
			data[i][j] = truncate(cell.Text, cellWidth)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Border))).
		StyleFunc(func(row, col int) lipgloss.Style {
			return styles.AccentText.Padding(0, 1)
		}).
		Rows(data...)

	return styles.Text.Bold(true).Render(title) + "\n" + t.Render()
}

// truncate shortens value to limit runes, adding an ellipsis when cut.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
