// Package formatter renders aligned pipe tables for terminal reports.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	minColumnWidth = 3
	// MaxCellWidth bounds a single cell; longer content is cut with an ellipsis.
	MaxCellWidth = 60
)

// Table renders header and rows as a pipe table whose columns are padded to
// the display width of their widest cell. Rows may be ragged.
func Table(header []string, rows [][]string) string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, cleanRow(header))

	for _, row := range rows {
		table = append(table, cleanRow(row))
	}

	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return ""
	}

	colWidths := make([]int, colCount)

	for _, row := range table {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < minColumnWidth {
			colWidths[i] = minColumnWidth
		}
	}

	var sb strings.Builder

	writeRow(&sb, table[0], colWidths)

	separator := make([]string, colCount)
	for i, w := range colWidths {
		separator[i] = strings.Repeat("-", w)
	}

	writeRow(&sb, separator, colWidths)

	for _, row := range table[1:] {
		writeRow(&sb, row, colWidths)
	}

	return sb.String()
}

func cleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		cell = strings.ReplaceAll(strings.TrimSpace(cell), "|", "/")
		out[i] = runewidth.Truncate(cell, MaxCellWidth, "…")
	}

	return out
}

func writeRow(sb *strings.Builder, row []string, colWidths []int) {
	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(content, width))
		sb.WriteString(" |")
	}

	sb.WriteString("\n")
}
