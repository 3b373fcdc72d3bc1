package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-gpio-trace/internal/analyzer"
)

type TableFormatter struct{}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

func (f *TableFormatter) Format(w io.Writer, data []analyzer.Summary) error {
	rows := make([][]string, 0, len(data))
	for _, s := range data {
		rows = append(rows, row(s))
	}
	widths := columnWidths(headers, rows)

	lines := []string{
		border(widths, "┌", "┬", "┐"),
		formatRow(headers, widths),
		border(widths, "├", "┼", "┤"),
	}
	for _, r := range rows {
		lines = append(lines, formatRow(r, widths))
	}
	lines = append(lines, border(widths, "└", "┴", "┘"))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	return widths
}

func border(widths []int, left, mid, right string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return left + strings.Join(parts, mid) + right
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		// First column is text, the rest are numbers.
		if i == 0 {
			parts[i] = " " + runewidth.FillRight(cell, widths[i]) + " "
		} else {
			parts[i] = " " + runewidth.FillLeft(cell, widths[i]) + " "
		}
	}
	return "│" + strings.Join(parts, "│") + "│"
}
