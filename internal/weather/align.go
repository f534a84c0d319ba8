package weather

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Aligner pads text into columns using a pluggable width measure, so the same
// two-pass layout works for fixed-width terminals and proportional fonts.
type Aligner struct {
	// Measure returns the rendered width of s. Spaces are assumed to have a
	// positive width.
	Measure func(s string) int
}

// FixedWidth measures terminal cells, counting wide runes as two.
var FixedWidth = Aligner{Measure: runewidth.StringWidth}

// Pad right-pads s with spaces until it is at least width wide.
func (a Aligner) Pad(s string, width int) string {
	deficit := width - a.Measure(s)
	if deficit <= 0 {
		return s
	}
	space := a.Measure(" ")
	if space <= 0 {
		space = 1
	}
	n := (deficit + space - 1) / space
	return s + strings.Repeat(" ", n)
}

// ColumnWidths measures rows column by column and returns the widest entry
// per column position. Rows may be ragged.
func (a Aligner) ColumnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], a.Measure(cell))
		}
	}
	return widths
}
