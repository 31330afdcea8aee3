package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table は枠線付きのテキスト表。
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTable は表を描画する。列幅は表示幅（全角文字は2）で計算する。
// 先頭列は左寄せ、それ以外は右寄せ。
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	writeRule(&b, widths, "╭", "┬", "╮")
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], false) + " "))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		writeRule(&b, widths, "├", "┼", "┤")
	}
	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := range numCols {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i > 0) + " "))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}
	writeRule(&b, widths, "╰", "┴", "╯")

	return b.String()
}

func writeRule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// pad は表示幅がwになるよう空白で埋める。
func pad(s string, w int, right bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
