package nav

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/randelsr/mbox-navigator/internal/index"
)

// Column width caps. The subject column absorbs whatever terminal width
// remains after the fixed columns.
const (
	maxAddrWidth    = 30
	maxDateWidth    = 26
	minSubjectWidth = 8
)

// cellText returns the display text of one column for a row. The index
// column shows the row's file-order label, which is what show and save
// resolve.
func cellText(r *index.Row, col string) string {
	switch col {
	case "idx":
		return fmt.Sprintf("%d", r.Seq)
	case "date":
		return r.DateDisplay
	case "from":
		return r.From
	case "to":
		return r.To
	case "subject":
		return r.Subject
	default:
		return ""
	}
}

// renderTable writes rows as an aligned text table with an idx column
// followed by the configured columns, fitted to totalWidth terminal cells.
func renderTable(w io.Writer, rows []index.Row, cols []string, totalWidth int) {
	all := append([]string{"idx"}, cols...)

	widths := make([]int, len(all))
	for i, col := range all {
		widths[i] = runewidth.StringWidth(col)
	}
	for ri := range rows {
		for i, col := range all {
			if cw := runewidth.StringWidth(sanitizeCell(cellText(&rows[ri], col))); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	// Cap the fixed columns, then hand the subject whatever width is left.
	used := 0
	subjectAt := -1
	for i, col := range all {
		switch col {
		case "from", "to":
			if widths[i] > maxAddrWidth {
				widths[i] = maxAddrWidth
			}
		case "date":
			if widths[i] > maxDateWidth {
				widths[i] = maxDateWidth
			}
		case "subject":
			subjectAt = i
			continue
		}
		used += widths[i]
	}
	if subjectAt >= 0 {
		// Each column separator is " | " (3 cells) plus one leading space.
		sepCells := 3*(len(all)-1) + 1
		remaining := totalWidth - used - sepCells
		if remaining < minSubjectWidth {
			remaining = minSubjectWidth
		}
		if widths[subjectAt] > remaining {
			widths[subjectAt] = remaining
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.Reset()
		for i, cell := range cells {
			if i == 0 {
				sb.WriteString(" ")
			} else {
				sb.WriteString(" | ")
			}
			sb.WriteString(padCell(cell, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}

	writeRow(all)

	sb.Reset()
	for i := range all {
		if i > 0 {
			sb.WriteString("-+-")
		} else {
			sb.WriteString("-")
		}
		sb.WriteString(strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w, sb.String())

	cells := make([]string, len(all))
	for ri := range rows {
		for i, col := range all {
			cells[i] = truncateCell(cellText(&rows[ri], col), widths[i])
		}
		writeRow(cells)
	}
}

// sanitizeCell strips characters that would break row alignment.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}

// truncateCell fits s into maxWidth terminal cells, using runewidth so
// full-width characters count as the two cells they occupy.
func truncateCell(s string, maxWidth int) string {
	s = sanitizeCell(s)
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// padCell pads s with spaces to width terminal cells.
func padCell(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// wrapText wraps text to fit within width terminal cells, breaking at
// spaces where one lands in the latter half of the line.
func wrapText(text string, width int) []string {
	if width <= 0 {
		width = 80
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= width {
			result = append(result, line)
			continue
		}

		runes := []rune(line)
		for len(runes) > 0 {
			currentWidth := 0
			breakAt := 0
			lastSpace := -1
			for i, r := range runes {
				rw := runewidth.RuneWidth(r)
				if currentWidth+rw > width {
					break
				}
				currentWidth += rw
				breakAt = i + 1
				if r == ' ' {
					lastSpace = i
				}
			}
			if lastSpace > breakAt/2 && breakAt < len(runes) {
				breakAt = lastSpace
			}
			if breakAt == 0 {
				breakAt = 1
			}
			result = append(result, string(runes[:breakAt]))
			runes = runes[breakAt:]
			for len(runes) > 0 && runes[0] == ' ' {
				runes = runes[1:]
			}
		}
	}
	return result
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
