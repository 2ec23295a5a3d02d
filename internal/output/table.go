package output

import (
	"fmt"
	"strings"
)

// InstalledRow is one line of `lilith list` output.
type InstalledRow struct {
	Name    string
	Version string
	Comment string
	Origin  string
}

// SearchRow is one line of `lilith search` output.
type SearchRow struct {
	Name    string
	Version string
	Comment string
}

// commentWidth is the column width for package descriptions.
const commentWidth = 48

// RenderInstalledTable renders installed records in a columnar layout.
// Rows are emitted in the order given (the store keeps install order).
func RenderInstalledTable(rows []InstalledRow) string {
	if len(rows) == 0 {
		return "No packages installed.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %-14s %s\n", "Package", "Version", "Comment"))
	sb.WriteString(strings.Repeat("─", 24+1+14+1+commentWidth))
	sb.WriteString("\n")

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-24s %-14s %s\n",
			truncate(row.Name, 24),
			truncate(row.Version, 14),
			truncate(row.Comment, commentWidth)))
	}

	return sb.String()
}

// RenderSearchTable renders catalogue search hits in catalogue order.
func RenderSearchTable(rows []SearchRow) string {
	if len(rows) == 0 {
		return "No matching packages.\n"
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-24s %-14s %s\n",
			truncate(row.Name, 24),
			truncate(row.Version, 14),
			truncate(row.Comment, commentWidth)))
	}

	return sb.String()
}

// truncate shortens s to max characters, adding an ellipsis if truncated.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
