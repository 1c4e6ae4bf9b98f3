package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"imgcrush/internal/display"
	"imgcrush/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// StatsRows lays out a run's totals. Sizes and the overall reduction only
// appear once something was compressed; breakdown adds one row per skip cause.
func StatsRows(s processor.Stats, breakdown bool) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Total files", Value: fmt.Sprintf("%d", s.Total)},
		{Label: "Processed", Value: fmt.Sprintf("%d", s.Processed)},
		{Label: "Compressed", Value: fmt.Sprintf("%d", s.Compressed)},
		{Label: "Skipped", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
	}

	if breakdown && len(s.SkipCauses) > 0 {
		causes := make([]string, 0, len(s.SkipCauses))
		for cause := range s.SkipCauses {
			causes = append(causes, cause)
		}
		sort.Strings(causes)
		for _, cause := range causes {
			rows = append(rows, SummaryRow{Label: "  skipped: " + cause, Value: fmt.Sprintf("%d", s.SkipCauses[cause])})
		}
	}

	if s.Compressed > 0 {
		rows = append(rows,
			SummaryRow{Label: "Original size", Value: display.FormatSize(s.OriginalSize)},
			SummaryRow{Label: "Compressed size", Value: display.FormatSize(s.CompressedSize)},
			SummaryRow{Label: "Space saved", Value: display.FormatSize(s.SpaceSaved)},
			SummaryRow{Label: "Overall reduction", Value: fmt.Sprintf("%.1f%%", display.Reduction(s.OriginalSize, s.CompressedSize))},
		)
	}
	return rows
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
