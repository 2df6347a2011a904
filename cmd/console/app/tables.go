package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/reformlab/reformer/cmd/console/api"
)

var (
	batchColumnTitles  = []string{"ID", "Model", "Status", "Progress", "Started"}
	batchColumnWeights = []int{4, 3, 2, 4, 3}
	simColumnTitles    = []string{"Run", "Oil", "Status", "T °C", "P bar", "Mass err %"}
	simColumnWeights   = []int{2, 1, 2, 1, 1, 2}
)

func batchesToRows(batches []api.Batch) []table.Row {
	rows := make([]table.Row, len(batches))
	for i, b := range batches {
		progress := fmt.Sprintf("%d/%d  ✓%d ✗%d ⚠%d",
			b.Completed+b.Skipped, b.Total, b.Converged, b.Failed, b.Warning)
		rows[i] = table.Row{
			shortID(b.ID),
			b.Model,
			b.Status,
			progress,
			relativeTime(b.StartedAt),
		}
	}
	return rows
}

func simulationsToRows(sims []api.Simulation) []table.Row {
	rows := make([]table.Row, len(sims))
	for i, sim := range sims {
		rows[i] = table.Row{
			strconv.FormatInt(sim.ID, 10),
			strconv.FormatInt(sim.BiooilID, 10),
			sim.Status,
			"-",
			"-",
			fmt.Sprintf("%.3f", sim.MassBalanceErrorPercent),
		}
		if sim.Conditions != nil {
			rows[i][3] = fmt.Sprintf("%.0f", sim.Conditions.TemperatureC)
			rows[i][4] = fmt.Sprintf("%.1f", sim.Conditions.PressureBar)
		}
	}
	return rows
}

func parseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}

func createTable(titles []string, widths []int, focused bool) table.Model {
	columns := buildColumns(titles, widths)
	tbl := table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true)

	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63")).
		Bold(false)

	tbl.SetStyles(styles)
	if focused {
		tbl.Focus()
	}
	return tbl
}

func buildColumns(titles []string, widths []int) []table.Column {
	columns := make([]table.Column, len(titles))
	for i, title := range titles {
		width := 12
		if i < len(widths) && widths[i] > 0 {
			width = widths[i]
		}
		columns[i] = table.Column{Title: title, Width: width}
	}

	return columns
}

func distributeWidths(total int, weights []int) []int {
	if len(weights) == 0 {
		return nil
	}

	if total <= 0 {
		total = len(weights) * 12
	}

	sum := 0
	for _, w := range weights {
		sum += w
	}

	minWidth := 6
	widths := make([]int, len(weights))
	remaining := total

	for i, weight := range weights {
		if i == len(weights)-1 {
			widths[i] = max(minWidth, remaining)
			break
		}

		portion := max(minWidth, weight*total/sum)
		minRemaining := minWidth * (len(weights) - i - 1)
		if remaining-portion < minRemaining {
			portion = max(minWidth, remaining-minRemaining)
		}

		widths[i] = portion
		remaining -= portion
	}

	return widths
}
