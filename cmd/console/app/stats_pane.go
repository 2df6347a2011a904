package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reformlab/reformer/cmd/console/api"
)

var (
	statsTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statsLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statsValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("253"))
	barFilledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderStatsView(stats *api.StatsResponse, width int) string {
	if stats == nil {
		return statsLabelStyle.Render("No statistics loaded yet.")
	}

	blocks := []string{
		renderStatsOverview(stats, width),
		renderBiooilBreakdown(stats.ByBiooil),
		renderBestYields(stats.BestYields),
	}

	joined := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) != "" {
			joined = append(joined, block)
		}
	}
	return strings.Join(joined, "\n\n")
}

func renderStatsOverview(stats *api.StatsResponse, width int) string {
	sims := stats.Simulations
	lines := []string{
		statsTitleStyle.Render("Pipeline"),
		statsLine("Runs", fmt.Sprintf("%d total  •  %d in last 24h", sims.Total, sims.Recent24h)),
		statsLine("Outcomes", fmt.Sprintf("✓%d  ✗%d  ⚠%d", sims.Converged, sims.Failed, sims.Warning)),
		statsLine("Convergence", fmt.Sprintf("%.1f%%  %s",
			sims.ConvergenceRate*100, renderProgressBar(sims.ConvergenceRate, min(40, width/2)))),
		statsLine("Avg H2 yield", fmt.Sprintf("%.2f kg / 100 kg feed", sims.AvgH2YieldKg)),
		statsLine("Avg mass error", fmt.Sprintf("%.3f %%", sims.AvgMassErrorPct)),
		statsLine("Batches", fmt.Sprintf("%d total  •  %d running  •  %d completed",
			stats.Batches.Total, stats.Batches.Running, stats.Batches.Completed)),
	}
	return strings.Join(lines, "\n")
}

func renderBiooilBreakdown(rows []api.BiooilConvergence) string {
	if len(rows) == 0 {
		return ""
	}

	lines := []string{statsTitleStyle.Render("By Feedstock")}
	for _, row := range rows {
		lines = append(lines, statsLine(
			fmt.Sprintf("Bio-oil %d", row.BiooilID),
			fmt.Sprintf("%d/%d converged  •  avg %.2f kg H2", row.Converged, row.Runs, row.AvgH2YieldKg),
		))
	}
	return strings.Join(lines, "\n")
}

func renderBestYields(points []api.YieldPoint) string {
	if len(points) == 0 {
		return ""
	}

	lines := []string{statsTitleStyle.Render("Best Operating Points")}
	for _, p := range points {
		lines = append(lines, statsLine(
			fmt.Sprintf("Run %d", p.SimulationID),
			fmt.Sprintf("%.2f kg H2 @ %.0f °C / %.1f bar / S:C %.1f (oil %d)",
				p.H2YieldKg, p.TemperatureC, p.PressureBar, p.SteamToCarbon, p.BiooilID),
		))
	}
	return strings.Join(lines, "\n")
}

func renderProgressBar(ratio float64, width int) string {
	if width < 4 {
		width = 4
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	filled := int(ratio * float64(width))
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func statsLine(label, value string) string {
	return statsLabelStyle.Render(label+": ") + statsValueStyle.Render(value)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
