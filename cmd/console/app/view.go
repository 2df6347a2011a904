package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/reformlab/reformer/cmd/console/ui/detail"
)

var (
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	activeBox   = boxStyle.BorderForeground(lipgloss.Color("63"))
	tabActive   = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("57")).Bold(true)
	tabInactive = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("240"))
	logoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).PaddingRight(1)

	sectionNames = map[section]string{
		sectionBatches:     "Batches",
		sectionSimulations: "Runs",
		sectionStats:       "Stats",
	}
)

// View renders the interface.
func (m Model) View() string {
	tabs := renderTabsBar(m.active, m.viewportWidth)
	footer := barStyle.Render("[1/2/3] switch  [tab] cycle  [enter] detail  [esc] back  [r] reload  [q] quit")

	var body string

	switch m.state {
	case stateLoading:
		body = centerText(fmt.Sprintf("%s Loading data…", m.spinner.View()))
	case stateError:
		body = boxStyle.Render("Failed to load data: " + m.err.Error())
	case stateReady:
		body = m.renderBody()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabs, body, footer)
}

func (m Model) renderBody() string {
	if m.showDetail {
		pane := detail.Render(detail.ViewModel{
			Simulation:    m.detail,
			Err:           m.detailErr,
			Pending:       m.detailPending,
			ViewportWidth: max(20, m.viewportWidth-6),
		})
		return activeBox.Render(pane)
	}

	switch m.active {
	case sectionBatches:
		return renderPane(m.batches, true)
	case sectionSimulations:
		return renderPane(m.simulations, true)
	case sectionStats:
		return activeBox.Render(renderStatsView(m.stats, max(20, m.viewportWidth-6)))
	default:
		return ""
	}
}

func renderPane(tbl table.Model, active bool) string {
	content := tbl.View()
	style := boxStyle
	if active {
		style = activeBox
	}

	return style.Render(content)
}

func renderTabs(active section) string {
	sections := []section{sectionBatches, sectionSimulations, sectionStats}
	tabs := make([]string, len(sections))
	for i, sec := range sections {
		label := fmt.Sprintf("%d %s", i+1, sectionNames[sec])
		if sec == active {
			tabs[i] = tabActive.Render(label)
		} else {
			tabs[i] = tabInactive.Render(label)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderTabsBar(active section, totalWidth int) string {
	tabs := renderTabs(active)
	logo := logoStyle.Render("┌────┐\n│ H₂ │\n└────┘")
	if totalWidth <= 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, tabs, logo)
	}

	logoWidth := lipgloss.Width(logo)
	leftWidth := max(0, totalWidth-logoWidth)
	left := lipgloss.NewStyle().Width(leftWidth).MaxWidth(leftWidth).Render(tabs)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, logo)
}

func centerText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return lipgloss.NewStyle().Align(lipgloss.Center).Render(value)
}
