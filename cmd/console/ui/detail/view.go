// Package detail renders the simulation detail pane.
package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/reformlab/reformer/cmd/console/api"
	"github.com/reformlab/reformer/cmd/console/ui/status"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	sectionTitle     = lipgloss.NewStyle().Bold(true).MarginTop(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("253"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ViewModel captures the data required to render the run detail pane.
type ViewModel struct {
	Simulation    *api.Simulation
	Err           error
	Pending       bool
	ViewportWidth int
}

// Render produces a formatted detail panel for the selected run.
func Render(vm ViewModel) string {
	if vm.Err != nil {
		return errorStyle.Render("Failed to load run detail: " + vm.Err.Error())
	}

	if vm.Pending {
		return placeholderStyle.Render("Loading run detail…")
	}

	if vm.Simulation == nil {
		return placeholderStyle.Render("Select a run to view operating point, product, and stream data.")
	}

	sections := []string{
		renderHeader(vm.Simulation),
		renderConditions(vm.Simulation.Conditions),
		renderProduct(vm.Simulation.Product),
		renderSyngas(vm.Simulation.Syngas),
		renderEnergy(vm.Simulation.Energy),
		renderAnnotations(vm.Simulation),
	}

	output := make([]string, 0, len(sections))
	for _, block := range sections {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		output = append(output, block)
	}

	body := strings.Join(output, "\n")
	if vm.ViewportWidth > 0 {
		body = lipgloss.NewStyle().MaxWidth(vm.ViewportWidth).Render(body)
	}
	return strings.TrimSpace(body)
}

func renderHeader(sim *api.Simulation) string {
	title := headerStyle.Render(fmt.Sprintf("Run #%d", sim.ID))
	badge := lipgloss.NewStyle().
		Foreground(lipgloss.Color(status.Color(sim.Status))).
		Bold(true).
		Render(strings.ToUpper(sim.Status))
	sub := fmt.Sprintf("Bio-oil %d  •  %s  •  %s",
		sim.BiooilID, sim.Engine, sim.SimulationDate.Format(time.RFC3339))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", badge),
		labelStyle.Render(sub),
	)
}

func renderConditions(cond *api.Condition) string {
	if cond == nil {
		return renderSection("Operating Point", placeholderStyle.Render("No condition row recorded"))
	}

	lines := []string{
		kv("Temperature", fmt.Sprintf("%.1f °C", cond.TemperatureC)),
		kv("Pressure", fmt.Sprintf("%.1f bar", cond.PressureBar)),
		kv("Steam/Carbon", fmt.Sprintf("%.2f", cond.SteamToCarbon)),
		kv("Feed rate", fmt.Sprintf("%.1f kg/h bio-oil, %.1f kg/h steam", cond.FeedRateKgh, cond.SteamRateKgh)),
	}
	return renderSection("Operating Point", strings.Join(lines, "\n"))
}

func renderProduct(product *api.Product) string {
	if product == nil {
		return renderSection("Hydrogen Product", placeholderStyle.Render("No product row (run did not converge)"))
	}

	lines := []string{
		kv("H2 yield", fmt.Sprintf("%.2f kg per 100 kg feed", product.H2YieldKg)),
		kv("H2 purity", fmt.Sprintf("%.2f %%", product.H2PurityPercent)),
		kv("H2 flow", fmt.Sprintf("%.2f kg/h", product.H2FlowRateKgh)),
		kv("CO slip", fmt.Sprintf("%.0f ppm", product.COSlipPpm)),
		kv("Carbon conversion", fmt.Sprintf("%.1f %%", product.CarbonConversionPercent)),
		kv("Energy efficiency", fmt.Sprintf("%.1f %%", product.EnergyEfficiencyPercent)),
	}
	return renderSection("Hydrogen Product", strings.Join(lines, "\n"))
}

func renderSyngas(streams []api.Syngas) string {
	if len(streams) == 0 {
		return ""
	}

	lines := make([]string, 0, len(streams))
	for _, s := range streams {
		lines = append(lines, kv(s.StreamLocation,
			fmt.Sprintf("H2 %.1f%%  CO %.1f%%  CO2 %.1f%%  CH4 %.1f%%",
				s.H2MolPercent, s.COMolPercent, s.CO2MolPercent, s.CH4MolPercent)))
	}
	return renderSection("Syngas Streams", strings.Join(lines, "\n"))
}

func renderEnergy(energy *api.Energy) string {
	if energy == nil {
		return ""
	}

	lines := []string{
		kv("Total input", fmt.Sprintf("%.0f MJ", energy.TotalEnergyInputMJ)),
		kv("Reformer duty", fmt.Sprintf("%.0f MJ", energy.ReformerHeatMJ)),
		kv("Thermal efficiency", fmt.Sprintf("%.1f %%", energy.ThermalEfficiencyPercent)),
	}
	return renderSection("Energy Balance", strings.Join(lines, "\n"))
}

func renderAnnotations(sim *api.Simulation) string {
	lines := []string{}
	if strings.TrimSpace(sim.Warnings) != "" {
		lines = append(lines, errorStyle.Render(sim.Warnings))
	}
	if strings.TrimSpace(sim.Notes) != "" {
		lines = append(lines, labelStyle.Render(sim.Notes))
	}
	if len(lines) == 0 {
		return ""
	}
	return renderSection("Annotations", strings.Join(lines, "\n"))
}

func renderSection(title, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left, sectionTitle.Render(title), body)
}

func kv(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}
