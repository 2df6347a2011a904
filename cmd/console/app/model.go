// Package app implements the interactive terminal console.
package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reformlab/reformer/cmd/console/api"
)

type state int

type section int

const (
	stateLoading state = iota
	stateReady
	stateError
)

const (
	sectionBatches section = iota
	sectionSimulations
	sectionStats
)

const sectionCount = 3

func (s section) next() section {
	return section((int(s) + 1) % sectionCount)
}

func (s section) prev() section {
	return section((int(s) + sectionCount - 1) % sectionCount)
}

// Model represents the Bubble Tea program state.
type Model struct {
	client  *api.Client
	spinner spinner.Model
	state   state
	err     error
	active  section

	batches     table.Model
	simulations table.Model
	stats       *api.StatsResponse

	detail        *api.Simulation
	detailErr     error
	detailPending bool
	showDetail    bool

	viewportWidth int
}

// New creates the root model with dependency references.
func New(client *api.Client) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		client:      client,
		spinner:     sp,
		state:       stateLoading,
		active:      sectionBatches,
		batches:     createTable(batchColumnTitles, []int{20, 16, 10, 24, 14}, true),
		simulations: createTable(simColumnTitles, []int{8, 8, 12, 10, 10, 12}, false),
	}
}

// Init bootstraps async fetch and spinner tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchData(m.client))
}

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.showDetail {
				m.showDetail = false
				m.detail = nil
				m.detailErr = nil
				return m, nil
			}
		case "r":
			m.state = stateLoading
			m.err = nil
			m.showDetail = false
			return m, tea.Batch(m.spinner.Tick, fetchData(m.client))
		case "enter":
			if m.state == stateReady && m.active == sectionSimulations && !m.showDetail {
				if id, ok := m.selectedSimulationID(); ok {
					m.showDetail = true
					m.detailPending = true
					m.detail = nil
					m.detailErr = nil
					return m, tea.Batch(m.spinner.Tick, fetchSimulationDetail(m.client, id))
				}
			}
		case "1":
			m = m.activate(sectionBatches)
		case "2":
			m = m.activate(sectionSimulations)
		case "3":
			m = m.activate(sectionStats)
		case "tab":
			m = m.activate(m.active.next())
		case "shift+tab":
			m = m.activate(m.active.prev())
		}
	case tea.WindowSizeMsg:
		height := max(5, msg.Height-7)
		width := max(20, msg.Width-8)
		m.viewportWidth = msg.Width
		m.batches.SetHeight(height)
		m.simulations.SetHeight(height)
		m.batches.SetWidth(width)
		m.simulations.SetWidth(width)
		m.resizeColumns(max(10, width-2))
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case dataLoadedMsg:
		m.state = stateReady
		m.err = nil
		m.batches.SetRows(batchesToRows(msg.batches))
		m.simulations.SetRows(simulationsToRows(msg.simulations))
		m.stats = msg.stats
		m = m.activate(m.active)
	case detailLoadedMsg:
		m.detailPending = false
		m.detail = msg.simulation
	case detailErrMsg:
		m.detailPending = false
		m.detailErr = msg.err
	case errMsg:
		m.state = stateError
		m.err = msg
	}

	if m.state != stateReady || m.showDetail {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.active {
	case sectionBatches:
		m.batches, cmd = m.batches.Update(msg)
	case sectionSimulations:
		m.simulations, cmd = m.simulations.Update(msg)
	}

	return m, cmd
}

func (m Model) activate(sec section) Model {
	m.batches.Blur()
	m.simulations.Blur()
	switch sec {
	case sectionBatches:
		m.batches.Focus()
	case sectionSimulations:
		m.simulations.Focus()
	}
	m.active = sec
	return m
}

func (m Model) selectedSimulationID() (int64, bool) {
	row := m.simulations.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	return parseID(row[0])
}

func (m *Model) resizeColumns(width int) {
	if width <= 0 {
		return
	}
	m.batches.SetColumns(buildColumns(batchColumnTitles, distributeWidths(width, batchColumnWeights)))
	m.simulations.SetColumns(buildColumns(simColumnTitles, distributeWidths(width, simColumnWeights)))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
