package app

import (
	"context"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reformlab/reformer/cmd/console/api"
)

func fetchData(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		batchParams := url.Values{}
		batches, err := client.Batches().List(context.Background(), batchParams)
		if err != nil {
			return errMsg(err)
		}

		simParams := url.Values{}
		simParams.Set("order_by", "Simulation_Id DESC")
		simParams.Set("limit", "200")
		simulations, err := client.Simulations().List(context.Background(), simParams)
		if err != nil {
			return errMsg(err)
		}

		stats, err := client.Stats().Get(context.Background())
		if err != nil {
			return errMsg(err)
		}

		return dataLoadedMsg{
			batches:     batches,
			simulations: simulations,
			stats:       stats,
		}
	}
}

func fetchSimulationDetail(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		sim, err := client.Simulations().Get(context.Background(), id)
		if err != nil {
			return detailErrMsg{err: err}
		}
		return detailLoadedMsg{simulation: sim}
	}
}

type dataLoadedMsg struct {
	batches     []api.Batch
	simulations []api.Simulation
	stats       *api.StatsResponse
}

type detailLoadedMsg struct {
	simulation *api.Simulation
}

type detailErrMsg struct {
	err error
}

type errMsg error
