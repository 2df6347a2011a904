package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/reformlab/reformer/api/rest/controller/batch"
	evctrl "github.com/reformlab/reformer/api/rest/controller/event"
	"github.com/reformlab/reformer/api/rest/controller/simulation"
	"github.com/reformlab/reformer/api/rest/controller/stats"
	"github.com/reformlab/reformer/internal/event"
)

// Bind the REST endpoints to the versioned endpoint group.
func Bind(group *echo.Group, bus event.Bus) {
	// simulations
	{
		group.GET("/simulations", simulation.List)
		group.GET("/simulations/:id", simulation.Get)
	}

	// batches
	{
		group.GET("/batches", batch.List)
		group.GET("/batches/:id", batch.Get)
	}

	// stats
	group.GET("/stats", stats.Get)

	// events
	group.GET("/events", evctrl.New(bus).Stream)
}
