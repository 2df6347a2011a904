package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/reformlab/reformer/api/gql"
	rest "github.com/reformlab/reformer/api/rest/v1"
	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/pkg/env"
)

// Start launches the API and blocks until ctx is cancelled or the
// listener fails.
func Start(ctx context.Context, bus event.Bus) error {
	e := New(bus)

	errs := make(chan error, 1)
	go func() {
		errs <- e.Start(fmt.Sprintf(":%v", env.Variables().Port))
	}()

	select {
	case err := <-errs:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

// New assembles the echo instance with every route bound.
func New(bus event.Bus) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// health
	e.GET("/health", Health)

	// metrics
	prometheus.NewPrometheus("reformer", nil).Use(e)

	// REST
	rest.Bind(e.Group("/v1"), bus)

	// GraphQL
	e.GET("/gql", gql.Handler())

	return e
}
