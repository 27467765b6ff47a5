package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/caesium-cloud/gqlambda/api/gql"
	"github.com/caesium-cloud/gqlambda/internal/metrics"
	"github.com/caesium-cloud/gqlambda/pkg/server"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// PlaygroundPath serves the playground page.
	PlaygroundPath = "/playground"
	// GraphiQLPath serves the raw engine behind GraphiQL.
	GraphiQLPath = "/gql"
)

var e *echo.Echo

// New routes the handlers of srv the way API Gateway would, next to the
// local only health, metrics and GraphiQL endpoints. Metrics are
// registered with reg.
func New(srv *server.Server, reg *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// metrics
	metrics.Register(reg)
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "gqlambda",
		Subsystem:  "http",
		Registerer: reg,
	}))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	// health
	e.GET("/health", Health(srv))

	// lambda handlers
	e.Any(srv.Playground().Endpoint(), Lambda(srv.GraphQLHandler))
	e.GET(PlaygroundPath, Lambda(srv.PlaygroundHandler))

	// GraphQL
	e.Any(GraphiQLPath, gql.Handler(srv))

	return e
}

// Start serves srv on port until ctx is done.
func Start(ctx context.Context, srv *server.Server, port int) error {
	e = New(srv, prometheus.NewRegistry())

	go func() {
		<-ctx.Done()
		if err := Shutdown(); err != nil {
			e.Logger.Error(err)
		}
	}()

	if err := e.Start(fmt.Sprintf(":%v", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully stops the running API.
func Shutdown() error {
	if e == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return e.Shutdown(ctx)
}
