package api

import (
	"net/http"
	"time"

	"github.com/caesium-cloud/gqlambda/pkg/options"
	"github.com/caesium-cloud/gqlambda/pkg/server"
	"github.com/labstack/echo/v4"
)

var startedAt time.Time

func init() {
	startedAt = time.Now()
}

// HealthResponse defines the data the Health
// endpoint returns.
type HealthResponse struct {
	Status   Status        `json:"status"`
	Uptime   time.Duration `json:"uptime"`
	Endpoint string        `json:"endpoint"`
	Tracing  options.Mode  `json:"tracing"`
}

// Health reports that srv is serving, with its uptime and the
// endpoint the playground points at.
func Health(srv *server.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(
			http.StatusOK,
			HealthResponse{
				Status:   Healthy,
				Uptime:   time.Since(startedAt),
				Endpoint: srv.Playground().Endpoint(),
				Tracing:  srv.Options().Tracing.Mode,
			},
		)
	}
}

// Status enumerates the health statues of the server.
type Status string

const (
	// Healthy implies the server is having no major issues.
	Healthy Status = "healthy"
)
