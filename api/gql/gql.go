package gql

import (
	"context"
	"net/http"

	"github.com/caesium-cloud/gqlambda/pkg/server"
	"github.com/graphql-go/handler"
	"github.com/labstack/echo/v4"
)

// Handler exposes the executable schema of srv to the echo HTTP
// framework with GraphiQL, bypassing the Lambda request framing.
func Handler(srv *server.Server) echo.HandlerFunc {
	return echo.WrapHandler(
		handler.New(
			&handler.Config{
				Schema:   srv.Schema(),
				Pretty:   true,
				GraphiQL: true,
				RootObjectFn: func(ctx context.Context, r *http.Request) map[string]interface{} {
					return srv.RootValue()
				},
			},
		),
	)
}
